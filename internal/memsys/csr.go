package memsys

import (
	"fmt"
	"io"

	"github.com/rv32iss/rv32iss/internal/rvcore"
)

// Privilege levels, matching the xRET level argument rvcore passes
// (spec.md §4.5 "System": level ∈ {0,1,3}).
const (
	LevelUser       uint32 = 0
	LevelSupervisor uint32 = 1
	LevelMachine    uint32 = 3
)

// A minimal but real CSR numbering, enough to back the trap-vector and
// xRET protocol rvcore requires of its TrapSink/ChannelPort (spec.md §6).
const (
	csrMTVEC  uint32 = 0x305
	csrMEPC   uint32 = 0x341
	csrMCAUSE uint32 = 0x342
)

// System is the hart collaborator: it implements rvcore.MemoryPort (via
// the embedded *Memory), rvcore.ChannelPort, and rvcore.TrapSink. Grounded
// on the teacher's vm.Memory + vm.CPU.CPSR pairing (vm/memory.go,
// vm/psr.go), generalised from condition flags to a CSR file and
// privilege-level trap dispatch.
type System struct {
	*Memory

	csr       map[uint32]uint32
	privilege uint32
	reserved  uint32 // 0 = no reservation; otherwise the reserved address + 1

	Disasm io.Writer

	interrupts chan uint32
}

// NewSystem builds a System at machine-mode reset state with interrupts
// reported on a buffered channel (RaiseInterrupt/WaitUntil below).
func NewSystem(mem *Memory) *System {
	return &System{
		Memory:     mem,
		csr:        make(map[uint32]uint32),
		privilege:  LevelMachine,
		interrupts: make(chan uint32, 1),
	}
}

// SetTrapVector configures CSR mtvec (the address enter_trap dispatches
// to) for tests and the CLI; real firmware would instead write the CSR
// itself via CSRRW.
func (s *System) SetTrapVector(pc uint32) { s.csr[csrMTVEC] = pc }

// ReadChannel implements rvcore.ChannelPort (spec.md §6).
func (s *System) ReadChannel(ch rvcore.Channel, key uint32) uint32 {
	switch ch {
	case rvcore.ChannelCSR:
		return s.csr[key]
	case rvcore.ChannelFence:
		return 0
	case rvcore.ChannelRes:
		if s.reserved != 0 && s.reserved-1 == key {
			return 0xFFFFFFFF
		}
		return 0
	}
	return 0
}

// WriteChannel implements rvcore.ChannelPort (spec.md §6).
func (s *System) WriteChannel(ch rvcore.Channel, key, value uint32) {
	switch ch {
	case rvcore.ChannelCSR:
		s.csr[key] = value
	case rvcore.ChannelFence:
		// Ordering hook only; this single-hart simulator has nothing to
		// reorder (spec.md §4.5 "Fences").
	case rvcore.ChannelRes:
		if value == 0xFFFFFFFF {
			s.reserved = key + 1
		} else if s.reserved != 0 && s.reserved-1 == key {
			s.reserved = 0
		}
	}
}

// InvalidateReservation clears the LR/SC reservation. Stores through
// Memory.Write do not touch the reservation, so a store to the reserved
// address between LR and SC leaves it in place; it is cleared only here,
// in EnterTrap, and by a RES-channel write of any value other than
// 0xFFFFFFFF at the reserved address (as a successful SC.W does).
func (s *System) InvalidateReservation() { s.reserved = 0 }

// EnterTrap implements rvcore.TrapSink: save epc/cause into the machine
// CSRs, transition to machine mode, and return the configured vector
// (spec.md §4.6, §6).
func (s *System) EnterTrap(trapState, epc uint32) uint32 {
	cause := (trapState >> 16) & 0xFF
	s.csr[csrMEPC] = epc
	s.csr[csrMCAUSE] = cause
	s.privilege = LevelMachine
	s.reserved = 0
	return s.csr[csrMTVEC]
}

// LeaveTrap implements rvcore.TrapSink: restore the hart to the
// requested privilege level and publish the restored PC at CSR
// (level<<8)|0x41, the slot rvcore's xRET handlers read from (spec.md
// §4.5 "System", §6).
func (s *System) LeaveTrap(level uint32) {
	s.privilege = level
	s.csr[(level<<8)|0x41] = s.csr[csrMEPC]
}

// RaiseInterrupt is the peripheral-facing half of WaitUntil: queuing a
// class here wakes a blocked WFI. Peripherals are explicitly out of this
// module's scope (spec.md §1); this channel is the narrow seam they'd
// attach to.
func (s *System) RaiseInterrupt(class uint32) {
	select {
	case s.interrupts <- class:
	default:
	}
}

// WaitUntil implements rvcore.TrapSink: block the calling goroutine until
// an interrupt of the given class (or any, if class is 0) is pending
// (spec.md §4.5 "System", §5 "Cancellation and suspension").
func (s *System) WaitUntil(class uint32) {
	for pending := range s.interrupts {
		if class == 0 || pending == class {
			return
		}
	}
}

// DisassOutput implements rvcore.TrapSink (spec.md §6 "Observability").
func (s *System) DisassOutput(pc uint32, text string) {
	if s.Disasm == nil {
		return
	}
	fmt.Fprintf(s.Disasm, "0x%08X: %s\n", pc, text)
}
