package debugger

import (
	"github.com/rv32iss/rv32iss/internal/memsys"
	"github.com/rv32iss/rv32iss/internal/rvcore"
)

// ExecutionState mirrors the teacher's vm.ExecutionState (vm/executor.go),
// re-targeted to the hart/trap states this module actually reaches.
type ExecutionState int

const (
	StateRunning ExecutionState = iota
	StateHalted
	StateBreakpoint
	StateTrapped
	StateWaiting // blocked in WFI
	StateError
)

// Machine bundles one hart with its memory/CSR collaborator the way the
// teacher's vm.VM bundles a CPU with its Memory (vm/cpu.go), giving the
// debugger a single handle for register, memory and state access.
type Machine struct {
	Hart  *rvcore.Hart
	Sys   *memsys.System
	State ExecutionState

	// EntryPC is the hart's PC when the Machine was built; Reset returns
	// the hart there.
	EntryPC uint32
}

// NewMachine wires a hart against a System collaborator.
func NewMachine(hart *rvcore.Hart, sys *memsys.System) *Machine {
	return &Machine{Hart: hart, Sys: sys, State: StateHalted, EntryPC: hart.PC}
}

// Reset returns the hart to its power-on state with PC at EntryPC.
func (m *Machine) Reset() {
	m.Hart.Reset()
	m.Hart.PC = m.EntryPC
	m.State = StateHalted
}

// ReadWord reads one little-endian word from memory for expression
// evaluation and watchpoints.
func (m *Machine) ReadWord(addr uint32) (uint32, error) {
	buf := make([]byte, 4)
	if err := m.Sys.Read(addr, 4, buf); err != nil {
		return 0, err
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}
