package debugger

import (
	"github.com/rv32iss/rv32iss/internal/memsys"
	"github.com/rv32iss/rv32iss/internal/rvcore"
)

func newTestMachine() *Machine {
	mem := memsys.NewMemory()
	sys := memsys.NewSystem(mem)
	hart := rvcore.NewHart(rvcore.Collaborator{Mem: mem, Chan: sys, Trap: sys}, rvcore.HartConfig{})
	return NewMachine(hart, sys)
}

func writeWord(m *Machine, addr, word uint32) {
	buf := []byte{byte(word), byte(word >> 8), byte(word >> 16), byte(word >> 24)}
	if err := m.Sys.Write(addr, 4, buf); err != nil {
		panic(err)
	}
}
