package debugger

import "fmt"

// readInstructionAt fetches the raw instruction word at addr along with
// its length (2 or 4 bytes), without going through the hart's decode
// table — the debugger only needs to classify the instruction, not
// execute it.
func readInstructionAt(m *Machine, addr uint32) (uint32, uint32, error) {
	lo := make([]byte, 2)
	if err := m.Sys.Read(addr, 2, lo); err != nil {
		return 0, 0, err
	}
	half := uint32(lo[0]) | uint32(lo[1])<<8
	if half&3 != 3 {
		return half, 2, nil
	}

	hi := make([]byte, 2)
	if err := m.Sys.Read(addr+2, 2, hi); err != nil {
		return 0, 0, fmt.Errorf("reading high half at 0x%08X: %w", addr+2, err)
	}
	return half | (uint32(hi[0])|uint32(hi[1])<<8)<<16, 4, nil
}

// isCallInstruction reports whether word is JAL/JALR/C.JAL/C.JALR with a
// non-zero (link-register) destination — the set of instructions
// step-over should run through rather than step into.
func isCallInstruction(word uint32) bool {
	if word&3 == 3 {
		opcode := word & 0x7F
		rd := (word >> 7) & 0x1F
		switch opcode {
		case 0x6F: // JAL
			return rd != 0
		case 0x67: // JALR
			return rd != 0
		}
		return false
	}

	quadrant := word & 3
	funct3 := (word >> 13) & 0x7
	if quadrant == 1 && funct3 == 0x1 {
		return true // C.JAL always writes x1
	}
	if quadrant == 2 {
		funct4 := (word >> 12) & 0xF
		rs1 := (word >> 7) & 0x1F
		rs2 := (word >> 2) & 0x1F
		if funct4 == 0x9 && rs2 == 0 && rs1 != 0 {
			return true // C.JALR
		}
	}
	return false
}
