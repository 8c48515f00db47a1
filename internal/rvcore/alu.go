package rvcore

// Integer ALU sub-operation selectors shared by the immediate and
// register-register handler families (spec.md §4.5 "Integer ALU (RV32I)").
const (
	aluADD uint8 = iota
	aluSLT
	aluSLTU
	aluXOR
	aluOR
	aluAND
	aluSLL
	aluSRL
	aluSRA
	aluSUB
)

func rd(instr uint32) uint32  { return bitSub(instr, 7, 5) }
func rs1(instr uint32) uint32 { return bitSub(instr, 15, 5) }
func rs2(instr uint32) uint32 { return bitSub(instr, 20, 5) }

func immI(instr uint32) uint32 { return signExtendU32(bitSub(instr, 20, 12), 12) }

// hLUI implements LUI: rd = sign_extend(imm << 12); computed independent
// of PC (spec.md §4.5).
func hLUI(h *Hart, instr uint32, d *Descriptor) error {
	imm := instr & 0xFFFFF000
	h.SetX(rd(instr), imm)
	return nil
}

// hAUIPC implements AUIPC: rd = PC + (imm << 12). Uses PC, never NEXT_PC
// (spec.md §4.5).
func hAUIPC(h *Hart, instr uint32, d *Descriptor) error {
	imm := instr & 0xFFFFF000
	h.SetX(rd(instr), h.PC+imm)
	return nil
}

// hALUImm implements ADDI/SLTI/SLTIU/XORI/ORI/ANDI (spec.md §4.5).
func hALUImm(h *Hart, instr uint32, d *Descriptor) error {
	a := h.GetX(rs1(instr))
	imm := immI(instr)
	var result uint32
	switch d.Sub {
	case aluADD:
		result = a + imm
	case aluSLT:
		if int32(a) < int32(imm) {
			result = 1
		}
	case aluSLTU:
		if a < imm {
			result = 1
		}
	case aluXOR:
		result = a ^ imm
	case aluOR:
		result = a | imm
	case aluAND:
		result = a & imm
	}
	h.SetX(rd(instr), result)
	return nil
}

// hShiftImm implements SLLI/SRLI/SRAI. A 6-bit encoded shift amount ≥ 32
// is illegal and raises (cause 0, trap_id 0); legal shifts use only the
// low 5 bits (spec.md §4.5, §8 boundary case "shamt=31 legal, 32
// illegal").
func hShiftImm(h *Hart, instr uint32, d *Descriptor) error {
	shamt6 := bitSub(instr, 20, 6)
	if shamt6 > 31 {
		h.RaiseTrap(0, 0)
		return nil
	}
	a := h.GetX(rs1(instr))
	shamt := shamt6 & 0x1F
	var result uint32
	switch d.Sub {
	case aluSLL:
		result = a << shamt
	case aluSRL:
		result = a >> shamt
	case aluSRA:
		result = uint32(int32(a) >> shamt)
	}
	h.SetX(rd(instr), result)
	return nil
}

// hALUReg implements ADD/SUB/SLL/SLT/SLTU/XOR/SRL/SRA/OR/AND. Reg-reg
// shifts mask the shift amount to the low 5 bits of rs2 (spec.md §4.5,
// §8 quantified invariant).
func hALUReg(h *Hart, instr uint32, d *Descriptor) error {
	a := h.GetX(rs1(instr))
	b := h.GetX(rs2(instr))
	var result uint32
	switch d.Sub {
	case aluADD:
		result = a + b
	case aluSUB:
		result = a - b
	case aluSLL:
		result = a << (b & 0x1F)
	case aluSLT:
		if int32(a) < int32(b) {
			result = 1
		}
	case aluSLTU:
		if a < b {
			result = 1
		}
	case aluXOR:
		result = a ^ b
	case aluSRL:
		result = a >> (b & 0x1F)
	case aluSRA:
		result = uint32(int32(a) >> (b & 0x1F))
	case aluOR:
		result = a | b
	case aluAND:
		result = a & b
	}
	h.SetX(rd(instr), result)
	return nil
}
