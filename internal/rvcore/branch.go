package rvcore

// Branch condition sub-operation selectors (spec.md §4.5 "Control
// transfer").
const (
	brEQ uint8 = iota
	brNE
	brLT
	brGE
	brLTU
	brGEU
)

func immB(instr uint32) uint32 {
	b12 := bitSub(instr, 31, 1)
	b11 := bitSub(instr, 7, 1)
	b10_5 := bitSub(instr, 25, 6)
	b4_1 := bitSub(instr, 8, 4)
	raw := (b12 << 12) | (b11 << 11) | (b10_5 << 5) | (b4_1 << 1)
	return signExtendU32(raw, 13)
}

func immJ(instr uint32) uint32 {
	b20 := bitSub(instr, 31, 1)
	b19_12 := bitSub(instr, 12, 8)
	b11 := bitSub(instr, 20, 1)
	b10_1 := bitSub(instr, 21, 10)
	raw := (b20 << 20) | (b19_12 << 12) | (b11 << 11) | (b10_1 << 1)
	return signExtendU32(raw, 21)
}

// hBranch implements BEQ/BNE/BLT/BGE/BLTU/BGEU. Target = PC +
// sign_extend(imm,13); LAST_BRANCH = 1 only when taken to a
// non-current-PC target, 0 otherwise — including "taken-self" (spec.md
// §4.5, §8 boundary case).
func hBranch(h *Hart, instr uint32, d *Descriptor) error {
	a := h.GetX(rs1(instr))
	b := h.GetX(rs2(instr))
	var taken bool
	switch d.Sub {
	case brEQ:
		taken = a == b
	case brNE:
		taken = a != b
	case brLT:
		taken = int32(a) < int32(b)
	case brGE:
		taken = int32(a) >= int32(b)
	case brLTU:
		taken = a < b
	case brGEU:
		taken = a >= b
	}
	if !taken {
		h.LastBranch = BranchSequential
		return nil
	}
	target := h.PC + immB(instr)
	h.NextPC = target
	if target != h.PC {
		h.LastBranch = BranchTaken
	} else {
		h.LastBranch = BranchSequential
	}
	return nil
}

// hJAL implements JAL: rd = PC+4 (unless rd=0), jump to PC +
// sign_extend(imm,21); LAST_BRANCH = 1 iff target != current PC (spec.md
// §4.5).
func hJAL(h *Hart, instr uint32, d *Descriptor) error {
	link := h.PC + 4
	target := h.PC + immJ(instr)
	h.SetX(rd(instr), link)
	h.NextPC = target
	if target != h.PC {
		h.LastBranch = BranchTaken
	} else {
		h.LastBranch = BranchSequential
	}
	return nil
}

// hJALR implements JALR: target = (rs1 + sign_extend(imm,12)) & ~1, rd =
// PC+4, LAST_BRANCH always 0xFFFFFFFF (indirect) (spec.md §4.5).
func hJALR(h *Hart, instr uint32, d *Descriptor) error {
	base := h.GetX(rs1(instr))
	target := (base + immI(instr)) &^ 1
	link := h.PC + 4
	h.SetX(rd(instr), link)
	h.NextPC = target
	h.LastBranch = BranchIndirect
	return nil
}
