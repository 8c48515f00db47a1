package rvcore

// Compact register fields in quadrants 0 and 1's CL/CS/CA/CB forms
// address x8..x15 by adding 8 to the 3-bit field (spec.md §4.5
// "Compressed (C)").
const compactRegOffset = 8

func creg(field uint32) uint32 { return field + compactRegOffset }

// crs2 reads the CR-format's full 5-bit rs2 field at bits[6:2], used by
// C.MV/C.ADD where either register may be any of x1..x31 (unlike the CA
// format's compact 3-bit fields handled by creg).
func crs2(instr uint32) uint32 { return bitSub(instr, 2, 5) }

// hCAddi4spn implements C.ADDI4SPN. Immediate 0 is illegal (spec.md §4.5,
// §6 "0:2").
func hCAddi4spn(h *Hart, instr uint32, d *Descriptor) error {
	rdp := creg(bitSub(instr, 2, 3))
	nzuimm := (bitSub(instr, 11, 2) << 4) | (bitSub(instr, 7, 4) << 6) |
		(bitSub(instr, 6, 1) << 2) | (bitSub(instr, 5, 1) << 3)
	if nzuimm == 0 {
		h.RaiseTrap(0, 2)
		return nil
	}
	h.SetX(rdp, h.GetX(2)+nzuimm)
	return nil
}

// hCLw implements C.LW.
func hCLw(h *Hart, instr uint32, d *Descriptor) error {
	rs1p := creg(bitSub(instr, 7, 3))
	rdp := creg(bitSub(instr, 2, 3))
	imm := (bitSub(instr, 10, 3) << 3) | (bitSub(instr, 6, 1) << 2) | (bitSub(instr, 5, 1) << 6)
	ea := h.GetX(rs1p) + imm
	paddr, err := h.Mem.Translate(ea)
	if err != nil {
		h.RaiseTrap(causeLoadAccessFault, 0)
		return nil
	}
	word, err := h.loadWord(paddr)
	if err != nil {
		h.RaiseTrap(causeLoadAccessFault, 0)
		return nil
	}
	h.SetX(rdp, word)
	return nil
}

// hCSw implements C.SW.
func hCSw(h *Hart, instr uint32, d *Descriptor) error {
	rs1p := creg(bitSub(instr, 7, 3))
	rs2p := creg(bitSub(instr, 2, 3))
	imm := (bitSub(instr, 10, 3) << 3) | (bitSub(instr, 6, 1) << 2) | (bitSub(instr, 5, 1) << 6)
	ea := h.GetX(rs1p) + imm
	paddr, err := h.Mem.Translate(ea)
	if err != nil {
		h.RaiseTrap(causeStoreAccessFault, 0)
		return nil
	}
	if err := h.storeWord(paddr, h.GetX(rs2p)); err != nil {
		h.RaiseTrap(causeStoreAccessFault, 0)
		return nil
	}
	return nil
}

func ciImm6(instr uint32) uint32 {
	return (bitSub(instr, 12, 1) << 5) | bitSub(instr, 2, 5)
}

// hCAddi implements C.ADDI / C.NOP (same encoding shape, rd=0,imm=0 is
// the canonical no-op; writes to x0 are dropped regardless) (spec.md
// §4.5).
func hCAddi(h *Hart, instr uint32, d *Descriptor) error {
	r := rd(instr)
	imm := signExtendU32(ciImm6(instr), 6)
	h.SetX(r, h.GetX(r)+imm)
	return nil
}

// hCJal implements C.JAL: rd = x1, target = PC + sign_extend(imm,12)
// (spec.md §4.5).
func hCJal(h *Hart, instr uint32, d *Descriptor) error {
	imm := cjImm(instr)
	target := h.PC + imm
	h.SetX(1, h.PC+2)
	h.NextPC = target
	if target != h.PC {
		h.LastBranch = BranchTaken
	} else {
		h.LastBranch = BranchSequential
	}
	return nil
}

func cjImm(instr uint32) uint32 {
	b11 := bitSub(instr, 12, 1)
	b4 := bitSub(instr, 11, 1)
	b9_8 := bitSub(instr, 9, 2)
	b10 := bitSub(instr, 8, 1)
	b6 := bitSub(instr, 7, 1)
	b7 := bitSub(instr, 6, 1)
	b3_1 := bitSub(instr, 3, 3)
	b5 := bitSub(instr, 2, 1)
	raw := (b11 << 11) | (b4 << 4) | (b9_8 << 8) | (b10 << 10) |
		(b6 << 6) | (b7 << 7) | (b3_1 << 1) | (b5 << 5)
	return signExtendU32(raw, 12)
}

// hCJ implements C.J: same target computation as C.JAL, but no link
// (spec.md §4.5).
func hCJ(h *Hart, instr uint32, d *Descriptor) error {
	imm := cjImm(instr)
	target := h.PC + imm
	h.NextPC = target
	if target != h.PC {
		h.LastBranch = BranchTaken
	} else {
		h.LastBranch = BranchSequential
	}
	return nil
}

// hCLi implements C.LI: rd=0 is illegal (spec.md §4.5, §6 "0:2").
func hCLi(h *Hart, instr uint32, d *Descriptor) error {
	r := rd(instr)
	if r == 0 {
		h.RaiseTrap(0, 2)
		return nil
	}
	imm := signExtendU32(ciImm6(instr), 6)
	h.SetX(r, imm)
	return nil
}

// hCLui implements C.LUI: rd=2 is C.ADDI16SP's slot and never decodes to
// this handler; rd=0 and immediate 0 are illegal (spec.md §4.5, §6 "0:2").
func hCLui(h *Hart, instr uint32, d *Descriptor) error {
	r := rd(instr)
	if r == 0 {
		h.RaiseTrap(0, 2)
		return nil
	}
	nzimm := signExtendU32(ciImm6(instr), 6) << 12
	if nzimm == 0 {
		h.RaiseTrap(0, 2)
		return nil
	}
	h.SetX(r, nzimm)
	return nil
}

// hCAddi16sp implements C.ADDI16SP (spec.md §4.5).
func hCAddi16sp(h *Hart, instr uint32, d *Descriptor) error {
	b9 := bitSub(instr, 12, 1)
	b4 := bitSub(instr, 6, 1)
	b6 := bitSub(instr, 5, 1)
	b8_7 := bitSub(instr, 3, 2)
	b5 := bitSub(instr, 2, 1)
	raw := (b9 << 9) | (b4 << 4) | (b6 << 6) | (b8_7 << 7) | (b5 << 5)
	imm := signExtendU32(raw, 10)
	h.SetX(2, h.GetX(2)+imm)
	return nil
}

func cbShamt(instr uint32) uint32 {
	return (bitSub(instr, 12, 1) << 5) | bitSub(instr, 2, 5)
}

// hCSrli / hCSrai / hCAndi implement the CB-format funct3=100, bits[11:10]
// 00/01/10 group (spec.md §4.5).
func hCSrli(h *Hart, instr uint32, d *Descriptor) error {
	rdp := creg(bitSub(instr, 7, 3))
	h.SetX(rdp, h.GetX(rdp)>>cbShamt(instr))
	return nil
}

func hCSrai(h *Hart, instr uint32, d *Descriptor) error {
	rdp := creg(bitSub(instr, 7, 3))
	h.SetX(rdp, uint32(int32(h.GetX(rdp))>>cbShamt(instr)))
	return nil
}

func hCAndi(h *Hart, instr uint32, d *Descriptor) error {
	rdp := creg(bitSub(instr, 7, 3))
	imm := signExtendU32(cbShamt(instr), 6)
	h.SetX(rdp, h.GetX(rdp)&imm)
	return nil
}

// hCArith implements C.SUB/C.XOR/C.OR/C.AND, the CA-format group (spec.md
// §4.5).
func hCArith(h *Hart, instr uint32, d *Descriptor) error {
	rdp := creg(bitSub(instr, 7, 3))
	rs2p := creg(bitSub(instr, 2, 3))
	a := h.GetX(rdp)
	b := h.GetX(rs2p)
	var result uint32
	switch d.Sub {
	case aluSUB:
		result = a - b
	case aluXOR:
		result = a ^ b
	case aluOR:
		result = a | b
	case aluAND:
		result = a & b
	}
	h.SetX(rdp, result)
	return nil
}

func cbImm(instr uint32) uint32 {
	b8 := bitSub(instr, 12, 1)
	b4_3 := bitSub(instr, 10, 2)
	b7_6 := bitSub(instr, 5, 2)
	b2_1 := bitSub(instr, 3, 2)
	b5 := bitSub(instr, 2, 1)
	raw := (b8 << 8) | (b4_3 << 3) | (b7_6 << 6) | (b2_1 << 1) | (b5 << 5)
	return signExtendU32(raw, 9)
}

// hCBranchZ implements C.BEQZ/C.BNEZ: compare rs1' against zero, branch
// relative to PC (spec.md §4.5).
func hCBranchZ(h *Hart, instr uint32, d *Descriptor) error {
	rs1p := creg(bitSub(instr, 7, 3))
	a := h.GetX(rs1p)
	taken := a == 0
	if d.Sub == brNE {
		taken = a != 0
	}
	if !taken {
		h.LastBranch = BranchSequential
		return nil
	}
	target := h.PC + cbImm(instr)
	h.NextPC = target
	if target != h.PC {
		h.LastBranch = BranchTaken
	} else {
		h.LastBranch = BranchSequential
	}
	return nil
}

// hCSlli implements C.SLLI: rs1=0 ("rd") is illegal (spec.md §4.5,
// §6 "0:2").
func hCSlli(h *Hart, instr uint32, d *Descriptor) error {
	r := rd(instr)
	if r == 0 {
		h.RaiseTrap(0, 2)
		return nil
	}
	h.SetX(r, h.GetX(r)<<cbShamt(instr))
	return nil
}

// hCLwsp implements C.LWSP. imm[5]=inst[12], imm[4:2]=inst[6:4],
// imm[7:6]=inst[3:2].
func hCLwsp(h *Hart, instr uint32, d *Descriptor) error {
	raw := (bitSub(instr, 12, 1) << 5) | (bitSub(instr, 4, 3) << 2) | (bitSub(instr, 2, 2) << 6)
	ea := h.GetX(2) + raw
	paddr, err := h.Mem.Translate(ea)
	if err != nil {
		h.RaiseTrap(causeLoadAccessFault, 0)
		return nil
	}
	word, err := h.loadWord(paddr)
	if err != nil {
		h.RaiseTrap(causeLoadAccessFault, 0)
		return nil
	}
	h.SetX(rd(instr), word)
	return nil
}

// hCMv implements C.MV: rd = rs2 (spec.md §4.5).
func hCMv(h *Hart, instr uint32, d *Descriptor) error {
	h.SetX(rd(instr), h.GetX(crs2(instr)))
	return nil
}

// hCJr implements C.JR: jump to rs1, no link, LAST_BRANCH indirect
// (spec.md §4.5).
func hCJr(h *Hart, instr uint32, d *Descriptor) error {
	h.NextPC = h.GetX(rd(instr))
	h.LastBranch = BranchIndirect
	return nil
}

// hCAdd implements C.ADD: rd = rd + rs2 (spec.md §4.5).
func hCAdd(h *Hart, instr uint32, d *Descriptor) error {
	r := rd(instr)
	h.SetX(r, h.GetX(r)+h.GetX(crs2(instr)))
	return nil
}

// hCJalr implements C.JALR: rd=x1, jump to rs1, LAST_BRANCH indirect
// (spec.md §4.5).
func hCJalr(h *Hart, instr uint32, d *Descriptor) error {
	target := h.GetX(rd(instr))
	h.SetX(1, h.PC+2)
	h.NextPC = target
	h.LastBranch = BranchIndirect
	return nil
}

// hCEbreak shares EBREAK's trap (cause=3, trap_id=0) (spec.md §4.5, §6).
func hCEbreak(h *Hart, instr uint32, d *Descriptor) error {
	h.RaiseTrap(3, 0)
	return nil
}

// hCSwsp implements C.SWSP.
func hCSwsp(h *Hart, instr uint32, d *Descriptor) error {
	raw := (bitSub(instr, 9, 4) << 2) | (bitSub(instr, 7, 2) << 6)
	rs2v := h.GetX(bitSub(instr, 2, 5))
	ea := h.GetX(2) + raw
	paddr, err := h.Mem.Translate(ea)
	if err != nil {
		h.RaiseTrap(causeStoreAccessFault, 0)
		return nil
	}
	if err := h.storeWord(paddr, rs2v); err != nil {
		h.RaiseTrap(causeStoreAccessFault, 0)
		return nil
	}
	return nil
}

// hDII implements the defined-illegal placeholder: always traps (spec.md
// §4.2, §4.5, §6 "0:2").
func hDII(h *Hart, instr uint32, d *Descriptor) error {
	h.RaiseTrap(0, 2)
	return nil
}
