package rvcore

// Opcode field values (bits[6:0] of a 32-bit instruction; bits[1:0] are
// always 0b11, placing every one of these in quadrant 3).
const (
	opLOAD     = 0x03
	opMISCMEM  = 0x0F
	opOPIMM    = 0x13
	opAUIPC    = 0x17
	opSTORE    = 0x23
	opAMO      = 0x2F
	opOP       = 0x33
	opLUI      = 0x37
	opBRANCH   = 0x63
	opJALR     = 0x67
	opJAL      = 0x6F
	opSYSTEM   = 0x73
)

func rtype(opcode, f3, f7 uint32) (uint32, uint32) {
	value := opcode | (f3 << 12) | (f7 << 25)
	mask := uint32(0x7F) | (uint32(0x7) << 12) | (uint32(0x7F) << 25)
	return value, mask
}

func itype(opcode, f3 uint32) (uint32, uint32) {
	value := opcode | (f3 << 12)
	mask := uint32(0x7F) | (uint32(0x7) << 12)
	return value, mask
}

func utype(opcode uint32) (uint32, uint32) {
	return opcode, 0x7F
}

func systemImm(f3, imm12 uint32) (uint32, uint32) {
	value := opSYSTEM | (f3 << 12) | (imm12 << 20)
	mask := uint32(0x7F) | (uint32(0x7) << 12) | (uint32(0xFFF) << 20)
	return value, mask
}

func amoType(f5 uint32) (uint32, uint32) {
	value := opAMO | (uint32(0x2) << 12) | (f5 << 27)
	mask := uint32(0x7F) | (uint32(0x7) << 12) | (uint32(0x1F) << 27)
	return value, mask
}

// cform builds a compressed descriptor's (value, mask) from an explicit
// bit list of (position, value) pairs that must match, plus the funct3
// field and quadrant. Unlisted bits are don't-care.
func cform(quadrant, f3 uint32, forced ...[2]uint32) (uint32, uint32) {
	value := quadrant | (f3 << 13)
	mask := uint32(0x3) | (uint32(0x7) << 13)
	for _, pair := range forced {
		pos, bit := pair[0], pair[1]
		mask |= 1 << pos
		value |= bit << pos
	}
	return value, mask
}

// Descriptors is the static 99-entry instruction table (spec.md §4.2):
// 52 RV32I + 8 M + 11 A + 27 C + 1 DII.
var Descriptors = buildDescriptors()

func buildDescriptors() []Descriptor {
	d := make([]Descriptor, 0, 99)
	add := func(name string, length uint8, value, mask uint32, h Handler, sub uint8) {
		d = append(d, Descriptor{Name: name, Length: length, Value: value, Mask: mask, Handler: h, Sub: sub, Index: len(d)})
	}
	r32 := func(name string, value, mask uint32, h Handler, sub uint8) { add(name, 32, value, mask, h, sub) }
	c16 := func(name string, value, mask uint32, h Handler, sub uint8) { add(name, 16, value, mask, h, sub) }

	// --- RV32I: U/J-type ---
	v, m := utype(opLUI)
	r32("LUI", v, m, hLUI, 0)
	v, m = utype(opAUIPC)
	r32("AUIPC", v, m, hAUIPC, 0)
	v, m = utype(opJAL)
	r32("JAL", v, m, hJAL, 0)
	v, m = itype(opJALR, 0b000)
	r32("JALR", v, m, hJALR, 0)

	// --- Branches ---
	branches := []struct {
		name string
		f3   uint32
		sub  uint8
	}{
		{"BEQ", 0b000, brEQ}, {"BNE", 0b001, brNE},
		{"BLT", 0b100, brLT}, {"BGE", 0b101, brGE},
		{"BLTU", 0b110, brLTU}, {"BGEU", 0b111, brGEU},
	}
	for _, b := range branches {
		v, m = itype(opBRANCH, b.f3)
		r32(b.name, v, m, hBranch, b.sub)
	}

	// --- Loads ---
	loads := []struct {
		name string
		f3   uint32
		sub  uint8
	}{
		{"LB", 0b000, memByteS}, {"LH", 0b001, memHalfS}, {"LW", 0b010, memWordS},
		{"LBU", 0b100, memByteU}, {"LHU", 0b101, memHalfU},
	}
	for _, l := range loads {
		v, m = itype(opLOAD, l.f3)
		r32(l.name, v, m, hLoad, l.sub)
	}

	// --- Stores ---
	stores := []struct {
		name string
		f3   uint32
		sub  uint8
	}{
		{"SB", 0b000, memByteS}, {"SH", 0b001, memHalfS}, {"SW", 0b010, memWordS},
	}
	for _, s := range stores {
		v, m = itype(opSTORE, s.f3)
		r32(s.name, v, m, hStore, s.sub)
	}

	// --- Immediate ALU ---
	immALU := []struct {
		name string
		f3   uint32
		sub  uint8
	}{
		{"ADDI", 0b000, aluADD}, {"SLTI", 0b010, aluSLT}, {"SLTIU", 0b011, aluSLTU},
		{"XORI", 0b100, aluXOR}, {"ORI", 0b110, aluOR}, {"ANDI", 0b111, aluAND},
	}
	for _, a := range immALU {
		v, m = itype(opOPIMM, a.f3)
		r32(a.name, v, m, hALUImm, a.sub)
	}

	// --- Shift-immediate: funct3 + imm[11:5] forced, shamt[24:20] free ---
	v, m = rtype(opOPIMM, 0b001, 0b0000000)
	r32("SLLI", v, m, hShiftImm, aluSLL)
	v, m = rtype(opOPIMM, 0b101, 0b0000000)
	r32("SRLI", v, m, hShiftImm, aluSRL)
	v, m = rtype(opOPIMM, 0b101, 0b0100000)
	r32("SRAI", v, m, hShiftImm, aluSRA)

	// --- Register-register ALU ---
	regALU := []struct {
		name string
		f3   uint32
		f7   uint32
		sub  uint8
	}{
		{"ADD", 0b000, 0b0000000, aluADD}, {"SUB", 0b000, 0b0100000, aluSUB},
		{"SLL", 0b001, 0b0000000, aluSLL}, {"SLT", 0b010, 0b0000000, aluSLT},
		{"SLTU", 0b011, 0b0000000, aluSLTU}, {"XOR", 0b100, 0b0000000, aluXOR},
		{"SRL", 0b101, 0b0000000, aluSRL}, {"SRA", 0b101, 0b0100000, aluSRA},
		{"OR", 0b110, 0b0000000, aluOR}, {"AND", 0b111, 0b0000000, aluAND},
	}
	for _, a := range regALU {
		v, m = rtype(opOP, a.f3, a.f7)
		r32(a.name, v, m, hALUReg, a.sub)
	}

	// --- Fences ---
	v, m = itype(opMISCMEM, 0b000)
	r32("FENCE", v, m, hFence, 0)
	v, m = itype(opMISCMEM, 0b001)
	r32("FENCE.I", v, m, hFenceI, 0)

	// --- System: ECALL/EBREAK/xRET/WFI/SFENCE.VMA ---
	v, m = systemImm(0, 0x000)
	r32("ECALL", v, m, hECALL, 0)
	v, m = systemImm(0, 0x001)
	r32("EBREAK", v, m, hEBREAK, 0)
	v, m = systemImm(0, 0x002)
	r32("URET", v, m, hXRET, 0)
	v, m = systemImm(0, 0x102)
	r32("SRET", v, m, hXRET, 1)
	v, m = systemImm(0, 0x302)
	r32("MRET", v, m, hXRET, 3)
	v, m = systemImm(0, 0x105)
	r32("WFI", v, m, hWFI, 0)
	v, m = rtype(opSYSTEM, 0b000, 0b0001001)
	r32("SFENCE.VMA", v, m, hSFenceVMA, 0)

	// --- CSR ---
	csrs := []struct {
		name string
		f3   uint32
		sub  uint8
	}{
		{"CSRRW", 0b001, csrRW}, {"CSRRS", 0b010, csrRS}, {"CSRRC", 0b011, csrRC},
		{"CSRRWI", 0b101, csrRWI}, {"CSRRSI", 0b110, csrRSI}, {"CSRRCI", 0b111, csrRCI},
	}
	for _, c := range csrs {
		v, m = itype(opSYSTEM, c.f3)
		r32(c.name, v, m, hCSR, c.sub)
	}

	// --- M extension ---
	muls := []struct {
		name string
		f3   uint32
		sub  uint8
	}{
		{"MUL", 0b000, mulMUL}, {"MULH", 0b001, mulMULH}, {"MULHSU", 0b010, mulMULHSU},
		{"MULHU", 0b011, mulMULHU}, {"DIV", 0b100, mulDIV}, {"DIVU", 0b101, mulDIVU},
		{"REM", 0b110, mulREM}, {"REMU", 0b111, mulREMU},
	}
	for _, mu := range muls {
		v, m = rtype(opOP, mu.f3, 0b0000001)
		r32(mu.name, v, m, hMulDiv, mu.sub)
	}

	// --- A extension ---
	v, m = amoType(0b00010)
	r32("LR.W", v, m, hLRSC, amoLR)
	v, m = amoType(0b00011)
	r32("SC.W", v, m, hLRSC, amoSC)
	amos := []struct {
		name string
		f5   uint32
		sub  uint8
	}{
		{"AMOSWAP.W", 0b00001, amoSWAP}, {"AMOADD.W", 0b00000, amoADD},
		{"AMOXOR.W", 0b00100, amoXOR}, {"AMOAND.W", 0b01100, amoAND},
		{"AMOOR.W", 0b01000, amoOR}, {"AMOMIN.W", 0b10000, amoMIN},
		{"AMOMAX.W", 0b10100, amoMAX}, {"AMOMINU.W", 0b11000, amoMINU},
		{"AMOMAXU.W", 0b11100, amoMAXU},
	}
	for _, a := range amos {
		v, m = amoType(a.f5)
		r32(a.name, v, m, hAMO, a.sub)
	}

	// --- Compressed, quadrant 0 ---
	v, m = cform(0, 0b000)
	c16("C.ADDI4SPN", v, m, hCAddi4spn, 0)
	v, m = cform(0, 0b010)
	c16("C.LW", v, m, hCLw, 0)
	v, m = cform(0, 0b110)
	c16("C.SW", v, m, hCSw, 0)

	// --- Compressed, quadrant 1 ---
	// C.NOP: funct3=000, rd=0, imm=0 — specific slot within C.ADDI.
	v, m = cform(1, 0b000, [2]uint32{11, 0}, [2]uint32{10, 0}, [2]uint32{9, 0},
		[2]uint32{8, 0}, [2]uint32{7, 0}, [2]uint32{12, 0}, [2]uint32{6, 0},
		[2]uint32{5, 0}, [2]uint32{4, 0}, [2]uint32{3, 0}, [2]uint32{2, 0})
	c16("C.NOP", v, m, hCAddi, 0)
	v, m = cform(1, 0b000)
	c16("C.ADDI", v, m, hCAddi, 0)
	v, m = cform(1, 0b001)
	c16("C.JAL", v, m, hCJal, 0)
	v, m = cform(1, 0b010)
	c16("C.LI", v, m, hCLi, 0)
	// C.ADDI16SP: funct3=011, rd=2 (00010 in bits[11:7]) — specific slot
	// within C.LUI.
	v, m = cform(1, 0b011, [2]uint32{11, 0}, [2]uint32{10, 0}, [2]uint32{9, 0},
		[2]uint32{8, 1}, [2]uint32{7, 0})
	c16("C.ADDI16SP", v, m, hCAddi16sp, 0)
	v, m = cform(1, 0b011)
	c16("C.LUI", v, m, hCLui, 0)
	v, m = cform(1, 0b100, [2]uint32{12, 0}, [2]uint32{11, 0}, [2]uint32{10, 0})
	c16("C.SRLI", v, m, hCSrli, 0)
	v, m = cform(1, 0b100, [2]uint32{12, 0}, [2]uint32{11, 0}, [2]uint32{10, 1})
	c16("C.SRAI", v, m, hCSrai, 0)
	v, m = cform(1, 0b100, [2]uint32{11, 1}, [2]uint32{10, 0})
	c16("C.ANDI", v, m, hCAndi, 0)
	v, m = cform(1, 0b100, [2]uint32{12, 0}, [2]uint32{11, 1}, [2]uint32{10, 1},
		[2]uint32{6, 0}, [2]uint32{5, 0})
	c16("C.SUB", v, m, hCArith, aluSUB)
	v, m = cform(1, 0b100, [2]uint32{12, 0}, [2]uint32{11, 1}, [2]uint32{10, 1},
		[2]uint32{6, 0}, [2]uint32{5, 1})
	c16("C.XOR", v, m, hCArith, aluXOR)
	v, m = cform(1, 0b100, [2]uint32{12, 0}, [2]uint32{11, 1}, [2]uint32{10, 1},
		[2]uint32{6, 1}, [2]uint32{5, 0})
	c16("C.OR", v, m, hCArith, aluOR)
	v, m = cform(1, 0b100, [2]uint32{12, 0}, [2]uint32{11, 1}, [2]uint32{10, 1},
		[2]uint32{6, 1}, [2]uint32{5, 1})
	c16("C.AND", v, m, hCArith, aluAND)
	v, m = cform(1, 0b101)
	c16("C.J", v, m, hCJ, 0)
	v, m = cform(1, 0b110)
	c16("C.BEQZ", v, m, hCBranchZ, brEQ)
	v, m = cform(1, 0b111)
	c16("C.BNEZ", v, m, hCBranchZ, brNE)

	// --- Compressed, quadrant 2 ---
	v, m = cform(2, 0b000, [2]uint32{12, 0})
	c16("C.SLLI", v, m, hCSlli, 0)
	v, m = cform(2, 0b010)
	c16("C.LWSP", v, m, hCLwsp, 0)
	// CR-format funct3=100 group, distinguished by bit12 and bits[6:2].
	v, m = cform(2, 0b100, [2]uint32{12, 0}, [2]uint32{6, 0}, [2]uint32{5, 0},
		[2]uint32{4, 0}, [2]uint32{3, 0}, [2]uint32{2, 0})
	c16("C.JR", v, m, hCJr, 0)
	v, m = cform(2, 0b100, [2]uint32{12, 0})
	c16("C.MV", v, m, hCMv, 0)
	v, m = cform(2, 0b100, [2]uint32{12, 1}, [2]uint32{11, 0}, [2]uint32{10, 0},
		[2]uint32{9, 0}, [2]uint32{8, 0}, [2]uint32{7, 0}, [2]uint32{6, 0},
		[2]uint32{5, 0}, [2]uint32{4, 0}, [2]uint32{3, 0}, [2]uint32{2, 0})
	c16("C.EBREAK", v, m, hCEbreak, 0)
	v, m = cform(2, 0b100, [2]uint32{12, 1}, [2]uint32{6, 0}, [2]uint32{5, 0},
		[2]uint32{4, 0}, [2]uint32{3, 0}, [2]uint32{2, 0})
	c16("C.JALR", v, m, hCJalr, 0)
	v, m = cform(2, 0b100, [2]uint32{12, 1})
	c16("C.ADD", v, m, hCAdd, 0)
	v, m = cform(2, 0b110)
	c16("C.SWSP", v, m, hCSwsp, 0)

	// --- DII: canonical all-zero compressed word, always illegal ---
	v, m = uint32(0), uint32(0xFFFF)
	c16("DII", v, m, hDII, 0)

	return d
}
