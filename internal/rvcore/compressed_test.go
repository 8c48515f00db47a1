package rvcore

import "testing"

func TestHCAddi4spnComputesScaledOffsetFromSP(t *testing.T) {
	h, _, _ := newTestHart()
	h.SetX(2, 0x1000) // sp
	instr := uint32(1)<<5 | uint32(1)<<2 // bit5 set (nzuimm=8), rdp field=1 (x9)
	if err := hCAddi4spn(h, instr, nil); err != nil {
		t.Fatalf("hCAddi4spn: %v", err)
	}
	if h.GetX(9) != 0x1008 {
		t.Errorf("x9 = 0x%X, want 0x1008", h.GetX(9))
	}
}

func TestHCAddi4spnZeroImmediateIsIllegal(t *testing.T) {
	h, _, _ := newTestHart()
	if err := hCAddi4spn(h, 0, nil); err != nil {
		t.Fatalf("hCAddi4spn: %v", err)
	}
	if h.TrapState != ComposeTrapState(0, 2) {
		t.Errorf("TrapState = 0x%X, want illegal-instruction encoding", h.TrapState)
	}
}

func TestHCLwAndHCSwRoundTrip(t *testing.T) {
	h, _, _ := newTestHart()
	rs1p := uint32(1)<<7 // bits[9:7]=1 -> creg = x9
	rdp := uint32(2) << 2 // bits[4:2]=2 -> creg = x10
	instr := rs1p | rdp

	h.SetX(9, 0x3000)
	h.SetX(10, 0xABCD1234)
	if err := hCSw(h, instr, nil); err != nil {
		t.Fatalf("hCSw: %v", err)
	}

	h.SetX(10, 0) // clear before reloading
	if err := hCLw(h, instr, nil); err != nil {
		t.Fatalf("hCLw: %v", err)
	}
	if h.GetX(10) != 0xABCD1234 {
		t.Errorf("x10 after C.LW = 0x%X, want 0xABCD1234", h.GetX(10))
	}
}

func TestHCAddiAddsSignExtendedImmediate(t *testing.T) {
	h, _, _ := newTestHart()
	instr := uint32(5)<<7 | uint32(3)<<2 // rd=5, imm6=3
	h.SetX(5, 10)
	if err := hCAddi(h, instr, nil); err != nil {
		t.Fatalf("hCAddi: %v", err)
	}
	if h.GetX(5) != 13 {
		t.Errorf("x5 = %d, want 13", h.GetX(5))
	}
}

func TestHCLiLoadsImmediateAndRejectsRdZero(t *testing.T) {
	h, _, _ := newTestHart()
	instr := uint32(5)<<7 | uint32(3)<<2
	if err := hCLi(h, instr, nil); err != nil {
		t.Fatalf("hCLi: %v", err)
	}
	if h.GetX(5) != 3 {
		t.Errorf("x5 = %d, want 3", h.GetX(5))
	}

	h2, _, _ := newTestHart()
	if err := hCLi(h2, uint32(3)<<2, nil); err != nil { // rd=0
		t.Fatalf("hCLi: %v", err)
	}
	if h2.TrapState == 0 {
		t.Errorf("expected rd=0 to be illegal for C.LI")
	}
}

func TestHCLuiShiftsImmediateAndRejectsZeroAndRdZero(t *testing.T) {
	h, _, _ := newTestHart()
	instr := uint32(5)<<7 | uint32(3)<<2
	if err := hCLui(h, instr, nil); err != nil {
		t.Fatalf("hCLui: %v", err)
	}
	if h.GetX(5) != 3<<12 {
		t.Errorf("x5 = 0x%X, want 0x%X", h.GetX(5), 3<<12)
	}

	h2, _, _ := newTestHart()
	if err := hCLui(h2, uint32(3)<<2, nil); err != nil { // rd=0
		t.Fatalf("hCLui: %v", err)
	}
	if h2.TrapState == 0 {
		t.Errorf("expected rd=0 to be illegal for C.LUI")
	}

	h3, _, _ := newTestHart()
	if err := hCLui(h3, uint32(5)<<7, nil); err != nil { // rd=5, imm6=0
		t.Fatalf("hCLui: %v", err)
	}
	if h3.TrapState == 0 {
		t.Errorf("expected a zero immediate to be illegal for C.LUI")
	}
}

func TestHCAddi16spAddsScaledOffsetToSP(t *testing.T) {
	h, _, _ := newTestHart()
	h.SetX(2, 100)
	instr := uint32(1) << 6 // b4 bit set -> raw=16 -> imm=16
	if err := hCAddi16sp(h, instr, nil); err != nil {
		t.Fatalf("hCAddi16sp: %v", err)
	}
	if h.GetX(2) != 116 {
		t.Errorf("sp = %d, want 116", h.GetX(2))
	}
}

func TestHCSrliAndHCSraiAndHCAndi(t *testing.T) {
	instr := uint32(1)<<7 | uint32(1)<<2 // rdp field=1 -> x9, shamt=1

	h, _, _ := newTestHart()
	h.SetX(9, 0x8)
	if err := hCSrli(h, instr, nil); err != nil {
		t.Fatalf("hCSrli: %v", err)
	}
	if h.GetX(9) != 0x4 {
		t.Errorf("C.SRLI result = 0x%X, want 0x4", h.GetX(9))
	}

	h2, _, _ := newTestHart()
	h2.SetX(9, 0xFFFFFFF8) // -8
	if err := hCSrai(h2, instr, nil); err != nil {
		t.Fatalf("hCSrai: %v", err)
	}
	if h2.GetX(9) != 0xFFFFFFFC { // -4
		t.Errorf("C.SRAI result = 0x%X, want 0xFFFFFFFC", h2.GetX(9))
	}

	h3, _, _ := newTestHart()
	h3.SetX(9, 0x3)
	if err := hCAndi(h3, instr, nil); err != nil {
		t.Fatalf("hCAndi: %v", err)
	}
	if h3.GetX(9) != 0x1 {
		t.Errorf("C.ANDI result = 0x%X, want 0x1", h3.GetX(9))
	}
}

func TestHCArithSub(t *testing.T) {
	instr := uint32(1)<<7 | uint32(2)<<2 // rdp field=1 -> x9, rs2p field=2 -> x10

	h, _, _ := newTestHart()
	h.SetX(9, 10)
	h.SetX(10, 3)
	if err := hCArith(h, instr, &Descriptor{Sub: aluSUB}); err != nil {
		t.Fatalf("hCArith: %v", err)
	}
	if h.GetX(9) != 7 {
		t.Errorf("C.SUB result = %d, want 7", h.GetX(9))
	}
}

func TestHCBranchZTakenAndNotTaken(t *testing.T) {
	instr := uint32(1) << 7 // rs1p field=1 -> x9

	h, _, _ := newTestHart()
	h.PC = 0x1000
	h.SetX(9, 0)
	if err := hCBranchZ(h, instr, &Descriptor{Sub: brEQ}); err != nil {
		t.Fatalf("hCBranchZ: %v", err)
	}
	// cbImm(instr) is 0 here, so the taken branch targets PC itself and
	// reports Sequential rather than Taken, matching hCJ's zero-offset case.
	if h.LastBranch != BranchSequential {
		t.Errorf("LastBranch = %d, want BranchSequential for a zero-offset taken branch", h.LastBranch)
	}

	h2, _, _ := newTestHart()
	h2.PC = 0x1000
	h2.SetX(9, 5)
	if err := hCBranchZ(h2, instr, &Descriptor{Sub: brEQ}); err != nil {
		t.Fatalf("hCBranchZ: %v", err)
	}
	if h2.LastBranch != BranchSequential {
		t.Errorf("BEQZ with a non-zero register should not be taken")
	}

	h3, _, _ := newTestHart()
	h3.PC = 0x1000
	h3.SetX(9, 5)
	// Offset 2 (bit 3), so the taken branch leaves the current PC.
	if err := hCBranchZ(h3, instr|uint32(1)<<3, &Descriptor{Sub: brNE}); err != nil {
		t.Fatalf("hCBranchZ: %v", err)
	}
	if h3.LastBranch == BranchSequential {
		t.Errorf("BNEZ with a non-zero register should be taken")
	}
}

func TestHCSlliShiftsAndRejectsRdZero(t *testing.T) {
	h, _, _ := newTestHart()
	instr := uint32(5)<<7 | uint32(1)<<2 // rd=5, shamt=1
	h.SetX(5, 1)
	if err := hCSlli(h, instr, nil); err != nil {
		t.Fatalf("hCSlli: %v", err)
	}
	if h.GetX(5) != 2 {
		t.Errorf("C.SLLI result = %d, want 2", h.GetX(5))
	}

	h2, _, _ := newTestHart()
	if err := hCSlli(h2, uint32(1)<<2, nil); err != nil { // rd=0
		t.Fatalf("hCSlli: %v", err)
	}
	if h2.TrapState == 0 {
		t.Errorf("expected rd=0 to be illegal for C.SLLI")
	}
}

func TestHCLwspAndHCSwspRoundTrip(t *testing.T) {
	h, _, _ := newTestHart()
	h.SetX(2, 0x4000) // sp

	swspInstr := uint32(5) << 2 // rs2 field bits[6:2]=5
	h.SetX(5, 0xDEADC0DE)
	if err := hCSwsp(h, swspInstr, nil); err != nil {
		t.Fatalf("hCSwsp: %v", err)
	}

	lwspInstr := uint32(6) << 7 // rd field bits[11:7]=6
	if err := hCLwsp(h, lwspInstr, nil); err != nil {
		t.Fatalf("hCLwsp: %v", err)
	}
	if h.GetX(6) != 0xDEADC0DE {
		t.Errorf("x6 after C.LWSP = 0x%X, want 0xDEADC0DE", h.GetX(6))
	}
}

func TestHCMvCopiesFullWidthRs2(t *testing.T) {
	h, _, _ := newTestHart()
	instr := uint32(5)<<7 | uint32(6)<<2 // rd=5, rs2=6 (via bits[6:2])
	h.SetX(6, 0x7777)
	if err := hCMv(h, instr, nil); err != nil {
		t.Fatalf("hCMv: %v", err)
	}
	if h.GetX(5) != 0x7777 {
		t.Errorf("C.MV result = 0x%X, want 0x7777", h.GetX(5))
	}
}

func TestHCAddAccumulatesFullWidthRs2(t *testing.T) {
	h, _, _ := newTestHart()
	instr := uint32(5)<<7 | uint32(6)<<2
	h.SetX(5, 10)
	h.SetX(6, 5)
	if err := hCAdd(h, instr, nil); err != nil {
		t.Fatalf("hCAdd: %v", err)
	}
	if h.GetX(5) != 15 {
		t.Errorf("C.ADD result = %d, want 15", h.GetX(5))
	}
}

func TestHCJrJumpsToRs1WithoutLink(t *testing.T) {
	h, _, _ := newTestHart()
	instr := uint32(5) << 7
	h.SetX(5, 0x2000)
	if err := hCJr(h, instr, nil); err != nil {
		t.Fatalf("hCJr: %v", err)
	}
	if h.NextPC != 0x2000 {
		t.Errorf("NextPC = 0x%X, want 0x2000", h.NextPC)
	}
	if h.LastBranch != BranchIndirect {
		t.Errorf("LastBranch = %d, want BranchIndirect", h.LastBranch)
	}
}

func TestHCJalrLinksReturnAddressAndJumps(t *testing.T) {
	h, _, _ := newTestHart()
	h.PC = 0x1000
	instr := uint32(5) << 7
	h.SetX(5, 0x2000)
	if err := hCJalr(h, instr, nil); err != nil {
		t.Fatalf("hCJalr: %v", err)
	}
	if h.GetX(1) != 0x1002 {
		t.Errorf("x1 (link) = 0x%X, want 0x1002", h.GetX(1))
	}
	if h.NextPC != 0x2000 {
		t.Errorf("NextPC = 0x%X, want 0x2000", h.NextPC)
	}
}

func TestHCJalAndHCJComputeRelativeTarget(t *testing.T) {
	h, _, _ := newTestHart()
	h.PC = 0x1000
	instr := uint32(1) << 3 // b3_1 LSB set -> offset 2
	if err := hCJal(h, instr, nil); err != nil {
		t.Fatalf("hCJal: %v", err)
	}
	if h.NextPC != 0x1002 {
		t.Errorf("NextPC = 0x%X, want 0x1002", h.NextPC)
	}
	if h.GetX(1) != 0x1002 {
		t.Errorf("x1 (link) = 0x%X, want 0x1002", h.GetX(1))
	}
	if h.LastBranch != BranchTaken {
		t.Errorf("LastBranch = %d, want BranchTaken", h.LastBranch)
	}

	h2, _, _ := newTestHart()
	h2.PC = 0x2000
	if err := hCJ(h2, instr, nil); err != nil {
		t.Fatalf("hCJ: %v", err)
	}
	if h2.NextPC != 0x2002 {
		t.Errorf("NextPC = 0x%X, want 0x2002", h2.NextPC)
	}

	h3, _, _ := newTestHart()
	h3.PC = 0x3000
	if err := hCJ(h3, 0, nil); err != nil { // zero offset
		t.Fatalf("hCJ: %v", err)
	}
	if h3.LastBranch != BranchSequential {
		t.Errorf("a zero-offset jump-to-self should report Sequential")
	}
}

func TestHCEbreakSharesEbreakTrap(t *testing.T) {
	h, _, _ := newTestHart()
	if err := hCEbreak(h, 0, nil); err != nil {
		t.Fatalf("hCEbreak: %v", err)
	}
	if cause := (h.TrapState >> 16) & 0xFF; cause != 3 {
		t.Errorf("C.EBREAK cause = %d, want 3", cause)
	}
}

func TestHDIIAlwaysTraps(t *testing.T) {
	h, _, _ := newTestHart()
	if err := hDII(h, 0, nil); err != nil {
		t.Fatalf("hDII: %v", err)
	}
	if h.TrapState != ComposeTrapState(0, 2) {
		t.Errorf("TrapState = 0x%X, want illegal-instruction encoding", h.TrapState)
	}
}
