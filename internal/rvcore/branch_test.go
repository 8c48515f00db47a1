package rvcore

import "testing"

func encodeBranch(f3, rs1N, rs2N uint32, immVal int32) uint32 {
	imm := uint32(immVal)
	b12 := (imm >> 12) & 1
	b11 := (imm >> 11) & 1
	b10_5 := (imm >> 5) & 0x3F
	b4_1 := (imm >> 1) & 0xF
	return (b12 << 31) | (b10_5 << 25) | (rs2N << 20) | (rs1N << 15) | (f3 << 12) | (b4_1 << 8) | (b11 << 7) | opBRANCH
}

func TestHBranchTakenSetsNextPC(t *testing.T) {
	h, _, _ := newTestHart()
	h.PC = 0x1000
	h.SetX(1, 5)
	h.SetX(2, 5)
	instr := encodeBranch(0b000, 1, 2, 16) // BEQ, taken, +16
	d := &Descriptor{Sub: brEQ}
	if err := hBranch(h, instr, d); err != nil {
		t.Fatalf("hBranch: %v", err)
	}
	if h.NextPC != 0x1010 {
		t.Errorf("BEQ taken: NextPC = 0x%X, want 0x1010", h.NextPC)
	}
	if h.LastBranch != BranchTaken {
		t.Errorf("BEQ taken: LastBranch = %d, want BranchTaken", h.LastBranch)
	}
}

func TestHBranchNotTakenLeavesLastBranchSequential(t *testing.T) {
	h, _, _ := newTestHart()
	h.PC = 0x1000
	h.SetX(1, 5)
	h.SetX(2, 6)
	instr := encodeBranch(0b000, 1, 2, 16) // BEQ, not taken
	d := &Descriptor{Sub: brEQ}
	if err := hBranch(h, instr, d); err != nil {
		t.Fatalf("hBranch: %v", err)
	}
	if h.LastBranch != BranchSequential {
		t.Errorf("BEQ not-taken: LastBranch = %d, want BranchSequential", h.LastBranch)
	}
}

func TestHBranchTakenToSelfIsSequential(t *testing.T) {
	h, _, _ := newTestHart()
	h.PC = 0x2000
	h.SetX(1, 1)
	h.SetX(2, 1)
	instr := encodeBranch(0b000, 1, 2, 0) // BEQ taken, offset 0 -> self
	d := &Descriptor{Sub: brEQ}
	if err := hBranch(h, instr, d); err != nil {
		t.Fatalf("hBranch: %v", err)
	}
	if h.LastBranch != BranchSequential {
		t.Errorf("taken-to-self must report BranchSequential, got %d", h.LastBranch)
	}
}

func TestHJALLinksAndSetsTarget(t *testing.T) {
	h, _, _ := newTestHart()
	h.PC = 0x4000
	// JAL x1, +0x100
	imm := uint32(0x100)
	b20 := (imm >> 20) & 1
	b19_12 := (imm >> 12) & 0xFF
	b11 := (imm >> 11) & 1
	b10_1 := (imm >> 1) & 0x3FF
	instr := (b20 << 31) | (b10_1 << 21) | (b11 << 20) | (b19_12 << 12) | (uint32(1) << 7) | opJAL
	if err := hJAL(h, instr, nil); err != nil {
		t.Fatalf("hJAL: %v", err)
	}
	if h.GetX(1) != 0x4004 {
		t.Errorf("JAL link: x1 = 0x%X, want 0x4004", h.GetX(1))
	}
	if h.NextPC != 0x4100 {
		t.Errorf("JAL target: NextPC = 0x%X, want 0x4100", h.NextPC)
	}
	if h.LastBranch != BranchTaken {
		t.Errorf("JAL: LastBranch = %d, want BranchTaken", h.LastBranch)
	}
}

func TestHJALRMasksLowBitAndIsIndirect(t *testing.T) {
	h, _, _ := newTestHart()
	h.PC = 0x8000
	h.SetX(2, 0x305) // odd base, low bit must be cleared
	instr := (uint32(4) << 20) | (2 << 15) | (1 << 7) | opJALR
	if err := hJALR(h, instr, nil); err != nil {
		t.Fatalf("hJALR: %v", err)
	}
	if h.NextPC != 0x308 {
		t.Errorf("JALR target: NextPC = 0x%X, want 0x308 (low bit cleared)", h.NextPC)
	}
	if h.GetX(1) != 0x8004 {
		t.Errorf("JALR link: x1 = 0x%X, want 0x8004", h.GetX(1))
	}
	if h.LastBranch != BranchIndirect {
		t.Errorf("JALR: LastBranch = 0x%X, want BranchIndirect", h.LastBranch)
	}
}
