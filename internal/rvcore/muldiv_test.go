package rvcore

import "testing"

func encodeReg(rd, rs1, rs2 uint32) uint32 {
	return rs2<<20 | rs1<<15 | rd<<7
}

func TestHMulDivMulWraps(t *testing.T) {
	h, _, _ := newTestHart()
	h.SetX(1, 0xFFFFFFFF) // -1
	h.SetX(2, 2)
	instr := encodeReg(3, 1, 2)
	if err := hMulDiv(h, instr, &Descriptor{Sub: mulMUL}); err != nil {
		t.Fatalf("hMulDiv: %v", err)
	}
	if h.GetX(3) != 0xFFFFFFFE {
		t.Errorf("MUL(-1,2) = 0x%X, want 0xFFFFFFFE", h.GetX(3))
	}
}

func TestHMulDivMulhSigned(t *testing.T) {
	h, _, _ := newTestHart()
	h.SetX(1, 0x80000000) // -2^31
	h.SetX(2, 0x80000000)
	instr := encodeReg(3, 1, 2)
	if err := hMulDiv(h, instr, &Descriptor{Sub: mulMULH}); err != nil {
		t.Fatalf("hMulDiv: %v", err)
	}
	// (-2^31) * (-2^31) = 2^62, high 32 bits = 0x40000000
	if h.GetX(3) != 0x40000000 {
		t.Errorf("MULH = 0x%X, want 0x40000000", h.GetX(3))
	}
}

func TestHMulDivDivByZeroYieldsAllOnes(t *testing.T) {
	h, _, _ := newTestHart()
	h.SetX(1, 42)
	h.SetX(2, 0)
	instr := encodeReg(3, 1, 2)
	if err := hMulDiv(h, instr, &Descriptor{Sub: mulDIV}); err != nil {
		t.Fatalf("hMulDiv: %v", err)
	}
	if h.GetX(3) != 0xFFFFFFFF {
		t.Errorf("DIV by zero = 0x%X, want 0xFFFFFFFF", h.GetX(3))
	}
}

func TestHMulDivDivOverflowCase(t *testing.T) {
	h, _, _ := newTestHart()
	h.SetX(1, 0x80000000) // INT32_MIN
	h.SetX(2, 0xFFFFFFFF) // -1
	instr := encodeReg(3, 1, 2)
	if err := hMulDiv(h, instr, &Descriptor{Sub: mulDIV}); err != nil {
		t.Fatalf("hMulDiv: %v", err)
	}
	if h.GetX(3) != 0x80000000 {
		t.Errorf("INT32_MIN / -1 = 0x%X, want 0x80000000 (overflow case)", h.GetX(3))
	}
}

func TestHMulDivRemByZeroReturnsDividend(t *testing.T) {
	h, _, _ := newTestHart()
	h.SetX(1, 42)
	h.SetX(2, 0)
	instr := encodeReg(3, 1, 2)
	if err := hMulDiv(h, instr, &Descriptor{Sub: mulREM}); err != nil {
		t.Fatalf("hMulDiv: %v", err)
	}
	if h.GetX(3) != 42 {
		t.Errorf("REM by zero = %d, want 42 (the dividend)", h.GetX(3))
	}
}

func TestHMulDivDivuAndRemu(t *testing.T) {
	h, _, _ := newTestHart()
	h.SetX(1, 10)
	h.SetX(2, 3)
	instr := encodeReg(3, 1, 2)
	if err := hMulDiv(h, instr, &Descriptor{Sub: mulDIVU}); err != nil {
		t.Fatalf("hMulDiv: %v", err)
	}
	if h.GetX(3) != 3 {
		t.Errorf("DIVU(10,3) = %d, want 3", h.GetX(3))
	}

	instr = encodeReg(4, 1, 2)
	if err := hMulDiv(h, instr, &Descriptor{Sub: mulREMU}); err != nil {
		t.Fatalf("hMulDiv: %v", err)
	}
	if h.GetX(4) != 1 {
		t.Errorf("REMU(10,3) = %d, want 1", h.GetX(4))
	}
}
