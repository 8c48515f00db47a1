package rvcore

// Multiply/divide sub-operation selectors (spec.md §4.5 "Multiply/divide").
const (
	mulMUL uint8 = iota
	mulMULH
	mulMULHSU
	mulMULHU
	mulDIV
	mulDIVU
	mulREM
	mulREMU
)

// hMulDiv implements MUL/MULH/MULHSU/MULHU/DIV/DIVU/REM/REMU, including
// the RISC-V special cases for division by zero and signed overflow
// (spec.md §4.5).
func hMulDiv(h *Hart, instr uint32, d *Descriptor) error {
	a := h.GetX(rs1(instr))
	b := h.GetX(rs2(instr))
	var result uint32
	switch d.Sub {
	case mulMUL:
		result = a * b
	case mulMULH:
		result = uint32(int64(int32(a)) * int64(int32(b)) >> 32)
	case mulMULHU:
		result = uint32((uint64(a) * uint64(b)) >> 32)
	case mulMULHSU:
		product := int64(int32(a)) * int64(uint64(b))
		result = uint32(product >> 32)
	case mulDIV:
		sa, sb := int32(a), int32(b)
		switch {
		case sb == 0:
			result = 0xFFFFFFFF
		case sa == -0x80000000 && sb == -1:
			result = 0x80000000
		default:
			result = uint32(sa / sb)
		}
	case mulDIVU:
		if b == 0 {
			result = 0xFFFFFFFF
		} else {
			result = a / b
		}
	case mulREM:
		sa, sb := int32(a), int32(b)
		switch {
		case sb == 0:
			result = a
		case sa == -0x80000000 && sb == -1:
			result = 0
		default:
			result = uint32(sa % sb)
		}
	case mulREMU:
		if b == 0 {
			result = a
		} else {
			result = a % b
		}
	}
	h.SetX(rd(instr), result)
	return nil
}
