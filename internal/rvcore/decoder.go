package rvcore

import "sort"

// Handler implements one instruction's semantics against hart h. instr is
// the full fetched code word; for 16-bit (compressed) forms only the low
// 16 bits are meaningful. d is the winning descriptor, carrying Sub for
// handler families that share one function across several mnemonics.
type Handler func(h *Hart, instr uint32, d *Descriptor) error

// Descriptor is a static instruction table entry: bit pattern, mask, and
// the handler implementing its semantics (spec.md §3 "Instruction
// descriptor", §4.2).
type Descriptor struct {
	Name    string
	Length  uint8 // 16 or 32
	Value   uint32
	Mask    uint32
	Handler Handler
	Sub     uint8 // family-specific sub-operation selector
	Index   int   // position in Descriptors; used as the opcode index for tracing
}

const quadrantSelectBits = 2

// DecodeTables holds the four dense per-quadrant lookup tables built once
// at hart construction (spec.md §3 "Decode tables", §4.3).
type DecodeTables struct {
	tables [4][]*Descriptor
	bitPos [4][]uint
}

// quadrantOf returns the two-bit quadrant a descriptor's encoding lives
// in: 3 for every 32-bit descriptor (low two bits are always 0b11 for the
// base ISA), and the literal low two bits of Value for compressed forms.
func quadrantOf(d *Descriptor) uint32 {
	if d.Length == 32 {
		return 3
	}
	return d.Value & 3
}

// projectValue gathers the bits of v at the given ascending bit positions
// into a compact, right-aligned index. This is the software PEXT the
// decoder builder needs and the standard library has no instruction for
// (spec.md §4.3).
func projectValue(v uint32, bitPos []uint) uint32 {
	var out uint32
	for i, pos := range bitPos {
		if v&(uint32(1)<<pos) != 0 {
			out |= uint32(1) << uint(i)
		}
	}
	return out
}

// BuildDecodeTables expands every descriptor's mask into the dense
// per-quadrant lookup table (spec.md §4.3). Descriptors are sorted by
// popcount(mask) descending before expansion, so a specialisation (e.g.
// C.NOP within C.ADDI, C.EBREAK within C.ADD) claims its slot before the
// more general sibling is expanded into the same table; expand only ever
// writes into a still-nil slot, so the first writer — the more specific
// pattern — wins the collision (spec.md §4.2, §9 "Decoder collision
// policy").
func BuildDecodeTables(descs []Descriptor) *DecodeTables {
	ptrs := make([]*Descriptor, len(descs))
	for i := range descs {
		ptrs[i] = &descs[i]
	}
	sort.SliceStable(ptrs, func(i, j int) bool {
		return popcount32(ptrs[i].Mask) > popcount32(ptrs[j].Mask)
	})

	dt := &DecodeTables{}
	for q := uint32(0); q < 4; q++ {
		var union uint32
		for _, d := range ptrs {
			if quadrantOf(d) != q {
				continue
			}
			union |= d.Mask >> quadrantSelectBits
		}
		var bitPos []uint
		for b := uint(0); b < 30; b++ {
			if union&(uint32(1)<<b) != 0 {
				bitPos = append(bitPos, b)
			}
		}
		dt.bitPos[q] = bitPos
		dt.tables[q] = make([]*Descriptor, 1<<len(bitPos))
	}

	for _, d := range ptrs {
		q := quadrantOf(d)
		expand(dt.tables[q], dt.bitPos[q], d.Mask>>quadrantSelectBits, d.Value>>quadrantSelectBits, d)
	}
	return dt
}

// expand writes d into every table slot its (mask, value) pair matches:
// bits forced by mask are fixed, bits left free by mask are enumerated
// over both settings (spec.md §4.3 "recursive bit walk").
func expand(table []*Descriptor, bitPos []uint, mask, value uint32, d *Descriptor) {
	base := projectValue(value&mask, bitPos)
	var free []int
	for i, pos := range bitPos {
		if mask&(uint32(1)<<pos) == 0 {
			free = append(free, i)
		}
	}
	combos := 1 << len(free)
	for c := 0; c < combos; c++ {
		idx := base
		for j, bitIdx := range free {
			if c&(1<<j) != 0 {
				idx |= uint32(1) << uint(bitIdx)
			}
		}
		if table[idx] == nil {
			table[idx] = d
		}
	}
}

// Lookup maps a fetched code word to its winning descriptor, or nil if no
// descriptor claims the slot (spec.md §4.4).
func (dt *DecodeTables) Lookup(instr uint32) *Descriptor {
	q := instr & 3
	bitPos := dt.bitPos[q]
	idx := projectValue(instr>>quadrantSelectBits, bitPos)
	return dt.tables[q][idx]
}
