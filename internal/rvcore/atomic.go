package rvcore

// AMO sub-operation selectors (spec.md §4.5 "Atomic (A)").
const (
	amoLR uint8 = iota
	amoSC
	amoSWAP
	amoADD
	amoXOR
	amoAND
	amoOR
	amoMIN
	amoMAX
	amoMINU
	amoMAXU
)

const reservedMark uint32 = 0xFFFFFFFF

func (h *Hart) loadWord(paddr uint32) (uint32, error) {
	buf := make([]byte, 4)
	if err := h.Mem.Read(paddr, 4, buf); err != nil {
		return 0, err
	}
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24, nil
}

func (h *Hart) storeWord(paddr, value uint32) error {
	buf := []byte{byte(value), byte(value >> 8), byte(value >> 16), byte(value >> 24)}
	return h.Mem.Write(paddr, 4, buf)
}

// hLRSC implements LR.W and SC.W. LR.W sign-extends the loaded word into
// rd and places a reservation; SC.W checks the RES channel and only
// writes memory on success, clearing the reservation when it does
// (spec.md §4.5).
func hLRSC(h *Hart, instr uint32, d *Descriptor) error {
	ea := h.GetX(rs1(instr))
	paddr, err := h.Mem.Translate(ea)
	if err != nil {
		h.RaiseTrap(causeLoadAccessFault, 0)
		return nil
	}

	switch d.Sub {
	case amoLR:
		word, err := h.loadWord(paddr)
		if err != nil {
			h.RaiseTrap(causeLoadAccessFault, 0)
			return nil
		}
		h.SetX(rd(instr), word)
		h.WriteChannel(ChannelRes, ea, reservedMark)
	case amoSC:
		reserved := h.ReadChannel(ChannelRes, ea)
		if reserved != 0 {
			if err := h.storeWord(paddr, h.GetX(rs2(instr))); err != nil {
				h.RaiseTrap(causeStoreAccessFault, 0)
				return nil
			}
			h.WriteChannel(ChannelRes, ea, 0)
			h.SetX(rd(instr), 0)
		} else {
			h.SetX(rd(instr), 1)
		}
	}
	return nil
}

// hAMO implements AMOSWAP/ADD/XOR/AND/OR/MIN/MAX/MINU/MAXU.W: read the
// current word (sign-extended into rd), compute the new value against
// rs2, write it back as one observable event (spec.md §4.5).
func hAMO(h *Hart, instr uint32, d *Descriptor) error {
	ea := h.GetX(rs1(instr))
	paddr, err := h.Mem.Translate(ea)
	if err != nil {
		h.RaiseTrap(causeLoadAccessFault, 0)
		return nil
	}
	old, err := h.loadWord(paddr)
	if err != nil {
		h.RaiseTrap(causeLoadAccessFault, 0)
		return nil
	}
	operand := h.GetX(rs2(instr))
	var next uint32
	switch d.Sub {
	case amoSWAP:
		next = operand
	case amoADD:
		next = old + operand
	case amoXOR:
		next = old ^ operand
	case amoAND:
		next = old & operand
	case amoOR:
		next = old | operand
	case amoMIN:
		if int32(old) < int32(operand) {
			next = old
		} else {
			next = operand
		}
	case amoMAX:
		if int32(old) > int32(operand) {
			next = old
		} else {
			next = operand
		}
	case amoMINU:
		if old < operand {
			next = old
		} else {
			next = operand
		}
	case amoMAXU:
		if old > operand {
			next = old
		} else {
			next = operand
		}
	}
	if err := h.storeWord(paddr, next); err != nil {
		h.RaiseTrap(causeStoreAccessFault, 0)
		return nil
	}
	h.SetX(rd(instr), old)
	return nil
}
