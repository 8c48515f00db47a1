package rvcore

// CSR sub-operation selectors (spec.md §4.5 "CSR").
const (
	csrRW uint8 = iota
	csrRS
	csrRC
	csrRWI
	csrRSI
	csrRCI
)

func csrNum(instr uint32) uint32 { return bitSub(instr, 20, 12) }
func zimm(instr uint32) uint32   { return bitSub(instr, 15, 5) }

// hFence implements FENCE: writes the packed (pred<<4)|succ into the
// FENCE channel at key 0 (spec.md §4.5 "Fences").
func hFence(h *Hart, instr uint32, d *Descriptor) error {
	pred := bitSub(instr, 24, 4)
	succ := bitSub(instr, 20, 4)
	h.WriteChannel(ChannelFence, FenceKeyData, (pred<<4)|succ)
	return nil
}

// hFenceI implements FENCE.I: writes its immediate into the FENCE
// channel at key 1 (spec.md §4.5 "Fences").
func hFenceI(h *Hart, instr uint32, d *Descriptor) error {
	h.WriteChannel(ChannelFence, FenceKeyI, immI(instr))
	return nil
}

// hSFenceVMA implements SFENCE.VMA: writes rs1 and rs2 into the FENCE
// channel at keys 2 and 3 (spec.md §4.5 "Fences").
func hSFenceVMA(h *Hart, instr uint32, d *Descriptor) error {
	h.WriteChannel(ChannelFence, FenceKeySFenceRS1, h.GetX(rs1(instr)))
	h.WriteChannel(ChannelFence, FenceKeySFenceRS2, h.GetX(rs2(instr)))
	return nil
}

// hECALL raises (cause=11, trap_id=0) (spec.md §4.5 "System", §6).
func hECALL(h *Hart, instr uint32, d *Descriptor) error {
	h.RaiseTrap(11, 0)
	return nil
}

// hEBREAK raises (cause=3, trap_id=0); shared with C.EBREAK (spec.md
// §4.5, §6).
func hEBREAK(h *Hart, instr uint32, d *Descriptor) error {
	h.RaiseTrap(3, 0)
	return nil
}

// hXRET implements URET/SRET/MRET: leave_trap(level), restore PC from
// CSR (level<<8)|0x41, mark LAST_BRANCH indirect (spec.md §4.5 "System").
func hXRET(h *Hart, instr uint32, d *Descriptor) error {
	h.LeaveTrapTo(uint32(d.Sub))
	return nil
}

// hWFI asks the hart collaborator to suspend until the next interrupt
// (spec.md §4.5, §5). 1 = WFI per spec.md §6.
func hWFI(h *Hart, instr uint32, d *Descriptor) error {
	h.WaitUntil(1)
	return nil
}

// hCSR implements CSRRW/CSRRS/CSRRC/CSRRWI/CSRRSI/CSRRCI. CSRRS/CSRRC
// skip the write when the operand (rs1 or zimm) is zero; CSRRW/CSRRWI
// always write. CSRRW/CSRRWI additionally skip the CSR read entirely
// when rd=x0, since they have no other use for the pre-value and the
// read itself can carry side effects (spec.md §4.5 "CSR").
func hCSR(h *Hart, instr uint32, d *Descriptor) error {
	csr := csrNum(instr)
	destination := rd(instr)

	var operand uint32
	var immediateForm bool
	switch d.Sub {
	case csrRW:
		operand = h.GetX(rs1(instr))
	case csrRS, csrRC:
		operand = h.GetX(rs1(instr))
	case csrRWI:
		operand = zimm(instr)
		immediateForm = true
	case csrRSI, csrRCI:
		operand = zimm(instr)
		immediateForm = true
	}

	// CSRRW/CSRRWI only need the pre-value to populate rd, so they must
	// not read the CSR at all when rd=x0 (no read side effect); the other
	// four forms need the pre-value to compute their write regardless of
	// rd, so they read unconditionally.
	var old uint32
	switch d.Sub {
	case csrRW, csrRWI:
		if destination != 0 {
			old = h.ReadChannel(ChannelCSR, csr)
			h.SetX(destination, old)
		}
	default:
		old = h.ReadChannel(ChannelCSR, csr)
		if destination != 0 {
			h.SetX(destination, old)
		}
	}

	switch d.Sub {
	case csrRW, csrRWI:
		h.WriteChannel(ChannelCSR, csr, operand)
	case csrRS:
		if operand != 0 {
			h.WriteChannel(ChannelCSR, csr, old|operand)
		}
	case csrRC:
		if operand != 0 {
			h.WriteChannel(ChannelCSR, csr, old&^operand)
		}
	case csrRSI:
		if immediateForm && operand != 0 {
			h.WriteChannel(ChannelCSR, csr, old|operand)
		}
	case csrRCI:
		if immediateForm && operand != 0 {
			h.WriteChannel(ChannelCSR, csr, old&^operand)
		}
	}
	return nil
}
