package rvcore

import "errors"

// ErrSimulationStop is returned by Run when the loop terminates via a
// recognised simulation-stop sentinel — a normal stop, not a fault
// (spec.md §4.7 step 4, §6 "Exit/termination sentinels").
var ErrSimulationStop = errors.New("rvcore: simulation stopped")

// Simulation-stop sentinels: 32-bit "j ." and 16-bit "c.j ." (spec.md §4.5
// "Control transfer", §6).
const (
	sentinel32 uint32 = 0x0000006F
	sentinel16 uint32 = 0xA001
)

// causeFetchAccessFault is the fixed trap identifier used when the fetch
// stage itself can't read the code word (spec.md §4.7 step 3, §7
// "Memory access error").
const causeFetchAccessFault uint32 = 1

// fetch implements the page-safe fetch of spec.md §4.7 steps 1-3:
// translate PC; if PC and PC+2 fall in different pages, read 2 bytes
// first and only chase a second, independently-translated 2-byte read
// when those bytes turn out to encode a 32-bit instruction (quadrant 3);
// otherwise read the full 4 bytes in a single access.
func (h *Hart) fetch() (uint32, error) {
	pageMask := h.Mem.PageMask()
	samePage := (h.PC & ^pageMask) == ((h.PC + 2) & ^pageMask)

	if samePage {
		paddr, err := h.Mem.Translate(h.PC)
		if err != nil {
			return 0, err
		}
		buf := make([]byte, 4)
		if err := h.Mem.Read(paddr, 4, buf); err != nil {
			return 0, err
		}
		return leWord(buf), nil
	}

	paddr, err := h.Mem.Translate(h.PC)
	if err != nil {
		return 0, err
	}
	lo := make([]byte, 2)
	if err := h.Mem.Read(paddr, 2, lo); err != nil {
		return 0, err
	}
	half := uint32(lo[0]) | uint32(lo[1])<<8
	if half&3 != 3 {
		return half, nil
	}

	paddr2, err := h.Mem.Translate(h.PC + 2)
	if err != nil {
		return 0, err
	}
	hi := make([]byte, 2)
	if err := h.Mem.Read(paddr2, 2, hi); err != nil {
		return 0, err
	}
	return half | (uint32(hi[0])|uint32(hi[1])<<8)<<16, nil
}

func leWord(buf []byte) uint32 {
	return uint32(buf[0]) | uint32(buf[1])<<8 | uint32(buf[2])<<16 | uint32(buf[3])<<24
}

// instrLength returns 2 or 4 from the low two bits of a fetched word
// (spec.md §4.4, §4.7 step 5).
func instrLength(word uint32) uint32 {
	if word&3 == 3 {
		return 4
	}
	return 2
}

// hIllegal is installed by the loop (not the decode table) whenever
// Lookup returns nil: it advances PC by the natural length and raises an
// illegal-instruction trap (spec.md §4.4, §7 "Decode failure").
func hIllegal(h *Hart, instr uint32, d *Descriptor) error {
	h.RaiseTrap(0, 0)
	return nil
}

// Step fetches, decodes and executes exactly one instruction (spec.md
// §4.7). It returns ErrSimulationStop when a simulation-stop sentinel is
// recognised. A fetch fault is not returned as an error: it is raised as
// a trap with cause causeFetchAccessFault and Step returns nil. Any other
// non-nil error is one returned by the instruction handler.
func (h *Hart) Step() error {
	pc := h.PC
	word, err := h.fetch()
	if err != nil {
		h.NextPC = pc
		h.RaiseTrap(causeFetchAccessFault, 0)
		h.commit(pc)
		return nil
	}

	if word == sentinel32 || (word&0xFFFF) == sentinel16 {
		return ErrSimulationStop
	}

	length := instrLength(word)
	desc := h.decode.Lookup(word)
	handler := hIllegal
	opcodeIndex := -1
	if desc != nil {
		handler = desc.Handler
		opcodeIndex = desc.Index
	}

	if h.PreSync != nil && (h.Config.SyncLevel == SyncPre || h.Config.SyncLevel == SyncAll) {
		h.PreSync(h, opcodeIndex)
	}

	h.NextPC = pc + length
	if err := handler(h, word, desc); err != nil {
		return err
	}

	if h.PostSync != nil && (h.Config.SyncLevel == SyncPost || h.Config.SyncLevel == SyncAll) {
		h.PostSync(h, opcodeIndex)
	}
	h.commit(pc)
	return nil
}

// Run drives Step in a loop while pred returns true, stopping early (with
// a nil error) on ErrSimulationStop (spec.md §4.7 preconditions).
func (h *Hart) Run(startPC uint32, pred func() bool) error {
	h.PC = startPC
	for pred() {
		if err := h.Step(); err != nil {
			if errors.Is(err, ErrSimulationStop) {
				return nil
			}
			return err
		}
	}
	return nil
}
