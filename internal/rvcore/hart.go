package rvcore

// SyncLevel controls how much per-instruction observation the hart records
// for tracing; it mirrors the teacher's trace/statistics knobs, generalised
// to the core's pre/post-sync observation points (spec.md §4.5 step 1/6).
type SyncLevel int

const (
	SyncNone SyncLevel = iota
	SyncPre
	SyncPost
	SyncAll
)

// HartConfig carries the configuration the core consumes, per spec.md §6
// "Configuration consumed by the core".
type HartConfig struct {
	DisassEnabled bool
	SyncLevel     SyncLevel
	DebugEnabled  bool
}

// LastBranch sentinel values (spec.md §3).
const (
	BranchSequential uint32 = 0
	BranchTaken      uint32 = 1
	BranchIndirect   uint32 = 0xFFFFFFFF
)

// trapPending is the always-set high bit of a non-zero TRAP_STATE.
const trapPending uint32 = 0x80 << 24

// ComposeTrapState packs a pending trap into the TRAP_STATE encoding from
// spec.md §3: 0x80<<24 | (cause<<16) | trap_id.
func ComposeTrapState(cause, trapID uint32) uint32 {
	return trapPending | (cause << 16) | (trapID & 0xFFFF)
}

// Hart is the architectural state of a single RV32IMAC hardware thread
// (spec.md §3). It is owned exclusively by its own execution loop; nothing
// outside Step/Run ever mutates it concurrently.
type Hart struct {
	X          [32]uint32
	PC         uint32
	NextPC     uint32
	LastBranch uint32
	TrapState  uint32

	Cycles uint64

	Collaborator
	Config HartConfig

	decode *DecodeTables

	// PreSync/PostSync are optional observation hooks recorded around each
	// instruction (spec.md §4.5 steps 1 and 6). Nil by default.
	PreSync  func(h *Hart, opcodeIndex int)
	PostSync func(h *Hart, opcodeIndex int)
}

// NewHart builds a hart with its decode tables constructed from the
// descriptor list once, at startup (spec.md §3 "Lifecycles").
func NewHart(collab Collaborator, cfg HartConfig) *Hart {
	return &Hart{
		Collaborator: collab,
		Config:       cfg,
		decode:       BuildDecodeTables(Descriptors),
	}
}

// Reset clears architectural state. It does not rebuild decode tables —
// those never change for the life of the hart (spec.md §3 "Lifecycles").
func (h *Hart) Reset() {
	h.X = [32]uint32{}
	h.PC = 0
	h.NextPC = 0
	h.LastBranch = BranchSequential
	h.TrapState = 0
	h.Cycles = 0
}

// GetX reads general-purpose register r. X[0] always reads as zero.
func (h *Hart) GetX(r uint32) uint32 {
	if r == 0 {
		return 0
	}
	return h.X[r&0x1F]
}

// SetX writes general-purpose register r. Writes to X[0] are silently
// dropped, satisfying the invariant in spec.md §3.
func (h *Hart) SetX(r, v uint32) {
	if r == 0 {
		return
	}
	h.X[r&0x1F] = v
}

// RaiseTrap composes TRAP_STATE and parks NEXT_PC at the "do not advance"
// sentinel, per spec.md §4.6. The fetch loop's epilogue (commit)
// hands the composed state to the hart's TrapSink and overwrites NEXT_PC
// with the vector address the collaborator returns.
func (h *Hart) RaiseTrap(cause, trapID uint32) {
	h.TrapState = ComposeTrapState(cause, trapID)
	h.NextPC = 0xFFFFFFFF
}

// ReadChannel/WriteChannel/WaitUntil/Disassemble forward to the hart's
// channel and trap collaborators; handlers call these instead of reaching
// through h.Chan/h.Trap directly (spec.md §6).
func (h *Hart) ReadChannel(ch Channel, key uint32) uint32 {
	return h.Chan.ReadChannel(ch, key)
}

func (h *Hart) WriteChannel(ch Channel, key, value uint32) {
	h.Chan.WriteChannel(ch, key, value)
}

func (h *Hart) WaitUntil(kind uint32) {
	h.Trap.WaitUntil(kind)
}

func (h *Hart) Disassemble(pc uint32, text string) {
	if h.Config.DisassEnabled {
		h.Trap.DisassOutput(pc, text)
	}
}

// LeaveTrapTo performs the xRET protocol from spec.md §4.5 "System": ask
// the collaborator to unwind privilege, then read the restored PC from CSR
// (level<<8)|0x41 and set NEXT_PC/LAST_BRANCH accordingly.
func (h *Hart) LeaveTrapTo(level uint32) {
	h.Trap.LeaveTrap(level)
	h.NextPC = h.Chan.ReadChannel(ChannelCSR, xretPCCSR(level))
	h.LastBranch = BranchIndirect
}

// commit implements the tail of the epilogue shared by every handler
// (spec.md §4.5 steps 7-8): trap hand-off, then the PC commit. The
// executor calls this after any post-sync observation; hoisting it out of
// the 99 handlers (instead of repeating it in each, as the reference
// implementation's per-handler C function does) changes nothing
// observable and avoids owning the boilerplate 99 times.
func (h *Hart) commit(pc uint32) {
	if h.TrapState != 0 {
		h.LastBranch = BranchIndirect
		vector := h.Trap.EnterTrap(h.TrapState, pc)
		h.NextPC = vector
		h.TrapState = 0
	}
	h.PC = h.NextPC
}
