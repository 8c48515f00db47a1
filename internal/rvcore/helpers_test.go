package rvcore

// fakeMem is a flat, unsegmented little-endian memory backing used only by
// tests: real address translation/permission checking lives in
// internal/memsys and is exercised by that package's own tests.
type fakeMem struct {
	bytes []byte
}

func newFakeMem(size int) *fakeMem {
	return &fakeMem{bytes: make([]byte, size)}
}

func (m *fakeMem) Translate(vaddr uint32) (uint32, error) { return vaddr, nil }
func (m *fakeMem) PageMask() uint32                       { return 0xFFF }

func (m *fakeMem) Read(paddr uint32, size int, dst []byte) error {
	copy(dst, m.bytes[paddr:int(paddr)+size])
	return nil
}

func (m *fakeMem) Write(paddr uint32, size int, src []byte) error {
	copy(m.bytes[paddr:int(paddr)+size], src[:size])
	return nil
}

func (m *fakeMem) writeWord(addr, word uint32) {
	m.bytes[addr] = byte(word)
	m.bytes[addr+1] = byte(word >> 8)
	m.bytes[addr+2] = byte(word >> 16)
	m.bytes[addr+3] = byte(word >> 24)
}

func (m *fakeMem) writeHalf(addr uint32, half uint16) {
	m.bytes[addr] = byte(half)
	m.bytes[addr+1] = byte(half >> 8)
}

// fakeChan is a minimal ChannelPort/TrapSink double: CSRs in a plain map,
// trap entry always vectors to a fixed address, and xRET reads its
// restored PC from the csr map (0 unless a test sets it).
type fakeChan struct {
	csr         map[uint32]uint32
	res         map[uint32]uint32
	fence       map[uint32]uint32
	csrReads    int
	enteredTrap bool
	lastTrap    uint32
	lastEPC     uint32
	leftLevel   uint32
	waited      uint32
	vector      uint32
}

func newFakeChan() *fakeChan {
	return &fakeChan{
		csr:   make(map[uint32]uint32),
		res:   make(map[uint32]uint32),
		fence: make(map[uint32]uint32),
		vector: 0x100,
	}
}

func (c *fakeChan) ReadChannel(ch Channel, key uint32) uint32 {
	switch ch {
	case ChannelCSR:
		c.csrReads++
		return c.csr[key]
	case ChannelRes:
		return c.res[key]
	case ChannelFence:
		return c.fence[key]
	}
	return 0
}

func (c *fakeChan) WriteChannel(ch Channel, key uint32, value uint32) {
	switch ch {
	case ChannelCSR:
		c.csr[key] = value
	case ChannelRes:
		c.res[key] = value
	case ChannelFence:
		c.fence[key] = value
	}
}

func (c *fakeChan) EnterTrap(trapState, epc uint32) uint32 {
	c.enteredTrap = true
	c.lastTrap = trapState
	c.lastEPC = epc
	return c.vector
}

func (c *fakeChan) LeaveTrap(level uint32) { c.leftLevel = level }
func (c *fakeChan) WaitUntil(kind uint32)  { c.waited = kind }
func (c *fakeChan) DisassOutput(pc uint32, text string) {}

func newTestHart() (*Hart, *fakeMem, *fakeChan) {
	mem := newFakeMem(0x10000)
	ch := newFakeChan()
	h := NewHart(Collaborator{Mem: mem, Chan: ch, Trap: ch}, HartConfig{})
	return h, mem, ch
}
