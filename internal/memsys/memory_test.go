package memsys

import "testing"

func TestNewMemoryDefaultSegments(t *testing.T) {
	m := NewMemory()
	if len(m.Segments) != 3 {
		t.Fatalf("NewMemory: %d segments, want 3", len(m.Segments))
	}
	if _, _, err := m.find(CodeSegmentStart); err != nil {
		t.Errorf("code segment not mapped at 0x%08X: %v", CodeSegmentStart, err)
	}
	if _, _, err := m.find(DataSegmentStart); err != nil {
		t.Errorf("data segment not mapped at 0x%08X: %v", DataSegmentStart, err)
	}
	if _, _, err := m.find(StackSegmentStart); err != nil {
		t.Errorf("stack segment not mapped at 0x%08X: %v", StackSegmentStart, err)
	}
}

func TestMemoryReadWriteRoundTrip(t *testing.T) {
	m := NewMemory()
	src := []byte{0x78, 0x56, 0x34, 0x12}
	if err := m.Write(DataSegmentStart, 4, src); err != nil {
		t.Fatalf("Write: %v", err)
	}
	dst := make([]byte, 4)
	if err := m.Read(DataSegmentStart, 4, dst); err != nil {
		t.Fatalf("Read: %v", err)
	}
	for i := range src {
		if dst[i] != src[i] {
			t.Fatalf("round-trip byte %d = 0x%02X, want 0x%02X", i, dst[i], src[i])
		}
	}
}

func TestMemoryWriteDeniedOnReadOnlySegment(t *testing.T) {
	m := NewMemory()
	err := m.Write(CodeSegmentStart, 4, []byte{1, 2, 3, 4})
	if err == nil {
		t.Fatalf("expected write-permission error on code segment")
	}
}

func TestMemoryReadDeniedWithoutPermRead(t *testing.T) {
	m := NewMemory()
	m.AddSegment("mmio", 0x500000, 0x1000, PermWrite)
	err := m.Read(0x500000, 4, make([]byte, 4))
	if err == nil {
		t.Fatalf("expected read-permission error on write-only segment")
	}
}

func TestMemoryUnalignedAccessRejectedWhenStrict(t *testing.T) {
	m := NewMemory()
	m.StrictAlign = true
	if err := m.Write(DataSegmentStart+1, 4, make([]byte, 4)); err == nil {
		t.Errorf("expected alignment error for unaligned word write")
	}
	if err := m.Write(DataSegmentStart+1, 2, make([]byte, 2)); err == nil {
		t.Errorf("expected alignment error for unaligned halfword write")
	}
}

func TestMemoryUnalignedAccessAllowedWhenNotStrict(t *testing.T) {
	m := NewMemory()
	m.StrictAlign = false
	if err := m.Write(DataSegmentStart+1, 4, make([]byte, 4)); err != nil {
		t.Errorf("unexpected alignment error with StrictAlign=false: %v", err)
	}
}

func TestMemoryUnmappedAddressErrors(t *testing.T) {
	m := NewMemory()
	if _, err := m.Translate(0xFFFFFFFF); err == nil {
		t.Errorf("expected translate error for unmapped address")
	}
}

func TestMemoryAccessSpanningPastSegmentEndErrors(t *testing.T) {
	m := NewMemory()
	last := uint32(DataSegmentStart + DataSegmentSize - 2)
	if err := m.Write(last, 4, make([]byte, 4)); err == nil {
		t.Errorf("expected out-of-bounds error writing 4 bytes at segment tail")
	}
}

func TestLoadBytesPlacesProgramAtStart(t *testing.T) {
	m := NewMemory()
	m.Segments[0].Permissions |= PermWrite // LoadBytes itself does not check permissions
	prog := []byte{0xAA, 0xBB, 0xCC, 0xDD}
	if err := m.LoadBytes(CodeSegmentStart, prog); err != nil {
		t.Fatalf("LoadBytes: %v", err)
	}
	dst := make([]byte, 4)
	if err := m.Read(CodeSegmentStart, 4, dst); err != nil {
		t.Fatalf("Read back: %v", err)
	}
	for i := range prog {
		if dst[i] != prog[i] {
			t.Fatalf("byte %d = 0x%02X, want 0x%02X", i, dst[i], prog[i])
		}
	}
}

func TestPageMaskMatchesPageSize(t *testing.T) {
	m := NewMemory()
	if m.PageMask() != PageSize-1 {
		t.Errorf("PageMask() = 0x%X, want 0x%X", m.PageMask(), PageSize-1)
	}
}
