// Package memsys implements the memory, CSR, fence, and reservation
// collaborator the rvcore package consumes through its Port interfaces
// (spec.md §6). It is grounded on the teacher's segmented vm.Memory, with
// permissions/alignment kept and the address space re-targeted to a flat
// RV32 layout.
package memsys

import "fmt"

// Memory segments, re-targeted from the teacher's vm.Memory layout
// (CodeSegmentStart/DataSegmentStart/... in vm/memory.go) to a flat
// RV32 address map.
const (
	CodeSegmentStart  = 0x00001000
	CodeSegmentSize   = 0x00100000 // 1MB
	DataSegmentStart  = 0x00200000
	DataSegmentSize   = 0x00100000 // 1MB
	StackSegmentStart = 0x00300000
	StackSegmentSize  = 0x00040000 // 256KB
)

// PageSize/PageOffsetMask back MemoryPort.PageMask (spec.md §4.7 step 2).
const (
	PageSize       = 0x1000
	PageOffsetMask = PageSize - 1
)

// Permission mirrors the teacher's MemoryPermission bitset
// (vm/memory.go).
type Permission byte

const (
	PermNone    Permission = 0
	PermRead    Permission = 1 << 0
	PermWrite   Permission = 1 << 1
	PermExecute Permission = 1 << 2
)

// Segment is one mapped region of the address space.
type Segment struct {
	Name        string
	Start       uint32
	Size        uint32
	Data        []byte
	Permissions Permission
}

// Memory is a flat, segmented, little-endian physical address space
// (spec.md §6 "Memory subsystem ... out of scope, external collaborator").
// Translate is the identity function: this module does not model
// supervisor-mode address translation, per spec.md §1 Non-goals.
type Memory struct {
	Segments    []*Segment
	StrictAlign bool
	ReadCount   uint64
	WriteCount  uint64
}

// NewMemory builds the default code/data/stack layout.
func NewMemory() *Memory {
	m := &Memory{StrictAlign: true}
	m.AddSegment("code", CodeSegmentStart, CodeSegmentSize, PermRead|PermExecute)
	m.AddSegment("data", DataSegmentStart, DataSegmentSize, PermRead|PermWrite)
	m.AddSegment("stack", StackSegmentStart, StackSegmentSize, PermRead|PermWrite)
	return m
}

// AddSegment maps a new region.
func (m *Memory) AddSegment(name string, start, size uint32, perm Permission) {
	m.Segments = append(m.Segments, &Segment{
		Name: name, Start: start, Size: size, Data: make([]byte, size), Permissions: perm,
	})
}

func (m *Memory) find(address uint32) (*Segment, uint32, error) {
	for _, seg := range m.Segments {
		if address >= seg.Start && address < seg.Start+seg.Size {
			return seg, address - seg.Start, nil
		}
	}
	return nil, 0, fmt.Errorf("memory access violation: address 0x%08X is not mapped", address)
}

func (m *Memory) checkAlign(address uint32, size int) error {
	if !m.StrictAlign {
		return nil
	}
	if (size == 4 && address&3 != 0) || (size == 2 && address&1 != 0) {
		return fmt.Errorf("unaligned access of size %d at 0x%08X", size, address)
	}
	return nil
}

// PageMask implements rvcore.MemoryPort.
func (m *Memory) PageMask() uint32 { return PageOffsetMask }

// Translate implements rvcore.MemoryPort. No virtual memory is modelled
// (spec.md §1 Non-goals); this only validates the address is mapped.
func (m *Memory) Translate(vaddr uint32) (uint32, error) {
	if _, _, err := m.find(vaddr); err != nil {
		return 0, err
	}
	return vaddr, nil
}

// Read implements rvcore.MemoryPort: little-endian, permission- and
// alignment-checked (spec.md §6).
func (m *Memory) Read(paddr uint32, size int, dst []byte) error {
	if err := m.checkAlign(paddr, size); err != nil {
		return err
	}
	seg, offset, err := m.find(paddr)
	if err != nil {
		return err
	}
	if offset+uint32(size) > seg.Size {
		return fmt.Errorf("access at 0x%08X spans past the end of segment %q", paddr, seg.Name)
	}
	if seg.Permissions&PermRead == 0 {
		return fmt.Errorf("read permission denied for segment %q at 0x%08X", seg.Name, paddr)
	}
	copy(dst, seg.Data[offset:offset+uint32(size)])
	m.ReadCount++
	return nil
}

// Write implements rvcore.MemoryPort.
func (m *Memory) Write(paddr uint32, size int, src []byte) error {
	if err := m.checkAlign(paddr, size); err != nil {
		return err
	}
	seg, offset, err := m.find(paddr)
	if err != nil {
		return err
	}
	if offset+uint32(size) > seg.Size {
		return fmt.Errorf("access at 0x%08X spans past the end of segment %q", paddr, seg.Name)
	}
	if seg.Permissions&PermWrite == 0 {
		return fmt.Errorf("write permission denied for segment %q at 0x%08X", seg.Name, paddr)
	}
	copy(seg.Data[offset:offset+uint32(size)], src)
	m.WriteCount++
	return nil
}

// LoadBytes copies prog into the backing array of the segment containing
// vaddr, starting at vaddr. It does not check segment permissions; used by
// internal/loader.
func (m *Memory) LoadBytes(vaddr uint32, prog []byte) error {
	seg, offset, err := m.find(vaddr)
	if err != nil {
		return err
	}
	if offset+uint32(len(prog)) > seg.Size {
		return fmt.Errorf("program of %d bytes does not fit in segment %q at 0x%08X", len(prog), seg.Name, vaddr)
	}
	copy(seg.Data[offset:], prog)
	return nil
}
