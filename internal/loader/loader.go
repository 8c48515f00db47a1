// Package loader places a pre-assembled RV32 program image into a
// memsys.Memory. It is grounded on the teacher's loader.LoadProgramIntoVM
// (loader/loader.go), re-targeted: RV32 programs arrive pre-assembled, so
// everything that package does to drive an in-repo assembler — directive
// processing, symbol-table resolution, literal-pool placement — has no
// equivalent here (see DESIGN.md). What survives is the shape: pick (or
// validate) an entry point, make sure a segment covers it, and copy bytes
// in.
package loader

import (
	"bytes"
	"debug/elf"
	"fmt"

	"github.com/rv32iss/rv32iss/internal/memsys"
)

// LoadResult reports where execution should begin.
type LoadResult struct {
	EntryPoint uint32
}

// LoadRaw copies a flat binary image starting at entryPoint, first mapping
// a segment at entryPoint if no existing segment contains that address —
// mirroring the teacher's "low-memory" fallback for programs
// that .org below the code segment (loader/loader.go).
func LoadRaw(mem *memsys.Memory, image []byte, entryPoint uint32) (LoadResult, error) {
	ensureSegmentFor(mem, entryPoint, uint32(len(image)))
	if err := mem.LoadBytes(entryPoint, image); err != nil {
		return LoadResult{}, fmt.Errorf("loading raw image: %w", err)
	}
	return LoadResult{EntryPoint: entryPoint}, nil
}

// LoadELF loads an RV32 ELF executable's loadable segments via the
// standard library's debug/elf reader — no pack example wires a
// third-party ELF/object parser for a freestanding simulator, so the
// standard library is used here directly (see DESIGN.md).
func LoadELF(mem *memsys.Memory, raw []byte) (LoadResult, error) {
	f, err := elf.NewFile(bytes.NewReader(raw))
	if err != nil {
		return LoadResult{}, fmt.Errorf("parsing ELF: %w", err)
	}
	defer f.Close()

	if f.Class != elf.ELFCLASS32 {
		return LoadResult{}, fmt.Errorf("not a 32-bit ELF")
	}
	if f.Machine != elf.EM_RISCV {
		return LoadResult{}, fmt.Errorf("ELF machine %s is not RISC-V", f.Machine)
	}

	for _, prog := range f.Progs {
		if prog.Type != elf.PT_LOAD || prog.Filesz == 0 {
			continue
		}
		data := make([]byte, prog.Filesz)
		if _, err := prog.ReadAt(data, 0); err != nil {
			return LoadResult{}, fmt.Errorf("reading PT_LOAD segment at 0x%08X: %w", prog.Vaddr, err)
		}
		ensureSegmentFor(mem, uint32(prog.Vaddr), uint32(prog.Memsz))
		if err := mem.LoadBytes(uint32(prog.Vaddr), data); err != nil {
			return LoadResult{}, fmt.Errorf("loading PT_LOAD segment at 0x%08X: %w", prog.Vaddr, err)
		}
	}

	return LoadResult{EntryPoint: uint32(f.Entry)}, nil
}

// ensureSegmentFor mirrors the teacher's entry-point-outside-segments
// fallback (loader/loader.go): if no mapped segment contains start, map a
// segment of size bytes (4 when size is 0) at start. Only start is
// checked; a range that runs past the end of its segment is not extended.
func ensureSegmentFor(mem *memsys.Memory, start, size uint32) {
	if size == 0 {
		size = 4
	}
	for _, seg := range mem.Segments {
		if start >= seg.Start && start < seg.Start+seg.Size {
			return
		}
	}
	mem.AddSegment(fmt.Sprintf("loaded-0x%08x", start), start, size, memsys.PermRead|memsys.PermWrite|memsys.PermExecute)
}
