package loader

import (
	"debug/elf"
	"fmt"
	"io"
)

// loadELF reads the executable segments of a 32-bit MIPS ELF file.
func loadELF(path string) (*Program, error) {
	f, err := elf.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open ELF file: %w", err)
	}
	defer func() { _ = f.Close() }()

	if f.Class != elf.ELFCLASS32 {
		return nil, fmt.Errorf("not a 32-bit ELF file")
	}

	if f.Machine != elf.EM_MIPS {
		return nil, fmt.Errorf("not a MIPS ELF file (machine type: %v)", f.Machine)
	}

	prog := &Program{
		Format:     FormatELF,
		EntryPoint: f.Entry,
	}

	for _, phdr := range f.Progs {
		if phdr.Type != elf.PT_LOAD || phdr.Flags&elf.PF_X == 0 {
			continue
		}

		data := make([]byte, phdr.Filesz)
		if phdr.Filesz > 0 {
			n, err := phdr.ReadAt(data, 0)
			if err != nil && err != io.EOF {
				return nil, fmt.Errorf("failed to read segment at 0x%x: %w", phdr.Vaddr, err)
			}
			if uint64(n) != phdr.Filesz {
				return nil, fmt.Errorf("short read for segment at 0x%x: got %d bytes, expected %d",
					phdr.Vaddr, n, phdr.Filesz)
			}
		}

		words, err := ParseBinary(data, f.ByteOrder)
		if err != nil {
			return nil, fmt.Errorf("segment at 0x%x: %w", phdr.Vaddr, err)
		}
		prog.Words = append(prog.Words, words...)
	}

	return prog, nil
}
