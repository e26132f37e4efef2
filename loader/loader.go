// Package loader reads MIPS programs from disk as lists of instruction
// words.
//
// Three formats are recognized:
//   - ELF: 32-bit MIPS executables; the words of every executable PT_LOAD
//     segment are read in program-header order
//   - Binary: files ending in .bin are read as big-endian 32-bit words
//   - Text: anything else is read as hex words, eight digits each, separated
//     by whitespace or commas; '#', ';' and '//' start a comment
package loader

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sarchlab/pipeviz/insts"
)

// Format identifies the on-disk encoding of a program.
type Format uint8

// Program formats.
const (
	FormatText Format = iota
	FormatBinary
	FormatELF
)

func (f Format) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatBinary:
		return "binary"
	case FormatELF:
		return "elf"
	default:
		return "unknown"
	}
}

// ErrEmptyProgram is returned when a file holds no instruction words.
var ErrEmptyProgram = errors.New("program has no instructions")

var elfMagic = []byte{0x7f, 'E', 'L', 'F'}

// Program is a loaded instruction sequence.
type Program struct {
	// Path is the file the program was loaded from.
	Path string
	// Format is the detected file format.
	Format Format
	// EntryPoint is the ELF entry address; zero for other formats.
	EntryPoint uint64
	// Words are the instruction words in program order.
	Words []uint32
}

// Strings returns the words as eight-digit hex strings.
func (p *Program) Strings() []string {
	s := make([]string, len(p.Words))
	for i, w := range p.Words {
		s[i] = insts.FormatWord(w)
	}
	return s
}

// Load reads a program file, detecting its format from its content and
// extension.
func Load(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open program file: %w", err)
	}

	var prog *Program
	switch {
	case bytes.HasPrefix(data, elfMagic):
		prog, err = loadELF(path)
	case strings.EqualFold(filepath.Ext(path), ".bin"):
		prog = &Program{Format: FormatBinary}
		prog.Words, err = ParseBinary(data, binary.BigEndian)
	default:
		prog = &Program{Format: FormatText}
		prog.Words, err = ParseText(string(data))
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	if len(prog.Words) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyProgram)
	}

	prog.Path = path
	return prog, nil
}

// ParseText parses hex instruction words from text.
func ParseText(text string) ([]uint32, error) {
	var words []uint32

	for n, line := range strings.Split(text, "\n") {
		line = stripComment(line)
		fields := strings.FieldsFunc(line, func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\r'
		})

		for _, field := range fields {
			w, err := insts.ParseWord(field)
			if err != nil {
				return nil, fmt.Errorf("line %d: %w", n+1, err)
			}
			words = append(words, w)
		}
	}

	return words, nil
}

// ParseBinary splits data into 32-bit words using order.
func ParseBinary(data []byte, order binary.ByteOrder) ([]uint32, error) {
	if len(data)%4 != 0 {
		return nil, fmt.Errorf("binary size %d is not a multiple of 4", len(data))
	}

	words := make([]uint32, len(data)/4)
	for i := range words {
		words[i] = order.Uint32(data[i*4:])
	}
	return words, nil
}

func stripComment(line string) string {
	for _, marker := range []string{"#", ";", "//"} {
		if i := strings.Index(line, marker); i >= 0 {
			line = line[:i]
		}
	}
	return line
}
