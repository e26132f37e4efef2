// Package programs provides sample MIPS programs and a harness that
// schedules them under every hazard-handling mode.
package programs

import (
	"fmt"
	"sort"

	"github.com/sarchlab/pipeviz/insts"
)

// Program is a named instruction sequence.
type Program struct {
	// Name identifies the program
	Name string

	// Description explains which pipeline behavior the program shows
	Description string

	// Words are the instruction words in program order
	Words []uint32
}

// Strings returns the words as eight-digit hex strings, the form accepted
// by the controller.
func (p Program) Strings() []string {
	s := make([]string, len(p.Words))
	for i, w := range p.Words {
		s[i] = insts.FormatWord(w)
	}
	return s
}

// All returns the sample programs in a stable order.
func All() []Program {
	return []Program{
		independent(),
		loadUse(),
		chain(),
		storeAfterLoad(),
		mixed(),
	}
}

// Names returns the names of all sample programs, sorted.
func Names() []string {
	all := All()
	names := make([]string, len(all))
	for i, p := range all {
		names[i] = p.Name
	}
	sort.Strings(names)
	return names
}

// Get returns the sample program called name.
func Get(name string) (Program, error) {
	for _, p := range All() {
		if p.Name == name {
			return p, nil
		}
	}
	return Program{}, fmt.Errorf("unknown program %q (available: %v)", name, Names())
}

func independent() Program {
	return Program{
		Name:        "independent",
		Description: "4 instructions with no register dependencies - ideal CPI in every mode",
		Words: []uint32{
			EncodeADDI(2, 1, 5),
			EncodeADDI(4, 3, 1),
			EncodeORI(6, 5, 7),
			EncodeADD(9, 7, 8),
		},
	}
}

func loadUse() Program {
	return Program{
		Name:        "load-use",
		Description: "lw followed by a consumer of the loaded register - one bubble when stalling",
		Words: []uint32{
			EncodeLW(8, 9, 0),
			EncodeADD(10, 8, 11),
		},
	}
}

func chain() Program {
	return Program{
		Name:        "chain",
		Description: "4 addi instructions each reading the previous result",
		Words: []uint32{
			EncodeADDI(8, 0, 1),
			EncodeADDI(9, 8, 1),
			EncodeADDI(10, 9, 1),
			EncodeADDI(11, 10, 1),
		},
	}
}

func storeAfterLoad() Program {
	return Program{
		Name:        "store-after-load",
		Description: "sw of a freshly loaded value - stores read rt as data",
		Words: []uint32{
			EncodeLW(8, 9, 0),
			EncodeSW(8, 9, 4),
		},
	}
}

func mixed() Program {
	return Program{
		Name:        "mixed",
		Description: "load-use pair, an independent addi, and a store using the addi result",
		Words: []uint32{
			EncodeLW(8, 9, 0),
			EncodeADD(10, 8, 11),
			EncodeADDI(2, 1, 5),
			EncodeSW(10, 2, 8),
		},
	}
}
