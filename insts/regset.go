package insts

import (
	"fmt"
	"math/bits"
	"strings"
)

// NumRegs is the number of MIPS general-purpose registers.
const NumRegs = 32

// RegSet is a set of general-purpose registers, one bit per register.
type RegSet uint32

// NewRegSet returns a set holding the given registers. Indices at or above
// NumRegs are ignored.
func NewRegSet(regs ...uint8) RegSet {
	var s RegSet
	for _, r := range regs {
		s = s.Add(r)
	}
	return s
}

// Add returns s with reg included.
func (s RegSet) Add(reg uint8) RegSet {
	if reg >= NumRegs {
		return s
	}
	return s | 1<<reg
}

// Has reports whether reg is in the set.
func (s RegSet) Has(reg uint8) bool {
	return reg < NumRegs && s&(1<<reg) != 0
}

// Len returns the number of registers in the set.
func (s RegSet) Len() int {
	return bits.OnesCount32(uint32(s))
}

// Regs returns the registers in ascending order.
func (s RegSet) Regs() []uint8 {
	regs := make([]uint8, 0, s.Len())
	for r := uint8(0); r < NumRegs; r++ {
		if s.Has(r) {
			regs = append(regs, r)
		}
	}
	return regs
}

func (s RegSet) String() string {
	parts := make([]string, 0, s.Len())
	for _, r := range s.Regs() {
		parts = append(parts, fmt.Sprintf("$%d", r))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
