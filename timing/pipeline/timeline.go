package pipeline

import "github.com/sarchlab/pipeviz/insts"

// Slot is the schedule of one instruction.
type Slot struct {
	// Index is the program-order position of the instruction.
	Index int
	// Inst is the decoded instruction. It is shared between timelines and
	// must not be modified.
	Inst *insts.Instruction
	// Cycles holds the cycle at which the instruction enters each stage,
	// indexed by Stage.
	Cycles [NumStages]uint64
	// Hazard is the RAW dependency on the previous instruction, if any.
	Hazard Hazard
	// Stalled is set when the instruction spends an extra cycle in ID.
	Stalled bool
	// Offset is the cumulative stall delay applied to EX, MEM and WB.
	Offset uint64
}

// Cycle returns the cycle at which the instruction occupies stage.
func (s *Slot) Cycle(stage Stage) uint64 {
	if !stage.Valid() {
		return 0
	}
	return s.Cycles[stage]
}

// StallCycle returns the bubble cycle spent repeating ID, or 0 if the slot
// never stalls.
func (s *Slot) StallCycle() uint64 {
	if !s.Stalled {
		return 0
	}
	return s.Cycles[StageID] + 1
}

// StageAt returns the stage the instruction occupies at cycle.
func (s *Slot) StageAt(cycle uint64) Stage {
	for _, stage := range Stages() {
		if s.Cycles[stage] == cycle {
			return stage
		}
	}

	if s.Stalled && cycle == s.StallCycle() {
		return StageID
	}

	return StageNone
}

// Timeline is the complete stage schedule of a program under one mode.
type Timeline struct {
	Mode  Mode
	Slots []Slot
	// MaxCycles is the cycle at which the last instruction is in WB.
	MaxCycles uint64
	// StallCycles is the number of bubbles inserted.
	StallCycles uint64
}

// Len returns the number of scheduled instructions.
func (t *Timeline) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Slots)
}

// Words returns the raw instruction words in program order.
func (t *Timeline) Words() []uint32 {
	words := make([]uint32, t.Len())
	for i := range words {
		words[i] = t.Slots[i].Inst.Word
	}
	return words
}

// StageAt returns the stage instruction i occupies at cycle.
func (t *Timeline) StageAt(i int, cycle uint64) Stage {
	if i < 0 || i >= t.Len() {
		return StageNone
	}
	return t.Slots[i].StageAt(cycle)
}

// StagesAt returns the stage of every instruction at cycle.
func (t *Timeline) StagesAt(cycle uint64) []Stage {
	stages := make([]Stage, t.Len())
	for i := range stages {
		stages[i] = t.Slots[i].StageAt(cycle)
	}
	return stages
}

// StalledAt reports whether instruction i is repeating ID as a bubble at
// cycle.
func (t *Timeline) StalledAt(i int, cycle uint64) bool {
	if i < 0 || i >= t.Len() {
		return false
	}
	s := &t.Slots[i]
	return s.Stalled && cycle == s.StallCycle()
}

// StallsAt returns the indexes of instructions stalled at cycle.
func (t *Timeline) StallsAt(cycle uint64) []int {
	var stalled []int
	for i := 0; i < t.Len(); i++ {
		if t.StalledAt(i, cycle) {
			stalled = append(stalled, i)
		}
	}
	return stalled
}

// Occupant returns the instruction that occupies stage at cycle.
func (t *Timeline) Occupant(stage Stage, cycle uint64) (int, bool) {
	for i := 0; i < t.Len(); i++ {
		if t.Slots[i].StageAt(cycle) == stage {
			return i, true
		}
	}
	return 0, false
}

// Hazards returns every RAW hazard recorded in the timeline.
func (t *Timeline) Hazards() []Hazard {
	var hazards []Hazard
	for i := 0; i < t.Len(); i++ {
		if t.Slots[i].Hazard.Exists() {
			hazards = append(hazards, t.Slots[i].Hazard)
		}
	}
	return hazards
}

// Clone returns a copy of the timeline that shares only the immutable
// decoded instructions.
func (t *Timeline) Clone() *Timeline {
	if t == nil {
		return nil
	}
	c := *t
	c.Slots = append([]Slot(nil), t.Slots...)
	return &c
}

// Stats summarizes the timeline.
func (t *Timeline) Stats() Statistics {
	stats := Statistics{}
	if t == nil {
		return stats
	}

	stats.Cycles = t.MaxCycles
	stats.Instructions = uint64(len(t.Slots))
	stats.Stalls = t.StallCycles

	for i := range t.Slots {
		s := &t.Slots[i]
		if !s.Hazard.Exists() {
			continue
		}
		stats.DataHazards++
		switch {
		case s.Stalled:
		case t.Mode == ModeForwarding:
			stats.Forwarded++
		default:
			stats.Unresolved++
		}
	}

	return stats
}
