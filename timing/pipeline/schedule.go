package pipeline

import "github.com/sarchlab/pipeviz/insts"

// Scheduler computes stage timelines. It holds no state between calls, so
// the same input always yields the same timeline.
type Scheduler struct {
	decoder    *insts.Decoder
	hazardUnit *HazardUnit
}

// NewScheduler creates a scheduler that uses hazardUnit for dependency
// checks. A nil hazardUnit selects the default unit.
func NewScheduler(hazardUnit *HazardUnit) *Scheduler {
	if hazardUnit == nil {
		hazardUnit = NewHazardUnit()
	}
	return &Scheduler{
		decoder:    insts.NewDecoder(),
		hazardUnit: hazardUnit,
	}
}

var defaultScheduler = NewScheduler(nil)

// Schedule computes the timeline of words under mode with the default
// hazard unit.
func Schedule(words []uint32, mode Mode) *Timeline {
	return defaultScheduler.Schedule(words, mode)
}

// Schedule computes the timeline of words under mode.
//
// Instruction i enters stage s at cycle i+s+1 plus its delay. In ModeStall
// a RAW hazard on instruction i-1 raises all three stall signals: StallID
// holds instruction i in ID for one extra cycle, InsertBubbleEX delays its
// EX, MEM and WB (and everything after it) by one, and StallIF holds the
// next fetch so instruction i+1 enters IF during the bubble.
func (s *Scheduler) Schedule(words []uint32, mode Mode) *Timeline {
	return s.build(words, mode, nil)
}

// Reflow recomputes prev under a new mode without rewriting history up to
// cycle. An instruction whose first ID cycle is at or before cycle keeps the
// stall decision it already made; later instructions follow the new mode.
func (s *Scheduler) Reflow(prev *Timeline, mode Mode, cycle uint64) *Timeline {
	if prev == nil {
		return nil
	}

	frozen := func(i int) (bool, bool) {
		slot := &prev.Slots[i]
		if slot.Cycles[StageID] <= cycle {
			return slot.Stalled, true
		}
		return false, false
	}

	return s.build(prev.Words(), mode, frozen)
}

func (s *Scheduler) build(
	words []uint32,
	mode Mode,
	frozen func(i int) (stalled, ok bool),
) *Timeline {
	t := &Timeline{
		Mode:  mode,
		Slots: make([]Slot, len(words)),
	}

	// fetchDelay shifts IF and ID of later instructions; execDelay shifts EX,
	// MEM and WB of this and later instructions.
	var (
		fetchDelay uint64
		execDelay  uint64
		prev       *insts.Instruction
	)

	for i, word := range words {
		inst := s.decoder.Decode(word)
		slot := Slot{Index: i, Inst: inst}

		if prev != nil {
			slot.Hazard = s.hazardUnit.Classify(i-1, i, prev, inst)
		}

		signals := s.hazardUnit.ComputeStalls(slot.Hazard.Exists(), mode)
		if frozen != nil {
			if stalled, ok := frozen(i); ok {
				signals = StallResult{StallIF: stalled, StallID: stalled, InsertBubbleEX: stalled}
			}
		}

		base := uint64(i) + 1
		slot.Cycles[StageIF] = base + fetchDelay
		slot.Cycles[StageID] = base + 1 + fetchDelay

		if signals.StallID {
			slot.Stalled = true
			t.StallCycles++
		}
		if signals.InsertBubbleEX {
			execDelay++
		}
		if signals.StallIF {
			fetchDelay++
		}

		slot.Offset = execDelay
		for _, stage := range []Stage{StageEX, StageMEM, StageWB} {
			slot.Cycles[stage] = base + uint64(stage) + execDelay
		}

		t.Slots[i] = slot
		prev = inst
	}

	if len(words) > 0 {
		t.MaxCycles = uint64(len(words)) + NumStages - 1 + t.StallCycles
	}

	return t
}
