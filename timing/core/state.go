package core

import "github.com/sarchlab/pipeviz/timing/pipeline"

// State is the lifecycle state of a Controller.
type State uint8

// Controller states.
const (
	StateIdle State = iota
	StateRunning
	StatePaused
	StateFinished
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StatePaused:
		return "paused"
	case StateFinished:
		return "finished"
	default:
		return "unknown"
	}
}

// Snapshot is a read-only copy of the simulation state.
type Snapshot struct {
	// Instructions are the submitted words in program order.
	Instructions []string
	// Mode is the hazard handling mode.
	Mode pipeline.Mode
	// CurrentCycle is 0 while idle and starts at 1.
	CurrentCycle uint64
	// MaxCycles is the cycle at which the last instruction is in WB.
	MaxCycles uint64
	// IsRunning is set while the clock is advancing cycles.
	IsRunning bool
	// IsFinished is set once CurrentCycle has reached MaxCycles.
	IsFinished bool
	// InstructionStages holds the stage of each instruction at
	// CurrentCycle, or StageNone.
	InstructionStages []pipeline.Stage
	// Stalled marks instructions repeating ID as a bubble at CurrentCycle.
	Stalled []bool
	// State is the controller lifecycle state.
	State State
	// Stats summarizes the current schedule.
	Stats pipeline.Statistics
}

// HasStarted reports whether a simulation is loaded.
func (s Snapshot) HasStarted() bool {
	return s.CurrentCycle > 0
}

// Progress returns the fraction of cycles elapsed, between 0 and 1.
func (s Snapshot) Progress() float64 {
	if s.MaxCycles == 0 {
		return 0
	}
	return float64(s.CurrentCycle) / float64(s.MaxCycles)
}

func (c *Controller) snapshot() Snapshot {
	maxCycles := c.maxCycles()
	snap := Snapshot{
		Instructions:      append([]string{}, c.instructions...),
		Mode:              c.mode,
		CurrentCycle:      c.currentCycle,
		MaxCycles:         maxCycles,
		IsRunning:         c.state == StateRunning,
		IsFinished:        maxCycles > 0 && c.currentCycle >= maxCycles,
		InstructionStages: []pipeline.Stage{},
		Stalled:           []bool{},
		State:             c.state,
	}

	if c.timeline != nil {
		snap.InstructionStages = c.timeline.StagesAt(c.currentCycle)
		snap.Stalled = make([]bool, c.timeline.Len())
		for i := range snap.Stalled {
			snap.Stalled[i] = c.timeline.StalledAt(i, c.currentCycle)
		}
		snap.Stats = c.timeline.Stats()
	}

	return snap
}
