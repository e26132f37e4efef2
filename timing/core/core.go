// Package core provides the cycle controller. It owns the simulation state,
// advances the current cycle on a repeating clock, and exposes the actions
// that start, pause, resume, reset and re-mode a simulation.
package core

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/sarchlab/pipeviz/insts"
	"github.com/sarchlab/pipeviz/timing/clock"
	"github.com/sarchlab/pipeviz/timing/pipeline"
)

var (
	// ErrInvalidInstructionFormat is returned when the instruction list is
	// empty or holds a word that is not exactly eight hex digits.
	ErrInvalidInstructionFormat = errors.New("invalid instruction format")
	// ErrInvalidStateTransition is returned when an action is not allowed in
	// the current state.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	errUnchanged = errors.New("unchanged")
)

// Option is a functional option for configuring the Controller.
type Option func(*Controller)

// WithClock sets the clock that drives ticks. The default is a real clock.
func WithClock(c clock.Clock) Option {
	return func(ctrl *Controller) {
		ctrl.clock = c
	}
}

// WithPeriod sets the wall-clock time between two ticks.
func WithPeriod(period time.Duration) Option {
	return func(ctrl *Controller) {
		ctrl.period = period
	}
}

// WithLogger sets the logger. Lifecycle events are logged at V(0), ticks at
// V(1).
func WithLogger(log logr.Logger) Option {
	return func(ctrl *Controller) {
		ctrl.log = log
	}
}

// WithHazardUnit sets the hazard unit used for scheduling.
func WithHazardUnit(h *pipeline.HazardUnit) Option {
	return func(ctrl *Controller) {
		ctrl.scheduler = pipeline.NewScheduler(h)
	}
}

// WithMode sets the initial hazard handling mode.
func WithMode(mode pipeline.Mode) Option {
	return func(ctrl *Controller) {
		ctrl.mode = mode
	}
}

// WithObserver registers a function that receives a snapshot after every
// state change. Snapshots arrive one at a time in the order the changes
// happened. Observers run outside the controller lock and may call back into
// the controller; the snapshot of such a nested change is delivered after
// the current observer returns.
func WithObserver(observer func(Snapshot)) Option {
	return func(ctrl *Controller) {
		ctrl.observers = append(ctrl.observers, observer)
	}
}

// Controller is the cycle controller. All of its methods are safe for
// concurrent use; actions and ticks are applied one at a time.
type Controller struct {
	mu sync.Mutex

	clock     clock.Clock
	period    time.Duration
	scheduler *pipeline.Scheduler
	log       logr.Logger
	observers []func(Snapshot)

	state        State
	mode         pipeline.Mode
	instructions []string
	timeline     *pipeline.Timeline
	currentCycle uint64

	ticker     clock.Handle
	generation uint64

	pending   []Snapshot
	notifying bool
}

// NewController creates an idle Controller.
func NewController(opts ...Option) *Controller {
	c := &Controller{
		clock:     clock.NewRealClock(),
		period:    clock.DefaultPeriod,
		scheduler: pipeline.NewScheduler(nil),
		log:       logr.Discard(),
	}

	for _, opt := range opts {
		opt(c)
	}

	if !c.mode.Valid() {
		c.mode = pipeline.ModeNormal
	}

	return c
}

// Start validates words, computes the schedule under the current mode and
// starts ticking from cycle 1. It is only allowed while idle.
func (c *Controller) Start(words []string) error {
	parsed, err := parseWords(words)
	if err != nil {
		return err
	}

	return c.apply(func() error {
		if c.state != StateIdle {
			return fmt.Errorf("%w: cannot start while %v", ErrInvalidStateTransition, c.state)
		}

		c.instructions = append([]string(nil), words...)
		c.timeline = c.scheduler.Schedule(parsed, c.mode)
		c.currentCycle = 1
		c.state = StateRunning
		c.arm()

		c.log.Info("simulation started",
			"instructions", len(words),
			"mode", c.mode.String(),
			"maxCycles", c.timeline.MaxCycles)
		return nil
	})
}

// Pause stops ticking and keeps the current cycle.
func (c *Controller) Pause() error {
	return c.apply(func() error {
		if c.state != StateRunning {
			return fmt.Errorf("%w: cannot pause while %v", ErrInvalidStateTransition, c.state)
		}

		c.disarm()
		c.state = StatePaused
		c.log.Info("simulation paused", "cycle", c.currentCycle)
		return nil
	})
}

// Resume restarts ticking from the cycle at which the simulation was paused.
func (c *Controller) Resume() error {
	return c.apply(func() error {
		if c.state != StatePaused {
			return fmt.Errorf("%w: cannot resume while %v", ErrInvalidStateTransition, c.state)
		}

		c.state = StateRunning
		c.arm()
		c.log.Info("simulation resumed", "cycle", c.currentCycle)
		return nil
	})
}

// Step advances a paused simulation by exactly one cycle.
func (c *Controller) Step() error {
	return c.apply(func() error {
		if c.state != StatePaused {
			return fmt.Errorf("%w: cannot step while %v", ErrInvalidStateTransition, c.state)
		}

		c.advance()
		return nil
	})
}

// Reset stops ticking and clears the instructions, schedule and counters.
// The hazard mode is kept. Resetting an idle controller does nothing.
func (c *Controller) Reset() {
	_ = c.apply(func() error {
		if c.state == StateIdle {
			return errUnchanged
		}

		c.disarm()
		c.instructions = nil
		c.timeline = nil
		c.currentCycle = 0
		c.state = StateIdle
		c.log.Info("simulation reset")
		return nil
	})
}

// SetMode switches the hazard handling mode. A loaded schedule is reflowed
// for the new mode; cycles up to the current one keep their history and the
// current cycle is not reset.
func (c *Controller) SetMode(mode pipeline.Mode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %v", pipeline.ErrUnknownMode, mode)
	}

	return c.apply(func() error {
		if mode == c.mode {
			return errUnchanged
		}

		c.mode = mode
		if c.timeline != nil {
			c.timeline = c.scheduler.Reflow(c.timeline, mode, c.currentCycle)
		}

		c.log.Info("mode changed",
			"mode", mode.String(),
			"cycle", c.currentCycle,
			"maxCycles", c.maxCycles())
		return nil
	})
}

// Mode returns the current hazard handling mode.
func (c *Controller) Mode() pipeline.Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// State returns the current controller state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Timeline returns a copy of the current schedule, or nil while idle.
func (c *Controller) Timeline() *pipeline.Timeline {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timeline.Clone()
}

// Snapshot returns a read-only copy of the simulation state.
func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshot()
}

// apply runs action under the lock and notifies observers if it changed
// the state. errUnchanged suppresses the notification without failing.
func (c *Controller) apply(action func() error) error {
	c.mu.Lock()
	err := action()
	dispatch := false
	if err == nil && len(c.observers) > 0 {
		c.pending = append(c.pending, c.snapshot())
		if !c.notifying {
			c.notifying = true
			dispatch = true
		}
	}
	c.mu.Unlock()

	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}

	if dispatch {
		c.notify()
	}
	return nil
}

// notify delivers queued snapshots in the order the changes were applied.
// Only one goroutine delivers at a time; changes made meanwhile, including
// from inside an observer, are queued and delivered by that goroutine.
func (c *Controller) notify() {
	for {
		c.mu.Lock()
		if len(c.pending) == 0 {
			c.pending = nil
			c.notifying = false
			c.mu.Unlock()
			return
		}
		snap := c.pending[0]
		c.pending = c.pending[1:]
		c.mu.Unlock()

		for _, observer := range c.observers {
			observer(snap)
		}
	}
}

// arm starts a repeating tick for a new run generation.
func (c *Controller) arm() {
	c.generation++
	gen := c.generation
	c.ticker = c.clock.Every(c.period, func() {
		c.tick(gen)
	})
}

// disarm cancels the repeating tick. Firings already in flight belong to an
// older generation and are dropped by tick.
func (c *Controller) disarm() {
	if c.ticker != nil {
		c.ticker.Cancel()
		c.ticker = nil
	}
	c.generation++
}

func (c *Controller) tick(gen uint64) {
	_ = c.apply(func() error {
		if gen != c.generation || c.state != StateRunning {
			return errUnchanged
		}

		c.advance()
		return nil
	})
}

// advance moves to the next cycle and finishes the run when the last
// instruction has reached write-back.
func (c *Controller) advance() {
	if c.currentCycle < c.timeline.MaxCycles {
		c.currentCycle++
	}

	if c.log.V(1).Enabled() {
		c.log.V(1).Info("tick",
			"cycle", c.currentCycle,
			"stages", stageNames(c.timeline.StagesAt(c.currentCycle)),
			"stalled", c.timeline.StallsAt(c.currentCycle))
	}

	if c.currentCycle >= c.timeline.MaxCycles {
		c.disarm()
		c.state = StateFinished
		c.log.Info("simulation finished", "cycles", c.currentCycle)
	}
}

func (c *Controller) maxCycles() uint64 {
	if c.timeline == nil {
		return 0
	}
	return c.timeline.MaxCycles
}

func parseWords(words []string) ([]uint32, error) {
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: at least one instruction is required", ErrInvalidInstructionFormat)
	}

	parsed := make([]uint32, len(words))
	for i, w := range words {
		v, err := insts.ParseWord(w)
		if err != nil {
			return nil, fmt.Errorf("%w: instruction %d: %w", ErrInvalidInstructionFormat, i, err)
		}
		parsed[i] = v
	}
	return parsed, nil
}

func stageNames(stages []pipeline.Stage) []string {
	names := make([]string, len(stages))
	for i, s := range stages {
		names[i] = s.String()
	}
	return names
}
