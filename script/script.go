// Package script drives a cycle controller from Lua. Scripts run against a
// manual clock, so every tick they request happens synchronously and a
// script always produces the same trace.
//
// The following globals are available in addition to the base, table,
// string and math libraries:
//
//	start(words)      start a simulation; words is a table of hex strings or
//	                  the name of a sample program
//	pause()           pause ticking
//	resume()          resume ticking
//	step()            advance a paused simulation by one cycle
//	reset()           clear the simulation
//	mode([name])      set the hazard mode; returns the current mode name
//	tick([n])         fire the clock n times (default 1)
//	snapshot()        return the simulation state as a table
//	print(...)        write its arguments to the runner output
//
// Controller errors are raised as Lua errors and abort the script unless it
// catches them with pcall.
package script

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-logr/logr"
	lua "github.com/yuin/gopher-lua"

	"github.com/sarchlab/pipeviz/programs"
	"github.com/sarchlab/pipeviz/timing/clock"
	"github.com/sarchlab/pipeviz/timing/core"
	"github.com/sarchlab/pipeviz/timing/pipeline"
)

// Option is a functional option for configuring the Runner.
type Option func(*Runner)

// WithOutput sets where print writes. The default is os.Stdout.
func WithOutput(w io.Writer) Option {
	return func(r *Runner) {
		r.out = w
	}
}

// WithLogger sets the logger used by the runner and its controller.
func WithLogger(log logr.Logger) Option {
	return func(r *Runner) {
		r.log = log
	}
}

// WithControllerOptions passes extra options to the controller. A clock
// option is overridden by the runner's manual clock.
func WithControllerOptions(opts ...core.Option) Option {
	return func(r *Runner) {
		r.ctrlOpts = append(r.ctrlOpts, opts...)
	}
}

// Runner executes Lua scripts against its own controller.
type Runner struct {
	out      io.Writer
	log      logr.Logger
	ctrlOpts []core.Option
	clock    *clock.ManualClock
	ctrl     *core.Controller
}

// NewRunner creates a runner with a fresh controller on a manual clock.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		out:   os.Stdout,
		log:   logr.Discard(),
		clock: clock.NewManualClock(),
	}

	for _, opt := range opts {
		opt(r)
	}

	ctrlOpts := append([]core.Option{core.WithLogger(r.log)}, r.ctrlOpts...)
	ctrlOpts = append(ctrlOpts, core.WithClock(r.clock))
	r.ctrl = core.NewController(ctrlOpts...)

	return r
}

// Controller returns the controller the scripts drive.
func (r *Runner) Controller() *core.Controller {
	return r.ctrl
}

// Clock returns the manual clock behind the controller.
func (r *Runner) Clock() *clock.ManualClock {
	return r.clock
}

// Run executes src. The controller keeps its state between runs.
func (r *Runner) Run(ctx context.Context, src string) error {
	return r.exec(ctx, func(L *lua.LState) error {
		return L.DoString(src)
	})
}

// RunFile executes the script stored at path.
func (r *Runner) RunFile(ctx context.Context, path string) error {
	return r.exec(ctx, func(L *lua.LState) error {
		return L.DoFile(path)
	})
}

func (r *Runner) exec(ctx context.Context, do func(*lua.LState) error) error {
	L := r.newState()
	defer L.Close()
	L.SetContext(ctx)

	if err := do(L); err != nil {
		return fmt.Errorf("script failed: %w", err)
	}
	return nil
}

func (r *Runner) newState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})

	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.open))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}

	for name, fn := range map[string]lua.LGFunction{
		"start":    r.luaStart,
		"pause":    r.luaPause,
		"resume":   r.luaResume,
		"step":     r.luaStep,
		"reset":    r.luaReset,
		"mode":     r.luaMode,
		"tick":     r.luaTick,
		"snapshot": r.luaSnapshot,
		"print":    r.luaPrint,
	} {
		L.SetGlobal(name, L.NewFunction(fn))
	}

	return L
}

func (r *Runner) luaStart(L *lua.LState) int {
	var words []string

	switch arg := L.CheckAny(1).(type) {
	case lua.LString:
		p, err := programs.Get(string(arg))
		if err != nil {
			L.RaiseError("%s", err.Error())
			return 0
		}
		words = p.Strings()
	case *lua.LTable:
		for i := 1; i <= arg.Len(); i++ {
			words = append(words, lua.LVAsString(arg.RawGetInt(i)))
		}
	default:
		L.ArgError(1, "table of words or program name expected")
		return 0
	}

	raise(L, r.ctrl.Start(words))
	return 0
}

func (r *Runner) luaPause(L *lua.LState) int {
	raise(L, r.ctrl.Pause())
	return 0
}

func (r *Runner) luaResume(L *lua.LState) int {
	raise(L, r.ctrl.Resume())
	return 0
}

func (r *Runner) luaStep(L *lua.LState) int {
	raise(L, r.ctrl.Step())
	return 0
}

func (r *Runner) luaReset(_ *lua.LState) int {
	r.ctrl.Reset()
	return 0
}

func (r *Runner) luaMode(L *lua.LState) int {
	if L.GetTop() >= 1 {
		mode, err := pipeline.ParseMode(L.CheckString(1))
		raise(L, err)
		raise(L, r.ctrl.SetMode(mode))
	}

	L.Push(lua.LString(r.ctrl.Mode().String()))
	return 1
}

func (r *Runner) luaTick(L *lua.LState) int {
	n := L.OptInt(1, 1)
	if n < 0 {
		L.ArgError(1, "tick count must not be negative")
		return 0
	}

	r.clock.Advance(n)
	L.Push(lua.LNumber(r.ctrl.Snapshot().CurrentCycle))
	return 1
}

func (r *Runner) luaSnapshot(L *lua.LState) int {
	L.Push(snapshotTable(L, r.ctrl.Snapshot()))
	return 1
}

func (r *Runner) luaPrint(L *lua.LState) int {
	top := L.GetTop()
	parts := make([]string, top)
	for i := 1; i <= top; i++ {
		parts[i-1] = L.ToStringMeta(L.Get(i)).String()
	}
	_, _ = fmt.Fprintln(r.out, strings.Join(parts, "\t"))
	return 0
}

func raise(L *lua.LState, err error) {
	if err != nil {
		L.RaiseError("%s", err.Error())
	}
}

// snapshotTable converts snap into a Lua table. Per-instruction arrays are
// 1-based.
func snapshotTable(L *lua.LState, snap core.Snapshot) *lua.LTable {
	t := L.NewTable()
	t.RawSetString("cycle", lua.LNumber(snap.CurrentCycle))
	t.RawSetString("max_cycles", lua.LNumber(snap.MaxCycles))
	t.RawSetString("running", lua.LBool(snap.IsRunning))
	t.RawSetString("finished", lua.LBool(snap.IsFinished))
	t.RawSetString("state", lua.LString(snap.State.String()))
	t.RawSetString("mode", lua.LString(snap.Mode.String()))

	instructions := L.NewTable()
	for _, w := range snap.Instructions {
		instructions.Append(lua.LString(w))
	}
	t.RawSetString("instructions", instructions)

	stages := L.NewTable()
	for _, s := range snap.InstructionStages {
		stages.Append(lua.LString(s.String()))
	}
	t.RawSetString("stages", stages)

	stalled := L.NewTable()
	for _, s := range snap.Stalled {
		stalled.Append(lua.LBool(s))
	}
	t.RawSetString("stalled", stalled)

	stats := L.NewTable()
	stats.RawSetString("cycles", lua.LNumber(snap.Stats.Cycles))
	stats.RawSetString("instructions", lua.LNumber(snap.Stats.Instructions))
	stats.RawSetString("stalls", lua.LNumber(snap.Stats.Stalls))
	stats.RawSetString("hazards", lua.LNumber(snap.Stats.DataHazards))
	stats.RawSetString("forwarded", lua.LNumber(snap.Stats.Forwarded))
	stats.RawSetString("unresolved", lua.LNumber(snap.Stats.Unresolved))
	stats.RawSetString("cpi", lua.LNumber(snap.Stats.CPI()))
	t.RawSetString("stats", stats)

	return t
}
