// Package main provides the pipeviz command, a real-time view of a MIPS
// program moving through a five-stage pipeline.
//
// Usage:
//
//	pipeviz [flags] [program-file]
//
// The program is either a file (hex text, raw .bin or MIPS ELF) or one of the
// sample programs selected with -program. With -interactive the terminal is
// put in raw mode and the following keys control the simulation:
//
//	space   pause / resume
//	s       step one cycle while paused
//	n t f   switch to normal, stall or forwarding mode
//	r       restart the program
//	h       show or hide the stage and hazard legend
//	q       quit
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"
	"github.com/sarchlab/akita/v4/sim"
	"golang.org/x/term"

	"github.com/sarchlab/pipeviz/config"
	"github.com/sarchlab/pipeviz/insts"
	"github.com/sarchlab/pipeviz/loader"
	"github.com/sarchlab/pipeviz/programs"
	"github.com/sarchlab/pipeviz/script"
	"github.com/sarchlab/pipeviz/timing/clock"
	"github.com/sarchlab/pipeviz/timing/core"
	"github.com/sarchlab/pipeviz/timing/pipeline"
)

type options struct {
	configPath  string
	mode        string
	freq        float64
	program     string
	scriptPath  string
	verbosity   int
	interactive bool
	static      bool
	legend      bool
	file        string
}

func parseFlags(fs *flag.FlagSet, args []string) (*options, error) {
	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "Path to a JSON or YAML configuration file")
	fs.StringVar(&opts.mode, "mode", "", "Hazard mode: normal, stall or forwarding")
	fs.Float64Var(&opts.freq, "freq", 0, "Cycles per second (overrides clock_hz)")
	fs.StringVar(&opts.program, "program", "", "Sample program to run")
	fs.StringVar(&opts.scriptPath, "script", "", "Lua script to run instead of the viewer")
	fs.IntVar(&opts.verbosity, "v", 0, "Log verbosity (1 logs every cycle)")
	fs.BoolVar(&opts.interactive, "interactive", false, "Read control keys from the terminal")
	fs.BoolVar(&opts.static, "static", false, "Print the full timeline and exit")
	fs.BoolVar(&opts.legend, "legend", false, "Explain the stages and hazards after a static timeline")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	if fs.NArg() > 1 {
		return nil, fmt.Errorf("expected at most one program file, got %d", fs.NArg())
	}
	opts.file = fs.Arg(0)

	return opts, nil
}

// loadConfig reads the configuration file, if any, and applies the flag
// overrides.
func loadConfig(opts *options) (*config.Config, error) {
	cfg := config.Default()
	if opts.configPath != "" {
		var err error
		cfg, err = config.Load(opts.configPath)
		if err != nil {
			return nil, err
		}
	}

	if opts.mode != "" {
		cfg.Mode = opts.mode
	}
	if opts.freq != 0 {
		cfg.ClockHz = sim.Freq(opts.freq) * sim.Hz
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadWords returns the instruction words selected by the flags.
func loadWords(opts *options) ([]string, error) {
	switch {
	case opts.program != "" && opts.file != "":
		return nil, errors.New("use either -program or a program file, not both")
	case opts.program != "":
		p, err := programs.Get(opts.program)
		if err != nil {
			return nil, err
		}
		return p.Strings(), nil
	case opts.file != "":
		prog, err := loader.Load(opts.file)
		if err != nil {
			return nil, err
		}
		return prog.Strings(), nil
	default:
		return nil, errors.New("no program given")
	}
}

func controllerOptions(cfg *config.Config, log logr.Logger) []core.Option {
	return []core.Option{
		core.WithMode(cfg.HazardMode()),
		core.WithHazardUnit(pipeline.NewHazardUnit(cfg.HazardOptions()...)),
		core.WithPeriod(cfg.Period()),
		core.WithLogger(log),
	}
}

func newLogger(w io.Writer, verbosity int) logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			_, _ = fmt.Fprintf(w, "%s: %s\n", prefix, args)
			return
		}
		_, _ = fmt.Fprintln(w, args)
	}, funcr.Options{Verbosity: verbosity})
}

func main() {
	fs := flag.NewFlagSet("pipeviz", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: pipeviz [options] [program-file]\n")
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nSample programs: %v\n", programs.Names())
	}

	opts, err := parseFlags(fs, os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		stop()
		os.Exit(1)
	}
}

func run(ctx context.Context, opts *options) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	log := newLogger(os.Stderr, opts.verbosity).WithName("pipeviz")
	ctrlOpts := controllerOptions(cfg, log)

	if opts.scriptPath != "" {
		runner := script.NewRunner(
			script.WithOutput(os.Stdout),
			script.WithLogger(log),
			script.WithControllerOptions(ctrlOpts...),
		)
		return runner.RunFile(ctx, opts.scriptPath)
	}

	words, err := loadWords(opts)
	if err != nil {
		return err
	}

	r := newRenderer(os.Stdout, terminalWidth(), cfg.History)

	if opts.static {
		if err := printStatic(r, words, cfg); err != nil {
			return err
		}
		if opts.legend {
			r.legend()
		}
		return nil
	}

	if opts.interactive {
		return runInteractive(ctx, r, words, ctrlOpts)
	}

	return runLive(ctx, r, words, ctrlOpts)
}

// printStatic writes the complete timeline without running the clock.
func printStatic(r *renderer, words []string, cfg *config.Config) error {
	parsed := make([]uint32, len(words))
	for i, w := range words {
		v, err := insts.ParseWord(w)
		if err != nil {
			return fmt.Errorf("instruction %d: %w", i, err)
		}
		parsed[i] = v
	}

	scheduler := pipeline.NewScheduler(pipeline.NewHazardUnit(cfg.HazardOptions()...))
	tl := scheduler.Schedule(parsed, cfg.HazardMode())
	r.timeline(tl, tl.MaxCycles)
	r.stats(tl.Stats())
	return nil
}

// runLive prints every cycle until the program finishes.
func runLive(ctx context.Context, r *renderer, words []string, ctrlOpts []core.Option) error {
	feed := newFeed()
	ctrl := core.NewController(append(ctrlOpts,
		core.WithClock(clock.NewRealClock()),
		core.WithObserver(feed.publish))...)

	if err := ctrl.Start(words); err != nil {
		return err
	}
	defer ctrl.Reset()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-feed.ready:
			snap := feed.latest()
			r.snapshot(snap)
			if snap.IsFinished {
				r.line("")
				r.timeline(ctrl.Timeline(), snap.CurrentCycle)
				r.stats(snap.Stats)
				return nil
			}
		}
	}
}

// runInteractive redraws the screen on every change and reads control keys
// until the user quits.
func runInteractive(ctx context.Context, r *renderer, words []string, ctrlOpts []core.Option) error {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return errors.New("-interactive requires a terminal on stdin")
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		return fmt.Errorf("failed to enter raw mode: %w", err)
	}
	defer func() { _ = term.Restore(fd, oldState) }()

	r.raw = true

	feed := newFeed()
	ctrl := core.NewController(append(ctrlOpts,
		core.WithClock(clock.NewRealClock()),
		core.WithObserver(feed.publish))...)

	if err := ctrl.Start(words); err != nil {
		return err
	}
	defer ctrl.Reset()

	keys := readKeys(os.Stdin)
	var (
		status     string
		showLegend bool
	)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-feed.ready:
		case key, ok := <-keys:
			if !ok {
				return nil
			}
			if key == 'h' || key == 'H' {
				showLegend = !showLegend
				break
			}
			quit, err := handleKey(ctrl, key, words)
			if quit {
				return nil
			}
			status = ""
			if err != nil {
				status = err.Error()
			}
		}

		r.clear()
		r.screen(ctrl.Snapshot(), ctrl.Timeline(), status, showLegend)
	}
}

func terminalWidth() int {
	w, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || w <= 0 {
		return defaultWidth
	}
	return w
}
