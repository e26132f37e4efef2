package programs

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sarchlab/pipeviz/timing/pipeline"
)

// Result holds the schedule statistics of one program under one mode.
type Result struct {
	// Name identifies the program
	Name string `json:"name"`

	// Description explains what the program shows
	Description string `json:"description"`

	// Mode is the hazard-handling mode the program was scheduled under
	Mode string `json:"mode"`

	// Cycles is the cycle of the last write-back
	Cycles uint64 `json:"cycles"`

	// Instructions is the number of scheduled instructions
	Instructions uint64 `json:"instructions"`

	// CPI is cycles per instruction
	CPI float64 `json:"cpi"`

	// Stalls is the number of bubble cycles
	Stalls uint64 `json:"stalls"`

	// DataHazards is the number of RAW hazards between adjacent instructions
	DataHazards uint64 `json:"data_hazards"`

	// Forwarded is the number of hazards resolved through the bypass
	Forwarded uint64 `json:"forwarded"`

	// Unresolved is the number of hazards left unhandled in normal mode
	Unresolved uint64 `json:"unresolved"`
}

// HarnessConfig configures the harness.
type HarnessConfig struct {
	// Modes lists the modes every program is scheduled under
	Modes []pipeline.Mode

	// HazardUnit performs dependency checks; nil selects the default unit
	HazardUnit *pipeline.HazardUnit

	// Output is where to write results (default: os.Stdout)
	Output io.Writer
}

// DefaultConfig returns a configuration covering every mode.
func DefaultConfig() HarnessConfig {
	return HarnessConfig{
		Modes:  pipeline.Modes(),
		Output: os.Stdout,
	}
}

// Harness schedules programs and reports their statistics.
type Harness struct {
	config    HarnessConfig
	scheduler *pipeline.Scheduler
	programs  []Program
}

// NewHarness creates a new harness.
func NewHarness(config HarnessConfig) *Harness {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if len(config.Modes) == 0 {
		config.Modes = pipeline.Modes()
	}
	if config.HazardUnit == nil {
		config.HazardUnit = pipeline.NewHazardUnit()
	}
	return &Harness{
		config:    config,
		scheduler: pipeline.NewScheduler(config.HazardUnit),
	}
}

// AddProgram adds a program to the harness.
func (h *Harness) AddProgram(p Program) {
	h.programs = append(h.programs, p)
}

// AddPrograms adds multiple programs to the harness.
func (h *Harness) AddPrograms(programs []Program) {
	h.programs = append(h.programs, programs...)
}

// RunAll schedules every program under every configured mode. Results are
// grouped by program, in mode order.
func (h *Harness) RunAll() []Result {
	results := make([]Result, 0, len(h.programs)*len(h.config.Modes))

	for _, p := range h.programs {
		for _, mode := range h.config.Modes {
			results = append(results, h.run(p, mode))
		}
	}

	return results
}

func (h *Harness) run(p Program, mode pipeline.Mode) Result {
	stats := h.scheduler.Schedule(p.Words, mode).Stats()

	return Result{
		Name:         p.Name,
		Description:  p.Description,
		Mode:         mode.String(),
		Cycles:       stats.Cycles,
		Instructions: stats.Instructions,
		CPI:          stats.CPI(),
		Stalls:       stats.Stalls,
		DataHazards:  stats.DataHazards,
		Forwarded:    stats.Forwarded,
		Unresolved:   stats.Unresolved,
	}
}

// PrintResults outputs results in a human-readable table.
func (h *Harness) PrintResults(results []Result) {
	out := h.config.Output

	zero := "dependency"
	if h.config.HazardUnit.ZeroRegisterHardwired() {
		zero = "hardwired"
	}

	_, _ = fmt.Fprintln(out, "=== Pipeline Schedule Report ===")
	_, _ = fmt.Fprintf(out, "Register $0: %s\n", zero)
	_, _ = fmt.Fprintln(out, "")
	_, _ = fmt.Fprintf(out, "%-18s %-11s %6s %6s %6s %7s %9s %10s %5s\n",
		"program", "mode", "insts", "cycles", "stalls", "hazards", "forwarded", "unresolved", "cpi")

	prev := ""
	for _, r := range results {
		if prev != "" && r.Name != prev {
			_, _ = fmt.Fprintln(out, "")
		}
		prev = r.Name

		_, _ = fmt.Fprintf(out, "%-18s %-11s %6d %6d %6d %7d %9d %10d %5.2f\n",
			r.Name,
			r.Mode,
			r.Instructions,
			r.Cycles,
			r.Stalls,
			r.DataHazards,
			r.Forwarded,
			r.Unresolved,
			r.CPI,
		)
	}
}

// PrintCSV outputs results in CSV format for easy comparison.
func (h *Harness) PrintCSV(results []Result) {
	_, _ = fmt.Fprintln(h.config.Output,
		"name,mode,instructions,cycles,stalls,data_hazards,forwarded,unresolved,cpi")

	for _, r := range results {
		_, _ = fmt.Fprintf(h.config.Output, "%s,%s,%d,%d,%d,%d,%d,%d,%.3f\n",
			r.Name,
			r.Mode,
			r.Instructions,
			r.Cycles,
			r.Stalls,
			r.DataHazards,
			r.Forwarded,
			r.Unresolved,
			r.CPI,
		)
	}
}

// PrintJSON outputs results as an indented JSON array.
func (h *Harness) PrintJSON(results []Result) error {
	enc := json.NewEncoder(h.config.Output)
	enc.SetIndent("", "  ")
	if err := enc.Encode(results); err != nil {
		return fmt.Errorf("failed to encode results: %w", err)
	}
	return nil
}
