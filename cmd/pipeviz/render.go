package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/sarchlab/pipeviz/insts"
	"github.com/sarchlab/pipeviz/timing/core"
	"github.com/sarchlab/pipeviz/timing/pipeline"
)

const (
	defaultWidth = 80
	labelWidth   = 36
	cellWidth    = 4
)

// renderer draws snapshots and timelines as plain text.
type renderer struct {
	out     io.Writer
	width   int
	history uint64
	raw     bool
	decoder *insts.Decoder
}

func newRenderer(out io.Writer, width int, history uint64) *renderer {
	if width <= 0 {
		width = defaultWidth
	}
	return &renderer{
		out:     out,
		width:   width,
		history: history,
		decoder: insts.NewDecoder(),
	}
}

// line writes one line. Raw terminals need an explicit carriage return.
func (r *renderer) line(format string, args ...any) {
	eol := "\n"
	if r.raw {
		eol = "\r\n"
	}
	_, _ = fmt.Fprintf(r.out, format+eol, args...)
}

func (r *renderer) clear() {
	_, _ = io.WriteString(r.out, "\x1b[H\x1b[2J")
}

func (r *renderer) disassemble(word string) string {
	w, err := insts.ParseWord(word)
	if err != nil {
		return "?"
	}
	return r.decoder.Decode(w).String()
}

// screen draws one full interactive frame.
func (r *renderer) screen(snap core.Snapshot, tl *pipeline.Timeline, status string, legend bool) {
	r.snapshot(snap)
	if snap.HasStarted() {
		r.occupancy(tl, snap.CurrentCycle)
		r.line("")
		r.timeline(tl, snap.CurrentCycle)
	}
	if legend {
		r.legend()
	}
	r.help(status)
}

// snapshot draws the cycle header, a progress bar and the stage of every
// instruction.
func (r *renderer) snapshot(snap core.Snapshot) {
	if !snap.HasStarted() {
		r.line("no program loaded  mode=%s", snap.Mode)
		return
	}

	r.line("cycle %d/%d  mode=%s  state=%s", snap.CurrentCycle, snap.MaxCycles, snap.Mode, snap.State)
	r.line("%s", progressBar(snap.Progress(), r.width))

	for i, word := range snap.Instructions {
		stage := pipeline.StageNone
		if i < len(snap.InstructionStages) {
			stage = snap.InstructionStages[i]
		}

		status := stage.String()
		if i < len(snap.Stalled) && snap.Stalled[i] {
			status += " (stall)"
		}

		r.line("%3d  %s  %-24s %s", i, word, r.disassemble(word), status)
	}
}

// timeline draws the stage diagram of tl for cycles up to upto. Columns that
// do not fit the width or fall outside the history window are dropped from
// the left.
func (r *renderer) timeline(tl *pipeline.Timeline, upto uint64) {
	if tl.Len() == 0 || upto == 0 {
		return
	}

	first, last := visibleCycles(upto, r.history, r.width)

	var header strings.Builder
	fmt.Fprintf(&header, "%-*s", labelWidth, "")
	for c := first; c <= last; c++ {
		fmt.Fprintf(&header, "%*d", cellWidth, c)
	}
	r.line("%s", strings.TrimRight(header.String(), " "))

	for i := range tl.Slots {
		slot := &tl.Slots[i]

		var row strings.Builder
		label := fmt.Sprintf("%3d  %s", i, slot.Inst)
		fmt.Fprintf(&row, "%-*.*s", labelWidth, labelWidth-1, label)
		for c := first; c <= last; c++ {
			fmt.Fprintf(&row, "%*s", cellWidth, cell(tl, i, c))
		}
		r.line("%s", strings.TrimRight(row.String(), " "))
	}
}

// occupancy draws which instruction holds each stage at cycle.
func (r *renderer) occupancy(tl *pipeline.Timeline, cycle uint64) {
	parts := make([]string, 0, pipeline.NumStages)
	for _, stage := range pipeline.Stages() {
		holder := "-"
		if i, ok := tl.Occupant(stage, cycle); ok {
			holder = fmt.Sprintf("#%d", i)
		}
		parts = append(parts, fmt.Sprintf("%s: %s", stage, holder))
	}
	r.line("%s", strings.Join(parts, "  "))
}

// legend explains the stages and the hazard the pipeline resolves.
func (r *renderer) legend() {
	r.line("")
	for _, stage := range pipeline.Stages() {
		r.line("%-3s  %-18s  %s", stage, stage.Name(), stage.Description())
	}
	r.line("%-3s  %-18s  %s", "ID*", "Bubble", "A stalled instruction repeats ID while its producer advances.")
	r.line("")
	r.line("%s", pipeline.HazardRAW.Description())
}

// stats draws the schedule statistics.
func (r *renderer) stats(s pipeline.Statistics) {
	r.line("")
	r.line("Total Instructions: %d", s.Instructions)
	r.line("Total Cycles: %d", s.Cycles)
	r.line("CPI: %.2f", s.CPI())
	r.line("Stalls: %d", s.Stalls)
	r.line("Data Hazards: %d (forwarded %d, unresolved %d)", s.DataHazards, s.Forwarded, s.Unresolved)
}

// help draws the key bindings and the last error, if any.
func (r *renderer) help(status string) {
	r.line("")
	r.line("[space] pause/resume  [s] step  [n]ormal s[t]all [f]orwarding  [r]estart  [h]elp  [q]uit")
	if status != "" {
		r.line("! %s", status)
	}
}

func cell(tl *pipeline.Timeline, i int, cycle uint64) string {
	stage := tl.StageAt(i, cycle)
	if stage == pipeline.StageNone {
		return "."
	}
	if tl.StalledAt(i, cycle) {
		return stage.String() + "*"
	}
	return stage.String()
}

// visibleCycles returns the cycle columns that fit width, ending at upto and
// spanning at most history cycles when history is set.
func visibleCycles(upto, history uint64, width int) (first, last uint64) {
	last = upto
	first = 1

	if history > 0 && upto > history {
		first = upto - history + 1
	}

	columns := uint64(1)
	if width > labelWidth+cellWidth {
		columns = uint64((width - labelWidth) / cellWidth)
	}
	if last-first+1 > columns {
		first = last - columns + 1
	}

	return first, last
}

func progressBar(progress float64, width int) string {
	inner := width - 2
	if inner < 1 {
		inner = 1
	}

	filled := int(progress * float64(inner))
	if filled > inner {
		filled = inner
	}
	if filled < 0 {
		filled = 0
	}

	return "[" + strings.Repeat("#", filled) + strings.Repeat(".", inner-filled) + "]"
}
