package script_test

import (
	"bytes"
	"context"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipeviz/script"
	"github.com/sarchlab/pipeviz/timing/core"
	"github.com/sarchlab/pipeviz/timing/pipeline"
)

var _ = Describe("Runner", func() {
	var (
		out    *bytes.Buffer
		runner *script.Runner
		ctx    context.Context
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		runner = script.NewRunner(script.WithOutput(out))
		ctx = context.Background()
	})

	It("should start a program given as a table of words", func() {
		Expect(runner.Run(ctx, `start({"8d280000", "010b5020"})`)).To(Succeed())

		snap := runner.Controller().Snapshot()
		Expect(snap.State).To(Equal(core.StateRunning))
		Expect(snap.CurrentCycle).To(Equal(uint64(1)))
		Expect(snap.Instructions).To(Equal([]string{"8d280000", "010b5020"}))
	})

	It("should start a sample program by name", func() {
		Expect(runner.Run(ctx, `start("chain")`)).To(Succeed())
		Expect(runner.Controller().Snapshot().Instructions).To(HaveLen(4))
	})

	It("should advance cycles with tick", func() {
		Expect(runner.Run(ctx, `
start({"8d280000", "010b5020"})
print(tick(2))
print(tick())
`)).To(Succeed())

		Expect(out.String()).To(Equal("3\n4\n"))
		Expect(runner.Controller().Snapshot().CurrentCycle).To(Equal(uint64(4)))
	})

	It("should run a program to completion", func() {
		Expect(runner.Run(ctx, `
mode("stall")
start("load-use")
tick(100)
local s = snapshot()
print(s.state, s.cycle, s.max_cycles, s.finished, s.stats.stalls)
`)).To(Succeed())

		Expect(out.String()).To(Equal("finished\t7\t7\ttrue\t1\n"))
	})

	It("should pause, step and resume", func() {
		Expect(runner.Run(ctx, `
start({"8d280000", "010b5020"})
pause()
tick(5)
step()
local s = snapshot()
print(s.state, s.cycle)
resume()
tick()
print(snapshot().cycle)
`)).To(Succeed())

		Expect(out.String()).To(Equal("paused\t2\n3\n"))
	})

	It("should expose per-instruction stages and stalls", func() {
		Expect(runner.Run(ctx, `
mode("stall")
start({"8d280000", "010b5020"})
tick(3)
local s = snapshot()
print(s.stages[1], s.stages[2], s.stalled[1], s.stalled[2])
`)).To(Succeed())

		Expect(out.String()).To(Equal("MEM\tID\tfalse\ttrue\n"))
	})

	It("should switch modes mid-run", func() {
		Expect(runner.Run(ctx, `
start("load-use")
print(mode())
print(mode("forwarding"))
`)).To(Succeed())

		Expect(out.String()).To(Equal("normal\nforwarding\n"))
		Expect(runner.Controller().Mode()).To(Equal(pipeline.ModeForwarding))
	})

	It("should reset the simulation", func() {
		Expect(runner.Run(ctx, `
start("independent")
tick(3)
reset()
print(snapshot().state, snapshot().cycle)
`)).To(Succeed())

		Expect(out.String()).To(Equal("idle\t0\n"))
	})

	It("should raise controller errors", func() {
		err := runner.Run(ctx, `pause()`)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("invalid state transition"))
	})

	It("should let scripts catch errors with pcall", func() {
		Expect(runner.Run(ctx, `
local ok, err = pcall(start, {"zzzz"})
print(ok)
`)).To(Succeed())

		Expect(out.String()).To(Equal("false\n"))
		Expect(runner.Controller().State()).To(Equal(core.StateIdle))
	})

	It("should reject an unknown mode", func() {
		err := runner.Run(ctx, `mode("turbo")`)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unknown hazard mode"))
	})

	It("should reject an unknown program name", func() {
		err := runner.Run(ctx, `start("nope")`)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("unknown program"))
	})

	It("should keep controller state between runs", func() {
		Expect(runner.Run(ctx, `start("independent")`)).To(Succeed())
		Expect(runner.Run(ctx, `tick(2)`)).To(Succeed())
		Expect(runner.Controller().Snapshot().CurrentCycle).To(Equal(uint64(3)))
	})

	It("should run a script file", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "run.lua")
		Expect(os.WriteFile(path, []byte(`start("mixed") tick(100) print(snapshot().cycle)`), 0o644)).To(Succeed())

		Expect(runner.RunFile(ctx, path)).To(Succeed())
		Expect(out.String()).To(Equal("8\n"))
	})

	It("should stop when the context is cancelled", func() {
		cancelled, cancel := context.WithCancel(ctx)
		cancel()

		err := runner.Run(cancelled, `while true do end`)
		Expect(err).To(HaveOccurred())
	})

	It("should pass controller options through", func() {
		r := script.NewRunner(
			script.WithOutput(out),
			script.WithControllerOptions(core.WithMode(pipeline.ModeStall)),
		)
		Expect(r.Run(ctx, `print(mode())`)).To(Succeed())
		Expect(out.String()).To(Equal("stall\n"))
	})
})
