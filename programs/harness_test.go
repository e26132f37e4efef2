package programs_test

import (
	"bytes"
	"encoding/json"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipeviz/programs"
	"github.com/sarchlab/pipeviz/timing/pipeline"
)

var _ = Describe("Harness", func() {
	var (
		out     *bytes.Buffer
		harness *programs.Harness
	)

	BeforeEach(func() {
		out = &bytes.Buffer{}
		config := programs.DefaultConfig()
		config.Output = out
		harness = programs.NewHarness(config)
		harness.AddPrograms(programs.All())
	})

	find := func(results []programs.Result, name, mode string) programs.Result {
		for _, r := range results {
			if r.Name == name && r.Mode == mode {
				return r
			}
		}
		Fail("no result for " + name + "/" + mode)
		return programs.Result{}
	}

	It("should run every program under every mode", func() {
		results := harness.RunAll()
		Expect(results).To(HaveLen(len(programs.All()) * len(pipeline.Modes())))
		Expect(results[0].Mode).To(Equal("normal"))
		Expect(results[1].Mode).To(Equal("stall"))
		Expect(results[2].Mode).To(Equal("forwarding"))
	})

	DescribeTable("should report the expected schedule",
		func(name string, n, hazards, stallCycles uint64) {
			results := harness.RunAll()

			normal := find(results, name, "normal")
			Expect(normal.Instructions).To(Equal(n))
			Expect(normal.Cycles).To(Equal(n + 4))
			Expect(normal.Stalls).To(BeZero())
			Expect(normal.DataHazards).To(Equal(hazards))
			Expect(normal.Unresolved).To(Equal(hazards))

			stall := find(results, name, "stall")
			Expect(stall.Cycles).To(Equal(n + 4 + stallCycles))
			Expect(stall.Stalls).To(Equal(stallCycles))
			Expect(stall.Forwarded).To(BeZero())
			Expect(stall.Unresolved).To(BeZero())

			fwd := find(results, name, "forwarding")
			Expect(fwd.Cycles).To(Equal(n + 4))
			Expect(fwd.Forwarded).To(Equal(hazards))
		},
		Entry("independent", "independent", uint64(4), uint64(0), uint64(0)),
		Entry("load-use", "load-use", uint64(2), uint64(1), uint64(1)),
		Entry("chain", "chain", uint64(4), uint64(3), uint64(3)),
		Entry("store-after-load", "store-after-load", uint64(2), uint64(1), uint64(1)),
		Entry("mixed", "mixed", uint64(4), uint64(2), uint64(2)),
	)

	It("should compute CPI from cycles and instructions", func() {
		r := find(harness.RunAll(), "load-use", "stall")
		Expect(r.CPI).To(BeNumerically("~", 3.5, 1e-9))
	})

	It("should honor a restricted mode list", func() {
		config := programs.DefaultConfig()
		config.Output = out
		config.Modes = []pipeline.Mode{pipeline.ModeStall}
		h := programs.NewHarness(config)
		h.AddProgram(programs.All()[0])

		results := h.RunAll()
		Expect(results).To(HaveLen(1))
		Expect(results[0].Mode).To(Equal("stall"))
	})

	It("should treat $0 as hardwired when configured", func() {
		config := programs.DefaultConfig()
		config.Output = out
		config.HazardUnit = pipeline.NewHazardUnit(pipeline.WithZeroRegisterHardwired())
		h := programs.NewHarness(config)
		h.AddProgram(programs.Program{
			Name: "zero",
			Words: []uint32{
				programs.EncodeADDI(0, 1, 5),
				programs.EncodeADD(3, 0, 2),
			},
		})

		results := h.RunAll()
		for _, r := range results {
			Expect(r.DataHazards).To(BeZero())
		}

		h.PrintResults(results)
		Expect(out.String()).To(ContainSubstring("Register $0: hardwired"))
	})

	It("should print a table", func() {
		harness.PrintResults(harness.RunAll())
		text := out.String()
		Expect(text).To(ContainSubstring("Pipeline Schedule Report"))
		Expect(text).To(ContainSubstring("Register $0: dependency"))
		Expect(text).To(ContainSubstring("load-use"))
		Expect(text).To(ContainSubstring("forwarding"))
	})

	It("should print CSV with one row per result", func() {
		results := harness.RunAll()
		harness.PrintCSV(results)

		lines := strings.Split(strings.TrimSpace(out.String()), "\n")
		Expect(lines).To(HaveLen(len(results) + 1))
		Expect(lines[0]).To(HavePrefix("name,mode,"))
		Expect(lines).To(ContainElement("load-use,stall,2,7,1,1,0,0,3.500"))
	})

	It("should print JSON", func() {
		results := harness.RunAll()
		Expect(harness.PrintJSON(results)).To(Succeed())

		var decoded []programs.Result
		Expect(json.Unmarshal(out.Bytes(), &decoded)).To(Succeed())
		Expect(decoded).To(Equal(results))
	})
})
