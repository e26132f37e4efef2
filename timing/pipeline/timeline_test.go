package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipeviz/timing/pipeline"
)

var _ = Describe("Timeline", func() {
	var t *pipeline.Timeline

	BeforeEach(func() {
		t = pipeline.Schedule([]uint32{lwR8, addR10}, pipeline.ModeStall)
	})

	It("should report stages at a cycle", func() {
		Expect(t.StagesAt(1)).To(Equal([]pipeline.Stage{pipeline.StageIF, pipeline.StageNone}))
		Expect(t.StagesAt(4)).To(Equal([]pipeline.Stage{pipeline.StageMEM, pipeline.StageID}))
		Expect(t.StagesAt(7)).To(Equal([]pipeline.Stage{pipeline.StageNone, pipeline.StageWB}))
		Expect(t.StagesAt(8)).To(Equal([]pipeline.Stage{pipeline.StageNone, pipeline.StageNone}))
	})

	It("should return StageNone for out-of-range indexes", func() {
		Expect(t.StageAt(-1, 2)).To(Equal(pipeline.StageNone))
		Expect(t.StageAt(2, 2)).To(Equal(pipeline.StageNone))
		Expect(t.StalledAt(5, 4)).To(BeFalse())
	})

	It("should find the occupant of a stage", func() {
		i, ok := t.Occupant(pipeline.StageID, 4)
		Expect(ok).To(BeTrue())
		Expect(i).To(Equal(1))

		_, ok = t.Occupant(pipeline.StageEX, 4)
		Expect(ok).To(BeFalse())
	})

	It("should expose per-slot cycles", func() {
		slot := t.Slots[1]
		Expect(slot.Cycle(pipeline.StageEX)).To(Equal(uint64(5)))
		Expect(slot.Cycle(pipeline.StageNone)).To(BeZero())
		Expect(t.Slots[0].StallCycle()).To(BeZero())
	})

	It("should clone without sharing slots", func() {
		c := t.Clone()
		c.Slots[0].Cycles[pipeline.StageIF] = 99
		c.MaxCycles = 1

		Expect(t.Slots[0].Cycles[pipeline.StageIF]).To(Equal(uint64(1)))
		Expect(t.MaxCycles).To(Equal(uint64(7)))
	})

	It("should tolerate a nil timeline", func() {
		var empty *pipeline.Timeline
		Expect(empty.Len()).To(Equal(0))
		Expect(empty.Clone()).To(BeNil())
		Expect(empty.Stats()).To(Equal(pipeline.Statistics{}))
	})

	Describe("Stats", func() {
		It("should count stalls in stall mode", func() {
			stats := t.Stats()

			Expect(stats.Cycles).To(Equal(uint64(7)))
			Expect(stats.Instructions).To(Equal(uint64(2)))
			Expect(stats.Stalls).To(Equal(uint64(1)))
			Expect(stats.DataHazards).To(Equal(uint64(1)))
			Expect(stats.Forwarded).To(BeZero())
			Expect(stats.Unresolved).To(BeZero())
			Expect(stats.CPI()).To(BeNumerically("~", 3.5))
		})

		It("should count forwarded hazards", func() {
			stats := pipeline.Schedule([]uint32{lwR8, addR10}, pipeline.ModeForwarding).Stats()
			Expect(stats.Forwarded).To(Equal(uint64(1)))
			Expect(stats.Stalls).To(BeZero())
		})

		It("should count unresolved hazards in normal mode", func() {
			stats := pipeline.Schedule([]uint32{lwR8, addR10}, pipeline.ModeNormal).Stats()
			Expect(stats.Unresolved).To(Equal(uint64(1)))
		})

		It("should report zero CPI without instructions", func() {
			Expect(pipeline.Statistics{}.CPI()).To(BeZero())
		})
	})
})
