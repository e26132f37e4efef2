package pipeline_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipeviz/insts"
	"github.com/sarchlab/pipeviz/timing/pipeline"
)

var _ = Describe("HazardUnit", func() {
	var (
		hazardUnit *pipeline.HazardUnit
		decoder    *insts.Decoder
	)

	decode := func(word uint32) *insts.Instruction {
		return decoder.Decode(word)
	}

	BeforeEach(func() {
		hazardUnit = pipeline.NewHazardUnit()
		decoder = insts.NewDecoder()
	})

	Describe("Detect", func() {
		It("should detect a load-use dependency", func() {
			// lw $8, 0($9) ; add $10, $8, $11
			Expect(hazardUnit.Detect(decode(0x8d280000), decode(0x010b5020))).To(BeTrue())
		})

		It("should detect a dependency through rt of an R-type", func() {
			// lw $11, 0($9) ; add $10, $8, $11
			Expect(hazardUnit.Detect(decode(0x8d2b0000), decode(0x010b5020))).To(BeTrue())
		})

		It("should detect a store reading the written register as data", func() {
			// lw $8, 0($9) ; sw $8, 4($9)
			Expect(hazardUnit.Detect(decode(0x8d280000), decode(0xad280004))).To(BeTrue())
		})

		It("should not detect a hazard for independent instructions", func() {
			// addi $2, $1, 5 ; add $10, $8, $11
			Expect(hazardUnit.Detect(decode(0x20220005), decode(0x010b5020))).To(BeFalse())
		})

		It("should never detect a hazard after a store", func() {
			// sw $8, 4($9) ; add $10, $8, $11
			Expect(hazardUnit.Detect(decode(0xad280004), decode(0x010b5020))).To(BeFalse())
		})

		It("should not treat a write-after-write as RAW", func() {
			// add $10, $8, $11 ; addi $10, $0, 5 -> 0x200a0005
			Expect(hazardUnit.Detect(decode(0x010b5020), decode(0x200a0005))).To(BeFalse())
		})

		It("should ignore nil instructions", func() {
			Expect(hazardUnit.Detect(nil, decode(0x010b5020))).To(BeFalse())
			Expect(hazardUnit.Detect(decode(0x8d280000), nil)).To(BeFalse())
		})

		Context("register 0", func() {
			// addi $0, $1, 5 -> 0x20200005 ; add $3, $0, $2 -> 0x00021820
			It("should treat register 0 as a real dependency by default", func() {
				Expect(hazardUnit.ZeroRegisterHardwired()).To(BeFalse())
				Expect(hazardUnit.Detect(decode(0x20200005), decode(0x00021820))).To(BeTrue())
			})

			It("should ignore register 0 when hardwired", func() {
				hazardUnit = pipeline.NewHazardUnit(pipeline.WithZeroRegisterHardwired())
				Expect(hazardUnit.Detect(decode(0x20200005), decode(0x00021820))).To(BeFalse())
			})
		})
	})

	Describe("Classify", func() {
		It("should produce a RAW hazard naming the register", func() {
			h := hazardUnit.Classify(3, 4, decode(0x8d280000), decode(0x010b5020))

			Expect(h.Kind).To(Equal(pipeline.HazardRAW))
			Expect(h.Exists()).To(BeTrue())
			Expect(h.Producer).To(Equal(3))
			Expect(h.Consumer).To(Equal(4))
			Expect(h.Register).To(Equal(uint8(8)))
		})

		It("should return HazardNone for independent instructions", func() {
			h := hazardUnit.Classify(0, 1, decode(0x20220005), decode(0x010b5020))
			Expect(h.Exists()).To(BeFalse())
			Expect(h).To(Equal(pipeline.Hazard{}))
		})
	})

	Describe("ComputeStalls", func() {
		It("should stall IF and ID and insert a bubble in stall mode", func() {
			result := hazardUnit.ComputeStalls(true, pipeline.ModeStall)

			Expect(result.StallIF).To(BeTrue())
			Expect(result.StallID).To(BeTrue())
			Expect(result.InsertBubbleEX).To(BeTrue())
		})

		It("should not stall in forwarding or normal mode", func() {
			Expect(hazardUnit.ComputeStalls(true, pipeline.ModeForwarding)).To(Equal(pipeline.StallResult{}))
			Expect(hazardUnit.ComputeStalls(true, pipeline.ModeNormal)).To(Equal(pipeline.StallResult{}))
		})

		It("should not stall without a hazard", func() {
			Expect(hazardUnit.ComputeStalls(false, pipeline.ModeStall)).To(Equal(pipeline.StallResult{}))
		})
	})

	Describe("HazardKind", func() {
		It("should name every kind", func() {
			Expect(pipeline.HazardRAW.String()).To(Equal("RAW"))
			Expect(pipeline.HazardWAW.String()).To(Equal("WAW"))
			Expect(pipeline.HazardWAR.String()).To(Equal("WAR"))
			Expect(pipeline.HazardStructural.String()).To(Equal("Structural"))
			Expect(pipeline.HazardControl.String()).To(Equal("Control"))
			Expect(pipeline.HazardKind(42).String()).To(Equal("Unknown"))
		})

		It("should describe RAW hazards", func() {
			Expect(pipeline.HazardRAW.Description()).To(ContainSubstring("Read-after-write"))
		})
	})
})
