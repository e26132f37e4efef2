package insts_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/sarchlab/pipeviz/insts"
)

var _ = Describe("Insts Package", func() {
	It("should have an Instruction type", func() {
		var i insts.Instruction
		Expect(i).To(BeZero())
	})

	It("should have a Decoder type", func() {
		decoder := insts.NewDecoder()
		Expect(decoder).ToNot(BeNil())
	})
})

var _ = Describe("RegSet", func() {
	It("should start empty", func() {
		var s insts.RegSet
		Expect(s.Len()).To(Equal(0))
		Expect(s.Has(0)).To(BeFalse())
	})

	It("should collapse duplicate registers", func() {
		s := insts.NewRegSet(8, 8, 3)
		Expect(s.Len()).To(Equal(2))
		Expect(s.Regs()).To(Equal([]uint8{3, 8}))
	})

	It("should ignore out-of-range registers", func() {
		s := insts.NewRegSet(32, 40)
		Expect(s.Len()).To(Equal(0))
		Expect(s.Has(32)).To(BeFalse())
	})

	It("should add registers", func() {
		s := insts.NewRegSet(31).Add(0).Add(31)
		Expect(s.Regs()).To(Equal([]uint8{0, 31}))
	})

	It("should render registers in order", func() {
		Expect(insts.NewRegSet(11, 8).String()).To(Equal("{$8, $11}"))
	})
})
