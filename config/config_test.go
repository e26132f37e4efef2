package config_test

import (
	"os"
	"path/filepath"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/sarchlab/akita/v4/sim"

	"github.com/sarchlab/pipeviz/config"
	"github.com/sarchlab/pipeviz/timing/pipeline"
)

var _ = Describe("Config", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	write := func(name, content string) string {
		path := filepath.Join(dir, name)
		Expect(os.WriteFile(path, []byte(content), 0644)).To(Succeed())
		return path
	}

	Describe("Default", func() {
		It("should be valid", func() {
			c := config.Default()
			Expect(c.Validate()).To(Succeed())
			Expect(c.HazardMode()).To(Equal(pipeline.ModeNormal))
			Expect(c.Period()).To(Equal(time.Second))
			Expect(c.HazardOptions()).To(BeEmpty())
		})
	})

	Describe("Load", func() {
		It("should load JSON and keep defaults for missing keys", func() {
			path := write("c.json", `{"mode": "stall"}`)

			c, err := config.Load(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(c.HazardMode()).To(Equal(pipeline.ModeStall))
			Expect(c.ClockHz).To(Equal(1 * sim.Hz))
		})

		It("should load YAML", func() {
			path := write("c.yaml", "clock_hz: 4\nmode: forwarding\nzero_register_hardwired: true\nhistory: 12\n")

			c, err := config.Load(path)

			Expect(err).NotTo(HaveOccurred())
			Expect(c.HazardMode()).To(Equal(pipeline.ModeForwarding))
			Expect(c.Period()).To(Equal(250 * time.Millisecond))
			Expect(c.ZeroRegisterHardwired).To(BeTrue())
			Expect(c.HazardOptions()).To(HaveLen(1))
			Expect(c.History).To(Equal(uint64(12)))
		})

		It("should fail on a missing file", func() {
			_, err := config.Load(filepath.Join(dir, "missing.json"))
			Expect(err).To(HaveOccurred())
		})

		It("should fail on malformed content", func() {
			_, err := config.Load(write("bad.json", "{"))
			Expect(err).To(MatchError(ContainSubstring("failed to parse config")))
		})

		It("should reject an unknown mode", func() {
			_, err := config.Load(write("c.json", `{"mode": "bypass"}`))
			Expect(err).To(MatchError(pipeline.ErrUnknownMode))
		})

		DescribeTable("should reject an unusable clock",
			func(value string) {
				_, err := config.Load(write("c.yml", "clock_hz: "+value+"\n"))
				Expect(err).To(MatchError(ContainSubstring("clock_hz")))
			},
			Entry("zero", "0"),
			Entry("negative", "-2"),
			Entry("NaN", ".nan"),
			Entry("infinity", ".inf"),
		)
	})

	Describe("Save", func() {
		DescribeTable("round trip",
			func(name string) {
				c := config.Default()
				c.Mode = "stall"
				c.ClockHz = 10 * sim.Hz
				c.History = 8
				path := filepath.Join(dir, name)

				Expect(c.Save(path)).To(Succeed())
				loaded, err := config.Load(path)

				Expect(err).NotTo(HaveOccurred())
				Expect(loaded).To(Equal(c))
			},
			Entry("json", "out.json"),
			Entry("yaml", "out.yaml"),
		)
	})

	It("should clone independently", func() {
		c := config.Default()
		clone := c.Clone()
		clone.Mode = "stall"
		Expect(c.Mode).To(Equal("normal"))
	})
})
