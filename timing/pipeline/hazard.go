package pipeline

import "github.com/sarchlab/pipeviz/insts"

// HazardKind classifies a dependency between two instructions.
type HazardKind uint8

// Hazard kinds. Only HazardRAW is ever produced by the HazardUnit; the others
// exist as labels for consumers.
const (
	HazardNone HazardKind = iota
	HazardRAW
	HazardWAW
	HazardWAR
	HazardStructural
	HazardControl
)

var hazardNames = []string{"None", "RAW", "WAW", "WAR", "Structural", "Control"}

var hazardDescriptions = []string{
	"",
	"Read-after-write: an instruction reads a register before the previous instruction has written it.",
	"Write-after-write: two instructions write the same register out of order.",
	"Write-after-read: an instruction overwrites a register before an earlier one has read it.",
	"Structural: two instructions need the same hardware resource in the same cycle.",
	"Control: the next instruction to fetch depends on an unresolved branch.",
}

func (k HazardKind) String() string {
	if int(k) >= len(hazardNames) {
		return "Unknown"
	}
	return hazardNames[k]
}

// Description returns a one-sentence explanation of the hazard kind.
func (k HazardKind) Description() string {
	if int(k) >= len(hazardDescriptions) {
		return ""
	}
	return hazardDescriptions[k]
}

// Hazard describes a dependency from Producer to Consumer through Register.
// Producer and Consumer are program-order instruction indexes.
type Hazard struct {
	Kind     HazardKind
	Producer int
	Consumer int
	Register uint8
}

// Exists reports whether the hazard is a real dependency.
func (h Hazard) Exists() bool {
	return h.Kind != HazardNone
}

// StallResult contains stall control signals. The Scheduler applies each of
// them; ComputeStalls always raises them together.
type StallResult struct {
	// StallIF holds the fetch of the following instruction for one cycle.
	StallIF bool
	// StallID keeps the consumer in ID for one extra cycle.
	StallID bool
	// InsertBubbleEX sends a bubble (NOP) into EX, delaying the consumer's
	// EX, MEM and WB by one cycle.
	InsertBubbleEX bool
}

// HazardOption configures a HazardUnit.
type HazardOption func(*HazardUnit)

// WithZeroRegisterHardwired treats register 0 as the constant zero register,
// so writes to it never create a dependency.
func WithZeroRegisterHardwired() HazardOption {
	return func(h *HazardUnit) {
		h.zeroHardwired = true
	}
}

// HazardUnit detects data hazards between adjacent instructions and
// determines stall signals.
type HazardUnit struct {
	zeroHardwired bool
}

// NewHazardUnit creates a new hazard detection unit.
func NewHazardUnit(opts ...HazardOption) *HazardUnit {
	h := &HazardUnit{}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ZeroRegisterHardwired reports whether register 0 is excluded from
// dependency checks.
func (h *HazardUnit) ZeroRegisterHardwired() bool {
	return h.zeroHardwired
}

// Detect reports whether later reads the register that earlier writes.
// It is only meaningful for program-order-adjacent instructions.
func (h *HazardUnit) Detect(earlier, later *insts.Instruction) bool {
	if earlier == nil || later == nil || !earlier.Writes {
		return false
	}

	if h.zeroHardwired && earlier.Dest == 0 {
		return false
	}

	return later.Reads(earlier.Dest)
}

// Classify returns the hazard between the instruction at index producer and
// the one at index consumer, or a Hazard of kind HazardNone.
func (h *HazardUnit) Classify(
	producer, consumer int,
	earlier, later *insts.Instruction,
) Hazard {
	if !h.Detect(earlier, later) {
		return Hazard{}
	}

	return Hazard{
		Kind:     HazardRAW,
		Producer: producer,
		Consumer: consumer,
		Register: earlier.Dest,
	}
}

// ComputeStalls computes stall signals for a detected hazard under mode.
// Only ModeStall ever stalls; forwarding resolves hazards through the bypass
// and normal mode ignores them.
func (h *HazardUnit) ComputeStalls(hazard bool, mode Mode) StallResult {
	result := StallResult{}

	if hazard && mode == ModeStall {
		result.StallIF = true
		result.StallID = true
		result.InsertBubbleEX = true
	}

	return result
}
