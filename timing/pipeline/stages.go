// Package pipeline provides a 5-stage pipeline schedule model for cycle-level
// visualization of in-order instruction flow.
package pipeline

// Stage identifies one of the five pipeline stages.
type Stage int8

// Pipeline stages, in the order every instruction passes through them.
const (
	StageNone Stage = -1
	StageIF   Stage = 0
	StageID   Stage = 1
	StageEX   Stage = 2
	StageMEM  Stage = 3
	StageWB   Stage = 4
)

// NumStages is the depth of the pipeline.
const NumStages = 5

var stageNames = [NumStages]string{"IF", "ID", "EX", "MEM", "WB"}

var stageInfo = [NumStages]struct {
	name        string
	description string
}{
	{"Instruction Fetch", "Loads the instruction from memory into the processor."},
	{"Instruction Decode", "Decodes the instruction and reads the source registers."},
	{"Execute", "Performs the ALU operation or computes the memory address."},
	{"Memory Access", "Reads or writes data memory when needed."},
	{"Write Back", "Writes the result into the destination register."},
}

// Stages returns all pipeline stages in order.
func Stages() []Stage {
	return []Stage{StageIF, StageID, StageEX, StageMEM, StageWB}
}

// Valid reports whether s is one of the five pipeline stages.
func (s Stage) Valid() bool {
	return s >= StageIF && s <= StageWB
}

// String returns the short stage name, or "-" for StageNone.
func (s Stage) String() string {
	if !s.Valid() {
		return "-"
	}
	return stageNames[s]
}

// Name returns the long stage name.
func (s Stage) Name() string {
	if !s.Valid() {
		return ""
	}
	return stageInfo[s].name
}

// Description returns a one-sentence explanation of what the stage does.
func (s Stage) Description() string {
	if !s.Valid() {
		return ""
	}
	return stageInfo[s].description
}
