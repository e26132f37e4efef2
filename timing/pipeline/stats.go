package pipeline

// Statistics holds schedule statistics.
type Statistics struct {
	// Cycles is the total number of cycles until the last write-back.
	Cycles uint64
	// Instructions is the number of scheduled instructions.
	Instructions uint64
	// Stalls is the number of bubble cycles.
	Stalls uint64
	// DataHazards is the number of RAW data hazards detected.
	DataHazards uint64
	// Forwarded is the number of hazards resolved through the bypass.
	Forwarded uint64
	// Unresolved is the number of hazards neither stalled nor forwarded.
	Unresolved uint64
}

// CPI returns the cycles per instruction.
func (s Statistics) CPI() float64 {
	if s.Instructions == 0 {
		return 0
	}
	return float64(s.Cycles) / float64(s.Instructions)
}
