package pipeline

import (
	"errors"
	"fmt"
	"strings"
)

// Mode selects how the pipeline handles data hazards.
type Mode uint8

// Hazard handling modes.
const (
	// ModeNormal ignores hazards entirely.
	ModeNormal Mode = iota
	// ModeStall inserts a bubble in ID for every RAW hazard.
	ModeStall
	// ModeForwarding assumes a bypass path resolves every hazard.
	ModeForwarding
)

// ErrUnknownMode is returned for a mode value or name that is not defined.
var ErrUnknownMode = errors.New("unknown hazard mode")

var modeNames = []string{"normal", "stall", "forwarding"}

// Modes returns all hazard handling modes.
func Modes() []Mode {
	return []Mode{ModeNormal, ModeStall, ModeForwarding}
}

// Valid reports whether m is a defined mode.
func (m Mode) Valid() bool {
	return int(m) < len(modeNames)
}

func (m Mode) String() string {
	if !m.Valid() {
		return fmt.Sprintf("mode(%d)", uint8(m))
	}
	return modeNames[m]
}

// ParseMode converts a case-insensitive mode name into a Mode.
func ParseMode(s string) (Mode, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	for i, n := range modeNames {
		if n == name {
			return Mode(i), nil
		}
	}
	return ModeNormal, fmt.Errorf("%w: %q", ErrUnknownMode, s)
}
