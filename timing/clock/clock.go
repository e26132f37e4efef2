// Package clock provides cancellable repeating tasks that drive simulation
// cycles, either in real time or under explicit control.
package clock

import (
	"time"

	"github.com/sarchlab/akita/v4/sim"
)

// DefaultPeriod is used when a non-positive period is requested.
const DefaultPeriod = time.Second

// Handle cancels a repeating task. Cancel is idempotent and may be called
// from inside the task itself.
type Handle interface {
	Cancel()
}

// Clock schedules a task to run repeatedly. Firings of one task never
// overlap.
type Clock interface {
	Every(period time.Duration, task func()) Handle
}

// Period converts a clock frequency into the wall-clock time between two
// firings. A non-positive frequency yields DefaultPeriod.
func Period(freq sim.Freq) time.Duration {
	if freq <= 0 {
		return DefaultPeriod
	}
	return time.Duration(float64(time.Second) / float64(freq))
}
