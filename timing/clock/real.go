package clock

import (
	"sync"
	"time"
)

// RealClock fires tasks from a time.Ticker on a dedicated goroutine.
type RealClock struct{}

// NewRealClock creates a wall-clock driven Clock.
func NewRealClock() *RealClock {
	return &RealClock{}
}

// Every starts a goroutine that runs task once per period until the
// returned handle is cancelled.
func (c *RealClock) Every(period time.Duration, task func()) Handle {
	if period <= 0 {
		period = DefaultPeriod
	}

	h := &tickerHandle{
		stop: make(chan struct{}),
	}
	ticker := time.NewTicker(period)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-h.stop:
				return
			case <-ticker.C:
			}

			// Cancel may race with a pending tick.
			select {
			case <-h.stop:
				return
			default:
			}

			task()
		}
	}()

	return h
}

type tickerHandle struct {
	stop    chan struct{}
	stopped sync.Once
}

// Cancel stops future firings without waiting for a running task.
func (h *tickerHandle) Cancel() {
	h.stopped.Do(func() {
		close(h.stop)
	})
}
