package clock

import (
	"sync"
	"time"
)

// ManualClock fires tasks only when Advance is called. It makes real-time
// behavior reproducible in tests and scripts.
type ManualClock struct {
	mu    sync.Mutex
	tasks []*manualTask
	fired uint64
}

// NewManualClock creates a Clock driven by Advance.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// Every registers task. The period is ignored; every Advance step fires
// each active task once.
func (c *ManualClock) Every(_ time.Duration, task func()) Handle {
	c.mu.Lock()
	defer c.mu.Unlock()

	t := &manualTask{clock: c, task: task}
	c.tasks = append(c.tasks, t)
	return t
}

// Advance fires every active task n times, in registration order. A task
// cancelled during a step does not fire again, and a task registered during
// a step first fires on the next one.
func (c *ManualClock) Advance(n int) {
	for step := 0; step < n; step++ {
		c.mu.Lock()
		active := append([]*manualTask(nil), c.tasks...)
		c.mu.Unlock()

		if len(active) == 0 {
			return
		}

		for _, t := range active {
			if t.cancelled() {
				continue
			}
			t.task()

			c.mu.Lock()
			c.fired++
			c.mu.Unlock()
		}
	}
}

// Pending returns the number of tasks that have not been cancelled.
func (c *ManualClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.tasks)
}

// Fired returns the total number of task firings.
func (c *ManualClock) Fired() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fired
}

type manualTask struct {
	clock *ManualClock
	task  func()
}

func (t *manualTask) cancelled() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	for _, other := range t.clock.tasks {
		if other == t {
			return false
		}
	}
	return true
}

// Cancel unregisters the task.
func (t *manualTask) Cancel() {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()

	tasks := t.clock.tasks[:0]
	for _, other := range t.clock.tasks {
		if other != t {
			tasks = append(tasks, other)
		}
	}
	t.clock.tasks = tasks
}
