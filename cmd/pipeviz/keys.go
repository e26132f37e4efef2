package main

import (
	"io"
	"sync"

	"github.com/sarchlab/pipeviz/timing/core"
	"github.com/sarchlab/pipeviz/timing/pipeline"
)

const keyCtrlC = 3

// feed hands the latest controller snapshot from the clock goroutine to the
// render loop. Snapshots published faster than they are drawn are merged.
type feed struct {
	mu    sync.Mutex
	snap  core.Snapshot
	ready chan struct{}
}

func newFeed() *feed {
	return &feed{ready: make(chan struct{}, 1)}
}

func (f *feed) publish(snap core.Snapshot) {
	f.mu.Lock()
	f.snap = snap
	f.mu.Unlock()

	select {
	case f.ready <- struct{}{}:
	default:
	}
}

func (f *feed) latest() core.Snapshot {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.snap
}

// readKeys delivers bytes read from r until it fails.
func readKeys(r io.Reader) <-chan byte {
	keys := make(chan byte)
	go func() {
		defer close(keys)
		buf := make([]byte, 1)
		for {
			n, err := r.Read(buf)
			if err != nil {
				return
			}
			if n == 1 {
				keys <- buf[0]
			}
		}
	}()
	return keys
}

// handleKey applies the action bound to key. It reports whether the viewer
// should quit.
func handleKey(ctrl *core.Controller, key byte, words []string) (bool, error) {
	switch key {
	case 'q', 'Q', keyCtrlC:
		return true, nil
	case ' ':
		if ctrl.State() == core.StatePaused {
			return false, ctrl.Resume()
		}
		return false, ctrl.Pause()
	case 's', 'S':
		return false, ctrl.Step()
	case 'n', 'N':
		return false, ctrl.SetMode(pipeline.ModeNormal)
	case 't', 'T':
		return false, ctrl.SetMode(pipeline.ModeStall)
	case 'f', 'F':
		return false, ctrl.SetMode(pipeline.ModeForwarding)
	case 'r', 'R':
		ctrl.Reset()
		return false, ctrl.Start(words)
	default:
		return false, nil
	}
}
