// Package timing provides a small pausable stopwatch, adapted from
// lollipop's mathutils.Watch, used by the counting driver to report setup
// and counting phase durations.
package timing

import (
	"sync"
	"time"

	"github.com/distributed-tricount/internal/enforce"
)

type Watch struct {
	mu        sync.RWMutex
	paused    bool
	pauseTime time.Time
	startTime time.Time
	adjusted  time.Time
}

func (w *Watch) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	enforce.ENFORCE(!w.paused, "watch cannot start while paused")
	w.startTime = time.Now()
	w.adjusted = w.startTime
}

func (w *Watch) Elapsed() time.Duration {
	w.mu.RLock()
	defer w.mu.RUnlock()
	now := time.Now()
	if w.paused {
		return now.Sub(w.adjusted) - now.Sub(w.pauseTime)
	}
	return now.Sub(w.adjusted)
}

func (w *Watch) Pause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	enforce.ENFORCE(!w.paused, "watch already paused")
	w.pauseTime = time.Now()
	w.paused = true
}

func (w *Watch) Unpause() {
	w.mu.Lock()
	defer w.mu.Unlock()
	enforce.ENFORCE(w.paused, "watch wasn't paused")
	w.paused = false
	w.adjusted = w.adjusted.Add(time.Since(w.pauseTime))
}
