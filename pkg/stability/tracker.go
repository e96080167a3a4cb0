package stability

import "sync"

// Tracker counts pending tasks and reports through a Signal: false when the
// first task starts, true when the last one finishes.
type Tracker struct {
	mu      sync.Mutex
	pending int
	signal  *Signal
}

// NewTracker creates an idle (stable) tracker.
func NewTracker() *Tracker {
	return &Tracker{signal: NewSignal(true)}
}

// Signal returns the stability stream driven by the tracker.
func (t *Tracker) Signal() *Signal {
	return t.signal
}

// Pending returns the number of unfinished tasks.
func (t *Tracker) Pending() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.pending
}

// Begin registers a task. The returned func marks it finished; calling it
// more than once has no further effect.
func (t *Tracker) Begin() (done func()) {
	t.mu.Lock()
	t.pending++
	if t.pending == 1 {
		t.signal.Set(false)
	}
	t.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(t.finish)
	}
}

func (t *Tracker) finish() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.pending--
	if t.pending == 0 {
		t.signal.Set(true)
	}
}
