package overlay

import (
	"slices"
	"sync"
	"sync/atomic"
)

// MaxEvents bounds the recorder's call log; older entries are dropped first.
const MaxEvents = 256

// Recorder is a headless Surface. It keeps the current overlay behind an atomic pointer
// and logs the last MaxEvents calls, which makes it usable for long headless runs and
// for tests.
type Recorder struct {
	current    atomic.Pointer[[]TranslatedBlock]
	suppressed atomic.Bool

	mu     sync.Mutex
	events []string
	notify chan struct{}
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	r := &Recorder{notify: make(chan struct{}, 1)}
	empty := []TranslatedBlock{}
	r.current.Store(&empty)
	return r
}

func (r *Recorder) SuppressOverlay() {
	r.suppressed.Store(true)
	r.record("suppress")
}

func (r *Recorder) RestoreOverlay() {
	r.suppressed.Store(false)
	r.record("restore")
}

func (r *Recorder) SetOverlay(blocks []TranslatedBlock) {
	cp := slices.Clone(blocks)
	if cp == nil {
		cp = []TranslatedBlock{}
	}
	r.current.Store(&cp)
	r.record("set")
	select {
	case r.notify <- struct{}{}:
	default:
	}
}

// Overlay returns the current overlay.
func (r *Recorder) Overlay() []TranslatedBlock {
	return *r.current.Load()
}

// Suppressed reports whether the overlay is currently hidden.
func (r *Recorder) Suppressed() bool {
	return r.suppressed.Load()
}

// Updated is signalled after each SetOverlay; at most one signal is buffered.
func (r *Recorder) Updated() <-chan struct{} {
	return r.notify
}

// Events returns the ordered call log, oldest first.
func (r *Recorder) Events() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return slices.Clone(r.events)
}

func (r *Recorder) record(ev string) {
	r.mu.Lock()
	if len(r.events) >= MaxEvents {
		r.events = slices.Delete(r.events, 0, len(r.events)-MaxEvents+1)
	}
	r.events = append(r.events, ev)
	r.mu.Unlock()
}
