package capture

import (
	"context"
	"image"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/pogo-lens/internal/overlay"
	"github.com/MeKo-Tech/pogo-lens/internal/utils"
	"github.com/google/uuid"
)

// Default capture cadence and geometry.
const (
	DefaultInterval     = 1500 * time.Millisecond
	DefaultFastInterval = 100 * time.Millisecond
	DefaultBorderInset  = 4
	DefaultScale        = 2.0
)

// State is the pipeline state seen by the capture gate.
type State int32

const (
	Idle State = iota
	CaptureInFlight
	RecognitionInFlight
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case CaptureInFlight:
		return "capture_in_flight"
	case RecognitionInFlight:
		return "recognition_in_flight"
	default:
		return "unknown"
	}
}

// Target reports where the lens is and whether the user is moving it.
type Target interface {
	Region() image.Rectangle
	Dragging() bool
}

// FixedTarget is a lens that never moves.
type FixedTarget image.Rectangle

func (t FixedTarget) Region() image.Rectangle { return image.Rectangle(t) }
func (t FixedTarget) Dragging() bool          { return false }

// Options configures a Scheduler.
type Options struct {
	BorderInset int
	Scale       float64
}

// DefaultOptions returns the standard inset and upscale.
func DefaultOptions() Options {
	return Options{BorderInset: DefaultBorderInset, Scale: DefaultScale}
}

// Stats counts scheduler decisions.
type Stats struct {
	Ticks          int64  `json:"ticks"`
	Captured       int64  `json:"captured"`
	SkippedBusy    int64  `json:"skipped_busy"`
	SkippedDrag    int64  `json:"skipped_drag"`
	Failures       int64  `json:"failures"`
	State          string `json:"state"`
	DragGeneration uint64 `json:"drag_generation"`
}

// Scheduler implements blink capture and the single-frame backpressure gate. Tick is
// meant to be called from one goroutine; MarkReady may be called from any goroutine.
type Scheduler struct {
	grabber Grabber
	surface overlay.Surface
	target  Target
	opts    Options

	state       atomic.Int32
	generation  atomic.Uint64
	wasDragging atomic.Bool

	ticks       atomic.Int64
	captured    atomic.Int64
	skippedBusy atomic.Int64
	skippedDrag atomic.Int64
	failures    atomic.Int64
}

// NewScheduler wires a grabber, the render surface and the lens target.
func NewScheduler(grabber Grabber, surface overlay.Surface, target Target, opts Options) *Scheduler {
	if opts.Scale < 1 {
		opts.Scale = DefaultScale
	}
	if opts.BorderInset < 0 {
		opts.BorderInset = 0
	}
	return &Scheduler{grabber: grabber, surface: surface, target: target, opts: opts}
}

// Options returns the effective options.
func (s *Scheduler) Options() Options { return s.opts }

// State returns the current gate state.
func (s *Scheduler) State() State { return State(s.state.Load()) }

// Ready reports whether the next tick may capture.
func (s *Scheduler) Ready() bool { return s.State() == Idle }

// MarkReady releases the gate after recognition finished, successfully or not.
func (s *Scheduler) MarkReady() {
	s.state.Store(int32(Idle))
}

// Tick runs one capture cycle. It returns false without side effects on the screen when
// the previous frame is still being processed or the lens is being dragged.
func (s *Scheduler) Tick(ctx context.Context) (*Frame, bool) {
	s.ticks.Add(1)

	if s.target.Dragging() {
		s.skippedDrag.Add(1)
		if !s.wasDragging.Swap(true) {
			s.generation.Add(1)
			s.surface.SetOverlay(nil)
			slog.Debug("Lens drag started, overlay cleared")
		}
		return nil, false
	}
	s.wasDragging.Store(false)

	if !s.state.CompareAndSwap(int32(Idle), int32(CaptureInFlight)) {
		s.skippedBusy.Add(1)
		return nil, false
	}

	frame, err := s.capture(ctx)
	if err != nil {
		s.failures.Add(1)
		slog.Warn("Capture failed", "error", err)
		s.state.Store(int32(Idle))
		return nil, false
	}

	s.captured.Add(1)
	s.state.Store(int32(RecognitionInFlight))
	return frame, true
}

// capture performs suppress -> grab -> restore and preprocesses the pixels.
func (s *Scheduler) capture(ctx context.Context) (*Frame, error) {
	rect := utils.InsetRect(s.target.Region(), s.opts.BorderInset)

	s.surface.SuppressOverlay()
	raw, err := s.grabber.Grab(ctx, rect)
	s.surface.RestoreOverlay()
	if err != nil {
		return nil, err
	}

	gray, err := utils.PreprocessForOCR(raw, s.opts.Scale)
	if err != nil {
		return nil, &CaptureError{Rect: rect, Err: err}
	}

	b := gray.Bounds()
	return &Frame{
		ID:         uuid.NewString(),
		Image:      gray,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Scale:      s.opts.Scale,
		Inset:      s.opts.BorderInset,
		Region:     rect,
		CapturedAt: time.Now(),
		Generation: s.generation.Load(),
	}, nil
}

// Stale reports whether f was captured before the most recent drag.
func (s *Scheduler) Stale(f *Frame) bool {
	return f == nil || f.Generation != s.generation.Load()
}

// Stats returns a snapshot of scheduler counters.
func (s *Scheduler) Stats() Stats {
	return Stats{
		Ticks:          s.ticks.Load(),
		Captured:       s.captured.Load(),
		SkippedBusy:    s.skippedBusy.Load(),
		SkippedDrag:    s.skippedDrag.Load(),
		Failures:       s.failures.Load(),
		State:          s.State().String(),
		DragGeneration: s.generation.Load(),
	}
}
