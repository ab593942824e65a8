package server

import (
	"image"
	"image/color"
	"log/slog"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/MeKo-Tech/pogo-lens/internal/overlay"
	"github.com/disintegration/imaging"
)

// lastFrame is the most recent processed frame, kept for /overlay.png.
type lastFrame struct {
	cycleID string
	image   image.Image
	scale   float64
	inset   int
	region  image.Rectangle
}

// Surface is the lens as seen by the pipeline. It forwards overlay changes to the
// connected renderers and reports the lens geometry they send back.
type Surface struct {
	hub          *hub
	blinkTimeout time.Duration

	current    atomic.Pointer[[]overlay.TranslatedBlock]
	suppressed atomic.Bool
	frame      atomic.Pointer[lastFrame]

	mu       sync.RWMutex
	region   image.Rectangle
	dragging bool
}

func newSurface(h *hub, region image.Rectangle, blinkTimeout time.Duration) *Surface {
	s := &Surface{hub: h, blinkTimeout: blinkTimeout, region: region}
	empty := []overlay.TranslatedBlock{}
	s.current.Store(&empty)
	return s
}

// SuppressOverlay hides the overlay on every renderer and waits for their acks, up to
// the blink timeout.
func (s *Surface) SuppressOverlay() {
	s.suppressed.Store(true)
	start := time.Now()
	ok := s.hub.broadcastAndWait(Message{Type: MsgSuppress}, s.blinkTimeout)
	blinkWaitSeconds.Observe(time.Since(start).Seconds())
	if !ok {
		blinkAckTimeouts.Inc()
		slog.Debug("Blink ack timed out", "timeout", s.blinkTimeout)
	}
}

func (s *Surface) RestoreOverlay() {
	s.suppressed.Store(false)
	s.hub.broadcast(Message{Type: MsgRestore})
}

// SetOverlay replaces the overlay and pushes it to the renderers.
func (s *Surface) SetOverlay(blocks []overlay.TranslatedBlock) {
	cp := slices.Clone(blocks)
	if cp == nil {
		cp = []overlay.TranslatedBlock{}
	}
	s.current.Store(&cp)
	s.hub.broadcast(Message{Type: MsgOverlay, Blocks: cp})
}

// Overlay returns the current overlay.
func (s *Surface) Overlay() []overlay.TranslatedBlock {
	return *s.current.Load()
}

// Suppressed reports whether a capture blink is in progress.
func (s *Surface) Suppressed() bool {
	return s.suppressed.Load()
}

// Region returns the lens rectangle in screen coordinates.
func (s *Surface) Region() image.Rectangle {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.region
}

// Dragging reports whether the user is moving the lens.
func (s *Surface) Dragging() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.dragging
}

// Geometry returns region and drag state together.
func (s *Surface) Geometry() Geometry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return GeometryOf(s.region, s.dragging)
}

// SetGeometry moves or resizes the lens.
func (s *Surface) SetGeometry(g Geometry) error {
	if err := g.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	changed := s.region != g.Rect() || s.dragging != g.Dragging
	s.region = g.Rect()
	s.dragging = g.Dragging
	s.mu.Unlock()
	if changed {
		slog.Debug("Lens geometry updated", "x", g.X, "y", g.Y, "width", g.Width, "height", g.Height, "dragging", g.Dragging)
	}
	return nil
}

// RecordFrame keeps the processed frame of a finished cycle. region is the grabbed
// screen rectangle, scale and inset are the values it was captured with.
func (s *Surface) RecordFrame(cycleID string, img image.Image, scale float64, inset int, region image.Rectangle) {
	if img == nil {
		return
	}
	s.frame.Store(&lastFrame{cycleID: cycleID, image: img, scale: scale, inset: inset, region: region})
}

// CycleID returns the id of the last recorded cycle.
func (s *Surface) CycleID() string {
	if f := s.frame.Load(); f != nil {
		return f.cycleID
	}
	return ""
}

// Snapshot renders the current overlay over the last frame at lens size. It returns
// false before the first frame.
func (s *Surface) Snapshot() (*image.RGBA, bool) {
	f := s.frame.Load()
	if f == nil || f.region.Empty() {
		return nil, false
	}
	w := f.region.Dx() + 2*f.inset
	h := f.region.Dy() + 2*f.inset

	content := f.image
	if b := content.Bounds(); b.Dx() != f.region.Dx() || b.Dy() != f.region.Dy() {
		content = imaging.Resize(content, f.region.Dx(), f.region.Dy(), imaging.Linear)
	}
	canvas := imaging.New(w, h, color.NRGBA{A: 255})
	canvas = imaging.Paste(canvas, content, image.Pt(f.inset, f.inset))

	return overlay.RenderOverlay(canvas, s.Overlay(), overlay.DefaultRenderOptions()), true
}
