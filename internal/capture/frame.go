// Package capture drives the lens capture cadence: it blinks the overlay away, grabs the
// screen region under the lens, preprocesses it for recognition and gates the next
// capture on the previous frame being finished.
package capture

import (
	"errors"
	"fmt"
	"image"
	"time"
)

// ErrUnsupported is returned by grabbers that cannot run on this platform.
var ErrUnsupported = errors.New("screen capture not supported on this platform")

// Frame is one preprocessed capture. It is owned by a single pipeline cycle.
type Frame struct {
	ID    string
	Image *image.Gray
	// Width and Height are the processed (upscaled) pixel dimensions.
	Width  int
	Height int
	// Scale is the upscale factor applied during preprocessing, always >= 1.
	Scale float64
	// Inset is the border inset removed on every side before the grab.
	Inset int
	// Region is the screen rectangle that was grabbed, after the inset.
	Region     image.Rectangle
	CapturedAt time.Time
	// Generation changes whenever the lens is dragged; results from an older
	// generation describe a region that is no longer under the lens.
	Generation uint64
}

// CaptureError wraps a failed grab with the rectangle that was requested.
type CaptureError struct {
	Rect image.Rectangle
	Err  error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture %v failed: %v", e.Rect, e.Err)
}

func (e *CaptureError) Unwrap() error { return e.Err }
