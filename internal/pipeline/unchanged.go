package pipeline

import (
	"image"
	"log/slog"
	"sync"

	"github.com/MeKo-Tech/pogo-lens/internal/capture"
	"github.com/cespare/xxhash/v2"
	"github.com/corona10/goimagehash"
)

// unchangedFilter remembers the last successfully processed frame so an identical screen
// does not pay for recognition and translation again. The perceptual hash is only a
// prefilter: it cannot see a changed word, so a match must also have identical pixels.
type unchangedFilter struct {
	mu          sync.Mutex
	maxDistance int
	last        *goimagehash.ImageHash
	sum         uint64
	bounds      image.Rectangle
	generation  uint64
	region      image.Rectangle
}

// frameSum checksums the pixel rows of img, ignoring any stride padding.
func frameSum(img *image.Gray) uint64 {
	d := xxhash.New()
	b := img.Bounds()
	for y := b.Min.Y; y < b.Max.Y; y++ {
		off := img.PixOffset(b.Min.X, y)
		_, _ = d.Write(img.Pix[off : off+b.Dx()])
	}
	return d.Sum64()
}

func newUnchangedFilter(maxDistance int) *unchangedFilter {
	return &unchangedFilter{maxDistance: maxDistance}
}

// check hashes frame and reports whether it matches the remembered one. The hash is
// returned so the caller can remember it once the frame has been processed.
func (f *unchangedFilter) check(frame *capture.Frame) (bool, *goimagehash.ImageHash) {
	if frame == nil || frame.Image == nil {
		return false, nil
	}
	hash, err := goimagehash.PerceptionHash(frame.Image)
	if err != nil {
		slog.Debug("Perceptual hash failed", "error", err)
		return false, nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.last == nil || f.generation != frame.Generation || f.region != frame.Region {
		return false, hash
	}
	dist, err := f.last.Distance(hash)
	if err != nil || dist > f.maxDistance {
		return false, hash
	}
	return f.bounds == frame.Image.Bounds() && f.sum == frameSum(frame.Image), hash
}

func (f *unchangedFilter) remember(frame *capture.Frame, hash *goimagehash.ImageHash) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = hash
	f.sum = frameSum(frame.Image)
	f.bounds = frame.Image.Bounds()
	f.generation = frame.Generation
	f.region = frame.Region
}

func (f *unchangedFilter) reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.last = nil
}
