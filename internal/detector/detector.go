// Package detector locates text regions on a preprocessed grayscale frame.
package detector

import (
	"context"
	"errors"
	"image"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/pogo-lens/internal/mempool"
	"github.com/MeKo-Tech/pogo-lens/internal/utils"
)

// Detector returns text region boxes in the pixel space of the frame it was given.
type Detector interface {
	Detect(ctx context.Context, img *image.Gray) ([]utils.Box, error)
}

// Config holds contour detector parameters. Sizes are in processed-frame pixels.
type Config struct {
	// DilateX and DilateY are the kernel sizes used to join glyphs into words and lines.
	DilateX int
	DilateY int
	// MinArea drops components whose bounding box covers fewer pixels.
	MinArea int
	// MinHeight drops components shorter than this (speckles, underlines).
	MinHeight int
	// Padding grows every box on each side, clamped to the frame.
	Padding int
}

// DefaultConfig returns parameters tuned for 2x upscaled UI text.
func DefaultConfig() Config {
	return Config{
		DilateX:   15,
		DilateY:   3,
		MinArea:   60,
		MinHeight: 8,
		Padding:   2,
	}
}

// ContourDetector binarizes the frame with an Otsu threshold, dilates the text mask and
// reports the bounding boxes of its 4-connected components.
type ContourDetector struct {
	cfg Config
}

// NewContourDetector creates a detector; zero fields take defaults.
func NewContourDetector(cfg Config) *ContourDetector {
	def := DefaultConfig()
	if cfg.DilateX <= 0 {
		cfg.DilateX = def.DilateX
	}
	if cfg.DilateY <= 0 {
		cfg.DilateY = def.DilateY
	}
	if cfg.MinArea < 0 {
		cfg.MinArea = 0
	}
	if cfg.MinHeight < 0 {
		cfg.MinHeight = 0
	}
	if cfg.Padding < 0 {
		cfg.Padding = 0
	}
	return &ContourDetector{cfg: cfg}
}

// Config returns the effective configuration.
func (d *ContourDetector) Config() Config { return d.cfg }

// Detect finds text regions. Boxes are returned top-to-bottom, left-to-right.
func (d *ContourDetector) Detect(ctx context.Context, img *image.Gray) ([]utils.Box, error) {
	if img == nil {
		return nil, errors.New("detector: nil image")
	}
	start := time.Now()
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return []utils.Box{}, nil
	}

	mask := binarize(img)
	if err := ctx.Err(); err != nil {
		mempool.Bools.Put(mask)
		return nil, err
	}
	mask = dilate(mask, w, h, d.cfg.DilateX, d.cfg.DilateY)
	comps := connectedComponents(mask, w, h)
	mempool.Bools.Put(mask)

	boxes := make([]utils.Box, 0, len(comps))
	for _, c := range comps {
		bw, bh := c.maxX-c.minX+1, c.maxY-c.minY+1
		if bw*bh < d.cfg.MinArea || bh < d.cfg.MinHeight {
			continue
		}
		// A component spanning the whole frame is background, not text.
		if bw >= w && bh >= h {
			continue
		}
		p := d.cfg.Padding
		boxes = append(boxes, utils.BoxFromCorners(
			max(0, c.minX-p),
			max(0, c.minY-p),
			min(w, c.maxX+1+p),
			min(h, c.maxY+1+p),
		))
	}

	slog.Debug("Contour detection completed",
		"regions", len(boxes), "components", len(comps),
		"duration_ms", time.Since(start).Milliseconds())
	return boxes, nil
}
