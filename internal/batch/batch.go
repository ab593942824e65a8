// Package batch runs the one-shot lens pipeline over many image files.
package batch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/MeKo-Tech/pogo-lens/internal/overlay"
	"github.com/MeKo-Tech/pogo-lens/internal/pipeline"
	"github.com/MeKo-Tech/pogo-lens/internal/utils"
)

// Config holds the batch settings besides the pipeline itself.
type Config struct {
	// Scale is the preprocessing upscale applied to every image.
	Scale float64
	// OverlayDir receives <name>_overlay.png per processed file when set.
	OverlayDir string
	Discovery  Discovery
}

// Item is the outcome for one file. Exactly one of Result and Err is set.
type Item struct {
	Path   string
	Result *pipeline.CycleResult
	Err    error
}

// Result holds the result of batch processing.
type Result struct {
	Items    []Item
	Duration time.Duration
}

// Failed counts the items that ended in an error.
func (r *Result) Failed() int {
	n := 0
	for _, it := range r.Items {
		if it.Err != nil {
			n++
		}
	}
	return n
}

// Blocks counts the translated blocks over all files.
func (r *Result) Blocks() int {
	n := 0
	for _, it := range r.Items {
		if it.Result != nil {
			n += len(it.Result.Blocks)
		}
	}
	return n
}

// Process discovers the files named by args and runs each through p in order. A file
// that fails is recorded and the batch continues; ctx cancellation stops it.
func Process(ctx context.Context, p *pipeline.Pipeline, args []string, cfg Config) (*Result, error) {
	if p == nil {
		return nil, errors.New("batch: nil pipeline")
	}
	files, err := Discover(args, cfg.Discovery)
	if err != nil {
		return nil, fmt.Errorf("failed to discover image files: %w", err)
	}
	if len(files) == 0 {
		return nil, errors.New("no image files found")
	}
	if cfg.OverlayDir != "" {
		if err := os.MkdirAll(cfg.OverlayDir, 0o750); err != nil {
			return nil, fmt.Errorf("failed to create overlay directory: %w", err)
		}
	}

	start := time.Now()
	res := &Result{Items: make([]Item, 0, len(files))}
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		cr, err := processFile(ctx, p, path, cfg)
		if err != nil {
			slog.Warn("Image failed", "file", path, "error", err)
		}
		res.Items = append(res.Items, Item{Path: path, Result: cr, Err: err})
	}
	res.Duration = time.Since(start)

	slog.Info("Batch processed",
		"files", len(res.Items),
		"failed", res.Failed(),
		"blocks", res.Blocks(),
		"duration_ms", res.Duration.Milliseconds())
	return res, nil
}

func processFile(ctx context.Context, p *pipeline.Pipeline, path string, cfg Config) (*pipeline.CycleResult, error) {
	img, err := utils.LoadImage(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", path, err)
	}
	frame, err := pipeline.FrameFromImage(img, cfg.Scale)
	if err != nil {
		return nil, err
	}
	res, err := p.Process(ctx, frame)
	if err != nil {
		return nil, fmt.Errorf("processing %s: %w", path, err)
	}
	if cfg.OverlayDir != "" {
		out := overlay.RenderOverlay(img, res.Blocks, overlay.DefaultRenderOptions())
		if err := utils.SaveImage(out, OverlayPath(cfg.OverlayDir, path)); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// OverlayPath is where the rendered overlay of path lands inside dir.
func OverlayPath(dir, path string) string {
	base := filepath.Base(path)
	return filepath.Join(dir, strings.TrimSuffix(base, filepath.Ext(base))+"_overlay.png")
}
