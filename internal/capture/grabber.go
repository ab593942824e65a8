package capture

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"sync"

	"github.com/MeKo-Tech/pogo-lens/internal/utils"
	"github.com/disintegration/imaging"
)

// Grabber returns the screen pixels inside rect (screen coordinates).
type Grabber interface {
	Grab(ctx context.Context, rect image.Rectangle) (image.Image, error)
}

// GrabberFunc adapts a function to Grabber.
type GrabberFunc func(ctx context.Context, rect image.Rectangle) (image.Image, error)

func (f GrabberFunc) Grab(ctx context.Context, rect image.Rectangle) (image.Image, error) {
	return f(ctx, rect)
}

// ImageGrabber serves regions of a fixed image as if it were the screen. The image
// origin is treated as the screen origin.
type ImageGrabber struct {
	mu  sync.RWMutex
	img image.Image
}

// NewImageGrabber wraps img.
func NewImageGrabber(img image.Image) *ImageGrabber {
	return &ImageGrabber{img: img}
}

// NewFileGrabber loads path once and serves it.
func NewFileGrabber(path string) (*ImageGrabber, error) {
	img, err := utils.LoadImage(path)
	if err != nil {
		return nil, err
	}
	return NewImageGrabber(img), nil
}

// SetImage replaces the served image.
func (g *ImageGrabber) SetImage(img image.Image) {
	g.mu.Lock()
	g.img = img
	g.mu.Unlock()
}

// Bounds returns the size of the served "screen".
func (g *ImageGrabber) Bounds() image.Rectangle {
	g.mu.RLock()
	defer g.mu.RUnlock()
	if g.img == nil {
		return image.Rectangle{}
	}
	return g.img.Bounds()
}

func (g *ImageGrabber) Grab(_ context.Context, rect image.Rectangle) (image.Image, error) {
	g.mu.RLock()
	img := g.img
	g.mu.RUnlock()
	if img == nil {
		return nil, &CaptureError{Rect: rect, Err: fmt.Errorf("no image loaded")}
	}
	if !rect.In(img.Bounds()) {
		return nil, &CaptureError{Rect: rect, Err: fmt.Errorf("region outside screen %v", img.Bounds())}
	}
	return utils.CropImage(img, rect)
}

// CommandGrabber shells out to the platform screenshot tool, decodes the result and crops
// the requested region.
type CommandGrabber struct {
	tempDir string
	// command builds the screenshot invocation writing to file.
	command func(ctx context.Context, file string, rect image.Rectangle) (*exec.Cmd, bool, error)
}

// NewCommandGrabber creates a grabber for the current platform.
func NewCommandGrabber() *CommandGrabber {
	tmpDir, err := os.MkdirTemp("", "pogo-lens-capture-*")
	if err != nil {
		slog.Error("Failed to create temp dir for screenshots", "error", err)
		tmpDir = os.TempDir()
	}
	return &CommandGrabber{tempDir: tmpDir, command: platformCommand}
}

func (g *CommandGrabber) Grab(ctx context.Context, rect image.Rectangle) (image.Image, error) {
	file := filepath.Join(g.tempDir, "screenshot.png")
	cmd, cropped, err := g.command(ctx, file, rect)
	if err != nil {
		return nil, &CaptureError{Rect: rect, Err: err}
	}

	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, &CaptureError{Rect: rect, Err: fmt.Errorf("%s: %w: %s", filepath.Base(cmd.Path), err, stderr.String())}
	}

	data, err := os.ReadFile(file) //nolint:gosec // G304: file is created in our own temp dir
	if err != nil {
		return nil, &CaptureError{Rect: rect, Err: err}
	}
	_ = os.Remove(file)

	img, err := utils.DecodeImageBytes(data)
	if err != nil {
		return nil, &CaptureError{Rect: rect, Err: err}
	}
	if cropped {
		// HiDPI screens return more pixels than the requested logical size.
		if img.Bounds().Dx() != rect.Dx() || img.Bounds().Dy() != rect.Dy() {
			return imaging.Resize(img, rect.Dx(), rect.Dy(), imaging.Linear), nil
		}
		return img, nil
	}
	if !rect.In(img.Bounds()) {
		return nil, &CaptureError{Rect: rect, Err: fmt.Errorf("region outside screen %v", img.Bounds())}
	}
	return utils.CropImage(img, rect)
}

// Close removes the temp directory.
func (g *CommandGrabber) Close() error {
	if g.tempDir == os.TempDir() {
		return nil
	}
	return os.RemoveAll(g.tempDir)
}
