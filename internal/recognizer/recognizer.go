package recognizer

import (
	"context"
	"fmt"
	"image"
	"strings"

	"github.com/MeKo-Tech/pogo-lens/internal/aggregate"
)

// Recognizer extracts tokens from img. lang is an engine-specific code such as "jpn".
// Token boxes are in the pixel space of img.
type Recognizer interface {
	Recognize(ctx context.Context, img *image.Gray, lang string) ([]aggregate.RawToken, error)
}

// Engine names accepted by New.
const (
	EngineTesseract = "tesseract"
	EngineMock      = "mock"
)

// Config selects and tunes the recognition engine.
type Config struct {
	Engine string
	// PageSegMode is passed to engines that support it; 0 keeps the engine default.
	PageSegMode int
	// DataPath optionally overrides the engine's model directory.
	DataPath string
	// TokensFile seeds the mock engine with a JSON array of tokens.
	TokensFile string
}

// DefaultConfig returns the Tesseract engine with automatic page segmentation.
func DefaultConfig() Config {
	return Config{Engine: EngineTesseract, PageSegMode: 3}
}

// CheckEngine reports early whether engine can be created by this build.
func CheckEngine(engine string) error {
	switch strings.ToLower(engine) {
	case "", EngineTesseract:
		if !TesseractLinked {
			return ErrNoBackend
		}
		return nil
	case EngineMock:
		return nil
	default:
		return fmt.Errorf("unknown recognizer engine %q", engine)
	}
}

// New creates the configured engine.
func New(cfg Config) (Recognizer, error) {
	switch strings.ToLower(cfg.Engine) {
	case "", EngineTesseract:
		return newTesseract(cfg)
	case EngineMock:
		if cfg.TokensFile == "" {
			return NewMock(nil), nil
		}
		tokens, err := LoadTokens(cfg.TokensFile)
		if err != nil {
			return nil, err
		}
		return NewMock(tokens), nil
	default:
		return nil, fmt.Errorf("unknown recognizer engine %q", cfg.Engine)
	}
}

// Closer is implemented by engines holding native resources.
type Closer interface {
	Close() error
}

// Close releases r if it holds resources.
func Close(r Recognizer) error {
	if c, ok := r.(Closer); ok {
		return c.Close()
	}
	return nil
}
