//go:build tesseract

package recognizer

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/MeKo-Tech/pogo-lens/internal/aggregate"
	"github.com/MeKo-Tech/pogo-lens/internal/models"
	"github.com/MeKo-Tech/pogo-lens/internal/utils"
	"github.com/otiai10/gosseract/v2"
)

// TesseractLinked reports whether this binary was built with the Tesseract engine.
const TesseractLinked = true

// ErrNoBackend is never returned when the Tesseract engine is linked.
var ErrNoBackend = errors.New("recognizer: tesseract engine not linked")

// Tesseract wraps one gosseract client. Calls are serialized on mu.
type Tesseract struct {
	mu     sync.Mutex
	client *gosseract.Client
	lang   string
	cfg    Config
}

func newTesseract(cfg Config) (Recognizer, error) {
	client := gosseract.NewClient()
	cfg.DataPath = models.GetDataDir(cfg.DataPath)
	if cfg.DataPath != "" {
		if err := client.SetTessdataPrefix(cfg.DataPath); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set tessdata prefix: %w", err)
		}
	}
	if cfg.PageSegMode > 0 {
		if err := client.SetPageSegMode(gosseract.PageSegMode(cfg.PageSegMode)); err != nil {
			_ = client.Close()
			return nil, fmt.Errorf("set page segmentation mode: %w", err)
		}
	}
	slog.Info("Tesseract recognizer ready",
		"version", gosseract.Version(), "tessdata", cfg.DataPath, "psm", cfg.PageSegMode)
	return &Tesseract{client: client, cfg: cfg}, nil
}

// Recognize runs Tesseract on img and returns word tokens with block/paragraph/line keys.
func (t *Tesseract) Recognize(ctx context.Context, img *image.Gray, lang string) ([]aggregate.RawToken, error) {
	if img == nil {
		return nil, errors.New("tesseract: nil image")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := utils.EncodePNG(img)
	if err != nil {
		return nil, err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if lang != "" && lang != t.lang {
		if err := models.ValidateLanguage(t.cfg.DataPath, lang); err != nil {
			return nil, err
		}
		if err := t.client.SetLanguage(strings.Split(lang, "+")...); err != nil {
			return nil, fmt.Errorf("set tesseract language %q: %w", lang, err)
		}
		t.lang = lang
	}
	if err := t.client.SetImageFromBytes(data); err != nil {
		return nil, fmt.Errorf("failed to set image: %w", err)
	}

	start := time.Now()
	words, err := t.client.GetBoundingBoxesVerbose()
	if err != nil {
		return nil, fmt.Errorf("tesseract OCR failed: %w", err)
	}

	converted := make([]Word, 0, len(words))
	for _, w := range words {
		converted = append(converted, Word{
			Text:       w.Word,
			Confidence: w.Confidence,
			Box:        w.Box,
			Block:      w.BlockNum,
			Paragraph:  w.ParNum,
			Line:       w.LineNum,
		})
	}
	tokens := wordsToTokens(converted, img.Bounds().Min)
	slog.Debug("Tesseract recognition completed",
		"tokens", len(tokens), "lang", t.lang, "duration_ms", time.Since(start).Milliseconds())
	return tokens, nil
}

// Close releases the native client.
func (t *Tesseract) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.client.Close()
}
