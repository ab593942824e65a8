package benchmark

import (
	"context"
	"fmt"

	"github.com/MeKo-Tech/pogo-lens/internal/aggregate"
	"github.com/MeKo-Tech/pogo-lens/internal/detector"
	"github.com/MeKo-Tech/pogo-lens/internal/pipeline"
	"github.com/MeKo-Tech/pogo-lens/internal/recognizer"
	"github.com/MeKo-Tech/pogo-lens/internal/testutil"
	"github.com/MeKo-Tech/pogo-lens/internal/translate"
	"github.com/MeKo-Tech/pogo-lens/internal/utils"
)

// Stage names registered by NewLensSuite.
const (
	StagePreprocess = "preprocess"
	StageDetect     = "detect"
	StageAggregate  = "aggregate"
	StageFrame      = "frame"
	StageRegions    = "frame_regions"
)

// LensConfig describes the synthetic snippet the stages run on.
type LensConfig struct {
	Lines []string
	Size  testutil.ImageSize
	Scale float64
}

// DefaultLensConfig is a three line snippet at the default capture upscale.
func DefaultLensConfig() LensConfig {
	return LensConfig{
		Lines: []string{"The quick brown fox", "jumps over", "the lazy dog"},
		Size:  testutil.MediumSize,
		Scale: 2,
	}
}

// NewLensSuite renders the snippet once and registers one benchmark per stage. The
// frame benchmarks go through the mock recognizer and translator, so they measure the
// pipeline itself rather than an OCR engine.
func NewLensSuite(cfg LensConfig) (*Suite, error) {
	if cfg.Scale < 1 {
		return nil, fmt.Errorf("scale must be >= 1, got %v", cfg.Scale)
	}
	tcfg := testutil.DefaultTextImageConfig()
	tcfg.Lines = cfg.Lines
	if cfg.Size.Width > 0 {
		tcfg.Size = cfg.Size
	}
	ti, err := testutil.GenerateTextImage(tcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to render snippet: %w", err)
	}
	tokens := ti.Scaled(cfg.Scale)

	gray, err := utils.PreprocessForOCR(ti.Image, cfg.Scale)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	det := detector.NewContourDetector(detector.DefaultConfig())
	agg := aggregate.NewAggregator(" ")

	plain, err := framePipeline(tokens, false)
	if err != nil {
		return nil, err
	}
	regions, err := framePipeline(tokens, true)
	if err != nil {
		return nil, err
	}

	s := NewSuite()
	s.Add(StagePreprocess, func() error {
		_, err := utils.PreprocessForOCR(ti.Image, cfg.Scale)
		return err
	})
	s.Add(StageDetect, func() error {
		_, err := det.Detect(ctx, gray)
		return err
	})
	s.Add(StageAggregate, func() error {
		if len(agg.Aggregate(tokens, cfg.Scale)) == 0 {
			return fmt.Errorf("no blocks aggregated")
		}
		return nil
	})
	s.Add(StageFrame, frameBench(ctx, plain, ti, cfg.Scale, true))
	// Region crops are recognized by the same mock, so block counts are not meaningful here.
	s.Add(StageRegions, frameBench(ctx, regions, ti, cfg.Scale, false))
	return s, nil
}

func framePipeline(tokens []aggregate.RawToken, detectRegions bool) (*pipeline.Pipeline, error) {
	b := pipeline.NewBuilder().
		WithRecognizer(recognizer.NewMock(tokens)).
		WithCache(translate.NewCache(translate.NewMockTranslator(nil))).
		WithLanguage("eng", "en", "de", " ").
		WithSkipUnchanged(false, 0).
		WithDetectRegions(detectRegions)
	if detectRegions {
		b = b.WithDetector(detector.NewContourDetector(detector.DefaultConfig()))
	}
	return b.Build()
}

func frameBench(ctx context.Context, p *pipeline.Pipeline, ti *testutil.TextImage, scale float64, wantBlocks bool) func() error {
	return func() error {
		frame, err := pipeline.FrameFromImage(ti.Image, scale)
		if err != nil {
			return err
		}
		res, err := p.Process(ctx, frame)
		if err != nil {
			return err
		}
		if wantBlocks && len(res.Blocks) == 0 {
			return fmt.Errorf("frame produced no blocks")
		}
		return nil
	}
}
