package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"time"

	"github.com/MeKo-Tech/pogo-lens/internal/aggregate"
	"github.com/MeKo-Tech/pogo-lens/internal/capture"
	"github.com/MeKo-Tech/pogo-lens/internal/common"
	"github.com/MeKo-Tech/pogo-lens/internal/overlay"
	"github.com/MeKo-Tech/pogo-lens/internal/translate"
	"github.com/MeKo-Tech/pogo-lens/internal/utils"
	"github.com/google/uuid"
)

// Stage names used in metrics and logs.
const (
	StageDetect    = "detect"
	StageRecognize = "recognize"
	StageAggregate = "aggregate"
	StageTranslate = "translate"
	StageTotal     = "total"
)

// FrameFromImage preprocesses a still image the same way a screen capture is, with no
// border inset. It backs the one-shot image command.
func FrameFromImage(img image.Image, scale float64) (*capture.Frame, error) {
	if img == nil {
		return nil, errors.New("input image is nil")
	}
	gray, err := utils.PreprocessForOCR(img, scale)
	if err != nil {
		return nil, err
	}
	b := gray.Bounds()
	return &capture.Frame{
		ID:         uuid.NewString(),
		Image:      gray,
		Width:      b.Dx(),
		Height:     b.Dy(),
		Scale:      scale,
		Region:     img.Bounds(),
		CapturedAt: time.Now(),
	}, nil
}

// ProcessFrame recognizes, aggregates and translates one frame. Box coordinates of the
// result are in display space relative to the lens region. A recognition error aborts
// the frame; translation failures degrade to the original text per block.
func (p *Pipeline) ProcessFrame(ctx context.Context, frame *capture.Frame) ([]overlay.TranslatedBlock, error) {
	res, err := p.process(ctx, frame)
	if err != nil {
		return nil, err
	}
	return res.Blocks, nil
}

// Process is like ProcessFrame but returns the whole cycle result, timings included.
// It neither touches the scheduler nor the surface.
func (p *Pipeline) Process(ctx context.Context, frame *capture.Frame) (*CycleResult, error) {
	res, err := p.process(ctx, frame)
	if err != nil {
		return nil, err
	}
	res.Status = StatusOK
	res.Frame = frame
	return res, nil
}

func (p *Pipeline) process(ctx context.Context, frame *capture.Frame) (*CycleResult, error) {
	if p == nil || p.recognizer == nil {
		return nil, errors.New("pipeline not initialized")
	}
	if frame == nil || frame.Image == nil {
		return nil, errors.New("frame is nil")
	}

	res := &CycleResult{
		ID:      uuid.NewString(),
		FrameID: frame.ID,
		Width:   frame.Width,
		Height:  frame.Height,
		Scale:   frame.Scale,
		Region:  RegionOf(frame.Region),
		Source:  p.cfg.SourceLang,
		Target:  p.cfg.TargetLang,
	}
	timer := common.NewStageTimer()

	tokens, regions, err := p.recognize(ctx, frame, timer)
	if err != nil {
		timer.Stop()
		return nil, err
	}
	res.Regions = regions
	res.Tokens = len(tokens)

	timer.Start(StageAggregate)
	blocks := p.aggregator.Aggregate(tokens, frame.Scale)

	timer.Start(StageTranslate)
	res.Blocks = p.translateBlocks(ctx, blocks, frame.Inset)

	total := timer.Stop()
	res.Timing = timer.Millis()
	res.Timing[StageTotal] = total.Milliseconds()

	timer.Each(func(stage string, d time.Duration) {
		cycleDuration.WithLabelValues(stage).Observe(d.Seconds())
	})
	cycleDuration.WithLabelValues(StageTotal).Observe(total.Seconds())
	blocksEmitted.Observe(float64(len(res.Blocks)))
	p.profiler.Record(timer, len(tokens), len(res.Blocks))

	slog.Debug("Frame processed",
		"cycle_id", res.ID,
		"frame_id", frame.ID,
		"tokens", len(tokens),
		"blocks", len(res.Blocks),
		"duration_ms", total.Milliseconds())
	return res, nil
}

// recognize runs the engine on the whole frame, or on each detected region when
// DetectRegions is on. Region tokens are shifted back into frame space and lose their
// group keys, since keys are only meaningful within one engine call.
func (p *Pipeline) recognize(ctx context.Context, frame *capture.Frame, timer *common.StageTimer) ([]aggregate.RawToken, int, error) {
	if !p.cfg.DetectRegions || p.detector == nil {
		timer.Start(StageRecognize)
		tokens, err := p.recognizer.Recognize(ctx, frame.Image, p.cfg.RecognizerLang)
		if err != nil {
			return nil, 0, fmt.Errorf("recognize frame: %w", err)
		}
		return tokens, 0, nil
	}

	timer.Start(StageDetect)
	boxes, err := p.detector.Detect(ctx, frame.Image)
	if err != nil {
		return nil, 0, fmt.Errorf("detect regions: %w", err)
	}

	timer.Start(StageRecognize)
	var tokens []aggregate.RawToken
	for i, box := range boxes {
		if err := ctx.Err(); err != nil {
			return nil, 0, err
		}
		r := box.Rect().Intersect(frame.Image.Bounds())
		crop, err := utils.CropImage(frame.Image, r)
		if err != nil {
			slog.Debug("Skipping region", "index", i, "box", box, "error", err)
			continue
		}
		regionTokens, err := p.recognizer.Recognize(ctx, utils.ToGray(crop), p.cfg.RecognizerLang)
		if err != nil {
			return nil, 0, fmt.Errorf("recognize region %d: %w", i, err)
		}
		for _, tok := range regionTokens {
			tok.Box = tok.Box.Offset(r.Min.X, r.Min.Y)
			tok.Key = nil
			tokens = append(tokens, tok)
		}
	}
	return tokens, len(boxes), nil
}

func (p *Pipeline) translateBlocks(ctx context.Context, blocks []aggregate.TextBlock, inset int) []overlay.TranslatedBlock {
	out := make([]overlay.TranslatedBlock, 0, len(blocks))
	for _, b := range blocks {
		text := translate.NormalizeSentence(b.Text)
		if text == "" {
			continue
		}
		out = append(out, overlay.TranslatedBlock{
			Box:        b.DisplayBox(inset),
			SourceBox:  b.Box,
			Original:   text,
			Translated: p.cache.Translate(ctx, text, p.cfg.SourceLang, p.cfg.TargetLang),
		})
	}
	return out
}
