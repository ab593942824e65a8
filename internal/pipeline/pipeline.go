package pipeline

import (
	"errors"
	"fmt"
	"time"

	"github.com/MeKo-Tech/pogo-lens/internal/aggregate"
	"github.com/MeKo-Tech/pogo-lens/internal/capture"
	"github.com/MeKo-Tech/pogo-lens/internal/detector"
	"github.com/MeKo-Tech/pogo-lens/internal/overlay"
	"github.com/MeKo-Tech/pogo-lens/internal/recognizer"
	"github.com/MeKo-Tech/pogo-lens/internal/translate"
)

// Config holds the per-cycle settings of the lens pipeline.
type Config struct {
	// RecognizerLang is the engine language code, e.g. "jpn".
	RecognizerLang string
	SourceLang     string
	TargetLang     string
	// Separator joins words of one block; empty for scripts without spaces.
	Separator string

	MinConfidence float64
	XGap          int
	YGap          int

	// DetectRegions runs the detector first and recognizes each region separately.
	DetectRegions bool

	// SkipUnchanged keeps the previous overlay when the new frame is perceptually
	// identical to the last processed one.
	SkipUnchanged bool
	HashDistance  int

	Interval time.Duration
}

// DefaultConfig returns the Japanese to English setup with the standard cadence.
func DefaultConfig() Config {
	return Config{
		RecognizerLang: "jpn",
		SourceLang:     "ja",
		TargetLang:     "en",
		MinConfidence:  aggregate.DefaultMinConfidence,
		XGap:           aggregate.DefaultXGap,
		YGap:           aggregate.DefaultYGap,
		SkipUnchanged:  true,
		Interval:       capture.DefaultInterval,
	}
}

// Builder constructs a Pipeline with fluent configuration.
type Builder struct {
	cfg        Config
	recognizer recognizer.Recognizer
	detector   detector.Detector
	cache      *translate.Cache
	scheduler  *capture.Scheduler
	surface    overlay.Surface
	observers  []Observer
}

// NewBuilder creates a new pipeline builder with defaults.
func NewBuilder() *Builder { return &Builder{cfg: DefaultConfig()} }

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.cfg = cfg
	return b
}

// WithLanguage sets the recognizer code, the translation pair and the word separator.
func (b *Builder) WithLanguage(recognizerLang, source, target, separator string) *Builder {
	if recognizerLang != "" {
		b.cfg.RecognizerLang = recognizerLang
	}
	if source != "" {
		b.cfg.SourceLang = source
	}
	if target != "" {
		b.cfg.TargetLang = target
	}
	b.cfg.Separator = separator
	return b
}

// WithMinConfidence sets the token confidence cutoff.
func (b *Builder) WithMinConfidence(c float64) *Builder {
	if c >= 0 {
		b.cfg.MinConfidence = c
	}
	return b
}

// WithClusterGaps sets the spatial clustering thresholds.
func (b *Builder) WithClusterGaps(xGap, yGap int) *Builder {
	if xGap > 0 {
		b.cfg.XGap = xGap
	}
	if yGap > 0 {
		b.cfg.YGap = yGap
	}
	return b
}

// WithDetectRegions toggles the detect-then-crop recognition path.
func (b *Builder) WithDetectRegions(enabled bool) *Builder {
	b.cfg.DetectRegions = enabled
	return b
}

// WithSkipUnchanged configures the perceptual-hash skip.
func (b *Builder) WithSkipUnchanged(enabled bool, maxDistance int) *Builder {
	b.cfg.SkipUnchanged = enabled
	if maxDistance >= 0 {
		b.cfg.HashDistance = maxDistance
	}
	return b
}

// WithInterval sets the capture cadence used by Run.
func (b *Builder) WithInterval(d time.Duration) *Builder {
	if d > 0 {
		b.cfg.Interval = d
	}
	return b
}

// WithRecognizer sets the recognition engine.
func (b *Builder) WithRecognizer(r recognizer.Recognizer) *Builder {
	b.recognizer = r
	return b
}

// WithDetector sets the region detector used when DetectRegions is on.
func (b *Builder) WithDetector(d detector.Detector) *Builder {
	b.detector = d
	return b
}

// WithCache sets the translation cache.
func (b *Builder) WithCache(c *translate.Cache) *Builder {
	b.cache = c
	return b
}

// WithScheduler sets the capture scheduler and the surface overlays are delivered to.
// Both are only needed by Run.
func (b *Builder) WithScheduler(s *capture.Scheduler, surface overlay.Surface) *Builder {
	b.scheduler = s
	b.surface = surface
	return b
}

// WithObserver registers a callback invoked after every completed cycle.
func (b *Builder) WithObserver(o Observer) *Builder {
	if o != nil {
		b.observers = append(b.observers, o)
	}
	return b
}

// Config returns a copy of the current config.
func (b *Builder) Config() Config { return b.cfg }

// Validate checks that the configuration looks sane.
func (b *Builder) Validate() error {
	if b.recognizer == nil {
		return errors.New("recognizer is not set")
	}
	if b.cache == nil {
		return errors.New("translation cache is not set")
	}
	if b.cfg.RecognizerLang == "" {
		return errors.New("recognizer language is empty")
	}
	if b.cfg.SourceLang == "" || b.cfg.TargetLang == "" {
		return fmt.Errorf("incomplete language pair %q -> %q", b.cfg.SourceLang, b.cfg.TargetLang)
	}
	if b.cfg.HashDistance < 0 {
		return errors.New("hash distance must be >= 0")
	}
	if b.cfg.Interval <= 0 {
		return errors.New("interval must be > 0")
	}
	if (b.scheduler == nil) != (b.surface == nil) {
		return errors.New("scheduler and surface must be set together")
	}
	return nil
}

// Pipeline wires recognition, aggregation and translation for one frame at a time.
type Pipeline struct {
	cfg        Config
	recognizer recognizer.Recognizer
	detector   detector.Detector
	aggregator *aggregate.Aggregator
	cache      *translate.Cache
	scheduler  *capture.Scheduler
	surface    overlay.Surface
	observers  []Observer

	skip     *unchangedFilter
	profiler *Profiler
}

// Build initializes the pipeline.
func (b *Builder) Build() (*Pipeline, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}

	agg := aggregate.NewAggregator(b.cfg.Separator)
	agg.MinConfidence = b.cfg.MinConfidence
	agg.XGap = b.cfg.XGap
	agg.YGap = b.cfg.YGap

	det := b.detector
	if b.cfg.DetectRegions && det == nil {
		det = detector.NewContourDetector(detector.DefaultConfig())
	}

	p := &Pipeline{
		cfg:        b.cfg,
		recognizer: b.recognizer,
		detector:   det,
		aggregator: agg,
		cache:      b.cache,
		scheduler:  b.scheduler,
		surface:    b.surface,
		observers:  append([]Observer(nil), b.observers...),
		profiler:   &Profiler{},
	}
	if b.cfg.SkipUnchanged {
		p.skip = newUnchangedFilter(b.cfg.HashDistance)
	}
	return p, nil
}

// Close releases the recognizer.
func (p *Pipeline) Close() error {
	if p.recognizer == nil {
		return nil
	}
	err := recognizer.Close(p.recognizer)
	p.recognizer = nil
	return err
}

// Config returns the pipeline configuration.
func (p *Pipeline) Config() Config { return p.cfg }

// Profiler returns the cumulative stage counters.
func (p *Pipeline) Profiler() *Profiler { return p.profiler }

// Info returns a map with key pipeline properties.
func (p *Pipeline) Info() map[string]any {
	info := map[string]any{
		"recognizer_lang": p.cfg.RecognizerLang,
		"source":          p.cfg.SourceLang,
		"target":          p.cfg.TargetLang,
		"separator":       p.cfg.Separator,
		"min_confidence":  p.cfg.MinConfidence,
		"detect_regions":  p.cfg.DetectRegions,
		"skip_unchanged":  p.cfg.SkipUnchanged,
		"interval_ms":     p.cfg.Interval.Milliseconds(),
		"profile":         p.profiler.Snapshot(),
		"cache":           p.cache.Stats(),
	}
	if p.scheduler != nil {
		info["scheduler"] = p.scheduler.Stats()
	}
	return info
}
