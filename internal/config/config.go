package config

import (
	"fmt"
	"image"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/MeKo-Tech/pogo-lens/internal/aggregate"
	"github.com/MeKo-Tech/pogo-lens/internal/capture"
	"github.com/MeKo-Tech/pogo-lens/internal/pipeline"
	"github.com/MeKo-Tech/pogo-lens/internal/recognizer"
	"github.com/MeKo-Tech/pogo-lens/internal/translate"
)

// Translation engines.
const (
	TranslationLibre = "libre"
	TranslationMock  = "mock"
)

// SourceScreen captures the live screen.
const SourceScreen = "screen"

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() Config {
	return Config{
		LogLevel: "info",
		Verbose:  false,
		Capture: CaptureConfig{
			Interval:      capture.DefaultInterval,
			FastInterval:  capture.DefaultFastInterval,
			BorderInset:   capture.DefaultBorderInset,
			Scale:         capture.DefaultScale,
			Region:        RegionConfig{X: 100, Y: 100, Width: 600, Height: 200},
			Source:        SourceScreen,
			SkipUnchanged: true,
			HashDistance:  0,
		},
		Recognizer: RecognizerConfig{
			Engine:      recognizer.EngineTesseract,
			PageSegMode: recognizer.DefaultConfig().PageSegMode,
		},
		Aggregation: AggregationConfig{
			MinConfidence: aggregate.DefaultMinConfidence,
			XGap:          aggregate.DefaultXGap,
			YGap:          aggregate.DefaultYGap,
		},
		Translation: TranslationConfig{
			Engine:           TranslationLibre,
			URL:              translate.DefaultURL,
			Timeout:          translate.DefaultTimeout,
			BreakerThreshold: 5,
			BreakerCooldown:  30 * time.Second,
		},
		Language: LanguageConfig{Pair: DefaultPair},
		Cache: CacheConfig{
			Prefix: translate.DefaultRedisPrefix,
		},
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            8765,
			CORSOrigin:      "*",
			BlinkTimeout:    50 * time.Millisecond,
			ShutdownTimeout: 5,
		},
	}
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	validLogLevels := []string{"debug", "info", "warn", "error"}
	if !slices.Contains(validLogLevels, c.LogLevel) {
		return fmt.Errorf("invalid log level: %s (must be one of: %s)", c.LogLevel, strings.Join(validLogLevels, ", "))
	}

	if err := c.validateCapture(); err != nil {
		return err
	}

	validEngines := []string{recognizer.EngineTesseract, recognizer.EngineMock}
	if !slices.Contains(validEngines, c.Recognizer.Engine) {
		return fmt.Errorf("invalid recognizer engine: %s (must be one of: %s)", c.Recognizer.Engine, strings.Join(validEngines, ", "))
	}
	if c.Recognizer.PageSegMode < 0 || c.Recognizer.PageSegMode > 13 {
		return fmt.Errorf("invalid recognizer.psm: %d (must be between 0 and 13)", c.Recognizer.PageSegMode)
	}

	if c.Aggregation.MinConfidence < 0 || c.Aggregation.MinConfidence > 100 {
		return fmt.Errorf("invalid aggregation.min_confidence: %.2f (must be between 0 and 100)", c.Aggregation.MinConfidence)
	}
	if c.Aggregation.XGap <= 0 || c.Aggregation.YGap <= 0 {
		return fmt.Errorf("invalid aggregation gaps: x=%d y=%d (must be positive)", c.Aggregation.XGap, c.Aggregation.YGap)
	}

	if err := c.validateTranslation(); err != nil {
		return err
	}
	if _, err := c.ResolveLanguage(); err != nil {
		return err
	}

	if c.Cache.RedisURL != "" {
		u, err := url.Parse(c.Cache.RedisURL)
		if err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			return fmt.Errorf("invalid cache.redis_url: %q (expected redis:// or rediss://)", c.Cache.RedisURL)
		}
	}

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be between 1 and 65535)", c.Server.Port)
	}
	if c.Server.BlinkTimeout <= 0 {
		return fmt.Errorf("invalid server.blink_timeout: %v (must be positive)", c.Server.BlinkTimeout)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("invalid server.shutdown_timeout: %d (must be positive)", c.Server.ShutdownTimeout)
	}
	return nil
}

func (c *Config) validateCapture() error {
	if c.Capture.Interval <= 0 {
		return fmt.Errorf("invalid capture.interval: %v (must be positive)", c.Capture.Interval)
	}
	if c.Capture.FastInterval <= 0 {
		return fmt.Errorf("invalid capture.fast_interval: %v (must be positive)", c.Capture.FastInterval)
	}
	if c.Capture.BorderInset < 0 {
		return fmt.Errorf("invalid capture.border_inset: %d (must be >= 0)", c.Capture.BorderInset)
	}
	if c.Capture.Scale < 1 {
		return fmt.Errorf("invalid capture.scale: %.2f (must be >= 1)", c.Capture.Scale)
	}
	if c.Capture.Region.Width < 0 || c.Capture.Region.Height < 0 {
		return fmt.Errorf("invalid capture.region size %dx%d", c.Capture.Region.Width, c.Capture.Region.Height)
	}
	if strings.TrimSpace(c.Capture.Source) == "" {
		return fmt.Errorf("capture.source is empty (use %q or an image path)", SourceScreen)
	}
	if c.Capture.HashDistance < 0 || c.Capture.HashDistance > 64 {
		return fmt.Errorf("invalid capture.hash_distance: %d (must be between 0 and 64)", c.Capture.HashDistance)
	}
	return nil
}

func (c *Config) validateTranslation() error {
	switch c.Translation.Engine {
	case TranslationMock:
	case TranslationLibre:
		u, err := url.Parse(c.Translation.URL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("invalid translation.url: %q", c.Translation.URL)
		}
	default:
		return fmt.Errorf("invalid translation engine: %s (must be one of: %s, %s)", c.Translation.Engine, TranslationLibre, TranslationMock)
	}
	if c.Translation.Timeout <= 0 {
		return fmt.Errorf("invalid translation.timeout: %v (must be positive)", c.Translation.Timeout)
	}
	if c.Translation.BreakerThreshold < 0 {
		return fmt.Errorf("invalid translation.breaker_threshold: %d (0 disables the breaker)", c.Translation.BreakerThreshold)
	}
	if c.Translation.BreakerThreshold > 0 && c.Translation.BreakerCooldown <= 0 {
		return fmt.Errorf("invalid translation.breaker_cooldown: %v (must be positive)", c.Translation.BreakerCooldown)
	}
	return nil
}

// RegionRect returns the configured lens rectangle.
func (c *Config) RegionRect() image.Rectangle {
	r := c.Capture.Region
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// CaptureInterval returns the cadence for the normal or the fast loop.
func (c *Config) CaptureInterval(fast bool) time.Duration {
	if fast {
		return c.Capture.FastInterval
	}
	return c.Capture.Interval
}

// ToSchedulerOptions converts to capture.Options.
func (c *Config) ToSchedulerOptions() capture.Options {
	return capture.Options{BorderInset: c.Capture.BorderInset, Scale: c.Capture.Scale}
}

// ToRecognizerConfig converts to recognizer.Config.
func (c *Config) ToRecognizerConfig() recognizer.Config {
	return recognizer.Config{
		Engine:      c.Recognizer.Engine,
		PageSegMode: c.Recognizer.PageSegMode,
		DataPath:    c.Recognizer.DataPath,
		TokensFile:  c.Recognizer.MockTokens,
	}
}

// ToLibreOptions converts to translate.LibreOptions.
func (c *Config) ToLibreOptions() translate.LibreOptions {
	return translate.LibreOptions{URL: c.Translation.URL, APIKey: c.Translation.APIKey, Timeout: c.Translation.Timeout}
}

// ToPipelineConfig converts the config to the pipeline configuration. The language
// pair must resolve; call Validate first.
func (c *Config) ToPipelineConfig(fast bool) (pipeline.Config, error) {
	pair, err := c.ResolveLanguage()
	if err != nil {
		return pipeline.Config{}, err
	}
	return pipeline.Config{
		RecognizerLang: pair.Recognizer,
		SourceLang:     pair.Source,
		TargetLang:     pair.Target,
		Separator:      pair.Separator,
		MinConfidence:  c.Aggregation.MinConfidence,
		XGap:           c.Aggregation.XGap,
		YGap:           c.Aggregation.YGap,
		DetectRegions:  c.Recognizer.DetectRegions,
		SkipUnchanged:  c.Capture.SkipUnchanged,
		HashDistance:   c.Capture.HashDistance,
		Interval:       c.CaptureInterval(fast),
	}, nil
}
