package config

import (
	"image"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultConfig_Valid(t *testing.T) {
	cfg := DefaultConfig()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 1500*time.Millisecond, cfg.Capture.Interval)
	assert.Equal(t, 100*time.Millisecond, cfg.Capture.FastInterval)
	assert.Equal(t, 4, cfg.Capture.BorderInset)
	assert.InDelta(t, 2.0, cfg.Capture.Scale, 0)
	assert.Equal(t, 2*time.Second, cfg.Translation.Timeout)
	assert.Equal(t, "http://127.0.0.1:5000", cfg.Translation.URL)
	assert.Equal(t, 50*time.Millisecond, cfg.Server.BlinkTimeout)
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"log level", func(c *Config) { c.LogLevel = "trace" }, "invalid log level"},
		{"interval", func(c *Config) { c.Capture.Interval = 0 }, "capture.interval"},
		{"fast interval", func(c *Config) { c.Capture.FastInterval = -time.Second }, "capture.fast_interval"},
		{"inset", func(c *Config) { c.Capture.BorderInset = -1 }, "border_inset"},
		{"scale", func(c *Config) { c.Capture.Scale = 0.5 }, "capture.scale"},
		{"region", func(c *Config) { c.Capture.Region.Width = -3 }, "capture.region"},
		{"source", func(c *Config) { c.Capture.Source = " " }, "capture.source"},
		{"hash distance", func(c *Config) { c.Capture.HashDistance = 65 }, "hash_distance"},
		{"engine", func(c *Config) { c.Recognizer.Engine = "paddle" }, "recognizer engine"},
		{"psm", func(c *Config) { c.Recognizer.PageSegMode = 14 }, "psm"},
		{"confidence", func(c *Config) { c.Aggregation.MinConfidence = 101 }, "min_confidence"},
		{"gaps", func(c *Config) { c.Aggregation.YGap = 0 }, "gaps"},
		{"translation engine", func(c *Config) { c.Translation.Engine = "deepl" }, "translation engine"},
		{"translation url", func(c *Config) { c.Translation.URL = "ftp://x" }, "translation.url"},
		{"timeout", func(c *Config) { c.Translation.Timeout = 0 }, "translation.timeout"},
		{"breaker", func(c *Config) { c.Translation.BreakerThreshold = -1 }, "breaker_threshold"},
		{"cooldown", func(c *Config) { c.Translation.BreakerCooldown = 0 }, "breaker_cooldown"},
		{"pair", func(c *Config) { c.Language.Pair = "xx-yy" }, "unknown language pair"},
		{"target tag", func(c *Config) { c.Language.Target = "not a tag" }, "target language"},
		{"redis", func(c *Config) { c.Cache.RedisURL = "http://localhost" }, "redis_url"},
		{"port", func(c *Config) { c.Server.Port = 70000 }, "server port"},
		{"blink", func(c *Config) { c.Server.BlinkTimeout = 0 }, "blink_timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestValidate_MockTranslationSkipsURL(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Translation.Engine = TranslationMock
	cfg.Translation.URL = ""
	assert.NoError(t, cfg.Validate())

	cfg.Translation.BreakerThreshold = 0
	cfg.Translation.BreakerCooldown = 0
	assert.NoError(t, cfg.Validate(), "a disabled breaker needs no cooldown")
}

func TestConversions(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Capture.Region = RegionConfig{X: 10, Y: 20, Width: 300, Height: 100}
	cfg.Language.Pair = "ko-en"
	cfg.Recognizer.DetectRegions = true

	assert.Equal(t, image.Rect(10, 20, 310, 120), cfg.RegionRect())
	assert.Equal(t, cfg.Capture.FastInterval, cfg.CaptureInterval(true))
	assert.Equal(t, cfg.Capture.Interval, cfg.CaptureInterval(false))

	opts := cfg.ToSchedulerOptions()
	assert.Equal(t, 4, opts.BorderInset)

	rc := cfg.ToRecognizerConfig()
	assert.Equal(t, "tesseract", rc.Engine)
	assert.Equal(t, 3, rc.PageSegMode)

	lo := cfg.ToLibreOptions()
	assert.Equal(t, cfg.Translation.URL, lo.URL)
	assert.Equal(t, cfg.Translation.Timeout, lo.Timeout)

	pc, err := cfg.ToPipelineConfig(true)
	require.NoError(t, err)
	assert.Equal(t, "kor", pc.RecognizerLang)
	assert.Equal(t, "ko", pc.SourceLang)
	assert.Equal(t, "en", pc.TargetLang)
	assert.Equal(t, " ", pc.Separator)
	assert.True(t, pc.DetectRegions)
	assert.Equal(t, cfg.Capture.FastInterval, pc.Interval)
}

func TestYAML_DurationsAndSecrets(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Translation.APIKey = "secret-key"
	out, err := cfg.YAML()
	require.NoError(t, err)

	s := string(out)
	assert.Contains(t, s, "interval: 1.5s")
	assert.Contains(t, s, "fast_interval: 100ms")
	assert.Contains(t, s, "blink_timeout: 50ms")
	assert.Contains(t, s, "timeout: 2s")
	assert.NotContains(t, s, "secret-key")
	assert.True(t, strings.Contains(s, "pair: ja-en"))
}
