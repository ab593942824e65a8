//nolint:lll
package config

import (
	"time"
)

// Config represents the complete configuration of the lens. It is loaded from a
// configuration file, LENS_* environment variables and command-line flags.
type Config struct {
	LogLevel string `mapstructure:"log_level" yaml:"log_level" json:"log_level"`
	Verbose  bool   `mapstructure:"verbose" yaml:"verbose" json:"verbose"`

	Capture     CaptureConfig     `mapstructure:"capture" yaml:"capture" json:"capture"`
	Recognizer  RecognizerConfig  `mapstructure:"recognizer" yaml:"recognizer" json:"recognizer"`
	Aggregation AggregationConfig `mapstructure:"aggregation" yaml:"aggregation" json:"aggregation"`
	Translation TranslationConfig `mapstructure:"translation" yaml:"translation" json:"translation"`
	Language    LanguageConfig    `mapstructure:"language" yaml:"language" json:"language"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache" json:"cache"`
	Server      ServerConfig      `mapstructure:"server" yaml:"server" json:"server"`
}

// CaptureConfig controls the capture cadence and the lens geometry.
type CaptureConfig struct {
	Interval     time.Duration `mapstructure:"interval" yaml:"interval" json:"interval"`
	FastInterval time.Duration `mapstructure:"fast_interval" yaml:"fast_interval" json:"fast_interval"`
	BorderInset  int           `mapstructure:"border_inset" yaml:"border_inset" json:"border_inset"`
	Scale        float64       `mapstructure:"scale" yaml:"scale" json:"scale"`
	Region       RegionConfig  `mapstructure:"region" yaml:"region" json:"region"`
	// Source is "screen" or the path of an image served as the screen.
	Source        string `mapstructure:"source" yaml:"source" json:"source"`
	SkipUnchanged bool   `mapstructure:"skip_unchanged" yaml:"skip_unchanged" json:"skip_unchanged"`
	HashDistance  int    `mapstructure:"hash_distance" yaml:"hash_distance" json:"hash_distance"`
}

// RegionConfig is the initial lens rectangle in screen coordinates.
type RegionConfig struct {
	X      int `mapstructure:"x" yaml:"x" json:"x"`
	Y      int `mapstructure:"y" yaml:"y" json:"y"`
	Width  int `mapstructure:"width" yaml:"width" json:"width"`
	Height int `mapstructure:"height" yaml:"height" json:"height"`
}

// RecognizerConfig selects the recognition engine.
type RecognizerConfig struct {
	Engine        string `mapstructure:"engine" yaml:"engine" json:"engine"`
	PageSegMode   int    `mapstructure:"psm" yaml:"psm" json:"psm"`
	DataPath      string `mapstructure:"tessdata" yaml:"tessdata,omitempty" json:"tessdata,omitempty"`
	DetectRegions bool   `mapstructure:"detect_regions" yaml:"detect_regions" json:"detect_regions"`
	// MockTokens is a JSON token file answered by the mock engine.
	MockTokens string `mapstructure:"mock_tokens" yaml:"mock_tokens,omitempty" json:"mock_tokens,omitempty"`
}

// AggregationConfig tunes token filtering and spatial clustering.
type AggregationConfig struct {
	MinConfidence float64 `mapstructure:"min_confidence" yaml:"min_confidence" json:"min_confidence"`
	XGap          int     `mapstructure:"x_gap" yaml:"x_gap" json:"x_gap"`
	YGap          int     `mapstructure:"y_gap" yaml:"y_gap" json:"y_gap"`
}

// TranslationConfig configures the translation backend.
type TranslationConfig struct {
	// Engine is "libre" or "mock" (offline, upper-cases the input).
	Engine           string        `mapstructure:"engine" yaml:"engine" json:"engine"`
	URL              string        `mapstructure:"url" yaml:"url" json:"url"`
	APIKey           string        `mapstructure:"api_key" yaml:"api_key,omitempty" json:"-"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout" json:"timeout"`
	BreakerThreshold int           `mapstructure:"breaker_threshold" yaml:"breaker_threshold" json:"breaker_threshold"`
	BreakerCooldown  time.Duration `mapstructure:"breaker_cooldown" yaml:"breaker_cooldown" json:"breaker_cooldown"`
}

// LanguageConfig names a preset pair; the explicit fields override the preset.
type LanguageConfig struct {
	Pair       string  `mapstructure:"pair" yaml:"pair" json:"pair"`
	Recognizer string  `mapstructure:"recognizer" yaml:"recognizer,omitempty" json:"recognizer,omitempty"`
	Source     string  `mapstructure:"source" yaml:"source,omitempty" json:"source,omitempty"`
	Target     string  `mapstructure:"target" yaml:"target,omitempty" json:"target,omitempty"`
	Separator  *string `mapstructure:"separator" yaml:"separator,omitempty" json:"separator,omitempty"`
}

// CacheConfig selects the translation cache store. An empty RedisURL keeps the cache
// in process memory.
type CacheConfig struct {
	RedisURL string `mapstructure:"redis_url" yaml:"redis_url,omitempty" json:"redis_url,omitempty"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix" json:"prefix"`
}

// ServerConfig contains the lens control-plane settings.
type ServerConfig struct {
	Host            string        `mapstructure:"host" yaml:"host" json:"host"`
	Port            int           `mapstructure:"port" yaml:"port" json:"port"`
	CORSOrigin      string        `mapstructure:"cors_origin" yaml:"cors_origin" json:"cors_origin"`
	BlinkTimeout    time.Duration `mapstructure:"blink_timeout" yaml:"blink_timeout" json:"blink_timeout"`
	ShutdownTimeout int           `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout" json:"shutdown_timeout"`
}
