package config

import (
	"gopkg.in/yaml.v3"
)

// yaml.v3 writes time.Duration as nanoseconds; these mirrors print "1.5s" instead, which
// viper reads back as a duration.

func (c CaptureConfig) MarshalYAML() (any, error) {
	return struct {
		Interval      string       `yaml:"interval"`
		FastInterval  string       `yaml:"fast_interval"`
		BorderInset   int          `yaml:"border_inset"`
		Scale         float64      `yaml:"scale"`
		Region        RegionConfig `yaml:"region"`
		Source        string       `yaml:"source"`
		SkipUnchanged bool         `yaml:"skip_unchanged"`
		HashDistance  int          `yaml:"hash_distance"`
	}{
		Interval:      c.Interval.String(),
		FastInterval:  c.FastInterval.String(),
		BorderInset:   c.BorderInset,
		Scale:         c.Scale,
		Region:        c.Region,
		Source:        c.Source,
		SkipUnchanged: c.SkipUnchanged,
		HashDistance:  c.HashDistance,
	}, nil
}

func (c TranslationConfig) MarshalYAML() (any, error) {
	return struct {
		Engine           string `yaml:"engine"`
		URL              string `yaml:"url"`
		APIKey           string `yaml:"api_key,omitempty"`
		Timeout          string `yaml:"timeout"`
		BreakerThreshold int    `yaml:"breaker_threshold"`
		BreakerCooldown  string `yaml:"breaker_cooldown"`
	}{
		Engine:           c.Engine,
		URL:              c.URL,
		APIKey:           redact(c.APIKey),
		Timeout:          c.Timeout.String(),
		BreakerThreshold: c.BreakerThreshold,
		BreakerCooldown:  c.BreakerCooldown.String(),
	}, nil
}

func (c ServerConfig) MarshalYAML() (any, error) {
	return struct {
		Host            string `yaml:"host"`
		Port            int    `yaml:"port"`
		CORSOrigin      string `yaml:"cors_origin"`
		BlinkTimeout    string `yaml:"blink_timeout"`
		ShutdownTimeout int    `yaml:"shutdown_timeout"`
	}{
		Host:            c.Host,
		Port:            c.Port,
		CORSOrigin:      c.CORSOrigin,
		BlinkTimeout:    c.BlinkTimeout.String(),
		ShutdownTimeout: c.ShutdownTimeout,
	}, nil
}

func redact(secret string) string {
	if secret == "" {
		return ""
	}
	return "********"
}

// YAML renders the configuration. Secrets are masked.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}
