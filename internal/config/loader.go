package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the base name for configuration files (without extension).
	ConfigFileName = "lens"

	// EnvPrefix is the prefix for environment variables.
	EnvPrefix = "LENS"

	appDir = "pogo-lens"
)

// Loader handles loading configuration from various sources.
type Loader struct {
	v *viper.Viper
}

// NewLoader creates a loader on the global viper instance, so flag bindings made by
// the root command apply.
func NewLoader() *Loader {
	return &Loader{v: viper.GetViper()}
}

// NewLoaderWithViper creates a loader on v.
func NewLoaderWithViper(v *viper.Viper) *Loader {
	return &Loader{v: v}
}

// LoadDotEnv loads KEY=VALUE pairs from the given files (default ".env") into the
// process environment. Missing files are ignored; existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("error loading %s: %w", f, err)
		}
	}
	return nil
}

// Load loads configuration from the search paths, environment variables and defaults.
func (l *Loader) Load() (*Config, error) {
	return l.load("", true)
}

// LoadWithoutValidation is like Load but skips Validate.
func (l *Loader) LoadWithoutValidation() (*Config, error) {
	return l.load("", false)
}

// LoadWithFile loads configuration from a specific file path.
func (l *Loader) LoadWithFile(configFile string) (*Config, error) {
	return l.load(configFile, true)
}

func (l *Loader) load(configFile string, validate bool) (*Config, error) {
	if configFile != "" {
		if _, err := os.Stat(configFile); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", configFile)
		}
		l.v.SetConfigFile(configFile)
	} else {
		l.v.SetConfigName(ConfigFileName)
		l.v.SetConfigType("yaml")
		l.addConfigPaths()
	}

	l.setupEnvironmentVariables()
	l.setDefaults()

	if err := l.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := l.v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if validate {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("configuration validation failed: %w", err)
		}
	}
	return &cfg, nil
}

// Get returns a value from the configuration.
func (l *Loader) Get(key string) any {
	return l.v.Get(key)
}

// Set sets a value in the configuration.
func (l *Loader) Set(key string, value any) {
	l.v.Set(key, value)
}

// ConfigFileUsed returns the path of the config file used, if any.
func (l *Loader) ConfigFileUsed() string {
	return l.v.ConfigFileUsed()
}

// Viper returns the underlying viper instance.
func (l *Loader) Viper() *viper.Viper {
	return l.v
}

func (l *Loader) addConfigPaths() {
	for _, p := range GetConfigSearchPaths() {
		l.v.AddConfigPath(p)
	}
}

func (l *Loader) setupEnvironmentVariables() {
	l.v.SetEnvPrefix(EnvPrefix)
	l.v.AutomaticEnv()
	l.v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	// No default: an unset separator must stay distinguishable from "".
	_ = l.v.BindEnv("language.separator")
}

func (l *Loader) setDefaults() {
	d := DefaultConfig()

	l.v.SetDefault("log_level", d.LogLevel)
	l.v.SetDefault("verbose", d.Verbose)

	l.v.SetDefault("capture.interval", d.Capture.Interval)
	l.v.SetDefault("capture.fast_interval", d.Capture.FastInterval)
	l.v.SetDefault("capture.border_inset", d.Capture.BorderInset)
	l.v.SetDefault("capture.scale", d.Capture.Scale)
	l.v.SetDefault("capture.region.x", d.Capture.Region.X)
	l.v.SetDefault("capture.region.y", d.Capture.Region.Y)
	l.v.SetDefault("capture.region.width", d.Capture.Region.Width)
	l.v.SetDefault("capture.region.height", d.Capture.Region.Height)
	l.v.SetDefault("capture.source", d.Capture.Source)
	l.v.SetDefault("capture.skip_unchanged", d.Capture.SkipUnchanged)
	l.v.SetDefault("capture.hash_distance", d.Capture.HashDistance)

	l.v.SetDefault("recognizer.engine", d.Recognizer.Engine)
	l.v.SetDefault("recognizer.psm", d.Recognizer.PageSegMode)
	l.v.SetDefault("recognizer.tessdata", d.Recognizer.DataPath)
	l.v.SetDefault("recognizer.detect_regions", d.Recognizer.DetectRegions)
	l.v.SetDefault("recognizer.mock_tokens", d.Recognizer.MockTokens)

	l.v.SetDefault("aggregation.min_confidence", d.Aggregation.MinConfidence)
	l.v.SetDefault("aggregation.x_gap", d.Aggregation.XGap)
	l.v.SetDefault("aggregation.y_gap", d.Aggregation.YGap)

	l.v.SetDefault("translation.engine", d.Translation.Engine)
	l.v.SetDefault("translation.url", d.Translation.URL)
	l.v.SetDefault("translation.api_key", d.Translation.APIKey)
	l.v.SetDefault("translation.timeout", d.Translation.Timeout)
	l.v.SetDefault("translation.breaker_threshold", d.Translation.BreakerThreshold)
	l.v.SetDefault("translation.breaker_cooldown", d.Translation.BreakerCooldown)

	l.v.SetDefault("language.pair", d.Language.Pair)
	l.v.SetDefault("language.recognizer", "")
	l.v.SetDefault("language.source", "")
	l.v.SetDefault("language.target", "")

	l.v.SetDefault("cache.redis_url", d.Cache.RedisURL)
	l.v.SetDefault("cache.prefix", d.Cache.Prefix)

	l.v.SetDefault("server.host", d.Server.Host)
	l.v.SetDefault("server.port", d.Server.Port)
	l.v.SetDefault("server.cors_origin", d.Server.CORSOrigin)
	l.v.SetDefault("server.blink_timeout", d.Server.BlinkTimeout)
	l.v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)
}

// GenerateDefaultConfigFile writes the default configuration as YAML. It refuses to
// overwrite an existing file unless force is set.
func GenerateDefaultConfigFile(filename string, force bool) (string, error) {
	if filename == "" {
		filename = ConfigFileName + ".yaml"
	}
	if !force {
		if _, err := os.Stat(filename); err == nil {
			return "", fmt.Errorf("config file already exists: %s (use --force to overwrite)", filename)
		}
	}
	cfg := DefaultConfig()
	data, err := cfg.YAML()
	if err != nil {
		return "", err
	}
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return "", err
		}
	}
	if err := os.WriteFile(filename, data, 0o644); err != nil { //nolint:gosec // config file is not secret
		return "", err
	}
	return filename, nil
}

// GetConfigSearchPaths returns the paths where configuration files are searched, in
// priority order.
func GetConfigSearchPaths() []string {
	paths := []string{"."}

	if configDir, exists := os.LookupEnv("XDG_CONFIG_HOME"); exists {
		paths = append(paths, filepath.Join(configDir, appDir))
	}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appDir))
	}

	return append(paths, "/etc/"+appDir)
}
