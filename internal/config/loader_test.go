package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLoader() *Loader {
	return NewLoaderWithViper(viper.New())
}

func TestLoad_NoConfigFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := newTestLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig().Server.Port, cfg.Server.Port)
	assert.Equal(t, DefaultConfig().Capture.Interval, cfg.Capture.Interval)
	assert.Nil(t, cfg.Language.Separator)
}

func TestLoadWithFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "lens.yaml")
	content := `
log_level: debug
capture:
  interval: 750ms
  region:
    x: 5
    y: 6
    width: 400
    height: 120
language:
  pair: en-de
  separator: ""
translation:
  url: http://translate.local:5000
  timeout: 3s
server:
  port: 9000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	l := newTestLoader()
	cfg, err := l.LoadWithFile(path)
	require.NoError(t, err)
	assert.Equal(t, path, l.ConfigFileUsed())

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 750*time.Millisecond, cfg.Capture.Interval)
	assert.Equal(t, RegionConfig{X: 5, Y: 6, Width: 400, Height: 120}, cfg.Capture.Region)
	assert.Equal(t, 3*time.Second, cfg.Translation.Timeout)
	assert.Equal(t, 9000, cfg.Server.Port)
	// Untouched keys keep their defaults.
	assert.Equal(t, 4, cfg.Capture.BorderInset)

	require.NotNil(t, cfg.Language.Separator)
	pair, err := cfg.ResolveLanguage()
	require.NoError(t, err)
	assert.Empty(t, pair.Separator)
}

func TestLoadWithFile_Errors(t *testing.T) {
	_, err := newTestLoader().LoadWithFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "lens.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("server:\n  port: 0\n"), 0o600))
	_, err = newTestLoader().LoadWithFile(bad)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validation failed")
}

func TestLoad_EnvironmentOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("LENS_SERVER_PORT", "9100")
	t.Setenv("LENS_LANGUAGE_PAIR", "fr-en")
	t.Setenv("LENS_CAPTURE_INTERVAL", "2s")
	t.Setenv("LENS_LANGUAGE_SEPARATOR", "-")

	cfg, err := newTestLoader().Load()
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 2*time.Second, cfg.Capture.Interval)

	pair, err := cfg.ResolveLanguage()
	require.NoError(t, err)
	assert.Equal(t, "fra", pair.Recognizer)
	assert.Equal(t, "-", pair.Separator)
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("LENS_TEST_DOTENV_VALUE=from-dotenv\n"), 0o600))
	t.Setenv("LENS_TEST_DOTENV_VALUE", "")
	require.NoError(t, os.Unsetenv("LENS_TEST_DOTENV_VALUE"))

	require.NoError(t, LoadDotEnv(envFile, filepath.Join(dir, "missing.env")))
	assert.Equal(t, "from-dotenv", os.Getenv("LENS_TEST_DOTENV_VALUE"))
}

func TestGenerateDefaultConfigFile_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "lens.yaml")

	written, err := GenerateDefaultConfigFile(path, false)
	require.NoError(t, err)
	assert.Equal(t, path, written)

	_, err = GenerateDefaultConfigFile(path, false)
	require.Error(t, err)
	_, err = GenerateDefaultConfigFile(path, true)
	require.NoError(t, err)

	cfg, err := newTestLoader().LoadWithFile(path)
	require.NoError(t, err)
	def := DefaultConfig()
	assert.Equal(t, def.Capture, cfg.Capture)
	assert.Equal(t, def.Translation, cfg.Translation)
	assert.Equal(t, def.Server, cfg.Server)
}

func TestGetConfigSearchPaths(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	paths := GetConfigSearchPaths()
	assert.Equal(t, ".", paths[0])
	assert.Contains(t, paths, filepath.Join("/tmp/xdg", "pogo-lens"))
	assert.Equal(t, "/etc/pogo-lens", paths[len(paths)-1])
}
