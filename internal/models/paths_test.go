package models

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func installLangs(t *testing.T, langs ...string) string {
	t.Helper()
	dir := t.TempDir()
	for _, l := range langs {
		require.NoError(t, os.WriteFile(TrainedDataPath(dir, l), []byte("model"), 0o600))
	}
	return dir
}

func TestGetDataDir(t *testing.T) {
	tests := []struct {
		name        string
		explicitDir string
		envVar      string
		expected    string
	}{
		{name: "explicit wins over env", explicitDir: "/explicit", envVar: "/env", expected: "/explicit"},
		{name: "env used when no explicit dir", envVar: "/env/tessdata", expected: "/env/tessdata"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvDataDir, tt.envVar)
			assert.Equal(t, tt.expected, GetDataDir(tt.explicitDir))
		})
	}
}

func TestGetDataDir_ProjectRoot(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "go.mod"), []byte("module x\n"), 0o600))
	require.NoError(t, os.MkdirAll(filepath.Join(root, DefaultDataDir), 0o750))
	sub := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(sub, 0o750))

	t.Setenv(EnvDataDir, "")
	t.Chdir(sub)
	assert.Equal(t, filepath.Join(root, DefaultDataDir), GetDataDir(""))
}

func TestMissing(t *testing.T) {
	dir := installLangs(t, "eng", "jpn")

	assert.Empty(t, Missing(dir, "jpn+eng"))
	assert.Equal(t, []string{"chi_sim"}, Missing(dir, "chi_sim+eng"))
	assert.Equal(t, []string{"kor", "deu"}, Missing(dir, "kor+deu"))
	assert.Empty(t, Missing("", "kor"))
	assert.Empty(t, Missing(dir, "eng+"))
}

func TestValidateLanguage(t *testing.T) {
	dir := installLangs(t, "eng")
	require.NoError(t, ValidateLanguage(dir, "eng"))

	err := ValidateLanguage(dir, "jpn+eng")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jpn")
	assert.NotContains(t, err.Error(), "eng")
}

func TestAvailable(t *testing.T) {
	dir := installLangs(t, "jpn", "eng", "osd")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "README"), []byte("x"), 0o600))
	require.NoError(t, os.Mkdir(filepath.Join(dir, "configs"), 0o750))

	langs, err := Available(dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"eng", "jpn", "osd"}, langs)

	_, err = Available(filepath.Join(dir, "missing"))
	require.Error(t, err)
}
