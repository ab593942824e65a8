package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }

func TestLanguagePairs(t *testing.T) {
	pairs := LanguagePairs()
	require.Len(t, pairs, 7)
	for i := 1; i < len(pairs); i++ {
		assert.Less(t, pairs[i-1].Name, pairs[i].Name)
	}

	ja, ok := LookupPair(" JA-EN ")
	require.True(t, ok)
	assert.Equal(t, LanguagePair{Name: "ja-en", Recognizer: "jpn", Source: "ja", Target: "en", Separator: ""}, ja)
	assert.Equal(t, "Japanese → English", ja.Describe())

	zh, ok := LookupPair("zh-en")
	require.True(t, ok)
	assert.Equal(t, "chi_sim", zh.Recognizer)
	assert.Empty(t, zh.Separator)

	_, ok = LookupPair("xx-yy")
	assert.False(t, ok)
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "German", DisplayName("de"))
	assert.Equal(t, "Auto-detect", DisplayName("auto"))
	assert.Equal(t, "not a tag", DisplayName("not a tag"))
}

func TestResolveLanguage(t *testing.T) {
	cfg := DefaultConfig()
	pair, err := cfg.ResolveLanguage()
	require.NoError(t, err)
	assert.Equal(t, "jpn", pair.Recognizer)

	cfg.Language = LanguageConfig{Pair: "ja-en", Target: "de", Separator: strPtr(" ")}
	pair, err = cfg.ResolveLanguage()
	require.NoError(t, err)
	assert.Equal(t, "ja", pair.Source)
	assert.Equal(t, "de", pair.Target)
	assert.Equal(t, " ", pair.Separator)

	cfg.Language = LanguageConfig{Pair: "custom", Recognizer: "ita", Source: "auto", Target: "en"}
	pair, err = cfg.ResolveLanguage()
	require.NoError(t, err)
	assert.Equal(t, "custom", pair.Name)
	assert.Equal(t, " ", pair.Separator)

	cfg.Language = LanguageConfig{Pair: "custom", Source: "it", Target: "en"}
	_, err = cfg.ResolveLanguage()
	require.Error(t, err)

	cfg.Language = LanguageConfig{Pair: "en-de", Target: "auto"}
	_, err = cfg.ResolveLanguage()
	require.Error(t, err, "auto is only allowed as source")
}
