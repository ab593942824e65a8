package config

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/language/display"
)

// LanguagePair is everything that has to agree for one source language: the recognizer
// code, the translator codes and the separator used to join recognized words.
type LanguagePair struct {
	Name       string `yaml:"name" json:"name"`
	Recognizer string `yaml:"recognizer" json:"recognizer"`
	Source     string `yaml:"source" json:"source"`
	Target     string `yaml:"target" json:"target"`
	Separator  string `yaml:"separator" json:"separator"`
}

// DefaultPair is used when no pair is configured.
const DefaultPair = "ja-en"

var languagePairs = map[string]LanguagePair{
	"ja-en": {Name: "ja-en", Recognizer: "jpn", Source: "ja", Target: "en", Separator: ""},
	"zh-en": {Name: "zh-en", Recognizer: "chi_sim", Source: "zh", Target: "en", Separator: ""},
	"ko-en": {Name: "ko-en", Recognizer: "kor", Source: "ko", Target: "en", Separator: " "},
	"en-es": {Name: "en-es", Recognizer: "eng", Source: "en", Target: "es", Separator: " "},
	"en-de": {Name: "en-de", Recognizer: "eng", Source: "en", Target: "de", Separator: " "},
	"de-en": {Name: "de-en", Recognizer: "deu", Source: "de", Target: "en", Separator: " "},
	"fr-en": {Name: "fr-en", Recognizer: "fra", Source: "fr", Target: "en", Separator: " "},
}

// LanguagePairs returns the built-in presets sorted by name.
func LanguagePairs() []LanguagePair {
	out := make([]LanguagePair, 0, len(languagePairs))
	for _, p := range languagePairs {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// LookupPair finds a preset by name, case-insensitively.
func LookupPair(name string) (LanguagePair, bool) {
	p, ok := languagePairs[strings.ToLower(strings.TrimSpace(name))]
	return p, ok
}

// Describe returns a human-readable form such as "Japanese → English".
func (p LanguagePair) Describe() string {
	return DisplayName(p.Source) + " → " + DisplayName(p.Target)
}

// DisplayName returns the English name of a language code, or the code itself when it
// is not a valid tag.
func DisplayName(code string) string {
	if code == "auto" {
		return "Auto-detect"
	}
	tag, err := language.Parse(code)
	if err != nil {
		return code
	}
	if name := display.English.Languages().Name(tag); name != "" {
		return name
	}
	return code
}

// ResolveLanguage merges the configured preset with the explicit overrides.
func (c *Config) ResolveLanguage() (LanguagePair, error) {
	name := c.Language.Pair
	if name == "" {
		name = DefaultPair
	}

	var pair LanguagePair
	if preset, ok := LookupPair(name); ok {
		pair = preset
	} else if c.Language.Recognizer == "" || c.Language.Source == "" || c.Language.Target == "" {
		return LanguagePair{}, fmt.Errorf("unknown language pair %q (known: %s)", name, strings.Join(pairNames(), ", "))
	} else {
		pair = LanguagePair{Name: name, Separator: " "}
	}

	if c.Language.Recognizer != "" {
		pair.Recognizer = c.Language.Recognizer
	}
	if c.Language.Source != "" {
		pair.Source = c.Language.Source
	}
	if c.Language.Target != "" {
		pair.Target = c.Language.Target
	}
	if c.Language.Separator != nil {
		pair.Separator = *c.Language.Separator
	}

	if err := validateLanguageCode(pair.Source, true); err != nil {
		return LanguagePair{}, fmt.Errorf("invalid source language: %w", err)
	}
	if err := validateLanguageCode(pair.Target, false); err != nil {
		return LanguagePair{}, fmt.Errorf("invalid target language: %w", err)
	}
	return pair, nil
}

func pairNames() []string {
	names := make([]string, 0, len(languagePairs))
	for name := range languagePairs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func validateLanguageCode(code string, allowAuto bool) error {
	if code == "" {
		return fmt.Errorf("language code is empty")
	}
	if code == "auto" {
		if allowAuto {
			return nil
		}
		return fmt.Errorf("%q is only valid as source language", code)
	}
	if _, err := language.Parse(code); err != nil {
		return fmt.Errorf("%q: %w", code, err)
	}
	return nil
}
