// Package translate provides the translation backend client and the process-wide
// translation cache that sits in front of it.
package translate

import (
	"context"
	"strings"
)

// Translator translates a single sentence between two language codes.
type Translator interface {
	Translate(ctx context.Context, text, source, target string) (string, error)
}

// TranslatorFunc adapts a plain function to the Translator interface.
type TranslatorFunc func(ctx context.Context, text, source, target string) (string, error)

// Translate calls f.
func (f TranslatorFunc) Translate(ctx context.Context, text, source, target string) (string, error) {
	return f(ctx, text, source, target)
}

// NormalizeSentence folds line breaks into spaces and trims the result. Recognized text
// spanning several rendered lines is sent as one sentence.
func NormalizeSentence(text string) string {
	r := strings.NewReplacer("\r\n", " ", "\n", " ", "\r", " ")
	return strings.TrimSpace(r.Replace(text))
}
