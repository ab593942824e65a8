package translate

import (
	"context"
	"errors"
	"strings"
	"sync"
)

// ErrMockFailure is returned by MockTranslator when Fail is set.
var ErrMockFailure = errors.New("mock translator failure")

// MockTranslator is an in-process Translator for tests and offline runs. It upper-cases
// the input unless a canned answer exists.
type MockTranslator struct {
	mu      sync.Mutex
	Answers map[string]string
	Fail    bool
	calls   []CacheKey
}

// NewMockTranslator creates a mock with optional canned answers keyed by input text.
func NewMockTranslator(answers map[string]string) *MockTranslator {
	if answers == nil {
		answers = map[string]string{}
	}
	return &MockTranslator{Answers: answers}
}

func (m *MockTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, CacheKey{Text: text, Source: source, Target: target})
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Fail {
		return "", ErrMockFailure
	}
	if v, ok := m.Answers[text]; ok {
		return v, nil
	}
	return strings.ToUpper(text), nil
}

// SetFail toggles failure mode.
func (m *MockTranslator) SetFail(fail bool) {
	m.mu.Lock()
	m.Fail = fail
	m.mu.Unlock()
}

// Calls returns a copy of every request seen so far.
func (m *MockTranslator) Calls() []CacheKey {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]CacheKey, len(m.calls))
	copy(out, m.calls)
	return out
}
