package recognizer

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"os"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/MeKo-Tech/pogo-lens/internal/aggregate"
)

// MockRecognizer returns canned tokens. When Gate is set, Recognize blocks until a
// value is received from it (or ctx ends), which lets tests hold a frame in flight.
type MockRecognizer struct {
	mu     sync.Mutex
	tokens []aggregate.RawToken
	err    error
	langs  []string

	Gate    chan struct{}
	calls   atomic.Int64
	entered chan struct{}
}

// NewMock creates a mock that answers with tokens.
func NewMock(tokens []aggregate.RawToken) *MockRecognizer {
	return &MockRecognizer{tokens: tokens, entered: make(chan struct{}, 16)}
}

// SetTokens replaces the canned answer.
func (m *MockRecognizer) SetTokens(tokens []aggregate.RawToken) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tokens = tokens
}

// SetError makes subsequent calls fail with err; nil clears it.
func (m *MockRecognizer) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

func (m *MockRecognizer) Recognize(ctx context.Context, _ *image.Gray, lang string) ([]aggregate.RawToken, error) {
	m.calls.Add(1)
	select {
	case m.entered <- struct{}{}:
	default:
	}
	if m.Gate != nil {
		select {
		case <-m.Gate:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.langs = append(m.langs, lang)
	if m.err != nil {
		return nil, m.err
	}
	return slices.Clone(m.tokens), nil
}

// Entered signals each time Recognize starts.
func (m *MockRecognizer) Entered() <-chan struct{} { return m.entered }

// Calls returns how many times Recognize ran.
func (m *MockRecognizer) Calls() int64 { return m.calls.Load() }

// Languages returns the language codes seen so far.
func (m *MockRecognizer) Languages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return slices.Clone(m.langs)
}

// LoadTokens reads a JSON array of tokens for the mock engine.
func LoadTokens(path string) ([]aggregate.RawToken, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: user-supplied token file
	if err != nil {
		return nil, fmt.Errorf("read mock tokens: %w", err)
	}
	var tokens []aggregate.RawToken
	if err := json.Unmarshal(data, &tokens); err != nil {
		return nil, fmt.Errorf("parse mock tokens %s: %w", path, err)
	}
	return tokens, nil
}
