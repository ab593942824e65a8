package recognizer

import (
	"context"
	"errors"
	"image"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/MeKo-Tech/pogo-lens/internal/aggregate"
	"github.com/MeKo-Tech/pogo-lens/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Engines(t *testing.T) {
	r, err := New(Config{Engine: "MOCK"})
	require.NoError(t, err)
	assert.IsType(t, &MockRecognizer{}, r)
	assert.NoError(t, Close(r))

	_, err = New(Config{Engine: "paddle"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "paddle")
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, EngineTesseract, cfg.Engine)
	assert.Equal(t, 3, cfg.PageSegMode)
}

func TestMockRecognizer(t *testing.T) {
	tok := aggregate.RawToken{Text: "hi", Confidence: 90, Box: utils.NewBox(0, 0, 10, 10)}
	m := NewMock([]aggregate.RawToken{tok})
	img := image.NewGray(image.Rect(0, 0, 4, 4))

	got, err := m.Recognize(context.Background(), img, "jpn")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "hi", got[0].Text)

	// Mutating the result must not leak into the mock.
	got[0].Text = "changed"
	again, err := m.Recognize(context.Background(), img, "eng")
	require.NoError(t, err)
	assert.Equal(t, "hi", again[0].Text)
	assert.Equal(t, []string{"jpn", "eng"}, m.Languages())

	m.SetError(errors.New("engine crashed"))
	_, err = m.Recognize(context.Background(), img, "jpn")
	require.Error(t, err)
	assert.Equal(t, int64(3), m.Calls())
}

func TestMockRecognizer_Gate(t *testing.T) {
	m := NewMock(nil)
	m.Gate = make(chan struct{})

	done := make(chan error, 1)
	go func() {
		_, err := m.Recognize(context.Background(), nil, "")
		done <- err
	}()

	select {
	case <-m.Entered():
	case <-time.After(time.Second):
		t.Fatal("Recognize never started")
	}
	select {
	case <-done:
		t.Fatal("Recognize returned before the gate opened")
	case <-time.After(20 * time.Millisecond):
	}

	m.Gate <- struct{}{}
	require.NoError(t, <-done)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := m.Recognize(ctx, nil, "")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNew_MockTokensFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tokens.json")
	data := `[{"text":"日本","confidence":91,"box":{"x":1,"y":2,"w":30,"h":12},"key":{"block":1,"paragraph":1,"line":1}}]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	r, err := New(Config{Engine: EngineMock, TokensFile: path})
	require.NoError(t, err)
	got, err := r.Recognize(context.Background(), image.NewGray(image.Rect(0, 0, 8, 8)), "jpn")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "日本", got[0].Text)
	assert.Equal(t, utils.NewBox(1, 2, 30, 12), got[0].Box)
	require.NotNil(t, got[0].Key)
	assert.Equal(t, 1, got[0].Key.Line)

	_, err = New(Config{Engine: EngineMock, TokensFile: filepath.Join(t.TempDir(), "missing.json")})
	require.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte("{"), 0o600))
	_, err = LoadTokens(bad)
	require.Error(t, err)
}
