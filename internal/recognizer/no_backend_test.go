//go:build !tesseract

package recognizer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNew_WithoutTesseract(t *testing.T) {
	_, err := New(DefaultConfig())
	assert.ErrorIs(t, err, ErrNoBackend)
}

func TestCheckEngine_WithoutTesseract(t *testing.T) {
	assert.ErrorIs(t, CheckEngine(""), ErrNoBackend)
	assert.ErrorIs(t, CheckEngine("Tesseract"), ErrNoBackend)
	assert.Contains(t, ErrNoBackend.Error(), "-tags=tesseract")
	assert.Contains(t, ErrNoBackend.Error(), "recognizer.engine: mock")
	assert.NoError(t, CheckEngine(EngineMock))
	assert.Error(t, CheckEngine("paddle"))
}
