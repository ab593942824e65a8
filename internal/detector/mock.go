package detector

import (
	"context"
	"image"
	"slices"
	"sync/atomic"

	"github.com/MeKo-Tech/pogo-lens/internal/utils"
)

// MockDetector returns a fixed set of boxes.
type MockDetector struct {
	Boxes []utils.Box
	Err   error
	calls atomic.Int64
}

func (m *MockDetector) Detect(ctx context.Context, _ *image.Gray) ([]utils.Box, error) {
	m.calls.Add(1)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if m.Err != nil {
		return nil, m.Err
	}
	return slices.Clone(m.Boxes), nil
}

// Calls returns how many times Detect ran.
func (m *MockDetector) Calls() int64 { return m.calls.Load() }
