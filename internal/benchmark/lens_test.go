package benchmark

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLensSuite(t *testing.T) {
	s, err := NewLensSuite(DefaultLensConfig())
	require.NoError(t, err)
	assert.Equal(t, []string{StagePreprocess, StageDetect, StageAggregate, StageFrame, StageRegions}, s.Names())

	for _, res := range s.RunAll(2) {
		require.NoError(t, res.Error, res.Name)
		assert.Equal(t, 2, res.Iterations, res.Name)
	}
}

func TestNewLensSuite_InvalidConfig(t *testing.T) {
	cfg := DefaultLensConfig()
	cfg.Scale = 0.5
	_, err := NewLensSuite(cfg)
	require.Error(t, err)

	cfg = DefaultLensConfig()
	cfg.Lines = []string{"this line is far too long to fit into the snippet width at double scale"}
	_, err = NewLensSuite(cfg)
	require.Error(t, err)
}

func BenchmarkLensStages(b *testing.B) {
	s, err := NewLensSuite(DefaultLensConfig())
	require.NoError(b, err)
	for _, name := range s.Names() {
		b.Run(name, func(b *testing.B) {
			for b.Loop() {
				if res := s.Run(name, 1); res.Error != nil {
					b.Fatal(res.Error)
				}
			}
		})
	}
}
