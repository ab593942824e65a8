package utils

import (
	"image"
	"image/color"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func solidRGBA(w, h int, c color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := range h {
		for x := range w {
			img.Set(x, y, c)
		}
	}
	return img
}

func TestPreprocessForOCR(t *testing.T) {
	src := solidRGBA(40, 20, color.RGBA{R: 200, G: 200, B: 200, A: 255})

	for _, scale := range []float64{1, 2, 3} {
		gray, err := PreprocessForOCR(src, scale)
		require.NoError(t, err)
		assert.Equal(t, int(40*scale), gray.Bounds().Dx())
		assert.Equal(t, int(20*scale), gray.Bounds().Dy())
		assert.Equal(t, image.Point{}, gray.Bounds().Min)
	}
}

func TestPreprocessForOCR_Grayscale(t *testing.T) {
	src := solidRGBA(8, 8, color.RGBA{R: 255, A: 255})
	gray, err := PreprocessForOCR(src, 2)
	require.NoError(t, err)

	// Solid input stays uniform after the cubic upscale.
	first := gray.GrayAt(0, 0).Y
	for y := range gray.Bounds().Dy() {
		for x := range gray.Bounds().Dx() {
			assert.InDelta(t, first, gray.GrayAt(x, y).Y, 1)
		}
	}
}

func TestPreprocessForOCR_Errors(t *testing.T) {
	_, err := PreprocessForOCR(nil, 2)
	require.Error(t, err)

	_, err = PreprocessForOCR(solidRGBA(4, 4, color.White), 0.5)
	var ipe *ImageProcessingError
	require.ErrorAs(t, err, &ipe)
	assert.Equal(t, "preprocess", ipe.Operation)

	_, err = PreprocessForOCR(image.NewRGBA(image.Rect(0, 0, 0, 0)), 2)
	require.Error(t, err)
}

func TestToGray_ReanchorsOrigin(t *testing.T) {
	src := image.NewRGBA(image.Rect(10, 10, 20, 15))
	gray := ToGray(src)
	assert.Equal(t, image.Rect(0, 0, 10, 5), gray.Bounds())
}

func TestCropImage(t *testing.T) {
	src := solidRGBA(100, 50, color.White)

	out, err := CropImage(src, image.Rect(10, 10, 30, 20))
	require.NoError(t, err)
	assert.Equal(t, 20, out.Bounds().Dx())
	assert.Equal(t, 10, out.Bounds().Dy())

	out, err = CropImage(src, image.Rect(90, 40, 200, 200))
	require.NoError(t, err)
	assert.Equal(t, 10, out.Bounds().Dx())

	_, err = CropImage(src, image.Rect(500, 500, 600, 600))
	require.Error(t, err)
}
