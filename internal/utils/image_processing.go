package utils

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"image/png"
	"math"

	"github.com/disintegration/imaging"
)

// ImageProcessingError represents errors that can occur during image processing.
type ImageProcessingError struct {
	Operation string
	Err       error
}

func (e *ImageProcessingError) Error() string {
	return fmt.Sprintf("image processing error in %s: %v", e.Operation, e.Err)
}

func (e *ImageProcessingError) Unwrap() error { return e.Err }

// ToGray converts any image to a single-channel intensity image anchored at (0,0).
func ToGray(img image.Image) *image.Gray {
	if g, ok := img.(*image.Gray); ok && g.Bounds().Min == (image.Point{}) {
		return g
	}
	b := img.Bounds()
	gray := image.NewGray(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(gray, gray.Bounds(), img, b.Min, draw.Src)
	return gray
}

// PreprocessForOCR converts img to grayscale and upscales it by scale using Catmull-Rom
// (cubic) interpolation. Small glyphs are recognized far better after the upscale.
func PreprocessForOCR(img image.Image, scale float64) (*image.Gray, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "preprocess", Err: errors.New("input image is nil")}
	}
	if scale < 1 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return nil, &ImageProcessingError{Operation: "preprocess", Err: fmt.Errorf("invalid scale %v", scale)}
	}
	b := img.Bounds()
	if b.Empty() {
		return nil, &ImageProcessingError{Operation: "preprocess", Err: errors.New("empty image")}
	}

	gray := imaging.Grayscale(img)
	if scale == 1 {
		return ToGray(gray), nil
	}
	w := max(1, int(math.Round(float64(b.Dx())*scale)))
	h := max(1, int(math.Round(float64(b.Dy())*scale)))
	return ToGray(imaging.Resize(gray, w, h, imaging.CatmullRom)), nil
}

// CropImage returns the part of img inside r, re-anchored at (0,0).
func CropImage(img image.Image, r image.Rectangle) (image.Image, error) {
	if img == nil {
		return nil, &ImageProcessingError{Operation: "crop", Err: errors.New("input image is nil")}
	}
	clipped := r.Intersect(img.Bounds())
	if clipped.Empty() {
		return nil, &ImageProcessingError{
			Operation: "crop",
			Err:       fmt.Errorf("region %v outside image bounds %v", r, img.Bounds()),
		}
	}
	return imaging.Crop(img, clipped), nil
}

// EncodePNG encodes img as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, &ImageProcessingError{Operation: "encode", Err: err}
	}
	return buf.Bytes(), nil
}
