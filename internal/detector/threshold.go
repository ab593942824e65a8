package detector

import (
	"image"

	"github.com/MeKo-Tech/pogo-lens/internal/mempool"
)

// otsuThreshold returns the intensity that maximizes between-class variance.
func otsuThreshold(hist *[256]int, total int) uint8 {
	if total == 0 {
		return 128
	}
	var sumAll float64
	for i, c := range hist {
		sumAll += float64(i * c)
	}

	var (
		sumB    float64
		weightB int
		best    float64
		thresh  int
	)
	for t := range 256 {
		weightB += hist[t]
		if weightB == 0 {
			continue
		}
		weightF := total - weightB
		if weightF == 0 {
			break
		}
		sumB += float64(t * hist[t])
		meanB := sumB / float64(weightB)
		meanF := (sumAll - sumB) / float64(weightF)
		between := float64(weightB) * float64(weightF) * (meanB - meanF) * (meanB - meanF)
		if between > best {
			best = between
			thresh = t
		}
	}
	return uint8(thresh)
}

// binarize marks text pixels. Text polarity is inferred from the majority class: the
// larger class is background, so dark-on-light and light-on-dark both yield a text mask.
// The mask comes from mempool.Bools.
func binarize(img *image.Gray) []bool {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()

	var hist [256]int
	for y := range h {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		for _, v := range img.Pix[off : off+w] {
			hist[v]++
		}
	}
	t := otsuThreshold(&hist, w*h)

	above := 0
	for v := int(t) + 1; v < 256; v++ {
		above += hist[v]
	}
	darkText := above*2 >= w*h

	mask := mempool.Bools.Get(w * h)
	for y := range h {
		off := img.PixOffset(b.Min.X, b.Min.Y+y)
		for x, v := range img.Pix[off : off+w] {
			if darkText {
				mask[y*w+x] = v <= t
			} else {
				mask[y*w+x] = v > t
			}
		}
	}
	return mask
}
