package detector

import "github.com/MeKo-Tech/pogo-lens/internal/mempool"

// dilate grows the mask with a kx-by-ky rectangular kernel. The kernel is separable, so
// the work is one horizontal and one vertical pass using running window counts. dilate
// takes ownership of mask: replaced buffers go back to mempool.Bools.
func dilate(mask []bool, w, h, kx, ky int) []bool {
	if kx > 1 {
		out := dilateRows(mask, w, h, kx/2)
		mempool.Bools.Put(mask)
		mask = out
	}
	if ky > 1 {
		out := dilateCols(mask, w, h, ky/2)
		mempool.Bools.Put(mask)
		mask = out
	}
	return mask
}

func dilateRows(mask []bool, w, h, half int) []bool {
	out := mempool.Bools.Get(len(mask))
	for y := range h {
		row := mask[y*w : (y+1)*w]
		count := 0
		// Prime the window [-half, half] around x=0.
		for x := 0; x <= half && x < w; x++ {
			if row[x] {
				count++
			}
		}
		for x := range w {
			out[y*w+x] = count > 0
			if in := x + half + 1; in < w && row[in] {
				count++
			}
			if outIdx := x - half; outIdx >= 0 && row[outIdx] {
				count--
			}
		}
	}
	return out
}

func dilateCols(mask []bool, w, h, half int) []bool {
	out := mempool.Bools.Get(len(mask))
	for x := range w {
		count := 0
		for y := 0; y <= half && y < h; y++ {
			if mask[y*w+x] {
				count++
			}
		}
		for y := range h {
			out[y*w+x] = count > 0
			if in := y + half + 1; in < h && mask[in*w+x] {
				count++
			}
			if outIdx := y - half; outIdx >= 0 && mask[outIdx*w+x] {
				count--
			}
		}
	}
	return out
}
