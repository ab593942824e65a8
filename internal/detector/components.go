package detector

import "github.com/MeKo-Tech/pogo-lens/internal/mempool"

// compStats represents statistics for a connected component.
type compStats struct {
	count int
	minX  int
	minY  int
	maxX  int
	maxY  int
}

// connectedComponents finds 4-connected components in the mask, in raster order of
// their first pixel.
func connectedComponents(mask []bool, w, h int) []compStats {
	visited := mempool.Bools.Get(w * h)
	defer mempool.Bools.Put(visited)
	queue := mempool.Ints.Get(0)
	defer func() { mempool.Ints.Put(queue) }()

	var comps []compStats

	for y := range h {
		for x := range w {
			idx := y*w + x
			if !mask[idx] || visited[idx] {
				continue
			}
			var st compStats
			st, queue = componentBFS(mask, visited, w, h, x, y, queue[:0])
			comps = append(comps, st)
		}
	}
	return comps
}

// componentBFS floods one component starting from a seed pixel. The queue buffer is
// returned for reuse.
func componentBFS(mask, visited []bool, w, h, startX, startY int, queue []int) (compStats, []int) {
	st := compStats{minX: startX, minY: startY, maxX: startX, maxY: startY}
	start := startY*w + startX
	visited[start] = true
	queue = append(queue, start)

	for head := 0; head < len(queue); head++ {
		ci := queue[head]
		cx, cy := ci%w, ci/w
		st.count++
		st.minX = min(st.minX, cx)
		st.minY = min(st.minY, cy)
		st.maxX = max(st.maxX, cx)
		st.maxY = max(st.maxY, cy)

		for _, d := range [4][2]int{{1, 0}, {-1, 0}, {0, 1}, {0, -1}} {
			nx, ny := cx+d[0], cy+d[1]
			if nx < 0 || nx >= w || ny < 0 || ny >= h {
				continue
			}
			ni := ny*w + nx
			if mask[ni] && !visited[ni] {
				visited[ni] = true
				queue = append(queue, ni)
			}
		}
	}
	return st, queue
}
