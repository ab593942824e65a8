package aggregate

import (
	"cmp"
	"slices"

	"github.com/MeKo-Tech/pogo-lens/internal/utils"
)

// Default clustering thresholds in processed-frame pixels.
const (
	DefaultXGap = 20
	DefaultYGap = 10
)

// Cluster merges word boxes into row-wise runs. Boxes are sorted top-to-bottom then
// left-to-right and swept once: a box joins the current cluster when its top edge is
// within yGap of the cluster's top edge and its left edge starts less than xGap past the
// cluster's right edge. Otherwise the current cluster is emitted and the box starts a
// new one.
//
// The sweep never revisits an emitted cluster, so a box that belongs with a cluster two
// positions back in sort order stays separate.
func Cluster(boxes []utils.Box, xGap, yGap int) []utils.Box {
	out, _ := clusterMembers(boxes, xGap, yGap)
	return out
}

// clusterMembers runs the sweep and also reports, per emitted cluster, the indices of the
// input boxes that were merged into it.
func clusterMembers(boxes []utils.Box, xGap, yGap int) ([]utils.Box, [][]int) {
	if len(boxes) == 0 {
		return []utils.Box{}, nil
	}

	order := make([]int, len(boxes))
	for i := range order {
		order[i] = i
	}
	slices.SortStableFunc(order, func(a, b int) int {
		if c := cmp.Compare(boxes[a].Y, boxes[b].Y); c != 0 {
			return c
		}
		return cmp.Compare(boxes[a].X, boxes[b].X)
	})

	var (
		clusters []utils.Box
		members  [][]int
	)
	current := boxes[order[0]]
	group := []int{order[0]}

	for _, idx := range order[1:] {
		b := boxes[idx]
		x1, y1, _, _ := b.Corners()
		_, cy1, cx2, _ := current.Corners()

		if absInt(y1-cy1) < yGap && x1-cx2 < xGap {
			current = current.Union(b)
			group = append(group, idx)
			continue
		}
		clusters = append(clusters, current)
		members = append(members, group)
		current = b
		group = []int{idx}
	}
	clusters = append(clusters, current)
	members = append(members, group)

	return clusters, members
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
