package aggregate

import (
	"log/slog"
	"slices"
	"strings"

	"github.com/MeKo-Tech/pogo-lens/internal/utils"
)

// DefaultMinConfidence is the recognizer confidence at or below which tokens are dropped.
const DefaultMinConfidence = 30.0

// Aggregator turns raw tokens into sentence-level text blocks.
type Aggregator struct {
	// MinConfidence drops tokens whose confidence is <= this value.
	MinConfidence float64
	// Separator joins word texts; empty for scripts without inter-word spacing.
	Separator string
	// XGap and YGap configure the spatial fallback used for tokens without a GroupKey.
	XGap int
	YGap int
}

// NewAggregator returns an aggregator with default thresholds and the given separator.
func NewAggregator(separator string) *Aggregator {
	return &Aggregator{
		MinConfidence: DefaultMinConfidence,
		Separator:     separator,
		XGap:          DefaultXGap,
		YGap:          DefaultYGap,
	}
}

// Filter returns the tokens that carry non-blank text above the confidence threshold.
func (a *Aggregator) Filter(tokens []RawToken) []RawToken {
	kept := make([]RawToken, 0, len(tokens))
	for _, t := range tokens {
		if strings.TrimSpace(t.Text) == "" || t.Confidence <= a.MinConfidence {
			continue
		}
		kept = append(kept, t)
	}
	return kept
}

// Aggregate filters tokens and groups the survivors into text blocks. Tokens with the
// same GroupKey form one block in encounter order. Tokens without a key are grouped by
// the spatial clusterer instead. scale is recorded on every emitted block.
func (a *Aggregator) Aggregate(tokens []RawToken, scale float64) []TextBlock {
	kept := a.Filter(tokens)
	if len(kept) == 0 {
		return []TextBlock{}
	}

	var keyed, loose []RawToken
	for _, t := range kept {
		if t.Key != nil {
			keyed = append(keyed, t)
		} else {
			loose = append(loose, t)
		}
	}

	blocks := a.groupByKey(keyed, scale)
	if len(loose) > 0 {
		if len(keyed) > 0 {
			slog.Debug("Mixed keyed and unkeyed tokens, clustering the unkeyed ones",
				"keyed", len(keyed), "unkeyed", len(loose))
		}
		blocks = append(blocks, a.groupSpatially(loose, scale)...)
	}
	return blocks
}

func (a *Aggregator) groupByKey(tokens []RawToken, scale float64) []TextBlock {
	var (
		order  []GroupKey
		groups = make(map[GroupKey]*TextBlock)
	)
	for _, t := range tokens {
		k := *t.Key
		blk, ok := groups[k]
		if !ok {
			key := k
			blk = &TextBlock{Box: t.Box, Scale: scale, Key: &key}
			groups[k] = blk
			order = append(order, k)
		} else {
			blk.Box = blk.Box.Union(t.Box)
		}
		blk.Words = append(blk.Words, strings.TrimSpace(t.Text))
	}

	out := make([]TextBlock, 0, len(order))
	for _, k := range order {
		blk := groups[k]
		blk.Text = strings.Join(blk.Words, a.Separator)
		out = append(out, *blk)
	}
	return out
}

func (a *Aggregator) groupSpatially(tokens []RawToken, scale float64) []TextBlock {
	boxes := make([]utils.Box, len(tokens))
	for i, t := range tokens {
		boxes[i] = t.Box
	}
	clusters, members := clusterMembers(boxes, a.XGap, a.YGap)

	out := make([]TextBlock, 0, len(clusters))
	for i, box := range clusters {
		idx := slices.Clone(members[i])
		slices.Sort(idx)
		words := make([]string, 0, len(idx))
		for _, j := range idx {
			words = append(words, strings.TrimSpace(tokens[j].Text))
		}
		out = append(out, TextBlock{
			Words: words,
			Text:  strings.Join(words, a.Separator),
			Box:   box,
			Scale: scale,
		})
	}
	return out
}
