package aggregate

import (
	"testing"

	"github.com/MeKo-Tech/pogo-lens/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func key(b, p, l int) *GroupKey {
	return &GroupKey{Block: b, Paragraph: p, Line: l}
}

func tok(text string, conf float64, box utils.Box, k *GroupKey) RawToken {
	return RawToken{Text: text, Confidence: conf, Box: box, Key: k}
}

func TestAggregate_DropsLowConfidenceAndBlank(t *testing.T) {
	agg := NewAggregator(" ")
	k := key(1, 1, 1)

	blocks := agg.Aggregate([]RawToken{
		tok("foo", 10, utils.NewBox(0, 0, 10, 10), k),
		tok("bar", 50, utils.NewBox(20, 0, 10, 10), k),
		tok("   ", 90, utils.NewBox(40, 0, 10, 10), k),
		tok("edge", 30, utils.NewBox(60, 0, 10, 10), k),
	}, 2)

	require.Len(t, blocks, 1)
	assert.Equal(t, []string{"bar"}, blocks[0].Words)
	assert.Equal(t, "bar", blocks[0].Text)
	assert.Equal(t, utils.NewBox(20, 0, 10, 10), blocks[0].Box)
}

func TestAggregate_JoinSeparator(t *testing.T) {
	k := key(1, 1, 1)
	cases := []struct {
		name string
		sep  string
		in   []string
		want string
	}{
		{"no spacing script", "", []string{"東", "京"}, "東京"},
		{"space separated", " ", []string{"hello", "world"}, "hello world"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var tokens []RawToken
			for i, w := range tc.in {
				tokens = append(tokens, tok(w, 90, utils.NewBox(i*20, 0, 15, 10), k))
			}
			blocks := NewAggregator(tc.sep).Aggregate(tokens, 1)
			require.Len(t, blocks, 1)
			assert.Equal(t, tc.want, blocks[0].Text)
		})
	}
}

func TestAggregate_GroupsByKeyInEncounterOrder(t *testing.T) {
	agg := NewAggregator(" ")
	l1, l2 := key(1, 1, 1), key(1, 1, 2)

	blocks := agg.Aggregate([]RawToken{
		tok("second", 80, utils.NewBox(50, 0, 40, 10), l1),
		tok("line", 80, utils.NewBox(0, 20, 30, 10), l2),
		tok("first", 80, utils.NewBox(0, 0, 40, 12), l1),
		tok("two", 80, utils.NewBox(40, 22, 20, 10), l2),
	}, 2)

	require.Len(t, blocks, 2)

	// Word order follows input, not geometry.
	assert.Equal(t, "second first", blocks[0].Text)
	assert.Equal(t, utils.BoxFromCorners(0, 0, 90, 12), blocks[0].Box)
	assert.Equal(t, *l1, *blocks[0].Key)

	assert.Equal(t, "line two", blocks[1].Text)
	assert.Equal(t, utils.BoxFromCorners(0, 20, 60, 32), blocks[1].Box)
	assert.InDelta(t, 2.0, blocks[1].Scale, 1e-9)
}

func TestAggregate_FallsBackToClustering(t *testing.T) {
	agg := NewAggregator(" ")

	blocks := agg.Aggregate([]RawToken{
		tok("hello", 80, utils.BoxFromCorners(10, 10, 50, 30), nil),
		tok("below", 80, utils.BoxFromCorners(10, 50, 80, 70), nil),
		tok("world", 80, utils.BoxFromCorners(60, 10, 100, 30), nil),
	}, 1)

	require.Len(t, blocks, 2)
	assert.Equal(t, "hello world", blocks[0].Text)
	assert.Equal(t, utils.BoxFromCorners(10, 10, 100, 30), blocks[0].Box)
	assert.Nil(t, blocks[0].Key)
	assert.Equal(t, "below", blocks[1].Text)
}

func TestAggregate_MixedKeys(t *testing.T) {
	agg := NewAggregator(" ")

	blocks := agg.Aggregate([]RawToken{
		tok("keyed", 80, utils.NewBox(0, 0, 10, 10), key(1, 1, 1)),
		tok("loose", 80, utils.NewBox(0, 100, 10, 10), nil),
	}, 1)

	require.Len(t, blocks, 2)
	assert.Equal(t, "keyed", blocks[0].Text)
	assert.Equal(t, "loose", blocks[1].Text)
}

func TestAggregate_Empty(t *testing.T) {
	agg := NewAggregator(" ")
	assert.Empty(t, agg.Aggregate(nil, 2))
	assert.Empty(t, agg.Aggregate([]RawToken{tok("x", 5, utils.Box{}, nil)}, 2))
}

func TestTextBlock_DisplayBox(t *testing.T) {
	blk := TextBlock{Box: utils.NewBox(20, 40, 100, 30), Scale: 2}
	assert.Equal(t, utils.NewBox(14, 24, 50, 15), blk.DisplayBox(4))
}
