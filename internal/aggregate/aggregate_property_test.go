package aggregate

import (
	"strings"
	"testing"

	"github.com/MeKo-Tech/pogo-lens/internal/utils"
	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

func genBox() gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(0, 500),
		gen.IntRange(0, 500),
		gen.IntRange(1, 80),
		gen.IntRange(1, 30),
	).Map(func(vals []interface{}) utils.Box {
		return utils.NewBox(vals[0].(int), vals[1].(int), vals[2].(int), vals[3].(int))
	})
}

func genToken() gopter.Gen {
	return gopter.CombineGens(
		gen.OneConstOf("", " ", "a", "word", "東"),
		gen.Float64Range(0, 100),
		genBox(),
		gen.IntRange(0, 3),
	).Map(func(vals []interface{}) RawToken {
		line := vals[3].(int)
		t := RawToken{
			Text:       vals[0].(string),
			Confidence: vals[1].(float64),
			Box:        vals[2].(utils.Box),
		}
		if line > 0 {
			t.Key = &GroupKey{Block: 1, Paragraph: 1, Line: line}
		}
		return t
	})
}

// TestCluster_PreservesCoverage verifies every input box lies inside some output cluster.
func TestCluster_PreservesCoverage(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("each box is covered by a cluster", prop.ForAll(
		func(boxes []utils.Box) bool {
			clusters := Cluster(boxes, DefaultXGap, DefaultYGap)
			if len(clusters) > len(boxes) {
				return false
			}
			for _, b := range boxes {
				covered := false
				for _, c := range clusters {
					if c.Contains(b) {
						covered = true
						break
					}
				}
				if !covered {
					return false
				}
			}
			return true
		},
		gen.SliceOfN(12, genBox()),
	))

	properties.TestingRun(t)
}

// TestAggregate_NoWeakOrBlankWords verifies filtered tokens never reach the output.
func TestAggregate_NoWeakOrBlankWords(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("output words are non-blank and counted once", prop.ForAll(
		func(tokens []RawToken) bool {
			agg := NewAggregator(" ")
			blocks := agg.Aggregate(tokens, 2)

			words := 0
			for _, blk := range blocks {
				for _, w := range blk.Words {
					if strings.TrimSpace(w) == "" {
						return false
					}
				}
				words += len(blk.Words)
			}
			return words == len(agg.Filter(tokens))
		},
		gen.SliceOfN(10, genToken()),
	))

	properties.TestingRun(t)
}
