package utils

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
)

// genDisplayBox generates a box on the display surface, at or beyond the border inset.
func genDisplayBox(inset int) gopter.Gen {
	return gopter.CombineGens(
		gen.IntRange(inset, inset+2000),
		gen.IntRange(inset, inset+2000),
		gen.IntRange(0, 800),
		gen.IntRange(0, 400),
	).Map(func(vals []interface{}) Box {
		return Box{X: vals[0].(int), Y: vals[1].(int), W: vals[2].(int), H: vals[3].(int)}
	})
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func within(a, b Box, tol int) bool {
	return absInt(a.X-b.X) <= tol && absInt(a.Y-b.Y) <= tol &&
		absInt(a.W-b.W) <= tol && absInt(a.H-b.H) <= tol
}

// TestToDisplaySpace_RoundTrip verifies display -> processed -> display is stable within 1px.
func TestToDisplaySpace_RoundTrip(t *testing.T) {
	properties := gopter.NewProperties(nil)

	for _, inset := range []int{0, 4} {
		properties.Property("round trip within 1px", prop.ForAll(
			func(b Box, factor int) bool {
				f := float64(factor)
				got := ToDisplaySpace(ToProcessedSpace(b, f, inset), f, inset)
				return within(got, b, 1)
			},
			genDisplayBox(inset),
			gen.IntRange(1, 3),
		))
	}

	properties.TestingRun(t)
}

// TestToProcessedSpace_TruncationBound verifies processed -> display -> processed loses less than one scale step.
func TestToProcessedSpace_TruncationBound(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("truncation loses less than factor pixels", prop.ForAll(
		func(x, y, w, h, factor int) bool {
			b := Box{X: x, Y: y, W: w, H: h}
			f := float64(factor)
			back := ToProcessedSpace(ToDisplaySpace(b, f, 4), f, 4)
			return within(back, b, factor-1)
		},
		gen.IntRange(0, 4000),
		gen.IntRange(0, 4000),
		gen.IntRange(0, 1000),
		gen.IntRange(0, 1000),
		gen.IntRange(1, 3),
	))

	properties.TestingRun(t)
}

// TestUnion_Encloses verifies the union encloses both inputs.
func TestUnion_Encloses(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("union contains both boxes", prop.ForAll(
		func(a, b Box) bool {
			u := a.Union(b)
			return u.Contains(a) && u.Contains(b)
		},
		genDisplayBox(0),
		genDisplayBox(0),
	))

	properties.TestingRun(t)
}
