package utils

import (
	"image"
	"image/color"
	"image/draw"
)

// Box is an axis-aligned pixel rectangle stored as origin plus size.
type Box struct {
	X int `json:"x"`
	Y int `json:"y"`
	W int `json:"w"`
	H int `json:"h"`
}

// NewBox creates a box from origin and size.
func NewBox(x, y, w, h int) Box {
	return Box{X: x, Y: y, W: w, H: h}
}

// BoxFromCorners creates a box from its (x1,y1) top-left and (x2,y2) bottom-right corners.
func BoxFromCorners(x1, y1, x2, y2 int) Box {
	return Box{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// BoxFromRect converts an image.Rectangle into a Box.
func BoxFromRect(r image.Rectangle) Box {
	return BoxFromCorners(r.Min.X, r.Min.Y, r.Max.X, r.Max.Y)
}

// Right returns the exclusive right edge (x2).
func (b Box) Right() int { return b.X + b.W }

// Bottom returns the exclusive bottom edge (y2).
func (b Box) Bottom() int { return b.Y + b.H }

// Corners returns the box as (x1, y1, x2, y2).
func (b Box) Corners() (int, int, int, int) {
	return b.X, b.Y, b.Right(), b.Bottom()
}

// Rect converts the box to an image.Rectangle.
func (b Box) Rect() image.Rectangle {
	return image.Rect(b.X, b.Y, b.Right(), b.Bottom())
}

// Empty reports whether the box covers no pixels.
func (b Box) Empty() bool {
	return b.W <= 0 || b.H <= 0
}

// Union returns the smallest box enclosing both b and o.
func (b Box) Union(o Box) Box {
	return BoxFromCorners(
		min(b.X, o.X),
		min(b.Y, o.Y),
		max(b.Right(), o.Right()),
		max(b.Bottom(), o.Bottom()),
	)
}

// Contains reports whether o lies completely inside b.
func (b Box) Contains(o Box) bool {
	return o.X >= b.X && o.Y >= b.Y && o.Right() <= b.Right() && o.Bottom() <= b.Bottom()
}

// Offset returns the box translated by (dx, dy).
func (b Box) Offset(dx, dy int) Box {
	return Box{X: b.X + dx, Y: b.Y + dy, W: b.W, H: b.H}
}

// Envelope returns the min/max envelope of all boxes. ok is false for empty input.
func Envelope(boxes []Box) (Box, bool) {
	if len(boxes) == 0 {
		return Box{}, false
	}
	env := boxes[0]
	for _, b := range boxes[1:] {
		env = env.Union(b)
	}
	return env, true
}

// InsetRect shrinks r by inset pixels on every side. Width and height never drop below 1.
func InsetRect(r image.Rectangle, inset int) image.Rectangle {
	x := r.Min.X + inset
	y := r.Min.Y + inset
	w := max(1, r.Dx()-2*inset)
	h := max(1, r.Dy()-2*inset)
	return image.Rect(x, y, x+w, y+h)
}

// ToDisplaySpace maps a box measured on an upscaled, inset-cropped frame back onto the
// display surface. Every component is divided by scale with truncation toward zero and
// the inset is added to the origin only.
func ToDisplaySpace(b Box, scale float64, inset int) Box {
	if scale <= 0 {
		scale = 1
	}
	return Box{
		X: int(float64(b.X)/scale) + inset,
		Y: int(float64(b.Y)/scale) + inset,
		W: int(float64(b.W) / scale),
		H: int(float64(b.H) / scale),
	}
}

// ToProcessedSpace is the inverse of ToDisplaySpace: it removes the inset from the origin
// and multiplies every component by scale.
func ToProcessedSpace(b Box, scale float64, inset int) Box {
	if scale <= 0 {
		scale = 1
	}
	return Box{
		X: int(float64(b.X-inset) * scale),
		Y: int(float64(b.Y-inset) * scale),
		W: int(float64(b.W) * scale),
		H: int(float64(b.H) * scale),
	}
}

// FillRect paints the box area of dst with col using source-over compositing.
func FillRect(dst draw.Image, b Box, col color.Color) {
	r := b.Rect().Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, &image.Uniform{C: col}, image.Point{}, draw.Over)
}

// DrawRect draws an unfilled rectangle outline with the given thickness.
func DrawRect(dst *image.RGBA, b Box, col color.Color, thickness int) {
	if thickness < 1 {
		thickness = 1
	}
	r := b.Rect().Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	for t := range thickness {
		yTop, yBot := r.Min.Y+t, r.Max.Y-1-t
		for x := r.Min.X; x < r.Max.X; x++ {
			dst.Set(x, yTop, col)
			dst.Set(x, yBot, col)
		}
		xLeft, xRight := r.Min.X+t, r.Max.X-1-t
		for y := r.Min.Y; y < r.Max.Y; y++ {
			dst.Set(xLeft, y, col)
			dst.Set(xRight, y, col)
		}
	}
}
