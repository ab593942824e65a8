package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"github.com/MeKo-Tech/pogo-lens/internal/utils"
	"github.com/disintegration/imaging"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Default overlay colors: an off-white, mostly opaque box with black text.
var (
	DefaultBoxColor    = color.NRGBA{R: 255, G: 255, B: 255, A: 230}
	DefaultTextColor   = color.Black
	DefaultBorderColor = color.NRGBA{R: 0, G: 170, B: 255, A: 255}
)

// minTextHeight is the smallest rendered glyph height in pixels.
const minTextHeight = 12

// RenderOptions controls RenderOverlay.
type RenderOptions struct {
	BoxColor    color.Color
	TextColor   color.Color
	BorderColor color.Color
	// BorderWidth draws the lens frame when > 0.
	BorderWidth int
}

// DefaultRenderOptions returns the lens look.
func DefaultRenderOptions() RenderOptions {
	return RenderOptions{
		BoxColor:    DefaultBoxColor,
		TextColor:   DefaultTextColor,
		BorderColor: DefaultBorderColor,
		BorderWidth: 2,
	}
}

// RenderOverlay paints blocks over a copy of background. Each block gets a filled box
// with its translated text scaled to roughly 70% of the box height.
func RenderOverlay(background image.Image, blocks []TranslatedBlock, opts RenderOptions) *image.RGBA {
	if background == nil {
		return nil
	}
	b := background.Bounds()
	dst := image.NewRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Bounds(), background, b.Min, draw.Src)

	for _, blk := range blocks {
		if blk.Box.Empty() {
			continue
		}
		utils.FillRect(dst, blk.Box, opts.BoxColor)
		text := blk.Translated
		if text == "" {
			text = blk.Original
		}
		drawLabel(dst, blk.Box, text, opts.TextColor)
	}

	if opts.BorderWidth > 0 {
		utils.DrawRect(dst, utils.BoxFromRect(dst.Bounds()), opts.BorderColor, opts.BorderWidth)
	}
	return dst
}

// drawLabel renders text with the fixed bitmap face and scales it into box.
func drawLabel(dst *image.RGBA, box utils.Box, text string, col color.Color) {
	face := basicfont.Face7x13
	adv := font.MeasureString(face, text).Ceil()
	if adv <= 0 {
		return
	}
	lineH := face.Height

	label := image.NewNRGBA(image.Rect(0, 0, adv, lineH))
	d := &font.Drawer{
		Dst:  label,
		Src:  image.NewUniform(col),
		Face: face,
		Dot:  fixed.P(0, face.Ascent),
	}
	d.DrawString(text)

	targetH := max(float64(minTextHeight), 0.7*float64(box.H))
	scale := targetH / float64(lineH)
	if w := float64(adv) * scale; w > float64(box.W) && box.W > 0 {
		scale = float64(box.W) / float64(adv)
	}
	w := max(1, int(math.Round(float64(adv)*scale)))
	h := max(1, int(math.Round(float64(lineH)*scale)))

	var scaled image.Image = label
	if w != adv || h != lineH {
		scaled = imaging.Resize(label, w, h, imaging.Linear)
	}

	y := box.Y + max(0, (box.H-h)/2)
	r := image.Rect(box.X, y, box.X+w, y+h).Intersect(dst.Bounds())
	if r.Empty() {
		return
	}
	draw.Draw(dst, r, scaled, image.Point{}, draw.Over)
}
