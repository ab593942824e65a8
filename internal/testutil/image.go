package testutil

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"path/filepath"
	"strings"
	"testing"

	"github.com/MeKo-Tech/pogo-lens/internal/aggregate"
	"github.com/MeKo-Tech/pogo-lens/internal/utils"
	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/require"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ImageSize represents common image dimensions.
type ImageSize struct {
	Width  int
	Height int
}

var (
	// Common test image sizes.
	SmallSize  = ImageSize{320, 120}
	MediumSize = ImageSize{640, 240}
)

// TextImageConfig describes a synthetic screen snippet.
type TextImageConfig struct {
	Lines      []string
	Size       ImageSize
	Background color.Color
	Foreground color.Color
	// Scale enlarges the 7x13 bitmap glyphs by an integer factor.
	Scale   int
	Margin  int
	LineGap int
}

// DefaultTextImageConfig returns one line of dark text on white.
func DefaultTextImageConfig() TextImageConfig {
	return TextImageConfig{
		Lines:      []string{"Sample Text"},
		Size:       MediumSize,
		Background: color.White,
		Foreground: color.Black,
		Scale:      2,
		Margin:     20,
		LineGap:    12,
	}
}

// TextImage is a rendered snippet plus where its words ended up.
type TextImage struct {
	Image *image.RGBA
	// Lines holds the bounding rectangle of each rendered line.
	Lines []image.Rectangle
	// Words holds one token per space-separated word, keyed by line.
	Words []aggregate.RawToken
}

// GenerateTextImage renders cfg.Lines top to bottom starting at the margin.
func GenerateTextImage(cfg TextImageConfig) (*TextImage, error) {
	if cfg.Scale < 1 {
		cfg.Scale = 1
	}
	face := basicfont.Face7x13
	lineH := face.Height * cfg.Scale

	img := image.NewRGBA(image.Rect(0, 0, cfg.Size.Width, cfg.Size.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{cfg.Background}, image.Point{}, draw.Src)

	out := &TextImage{Image: img}
	y := cfg.Margin
	for i, line := range cfg.Lines {
		width := font.MeasureString(face, line).Ceil() * cfg.Scale
		r := image.Rect(cfg.Margin, y, cfg.Margin+width, y+lineH)
		if !r.In(img.Bounds()) {
			return nil, fmt.Errorf("line %d (%q) does not fit into %dx%d", i, line, cfg.Size.Width, cfg.Size.Height)
		}
		if width > 0 {
			glyphs := renderLine(face, line, cfg.Background, cfg.Foreground)
			scaled := imaging.Resize(glyphs, width, lineH, imaging.NearestNeighbor)
			draw.Draw(img, r, scaled, image.Point{}, draw.Src)
		}
		out.Lines = append(out.Lines, r)
		out.Words = append(out.Words, wordTokens(face, line, r, cfg.Scale, i+1)...)
		y += lineH + cfg.LineGap
	}
	return out, nil
}

func renderLine(face *basicfont.Face, text string, bg, fg color.Color) *image.RGBA {
	w := font.MeasureString(face, text).Ceil()
	img := image.NewRGBA(image.Rect(0, 0, w, face.Height))
	draw.Draw(img, img.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)
	d := &font.Drawer{Dst: img, Src: &image.Uniform{fg}, Face: face, Dot: fixed.P(0, face.Ascent)}
	d.DrawString(text)
	return img
}

// wordTokens lays out the words of one line using the fixed glyph advance.
func wordTokens(face *basicfont.Face, line string, r image.Rectangle, scale, lineNo int) []aggregate.RawToken {
	var tokens []aggregate.RawToken
	offset := 0
	for _, word := range strings.SplitAfter(line, " ") {
		text := strings.TrimSpace(word)
		if text != "" {
			x := r.Min.X + font.MeasureString(face, line[:offset]).Ceil()*scale
			w := font.MeasureString(face, text).Ceil() * scale
			tokens = append(tokens, aggregate.RawToken{
				Text:       text,
				Confidence: 95,
				Box:        utils.NewBox(x, r.Min.Y, w, r.Dy()),
				Key:        &aggregate.GroupKey{Block: 1, Paragraph: 1, Line: lineNo},
			})
		}
		offset += len(word)
	}
	return tokens
}

// Scaled returns the word tokens as a recognizer would report them on a frame
// upscaled by factor.
func (ti *TextImage) Scaled(factor float64) []aggregate.RawToken {
	out := make([]aggregate.RawToken, len(ti.Words))
	for i, tok := range ti.Words {
		out[i] = tok
		out[i].Box = utils.ToProcessedSpace(tok.Box, factor, 0)
	}
	return out
}

// WriteTextImage renders cfg into dir/name and returns the image.
func WriteTextImage(t *testing.T, dir, name string, cfg TextImageConfig) (string, *TextImage) {
	t.Helper()
	ti, err := GenerateTextImage(cfg)
	require.NoError(t, err)
	require.NoError(t, EnsureDir(dir))
	path := filepath.Join(dir, name)
	require.NoError(t, utils.SaveImage(ti.Image, path))
	return path, ti
}

// CreateTestImage creates a solid image.
func CreateTestImage(width, height int, bg color.Color) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), &image.Uniform{bg}, image.Point{}, draw.Src)
	return img
}
