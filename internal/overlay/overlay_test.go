package overlay

import (
	"image"
	"image/color"
	"image/draw"
	"testing"

	"github.com/MeKo-Tech/pogo-lens/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecorder_SwapAndEvents(t *testing.T) {
	r := NewRecorder()
	assert.Empty(t, r.Overlay())

	r.SuppressOverlay()
	assert.True(t, r.Suppressed())
	r.RestoreOverlay()
	assert.False(t, r.Suppressed())

	blocks := []TranslatedBlock{{Original: "a", Translated: "b"}}
	r.SetOverlay(blocks)
	blocks[0].Translated = "mutated"

	require.Len(t, r.Overlay(), 1)
	assert.Equal(t, "b", r.Overlay()[0].Translated, "recorder keeps its own copy")

	select {
	case <-r.Updated():
	default:
		t.Fatal("expected update signal")
	}

	r.SetOverlay(nil)
	assert.NotNil(t, r.Overlay())
	assert.Empty(t, r.Overlay())
	assert.Equal(t, []string{"suppress", "restore", "set", "set"}, r.Events())
}

func TestRecorder_EventLogIsBounded(t *testing.T) {
	r := NewRecorder()
	for range 10 * MaxEvents {
		r.SuppressOverlay()
		r.RestoreOverlay()
		r.SetOverlay(nil)
	}
	r.SuppressOverlay()

	events := r.Events()
	require.Len(t, events, MaxEvents)
	assert.Equal(t, "suppress", events[len(events)-1])
	assert.Equal(t, "set", events[len(events)-2])
	assert.LessOrEqual(t, cap(r.events), 2*MaxEvents)
}

func TestRenderOverlay(t *testing.T) {
	bg := image.NewRGBA(image.Rect(0, 0, 200, 100))
	draw.Draw(bg, bg.Bounds(), image.NewUniform(color.Black), image.Point{}, draw.Src)

	blocks := []TranslatedBlock{
		{Box: utils.NewBox(10, 10, 120, 30), Original: "こんにちは", Translated: "hello"},
		{Box: utils.NewBox(10, 60, 0, 0), Translated: "skipped"},
	}
	opts := DefaultRenderOptions()
	opts.BorderWidth = 0

	out := RenderOverlay(bg, blocks, opts)
	require.NotNil(t, out)
	assert.Equal(t, bg.Bounds(), out.Bounds())

	// Box area is lightened, untouched area stays black.
	boxPx := out.RGBAAt(128, 12)
	assert.Greater(t, boxPx.R, uint8(200))
	assert.Equal(t, color.RGBA{A: 255}, out.RGBAAt(150, 80))

	// Some dark text pixels exist inside the box.
	dark := 0
	for y := 10; y < 40; y++ {
		for x := 10; x < 130; x++ {
			if out.RGBAAt(x, y).R < 100 {
				dark++
			}
		}
	}
	assert.Positive(t, dark)

	// Background is not modified.
	assert.Equal(t, color.RGBA{A: 255}, bg.RGBAAt(20, 20))
}

func TestRenderOverlay_Border(t *testing.T) {
	bg := image.NewRGBA(image.Rect(0, 0, 40, 40))
	out := RenderOverlay(bg, nil, DefaultRenderOptions())
	px := out.RGBAAt(0, 0)
	assert.Equal(t, uint8(0xaa), px.G)
	assert.Nil(t, RenderOverlay(nil, nil, DefaultRenderOptions()))
}
