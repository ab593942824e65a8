package pipeline

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"image"
	"strconv"
	"strings"

	"github.com/MeKo-Tech/pogo-lens/internal/capture"
	"github.com/MeKo-Tech/pogo-lens/internal/overlay"
)

// Cycle outcomes, used as the status label of lens_cycles_total.
const (
	StatusOK        = "ok"
	StatusError     = "error"
	StatusStale     = "stale"
	StatusUnchanged = "unchanged"
)

// Region is a screen rectangle in the JSON shape used by the control plane.
type Region struct {
	X      int `json:"x"`
	Y      int `json:"y"`
	Width  int `json:"width"`
	Height int `json:"height"`
}

// RegionOf converts r.
func RegionOf(r image.Rectangle) Region {
	return Region{X: r.Min.X, Y: r.Min.Y, Width: r.Dx(), Height: r.Dy()}
}

// Rect converts r back to an image rectangle.
func (r Region) Rect() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

// CycleResult is the outcome of one processed frame.
type CycleResult struct {
	ID      string                    `json:"cycle_id"`
	FrameID string                    `json:"frame_id"`
	Status  string                    `json:"status"`
	Error   string                    `json:"error,omitempty"`
	Width   int                       `json:"width"`
	Height  int                       `json:"height"`
	Scale   float64                   `json:"scale"`
	Region  Region                    `json:"region"`
	Source  string                    `json:"source"`
	Target  string                    `json:"target"`
	Tokens  int                       `json:"tokens"`
	Regions int                       `json:"regions,omitempty"`
	Blocks  []overlay.TranslatedBlock `json:"blocks"`
	// Timing holds stage durations in milliseconds.
	Timing map[string]int64 `json:"timing_ms,omitempty"`

	Frame *capture.Frame `json:"-"`
}

// Observer receives every completed cycle, including failed and skipped ones.
// It runs on the recognition goroutine and must not block.
type Observer func(res *CycleResult)

// ToJSON serializes a result to pretty JSON.
func ToJSON(res *CycleResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	b, err := json.MarshalIndent(res, "", "  ")
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// ToPlainText lists one "original => translated" line per block.
func ToPlainText(res *CycleResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	lines := make([]string, 0, len(res.Blocks))
	for _, b := range res.Blocks {
		lines = append(lines, b.Original+" => "+b.Translated)
	}
	return strings.Join(lines, "\n"), nil
}

// ToCSV exports the blocks with display geometry as CSV with header.
func ToCSV(res *CycleResult) (string, error) {
	if res == nil {
		return "", errors.New("nil result")
	}
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write([]string{"x", "y", "w", "h", "original", "translated"})
	for _, b := range res.Blocks {
		_ = w.Write([]string{
			strconv.Itoa(b.Box.X),
			strconv.Itoa(b.Box.Y),
			strconv.Itoa(b.Box.W),
			strconv.Itoa(b.Box.H),
			b.Original,
			b.Translated,
		})
	}
	w.Flush()
	return buf.String(), w.Error()
}
