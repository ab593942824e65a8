// Package aggregate groups word-level recognition output into sentence-level text blocks.
package aggregate

import (
	"fmt"

	"github.com/MeKo-Tech/pogo-lens/internal/utils"
)

// GroupKey identifies the logical (block, paragraph, line) a token belongs to.
type GroupKey struct {
	Block     int `json:"block"`
	Paragraph int `json:"paragraph"`
	Line      int `json:"line"`
}

func (k GroupKey) String() string {
	return fmt.Sprintf("%d/%d/%d", k.Block, k.Paragraph, k.Line)
}

// RawToken is one recognized word or glyph run. Box is in processed-frame pixels.
// Key is nil when the recognizer does not report logical structure.
type RawToken struct {
	Text       string    `json:"text"`
	Confidence float64   `json:"confidence"`
	Box        utils.Box `json:"box"`
	Key        *GroupKey `json:"key,omitempty"`
}

// TextBlock is an aggregated sentence-level region in processed-frame space.
type TextBlock struct {
	Words []string  `json:"words"`
	Text  string    `json:"text"`
	Box   utils.Box `json:"box"`
	// Scale is the preprocessing upscale factor of the frame the block came from.
	Scale float64   `json:"scale"`
	Key   *GroupKey `json:"key,omitempty"`
}

// DisplayBox maps the block envelope to display space.
func (b TextBlock) DisplayBox(inset int) utils.Box {
	return utils.ToDisplaySpace(b.Box, b.Scale, inset)
}
