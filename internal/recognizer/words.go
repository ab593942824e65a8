package recognizer

import (
	"image"

	"github.com/MeKo-Tech/pogo-lens/internal/aggregate"
	"github.com/MeKo-Tech/pogo-lens/internal/utils"
)

// Word is one word box as reported by the engine, in the coordinates of the
// image it was handed (origin at 0,0).
type Word struct {
	Text       string
	Confidence float64
	Box        image.Rectangle
	Block      int
	Paragraph  int
	Line       int
}

// wordsToTokens shifts engine word boxes by origin into frame space and attaches
// the block/paragraph/line key used for grouping.
func wordsToTokens(words []Word, origin image.Point) []aggregate.RawToken {
	tokens := make([]aggregate.RawToken, 0, len(words))
	for _, w := range words {
		tokens = append(tokens, aggregate.RawToken{
			Text:       w.Text,
			Confidence: w.Confidence,
			Box:        utils.BoxFromRect(w.Box.Add(origin)),
			Key: &aggregate.GroupKey{
				Block:     w.Block,
				Paragraph: w.Paragraph,
				Line:      w.Line,
			},
		})
	}
	return tokens
}
