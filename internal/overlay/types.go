// Package overlay defines the translated-block unit delivered to the lens renderer and
// the render surface contract.
package overlay

import (
	"github.com/MeKo-Tech/pogo-lens/internal/utils"
)

// TranslatedBlock is one sentence ready for display.
type TranslatedBlock struct {
	// Box is in display space, relative to the lens region.
	Box utils.Box `json:"box"`
	// SourceBox is the envelope in processed-frame space.
	SourceBox  utils.Box `json:"source_box"`
	Original   string    `json:"original"`
	Translated string    `json:"translated"`
}

// Surface is the render side of the lens. SuppressOverlay and RestoreOverlay must not
// return until the change is visible on screen. SetOverlay replaces the whole overlay in
// one step.
type Surface interface {
	SuppressOverlay()
	RestoreOverlay()
	SetOverlay(blocks []TranslatedBlock)
}
