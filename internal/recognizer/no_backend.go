//go:build !tesseract

package recognizer

import "errors"

// TesseractLinked reports whether this binary was built with the Tesseract engine.
const TesseractLinked = false

// ErrNoBackend is returned for the tesseract engine in builds without it.
var ErrNoBackend = errors.New("recognizer: tesseract engine not linked; build with -tags=tesseract or set recognizer.engine: mock")

func newTesseract(_ Config) (Recognizer, error) {
	return nil, ErrNoBackend
}
