// Package recognizer turns a grayscale frame into word-level tokens.
//
// The default build has no concrete engine so the module builds without CGO.
// Enable the Tesseract engine (via gosseract, needs libtesseract and
// libleptonica) with the build tag `tesseract`.
//
// Example:
//
//	go build -tags=tesseract ./...
package recognizer
