// Package models locates the Tesseract traineddata files the recognizer loads.
package models

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Default data directory, relative to the project root.
const DefaultDataDir = "tessdata"

// EnvDataDir is the variable Tesseract itself reads.
const EnvDataDir = "TESSDATA_PREFIX"

// TrainedDataExt is the extension of a Tesseract language model.
const TrainedDataExt = ".traineddata"

// SystemDirs are the package-manager install locations, checked in order.
var SystemDirs = []string{
	"/usr/share/tesseract-ocr/5/tessdata",
	"/usr/share/tesseract-ocr/4.00/tessdata",
	"/usr/share/tessdata",
	"/usr/local/share/tessdata",
	"/opt/homebrew/share/tessdata",
}

// findProjectRoot finds the project root by looking for go.mod.
func findProjectRoot() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", err
	}

	for {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	return "", errors.New("could not find project root (go.mod not found)")
}

// GetDataDir returns the traineddata directory.
// Priority: 1. Explicit dataDir, 2. Environment variable, 3. Project root + default,
// 4. First existing system directory. An empty result leaves the choice to Tesseract.
func GetDataDir(dataDir string) string {
	if dataDir != "" {
		return dataDir
	}

	if envDir := os.Getenv(EnvDataDir); envDir != "" {
		return envDir
	}

	if projectRoot, err := findProjectRoot(); err == nil {
		if dir := filepath.Join(projectRoot, DefaultDataDir); isDir(dir) {
			return dir
		}
	}

	for _, dir := range SystemDirs {
		if isDir(dir) {
			return dir
		}
	}
	return ""
}

// TrainedDataPath returns the model file for a single Tesseract language code.
func TrainedDataPath(dataDir, lang string) string {
	return filepath.Join(dataDir, lang+TrainedDataExt)
}

// Missing lists the languages of a "jpn+eng" style code that have no model file in
// dataDir. An empty dataDir reports nothing missing.
func Missing(dataDir, lang string) []string {
	if dataDir == "" {
		return nil
	}
	var missing []string
	for _, l := range strings.Split(lang, "+") {
		if l == "" {
			continue
		}
		if _, err := os.Stat(TrainedDataPath(dataDir, l)); err != nil {
			missing = append(missing, l)
		}
	}
	return missing
}

// ValidateLanguage checks that every model for lang is installed.
func ValidateLanguage(dataDir, lang string) error {
	if missing := Missing(dataDir, lang); len(missing) > 0 {
		return fmt.Errorf("traineddata not found in %s: %s", dataDir, strings.Join(missing, ", "))
	}
	return nil
}

// Available returns the installed language codes in dataDir, sorted.
func Available(dataDir string) ([]string, error) {
	entries, err := os.ReadDir(dataDir)
	if err != nil {
		return nil, fmt.Errorf("read tessdata directory: %w", err)
	}
	var langs []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), TrainedDataExt) {
			continue
		}
		langs = append(langs, strings.TrimSuffix(e.Name(), TrainedDataExt))
	}
	slices.Sort(langs)
	return langs, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
