package batch

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/MeKo-Tech/pogo-lens/internal/utils"
)

// Discovery controls which files a directory argument expands to. Patterns are
// filepath.Match globs on the base name.
type Discovery struct {
	Recursive bool
	Include   []string
	Exclude   []string
}

// Discover expands args into image files. Files named explicitly are kept when they
// pass the patterns; directories contribute their supported images in lexical order.
func Discover(args []string, d Discovery) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("cannot access %s: %w", arg, err)
		}
		if info.IsDir() {
			found, err := d.walk(arg)
			if err != nil {
				return nil, err
			}
			files = append(files, found...)
		} else if d.include(arg) {
			files = append(files, arg)
		}
	}
	return files, nil
}

func (d Discovery) walk(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, e fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if e.IsDir() {
			if !d.Recursive && path != dir {
				return filepath.SkipDir
			}
			return nil
		}
		if utils.IsSupportedImage(path) && d.include(path) {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// include applies the exclude patterns first, then the include patterns if any.
func (d Discovery) include(path string) bool {
	if matchesAny(path, d.Exclude) {
		return false
	}
	return len(d.Include) == 0 || matchesAny(path, d.Include)
}

func matchesAny(path string, patterns []string) bool {
	base := filepath.Base(path)
	for _, pattern := range patterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	return false
}
