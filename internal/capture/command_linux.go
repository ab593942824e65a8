//go:build linux

package capture

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os/exec"
)

// platformCommand prefers ImageMagick's import, which can crop while grabbing, and falls
// back to full-screen tools.
func platformCommand(ctx context.Context, file string, rect image.Rectangle) (*exec.Cmd, bool, error) {
	if _, err := exec.LookPath("import"); err == nil {
		geometry := fmt.Sprintf("%dx%d+%d+%d", rect.Dx(), rect.Dy(), rect.Min.X, rect.Min.Y)
		return exec.CommandContext(ctx, "import", "-silent", "-window", "root", "-crop", geometry, file), true, nil
	}
	if _, err := exec.LookPath("gnome-screenshot"); err == nil {
		return exec.CommandContext(ctx, "gnome-screenshot", "-f", file), false, nil
	}
	if _, err := exec.LookPath("scrot"); err == nil {
		return exec.CommandContext(ctx, "scrot", "-o", file), false, nil
	}
	return nil, false, errors.New("no screenshot tool found (install imagemagick, gnome-screenshot or scrot)")
}
