//go:build darwin

package capture

import (
	"context"
	"fmt"
	"image"
	"os/exec"
)

// platformCommand uses screencapture with a region: -x silences the shutter sound.
func platformCommand(ctx context.Context, file string, rect image.Rectangle) (*exec.Cmd, bool, error) {
	region := fmt.Sprintf("%d,%d,%d,%d", rect.Min.X, rect.Min.Y, rect.Dx(), rect.Dy())
	return exec.CommandContext(ctx, "screencapture", "-x", "-t", "png", "-R", region, file), true, nil
}
