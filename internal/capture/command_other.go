//go:build !linux && !darwin

package capture

import (
	"context"
	"image"
	"os/exec"
)

func platformCommand(_ context.Context, _ string, _ image.Rectangle) (*exec.Cmd, bool, error) {
	return nil, false, ErrUnsupported
}
