//go:build !linux && !windows

package platform

import (
	"fmt"
	"log/slog"
	"runtime"
)

func newBackend(_ *slog.Logger) (Backend, error) {
	return nil, fmt.Errorf("%w: %s", ErrUnsupported, runtime.GOOS)
}
