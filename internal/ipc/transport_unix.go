//go:build !windows

package ipc

import (
	"errors"
	"fmt"
	"net"
	"os"
	"syscall"
	"time"

	"github.com/1broseidon/winmgr/internal/runtimepath"
)

// DefaultEndpoint returns the daemon socket path.
func DefaultEndpoint() (string, error) {
	return runtimepath.SocketPath()
}

// staleCheckTimeout bounds the liveness check of an existing socket.
const staleCheckTimeout = 500 * time.Millisecond

func listen(endpoint string) (net.Listener, error) {
	conn, err := dial(endpoint, staleCheckTimeout)
	switch {
	case err == nil:
		conn.Close()
		return nil, fmt.Errorf("%w (socket %s is live)", ErrAlreadyRunning, endpoint)
	case errors.Is(err, syscall.ENOENT):
	case errors.Is(err, syscall.ECONNREFUSED):
		// Nobody accepts on it: left behind by a crashed daemon.
		if err := os.Remove(endpoint); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale IPC socket: %w", err)
		}
	default:
		return nil, fmt.Errorf("failed to check IPC socket %s: %w", endpoint, err)
	}

	listener, err := net.Listen("unix", endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create IPC socket: %w", err)
	}
	if err := os.Chmod(endpoint, 0600); err != nil {
		listener.Close()
		return nil, fmt.Errorf("failed to set socket permissions: %w", err)
	}
	return listener, nil
}

func dial(endpoint string, timeout time.Duration) (net.Conn, error) {
	return net.DialTimeout("unix", endpoint, timeout)
}

func cleanup(endpoint string) {
	os.Remove(endpoint)
}
