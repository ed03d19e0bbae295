package runtimepath

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// Dir returns the runtime directory used for the IPC socket and the daemon
// log. Priority:
// 1) XDG_RUNTIME_DIR (if set)
// 2) %LOCALAPPDATA%\winmgr on Windows
// 3) /run/user/<uid> (if present)
// 4) /tmp/winmgr-runtime-<uid> (created)
func Dir() (string, error) {
	if runtimeDir := os.Getenv("XDG_RUNTIME_DIR"); runtimeDir != "" {
		return runtimeDir, nil
	}

	if runtime.GOOS == "windows" {
		base, err := os.UserCacheDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate local app data: %w", err)
		}
		dir := filepath.Join(base, "winmgr")
		if err := os.MkdirAll(dir, 0700); err != nil {
			return "", fmt.Errorf("failed to create runtime dir: %w", err)
		}
		return dir, nil
	}

	uid := os.Getuid()
	runUserDir := fmt.Sprintf("/run/user/%d", uid)
	if info, err := os.Stat(runUserDir); err == nil && info.IsDir() {
		return runUserDir, nil
	}

	tmpDir := fmt.Sprintf("/tmp/winmgr-runtime-%d", uid)
	if err := os.MkdirAll(tmpDir, 0700); err != nil {
		return "", fmt.Errorf("failed to create runtime dir: %w", err)
	}
	return tmpDir, nil
}

// SocketPath returns the daemon IPC socket path.
func SocketPath() (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, "winmgr.sock"), nil
}

// PipeName returns the per-user named pipe used for IPC on Windows.
func PipeName() string {
	user := os.Getenv("USERNAME")
	if user == "" {
		user = os.Getenv("USER")
	}
	user = strings.Map(func(r rune) rune {
		if r == '\\' || r == '/' || r == ' ' {
			return '_'
		}
		return r
	}, user)
	if user == "" {
		return `\\.\pipe\winmgr`
	}
	return `\\.\pipe\winmgr-` + user
}

// LogPath returns the daemon log file used when stderr is not a terminal.
func LogPath() (string, error) {
	runtimeDir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(runtimeDir, "winmgr.log"), nil
}
