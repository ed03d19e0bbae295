//go:build linux

package autostart

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// entryPath returns $XDG_CONFIG_HOME/autostart/winmgr.desktop.
func entryPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to locate home directory: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "autostart", "winmgr.desktop"), nil
}

func desktopEntry(command string) string {
	var b strings.Builder
	b.WriteString("[Desktop Entry]\n")
	b.WriteString("Type=Application\n")
	b.WriteString("Name=" + Name + "\n")
	b.WriteString("Comment=Move the focused window with hotkeys\n")
	b.WriteString("Exec=" + command + "\n")
	b.WriteString("NoDisplay=true\n")
	b.WriteString("X-GNOME-Autostart-enabled=true\n")
	return b.String()
}

// Install writes the XDG autostart entry for exe, replacing any existing one.
func Install(exe string) (Entry, error) {
	path, err := entryPath()
	if err != nil {
		return Entry{}, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return Entry{}, fmt.Errorf("failed to create autostart directory: %w", err)
	}
	cmd := CommandLine(exe)
	if err := os.WriteFile(path, []byte(desktopEntry(cmd)), 0644); err != nil {
		return Entry{}, fmt.Errorf("failed to write autostart entry: %w", err)
	}
	return Entry{Location: path, Command: cmd}, nil
}

// Uninstall removes the autostart entry.
func Uninstall() error {
	path, err := entryPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return ErrNotInstalled
		}
		return fmt.Errorf("failed to remove autostart entry: %w", err)
	}
	return nil
}

// Status reports the installed entry.
func Status() (Entry, error) {
	path, err := entryPath()
	if err != nil {
		return Entry{}, err
	}
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return Entry{}, ErrNotInstalled
		}
		return Entry{}, err
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if cmd, ok := strings.CutPrefix(strings.TrimSpace(scanner.Text()), "Exec="); ok {
			return Entry{Location: path, Command: cmd}, nil
		}
	}
	if err := scanner.Err(); err != nil {
		return Entry{}, err
	}
	return Entry{}, fmt.Errorf("%s has no Exec line", path)
}
