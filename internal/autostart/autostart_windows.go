//go:build windows

package autostart

import (
	"errors"
	"fmt"

	"golang.org/x/sys/windows/registry"
)

const runKey = `Software\Microsoft\Windows\CurrentVersion\Run`

var location = `HKCU\` + runKey + `\` + Name

// Install sets the HKCU Run value for exe, replacing any existing one.
func Install(exe string) (Entry, error) {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		return Entry{}, fmt.Errorf("failed to open Run key: %w", err)
	}
	defer k.Close()

	cmd := CommandLine(exe)
	if err := k.SetStringValue(Name, cmd); err != nil {
		return Entry{}, fmt.Errorf("failed to write Run value: %w", err)
	}
	return Entry{Location: location, Command: cmd}, nil
}

// Uninstall deletes the Run value.
func Uninstall() error {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.SET_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return ErrNotInstalled
		}
		return fmt.Errorf("failed to open Run key: %w", err)
	}
	defer k.Close()

	if err := k.DeleteValue(Name); err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return ErrNotInstalled
		}
		return fmt.Errorf("failed to delete Run value: %w", err)
	}
	return nil
}

// Status reports the installed Run value.
func Status() (Entry, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, runKey, registry.QUERY_VALUE)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return Entry{}, ErrNotInstalled
		}
		return Entry{}, fmt.Errorf("failed to open Run key: %w", err)
	}
	defer k.Close()

	cmd, _, err := k.GetStringValue(Name)
	if err != nil {
		if errors.Is(err, registry.ErrNotExist) {
			return Entry{}, ErrNotInstalled
		}
		return Entry{}, fmt.Errorf("failed to read Run value: %w", err)
	}
	return Entry{Location: location, Command: cmd}, nil
}
