// Package autostart manages the per-user login entry that launches
// "winmgr run".
package autostart

import "errors"

var (
	ErrNotInstalled = errors.New("autostart entry is not installed")
	ErrUnsupported  = errors.New("autostart is not supported on this platform")
)

// Name is the registry value / desktop entry name.
const Name = "WinMgr"

// Entry describes an installed autostart entry.
type Entry struct {
	// Location is the registry key or file holding the entry.
	Location string
	Command  string
}

// CommandLine returns the command the login entry runs. The path is quoted
// verbatim; backslashes are not escaped.
func CommandLine(exe string) string {
	return `"` + exe + `" run`
}
