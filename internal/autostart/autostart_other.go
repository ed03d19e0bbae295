//go:build !linux && !windows

package autostart

func Install(string) (Entry, error) { return Entry{}, ErrUnsupported }

func Uninstall() error { return ErrUnsupported }

func Status() (Entry, error) { return Entry{}, ErrUnsupported }
