package config

import (
	"errors"
	"fmt"
)

// Error kinds. Match with errors.Is.
var (
	ErrSyntax           = errors.New("malformed config")
	ErrUnknownLayout    = errors.New("unknown layout")
	ErrInvalidNumber    = errors.New("invalid numeric literal")
	ErrDuplicateKeybind = errors.New("duplicate keybind")
	ErrNegativeMargin   = errors.New("negative margin")
)

// ConfigError describes why a configuration was rejected.
type ConfigError struct {
	Kind error
	// Path locates the offending value, e.g. "keybinds[2].layout".
	Path string
	// File, Line and Column are set when the error is tied to a position in a file.
	File   string
	Line   int
	Column int
	Err    error
}

func (e *ConfigError) Error() string {
	if e == nil {
		return "<nil>"
	}
	msg := e.Kind.Error()
	if e.Err != nil {
		msg = fmt.Sprintf("%s: %v", msg, e.Err)
	}
	if e.Path != "" {
		msg = e.Path + ": " + msg
	}
	if e.File != "" {
		if e.Line > 0 {
			return fmt.Sprintf("%s:%d:%d: %s", e.File, e.Line, e.Column, msg)
		}
		return e.File + ": " + msg
	}
	return msg
}

func (e *ConfigError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func newError(kind error, path string, format string, args ...any) *ConfigError {
	return &ConfigError{Kind: kind, Path: path, Err: fmt.Errorf(format, args...)}
}

// lineCol converts a byte offset into 1-based line and column numbers.
func lineCol(data []byte, offset int64) (int, int) {
	if offset > int64(len(data)) {
		offset = int64(len(data))
	}
	line, col := 1, 1
	for _, b := range data[:offset] {
		if b == '\n' {
			line++
			col = 1
			continue
		}
		col++
	}
	return line, col
}
