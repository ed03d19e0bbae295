package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/1broseidon/winmgr/internal/geometry"
	"github.com/1broseidon/winmgr/internal/keys"
)

// WindowID is a platform-neutral window handle (HWND or X11 window).
type WindowID uintptr

// HotkeyID identifies one hotkey registration. IDs are never reused within a
// backend's lifetime.
type HotkeyID uint32

var (
	ErrUnsupported        = errors.New("platform not supported")
	ErrNoForegroundWindow = errors.New("no foreground window")
	ErrProtectedWindow    = errors.New("foreground window must not be moved")
	ErrUnmappedKey        = errors.New("key code has no mapping on this platform")
	ErrClosed             = errors.New("backend closed")
	ErrNotRegistered      = errors.New("hotkey not registered")
)

// WindowAccessor queries and moves the foreground window.
type WindowAccessor interface {
	// ForegroundWindow returns the focused top-level window, or
	// ErrNoForegroundWindow / ErrProtectedWindow.
	ForegroundWindow() (WindowID, error)
	// WorkArea returns the usable area of the monitor containing the window.
	WorkArea(w WindowID) (geometry.Rect, error)
	MoveResize(w WindowID, r geometry.Rect) error
}

// HotkeySource registers global hotkeys and delivers their firings.
type HotkeySource interface {
	RegisterHotkey(mods keys.ModifierSet, key keys.KeyCode) (HotkeyID, error)
	UnregisterHotkey(id HotkeyID) error
	// Events delivers fired hotkey IDs. Closed when the backend is closed.
	Events() <-chan HotkeyID
}

// Backend abstracts window-system operations across platforms.
type Backend interface {
	WindowAccessor
	HotkeySource
	Name() string
	Close() error
}

// New opens the backend for the current OS.
func New(logger *slog.Logger) (Backend, error) {
	if logger == nil {
		logger = slog.Default()
	}
	return newBackend(logger)
}

// eventBuffer bounds queued hotkey firings. Producers never block on it.
const eventBuffer = 64

// idAllocator hands out monotonically increasing hotkey IDs in [first, last].
type idAllocator struct {
	next atomic.Uint32
	last uint32
}

func newIDAllocator(first, last uint32) *idAllocator {
	a := &idAllocator{last: last}
	a.next.Store(first)
	return a
}

func (a *idAllocator) allocate() (HotkeyID, error) {
	id := a.next.Add(1) - 1
	if id > a.last || id == 0 {
		return 0, fmt.Errorf("hotkey ID range exhausted (ID=%d)", id)
	}
	return HotkeyID(id), nil
}

// deliver queues id without blocking; a full queue drops the firing.
func deliver(events chan<- HotkeyID, id HotkeyID, logger *slog.Logger) {
	select {
	case events <- id:
	default:
		logger.Warn("hotkey event queue full, dropping event", "hotkey_id", id)
	}
}
