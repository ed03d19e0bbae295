//go:build linux

package platform

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/winmgr/internal/geometry"
	"github.com/1broseidon/winmgr/internal/keys"
	"github.com/1broseidon/winmgr/internal/x11"
)

// LinuxBackend implements Backend on top of an X11 connection. Hotkeys are
// passive grabs on the root window; the xevent loop runs on its own goroutine.
type LinuxBackend struct {
	conn   *x11.Connection
	logger *slog.Logger
	ids    *idAllocator
	events chan HotkeyID
	done   chan struct{}

	mu          sync.Mutex
	grabs       map[HotkeyID][]x11.Grab
	byGrab      map[x11.Grab]HotkeyID
	held        map[xproto.Keycode]bool
	lastRelease map[xproto.Keycode]xproto.Timestamp
	closed      bool
}

var _ Backend = (*LinuxBackend)(nil)

func newBackend(logger *slog.Logger) (Backend, error) {
	return NewLinuxBackend(logger)
}

// NewLinuxBackend connects to $DISPLAY and starts the event loop.
func NewLinuxBackend(logger *slog.Logger) (*LinuxBackend, error) {
	conn, err := x11.NewConnection()
	if err != nil {
		return nil, fmt.Errorf("failed to connect to X11: %w", err)
	}

	b := &LinuxBackend{
		conn:        conn,
		logger:      logger,
		ids:         newIDAllocator(1, 1<<31),
		events:      make(chan HotkeyID, eventBuffer),
		done:        make(chan struct{}),
		grabs:       make(map[HotkeyID][]x11.Grab),
		byGrab:      make(map[x11.Grab]HotkeyID),
		held:        make(map[xproto.Keycode]bool),
		lastRelease: make(map[xproto.Keycode]xproto.Timestamp),
	}
	conn.OnKeyPress(b.handlePress)
	conn.OnKeyRelease(b.handleRelease)

	go func() {
		defer close(b.done)
		conn.EventLoop()
	}()
	return b, nil
}

func (b *LinuxBackend) Name() string { return "x11" }

// RegisterHotkey grabs the combination on every keycode its keysym maps to.
func (b *LinuxBackend) RegisterHotkey(mods keys.ModifierSet, key keys.KeyCode) (HotkeyID, error) {
	keysym, ok := keys.Keysym(key)
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnmappedKey, key)
	}
	keycodes := b.conn.Keycodes(keysym)
	if len(keycodes) == 0 {
		return 0, fmt.Errorf("%w: keysym %s is not on the keyboard", ErrUnmappedKey, keysym)
	}

	mask := xModMask(mods)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return 0, ErrClosed
	}

	id, err := b.ids.allocate()
	if err != nil {
		return 0, err
	}

	var grabbed []x11.Grab
	for _, kc := range keycodes {
		g := x11.Grab{Mods: mask, Keycode: kc}
		if _, taken := b.byGrab[g]; taken {
			b.releaseLocked(grabbed)
			return 0, fmt.Errorf("%s is already registered", keys.Combo(mods, key))
		}
		if err := b.conn.GrabKey(g); err != nil {
			b.releaseLocked(grabbed)
			return 0, fmt.Errorf("grab %s failed (another client may own it): %w", keys.Combo(mods, key), err)
		}
		b.byGrab[g] = id
		grabbed = append(grabbed, g)
	}

	b.grabs[id] = grabbed
	return id, nil
}

func (b *LinuxBackend) UnregisterHotkey(id HotkeyID) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return ErrClosed
	}
	grabbed, ok := b.grabs[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrNotRegistered, id)
	}
	b.releaseLocked(grabbed)
	delete(b.grabs, id)
	return nil
}

func (b *LinuxBackend) releaseLocked(grabbed []x11.Grab) {
	for _, g := range grabbed {
		b.conn.UngrabKey(g)
		delete(b.byGrab, g)
	}
}

func (b *LinuxBackend) Events() <-chan HotkeyID {
	return b.events
}

// handlePress runs on the event loop goroutine.
func (b *LinuxBackend) handlePress(g x11.Grab, t xproto.Timestamp) {
	b.mu.Lock()
	id, ok := b.byGrab[g]
	// Hotkeys never auto-repeat, as with MOD_NOREPEAT on Windows. X
	// synthesizes repeat as release+press pairs sharing a timestamp.
	repeat := b.held[g.Keycode] || b.lastRelease[g.Keycode] == t
	b.held[g.Keycode] = true
	b.mu.Unlock()

	if !ok || repeat {
		return
	}
	deliver(b.events, id, b.logger)
}

func (b *LinuxBackend) handleRelease(g x11.Grab, t xproto.Timestamp) {
	b.mu.Lock()
	delete(b.held, g.Keycode)
	b.lastRelease[g.Keycode] = t
	b.mu.Unlock()
}

func (b *LinuxBackend) ForegroundWindow() (WindowID, error) {
	win, err := b.conn.ActiveWindow()
	if err != nil || win == 0 {
		return 0, ErrNoForegroundWindow
	}
	if b.conn.IsShellWindow(win) {
		return 0, ErrProtectedWindow
	}
	return WindowID(win), nil
}

func (b *LinuxBackend) WorkArea(w WindowID) (geometry.Rect, error) {
	return b.conn.WorkAreaForWindow(xproto.Window(w))
}

func (b *LinuxBackend) MoveResize(w WindowID, r geometry.Rect) error {
	return b.conn.MoveResizeWindow(xproto.Window(w), r)
}

// Close releases every grab, stops the event loop and disconnects.
func (b *LinuxBackend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	for id, grabbed := range b.grabs {
		b.releaseLocked(grabbed)
		delete(b.grabs, id)
	}
	b.mu.Unlock()

	b.conn.Quit()
	if err := b.conn.Wake(); err != nil {
		b.logger.Warn("failed to wake X11 event loop", "error", err)
	}
	select {
	case <-b.done:
	case <-time.After(2 * time.Second):
		// The loop may still deliver; leave events open rather than race it.
		return fmt.Errorf("X11 event loop did not stop in time")
	}
	b.conn.Close()
	close(b.events)
	return nil
}

// xModMask converts modifier flags to an X11 modifier mask. NoRepeat has no
// X11 equivalent and is handled in handlePress.
func xModMask(mods keys.ModifierSet) uint16 {
	var mask uint16
	if mods.Has(keys.Alt) {
		mask |= xproto.ModMask1
	}
	if mods.Has(keys.Control) {
		mask |= xproto.ModMaskControl
	}
	if mods.Has(keys.Shift) {
		mask |= xproto.ModMaskShift
	}
	if mods.Has(keys.Windows) {
		mask |= xproto.ModMask4
	}
	return mask
}
