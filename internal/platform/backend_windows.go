//go:build windows

package platform

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"golang.org/x/sys/windows"

	"github.com/1broseidon/winmgr/internal/geometry"
	"github.com/1broseidon/winmgr/internal/keys"
)

// protectedClasses are shell windows that must never be repositioned.
var protectedClasses = map[string]bool{
	"Progman": true,
	"WorkerW": true,
}

type hotkeyRequest struct {
	register bool
	id       HotkeyID
	mods     uint32
	vk       uint32
	reply    chan error
}

// WindowsBackend implements Backend with user32. Hotkeys are owned by one
// OS thread that pumps the message queue; requests are marshalled onto it.
type WindowsBackend struct {
	logger   *slog.Logger
	ids      *idAllocator
	events   chan HotkeyID
	threadID uint32
	done     chan struct{}

	mu      sync.Mutex
	pending []hotkeyRequest
	closed  bool
}

var _ Backend = (*WindowsBackend)(nil)

func newBackend(logger *slog.Logger) (Backend, error) {
	return NewWindowsBackend(logger)
}

// NewWindowsBackend starts the hotkey message thread.
func NewWindowsBackend(logger *slog.Logger) (*WindowsBackend, error) {
	if err := user32.Load(); err != nil {
		return nil, fmt.Errorf("user32.dll is unavailable: %w", err)
	}

	b := &WindowsBackend{
		logger: logger,
		ids:    newIDAllocator(1, maxAppHotkeyID),
		events: make(chan HotkeyID, eventBuffer),
		done:   make(chan struct{}),
	}

	ready := make(chan struct{})
	go b.messageLoop(ready)
	<-ready
	return b, nil
}

func (b *WindowsBackend) Name() string { return "win32" }

func (b *WindowsBackend) messageLoop(ready chan<- struct{}) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(b.done)

	b.threadID = windows.GetCurrentThreadId()
	ensureMessageQueue()
	close(ready)

	live := make(map[HotkeyID]struct{})
	defer func() {
		for id := range live {
			if err := unregisterHotKey(id); err != nil {
				b.logger.Warn("unregister on shutdown failed", "hotkey_id", id, "error", err)
			}
		}
		b.mu.Lock()
		b.closed = true
		pending := b.pending
		b.pending = nil
		b.mu.Unlock()
		for _, req := range pending {
			req.reply <- ErrClosed
		}
		close(b.events)
	}()

	for {
		var msg winMsg
		ret, err := getMessage(&msg)
		switch ret {
		case -1:
			b.logger.Error("GetMessageW failed, stopping hotkey thread", "error", err)
			return
		case 0:
			return
		}

		switch msg.message {
		case wmHotkey:
			deliver(b.events, HotkeyID(msg.wParam), b.logger)
		case wmApp:
			b.drain(live)
		}
	}
}

// drain runs queued register/unregister requests on the message thread.
func (b *WindowsBackend) drain(live map[HotkeyID]struct{}) {
	b.mu.Lock()
	pending := b.pending
	b.pending = nil
	b.mu.Unlock()

	for _, req := range pending {
		if req.register {
			err := registerHotKey(req.id, req.mods, req.vk)
			if err == nil {
				live[req.id] = struct{}{}
			}
			req.reply <- err
			continue
		}
		if _, ok := live[req.id]; !ok {
			req.reply <- ErrNotRegistered
			continue
		}
		delete(live, req.id)
		req.reply <- unregisterHotKey(req.id)
	}
}

func (b *WindowsBackend) call(req hotkeyRequest) error {
	req.reply = make(chan error, 1)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrClosed
	}
	b.pending = append(b.pending, req)
	b.mu.Unlock()

	if err := postThreadMessage(b.threadID, wmApp); err != nil {
		return fmt.Errorf("failed to wake hotkey thread: %w", err)
	}
	return <-req.reply
}

func (b *WindowsBackend) RegisterHotkey(mods keys.ModifierSet, key keys.KeyCode) (HotkeyID, error) {
	id, err := b.ids.allocate()
	if err != nil {
		return 0, err
	}
	err = b.call(hotkeyRequest{
		register: true,
		id:       id,
		mods:     uint32(mods | keys.NoRepeat),
		vk:       uint32(key),
	})
	if err != nil {
		return 0, fmt.Errorf("RegisterHotKey %s: %w", keys.Combo(mods, key), err)
	}
	return id, nil
}

func (b *WindowsBackend) UnregisterHotkey(id HotkeyID) error {
	return b.call(hotkeyRequest{id: id})
}

func (b *WindowsBackend) Events() <-chan HotkeyID {
	return b.events
}

func (b *WindowsBackend) ForegroundWindow() (WindowID, error) {
	hwnd := windows.GetForegroundWindow()
	if hwnd == 0 {
		return 0, ErrNoForegroundWindow
	}
	if hwnd == windows.GetDesktopWindow() || hwnd == windows.GetShellWindow() {
		return 0, ErrProtectedWindow
	}
	if !windows.IsWindowVisible(hwnd) || isIconic(hwnd) {
		return 0, ErrProtectedWindow
	}
	class := className(hwnd)
	if protectedClasses[class] || strings.HasPrefix(class, shellClassPrefix) {
		return 0, ErrProtectedWindow
	}
	return WindowID(hwnd), nil
}

func (b *WindowsBackend) WorkArea(w WindowID) (geometry.Rect, error) {
	rc, err := monitorWorkArea(windows.HWND(w))
	if err != nil {
		return geometry.Rect{}, fmt.Errorf("failed to query monitor info: %w", err)
	}
	return geometry.Rect{
		X:      int(rc.Left),
		Y:      int(rc.Top),
		Width:  int(rc.Right - rc.Left),
		Height: int(rc.Bottom - rc.Top),
	}, nil
}

func (b *WindowsBackend) MoveResize(w WindowID, r geometry.Rect) error {
	hwnd := windows.HWND(w)
	if !windows.IsWindow(hwnd) {
		return fmt.Errorf("window %#x no longer exists", uintptr(w))
	}
	// A maximized window ignores SetWindowPos size changes until restored.
	if isZoomed(hwnd) {
		showWindow(hwnd, swRestore)
	}
	if err := setWindowPos(hwnd, r.X, r.Y, r.Width, r.Height); err != nil {
		return fmt.Errorf("SetWindowPos: %w", err)
	}
	return nil
}

// Close stops the message thread, which unregisters every live hotkey.
func (b *WindowsBackend) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()

	if err := postThreadMessage(b.threadID, wmQuit); err != nil {
		return fmt.Errorf("failed to stop hotkey thread: %w", err)
	}

	timer := time.NewTimer(2 * time.Second)
	defer timer.Stop()
	select {
	case <-b.done:
		return nil
	case <-timer.C:
		return errors.New("hotkey message loop stop timed out")
	}
}
