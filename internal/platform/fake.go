package platform

import (
	"fmt"
	"sync"

	"github.com/1broseidon/winmgr/internal/geometry"
	"github.com/1broseidon/winmgr/internal/keys"
)

// Move records one MoveResize call made against a Fake.
type Move struct {
	Window WindowID
	Rect   geometry.Rect
}

type fakeCombo struct {
	mods keys.ModifierSet
	key  keys.KeyCode
}

// Fake is an in-memory Backend for tests and dry runs.
type Fake struct {
	mu         sync.Mutex
	ids        *idAllocator
	registered map[HotkeyID]fakeCombo
	rejected   map[fakeCombo]error
	foreground WindowID
	fgErr      error
	workAreas  map[WindowID]geometry.Rect
	moveErr    error
	moves      []Move
	events     chan HotkeyID
	closed     bool

	// OnMoveResize, when set, runs inside MoveResize before it is recorded.
	OnMoveResize func(w WindowID, r geometry.Rect)
}

var _ Backend = (*Fake)(nil)

// NewFake returns a Fake with no foreground window.
func NewFake() *Fake {
	return &Fake{
		ids:        newIDAllocator(1, 0xBFFF),
		registered: make(map[HotkeyID]fakeCombo),
		rejected:   make(map[fakeCombo]error),
		workAreas:  make(map[WindowID]geometry.Rect),
		fgErr:      ErrNoForegroundWindow,
		events:     make(chan HotkeyID, eventBuffer),
	}
}

func (f *Fake) Name() string { return "fake" }

// Reject makes registration of mods+key fail with err.
func (f *Fake) Reject(mods keys.ModifierSet, key keys.KeyCode, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err == nil {
		err = fmt.Errorf("hotkey %s is already registered", keys.Combo(mods, key))
	}
	f.rejected[fakeCombo{mods, key}] = err
}

// SetForeground sets the focused window and its monitor work area.
func (f *Fake) SetForeground(w WindowID, workArea geometry.Rect) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.foreground = w
	f.fgErr = nil
	f.workAreas[w] = workArea
}

// SetForegroundError makes ForegroundWindow fail with err.
func (f *Fake) SetForegroundError(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.fgErr = err
}

// FailMoveResize makes subsequent MoveResize calls fail with err (nil clears).
func (f *Fake) FailMoveResize(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.moveErr = err
}

// Moves returns the successful MoveResize calls so far.
func (f *Fake) Moves() []Move {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]Move, len(f.moves))
	copy(out, f.moves)
	return out
}

// Registered returns the number of live registrations.
func (f *Fake) Registered() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.registered)
}

// IDFor returns the live registration for mods+key.
func (f *Fake) IDFor(mods keys.ModifierSet, key keys.KeyCode) (HotkeyID, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for id, c := range f.registered {
		if c == (fakeCombo{mods, key}) {
			return id, true
		}
	}
	return 0, false
}

// Press simulates the user pressing mods+key. It reports whether a live
// registration matched.
func (f *Fake) Press(mods keys.ModifierSet, key keys.KeyCode) bool {
	id, ok := f.IDFor(mods, key)
	if !ok {
		return false
	}
	f.Fire(id)
	return true
}

// Fire queues a raw hotkey event, registered or not.
func (f *Fake) Fire(id HotkeyID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return
	}
	f.events <- id
}

func (f *Fake) RegisterHotkey(mods keys.ModifierSet, key keys.KeyCode) (HotkeyID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return 0, ErrClosed
	}
	c := fakeCombo{mods, key}
	if err, ok := f.rejected[c]; ok {
		return 0, err
	}
	for _, existing := range f.registered {
		if existing == c {
			return 0, fmt.Errorf("hotkey %s is already registered", keys.Combo(mods, key))
		}
	}
	id, err := f.ids.allocate()
	if err != nil {
		return 0, err
	}
	f.registered[id] = c
	return id, nil
}

func (f *Fake) UnregisterHotkey(id HotkeyID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.registered[id]; !ok {
		return ErrNotRegistered
	}
	delete(f.registered, id)
	return nil
}

func (f *Fake) Events() <-chan HotkeyID {
	return f.events
}

func (f *Fake) ForegroundWindow() (WindowID, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fgErr != nil {
		return 0, f.fgErr
	}
	return f.foreground, nil
}

func (f *Fake) WorkArea(w WindowID) (geometry.Rect, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.workAreas[w]
	if !ok {
		return geometry.Rect{}, fmt.Errorf("no monitor for window %d", w)
	}
	return r, nil
}

func (f *Fake) MoveResize(w WindowID, r geometry.Rect) error {
	f.mu.Lock()
	hook := f.OnMoveResize
	err := f.moveErr
	f.mu.Unlock()

	if hook != nil {
		hook(w, r)
	}
	if err != nil {
		return err
	}

	f.mu.Lock()
	f.moves = append(f.moves, Move{Window: w, Rect: r})
	f.mu.Unlock()
	return nil
}

func (f *Fake) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.closed {
		return nil
	}
	f.closed = true
	close(f.events)
	return nil
}
