package hotkeys

import (
	"errors"
	"testing"

	"github.com/1broseidon/winmgr/internal/config"
	"github.com/1broseidon/winmgr/internal/geometry"
	"github.com/1broseidon/winmgr/internal/keys"
	"github.com/1broseidon/winmgr/internal/platform"
)

var errTaken = errors.New("combination claimed by another process")

func threeBinds() *config.Config {
	return &config.Config{
		Keybinds: []config.Keybind{
			{Modifiers: keys.Alt, Key: keys.VKLeft, Layout: geometry.PresetLayout(geometry.LeftHalf)},
			{Modifiers: keys.Alt, Key: keys.VKRight, Layout: geometry.PresetLayout(geometry.RightHalf)},
			{Modifiers: keys.Alt | keys.Shift, Key: keys.VKUp, Layout: geometry.PresetLayout(geometry.CenterLarge)},
		},
	}
}

func TestRegisterAll_PartialFailure(t *testing.T) {
	fake := platform.NewFake()
	fake.Reject(keys.Alt, keys.VKRight, errTaken)
	reg := NewRegistry(fake, nil)

	added, err := reg.RegisterAll(threeBinds())
	if len(added) != 2 {
		t.Fatalf("expected 2 registrations, got %d", len(added))
	}

	var regErr *RegistrationError
	if !errors.As(err, &regErr) {
		t.Fatalf("expected *RegistrationError, got %v", err)
	}
	if len(regErr.Failures) != 1 {
		t.Fatalf("expected exactly 1 failure, got %d", len(regErr.Failures))
	}
	if regErr.Failures[0].Keybind.Key != keys.VKRight {
		t.Fatalf("expected failure for VKRight, got %s", regErr.Failures[0].Keybind.Combo())
	}
	if !errors.Is(err, errTaken) {
		t.Fatalf("expected errors.Is to reach the backend error")
	}

	if added[0].Keybind.Key != keys.VKLeft || added[1].Keybind.Key != keys.VKUp {
		t.Fatalf("expected first and third keybinds registered, got %+v", added)
	}
	if fake.Registered() != 2 {
		t.Fatalf("expected backend to hold 2 hotkeys, got %d", fake.Registered())
	}
}

func TestLookup(t *testing.T) {
	fake := platform.NewFake()
	reg := NewRegistry(fake, nil)
	if _, err := reg.RegisterAll(threeBinds()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	id, ok := fake.IDFor(keys.Alt|keys.Shift, keys.VKUp)
	if !ok {
		t.Fatalf("expected Alt+Shift+Up to be registered")
	}
	layout, ok := reg.Lookup(id)
	if !ok || layout.Preset != geometry.CenterLarge {
		t.Fatalf("expected CenterLarge, got %v %v", layout, ok)
	}
	if _, ok := reg.Lookup(id + 1000); ok {
		t.Fatalf("expected unknown ID to miss")
	}
}

func TestReload_ReplacesRegistrations(t *testing.T) {
	fake := platform.NewFake()
	reg := NewRegistry(fake, nil)
	if _, err := reg.RegisterAll(threeBinds()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	oldID, _ := fake.IDFor(keys.Alt, keys.VKLeft)

	next := &config.Config{Keybinds: []config.Keybind{
		{Modifiers: keys.Alt, Key: keys.VKLeft, Layout: geometry.PresetLayout(geometry.LeftThird)},
	}}
	if _, err := reg.Reload(next); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if reg.Len() != 1 || fake.Registered() != 1 {
		t.Fatalf("expected 1 live registration, got registry=%d backend=%d", reg.Len(), fake.Registered())
	}
	if _, ok := reg.Lookup(oldID); ok {
		t.Fatalf("stale ID %d must not resolve after reload", oldID)
	}
	newID, _ := fake.IDFor(keys.Alt, keys.VKLeft)
	if newID == oldID {
		t.Fatalf("expected a fresh ID after reload, got %d again", newID)
	}
	if layout, _ := reg.Lookup(newID); layout.Preset != geometry.LeftThird {
		t.Fatalf("expected LeftThird, got %v", layout)
	}
}

func TestUnregisterAll(t *testing.T) {
	fake := platform.NewFake()
	reg := NewRegistry(fake, nil)
	if _, err := reg.RegisterAll(threeBinds()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := reg.UnregisterAll(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.Registered() != 0 || reg.Len() != 0 {
		t.Fatalf("expected empty tables, got backend=%d registry=%d", fake.Registered(), reg.Len())
	}
	if len(reg.Bindings()) != 0 {
		t.Fatalf("expected no bindings")
	}
}

func TestRegistrationError_Message(t *testing.T) {
	err := &RegistrationError{
		Registered: 2,
		Failures: []Failure{{
			Keybind: config.Keybind{Modifiers: keys.Control, Key: keys.VKF1, Layout: geometry.PresetLayout(geometry.LeftHalf)},
			Err:     errTaken,
		}},
	}
	want := "1 of 3 keybinds failed to register: Ctrl+F1 -> LeftHalf: combination claimed by another process"
	if err.Error() != want {
		t.Fatalf("expected %q, got %q", want, err.Error())
	}
}
