package hotkeys

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/1broseidon/winmgr/internal/config"
	"github.com/1broseidon/winmgr/internal/geometry"
	"github.com/1broseidon/winmgr/internal/platform"
)

// Registration pairs a backend hotkey ID with the keybind it was made for.
type Registration struct {
	ID      platform.HotkeyID
	Keybind config.Keybind
}

// Failure records one keybind the backend refused.
type Failure struct {
	Keybind config.Keybind
	Err     error
}

func (f Failure) Error() string {
	return fmt.Sprintf("%s -> %s: %v", f.Keybind.Combo(), f.Keybind.Layout, f.Err)
}

func (f Failure) Unwrap() error { return f.Err }

// RegistrationError reports a partially registered configuration. The
// keybinds that did register stay live.
type RegistrationError struct {
	Registered int
	Failures   []Failure
}

func (e *RegistrationError) Error() string {
	parts := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		parts[i] = f.Error()
	}
	return fmt.Sprintf("%d of %d keybinds failed to register: %s",
		len(e.Failures), e.Registered+len(e.Failures), strings.Join(parts, "; "))
}

func (e *RegistrationError) Unwrap() []error {
	errs := make([]error, len(e.Failures))
	for i, f := range e.Failures {
		errs[i] = f
	}
	return errs
}

// Registry owns the live hotkey registrations. It is not safe for concurrent
// use; the dispatch loop is its only caller.
type Registry struct {
	source platform.HotkeySource
	logger *slog.Logger

	byID  map[platform.HotkeyID]config.Keybind
	order []Registration
}

// NewRegistry creates an empty registry on top of source.
func NewRegistry(source platform.HotkeySource, logger *slog.Logger) *Registry {
	if logger == nil {
		logger = slog.Default()
	}
	return &Registry{
		source: source,
		logger: logger,
		byID:   make(map[platform.HotkeyID]config.Keybind),
	}
}

// RegisterAll registers every keybind of cfg in order. A refused keybind does
// not stop the others; the returned error is then a *RegistrationError and
// the successful registrations remain live.
func (r *Registry) RegisterAll(cfg *config.Config) ([]Registration, error) {
	var failures []Failure
	var added []Registration

	for _, kb := range cfg.Keybinds {
		id, err := r.source.RegisterHotkey(kb.Modifiers, kb.Key)
		if err != nil {
			r.logger.Warn("hotkey registration failed",
				"combo", kb.Combo(), "layout", kb.Layout.String(), "error", err)
			failures = append(failures, Failure{Keybind: kb, Err: err})
			continue
		}
		reg := Registration{ID: id, Keybind: kb}
		r.byID[id] = kb
		r.order = append(r.order, reg)
		added = append(added, reg)
		r.logger.Debug("hotkey registered", "combo", kb.Combo(), "layout", kb.Layout.String(), "id", id)
	}

	if len(failures) > 0 {
		return added, &RegistrationError{Registered: len(added), Failures: failures}
	}
	return added, nil
}

// UnregisterAll releases every live registration. The table is emptied even
// when the backend reports errors, since those IDs can never fire again.
func (r *Registry) UnregisterAll() error {
	var errs []error
	for _, reg := range r.order {
		if err := r.source.UnregisterHotkey(reg.ID); err != nil && !errors.Is(err, platform.ErrClosed) {
			errs = append(errs, fmt.Errorf("unregister %s: %w", reg.Keybind.Combo(), err))
		}
	}
	clear(r.byID)
	r.order = nil
	return errors.Join(errs...)
}

// Reload swaps the live registrations for those of cfg.
func (r *Registry) Reload(cfg *config.Config) ([]Registration, error) {
	if err := r.UnregisterAll(); err != nil {
		r.logger.Warn("failed to release previous hotkeys", "error", err)
	}
	return r.RegisterAll(cfg)
}

// Lookup returns the layout bound to a fired hotkey ID.
func (r *Registry) Lookup(id platform.HotkeyID) (geometry.Layout, bool) {
	kb, ok := r.byID[id]
	if !ok {
		return geometry.Layout{}, false
	}
	return kb.Layout, true
}

// Bindings returns the live registrations in registration order.
func (r *Registry) Bindings() []Registration {
	out := make([]Registration, len(r.order))
	copy(out, r.order)
	return out
}

// Len returns the number of live registrations.
func (r *Registry) Len() int {
	return len(r.order)
}
