package daemon

import (
	"time"

	"github.com/1broseidon/winmgr/internal/hotkeys"
	"github.com/1broseidon/winmgr/internal/keys"
)

// Status is a point-in-time view of the loop, safe to hand to other goroutines.
type Status struct {
	State      string    `json:"state"`
	Backend    string    `json:"backend"`
	ConfigPath string    `json:"config_path,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	Uptime     string    `json:"uptime"`
	Margin     int       `json:"margin"`
	Registered int       `json:"registered"`
	Failures   []string  `json:"failures,omitempty"`
	Dispatched uint64    `json:"dispatched"`
	Dropped    uint64    `json:"dropped"`
	Failed     uint64    `json:"failed"`
	Reloads    uint64    `json:"reloads"`
	LastReload time.Time `json:"last_reload"`
	LastError  string    `json:"last_error,omitempty"`
}

// Binding describes one live hotkey registration.
type Binding struct {
	ID        uint32 `json:"id,omitempty"`
	Combo     string `json:"combo"`
	Modifiers string `json:"modifiers"`
	Key       string `json:"key"`
	Layout    string `json:"layout"`
}

// BindingFor describes a registration.
func BindingFor(r hotkeys.Registration) Binding {
	return Binding{
		ID:        uint32(r.ID),
		Combo:     r.Keybind.Combo(),
		Modifiers: keys.FormatHex(uint32(r.Keybind.Modifiers)),
		Key:       keys.FormatHex(uint32(r.Keybind.Key)),
		Layout:    r.Keybind.Layout.String(),
	}
}

// Status returns a snapshot of the loop.
func (l *Loop) Status() Status {
	l.mu.RLock()
	defer l.mu.RUnlock()
	s := l.status
	s.Failures = append([]string(nil), l.status.Failures...)
	if !s.StartedAt.IsZero() && s.State != Stopped.String() {
		s.Uptime = time.Since(s.StartedAt).Truncate(time.Second).String()
	}
	return s
}

// Bindings returns the live registrations as of the last (re)load.
func (l *Loop) Bindings() []Binding {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]Binding, len(l.binds))
	copy(out, l.binds)
	return out
}
