package mcp

import (
	"github.com/1broseidon/winmgr/internal/daemon"
	"github.com/1broseidon/winmgr/internal/geometry"
)

// ListLayoutsInput is the input for the list_layouts tool.
type ListLayoutsInput struct{}

// LayoutInfo describes one preset.
type LayoutInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ListLayoutsOutput is the output for the list_layouts tool.
type ListLayoutsOutput struct {
	Layouts []LayoutInfo `json:"layouts"`
}

// ListKeybindsInput is the input for the list_keybinds tool.
type ListKeybindsInput struct{}

// ListKeybindsOutput is the output for the list_keybinds tool.
type ListKeybindsOutput struct {
	// Source is "daemon" for live registrations or "config" when the daemon
	// is not running and the config file was read instead.
	Source   string           `json:"source"`
	Margin   int              `json:"margin"`
	Keybinds []daemon.Binding `json:"keybinds"`
}

// ResolveLayoutInput is the input for the resolve_layout tool.
type ResolveLayoutInput struct {
	Layout string         `json:"layout,omitempty" jsonschema:"Preset name such as LeftHalf or CenterSmall. Omit when rect is given."`
	Rect   *geometry.Rect `json:"rect,omitempty" jsonschema:"Custom absolute rectangle {x,y,w,h}. Omit when layout is given."`
	Area   geometry.Rect  `json:"area" jsonschema:"Monitor work area {x,y,w,h} to resolve against"`
	Margin int            `json:"margin,omitempty" jsonschema:"Margin in pixels applied on every side (default 0)"`
}

// ResolveLayoutOutput is the output for the resolve_layout tool.
type ResolveLayoutOutput struct {
	Layout  string        `json:"layout"`
	Rect    geometry.Rect `json:"rect"`
	Clamped bool          `json:"clamped"`
}

// ApplyLayoutInput is the input for the apply_layout tool.
type ApplyLayoutInput struct {
	Layout string         `json:"layout,omitempty" jsonschema:"Preset name such as LeftHalf or CenterSmall. Omit when rect is given."`
	Rect   *geometry.Rect `json:"rect,omitempty" jsonschema:"Custom absolute rectangle {x,y,w,h}. Omit when layout is given."`
}

// ApplyLayoutOutput is the output for the apply_layout tool.
type ApplyLayoutOutput struct {
	Layout string        `json:"layout"`
	Rect   geometry.Rect `json:"rect"`
}

// ReloadConfigInput is the input for the reload_config tool.
type ReloadConfigInput struct{}

// ReloadConfigOutput is the output for the reload_config tool.
type ReloadConfigOutput struct {
	Registered int      `json:"registered"`
	Failures   []string `json:"failures,omitempty"`
}

// DaemonStatusInput is the input for the daemon_status tool.
type DaemonStatusInput struct{}

// StatusInfo is daemon.Status with times rendered as RFC 3339 text.
type StatusInfo struct {
	State      string   `json:"state"`
	Backend    string   `json:"backend"`
	ConfigPath string   `json:"config_path,omitempty"`
	StartedAt  string   `json:"started_at,omitempty"`
	Uptime     string   `json:"uptime,omitempty"`
	Margin     int      `json:"margin"`
	Registered int      `json:"registered"`
	Failures   []string `json:"failures,omitempty"`
	Dispatched uint64   `json:"dispatched"`
	Dropped    uint64   `json:"dropped"`
	Failed     uint64   `json:"failed"`
	Reloads    uint64   `json:"reloads"`
	LastReload string   `json:"last_reload,omitempty"`
	LastError  string   `json:"last_error,omitempty"`
}

// DaemonStatusOutput is the output for the daemon_status tool.
type DaemonStatusOutput struct {
	Running bool        `json:"running"`
	Status  *StatusInfo `json:"status,omitempty"`
	Error   string      `json:"error,omitempty"`
}
