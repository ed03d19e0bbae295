package config

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/1broseidon/winmgr/internal/geometry"
	"github.com/1broseidon/winmgr/internal/keys"
)

// Config is the parsed winmgr configuration. It is never mutated after load;
// a reload builds a fresh value.
type Config struct {
	Margin   int
	Keybinds []Keybind
}

// Keybind binds a modifier+key combination to a layout.
type Keybind struct {
	Modifiers keys.ModifierSet
	Key       keys.KeyCode
	Layout    geometry.Layout
}

// Combo returns the human-readable modifier+key text.
func (k Keybind) Combo() string {
	return keys.Combo(k.Modifiers, k.Key)
}

// DefaultConfig returns the first-run configuration.
func DefaultConfig() *Config {
	return &Config{
		Margin:   0,
		Keybinds: []Keybind{},
	}
}

type rawConfig struct {
	Margin   *json.Number `json:"margin"`
	Keybinds []rawKeybind `json:"keybinds"`
}

type rawKeybind struct {
	Modifiers *[]string       `json:"modifiers"`
	Modifier  *string         `json:"modifier"`
	Key       *string         `json:"key"`
	Layout    json.RawMessage `json:"layout"`
}

type rawCustom struct {
	X *json.Number `json:"x"`
	Y *json.Number `json:"y"`
	W *json.Number `json:"w"`
	H *json.Number `json:"h"`
}

// Parse decodes and validates configuration bytes. Unknown fields are ignored.
func Parse(data []byte) (*Config, error) {
	var raw rawConfig
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return nil, syntaxError(data, err)
	}
	if dec.More() {
		line, col := lineCol(data, dec.InputOffset())
		return nil, &ConfigError{Kind: ErrSyntax, Line: line, Column: col, Err: errors.New("unexpected data after top-level object")}
	}

	cfg := DefaultConfig()
	if raw.Margin != nil {
		m, err := strconv.Atoi(raw.Margin.String())
		if err != nil {
			return nil, newError(ErrInvalidNumber, "margin", "%q is not an integer", raw.Margin.String())
		}
		cfg.Margin = m
	}

	for i, rk := range raw.Keybinds {
		kb, err := rk.build(fmt.Sprintf("keybinds[%d]", i))
		if err != nil {
			return nil, err
		}
		cfg.Keybinds = append(cfg.Keybinds, kb)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func syntaxError(data []byte, err error) error {
	ce := &ConfigError{Kind: ErrSyntax, Err: err}
	var se *json.SyntaxError
	var te *json.UnmarshalTypeError
	switch {
	case errors.As(err, &se):
		ce.Line, ce.Column = lineCol(data, se.Offset)
	case errors.As(err, &te):
		ce.Path = te.Field
		ce.Line, ce.Column = lineCol(data, te.Offset)
	}
	return ce
}

func (rk rawKeybind) build(path string) (Keybind, error) {
	var kb Keybind

	switch {
	case rk.Modifiers != nil:
		mods, err := keys.ParseModifiers(*rk.Modifiers)
		if err != nil {
			return kb, &ConfigError{Kind: ErrInvalidNumber, Path: path + ".modifiers", Err: err}
		}
		kb.Modifiers = mods
	case rk.Modifier != nil:
		// Single-value form written by older versions.
		mods, err := keys.ParseModifiers([]string{*rk.Modifier})
		if err != nil {
			return kb, &ConfigError{Kind: ErrInvalidNumber, Path: path + ".modifier", Err: err}
		}
		kb.Modifiers = mods
	default:
		return kb, newError(ErrInvalidNumber, path+".modifiers", "modifiers must be given explicitly (use [] for none)")
	}

	if rk.Key == nil {
		return kb, newError(ErrInvalidNumber, path+".key", "key is required")
	}
	key, err := keys.ParseHex(*rk.Key)
	if err != nil {
		return kb, &ConfigError{Kind: ErrInvalidNumber, Path: path + ".key", Err: err}
	}
	kb.Key = keys.KeyCode(key)

	layout, err := parseLayout(rk.Layout, path+".layout")
	if err != nil {
		return kb, err
	}
	kb.Layout = layout
	return kb, nil
}

func parseLayout(data json.RawMessage, path string) (geometry.Layout, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return geometry.Layout{}, newError(ErrUnknownLayout, path, "layout is required")
	}

	switch trimmed[0] {
	case '"':
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return geometry.Layout{}, &ConfigError{Kind: ErrSyntax, Path: path, Err: err}
		}
		p, ok := geometry.ParsePreset(name)
		if !ok {
			return geometry.Layout{}, newError(ErrUnknownLayout, path, "%q is not a preset", name)
		}
		return geometry.PresetLayout(p), nil

	case '{':
		var rc rawCustom
		dec := json.NewDecoder(bytes.NewReader(trimmed))
		dec.UseNumber()
		if err := dec.Decode(&rc); err != nil {
			return geometry.Layout{}, &ConfigError{Kind: ErrSyntax, Path: path, Err: err}
		}
		var r geometry.Rect
		fields := []struct {
			name string
			val  *json.Number
			dst  *int
		}{
			{"x", rc.X, &r.X},
			{"y", rc.Y, &r.Y},
			{"w", rc.W, &r.Width},
			{"h", rc.H, &r.Height},
		}
		for _, f := range fields {
			if f.val == nil {
				return geometry.Layout{}, newError(ErrUnknownLayout, path, "custom layout is missing %q", f.name)
			}
			n, err := strconv.Atoi(f.val.String())
			if err != nil {
				return geometry.Layout{}, newError(ErrInvalidNumber, path+"."+f.name, "%q is not an integer", f.val.String())
			}
			*f.dst = n
		}
		return geometry.CustomLayout(r), nil
	}

	return geometry.Layout{}, newError(ErrUnknownLayout, path, "layout must be a preset name or an {x,y,w,h} object")
}

// Validate checks the invariants that span keybinds.
func (c *Config) Validate() error {
	if c.Margin < 0 {
		return newError(ErrNegativeMargin, "margin", "margin must be >= 0, got %d", c.Margin)
	}
	if c.Margin > geometry.MaxMargin {
		return newError(ErrInvalidNumber, "margin", "margin must be <= %d, got %d", geometry.MaxMargin, c.Margin)
	}

	type combo struct {
		mods keys.ModifierSet
		key  keys.KeyCode
	}
	seen := make(map[combo]int, len(c.Keybinds))
	for i, kb := range c.Keybinds {
		if !kb.Layout.IsCustom() {
			if _, ok := geometry.ParsePreset(string(kb.Layout.Preset)); !ok {
				return newError(ErrUnknownLayout, fmt.Sprintf("keybinds[%d].layout", i), "%q is not a preset", kb.Layout.Preset)
			}
		}
		// MOD_NOREPEAT does not change which keystroke fires the hotkey.
		k := combo{mods: kb.Modifiers &^ keys.NoRepeat, key: kb.Key}
		if first, ok := seen[k]; ok {
			return newError(ErrDuplicateKeybind, fmt.Sprintf("keybinds[%d]", i),
				"%s is already bound by keybinds[%d]", kb.Combo(), first)
		}
		seen[k] = i
	}
	return nil
}

type fileKeybind struct {
	Modifiers []string `json:"modifiers" yaml:"modifiers"`
	Key       string   `json:"key" yaml:"key"`
	Layout    any      `json:"layout" yaml:"layout"`
}

type fileConfig struct {
	Margin   int           `json:"margin" yaml:"margin"`
	Keybinds []fileKeybind `json:"keybinds" yaml:"keybinds"`
}

// document returns the on-disk shape of c, shared by the JSON and YAML renderers.
func (c *Config) document() fileConfig {
	doc := fileConfig{Margin: c.Margin, Keybinds: make([]fileKeybind, 0, len(c.Keybinds))}
	for _, kb := range c.Keybinds {
		mods := make([]string, 0, 4)
		for _, flag := range kb.Modifiers.Split() {
			mods = append(mods, keys.FormatHex(uint32(flag)))
		}
		var layout any = string(kb.Layout.Preset)
		if kb.Layout.IsCustom() {
			layout = kb.Layout.Custom
		}
		doc.Keybinds = append(doc.Keybinds, fileKeybind{
			Modifiers: mods,
			Key:       keys.FormatHex(uint32(kb.Key)),
			Layout:    layout,
		})
	}
	return doc
}

// MarshalJSON renders the configuration in the file format.
func (c *Config) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.document())
}

// MarshalYAML renders the configuration for yaml.v3 with file-format field names.
func (c *Config) MarshalYAML() (any, error) {
	return c.document(), nil
}

// Marshal returns the indented JSON file representation.
func (c *Config) Marshal() ([]byte, error) {
	data, err := json.MarshalIndent(c.document(), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config: %w", err)
	}
	return append(data, '\n'), nil
}
