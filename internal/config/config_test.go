package config

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/1broseidon/winmgr/internal/geometry"
	"github.com/1broseidon/winmgr/internal/keys"
	"gopkg.in/yaml.v3"
)

const sampleConfig = `{
  "margin": 8,
  "theme": "ignored",
  "keybinds": [
    {"modifiers": ["0x2", "0x1"], "key": "0x25", "layout": "LeftHalf"},
    {"modifiers": ["0x2", "0x1"], "key": "0x27", "layout": "RightHalf", "note": "also ignored"},
    {"modifiers": ["0x8"], "key": "0X43", "layout": "CenterMedium"},
    {"modifiers": [], "key": "0x7B", "layout": {"x": -10, "y": 20, "w": 800, "h": 600}}
  ]
}`

func TestParse_Sample(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Margin != 8 {
		t.Fatalf("expected margin 8, got %d", cfg.Margin)
	}
	if len(cfg.Keybinds) != 4 {
		t.Fatalf("expected 4 keybinds, got %d", len(cfg.Keybinds))
	}

	first := cfg.Keybinds[0]
	if first.Modifiers != keys.Control|keys.Alt || first.Key != keys.VKLeft {
		t.Fatalf("unexpected first keybind: %+v", first)
	}
	if first.Layout != geometry.PresetLayout(geometry.LeftHalf) {
		t.Fatalf("expected LeftHalf, got %v", first.Layout)
	}

	last := cfg.Keybinds[3]
	if last.Modifiers != 0 {
		t.Fatalf("expected explicit empty modifier set, got %v", last.Modifiers)
	}
	want := geometry.CustomLayout(geometry.Rect{X: -10, Y: 20, Width: 800, Height: 600})
	if last.Layout != want {
		t.Fatalf("expected %v, got %v", want, last.Layout)
	}
}

func TestParse_DefaultsWhenFieldsAbsent(t *testing.T) {
	cfg, err := Parse([]byte(`{}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Margin != 0 || len(cfg.Keybinds) != 0 {
		t.Fatalf("expected defaults, got %+v", cfg)
	}
}

func TestParse_LegacySingleModifier(t *testing.T) {
	cfg, err := Parse([]byte(`{"keybinds":[{"modifier":"0x3","key":"0x26","layout":"CenterLarge"}]}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if cfg.Keybinds[0].Modifiers != keys.Alt|keys.Control {
		t.Fatalf("expected Alt|Control, got %v", cfg.Keybinds[0].Modifiers)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		data     string
		kind     error
		contains string
	}{
		{"syntax", `{"margin": 1,`, ErrSyntax, ""},
		{"trailing data", `{} {}`, ErrSyntax, "unexpected data"},
		{"wrong type", `{"keybinds": {}}`, ErrSyntax, ""},
		{"unknown preset", `{"keybinds":[{"modifiers":[],"key":"0x41","layout":"TopHalf"}]}`, ErrUnknownLayout, "keybinds[0].layout"},
		{"layout wrong shape", `{"keybinds":[{"modifiers":[],"key":"0x41","layout":5}]}`, ErrUnknownLayout, "keybinds[0].layout"},
		{"layout missing", `{"keybinds":[{"modifiers":[],"key":"0x41"}]}`, ErrUnknownLayout, "layout is required"},
		{"custom missing field", `{"keybinds":[{"modifiers":[],"key":"0x41","layout":{"x":1,"y":2,"w":3}}]}`, ErrUnknownLayout, `"h"`},
		{"custom float", `{"keybinds":[{"modifiers":[],"key":"0x41","layout":{"x":1.5,"y":2,"w":3,"h":4}}]}`, ErrInvalidNumber, "layout.x"},
		{"bad modifier", `{"keybinds":[{"modifiers":["0xQ"],"key":"0x41","layout":"LeftHalf"}]}`, ErrInvalidNumber, "keybinds[0].modifiers"},
		{"bad key", `{"keybinds":[{"modifiers":["0x1"],"key":"left","layout":"LeftHalf"}]}`, ErrInvalidNumber, "keybinds[0].key"},
		{"implicit modifiers", `{"keybinds":[{"key":"0x41","layout":"LeftHalf"}]}`, ErrInvalidNumber, "explicitly"},
		{"float margin", `{"margin": 2.5}`, ErrInvalidNumber, "margin"},
		{"negative margin", `{"margin": -4}`, ErrNegativeMargin, "margin"},
		{"huge margin", `{"margin": 4611686018427388904}`, ErrInvalidNumber, "margin"},
		{"margin just over bound", `{"margin": 32769}`, ErrInvalidNumber, "margin must be <= 32768"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if err == nil {
				t.Fatalf("expected error")
			}
			if !errors.Is(err, tt.kind) {
				t.Fatalf("expected kind %v, got %v", tt.kind, err)
			}
			var ce *ConfigError
			if !errors.As(err, &ce) {
				t.Fatalf("expected *ConfigError, got %T", err)
			}
			if tt.contains != "" && !strings.Contains(err.Error(), tt.contains) {
				t.Fatalf("expected error to mention %q, got %q", tt.contains, err.Error())
			}
		})
	}
}

func TestParse_SyntaxErrorHasPosition(t *testing.T) {
	_, err := Parse([]byte("{\n  \"margin\": 1,\n  oops\n}"))
	var ce *ConfigError
	if !errors.As(err, &ce) {
		t.Fatalf("expected *ConfigError, got %v", err)
	}
	if ce.Line != 3 {
		t.Fatalf("expected line 3, got %d (%v)", ce.Line, err)
	}
}

func TestParse_DuplicateKeybindAnywhere(t *testing.T) {
	bind := func(mods, key, layout string) string {
		return `{"modifiers":[` + mods + `],"key":"` + key + `","layout":"` + layout + `"}`
	}
	cases := [][]string{
		{bind(`"0x1"`, "0x25", "LeftHalf"), bind(`"0x1"`, "0x25", "RightHalf")},
		{bind(`"0x1"`, "0x25", "LeftHalf"), bind(`"0x2"`, "0x25", "RightHalf"), bind(`"0x4"`, "0x25", "CenterSmall"), bind(`"0x1"`, "0x25", "CenterLarge")},
		// Same set written in a different order and with NOREPEAT.
		{bind(`"0x2","0x1"`, "0x41", "LeftThird"), bind(`"0x8"`, "0x41", "LeftThird"), bind(`"0x1","0x4000","0x2"`, "0x41", "RightThird")},
	}
	for i, binds := range cases {
		data := `{"keybinds":[` + strings.Join(binds, ",") + `]}`
		_, err := Parse([]byte(data))
		if !errors.Is(err, ErrDuplicateKeybind) {
			t.Fatalf("case %d: expected duplicate keybind error, got %v", i, err)
		}
	}

	distinct := `{"keybinds":[` + bind(`"0x1"`, "0x25", "LeftHalf") + "," + bind(`"0x1"`, "0x27", "LeftHalf") + "," + bind(`"0x2"`, "0x25", "LeftHalf") + `]}`
	if _, err := Parse([]byte(distinct)); err != nil {
		t.Fatalf("expected distinct combos to parse, got %v", err)
	}
}

func TestConfig_RoundTrip(t *testing.T) {
	orig, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	data, err := orig.Marshal()
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	again, err := Parse(data)
	if err != nil {
		t.Fatalf("reparse: %v\n%s", err, data)
	}
	if again.Margin != orig.Margin || len(again.Keybinds) != len(orig.Keybinds) {
		t.Fatalf("round trip mismatch:\n%+v\n%+v", orig, again)
	}
	for i := range orig.Keybinds {
		if again.Keybinds[i] != orig.Keybinds[i] {
			t.Fatalf("keybind %d: expected %+v, got %+v", i, orig.Keybinds[i], again.Keybinds[i])
		}
	}
}

func TestConfig_YAMLUsesFileFieldNames(t *testing.T) {
	cfg, err := Parse([]byte(sampleConfig))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, err := yaml.Marshal(cfg)
	if err != nil {
		t.Fatalf("yaml: %v", err)
	}
	text := string(out)
	for _, want := range []string{"margin: 8", "0x25", "layout: LeftHalf", "w: 800"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected yaml to contain %q, got:\n%s", want, text)
		}
	}
}

func TestLoadFromPath_MissingFileWritesDefault(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", FileName)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !res.Created || res.WriteErr != nil {
		t.Fatalf("expected created default, got created=%v writeErr=%v", res.Created, res.WriteErr)
	}
	if len(res.Config.Keybinds) != 0 || res.Config.Margin != 0 {
		t.Fatalf("expected empty default, got %+v", res.Config)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("expected default to be persisted: %v", err)
	}
	if _, err := Parse(data); err != nil {
		t.Fatalf("persisted default does not parse: %v", err)
	}

	res, err = LoadFromPath(path)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}
	if res.Created {
		t.Fatalf("expected existing file on second load")
	}
}

func TestLoadFromPath_DefaultWriteFailureIsNotFatal(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	// Parent is a regular file, so the directory cannot be created.
	path := filepath.Join(blocker, FileName)

	res, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("expected in-memory default, got error %v", err)
	}
	if res.WriteErr == nil {
		t.Fatalf("expected WriteErr to be reported")
	}
	if res.Config == nil {
		t.Fatalf("expected default config")
	}
}

func TestReadFromPath_MissingFileIsNotCreated(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)

	if _, err := ReadFromPath(path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected fs.ErrNotExist, got %v", err)
	}
	if _, err := os.Stat(path); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected no file to be written, got %v", err)
	}
}

func TestLoadFromPath_InvalidFileIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, FileName)
	if err := os.WriteFile(path, []byte(`{"keybinds": [`), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	_, err := LoadFromPath(path)
	if !errors.Is(err, ErrSyntax) {
		t.Fatalf("expected syntax error, got %v", err)
	}
	if !strings.HasPrefix(err.Error(), path) {
		t.Fatalf("expected error to name the file, got %q", err.Error())
	}
}

func TestDefaultConfigPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	t.Setenv(EnvConfigPath, "")

	got, err := DefaultConfigPath()
	if err != nil {
		t.Fatalf("DefaultConfigPath() error: %v", err)
	}
	if got != filepath.Join(home, FileName) {
		t.Fatalf("DefaultConfigPath() = %q", got)
	}

	t.Setenv(EnvConfigPath, "/etc/winmgr.json")
	got, _ = DefaultConfigPath()
	if got != "/etc/winmgr.json" {
		t.Fatalf("expected override, got %q", got)
	}
}
