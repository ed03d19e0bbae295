package geometry

import "fmt"

// Rect represents a window position and size in screen coordinates.
type Rect struct {
	X      int `json:"x" yaml:"x"`
	Y      int `json:"y" yaml:"y"`
	Width  int `json:"w" yaml:"w"`
	Height int `json:"h" yaml:"h"`
}

func (r Rect) String() string {
	return fmt.Sprintf("%dx%d+%d+%d", r.Width, r.Height, r.X, r.Y)
}

// Contains reports whether inner lies entirely within r.
func (r Rect) Contains(inner Rect) bool {
	return inner.X >= r.X && inner.Y >= r.Y &&
		inner.X+inner.Width <= r.X+r.Width &&
		inner.Y+inner.Height <= r.Y+r.Height
}

// ContainsPoint reports whether (x, y) lies inside r.
func (r Rect) ContainsPoint(x, y int) bool {
	return x >= r.X && x < r.X+r.Width && y >= r.Y && y < r.Y+r.Height
}

// Intersect returns the overlap of r and o, and whether it is non-empty.
func (r Rect) Intersect(o Rect) (Rect, bool) {
	x1 := max(r.X, o.X)
	y1 := max(r.Y, o.Y)
	x2 := min(r.X+r.Width, o.X+o.Width)
	y2 := min(r.Y+r.Height, o.Y+o.Height)
	if x2 <= x1 || y2 <= y1 {
		return Rect{}, false
	}
	return Rect{X: x1, Y: y1, Width: x2 - x1, Height: y2 - y1}, true
}

// Center returns the midpoint of r, rounded down.
func (r Rect) Center() (int, int) {
	return r.X + r.Width/2, r.Y + r.Height/2
}

// Preset names one of the built-in layouts.
type Preset string

const (
	LeftHalf       Preset = "LeftHalf"
	RightHalf      Preset = "RightHalf"
	LeftThird      Preset = "LeftThird"
	RightThird     Preset = "RightThird"
	LeftTwoThirds  Preset = "LeftTwoThirds"
	RightTwoThirds Preset = "RightTwoThirds"
	CenterThird    Preset = "CenterThird"
	CenterSmall    Preset = "CenterSmall"
	CenterMedium   Preset = "CenterMedium"
	CenterLarge    Preset = "CenterLarge"
)

var presets = []Preset{
	LeftHalf, RightHalf,
	LeftThird, RightThird,
	LeftTwoThirds, RightTwoThirds,
	CenterThird,
	CenterSmall, CenterMedium, CenterLarge,
}

// Presets returns every built-in preset in a stable order.
func Presets() []Preset {
	out := make([]Preset, len(presets))
	copy(out, presets)
	return out
}

// ParsePreset looks up a preset by its exact name.
func ParsePreset(name string) (Preset, bool) {
	for _, p := range presets {
		if string(p) == name {
			return p, true
		}
	}
	return "", false
}

// Describe returns a one-line human description of the preset.
func (p Preset) Describe() string {
	switch p {
	case LeftHalf:
		return "left 1/2 of the work area"
	case RightHalf:
		return "right 1/2 of the work area"
	case LeftThird:
		return "left 1/3 of the work area"
	case RightThird:
		return "right 1/3 of the work area"
	case LeftTwoThirds:
		return "left 2/3 of the work area"
	case RightTwoThirds:
		return "right 2/3 of the work area"
	case CenterThird:
		return "middle 1/3 column of the work area"
	case CenterSmall:
		return fmt.Sprintf("centered, %d%% of width and height", centerSmallPercent)
	case CenterMedium:
		return fmt.Sprintf("centered, %d%% of width and height", centerMediumPercent)
	case CenterLarge:
		return fmt.Sprintf("centered, %d%% of width and height", centerLargePercent)
	}
	return "unknown preset"
}

// Layout is either a preset or a custom absolute rectangle.
type Layout struct {
	// Preset is empty for custom layouts.
	Preset Preset
	Custom Rect
}

// PresetLayout wraps a preset.
func PresetLayout(p Preset) Layout {
	return Layout{Preset: p}
}

// CustomLayout wraps an absolute rectangle.
func CustomLayout(r Rect) Layout {
	return Layout{Custom: r}
}

// IsCustom reports whether the layout is an absolute rectangle.
func (l Layout) IsCustom() bool {
	return l.Preset == ""
}

func (l Layout) String() string {
	if l.IsCustom() {
		return fmt.Sprintf("Custom(x=%d,y=%d,w=%d,h=%d)", l.Custom.X, l.Custom.Y, l.Custom.Width, l.Custom.Height)
	}
	return string(l.Preset)
}
