package geometry

import "fmt"

// MaxMargin bounds the margin accepted from configuration and callers.
const MaxMargin = 1 << 15

const (
	centerSmallPercent  = 50
	centerMediumPercent = 65
	centerLargePercent  = 80
)

// Result is the outcome of resolving a layout.
type Result struct {
	Rect Rect
	// Clamped is set when the margin consumed the whole width or height and
	// the rectangle was clamped to 1px.
	Clamped bool
}

// Resolve computes the absolute target rectangle for layout within workArea,
// inset by margin on every side. Presets are relative to workArea; custom
// layouts are absolute. Width and height never drop below 1.
func Resolve(layout Layout, workArea Rect, margin int) (Result, error) {
	var raw Rect
	if layout.IsCustom() {
		raw = layout.Custom
	} else {
		r, err := presetRect(layout.Preset, workArea.Width, workArea.Height)
		if err != nil {
			return Result{}, err
		}
		r.X += workArea.X
		r.Y += workArea.Y
		raw = r
	}
	return ApplyMargin(raw, margin), nil
}

// ApplyMargin shrinks r by margin on every side, clamping width and height to 1.
// A margin that consumes a whole span leaves 1px at the span's center.
func ApplyMargin(r Rect, margin int) Result {
	if margin < 0 {
		margin = 0
	}
	x, w, cw := inset(r.X, r.Width, margin)
	y, h, ch := inset(r.Y, r.Height, margin)
	return Result{Rect: Rect{X: x, Y: y, Width: w, Height: h}, Clamped: cw || ch}
}

// inset never computes 2*m unless m is at most half of size, so it cannot
// overflow for any margin.
func inset(pos, size, m int) (int, int, bool) {
	if m <= (size-1)/2 {
		if n := size - 2*m; n >= 1 {
			return pos + m, n, false
		}
	}
	return pos + size/2, 1, true
}

// presetRect returns the preset rectangle relative to a w x h work area.
func presetRect(p Preset, w, h int) (Rect, error) {
	half := w / 2
	third := w / 3
	twoThirds := w * 2 / 3

	switch p {
	case LeftHalf:
		return Rect{X: 0, Y: 0, Width: half, Height: h}, nil
	case RightHalf:
		return Rect{X: half, Y: 0, Width: w - half, Height: h}, nil
	case LeftThird:
		return Rect{X: 0, Y: 0, Width: third, Height: h}, nil
	case RightThird:
		return Rect{X: w - third, Y: 0, Width: third, Height: h}, nil
	case LeftTwoThirds:
		return Rect{X: 0, Y: 0, Width: twoThirds, Height: h}, nil
	case RightTwoThirds:
		return Rect{X: w - twoThirds, Y: 0, Width: twoThirds, Height: h}, nil
	case CenterThird:
		return Rect{X: third, Y: 0, Width: third, Height: h}, nil
	case CenterSmall:
		return centered(w, h, centerSmallPercent), nil
	case CenterMedium:
		return centered(w, h, centerMediumPercent), nil
	case CenterLarge:
		return centered(w, h, centerLargePercent), nil
	}
	return Rect{}, fmt.Errorf("unknown preset %q", p)
}

func centered(w, h, percent int) Rect {
	cw := w * percent / 100
	ch := h * percent / 100
	return Rect{
		X:      (w - cw) / 2,
		Y:      (h - ch) / 2,
		Width:  cw,
		Height: ch,
	}
}
