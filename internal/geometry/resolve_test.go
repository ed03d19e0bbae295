package geometry

import "testing"

var fullHD = Rect{X: 0, Y: 0, Width: 1920, Height: 1080}

func TestResolve_FullHD(t *testing.T) {
	tests := []struct {
		name   string
		layout Layout
		area   Rect
		margin int
		want   Rect
	}{
		{"left half", PresetLayout(LeftHalf), fullHD, 0, Rect{0, 0, 960, 1080}},
		{"left half margin", PresetLayout(LeftHalf), fullHD, 32, Rect{32, 32, 896, 1016}},
		{"right half", PresetLayout(RightHalf), fullHD, 0, Rect{960, 0, 960, 1080}},
		{"center small", PresetLayout(CenterSmall), fullHD, 0, Rect{480, 270, 960, 540}},
		{"center medium", PresetLayout(CenterMedium), fullHD, 0, Rect{336, 189, 1248, 702}},
		{"center large", PresetLayout(CenterLarge), fullHD, 0, Rect{192, 108, 1536, 864}},
		{"left third", PresetLayout(LeftThird), fullHD, 0, Rect{0, 0, 640, 1080}},
		{"center third", PresetLayout(CenterThird), fullHD, 0, Rect{640, 0, 640, 1080}},
		{"right third", PresetLayout(RightThird), fullHD, 0, Rect{1280, 0, 640, 1080}},
		{"left two thirds", PresetLayout(LeftTwoThirds), fullHD, 0, Rect{0, 0, 1280, 1080}},
		{"right two thirds", PresetLayout(RightTwoThirds), fullHD, 0, Rect{640, 0, 1280, 1080}},
		{"offset work area", PresetLayout(LeftHalf), Rect{1920, 40, 2560, 1400}, 0, Rect{1920, 40, 1280, 1400}},
		{"custom is absolute", CustomLayout(Rect{100, 50, 800, 600}), Rect{1920, 0, 1920, 1080}, 0, Rect{100, 50, 800, 600}},
		{"custom with margin", CustomLayout(Rect{100, 50, 800, 600}), fullHD, 10, Rect{110, 60, 780, 580}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.layout, tt.area, tt.margin)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Rect != tt.want {
				t.Fatalf("expected %+v, got %+v", tt.want, got.Rect)
			}
			if got.Clamped {
				t.Fatalf("expected no clamping")
			}
		})
	}
}

func TestResolve_PresetsStayInsideWorkArea(t *testing.T) {
	areas := []Rect{
		fullHD,
		{X: 0, Y: 0, Width: 1, Height: 1},
		{X: -1280, Y: 0, Width: 1280, Height: 1024},
		{X: 1920, Y: 32, Width: 2561, Height: 1407},
		{X: 5, Y: 7, Width: 1001, Height: 333},
	}
	for _, area := range areas {
		for _, p := range Presets() {
			got, err := Resolve(PresetLayout(p), area, 0)
			if err != nil {
				t.Fatalf("%s: unexpected error: %v", p, err)
			}
			// A 1x1 area forces some presets to zero width, which clamps back to 1.
			if got.Clamped {
				continue
			}
			if !area.Contains(got.Rect) {
				t.Fatalf("%s on %v produced %v outside the work area", p, area, got.Rect)
			}
		}
	}
}

func TestResolve_MarginKeepsCenter(t *testing.T) {
	area := Rect{X: 100, Y: 200, Width: 1999, Height: 1201}
	for _, p := range Presets() {
		base, err := Resolve(PresetLayout(p), area, 0)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		for _, m := range []int{1, 7, 32} {
			got, err := Resolve(PresetLayout(p), area, m)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Rect.Width != base.Rect.Width-2*m || got.Rect.Height != base.Rect.Height-2*m {
				t.Fatalf("%s margin %d: expected size %dx%d, got %dx%d", p, m,
					base.Rect.Width-2*m, base.Rect.Height-2*m, got.Rect.Width, got.Rect.Height)
			}
			bcx := base.Rect.X*2 + base.Rect.Width
			bcy := base.Rect.Y*2 + base.Rect.Height
			gcx := got.Rect.X*2 + got.Rect.Width
			gcy := got.Rect.Y*2 + got.Rect.Height
			if bcx != gcx || bcy != gcy {
				t.Fatalf("%s margin %d: center moved from (%d,%d) to (%d,%d)", p, m, bcx, bcy, gcx, gcy)
			}
		}
	}
}

func TestResolve_MarginClampsToOnePixel(t *testing.T) {
	got, err := Resolve(PresetLayout(CenterSmall), Rect{0, 0, 100, 100}, 40)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Clamped {
		t.Fatalf("expected clamped result")
	}
	if got.Rect.Width != 1 || got.Rect.Height != 1 {
		t.Fatalf("expected 1x1, got %dx%d", got.Rect.Width, got.Rect.Height)
	}

	got, err = Resolve(CustomLayout(Rect{0, 0, 10, 500}), fullHD, 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !got.Clamped || got.Rect.Width != 1 || got.Rect.Height != 490 {
		t.Fatalf("expected width clamp only, got %+v", got)
	}
}

func TestResolve_HugeMarginDoesNotOverflow(t *testing.T) {
	for _, m := range []int{MaxMargin, MaxMargin + 1, 1<<62 + 1000, int(^uint(0) >> 1)} {
		got, err := Resolve(PresetLayout(LeftHalf), fullHD, m)
		if err != nil {
			t.Fatalf("margin %d: unexpected error: %v", m, err)
		}
		want := Rect{X: 480, Y: 540, Width: 1, Height: 1}
		if !got.Clamped || got.Rect != want {
			t.Fatalf("margin %d: expected clamped %+v, got %+v", m, want, got)
		}
	}
}

func TestApplyMargin_Boundary(t *testing.T) {
	tests := []struct {
		name    string
		r       Rect
		margin  int
		want    Rect
		clamped bool
	}{
		{"leaves one pixel", Rect{0, 0, 11, 11}, 5, Rect{5, 5, 1, 1}, false},
		{"consumes even span", Rect{0, 0, 10, 10}, 5, Rect{5, 5, 1, 1}, true},
		{"zero size", Rect{3, 4, 0, 0}, 0, Rect{3, 4, 1, 1}, true},
		{"negative margin ignored", Rect{0, 0, 10, 10}, -3, Rect{0, 0, 10, 10}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ApplyMargin(tt.r, tt.margin)
			if got.Rect != tt.want || got.Clamped != tt.clamped {
				t.Fatalf("expected %+v clamped=%v, got %+v", tt.want, tt.clamped, got)
			}
		})
	}
}

func TestResolve_Idempotent(t *testing.T) {
	for _, p := range Presets() {
		a, _ := Resolve(PresetLayout(p), fullHD, 12)
		b, _ := Resolve(PresetLayout(p), fullHD, 12)
		if a != b {
			t.Fatalf("%s: %+v != %+v", p, a, b)
		}
	}
}

func TestResolve_UnknownPreset(t *testing.T) {
	if _, err := Resolve(PresetLayout("Diagonal"), fullHD, 0); err == nil {
		t.Fatalf("expected error for unknown preset")
	}
}

func TestParsePreset(t *testing.T) {
	if p, ok := ParsePreset("CenterLarge"); !ok || p != CenterLarge {
		t.Fatalf("expected CenterLarge, got %q %v", p, ok)
	}
	if _, ok := ParsePreset("centerlarge"); ok {
		t.Fatalf("preset names are case-sensitive")
	}
	if len(Presets()) != 10 {
		t.Fatalf("expected 10 presets, got %d", len(Presets()))
	}
}

func TestRect_Intersect(t *testing.T) {
	a := Rect{X: 0, Y: 0, Width: 100, Height: 100}
	got, ok := a.Intersect(Rect{X: 50, Y: -20, Width: 100, Height: 40})
	if !ok || got != (Rect{X: 50, Y: 0, Width: 50, Height: 20}) {
		t.Fatalf("unexpected intersection %+v %v", got, ok)
	}
	if _, ok := a.Intersect(Rect{X: 100, Y: 0, Width: 10, Height: 10}); ok {
		t.Fatalf("touching edges must not intersect")
	}
}
