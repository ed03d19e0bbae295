package keys

import "testing"

func TestParseHex(t *testing.T) {
	tests := []struct {
		in      string
		want    uint32
		wantErr bool
	}{
		{in: "0x25", want: 0x25},
		{in: "0X4A", want: 0x4A},
		{in: "27", want: 0x27},
		{in: " 0x0008 ", want: 0x8},
		{in: "", wantErr: true},
		{in: "0x", wantErr: true},
		{in: "0xZZ", wantErr: true},
		{in: "0x1FFFFFFFF", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseHex(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Fatalf("ParseHex(%q) expected error, got %#x", tt.in, got)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseHex(%q) error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("ParseHex(%q) = %#x, want %#x", tt.in, got, tt.want)
		}
	}
}

func TestParseModifiersUnion(t *testing.T) {
	got, err := ParseModifiers([]string{"0x1", "0x2", "0x2"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != Alt|Control {
		t.Fatalf("expected Alt|Control, got %v", got)
	}

	empty, err := ParseModifiers(nil)
	if err != nil || empty != 0 {
		t.Fatalf("expected empty set, got %v (%v)", empty, err)
	}
}

func TestComboString(t *testing.T) {
	if got := Combo(Control|Alt, VKLeft); got != "Ctrl+Alt+Left" {
		t.Fatalf("Combo() = %q", got)
	}
	if got := Combo(0, VKF1+4); got != "F5" {
		t.Fatalf("Combo() = %q", got)
	}
	if got := Combo(Windows|0x100, 0xFF); got != "Win+0x100+0xFF" {
		t.Fatalf("Combo() = %q", got)
	}
	if got := ModifierSet(0).String(); got != "None" {
		t.Fatalf("empty set = %q", got)
	}
}

func TestKeysym(t *testing.T) {
	tests := map[KeyCode]string{
		VKA:           "a",
		VKA + 25:      "z",
		VK0 + 7:       "7",
		VKNumpad0 + 3: "KP_3",
		VKF24:         "F24",
		VKLeft:        "Left",
		VKSpace:       "space",
	}
	for code, want := range tests {
		got, ok := Keysym(code)
		if !ok || got != want {
			t.Fatalf("Keysym(%#x) = %q, %v; want %q", uint32(code), got, ok, want)
		}
	}
	if _, ok := Keysym(0xE8); ok {
		t.Fatal("expected unmapped key code")
	}
}

func TestSplit(t *testing.T) {
	got := (Alt | Shift | Windows).Split()
	want := []ModifierSet{Alt, Shift, Windows}
	if len(got) != len(want) {
		t.Fatalf("Split() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Split()[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}
