// Package keys holds the raw modifier and virtual-key values used by keybinds.
//
// Values are opaque numbers as written by the user. Nothing here checks that a
// combination makes a sensible hotkey.
package keys

import (
	"fmt"
	"strconv"
	"strings"
)

// ModifierSet is a union of raw modifier flag values.
type ModifierSet uint32

// KeyCode is a raw virtual-key code.
type KeyCode uint32

// Modifier flag values, matching the Win32 MOD_* constants.
const (
	Alt      ModifierSet = 0x0001
	Control  ModifierSet = 0x0002
	Shift    ModifierSet = 0x0004
	Windows  ModifierSet = 0x0008
	NoRepeat ModifierSet = 0x4000
)

var modifierNames = []struct {
	flag ModifierSet
	name string
}{
	{Control, "Ctrl"},
	{Alt, "Alt"},
	{Shift, "Shift"},
	{Windows, "Win"},
}

// Has reports whether every bit of flag is set.
func (m ModifierSet) Has(flag ModifierSet) bool {
	return m&flag == flag
}

// Known returns only the four modifier flags, dropping any other bits.
func (m ModifierSet) Known() ModifierSet {
	return m & (Alt | Control | Shift | Windows)
}

// String renders the set as "Ctrl+Alt" style text. Unknown bits are shown in hex.
func (m ModifierSet) String() string {
	if m == 0 {
		return "None"
	}
	var parts []string
	for _, mn := range modifierNames {
		if m.Has(mn.flag) {
			parts = append(parts, mn.name)
		}
	}
	if rest := m &^ (Alt | Control | Shift | Windows); rest != 0 {
		parts = append(parts, FormatHex(uint32(rest)))
	}
	return strings.Join(parts, "+")
}

// String renders the key as a readable name when one is known, else hex.
func (k KeyCode) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return FormatHex(uint32(k))
}

// Combo renders a modifier+key pair, e.g. "Ctrl+Alt+Left".
func Combo(mods ModifierSet, key KeyCode) string {
	if mods == 0 {
		return key.String()
	}
	return mods.String() + "+" + key.String()
}

// ParseHex parses a hex literal with optional 0x/0X prefix.
func ParseHex(s string) (uint32, error) {
	trimmed := strings.TrimSpace(s)
	digits := strings.TrimPrefix(strings.TrimPrefix(trimmed, "0x"), "0X")
	if digits == "" {
		return 0, fmt.Errorf("empty hex literal %q", s)
	}
	v, err := strconv.ParseUint(digits, 16, 32)
	if err != nil {
		return 0, fmt.Errorf("invalid hex literal %q", s)
	}
	return uint32(v), nil
}

// FormatHex renders v the way config files write it.
func FormatHex(v uint32) string {
	return fmt.Sprintf("0x%X", v)
}

// ParseModifiers unions a list of hex flag literals.
func ParseModifiers(values []string) (ModifierSet, error) {
	var set ModifierSet
	for _, v := range values {
		n, err := ParseHex(v)
		if err != nil {
			return 0, err
		}
		set |= ModifierSet(n)
	}
	return set, nil
}

// Split breaks a set back into its individual flag values, lowest bit first.
func (m ModifierSet) Split() []ModifierSet {
	var out []ModifierSet
	for bit := ModifierSet(1); bit != 0 && bit <= m; bit <<= 1 {
		if m&bit != 0 {
			out = append(out, bit)
		}
	}
	return out
}
