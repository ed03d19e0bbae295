//go:build linux

package platform

import (
	"testing"

	"github.com/BurntSushi/xgb/xproto"

	"github.com/1broseidon/winmgr/internal/keys"
)

func TestXModMask(t *testing.T) {
	tests := []struct {
		mods keys.ModifierSet
		want uint16
	}{
		{0, 0},
		{keys.Alt, xproto.ModMask1},
		{keys.Control | keys.Shift, xproto.ModMaskControl | xproto.ModMaskShift},
		{keys.Windows | keys.NoRepeat, xproto.ModMask4},
		{keys.Alt | keys.Control | keys.Shift | keys.Windows, xproto.ModMask1 | xproto.ModMaskControl | xproto.ModMaskShift | xproto.ModMask4},
	}
	for _, tt := range tests {
		if got := xModMask(tt.mods); got != tt.want {
			t.Fatalf("xModMask(%s): expected %#x, got %#x", tt.mods, tt.want, got)
		}
	}
}
