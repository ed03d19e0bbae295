//go:build linux

package x11

import (
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil"
	"github.com/BurntSushi/xgbutil/keybind"
	"github.com/BurntSushi/xgbutil/xevent"
)

// GrabModMask is the set of modifiers a grab can require. Lock modifiers are
// handled through xevent.IgnoreMods instead.
const GrabModMask uint16 = xproto.ModMaskShift | xproto.ModMaskControl | xproto.ModMask1 | xproto.ModMask4

// Grab is one passive key grab on the root window.
type Grab struct {
	Mods    uint16
	Keycode xproto.Keycode
}

// Keycodes resolves a keysym name against the current keyboard mapping.
func (c *Connection) Keycodes(keysym string) []xproto.Keycode {
	return keybind.StrToKeycodes(c.XUtil, keysym)
}

// GrabKey grabs g on the root window under every ignored lock combination.
func (c *Connection) GrabKey(g Grab) error {
	return keybind.GrabChecked(c.XUtil, c.Root, g.Mods, g.Keycode)
}

// UngrabKey releases a grab made by GrabKey.
func (c *Connection) UngrabKey(g Grab) {
	keybind.Ungrab(c.XUtil, c.Root, g.Mods, g.Keycode)
}

// OnKeyPress calls fn for each key press delivered to the root window. The
// grab passed to fn has lock modifiers stripped.
func (c *Connection) OnKeyPress(fn func(g Grab, t xproto.Timestamp)) {
	xevent.KeyPressFun(func(xu *xgbutil.XUtil, ev xevent.KeyPressEvent) {
		fn(Grab{Mods: ev.State & GrabModMask, Keycode: ev.Detail}, ev.Time)
	}).Connect(c.XUtil, c.Root)
}

// OnKeyRelease is the release counterpart of OnKeyPress.
func (c *Connection) OnKeyRelease(fn func(g Grab, t xproto.Timestamp)) {
	xevent.KeyReleaseFun(func(xu *xgbutil.XUtil, ev xevent.KeyReleaseEvent) {
		fn(Grab{Mods: ev.State & GrabModMask, Keycode: ev.Detail}, ev.Time)
	}).Connect(c.XUtil, c.Root)
}

// Wake sends a no-op event to this client so a blocked EventLoop notices Quit.
func (c *Connection) Wake() error {
	conn := c.XUtil.Conn()
	wid, err := xproto.NewWindowId(conn)
	if err != nil {
		return err
	}
	err = xproto.CreateWindowChecked(conn, 0, wid, c.Root, 0, 0, 1, 1, 0,
		xproto.WindowClassInputOnly, 0, 0, nil).Check()
	if err != nil {
		return err
	}
	defer xproto.DestroyWindow(conn, wid)

	ev := xproto.ClientMessageEvent{
		Format: 32,
		Window: wid,
		Type:   xproto.AtomNone,
		Data:   xproto.ClientMessageDataUnionData32New(make([]uint32, 5)),
	}
	// An empty event mask delivers to the window's creator, i.e. us.
	return xproto.SendEventChecked(conn, false, wid, 0, string(ev.Bytes())).Check()
}

func configureIgnoreMods(xu *xgbutil.XUtil) {
	caps := uint16(xproto.ModMaskLock)
	numLock := modMaskForKeysym(xu, "Num_Lock")
	scrollLock := modMaskForKeysym(xu, "Scroll_Lock")

	base := []uint16{caps}
	if numLock != 0 && numLock != caps {
		base = append(base, numLock)
	}
	if scrollLock != 0 && scrollLock != caps && scrollLock != numLock {
		base = append(base, scrollLock)
	}

	// Every subset of the lock modifiers, including none.
	ignore := make([]uint16, 0, 1<<len(base))
	for subset := 0; subset < (1 << len(base)); subset++ {
		var mask uint16
		for bit := range base {
			if subset&(1<<bit) != 0 {
				mask |= base[bit]
			}
		}
		ignore = append(ignore, mask)
	}
	xevent.IgnoreMods = ignore
}

func modMaskForKeysym(xu *xgbutil.XUtil, keysym string) uint16 {
	for _, keycode := range keybind.StrToKeycodes(xu, keysym) {
		if mask := keybind.ModGet(xu, keycode); mask != 0 {
			return mask
		}
	}
	return 0
}
