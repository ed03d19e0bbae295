//go:build linux

package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"
	"github.com/BurntSushi/xgbutil/xwindow"

	"github.com/1broseidon/winmgr/internal/geometry"
)

// windowTypes that are part of the desktop shell rather than applications.
var shellWindowTypes = []string{
	"_NET_WM_WINDOW_TYPE_DESKTOP",
	"_NET_WM_WINDOW_TYPE_DOCK",
	"_NET_WM_WINDOW_TYPE_SPLASH",
	"_NET_WM_WINDOW_TYPE_NOTIFICATION",
}

// ActiveWindow returns _NET_ACTIVE_WINDOW (0 when nothing is focused).
func (c *Connection) ActiveWindow() (xproto.Window, error) {
	return ewmh.ActiveWindowGet(c.XUtil)
}

// IsShellWindow reports whether win is the root, a desktop, a dock, or similar.
func (c *Connection) IsShellWindow(win xproto.Window) bool {
	if win == c.Root {
		return true
	}
	for _, t := range shellWindowTypes {
		if c.hasWindowType(win, t) {
			return true
		}
	}
	return false
}

func (c *Connection) hasWindowType(win xproto.Window, want string) bool {
	types, err := ewmh.WmWindowTypeGet(c.XUtil, win)
	if err != nil {
		return false
	}
	for _, t := range types {
		if t == want {
			return true
		}
	}
	return false
}

// WindowGeometry returns the window rectangle in root coordinates.
func (c *Connection) WindowGeometry(win xproto.Window) (geometry.Rect, error) {
	geom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(win)).Reply()
	if err != nil {
		return geometry.Rect{}, err
	}
	pos, err := xproto.TranslateCoordinates(c.XUtil.Conn(), win, c.Root, 0, 0).Reply()
	if err != nil {
		return geometry.Rect{}, err
	}
	return geometry.Rect{
		X:      int(pos.DstX),
		Y:      int(pos.DstY),
		Width:  int(geom.Width),
		Height: int(geom.Height),
	}, nil
}

// MoveResizeWindow moves and resizes a window, dropping any maximized state first.
// A window destroyed since it was focused yields an error.
func (c *Connection) MoveResizeWindow(win xproto.Window, r geometry.Rect) error {
	if _, err := xwindow.New(c.XUtil, win).Geometry(); err != nil {
		return fmt.Errorf("query window %d: %w", win, err)
	}
	c.unmaximize(win)

	// EWMH request lets the WM account for decorations.
	if err := ewmh.MoveresizeWindow(c.XUtil, win, r.X, r.Y, r.Width, r.Height); err == nil {
		return nil
	}
	return configureWindow(c.XUtil.Conn(), win, r)
}

// configureWindow is the checked fallback for window managers without
// _NET_MOVERESIZE_WINDOW.
func configureWindow(conn *xgb.Conn, win xproto.Window, r geometry.Rect) error {
	mask := uint16(xproto.ConfigWindowX | xproto.ConfigWindowY | xproto.ConfigWindowWidth | xproto.ConfigWindowHeight)
	values := []uint32{uint32(int32(r.X)), uint32(int32(r.Y)), uint32(r.Width), uint32(r.Height)}
	if err := xproto.ConfigureWindowChecked(conn, win, mask, values).Check(); err != nil {
		return fmt.Errorf("configure window %d: %w", win, err)
	}
	return nil
}

func (c *Connection) unmaximize(win xproto.Window) {
	states, err := ewmh.WmStateGet(c.XUtil, win)
	if err != nil {
		return
	}
	for _, state := range states {
		switch state {
		case "_NET_WM_STATE_MAXIMIZED_HORZ", "_NET_WM_STATE_MAXIMIZED_VERT", "_NET_WM_STATE_FULLSCREEN":
			ewmh.WmStateReq(c.XUtil, win, ewmh.StateRemove, state)
		}
	}
}
