//go:build linux

package x11

import (
	"fmt"

	"github.com/BurntSushi/xgb/randr"
	"github.com/BurntSushi/xgb/xproto"
	"github.com/BurntSushi/xgbutil/ewmh"

	"github.com/1broseidon/winmgr/internal/geometry"
)

// Monitor represents a physical display
type Monitor struct {
	Name   string
	Bounds geometry.Rect
}

// Monitors retrieves all active monitors using XRandR.
func (c *Connection) Monitors() ([]Monitor, error) {
	if err := randr.Init(c.XUtil.Conn()); err != nil {
		return nil, fmt.Errorf("randr init failed: %w", err)
	}

	resources, err := randr.GetScreenResources(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return nil, fmt.Errorf("failed to get screen resources: %w", err)
	}

	var monitors []Monitor
	for i, crtc := range resources.Crtcs {
		info, err := randr.GetCrtcInfo(c.XUtil.Conn(), crtc, resources.ConfigTimestamp).Reply()
		if err != nil {
			continue
		}
		// Disabled CRTC
		if info.Width == 0 || info.Height == 0 || len(info.Outputs) == 0 {
			continue
		}

		name := fmt.Sprintf("Monitor%d", i)
		if out, err := randr.GetOutputInfo(c.XUtil.Conn(), info.Outputs[0], resources.ConfigTimestamp).Reply(); err == nil {
			name = string(out.Name)
		}

		monitors = append(monitors, Monitor{
			Name: name,
			Bounds: geometry.Rect{
				X:      int(info.X),
				Y:      int(info.Y),
				Width:  int(info.Width),
				Height: int(info.Height),
			},
		})
	}
	return monitors, nil
}

// WorkAreaForWindow returns the usable area of the monitor containing the
// window's center, excluding docks and panels.
func (c *Connection) WorkAreaForWindow(win xproto.Window) (geometry.Rect, error) {
	monitors, err := c.Monitors()
	if err != nil {
		return geometry.Rect{}, err
	}
	if len(monitors) == 0 {
		return geometry.Rect{}, fmt.Errorf("no monitors found")
	}

	mon, ok := c.monitorForWindow(monitors, win)
	if !ok {
		mon, ok = c.monitorForPointer(monitors)
	}
	if !ok {
		mon = monitors[0]
	}

	if area, ok := c.subtractDockStruts(mon.Bounds); ok {
		return area, nil
	}
	if area, ok := c.intersectWorkarea(mon.Bounds); ok {
		return area, nil
	}
	return mon.Bounds, nil
}

func (c *Connection) monitorForWindow(monitors []Monitor, win xproto.Window) (Monitor, bool) {
	frame, err := c.WindowGeometry(win)
	if err != nil {
		return Monitor{}, false
	}
	cx, cy := frame.Center()
	return monitorAt(monitors, cx, cy)
}

func (c *Connection) monitorForPointer(monitors []Monitor) (Monitor, bool) {
	pointer, err := xproto.QueryPointer(c.XUtil.Conn(), c.Root).Reply()
	if err != nil {
		return Monitor{}, false
	}
	return monitorAt(monitors, int(pointer.RootX), int(pointer.RootY))
}

func monitorAt(monitors []Monitor, x, y int) (Monitor, bool) {
	for _, m := range monitors {
		if m.Bounds.ContainsPoint(x, y) {
			return m, true
		}
	}
	return Monitor{}, false
}

// intersectWorkarea clips the monitor to _NET_WORKAREA of the current desktop.
func (c *Connection) intersectWorkarea(bounds geometry.Rect) (geometry.Rect, bool) {
	areas, err := ewmh.WorkareaGet(c.XUtil)
	if err != nil || len(areas) == 0 {
		return geometry.Rect{}, false
	}
	idx := 0
	if desk, err := ewmh.CurrentDesktopGet(c.XUtil); err == nil && int(desk) < len(areas) {
		idx = int(desk)
	}
	wa := areas[idx]
	return bounds.Intersect(geometry.Rect{
		X:      wa.X,
		Y:      wa.Y,
		Width:  int(wa.Width),
		Height: int(wa.Height),
	})
}

type insets struct {
	left, right, top, bottom int
}

// subtractDockStruts shrinks bounds by the struts of dock windows overlapping it.
func (c *Connection) subtractDockStruts(bounds geometry.Rect) (geometry.Rect, bool) {
	rootGeom, err := xproto.GetGeometry(c.XUtil.Conn(), xproto.Drawable(c.Root)).Reply()
	if err != nil {
		return geometry.Rect{}, false
	}
	rootW := int(rootGeom.Width)
	rootH := int(rootGeom.Height)

	clients, err := ewmh.ClientListGet(c.XUtil)
	if err != nil {
		return geometry.Rect{}, false
	}

	var acc insets
	for _, win := range clients {
		if !c.hasWindowType(win, "_NET_WM_WINDOW_TYPE_DOCK") {
			continue
		}
		sp, err := ewmh.WmStrutPartialGet(c.XUtil, win)
		if err != nil {
			// Some docks only set _NET_WM_STRUT (no partial ranges).
			s, err := ewmh.WmStrutGet(c.XUtil, win)
			if err != nil {
				continue
			}
			sp = &ewmh.WmStrutPartial{
				Left: s.Left, Right: s.Right, Top: s.Top, Bottom: s.Bottom,
				LeftEndY: uint(rootH - 1), RightEndY: uint(rootH - 1),
				TopEndX: uint(rootW - 1), BottomEndX: uint(rootW - 1),
			}
		}
		accumulateStruts(bounds, rootW, rootH, sp, &acc)
	}

	if acc == (insets{}) {
		return geometry.Rect{}, false
	}
	area := geometry.Rect{
		X:      bounds.X + acc.left,
		Y:      bounds.Y + acc.top,
		Width:  max(bounds.Width-acc.left-acc.right, 1),
		Height: max(bounds.Height-acc.top-acc.bottom, 1),
	}
	return area, true
}

// accumulateStruts records how far each strut reaches into bounds.
func accumulateStruts(bounds geometry.Rect, rootW, rootH int, sp *ewmh.WmStrutPartial, acc *insets) {
	span := func(start, end uint) int { return int(end) - int(start) + 1 }

	if sp.Top > 0 {
		r := geometry.Rect{X: int(sp.TopStartX), Y: 0, Width: span(sp.TopStartX, sp.TopEndX), Height: int(sp.Top)}
		if isect, ok := bounds.Intersect(r); ok {
			acc.top = max(acc.top, isect.Height)
		}
	}
	if sp.Bottom > 0 {
		r := geometry.Rect{X: int(sp.BottomStartX), Y: rootH - int(sp.Bottom), Width: span(sp.BottomStartX, sp.BottomEndX), Height: int(sp.Bottom)}
		if isect, ok := bounds.Intersect(r); ok {
			acc.bottom = max(acc.bottom, isect.Height)
		}
	}
	if sp.Left > 0 {
		r := geometry.Rect{X: 0, Y: int(sp.LeftStartY), Width: int(sp.Left), Height: span(sp.LeftStartY, sp.LeftEndY)}
		if isect, ok := bounds.Intersect(r); ok {
			acc.left = max(acc.left, isect.Width)
		}
	}
	if sp.Right > 0 {
		r := geometry.Rect{X: rootW - int(sp.Right), Y: int(sp.RightStartY), Width: int(sp.Right), Height: span(sp.RightStartY, sp.RightEndY)}
		if isect, ok := bounds.Intersect(r); ok {
			acc.right = max(acc.right, isect.Width)
		}
	}
}
