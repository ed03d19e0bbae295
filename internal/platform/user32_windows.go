//go:build windows

package platform

import (
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	user32 = windows.NewLazySystemDLL("user32.dll")

	procRegisterHotKey     = user32.NewProc("RegisterHotKey")
	procUnregisterHotKey   = user32.NewProc("UnregisterHotKey")
	procGetMessageW        = user32.NewProc("GetMessageW")
	procPeekMessageW       = user32.NewProc("PeekMessageW")
	procPostThreadMessageW = user32.NewProc("PostThreadMessageW")
	procMonitorFromWindow  = user32.NewProc("MonitorFromWindow")
	procGetMonitorInfoW    = user32.NewProc("GetMonitorInfoW")
	procSetWindowPos       = user32.NewProc("SetWindowPos")
	procShowWindow         = user32.NewProc("ShowWindow")
	procIsZoomed           = user32.NewProc("IsZoomed")
	procIsIconic           = user32.NewProc("IsIconic")
)

const (
	wmQuit   = 0x0012
	wmHotkey = 0x0312
	wmApp    = 0x8000

	pmNoRemove = 0x0000

	monitorDefaultToNearest = 0x00000002

	swpNoZOrder       = 0x0004
	swpNoActivate     = 0x0010
	swpFrameChanged   = 0x0020
	swRestore         = 9
	maxAppHotkeyID    = 0xBFFF
	shellClassPrefix  = "Shell_"
	maxClassNameChars = 256
)

type point struct {
	x int32
	y int32
}

// winMsg mirrors the Win32 MSG struct. Layout must match on 32 and 64 bit.
type winMsg struct {
	hWnd     uintptr
	message  uint32
	wParam   uintptr
	lParam   uintptr
	time     uint32
	pt       point
	lPrivate uint32
}

// monitorInfo mirrors MONITORINFO.
type monitorInfo struct {
	cbSize    uint32
	rcMonitor windows.Rect
	rcWork    windows.Rect
	dwFlags   uint32
}

func callErr(err error) error {
	if errno, ok := err.(syscall.Errno); ok && errno == 0 {
		return syscall.EINVAL
	}
	return err
}

func registerHotKey(id HotkeyID, mods, vk uint32) error {
	ret, _, err := procRegisterHotKey.Call(0, uintptr(id), uintptr(mods), uintptr(vk))
	if ret == 0 {
		return callErr(err)
	}
	return nil
}

func unregisterHotKey(id HotkeyID) error {
	ret, _, err := procUnregisterHotKey.Call(0, uintptr(id))
	if ret == 0 {
		return callErr(err)
	}
	return nil
}

func getMessage(msg *winMsg) (int32, error) {
	ret, _, err := procGetMessageW.Call(uintptr(unsafe.Pointer(msg)), 0, 0, 0)
	return int32(ret), err
}

// ensureMessageQueue forces creation of the calling thread's message queue.
func ensureMessageQueue() {
	var msg winMsg
	procPeekMessageW.Call(uintptr(unsafe.Pointer(&msg)), 0, 0, 0, pmNoRemove)
}

func postThreadMessage(threadID uint32, msg uint32) error {
	ret, _, err := procPostThreadMessageW.Call(uintptr(threadID), uintptr(msg), 0, 0)
	if ret == 0 {
		return callErr(err)
	}
	return nil
}

func monitorWorkArea(hwnd windows.HWND) (windows.Rect, error) {
	hmon, _, err := procMonitorFromWindow.Call(uintptr(hwnd), monitorDefaultToNearest)
	if hmon == 0 {
		return windows.Rect{}, callErr(err)
	}
	mi := monitorInfo{cbSize: uint32(unsafe.Sizeof(monitorInfo{}))}
	ret, _, err := procGetMonitorInfoW.Call(hmon, uintptr(unsafe.Pointer(&mi)))
	if ret == 0 {
		return windows.Rect{}, callErr(err)
	}
	return mi.rcWork, nil
}

func setWindowPos(hwnd windows.HWND, x, y, w, h int) error {
	ret, _, err := procSetWindowPos.Call(
		uintptr(hwnd),
		0,
		uintptr(int32(x)),
		uintptr(int32(y)),
		uintptr(int32(w)),
		uintptr(int32(h)),
		swpNoZOrder|swpNoActivate|swpFrameChanged,
	)
	if ret == 0 {
		return callErr(err)
	}
	return nil
}

func showWindow(hwnd windows.HWND, cmd int) {
	procShowWindow.Call(uintptr(hwnd), uintptr(cmd))
}

func isZoomed(hwnd windows.HWND) bool {
	ret, _, _ := procIsZoomed.Call(uintptr(hwnd))
	return ret != 0
}

func isIconic(hwnd windows.HWND) bool {
	ret, _, _ := procIsIconic.Call(uintptr(hwnd))
	return ret != 0
}

func className(hwnd windows.HWND) string {
	buf := make([]uint16, maxClassNameChars)
	n, err := windows.GetClassName(hwnd, &buf[0], int32(len(buf)))
	if err != nil || n <= 0 {
		return ""
	}
	return windows.UTF16ToString(buf[:n])
}
