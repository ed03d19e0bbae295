package keys

import "fmt"

// Common virtual-key codes.
const (
	VKBack     KeyCode = 0x08
	VKTab      KeyCode = 0x09
	VKReturn   KeyCode = 0x0D
	VKPause    KeyCode = 0x13
	VKEscape   KeyCode = 0x1B
	VKSpace    KeyCode = 0x20
	VKPrior    KeyCode = 0x21
	VKNext     KeyCode = 0x22
	VKEnd      KeyCode = 0x23
	VKHome     KeyCode = 0x24
	VKLeft     KeyCode = 0x25
	VKUp       KeyCode = 0x26
	VKRight    KeyCode = 0x27
	VKDown     KeyCode = 0x28
	VKInsert   KeyCode = 0x2D
	VKDelete   KeyCode = 0x2E
	VK0        KeyCode = 0x30
	VKA        KeyCode = 0x41
	VKNumpad0  KeyCode = 0x60
	VKMultiply KeyCode = 0x6A
	VKAdd      KeyCode = 0x6B
	VKSubtract KeyCode = 0x6D
	VKDecimal  KeyCode = 0x6E
	VKDivide   KeyCode = 0x6F
	VKF1       KeyCode = 0x70
	VKF24      KeyCode = 0x87
)

var keyNames = map[KeyCode]string{}

// keysyms maps virtual-key codes to X11 keysym names.
var keysyms = map[KeyCode]string{
	VKBack:     "BackSpace",
	VKTab:      "Tab",
	VKReturn:   "Return",
	VKPause:    "Pause",
	VKEscape:   "Escape",
	VKSpace:    "space",
	VKPrior:    "Prior",
	VKNext:     "Next",
	VKEnd:      "End",
	VKHome:     "Home",
	VKLeft:     "Left",
	VKUp:       "Up",
	VKRight:    "Right",
	VKDown:     "Down",
	VKInsert:   "Insert",
	VKDelete:   "Delete",
	VKMultiply: "KP_Multiply",
	VKAdd:      "KP_Add",
	VKSubtract: "KP_Subtract",
	VKDecimal:  "KP_Decimal",
	VKDivide:   "KP_Divide",
	0xBA:       "semicolon",
	0xBB:       "equal",
	0xBC:       "comma",
	0xBD:       "minus",
	0xBE:       "period",
	0xBF:       "slash",
	0xC0:       "grave",
	0xDB:       "bracketleft",
	0xDC:       "backslash",
	0xDD:       "bracketright",
	0xDE:       "apostrophe",
}

func init() {
	for i := KeyCode(0); i < 10; i++ {
		keysyms[VK0+i] = string(rune('0' + i))
		keysyms[VKNumpad0+i] = fmt.Sprintf("KP_%d", i)
	}
	for i := KeyCode(0); i < 26; i++ {
		keysyms[VKA+i] = string(rune('a' + i))
	}
	for i := KeyCode(0); VKF1+i <= VKF24; i++ {
		keysyms[VKF1+i] = fmt.Sprintf("F%d", i+1)
	}

	for code, sym := range keysyms {
		keyNames[code] = sym
	}
	for i := KeyCode(0); i < 26; i++ {
		keyNames[VKA+i] = string(rune('A' + i))
	}
	keyNames[VKSpace] = "Space"
	keyNames[VKPrior] = "PageUp"
	keyNames[VKNext] = "PageDown"
}

// Keysym returns the X11 keysym name for a virtual-key code.
func Keysym(k KeyCode) (string, bool) {
	sym, ok := keysyms[k]
	return sym, ok
}
