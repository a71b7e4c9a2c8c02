//go:build windows

package hooksvc

import "github.com/keypoll/keypoll-agent/pkg/keycode"

// vkKeyMap translates Windows virtual-key codes to registry keys.
var vkKeyMap = map[uint32]keycode.Key{
	0x41: keycode.KeyA, 0x42: keycode.KeyB, 0x43: keycode.KeyC, 0x44: keycode.KeyD,
	0x45: keycode.KeyE, 0x46: keycode.KeyF, 0x47: keycode.KeyG, 0x48: keycode.KeyH,
	0x49: keycode.KeyI, 0x4A: keycode.KeyJ, 0x4B: keycode.KeyK, 0x4C: keycode.KeyL,
	0x4D: keycode.KeyM, 0x4E: keycode.KeyN, 0x4F: keycode.KeyO, 0x50: keycode.KeyP,
	0x51: keycode.KeyQ, 0x52: keycode.KeyR, 0x53: keycode.KeyS, 0x54: keycode.KeyT,
	0x55: keycode.KeyU, 0x56: keycode.KeyV, 0x57: keycode.KeyW, 0x58: keycode.KeyX,
	0x59: keycode.KeyY, 0x5A: keycode.KeyZ,

	0x30: keycode.Key0, 0x31: keycode.Key1, 0x32: keycode.Key2, 0x33: keycode.Key3,
	0x34: keycode.Key4, 0x35: keycode.Key5, 0x36: keycode.Key6, 0x37: keycode.Key7,
	0x38: keycode.Key8, 0x39: keycode.Key9,

	0x70: keycode.KeyF1, 0x71: keycode.KeyF2, 0x72: keycode.KeyF3, 0x73: keycode.KeyF4,
	0x74: keycode.KeyF5, 0x75: keycode.KeyF6, 0x76: keycode.KeyF7, 0x77: keycode.KeyF8,
	0x78: keycode.KeyF9, 0x79: keycode.KeyF10, 0x7A: keycode.KeyF11, 0x7B: keycode.KeyF12,

	0x1B: keycode.KeyEsc,        // VK_ESCAPE
	0x09: keycode.KeyTab,        // VK_TAB
	0x14: keycode.KeyCapsLock,   // VK_CAPITAL
	0xA0: keycode.KeyLeftShift,  // VK_LSHIFT
	0xA1: keycode.KeyRightShift, // VK_RSHIFT
	0xA2: keycode.KeyLeftCtrl,   // VK_LCONTROL
	0xA3: keycode.KeyRightCtrl,  // VK_RCONTROL
	0xA4: keycode.KeyLeftAlt,    // VK_LMENU
	0xA5: keycode.KeyRightAlt,   // VK_RMENU
	0x5B: keycode.KeyLeftMeta,   // VK_LWIN
	0x5C: keycode.KeyRightMeta,  // VK_RWIN
	0x20: keycode.KeySpace,      // VK_SPACE
	0x0D: keycode.KeyEnter,      // VK_RETURN
	0x08: keycode.KeyBackspace,  // VK_BACK
	0x5D: keycode.KeyMenu,       // VK_APPS

	0xC0: keycode.KeyGrave,      // VK_OEM_3
	0xBD: keycode.KeyMinus,      // VK_OEM_MINUS
	0xBB: keycode.KeyEqual,      // VK_OEM_PLUS
	0xDB: keycode.KeyLeftBrace,  // VK_OEM_4
	0xDD: keycode.KeyRightBrace, // VK_OEM_6
	0xDC: keycode.KeyBackslash,  // VK_OEM_5
	0xBA: keycode.KeySemicolon,  // VK_OEM_1
	0xDE: keycode.KeyApostrophe, // VK_OEM_7
	0xBC: keycode.KeyComma,      // VK_OEM_COMMA
	0xBE: keycode.KeyDot,        // VK_OEM_PERIOD
	0xBF: keycode.KeySlash,      // VK_OEM_2

	0x2D: keycode.KeyInsert,   // VK_INSERT
	0x2E: keycode.KeyDelete,   // VK_DELETE
	0x24: keycode.KeyHome,     // VK_HOME
	0x23: keycode.KeyEnd,      // VK_END
	0x21: keycode.KeyPageUp,   // VK_PRIOR
	0x22: keycode.KeyPageDown, // VK_NEXT
	0x26: keycode.KeyUp,       // VK_UP
	0x28: keycode.KeyDown,     // VK_DOWN
	0x25: keycode.KeyLeft,     // VK_LEFT
	0x27: keycode.KeyRight,    // VK_RIGHT

	0x2C: keycode.KeyPrintScreen, // VK_SNAPSHOT
	0x91: keycode.KeyScrollLock,  // VK_SCROLL
	0x13: keycode.KeyPause,       // VK_PAUSE
	0x90: keycode.KeyNumLock,     // VK_NUMLOCK

	0x60: keycode.KeyKp0, 0x61: keycode.KeyKp1, 0x62: keycode.KeyKp2, 0x63: keycode.KeyKp3,
	0x64: keycode.KeyKp4, 0x65: keycode.KeyKp5, 0x66: keycode.KeyKp6, 0x67: keycode.KeyKp7,
	0x68: keycode.KeyKp8, 0x69: keycode.KeyKp9,
	0x6F: keycode.KeyKpDivide,   // VK_DIVIDE
	0x6A: keycode.KeyKpMultiply, // VK_MULTIPLY
	0x6D: keycode.KeyKpMinus,    // VK_SUBTRACT
	0x6B: keycode.KeyKpPlus,     // VK_ADD
	0x6E: keycode.KeyKpDot,      // VK_DECIMAL
}
