// Package keycode enumerates the closed set of logical key identifiers
// tracked by the engine: keyboard keys and mouse buttons, plus the
// MouseMove pseudo-key that carries cursor coordinates.
package keycode

import (
	"fmt"
	"sort"
)

// Key identifies a physical keyboard key or mouse button. KeyInvalid is the
// reserved sentinel for unsupported input and is never used as a table key.
type Key uint16

const (
	KeyInvalid Key = iota

	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
	KeyG
	KeyH
	KeyI
	KeyJ
	KeyK
	KeyL
	KeyM
	KeyN
	KeyO
	KeyP
	KeyQ
	KeyR
	KeyS
	KeyT
	KeyU
	KeyV
	KeyW
	KeyX
	KeyY
	KeyZ

	Key0
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9

	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12

	KeyEsc
	KeyTab
	KeyCapsLock
	KeyLeftShift
	KeyRightShift
	KeyLeftCtrl
	KeyRightCtrl
	KeyLeftAlt
	KeyRightAlt
	KeyLeftMeta
	KeyRightMeta
	KeySpace
	KeyEnter
	KeyBackspace
	KeyMenu

	KeyGrave
	KeyMinus
	KeyEqual
	KeyLeftBrace
	KeyRightBrace
	KeyBackslash
	KeySemicolon
	KeyApostrophe
	KeyComma
	KeyDot
	KeySlash

	KeyInsert
	KeyDelete
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyUp
	KeyDown
	KeyLeft
	KeyRight

	KeyPrintScreen
	KeyScrollLock
	KeyPause
	KeyNumLock

	KeyKp0
	KeyKp1
	KeyKp2
	KeyKp3
	KeyKp4
	KeyKp5
	KeyKp6
	KeyKp7
	KeyKp8
	KeyKp9
	KeyKpDivide
	KeyKpMultiply
	KeyKpMinus
	KeyKpPlus
	KeyKpEnter
	KeyKpDot

	MouseLeft
	MouseRight
	MouseMiddle
	MouseBack
	MouseForward
	MouseWheelUp
	MouseWheelDown
	MouseMove
)

var keyNameMap = map[Key]string{
	KeyA: "A", KeyB: "B", KeyC: "C", KeyD: "D", KeyE: "E", KeyF: "F",
	KeyG: "G", KeyH: "H", KeyI: "I", KeyJ: "J", KeyK: "K", KeyL: "L",
	KeyM: "M", KeyN: "N", KeyO: "O", KeyP: "P", KeyQ: "Q", KeyR: "R",
	KeyS: "S", KeyT: "T", KeyU: "U", KeyV: "V", KeyW: "W", KeyX: "X",
	KeyY: "Y", KeyZ: "Z",

	Key0: "0", Key1: "1", Key2: "2", Key3: "3", Key4: "4",
	Key5: "5", Key6: "6", Key7: "7", Key8: "8", Key9: "9",

	KeyF1: "F1", KeyF2: "F2", KeyF3: "F3", KeyF4: "F4", KeyF5: "F5",
	KeyF6: "F6", KeyF7: "F7", KeyF8: "F8", KeyF9: "F9", KeyF10: "F10",
	KeyF11: "F11", KeyF12: "F12",

	KeyEsc:        "Esc",
	KeyTab:        "Tab",
	KeyCapsLock:   "CapsLock",
	KeyLeftShift:  "LeftShift",
	KeyRightShift: "RightShift",
	KeyLeftCtrl:   "LeftCtrl",
	KeyRightCtrl:  "RightCtrl",
	KeyLeftAlt:    "LeftAlt",
	KeyRightAlt:   "RightAlt",
	KeyLeftMeta:   "LeftMeta",
	KeyRightMeta:  "RightMeta",
	KeySpace:      "Space",
	KeyEnter:      "Enter",
	KeyBackspace:  "Backspace",
	KeyMenu:       "Menu",

	KeyGrave:      "Grave",
	KeyMinus:      "Minus",
	KeyEqual:      "Equal",
	KeyLeftBrace:  "LeftBrace",
	KeyRightBrace: "RightBrace",
	KeyBackslash:  "Backslash",
	KeySemicolon:  "Semicolon",
	KeyApostrophe: "Apostrophe",
	KeyComma:      "Comma",
	KeyDot:        "Dot",
	KeySlash:      "Slash",

	KeyInsert:   "Insert",
	KeyDelete:   "Delete",
	KeyHome:     "Home",
	KeyEnd:      "End",
	KeyPageUp:   "PageUp",
	KeyPageDown: "PageDown",
	KeyUp:       "Up",
	KeyDown:     "Down",
	KeyLeft:     "Left",
	KeyRight:    "Right",

	KeyPrintScreen: "PrintScreen",
	KeyScrollLock:  "ScrollLock",
	KeyPause:       "Pause",
	KeyNumLock:     "NumLock",

	KeyKp0: "Kp0", KeyKp1: "Kp1", KeyKp2: "Kp2", KeyKp3: "Kp3",
	KeyKp4: "Kp4", KeyKp5: "Kp5", KeyKp6: "Kp6", KeyKp7: "Kp7",
	KeyKp8: "Kp8", KeyKp9: "Kp9",
	KeyKpDivide:   "KpDivide",
	KeyKpMultiply: "KpMultiply",
	KeyKpMinus:    "KpMinus",
	KeyKpPlus:     "KpPlus",
	KeyKpEnter:    "KpEnter",
	KeyKpDot:      "KpDot",

	MouseLeft:      "MouseLeft",
	MouseRight:     "MouseRight",
	MouseMiddle:    "MouseMiddle",
	MouseBack:      "MouseBack",
	MouseForward:   "MouseForward",
	MouseWheelUp:   "MouseWheelUp",
	MouseWheelDown: "MouseWheelDown",
	MouseMove:      "MouseMove",
}

var keyNameReverseMap = map[string]Key{}

func init() {
	for key, name := range keyNameMap {
		keyNameReverseMap[name] = key
	}
}

// Valid reports whether k is a concrete enumerated key (not the sentinel).
func (k Key) Valid() bool {
	_, ok := keyNameMap[k]
	return ok
}

// IsMouse reports whether k names a mouse button or the MouseMove pseudo-key.
func (k Key) IsMouse() bool {
	return k >= MouseLeft && k <= MouseMove
}

func (k Key) String() string {
	name, ok := keyNameMap[k]
	if !ok {
		return fmt.Sprintf("0x%x", uint16(k))
	}
	return name
}

// FromName resolves a key by its registry name. Returns KeyInvalid for
// unknown names.
func FromName(name string) Key {
	key, ok := keyNameReverseMap[name]
	if !ok {
		return KeyInvalid
	}
	return key
}

// All returns every enumerated key exactly once, in identifier order.
// The sentinel is excluded.
func All() []Key {
	keys := make([]Key, 0, len(keyNameMap))
	for key := range keyNameMap {
		keys = append(keys, key)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}
