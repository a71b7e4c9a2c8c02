//go:build linux

package hooksvc

import (
	"context"
	"errors"
	"fmt"
	"sync"

	evdev "github.com/holoplot/go-evdev"
	"github.com/keypoll/keypoll-agent/pkg/keycode"
	"github.com/keypoll/keypoll-agent/pkg/keystate"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// NewKeyboardSource captures key transitions from every evdev keyboard.
func NewKeyboardSource(log *zap.Logger) keystate.Source {
	return &evdevSource{
		log:      log,
		keyboard: true,
		ready:    make(chan struct{}),
	}
}

// NewMouseSource captures button, wheel and movement events from every
// evdev pointer device. Cursor coordinates are accumulated from relative
// motion.
func NewMouseSource(log *zap.Logger) keystate.Source {
	return &evdevSource{
		log:      log,
		keyboard: false,
		ready:    make(chan struct{}),
	}
}

type evdevSource struct {
	sourceOptions
	log      *zap.Logger
	keyboard bool

	readyOnce sync.Once
	ready     chan struct{}

	x atomic.Int32
	y atomic.Int32
}

var errDevicesGone = errors.New("all capture devices closed")

func (s *evdevSource) Ready() <-chan struct{} {
	return s.ready
}

// Start opens every matching device and reads it until ctx is cancelled or
// the device goes away. Returning an error hands control back to the
// engine's supervisor, which retries after a backoff — that retry doubles
// as the device rescan.
func (s *evdevSource) Start(ctx context.Context, emit keystate.EmitFunc) error {
	s.readyOnce.Do(func() { close(s.ready) })

	devices, err := s.openDevices()
	if err != nil {
		return err
	}
	if len(devices) == 0 {
		return fmt.Errorf("no matching input devices found")
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup
	for _, dev := range devices {
		dev := dev
		wg.Add(1)
		go func() {
			// unblocks the ReadOne loop on shutdown
			<-runCtx.Done()
			dev.Close()
		}()
		go func() {
			defer wg.Done()
			s.readDevice(dev, emit)
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-ctx.Done():
		return nil
	case <-done:
		return errDevicesGone
	}
}

func (s *evdevSource) openDevices() ([]*evdev.InputDevice, error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("failed to list input devices: %w", err)
	}
	var devices []*evdev.InputDevice
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			continue
		}
		if !s.matches(dev) {
			dev.Close()
			continue
		}
		s.log.Debug("capture device opened", zap.String("path", p.Path), zap.String("name", p.Name))
		devices = append(devices, dev)
	}
	return devices, nil
}

func (s *evdevSource) matches(dev *evdev.InputDevice) bool {
	keys := dev.CapableEvents(evdev.EV_KEY)
	if s.keyboard {
		hasA, hasEnter := false, false
		for _, c := range keys {
			if c == evdev.KEY_A {
				hasA = true
			}
			if c == evdev.KEY_ENTER {
				hasEnter = true
			}
		}
		return hasA && hasEnter
	}
	hasLeft := false
	for _, c := range keys {
		if c == evdev.BTN_LEFT {
			hasLeft = true
		}
	}
	if !hasLeft {
		return false
	}
	for _, c := range dev.CapableEvents(evdev.EV_REL) {
		if c == evdev.REL_X {
			return true
		}
	}
	return false
}

func (s *evdevSource) readDevice(dev *evdev.InputDevice, emit keystate.EmitFunc) {
	for {
		ev, err := dev.ReadOne()
		if err != nil {
			return
		}
		if s.keyboard {
			s.handleKeyboardEvent(ev, emit)
		} else {
			s.handleMouseEvent(ev, emit)
		}
	}
}

func (s *evdevSource) handleKeyboardEvent(ev *evdev.InputEvent, emit keystate.EmitFunc) {
	if ev.Type != evdev.EV_KEY {
		return
	}
	key, ok := evdevKeyMap[ev.Code]
	if !ok {
		return
	}
	state := keystate.StateDown
	if ev.Value == 0 {
		state = keystate.StateUp
	}
	emit(keystate.Event{Key: key, State: state})
}

func (s *evdevSource) handleMouseEvent(ev *evdev.InputEvent, emit keystate.EmitFunc) {
	switch ev.Type {
	case evdev.EV_KEY:
		key, ok := evdevButtonMap[ev.Code]
		if !ok {
			return
		}
		state := keystate.StateDown
		if ev.Value == 0 {
			state = keystate.StateUp
		}
		emit(keystate.Event{Key: key, State: state, X: s.x.Load(), Y: s.y.Load()})
	case evdev.EV_REL:
		switch ev.Code {
		case evdev.REL_X:
			s.x.Add(ev.Value)
			s.emitMove(emit)
		case evdev.REL_Y:
			s.y.Add(ev.Value)
			s.emitMove(emit)
		case evdev.REL_WHEEL:
			key := keycode.MouseWheelUp
			if ev.Value < 0 {
				key = keycode.MouseWheelDown
			}
			// wheel ticks have no release, synthesize a Down+Up pair
			emit(keystate.Event{Key: key, State: keystate.StateDown, X: s.x.Load(), Y: s.y.Load()})
			emit(keystate.Event{Key: key, State: keystate.StateUp, X: s.x.Load(), Y: s.y.Load()})
		}
	}
}

func (s *evdevSource) emitMove(emit keystate.EmitFunc) {
	if !s.captureMouseMove.Load() {
		return
	}
	emit(keystate.Event{Key: keycode.MouseMove, State: keystate.StateUp, X: s.x.Load(), Y: s.y.Load()})
}

var evdevKeyMap = map[evdev.EvCode]keycode.Key{
	evdev.KEY_A: keycode.KeyA, evdev.KEY_B: keycode.KeyB, evdev.KEY_C: keycode.KeyC,
	evdev.KEY_D: keycode.KeyD, evdev.KEY_E: keycode.KeyE, evdev.KEY_F: keycode.KeyF,
	evdev.KEY_G: keycode.KeyG, evdev.KEY_H: keycode.KeyH, evdev.KEY_I: keycode.KeyI,
	evdev.KEY_J: keycode.KeyJ, evdev.KEY_K: keycode.KeyK, evdev.KEY_L: keycode.KeyL,
	evdev.KEY_M: keycode.KeyM, evdev.KEY_N: keycode.KeyN, evdev.KEY_O: keycode.KeyO,
	evdev.KEY_P: keycode.KeyP, evdev.KEY_Q: keycode.KeyQ, evdev.KEY_R: keycode.KeyR,
	evdev.KEY_S: keycode.KeyS, evdev.KEY_T: keycode.KeyT, evdev.KEY_U: keycode.KeyU,
	evdev.KEY_V: keycode.KeyV, evdev.KEY_W: keycode.KeyW, evdev.KEY_X: keycode.KeyX,
	evdev.KEY_Y: keycode.KeyY, evdev.KEY_Z: keycode.KeyZ,

	evdev.KEY_0: keycode.Key0, evdev.KEY_1: keycode.Key1, evdev.KEY_2: keycode.Key2,
	evdev.KEY_3: keycode.Key3, evdev.KEY_4: keycode.Key4, evdev.KEY_5: keycode.Key5,
	evdev.KEY_6: keycode.Key6, evdev.KEY_7: keycode.Key7, evdev.KEY_8: keycode.Key8,
	evdev.KEY_9: keycode.Key9,

	evdev.KEY_F1: keycode.KeyF1, evdev.KEY_F2: keycode.KeyF2, evdev.KEY_F3: keycode.KeyF3,
	evdev.KEY_F4: keycode.KeyF4, evdev.KEY_F5: keycode.KeyF5, evdev.KEY_F6: keycode.KeyF6,
	evdev.KEY_F7: keycode.KeyF7, evdev.KEY_F8: keycode.KeyF8, evdev.KEY_F9: keycode.KeyF9,
	evdev.KEY_F10: keycode.KeyF10, evdev.KEY_F11: keycode.KeyF11, evdev.KEY_F12: keycode.KeyF12,

	evdev.KEY_ESC:        keycode.KeyEsc,
	evdev.KEY_TAB:        keycode.KeyTab,
	evdev.KEY_CAPSLOCK:   keycode.KeyCapsLock,
	evdev.KEY_LEFTSHIFT:  keycode.KeyLeftShift,
	evdev.KEY_RIGHTSHIFT: keycode.KeyRightShift,
	evdev.KEY_LEFTCTRL:   keycode.KeyLeftCtrl,
	evdev.KEY_RIGHTCTRL:  keycode.KeyRightCtrl,
	evdev.KEY_LEFTALT:    keycode.KeyLeftAlt,
	evdev.KEY_RIGHTALT:   keycode.KeyRightAlt,
	evdev.KEY_LEFTMETA:   keycode.KeyLeftMeta,
	evdev.KEY_RIGHTMETA:  keycode.KeyRightMeta,
	evdev.KEY_SPACE:      keycode.KeySpace,
	evdev.KEY_ENTER:      keycode.KeyEnter,
	evdev.KEY_BACKSPACE:  keycode.KeyBackspace,
	evdev.KEY_COMPOSE:    keycode.KeyMenu,

	evdev.KEY_GRAVE:      keycode.KeyGrave,
	evdev.KEY_MINUS:      keycode.KeyMinus,
	evdev.KEY_EQUAL:      keycode.KeyEqual,
	evdev.KEY_LEFTBRACE:  keycode.KeyLeftBrace,
	evdev.KEY_RIGHTBRACE: keycode.KeyRightBrace,
	evdev.KEY_BACKSLASH:  keycode.KeyBackslash,
	evdev.KEY_SEMICOLON:  keycode.KeySemicolon,
	evdev.KEY_APOSTROPHE: keycode.KeyApostrophe,
	evdev.KEY_COMMA:      keycode.KeyComma,
	evdev.KEY_DOT:        keycode.KeyDot,
	evdev.KEY_SLASH:      keycode.KeySlash,

	evdev.KEY_INSERT:   keycode.KeyInsert,
	evdev.KEY_DELETE:   keycode.KeyDelete,
	evdev.KEY_HOME:     keycode.KeyHome,
	evdev.KEY_END:      keycode.KeyEnd,
	evdev.KEY_PAGEUP:   keycode.KeyPageUp,
	evdev.KEY_PAGEDOWN: keycode.KeyPageDown,
	evdev.KEY_UP:       keycode.KeyUp,
	evdev.KEY_DOWN:     keycode.KeyDown,
	evdev.KEY_LEFT:     keycode.KeyLeft,
	evdev.KEY_RIGHT:    keycode.KeyRight,

	evdev.KEY_SYSRQ:      keycode.KeyPrintScreen,
	evdev.KEY_SCROLLLOCK: keycode.KeyScrollLock,
	evdev.KEY_PAUSE:      keycode.KeyPause,
	evdev.KEY_NUMLOCK:    keycode.KeyNumLock,

	evdev.KEY_KP0: keycode.KeyKp0, evdev.KEY_KP1: keycode.KeyKp1, evdev.KEY_KP2: keycode.KeyKp2,
	evdev.KEY_KP3: keycode.KeyKp3, evdev.KEY_KP4: keycode.KeyKp4, evdev.KEY_KP5: keycode.KeyKp5,
	evdev.KEY_KP6: keycode.KeyKp6, evdev.KEY_KP7: keycode.KeyKp7, evdev.KEY_KP8: keycode.KeyKp8,
	evdev.KEY_KP9: keycode.KeyKp9,
	evdev.KEY_KPSLASH:    keycode.KeyKpDivide,
	evdev.KEY_KPASTERISK: keycode.KeyKpMultiply,
	evdev.KEY_KPMINUS:    keycode.KeyKpMinus,
	evdev.KEY_KPPLUS:     keycode.KeyKpPlus,
	evdev.KEY_KPENTER:    keycode.KeyKpEnter,
	evdev.KEY_KPDOT:      keycode.KeyKpDot,
}

var evdevButtonMap = map[evdev.EvCode]keycode.Key{
	evdev.BTN_LEFT:   keycode.MouseLeft,
	evdev.BTN_RIGHT:  keycode.MouseRight,
	evdev.BTN_MIDDLE: keycode.MouseMiddle,
	evdev.BTN_SIDE:   keycode.MouseBack,
	evdev.BTN_EXTRA:  keycode.MouseForward,
}
