//go:build windows

package hooksvc

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"syscall"
	"unsafe"

	"github.com/keypoll/keypoll-agent/pkg/keycode"
	"github.com/keypoll/keypoll-agent/pkg/keystate"
	"go.uber.org/zap"
)

var (
	user32   = syscall.NewLazyDLL("user32.dll")
	kernel32 = syscall.NewLazyDLL("kernel32.dll")

	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessage          = user32.NewProc("GetMessageW")
	procPostThreadMessage   = user32.NewProc("PostThreadMessageW")
	procGetCurrentThreadId  = kernel32.NewProc("GetCurrentThreadId")
)

const (
	whKeyboardLL = 13
	whMouseLL    = 14

	wmQuit = 0x0012

	wmKeyDown    = 0x0100
	wmKeyUp      = 0x0101
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105

	wmMouseMove   = 0x0200
	wmLButtonDown = 0x0201
	wmLButtonUp   = 0x0202
	wmRButtonDown = 0x0204
	wmRButtonUp   = 0x0205
	wmMButtonDown = 0x0207
	wmMButtonUp   = 0x0208
	wmMouseWheel  = 0x020A
	wmXButtonDown = 0x020B
	wmXButtonUp   = 0x020C

	llkhfInjected        = 0x10
	llkhfLowerIlInjected = 0x02
	llmhfInjected        = 0x01

	xButton1 = 1
	xButton2 = 2
)

type kbdllHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type point struct {
	X int32
	Y int32
}

type msllHookStruct struct {
	Pt          point
	MouseData   uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type msg struct {
	Hwnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      point
}

// The hook procedures carry no closure context, so the running sources are
// published through package-level slots. Each slot is written before its
// hook is installed and cleared after the pump exits.
var (
	activeKeyboard *hookSource
	activeMouse    *hookSource

	keyboardProcPtr = syscall.NewCallback(keyboardProc)
	mouseProcPtr    = syscall.NewCallback(mouseProc)
)

// NewKeyboardSource installs a WH_KEYBOARD_LL hook with its own message
// pump thread.
func NewKeyboardSource(log *zap.Logger) keystate.Source {
	return &hookSource{
		log:      log,
		keyboard: true,
		ready:    make(chan struct{}),
	}
}

// NewMouseSource installs a WH_MOUSE_LL hook with its own message pump
// thread.
func NewMouseSource(log *zap.Logger) keystate.Source {
	return &hookSource{
		log:      log,
		keyboard: false,
		ready:    make(chan struct{}),
	}
}

type hookSource struct {
	sourceOptions
	log      *zap.Logger
	keyboard bool

	readyOnce sync.Once
	ready     chan struct{}
	emit      keystate.EmitFunc
}

func (s *hookSource) Ready() <-chan struct{} {
	return s.ready
}

func (s *hookSource) Start(ctx context.Context, emit keystate.EmitFunc) error {
	s.readyOnce.Do(func() { close(s.ready) })
	s.emit = emit
	if s.keyboard {
		activeKeyboard = s
		defer func() { activeKeyboard = nil }()
	} else {
		activeMouse = s
		defer func() { activeMouse = nil }()
	}

	threadID := make(chan uint32, 1)
	pumpDone := make(chan error, 1)
	go s.pump(threadID, pumpDone)

	select {
	case err := <-pumpDone:
		return err
	case tid := <-threadID:
		select {
		case err := <-pumpDone:
			return err
		case <-ctx.Done():
			procPostThreadMessage.Call(uintptr(tid), wmQuit, 0, 0)
			<-pumpDone
			return nil
		}
	}
}

// pump installs the hook and runs the message loop on a locked OS thread.
// Low-level hooks are invoked in the context of the thread that installed
// them, so the loop itself is the capture thread.
func (s *hookSource) pump(threadID chan<- uint32, done chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	idHook := uintptr(whKeyboardLL)
	proc := keyboardProcPtr
	if !s.keyboard {
		idHook = whMouseLL
		proc = mouseProcPtr
	}
	handle, _, callErr := procSetWindowsHookEx.Call(idHook, proc, 0, 0)
	if handle == 0 {
		done <- fmt.Errorf("SetWindowsHookEx failed: %w", callErr)
		return
	}
	tid, _, _ := procGetCurrentThreadId.Call()
	threadID <- uint32(tid)

	var m msg
	for {
		ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if ret == 0 || int32(ret) == -1 {
			break
		}
	}
	procUnhookWindowsHookEx.Call(handle)
	done <- nil
}

func keyboardProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode >= 0 {
		if s := activeKeyboard; s != nil {
			kb := (*kbdllHookStruct)(unsafe.Pointer(lParam))
			if kb.Flags&llkhfInjected != 0 && s.clearInjectedFlag.Load() {
				// strip the marker so downstream hooks see the event as real input
				kb.Flags &^= llkhfInjected | llkhfLowerIlInjected
			}
			if key, ok := vkKeyMap[kb.VkCode]; ok {
				switch wParam {
				case wmKeyDown, wmSysKeyDown:
					s.emit(keystate.Event{Key: key, State: keystate.StateDown})
				case wmKeyUp, wmSysKeyUp:
					s.emit(keystate.Event{Key: key, State: keystate.StateUp})
				}
			}
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

func mouseProc(nCode int, wParam uintptr, lParam uintptr) uintptr {
	if nCode >= 0 {
		if s := activeMouse; s != nil {
			ms := (*msllHookStruct)(unsafe.Pointer(lParam))
			if ms.Flags&llmhfInjected != 0 && s.clearInjectedFlag.Load() {
				ms.Flags &^= llmhfInjected
			}
			s.handleMouseMessage(uint32(wParam), ms)
		}
	}
	ret, _, _ := procCallNextHookEx.Call(0, uintptr(nCode), wParam, lParam)
	return ret
}

func (s *hookSource) handleMouseMessage(message uint32, ms *msllHookStruct) {
	x, y := ms.Pt.X, ms.Pt.Y
	switch message {
	case wmMouseMove:
		if s.captureMouseMove.Load() {
			s.emit(keystate.Event{Key: keycode.MouseMove, State: keystate.StateUp, X: x, Y: y})
		}
	case wmLButtonDown:
		s.emit(keystate.Event{Key: keycode.MouseLeft, State: keystate.StateDown, X: x, Y: y})
	case wmLButtonUp:
		s.emit(keystate.Event{Key: keycode.MouseLeft, State: keystate.StateUp, X: x, Y: y})
	case wmRButtonDown:
		s.emit(keystate.Event{Key: keycode.MouseRight, State: keystate.StateDown, X: x, Y: y})
	case wmRButtonUp:
		s.emit(keystate.Event{Key: keycode.MouseRight, State: keystate.StateUp, X: x, Y: y})
	case wmMButtonDown:
		s.emit(keystate.Event{Key: keycode.MouseMiddle, State: keystate.StateDown, X: x, Y: y})
	case wmMButtonUp:
		s.emit(keystate.Event{Key: keycode.MouseMiddle, State: keystate.StateUp, X: x, Y: y})
	case wmXButtonDown, wmXButtonUp:
		key := keycode.MouseBack
		if ms.MouseData>>16 == xButton2 {
			key = keycode.MouseForward
		}
		state := keystate.StateDown
		if message == wmXButtonUp {
			state = keystate.StateUp
		}
		s.emit(keystate.Event{Key: key, State: state, X: x, Y: y})
	case wmMouseWheel:
		key := keycode.MouseWheelUp
		if int16(ms.MouseData>>16) < 0 {
			key = keycode.MouseWheelDown
		}
		// wheel ticks have no release, synthesize a Down+Up pair
		s.emit(keystate.Event{Key: key, State: keystate.StateDown, X: x, Y: y})
		s.emit(keystate.Event{Key: key, State: keystate.StateUp, X: x, Y: y})
	}
}
