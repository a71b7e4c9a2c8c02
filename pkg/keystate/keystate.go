// Package keystate tracks the logical state of every keyboard and mouse key,
// fed by asynchronous capture sources, and exposes thread-safe query,
// subscription and blocking-wait primitives on top of it.
package keystate

import (
	"context"
	"fmt"

	"github.com/keypoll/keypoll-agent/pkg/keycode"
)

// KeyState is the derived per-key state stored by the engine.
type KeyState uint8

const (
	// StateNone means the key was never observed.
	StateNone KeyState = iota
	// StateUp means the key is released.
	StateUp
	// StateDown means the key is currently held.
	StateDown
	// StatePressed is the transient Down-to-Up marker. It is derived, never
	// reported by a capture source, and is consumed by WasPressed.
	StatePressed
)

func (s KeyState) String() string {
	switch s {
	case StateNone:
		return "None"
	case StateUp:
		return "Up"
	case StateDown:
		return "Down"
	case StatePressed:
		return "Pressed"
	default:
		return fmt.Sprintf("0x%x", uint8(s))
	}
}

// Event is a raw transition reported by a capture source. State is always
// StateUp or StateDown; X and Y carry cursor coordinates for mouse events.
type Event struct {
	Key   keycode.Key
	State KeyState
	X     int32
	Y     int32
}

// Handler receives per-key notifications registered through RegisterEvent.
type Handler func(key keycode.Key, state KeyState)

// KeyboardListener receives every keyboard event.
type KeyboardListener func(key keycode.Key, state KeyState)

// MouseListener receives every mouse event together with the cursor position.
type MouseListener func(key keycode.Key, state KeyState, x, y int32)

// EmitFunc delivers a raw event from a capture source into the engine.
// It never blocks on consumer code.
type EmitFunc func(Event)

// Source is a capture backend producing raw key transitions from its own
// goroutine. Start blocks until ctx is cancelled or the source fails; the
// engine restarts failed sources with a backoff.
type Source interface {
	Start(ctx context.Context, emit EmitFunc) error
	Ready() <-chan struct{}
}

// Configurable is implemented by sources that support runtime toggles.
type Configurable interface {
	SetCaptureMouseMove(enabled bool)
	SetClearInjectedFlag(enabled bool)
}
