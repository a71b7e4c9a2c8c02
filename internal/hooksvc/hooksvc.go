// Package hooksvc provides the capture backends feeding raw key transitions
// into the keystate engine: evdev on Linux, low-level hooks on Windows, and
// a scripted replay source for development and tests.
package hooksvc

import "go.uber.org/atomic"

// sourceOptions carries the runtime toggles shared between the engine's
// setters and the running capture goroutines.
type sourceOptions struct {
	captureMouseMove  atomic.Bool
	clearInjectedFlag atomic.Bool
}

func (o *sourceOptions) SetCaptureMouseMove(enabled bool) {
	o.captureMouseMove.Store(enabled)
}

func (o *sourceOptions) SetClearInjectedFlag(enabled bool) {
	o.clearInjectedFlag.Store(enabled)
}
