package keystate

import "errors"

var (
	// ErrNotInitialized is returned by operations used outside the
	// Initialized lifecycle state.
	ErrNotInitialized = errors.New("keystate: not initialized")
	// ErrAlreadyInitialized is returned by a second Initialize without an
	// intervening Terminate.
	ErrAlreadyInitialized = errors.New("keystate: already initialized")
	// ErrInvalidKey is returned when the invalid sentinel or an unsupported
	// identifier is passed where a concrete key is required.
	ErrInvalidKey = errors.New("keystate: invalid key")
	// ErrNilHandler is returned when a nil callback is registered or
	// unregistered.
	ErrNilHandler = errors.New("keystate: nil handler")
)
