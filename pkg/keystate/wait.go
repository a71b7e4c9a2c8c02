package keystate

import (
	"context"
	"sync"
	"time"

	"github.com/keypoll/keypoll-agent/pkg/keycode"
)

// WaitForEvent blocks the calling goroutine until an event for key arrives,
// the timeout elapses, or ctx is cancelled. A state of StateNone matches any
// state; a negative timeout blocks indefinitely. Returns true when a
// matching event arrived within the window.
//
// The transient handler is registered through the subscription table and
// removed on every exit path. Concurrent waiters on the same key are
// independent.
func (s *Service) WaitForEvent(ctx context.Context, key keycode.Key, state KeyState, timeout time.Duration) (bool, error) {
	if s.state.Load() != stateInitialized {
		return false, ErrNotInitialized
	}
	if !key.Valid() {
		return false, ErrInvalidKey
	}

	signal := make(chan struct{})
	var once sync.Once
	id := s.subs.add(key, func(curKey keycode.Key, curState KeyState) {
		if curKey != key {
			return
		}
		if state != StateNone && curState != state {
			return
		}
		once.Do(func() { close(signal) })
	})
	defer s.subs.removeID(key, id)

	if timeout < 0 {
		select {
		case <-signal:
			return true, nil
		case <-ctx.Done():
			return false, ctx.Err()
		}
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case <-signal:
		return true, nil
	case <-timer.C:
		return false, nil
	case <-ctx.Done():
		return false, ctx.Err()
	}
}
