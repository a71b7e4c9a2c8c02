package keystate

import (
	"github.com/keypoll/keypoll-agent/pkg/keycode"
	"github.com/puzpuzpuz/xsync/v3"
)

// stateStore holds the current logical state per key. Entries are
// independently mutable; every update goes through Compute so a reader
// observes either the prior or the new value, never a torn one.
type stateStore struct {
	states *xsync.MapOf[keycode.Key, KeyState]
}

func newStateStore(keys []keycode.Key) *stateStore {
	states := xsync.NewMapOf[keycode.Key, KeyState](xsync.WithPresize(len(keys)))
	for _, key := range keys {
		states.Store(key, StateNone)
	}
	return &stateStore{states: states}
}

func (s *stateStore) Get(key keycode.Key) KeyState {
	state, ok := s.states.Load(key)
	if !ok {
		return StateNone
	}
	return state
}

func (s *stateStore) Set(key keycode.Key, state KeyState) {
	if !key.Valid() {
		return
	}
	s.states.Compute(key, func(_ KeyState, loaded bool) (KeyState, bool) {
		if !loaded {
			return StateNone, true
		}
		return state, false
	})
}

func (s *stateStore) IsPressed(key keycode.Key) bool {
	return s.Get(key) == StateDown
}

// WasPressed consumes the one-shot Pressed marker: between two Down-to-Up
// cycles it returns true exactly once, forcing the stored state back to Up.
func (s *stateStore) WasPressed(key keycode.Key) bool {
	consumed := false
	s.states.Compute(key, func(old KeyState, loaded bool) (KeyState, bool) {
		if !loaded {
			return old, true
		}
		if old == StatePressed {
			consumed = true
			return StateUp, false
		}
		return old, false
	})
	return consumed
}

// ingest applies the derivation rule for a raw transition: an Up arriving
// while the stored state is Down becomes Pressed, anything else is stored
// verbatim.
func (s *stateStore) ingest(key keycode.Key, raw KeyState) {
	s.states.Compute(key, func(old KeyState, loaded bool) (KeyState, bool) {
		if !loaded {
			return old, true
		}
		if raw == StateUp && old == StateDown {
			return StatePressed, false
		}
		return raw, false
	})
}

func (s *stateStore) clear() {
	s.states.Clear()
}
