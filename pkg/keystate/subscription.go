package keystate

import (
	"reflect"
	"sync"

	"github.com/keypoll/keypoll-agent/pkg/keycode"
)

type subscription struct {
	id uint64
	fn Handler
}

// subscriptions holds the per-key handler lists. Structural changes are
// serialized by a registry-wide mutex; dispatch iterates a snapshot copied
// under the lock, never the live slice.
type subscriptions struct {
	mu     sync.Mutex
	nextID uint64
	byKey  map[keycode.Key][]subscription
}

func newSubscriptions(keys []keycode.Key) *subscriptions {
	byKey := make(map[keycode.Key][]subscription, len(keys))
	for _, key := range keys {
		byKey[key] = nil
	}
	return &subscriptions{byKey: byKey}
}

// add appends fn without validation and returns its removal id. Used by the
// wait coordinator, which needs id-based removal: transient handlers share
// one code pointer, so identity matching cannot tell waiters apart.
func (s *subscriptions) add(key keycode.Key, fn Handler) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	id := s.nextID
	s.byKey[key] = append(s.byKey[key], subscription{id: id, fn: fn})
	return id
}

func (s *subscriptions) removeID(key keycode.Key, id uint64) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.byKey[key]
	for i, sub := range subs {
		if sub.id == id {
			s.byKey[key] = append(subs[:i:i], subs[i+1:]...)
			return true
		}
	}
	return false
}

func (s *subscriptions) register(key keycode.Key, fn Handler) error {
	if !key.Valid() {
		return ErrInvalidKey
	}
	if fn == nil {
		return ErrNilHandler
	}
	s.add(key, fn)
	return nil
}

// unregister removes the first handler whose function identity matches fn
// and reports whether one was removed.
func (s *subscriptions) unregister(key keycode.Key, fn Handler) (bool, error) {
	if !key.Valid() {
		return false, ErrInvalidKey
	}
	if fn == nil {
		return false, ErrNilHandler
	}
	ptr := reflect.ValueOf(fn).Pointer()
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.byKey[key]
	for i, sub := range subs {
		if reflect.ValueOf(sub.fn).Pointer() == ptr {
			s.byKey[key] = append(subs[:i:i], subs[i+1:]...)
			return true, nil
		}
	}
	return false, nil
}

// snapshot returns a copy of the current handlers for key, safe to iterate
// while register/unregister runs concurrently.
func (s *subscriptions) snapshot(key keycode.Key) []Handler {
	s.mu.Lock()
	defer s.mu.Unlock()
	subs := s.byKey[key]
	if len(subs) == 0 {
		return nil
	}
	handlers := make([]Handler, len(subs))
	for i, sub := range subs {
		handlers[i] = sub.fn
	}
	return handlers
}

func (s *subscriptions) clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for key := range s.byKey {
		s.byKey[key] = nil
	}
}
