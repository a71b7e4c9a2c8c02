package keystate

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/keypoll/keypoll-agent/pkg/keycode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestService(t *testing.T, keys ...keycode.Key) *Service {
	t.Helper()
	s := New(zap.NewNop(), WithKeys(keys))
	require.NoError(t, s.Initialize(context.Background()))
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestWaitForEventTimeout(t *testing.T) {
	s := newTestService(t, keycode.KeyA)

	start := time.Now()
	ok, err := s.WaitForEvent(context.Background(), keycode.KeyA, StateNone, 50*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)

	// the transient handler is gone after the wait returns
	assert.Empty(t, s.subs.snapshot(keycode.KeyA))
}

func TestWaitForEventDelivery(t *testing.T) {
	s := newTestService(t, keycode.KeyA)

	go func() {
		time.Sleep(20 * time.Millisecond)
		s.disp.dispatch(Event{Key: keycode.KeyA, State: StateDown})
	}()

	// negative timeout blocks until the event arrives
	ok, err := s.WaitForEvent(context.Background(), keycode.KeyA, StateDown, -1)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, s.subs.snapshot(keycode.KeyA))
}

func TestWaitForEventStateFilter(t *testing.T) {
	s := newTestService(t, keycode.KeyA)

	go func() {
		time.Sleep(20 * time.Millisecond)
		s.disp.dispatch(Event{Key: keycode.KeyA, State: StateDown})
	}()

	// waiting for Up must not be satisfied by the Down transition
	ok, err := s.WaitForEvent(context.Background(), keycode.KeyA, StateUp, 100*time.Millisecond)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestWaitForEventAnyState(t *testing.T) {
	s := newTestService(t, keycode.KeyA)

	go func() {
		time.Sleep(20 * time.Millisecond)
		s.disp.dispatch(Event{Key: keycode.KeyA, State: StateUp})
	}()

	ok, err := s.WaitForEvent(context.Background(), keycode.KeyA, StateNone, time.Second)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestWaitForEventContextCancel(t *testing.T) {
	s := newTestService(t, keycode.KeyA)

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	ok, err := s.WaitForEvent(ctx, keycode.KeyA, StateNone, -1)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, ok)
	assert.Empty(t, s.subs.snapshot(keycode.KeyA))
}

func TestWaitForEventInvalidKey(t *testing.T) {
	s := newTestService(t, keycode.KeyA)

	_, err := s.WaitForEvent(context.Background(), keycode.KeyInvalid, StateNone, time.Second)
	assert.ErrorIs(t, err, ErrInvalidKey)
}

func TestConcurrentWaiters(t *testing.T) {
	s := newTestService(t, keycode.KeyA)

	const waiters = 8
	var wg sync.WaitGroup
	results := make(chan bool, waiters)
	for i := 0; i < waiters; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			ok, err := s.WaitForEvent(context.Background(), keycode.KeyA, StateDown, time.Second)
			assert.NoError(t, err)
			results <- ok
		}()
	}

	// give every waiter a chance to register before the event fires
	require.Eventually(t, func() bool {
		return len(s.subs.snapshot(keycode.KeyA)) == waiters
	}, time.Second, 5*time.Millisecond)
	s.disp.dispatch(Event{Key: keycode.KeyA, State: StateDown})

	wg.Wait()
	close(results)
	for ok := range results {
		assert.True(t, ok, "every waiter observes the same event")
	}
	assert.Empty(t, s.subs.snapshot(keycode.KeyA))
}
