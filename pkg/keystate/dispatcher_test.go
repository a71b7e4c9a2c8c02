package keystate

import (
	"testing"
	"time"

	"github.com/keypoll/keypoll-agent/pkg/keycode"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestDispatcher(keys ...keycode.Key) (*dispatcher, *stateStore, *subscriptions) {
	store := newStateStore(keys)
	subs := newSubscriptions(keys)
	disp := newDispatcher(zap.NewNop(), store, subs,
		&listenerList[KeyboardListener]{}, &listenerList[MouseListener]{})
	return disp, store, subs
}

func TestDispatchUpdatesStateBeforeNotify(t *testing.T) {
	disp, store, subs := newTestDispatcher(keycode.KeyA)

	observed := make(chan KeyState, 1)
	require.NoError(t, subs.register(keycode.KeyA, func(key keycode.Key, state KeyState) {
		observed <- store.Get(key)
	}))

	disp.dispatch(Event{Key: keycode.KeyA, State: StateDown})
	select {
	case state := <-observed:
		assert.Equal(t, StateDown, state)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("handler was not invoked")
	}
}

func TestDispatchDeliversRawState(t *testing.T) {
	disp, _, subs := newTestDispatcher(keycode.KeyA)

	observed := make(chan KeyState, 2)
	require.NoError(t, subs.register(keycode.KeyA, func(_ keycode.Key, state KeyState) {
		observed <- state
	}))

	disp.dispatch(Event{Key: keycode.KeyA, State: StateDown})
	disp.dispatch(Event{Key: keycode.KeyA, State: StateUp})

	states := make(map[KeyState]int)
	for i := 0; i < 2; i++ {
		select {
		case state := <-observed:
			states[state]++
		case <-time.After(200 * time.Millisecond):
			t.Fatal("missing notification")
		}
	}
	// handlers see the raw transition, not the derived Pressed state
	assert.Equal(t, 1, states[StateDown])
	assert.Equal(t, 1, states[StateUp])
}

func TestDispatchDiscardsInvalidKey(t *testing.T) {
	disp, store, _ := newTestDispatcher(keycode.KeyA)

	invoked := make(chan struct{}, 1)
	disp.keyboard.Add(func(keycode.Key, KeyState) {
		invoked <- struct{}{}
	})

	disp.dispatch(Event{Key: keycode.KeyInvalid, State: StateDown})
	select {
	case <-invoked:
		t.Fatal("sentinel event must be discarded")
	case <-time.After(50 * time.Millisecond):
	}
	assert.Equal(t, StateNone, store.Get(keycode.KeyInvalid))
}

func TestDispatchPanicIsolation(t *testing.T) {
	disp, _, subs := newTestDispatcher(keycode.KeyA)

	invoked := make(chan struct{}, 1)
	require.NoError(t, subs.register(keycode.KeyA, func(keycode.Key, KeyState) {
		panic("boom")
	}))
	require.NoError(t, subs.register(keycode.KeyA, func(keycode.Key, KeyState) {
		invoked <- struct{}{}
	}))

	disp.dispatch(Event{Key: keycode.KeyA, State: StateDown})
	select {
	case <-invoked:
	case <-time.After(200 * time.Millisecond):
		t.Fatal("panicking handler stalled delivery")
	}
}

func TestDispatchMouseListeners(t *testing.T) {
	disp, _, _ := newTestDispatcher(keycode.MouseLeft, keycode.MouseMove)

	type mouseEvent struct {
		key   keycode.Key
		state KeyState
		x, y  int32
	}
	observed := make(chan mouseEvent, 2)
	disp.mouse.Add(func(key keycode.Key, state KeyState, x, y int32) {
		observed <- mouseEvent{key, state, x, y}
	})
	keyboardInvoked := make(chan struct{}, 1)
	disp.keyboard.Add(func(keycode.Key, KeyState) {
		keyboardInvoked <- struct{}{}
	})

	disp.dispatch(Event{Key: keycode.MouseMove, State: StateUp, X: 120, Y: -40})
	select {
	case ev := <-observed:
		assert.Equal(t, mouseEvent{keycode.MouseMove, StateUp, 120, -40}, ev)
	case <-time.After(200 * time.Millisecond):
		t.Fatal("mouse listener was not invoked")
	}
	select {
	case <-keyboardInvoked:
		t.Fatal("mouse event routed to keyboard listeners")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestListenerRemove(t *testing.T) {
	disp, _, _ := newTestDispatcher(keycode.KeyA)

	invoked := make(chan struct{}, 1)
	remove := disp.keyboard.Add(func(keycode.Key, KeyState) {
		invoked <- struct{}{}
	})
	remove()

	disp.dispatch(Event{Key: keycode.KeyA, State: StateDown})
	select {
	case <-invoked:
		t.Fatal("removed listener was invoked")
	case <-time.After(50 * time.Millisecond):
	}
}
