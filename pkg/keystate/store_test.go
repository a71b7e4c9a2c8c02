package keystate

import (
	"testing"

	"github.com/keypoll/keypoll-agent/pkg/keycode"
	"github.com/stretchr/testify/assert"
)

func TestStoreDefaultsToNone(t *testing.T) {
	store := newStateStore([]keycode.Key{keycode.KeyA, keycode.KeyB})
	assert.Equal(t, StateNone, store.Get(keycode.KeyA))
	assert.Equal(t, StateNone, store.Get(keycode.KeyB))
	// untracked keys read as None too
	assert.Equal(t, StateNone, store.Get(keycode.KeyC))
}

func TestStoreSet(t *testing.T) {
	store := newStateStore([]keycode.Key{keycode.KeyA})
	store.Set(keycode.KeyA, StateDown)
	assert.Equal(t, StateDown, store.Get(keycode.KeyA))
	store.Set(keycode.KeyA, StatePressed)
	assert.Equal(t, StatePressed, store.Get(keycode.KeyA))

	// sentinel and untracked keys are ignored
	store.Set(keycode.KeyInvalid, StateDown)
	assert.Equal(t, StateNone, store.Get(keycode.KeyInvalid))
	store.Set(keycode.KeyB, StateDown)
	assert.Equal(t, StateNone, store.Get(keycode.KeyB))
}

func TestIngestDerivation(t *testing.T) {
	store := newStateStore([]keycode.Key{keycode.KeyA})

	store.ingest(keycode.KeyA, StateDown)
	assert.Equal(t, StateDown, store.Get(keycode.KeyA))
	assert.True(t, store.IsPressed(keycode.KeyA))

	// release after a press completes a cycle
	store.ingest(keycode.KeyA, StateUp)
	assert.Equal(t, StatePressed, store.Get(keycode.KeyA))
	assert.False(t, store.IsPressed(keycode.KeyA))

	// repeated release without a press stays Up
	store.ingest(keycode.KeyA, StateUp)
	assert.Equal(t, StateUp, store.Get(keycode.KeyA))
	store.ingest(keycode.KeyA, StateUp)
	assert.Equal(t, StateUp, store.Get(keycode.KeyA))
}

func TestWasPressedConsumes(t *testing.T) {
	store := newStateStore([]keycode.Key{keycode.KeyA})

	assert.False(t, store.WasPressed(keycode.KeyA))

	store.ingest(keycode.KeyA, StateDown)
	assert.False(t, store.WasPressed(keycode.KeyA))

	store.ingest(keycode.KeyA, StateUp)
	assert.True(t, store.WasPressed(keycode.KeyA))
	// one-shot: the marker is gone and the state reads Up
	assert.False(t, store.WasPressed(keycode.KeyA))
	assert.Equal(t, StateUp, store.Get(keycode.KeyA))
}

func TestStoreClear(t *testing.T) {
	store := newStateStore([]keycode.Key{keycode.KeyA})
	store.ingest(keycode.KeyA, StateDown)
	store.clear()
	assert.Equal(t, StateNone, store.Get(keycode.KeyA))
	// writes after clear do not resurrect entries
	store.Set(keycode.KeyA, StateDown)
	assert.Equal(t, StateNone, store.Get(keycode.KeyA))
}
