package keycode

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNameRoundTrip(t *testing.T) {
	for _, key := range All() {
		assert.Equal(t, key, FromName(key.String()), "name %q", key.String())
	}
}

func TestFromNameUnknown(t *testing.T) {
	assert.Equal(t, KeyInvalid, FromName("NoSuchKey"))
	assert.Equal(t, KeyInvalid, FromName(""))
	// names are case sensitive
	assert.Equal(t, KeyInvalid, FromName("a"))
}

func TestAll(t *testing.T) {
	keys := All()
	require.NotEmpty(t, keys)

	seen := make(map[Key]struct{}, len(keys))
	for i, key := range keys {
		assert.True(t, key.Valid(), "key %v", key)
		_, dup := seen[key]
		assert.False(t, dup, "key %v listed twice", key)
		seen[key] = struct{}{}
		if i > 0 {
			assert.Less(t, keys[i-1], key)
		}
	}
	_, hasInvalid := seen[KeyInvalid]
	assert.False(t, hasInvalid)
}

func TestValid(t *testing.T) {
	assert.False(t, KeyInvalid.Valid())
	assert.True(t, KeyA.Valid())
	assert.True(t, MouseMove.Valid())
	assert.False(t, Key(0xFFFF).Valid())
}

func TestIsMouse(t *testing.T) {
	assert.True(t, MouseLeft.IsMouse())
	assert.True(t, MouseWheelDown.IsMouse())
	assert.True(t, MouseMove.IsMouse())
	assert.False(t, KeyA.IsMouse())
	assert.False(t, KeyKpDot.IsMouse())
}

func TestString(t *testing.T) {
	assert.Equal(t, "A", KeyA.String())
	assert.Equal(t, "MouseWheelUp", MouseWheelUp.String())
	assert.Equal(t, "0xffff", Key(0xFFFF).String())
}
