package hooksvc

import (
	"context"
	"testing"
	"time"

	"github.com/keypoll/keypoll-agent/pkg/keycode"
	"github.com/keypoll/keypoll-agent/pkg/keystate"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestReplayEmitsInOrder(t *testing.T) {
	script := []ReplayEvent{
		{Event: keystate.Event{Key: keycode.KeyA, State: keystate.StateDown}},
		{Delay: time.Millisecond, Event: keystate.Event{Key: keycode.KeyA, State: keystate.StateUp}},
		{Event: keystate.Event{Key: keycode.MouseLeft, State: keystate.StateDown, X: 10, Y: 20}},
	}
	src := NewReplay(zap.NewNop(), script, false)

	ctx, cancel := context.WithCancel(context.Background())
	emitted := make(chan keystate.Event, len(script))
	done := make(chan error, 1)
	go func() {
		done <- src.Start(ctx, func(ev keystate.Event) {
			emitted <- ev
		})
	}()

	select {
	case <-src.Ready():
	case <-time.After(time.Second):
		t.Fatal("source did not become ready")
	}

	for i, want := range script {
		select {
		case got := <-emitted:
			assert.Equal(t, want.Event, got, "event %d", i)
		case <-time.After(time.Second):
			t.Fatalf("event %d was not emitted", i)
		}
	}

	// without looping the source idles until cancelled
	select {
	case err := <-done:
		t.Fatalf("source returned early: %v", err)
	case <-time.After(20 * time.Millisecond):
	}
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("source did not stop after cancel")
	}
}

func TestReplayLoop(t *testing.T) {
	script := []ReplayEvent{
		{Event: keystate.Event{Key: keycode.KeyA, State: keystate.StateDown}},
		{Event: keystate.Event{Key: keycode.KeyA, State: keystate.StateUp}},
	}
	src := NewReplay(zap.NewNop(), script, true)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	emitted := make(chan keystate.Event, 16)
	done := make(chan error, 1)
	go func() {
		done <- src.Start(ctx, func(ev keystate.Event) {
			select {
			case emitted <- ev:
			default:
			}
		})
	}()

	// more events than one pass of the script
	for i := 0; i < 6; i++ {
		select {
		case <-emitted:
		case <-time.After(time.Second):
			t.Fatalf("loop stalled after %d events", i)
		}
	}
	cancel()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("source did not stop after cancel")
	}
}

func TestReplayCancelDuringDelay(t *testing.T) {
	script := []ReplayEvent{
		{Delay: time.Minute, Event: keystate.Event{Key: keycode.KeyA, State: keystate.StateDown}},
	}
	src := NewReplay(zap.NewNop(), script, false)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- src.Start(ctx, func(keystate.Event) {
			t.Error("event emitted despite cancellation")
		})
	}()
	<-src.Ready()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("source did not stop during delay")
	}
}
