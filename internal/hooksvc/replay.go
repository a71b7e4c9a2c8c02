package hooksvc

import (
	"context"
	"sync"
	"time"

	"github.com/keypoll/keypoll-agent/pkg/keystate"
	"go.uber.org/zap"
)

// ReplayEvent is one scripted transition, emitted after its delay relative
// to the previous event.
type ReplayEvent struct {
	Delay time.Duration
	Event keystate.Event
}

// Replay is a capture source that plays back a scripted event sequence.
// With looping enabled the sequence repeats until the context is cancelled;
// otherwise the source idles after the last event.
type Replay struct {
	log    *zap.Logger
	events []ReplayEvent
	loop   bool

	readyOnce sync.Once
	ready     chan struct{}
}

func NewReplay(log *zap.Logger, events []ReplayEvent, loop bool) *Replay {
	return &Replay{
		log:    log,
		events: events,
		loop:   loop,
		ready:  make(chan struct{}),
	}
}

func (r *Replay) Ready() <-chan struct{} {
	return r.ready
}

func (r *Replay) Start(ctx context.Context, emit keystate.EmitFunc) error {
	r.readyOnce.Do(func() { close(r.ready) })
	for {
		for _, ev := range r.events {
			if ev.Delay > 0 {
				t := time.NewTimer(ev.Delay)
				select {
				case <-ctx.Done():
					if !t.Stop() {
						<-t.C
					}
					return nil
				case <-t.C:
				}
			}
			emit(ev.Event)
		}
		if !r.loop {
			break
		}
		select {
		case <-ctx.Done():
			return nil
		default:
		}
	}
	<-ctx.Done()
	return nil
}
