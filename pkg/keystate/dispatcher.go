package keystate

import (
	"sync"

	"go.uber.org/zap"
)

type listenerEntry[T any] struct {
	id uint64
	fn T
}

// listenerList is a multicast listener collection. Additions return a
// removal closure; invocation iterates a snapshot so listeners may be added
// or removed between dispatches.
type listenerList[T any] struct {
	mu      sync.Mutex
	nextID  uint64
	entries []listenerEntry[T]
}

func (l *listenerList[T]) Add(fn T) (remove func()) {
	l.mu.Lock()
	l.nextID++
	id := l.nextID
	l.entries = append(l.entries, listenerEntry[T]{id: id, fn: fn})
	l.mu.Unlock()
	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		for i, e := range l.entries {
			if e.id == id {
				l.entries = append(l.entries[:i:i], l.entries[i+1:]...)
				return
			}
		}
	}
}

func (l *listenerList[T]) Snapshot() []T {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return nil
	}
	fns := make([]T, len(l.entries))
	for i, e := range l.entries {
		fns[i] = e.fn
	}
	return fns
}

func (l *listenerList[T]) Clear() {
	l.mu.Lock()
	l.entries = nil
	l.mu.Unlock()
}

// dispatcher bridges capture-source callbacks to state mutation and
// notification. It runs on the producer goroutine; every notification is
// offloaded to its own short-lived goroutine so a slow or panicking consumer
// cannot stall the capture thread.
type dispatcher struct {
	log   *zap.Logger
	store *stateStore
	subs  *subscriptions

	keyboard *listenerList[KeyboardListener]
	mouse    *listenerList[MouseListener]
}

func newDispatcher(log *zap.Logger, store *stateStore, subs *subscriptions, keyboard *listenerList[KeyboardListener], mouse *listenerList[MouseListener]) *dispatcher {
	return &dispatcher{
		log:      log,
		store:    store,
		subs:     subs,
		keyboard: keyboard,
		mouse:    mouse,
	}
}

// dispatch ingests one raw event. The state write is synchronous and
// happens before any notification goroutine for this event is spawned; the
// global and per-key notification paths carry no ordering guarantee
// relative to each other.
func (d *dispatcher) dispatch(ev Event) {
	if !ev.Key.Valid() {
		return
	}

	d.store.ingest(ev.Key, ev.State)

	if ev.Key.IsMouse() {
		for _, fn := range d.mouse.Snapshot() {
			fn := fn
			go d.invoke("mouse", func() { fn(ev.Key, ev.State, ev.X, ev.Y) })
		}
	} else {
		for _, fn := range d.keyboard.Snapshot() {
			fn := fn
			go d.invoke("keyboard", func() { fn(ev.Key, ev.State) })
		}
	}

	for _, fn := range d.subs.snapshot(ev.Key) {
		fn := fn
		go d.invoke("key", func() { fn(ev.Key, ev.State) })
	}
}

// invoke isolates one handler invocation: a panic is logged and swallowed,
// never allowed to take down event delivery.
func (d *dispatcher) invoke(path string, fn func()) {
	defer func() {
		if r := recover(); r != nil {
			d.log.Error("event handler panicked", zap.String("path", path), zap.Any("panic", r))
		}
	}()
	fn()
}
