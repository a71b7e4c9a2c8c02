package keystate

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/keypoll/keypoll-agent/pkg/keycode"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const (
	stateUninitialized int32 = iota
	stateInitialized
	stateTerminated
)

var defaultOptions = serviceOptions{
	backoffTimeout:   5 * time.Second,
	captureMouseMove: true,
}

type serviceOptions struct {
	keyboard          Source
	mouse             Source
	keys              []keycode.Key
	backoffTimeout    time.Duration
	captureMouseMove  bool
	clearInjectedFlag bool
}

type Option func(*serviceOptions)

// WithKeyboardSource attaches the keyboard capture source started by
// Initialize.
func WithKeyboardSource(src Source) Option {
	return func(o *serviceOptions) {
		o.keyboard = src
	}
}

// WithMouseSource attaches the mouse capture source started by Initialize.
func WithMouseSource(src Source) Option {
	return func(o *serviceOptions) {
		o.mouse = src
	}
}

// WithKeys overrides the key registry used to populate the state and
// subscription tables. Defaults to keycode.All().
func WithKeys(keys []keycode.Key) Option {
	return func(o *serviceOptions) {
		o.keys = keys
	}
}

func WithBackoffTimeout(d time.Duration) Option {
	return func(o *serviceOptions) {
		o.backoffTimeout = d
	}
}

// WithCaptureMouseMove controls whether mouse-move events are captured.
// Enabled by default.
func WithCaptureMouseMove(enabled bool) Option {
	return func(o *serviceOptions) {
		o.captureMouseMove = enabled
	}
}

// WithClearInjectedFlag controls whether the hook layer strips the
// OS-injected marker from events before passing them down the hook chain.
func WithClearInjectedFlag(enabled bool) Option {
	return func(o *serviceOptions) {
		o.clearInjectedFlag = enabled
	}
}

// Service is the process-local key state registry. Its lifetime is bracketed
// by Initialize and Terminate; the lifecycle is one-shot, a terminated
// instance cannot be initialized again.
type Service struct {
	log     *zap.Logger
	options serviceOptions

	mu     sync.Mutex
	state  atomic.Int32
	ready  chan struct{}
	cancel context.CancelFunc

	store *stateStore
	subs  *subscriptions
	disp  *dispatcher

	keyboardListeners *listenerList[KeyboardListener]
	mouseListeners    *listenerList[MouseListener]
}

func New(log *zap.Logger, opts ...Option) *Service {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	if options.keys == nil {
		options.keys = keycode.All()
	}
	return &Service{
		log:               log,
		options:           options,
		ready:             make(chan struct{}),
		keyboardListeners: &listenerList[KeyboardListener]{},
		mouseListeners:    &listenerList[MouseListener]{},
	}
}

// Initialize populates the state and subscription tables for every key in
// the registry and starts the capture sources. Fails with
// ErrAlreadyInitialized when the instance has been initialized before.
func (s *Service) Initialize(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.Load() != stateUninitialized {
		return ErrAlreadyInitialized
	}

	s.store = newStateStore(s.options.keys)
	s.subs = newSubscriptions(s.options.keys)
	s.disp = newDispatcher(s.log, s.store, s.subs, s.keyboardListeners, s.mouseListeners)

	runCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.state.Store(stateInitialized)

	s.applySourceOptions()
	for name, src := range s.sources() {
		go s.runSource(runCtx, name, src)
	}
	for _, src := range s.sources() {
		select {
		case <-ctx.Done():
			return nil
		case <-src.Ready():
		}
	}
	close(s.ready)
	s.log.Info("Engine initialized", zap.Int("keys", len(s.options.keys)))
	return nil
}

// Terminate stops the capture sources, clears both tables and the global
// listener lists. Fails with ErrNotInitialized outside the Initialized
// state.
func (s *Service) Terminate() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.state.CompareAndSwap(stateInitialized, stateTerminated) {
		return ErrNotInitialized
	}
	if s.cancel != nil {
		s.cancel()
	}
	s.subs.clear()
	s.store.clear()
	s.keyboardListeners.Clear()
	s.mouseListeners.Clear()
	s.log.Info("Engine terminated")
	return nil
}

// Close is the defensive teardown path: terminating an instance that is not
// initialized is swallowed, so cleanup code can always call it.
func (s *Service) Close() error {
	err := s.Terminate()
	if errors.Is(err, ErrNotInitialized) {
		return nil
	}
	return err
}

// Run initializes the engine, blocks until ctx is cancelled, then tears it
// down.
func (s *Service) Run(ctx context.Context) error {
	if err := s.Initialize(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	return s.Close()
}

// Ready is closed once every capture source reported readiness.
func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

// Keys returns the key registry the tables were populated from.
func (s *Service) Keys() []keycode.Key {
	keys := make([]keycode.Key, len(s.options.keys))
	copy(keys, s.options.keys)
	return keys
}

// GetState returns the stored logical state for key, StateNone for the
// invalid sentinel.
func (s *Service) GetState(key keycode.Key) (KeyState, error) {
	if s.state.Load() != stateInitialized {
		return StateNone, ErrNotInitialized
	}
	return s.store.Get(key), nil
}

// SetState unconditionally overwrites the stored state for key. A sentinel
// key is a no-op.
func (s *Service) SetState(key keycode.Key, state KeyState) error {
	if s.state.Load() != stateInitialized {
		return ErrNotInitialized
	}
	s.store.Set(key, state)
	return nil
}

// IsPressed reports whether key is currently held down.
func (s *Service) IsPressed(key keycode.Key) (bool, error) {
	if s.state.Load() != stateInitialized {
		return false, ErrNotInitialized
	}
	return s.store.IsPressed(key), nil
}

// WasPressed reports whether key completed a Down-to-Up cycle since the last
// call, consuming the one-shot Pressed marker.
func (s *Service) WasPressed(key keycode.Key) (bool, error) {
	if s.state.Load() != stateInitialized {
		return false, ErrNotInitialized
	}
	return s.store.WasPressed(key), nil
}

// RegisterEvent appends handler to the subscriber list for key.
func (s *Service) RegisterEvent(key keycode.Key, handler Handler) error {
	if s.state.Load() != stateInitialized {
		return ErrNotInitialized
	}
	return s.subs.register(key, handler)
}

// UnregisterEvent removes the first matching handler registered for key and
// reports whether one was removed.
func (s *Service) UnregisterEvent(key keycode.Key, handler Handler) (bool, error) {
	if s.state.Load() != stateInitialized {
		return false, ErrNotInitialized
	}
	return s.subs.unregister(key, handler)
}

// OnKeyboard attaches a listener to every keyboard event. The returned
// closure removes it; Terminate clears all remaining listeners.
func (s *Service) OnKeyboard(l KeyboardListener) (remove func()) {
	return s.keyboardListeners.Add(l)
}

// OnMouse attaches a listener to every mouse event.
func (s *Service) OnMouse(l MouseListener) (remove func()) {
	return s.mouseListeners.Add(l)
}

// SetCaptureMouseMove toggles mouse-move capture on the running sources.
func (s *Service) SetCaptureMouseMove(enabled bool) error {
	if s.state.Load() != stateInitialized {
		return ErrNotInitialized
	}
	for _, src := range s.sources() {
		if c, ok := src.(Configurable); ok {
			c.SetCaptureMouseMove(enabled)
		}
	}
	return nil
}

// SetClearInjectedFlag toggles injected-flag clearing on the running
// sources.
func (s *Service) SetClearInjectedFlag(enabled bool) error {
	if s.state.Load() != stateInitialized {
		return ErrNotInitialized
	}
	for _, src := range s.sources() {
		if c, ok := src.(Configurable); ok {
			c.SetClearInjectedFlag(enabled)
		}
	}
	return nil
}

func (s *Service) sources() map[string]Source {
	sources := make(map[string]Source, 2)
	if s.options.keyboard != nil {
		sources["keyboard"] = s.options.keyboard
	}
	if s.options.mouse != nil {
		sources["mouse"] = s.options.mouse
	}
	return sources
}

func (s *Service) applySourceOptions() {
	for _, src := range s.sources() {
		if c, ok := src.(Configurable); ok {
			c.SetCaptureMouseMove(s.options.captureMouseMove)
			c.SetClearInjectedFlag(s.options.clearInjectedFlag)
		}
	}
}

func (s *Service) runSource(ctx context.Context, name string, src Source) {
	for {
		err := src.Start(ctx, s.disp.dispatch)
		if err != nil {
			s.log.Error("hook source failed", zap.String("source", name), zap.Error(err))
		}
		t := time.NewTimer(s.options.backoffTimeout)
		// retry after backoff
		select {
		case <-ctx.Done():
			if !t.Stop() {
				<-t.C
			}
			return
		case <-t.C:
		}
	}
}
