//go:build !linux && !windows

package hooksvc

import (
	"context"
	"sync"

	"github.com/keypoll/keypoll-agent/pkg/keystate"
	"go.uber.org/zap"
)

// NewKeyboardSource returns an idle source on platforms without a capture
// backend.
func NewKeyboardSource(log *zap.Logger) keystate.Source {
	return newIdleSource(log, "keyboard")
}

// NewMouseSource returns an idle source on platforms without a capture
// backend.
func NewMouseSource(log *zap.Logger) keystate.Source {
	return newIdleSource(log, "mouse")
}

type idleSource struct {
	sourceOptions
	log  *zap.Logger
	name string

	readyOnce sync.Once
	ready     chan struct{}
}

func newIdleSource(log *zap.Logger, name string) *idleSource {
	return &idleSource{log: log, name: name, ready: make(chan struct{})}
}

func (s *idleSource) Ready() <-chan struct{} {
	return s.ready
}

func (s *idleSource) Start(ctx context.Context, _ keystate.EmitFunc) error {
	s.readyOnce.Do(func() {
		s.log.Warn("no capture backend for this platform", zap.String("source", s.name))
		close(s.ready)
	})
	<-ctx.Done()
	return nil
}
