// Package statsvc persists per-key usage statistics. It listens to the
// engine's global events, counts presses in memory and flushes usage
// records to badger on an interval.
package statsvc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/keypoll/keypoll-agent/pkg/keycode"
	"github.com/keypoll/keypoll-agent/pkg/keystate"
	"github.com/puzpuzpuz/xsync/v3"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

// KeyUsage is the persisted record for one key.
type KeyUsage struct {
	Key         string    `json:"key"`
	Presses     int64     `json:"presses"`
	FirstSeenAt time.Time `json:"firstSeenAt"`
	LastSeenAt  time.Time `json:"lastSeenAt"`
}

var defaultOptions = serviceOptions{
	flushInterval: 10 * time.Second,
}

type serviceOptions struct {
	flushInterval time.Duration
}

type Option func(*serviceOptions)

func WithFlushInterval(d time.Duration) Option {
	return func(o *serviceOptions) {
		o.flushInterval = d
	}
}

type Service struct {
	log     *zap.Logger
	db      *badger.DB
	now     func() time.Time
	options serviceOptions
	ready   chan struct{}

	pending *xsync.MapOf[keycode.Key, *atomic.Int64]
}

func New(db *badger.DB, log *zap.Logger, now func() time.Time, opts ...Option) *Service {
	options := defaultOptions
	for _, opt := range opts {
		opt(&options)
	}
	return &Service{
		log:     log,
		db:      db,
		now:     now,
		options: options,
		ready:   make(chan struct{}),
		pending: xsync.NewMapOf[keycode.Key, *atomic.Int64](),
	}
}

// KeyboardListener returns the listener to attach to the engine's global
// keyboard event.
func (s *Service) KeyboardListener() keystate.KeyboardListener {
	return func(key keycode.Key, state keystate.KeyState) {
		if state == keystate.StateDown {
			s.record(key)
		}
	}
}

// MouseListener returns the listener to attach to the engine's global mouse
// event. Movement is not counted.
func (s *Service) MouseListener() keystate.MouseListener {
	return func(key keycode.Key, state keystate.KeyState, _, _ int32) {
		if key == keycode.MouseMove {
			return
		}
		if state == keystate.StateDown {
			s.record(key)
		}
	}
}

func (s *Service) record(key keycode.Key) {
	counter, _ := s.pending.LoadOrCompute(key, func() *atomic.Int64 {
		return atomic.NewInt64(0)
	})
	counter.Inc()
}

// Start flushes pending counters on an interval until ctx is cancelled,
// then performs a final flush.
func (s *Service) Start(ctx context.Context) error {
	ticker := time.NewTicker(s.options.flushInterval)
	defer ticker.Stop()
	close(s.ready)
	s.log.Info("Stats service started", zap.Duration("flushInterval", s.options.flushInterval))
	for {
		select {
		case <-ctx.Done():
			if err := s.flush(); err != nil {
				s.log.Error("final flush failed", zap.Error(err))
			}
			return nil
		case <-ticker.C:
			if err := s.flush(); err != nil {
				s.log.Error("flush failed", zap.Error(err))
			}
		}
	}
}

func (s *Service) Ready() <-chan struct{} {
	return s.ready
}

func (s *Service) usageKey(key keycode.Key) []byte {
	return []byte(fmt.Sprintf("stats/keys/%s", key))
}

func (s *Service) flush() error {
	counts := make(map[keycode.Key]int64)
	s.pending.Range(func(key keycode.Key, counter *atomic.Int64) bool {
		if n := counter.Swap(0); n > 0 {
			counts[key] = n
		}
		return true
	})
	if len(counts) == 0 {
		return nil
	}
	now := s.now()
	err := s.db.Update(func(txn *badger.Txn) error {
		for key, n := range counts {
			usage := KeyUsage{Key: key.String()}
			item, err := txn.Get(s.usageKey(key))
			switch {
			case errors.Is(err, badger.ErrKeyNotFound):
				usage.FirstSeenAt = now
			case err != nil:
				return err
			default:
				err = item.Value(func(val []byte) error {
					return json.Unmarshal(val, &usage)
				})
				if err != nil {
					return fmt.Errorf("failed to unmarshal usage record: %w", err)
				}
			}
			usage.Presses += n
			usage.LastSeenAt = now
			b, err := json.Marshal(usage)
			if err != nil {
				return fmt.Errorf("failed to marshal usage record: %w", err)
			}
			if err := txn.Set(s.usageKey(key), b); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		// keep the counts for the next flush
		for key, n := range counts {
			counter, _ := s.pending.LoadOrCompute(key, func() *atomic.Int64 {
				return atomic.NewInt64(0)
			})
			counter.Add(n)
		}
		return fmt.Errorf("failed to persist usage records: %w", err)
	}
	return nil
}

// List returns every persisted usage record.
func (s *Service) List() ([]KeyUsage, error) {
	var records []KeyUsage
	err := s.db.View(func(txn *badger.Txn) error {
		iter := txn.NewIterator(badger.DefaultIteratorOptions)
		defer iter.Close()
		prefix := []byte("stats/keys/")
		for iter.Seek(prefix); iter.ValidForPrefix(prefix); iter.Next() {
			var usage KeyUsage
			err := iter.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &usage)
			})
			if err != nil {
				return err
			}
			records = append(records, usage)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list usage records: %w", err)
	}
	return records, nil
}
