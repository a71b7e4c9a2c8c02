package agent

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dgraph-io/badger"
	"github.com/keypoll/keypoll-agent/internal/configsvc"
	"github.com/keypoll/keypoll-agent/internal/hooksvc"
	"github.com/keypoll/keypoll-agent/internal/statsvc"
	"github.com/keypoll/keypoll-agent/pkg/keystate"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"
)

type Agent struct {
	config Config

	log       *zap.Logger
	db        *badger.DB
	configSvc *configsvc.Service
	keySvc    *keystate.Service
	statsSvc  *statsvc.Service
}

func NewAgent(config Config) (*Agent, error) {
	loggerConfig := zap.NewDevelopmentConfig()
	loggerConfig.EncoderConfig.EncodeTime = zapcore.TimeEncoderOfLayout("15:04:05.000000000")
	loggerConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to create logger: %w", err)
	}

	dbOptions := badger.DefaultOptions(filepath.Join(config.DataDir, "db"))
	dbOptions.Logger = &badgerLogger{l: logger.Named("badger")}

	db, err := badger.Open(dbOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	configSvc := configsvc.New(logger.Named("config"))
	keySvc := keystate.New(logger.Named("keystate"),
		keystate.WithKeyboardSource(hooksvc.NewKeyboardSource(logger.Named("hook.keyboard"))),
		keystate.WithMouseSource(hooksvc.NewMouseSource(logger.Named("hook.mouse"))),
	)
	statsSvc := statsvc.New(db, logger.Named("stats"), time.Now)
	keySvc.OnKeyboard(statsSvc.KeyboardListener())
	keySvc.OnMouse(statsSvc.MouseListener())

	return &Agent{
		config:    config,
		log:       logger,
		db:        db,
		configSvc: configSvc,
		keySvc:    keySvc,
		statsSvc:  statsSvc,
	}, nil
}

func (a *Agent) Close() error {
	var errs error
	errs = multierr.Append(errs, a.keySvc.Close())
	errs = multierr.Append(errs, a.db.Close())
	return errs
}

type badgerLogger struct {
	l *zap.Logger
}

func (l badgerLogger) Errorf(msg string, args ...any) {
	l.l.Error(fmt.Sprintf(msg, args...))
}

func (l badgerLogger) Warningf(msg string, args ...any) {
	l.l.Warn(fmt.Sprintf(msg, args...))
}

func (l badgerLogger) Infof(msg string, args ...any) {
	l.l.Info(fmt.Sprintf(msg, args...))
}

func (l badgerLogger) Debugf(msg string, args ...any) {
	l.l.Debug(fmt.Sprintf(msg, args...))
}

// Run starts the agent and blocks until the context is cancelled.
// If the runtime configuration becomes invalid after startup, the agent
// keeps running with the last valid configuration.
func (a *Agent) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		return a.configSvc.Start(groupCtx)
	})
	group.Go(func() error {
		return a.keySvc.Run(groupCtx)
	})
	group.Go(func() error {
		return a.statsSvc.Start(groupCtx)
	})
	group.Go(func() error {
		select {
		case <-groupCtx.Done():
			return nil
		case <-a.configSvc.Ready():
		}
		select {
		case <-groupCtx.Done():
			return nil
		case <-a.keySvc.Ready():
		}
		cfg, err := configsvc.Watch(a.configSvc, a.config.RuntimeConfig, DefaultRuntimeConfig, func(cfg RuntimeConfig, err error) {
			if err != nil {
				a.log.Error("failed to reload runtime config", zap.Error(err))
				return
			}
			a.applyRuntimeConfig(cfg)
		})
		if err != nil {
			return fmt.Errorf("failed to register runtime config: %w", err)
		}
		a.applyRuntimeConfig(cfg)
		return nil
	})

	err := group.Wait()
	if err != nil {
		return fmt.Errorf("agent failed: %w", err)
	}
	return nil
}

func (a *Agent) applyRuntimeConfig(cfg RuntimeConfig) {
	if err := a.keySvc.SetCaptureMouseMove(cfg.CaptureMouseMove); err != nil {
		a.log.Warn("failed to apply captureMouseMove", zap.Error(err))
	}
	if err := a.keySvc.SetClearInjectedFlag(cfg.ClearInjectedFlag); err != nil {
		a.log.Warn("failed to apply clearInjectedFlag", zap.Error(err))
	}
}

func (a *Agent) KeyState() *keystate.Service {
	return a.keySvc
}

func (a *Agent) Stats() *statsvc.Service {
	return a.statsSvc
}
