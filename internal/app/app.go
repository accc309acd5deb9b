// Package app runs the headless service: the HTTP server plus the periodic
// roster synchronization feeding it.
package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/tartampluch/lifereel/internal/age"
	"github.com/tartampluch/lifereel/internal/config"
	"github.com/tartampluch/lifereel/internal/engine"
	"github.com/tartampluch/lifereel/internal/metrics"
	"github.com/zalando/go-keyring"
)

// Syncer produces the roster and calendar. *engine.Generator implements it.
type Syncer interface {
	RunSync(ctx context.Context, cfg engine.SyncConfig) (engine.Result, error)
}

// Publisher serves the latest sync result. *server.Server implements it.
type Publisher interface {
	Start(ctx context.Context) error
	Update(ics []byte, people []age.Person)
}

// Service wires the sync worker to the publisher.
type Service struct {
	Settings  *config.Settings
	Syncer    Syncer
	Publisher Publisher
	Metrics   *metrics.Metrics

	// Password resolves the web password when the settings leave it empty.
	// Defaults to the OS keyring.
	Password func(service, user string) (string, error)
}

// New creates a Service reading web passwords from the OS keyring.
func New(s *config.Settings, syncer Syncer, pub Publisher, m *metrics.Metrics) *Service {
	return &Service{
		Settings:  s,
		Syncer:    syncer,
		Publisher: pub,
		Metrics:   m,
		Password:  keyring.Get,
	}
}

// Run starts the publisher and the background worker and blocks until ctx is
// cancelled or the publisher fails.
func (s *Service) Run(ctx context.Context) error {
	workerCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		s.backgroundWorker(workerCtx)
	}()

	err := s.Publisher.Start(ctx)
	cancel()
	<-done
	return err
}

// backgroundWorker syncs immediately, then on every tick of the configured interval.
func (s *Service) backgroundWorker(ctx context.Context) {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	_ = s.Sync(ctx)

	interval := s.Settings.Sync.Interval
	if interval <= 0 {
		interval = config.DefaultRefresh
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, interval)

	for {
		select {
		case <-ctx.Done():
			log.Info(config.MsgWorkerStop)
			return
		case <-ticker.C:
			_ = s.Sync(ctx)
		}
	}
}

// Sync runs one synchronization and publishes its result. On failure the
// previous result stays published.
func (s *Service) Sync(ctx context.Context) error {
	start := time.Now()
	res, err := s.Syncer.RunSync(ctx, s.syncConfig())
	s.Metrics.ObserveSync(time.Since(start), len(res.People), err)
	if err != nil {
		if ctx.Err() == nil {
			slog.Error(config.ErrSyncFailed,
				config.LogKeyComponent, config.CompWorker,
				config.LogKeyError, err)
		}
		return err
	}

	s.Publisher.Update(res.ICS, res.People)
	slog.Info(config.MsgSyncFinished,
		config.LogKeyComponent, config.CompWorker,
		config.LogKeyFound, len(res.People),
		config.LogKeyToday, res.Today)
	return nil
}

// syncConfig assembles the engine configuration from the settings and the keyring.
func (s *Service) syncConfig() engine.SyncConfig {
	src := s.Settings.Source
	cfg := engine.SyncConfig{
		Mode:            src.Mode,
		LocalPath:       src.LocalPath,
		WebURL:          src.WebURL,
		WebUser:         src.WebUser,
		WebPass:         src.WebPass,
		ReminderTrigger: s.Settings.Sync.Reminder,
	}

	if cfg.WebPass == "" && cfg.WebUser != "" && s.Password != nil {
		if p, err := s.Password(config.KeyringService, cfg.WebUser); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompWorker)
		}
	}
	return cfg
}
