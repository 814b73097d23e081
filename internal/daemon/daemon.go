package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"famcontents/internal/api"
	"famcontents/internal/config"
	"famcontents/internal/logging"
	"famcontents/internal/store"
)

const defaultPurgeInterval = time.Hour

// Daemon serves the HTTP API and enforces single-instance execution.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	svc    *api.Service
	server *apiServer

	lockPath      string
	lock          *flock.Flock
	purgeInterval time.Duration

	running atomic.Bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// Option customizes a Daemon.
type Option func(*Daemon)

// WithPurgeInterval sets how often trashed variants past retention are purged.
func WithPurgeInterval(d time.Duration) Option {
	return func(dm *Daemon) {
		if d > 0 {
			dm.purgeInterval = d
		}
	}
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, st *store.Store, svc *api.Service, logger *slog.Logger, opts ...Option) (*Daemon, error) {
	if cfg == nil || st == nil || svc == nil {
		return nil, errors.New("daemon requires config, store, and service")
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	d := &Daemon{
		cfg:           cfg,
		logger:        logging.NewComponentLogger(logger, "daemon"),
		store:         st,
		svc:           svc,
		lockPath:      lockPath,
		lock:          flock.New(lockPath),
		purgeInterval: defaultPurgeInterval,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.server = newAPIServer(cfg, d, svc, logger)
	return d, nil
}

// Start acquires the daemon lock, starts the API server and the purge loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another famd instance is already running")
	}

	runCtx, cancel := context.WithCancel(ctx)
	if err := d.server.start(runCtx); err != nil {
		cancel()
		_ = d.lock.Unlock()
		return err
	}
	d.cancel = cancel

	d.wg.Add(1)
	go d.purgeLoop(runCtx)

	d.running.Store(true)
	d.logger.Info("famd started",
		logging.String("lock", d.lockPath),
		logging.String("address", d.server.addr()),
	)
	return nil
}

// Stop shuts the API server down and releases the daemon lock.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.server.stop()
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.running.Store(false)
	d.logger.Info("famd stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Addr returns the address the API server is bound to, or "" when stopped.
func (d *Daemon) Addr() string {
	return d.server.addr()
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) api.Status {
	status := d.svc.Status(ctx)
	status.Running = d.running.Load()
	status.PID = os.Getpid()
	status.LockFilePath = d.lockPath
	return status
}

func (d *Daemon) purgeLoop(ctx context.Context) {
	defer d.wg.Done()

	ticker := time.NewTicker(d.purgeInterval)
	defer ticker.Stop()

	d.purge(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.purge(ctx)
		}
	}
}

func (d *Daemon) purge(ctx context.Context) {
	if _, err := d.svc.PurgeTrashed(ctx); err != nil && ctx.Err() == nil {
		logging.WarnWithContext(d.logger, "trash purge failed", "trash_purge",
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "check database permissions and disk space"),
			logging.String(logging.FieldImpact, "expired trashed variants remain until the next run"),
		)
	}
}
