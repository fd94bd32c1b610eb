package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/gofrs/flock"

	"chanvault/internal/config"
	"chanvault/internal/logging"
	"chanvault/internal/notifications"
	"chanvault/internal/objectstore"
	"chanvault/internal/source/telegram"
	"chanvault/internal/store"
	"chanvault/internal/workflow"
)

// Daemon is the composition root for background archiving: it owns the
// database, the Telegram connection, object storage, and the workflow
// manager, and enforces single-instance execution through a lock file.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *store.Store
	client   *telegram.Client
	manager  *workflow.Manager
	lockPath string
	lock     *flock.Flock
}

// New builds a daemon with production backends.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	objects, err := objectstore.NewMinIO(cfg)
	if err != nil {
		_ = st.Close()
		return nil, err
	}

	client := telegram.New(cfg, st)
	manager := workflow.NewManager(cfg, st, client, objects, notifications.NewService(cfg), logger)

	lockPath := filepath.Join(cfg.Paths.DataDir, "chanvault.lock")
	return &Daemon{
		cfg:      cfg,
		logger:   logging.WithComponent(logger, "daemon"),
		store:    st,
		client:   client,
		manager:  manager,
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// Run acquires the instance lock, connects to Telegram, and drives the
// workflow until ctx is cancelled. Cancellation is a clean shutdown.
func (d *Daemon) Run(ctx context.Context) error {
	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return fmt.Errorf("another chanvault daemon is already running (lock %s)", d.lockPath)
	}
	defer func() {
		if unlockErr := d.lock.Unlock(); unlockErr != nil {
			d.logger.Warn("failed to release daemon lock", logging.Error(unlockErr))
		}
	}()

	d.logger.Info("daemon starting",
		logging.String("db", d.store.Path()),
		logging.String("lock", d.lockPath))

	err = d.client.Run(ctx, func(ctx context.Context) error {
		authorized, err := d.client.Authorized(ctx)
		if err != nil {
			return err
		}
		if !authorized {
			return errors.New("telegram session not authorized, run 'chanvault login' first")
		}
		d.logger.Info("telegram connected")
		return d.manager.Run(ctx)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	d.logger.Info("daemon stopped")
	return nil
}

// Store exposes the daemon's database handle.
func (d *Daemon) Store() *store.Store { return d.store }

// Close releases the daemon's resources.
func (d *Daemon) Close() error {
	return d.store.Close()
}
