package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"chanvault/internal/config"
	"chanvault/internal/logging"
	"chanvault/internal/notifications"
	"chanvault/internal/objectstore"
	"chanvault/internal/reconciler"
	"chanvault/internal/scanner"
	"chanvault/internal/source"
	"chanvault/internal/store"
	"chanvault/internal/transfer"
)

// Manager supervises the archive tasks: the discovery scanner, the transfer
// worker, and the storage reconciler.
type Manager struct {
	cfg    *config.Config
	store  *store.Store
	logger *slog.Logger

	scanner    *scanner.Scanner
	worker     *transfer.Worker
	reconciler *reconciler.Reconciler

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// NewManager wires the archive pipeline over the given backends.
func NewManager(
	cfg *config.Config,
	st *store.Store,
	client source.Client,
	objects objectstore.Store,
	notifier notifications.Service,
	logger *slog.Logger,
) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	queue := transfer.NewQueue(cfg.Transfer.QueueCapacity)
	return &Manager{
		cfg:        cfg,
		store:      st,
		logger:     logging.WithComponent(logger, "workflow"),
		scanner:    scanner.New(cfg, st, client, logger),
		worker:     transfer.NewWorker(cfg, st, client, objects, notifier, queue, logger),
		reconciler: reconciler.New(cfg, st, objects, logger),
	}
}

// Start recovers queue state and launches the task loops. It is an error to
// start a running manager.
func (m *Manager) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.running {
		return errors.New("workflow: already running")
	}

	admitted, err := m.worker.RebuildQueue(ctx)
	if err != nil {
		return err
	}
	if admitted > 0 {
		m.logger.Info("transfer queue rebuilt", logging.Int("admitted", admitted))
	}

	runCtx, cancel := context.WithCancel(ctx)
	m.cancel = cancel
	m.running = true

	tasks := []struct {
		name string
		run  func(context.Context) error
	}{
		{"scanner", m.scanner.Run},
		{"transfer", m.worker.Run},
		{"reconciler", m.reconciler.Run},
	}
	restartDelay := time.Duration(m.cfg.Workflow.ErrorRetryInterval) * time.Second
	for _, task := range tasks {
		m.wg.Add(1)
		go func(name string, run func(context.Context) error) {
			defer m.wg.Done()
			for {
				err := run(runCtx)
				if runCtx.Err() != nil || err == nil || errors.Is(err, context.Canceled) {
					return
				}
				m.logger.Error("task stopped, restarting",
					logging.String(logging.FieldTask, name),
					slog.Duration("restart_in", restartDelay),
					logging.Error(err))
				select {
				case <-runCtx.Done():
					return
				case <-time.After(restartDelay):
				}
			}
		}(task.name, task.run)
	}

	m.logger.Info("workflow started")
	return nil
}

// Stop cancels the task loops and waits for them to exit.
func (m *Manager) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	cancel := m.cancel
	m.running = false
	m.cancel = nil
	m.mu.Unlock()

	cancel()
	m.wg.Wait()
	m.logger.Info("workflow stopped")
}

// Run starts the manager and blocks until ctx is cancelled.
func (m *Manager) Run(ctx context.Context) error {
	if err := m.Start(ctx); err != nil {
		return err
	}
	<-ctx.Done()
	m.Stop()
	return ctx.Err()
}

// Running reports whether the task loops are active.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}
