package reconciler

import (
	"context"
	"log/slog"
	"time"

	"chanvault/internal/config"
	"chanvault/internal/logging"
	"chanvault/internal/objectstore"
	"chanvault/internal/services"
	"chanvault/internal/store"
)

// Reconciler audits completed items against object storage and reverts any
// whose archived object has gone missing, so the next transfer cycle restores
// it.
type Reconciler struct {
	cfg     *config.Config
	store   *store.Store
	objects objectstore.Store
	logger  *slog.Logger
}

// Result summarizes one reconciliation pass.
type Result struct {
	Checked  int
	Reverted int
	Skipped  int
}

// New builds a reconciler over the given object store.
func New(cfg *config.Config, st *store.Store, objects objectstore.Store, logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Reconciler{
		cfg:     cfg,
		store:   st,
		objects: objects,
		logger:  logging.WithComponent(logger, "reconciler"),
	}
}

// Run reconciles on the configured interval until ctx is cancelled. The first
// pass runs immediately so a fresh daemon verifies its records on startup.
func (r *Reconciler) Run(ctx context.Context) error {
	interval := time.Duration(r.cfg.Reconciler.Interval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if _, err := r.RunOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			r.logger.Error("reconciliation pass failed", logging.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunOnce audits every completed item. A failing item is logged and skipped;
// storage errors never revert an item, only a definite absence does.
func (r *Reconciler) RunOnce(ctx context.Context) (Result, error) {
	ctx = services.WithTask(ctx, "reconcile")
	var result Result

	items, err := r.store.CompletedItems(ctx)
	if err != nil {
		return result, err
	}

	for _, item := range items {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		result.Checked++

		if item.StoragePath == "" || item.Category == "" {
			result.Skipped++
			r.logger.WarnContext(ctx, "completed item missing storage path or category",
				logging.Int64(logging.FieldItemID, item.ID))
			continue
		}

		bucket, object, err := objectstore.ParseStoragePath(item.StoragePath)
		if err != nil {
			result.Skipped++
			r.logger.WarnContext(ctx, "completed item has malformed storage path",
				logging.Int64(logging.FieldItemID, item.ID),
				logging.String("storage_path", item.StoragePath))
			continue
		}

		exists, err := r.objects.Exists(ctx, bucket, object)
		if err != nil {
			result.Skipped++
			r.logger.ErrorContext(ctx, "storage check failed",
				logging.Int64(logging.FieldItemID, item.ID),
				logging.String("storage_path", item.StoragePath),
				logging.Error(err))
			continue
		}
		if exists {
			continue
		}

		reverted, err := r.store.RevertToPending(ctx, item.ID, "archived object missing")
		if err != nil {
			r.logger.ErrorContext(ctx, "revert failed",
				logging.Int64(logging.FieldItemID, item.ID),
				logging.Error(err))
			continue
		}
		if reverted {
			result.Reverted++
			r.logger.WarnContext(ctx, "archived object missing, item reverted",
				logging.Int64(logging.FieldItemID, item.ID),
				logging.Int64(logging.FieldChannelID, item.ChannelID),
				logging.String("storage_path", item.StoragePath))
		}
	}

	if result.Reverted > 0 || result.Skipped > 0 {
		r.logger.InfoContext(ctx, "reconciliation complete",
			logging.Int("checked", result.Checked),
			logging.Int("reverted", result.Reverted),
			logging.Int("skipped", result.Skipped))
	}
	return result, nil
}
