package transfer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"chanvault/internal/config"
	"chanvault/internal/logging"
	"chanvault/internal/notifications"
	"chanvault/internal/objectstore"
	"chanvault/internal/services"
	"chanvault/internal/source"
	"chanvault/internal/store"
)

// Worker drains the transfer queue: download to staging, hash, dedup check,
// upload, record completion, notify. Each item moves through downloading and
// uploading states so a crash can be recovered by resetting in-flight rows.
type Worker struct {
	cfg      *config.Config
	store    *store.Store
	client   source.Client
	objects  objectstore.Store
	notifier notifications.Service
	queue    *Queue
	logger   *slog.Logger
}

// NewWorker builds a transfer worker over the shared queue.
func NewWorker(
	cfg *config.Config,
	st *store.Store,
	client source.Client,
	objects objectstore.Store,
	notifier notifications.Service,
	queue *Queue,
	logger *slog.Logger,
) *Worker {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Worker{
		cfg:      cfg,
		store:    st,
		client:   client,
		objects:  objects,
		notifier: notifier,
		queue:    queue,
		logger:   logging.WithComponent(logger, "transfer"),
	}
}

// RebuildQueue recovers queue state after a restart: items stranded in
// transfer states go back to queued, then every queued row is admitted to the
// in-process queue.
func (w *Worker) RebuildQueue(ctx context.Context) (int, error) {
	reset, err := w.store.ResetInFlight(ctx)
	if err != nil {
		return 0, err
	}
	if reset > 0 {
		w.logger.Info("recovered in-flight items", logging.Int64("reset", reset))
	}
	return w.pump(ctx)
}

// Run processes queued items until ctx is cancelled. When the in-process
// queue runs dry the store is polled for queued rows, which also picks up
// approvals made by a separate CLI process.
func (w *Worker) Run(ctx context.Context) error {
	poll := time.Duration(w.cfg.Workflow.QueuePollInterval) * time.Second
	for {
		id, ok, err := w.queue.Dequeue(ctx, poll)
		if err != nil {
			return err
		}
		if !ok {
			if _, err := w.pump(ctx); err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				w.logger.Error("queue pump failed", logging.Error(err))
			}
			continue
		}
		if err := w.Process(ctx, id); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			w.logger.Error("item processing failed",
				logging.Int64(logging.FieldItemID, id),
				logging.Error(err))
		}
	}
}

// pump admits queued store rows to the in-process queue, oldest update first.
func (w *Worker) pump(ctx context.Context) (int, error) {
	items, err := w.store.ItemsByStatus(ctx, store.StatusQueued)
	if err != nil {
		return 0, err
	}
	admitted := 0
	for _, item := range items {
		if w.queue.TryEnqueue(item.ID) {
			admitted++
		}
	}
	return admitted, nil
}

// Process runs one item through the transfer pipeline. Rate limits and
// source outages are absorbed here: the item returns to queued, the worker
// waits out the backoff or the reconnect pause, and the attempt restarts
// without consuming the retry budget.
func (w *Worker) Process(ctx context.Context, id int64) error {
	defer w.queue.Done(id)

	ctx = services.WithItemID(services.WithTask(ctx, "transfer"), id)
	ctx = services.WithCorrelationID(ctx, uuid.New().String())

	for {
		item, err := w.store.GetItem(ctx, id)
		if errors.Is(err, store.ErrNotFound) {
			w.logger.WarnContext(ctx, "queued item vanished")
			return nil
		}
		if err != nil {
			return err
		}
		if item.Status != store.StatusQueued && item.Status != store.StatusDownloading {
			w.logger.DebugContext(ctx, "skipping item outside transfer states",
				logging.String(logging.FieldStatus, item.Status.String()))
			return nil
		}

		err = w.attempt(services.WithChannelID(ctx, item.ChannelID), item)
		if err == nil {
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}

		if wait, ok := source.AsRateLimit(err); ok {
			item.Status = store.StatusQueued
			item.ProcessingStatus = "waiting out rate limit"
			if updateErr := w.store.UpdateItem(ctx, item); updateErr != nil {
				return updateErr
			}
			w.logger.WarnContext(ctx, "transfer rate limited", slog.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		if errors.Is(err, services.ErrUnavailable) {
			item.Status = store.StatusQueued
			item.ProcessingStatus = "waiting for source connection"
			if updateErr := w.store.UpdateItem(ctx, item); updateErr != nil {
				return updateErr
			}
			wait := time.Duration(w.cfg.Workflow.ErrorRetryInterval) * time.Second
			w.logger.WarnContext(ctx, "source unavailable, pausing before reconnect",
				slog.Duration("wait", wait), logging.Error(err))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}

		return w.fail(ctx, item, err)
	}
}

func (w *Worker) attempt(ctx context.Context, item *store.Item) error {
	if item.Category == "" {
		return services.Wrap(services.ErrPrecondition, "transfer", "category",
			"no category assigned", nil)
	}
	bucket := w.cfg.BucketForCategory(item.Category)

	item.Status = store.StatusDownloading
	item.ProcessingStatus = "downloading from channel"
	if err := w.store.UpdateItem(ctx, item); err != nil {
		return err
	}

	hint := ""
	if channel, err := w.store.GetChannel(ctx, item.ChannelID); err == nil {
		hint = channel.Handle
	} else if !errors.Is(err, store.ErrNotFound) {
		return err
	}
	handle, err := w.client.ResolveChannel(ctx, item.ChannelID, hint)
	if err != nil {
		return err
	}

	fileName := SanitizeFileName(item.FileName)
	staging := filepath.Join(w.cfg.Paths.StagingDir, fmt.Sprintf("%d_%s", item.ID, fileName))
	defer func() {
		if removeErr := os.Remove(staging); removeErr != nil && !os.IsNotExist(removeErr) {
			w.logger.WarnContext(ctx, "staging cleanup failed",
				logging.String("path", staging), logging.Error(removeErr))
		}
	}()

	if err := w.client.DownloadAttachment(ctx, handle, item.MessageID, staging); err != nil {
		return err
	}

	hash, size, err := hashFile(staging)
	if err != nil {
		return services.Wrap(services.ErrTransient, "transfer", "hash", staging, err)
	}
	item.ContentHash = hash
	item.FileSize = size

	if dup, err := w.store.FindByHash(ctx, hash, item.ID); err != nil {
		return err
	} else if dup != nil {
		return services.Wrap(services.ErrDuplicate, "transfer", "dedup",
			fmt.Sprintf("duplicate of item %d", dup.ID), nil)
	}

	item.Status = store.StatusUploading
	item.ProcessingStatus = "uploading to archive"
	if err := w.store.UpdateItem(ctx, item); err != nil {
		return err
	}

	if err := w.objects.EnsureBucket(ctx, bucket); err != nil {
		return services.Wrap(services.ErrTransient, "transfer", "ensure-bucket", bucket, err)
	}
	object := objectstore.ObjectName(item.ChannelID, item.MessageID, fileName)
	if _, err := w.objects.Upload(ctx, bucket, object, staging, item.MimeType); err != nil {
		return services.Wrap(services.ErrTransient, "transfer", "upload", bucket+"/"+object, err)
	}

	item.Status = store.StatusCompleted
	item.StoragePath = objectstore.FormatStoragePath(bucket, object)
	item.ProcessingStatus = ""
	item.ErrorMessage = ""
	if err := w.store.UpdateItem(ctx, item); err != nil {
		return err
	}

	w.logger.InfoContext(ctx, "file archived",
		logging.Int64(logging.FieldMessageID, item.MessageID),
		logging.String(logging.FieldFileName, item.FileName),
		logging.String(logging.FieldBucket, bucket),
		logging.String("storage_path", item.StoragePath),
		logging.Int64("size", item.FileSize))

	if err := w.notifier.FileArchived(ctx, notifications.Event{
		Event:         notifications.EventFileArchived,
		FileID:        item.ID,
		FileName:      item.FileName,
		FileType:      item.FileType,
		MimeType:      item.MimeType,
		FileSize:      item.FileSize,
		StoragePath:   item.StoragePath,
		StorageBucket: bucket,
		Category:      item.Category,
		ChannelID:     item.ChannelID,
		ChannelName:   item.ChannelName,
		ContentHash:   item.ContentHash,
	}); err != nil {
		w.logger.WarnContext(ctx, "notification delivery failed", logging.Error(err))
	}
	return nil
}

// fail records a failed attempt. Retryable failures consume the retry budget
// and park the item in failed, to be retried through an explicit retry action,
// escalating to failed_permanent when the budget runs out.
func (w *Worker) fail(ctx context.Context, item *store.Item, cause error) error {
	status := services.FailureStatus(cause)
	if services.Retryable(cause) {
		item.RetryCount++
		if item.RetryCount >= w.cfg.Transfer.MaxRetries {
			status = store.StatusFailedPermanent
		} else {
			status = store.StatusFailed
		}
	}

	item.Status = status
	item.ErrorMessage = cause.Error()
	item.ProcessingStatus = ""
	if err := w.store.UpdateItem(ctx, item); err != nil {
		return err
	}

	w.logger.ErrorContext(ctx, "transfer attempt failed",
		logging.String(logging.FieldStatus, status.String()),
		logging.Int(logging.FieldRetryCount, item.RetryCount),
		logging.Error(cause))
	return nil
}

func hashFile(path string) (string, int64, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", 0, err
	}
	defer f.Close()

	h := sha256.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return "", 0, err
	}
	return hex.EncodeToString(h.Sum(nil)), size, nil
}
