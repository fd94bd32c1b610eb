package transfer_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"chanvault/internal/config"
	"chanvault/internal/services"
	"chanvault/internal/source"
	"chanvault/internal/store"
	"chanvault/internal/testsupport"
	"chanvault/internal/transfer"
)

type workerEnv struct {
	cfg      *config.Config
	store    *store.Store
	source   *testsupport.FakeSource
	objects  *testsupport.MemoryObjectStore
	notifier *testsupport.CaptureNotifier
	queue    *transfer.Queue
	worker   *transfer.Worker
}

func newWorkerEnv(t *testing.T) *workerEnv {
	t.Helper()
	env := &workerEnv{
		cfg:      testsupport.NewConfig(t),
		source:   testsupport.NewFakeSource(),
		objects:  testsupport.NewMemoryObjectStore(),
		notifier: &testsupport.CaptureNotifier{},
		queue:    transfer.NewQueue(16),
	}
	env.store = testsupport.MustOpenStore(t, env.cfg)
	env.worker = transfer.NewWorker(env.cfg, env.store, env.source, env.objects, env.notifier, env.queue, nil)
	return env
}

func (env *workerEnv) seedQueuedItem(t *testing.T, messageID int64, fileName string, payload []byte) *store.Item {
	t.Helper()
	env.source.AddChannel(100, "Archive Feed")
	env.source.AddMessage(100, source.Message{
		ID:         messageID,
		Attachment: source.Attachment{FileName: fileName, MimeType: "audio/mpeg", Size: int64(len(payload))},
	}, payload)

	item := testsupport.SeedItem(t, env.store, &store.Item{
		ChannelID:   100,
		ChannelName: "Archive Feed",
		MessageID:   messageID,
		FileName:    fileName,
		FileType:    "audio",
		MimeType:    "audio/mpeg",
		FileSize:    int64(len(payload)),
		Category:    "messages",
	})
	queued, err := env.store.Approve(context.Background(), item.ID, "")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	return queued
}

func TestProcessArchivesItem(t *testing.T) {
	env := newWorkerEnv(t)
	ctx := context.Background()
	item := env.seedQueuedItem(t, 10, "lecture.mp3", []byte("audio-bytes"))

	if err := env.worker.Process(ctx, item.ID); err != nil {
		t.Fatalf("Process: %v", err)
	}

	done, err := env.store.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if done.Status != store.StatusCompleted {
		t.Fatalf("status = %s (error: %s)", done.Status, done.ErrorMessage)
	}
	wantPath := "bucket-messages/100/10/lecture.mp3"
	if done.StoragePath != wantPath {
		t.Fatalf("storage path = %q, want %q", done.StoragePath, wantPath)
	}
	if done.ContentHash == "" || done.FileSize != int64(len("audio-bytes")) {
		t.Fatalf("hash/size not recorded: %+v", done)
	}

	data, ok := env.objects.Object("bucket-messages", "100/10/lecture.mp3")
	if !ok || string(data) != "audio-bytes" {
		t.Fatalf("object missing or wrong: %q, %v", data, ok)
	}

	events := env.notifier.Archived()
	if len(events) != 1 {
		t.Fatalf("notifications = %d", len(events))
	}
	event := events[0]
	if event.Event != "file_archived" || event.FileID != item.ID ||
		event.StorageBucket != "bucket-messages" || event.ContentHash != done.ContentHash {
		t.Fatalf("event = %+v", event)
	}
}

func TestProcessCleansStagingOnSuccessAndFailure(t *testing.T) {
	env := newWorkerEnv(t)
	ctx := context.Background()

	ok := env.seedQueuedItem(t, 10, "good.mp3", []byte("payload"))
	if err := env.worker.Process(ctx, ok.ID); err != nil {
		t.Fatalf("Process: %v", err)
	}

	env.objects.UploadErr = errors.New("storage offline")
	bad := env.seedQueuedItem(t, 11, "bad.mp3", []byte("payload-2"))
	if err := env.worker.Process(ctx, bad.ID); err != nil {
		t.Fatalf("Process failing item: %v", err)
	}

	entries, err := os.ReadDir(env.cfg.Paths.StagingDir)
	if err != nil {
		t.Fatalf("read staging dir: %v", err)
	}
	for _, entry := range entries {
		t.Errorf("staging leftover: %s", entry.Name())
	}
}

func TestProcessMissingCategoryFailsWithoutRetryCost(t *testing.T) {
	env := newWorkerEnv(t)
	ctx := context.Background()
	item := env.seedQueuedItem(t, 10, "a.mp3", []byte("x"))

	item.Category = ""
	if err := env.store.UpdateItem(ctx, item); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	if err := env.worker.Process(ctx, item.ID); err != nil {
		t.Fatalf("Process: %v", err)
	}

	failed, _ := env.store.GetItem(ctx, item.ID)
	if failed.Status != store.StatusFailed {
		t.Fatalf("status = %s, want failed", failed.Status)
	}
	if failed.RetryCount != 0 {
		t.Fatalf("retry count = %d, precondition must not consume retries", failed.RetryCount)
	}
	if !strings.Contains(failed.ErrorMessage, "no category") {
		t.Fatalf("error = %q", failed.ErrorMessage)
	}
	if env.source.DownloadCalls != 0 {
		t.Fatal("download attempted without category")
	}
}

func TestProcessDuplicateContentIsPermanent(t *testing.T) {
	env := newWorkerEnv(t)
	ctx := context.Background()

	first := env.seedQueuedItem(t, 10, "orig.mp3", []byte("same-bytes"))
	if err := env.worker.Process(ctx, first.ID); err != nil {
		t.Fatalf("Process first: %v", err)
	}

	second := env.seedQueuedItem(t, 11, "copy.mp3", []byte("same-bytes"))
	if err := env.worker.Process(ctx, second.ID); err != nil {
		t.Fatalf("Process second: %v", err)
	}

	dup, _ := env.store.GetItem(ctx, second.ID)
	if dup.Status != store.StatusFailedPermanent {
		t.Fatalf("status = %s, want failed_permanent", dup.Status)
	}
	if !strings.Contains(dup.ErrorMessage, "duplicate of item") {
		t.Fatalf("error = %q", dup.ErrorMessage)
	}
	if _, ok := env.objects.Object("bucket-messages", "100/11/copy.mp3"); ok {
		t.Fatal("duplicate payload must not be uploaded")
	}
}

func TestProcessRetryBudgetEscalates(t *testing.T) {
	env := newWorkerEnv(t)
	ctx := context.Background()
	item := env.seedQueuedItem(t, 10, "a.mp3", []byte("x"))
	env.source.DownloadErr[10] = errors.New("connection reset")

	for attempt := 1; attempt <= env.cfg.Transfer.MaxRetries; attempt++ {
		if err := env.worker.Process(ctx, item.ID); err != nil {
			t.Fatalf("Process attempt %d: %v", attempt, err)
		}
		current, _ := env.store.GetItem(ctx, item.ID)
		if current.RetryCount != attempt {
			t.Fatalf("retry count after attempt %d = %d", attempt, current.RetryCount)
		}
		if attempt < env.cfg.Transfer.MaxRetries {
			if current.Status != store.StatusFailed {
				t.Fatalf("status after attempt %d = %s, want failed", attempt, current.Status)
			}
			if _, err := env.store.RetryReset(ctx, item.ID); err != nil {
				t.Fatalf("RetryReset after attempt %d: %v", attempt, err)
			}
		} else if current.Status != store.StatusFailedPermanent {
			t.Fatalf("status after final attempt = %s, want failed_permanent", current.Status)
		}
	}
}

func TestProcessWaitsOutRateLimit(t *testing.T) {
	env := newWorkerEnv(t)
	ctx := context.Background()
	item := env.seedQueuedItem(t, 10, "a.mp3", []byte("payload"))
	env.source.SetDownloadErr(10, &source.RateLimitError{Wait: 10 * time.Millisecond})

	done := make(chan error, 1)
	go func() { done <- env.worker.Process(ctx, item.ID) }()

	// Let the first attempt hit the rate limit, then clear it.
	time.Sleep(5 * time.Millisecond)
	env.source.SetDownloadErr(10, nil)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Process did not finish")
	}

	final, _ := env.store.GetItem(ctx, item.ID)
	if final.Status != store.StatusCompleted {
		t.Fatalf("status = %s, want completed", final.Status)
	}
	if final.RetryCount != 0 {
		t.Fatalf("rate limit consumed retry budget: %d", final.RetryCount)
	}
}

func TestProcessWaitsOutSourceOutage(t *testing.T) {
	env := newWorkerEnv(t)
	env.cfg.Workflow.ErrorRetryInterval = 0
	ctx := context.Background()
	item := env.seedQueuedItem(t, 10, "a.mp3", []byte("payload"))
	env.source.SetDownloadErr(10, fmt.Errorf("source: download history: %w", services.ErrUnavailable))

	done := make(chan error, 1)
	go func() { done <- env.worker.Process(ctx, item.ID) }()

	// Let the first attempt hit the outage, then restore the connection.
	time.Sleep(5 * time.Millisecond)
	env.source.SetDownloadErr(10, nil)

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Process: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Process did not finish")
	}

	final, _ := env.store.GetItem(ctx, item.ID)
	if final.Status != store.StatusCompleted {
		t.Fatalf("status = %s, want completed", final.Status)
	}
	if final.RetryCount != 0 {
		t.Fatalf("disconnect consumed retry budget: %d", final.RetryCount)
	}
}

func TestProcessSkipsNonQueuedItem(t *testing.T) {
	env := newWorkerEnv(t)
	ctx := context.Background()
	item := env.seedQueuedItem(t, 10, "a.mp3", []byte("x"))

	item.Status = store.StatusCompleted
	item.StoragePath = "bucket-messages/100/10/a.mp3"
	if err := env.store.UpdateItem(ctx, item); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	if err := env.worker.Process(ctx, item.ID); err != nil {
		t.Fatalf("Process: %v", err)
	}
	if env.source.DownloadCalls != 0 {
		t.Fatal("completed item must not be downloaded again")
	}
}

func TestRebuildQueueRecoversCrashedItems(t *testing.T) {
	env := newWorkerEnv(t)
	ctx := context.Background()

	crashed := env.seedQueuedItem(t, 10, "a.mp3", []byte("x"))
	crashed.Status = store.StatusDownloading
	if err := env.store.UpdateItem(ctx, crashed); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	env.seedQueuedItem(t, 11, "b.mp3", []byte("y"))

	admitted, err := env.worker.RebuildQueue(ctx)
	if err != nil {
		t.Fatalf("RebuildQueue: %v", err)
	}
	if admitted != 2 {
		t.Fatalf("admitted = %d, want 2", admitted)
	}

	recovered, _ := env.store.GetItem(ctx, crashed.ID)
	if recovered.Status != store.StatusQueued {
		t.Fatalf("crashed item status = %s, want queued", recovered.Status)
	}
}

func TestRunDrainsApprovalsFromStore(t *testing.T) {
	env := newWorkerEnv(t)
	env.cfg.Workflow.QueuePollInterval = 1

	item := env.seedQueuedItem(t, 10, "a.mp3", []byte("payload"))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- env.worker.Run(ctx) }()

	deadline := time.After(10 * time.Second)
	for {
		current, err := env.store.GetItem(context.Background(), item.ID)
		if err != nil {
			t.Fatalf("GetItem: %v", err)
		}
		if current.Status == store.StatusCompleted {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("item never completed, status = %s", current.Status)
		case <-time.After(20 * time.Millisecond):
		}
	}

	cancel()
	if err := <-done; !errors.Is(err, context.Canceled) {
		t.Fatalf("Run returned %v", err)
	}

	if _, err := os.Stat(filepath.Join(env.cfg.Paths.StagingDir)); err != nil {
		t.Fatalf("staging dir missing: %v", err)
	}
}
