package workflow_test

import (
	"context"
	"testing"
	"time"

	"chanvault/internal/source"
	"chanvault/internal/store"
	"chanvault/internal/testsupport"
	"chanvault/internal/workflow"
)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.After(15 * time.Second)
	for {
		if cond() {
			return
		}
		select {
		case <-deadline:
			t.Fatalf("timed out waiting for %s", what)
		case <-time.After(20 * time.Millisecond):
		}
	}
}

func TestManagerArchivesDiscoveredFile(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Scanner.Interval = 1
	cfg.Workflow.QueuePollInterval = 1
	cfg.Reconciler.Interval = 1

	st := testsupport.MustOpenStore(t, cfg)
	src := testsupport.NewFakeSource()
	objects := testsupport.NewMemoryObjectStore()
	notifier := &testsupport.CaptureNotifier{}
	ctx := context.Background()

	testsupport.SeedChannel(t, st, 100, "feed")
	src.AddChannel(100, "Archive Feed")
	src.AddMessage(100, source.Message{
		ID:         10,
		Attachment: source.Attachment{FileName: "lecture.mp3", MimeType: "audio/mpeg", Size: 11},
	}, []byte("audio-bytes"))

	manager := workflow.NewManager(cfg, st, src, objects, notifier, nil)
	if err := manager.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	if err := manager.Start(ctx); err == nil {
		t.Fatal("second Start must fail")
	}

	// Discovery lands the item in pending with the default audio category.
	var itemID int64
	waitFor(t, "discovery", func() bool {
		pending, err := st.ItemsByStatus(ctx, store.StatusPending)
		if err != nil || len(pending) == 0 {
			return false
		}
		itemID = pending[0].ID
		return true
	})

	discovered, err := st.GetItem(ctx, itemID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if discovered.Category != cfg.Categories.Audio {
		t.Fatalf("category = %q, want default audio category", discovered.Category)
	}

	// Approval releases it to the worker.
	if _, err := st.Approve(ctx, itemID, ""); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	waitFor(t, "transfer", func() bool {
		item, err := st.GetItem(ctx, itemID)
		return err == nil && item.Status == store.StatusCompleted
	})

	done, _ := st.GetItem(ctx, itemID)
	wantPath := "bucket-messages/100/10/lecture.mp3"
	if done.StoragePath != wantPath {
		t.Fatalf("storage path = %q, want %q", done.StoragePath, wantPath)
	}
	if data, ok := objects.Object("bucket-messages", "100/10/lecture.mp3"); !ok || string(data) != "audio-bytes" {
		t.Fatalf("archived object = %q, %v", data, ok)
	}
	if events := notifier.Archived(); len(events) != 1 || events[0].FileID != itemID {
		t.Fatalf("notifications = %+v", events)
	}

	channel, err := st.GetChannel(ctx, 100)
	if err != nil {
		t.Fatalf("GetChannel: %v", err)
	}
	if channel.LastScannedID != 10 {
		t.Fatalf("watermark = %d, want 10", channel.LastScannedID)
	}

	// The reconciler sees the object in place and leaves the item alone.
	time.Sleep(1200 * time.Millisecond)
	settled, _ := st.GetItem(ctx, itemID)
	if settled.Status != store.StatusCompleted {
		t.Fatalf("status after reconciliation = %s", settled.Status)
	}

	manager.Stop()
	if manager.Running() {
		t.Fatal("manager still running after Stop")
	}
}

func TestManagerRevertsAndRearchivesMissingObject(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	cfg.Scanner.Interval = 1
	cfg.Workflow.QueuePollInterval = 1
	cfg.Reconciler.Interval = 1

	st := testsupport.MustOpenStore(t, cfg)
	src := testsupport.NewFakeSource()
	objects := testsupport.NewMemoryObjectStore()
	notifier := &testsupport.CaptureNotifier{}
	ctx := context.Background()

	src.AddChannel(100, "feed")
	src.AddMessage(100, source.Message{
		ID:         10,
		Attachment: source.Attachment{FileName: "doc.pdf", MimeType: "application/pdf", Size: 9},
	}, []byte("pdf-bytes"))

	item := testsupport.SeedItem(t, st, &store.Item{
		ChannelID: 100,
		MessageID: 10,
		FileName:  "doc.pdf",
		FileType:  "pdf",
		MimeType:  "application/pdf",
		Category:  "documents",
	})
	item.Status = store.StatusCompleted
	item.StoragePath = "bucket-documents/100/10/doc.pdf"
	item.ContentHash = "stale"
	if err := st.UpdateItem(ctx, item); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	manager := workflow.NewManager(cfg, st, src, objects, notifier, nil)
	if err := manager.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer manager.Stop()

	// The object is gone, so the reconciler reverts the item to pending.
	waitFor(t, "revert", func() bool {
		current, err := st.GetItem(ctx, item.ID)
		return err == nil && current.Status == store.StatusPending
	})

	// Re-approval drives it through the pipeline again.
	if _, err := st.Approve(ctx, item.ID, ""); err != nil {
		t.Fatalf("Approve: %v", err)
	}
	waitFor(t, "re-archive", func() bool {
		current, err := st.GetItem(ctx, item.ID)
		return err == nil && current.Status == store.StatusCompleted
	})

	if _, ok := objects.Object("bucket-documents", "100/10/doc.pdf"); !ok {
		t.Fatal("object not restored")
	}
}
