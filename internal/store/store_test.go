package store_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"chanvault/internal/store"
	"chanvault/internal/testsupport"
)

func TestOpenCreatesSchema(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)

	ctx := context.Background()
	channel := testsupport.SeedChannel(t, st, 100, "archive-feed")
	if !channel.Active || channel.LastScannedID != 0 {
		t.Fatalf("unexpected fresh channel: %+v", channel)
	}

	item := testsupport.SeedItem(t, st, &store.Item{
		ChannelID:   100,
		ChannelName: "archive-feed",
		MessageID:   10,
		FileName:    "lecture.mp3",
		FileType:    "audio",
		MimeType:    "audio/mpeg",
		FileSize:    2048,
		Category:    "messages",
	})
	if item.ID == 0 {
		t.Fatal("expected item ID to be assigned")
	}

	fetched, err := st.GetItem(ctx, item.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if fetched.Status != store.StatusPending {
		t.Fatalf("fresh item status = %s, want pending", fetched.Status)
	}
	if fetched.FileName != "lecture.mp3" || fetched.Category != "messages" {
		t.Fatalf("unexpected item: %+v", fetched)
	}
}

func TestInsertDiscoveredIgnoresDuplicates(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	first := &store.Item{ChannelID: 1, MessageID: 5, FileName: "a.pdf", FileType: "pdf"}
	if inserted, err := st.InsertDiscovered(ctx, first); err != nil || !inserted {
		t.Fatalf("first insert: inserted=%v err=%v", inserted, err)
	}

	dup := &store.Item{ChannelID: 1, MessageID: 5, FileName: "a-renamed.pdf", FileType: "pdf"}
	inserted, err := st.InsertDiscovered(ctx, dup)
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if inserted {
		t.Fatal("duplicate (channel, message) pair must not insert")
	}

	existing, err := st.GetItem(ctx, first.ID)
	if err != nil {
		t.Fatalf("GetItem: %v", err)
	}
	if existing.FileName != "a.pdf" {
		t.Fatalf("original row mutated: %+v", existing)
	}
}

func TestWatermarkNeverMovesBackwards(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedChannel(t, st, 7, "feed")
	if err := st.AdvanceWatermark(ctx, 7, 50); err != nil {
		t.Fatalf("AdvanceWatermark: %v", err)
	}
	if err := st.AdvanceWatermark(ctx, 7, 20); err != nil {
		t.Fatalf("AdvanceWatermark lower: %v", err)
	}

	channel, err := st.GetChannel(ctx, 7)
	if err != nil {
		t.Fatalf("GetChannel: %v", err)
	}
	if channel.LastScannedID != 50 {
		t.Fatalf("watermark = %d, want 50", channel.LastScannedID)
	}

	if err := st.ResetWatermark(ctx, 7); err != nil {
		t.Fatalf("ResetWatermark: %v", err)
	}
	channel, _ = st.GetChannel(ctx, 7)
	if channel.LastScannedID != 0 {
		t.Fatalf("watermark after reset = %d, want 0", channel.LastScannedID)
	}
}

func TestUpsertChannelKeepsWatermark(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedChannel(t, st, 9, "old-name")
	if err := st.AdvanceWatermark(ctx, 9, 33); err != nil {
		t.Fatalf("AdvanceWatermark: %v", err)
	}
	if err := st.DeactivateChannel(ctx, 9); err != nil {
		t.Fatalf("DeactivateChannel: %v", err)
	}

	channel, err := st.UpsertChannel(ctx, 9, "new-name")
	if err != nil {
		t.Fatalf("UpsertChannel: %v", err)
	}
	if channel.Name != "new-name" || !channel.Active {
		t.Fatalf("re-registration should rename and reactivate: %+v", channel)
	}
	if channel.LastScannedID != 33 {
		t.Fatalf("re-registration must keep watermark, got %d", channel.LastScannedID)
	}
}

func TestChannelHandleSurvivesReRegistration(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedChannel(t, st, 11, "Archive Feed")

	if err := st.SetChannelHandle(ctx, 11, "archivefeed"); err != nil {
		t.Fatalf("SetChannelHandle: %v", err)
	}
	channel, err := st.GetChannel(ctx, 11)
	if err != nil {
		t.Fatalf("GetChannel: %v", err)
	}
	if channel.Handle != "archivefeed" {
		t.Fatalf("handle = %q, want archivefeed", channel.Handle)
	}

	// Re-registering updates the display name but must not discard the
	// learned username.
	channel, err = st.UpsertChannel(ctx, 11, "Archive Feed (renamed)")
	if err != nil {
		t.Fatalf("UpsertChannel: %v", err)
	}
	if channel.Handle != "archivefeed" {
		t.Fatalf("handle after upsert = %q, want archivefeed", channel.Handle)
	}

	if err := st.SetChannelHandle(ctx, 404, "ghost"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown channel, got %v", err)
	}
}

func TestChannelsActiveOnly(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	testsupport.SeedChannel(t, st, 1, "one")
	testsupport.SeedChannel(t, st, 2, "two")
	if err := st.DeactivateChannel(ctx, 2); err != nil {
		t.Fatalf("DeactivateChannel: %v", err)
	}

	active, err := st.Channels(ctx, true)
	if err != nil {
		t.Fatalf("Channels: %v", err)
	}
	if len(active) != 1 || active[0].ID != 1 {
		t.Fatalf("active channels = %+v", active)
	}

	all, err := st.Channels(ctx, false)
	if err != nil {
		t.Fatalf("Channels all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(all))
	}
}

func TestApproveRequiresPending(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.SeedItem(t, st, &store.Item{
		ChannelID: 1, MessageID: 1, FileName: "talk.mp3", FileType: "audio", Category: "messages",
	})

	approved, err := st.Approve(ctx, item.ID, "special")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if approved.Status != store.StatusQueued || approved.Category != "special" {
		t.Fatalf("approved item = %+v", approved)
	}

	if _, err := st.Approve(ctx, item.ID, ""); err == nil {
		t.Fatal("approving a queued item must fail")
	}
}

func TestRetryResetRequiresFailure(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.SeedItem(t, st, &store.Item{
		ChannelID: 1, MessageID: 2, FileName: "doc.pdf", FileType: "pdf",
	})

	if _, err := st.RetryReset(ctx, item.ID); err == nil {
		t.Fatal("retrying a pending item must fail")
	}

	item.Status = store.StatusFailed
	item.ErrorMessage = "upload timeout"
	item.RetryCount = 2
	if err := st.UpdateItem(ctx, item); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	reset, err := st.RetryReset(ctx, item.ID)
	if err != nil {
		t.Fatalf("RetryReset: %v", err)
	}
	if reset.Status != store.StatusQueued || reset.RetryCount != 2 || reset.ErrorMessage != "" {
		t.Fatalf("reset item = %+v", reset)
	}

	reset.Status = store.StatusFailedPermanent
	reset.RetryCount = 3
	if err := st.UpdateItem(ctx, reset); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}
	override, err := st.RetryReset(ctx, reset.ID)
	if err != nil {
		t.Fatalf("RetryReset permanent: %v", err)
	}
	if override.Status != store.StatusQueued || override.RetryCount != 0 {
		t.Fatalf("override item = %+v", override)
	}
}

func TestResetInFlight(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	downloading := testsupport.SeedItem(t, st, &store.Item{ChannelID: 1, MessageID: 1, FileName: "a.mp3", FileType: "audio"})
	uploading := testsupport.SeedItem(t, st, &store.Item{ChannelID: 1, MessageID: 2, FileName: "b.mp3", FileType: "audio"})
	done := testsupport.SeedItem(t, st, &store.Item{ChannelID: 1, MessageID: 3, FileName: "c.mp3", FileType: "audio"})

	setStatus := func(item *store.Item, status store.Status) {
		item.Status = status
		if err := st.UpdateItem(ctx, item); err != nil {
			t.Fatalf("UpdateItem: %v", err)
		}
	}
	setStatus(downloading, store.StatusDownloading)
	setStatus(uploading, store.StatusUploading)
	setStatus(done, store.StatusCompleted)

	reset, err := st.ResetInFlight(ctx)
	if err != nil {
		t.Fatalf("ResetInFlight: %v", err)
	}
	if reset != 2 {
		t.Fatalf("reset %d items, want 2", reset)
	}

	queued, err := st.ItemsByStatus(ctx, store.StatusQueued)
	if err != nil {
		t.Fatalf("ItemsByStatus: %v", err)
	}
	if len(queued) != 2 {
		t.Fatalf("queued = %d items, want 2", len(queued))
	}
	completed, _ := st.GetItem(ctx, done.ID)
	if completed.Status != store.StatusCompleted {
		t.Fatalf("completed item disturbed: %+v", completed)
	}
}

func TestFindByHashExcludesSelfAndNonCompleted(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	original := testsupport.SeedItem(t, st, &store.Item{ChannelID: 1, MessageID: 1, FileName: "a.pdf", FileType: "pdf"})
	original.Status = store.StatusCompleted
	original.ContentHash = "deadbeef"
	original.StoragePath = "bucket-documents/1/1/a.pdf"
	if err := st.UpdateItem(ctx, original); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	candidate := testsupport.SeedItem(t, st, &store.Item{ChannelID: 1, MessageID: 2, FileName: "b.pdf", FileType: "pdf"})

	match, err := st.FindByHash(ctx, "deadbeef", candidate.ID)
	if err != nil {
		t.Fatalf("FindByHash: %v", err)
	}
	if match == nil || match.ID != original.ID {
		t.Fatalf("expected match on original, got %+v", match)
	}

	if self, _ := st.FindByHash(ctx, "deadbeef", original.ID); self != nil {
		t.Fatalf("item must not match itself: %+v", self)
	}
	if none, _ := st.FindByHash(ctx, "cafef00d", candidate.ID); none != nil {
		t.Fatalf("unexpected match: %+v", none)
	}
}

func TestRevertToPendingIsConditional(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.SeedItem(t, st, &store.Item{ChannelID: 1, MessageID: 1, FileName: "a.mp3", FileType: "audio"})
	item.Status = store.StatusCompleted
	item.StoragePath = "bucket-messages/1/1/a.mp3"
	item.ContentHash = "deadbeef"
	if err := st.UpdateItem(ctx, item); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	reverted, err := st.RevertToPending(ctx, item.ID, "archived object missing")
	if err != nil {
		t.Fatalf("RevertToPending: %v", err)
	}
	if !reverted {
		t.Fatal("expected revert to apply")
	}

	fresh, _ := st.GetItem(ctx, item.ID)
	if fresh.Status != store.StatusPending || fresh.StoragePath != "" || fresh.ContentHash != "" {
		t.Fatalf("reverted item = %+v", fresh)
	}

	again, err := st.RevertToPending(ctx, item.ID, "noop")
	if err != nil {
		t.Fatalf("RevertToPending again: %v", err)
	}
	if again {
		t.Fatal("revert of a non-completed item must be a no-op")
	}
}

func TestRevertRacesRequeueWithoutCorruption(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	item := testsupport.SeedItem(t, st, &store.Item{ChannelID: 1, MessageID: 1, FileName: "a.mp3", FileType: "audio"})

	// A reverter and a worker finishing a transfer may land on the same item
	// in the same instant. The revert is predicated on completed status, so
	// whichever write lands last leaves a coherent row: either a completed
	// item with its storage path, or a pending item with none.
	for i := 0; i < 25; i++ {
		item.Status = store.StatusCompleted
		item.StoragePath = "bucket-messages/1/1/a.mp3"
		item.ContentHash = "deadbeef"
		if err := st.UpdateItem(ctx, item); err != nil {
			t.Fatalf("UpdateItem setup: %v", err)
		}

		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			if _, err := st.RevertToPending(ctx, item.ID, "archived object missing"); err != nil {
				t.Errorf("RevertToPending: %v", err)
			}
		}()
		go func() {
			defer wg.Done()
			rewrite := *item
			rewrite.Status = store.StatusCompleted
			rewrite.StoragePath = "bucket-messages/1/1/a.mp3"
			rewrite.ContentHash = "deadbeef"
			if err := st.UpdateItem(ctx, &rewrite); err != nil {
				t.Errorf("UpdateItem: %v", err)
			}
		}()
		wg.Wait()

		fresh, err := st.GetItem(ctx, item.ID)
		if err != nil {
			t.Fatalf("GetItem: %v", err)
		}
		switch fresh.Status {
		case store.StatusCompleted:
			if fresh.StoragePath == "" {
				t.Fatalf("completed item lost its storage path: %+v", fresh)
			}
		case store.StatusPending:
			if fresh.StoragePath != "" || fresh.ContentHash != "" {
				t.Fatalf("reverted item kept stale storage state: %+v", fresh)
			}
		default:
			t.Fatalf("unexpected status after race: %+v", fresh)
		}
	}
}

func TestSessionRoundTrip(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	if _, err := st.LoadSession(ctx, "primary"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	if err := st.SaveSession(ctx, "primary", []byte("blob-1")); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	if err := st.SaveSession(ctx, "primary", []byte("blob-2")); err != nil {
		t.Fatalf("SaveSession overwrite: %v", err)
	}

	data, err := st.LoadSession(ctx, "primary")
	if err != nil {
		t.Fatalf("LoadSession: %v", err)
	}
	if string(data) != "blob-2" {
		t.Fatalf("session data = %q, want blob-2", data)
	}

	if err := st.DeleteSession(ctx, "primary"); err != nil {
		t.Fatalf("DeleteSession: %v", err)
	}
	if _, err := st.LoadSession(ctx, "primary"); !errors.Is(err, store.ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestItemStats(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	ctx := context.Background()

	a := testsupport.SeedItem(t, st, &store.Item{ChannelID: 1, MessageID: 1, FileName: "a.mp3", FileType: "audio"})
	testsupport.SeedItem(t, st, &store.Item{ChannelID: 1, MessageID: 2, FileName: "b.mp3", FileType: "audio"})
	a.Status = store.StatusCompleted
	if err := st.UpdateItem(ctx, a); err != nil {
		t.Fatalf("UpdateItem: %v", err)
	}

	stats, err := st.ItemStats(ctx)
	if err != nil {
		t.Fatalf("ItemStats: %v", err)
	}
	if stats.Total != 2 || stats.ByStatus[store.StatusCompleted] != 1 || stats.ByStatus[store.StatusPending] != 1 {
		t.Fatalf("stats = %+v", stats)
	}
}

func TestParseStatus(t *testing.T) {
	if status, ok := store.ParseStatus(" Failed_Permanent "); !ok || status != store.StatusFailedPermanent {
		t.Fatalf("ParseStatus = %s, %v", status, ok)
	}
	if _, ok := store.ParseStatus("bogus"); ok {
		t.Fatal("bogus status must not parse")
	}
}
