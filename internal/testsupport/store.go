package testsupport

import (
	"context"
	"testing"

	"chanvault/internal/config"
	"chanvault/internal/store"
)

// MustOpenStore opens a store.Store for tests and registers cleanup.
func MustOpenStore(t testing.TB, cfg *config.Config) *store.Store {
	t.Helper()

	st, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("store.Open: %v", err)
	}
	t.Cleanup(func() {
		st.Close()
	})
	return st
}

// SeedChannel registers a channel for tests using the provided store.
func SeedChannel(t testing.TB, st *store.Store, id int64, name string) *store.Channel {
	t.Helper()

	channel, err := st.UpsertChannel(context.Background(), id, name)
	if err != nil {
		t.Fatalf("store.UpsertChannel: %v", err)
	}
	return channel
}

// SeedItem inserts a discovered item for tests using the provided store.
func SeedItem(t testing.TB, st *store.Store, item *store.Item) *store.Item {
	t.Helper()

	inserted, err := st.InsertDiscovered(context.Background(), item)
	if err != nil {
		t.Fatalf("store.InsertDiscovered: %v", err)
	}
	if !inserted {
		t.Fatalf("item for channel %d message %d already present", item.ChannelID, item.MessageID)
	}
	return item
}
