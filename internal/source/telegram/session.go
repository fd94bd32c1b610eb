package telegram

import (
	"context"
	"errors"

	"github.com/gotd/td/session"

	"chanvault/internal/store"
)

// sessionStorage adapts the archive database to gotd's session.Storage so the
// login survives daemon restarts without a session file on disk.
type sessionStorage struct {
	store *store.Store
	name  string
}

func newSessionStorage(st *store.Store, name string) *sessionStorage {
	return &sessionStorage{store: st, name: name}
}

func (s *sessionStorage) LoadSession(ctx context.Context) ([]byte, error) {
	data, err := s.store.LoadSession(ctx, s.name)
	if errors.Is(err, store.ErrSessionNotFound) {
		return nil, session.ErrNotFound
	}
	return data, err
}

func (s *sessionStorage) StoreSession(ctx context.Context, data []byte) error {
	return s.store.SaveSession(ctx, s.name, data)
}
