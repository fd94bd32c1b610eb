package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

// ErrSessionNotFound is returned when no session blob has been saved under
// the requested name.
var ErrSessionNotFound = errors.New("store: session not found")

// LoadSession fetches the serialized Telegram session saved under name.
func (s *Store) LoadSession(ctx context.Context, name string) ([]byte, error) {
	ctx = ensureContext(ctx)
	var data []byte
	err := s.db.QueryRowContext(ctx,
		"SELECT data FROM sessions WHERE name = ?", name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", name, err)
	}
	return data, nil
}

// SaveSession stores the serialized Telegram session under name, replacing
// any previous blob.
func (s *Store) SaveSession(ctx context.Context, name string, data []byte) error {
	ctx = ensureContext(ctx)
	_, err := s.execWithRetry(ctx, `
		INSERT INTO sessions (name, data, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET data = excluded.data, updated_at = excluded.updated_at`,
		name, data, nowString())
	if err != nil {
		return fmt.Errorf("save session %q: %w", name, err)
	}
	return nil
}

// DeleteSession removes the session blob saved under name. Deleting a missing
// session is not an error.
func (s *Store) DeleteSession(ctx context.Context, name string) error {
	ctx = ensureContext(ctx)
	if _, err := s.execWithRetry(ctx, "DELETE FROM sessions WHERE name = ?", name); err != nil {
		return fmt.Errorf("delete session %q: %w", name, err)
	}
	return nil
}
