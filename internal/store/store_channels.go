package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
)

const channelColumns = "id, name, handle, active, last_scanned_id, created_at, updated_at"

// UpsertChannel registers a channel for monitoring or reactivates and renames
// an existing registration. The scan watermark and stored handle of an
// existing channel are kept.
func (s *Store) UpsertChannel(ctx context.Context, id int64, name string) (*Channel, error) {
	ctx = ensureContext(ctx)
	now := nowString()
	_, err := s.execWithRetry(ctx, `
		INSERT INTO channels (id, name, active, last_scanned_id, created_at, updated_at)
		VALUES (?, ?, 1, 0, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, active = 1, updated_at = excluded.updated_at`,
		id, name, now, now)
	if err != nil {
		return nil, fmt.Errorf("upsert channel %d: %w", id, err)
	}
	return s.GetChannel(ctx, id)
}

// SetChannelHandle records the channel's public username so later resolution
// attempts can fall back to it.
func (s *Store) SetChannelHandle(ctx context.Context, id int64, handle string) error {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx,
		"UPDATE channels SET handle = ?, updated_at = ? WHERE id = ?",
		nullableString(handle), nowString(), id)
	if err != nil {
		return fmt.Errorf("set handle for channel %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("set handle for channel %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// GetChannel fetches one channel registration.
func (s *Store) GetChannel(ctx context.Context, id int64) (*Channel, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+channelColumns+" FROM channels WHERE id = ?", id)
	channel, err := scanChannel(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get channel %d: %w", id, err)
	}
	return channel, nil
}

// Channels lists registrations, optionally restricted to active ones, ordered
// by identifier for stable output.
func (s *Store) Channels(ctx context.Context, activeOnly bool) ([]*Channel, error) {
	ctx = ensureContext(ctx)
	query := "SELECT " + channelColumns + " FROM channels"
	if activeOnly {
		query += " WHERE active = 1"
	}
	query += " ORDER BY id"

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list channels: %w", err)
	}
	defer rows.Close()

	var channels []*Channel
	for rows.Next() {
		channel, err := scanChannel(rows)
		if err != nil {
			return nil, fmt.Errorf("scan channel: %w", err)
		}
		channels = append(channels, channel)
	}
	return channels, rows.Err()
}

// DeactivateChannel stops future scans of the channel without touching its
// already-archived items.
func (s *Store) DeactivateChannel(ctx context.Context, id int64) error {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx,
		"UPDATE channels SET active = 0, updated_at = ? WHERE id = ?", nowString(), id)
	if err != nil {
		return fmt.Errorf("deactivate channel %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("deactivate channel %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// AdvanceWatermark raises the channel's scan watermark to messageID. The
// watermark never moves backwards, so concurrent or repeated scans cannot
// shrink the examined range.
func (s *Store) AdvanceWatermark(ctx context.Context, channelID, messageID int64) error {
	ctx = ensureContext(ctx)
	_, err := s.execWithRetry(ctx, `
		UPDATE channels SET last_scanned_id = ?, updated_at = ?
		WHERE id = ? AND last_scanned_id < ?`,
		messageID, nowString(), channelID, messageID)
	if err != nil {
		return fmt.Errorf("advance watermark for channel %d: %w", channelID, err)
	}
	return nil
}

// ResetWatermark clears the scan watermark so the next scan re-examines the
// channel's full history.
func (s *Store) ResetWatermark(ctx context.Context, channelID int64) error {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx,
		"UPDATE channels SET last_scanned_id = 0, updated_at = ? WHERE id = ?", nowString(), channelID)
	if err != nil {
		return fmt.Errorf("reset watermark for channel %d: %w", channelID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reset watermark for channel %d: %w", channelID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
