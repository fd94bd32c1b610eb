package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
)

// InsertDiscovered records a newly discovered attachment in pending state.
// The (channel_id, message_id) pair is unique; rediscovering a known message
// is a no-op and the method reports whether a row was actually inserted.
func (s *Store) InsertDiscovered(ctx context.Context, item *Item) (bool, error) {
	if item == nil {
		return false, errors.New("insert discovered: nil item")
	}
	ctx = ensureContext(ctx)
	now := nowString()
	status := item.Status
	if status == "" {
		status = StatusPending
	}

	res, err := s.execWithRetry(ctx, `
		INSERT INTO transfer_items (
			channel_id, channel_name, message_id, file_name, file_type,
			mime_type, file_size, category, status, retry_count, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 0, ?, ?)
		ON CONFLICT(channel_id, message_id) DO NOTHING`,
		item.ChannelID,
		nullableString(item.ChannelName),
		item.MessageID,
		item.FileName,
		item.FileType,
		nullableString(item.MimeType),
		item.FileSize,
		nullableString(item.Category),
		string(status),
		now, now)
	if err != nil {
		return false, fmt.Errorf("insert discovered item: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("insert discovered item: %w", err)
	}
	if affected == 0 {
		return false, nil
	}

	id, err := res.LastInsertId()
	if err != nil {
		return false, fmt.Errorf("insert discovered item: %w", err)
	}
	item.ID = id
	item.Status = status
	return true, nil
}

// GetItem fetches one transfer item by identifier.
func (s *Store) GetItem(ctx context.Context, id int64) (*Item, error) {
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM transfer_items WHERE id = ?", id)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get item %d: %w", id, err)
	}
	return item, nil
}

// UpdateItem persists the item's mutable fields.
func (s *Store) UpdateItem(ctx context.Context, item *Item) error {
	if item == nil {
		return errors.New("update item: nil item")
	}
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx, `
		UPDATE transfer_items SET
			channel_name = ?,
			file_name = ?,
			file_type = ?,
			mime_type = ?,
			file_size = ?,
			category = ?,
			status = ?,
			storage_path = ?,
			content_hash = ?,
			processing_status = ?,
			error_message = ?,
			retry_count = ?,
			updated_at = ?
		WHERE id = ?`,
		nullableString(item.ChannelName),
		item.FileName,
		item.FileType,
		nullableString(item.MimeType),
		item.FileSize,
		nullableString(item.Category),
		string(item.Status),
		nullableString(item.StoragePath),
		nullableString(item.ContentHash),
		nullableString(item.ProcessingStatus),
		nullableString(item.ErrorMessage),
		item.RetryCount,
		nowString(),
		item.ID)
	if err != nil {
		return fmt.Errorf("update item %d: %w", item.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update item %d: %w", item.ID, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// ItemsByStatus lists items in any of the given states, oldest update first
// so stalled work is picked up before fresh work.
func (s *Store) ItemsByStatus(ctx context.Context, statuses ...Status) ([]*Item, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	ctx = ensureContext(ctx)
	args := make([]any, 0, len(statuses))
	for _, status := range statuses {
		args = append(args, string(status))
	}
	query := "SELECT " + itemColumns + " FROM transfer_items WHERE status IN (" +
		makePlaceholders(len(statuses)) + ") ORDER BY updated_at ASC, id ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list items by status: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// AllItems lists every item, newest first, for operator inspection.
func (s *Store) AllItems(ctx context.Context) ([]*Item, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM transfer_items ORDER BY id DESC")
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []*Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// Approve releases a pending item into the transfer queue, optionally
// overriding its category. Only pending items can be approved.
func (s *Store) Approve(ctx context.Context, id int64, category string) (*Item, error) {
	ctx = ensureContext(ctx)
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status != StatusPending {
		return nil, fmt.Errorf("approve item %d: status is %s, want %s", id, item.Status, StatusPending)
	}
	if category = strings.TrimSpace(category); category != "" {
		item.Category = category
	}
	item.Status = StatusQueued
	item.ErrorMessage = ""
	if err := s.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// RetryReset returns a failed item to the queue. A failed item keeps its
// retry count so repeated failures still escalate; overriding a permanently
// failed item grants a fresh budget.
func (s *Store) RetryReset(ctx context.Context, id int64) (*Item, error) {
	ctx = ensureContext(ctx)
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Status != StatusFailed && item.Status != StatusFailedPermanent {
		return nil, fmt.Errorf("retry item %d: status is %s, not a failure state", id, item.Status)
	}
	if item.Status == StatusFailedPermanent {
		item.RetryCount = 0
	}
	item.Status = StatusQueued
	item.ErrorMessage = ""
	if err := s.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

// FindByHash returns a completed item sharing the content hash, excluding the
// given item. Used to detect duplicate payloads before upload.
func (s *Store) FindByHash(ctx context.Context, hash string, excludeID int64) (*Item, error) {
	if strings.TrimSpace(hash) == "" {
		return nil, nil
	}
	ctx = ensureContext(ctx)
	row := s.db.QueryRowContext(ctx,
		"SELECT "+itemColumns+" FROM transfer_items WHERE content_hash = ? AND status = ? AND id != ? ORDER BY id ASC LIMIT 1",
		hash, string(StatusCompleted), excludeID)
	item, err := scanItem(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find by hash: %w", err)
	}
	return item, nil
}
