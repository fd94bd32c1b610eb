package store

import (
	"context"
	"fmt"
)

// ResetInFlight returns items stranded in transfer states by a crashed or
// stopped daemon back to queued. Called once during startup before the worker
// begins draining the queue.
func (s *Store) ResetInFlight(ctx context.Context) (int64, error) {
	ctx = ensureContext(ctx)
	args := make([]any, 0, len(inFlightStatuses)+2)
	args = append(args, string(StatusQueued), nowString())
	for _, status := range inFlightStatuses {
		args = append(args, string(status))
	}
	res, err := s.execWithRetry(ctx,
		"UPDATE transfer_items SET status = ?, processing_status = NULL, updated_at = ? WHERE status IN ("+
			makePlaceholders(len(inFlightStatuses))+")", args...)
	if err != nil {
		return 0, fmt.Errorf("reset in-flight items: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("reset in-flight items: %w", err)
	}
	return affected, nil
}

// CompletedItems lists archived items for reconciliation, oldest first.
func (s *Store) CompletedItems(ctx context.Context) ([]*Item, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT "+itemColumns+" FROM transfer_items WHERE status = ? ORDER BY id ASC",
		string(StatusCompleted))
	if err != nil {
		return nil, fmt.Errorf("list completed items: %w", err)
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

// RevertToPending moves a completed item back to pending after its archived
// object went missing. The stored location and hash are cleared so the next
// transfer starts clean; the condition on status makes the revert a no-op if
// the item changed state concurrently.
func (s *Store) RevertToPending(ctx context.Context, id int64, reason string) (bool, error) {
	ctx = ensureContext(ctx)
	res, err := s.execWithRetry(ctx, `
		UPDATE transfer_items SET
			status = ?,
			storage_path = NULL,
			content_hash = NULL,
			processing_status = NULL,
			error_message = ?,
			retry_count = 0,
			updated_at = ?
		WHERE id = ? AND status = ?`,
		string(StatusPending), nullableString(reason), nowString(), id, string(StatusCompleted))
	if err != nil {
		return false, fmt.Errorf("revert item %d: %w", id, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("revert item %d: %w", id, err)
	}
	return affected > 0, nil
}

// ItemStats aggregates item counts per lifecycle state.
func (s *Store) ItemStats(ctx context.Context) (*Stats, error) {
	ctx = ensureContext(ctx)
	rows, err := s.db.QueryContext(ctx,
		"SELECT status, COUNT(1) FROM transfer_items GROUP BY status")
	if err != nil {
		return nil, fmt.Errorf("item stats: %w", err)
	}
	defer rows.Close()

	stats := &Stats{ByStatus: make(map[Status]int, len(allStatuses))}
	for rows.Next() {
		var (
			statusStr string
			count     int
		)
		if err := rows.Scan(&statusStr, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats.ByStatus[Status(statusStr)] = count
		stats.Total += count
	}
	return stats, rows.Err()
}
