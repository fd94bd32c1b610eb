package store

import (
	"database/sql"
	"errors"
	"time"
)

const itemColumns = "id, channel_id, channel_name, message_id, file_name, file_type, mime_type, file_size, category, status, storage_path, content_hash, processing_status, error_message, retry_count, created_at, updated_at"

func scanItem(scanner interface{ Scan(dest ...any) error }) (*Item, error) {
	var (
		id               int64
		channelID        int64
		channelName      sql.NullString
		messageID        int64
		fileName         string
		fileType         string
		mimeType         sql.NullString
		fileSize         sql.NullInt64
		category         sql.NullString
		statusStr        string
		storagePath      sql.NullString
		contentHash      sql.NullString
		processingStatus sql.NullString
		errorMessage     sql.NullString
		retryCount       sql.NullInt64
		createdRaw       sql.NullString
		updatedRaw       sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&channelID,
		&channelName,
		&messageID,
		&fileName,
		&fileType,
		&mimeType,
		&fileSize,
		&category,
		&statusStr,
		&storagePath,
		&contentHash,
		&processingStatus,
		&errorMessage,
		&retryCount,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	item := &Item{
		ID:               id,
		ChannelID:        channelID,
		ChannelName:      channelName.String,
		MessageID:        messageID,
		FileName:         fileName,
		FileType:         fileType,
		MimeType:         mimeType.String,
		FileSize:         fileSize.Int64,
		Category:         category.String,
		Status:           Status(statusStr),
		StoragePath:      storagePath.String,
		ContentHash:      contentHash.String,
		ProcessingStatus: processingStatus.String,
		ErrorMessage:     errorMessage.String,
		RetryCount:       int(retryCount.Int64),
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		item.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		item.UpdatedAt = updated
	}
	return item, nil
}

func scanChannel(scanner interface{ Scan(dest ...any) error }) (*Channel, error) {
	var (
		id            int64
		name          string
		handle        sql.NullString
		active        int64
		lastScannedID int64
		createdRaw    sql.NullString
		updatedRaw    sql.NullString
	)
	if err := scanner.Scan(&id, &name, &handle, &active, &lastScannedID, &createdRaw, &updatedRaw); err != nil {
		return nil, err
	}
	channel := &Channel{
		ID:            id,
		Name:          name,
		Handle:        handle.String,
		Active:        active != 0,
		LastScannedID: lastScannedID,
	}
	if created, err := parseTimeString(createdRaw.String); err == nil {
		channel.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		channel.UpdatedAt = updated
	}
	return channel, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, errors.New("empty")
	}
	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", value)
}

func nowString() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

func makePlaceholders(count int) string {
	if count <= 0 {
		return ""
	}
	placeholders := make([]byte, 0, count*2)
	for i := 0; i < count; i++ {
		if i > 0 {
			placeholders = append(placeholders, ',')
		}
		placeholders = append(placeholders, '?')
	}
	return string(placeholders)
}
