package store

import (
	"strings"
	"time"
)

// Status represents the lifecycle of a transfer item.
type Status string

const (
	StatusPending         Status = "pending"
	StatusQueued          Status = "queued"
	StatusDownloading     Status = "downloading"
	StatusUploading       Status = "uploading"
	StatusCompleted       Status = "completed"
	StatusFailed          Status = "failed"
	StatusFailedPermanent Status = "failed_permanent"
)

var allStatuses = []Status{
	StatusPending,
	StatusQueued,
	StatusDownloading,
	StatusUploading,
	StatusCompleted,
	StatusFailed,
	StatusFailedPermanent,
}

var statusSet = func() map[Status]struct{} {
	set := make(map[Status]struct{}, len(allStatuses))
	for _, status := range allStatuses {
		set[status] = struct{}{}
	}
	return set
}()

// inFlightStatuses are the states a crashed worker can leave behind. Startup
// recovery resets them to queued.
var inFlightStatuses = []Status{StatusDownloading, StatusUploading}

// ParseStatus normalizes user input into a known status.
func ParseStatus(value string) (Status, bool) {
	status := Status(strings.ToLower(strings.TrimSpace(value)))
	_, ok := statusSet[status]
	return status, ok
}

// Terminal reports whether the status ends the item's lifecycle.
func (s Status) Terminal() bool {
	return s == StatusCompleted || s == StatusFailedPermanent
}

// String returns the status as stored in the database.
func (s Status) String() string { return string(s) }

// Channel is a monitored source channel. Handle is the public username
// learned on resolution, kept as the last-resort lookup key when the numeric
// identifier alone stops resolving.
type Channel struct {
	ID            int64
	Name          string
	Handle        string
	Active        bool
	LastScannedID int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Item represents one discovered attachment persisted in SQLite.
type Item struct {
	ID               int64
	ChannelID        int64
	ChannelName      string
	MessageID        int64
	FileName         string
	FileType         string
	MimeType         string
	FileSize         int64
	Category         string
	Status           Status
	StoragePath      string
	ContentHash      string
	ProcessingStatus string
	ErrorMessage     string
	RetryCount       int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// Stats aggregates item counts per lifecycle state.
type Stats struct {
	Total    int
	ByStatus map[Status]int
}
