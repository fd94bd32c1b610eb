package source

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Handle identifies a resolved channel, including the access credential the
// transport needs for follow-up calls.
type Handle struct {
	ID         int64
	AccessHash int64
	Title      string
	Username   string
}

// Attachment describes the binary payload attached to a message.
type Attachment struct {
	FileName string
	MimeType string
	Size     int64
}

// Message is one examined channel message. Attachment is the zero value when
// the message carries no document.
type Message struct {
	ID         int64
	Date       time.Time
	Attachment Attachment
}

// HasAttachment reports whether the message carries a document.
func (m Message) HasAttachment() bool {
	return m.Attachment.MimeType != "" || m.Attachment.FileName != ""
}

// Client is the read-side of the message source. Implementations talk to the
// real network; tests substitute fakes.
type Client interface {
	// ResolveChannel turns a numeric channel identifier into a usable handle.
	// The username hint, when non-empty, is the channel's public username and
	// lets implementations fall back to a by-name lookup if the identifier
	// alone cannot be resolved.
	ResolveChannel(ctx context.Context, id int64, username string) (*Handle, error)

	// ListMessages returns every message whose ID is strictly greater than
	// afterID, in ascending ID order, including messages without attachments
	// so callers can account for the history they examined. At most limit
	// messages are returned; limit <= 0 means no cap.
	ListMessages(ctx context.Context, handle *Handle, afterID int64, limit int) ([]Message, error)

	// DownloadAttachment fetches the attachment of the given message into the
	// local file at dest.
	DownloadAttachment(ctx context.Context, handle *Handle, messageID int64, dest string) error
}

// RateLimitError reports a server-imposed backoff. Callers must wait at least
// Wait before retrying the operation.
type RateLimitError struct {
	Wait time.Duration
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: retry after %s", e.Wait)
}

// AsRateLimit extracts the backoff duration when err is a rate limit.
func AsRateLimit(err error) (time.Duration, bool) {
	var rl *RateLimitError
	if errors.As(err, &rl) {
		return rl.Wait, true
	}
	return 0, false
}
