package notifications

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"chanvault/internal/config"
)

// Event is the webhook payload emitted when a file lands in the archive.
type Event struct {
	Event         string `json:"event"`
	FileID        int64  `json:"file_id"`
	FileName      string `json:"file_name"`
	FileType      string `json:"file_type"`
	MimeType      string `json:"mime_type"`
	FileSize      int64  `json:"file_size"`
	StoragePath   string `json:"storage_path"`
	StorageBucket string `json:"storage_bucket"`
	Category      string `json:"category"`
	ChannelID     int64  `json:"channel_id"`
	ChannelName   string `json:"channel_name"`
	ContentHash   string `json:"content_hash"`
}

// EventFileArchived is the event name sent for completed transfers.
const EventFileArchived = "file_archived"

// Service delivers outbound notifications.
type Service interface {
	// FileArchived announces a completed transfer. Failures are reported but
	// must never affect the item's archived state.
	FileArchived(ctx context.Context, event Event) error

	// Test sends a connectivity probe.
	Test(ctx context.Context) error
}

type webhookService struct {
	url    string
	client *http.Client
}

type noopService struct{}

// NewService builds the notification service. Without a webhook URL a no-op
// service is returned, so callers never need to nil-check.
func NewService(cfg *config.Config) Service {
	if cfg == nil || strings.TrimSpace(cfg.Notifications.WebhookURL) == "" {
		return noopService{}
	}
	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &webhookService{
		url:    strings.TrimSpace(cfg.Notifications.WebhookURL),
		client: &http.Client{Timeout: timeout},
	}
}

func (s *webhookService) FileArchived(ctx context.Context, event Event) error {
	if event.Event == "" {
		event.Event = EventFileArchived
	}
	return s.post(ctx, event)
}

func (s *webhookService) Test(ctx context.Context) error {
	return s.post(ctx, Event{Event: "test"})
}

func (s *webhookService) post(ctx context.Context, event Event) error {
	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build notification request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("send notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("notification rejected: %s", resp.Status)
	}
	return nil
}

func (noopService) FileArchived(context.Context, Event) error { return nil }
func (noopService) Test(context.Context) error                { return nil }
