package scanner

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"chanvault/internal/config"
	"chanvault/internal/logging"
	"chanvault/internal/services"
	"chanvault/internal/source"
	"chanvault/internal/store"
)

// Scanner walks monitored channels and records newly discovered attachments
// as pending transfer items.
type Scanner struct {
	cfg    *config.Config
	store  *store.Store
	client source.Client
	logger *slog.Logger
}

// Result summarizes one channel scan.
type Result struct {
	ChannelID  int64
	Examined   int
	Discovered int
	Watermark  int64
}

// New builds a scanner over the given source client.
func New(cfg *config.Config, st *store.Store, client source.Client, logger *slog.Logger) *Scanner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Scanner{
		cfg:    cfg,
		store:  st,
		client: client,
		logger: logging.WithComponent(logger, "scanner"),
	}
}

// Run scans all active channels on the configured interval until ctx is
// cancelled. An initial scan happens immediately.
func (s *Scanner) Run(ctx context.Context) error {
	interval := time.Duration(s.cfg.Scanner.Interval) * time.Second
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		if err := s.ScanAll(ctx); err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.Error("scan pass failed", logging.Error(err))
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// ScanAll scans every active channel once. A failing channel is logged and
// skipped; a rate limit suspends only the current channel, waiting out the
// backoff before moving on to the rest.
func (s *Scanner) ScanAll(ctx context.Context) error {
	channels, err := s.store.Channels(ctx, true)
	if err != nil {
		return services.Wrap(services.ErrTransient, "scanner", "list-channels", "", err)
	}

	for _, channel := range channels {
		result, err := s.ScanChannel(ctx, channel, s.cfg.Scanner.FullRescan)
		if err == nil {
			if result.Discovered > 0 {
				s.logger.Info("scan complete",
					logging.Int64(logging.FieldChannelID, channel.ID),
					logging.String(logging.FieldChannelName, channel.Name),
					logging.Int("examined", result.Examined),
					logging.Int("discovered", result.Discovered),
					logging.Int64("watermark", result.Watermark))
			}
			continue
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if wait, ok := source.AsRateLimit(err); ok {
			s.logger.Warn("scan rate limited",
				logging.Int64(logging.FieldChannelID, channel.ID),
				slog.Duration("wait", wait))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(wait):
			}
			continue
		}
		if IsSkippable(err) {
			s.logger.Warn("channel unavailable, skipping",
				logging.Int64(logging.FieldChannelID, channel.ID),
				logging.String(logging.FieldChannelName, channel.Name),
				logging.Error(err))
			continue
		}
		s.logger.Error("channel scan failed",
			logging.Int64(logging.FieldChannelID, channel.ID),
			logging.String(logging.FieldChannelName, channel.Name),
			logging.Error(err))
	}
	return nil
}

// ScanChannel examines one channel past its watermark. With full set the
// watermark is ignored and history is examined from the start; already-known
// messages dedupe against the (channel, message) uniqueness in the store.
func (s *Scanner) ScanChannel(ctx context.Context, channel *store.Channel, full bool) (Result, error) {
	ctx = services.WithChannelID(services.WithTask(ctx, "scan"), channel.ID)
	result := Result{ChannelID: channel.ID, Watermark: channel.LastScannedID}

	handle, err := s.client.ResolveChannel(ctx, channel.ID, channel.Handle)
	if err != nil {
		return result, fmt.Errorf("resolve channel %d: %w", channel.ID, err)
	}
	if handle.Username != "" && handle.Username != channel.Handle {
		if err := s.store.SetChannelHandle(ctx, channel.ID, handle.Username); err != nil {
			return result, err
		}
	}

	afterID := channel.LastScannedID
	if full {
		afterID = 0
	}

	messages, err := s.client.ListMessages(ctx, handle, afterID, s.cfg.Scanner.BatchLimit)
	if err != nil {
		return result, fmt.Errorf("list messages for channel %d: %w", channel.ID, err)
	}

	channelName := channel.Name
	if handle.Title != "" {
		channelName = handle.Title
	}

	maxID := channel.LastScannedID
	for _, msg := range messages {
		result.Examined++
		if msg.ID > maxID {
			maxID = msg.ID
		}

		if !msg.HasAttachment() {
			continue
		}
		fileType, ok := source.ClassifyMime(msg.Attachment.MimeType)
		if !ok {
			continue
		}
		item := &store.Item{
			ChannelID:   channel.ID,
			ChannelName: channelName,
			MessageID:   msg.ID,
			FileName:    msg.Attachment.FileName,
			FileType:    fileType,
			MimeType:    msg.Attachment.MimeType,
			FileSize:    msg.Attachment.Size,
			Category:    s.cfg.DefaultCategory(fileType),
		}
		inserted, err := s.store.InsertDiscovered(ctx, item)
		if err != nil {
			return result, fmt.Errorf("record discovery for message %d: %w", msg.ID, err)
		}
		if inserted {
			result.Discovered++
			s.logger.DebugContext(ctx, "attachment discovered",
				logging.Int64(logging.FieldItemID, item.ID),
				logging.Int64(logging.FieldMessageID, msg.ID),
				logging.String(logging.FieldFileName, item.FileName),
				logging.String(logging.FieldFileType, item.FileType))
		}
	}

	if maxID > channel.LastScannedID {
		if err := s.store.AdvanceWatermark(ctx, channel.ID, maxID); err != nil {
			return result, err
		}
		result.Watermark = maxID
	}
	return result, nil
}

// IsSkippable reports whether the scan error indicates a channel that should
// be skipped rather than retried, such as one the account can no longer read.
func IsSkippable(err error) bool {
	return errors.Is(err, services.ErrForbidden) || errors.Is(err, services.ErrNotFound)
}
