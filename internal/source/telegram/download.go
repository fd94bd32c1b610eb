package telegram

import (
	"context"
	"fmt"

	"github.com/gotd/td/telegram/downloader"
	"github.com/gotd/td/tg"

	"chanvault/internal/services"
	"chanvault/internal/source"
)

// DownloadAttachment refetches the message to obtain a fresh file reference,
// then streams the document into dest.
func (c *Client) DownloadAttachment(ctx context.Context, handle *source.Handle, messageID int64, dest string) error {
	res, err := c.api.ChannelsGetMessages(ctx, &tg.ChannelsGetMessagesRequest{
		Channel: &tg.InputChannel{ChannelID: handle.ID, AccessHash: handle.AccessHash},
		ID:      []tg.InputMessageClass{&tg.InputMessageID{ID: int(messageID)}},
	})
	if err != nil {
		return translate("channels.getMessages", err)
	}

	batch, err := messagesOf(res)
	if err != nil {
		return err
	}

	var doc *tg.Document
	for _, raw := range batch {
		msg, ok := raw.(*tg.Message)
		if !ok || int64(msg.ID) != messageID {
			continue
		}
		doc = documentOf(msg)
		break
	}
	if doc == nil {
		return fmt.Errorf("channels.getMessages: message %d has no document: %w", messageID, services.ErrNotFound)
	}

	if _, err := downloader.NewDownloader().
		Download(c.api, doc.AsInputDocumentFileLocation()).
		ToPath(ctx, dest); err != nil {
		return translate("download document", err)
	}
	return nil
}
