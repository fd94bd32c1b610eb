package telegram

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/gotd/td/tg"

	"chanvault/internal/source"
)

const historyPageSize = 100

// ListMessages pages the channel history backwards from the newest message
// until it reaches afterID and returns every message in ascending ID order.
// Messages without a document come back bare, so callers can still advance
// their watermark past text-only traffic.
func (c *Client) ListMessages(ctx context.Context, handle *source.Handle, afterID int64, limit int) ([]source.Message, error) {
	peer := &tg.InputPeerChannel{ChannelID: handle.ID, AccessHash: handle.AccessHash}

	var collected []source.Message
	offsetID := 0
	for {
		res, err := c.api.MessagesGetHistory(ctx, &tg.MessagesGetHistoryRequest{
			Peer:     peer,
			OffsetID: offsetID,
			MinID:    int(afterID),
			Limit:    historyPageSize,
		})
		if err != nil {
			return nil, translate("messages.getHistory", err)
		}

		batch, err := messagesOf(res)
		if err != nil {
			return nil, err
		}
		if len(batch) == 0 {
			break
		}

		lowest := 0
		for _, raw := range batch {
			id := raw.GetID()
			if lowest == 0 || id < lowest {
				lowest = id
			}
			msg, ok := raw.(*tg.Message)
			if !ok || int64(msg.ID) <= afterID {
				continue
			}
			collected = append(collected, convertMessage(msg))
		}

		if int64(lowest) <= afterID+1 || len(batch) < historyPageSize {
			break
		}
		offsetID = lowest
	}

	sort.Slice(collected, func(i, j int) bool { return collected[i].ID < collected[j].ID })
	if limit > 0 && len(collected) > limit {
		collected = collected[:limit]
	}
	return collected, nil
}

func messagesOf(res tg.MessagesMessagesClass) ([]tg.MessageClass, error) {
	switch messages := res.(type) {
	case *tg.MessagesChannelMessages:
		return messages.Messages, nil
	case *tg.MessagesMessages:
		return messages.Messages, nil
	case *tg.MessagesMessagesSlice:
		return messages.Messages, nil
	case *tg.MessagesMessagesNotModified:
		return nil, nil
	default:
		return nil, fmt.Errorf("messages.getHistory: unexpected response %T", res)
	}
}

// convertMessage maps one history entry. When the message carries a document
// the attachment is filled in, synthesizing a file name if the document has
// none; text-only messages keep just their identity.
func convertMessage(msg *tg.Message) source.Message {
	converted := source.Message{
		ID:   int64(msg.ID),
		Date: time.Unix(int64(msg.Date), 0).UTC(),
	}

	doc := documentOf(msg)
	if doc == nil {
		return converted
	}

	var fileName, performer, title string
	for _, attr := range doc.Attributes {
		switch a := attr.(type) {
		case *tg.DocumentAttributeFilename:
			fileName = a.FileName
		case *tg.DocumentAttributeAudio:
			performer, _ = a.GetPerformer()
			title, _ = a.GetTitle()
		}
	}
	if fileName == "" {
		if fileType, ok := source.ClassifyMime(doc.MimeType); ok {
			fileName = source.SynthesizeName(fileType, int64(msg.ID), performer, title)
		}
	}

	converted.Attachment = source.Attachment{
		FileName: fileName,
		MimeType: doc.MimeType,
		Size:     doc.Size,
	}
	return converted
}

func documentOf(msg *tg.Message) *tg.Document {
	media, ok := msg.Media.(*tg.MessageMediaDocument)
	if !ok {
		return nil
	}
	docClass, ok := media.GetDocument()
	if !ok {
		return nil
	}
	doc, ok := docClass.AsNotEmpty()
	if !ok {
		return nil
	}
	return doc
}
