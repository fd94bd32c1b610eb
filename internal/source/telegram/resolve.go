package telegram

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gotd/td/tg"

	"chanvault/internal/services"
	"chanvault/internal/source"
)

const dialogPageSize = 100

// ResolveChannel recovers a full channel handle from a bare identifier. A
// direct lookup with a zero access hash works for channels the account has
// already met; otherwise the dialog list is scanned, and finally the username
// hint is resolved if one was given.
func (c *Client) ResolveChannel(ctx context.Context, id int64, username string) (*source.Handle, error) {
	handle, err := c.resolveDirect(ctx, id)
	if err == nil {
		return handle, nil
	}
	if _, ok := source.AsRateLimit(err); ok {
		return nil, err
	}
	if errors.Is(err, services.ErrForbidden) {
		return nil, err
	}

	handle, dialogErr := c.resolveFromDialogs(ctx, id)
	if dialogErr == nil {
		return handle, nil
	}
	if _, ok := source.AsRateLimit(dialogErr); ok {
		return nil, dialogErr
	}

	if username = strings.TrimPrefix(strings.TrimSpace(username), "@"); username != "" {
		if handle, userErr := c.resolveUsername(ctx, id, username); userErr == nil {
			return handle, nil
		} else if _, ok := source.AsRateLimit(userErr); ok {
			return nil, userErr
		}
	}

	return nil, fmt.Errorf("resolve channel %d: %w", id, err)
}

func (c *Client) resolveDirect(ctx context.Context, id int64) (*source.Handle, error) {
	res, err := c.api.ChannelsGetChannels(ctx, []tg.InputChannelClass{
		&tg.InputChannel{ChannelID: id},
	})
	if err != nil {
		return nil, translate("channels.getChannels", err)
	}
	if handle := handleFromChats(res.GetChats(), id); handle != nil {
		return handle, nil
	}
	return nil, fmt.Errorf("channels.getChannels: channel %d: %w", id, services.ErrNotFound)
}

func (c *Client) resolveFromDialogs(ctx context.Context, id int64) (*source.Handle, error) {
	res, err := c.api.MessagesGetDialogs(ctx, &tg.MessagesGetDialogsRequest{
		OffsetPeer: &tg.InputPeerEmpty{},
		Limit:      dialogPageSize,
	})
	if err != nil {
		return nil, translate("messages.getDialogs", err)
	}

	var chats []tg.ChatClass
	switch dialogs := res.(type) {
	case *tg.MessagesDialogs:
		chats = dialogs.Chats
	case *tg.MessagesDialogsSlice:
		chats = dialogs.Chats
	default:
		return nil, fmt.Errorf("messages.getDialogs: unexpected response %T", res)
	}

	if handle := handleFromChats(chats, id); handle != nil {
		return handle, nil
	}
	return nil, fmt.Errorf("messages.getDialogs: channel %d not in dialogs: %w", id, services.ErrNotFound)
}

func (c *Client) resolveUsername(ctx context.Context, id int64, username string) (*source.Handle, error) {
	res, err := c.api.ContactsResolveUsername(ctx, &tg.ContactsResolveUsernameRequest{Username: username})
	if err != nil {
		return nil, translate("contacts.resolveUsername", err)
	}
	if handle := handleFromChats(res.Chats, id); handle != nil {
		return handle, nil
	}
	return nil, fmt.Errorf("contacts.resolveUsername: %q does not match channel %d: %w", username, id, services.ErrNotFound)
}

func handleFromChats(chats []tg.ChatClass, id int64) *source.Handle {
	for _, chat := range chats {
		channel, ok := chat.(*tg.Channel)
		if !ok || channel.ID != id {
			continue
		}
		return &source.Handle{
			ID:         channel.ID,
			AccessHash: channel.AccessHash,
			Title:      channel.Title,
			Username:   channel.Username,
		}
	}
	return nil
}
