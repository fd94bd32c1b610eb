package telegram

import (
	"context"

	tgclient "github.com/gotd/td/telegram"
	"github.com/gotd/td/tg"

	"chanvault/internal/config"
	"chanvault/internal/store"
)

// Client implements source.Client on top of the MTProto API. The connection
// only lives inside Run; every other method requires a running client.
type Client struct {
	client *tgclient.Client
	api    *tg.Client
}

// New builds a Telegram client whose session is persisted in the archive
// database under the configured session name.
func New(cfg *config.Config, st *store.Store) *Client {
	client := tgclient.NewClient(cfg.Telegram.APIID, cfg.Telegram.APIHash, tgclient.Options{
		SessionStorage: newSessionStorage(st, cfg.Telegram.SessionName),
	})
	return &Client{client: client, api: client.API()}
}

// Run connects to Telegram and invokes f once the connection is up. The
// connection closes when f returns or ctx is cancelled.
func (c *Client) Run(ctx context.Context, f func(ctx context.Context) error) error {
	return c.client.Run(ctx, f)
}

// Authorized reports whether the stored session is logged in. Only valid
// inside Run.
func (c *Client) Authorized(ctx context.Context) (bool, error) {
	status, err := c.client.Auth().Status(ctx)
	if err != nil {
		return false, translate("auth status", err)
	}
	return status.Authorized, nil
}
