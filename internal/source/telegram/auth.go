package telegram

import (
	"context"
	"fmt"

	"github.com/gotd/td/telegram/auth"
	"github.com/gotd/td/tg"
)

// CodePrompt asks the operator for the login code Telegram just sent.
type CodePrompt func(ctx context.Context) (string, error)

// Login runs the phone-code authorization flow against the configured account
// if the stored session is not already authorized. Only valid inside Run.
func (c *Client) Login(ctx context.Context, phone, password string, prompt CodePrompt) error {
	if prompt == nil {
		return fmt.Errorf("login: code prompt required")
	}

	codeAuth := auth.CodeAuthenticatorFunc(func(ctx context.Context, _ *tg.AuthSentCode) (string, error) {
		return prompt(ctx)
	})
	flow := auth.NewFlow(auth.Constant(phone, password, codeAuth), auth.SendCodeOptions{})

	if err := c.client.Auth().IfNecessary(ctx, flow); err != nil {
		return translate("login", err)
	}
	return nil
}
