package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"chanvault/internal/config"
	"chanvault/internal/source/telegram"
	"chanvault/internal/store"
)

func newLoginCommand(ctx *commandContext) *cobra.Command {
	var passwordFlag string
	cmd := &cobra.Command{
		Use:   "login",
		Short: "Authorize the Telegram session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				client := telegram.New(cfg, st)
				return client.Run(cmd.Context(), func(runCtx context.Context) error {
					if authorized, err := client.Authorized(runCtx); err != nil {
						return err
					} else if authorized {
						fmt.Fprintln(cmd.OutOrStdout(), "Session already authorized.")
						return nil
					}

					prompt := func(context.Context) (string, error) {
						fmt.Fprint(cmd.OutOrStdout(), "Enter the login code sent to your account: ")
						return readLine()
					}
					if err := client.Login(runCtx, cfg.Telegram.Phone, passwordFlag, prompt); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Login successful. Session saved.")
					return nil
				})
			})
		},
	}
	cmd.Flags().StringVar(&passwordFlag, "password", "", "Two-factor password, if the account has one")
	return cmd
}

func readLine() (string, error) {
	reader := bufio.NewReader(os.Stdin)
	line, err := reader.ReadString('\n')
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(line), nil
}
