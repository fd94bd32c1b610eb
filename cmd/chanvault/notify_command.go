package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chanvault/internal/notifications"
)

func newNotifyCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notify",
		Short: "Manage webhook notifications",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newNotifyTestCommand(ctx))
	return cmd
}

func newNotifyTestCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a test event to the configured webhook",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if cfg.Notifications.WebhookURL == "" {
				fmt.Fprintln(cmd.OutOrStdout(), "No webhook configured (notifications.webhook_url).")
				return nil
			}
			if err := notifications.NewService(cfg).Test(cmd.Context()); err != nil {
				return fmt.Errorf("webhook test failed: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Webhook reachable: %s\n", cfg.Notifications.WebhookURL)
			return nil
		},
	}
}
