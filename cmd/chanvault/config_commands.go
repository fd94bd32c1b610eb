package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"chanvault/internal/config"
)

func newConfigCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newConfigInitCommand())
	cmd.AddCommand(newConfigShowCommand(ctx))
	return cmd
}

func newConfigInitCommand() *cobra.Command {
	var pathFlag string
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a sample configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path := pathFlag
			if path == "" {
				defaultPath, err := config.DefaultConfigPath()
				if err != nil {
					return err
				}
				path = defaultPath
			}
			if err := config.CreateSample(path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sample configuration written to %s\n", path)
			fmt.Fprintln(cmd.OutOrStdout(), "Fill in the telegram and storage sections before starting the daemon.")
			return nil
		},
	}
	cmd.Flags().StringVar(&pathFlag, "path", "", "Destination path (defaults to the standard config location)")
	return cmd
}

func newConfigShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "data_dir:       %s\n", cfg.Paths.DataDir)
			fmt.Fprintf(out, "staging_dir:    %s\n", cfg.Paths.StagingDir)
			fmt.Fprintf(out, "log_dir:        %s\n", cfg.Paths.LogDir)
			fmt.Fprintf(out, "database:       %s\n", cfg.DatabasePath())
			fmt.Fprintf(out, "endpoint:       %s\n", cfg.Storage.Endpoint)
			fmt.Fprintf(out, "bucket_prefix:  %s\n", cfg.Storage.BucketPrefix)
			fmt.Fprintf(out, "scan_interval:  %ds\n", cfg.Scanner.Interval)
			fmt.Fprintf(out, "max_retries:    %d\n", cfg.Transfer.MaxRetries)
			fmt.Fprintf(out, "audio_category: %s\n", cfg.Categories.Audio)
			fmt.Fprintf(out, "pdf_category:   %s\n", cfg.Categories.PDF)
			if cfg.Notifications.WebhookURL != "" {
				fmt.Fprintf(out, "webhook:        %s\n", cfg.Notifications.WebhookURL)
			}
			return nil
		},
	}
}
