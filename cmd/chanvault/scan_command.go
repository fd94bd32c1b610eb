package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"chanvault/internal/config"
	"chanvault/internal/logging"
	"chanvault/internal/scanner"
	"chanvault/internal/source/telegram"
	"chanvault/internal/store"
)

func newScanCommand(ctx *commandContext) *cobra.Command {
	var (
		channelFlag int64
		fullFlag    bool
	)
	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Run a one-shot discovery scan",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.withStore(func(cfg *config.Config, st *store.Store) error {
				logger, err := logging.NewFromConfig(cfg)
				if err != nil {
					return err
				}

				client := telegram.New(cfg, st)
				return client.Run(cmd.Context(), func(runCtx context.Context) error {
					if authorized, err := client.Authorized(runCtx); err != nil {
						return err
					} else if !authorized {
						return errors.New("telegram session not authorized, run 'chanvault login' first")
					}

					// A full rescan clears the stored watermark so the daemon's
					// next pass re-examines history as well.
					if fullFlag {
						if channelFlag > 0 {
							if err := st.ResetWatermark(runCtx, channelFlag); err != nil {
								return err
							}
						} else {
							channels, err := st.Channels(runCtx, true)
							if err != nil {
								return err
							}
							for _, channel := range channels {
								if err := st.ResetWatermark(runCtx, channel.ID); err != nil {
									return err
								}
							}
						}
					}

					sc := scanner.New(cfg, st, client, logger)
					if channelFlag > 0 {
						channel, err := st.GetChannel(runCtx, channelFlag)
						if err != nil {
							return err
						}
						result, err := sc.ScanChannel(runCtx, channel, false)
						if err != nil {
							return err
						}
						fmt.Fprintf(cmd.OutOrStdout(),
							"Channel %d: examined %d, discovered %d, watermark %d\n",
							result.ChannelID, result.Examined, result.Discovered, result.Watermark)
						return nil
					}

					if err := sc.ScanAll(runCtx); err != nil {
						return err
					}
					fmt.Fprintln(cmd.OutOrStdout(), "Scan complete.")
					return nil
				})
			})
		},
	}
	cmd.Flags().Int64Var(&channelFlag, "channel", 0, "Scan only this channel")
	cmd.Flags().BoolVar(&fullFlag, "full", false, "Ignore the watermark and re-examine full history")
	return cmd
}
