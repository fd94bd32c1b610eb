package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"chanvault/internal/config"
	"chanvault/internal/store"
)

func newChannelCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "channel",
		Short: "Manage monitored channels",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.AddCommand(newChannelAddCommand(ctx))
	cmd.AddCommand(newChannelListCommand(ctx))
	cmd.AddCommand(newChannelRemoveCommand(ctx))
	return cmd
}

func newChannelAddCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "add <channel-id> [name]",
		Short: "Register a channel for monitoring",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseChannelID(args[0])
			if err != nil {
				return err
			}
			name := ""
			if len(args) > 1 {
				name = strings.TrimSpace(args[1])
			}
			if name == "" {
				name = strconv.FormatInt(id, 10)
			}

			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				channel, err := st.UpsertChannel(cmd.Context(), id, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Monitoring channel %d (%s)\n", channel.ID, channel.Name)
				return nil
			})
		},
	}
}

func newChannelListCommand(ctx *commandContext) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List monitored channels",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				channels, err := st.Channels(cmd.Context(), !all)
				if err != nil {
					return err
				}
				if len(channels) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No channels registered.")
					return nil
				}

				rows := make([][]string, 0, len(channels))
				for _, channel := range channels {
					active := "yes"
					if !channel.Active {
						active = "no"
					}
					rows = append(rows, []string{
						strconv.FormatInt(channel.ID, 10),
						channel.Name,
						active,
						strconv.FormatInt(channel.LastScannedID, 10),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Name", "Active", "Last Scanned"}, rows))
				return nil
			})
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include deactivated channels")
	return cmd
}

func newChannelRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <channel-id>",
		Short: "Stop monitoring a channel",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseChannelID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				if err := st.DeactivateChannel(cmd.Context(), id); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Channel %d deactivated. Archived items are kept.\n", id)
				return nil
			})
		},
	}
}

func parseChannelID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid channel id %q", arg)
	}
	return id, nil
}
