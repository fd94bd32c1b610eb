package main

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"chanvault/internal/config"
	"chanvault/internal/store"
)

func newQueueCommand(ctx *commandContext) *cobra.Command {
	var statusFlag string
	cmd := &cobra.Command{
		Use:   "queue",
		Short: "Show transfer items",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				var (
					items []*store.Item
					err   error
				)
				if statusFlag != "" {
					status, ok := store.ParseStatus(statusFlag)
					if !ok {
						return fmt.Errorf("unknown status %q", statusFlag)
					}
					items, err = st.ItemsByStatus(cmd.Context(), status)
				} else {
					items, err = st.AllItems(cmd.Context())
				}
				if err != nil {
					return err
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No items.")
					return nil
				}

				rows := make([][]string, 0, len(items))
				for _, item := range items {
					detail := item.StoragePath
					if item.ErrorMessage != "" {
						detail = item.ErrorMessage
					}
					rows = append(rows, []string{
						strconv.FormatInt(item.ID, 10),
						strconv.FormatInt(item.ChannelID, 10),
						strconv.FormatInt(item.MessageID, 10),
						item.FileName,
						item.FileType,
						item.Category,
						formatSize(item.FileSize),
						item.Status.String(),
						truncate(detail, 48),
					})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Channel", "Message", "File", "Type", "Category", "Size", "Status", "Detail"},
					rows))
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&statusFlag, "status", "", "Filter by status (pending, queued, downloading, uploading, completed, failed, failed_permanent)")
	return cmd
}

func newApproveCommand(ctx *commandContext) *cobra.Command {
	var categoryFlag string
	cmd := &cobra.Command{
		Use:   "approve <item-id>",
		Short: "Release a pending item for transfer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				item, err := st.Approve(cmd.Context(), id, categoryFlag)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d queued for transfer (category %s)\n",
					item.ID, item.Category)
				return nil
			})
		},
	}
	cmd.Flags().StringVar(&categoryFlag, "category", "", "Override the item's category")
	return cmd
}

func newRetryCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "retry <item-id>",
		Short: "Requeue a failed item for another transfer attempt",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				item, err := st.RetryReset(cmd.Context(), id)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Item %d requeued\n", item.ID)
				return nil
			})
		},
	}
}

func newStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show archive statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return ctx.withStore(func(_ *config.Config, st *store.Store) error {
				stats, err := st.ItemStats(cmd.Context())
				if err != nil {
					return err
				}
				channels, err := st.Channels(cmd.Context(), true)
				if err != nil {
					return err
				}

				statuses := make([]string, 0, len(stats.ByStatus))
				for status := range stats.ByStatus {
					statuses = append(statuses, status.String())
				}
				sort.Strings(statuses)

				rows := [][]string{
					{"channels", strconv.Itoa(len(channels))},
					{"items", strconv.Itoa(stats.Total)},
				}
				for _, status := range statuses {
					rows = append(rows, []string{status, strconv.Itoa(stats.ByStatus[store.Status(status)])})
				}
				fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Metric", "Count"}, rows))
				return nil
			})
		},
	}
}

func parseItemID(arg string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(arg), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid item id %q", arg)
	}
	return id, nil
}

func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	if limit <= 3 {
		return s[:limit]
	}
	return s[:limit-3] + "..."
}
