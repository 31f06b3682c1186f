package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/byflash/drive-cli/internal/batch"
)

// newTrashCmd creates the 'trash' command group.
func newTrashCmd() *cobra.Command {
	trashCmd := &cobra.Command{
		Use:   "trash",
		Short: "Trash operations (list, restore)",
		Long: `Commands for the trash. Deleted files and folders land here and stay
restorable until the server purges them.`,
	}

	trashCmd.AddCommand(newTrashListCmd())
	trashCmd.AddCommand(newTrashRestoreCmd())

	return trashCmd
}

// newTrashListCmd creates the 'trash list' command.
func newTrashListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List trashed items",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			entries, err := client.ListTrash(GetContext())
			if err != nil {
				return handleSessionExpired(cfg, err)
			}

			renderTrash(cmd.OutOrStdout(), entries)
			return nil
		},
	}
}

// newTrashRestoreCmd creates the 'trash restore' command.
func newTrashRestoreCmd() *cobra.Command {
	var maxConcurrent int

	cmd := &cobra.Command{
		Use:   "restore <item-id> [item-id...]",
		Short: "Restore trashed items",
		Long: `Restore one or more items from the trash. Each item is reported
individually; one failure does not abort the rest.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			outcome := batch.Run(GetContext(), args, maxConcurrent, func(ctx context.Context, id string) error {
				return client.Restore(ctx, id)
			})
			return renderOutcome(cmd.OutOrStdout(), "restored", outcome.Succeeded, outcome.Failed)
		},
	}

	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", batch.DefaultMaxConcurrent, "Maximum concurrent restores")

	return cmd
}
