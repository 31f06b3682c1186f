package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/byflash/drive-cli/internal/api"
	"github.com/byflash/drive-cli/internal/constants"
	"github.com/byflash/drive-cli/internal/diskspace"
	"github.com/byflash/drive-cli/internal/grouping"
	"github.com/byflash/drive-cli/internal/models"
	"github.com/byflash/drive-cli/internal/progress"
	"github.com/byflash/drive-cli/internal/util/buffers"
	"github.com/byflash/drive-cli/internal/util/sanitize"
	stringutil "github.com/byflash/drive-cli/internal/util/strings"
)

// newFoldersCmd creates the 'folders' command group.
func newFoldersCmd() *cobra.Command {
	foldersCmd := &cobra.Command{
		Use:   "folders",
		Short: "Folder operations (list, create, settings, download, delete)",
		Long: `Commands for managing folders.

A folder is a grouping of files sharing a group id. Folders are created
lazily: 'folders new' hands out a fresh id, the folder appears once the
first file is uploaded into it.`,
	}

	foldersCmd.AddCommand(newFoldersListCmd())
	foldersCmd.AddCommand(newFoldersNewCmd())
	foldersCmd.AddCommand(newFoldersSetCmd())
	foldersCmd.AddCommand(newFoldersDownloadCmd())
	foldersCmd.AddCommand(newFoldersDeleteCmd())

	return foldersCmd
}

// newFoldersListCmd creates the 'folders list' command.
func newFoldersListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List folders",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			records, err := client.ListFiles(GetContext(), "")
			if err != nil {
				return handleSessionExpired(cfg, err)
			}

			plan := grouping.Partition(records, "")
			if len(plan.Folders) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "No folders.")
				return nil
			}
			for _, folder := range plan.Folders {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s%s\t%d %s\t%s\n",
					folder.GroupID, folder.Name, lockMarker(folder.Protected), folder.FileCount,
					stringutil.Pluralize("file", int64(folder.FileCount)), folder.Color)
			}
			return nil
		},
	}
}

// newFoldersNewCmd creates the 'folders new' command.
func newFoldersNewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "new",
		Short: "Generate a fresh folder id",
		Long: `Print a new folder id for use with 'files upload --folder'. The folder
does not exist server-side until a file is uploaded into it or its
settings are saved with 'folders set'.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), uuid.NewString())
			return nil
		},
	}
}

// newFoldersSetCmd creates the 'folders set' command.
func newFoldersSetCmd() *cobra.Command {
	var name string
	var color string
	var setPassword bool

	cmd := &cobra.Command{
		Use:   "set <folder-id>",
		Short: "Change folder name, color, or password",
		Long: `Update folder settings. Omitted fields keep their current value; the
password is only changed when --password is given.

Examples:
  byflash folders set abc123 --name "Invoices 2026"
  byflash folders set abc123 --color "#ff8800"
  byflash folders set abc123 --password`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			ctx := GetContext()
			groupID := args[0]

			// Fetch current metadata so omitted fields survive the update.
			// An unknown id is fine: updating a fresh id is what makes an
			// empty folder durable before any file lands in it.
			records, err := client.ListFiles(ctx, "")
			if err != nil {
				return handleSessionExpired(cfg, err)
			}
			plan := grouping.Partition(records, "")
			if folder, ok := findFolder(plan.Folders, groupID); ok {
				if name == "" {
					name = folder.Name
				}
				if color == "" {
					color = folder.Color
				}
			}

			var password string
			if setPassword {
				password, err = promptLine("New folder password (empty removes none, keeps current)")
				if err != nil {
					return err
				}
			}

			err = client.UpdateGroup(ctx, api.UpdateGroupRequest{
				GroupID:  groupID,
				Name:     name,
				Color:    color,
				Password: password,
			})
			if err != nil {
				return handleSessionExpired(cfg, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Updated folder %s\n", groupID)
			return nil
		},
	}

	cmd.Flags().StringVar(&name, "name", "", "New folder name")
	cmd.Flags().StringVar(&color, "color", "", "New folder color (hex)")
	cmd.Flags().BoolVar(&setPassword, "password", false, "Prompt for a new folder password")

	return cmd
}

// newFoldersDownloadCmd creates the 'folders download' command.
func newFoldersDownloadCmd() *cobra.Command {
	var outputDir string

	cmd := &cobra.Command{
		Use:   "download <folder-id>",
		Short: "Download a whole folder as an archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			if outputDir == "" {
				outputDir = cfg.DownloadDir
			}
			if outputDir == "" {
				outputDir = "."
			}
			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			result, err := client.DownloadFolder(GetContext(), args[0])
			if err != nil {
				return handleSessionExpired(cfg, err)
			}
			defer result.Body.Close()

			name := result.Name
			if name == "" {
				name = args[0] + ".zip"
			}
			target := filepath.Join(outputDir, sanitize.Filename(name))

			if result.Size > 0 {
				margin := 1 + constants.DiskSpaceBufferPercent
				if err := diskspace.CheckAvailableSpace(target, result.Size, margin); err != nil {
					return err
				}
			}

			out, err := os.Create(target)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", target, err)
			}
			defer out.Close()

			bar := progress.NewBar()
			bar.Start(result.Size, filepath.Base(target))
			defer bar.Finish()

			buf := buffers.GetCopyBuffer()
			defer buffers.PutCopyBuffer(buf)

			if _, err := io.CopyBuffer(out, io.TeeReader(result.Body, bar), *buf); err != nil {
				os.Remove(target)
				return fmt.Errorf("download interrupted: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Saved %s\n", target)
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "outdir", "o", "", "Output directory (default: config download_dir or .)")

	return cmd
}

// newFoldersDeleteCmd creates the 'folders delete' command.
func newFoldersDeleteCmd() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "delete <folder-id>",
		Short: "Move a folder and its files to the trash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			if !force && !confirm(fmt.Sprintf("Delete folder %s and all its files?", args[0])) {
				fmt.Fprintln(os.Stderr, "Aborted.")
				return nil
			}

			if err := client.Delete(GetContext(), args[0], models.ItemTypeGroup); err != nil {
				return handleSessionExpired(cfg, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")

	return cmd
}
