package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/byflash/drive-cli/internal/api"
	"github.com/byflash/drive-cli/internal/batch"
	"github.com/byflash/drive-cli/internal/config"
	"github.com/byflash/drive-cli/internal/constants"
	"github.com/byflash/drive-cli/internal/diskspace"
	"github.com/byflash/drive-cli/internal/gate"
	"github.com/byflash/drive-cli/internal/grouping"
	"github.com/byflash/drive-cli/internal/logging"
	"github.com/byflash/drive-cli/internal/models"
	"github.com/byflash/drive-cli/internal/progress"
	"github.com/byflash/drive-cli/internal/state"
	"github.com/byflash/drive-cli/internal/util/buffers"
	"github.com/byflash/drive-cli/internal/util/paths"
	"github.com/byflash/drive-cli/internal/util/sanitize"
	stringutil "github.com/byflash/drive-cli/internal/util/strings"
)

// newFilesCmd creates the 'files' command group.
func newFilesCmd() *cobra.Command {
	filesCmd := &cobra.Command{
		Use:   "files",
		Short: "File operations (list, upload, download, move, delete)",
		Long:  `Commands for managing files on the Drive.`,
	}

	filesCmd.AddCommand(newFilesListCmd())
	filesCmd.AddCommand(newFilesUploadCmd())
	filesCmd.AddCommand(newFilesDownloadCmd())
	filesCmd.AddCommand(newFilesRenameCmd())
	filesCmd.AddCommand(newFilesMoveCmd())
	filesCmd.AddCommand(newFilesDeleteCmd())

	return filesCmd
}

// newFilesListCmd creates the 'files list' command.
func newFilesListCmd() *cobra.Command {
	var folderID string
	var sortBy string
	var descending bool
	var style string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List files and folders",
		Long: `List the Drive contents. At the root, files sharing a folder collapse
into one folder line; pass --folder to list inside a folder.

Entering a protected folder prompts for its password.

Examples:
  # Root listing, folders first
  byflash files list

  # Inside a folder, newest first
  byflash files list --folder abc123 --sort date --desc

  # Detailed rows
  byflash files list --style list`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			if !grouping.ValidSortKey(grouping.SortKey(sortBy)) {
				return fmt.Errorf("invalid --sort %q, valid: name, size, date", sortBy)
			}
			if style == "" {
				style = cfg.ViewStyle
			}
			if style != "grid" && style != "list" {
				return fmt.Errorf("invalid --style %q, valid: grid, list", style)
			}

			ctx := GetContext()
			records, err := client.ListFiles(ctx, "")
			if err != nil {
				return handleSessionExpired(cfg, err)
			}

			st := state.NewDriveState(nil)
			st.SetRecords(records)
			st.SetSort(grouping.SortKey(sortBy), !descending)

			if folderID != "" {
				plan := grouping.Partition(st.Records(), "")
				folder, ok := findFolder(plan.Folders, folderID)
				if !ok {
					// Unknown here just means not in the listing yet; show
					// whatever the server has for it.
					folder = grouping.FolderSummary{GroupID: folderID}
				}
				g := gate.New(client, terminalPrompter{}, st)
				status, err := g.EnterFolder(ctx, folder)
				if err != nil {
					return err
				}
				if status == gate.StatusCancelled {
					fmt.Fprintln(os.Stderr, "Cancelled.")
					return nil
				}
			}

			renderPlan(cmd.OutOrStdout(), st.Plan(), style)

			// Remember the chosen style like the login token: quietly.
			if style != cfg.ViewStyle {
				cfg.ViewStyle = style
				_ = config.Save(cfg, cfgFile)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&folderID, "folder", "f", "", "List inside this folder")
	cmd.Flags().StringVar(&sortBy, "sort", "name", "Sort key: name, size, date")
	cmd.Flags().BoolVar(&descending, "desc", false, "Sort descending")
	cmd.Flags().StringVar(&style, "style", "", "Display style: grid, list (persisted)")

	return cmd
}

func findFolder(folders []grouping.FolderSummary, groupID string) (grouping.FolderSummary, bool) {
	for _, folder := range folders {
		if folder.GroupID == groupID {
			return folder, true
		}
	}
	return grouping.FolderSummary{}, false
}

// newFilesUploadCmd creates the 'files upload' command.
func newFilesUploadCmd() *cobra.Command {
	var folderID string
	var filePassword string
	var maxConcurrent int

	cmd := &cobra.Command{
		Use:   "upload <file> [file...]",
		Short: "Upload files to the Drive",
		Long: `Upload one or more local files.

Without --folder the files are uploaded into a freshly created folder
grouping; the folder becomes visible once the upload lands. With --folder
they join the existing folder.

Examples:
  # Upload into a new grouping
  byflash upload report.pdf scan.png

  # Upload into an existing folder
  byflash files upload *.pdf --folder abc123

  # Password-protect the uploaded files
  byflash files upload secret.zip --password`,
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

			if cmd.Flags().Changed("password") && strings.TrimSpace(filePassword) == "" {
				filePassword, err = promptLine("File password")
				if err != nil {
					return err
				}
			}

			// Lazy folder creation: a folder is just a shared group id, it
			// exists once the first file carrying it lands.
			groupID := folderID
			if groupID == "" {
				groupID = uuid.NewString()
			}

			return executeUpload(cmd, cfg, client, args, groupID, filePassword, maxConcurrent)
		},
	}

	cmd.Flags().StringVarP(&folderID, "folder", "f", "", "Upload into this folder (default: new grouping)")
	cmd.Flags().StringVar(&filePassword, "password", "", "Protect the files with a password (prompted when empty)")
	cmd.Flags().Lookup("password").NoOptDefVal = " "
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", batch.DefaultMaxConcurrent, "Maximum concurrent uploads")

	return cmd
}

func executeUpload(cmd *cobra.Command, cfg *config.Config, client *api.Client, paths []string, groupID, password string, maxConcurrent int) error {
	ui := progress.NewMultiUI(len(paths))

	outcome := batch.Run(GetContext(), paths, maxConcurrent, func(ctx context.Context, path string) error {
		info, err := os.Stat(path)
		if err != nil {
			return err
		}
		if info.IsDir() {
			return fmt.Errorf("is a directory")
		}

		file, err := os.Open(path)
		if err != nil {
			return err
		}
		defer file.Close()

		bar := ui.AddFile(filepath.Base(path), info.Size())
		err = client.Upload(ctx, api.UploadRequest{
			Name:     filepath.Base(path),
			Content:  file,
			GroupID:  groupID,
			Password: password,
			Progress: bar,
		})
		bar.Complete(err)
		return err
	})
	ui.Wait()

	if err := renderOutcome(cmd.OutOrStdout(), "uploaded", outcome.Succeeded, outcome.Failed); err != nil {
		for _, itemErr := range outcome.Failed {
			if api.IsSessionExpired(itemErr) {
				return handleSessionExpired(cfg, itemErr)
			}
		}
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Folder id: %s\n", groupID)
	return nil
}

// newFilesDownloadCmd creates the 'files download' command.
func newFilesDownloadCmd() *cobra.Command {
	var outputDir string
	var maxConcurrent int

	cmd := &cobra.Command{
		Use:   "download <file-id> [file-id...]",
		Short: "Download files from the Drive",
		Long: `Download one or more files by id.

Protected files prompt for their password; a wrong password prompts again
instead of writing a broken file.

Examples:
  # Single file into the current directory
  byflash files download f123

  # Several files into a target directory
  byflash files download f123 f456 --outdir ./downloads`,
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

			if outputDir == "" {
				outputDir = cfg.DownloadDir
			}
			if outputDir == "" {
				outputDir = "."
			}
			if err := os.MkdirAll(outputDir, 0755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			ctx := GetContext()
			records, err := client.ListFiles(ctx, "")
			if err != nil {
				return handleSessionExpired(cfg, err)
			}
			st := state.NewDriveState(nil)
			st.SetRecords(records)
			g := gate.New(client, terminalPrompter{}, st)

			targetByID, err := planTargets(st, args, outputDir)
			if err != nil {
				return err
			}

			outcome := batch.Run(ctx, args, maxConcurrent, func(ctx context.Context, id string) error {
				rec, ok := st.FindByID(id)
				if !ok {
					return fmt.Errorf("no such file")
				}
				return downloadOne(ctx, client, g, st, rec, targetByID[id])
			})
			return renderOutcome(cmd.OutOrStdout(), "downloaded", outcome.Succeeded, outcome.Failed)
		},
	}

	cmd.Flags().StringVarP(&outputDir, "outdir", "o", "", "Output directory (default: config download_dir or .)")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", batch.DefaultMaxConcurrent, "Maximum concurrent downloads")

	return cmd
}

// newFilesRenameCmd creates the 'files rename' command.
func newFilesRenameCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "rename <file-id> <new-name>",
		Short: "Rename a file",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}

			if err := client.Rename(GetContext(), args[0], args[1]); err != nil {
				return handleSessionExpired(cfg, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", args[0], args[1])
			return nil
		},
	}
}

// newFilesMoveCmd creates the 'files move' command.
func newFilesMoveCmd() *cobra.Command {
	var target string

	cmd := &cobra.Command{
		Use:   "move <file-id> [file-id...]",
		Short: "Move files into a folder or back to the root",
		Long: `Move one or more files to a target folder.

The special target 'root' moves the files out of their folder.

Examples:
  byflash files move f123 f456 --to abc123
  byflash files move f123 --to root`,
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

			if err := client.Move(GetContext(), args, target); err != nil {
				return handleSessionExpired(cfg, err)
			}
			fmt.Printf("Moved %d %s to %s\n", len(args), stringutil.Pluralize("file", int64(len(args))), target)
			return nil
		},
	}

	cmd.Flags().StringVar(&target, "to", api.MoveTargetRoot, "Target folder id, or 'root'")

	return cmd
}

// newFilesDeleteCmd creates the 'files delete' command.
func newFilesDeleteCmd() *cobra.Command {
	var force bool
	var maxConcurrent int

	cmd := &cobra.Command{
		Use:   "delete <file-id> [file-id...]",
		Short: "Move files to the trash",
		Long: `Soft-delete one or more files. Deleted files go to the trash and can
be restored with 'byflash trash restore'.

Each file is reported individually; one failure does not abort the rest.`,
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

			if !force && !confirm(fmt.Sprintf("Delete %d file(s)?", len(args))) {
				fmt.Fprintln(os.Stderr, "Aborted.")
				return nil
			}

			outcome := batch.Run(GetContext(), args, maxConcurrent, func(ctx context.Context, id string) error {
				return client.Delete(ctx, id, models.ItemTypeFile)
			})
			return renderOutcome(cmd.OutOrStdout(), "deleted", outcome.Succeeded, outcome.Failed)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "Skip the confirmation prompt")
	cmd.Flags().IntVar(&maxConcurrent, "max-concurrent", batch.DefaultMaxConcurrent, "Maximum concurrent deletions")

	return cmd
}

// planTargets maps file ids to unique local paths and preflights the disk
// space for the whole batch. Unknown ids are skipped here and reported
// per-item by the download loop.
func planTargets(st *state.DriveState, ids []string, dir string) (map[string]string, error) {
	targets := make([]paths.DownloadTarget, 0, len(ids))
	for _, id := range ids {
		rec, ok := st.FindByID(id)
		if !ok {
			continue
		}
		name := rec.Name
		if name == "" {
			name = id
		}
		targets = append(targets, paths.DownloadTarget{
			FileID:    id,
			Name:      rec.Name,
			LocalPath: filepath.Join(dir, sanitize.Filename(name)),
			Size:      rec.Size,
		})
	}

	targets, renamed := paths.ResolveCollisions(targets)
	if renamed > 0 {
		logging.Logger.Info().Int("renamed", renamed).Msg("duplicate filenames, file ids appended")
	}

	if len(targets) > 0 {
		margin := 1 + constants.DiskSpaceBufferPercent
		if err := diskspace.CheckAvailableSpace(targets[0].LocalPath, paths.TotalSize(targets), margin); err != nil {
			return nil, err
		}
	}

	targetByID := make(map[string]string, len(targets))
	for _, t := range targets {
		targetByID[t.FileID] = t.LocalPath
	}
	return targetByID, nil
}

// downloadOne fetches a single file to target, resolving its password
// through the gate and retrying once on a rejected password.
func downloadOne(ctx context.Context, client *api.Client, g *gate.Gate, st *state.DriveState, rec models.FileRecord, target string) error {
	password, err := g.FilePassword(ctx, rec, false)
	if err != nil {
		return err
	}

	result, err := client.Download(ctx, rec.ID, password)
	if errors.Is(err, api.ErrInvalidPassword) {
		// Stale or wrong cached password: one fresh prompt, then give up.
		password, err = g.FilePassword(ctx, rec, true)
		if err != nil {
			return err
		}
		result, err = client.Download(ctx, rec.ID, password)
	}
	if err != nil {
		return err
	}
	defer result.Body.Close()

	if password != "" && rec.GroupID != "" {
		st.CachePassword(rec.GroupID, password)
	}

	if target == "" {
		name := result.Name
		if name == "" {
			name = rec.Name
		}
		target = sanitize.Filename(name)
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
	return nil
}
