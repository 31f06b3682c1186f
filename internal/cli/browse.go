package cli

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/byflash/drive-cli/internal/api"
	"github.com/byflash/drive-cli/internal/batch"
	"github.com/byflash/drive-cli/internal/config"
	"github.com/byflash/drive-cli/internal/events"
	"github.com/byflash/drive-cli/internal/gate"
	"github.com/byflash/drive-cli/internal/grouping"
	"github.com/byflash/drive-cli/internal/logging"
	"github.com/byflash/drive-cli/internal/models"
	"github.com/byflash/drive-cli/internal/state"
	stringutil "github.com/byflash/drive-cli/internal/util/strings"
)

// newBrowseCmd creates the interactive 'browse' command.
func newBrowseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "browse",
		Short: "Interactive Drive browser",
		Long: `Browse the Drive interactively: navigate folders, build a multi-file
selection, then move, delete, or download it in one go.

Type 'help' inside the session for the command list.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			client, err := newAPIClient(cfg)
			if err != nil {
				return err
			}
			return runBrowse(GetContext(), cfg, client)
		},
	}
}

// browseSession holds the moving parts of one interactive session.
type browseSession struct {
	cfg    *config.Config
	client *api.Client
	bus    *events.EventBus
	st     *state.DriveState
	gate   *gate.Gate
}

func runBrowse(ctx context.Context, cfg *config.Config, client *api.Client) error {
	bus := events.NewEventBus(0)
	defer bus.Close()

	// Trace state transitions at debug level; useful when a session
	// misbehaves and the user re-runs with --verbose.
	go func() {
		for ev := range bus.SubscribeAll() {
			logging.Logger.Debug().Str("event", string(ev.Type())).Msg("state change")
		}
	}()

	st := state.NewDriveState(bus)
	st.SetStyle(state.Style(cfg.ViewStyle))

	s := &browseSession{
		cfg:    cfg,
		client: client,
		bus:    bus,
		st:     st,
		gate:   gate.New(client, terminalPrompter{}, st),
	}

	if err := s.reload(ctx); err != nil {
		return err
	}
	s.list()

	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Printf("byflash:%s%s> ", s.location(), s.selectionMarker())
		if !scanner.Scan() {
			return nil
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}

		if err := ctx.Err(); err != nil {
			return nil
		}

		quit, err := s.dispatch(ctx, parts[0], parts[1:])
		if err != nil {
			if api.IsSessionExpired(err) {
				s.st.ResetSession()
				return handleSessionExpired(cfg, err)
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		if quit {
			return nil
		}
	}
}

func (s *browseSession) location() string {
	if s.st.View() == state.ViewTrash {
		return "trash"
	}
	if folder := s.st.CurrentFolder(); folder != "" {
		return "/" + folder
	}
	return "/"
}

func (s *browseSession) selectionMarker() string {
	if n := s.st.SelectedCount(); n > 0 {
		return fmt.Sprintf(" [%d]", n)
	}
	if s.st.TargetedFolder() != "" {
		return " [folder]"
	}
	return ""
}

func (s *browseSession) dispatch(ctx context.Context, cmd string, args []string) (bool, error) {
	switch cmd {
	case "help":
		s.help()
	case "ls", "list":
		s.list()
	case "refresh":
		if err := s.reload(ctx); err != nil {
			return false, err
		}
		s.list()
	case "cd":
		return false, s.cd(ctx, args)
	case "back", "up":
		s.st.LeaveFolder()
		s.list()
	case "sort":
		return false, s.sort(args)
	case "style":
		return false, s.style(args)
	case "select", "sel":
		return false, s.selectItems(args)
	case "selection":
		fmt.Println(strings.Join(s.st.SelectedIDs(), "\n"))
	case "clear":
		s.st.ClearSelection()
	case "rename":
		return false, s.rename(ctx, args)
	case "move", "mv":
		return false, s.move(ctx, args)
	case "rm", "delete":
		return false, s.remove(ctx)
	case "dl", "download":
		return false, s.download(ctx, args)
	case "trash":
		s.st.SetView(state.ViewTrash)
		return false, s.listTrash(ctx)
	case "files":
		s.st.SetView(state.ViewFiles)
		s.list()
	case "restore":
		return false, s.restore(ctx, args)
	case "exit", "quit":
		return true, nil
	default:
		fmt.Printf("Unknown command: %s (try 'help')\n", cmd)
	}
	return false, nil
}

func (s *browseSession) help() {
	fmt.Println(`Commands:
  ls                  list the current location
  cd <folder-id>      enter a folder (prompts when protected)
  back                return to the root
  refresh             reload from the server
  sort <name|size|date>  toggle sort (same key flips direction)
  style <grid|list>   switch display style (persisted)
  select <id>...      toggle file selection, or target a folder
  selection           show selected ids
  clear               clear the selection
  rename <id> <name>  rename a file
  move <target>       move selection to folder id or 'root'
  rm                  delete the selection (or targeted folder)
  dl [outdir]         download the selection
  trash               show the trash
  files               back to the files view
  restore <id>...     restore trashed items
  exit                leave`)
}

func (s *browseSession) reload(ctx context.Context) error {
	records, err := s.client.ListFiles(ctx, "")
	if err != nil {
		return err
	}
	s.st.SetRecords(records)
	return nil
}

func (s *browseSession) list() {
	if s.st.View() == state.ViewTrash {
		fmt.Println("(trash view, use 'files' to go back)")
		return
	}
	renderPlan(os.Stdout, s.st.Plan(), string(s.st.Style()))
}

func (s *browseSession) cd(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: cd <folder-id>")
	}

	plan := grouping.Partition(s.st.Records(), "")
	folder, ok := findFolder(plan.Folders, args[0])
	if !ok {
		return fmt.Errorf("no such folder: %s", args[0])
	}

	status, err := s.gate.EnterFolder(ctx, folder)
	if err != nil {
		return err
	}
	switch status {
	case gate.StatusGranted:
		s.list()
	case gate.StatusCancelled:
		// Stay where we are, no error and no navigation.
		fmt.Println("Cancelled.")
	}
	return nil
}

func (s *browseSession) sort(args []string) error {
	if len(args) != 1 || !grouping.ValidSortKey(grouping.SortKey(args[0])) {
		return fmt.Errorf("usage: sort <name|size|date>")
	}
	s.st.ToggleSort(grouping.SortKey(args[0]))
	key, asc := s.st.Sort()
	direction := "ascending"
	if !asc {
		direction = "descending"
	}
	fmt.Printf("Sorted by %s, %s\n", key, direction)
	s.list()
	return nil
}

func (s *browseSession) style(args []string) error {
	if len(args) != 1 || (args[0] != "grid" && args[0] != "list") {
		return fmt.Errorf("usage: style <grid|list>")
	}
	s.st.SetStyle(state.Style(args[0]))
	s.cfg.ViewStyle = args[0]
	if err := config.Save(s.cfg, cfgFile); err != nil {
		logging.Logger.Warn().Err(err).Msg("failed to persist view style")
	}
	s.list()
	return nil
}

func (s *browseSession) selectItems(args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: select <file-id|folder-id>...")
	}
	for _, id := range args {
		if _, ok := s.st.FindByID(id); ok {
			s.st.ToggleSelect(id)
			continue
		}
		// A folder id targets the folder instead. The folder target and the
		// file selection are mutually exclusive, one slot each way.
		plan := grouping.Partition(s.st.Records(), "")
		if _, ok := findFolder(plan.Folders, id); ok {
			s.st.TargetFolder(id)
			fmt.Printf("folder %s targeted\n", id)
			return nil
		}
		return fmt.Errorf("no such file or folder: %s", id)
	}
	fmt.Printf("%d selected\n", s.st.SelectedCount())
	return nil
}

func (s *browseSession) rename(ctx context.Context, args []string) error {
	if len(args) != 2 {
		return fmt.Errorf("usage: rename <file-id> <new-name>")
	}
	if _, ok := s.st.FindByID(args[0]); !ok {
		return fmt.Errorf("no such file: %s", args[0])
	}
	if err := s.client.Rename(ctx, args[0], args[1]); err != nil {
		return err
	}
	if err := s.reload(ctx); err != nil {
		return err
	}
	fmt.Printf("Renamed %s to %s\n", args[0], args[1])
	return nil
}

func (s *browseSession) move(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("usage: move <folder-id|root>")
	}
	ids := s.st.SelectedIDs()
	if len(ids) == 0 {
		return fmt.Errorf("nothing selected")
	}

	if err := s.client.Move(ctx, ids, args[0]); err != nil {
		return err
	}
	s.st.ClearSelection()
	if err := s.reload(ctx); err != nil {
		return err
	}
	fmt.Printf("Moved %d %s to %s\n", len(ids), stringutil.Pluralize("file", int64(len(ids))), args[0])
	s.list()
	return nil
}

func (s *browseSession) remove(ctx context.Context) error {
	if folder := s.st.TargetedFolder(); folder != "" {
		if !confirm(fmt.Sprintf("Delete folder %s and all its files?", folder)) {
			return nil
		}
		if err := s.client.Delete(ctx, folder, models.ItemTypeGroup); err != nil {
			return err
		}
		s.st.ClearSelection()
		return s.reload(ctx)
	}

	ids := s.st.SelectedIDs()
	if len(ids) == 0 {
		return fmt.Errorf("nothing selected")
	}
	if !confirm(fmt.Sprintf("Delete %d file(s)?", len(ids))) {
		return nil
	}

	outcome := batch.Run(ctx, ids, batch.DefaultMaxConcurrent, func(ctx context.Context, id string) error {
		return s.client.Delete(ctx, id, models.ItemTypeFile)
	})
	s.st.ClearSelection()
	if err := s.reload(ctx); err != nil {
		return err
	}
	return renderOutcome(os.Stdout, "deleted", outcome.Succeeded, outcome.Failed)
}

func (s *browseSession) download(ctx context.Context, args []string) error {
	ids := s.st.SelectedIDs()
	if len(ids) == 0 {
		return fmt.Errorf("nothing selected")
	}

	dir := "."
	if len(args) > 0 {
		dir = args[0]
	} else if s.cfg.DownloadDir != "" {
		dir = s.cfg.DownloadDir
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	targetByID, err := planTargets(s.st, ids, dir)
	if err != nil {
		return err
	}

	// Sequential: each protected file may need a password prompt and two
	// interleaved prompts on one terminal are unusable.
	outcome := batch.Run(ctx, ids, 1, func(ctx context.Context, id string) error {
		rec, ok := s.st.FindByID(id)
		if !ok {
			return fmt.Errorf("no such file")
		}
		return downloadOne(ctx, s.client, s.gate, s.st, rec, targetByID[id])
	})
	return renderOutcome(os.Stdout, "downloaded", outcome.Succeeded, outcome.Failed)
}

func (s *browseSession) listTrash(ctx context.Context) error {
	entries, err := s.client.ListTrash(ctx)
	if err != nil {
		return err
	}
	renderTrash(os.Stdout, entries)
	return nil
}

func (s *browseSession) restore(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("usage: restore <item-id>...")
	}
	outcome := batch.Run(ctx, args, batch.DefaultMaxConcurrent, func(ctx context.Context, id string) error {
		return s.client.Restore(ctx, id)
	})
	if err := renderOutcome(os.Stdout, "restored", outcome.Succeeded, outcome.Failed); err != nil {
		return err
	}
	return s.listTrash(ctx)
}
