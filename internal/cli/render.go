package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"
	"time"

	"github.com/byflash/drive-cli/internal/grouping"
	"github.com/byflash/drive-cli/internal/models"
	stringutil "github.com/byflash/drive-cli/internal/util/strings"
)

// formatSize renders a byte count in human units.
func formatSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(size)/float64(div), "KMGTPE"[exp])
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Format("2006-01-02 15:04")
}

func lockMarker(locked bool) string {
	if locked {
		return " [locked]"
	}
	return ""
}

// renderPlan prints a listing plan: folders first, then files, the order
// the records already carry.
func renderPlan(w io.Writer, plan grouping.Plan, style string) {
	if plan.EmptyFolder {
		fmt.Fprintln(w, "This folder is empty.")
		return
	}
	if len(plan.Folders) == 0 && len(plan.Files) == 0 {
		fmt.Fprintln(w, "No items.")
		return
	}

	if style == "list" {
		renderPlanList(w, plan)
		return
	}
	renderPlanGrid(w, plan)
}

// renderPlanList renders one row per item with full metadata.
func renderPlanList(w io.Writer, plan grouping.Plan) {
	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	defer tw.Flush()

	for _, folder := range plan.Folders {
		fmt.Fprintf(tw, "d\t%s\t%s\t%d %s\t%s%s\n",
			folder.GroupID, folder.Name, folder.FileCount,
			stringutil.Pluralize("file", int64(folder.FileCount)), folder.Color, lockMarker(folder.Protected))
	}
	for _, file := range plan.Files {
		fmt.Fprintf(tw, "-\t%s\t%s\t%s\t%s%s\n",
			file.ID, file.Name, formatSize(file.Size), formatDate(file.CreatedAt), lockMarker(file.HasPassword))
	}
}

// renderPlanGrid renders compact name-first lines, the default style.
func renderPlanGrid(w io.Writer, plan grouping.Plan) {
	for _, folder := range plan.Folders {
		fmt.Fprintf(w, "[%s]%s  (%d %s, id %s)\n",
			folder.Name, lockMarker(folder.Protected), folder.FileCount,
			stringutil.Pluralize("file", int64(folder.FileCount)), folder.GroupID)
	}
	for _, file := range plan.Files {
		fmt.Fprintf(w, "%s%s  (%s, id %s)\n",
			file.Name, lockMarker(file.HasPassword), formatSize(file.Size), file.ID)
	}
}

// renderTrash prints the trash listing.
func renderTrash(w io.Writer, entries []models.TrashEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, "Trash is empty.")
		return
	}

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	defer tw.Flush()

	for _, entry := range entries {
		kind := "file"
		if entry.ItemType == models.ItemTypeGroup {
			kind = "folder"
		}
		deleted := entry.DeletedAt
		if deleted == "" {
			deleted = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\tdeleted %s\n", entry.ItemID, kind, entry.OriginalName, deleted)
	}
}

// renderOutcome prints per-item batch results and returns an error when any
// item failed, so the command exits non-zero without hiding partial success.
func renderOutcome(w io.Writer, verb string, succeeded []string, failed map[string]error) error {
	for _, id := range succeeded {
		fmt.Fprintf(w, "%s %s\n", verb, id)
	}
	if len(failed) == 0 {
		return nil
	}
	// Deterministic error order for scripting.
	ids := make([]string, 0, len(failed))
	for id := range failed {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		fmt.Fprintf(w, "failed %s: %v\n", id, failed[id])
	}
	return fmt.Errorf("%d of %d item(s) failed", len(failed), len(failed)+len(succeeded))
}
