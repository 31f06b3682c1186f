package grouping

import (
	"reflect"
	"testing"
	"time"

	"github.com/byflash/drive-cli/internal/models"
)

func sampleListing() []models.FileRecord {
	return []models.FileRecord{
		{ID: "f1", Name: "root-a.txt", Size: 10},
		{ID: "f2", Name: "inv-1.pdf", GroupID: "g1", GroupName: "Invoices", GroupColor: "#ff0000"},
		{ID: "f3", Name: "root-b.txt", Size: 20},
		{ID: "f4", Name: "inv-2.pdf", GroupID: "g1"},
		{ID: "f5", Name: "scan.png", GroupID: "g2", HasPassword: true},
	}
}

func TestPartitionAtRoot(t *testing.T) {
	plan := Partition(sampleListing(), "")

	if len(plan.Folders) != 2 {
		t.Fatalf("got %d folders, want 2", len(plan.Folders))
	}
	if plan.Folders[0].GroupID != "g1" || plan.Folders[1].GroupID != "g2" {
		t.Errorf("folder order = [%s %s], want first-seen [g1 g2]",
			plan.Folders[0].GroupID, plan.Folders[1].GroupID)
	}
	if plan.Folders[0].FileCount != 2 {
		t.Errorf("g1 FileCount = %d, want 2", plan.Folders[0].FileCount)
	}
	if plan.Folders[0].Name != "Invoices" || plan.Folders[0].Color != "#ff0000" {
		t.Errorf("g1 metadata = (%q, %q), want representative's (Invoices, #ff0000)",
			plan.Folders[0].Name, plan.Folders[0].Color)
	}

	if len(plan.Files) != 2 {
		t.Fatalf("got %d root files, want 2", len(plan.Files))
	}
	if plan.Files[0].ID != "f1" || plan.Files[1].ID != "f3" {
		t.Errorf("root files = [%s %s], want [f1 f3]", plan.Files[0].ID, plan.Files[1].ID)
	}
	if plan.EmptyFolder {
		t.Error("root plan should not be marked as empty folder")
	}
}

func TestPartitionInsideFolder(t *testing.T) {
	plan := Partition(sampleListing(), "g1")

	if len(plan.Folders) != 0 {
		t.Errorf("folder view should list no subfolders, got %d", len(plan.Folders))
	}
	if len(plan.Files) != 2 || plan.Files[0].ID != "f2" || plan.Files[1].ID != "f4" {
		t.Errorf("g1 files wrong: %+v", plan.Files)
	}
}

func TestPartitionEmptyFolder(t *testing.T) {
	plan := Partition(sampleListing(), "missing")
	if !plan.EmptyFolder {
		t.Error("unknown folder should yield the explicit empty-folder result")
	}
	if len(plan.Files) != 0 {
		t.Errorf("empty folder should list no files, got %d", len(plan.Files))
	}
}

func TestPartitionEmptyInput(t *testing.T) {
	plan := Partition(nil, "")
	if len(plan.Folders) != 0 || len(plan.Files) != 0 || plan.EmptyFolder {
		t.Errorf("empty input should give an empty root plan, got %+v", plan)
	}
}

func TestPartitionDeterminism(t *testing.T) {
	records := sampleListing()
	first := Partition(records, "")
	second := Partition(records, "")

	if !reflect.DeepEqual(first, second) {
		t.Error("partitioning an unchanged listing twice should yield identical plans")
	}
}

func TestPartitionProtectionORRule(t *testing.T) {
	records := []models.FileRecord{
		{ID: "a", GroupID: "g", HasPassword: false},
		{ID: "b", GroupID: "g", HasPassword: true},
		{ID: "c", GroupID: "g", HasPassword: false},
	}

	plan := Partition(records, "")
	if len(plan.Folders) != 1 {
		t.Fatalf("got %d folders, want 1", len(plan.Folders))
	}
	if !plan.Folders[0].Protected {
		t.Error("a single protected file should lock the whole folder")
	}
}

func TestPartitionSkipsMalformedRecords(t *testing.T) {
	records := []models.FileRecord{
		{ID: "", Name: "ghost"},
		{ID: "f1", Name: "real.txt"},
	}

	plan := Partition(records, "")
	if len(plan.Files) != 1 || plan.Files[0].ID != "f1" {
		t.Errorf("records without an id must be skipped, got %+v", plan.Files)
	}
}

func TestPartitionFallbackMetadata(t *testing.T) {
	records := []models.FileRecord{
		{ID: "a", GroupID: "0123456789"},
	}

	plan := Partition(records, "")
	if plan.Folders[0].Name != "Folder 012345" {
		t.Errorf("fallback name = %q, want %q", plan.Folders[0].Name, "Folder 012345")
	}
	if plan.Folders[0].Color != DefaultFolderColor {
		t.Errorf("fallback color = %q, want %q", plan.Folders[0].Color, DefaultFolderColor)
	}
}

func TestSortRecordsStability(t *testing.T) {
	records := []models.FileRecord{
		{ID: "1", Name: "b", Size: 10},
		{ID: "2", Name: "a", Size: 10},
		{ID: "3", Name: "a", Size: 5},
	}

	SortRecords(records, SortBySize, true)
	if records[0].ID != "3" {
		t.Errorf("first = %s, want 3 (smallest)", records[0].ID)
	}
	// The two size-10 entries keep their original relative order.
	if records[1].ID != "1" || records[2].ID != "2" {
		t.Errorf("tie order = [%s %s], want [1 2]", records[1].ID, records[2].ID)
	}

	SortRecords(records, SortBySize, false)
	// Descending must also be stable for ties: after the ascending sort the
	// order was [3 1 2]; ties 1 and 2 keep that relative order.
	if records[0].ID != "1" || records[1].ID != "2" || records[2].ID != "3" {
		t.Errorf("descending order = [%s %s %s], want [1 2 3]",
			records[0].ID, records[1].ID, records[2].ID)
	}
}

func TestSortRecordsByName(t *testing.T) {
	records := []models.FileRecord{
		{ID: "1", Name: "Zebra.txt"},
		{ID: "2", Name: "alpha.txt"},
		{ID: "3", Name: "Beta.txt"},
	}

	SortRecords(records, SortByName, true)
	if records[0].ID != "2" || records[1].ID != "3" || records[2].ID != "1" {
		t.Errorf("name sort should be case-insensitive, got [%s %s %s]",
			records[0].ID, records[1].ID, records[2].ID)
	}
}

func TestSortRecordsByDateZeroSortsOldest(t *testing.T) {
	now := time.Now()
	records := []models.FileRecord{
		{ID: "1", CreatedAt: now},
		{ID: "2"}, // zero timestamp
		{ID: "3", CreatedAt: now.Add(-time.Hour)},
	}

	SortRecords(records, SortByDate, true)
	if records[0].ID != "2" {
		t.Errorf("zero timestamp should sort first ascending, got %s", records[0].ID)
	}
	if records[1].ID != "3" || records[2].ID != "1" {
		t.Errorf("date order = [%s %s], want [3 1]", records[1].ID, records[2].ID)
	}
}
