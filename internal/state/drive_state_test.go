package state

import (
	"testing"

	"github.com/byflash/drive-cli/internal/grouping"
	"github.com/byflash/drive-cli/internal/models"
)

func testRecords() []models.FileRecord {
	return []models.FileRecord{
		{ID: "f1", Name: "b.txt", Size: 20},
		{ID: "f2", Name: "a.txt", Size: 10},
		{ID: "f3", Name: "c.txt", Size: 30, GroupID: "g1"},
	}
}

func TestSetRecordsAppliesCurrentSort(t *testing.T) {
	s := NewDriveState(nil)
	s.SetRecords(testRecords())

	records := s.Records()
	if records[0].ID != "f2" || records[1].ID != "f1" || records[2].ID != "f3" {
		t.Errorf("default name-ascending order = [%s %s %s], want [f2 f1 f3]",
			records[0].ID, records[1].ID, records[2].ID)
	}
}

func TestToggleSelectIsIdempotentPair(t *testing.T) {
	s := NewDriveState(nil)

	s.ToggleSelect("f1")
	if !s.IsSelected("f1") || s.SelectedCount() != 1 {
		t.Fatal("first toggle should select")
	}
	s.ToggleSelect("f1")
	if s.IsSelected("f1") || s.SelectedCount() != 0 {
		t.Error("second toggle should deselect")
	}
}

func TestSelectedIDsDeterministicOrder(t *testing.T) {
	s := NewDriveState(nil)
	s.ToggleSelect("z")
	s.ToggleSelect("a")
	s.ToggleSelect("m")

	ids := s.SelectedIDs()
	if len(ids) != 3 || ids[0] != "a" || ids[1] != "m" || ids[2] != "z" {
		t.Errorf("SelectedIDs = %v, want sorted [a m z]", ids)
	}
}

func TestFileAndFolderSelectionMutuallyExclusive(t *testing.T) {
	s := NewDriveState(nil)

	s.ToggleSelect("f1")
	s.TargetFolder("g1")
	if s.SelectedCount() != 0 {
		t.Error("targeting a folder must clear the file selection")
	}
	if s.TargetedFolder() != "g1" {
		t.Errorf("TargetedFolder = %q, want g1", s.TargetedFolder())
	}

	s.ToggleSelect("f2")
	if s.TargetedFolder() != "" {
		t.Error("selecting a file must clear the folder target")
	}
}

func TestSetViewTrashClearsSelection(t *testing.T) {
	s := NewDriveState(nil)
	s.ToggleSelect("f1")

	s.SetView(ViewTrash)
	if s.View() != ViewTrash {
		t.Errorf("view = %q, want trash", s.View())
	}
	if s.SelectedCount() != 0 {
		t.Error("switching to trash must clear the selection")
	}
}

func TestToggleSortSemantics(t *testing.T) {
	s := NewDriveState(nil)
	s.SetRecords(testRecords())

	s.ToggleSort(grouping.SortBySize)
	if key, asc := s.Sort(); key != grouping.SortBySize || !asc {
		t.Errorf("new key should reset to ascending, got (%s, %v)", key, asc)
	}
	if records := s.Records(); records[0].ID != "f2" {
		t.Errorf("size ascending first = %s, want f2", records[0].ID)
	}

	s.ToggleSort(grouping.SortBySize)
	if _, asc := s.Sort(); asc {
		t.Error("same key should flip direction")
	}
	if records := s.Records(); records[0].ID != "f3" {
		t.Errorf("size descending first = %s, want f3", records[0].ID)
	}
}

func TestSetSortExplicitDirection(t *testing.T) {
	s := NewDriveState(nil)
	s.SetRecords(testRecords())

	s.SetSort(grouping.SortBySize, false)
	if key, asc := s.Sort(); key != grouping.SortBySize || asc {
		t.Errorf("Sort = (%s, %v), want (size, false)", key, asc)
	}
	if records := s.Records(); records[0].ID != "f3" {
		t.Errorf("size descending first = %s, want f3", records[0].ID)
	}

	// Unlike ToggleSort, repeating the call keeps the direction.
	s.SetSort(grouping.SortBySize, false)
	if _, asc := s.Sort(); asc {
		t.Error("SetSort must not flip direction on repeat")
	}
}

func TestLeaveFolderInvalidatesCachedPassword(t *testing.T) {
	s := NewDriveState(nil)
	s.CachePassword("g1", "secret")
	s.CachePassword("g2", "other")

	s.EnterFolder("g1")
	if s.CurrentFolder() != "g1" {
		t.Fatalf("CurrentFolder = %q, want g1", s.CurrentFolder())
	}

	s.LeaveFolder()
	if s.CurrentFolder() != "" {
		t.Error("LeaveFolder should return to root")
	}
	if _, ok := s.CachedPassword("g1"); ok {
		t.Error("leaving a folder must drop its cached password")
	}
	if _, ok := s.CachedPassword("g2"); !ok {
		t.Error("passwords for other folders must survive")
	}
}

func TestCachePasswordIgnoresEmptyGroup(t *testing.T) {
	s := NewDriveState(nil)
	s.CachePassword("", "secret")
	if _, ok := s.CachedPassword(""); ok {
		t.Error("empty group id must never be cached")
	}
}

func TestResetSessionClearsEverything(t *testing.T) {
	s := NewDriveState(nil)
	s.SetRecords(testRecords())
	s.ToggleSelect("f1")
	s.EnterFolder("g1")
	s.CachePassword("g1", "secret")
	s.SetView(ViewTrash)
	s.SetStyle(StyleList)

	s.ResetSession()

	if len(s.Records()) != 0 {
		t.Error("records should be cleared")
	}
	if s.SelectedCount() != 0 || s.TargetedFolder() != "" {
		t.Error("selection should be cleared")
	}
	if s.CurrentFolder() != "" {
		t.Error("navigation should return to root")
	}
	if _, ok := s.CachedPassword("g1"); ok {
		t.Error("password cache should be emptied")
	}
	if s.View() != ViewFiles {
		t.Error("view should return to files")
	}
	if s.Style() != StyleList {
		t.Error("display style is persisted elsewhere and must survive reset")
	}
}

func TestPlanUsesCurrentFolder(t *testing.T) {
	s := NewDriveState(nil)
	s.SetRecords(testRecords())

	root := s.Plan()
	if len(root.Folders) != 1 || len(root.Files) != 2 {
		t.Fatalf("root plan = %d folders %d files, want 1/2", len(root.Folders), len(root.Files))
	}

	s.EnterFolder("g1")
	inside := s.Plan()
	if len(inside.Files) != 1 || inside.Files[0].ID != "f3" {
		t.Errorf("folder plan files = %+v, want [f3]", inside.Files)
	}
}
