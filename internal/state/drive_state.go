package state

import (
	"sort"
	"sync"

	"github.com/byflash/drive-cli/internal/events"
	"github.com/byflash/drive-cli/internal/grouping"
	"github.com/byflash/drive-cli/internal/models"
)

// DriveState holds everything the client knows between two listings: the
// normalized records, the selection, the navigation position, the sort and
// display preferences, and the per-session group password cache.
//
// Thread-safe; changes publish typed events when a bus is attached
// (bus may be nil for plain one-shot CLI use).
type DriveState struct {
	bus *events.EventBus

	mu             sync.RWMutex
	records        []models.FileRecord
	selected       map[string]bool
	selectedFolder string // single-slot folder target, exclusive with selected
	currentFolder  string // empty = root
	view           View
	sortBy         grouping.SortKey
	ascending      bool
	style          Style
	passwords      map[string]string // groupID -> verified password, session only
}

// NewDriveState creates a state container with default settings.
func NewDriveState(bus *events.EventBus) *DriveState {
	return &DriveState{
		bus:       bus,
		selected:  make(map[string]bool),
		view:      ViewFiles,
		sortBy:    grouping.SortByName,
		ascending: true,
		style:     StyleGrid,
		passwords: make(map[string]string),
	}
}

func (s *DriveState) publish(ev events.Event) {
	if s.bus != nil {
		s.bus.Publish(ev)
	}
}

// SetRecords replaces the listing and applies the current sort.
func (s *DriveState) SetRecords(records []models.FileRecord) {
	s.mu.Lock()
	s.records = records
	grouping.SortRecords(s.records, s.sortBy, s.ascending)
	recordsCopy := make([]models.FileRecord, len(s.records))
	copy(recordsCopy, s.records)
	folder := s.currentFolder
	s.mu.Unlock()

	s.publish(&FileListChangedEvent{BaseEvent: base(EventFileListChanged), Records: recordsCopy, Folder: folder})
}

// Records returns a copy of the current listing.
func (s *DriveState) Records() []models.FileRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := make([]models.FileRecord, len(s.records))
	copy(records, s.records)
	return records
}

// FindByID returns the record with the given id, if present.
func (s *DriveState) FindByID(id string) (models.FileRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, rec := range s.records {
		if rec.ID == id {
			return rec, true
		}
	}
	return models.FileRecord{}, false
}

// Plan builds the rendering plan for the current folder.
func (s *DriveState) Plan() grouping.Plan {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return grouping.Partition(s.records, s.currentFolder)
}

// ToggleSelect adds the file id to the selection if absent, removes it if
// present. Selecting a file clears the folder target (mutual exclusion).
func (s *DriveState) ToggleSelect(id string) {
	s.mu.Lock()
	if s.selected[id] {
		delete(s.selected, id)
	} else {
		s.selected[id] = true
	}
	s.selectedFolder = ""
	ids := s.selectedIDsLocked()
	s.mu.Unlock()

	s.publish(&SelectionChangedEvent{BaseEvent: base(EventSelectionChanged), SelectedIDs: ids})
}

// ClearSelection empties the selection set and the folder target.
func (s *DriveState) ClearSelection() {
	s.mu.Lock()
	s.selected = make(map[string]bool)
	s.selectedFolder = ""
	s.mu.Unlock()

	s.publish(&SelectionChangedEvent{BaseEvent: base(EventSelectionChanged), SelectedIDs: []string{}})
}

// IsSelected reports whether the file id is selected.
func (s *DriveState) IsSelected(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selected[id]
}

// SelectedIDs returns the selected file ids in deterministic order.
func (s *DriveState) SelectedIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedIDsLocked()
}

func (s *DriveState) selectedIDsLocked() []string {
	ids := make([]string, 0, len(s.selected))
	for id := range s.selected {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// SelectedCount returns the size of the selection set.
func (s *DriveState) SelectedCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.selected)
}

// TargetFolder sets the single-slot folder reference used for folder
// actions. Targeting a folder clears the file selection (mutual exclusion:
// the selection set never holds a folder id).
func (s *DriveState) TargetFolder(groupID string) {
	s.mu.Lock()
	s.selectedFolder = groupID
	s.selected = make(map[string]bool)
	s.mu.Unlock()

	s.publish(&SelectionChangedEvent{BaseEvent: base(EventSelectionChanged), SelectedIDs: []string{}})
}

// TargetedFolder returns the folder target, empty when none.
func (s *DriveState) TargetedFolder() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.selectedFolder
}

// SetView switches between the files and trash listings. Leaving the files
// view discards the selection.
func (s *DriveState) SetView(view View) {
	s.mu.Lock()
	changed := s.view != view
	s.view = view
	if view != ViewFiles {
		s.selected = make(map[string]bool)
		s.selectedFolder = ""
	}
	s.mu.Unlock()

	if changed {
		s.publish(&ViewChangedEvent{BaseEvent: base(EventViewChanged), View: view})
	}
}

// View returns the active listing view.
func (s *DriveState) View() View {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.view
}

// ToggleSort selects a sort key: choosing the current key flips the
// direction, choosing a new key resets to ascending. The listing is
// re-sorted immediately.
func (s *DriveState) ToggleSort(key grouping.SortKey) {
	s.mu.Lock()
	if s.sortBy == key {
		s.ascending = !s.ascending
	} else {
		s.sortBy = key
		s.ascending = true
	}
	grouping.SortRecords(s.records, s.sortBy, s.ascending)
	sortBy, ascending := s.sortBy, s.ascending
	recordsCopy := make([]models.FileRecord, len(s.records))
	copy(recordsCopy, s.records)
	folder := s.currentFolder
	s.mu.Unlock()

	s.publish(&SortChangedEvent{BaseEvent: base(EventSortChanged), SortBy: sortBy, Ascending: ascending})
	s.publish(&FileListChangedEvent{BaseEvent: base(EventFileListChanged), Records: recordsCopy, Folder: folder})
}

// SetSort sets the sort key and direction explicitly and re-sorts.
func (s *DriveState) SetSort(key grouping.SortKey, ascending bool) {
	s.mu.Lock()
	s.sortBy = key
	s.ascending = ascending
	grouping.SortRecords(s.records, s.sortBy, s.ascending)
	recordsCopy := make([]models.FileRecord, len(s.records))
	copy(recordsCopy, s.records)
	folder := s.currentFolder
	s.mu.Unlock()

	s.publish(&SortChangedEvent{BaseEvent: base(EventSortChanged), SortBy: key, Ascending: ascending})
	s.publish(&FileListChangedEvent{BaseEvent: base(EventFileListChanged), Records: recordsCopy, Folder: folder})
}

// Sort returns the current sort settings.
func (s *DriveState) Sort() (grouping.SortKey, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sortBy, s.ascending
}

// SetStyle sets the display preference.
func (s *DriveState) SetStyle(style Style) {
	s.mu.Lock()
	s.style = style
	s.mu.Unlock()
}

// Style returns the display preference.
func (s *DriveState) Style() Style {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.style
}

// EnterFolder sets the current folder. Password gating happens upstream in
// the gate package; by the time this is called entry has been granted.
func (s *DriveState) EnterFolder(groupID string) {
	s.mu.Lock()
	s.currentFolder = groupID
	s.mu.Unlock()

	s.publish(&FolderChangedEvent{BaseEvent: base(EventFolderChanged), Folder: groupID})
}

// LeaveFolder navigates back to the root and invalidates the cached
// password for the folder being left: returning later prompts again.
func (s *DriveState) LeaveFolder() {
	s.mu.Lock()
	left := s.currentFolder
	s.currentFolder = ""
	if left != "" {
		delete(s.passwords, left)
	}
	s.mu.Unlock()

	s.publish(&FolderChangedEvent{BaseEvent: base(EventFolderChanged), Folder: ""})
}

// CurrentFolder returns the current folder id, empty at the root.
func (s *DriveState) CurrentFolder() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.currentFolder
}

// CachePassword stores a verified password for a group, scoped to this
// session and this group only.
func (s *DriveState) CachePassword(groupID, password string) {
	if groupID == "" {
		return
	}
	s.mu.Lock()
	s.passwords[groupID] = password
	s.mu.Unlock()
}

// CachedPassword returns the session-cached password for a group.
func (s *DriveState) CachedPassword(groupID string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pw, ok := s.passwords[groupID]
	return pw, ok
}

// ResetSession discards all session state: listing, selection, navigation,
// and every cached password. Called on logout and on session expiry (401).
// The display style survives; it is persisted outside the session.
func (s *DriveState) ResetSession() {
	s.mu.Lock()
	s.records = nil
	s.selected = make(map[string]bool)
	s.selectedFolder = ""
	s.currentFolder = ""
	s.view = ViewFiles
	s.passwords = make(map[string]string)
	s.mu.Unlock()

	s.publish(&SessionResetEvent{BaseEvent: base(EventSessionReset)})
}
