// Package state provides the observable session-state container for the
// Byflash Drive client. All mutation funnels through named operations on
// DriveState; there is no ambient global.
package state

import (
	"time"

	"github.com/byflash/drive-cli/internal/events"
	"github.com/byflash/drive-cli/internal/grouping"
	"github.com/byflash/drive-cli/internal/models"
)

// View identifies the active listing.
type View string

const (
	ViewFiles View = "files"
	ViewTrash View = "trash"
)

// Style is the display preference. It is the only view-state field persisted
// across sessions (via config); everything else dies with the session.
type Style string

const (
	StyleGrid Style = "grid"
	StyleList Style = "list"
)

// State event types.
const (
	EventFileListChanged  events.EventType = "file_list_changed"
	EventSelectionChanged events.EventType = "selection_changed"
	EventSortChanged      events.EventType = "sort_changed"
	EventFolderChanged    events.EventType = "folder_changed"
	EventViewChanged      events.EventType = "view_changed"
	EventSessionReset     events.EventType = "session_reset"
)

// FileListChangedEvent is published when the listing is replaced or re-sorted.
type FileListChangedEvent struct {
	events.BaseEvent
	Records []models.FileRecord
	Folder  string
}

// SelectionChangedEvent is published when the selection set changes.
type SelectionChangedEvent struct {
	events.BaseEvent
	SelectedIDs []string
}

// SortChangedEvent is published when the sort settings change.
type SortChangedEvent struct {
	events.BaseEvent
	SortBy    grouping.SortKey
	Ascending bool
}

// FolderChangedEvent is published when the current folder changes.
type FolderChangedEvent struct {
	events.BaseEvent
	Folder string // empty = root
}

// ViewChangedEvent is published when switching between files and trash.
type ViewChangedEvent struct {
	events.BaseEvent
	View View
}

// SessionResetEvent is published when the session state is discarded
// (logout or session expiry).
type SessionResetEvent struct {
	events.BaseEvent
}

func base(t events.EventType) events.BaseEvent {
	return events.BaseEvent{EventType: t, Time: time.Now()}
}
