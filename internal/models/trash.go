package models

// ItemType distinguishes the two kinds of soft-deletable items.
type ItemType string

const (
	ItemTypeFile  ItemType = "file"
	ItemTypeGroup ItemType = "group"
)

// TrashRow is the raw wire representation of one trash listing row.
type TrashRow struct {
	ItemID       LooseID `json:"item_id"`
	ItemType     string  `json:"item_type"`
	OriginalName string  `json:"original_name"`
	CreatedAt    string  `json:"created_at"` // deletion timestamp
}

// TrashEntry represents a soft-deleted file or group, restorable until purged.
type TrashEntry struct {
	ItemID       string
	ItemType     ItemType
	OriginalName string
	DeletedAt    string // display form of the deletion timestamp
}

// Normalize converts a wire row into a TrashEntry. Unknown item types
// default to file so the entry stays restorable.
func (r TrashRow) Normalize() TrashEntry {
	itemType := ItemTypeFile
	if r.ItemType == string(ItemTypeGroup) {
		itemType = ItemTypeGroup
	}
	name := r.OriginalName
	if name == "" {
		name = "(deleted item)"
	}
	return TrashEntry{
		ItemID:       string(r.ItemID),
		ItemType:     itemType,
		OriginalName: name,
		DeletedAt:    r.CreatedAt,
	}
}

// NormalizeTrash converts raw trash rows into entries, dropping rows
// without an item id.
func NormalizeTrash(rows []TrashRow) []TrashEntry {
	entries := make([]TrashEntry, 0, len(rows))
	for _, row := range rows {
		if row.ItemID == "" {
			continue
		}
		entries = append(entries, row.Normalize())
	}
	return entries
}
