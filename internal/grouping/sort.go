package grouping

import (
	"sort"
	"strings"

	"github.com/byflash/drive-cli/internal/models"
)

// SortKey selects the file attribute to order by.
type SortKey string

const (
	SortByName SortKey = "name"
	SortBySize SortKey = "size"
	SortByDate SortKey = "date"
)

// ValidSortKey reports whether key names a supported sort attribute.
func ValidSortKey(key SortKey) bool {
	switch key {
	case SortByName, SortBySize, SortByDate:
		return true
	}
	return false
}

// SortRecords orders records in place by the given key and direction.
// The sort is stable: ties keep their original relative order in both
// directions. Name compares case-insensitively; a zero CreatedAt sorts as
// the oldest possible date; Size is already normalized (missing = 0).
func SortRecords(records []models.FileRecord, key SortKey, ascending bool) {
	if len(records) < 2 {
		return
	}

	sort.SliceStable(records, func(i, j int) bool {
		c := compare(records[i], records[j], key)
		if ascending {
			return c < 0
		}
		return c > 0
	})
}

func compare(a, b models.FileRecord, key SortKey) int {
	switch key {
	case SortBySize:
		switch {
		case a.Size < b.Size:
			return -1
		case a.Size > b.Size:
			return 1
		}
		return 0
	case SortByDate:
		switch {
		case a.CreatedAt.Before(b.CreatedAt):
			return -1
		case a.CreatedAt.After(b.CreatedAt):
			return 1
		}
		return 0
	default: // SortByName
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	}
}
