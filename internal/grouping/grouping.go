// Package grouping partitions the flat file listing into folder buckets.
//
// Folders are not first-class records: a folder exists exactly when at least
// one file carries its group id. Display metadata is denormalized onto every
// file of the group; the first record of a bucket is the representative.
package grouping

import (
	"github.com/byflash/drive-cli/internal/models"
)

// RootTarget is the move destination that clears a file's group assignment.
const RootTarget = "root"

// DefaultFolderColor is used when a group carries no color metadata.
const DefaultFolderColor = "#3b82f6"

// FolderSummary describes one folder as derived from its bucket.
type FolderSummary struct {
	GroupID   string
	Name      string
	Color     string
	Protected bool
	FileCount int
}

// Plan is the rendering plan produced by Partition.
//
// At the root, Folders lists every non-empty group in first-seen order and
// Files holds the root-level files. Inside a folder, Folders is empty and
// Files holds that folder's bucket; EmptyFolder marks the explicit
// "no records matched" case, which is a valid result, not an error.
type Plan struct {
	Folders     []FolderSummary
	Files       []models.FileRecord
	EmptyFolder bool
}

// Partition builds the rendering plan for the given listing and current
// folder ("" = root). Single pass; input order is preserved within each
// bucket, so partitioning an unchanged listing twice yields identical plans.
func Partition(records []models.FileRecord, currentFolder string) Plan {
	buckets := make(map[string][]models.FileRecord)
	var order []string // first-seen group order keeps the plan deterministic

	for _, rec := range records {
		if rec.ID == "" {
			continue
		}
		key := rec.GroupID
		if key == "" {
			key = RootTarget
		}
		if _, seen := buckets[key]; !seen {
			order = append(order, key)
		}
		buckets[key] = append(buckets[key], rec)
	}

	if currentFolder != "" {
		bucket, ok := buckets[currentFolder]
		if !ok || len(bucket) == 0 {
			return Plan{EmptyFolder: true}
		}
		return Plan{Files: bucket}
	}

	var plan Plan
	for _, key := range order {
		if key == RootTarget {
			continue
		}
		plan.Folders = append(plan.Folders, summarize(key, buckets[key]))
	}
	plan.Files = buckets[RootTarget]
	return plan
}

// summarize derives a folder summary from its bucket. Metadata comes from
// the first record; the protection flag is the logical OR across the bucket,
// so one protected file is enough to lock the whole folder.
func summarize(groupID string, bucket []models.FileRecord) FolderSummary {
	meta := bucket[0]

	name := meta.GroupName
	if name == "" {
		name = "Folder " + shortID(groupID)
	}
	color := meta.GroupColor
	if color == "" {
		color = DefaultFolderColor
	}

	protected := false
	for _, rec := range bucket {
		if rec.GroupProtected || rec.HasPassword {
			protected = true
			break
		}
	}

	return FolderSummary{
		GroupID:   groupID,
		Name:      name,
		Color:     color,
		Protected: protected,
		FileCount: len(bucket),
	}
}

func shortID(id string) string {
	if len(id) > 6 {
		return id[:6]
	}
	return id
}
