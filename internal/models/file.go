// Package models defines the data shapes exchanged with the Byflash Drive API.
package models

import (
	"strconv"
	"strings"
	"time"
)

// Flag is a boolean that tolerates the loose encodings the API emits for
// protection flags: true/false, 0/1, "0"/"1", null. Normalizing here keeps
// the loose comparisons out of the business logic.
type Flag bool

// UnmarshalJSON accepts bool, number, and string encodings.
func (f *Flag) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	switch strings.ToLower(s) {
	case "1", "true", "yes":
		*f = true
	default:
		*f = false
	}
	return nil
}

// LooseID is an identifier that may arrive as a number or a string.
// null normalizes to the empty id.
type LooseID string

// UnmarshalJSON accepts number, string, and null encodings.
func (id *LooseID) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	if s == "null" {
		s = ""
	}
	*id = LooseID(s)
	return nil
}

// ByteCount is a file size that may arrive as a number or a numeric string.
// Negative and unparseable values normalize to zero.
type ByteCount int64

// UnmarshalJSON accepts number and string encodings.
func (b *ByteCount) UnmarshalJSON(data []byte) error {
	s := strings.Trim(strings.TrimSpace(string(data)), `"`)
	n, err := strconv.ParseInt(s, 10, 64)
	if err != nil || n < 0 {
		*b = 0
		return nil
	}
	*b = ByteCount(n)
	return nil
}

// FileRow is the raw wire representation of one file listing row.
// Group metadata is denormalized onto every row sharing a group_id.
type FileRow struct {
	ID             LooseID   `json:"id"`
	Name           string    `json:"name"`
	Size           ByteCount `json:"size"`
	GroupID        LooseID   `json:"group_id"`
	HasPassword    Flag      `json:"has_password"`
	CreatedAt      string    `json:"created_at"`
	DownloadURL    string    `json:"download_url"`
	GroupName      string    `json:"group_name"`
	GroupColor     string    `json:"group_color"`
	GroupProtected Flag      `json:"is_group_protected"`
}

// FileRecord is the normalized form of a FileRow, the shape all client-side
// logic operates on. The client never constructs one from scratch; records
// are received from the server and re-displayed.
type FileRecord struct {
	ID          string
	Name        string
	Size        int64
	GroupID     string // empty = file lives at the root
	HasPassword bool
	CreatedAt   time.Time // zero when the server sent nothing parseable
	DownloadURL string

	// Denormalized metadata of the owning group, if any.
	GroupName      string
	GroupColor     string
	GroupProtected bool
}

// createdAtLayouts are the timestamp formats observed from the API.
var createdAtLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseCreatedAt(s string) time.Time {
	for _, layout := range createdAtLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

// Normalize converts a wire row into a FileRecord.
func (r FileRow) Normalize() FileRecord {
	return FileRecord{
		ID:             string(r.ID),
		Name:           r.Name,
		Size:           int64(r.Size),
		GroupID:        string(r.GroupID),
		HasPassword:    bool(r.HasPassword),
		CreatedAt:      parseCreatedAt(r.CreatedAt),
		DownloadURL:    r.DownloadURL,
		GroupName:      r.GroupName,
		GroupColor:     r.GroupColor,
		GroupProtected: bool(r.GroupProtected),
	}
}

// NormalizeFiles converts raw rows into records. Rows without an id are
// dropped: the upstream API is trusted but not hardened against, and a
// malformed row must not break the listing.
func NormalizeFiles(rows []FileRow) []FileRecord {
	records := make([]FileRecord, 0, len(rows))
	for _, row := range rows {
		if row.ID == "" {
			continue
		}
		records = append(records, row.Normalize())
	}
	return records
}

// Session holds the credentials issued by a successful login.
// The token is opaque; the client only replays it.
type Session struct {
	Token string
	Email string
}
