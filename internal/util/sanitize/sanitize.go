// Package sanitize cleans server-provided names before they touch the local
// filesystem. Download filenames come from Content-Disposition or the stored
// name and must never escape the target directory.
package sanitize

import (
	"path/filepath"
	"strings"
)

// invisibleChars are zero-width and otherwise invisible Unicode characters
// stripped from names.
var invisibleChars = []string{
	"\u200B", // Zero-width space
	"\u200C", // Zero-width non-joiner
	"\u200D", // Zero-width joiner
	"\uFEFF", // Zero-width no-break space (BOM)
	"\u00AD", // Soft hyphen
	"\u2060", // Word joiner
}

// Filename reduces a server-provided name to a safe basename. Path
// separators and traversal segments are stripped, control and invisible
// characters removed. An empty result falls back to "download".
func Filename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(filepath.Clean("/" + name))

	for _, char := range invisibleChars {
		name = strings.ReplaceAll(name, char, "")
	}
	name = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, name)
	name = strings.TrimSpace(name)

	if name == "" || name == "." || name == "/" {
		return "download"
	}
	return name
}
