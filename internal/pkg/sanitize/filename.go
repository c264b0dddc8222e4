// Package sanitize normalizes user-supplied filenames before they are
// stored as display metadata. The sanitized name is never used as a
// storage key.
package sanitize

import (
	"path/filepath"
	"strings"
	"unicode"
)

// Filename strips path components and unsafe characters from name.
// Whitespace runs collapse to a single underscore. The result may be
// empty when the input carries no safe characters at all.
func Filename(name string) string {
	// Drop any directory part, with either separator convention.
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	if name == "." || name == "/" {
		return ""
	}

	var b strings.Builder
	lastUnderscore := false
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-':
			b.WriteRune(r)
			lastUnderscore = false
		case r == '_' || unicode.IsSpace(r):
			if !lastUnderscore {
				b.WriteRune('_')
				lastUnderscore = true
			}
		}
	}

	out := strings.Trim(b.String(), "._")
	return out
}
