package scanner

import (
	"path/filepath"
	"time"
)

// formatMtime renders t as the RFC-3339/ISO-8601 UTC timestamp with
// nanosecond precision that spec section 3 requires for Entry.Mtime.
func formatMtime(t time.Time) string {
	return t.UTC().Format("2006-01-02T15:04:05.000000000Z")
}

// toSlash normalizes a symlink target to use "/" separators, a no-op on
// platforms where that is already the separator.
func toSlash(s string) string {
	return filepath.ToSlash(s)
}

// filepathFromSlash converts a "/"-separated root-relative path back to
// the host's native separator for filesystem calls.
func filepathFromSlash(s string) string {
	return filepath.FromSlash(s)
}
