//go:build unix

package snapshot

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// rootMode projects the root directory's POSIX permission bits the same
// way the scanner does for every other entry, so the synthesized root
// entry's Mode field is computed identically to a scanned one.
func rootMode(path string) (string, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return "", err
	}

	perm := uint32(st.Mode) & 0o777 //nolint:gosec // low 9 bits fit uint32
	special := (uint32(st.Mode) >> 9) & 0o7
	if special != 0 {
		return fmt.Sprintf("%o%03o", special, perm), nil
	}
	return fmt.Sprintf("%03o", perm), nil
}
