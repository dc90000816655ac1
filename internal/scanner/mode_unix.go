//go:build unix

package scanner

import (
	"fmt"

	"golang.org/x/sys/unix"
)

// projectMode reads the raw permission and special bits directly from the
// platform's lstat(2) result, mirroring the teacher's direct-syscall style
// (worker.go's unix.Fchmod/unix.UtimesNanoAt) rather than trusting
// os.FileInfo's cross-platform approximation. Returns a 3- or 4-digit
// octal string: special bits (setuid/setgid/sticky) only prefix the
// permission digits when at least one is set.
func projectMode(path string) (string, error) {
	var st unix.Stat_t
	if err := unix.Lstat(path, &st); err != nil {
		return "", err
	}

	perm := uint32(st.Mode) & 0o777
	special := (uint32(st.Mode) >> 9) & 0o7

	if special != 0 {
		return fmt.Sprintf("%o%03o", special, perm), nil
	}
	return fmt.Sprintf("%03o", perm), nil
}
