//go:build !unix

package scanner

import "os"

// projectMode provides the best-effort permission projection required by
// spec section 4.1 for platforms lacking POSIX mode bits: readonly maps to
// "444" for files, writable maps to "644", and directories always project
// as "755" since Windows has no meaningful per-directory write bit.
func projectMode(path string) (string, error) {
	info, err := os.Lstat(path)
	if err != nil {
		return "", err
	}

	if info.IsDir() {
		return "755", nil
	}

	if info.Mode().Perm()&0o200 == 0 {
		return "444", nil
	}
	return "644", nil
}
