package snapshot

import (
	"fmt"
	"os"
	"sort"

	"github.com/galdi-project/galdi/internal/checksum"
	"github.com/galdi-project/galdi/internal/galerr"
)

// Build canonicalizes raw scanner entries into a sorted, versioned
// Snapshot. It synthesizes the root entry (path ""), sorts the combined
// entries by path under byte-lexicographic comparison, and verifies the
// invariants of spec section 3. Any violation is an InvariantError — a
// bug indicator, never a recoverable condition. warnings is carried
// through unchanged into the snapshot's own Warnings field, per spec
// section 7: they are part of the result payload, not the envelope.
func Build(root string, entries []Entry, alg checksum.Algorithm, warnings []Warning) (Snapshot, error) {
	rootEntry, err := buildRootEntry(root)
	if err != nil {
		return Snapshot{}, galerr.IO(root, err)
	}

	all := make([]Entry, 0, len(entries)+1)
	all = append(all, rootEntry)
	all = append(all, entries...)

	sort.Slice(all, func(i, j int) bool { return all[i].Path < all[j].Path })

	warned := make(map[string]struct{}, len(warnings))
	for _, w := range warnings {
		warned[w.Path] = struct{}{}
	}
	if err := verifyInvariants(all, warned); err != nil {
		return Snapshot{}, err
	}

	return Snapshot{
		Version:           Version,
		Root:              root,
		ChecksumAlgorithm: alg,
		Count:             len(all),
		Entries:           all,
		Warnings:          warnings,
	}, nil
}

func buildRootEntry(root string) (Entry, error) {
	info, err := os.Lstat(root)
	if err != nil {
		return Entry{}, err
	}

	modeStr, err := rootMode(root)
	if err != nil {
		modeStr = "000"
	}

	return Entry{
		Path:  "",
		Type:  KindDirectory,
		Size:  uint64(max64(info.Size(), 0)),
		Mode:  modeStr,
		Mtime: info.ModTime().UTC().Format("2006-01-02T15:04:05.000000000Z"),
	}, nil
}

func max64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}

// verifyInvariants checks spec section 3's invariants 1-4 in a single
// pass over the already-sorted slice: uniqueness (adjacent duplicates),
// parent presence, and the checksum/target nullability rules. Invariants
// 2 (root-first, root-is-directory) and 5 (target nullability) are
// checked alongside. A file may have a nil checksum only when warned
// holds its path (the scanner could not hash it).
func verifyInvariants(all []Entry, warned map[string]struct{}) error {
	if len(all) == 0 || all[0].Path != "" {
		return galerr.Invariant("root entry (path \"\") missing or not first")
	}
	if all[0].Type != KindDirectory {
		return galerr.Invariant("root entry must have type directory")
	}

	seen := make(map[string]struct{}, len(all))
	for i, e := range all {
		if _, dup := seen[e.Path]; dup {
			return galerr.Invariant(fmt.Sprintf("duplicate path %q", e.Path))
		}
		seen[e.Path] = struct{}{}

		if i > 0 && all[i-1].Path >= e.Path {
			return galerr.Invariant(fmt.Sprintf("entries not strictly sorted at %q", e.Path))
		}

		if e.Path != "" {
			parent := parentPath(e.Path)
			if _, ok := seen[parent]; !ok {
				return galerr.Invariant(fmt.Sprintf("parent of %q not present", e.Path))
			}
		}

		if (e.Type == KindFile) != (e.Checksum != nil) {
			if _, unhashed := warned[e.Path]; e.Type != KindFile || !unhashed {
				return galerr.Invariant(fmt.Sprintf("checksum nullability violated for %q", e.Path))
			}
		}
		if (e.Type == KindSymlink) != (e.Target != nil) {
			return galerr.Invariant(fmt.Sprintf("target nullability violated for %q", e.Path))
		}
	}

	return nil
}

// parentPath returns the root-relative parent of a "/"-separated path.
// The parent of a top-level entry is the root, path "".
func parentPath(p string) string {
	for i := len(p) - 1; i >= 0; i-- {
		if p[i] == '/' {
			return p[:i]
		}
	}
	return ""
}
