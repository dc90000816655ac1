// Package differ computes the set-algebraic comparison between two
// snapshots: which paths were added, removed, or modified, and for
// modified paths, which attributes changed.
package differ

import (
	"sort"

	"github.com/galdi-project/galdi/internal/galerr"
	"github.com/galdi-project/galdi/internal/snapshot"
)

// ChangeType classifies a Difference.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeRemoved  ChangeType = "removed"
	ChangeModified ChangeType = "modified"
)

// Attribute names a field that differs between a source and target Entry
// for the same path.
const (
	AttrType    = "type"
	AttrSize    = "size"
	AttrMode    = "mode"
	AttrMtime   = "mtime"
	AttrContent = "content"
	AttrTarget  = "target"
)

// Difference is one per-path record for a path that is not unchanged.
type Difference struct {
	Path       string          `json:"path"`
	ChangeType ChangeType      `json:"change_type"`
	Changes    []string        `json:"changes,omitempty"`
	Source     *snapshot.Entry `json:"source"`
	Target     *snapshot.Entry `json:"target"`
}

// Summary tallies the differences by change type, plus the count of
// paths present in both snapshots with no attribute differences.
type Summary struct {
	Added     int `json:"added"`
	Removed   int `json:"removed"`
	Modified  int `json:"modified"`
	Unchanged int `json:"unchanged"`
}

// Diff is the outcome of comparing a source snapshot against a target
// snapshot.
type Diff struct {
	Identical   bool         `json:"identical"`
	Summary     Summary      `json:"summary"`
	Differences []Difference `json:"differences"`
}

// Compute compares source against target and returns their Diff. The two
// snapshots must share a checksum algorithm; comparing checksums computed
// under different algorithms is meaningless, so a mismatch is refused
// rather than silently treated as a content change.
func Compute(source, target snapshot.Snapshot) (Diff, error) {
	if source.ChecksumAlgorithm != target.ChecksumAlgorithm {
		return Diff{}, galerr.New(
			galerr.KindAlgorithmMismatch,
			"source and target snapshots use different checksum algorithms",
		)
	}

	sourceByPath := source.ByPath()
	targetByPath := target.ByPath()

	paths := make(map[string]struct{}, len(sourceByPath)+len(targetByPath))
	for p := range sourceByPath {
		paths[p] = struct{}{}
	}
	for p := range targetByPath {
		paths[p] = struct{}{}
	}

	sorted := make([]string, 0, len(paths))
	for p := range paths {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	var diffs []Difference
	var summary Summary

	for _, p := range sorted {
		sEntry, inSource := sourceByPath[p]
		tEntry, inTarget := targetByPath[p]

		switch {
		case inSource && !inTarget:
			summary.Removed++
			diffs = append(diffs, Difference{
				Path:       p,
				ChangeType: ChangeRemoved,
				Source:     &sEntry,
				Target:     nil,
			})

		case !inSource && inTarget:
			summary.Added++
			diffs = append(diffs, Difference{
				Path:       p,
				ChangeType: ChangeAdded,
				Source:     nil,
				Target:     &tEntry,
			})

		default:
			if sEntry.Equal(tEntry) {
				summary.Unchanged++
				continue
			}
			changes := attributeChanges(sEntry, tEntry)
			summary.Modified++
			diffs = append(diffs, Difference{
				Path:       p,
				ChangeType: ChangeModified,
				Changes:    changes,
				Source:     &sEntry,
				Target:     &tEntry,
			})
		}
	}

	return Diff{
		Identical:   len(diffs) == 0,
		Summary:     summary,
		Differences: diffs,
	}, nil
}

// attributeChanges returns the sorted list of attribute names that differ
// between a and b, drawn from the fixed set the spec defines. "content"
// covers checksum inequality, including the null<->value transitions
// that accompany a type change.
func attributeChanges(a, b snapshot.Entry) []string {
	var changes []string

	if a.Type != b.Type {
		changes = append(changes, AttrType)
	}
	if a.Size != b.Size {
		changes = append(changes, AttrSize)
	}
	if a.Mode != b.Mode {
		changes = append(changes, AttrMode)
	}
	if a.Mtime != b.Mtime {
		changes = append(changes, AttrMtime)
	}
	if !snapshot.StrPtrEqual(a.Checksum, b.Checksum) {
		changes = append(changes, AttrContent)
	}
	if !snapshot.StrPtrEqual(a.Target, b.Target) {
		changes = append(changes, AttrTarget)
	}

	sort.Strings(changes)
	return changes
}
