// Package codec serializes Snapshot and Diff documents to canonical JSON
// with the "$plumbah" envelope attached as a sibling field, and writes
// them to disk atomically.
package codec

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/galdi-project/galdi/internal/differ"
	"github.com/galdi-project/galdi/internal/galerr"
	"github.com/galdi-project/galdi/internal/plumbah"
	"github.com/galdi-project/galdi/internal/snapshot"
)

// SnapshotDocument is a Snapshot plus its envelope. The embedded
// snapshot.Snapshot's fields are promoted to the top level by
// encoding/json; Plumbah sits beside them under "$plumbah", never
// wrapping them.
type SnapshotDocument struct {
	snapshot.Snapshot
	Plumbah plumbah.Object `json:"$plumbah"`
}

// DiffDocument is a Diff plus its envelope, with the same sibling-field
// shape as SnapshotDocument.
type DiffDocument struct {
	differ.Diff
	Plumbah plumbah.Object `json:"$plumbah"`
}

// ErrorDocument is the sole output of a fatal operation: there is no
// result payload to sit beside the envelope, so "$plumbah" (with
// Status "error" and Error populated) is the whole document.
type ErrorDocument struct {
	Plumbah plumbah.Object `json:"$plumbah"`
}

// EncodeError renders a fatal-error envelope as canonical indented JSON.
func EncodeError(env plumbah.Object) ([]byte, error) {
	return marshalIndent(ErrorDocument{Plumbah: env})
}

// EncodeSnapshot renders a snapshot document as canonical indented JSON.
// Canonical here means struct field declaration order (Go's
// encoding/json preserves it) and no extraneous whitespace variance.
func EncodeSnapshot(snap snapshot.Snapshot, env plumbah.Object) ([]byte, error) {
	doc := SnapshotDocument{Snapshot: snap, Plumbah: env}
	return marshalIndent(doc)
}

// EncodeDiff renders a diff document as canonical indented JSON.
func EncodeDiff(d differ.Diff, env plumbah.Object) ([]byte, error) {
	doc := DiffDocument{Diff: d, Plumbah: env}
	return marshalIndent(doc)
}

func marshalIndent(v any) ([]byte, error) {
	buf, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, galerr.Wrap(galerr.KindSchema, "", err)
	}
	return append(buf, '\n'), nil
}

// DecodeSnapshot parses a snapshot document, discarding its envelope.
func DecodeSnapshot(r io.Reader) (snapshot.Snapshot, error) {
	var doc SnapshotDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return snapshot.Snapshot{}, galerr.Wrap(galerr.KindSchema, "", err)
	}
	return doc.Snapshot, nil
}

// DecodeDiff parses a diff document, discarding its envelope.
func DecodeDiff(r io.Reader) (differ.Diff, error) {
	var doc DiffDocument
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return differ.Diff{}, galerr.Wrap(galerr.KindSchema, "", err)
	}
	return doc.Diff, nil
}

// WriteAtomic writes data to path by first writing to a sibling temp file
// and renaming it into place, so a reader never observes a partially
// written document.
func WriteAtomic(path string, data []byte, perm os.FileMode) error {
	dir := filepath.Dir(path)
	base := filepath.Base(path)
	tmpName := fmt.Sprintf(".%s.%s.galdi-tmp", base, uuid.New().String()[:8])
	tmpPath := filepath.Join(dir, tmpName)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return galerr.IO(dir, err)
	}

	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return galerr.IO(tmpPath, err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return galerr.IO(path, err)
	}

	return nil
}
