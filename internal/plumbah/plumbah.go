// Package plumbah implements the self-describing output envelope every
// galdi tool attaches to its top-level result, under the key "$plumbah".
//
// The envelope is a sibling field of the document it annotates, not a
// wrapper around it — a snapshot document's own "version", "root", etc.
// fields sit alongside "$plumbah" at the same JSON level.
package plumbah

import (
	"time"

	"github.com/galdi-project/galdi/internal/galerr"
)

// Level is the declared richness of the envelope contract this build
// implements.
const Level = 2

// ToolName identifies this build in every envelope. ToolVersion defaults
// to "dev" and may be overridden at link time.
const ToolName = "galdi"

var ToolVersion = "dev"

// Status is the outcome of the annotated operation.
type Status string

const (
	StatusOK    Status = "ok"
	StatusError Status = "error"
)

// EnvelopeVersion is the schema version of the envelope itself.
const EnvelopeVersion = "1.0"

// Meta carries the declared capability flags and timing for one run.
type Meta struct {
	Idempotent      bool   `json:"idempotent"`
	Mutates         bool   `json:"mutates"`
	Safe            bool   `json:"safe"`
	Deterministic   bool   `json:"deterministic"`
	PlumbahLevel    int    `json:"plumbah_level"`
	ExecutionTimeMs int64  `json:"execution_time_ms"`
	Tool            string `json:"tool"`
	ToolVersion     string `json:"tool_version"`
	Timestamp       string `json:"timestamp"`
}

// Declared describes the tool-declared properties of one operation,
// known before the operation runs.
type Declared struct {
	Idempotent    bool
	Mutates       bool
	Safe          bool
	Deterministic bool
}

// ErrorInfo is present when Status is "error".
type ErrorInfo struct {
	Kind    galerr.Kind `json:"kind"`
	Message string      `json:"message"`
	Path    string      `json:"path,omitempty"`
}

// Object is the value serialized under the "$plumbah" key.
type Object struct {
	Version string     `json:"version"`
	Status  Status     `json:"status"`
	Meta    Meta       `json:"meta"`
	Error   *ErrorInfo `json:"error,omitempty"`
}

// Start returns the current instant, to be passed back into Wrap/WrapError
// so ExecutionTimeMs is measured across the caller's own work. time.Time
// subtraction already uses the monotonic clock reading when available, so
// this satisfies the "must not use wall-clock differences" contract.
func Start() time.Time { return time.Now() }

func buildMeta(d Declared, start time.Time) Meta {
	return Meta{
		Idempotent:      d.Idempotent,
		Mutates:         d.Mutates,
		Safe:            d.Safe,
		Deterministic:   d.Deterministic,
		PlumbahLevel:    Level,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
		Tool:            ToolName,
		ToolVersion:     ToolVersion,
		Timestamp:       time.Now().UTC().Format(time.RFC3339Nano),
	}
}

// Wrap builds the "ok" envelope object for a successful operation.
func Wrap(declared Declared, start time.Time) Object {
	return Object{
		Version: EnvelopeVersion,
		Status:  StatusOK,
		Meta:    buildMeta(declared, start),
	}
}

// WrapError builds the "error" envelope object for a failed operation.
func WrapError(kind galerr.Kind, message, path string, declared Declared, start time.Time) Object {
	return Object{
		Version: EnvelopeVersion,
		Status:  StatusError,
		Meta:    buildMeta(declared, start),
		Error:   &ErrorInfo{Kind: kind, Message: message, Path: path},
	}
}
