// Package galerr defines the stable error taxonomy shared by the scanner,
// snapshot builder, differ, and codec, and by the CLI's exit-code mapping.
package galerr

import "fmt"

// Kind is a stable, comparable error tag.
type Kind string

const (
	KindUsage             Kind = "UsageError"
	KindIO                Kind = "IoError"
	KindSchema            Kind = "SchemaError"
	KindInvariant         Kind = "InvariantError"
	KindAlgorithmMismatch Kind = "AlgorithmMismatch"
	KindCancelled         Kind = "CancelledError"
)

// Error is a tagged error carrying an optional path, for both envelope
// error documents and CLI exit-code dispatch.
type Error struct {
	Kind    Kind
	Message string
	Path    string
	Err     error
}

func (e *Error) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s: %s", e.Kind, e.Path, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Err }

// New builds a tagged error with no wrapped cause.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap builds a tagged error around an existing cause.
func Wrap(kind Kind, path string, err error) *Error {
	return &Error{Kind: kind, Message: err.Error(), Path: path, Err: err}
}

// IO builds an IoError carrying the path that failed.
func IO(path string, err error) *Error {
	return Wrap(KindIO, path, err)
}

// Invariant builds an InvariantError — a bug indicator, never recoverable.
func Invariant(message string) *Error {
	return New(KindInvariant, message)
}

// ExitCode maps a Kind to the CLI exit code contract of spec section 7.
func (k Kind) ExitCode() int {
	switch k {
	case KindUsage:
		return 2
	case KindAlgorithmMismatch:
		return 3
	case KindCancelled, KindIO, KindSchema, KindInvariant:
		return 1
	default:
		return 1
	}
}
