package snapshot

// Warning records a non-fatal problem the scanner encountered while
// producing one entry (an unreadable directory, an unhashable file, a
// symlink whose target could not be read, ...). The scan still completes
// and the snapshot it produces is still valid; per spec section 7,
// warnings are surfaced in the result payload itself, never folded into
// the envelope.
type Warning struct {
	Path    string `json:"path"`
	Message string `json:"message"`
}
