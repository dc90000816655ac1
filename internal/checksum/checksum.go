// Package checksum provides a uniform hasher abstraction over the three
// algorithms a snapshot may use to digest regular-file contents.
package checksum

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/zeebo/blake3"
	"github.com/zeebo/xxh3"
)

// Algorithm identifies one of the supported checksum algorithms. It is a
// snapshot-wide parameter; the differ refuses to compare two snapshots
// built with different algorithms (see internal/differ).
type Algorithm string

const (
	AlgXXH3   Algorithm = "xxh3_64"
	AlgBLAKE3 Algorithm = "blake3"
	AlgSHA256 Algorithm = "sha256"
)

// Valid reports whether alg is one of the three supported algorithms.
func (a Algorithm) Valid() bool {
	switch a {
	case AlgXXH3, AlgBLAKE3, AlgSHA256:
		return true
	default:
		return false
	}
}

func (a Algorithm) String() string { return string(a) }

// chunkSize is the buffer size used while streaming file contents through
// a hasher — within the 64 KiB-1 MiB range the spec recommends.
const chunkSize = 64 * 1024

// newHash returns a fresh hash.Hash for alg. xxh3.New() satisfies
// hash.Hash64, which embeds hash.Hash.
func newHash(alg Algorithm) (hash.Hash, error) {
	switch alg {
	case AlgXXH3:
		return xxh3.New(), nil
	case AlgBLAKE3:
		return blake3.New(), nil
	case AlgSHA256:
		return sha256.New(), nil
	default:
		return nil, fmt.Errorf("checksum: unknown algorithm %q", alg)
	}
}

// HashFile streams the file at path through alg's hasher and returns the
// formatted digest "<alg>:<hex>". Empty files produce the algorithm's
// canonical empty-input digest, not a special-cased value.
func HashFile(path string, alg Algorithm) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h, err := newHash(alg)
	if err != nil {
		return "", err
	}

	buf := make([]byte, chunkSize)
	if _, err := io.CopyBuffer(h, f, buf); err != nil {
		return "", err
	}

	return FormatDigest(alg, hex.EncodeToString(h.Sum(nil))), nil
}

// FormatDigest composes the canonical "<alg>:<hex>" checksum string.
func FormatDigest(alg Algorithm, hexSum string) string {
	return fmt.Sprintf("%s:%s", alg, hexSum)
}
