package checksum

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashFile_EmptyFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	for _, alg := range []Algorithm{AlgXXH3, AlgBLAKE3, AlgSHA256} {
		digest, err := HashFile(path, alg)
		require.NoError(t, err)
		assert.Contains(t, digest, string(alg)+":")

		// Re-hashing an unchanged empty file must yield the same digest —
		// the canonical empty-input digest for the algorithm.
		again, err := HashFile(path, alg)
		require.NoError(t, err)
		assert.Equal(t, digest, again)
	}
}

func TestHashFile_DigestLength(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(path, []byte("hi\n"), 0644))

	cases := []struct {
		alg    Algorithm
		hexLen int
	}{
		{AlgXXH3, 16},
		{AlgBLAKE3, 64},
		{AlgSHA256, 64},
	}
	for _, tc := range cases {
		digest, err := HashFile(path, tc.alg)
		require.NoError(t, err)
		parts := len(string(tc.alg)) + 1 + tc.hexLen
		assert.Len(t, digest, parts)
	}
}

func TestHashFile_ContentChangesDigest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.txt")

	require.NoError(t, os.WriteFile(path, []byte("one"), 0644))
	d1, err := HashFile(path, AlgBLAKE3)
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("two"), 0644))
	d2, err := HashFile(path, AlgBLAKE3)
	require.NoError(t, err)

	assert.NotEqual(t, d1, d2)
}

func TestHashFile_MissingFile(t *testing.T) {
	_, err := HashFile("/no/such/path", AlgBLAKE3)
	assert.Error(t, err)
}

func TestAlgorithm_Valid(t *testing.T) {
	assert.True(t, AlgXXH3.Valid())
	assert.True(t, AlgBLAKE3.Valid())
	assert.True(t, AlgSHA256.Valid())
	assert.False(t, Algorithm("md5").Valid())
}
