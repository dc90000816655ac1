package scanner

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/galdi-project/galdi/internal/checksum"
	"github.com/galdi-project/galdi/internal/event"
	"github.com/galdi-project/galdi/internal/galerr"
)

func TestScan_EmptyDirectory(t *testing.T) {
	dir := t.TempDir()

	res, err := Scan(context.Background(), Config{Root: dir, Algorithm: checksum.AlgXXH3})
	require.NoError(t, err)
	assert.Empty(t, res.Entries)
	assert.Empty(t, res.Warnings)
}

func TestScan_FlatFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hi\n"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.txt"), []byte("bye\n"), 0644))

	res, err := Scan(context.Background(), Config{Root: dir, Algorithm: checksum.AlgBLAKE3, Parallelism: 2})
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)

	byPath := map[string]bool{}
	for _, e := range res.Entries {
		byPath[e.Path] = true
		require.NotNil(t, e.Checksum)
		assert.Contains(t, *e.Checksum, "blake3:")
	}
	assert.True(t, byPath["a.txt"])
	assert.True(t, byPath["b.txt"])
}

func TestScan_NestedDirectories(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub", "inner"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sub", "inner", "f.txt"), []byte("x"), 0644))

	res, err := Scan(context.Background(), Config{Root: dir, Algorithm: checksum.AlgXXH3})
	require.NoError(t, err)

	var sawSub, sawInner, sawFile bool
	for _, e := range res.Entries {
		switch e.Path {
		case "sub":
			sawSub = true
			assert.Equal(t, "directory", string(e.Type))
		case "sub/inner":
			sawInner = true
		case "sub/inner/f.txt":
			sawFile = true
		}
	}
	assert.True(t, sawSub)
	assert.True(t, sawInner)
	assert.True(t, sawFile)
}

func TestScan_Symlink(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("symlink creation requires elevated privileges on windows")
	}
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "target.txt"), []byte("hi"), 0644))
	require.NoError(t, os.Symlink("target.txt", filepath.Join(dir, "link")))

	res, err := Scan(context.Background(), Config{Root: dir, Algorithm: checksum.AlgXXH3})
	require.NoError(t, err)

	var link *struct {
		target string
		size   uint64
	}
	for _, e := range res.Entries {
		if e.Path == "link" {
			require.NotNil(t, e.Target)
			link = &struct {
				target string
				size   uint64
			}{*e.Target, e.Size}
		}
	}
	require.NotNil(t, link)
	assert.Equal(t, "target.txt", link.target)
	assert.Equal(t, uint64(len("target.txt")), link.size)
}

func TestScan_MaxDepth(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "a", "b", "c"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a", "b", "c", "deep.txt"), []byte("x"), 0644))

	depth := 1
	res, err := Scan(context.Background(), Config{Root: dir, Algorithm: checksum.AlgXXH3, MaxDepth: &depth})
	require.NoError(t, err)

	for _, e := range res.Entries {
		assert.NotEqual(t, "a/b", e.Path)
		assert.NotEqual(t, "a/b/c", e.Path)
		assert.NotEqual(t, "a/b/c/deep.txt", e.Path)
	}
}

func TestScan_UnreadableFileKeepsTypeFile(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits behave differently on windows")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "locked.txt")
	require.NoError(t, os.WriteFile(path, []byte("secret"), 0000))
	t.Cleanup(func() { _ = os.Chmod(path, 0644) })

	res, err := Scan(context.Background(), Config{Root: dir, Algorithm: checksum.AlgXXH3})
	require.NoError(t, err)

	var found bool
	for _, e := range res.Entries {
		if e.Path == "locked.txt" {
			found = true
			assert.Equal(t, "file", string(e.Type))
			assert.Nil(t, e.Checksum)
		}
	}
	assert.True(t, found)
	assert.NotEmpty(t, res.Warnings)
}

func TestScan_NonUTF8PathComponentIsRejectedWithWarning(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("filenames are raw byte strings only on linux; other platforms reject invalid encodings at the syscall layer")
	}
	dir := t.TempDir()
	badName := string([]byte{0xff, 0xfe, 'x', '.', 't', 'x', 't'})
	require.NoError(t, os.WriteFile(filepath.Join(dir, badName), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "ok.txt"), []byte("y"), 0644))

	res, err := Scan(context.Background(), Config{Root: dir, Algorithm: checksum.AlgXXH3})
	require.NoError(t, err)

	require.Len(t, res.Entries, 1)
	assert.Equal(t, "ok.txt", res.Entries[0].Path)

	var sawWarning bool
	for _, w := range res.Warnings {
		if w.Message == "skipped: non-UTF-8 path component" {
			sawWarning = true
		}
	}
	assert.True(t, sawWarning, "expected a non-UTF-8 path component warning")
}

func TestScan_StatsAndEvents(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.txt"), []byte("hi\n"), 0644))

	events := make(chan event.Event, 64)
	res, err := Scan(context.Background(), Config{Root: dir, Algorithm: checksum.AlgXXH3, Events: events})
	require.NoError(t, err)

	assert.Equal(t, int64(1), res.Stats.FilesScanned)
	assert.Equal(t, int64(3), res.Stats.BytesHashed)

	var sawComplete bool
	close(events)
	for e := range events {
		if e.Type == event.ScanComplete {
			sawComplete = true
		}
	}
	assert.True(t, sawComplete)
}

func TestScan_RootMustExist(t *testing.T) {
	_, err := Scan(context.Background(), Config{Root: "/no/such/dir", Algorithm: checksum.AlgXXH3})
	assert.Error(t, err)
}

func TestScan_Cancellation(t *testing.T) {
	dir := t.TempDir()
	for i := range 50 {
		sub := filepath.Join(dir, "d"+string(rune('a'+i%26)))
		require.NoError(t, os.MkdirAll(sub, 0755))
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Scan(ctx, Config{Root: dir, Algorithm: checksum.AlgXXH3})
	require.Error(t, err)
	var galErr *galerr.Error
	require.ErrorAs(t, err, &galErr)
	assert.Equal(t, galerr.KindCancelled, galErr.Kind)
}
