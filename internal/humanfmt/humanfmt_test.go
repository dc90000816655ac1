package humanfmt

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/galdi-project/galdi/internal/differ"
)

func TestFormatCount(t *testing.T) {
	assert.Equal(t, "0", FormatCount(0))
	assert.Equal(t, "123", FormatCount(123))
	assert.Equal(t, "1,234", FormatCount(1234))
	assert.Equal(t, "1,234,567", FormatCount(1234567))
	assert.Equal(t, "-1,234", FormatCount(-1234))
}

func TestDiff_Identical(t *testing.T) {
	d := differ.Diff{Identical: true, Summary: differ.Summary{Unchanged: 5}}
	out := Diff(d)
	assert.Contains(t, out, "identical")
	assert.Contains(t, out, "5")
}

func TestDiff_WithChanges(t *testing.T) {
	d := differ.Diff{
		Identical: false,
		Summary:   differ.Summary{Added: 1, Modified: 1},
		Differences: []differ.Difference{
			{Path: "a.txt", ChangeType: differ.ChangeAdded},
			{Path: "b.txt", ChangeType: differ.ChangeModified, Changes: []string{"content", "mtime"}},
		},
	}
	out := Diff(d)
	assert.Contains(t, out, "+ a.txt")
	assert.Contains(t, out, "~ b.txt [content,mtime]")
}

func TestDiff_RootPathDisplaysAsDot(t *testing.T) {
	d := differ.Diff{
		Identical: false,
		Summary:   differ.Summary{Modified: 1},
		Differences: []differ.Difference{
			{Path: "", ChangeType: differ.ChangeModified, Changes: []string{"mtime"}},
		},
	}
	out := Diff(d)
	assert.Contains(t, out, "~ . [mtime]")
}
