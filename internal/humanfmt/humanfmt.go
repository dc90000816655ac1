// Package humanfmt renders a Diff as a human-readable summary, for the
// CLI's --human output mode. The machine-readable default is the
// envelope-wrapped JSON document; this package never touches that path.
package humanfmt

import (
	"fmt"
	"strings"

	"github.com/galdi-project/galdi/internal/differ"
)

// FormatCount formats an integer with comma separators.
func FormatCount[N int | int64](n N) string {
	if n < 0 {
		return "-" + FormatCount(-n)
	}
	s := fmt.Sprintf("%d", n)
	if len(s) <= 3 {
		return s
	}
	var b strings.Builder
	remainder := len(s) % 3
	if remainder > 0 {
		b.WriteString(s[:remainder])
	}
	for i := remainder; i < len(s); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(s[i : i+3])
	}
	return b.String()
}

// Diff renders d as a multi-line human summary: one header line, then
// one line per difference in d's own (path) order, prefixed "+", "-" or
// "~" by change type, with the changed attributes for modifications.
func Diff(d differ.Diff) string {
	var b strings.Builder

	if d.Identical {
		fmt.Fprintf(&b, "identical (%s entries unchanged)\n", FormatCount(d.Summary.Unchanged))
		return b.String()
	}

	fmt.Fprintf(&b, "%s added, %s removed, %s modified, %s unchanged\n",
		FormatCount(d.Summary.Added),
		FormatCount(d.Summary.Removed),
		FormatCount(d.Summary.Modified),
		FormatCount(d.Summary.Unchanged),
	)

	for _, diff := range d.Differences {
		switch diff.ChangeType {
		case differ.ChangeAdded:
			fmt.Fprintf(&b, "+ %s\n", displayPath(diff.Path))
		case differ.ChangeRemoved:
			fmt.Fprintf(&b, "- %s\n", displayPath(diff.Path))
		case differ.ChangeModified:
			fmt.Fprintf(&b, "~ %s [%s]\n", displayPath(diff.Path), strings.Join(diff.Changes, ","))
		}
	}

	return b.String()
}

func displayPath(p string) string {
	if p == "" {
		return "."
	}
	return p
}
