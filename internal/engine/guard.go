package engine

import (
	"fmt"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Grouped units are evaluated read-only, but the invoked command may
// still rewrite the staged file (a formatter, typically). The guard
// compares the staged content around the invocation and reports any
// mutation; the source document is never touched either way.

// groupModified reports whether the staged content changed, ignoring
// leading and trailing whitespace.
func groupModified(before, after string) bool {
	return strings.TrimSpace(before) != strings.TrimSpace(after)
}

// groupWriteMessage renders the rejection diagnostic: a unified diff of
// the attempted change, anchored to the group's closing line in the
// source document.
func groupWriteMessage(path string, endLine int, before, after string) string {
	diff, err := difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        difflib.SplitLines(strings.TrimLeft(before, " \t\r\n")),
		B:        difflib.SplitLines(strings.TrimLeft(after, " \t\r\n")),
		FromFile: "original",
		ToFile:   "modified",
		Context:  3,
	})
	if err != nil {
		diff = fmt.Sprintf("(diff unavailable: %v)", err)
	}

	var b strings.Builder
	b.WriteString("Writing to a group is not supported.\n\n")
	fmt.Fprintf(&b,
		"A command modified the contents of examples in the group ending on line %d in %s.\n\n",
		endLine, path)
	b.WriteString("Diff:\n\n")
	b.WriteString(diff)
	return b.String()
}
