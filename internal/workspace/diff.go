package workspace

import (
	"github.com/pmezard/go-difflib/difflib"
)

// UnifiedDiff renders a unified diff between a document's old and new
// symbol-tree text dumps, for debug tooling. Nothing else in this module
// calls it. Returns "" if the two are identical.
func UnifiedDiff(uri, oldText, newText string) (string, error) {
	if oldText == newText {
		return "", nil
	}
	diff := difflib.UnifiedDiff{
		A:        difflib.SplitLines(oldText),
		B:        difflib.SplitLines(newText),
		FromFile: uri + " (before)",
		ToFile:   uri + " (after)",
		Context:  3,
	}
	return difflib.GetUnifiedDiffString(diff)
}
