package changetracker

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// wordDiffSummary renders a word-level diff between two strings, reusing
// sergi/go-diff's character-level engine over whitespace-joined word
// tokens so the output reads as inserted/removed words rather than
// characters. Used to enrich the description of modified long-text
// fields (e.g. a "description" leaf) beyond a plain before/after pair.
func wordDiffSummary(oldStr, newStr string) string {
	if oldStr == newStr {
		return ""
	}
	dmp := diffmatchpatch.New()
	oldWords, newWords, lineArray := dmp.DiffLinesToChars(
		strings.Join(strings.Fields(oldStr), "\n"),
		strings.Join(strings.Fields(newStr), "\n"),
	)
	diffs := dmp.DiffMain(oldWords, newWords, false)
	diffs = dmp.DiffCharsToLines(diffs, lineArray)

	var added, removed []string
	for _, d := range diffs {
		word := strings.TrimSpace(d.Text)
		if word == "" {
			continue
		}
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			added = append(added, strings.Fields(word)...)
		case diffmatchpatch.DiffDelete:
			removed = append(removed, strings.Fields(word)...)
		}
	}

	var parts []string
	if len(added) > 0 {
		parts = append(parts, "added: "+strings.Join(added, " "))
	}
	if len(removed) > 0 {
		parts = append(parts, "removed: "+strings.Join(removed, " "))
	}
	return strings.Join(parts, "; ")
}
