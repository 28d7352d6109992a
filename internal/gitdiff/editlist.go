// Package gitdiff implements the provenance diff engine on top of libgit2
// tree diffs with rename detection and diffmatchpatch line diffs.
package gitdiff

import (
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/chrono-code/lineage/internal/provenance"
)

// editList computes the line-level edit list between two text revisions.
// Lines are mapped to runes so the diff operates on whole lines; each run's
// rune count is its line count.
func editList(oldText, newText string) []provenance.Edit {
	dmp := diffmatchpatch.New()
	src, dst, _ := dmp.DiffLinesToRunes(oldText, newText)
	diffs := dmp.DiffMainRunes(src, dst, false)

	return editsFromDiffs(diffs)
}

// editsFromDiffs folds a run-length diff into half-open line ranges.
// Adjacent delete and insert runs merge into a single edit with both sides
// non-empty; an equal run closes the pending edit.
func editsFromDiffs(diffs []diffmatchpatch.Diff) []provenance.Edit {
	var edits []provenance.Edit

	oldPos, newPos := 0, 0
	pending := provenance.Edit{}
	open := false

	flush := func() {
		if open {
			edits = append(edits, pending)
			open = false
		}
	}

	for _, run := range diffs {
		n := utf8.RuneCountInString(run.Text)

		switch run.Type {
		case diffmatchpatch.DiffEqual:
			flush()

			oldPos += n
			newPos += n
		case diffmatchpatch.DiffDelete:
			if !open {
				pending = provenance.Edit{OldStart: oldPos, OldEnd: oldPos, NewStart: newPos, NewEnd: newPos}
				open = true
			}

			pending.OldEnd += n
			oldPos += n
		case diffmatchpatch.DiffInsert:
			if !open {
				pending = provenance.Edit{OldStart: oldPos, OldEnd: oldPos, NewStart: newPos, NewEnd: newPos}
				open = true
			}

			pending.NewEnd += n
			newPos += n
		}
	}

	flush()

	return edits
}
