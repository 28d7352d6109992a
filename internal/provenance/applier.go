package provenance

import (
	"fmt"
	"slices"
)

// Skip reasons reported through Hooks.PathSkipped.
const (
	// SkipBinary marks a path excluded because its content is binary.
	SkipBinary = "binary"
	// SkipCopy marks a copy change entry, which is not tracked.
	SkipCopy = "copy"
)

// applier mutates the line table with one commit's diffs and finalizes
// completed line lifetimes through emit.
type applier struct {
	table *Table
	hooks Hooks
}

// applyCommit applies all per-path diffs introduced by child relative to its
// examined first parent. Returns false when the consumer stopped pulling.
func (a *applier) applyCommit(child *Commit, diffs []PathDiff, emit func(Record) bool) bool {
	for _, pd := range diffs {
		if !a.applyPath(child, pd, emit) {
			return false
		}
	}

	return true
}

// applyPath applies one path's change-set.
//
// Walking backward, an insertion range in the diff means the lines were
// introduced by child: the markers currently in the table are those lines'
// death (or still-alive-at-head) state, so each is paired with a fresh birth
// marker and the range is spliced out. A deletion range means the lines
// existed before child and are gone by the time the walk reaches it, so
// placeholder markers tagged with child are spliced in; they remain open
// until an older commit's insertion claims them.
func (a *applier) applyPath(child *Commit, pd PathDiff, emit func(Record) bool) bool {
	if pd.Binary {
		// Binary files are never tracked. Drop any entry picked up while the
		// path carried text content.
		a.table.Drop(pd.NewPath)
		a.table.Drop(pd.OldPath)
		a.skip(pd.NewPath, SkipBinary)

		return true
	}

	if pd.Change == Copy {
		a.skip(pd.NewPath, SkipCopy)

		return true
	}

	path := pd.NewPath
	if pd.Change == Delete {
		// The file is absent in child, so the table has no entry under the
		// old path. Treat it as reborn-empty at child: older commits can
		// still report insertions into it, and the deletion ranges below
		// splice in the placeholders for every line the parent side had.
		path = pd.OldPath
		a.table.Set(path, nil)
	}

	if !a.table.Has(path) {
		// The path was excluded earlier in the walk: binary at head, or
		// dropped when a younger diff flagged it binary. Its older history
		// stays excluded, text content or not.
		return true
	}

	markers := a.table.Lines(path)

	// Insertions, highest range first: removing a range shifts every later
	// index left, so descending order keeps unprocessed ranges valid.
	for i := len(pd.Edits) - 1; i >= 0; i-- {
		edit := pd.Edits[i]
		if edit.NewEnd <= edit.NewStart {
			continue
		}

		if edit.NewEnd > len(markers) {
			panic(fmt.Sprintf("provenance: edit range [%d,%d) exceeds %d lines of %q at %s",
				edit.NewStart, edit.NewEnd, len(markers), path, child.Hash.Short()))
		}

		for idx := edit.NewStart; idx < edit.NewEnd; idx++ {
			birth := Marker{Commit: child, Path: path, Line: idx}
			if !emit(newRecord(birth, markers[idx])) {
				return false
			}
		}

		markers = slices.Delete(markers, edit.NewStart, edit.NewEnd)
	}

	// Deletions, in ascending order of position: positions are relative to
	// the parent revision, and earlier splices only shift indices at or
	// after their own start, so the natural order keeps later ranges valid.
	for _, edit := range pd.Edits {
		if edit.OldEnd <= edit.OldStart {
			continue
		}

		placeholders := make([]Marker, edit.OldEnd-edit.OldStart)
		for k := range placeholders {
			placeholders[k] = Marker{Commit: child, Path: path, Line: edit.OldStart + k}
		}

		markers = slices.Insert(markers, edit.OldStart, placeholders...)
	}

	a.table.Set(path, markers)

	if pd.Change == Rename {
		// Older commits know the file by its former name.
		a.table.Rename(pd.NewPath, pd.OldPath)
	}

	return true
}

func (a *applier) skip(path, reason string) {
	if a.hooks.PathSkipped != nil {
		a.hooks.PathSkipped(path, reason)
	}
}
