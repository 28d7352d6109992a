package gitdiff

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/chrono-code/lineage/internal/provenance"
)

func TestEditListIdenticalText(t *testing.T) {
	t.Parallel()

	edits := editList("a\nb\nc\n", "a\nb\nc\n")

	assert.Empty(t, edits)
}

func TestEditListPureInsertion(t *testing.T) {
	t.Parallel()

	edits := editList("a\nc\n", "a\nb\nc\n")

	assert.Equal(t, []provenance.Edit{
		{OldStart: 1, OldEnd: 1, NewStart: 1, NewEnd: 2},
	}, edits)
}

func TestEditListPureDeletion(t *testing.T) {
	t.Parallel()

	edits := editList("a\nb\nc\n", "a\nc\n")

	assert.Equal(t, []provenance.Edit{
		{OldStart: 1, OldEnd: 2, NewStart: 1, NewEnd: 1},
	}, edits)
}

func TestEditListReplacement(t *testing.T) {
	t.Parallel()

	edits := editList("a\nb\nc\n", "a\nx\nc\n")

	assert.Equal(t, []provenance.Edit{
		{OldStart: 1, OldEnd: 2, NewStart: 1, NewEnd: 2},
	}, edits)
}

func TestEditListMultipleHunks(t *testing.T) {
	t.Parallel()

	oldText := "a\nb\nc\nd\ne\n"
	newText := "a\nx\nc\nd\ne\nf\n"

	edits := editList(oldText, newText)

	assert.Equal(t, []provenance.Edit{
		{OldStart: 1, OldEnd: 2, NewStart: 1, NewEnd: 2},
		{OldStart: 5, OldEnd: 5, NewStart: 5, NewEnd: 6},
	}, edits)
}

func TestEditListFromEmpty(t *testing.T) {
	t.Parallel()

	edits := editList("", "a\nb\n")

	assert.Equal(t, []provenance.Edit{
		{OldStart: 0, OldEnd: 0, NewStart: 0, NewEnd: 2},
	}, edits)
}

func TestEditListToEmpty(t *testing.T) {
	t.Parallel()

	edits := editList("a\nb\n", "")

	assert.Equal(t, []provenance.Edit{
		{OldStart: 0, OldEnd: 2, NewStart: 0, NewEnd: 0},
	}, edits)
}

func TestEditListRangesAreConsistent(t *testing.T) {
	t.Parallel()

	oldText := "one\ntwo\nthree\nfour\n"
	newText := "one\n2\n3\nfour\nfive\n"

	edits := editList(oldText, newText)

	prevOld, prevNew := 0, 0
	for _, edit := range edits {
		assert.LessOrEqual(t, prevOld, edit.OldStart)
		assert.LessOrEqual(t, prevNew, edit.NewStart)
		assert.LessOrEqual(t, edit.OldStart, edit.OldEnd)
		assert.LessOrEqual(t, edit.NewStart, edit.NewEnd)
		assert.True(t, edit.OldEnd > edit.OldStart || edit.NewEnd > edit.NewStart,
			"edit must not be empty on both sides")

		prevOld, prevNew = edit.OldEnd, edit.NewEnd
	}
}
