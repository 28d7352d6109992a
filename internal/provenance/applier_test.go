package provenance

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collect gathers every record an applier emits.
func collect(records *[]Record) func(Record) bool {
	return func(rec Record) bool {
		*records = append(*records, rec)

		return true
	}
}

func TestApplyPathInsertionPairsBirthAndDeath(t *testing.T) {
	t.Parallel()

	head := testCommit("aa", time.Unix(1000, 0))
	child := testCommit("bb", time.Unix(400, 0))

	table := NewTable()
	table.Seed("main.go", 3, head)

	var records []Record

	app := &applier{table: table}
	ok := app.applyCommit(child, []PathDiff{{
		OldPath: "main.go",
		NewPath: "main.go",
		Change:  Modify,
		Edits:   []Edit{{OldStart: 1, OldEnd: 1, NewStart: 1, NewEnd: 2}},
	}}, collect(&records))

	require.True(t, ok)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, child, rec.Birth.Commit)
	assert.Equal(t, 1, rec.Birth.Line)
	assert.Equal(t, head, rec.Death.Commit)
	assert.Equal(t, 1, rec.Death.Line)
	assert.Equal(t, int64(600), rec.AgeSeconds)

	// The inserted line no longer exists before child; the survivors keep
	// their head markers.
	markers := table.Lines("main.go")
	require.Len(t, markers, 2)
	assert.Equal(t, 0, markers[0].Line)
	assert.Equal(t, 2, markers[1].Line)
}

func TestApplyPathDeletionSplicesPlaceholders(t *testing.T) {
	t.Parallel()

	head := testCommit("aa", time.Unix(1000, 0))
	child := testCommit("bb", time.Unix(400, 0))

	table := NewTable()
	table.Seed("main.go", 2, head)

	var records []Record

	app := &applier{table: table}
	ok := app.applyCommit(child, []PathDiff{{
		OldPath: "main.go",
		NewPath: "main.go",
		Change:  Modify,
		Edits:   []Edit{{OldStart: 0, OldEnd: 2, NewStart: 0, NewEnd: 0}},
	}}, collect(&records))

	require.True(t, ok)
	assert.Empty(t, records)

	// Two placeholders for the deleted lines precede the surviving markers.
	markers := table.Lines("main.go")
	require.Len(t, markers, 4)
	assert.Equal(t, child, markers[0].Commit)
	assert.Equal(t, child, markers[1].Commit)
	assert.Equal(t, head, markers[2].Commit)
	assert.Equal(t, head, markers[3].Commit)
}

func TestApplyPathReplaceKeepsLineCount(t *testing.T) {
	t.Parallel()

	head := testCommit("aa", time.Unix(1000, 0))
	child := testCommit("bb", time.Unix(400, 0))

	table := NewTable()
	table.Seed("main.go", 3, head)

	var records []Record

	app := &applier{table: table}
	ok := app.applyCommit(child, []PathDiff{{
		OldPath: "main.go",
		NewPath: "main.go",
		Change:  Modify,
		Edits:   []Edit{{OldStart: 1, OldEnd: 2, NewStart: 1, NewEnd: 2}},
	}}, collect(&records))

	require.True(t, ok)
	require.Len(t, records, 1)
	assert.Equal(t, child, records[0].Birth.Commit)

	// The replaced line dies at child; its pre-image placeholder takes the
	// same position.
	markers := table.Lines("main.go")
	require.Len(t, markers, 3)
	assert.Equal(t, head, markers[0].Commit)
	assert.Equal(t, child, markers[1].Commit)
	assert.Equal(t, head, markers[2].Commit)
}

func TestApplyPathMultipleInsertionsProcessDescending(t *testing.T) {
	t.Parallel()

	head := testCommit("aa", time.Unix(1000, 0))
	child := testCommit("bb", time.Unix(400, 0))

	table := NewTable()
	table.Seed("main.go", 5, head)

	var records []Record

	app := &applier{table: table}
	ok := app.applyCommit(child, []PathDiff{{
		OldPath: "main.go",
		NewPath: "main.go",
		Change:  Modify,
		Edits: []Edit{
			{OldStart: 1, OldEnd: 1, NewStart: 1, NewEnd: 2},
			{OldStart: 3, OldEnd: 3, NewStart: 4, NewEnd: 5},
		},
	}}, collect(&records))

	require.True(t, ok)
	require.Len(t, records, 2)

	// Lines 1 and 4 were inserted by child; lines 0, 2 and 3 survive with
	// their head identities intact.
	markers := table.Lines("main.go")
	require.Len(t, markers, 3)
	assert.Equal(t, 0, markers[0].Line)
	assert.Equal(t, 2, markers[1].Line)
	assert.Equal(t, 3, markers[2].Line)
}

func TestApplyPathAddEmitsWholeFile(t *testing.T) {
	t.Parallel()

	head := testCommit("aa", time.Unix(1000, 0))
	child := testCommit("bb", time.Unix(400, 0))

	table := NewTable()
	table.Seed("new.go", 2, head)

	var records []Record

	app := &applier{table: table}
	ok := app.applyCommit(child, []PathDiff{{
		OldPath: "new.go",
		NewPath: "new.go",
		Change:  Add,
		Edits:   []Edit{{NewStart: 0, NewEnd: 2}},
	}}, collect(&records))

	require.True(t, ok)
	require.Len(t, records, 2)
	assert.Empty(t, table.Lines("new.go"))
}

func TestApplyPathDeleteRebirthsFileEmpty(t *testing.T) {
	t.Parallel()

	child := testCommit("bb", time.Unix(400, 0))

	// The file does not exist at the walk's current position; a Delete diff
	// means the parent side had content.
	table := NewTable()

	var records []Record

	app := &applier{table: table}
	ok := app.applyCommit(child, []PathDiff{{
		OldPath: "gone.go",
		NewPath: "",
		Change:  Delete,
		Edits:   []Edit{{OldStart: 0, OldEnd: 3}},
	}}, collect(&records))

	require.True(t, ok)
	assert.Empty(t, records)

	markers := table.Lines("gone.go")
	require.Len(t, markers, 3)

	for i, m := range markers {
		assert.Equal(t, child, m.Commit)
		assert.Equal(t, "gone.go", m.Path)
		assert.Equal(t, i, m.Line)
	}
}

func TestApplyPathRenameReKeysToOldPath(t *testing.T) {
	t.Parallel()

	head := testCommit("aa", time.Unix(1000, 0))
	child := testCommit("bb", time.Unix(400, 0))

	table := NewTable()
	table.Seed("after.go", 2, head)

	var records []Record

	app := &applier{table: table}
	ok := app.applyCommit(child, []PathDiff{{
		OldPath: "before.go",
		NewPath: "after.go",
		Change:  Rename,
	}}, collect(&records))

	require.True(t, ok)
	assert.Empty(t, records)
	assert.False(t, table.Has("after.go"))
	require.True(t, table.Has("before.go"))
	assert.Len(t, table.Lines("before.go"), 2)
}

func TestApplyPathBinaryDropsBothPaths(t *testing.T) {
	t.Parallel()

	head := testCommit("aa", time.Unix(1000, 0))
	child := testCommit("bb", time.Unix(400, 0))

	table := NewTable()
	table.Seed("image.png", 4, head)

	var skipped []string

	app := &applier{
		table: table,
		hooks: Hooks{PathSkipped: func(path, reason string) {
			skipped = append(skipped, path+":"+reason)
		}},
	}

	var records []Record

	ok := app.applyCommit(child, []PathDiff{{
		OldPath: "image.png",
		NewPath: "image.png",
		Change:  Modify,
		Binary:  true,
	}}, collect(&records))

	require.True(t, ok)
	assert.Empty(t, records)
	assert.False(t, table.Has("image.png"))
	assert.Equal(t, []string{"image.png:" + SkipBinary}, skipped)
}

func TestApplyPathCopyIsSkipped(t *testing.T) {
	t.Parallel()

	head := testCommit("aa", time.Unix(1000, 0))
	child := testCommit("bb", time.Unix(400, 0))

	table := NewTable()
	table.Seed("orig.go", 2, head)

	var skipped []string

	app := &applier{
		table: table,
		hooks: Hooks{PathSkipped: func(path, reason string) {
			skipped = append(skipped, path+":"+reason)
		}},
	}

	var records []Record

	ok := app.applyCommit(child, []PathDiff{{
		OldPath: "orig.go",
		NewPath: "copy.go",
		Change:  Copy,
	}}, collect(&records))

	require.True(t, ok)
	assert.Empty(t, records)
	assert.Len(t, table.Lines("orig.go"), 2)
	assert.Equal(t, []string{"copy.go:" + SkipCopy}, skipped)
}

func TestApplyPathUntrackedPathIsIgnored(t *testing.T) {
	t.Parallel()

	child := testCommit("bb", time.Unix(400, 0))

	// A file binary at head is never seeded; older text revisions of it
	// must not be tracked either.
	table := NewTable()

	var records []Record

	app := &applier{table: table}
	ok := app.applyCommit(child, []PathDiff{{
		OldPath: "episode.dat",
		NewPath: "episode.dat",
		Change:  Add,
		Edits:   []Edit{{NewStart: 0, NewEnd: 2}},
	}}, collect(&records))

	require.True(t, ok)
	assert.Empty(t, records)
	assert.False(t, table.Has("episode.dat"))
}

func TestApplyPathUntrackedRenameIsIgnored(t *testing.T) {
	t.Parallel()

	child := testCommit("bb", time.Unix(400, 0))

	table := NewTable()

	var records []Record

	app := &applier{table: table}
	ok := app.applyCommit(child, []PathDiff{{
		OldPath: "before.dat",
		NewPath: "after.dat",
		Change:  Rename,
	}}, collect(&records))

	require.True(t, ok)
	assert.Empty(t, records)
	assert.False(t, table.Has("before.dat"))
	assert.False(t, table.Has("after.dat"))
}

func TestApplyPathEditBeyondFilePanics(t *testing.T) {
	t.Parallel()

	head := testCommit("aa", time.Unix(1000, 0))
	child := testCommit("bb", time.Unix(400, 0))

	table := NewTable()
	table.Seed("main.go", 2, head)

	app := &applier{table: table}

	assert.Panics(t, func() {
		app.applyCommit(child, []PathDiff{{
			OldPath: "main.go",
			NewPath: "main.go",
			Change:  Modify,
			Edits:   []Edit{{NewStart: 0, NewEnd: 5}},
		}}, func(Record) bool { return true })
	})
}

func TestApplyCommitStopsWhenConsumerStops(t *testing.T) {
	t.Parallel()

	head := testCommit("aa", time.Unix(1000, 0))
	child := testCommit("bb", time.Unix(400, 0))

	table := NewTable()
	table.Seed("main.go", 3, head)

	emitted := 0

	app := &applier{table: table}
	ok := app.applyCommit(child, []PathDiff{{
		OldPath: "main.go",
		NewPath: "main.go",
		Change:  Add,
		Edits:   []Edit{{NewStart: 0, NewEnd: 3}},
	}}, func(Record) bool {
		emitted++

		return false
	})

	assert.False(t, ok)
	assert.Equal(t, 1, emitted)
}

func TestNewRecordClampsClockSkew(t *testing.T) {
	t.Parallel()

	birth := Marker{Commit: testCommit("aa", time.Unix(1000, 0))}
	death := Marker{Commit: testCommit("bb", time.Unix(400, 0))}

	rec := newRecord(birth, death)

	assert.Equal(t, int64(0), rec.AgeSeconds)
}
