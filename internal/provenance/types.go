// Package provenance reconstructs the lifetime of every line that ever
// existed in a repository. It walks history from the head commit backward
// along the first-parent chain, keeps a per-file table mapping current line
// positions to the revision that introduced them, and applies each commit's
// change-set to that table while preserving index correctness across
// insertions, deletions and renames.
package provenance

import (
	"context"
	"time"

	"github.com/chrono-code/lineage/pkg/gitlib"
)

// Commit is the immutable metadata of one walked commit. One instance is
// created per commit and shared by pointer between all markers that
// reference it.
type Commit struct {
	Hash        gitlib.Hash
	FirstParent gitlib.Hash // zero for a root commit
	When        time.Time
	AuthorName  string
	AuthorEmail string
}

// Marker identifies a line's position within a specific path at a specific
// commit. Immutable once constructed.
type Marker struct {
	Commit *Commit
	Path   string
	Line   int
}

// Record is the finalized lifetime of one line. Birth is the marker for the
// commit that introduced the line; Death is the marker for the commit that
// removed it, or a marker referencing the head commit (line still alive) or
// the walk's tail boundary (history truncated before the birth was found).
type Record struct {
	Birth      Marker
	Death      Marker
	AgeSeconds int64
}

// newRecord pairs a birth and death marker, deriving the age. Negative
// deltas from commit clock skew clamp to zero.
func newRecord(birth, death Marker) Record {
	age := int64(death.Commit.When.Sub(birth.Commit.When) / time.Second)
	if age < 0 {
		age = 0
	}

	return Record{Birth: birth, Death: death, AgeSeconds: age}
}

// ChangeType classifies a per-path change within one commit's diff.
type ChangeType int

const (
	// Add means the path exists only on the child side.
	Add ChangeType = iota
	// Modify means the path content changed in place.
	Modify
	// Delete means the path exists only on the parent side.
	Delete
	// Rename means the path moved from OldPath to NewPath.
	Rename
	// Copy means the path was copied from OldPath; copies are not tracked.
	Copy
)

// String returns the change type name.
func (c ChangeType) String() string {
	switch c {
	case Add:
		return "add"
	case Modify:
		return "modify"
	case Delete:
		return "delete"
	case Rename:
		return "rename"
	case Copy:
		return "copy"
	}

	return "unknown"
}

// Edit is one contiguous change between two revisions of a path, expressed
// as half-open line ranges. OldStart/OldEnd index the parent revision,
// NewStart/NewEnd the child revision. A pure insertion has an empty old
// range; a pure deletion has an empty new range.
type Edit struct {
	OldStart int
	OldEnd   int
	NewStart int
	NewEnd   int
}

// PathDiff is the change-set of a single path between a commit and its
// first parent.
type PathDiff struct {
	OldPath string
	NewPath string
	Change  ChangeType
	Binary  bool
	Edits   []Edit
}

// FileSeed describes one head-tree file to seed into the line table.
type FileSeed struct {
	Path  string
	Lines int
}

// Provider supplies commit metadata and the head tree. Implementations are
// read-only and side-effect free; failures are fatal to the run.
type Provider interface {
	// ResolveCommit resolves a revision spec to commit metadata.
	ResolveCommit(ctx context.Context, ref string) (*Commit, error)
	// Commit looks up commit metadata by hash.
	Commit(ctx context.Context, hash gitlib.Hash) (*Commit, error)
	// HeadFiles lists the text files of the commit's tree with their line
	// counts. Binary entries are excluded.
	HeadFiles(ctx context.Context, commit *Commit) ([]FileSeed, error)
}

// DiffEngine computes per-path diffs between a commit and its first parent.
// A nil parent denotes the empty tree, so every path reports as Add.
type DiffEngine interface {
	Diff(ctx context.Context, parent, child *Commit) ([]PathDiff, error)
}
