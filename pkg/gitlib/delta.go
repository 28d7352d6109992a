package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// DeltaStatus classifies a file change between two trees.
type DeltaStatus int

const (
	// DeltaAdded indicates the file exists only on the new side.
	DeltaAdded DeltaStatus = iota
	// DeltaDeleted indicates the file exists only on the old side.
	DeltaDeleted
	// DeltaModified indicates the file content changed in place.
	DeltaModified
	// DeltaRenamed indicates the file moved from OldFile.Path to NewFile.Path.
	DeltaRenamed
	// DeltaCopied indicates the file was copied from OldFile.Path.
	DeltaCopied
)

// String returns the status name.
func (s DeltaStatus) String() string {
	switch s {
	case DeltaAdded:
		return "added"
	case DeltaDeleted:
		return "deleted"
	case DeltaModified:
		return "modified"
	case DeltaRenamed:
		return "renamed"
	case DeltaCopied:
		return "copied"
	}

	return "unknown"
}

// DiffFile identifies one side of a delta.
type DiffFile struct {
	Path string
	Hash Hash
	Size int64
}

// Delta represents a single file change extracted from a tree diff.
type Delta struct {
	Status  DeltaStatus
	Binary  bool
	OldFile DiffFile
	NewFile DiffFile
}

// Diff wraps a libgit2 diff.
type Diff struct {
	diff *git2go.Diff
}

// Deltas extracts the file-level deltas from the diff, dropping delta kinds
// that carry no content change (unmodified, ignored, untracked, conflicted).
func (d *Diff) Deltas() ([]Delta, error) {
	numDeltas, err := d.diff.NumDeltas()
	if err != nil {
		return nil, fmt.Errorf("get num deltas: %w", err)
	}

	deltas := make([]Delta, 0, numDeltas)

	for i := range numDeltas {
		raw, deltaErr := d.diff.Delta(i)
		if deltaErr != nil {
			return nil, fmt.Errorf("get delta %d: %w", i, deltaErr)
		}

		status, ok := classifyDelta(raw.Status)
		if !ok {
			continue
		}

		deltas = append(deltas, Delta{
			Status: status,
			Binary: raw.Flags&git2go.DiffFlagBinary != 0,
			OldFile: DiffFile{
				Path: raw.OldFile.Path,
				Hash: HashFromOid(raw.OldFile.Oid),
				Size: int64(raw.OldFile.Size),
			},
			NewFile: DiffFile{
				Path: raw.NewFile.Path,
				Hash: HashFromOid(raw.NewFile.Oid),
				Size: int64(raw.NewFile.Size),
			},
		})
	}

	return deltas, nil
}

func classifyDelta(status git2go.Delta) (DeltaStatus, bool) {
	switch status {
	case git2go.DeltaAdded:
		return DeltaAdded, true
	case git2go.DeltaDeleted:
		return DeltaDeleted, true
	case git2go.DeltaModified:
		return DeltaModified, true
	case git2go.DeltaRenamed:
		return DeltaRenamed, true
	case git2go.DeltaCopied:
		return DeltaCopied, true
	case git2go.DeltaUnmodified, git2go.DeltaIgnored, git2go.DeltaUntracked,
		git2go.DeltaTypeChange, git2go.DeltaUnreadable, git2go.DeltaConflicted:
		return 0, false
	}

	return 0, false
}

// Free releases the diff resources.
func (d *Diff) Free() {
	if d.diff == nil {
		return
	}

	err := d.diff.Free()
	d.diff = nil
	// Free() errors are non-actionable in cleanup.
	_ = err
}
