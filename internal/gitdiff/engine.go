package gitdiff

import (
	"context"
	"fmt"

	"github.com/src-d/enry/v2"

	"github.com/chrono-code/lineage/internal/provenance"
	"github.com/chrono-code/lineage/pkg/gitlib"
)

// Engine computes per-path diffs between a commit and its first parent using
// libgit2 tree diffs. Rename detection is always on; similar add/delete
// pairs surface as Rename deltas so line identity survives file moves.
type Engine struct {
	// Repo is the open repository. The engine does not own it.
	Repo *gitlib.Repository
	// SkipVendored excludes paths matched by enry.IsVendor.
	SkipVendored bool
}

// Diff implements provenance.DiffEngine. A nil parent denotes the empty
// tree, so every path of the child reports as Add.
func (e *Engine) Diff(ctx context.Context, parent, child *provenance.Commit) ([]provenance.PathDiff, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("gitdiff: %w", err)
	}

	newTree, err := e.commitTree(child.Hash)
	if err != nil {
		return nil, err
	}
	defer newTree.Free()

	var oldTree *gitlib.Tree

	if parent != nil {
		oldTree, err = e.commitTree(parent.Hash)
		if err != nil {
			return nil, err
		}
		defer oldTree.Free()
	}

	diff, err := e.Repo.DiffTreeToTree(oldTree, newTree, true)
	if err != nil {
		return nil, fmt.Errorf("gitdiff: %s: %w", child.Hash.Short(), err)
	}
	defer diff.Free()

	deltas, err := diff.Deltas()
	if err != nil {
		return nil, fmt.Errorf("gitdiff: %s: %w", child.Hash.Short(), err)
	}

	pathDiffs := make([]provenance.PathDiff, 0, len(deltas))

	for _, delta := range deltas {
		if e.SkipVendored && enry.IsVendor(trackedPath(delta)) {
			continue
		}

		pd, convErr := e.convertDelta(delta)
		if convErr != nil {
			return nil, fmt.Errorf("gitdiff: %s %q: %w", child.Hash.Short(), trackedPath(delta), convErr)
		}

		pathDiffs = append(pathDiffs, pd)
	}

	return pathDiffs, nil
}

// trackedPath is the path a delta is known by on the side the walk has
// already seen: the new side, except for pure deletions.
func trackedPath(delta gitlib.Delta) string {
	if delta.Status == gitlib.DeltaDeleted {
		return delta.OldFile.Path
	}

	return delta.NewFile.Path
}

func (e *Engine) commitTree(hash gitlib.Hash) (*gitlib.Tree, error) {
	commit, err := e.Repo.LookupCommit(hash)
	if err != nil {
		return nil, fmt.Errorf("gitdiff: %w", err)
	}
	defer commit.Free()

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("gitdiff: %w", err)
	}

	return tree, nil
}

// convertDelta turns one libgit2 delta into a PathDiff with its edit list.
func (e *Engine) convertDelta(delta gitlib.Delta) (provenance.PathDiff, error) {
	pd := provenance.PathDiff{
		OldPath: delta.OldFile.Path,
		NewPath: delta.NewFile.Path,
		Change:  changeType(delta.Status),
		Binary:  delta.Binary,
	}

	if pd.Binary || pd.Change == provenance.Copy {
		return pd, nil
	}

	oldData, err := e.blobData(delta.OldFile.Hash)
	if err != nil {
		return pd, err
	}

	newData, err := e.blobData(delta.NewFile.Hash)
	if err != nil {
		return pd, err
	}

	// libgit2 only flags binary content when it inspects blobs, which a
	// plain tree diff does not. Check the loaded data directly.
	if enry.IsBinary(oldData) || enry.IsBinary(newData) {
		pd.Binary = true

		return pd, nil
	}

	switch pd.Change {
	case provenance.Add:
		if n := gitlib.CountLines(newData); n > 0 {
			pd.Edits = []provenance.Edit{{NewEnd: n}}
		}
	case provenance.Delete:
		if n := gitlib.CountLines(oldData); n > 0 {
			pd.Edits = []provenance.Edit{{OldEnd: n}}
		}
	case provenance.Modify, provenance.Rename:
		pd.Edits = editList(string(oldData), string(newData))
	case provenance.Copy:
	}

	return pd, nil
}

// blobData loads a blob's contents; a zero hash denotes the absent side of
// an add or delete and yields nil.
func (e *Engine) blobData(hash gitlib.Hash) ([]byte, error) {
	if hash.IsZero() {
		return nil, nil
	}

	blob, err := e.Repo.LookupBlob(hash)
	if err != nil {
		return nil, err
	}
	defer blob.Free()

	data := blob.Contents()
	out := make([]byte, len(data))
	copy(out, data)

	return out, nil
}

func changeType(status gitlib.DeltaStatus) provenance.ChangeType {
	switch status {
	case gitlib.DeltaAdded:
		return provenance.Add
	case gitlib.DeltaDeleted:
		return provenance.Delete
	case gitlib.DeltaModified:
		return provenance.Modify
	case gitlib.DeltaRenamed:
		return provenance.Rename
	case gitlib.DeltaCopied:
		return provenance.Copy
	}

	return provenance.Modify
}
