package provenance

import (
	"context"
	"fmt"

	"github.com/chrono-code/lineage/pkg/gitlib"
)

// step is one unit of walk progress: a commit, its examined first parent
// (nil for a root commit) and the diffs between them.
type step struct {
	child  *Commit
	parent *Commit
	diffs  []PathDiff
}

// walker iterates commits from head toward a tail (or the repository root),
// requesting each step's diff from the diff engine.
type walker struct {
	provider Provider
	differ   DiffEngine
	tail     gitlib.Hash // zero means walk to the root
}

// errStopWalk aborts the walk when the consumer stops pulling records. It
// never escapes the engine.
var errStopWalk = fmt.Errorf("provenance: walk stopped by consumer")

// walk drives fn from head backward. The tail commit itself is never diffed
// against its own parent; a configured tail that is never encountered simply
// lets the walk run to the root. Returns the boundary commit the walk
// stopped at: the tail when reached, otherwise the root.
func (w *walker) walk(ctx context.Context, head *Commit, fn func(step) error) (*Commit, error) {
	cur := head

	for {
		if err := ctx.Err(); err != nil {
			return cur, fmt.Errorf("provenance: walk canceled at %s: %w", cur.Hash.Short(), err)
		}

		if !w.tail.IsZero() && cur.Hash == w.tail {
			return cur, nil
		}

		var (
			parent *Commit
			err    error
		)

		if !cur.FirstParent.IsZero() {
			parent, err = w.provider.Commit(ctx, cur.FirstParent)
			if err != nil {
				return cur, fmt.Errorf("provenance: parent of %s: %w", cur.Hash.Short(), err)
			}
		}

		diffs, err := w.differ.Diff(ctx, parent, cur)
		if err != nil {
			return cur, fmt.Errorf("provenance: diff at %s: %w", cur.Hash.Short(), err)
		}

		err = fn(step{child: cur, parent: parent, diffs: diffs})
		if err != nil {
			return cur, err
		}

		if parent == nil {
			return cur, nil
		}

		cur = parent
	}
}
