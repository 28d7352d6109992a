package provenance

import (
	"context"
	"errors"
	"fmt"
	"iter"
)

// DefaultHeadRef is the revision walked from when none is configured.
const DefaultHeadRef = "HEAD"

// Options configure a reconstruction run.
type Options struct {
	// Head is the revision the walk starts from. Empty means HEAD.
	Head string
	// Tail is the oldest revision the walk will reach, exclusive. Empty
	// means the repository root. A tail that is never encountered on the
	// first-parent chain is not an error; the walk ends at the root.
	Tail string
}

// Hooks are optional observation points invoked synchronously during the
// walk. Nil fields are ignored.
type Hooks struct {
	// CommitProcessed fires after a commit's diffs have been applied.
	CommitProcessed func(commit *Commit)
	// PathSkipped fires when a path is excluded from tracking (SkipBinary,
	// SkipCopy).
	PathSkipped func(path, reason string)
}

// Engine owns the line table for the duration of a walk and produces the
// sequence of completed line lifetime records.
type Engine struct {
	provider Provider
	differ   DiffEngine
	hooks    Hooks
}

// NewEngine creates a reconstruction engine over the given collaborators.
func NewEngine(provider Provider, differ DiffEngine, hooks Hooks) *Engine {
	return &Engine{provider: provider, differ: differ, hooks: hooks}
}

// Reconstruct walks history from opts.Head toward opts.Tail and calls emit
// for every completed line lifetime record, interleaved with the walk's
// progress. Records for lines still alive at the tail boundary are emitted
// last, with a synthetic birth marker referencing the boundary commit.
//
// Returning false from emit stops the run early; that is not an error.
// Failures from the provider or diff engine abort the run and propagate.
func (e *Engine) Reconstruct(ctx context.Context, opts Options, emit func(Record) bool) error {
	headRef := opts.Head
	if headRef == "" {
		headRef = DefaultHeadRef
	}

	head, err := e.provider.ResolveCommit(ctx, headRef)
	if err != nil {
		return fmt.Errorf("provenance: resolve head: %w", err)
	}

	w := &walker{provider: e.provider, differ: e.differ}

	if opts.Tail != "" {
		tail, tailErr := e.provider.ResolveCommit(ctx, opts.Tail)
		if tailErr != nil {
			return fmt.Errorf("provenance: resolve tail: %w", tailErr)
		}

		w.tail = tail.Hash
	}

	table := NewTable()

	seeds, err := e.provider.HeadFiles(ctx, head)
	if err != nil {
		return fmt.Errorf("provenance: seed head tree: %w", err)
	}

	for _, seed := range seeds {
		table.Seed(seed.Path, seed.Lines, head)
	}

	app := &applier{table: table, hooks: e.hooks}

	boundary, err := w.walk(ctx, head, func(s step) error {
		if !app.applyCommit(s.child, s.diffs, emit) {
			return errStopWalk
		}

		if e.hooks.CommitProcessed != nil {
			e.hooks.CommitProcessed(s.child)
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, errStopWalk) {
			return nil
		}

		return err
	}

	return drainTable(table, boundary, emit)
}

// drainTable emits a record for every marker still tracked after the walk:
// lines that existed before the walk's starting boundary and were never
// found to have been inserted within the walked range. Their birth is a
// synthetic marker referencing the boundary commit.
func drainTable(table *Table, boundary *Commit, emit func(Record) bool) error {
	for _, path := range table.Paths() {
		for idx, death := range table.Lines(path) {
			birth := Marker{Commit: boundary, Path: path, Line: idx}
			if !emit(newRecord(birth, death)) {
				return nil
			}
		}
	}

	return nil
}

// Records returns the run as a lazy, single-pass, finite, non-restartable
// sequence. Iteration may be abandoned at any point; a failure mid-walk is
// yielded as the final element's error.
func (e *Engine) Records(ctx context.Context, opts Options) iter.Seq2[Record, error] {
	return func(yield func(Record, error) bool) {
		err := e.Reconstruct(ctx, opts, func(rec Record) bool {
			return yield(rec, nil)
		})
		if err != nil {
			yield(Record{}, err)
		}
	}
}
