package provenance

import (
	"fmt"
	"sort"
)

// Table maps each tracked path to the ordered sequence of markers for the
// lines currently present in that file at the point the walk has reached.
// The sequence length always equals the file's line count as of the commit
// being examined, before the older commit's diff is applied.
//
// The table is exclusively owned by the reconstruction walk; referencing an
// absent path is a programming error and panics.
type Table struct {
	files map[string][]Marker
}

// NewTable creates an empty line table.
func NewTable() *Table {
	return &Table{files: make(map[string][]Marker)}
}

// Seed initializes a path with lineCount markers, each tagged with the given
// commit and its index.
func (t *Table) Seed(path string, lineCount int, commit *Commit) {
	markers := make([]Marker, lineCount)
	for i := range markers {
		markers[i] = Marker{Commit: commit, Path: path, Line: i}
	}

	t.files[path] = markers
}

// Has reports whether the path is tracked.
func (t *Table) Has(path string) bool {
	_, ok := t.files[path]

	return ok
}

// Lines returns the marker sequence for the path.
func (t *Table) Lines(path string) []Marker {
	markers, ok := t.files[path]
	if !ok {
		panic(fmt.Sprintf("provenance: line table has no entry for %q", path))
	}

	return markers
}

// Set replaces the marker sequence for the path. A nil sequence is valid and
// represents a file with no lines at the current walk position.
func (t *Table) Set(path string, markers []Marker) {
	t.files[path] = markers
}

// Remove deletes the path and returns its marker sequence.
func (t *Table) Remove(path string) []Marker {
	markers, ok := t.files[path]
	if !ok {
		panic(fmt.Sprintf("provenance: line table has no entry for %q", path))
	}

	delete(t.files, path)

	return markers
}

// Drop deletes the path if it is tracked. Used when a path turns out to be
// untrackable (binary content) mid-walk.
func (t *Table) Drop(path string) {
	delete(t.files, path)
}

// Rename moves the marker sequence from one key to another. Older commits
// refer to a renamed file by its former name, so after a rename diff is
// applied the sequence is re-keyed under the old path.
func (t *Table) Rename(fromPath, toPath string) {
	markers, ok := t.files[fromPath]
	if !ok {
		panic(fmt.Sprintf("provenance: line table has no entry for %q", fromPath))
	}

	delete(t.files, fromPath)
	t.files[toPath] = markers
}

// Paths returns the tracked paths in sorted order.
func (t *Table) Paths() []string {
	paths := make([]string, 0, len(t.files))
	for path := range t.files {
		paths = append(paths, path)
	}

	sort.Strings(paths)

	return paths
}

// Len returns the total number of tracked markers across all paths.
func (t *Table) Len() int {
	total := 0
	for _, markers := range t.files {
		total += len(markers)
	}

	return total
}
