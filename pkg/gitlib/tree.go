package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"

	"github.com/chrono-code/lineage/pkg/safeconv"
)

// Tree wraps a libgit2 tree.
type Tree struct {
	tree *git2go.Tree
	repo *Repository
}

// Hash returns the tree hash.
func (t *Tree) Hash() Hash {
	return HashFromOid(t.tree.Id())
}

// EntryCount returns the number of entries in the tree.
func (t *Tree) EntryCount() int {
	return safeconv.MustUint64ToInt(t.tree.EntryCount())
}

// EntryByIndex returns the tree entry at the given index.
func (t *Tree) EntryByIndex(i int) *TreeEntry {
	entry := t.tree.EntryByIndex(uint64(safeconv.MustIntToUint(i)))
	if entry == nil {
		return nil
	}

	return &TreeEntry{entry: entry}
}

// EntryByPath returns the tree entry at the given path.
func (t *Tree) EntryByPath(path string) (*TreeEntry, error) {
	entry, err := t.tree.EntryByPath(path)
	if err != nil {
		return nil, fmt.Errorf("entry by path %q: %w", path, err)
	}

	return &TreeEntry{entry: entry}, nil
}

// Free releases the tree resources.
func (t *Tree) Free() {
	if t.tree != nil {
		t.tree.Free()
		t.tree = nil
	}
}

// Native returns the underlying libgit2 tree.
func (t *Tree) Native() *git2go.Tree {
	return t.tree
}

// TreeEntry wraps a libgit2 tree entry.
type TreeEntry struct {
	entry *git2go.TreeEntry
}

// Name returns the entry name.
func (e *TreeEntry) Name() string {
	return e.entry.Name
}

// Hash returns the entry object hash.
func (e *TreeEntry) Hash() Hash {
	return HashFromOid(e.entry.Id)
}

// IsBlob returns true if the entry is a blob.
func (e *TreeEntry) IsBlob() bool {
	return e.entry.Type == git2go.ObjectBlob
}

// IsTree returns true if the entry is a subtree.
func (e *TreeEntry) IsTree() bool {
	return e.entry.Type == git2go.ObjectTree
}

// WalkBlobs recursively walks a tree and calls cb for every blob entry with
// its slash-separated path relative to the tree root.
func WalkBlobs(repo *Repository, tree *Tree, cb func(path string, entry *TreeEntry) error) error {
	return walkBlobs(repo, tree, "", cb)
}

func walkBlobs(repo *Repository, tree *Tree, prefix string, cb func(path string, entry *TreeEntry) error) error {
	count := tree.EntryCount()

	for i := range count {
		entry := tree.EntryByIndex(i)
		if entry == nil {
			continue
		}

		err := walkBlobEntry(repo, entry, prefix, cb)
		if err != nil {
			return err
		}
	}

	return nil
}

func walkBlobEntry(repo *Repository, entry *TreeEntry, prefix string, cb func(path string, entry *TreeEntry) error) error {
	path := entry.Name()
	if prefix != "" {
		path = prefix + "/" + path
	}

	if entry.IsBlob() {
		return cb(path, entry)
	}

	if !entry.IsTree() {
		return nil
	}

	subtree, err := repo.LookupTree(entry.Hash())
	if err != nil {
		return nil // Skip entries we can't look up (e.g. submodules).
	}
	defer subtree.Free()

	return walkBlobs(repo, subtree, path, cb)
}
