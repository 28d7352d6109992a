package gitlib

import (
	"fmt"

	git2go "github.com/libgit2/git2go/v34"
)

// Repository wraps a libgit2 repository.
type Repository struct {
	repo *git2go.Repository
	path string
}

// OpenRepository opens a git repository at the given path.
func OpenRepository(path string) (*Repository, error) {
	repo, err := git2go.OpenRepository(path)
	if err != nil {
		return nil, fmt.Errorf("open repository: %w", err)
	}

	return &Repository{repo: repo, path: path}, nil
}

// Path returns the repository path.
func (r *Repository) Path() string {
	return r.path
}

// Free releases the repository resources.
func (r *Repository) Free() {
	if r.repo != nil {
		r.repo.Free()
		r.repo = nil
	}
}

// Head returns the HEAD reference target.
func (r *Repository) Head() (Hash, error) {
	ref, err := r.repo.Head()
	if err != nil {
		return Hash{}, fmt.Errorf("get HEAD: %w", err)
	}
	defer ref.Free()

	return HashFromOid(ref.Target()), nil
}

// ResolveCommit resolves a revision spec ("HEAD", branch, tag, hash prefix)
// to the commit it names, peeling tags along the way.
func (r *Repository) ResolveCommit(ref string) (*Commit, error) {
	obj, err := r.repo.RevparseSingle(ref)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: %w", ref, err)
	}
	defer obj.Free()

	peeled, err := obj.Peel(git2go.ObjectCommit)
	if err != nil {
		return nil, fmt.Errorf("resolve %q: not a commit: %w", ref, err)
	}

	commit, err := peeled.AsCommit()
	if err != nil {
		peeled.Free()

		return nil, fmt.Errorf("resolve %q: %w", ref, err)
	}

	return &Commit{commit: commit, repo: r}, nil
}

// LookupCommit returns the commit with the given hash.
func (r *Repository) LookupCommit(hash Hash) (*Commit, error) {
	commit, err := r.repo.LookupCommit(hash.ToOid())
	if err != nil {
		return nil, fmt.Errorf("lookup commit %s: %w", hash.Short(), err)
	}

	return &Commit{commit: commit, repo: r}, nil
}

// LookupBlob returns the blob with the given hash.
func (r *Repository) LookupBlob(hash Hash) (*Blob, error) {
	blob, err := r.repo.LookupBlob(hash.ToOid())
	if err != nil {
		return nil, fmt.Errorf("lookup blob %s: %w", hash.Short(), err)
	}

	return &Blob{blob: blob}, nil
}

// LookupTree returns the tree with the given hash.
func (r *Repository) LookupTree(hash Hash) (*Tree, error) {
	tree, err := r.repo.LookupTree(hash.ToOid())
	if err != nil {
		return nil, fmt.Errorf("lookup tree %s: %w", hash.Short(), err)
	}

	return &Tree{tree: tree, repo: r}, nil
}

// DiffTreeToTree computes the diff between two trees. Either tree may be nil,
// denoting the empty tree. When findRenames is set, similar adds/deletes are
// folded into rename and copy deltas.
func (r *Repository) DiffTreeToTree(oldTree, newTree *Tree, findRenames bool) (*Diff, error) {
	opts, err := git2go.DefaultDiffOptions()
	if err != nil {
		return nil, fmt.Errorf("get diff options: %w", err)
	}

	var oldT, newT *git2go.Tree
	if oldTree != nil {
		oldT = oldTree.tree
	}

	if newTree != nil {
		newT = newTree.tree
	}

	diff, err := r.repo.DiffTreeToTree(oldT, newT, &opts)
	if err != nil {
		return nil, fmt.Errorf("diff trees: %w", err)
	}

	if findRenames {
		findOpts, findErr := git2go.DefaultDiffFindOptions()
		if findErr != nil {
			wrapped := &Diff{diff: diff}
			wrapped.Free()

			return nil, fmt.Errorf("get diff find options: %w", findErr)
		}

		findOpts.Flags = git2go.DiffFindRenames | git2go.DiffFindCopies

		findErr = diff.FindSimilar(&findOpts)
		if findErr != nil {
			wrapped := &Diff{diff: diff}
			wrapped.Free()

			return nil, fmt.Errorf("find renames: %w", findErr)
		}
	}

	return &Diff{diff: diff}, nil
}

// Native returns the underlying libgit2 repository for advanced operations.
func (r *Repository) Native() *git2go.Repository {
	return r.repo
}
