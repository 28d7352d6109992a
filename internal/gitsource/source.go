// Package gitsource implements the provenance repository provider over
// libgit2: ref resolution, commit metadata lookup and head tree seeding.
package gitsource

import (
	"context"
	"fmt"

	"github.com/src-d/enry/v2"

	"github.com/chrono-code/lineage/internal/provenance"
	"github.com/chrono-code/lineage/pkg/gitlib"
)

// Source reads commits and trees from an open repository. It caches commit
// metadata so each commit is materialized once per run and markers can share
// the instance by pointer.
type Source struct {
	// Repo is the open repository. The source does not own it.
	Repo *gitlib.Repository
	// SkipVendored excludes head-tree paths matched by enry.IsVendor.
	SkipVendored bool

	commits map[gitlib.Hash]*provenance.Commit
}

// NewSource creates a provider over the given repository.
func NewSource(repo *gitlib.Repository, skipVendored bool) *Source {
	return &Source{
		Repo:         repo,
		SkipVendored: skipVendored,
		commits:      make(map[gitlib.Hash]*provenance.Commit),
	}
}

// ResolveCommit implements provenance.Provider.
func (s *Source) ResolveCommit(ctx context.Context, ref string) (*provenance.Commit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("gitsource: %w", err)
	}

	commit, err := s.Repo.ResolveCommit(ref)
	if err != nil {
		return nil, fmt.Errorf("gitsource: %w", err)
	}
	defer commit.Free()

	return s.intern(commit), nil
}

// Commit implements provenance.Provider.
func (s *Source) Commit(ctx context.Context, hash gitlib.Hash) (*provenance.Commit, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("gitsource: %w", err)
	}

	if cached, ok := s.commits[hash]; ok {
		return cached, nil
	}

	commit, err := s.Repo.LookupCommit(hash)
	if err != nil {
		return nil, fmt.Errorf("gitsource: %w", err)
	}
	defer commit.Free()

	return s.intern(commit), nil
}

func (s *Source) intern(commit *gitlib.Commit) *provenance.Commit {
	hash := commit.Hash()
	if cached, ok := s.commits[hash]; ok {
		return cached
	}

	author := commit.Author()
	meta := &provenance.Commit{
		Hash:        hash,
		FirstParent: commit.ParentHash(0),
		When:        author.When,
		AuthorName:  author.Name,
		AuthorEmail: author.Email,
	}

	if commit.NumParents() == 0 {
		meta.FirstParent = gitlib.ZeroHash()
	}

	s.commits[hash] = meta

	return meta
}

// HeadFiles implements provenance.Provider: every text blob of the commit's
// tree with its line count. Binary blobs and, when configured, vendored
// paths are excluded.
func (s *Source) HeadFiles(ctx context.Context, commit *provenance.Commit) ([]provenance.FileSeed, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("gitsource: %w", err)
	}

	gitCommit, err := s.Repo.LookupCommit(commit.Hash)
	if err != nil {
		return nil, fmt.Errorf("gitsource: %w", err)
	}
	defer gitCommit.Free()

	tree, err := gitCommit.Tree()
	if err != nil {
		return nil, fmt.Errorf("gitsource: %w", err)
	}
	defer tree.Free()

	var seeds []provenance.FileSeed

	walkErr := gitlib.WalkBlobs(s.Repo, tree, func(path string, entry *gitlib.TreeEntry) error {
		if s.SkipVendored && enry.IsVendor(path) {
			return nil
		}

		blob, blobErr := s.Repo.LookupBlob(entry.Hash())
		if blobErr != nil {
			return fmt.Errorf("read %q: %w", path, blobErr)
		}
		defer blob.Free()

		data := blob.Contents()
		if enry.IsBinary(data) {
			return nil
		}

		seeds = append(seeds, provenance.FileSeed{Path: path, Lines: gitlib.CountLines(data)})

		return nil
	})
	if walkErr != nil {
		return nil, fmt.Errorf("gitsource: head tree of %s: %w", commit.Hash.Short(), walkErr)
	}

	return seeds, nil
}
