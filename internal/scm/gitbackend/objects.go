package gitbackend

import (
	"fmt"
	"io"

	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/storer"

	"github.com/kurobon/workbench/internal/scm"
)

func (b *Backend) ReadBlob(id string) ([]byte, error) {
	blob, err := b.repo.BlobObject(plumbing.NewHash(id))
	if err != nil {
		return nil, fmt.Errorf("blob %s: %w", id, err)
	}
	r, err := blob.Reader()
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return io.ReadAll(r)
}

func (b *Backend) ReadWorkingFile(path string) ([]byte, error) {
	return util.ReadFile(b.fs, path)
}

func (b *Backend) ReadAtRevision(rev, path string) ([]byte, error) {
	commit, err := b.resolveCommit(rev)
	if err != nil {
		return nil, err
	}
	f, err := commit.File(path)
	if err != nil {
		return nil, fmt.Errorf("%s:%s: %w", rev, path, err)
	}
	content, err := f.Contents()
	if err != nil {
		return nil, err
	}
	return []byte(content), nil
}

func (b *Backend) resolveCommit(rev string) (*object.Commit, error) {
	if rev == "" {
		rev = "HEAD"
	}
	h, err := b.repo.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("bad revision '%s': %w", rev, err)
	}
	return b.repo.CommitObject(*h)
}

// Log walks the commits reachable from HEAD, newest first by commit time.
func (b *Backend) Log(opts scm.LogOptions) ([]scm.CommitInfo, error) {
	head, err := b.headHash()
	if err != nil {
		return nil, err
	}
	if head.IsZero() {
		return nil, nil
	}

	logOpts := &gogit.LogOptions{
		From:  head,
		Order: gogit.LogOrderCommitterTime,
		Since: opts.Since,
		Until: opts.Until,
	}
	if opts.Path != "" {
		path := opts.Path
		logOpts.FileName = &path
	}

	iter, err := b.repo.Log(logOpts)
	if err != nil {
		return nil, err
	}
	defer iter.Close()

	var commits []scm.CommitInfo
	err = iter.ForEach(func(c *object.Commit) error {
		if opts.Limit > 0 && len(commits) >= opts.Limit {
			return storer.ErrStop
		}
		commits = append(commits, commitInfo(c))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return commits, nil
}

func commitInfo(c *object.Commit) scm.CommitInfo {
	parents := make([]string, 0, len(c.ParentHashes))
	for _, p := range c.ParentHashes {
		parents = append(parents, p.String())
	}
	return scm.CommitInfo{
		ID:          c.Hash.String(),
		AuthorName:  c.Author.Name,
		AuthorEmail: c.Author.Email,
		When:        c.Committer.When,
		Message:     c.Message,
		ParentIDs:   parents,
		TreeID:      c.TreeHash.String(),
	}
}

func (b *Backend) CommitFiles(commitID string) (scm.Snapshot, error) {
	return b.commitSnapshot(plumbing.NewHash(commitID))
}
