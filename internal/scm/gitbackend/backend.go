// Package gitbackend implements the scm.Backend capability on top of go-git.
package gitbackend

import (
	"errors"
	"fmt"
	"sort"

	"github.com/go-git/go-billy/v5"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/rs/zerolog"

	"github.com/kurobon/workbench/internal/scm"
)

const Kind = "git"

func init() {
	scm.Register(factory{})
}

type factory struct{}

func (factory) Name() string                  { return Kind }
func (factory) PresentationShortName() string { return "Git" }
func (factory) PresentationLongName() string  { return "Git" }
func (factory) MetadataFolder() string        { return gogit.GitDirName }

func (factory) Open(path string, opts scm.OpenOptions) (scm.Backend, error) {
	return Open(path, opts)
}

// Backend wraps one go-git repository with a working tree.
type Backend struct {
	repo   *gogit.Repository
	wt     *gogit.Worktree
	fs     billy.Filesystem
	author scm.Signature
	log    zerolog.Logger

	// index edited by IndexAdd/IndexRemove, nil until first edit
	pending *index.Index
	// worktree status shared by the calls of one reconciliation pass
	passStatus gogit.Status
}

var _ scm.Backend = (*Backend)(nil)

// Open opens the repository whose working tree is rooted at path.
func Open(path string, opts scm.OpenOptions) (*Backend, error) {
	repo, err := gogit.PlainOpen(path)
	if err != nil {
		if errors.Is(err, gogit.ErrRepositoryNotExists) {
			return nil, fmt.Errorf("%w: %s", scm.ErrNotRepository, path)
		}
		return nil, err
	}
	return New(repo, opts)
}

// New wraps an already opened repository, e.g. an in-memory one.
func New(repo *gogit.Repository, opts scm.OpenOptions) (*Backend, error) {
	w, err := repo.Worktree()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", scm.ErrNotRepository, err)
	}
	return &Backend{
		repo:   repo,
		wt:     w,
		fs:     w.Filesystem,
		author: opts.Author,
		log:    opts.Logger.With().Str("scm", Kind).Logger(),
	}, nil
}

func (b *Backend) Kind() string { return Kind }

func (b *Backend) Root() string { return b.fs.Root() }

// Repository exposes the underlying go-git repository.
func (b *Backend) Repository() *gogit.Repository { return b.repo }

func (b *Backend) MetadataDir() string { return gogit.GitDirName }

// BeginPass snapshots the worktree status so that UnstagedDiff and
// UntrackedFiles share one status computation.
func (b *Backend) BeginPass() error {
	st, err := b.wt.Status()
	if err != nil {
		return err
	}
	b.passStatus = st
	return nil
}

func (b *Backend) EndPass() {
	b.passStatus = nil
}

func (b *Backend) status() (gogit.Status, error) {
	if b.passStatus != nil {
		return b.passStatus, nil
	}
	return b.wt.Status()
}

func (b *Backend) index() (*index.Index, error) {
	if b.pending != nil {
		return b.pending, nil
	}
	return b.repo.Storer.Index()
}

// headHash returns the zero hash for an unborn branch.
func (b *Backend) headHash() (plumbing.Hash, error) {
	ref, err := b.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return plumbing.ZeroHash, nil
		}
		return plumbing.ZeroHash, err
	}
	return ref.Hash(), nil
}

func (b *Backend) HeadCommitID() (string, error) {
	h, err := b.headHash()
	if err != nil || h.IsZero() {
		return "", err
	}
	return h.String(), nil
}

func (b *Backend) BranchName() (string, error) {
	ref, err := b.repo.Head()
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			// unborn branch: HEAD is symbolic but points nowhere yet
			sym, symErr := b.repo.Storer.Reference(plumbing.HEAD)
			if symErr == nil && sym.Type() == plumbing.SymbolicReference {
				return sym.Target().Short(), nil
			}
		}
		return "", err
	}
	if !ref.Name().IsBranch() {
		return "", scm.ErrDetachedHead
	}
	return ref.Name().Short(), nil
}

func (b *Backend) TrackingBranch() (*scm.TrackingBranch, error) {
	name, err := b.BranchName()
	if err != nil {
		if errors.Is(err, scm.ErrDetachedHead) {
			return nil, nil
		}
		return nil, err
	}

	cfg, err := b.repo.Config()
	if err != nil {
		return nil, err
	}
	branch, ok := cfg.Branches[name]
	if !ok || branch.Remote == "" || branch.Merge == "" {
		return nil, nil
	}

	remoteRef := plumbing.NewRemoteReferenceName(branch.Remote, branch.Merge.Short())
	ref, err := b.repo.Reference(remoteRef, true)
	if err != nil {
		if errors.Is(err, plumbing.ErrReferenceNotFound) {
			return nil, nil
		}
		return nil, err
	}

	return &scm.TrackingBranch{
		Name:   remoteRef.Short(),
		Remote: branch.Remote,
		Merge:  branch.Merge.String(),
		ID:     ref.Hash().String(),
	}, nil
}

func (b *Backend) ReadDir(path string) ([]scm.DirEntry, error) {
	dir := path
	if dir == "" {
		dir = "/"
	}
	infos, err := b.fs.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	entries := make([]scm.DirEntry, 0, len(infos))
	for _, fi := range infos {
		entries = append(entries, scm.DirEntry{Name: fi.Name(), IsDir: fi.IsDir()})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}
