package gitbackend

import (
	"sort"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/object"

	"github.com/kurobon/workbench/internal/scm"
)

func (b *Backend) IndexEntries() ([]scm.IndexEntry, error) {
	idx, err := b.index()
	if err != nil {
		return nil, err
	}
	entries := make([]scm.IndexEntry, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		entries = append(entries, scm.IndexEntry{
			Path:  e.Name,
			ID:    e.Hash.String(),
			Mode:  uint32(e.Mode),
			Size:  e.Size,
			Stage: int(e.Stage),
		})
	}
	return entries, nil
}

// StagedDiff compares the index (A side) with HEAD (B side).
func (b *Backend) StagedDiff() ([]scm.DiffRecord, error) {
	head, err := b.headSnapshot()
	if err != nil {
		return nil, err
	}
	staged, err := b.indexSnapshot()
	if err != nil {
		return nil, err
	}

	cs := scm.CompareSnapshots(head, staged)
	var records []scm.DiffRecord

	// in the index but not in HEAD: missing on the B side
	for _, p := range cs.Added {
		records = append(records, scm.DiffRecord{
			APath: p, AID: staged[p], DeletedFile: true,
		})
	}
	// in HEAD but not in the index: missing on the A side
	for _, p := range cs.Deleted {
		records = append(records, scm.DiffRecord{
			BPath: p, BID: head[p], NewFile: true,
		})
	}
	for _, r := range cs.Renamed {
		records = append(records, scm.DiffRecord{
			APath: r.Path, BPath: r.OldPath,
			AID: staged[r.Path], BID: head[r.OldPath],
			Renamed: true, RenameFrom: r.OldPath, RenameTo: r.Path,
		})
	}
	for _, p := range cs.Modified {
		records = append(records, scm.DiffRecord{
			APath: p, BPath: p, AID: staged[p], BID: head[p],
		})
	}
	return records, nil
}

// UnstagedDiff compares the index (A side) with the working tree (B side).
func (b *Backend) UnstagedDiff() ([]scm.DiffRecord, error) {
	st, err := b.status()
	if err != nil {
		return nil, err
	}
	staged, err := b.indexSnapshot()
	if err != nil {
		return nil, err
	}

	var records []scm.DiffRecord
	for _, p := range sortedStatusPaths(st) {
		fs := st[p]
		switch fs.Worktree {
		case gogit.Modified:
			records = append(records, scm.DiffRecord{APath: p, BPath: p, AID: staged[p]})
		case gogit.Deleted:
			records = append(records, scm.DiffRecord{APath: p, AID: staged[p], DeletedFile: true})
		case gogit.Added:
			records = append(records, scm.DiffRecord{BPath: p, NewFile: true})
		}
	}
	return records, nil
}

// UntrackedFiles lists paths that are neither tracked nor ignored.
func (b *Backend) UntrackedFiles() ([]string, error) {
	st, err := b.status()
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, p := range sortedStatusPaths(st) {
		if st[p].Worktree == gogit.Untracked {
			paths = append(paths, p)
		}
	}
	return paths, nil
}

func sortedStatusPaths(st gogit.Status) []string {
	paths := make([]string, 0, len(st))
	for p := range st {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

func (b *Backend) indexSnapshot() (scm.Snapshot, error) {
	idx, err := b.index()
	if err != nil {
		return nil, err
	}
	snap := make(scm.Snapshot, len(idx.Entries))
	for _, e := range idx.Entries {
		snap[e.Name] = e.Hash.String()
	}
	return snap, nil
}

// headSnapshot is empty on an unborn branch.
func (b *Backend) headSnapshot() (scm.Snapshot, error) {
	h, err := b.headHash()
	if err != nil {
		return nil, err
	}
	if h.IsZero() {
		return scm.Snapshot{}, nil
	}
	return b.commitSnapshot(h)
}

func (b *Backend) commitSnapshot(h plumbing.Hash) (scm.Snapshot, error) {
	commit, err := b.repo.CommitObject(h)
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}
	return treeSnapshot(tree)
}

func treeSnapshot(tree *object.Tree) (scm.Snapshot, error) {
	snap := make(scm.Snapshot)
	err := tree.Files().ForEach(func(f *object.File) error {
		snap[f.Name] = f.Hash.String()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return snap, nil
}
