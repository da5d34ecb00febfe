package state

import (
	"time"

	"github.com/kurobon/workbench/internal/scm"
)

// ChangeKind classifies one path in a commit.
type ChangeKind string

const (
	ChangeAdded    ChangeKind = "A"
	ChangeDeleted  ChangeKind = "D"
	ChangeRenamed  ChangeKind = "R"
	ChangeModified ChangeKind = "M"
)

// Change is one changed path of a commit. OldPath is set for renames.
type Change struct {
	Kind    ChangeKind
	Path    string
	OldPath string
}

// CommitLogNode is one commit of a history query.
type CommitLogNode struct {
	commit  scm.CommitInfo
	changes []Change
	filled  bool
}

// Commit metadata accessors.
func (n *CommitLogNode) ID() string          { return n.commit.ID }
func (n *CommitLogNode) Author() string      { return n.commit.AuthorName }
func (n *CommitLogNode) AuthorEmail() string { return n.commit.AuthorEmail }
func (n *CommitLogNode) Date() time.Time     { return n.commit.When }
func (n *CommitLogNode) Message() string     { return n.commit.Message }

// Commit returns the metadata as the backend reported it.
func (n *CommitLogNode) Commit() scm.CommitInfo { return n.commit }

// Changes reports ok=false until the change set has been computed.
func (n *CommitLogNode) Changes() ([]Change, bool) {
	return n.changes, n.filled
}

func (n *CommitLogNode) addChanges(cs scm.ChangeSet) {
	for _, p := range cs.Added {
		n.changes = append(n.changes, Change{Kind: ChangeAdded, Path: p})
	}
	for _, p := range cs.Deleted {
		n.changes = append(n.changes, Change{Kind: ChangeDeleted, Path: p})
	}
	for _, r := range cs.Renamed {
		n.changes = append(n.changes, Change{Kind: ChangeRenamed, Path: r.Path, OldPath: r.OldPath})
	}
	for _, p := range cs.Modified {
		n.changes = append(n.changes, Change{Kind: ChangeModified, Path: p})
	}
	n.filled = true
}

// History is the part of the backend a commit log needs.
type History interface {
	Log(opts scm.LogOptions) ([]scm.CommitInfo, error)
	CommitFiles(commitID string) (scm.Snapshot, error)
}

// ProgressFunc is told how many of total nodes have been processed.
type ProgressFunc func(done, total int)

// BuildCommitLog lists the commits selected by opts, newest first, and then
// fills in each node's changes relative to its first parent. progress sees
// (0, total) once the identities are known, (i, total) before node i and
// (total, total) at the end.
func BuildCommitLog(h History, opts scm.LogOptions, progress ProgressFunc) ([]*CommitLogNode, error) {
	if progress == nil {
		progress = func(int, int) {}
	}

	commits, err := h.Log(opts)
	if err != nil {
		return nil, err
	}
	nodes := make([]*CommitLogNode, len(commits))
	for i, c := range commits {
		nodes[i] = &CommitLogNode{commit: c}
	}

	total := len(nodes)
	progress(0, total)

	for i, n := range nodes {
		progress(i, total)
		cs, err := commitChanges(h, n.commit)
		if err != nil {
			return nil, err
		}
		n.addChanges(cs)
	}
	progress(total, total)

	return nodes, nil
}

func commitChanges(h History, c scm.CommitInfo) (scm.ChangeSet, error) {
	current, err := h.CommitFiles(c.ID)
	if err != nil {
		return scm.ChangeSet{}, err
	}
	if len(c.ParentIDs) == 0 {
		return scm.CompareSnapshots(nil, current), nil
	}
	previous, err := h.CommitFiles(c.ParentIDs[0])
	if err != nil {
		return scm.ChangeSet{}, err
	}
	return scm.CompareSnapshots(previous, current), nil
}
