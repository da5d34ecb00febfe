// Package scm defines the repository backend capability consumed by the
// state-reconciliation core, plus the pieces shared by every backend:
// the factory registry, snapshot comparison and transport progress parsing.
package scm

import (
	"context"
	"errors"
	"io"
	"time"
)

var (
	ErrNotRepository    = errors.New("not a repository")
	ErrUnknownBackend   = errors.New("unknown scm backend")
	ErrNoTrackingBranch = errors.New("current branch has no tracking branch")
	ErrDetachedHead     = errors.New("HEAD is detached")
)

// DirEntry is one entry of a working tree directory listing.
type DirEntry struct {
	Name  string
	IsDir bool
}

// IndexEntry is one staged path as recorded in the index.
type IndexEntry struct {
	Path  string
	ID    string // content id of the staged blob
	Mode  uint32
	Size  uint32
	Stage int
}

// DiffRecord describes one path that differs between two sides A and B.
//
// Staged records compare the index (A) against HEAD (B); unstaged records
// compare the index (A) against the working tree (B). NewFile means the path
// is missing on the A side, DeletedFile means it is missing on the B side.
type DiffRecord struct {
	APath string
	BPath string
	AID   string
	BID   string

	NewFile     bool
	DeletedFile bool
	Renamed     bool
	RenameFrom  string
	RenameTo    string
}

// Key returns the path the record is filed under in a status map.
func (d DiffRecord) Key() string {
	if d.APath != "" {
		return d.APath
	}
	return d.BPath
}

// Signature identifies the author of a commit.
type Signature struct {
	Name  string
	Email string
}

// CommitInfo is the identity of one historical commit.
type CommitInfo struct {
	ID          string
	AuthorName  string
	AuthorEmail string
	When        time.Time
	Message     string
	ParentIDs   []string
	TreeID      string
}

// LogOptions bounds a history query. Zero values mean "no bound".
type LogOptions struct {
	Path  string
	Limit int
	Since *time.Time
	Until *time.Time
}

// TrackingBranch is the remote reference the current branch follows.
type TrackingBranch struct {
	Name   string // short name, e.g. origin/main
	Remote string
	Merge  string // full ref name on the remote, e.g. refs/heads/main
	ID     string // last known position
}

// RefUpdate reports what a pull or push did to one reference.
type RefUpdate struct {
	Name    string
	OldID   string
	NewID   string
	Summary string
}

// SideKind selects what a DiffSide reads from.
type SideKind int

const (
	SideCommit SideKind = iota
	SideIndex
	SideWorking
)

// DiffSide is one end of a diff: a revision, the index or the working tree.
type DiffSide struct {
	Kind SideKind
	Rev  string
}

func Commit(rev string) DiffSide { return DiffSide{Kind: SideCommit, Rev: rev} }

var (
	Index   = DiffSide{Kind: SideIndex}
	Working = DiffSide{Kind: SideWorking}
)

// SettingsScope selects which configuration file settings are read from.
type SettingsScope int

const (
	ScopeRepository SettingsScope = iota
	ScopeGlobal
)

// UserSettings are the per-project settings the workbench lets users edit.
type UserSettings struct {
	Name       string
	Email      string
	PullRebase bool
}

// StatusSource feeds a reconciliation pass.
type StatusSource interface {
	// MetadataDir is the name of the top-level VCS metadata directory.
	MetadataDir() string
	// ReadDir lists a working tree directory; "" is the root.
	ReadDir(path string) ([]DirEntry, error)
	IndexEntries() ([]IndexEntry, error)
	StagedDiff() ([]DiffRecord, error)
	UnstagedDiff() ([]DiffRecord, error)
	UntrackedFiles() ([]string, error)
}

// PassHooks is optionally implemented by a StatusSource that wants to share
// work between the queries of one reconciliation pass.
type PassHooks interface {
	BeginPass() error
	EndPass()
}

// ContentReader reads file contents at the various revisions.
type ContentReader interface {
	ReadBlob(id string) ([]byte, error)
	ReadWorkingFile(path string) ([]byte, error)
	ReadAtRevision(rev, path string) ([]byte, error)
}

// History iterates commits and exposes their trees as snapshots.
type History interface {
	Log(opts LogOptions) ([]CommitInfo, error)
	CommitFiles(commitID string) (Snapshot, error)
}

// RefReader answers questions about HEAD and its tracking branch.
type RefReader interface {
	HeadCommitID() (string, error)
	BranchName() (string, error)
	// TrackingBranch returns nil, nil when no tracking branch is configured.
	TrackingBranch() (*TrackingBranch, error)
}

// Mutator changes the repository. The Index* methods only touch an
// in-memory copy of the index until WriteIndex persists it or DiscardIndex
// drops it. The other mutators persist that copy before they run.
type Mutator interface {
	Add(path string) error
	Unstage(rev, path string) error
	CheckoutPath(rev, path string) error
	Move(from, to string) error
	RemoveWorkingFile(path string) error
	RenameWorkingFile(from, to string) error
	Commit(message string) (string, error)

	IndexAdd(path string) error
	IndexRemove(path string) error
	WriteIndex() error
	DiscardIndex()
}

// Transport talks to the remote of the tracking branch. Raw progress text
// is written to progress.
type Transport interface {
	Pull(ctx context.Context, progress io.Writer) ([]RefUpdate, error)
	Push(ctx context.Context, progress io.Writer) ([]RefUpdate, error)
}

// Differ renders unified diffs and show output.
type Differ interface {
	Diff(from, to DiffSide, path string) (string, error)
	Show(what string) (string, error)
}

// Settings reads and writes user settings.
type Settings interface {
	UserSettings(scope SettingsScope) (UserSettings, error)
	SetUserSettings(scope SettingsScope, settings UserSettings) error
}

// Backend is the full capability a project needs.
type Backend interface {
	Kind() string
	Root() string

	StatusSource
	ContentReader
	History
	RefReader
	Mutator
	Transport
	Differ
	Settings
}
