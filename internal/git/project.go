package git

import (
	"fmt"

	"github.com/rs/zerolog"

	"github.com/kurobon/workbench/internal/scm"
	"github.com/kurobon/workbench/internal/state"
)

// LifecycleState tells whether the in-memory status matches the backend.
type LifecycleState int

const (
	// Clean: the status map reflects the repository.
	Clean LifecycleState = iota
	// Dirty: the index was edited in memory and not written yet.
	Dirty
	// Stale: the repository changed and the status map is out of date.
	Stale
)

func (s LifecycleState) String() string {
	switch s {
	case Dirty:
		return "dirty"
	case Stale:
		return "stale"
	default:
		return "clean"
	}
}

// PreconditionError is the panic value for lifecycle calls made in the
// wrong state. It signals a caller bug.
type PreconditionError struct {
	Op  string
	Msg string
}

func (e *PreconditionError) Error() string {
	return e.Op + ": " + e.Msg
}

// Options describe how to open a project.
type Options struct {
	Name   string
	Path   string
	Kind   string // "" detects the backend from the metadata folder
	Author scm.Signature

	// HistoryLimit caps log output when a command gives no limit.
	HistoryLimit int
}

// Project is the status model of one repository. It is not safe for
// concurrent use; callers serialize commands and UpdateState.
type Project struct {
	opts    Options
	backend scm.Backend
	log     zerolog.Logger

	files       state.StatusMap
	tree        *state.TreeNode
	flat        *state.TreeNode
	numStaged   int
	numModified int

	dirtyIndex bool
	staleIndex bool
	generation int
}

// New wraps an open backend. The status is empty until UpdateState runs.
func New(name string, backend scm.Backend, log zerolog.Logger) *Project {
	return newProject(Options{Name: name, Path: backend.Root(), Kind: backend.Kind()}, backend, log)
}

// Open opens the repository described by opts.
func Open(opts Options, log zerolog.Logger) (*Project, error) {
	backend, err := scm.Open(opts.Kind, opts.Path, scm.OpenOptions{Logger: log, Author: opts.Author})
	if err != nil {
		return nil, err
	}
	opts.Kind = backend.Kind()
	return newProject(opts, backend, log), nil
}

func newProject(opts Options, backend scm.Backend, log zerolog.Logger) *Project {
	tree, flat := state.ProjectTree(opts.Name, nil)
	return &Project{
		opts:    opts,
		backend: backend,
		log:     log.With().Str("project", opts.Name).Logger(),
		files:   state.StatusMap{},
		tree:    tree,
		flat:    flat,
	}
}

// NewInstance opens the same repository again with fresh in-memory state,
// for use on another goroutine.
func (p *Project) NewInstance() (*Project, error) {
	return Open(p.opts, p.log)
}

func (p *Project) String() string {
	return fmt.Sprintf("<Project %s>", p.opts.Name)
}

func (p *Project) Name() string         { return p.opts.Name }
func (p *Project) Path() string         { return p.backend.Root() }
func (p *Project) SCMKind() string      { return p.backend.Kind() }
func (p *Project) Backend() scm.Backend { return p.backend }
func (p *Project) HistoryLimit() int    { return p.opts.HistoryLimit }

// State reports the lifecycle state; Dirty wins over Stale.
func (p *Project) State() LifecycleState {
	switch {
	case p.dirtyIndex:
		return Dirty
	case p.staleIndex:
		return Stale
	default:
		return Clean
	}
}

// Generation counts completed reconciliation passes.
func (p *Project) Generation() int { return p.generation }

// SaveChanges writes a dirty index, then reconciles.
func (p *Project) SaveChanges() error {
	p.log.Debug().Bool("dirty", p.dirtyIndex).Bool("stale", p.staleIndex).Msg("save changes")
	if !p.dirtyIndex && !p.staleIndex {
		panic(&PreconditionError{Op: "SaveChanges", Msg: "nothing was changed"})
	}

	if p.dirtyIndex {
		if err := p.backend.WriteIndex(); err != nil {
			return fmt.Errorf("write index: %w", err)
		}
		p.dirtyIndex = false
	}
	p.staleIndex = false

	return p.UpdateState()
}

// Refresh brings the status up to date, persisting pending index edits
// first.
func (p *Project) Refresh() error {
	if p.State() == Clean {
		return p.UpdateState()
	}
	return p.SaveChanges()
}

// UpdateState rebuilds the status map and both trees from the backend.
// The previous state is kept if the pass fails.
func (p *Project) UpdateState() error {
	p.log.Debug().Msg("update state")
	if p.dirtyIndex {
		panic(&PreconditionError{Op: "UpdateState", Msg: "index is dirty, call SaveChanges first"})
	}

	res, err := state.Reconcile(p.backend)
	if err != nil {
		return fmt.Errorf("update state: %w", err)
	}
	tree, flat := state.ProjectTree(p.opts.Name, res.Files.Paths())

	p.files = res.Files
	p.tree = tree
	p.flat = flat
	p.numStaged = res.NumStaged
	p.numModified = res.NumModified
	p.generation++

	p.tree.Dump(p.log)
	return nil
}

// FileState looks up a path seen by the last reconciliation pass.
func (p *Project) FileState(path string) (*state.FileState, bool) {
	fs, ok := p.files[path]
	return fs, ok
}

// StatusEntry resolves a file key of node. Paths the last pass did not
// record get a blank status.
func (p *Project) StatusEntry(node *state.TreeNode, key string) *state.FileState {
	path, ok := node.FilePath(key)
	if !ok {
		path = key
	}
	if fs, ok := p.files[path]; ok {
		return fs
	}
	return state.NewFileState(path, state.RawFacts{})
}

// Files is the status map of the last pass. Callers must not modify it.
func (p *Project) Files() state.StatusMap { return p.files }

func (p *Project) NumStagedFiles() int   { return p.numStaged }
func (p *Project) NumModifiedFiles() int { return p.numModified }

func (p *Project) Tree() *state.TreeNode     { return p.tree }
func (p *Project) FlatTree() *state.TreeNode { return p.flat }

func (p *Project) ReportStagedFiles() []state.ReportEntry {
	return state.ReportStaged(p.files)
}

func (p *Project) ReportUntrackedFiles() []state.ReportEntry {
	return state.ReportUntracked(p.files)
}

func (p *Project) BranchName() (string, error) {
	return p.backend.BranchName()
}

// CanPush reports whether HEAD differs from its tracking branch.
func (p *Project) CanPush() (bool, error) {
	tb, err := p.backend.TrackingBranch()
	if err != nil || tb == nil {
		return false, err
	}
	head, err := p.backend.HeadCommitID()
	if err != nil {
		return false, err
	}
	return head != tb.ID, nil
}

// UnpushedCommits lists the commits from HEAD back to, not including, the
// last known position of the tracking branch.
func (p *Project) UnpushedCommits() ([]scm.CommitInfo, error) {
	tb, err := p.backend.TrackingBranch()
	if err != nil || tb == nil {
		return nil, err
	}
	commits, err := p.backend.Log(scm.LogOptions{})
	if err != nil {
		return nil, err
	}
	var unpushed []scm.CommitInfo
	for _, c := range commits {
		if c.ID == tb.ID {
			break
		}
		unpushed = append(unpushed, c)
	}
	return unpushed, nil
}

func (p *Project) UserSettings(scope scm.SettingsScope) (scm.UserSettings, error) {
	return p.backend.UserSettings(scope)
}

func (p *Project) SetUserSettings(scope scm.SettingsScope, s scm.UserSettings) error {
	return p.backend.SetUserSettings(scope, s)
}
