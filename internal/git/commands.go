package git

import (
	"path"

	"github.com/kurobon/workbench/internal/scm"
	"github.com/kurobon/workbench/internal/state"
)

// Mutating commands below mark the project stale (or dirty for the Index*
// pair) once the backend call succeeded. Callers follow up with SaveChanges.

func (p *Project) CmdStage(filename string) error {
	p.log.Debug().Str("path", filename).Msg("stage")
	if err := p.backend.Add(filename); err != nil {
		return err
	}
	p.staleIndex = true
	return nil
}

// CmdUnstage resets the index entries under filename to rev. An empty rev
// means HEAD.
func (p *Project) CmdUnstage(rev, filename string) error {
	p.log.Debug().Str("rev", rev).Str("path", filename).Msg("unstage")
	if err := p.backend.Unstage(rev, filename); err != nil {
		return err
	}
	p.staleIndex = true
	return nil
}

// CmdRevert restores filename in the working tree and index from rev.
func (p *Project) CmdRevert(rev, filename string) error {
	p.log.Debug().Str("rev", rev).Str("path", filename).Msg("revert")
	if err := p.backend.CheckoutPath(rev, filename); err != nil {
		return err
	}
	p.staleIndex = true
	return nil
}

func (p *Project) CmdDelete(filename string) error {
	p.log.Debug().Str("path", filename).Msg("delete")
	if err := p.backend.RemoveWorkingFile(filename); err != nil {
		return err
	}
	p.staleIndex = true
	return nil
}

// CmdRename moves a controlled file through the backend. Uncontrolled files
// are renamed on disk, and a failure there is only logged.
func (p *Project) CmdRename(filename, newFilename string) error {
	p.log.Debug().Str("from", filename).Str("to", newFilename).Msg("rename")

	if fs, ok := p.FileState(filename); ok && fs.IsControlled() {
		if err := p.backend.Move(filename, newFilename); err != nil {
			return err
		}
	} else if err := p.backend.RenameWorkingFile(filename, newFilename); err != nil {
		p.log.Error().Err(err).Str("from", filename).Str("to", newFilename).Msg("rename failed")
	}

	p.staleIndex = true
	return nil
}

// CmdCommit commits the index and returns the new commit id.
func (p *Project) CmdCommit(message string) (string, error) {
	p.log.Debug().Str("message", message).Msg("commit")
	id, err := p.backend.Commit(message)
	if err != nil {
		return "", err
	}
	p.staleIndex = true
	return id, nil
}

// CmdIndexAdd stages filename in the in-memory index only.
func (p *Project) CmdIndexAdd(filename string) error {
	if err := p.backend.IndexAdd(filename); err != nil {
		return err
	}
	p.dirtyIndex = true
	return nil
}

// CmdIndexRemove drops filename from the in-memory index only.
func (p *Project) CmdIndexRemove(filename string) error {
	if err := p.backend.IndexRemove(filename); err != nil {
		return err
	}
	p.dirtyIndex = true
	return nil
}

// CmdDiscardIndex drops the in-memory index edits made since the last
// SaveChanges.
func (p *Project) CmdDiscardIndex() {
	p.log.Debug().Msg("discard index")
	p.backend.DiscardIndex()
	p.dirtyIndex = false
}

// CmdDiffFolder diffs everything under folder. With staged set the diff is
// HEAD against the index; with only head set it is HEAD against the working
// tree; otherwise the index against the working tree.
func (p *Project) CmdDiffFolder(folder string, head, staged bool) (string, error) {
	switch {
	case staged:
		return p.backend.Diff(scm.Commit("HEAD"), scm.Index, folder)
	case head:
		return p.backend.Diff(scm.Commit("HEAD"), scm.Working, folder)
	default:
		return p.backend.Diff(scm.Index, scm.Working, folder)
	}
}

func (p *Project) CmdDiffWorkingVsCommit(filename, commit string) (string, error) {
	return p.backend.Diff(scm.Commit(commit), scm.Working, filename)
}

func (p *Project) CmdDiffStagedVsCommit(filename, commit string) (string, error) {
	return p.backend.Diff(scm.Commit(commit), scm.Index, filename)
}

func (p *Project) CmdDiffCommitVsCommit(filename, oldCommit, newCommit string) (string, error) {
	return p.backend.Diff(scm.Commit(oldCommit), scm.Commit(newCommit), filename)
}

// CmdShow accepts a revision or "rev:path".
func (p *Project) CmdShow(what string) (string, error) {
	return p.backend.Show(what)
}

// CmdCommitLogForRepository lists the history of the current branch with
// the change set of every commit.
func (p *Project) CmdCommitLogForRepository(progress state.ProgressFunc, opts scm.LogOptions) ([]*state.CommitLogNode, error) {
	p.log.Debug().Int("limit", opts.Limit).Msg("commit log")
	opts.Path = ""
	return state.BuildCommitLog(p.backend, opts, progress)
}

// CmdCommitLogForFile lists the commits that touched filename.
func (p *Project) CmdCommitLogForFile(progress state.ProgressFunc, filename string, opts scm.LogOptions) ([]*state.CommitLogNode, error) {
	p.log.Debug().Str("path", filename).Int("limit", opts.Limit).Msg("file log")
	if progress != nil {
		progress(0, 0)
	}
	opts.Path = path.Clean(filename)
	return state.BuildCommitLog(p.backend, opts, progress)
}
