package state

import (
	"path"
	"sort"

	"github.com/kurobon/workbench/internal/scm"
)

// StatusMap maps repository-relative paths to their status.
type StatusMap map[string]*FileState

// Paths returns the keys in lexical order.
func (m StatusMap) Paths() []string {
	paths := make([]string, 0, len(m))
	for p := range m {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Result is the outcome of one reconciliation pass.
type Result struct {
	Files       StatusMap
	NumStaged   int
	NumModified int
}

// Reconcile builds a complete status map from src.
//
// Every path found by walking the working tree (minus the top-level
// metadata directory), every index entry, every path of the staged and
// unstaged diffs and every untracked path gets exactly one entry. The
// counters go up once per diff record.
func Reconcile(src scm.StatusSource) (*Result, error) {
	if hooks, ok := src.(scm.PassHooks); ok {
		if err := hooks.BeginPass(); err != nil {
			return nil, err
		}
		defer hooks.EndPass()
	}

	facts := make(map[string]*RawFacts)
	ensure := func(p string) *RawFacts {
		f, ok := facts[p]
		if !ok {
			f = &RawFacts{}
			facts[p] = f
		}
		return f
	}

	if err := walk(src, func(p string, isDir bool) {
		ensure(p).IsDir = isDir
	}); err != nil {
		return nil, err
	}

	entries, err := src.IndexEntries()
	if err != nil {
		return nil, err
	}
	staged, err := src.StagedDiff()
	if err != nil {
		return nil, err
	}
	unstaged, err := src.UnstagedDiff()
	if err != nil {
		return nil, err
	}
	untracked, err := src.UntrackedFiles()
	if err != nil {
		return nil, err
	}

	for i := range entries {
		// a path missing from the walk was deleted from disk
		ensure(entries[i].Path).IndexEntry = &entries[i]
	}

	res := &Result{}
	for i := range staged {
		res.NumStaged++
		ensure(staged[i].Key()).Staged = &staged[i]
	}
	for i := range unstaged {
		res.NumModified++
		ensure(unstaged[i].Key()).Unstaged = &unstaged[i]
	}
	for _, p := range untracked {
		ensure(p).Untracked = true
	}

	res.Files = make(StatusMap, len(facts))
	for p, raw := range facts {
		res.Files[p] = NewFileState(p, *raw)
	}
	return res, nil
}

// walk visits the working tree breadth first. Only the metadata directory
// at the root is skipped; a nested directory of the same name is ordinary
// content.
func walk(src scm.StatusSource, visit func(p string, isDir bool)) error {
	meta := src.MetadataDir()
	queue := []string{""}
	for len(queue) > 0 {
		dir := queue[0]
		queue = queue[1:]

		entries, err := src.ReadDir(dir)
		if err != nil {
			return err
		}
		for _, e := range entries {
			p := e.Name
			if dir != "" {
				p = path.Join(dir, e.Name)
			}
			if e.IsDir {
				if dir == "" && e.Name == meta {
					continue
				}
				queue = append(queue, p)
			}
			visit(p, e.IsDir)
		}
	}
	return nil
}
