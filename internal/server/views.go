package server

import (
	"errors"
	"time"

	"github.com/kurobon/workbench/internal/git"
	"github.com/kurobon/workbench/internal/scm"
	"github.com/kurobon/workbench/internal/state"
)

type FileView struct {
	Path     string `json:"path"`
	Staged   string `json:"staged"`
	Unstaged string `json:"unstaged"`
	IsDir    bool   `json:"isDir,omitempty"`
	Tracked  bool   `json:"tracked"`
	Renamed  string `json:"renamedFrom,omitempty"`
}

type StateView struct {
	Project     string     `json:"project"`
	SCM         string     `json:"scm"`
	Branch      string     `json:"branch"`
	Detached    bool       `json:"detached,omitempty"`
	Lifecycle   string     `json:"lifecycle"`
	Generation  int        `json:"generation"`
	NumStaged   int        `json:"numStaged"`
	NumModified int        `json:"numModified"`
	CanPush     bool       `json:"canPush"`
	Files       []FileView `json:"files"`
}

type TreeView struct {
	Name    string      `json:"name"`
	Path    string      `json:"path"`
	Folders []*TreeView `json:"folders"`
	Files   []FileView  `json:"files"`
}

type ReportView struct {
	Label   string `json:"label"`
	Path    string `json:"path"`
	OldPath string `json:"oldPath,omitempty"`
}

type ChangeView struct {
	Kind    string `json:"kind"`
	Path    string `json:"path"`
	OldPath string `json:"oldPath,omitempty"`
}

type CommitView struct {
	ID      string       `json:"id"`
	Author  string       `json:"author"`
	Email   string       `json:"email"`
	Date    time.Time    `json:"date"`
	Message string       `json:"message"`
	Changes []ChangeView `json:"changes"`
}

func fileView(fs *state.FileState) FileView {
	return FileView{
		Path:     fs.Path(),
		Staged:   fs.StagedAbbrev(),
		Unstaged: fs.UnstagedAbbrev(),
		IsDir:    fs.IsDir(),
		Tracked:  fs.IsControlled(),
		Renamed:  fs.RenamedFrom(),
	}
}

func buildStateView(p *git.Project) StateView {
	v := StateView{
		Project:     p.Name(),
		SCM:         p.SCMKind(),
		Lifecycle:   p.State().String(),
		Generation:  p.Generation(),
		NumStaged:   p.NumStagedFiles(),
		NumModified: p.NumModifiedFiles(),
		Files:       []FileView{},
	}

	branch, err := p.BranchName()
	if errors.Is(err, scm.ErrDetachedHead) {
		v.Detached = true
	}
	v.Branch = branch
	v.CanPush, _ = p.CanPush()

	files := p.Files()
	for _, path := range files.Paths() {
		v.Files = append(v.Files, fileView(files[path]))
	}
	return v
}

func buildTreeView(p *git.Project, node *state.TreeNode) *TreeView {
	v := &TreeView{
		Name:    node.Name,
		Path:    node.RelativePath,
		Folders: []*TreeView{},
		Files:   []FileView{},
	}
	for _, child := range node.Folders() {
		v.Folders = append(v.Folders, buildTreeView(p, child))
	}
	for _, key := range node.FileNames() {
		v.Files = append(v.Files, fileView(p.StatusEntry(node, key)))
	}
	return v
}

func buildReportView(entries []state.ReportEntry) []ReportView {
	out := make([]ReportView, 0, len(entries))
	for _, e := range entries {
		out = append(out, ReportView{Label: e.Label, Path: e.Path, OldPath: e.OldPath})
	}
	return out
}

func buildLogView(nodes []*state.CommitLogNode) []CommitView {
	out := make([]CommitView, 0, len(nodes))
	for _, n := range nodes {
		cv := CommitView{
			ID:      n.ID(),
			Author:  n.Author(),
			Email:   n.AuthorEmail(),
			Date:    n.Date(),
			Message: n.Message(),
			Changes: []ChangeView{},
		}
		changes, _ := n.Changes()
		for _, c := range changes {
			cv.Changes = append(cv.Changes, ChangeView{Kind: string(c.Kind), Path: c.Path, OldPath: c.OldPath})
		}
		out = append(out, cv)
	}
	return out
}
