package gitbackend

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"

	"github.com/go-git/go-billy/v5/util"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	fdiff "github.com/go-git/go-git/v5/plumbing/format/diff"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/utils/binary"
	"github.com/go-git/go-git/v5/utils/diff"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/kurobon/workbench/internal/scm"
)

// sideFile is one path on one side of a diff.
type sideFile struct {
	path    string
	hash    plumbing.Hash
	mode    filemode.FileMode
	content func() ([]byte, error)
}

func (f *sideFile) Hash() plumbing.Hash     { return f.hash }
func (f *sideFile) Mode() filemode.FileMode { return f.mode }
func (f *sideFile) Path() string            { return f.path }

type chunk struct {
	content string
	op      fdiff.Operation
}

func (c chunk) Content() string       { return c.content }
func (c chunk) Type() fdiff.Operation { return c.op }

type filePatch struct {
	from, to *sideFile
	binary   bool
	chunks   []fdiff.Chunk
}

func (p *filePatch) IsBinary() bool { return p.binary }

func (p *filePatch) Files() (fdiff.File, fdiff.File) {
	// typed nils must not leak into the interfaces
	var from, to fdiff.File
	if p.from != nil {
		from = p.from
	}
	if p.to != nil {
		to = p.to
	}
	return from, to
}

func (p *filePatch) Chunks() []fdiff.Chunk { return p.chunks }

type patch struct {
	files []fdiff.FilePatch
}

func (p *patch) FilePatches() []fdiff.FilePatch { return p.files }
func (p *patch) Message() string                { return "" }

// Diff renders a unified diff from one side to the other, limited to path
// (a file or a folder; "" means the whole tree).
func (b *Backend) Diff(from, to scm.DiffSide, path string) (string, error) {
	a, err := b.sideFiles(from, path)
	if err != nil {
		return "", err
	}
	z, err := b.sideFiles(to, path)
	if err != nil {
		return "", err
	}

	names := make(map[string]bool, len(a)+len(z))
	for n := range a {
		names[n] = true
	}
	for n := range z {
		names[n] = true
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	p := &patch{}
	for _, name := range sorted {
		fp, err := filePatchFor(a[name], z[name])
		if err != nil {
			return "", err
		}
		if fp != nil {
			p.files = append(p.files, fp)
		}
	}

	var buf bytes.Buffer
	if err := fdiff.NewUnifiedEncoder(&buf, fdiff.DefaultContextLines).Encode(p); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func filePatchFor(from, to *sideFile) (*filePatch, error) {
	if from != nil && to != nil && from.hash == to.hash && from.mode == to.mode {
		return nil, nil
	}

	var src, dst []byte
	var err error
	if from != nil {
		if src, err = from.content(); err != nil {
			return nil, err
		}
	}
	if to != nil {
		if dst, err = to.content(); err != nil {
			return nil, err
		}
	}

	fp := &filePatch{from: from, to: to}
	if isBinary(src) || isBinary(dst) {
		fp.binary = true
		return fp, nil
	}

	for _, d := range diff.Do(string(src), string(dst)) {
		var op fdiff.Operation
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			op = fdiff.Add
		case diffmatchpatch.DiffDelete:
			op = fdiff.Delete
		default:
			op = fdiff.Equal
		}
		fp.chunks = append(fp.chunks, chunk{content: d.Text, op: op})
	}
	return fp, nil
}

func isBinary(content []byte) bool {
	if len(content) == 0 {
		return false
	}
	ok, err := binary.IsBinary(bytes.NewReader(content))
	return err == nil && ok
}

func (b *Backend) sideFiles(side scm.DiffSide, path string) (map[string]*sideFile, error) {
	switch side.Kind {
	case scm.SideCommit:
		files, err := b.revisionFiles(side.Rev, path)
		if err != nil {
			return nil, err
		}
		out := make(map[string]*sideFile, len(files))
		for name, f := range files {
			out[name] = &sideFile{
				path: name,
				hash: f.Hash,
				mode: f.Mode,
				content: func() ([]byte, error) {
					s, err := f.Contents()
					return []byte(s), err
				},
			}
		}
		return out, nil

	case scm.SideIndex:
		idx, err := b.index()
		if err != nil {
			return nil, err
		}
		out := make(map[string]*sideFile)
		for _, e := range idx.Entries {
			if !matchesPath(e.Name, path) {
				continue
			}
			id := e.Hash.String()
			out[e.Name] = &sideFile{
				path:    e.Name,
				hash:    e.Hash,
				mode:    e.Mode,
				content: func() ([]byte, error) { return b.ReadBlob(id) },
			}
		}
		return out, nil

	case scm.SideWorking:
		return b.workingFiles(path)
	}
	return nil, fmt.Errorf("unknown diff side %d", side.Kind)
}

// workingFiles covers the tracked paths only; untracked files never show
// up in a diff.
func (b *Backend) workingFiles(path string) (map[string]*sideFile, error) {
	idx, err := b.index()
	if err != nil {
		return nil, err
	}
	out := make(map[string]*sideFile)
	for _, e := range idx.Entries {
		if !matchesPath(e.Name, path) {
			continue
		}
		fi, err := b.fs.Lstat(e.Name)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return nil, err
		}
		content, err := util.ReadFile(b.fs, e.Name)
		if err != nil {
			return nil, err
		}
		mode, err := filemode.NewFromOSFileMode(fi.Mode())
		if err != nil {
			mode = e.Mode
		}
		out[e.Name] = &sideFile{
			path:    e.Name,
			hash:    plumbing.ComputeHash(plumbing.BlobObject, content),
			mode:    mode,
			content: func() ([]byte, error) { return content, nil },
		}
	}
	return out, nil
}

// Show renders "rev:path" as the file content at rev, anything else as the
// commit header followed by its patch against the first parent.
func (b *Backend) Show(what string) (string, error) {
	if rev, path, ok := strings.Cut(what, ":"); ok {
		content, err := b.ReadAtRevision(rev, path)
		if err != nil {
			return "", err
		}
		return string(content), nil
	}

	commit, err := b.resolveCommit(what)
	if err != nil {
		return "", err
	}
	tree, err := commit.Tree()
	if err != nil {
		return "", err
	}

	var parentTree *object.Tree
	if commit.NumParents() > 0 {
		parent, err := commit.Parent(0)
		if err != nil {
			return "", err
		}
		if parentTree, err = parent.Tree(); err != nil {
			return "", err
		}
	}

	changes, err := object.DiffTree(parentTree, tree)
	if err != nil {
		return "", err
	}
	p, err := changes.Patch()
	if err != nil {
		return "", err
	}
	return commit.String() + "\n" + p.String(), nil
}
