package gitbackend

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/format/index"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// Add, Unstage, CheckoutPath, Move and Commit work on the storer's index
// and persist pending Index* edits before they run.

func (b *Backend) Add(path string) error {
	if err := b.WriteIndex(); err != nil {
		return err
	}
	if _, err := b.wt.Add(path); err != nil {
		return fmt.Errorf("add %s: %w", path, err)
	}
	return nil
}

// Unstage resets the index entries at or below path to rev, like a mixed
// reset limited to that path. Entries rev does not know are dropped.
func (b *Backend) Unstage(rev, path string) error {
	if err := b.WriteIndex(); err != nil {
		return err
	}
	files, err := b.revisionFiles(rev, path)
	if err != nil {
		return err
	}
	idx, err := b.repo.Storer.Index()
	if err != nil {
		return err
	}
	resetEntries(idx, path, files)
	return b.repo.Storer.SetIndex(idx)
}

// CheckoutPath restores path (a file or folder) in both the index and the
// working tree from rev.
func (b *Backend) CheckoutPath(rev, path string) error {
	if err := b.WriteIndex(); err != nil {
		return err
	}
	files, err := b.revisionFiles(rev, path)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("pathspec '%s' did not match any file(s) known to git", path)
	}

	for _, name := range sortedFileNames(files) {
		f := files[name]
		content, err := f.Contents()
		if err != nil {
			return err
		}
		perm, err := f.Mode.ToOSFileMode()
		if err != nil {
			perm = 0644
		}
		if err := util.WriteFile(b.fs, name, []byte(content), perm.Perm()); err != nil {
			return fmt.Errorf("checkout %s: %w", name, err)
		}
	}

	idx, err := b.repo.Storer.Index()
	if err != nil {
		return err
	}
	// only the checked out paths; index entries rev lacks stay as they are
	for name, f := range files {
		e, err := idx.Entry(name)
		if err != nil {
			e = idx.Add(name)
		}
		setEntry(e, f)
	}
	sortEntries(idx)
	return b.repo.Storer.SetIndex(idx)
}

func (b *Backend) Move(from, to string) error {
	if err := b.WriteIndex(); err != nil {
		return err
	}
	if _, err := b.wt.Move(from, to); err != nil {
		return fmt.Errorf("mv %s %s: %w", from, to, err)
	}
	return nil
}

func (b *Backend) RemoveWorkingFile(path string) error {
	return b.fs.Remove(path)
}

func (b *Backend) RenameWorkingFile(from, to string) error {
	return b.fs.Rename(from, to)
}

func (b *Backend) Commit(message string) (string, error) {
	if err := b.WriteIndex(); err != nil {
		return "", err
	}
	sig, err := b.signature()
	if err != nil {
		return "", err
	}
	h, err := b.wt.Commit(message, &gogit.CommitOptions{
		Author:    sig,
		Committer: sig,
	})
	if err != nil {
		return "", err
	}
	b.log.Debug().Str("commit", h.String()).Msg("committed")
	return h.String(), nil
}

// signature prefers the configured author, then the repository's user
// settings, then a placeholder identity.
func (b *Backend) signature() (*object.Signature, error) {
	sig := &object.Signature{
		Name:  b.author.Name,
		Email: b.author.Email,
		When:  time.Now(),
	}
	if sig.Name == "" || sig.Email == "" {
		cfg, err := b.repo.Config()
		if err != nil {
			return nil, err
		}
		if sig.Name == "" {
			sig.Name = cfg.User.Name
		}
		if sig.Email == "" {
			sig.Email = cfg.User.Email
		}
	}
	if sig.Name == "" {
		sig.Name = "User"
	}
	if sig.Email == "" {
		sig.Email = "user@example.com"
	}
	return sig, nil
}

// IndexAdd stages the working copy of path in the in-memory index only.
func (b *Backend) IndexAdd(path string) error {
	idx, err := b.pendingIndex()
	if err != nil {
		return err
	}

	fi, err := b.fs.Lstat(path)
	if err != nil {
		return err
	}
	content, err := util.ReadFile(b.fs, path)
	if err != nil {
		return err
	}

	obj := b.repo.Storer.NewEncodedObject()
	obj.SetType(plumbing.BlobObject)
	obj.SetSize(int64(len(content)))
	w, err := obj.Writer()
	if err != nil {
		return err
	}
	if _, err := w.Write(content); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	h, err := b.repo.Storer.SetEncodedObject(obj)
	if err != nil {
		return err
	}

	mode, err := filemode.NewFromOSFileMode(fi.Mode())
	if err != nil {
		return err
	}

	e, err := idx.Entry(path)
	if err != nil {
		e = idx.Add(path)
	}
	e.Hash = h
	e.Mode = mode
	e.Size = uint32(len(content))
	e.ModifiedAt = fi.ModTime()
	sortEntries(idx)
	return nil
}

// IndexRemove drops path from the in-memory index only.
func (b *Backend) IndexRemove(path string) error {
	idx, err := b.pendingIndex()
	if err != nil {
		return err
	}
	if _, err := idx.Remove(path); err != nil {
		return fmt.Errorf("index remove %s: %w", path, err)
	}
	return nil
}

// WriteIndex persists the in-memory index. It is a no-op when nothing was
// edited.
func (b *Backend) WriteIndex() error {
	if b.pending == nil {
		return nil
	}
	if err := b.repo.Storer.SetIndex(b.pending); err != nil {
		return err
	}
	b.pending = nil
	return nil
}

// DiscardIndex drops the in-memory index edits without writing them.
func (b *Backend) DiscardIndex() {
	b.pending = nil
}

func (b *Backend) pendingIndex() (*index.Index, error) {
	if b.pending != nil {
		return b.pending, nil
	}
	idx, err := b.repo.Storer.Index()
	if err != nil {
		return nil, err
	}
	b.pending = cloneIndex(idx)
	return b.pending, nil
}

// cloneIndex copies idx so edits do not leak into a storer that hands out
// its own instance.
func cloneIndex(idx *index.Index) *index.Index {
	out := &index.Index{Version: idx.Version}
	if out.Version == 0 {
		out.Version = 2
	}
	for _, e := range idx.Entries {
		c := *e
		out.Entries = append(out.Entries, &c)
	}
	return out
}

// revisionFiles returns the blobs of rev at or below path. An unborn HEAD
// has no files.
func (b *Backend) revisionFiles(rev, path string) (map[string]*object.File, error) {
	if rev == "" || rev == "HEAD" {
		h, err := b.headHash()
		if err != nil {
			return nil, err
		}
		if h.IsZero() {
			return map[string]*object.File{}, nil
		}
	}

	commit, err := b.resolveCommit(rev)
	if err != nil {
		return nil, err
	}
	tree, err := commit.Tree()
	if err != nil {
		return nil, err
	}

	files := make(map[string]*object.File)
	err = tree.Files().ForEach(func(f *object.File) error {
		if matchesPath(f.Name, path) {
			files[f.Name] = f
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func resetEntries(idx *index.Index, path string, files map[string]*object.File) {
	remaining := make(map[string]*object.File, len(files))
	for k, v := range files {
		remaining[k] = v
	}

	entries := make([]*index.Entry, 0, len(idx.Entries))
	for _, e := range idx.Entries {
		if !matchesPath(e.Name, path) {
			entries = append(entries, e)
			continue
		}
		f, ok := remaining[e.Name]
		if !ok {
			continue
		}
		setEntry(e, f)
		delete(remaining, e.Name)
		entries = append(entries, e)
	}
	for _, name := range sortedFileNames(remaining) {
		e := &index.Entry{Name: name}
		setEntry(e, remaining[name])
		entries = append(entries, e)
	}
	idx.Entries = entries
	sortEntries(idx)
}

func setEntry(e *index.Entry, f *object.File) {
	e.Hash = f.Hash
	e.Mode = f.Mode
	e.Size = uint32(f.Size)
}

func matchesPath(name, path string) bool {
	path = strings.TrimSuffix(path, "/")
	if path == "" || path == "." {
		return true
	}
	return name == path || strings.HasPrefix(name, path+"/")
}

func sortedFileNames(files map[string]*object.File) []string {
	names := make([]string, 0, len(files))
	for n := range files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

func sortEntries(idx *index.Index) {
	sort.Slice(idx.Entries, func(i, j int) bool {
		return idx.Entries[i].Name < idx.Entries[j].Name
	})
}
