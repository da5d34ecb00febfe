package state

import (
	"errors"
	"path"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurobon/workbench/internal/scm"
)

// fakeSource serves a fixed working tree and fixed diff facts.
type fakeSource struct {
	files     []string // working tree files, directories are implied
	dirs      []string // extra empty directories
	entries   []scm.IndexEntry
	staged    []scm.DiffRecord
	unstaged  []scm.DiffRecord
	untracked []string

	untrackedCalls int
	passes         int
	open           bool
	failStaged     error
}

func (f *fakeSource) MetadataDir() string { return ".git" }

func (f *fakeSource) ReadDir(dir string) ([]scm.DirEntry, error) {
	seen := make(map[string]bool)
	var out []scm.DirEntry
	add := func(p string, isDir bool) {
		parent := path.Dir(p)
		if parent == "." {
			parent = ""
		}
		if parent != dir || seen[p] {
			return
		}
		seen[p] = true
		out = append(out, scm.DirEntry{Name: path.Base(p), IsDir: isDir})
	}
	for _, p := range append(append([]string{}, f.files...), f.dirs...) {
		parts := strings.Split(p, "/")
		for i := 1; i < len(parts); i++ {
			add(strings.Join(parts[:i], "/"), true)
		}
	}
	for _, d := range f.dirs {
		add(d, true)
	}
	for _, p := range f.files {
		add(p, false)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (f *fakeSource) IndexEntries() ([]scm.IndexEntry, error) { return f.entries, nil }

func (f *fakeSource) StagedDiff() ([]scm.DiffRecord, error) {
	if f.failStaged != nil {
		return nil, f.failStaged
	}
	return f.staged, nil
}

func (f *fakeSource) UnstagedDiff() ([]scm.DiffRecord, error) { return f.unstaged, nil }

func (f *fakeSource) UntrackedFiles() ([]string, error) {
	f.untrackedCalls++
	return f.untracked, nil
}

func (f *fakeSource) BeginPass() error {
	f.passes++
	f.open = true
	return nil
}

func (f *fakeSource) EndPass() { f.open = false }

func sampleSource() *fakeSource {
	return &fakeSource{
		files: []string{
			".git/HEAD",
			"a.txt",
			"src/main.go",
			"src/.git/keep",
			"new.txt",
			"notes.txt",
		},
		dirs: []string{"empty"},
		entries: []scm.IndexEntry{
			{Path: "a.txt", ID: "a1"},
			{Path: "src/main.go", ID: "m1"},
			{Path: "gone.txt", ID: "g1"},
			{Path: "new.txt", ID: "n1"},
		},
		staged: []scm.DiffRecord{
			{APath: "new.txt", AID: "n1", DeletedFile: true},
			{APath: "src/main.go", BPath: "src/main.go", AID: "m1", BID: "m0"},
			{BPath: "removed.txt", BID: "r0", NewFile: true},
		},
		unstaged: []scm.DiffRecord{
			{APath: "a.txt", BPath: "a.txt", AID: "a1"},
			{APath: "gone.txt", AID: "g1", DeletedFile: true},
		},
		untracked: []string{"notes.txt"},
	}
}

func TestReconcileCoverage(t *testing.T) {
	src := sampleSource()
	res, err := Reconcile(src)
	require.NoError(t, err)

	assert.Equal(t, []string{
		"a.txt",
		"empty",
		"gone.txt",
		"new.txt",
		"notes.txt",
		"removed.txt",
		"src",
		"src/.git",
		"src/.git/keep",
		"src/main.go",
	}, res.Files.Paths())

	assert.Equal(t, 3, res.NumStaged)
	assert.Equal(t, 2, res.NumModified)

	assert.True(t, res.Files["src"].IsDir())
	assert.True(t, res.Files["empty"].IsDir())
	assert.False(t, res.Files["a.txt"].IsDir())

	assert.True(t, res.Files["new.txt"].IsStagedNew())
	assert.True(t, res.Files["removed.txt"].IsStagedDeleted())
	assert.True(t, res.Files["src/main.go"].IsStagedModified())
	assert.True(t, res.Files["a.txt"].IsUnstagedModified())
	assert.True(t, res.Files["gone.txt"].IsUnstagedDeleted())
	assert.True(t, res.Files["gone.txt"].IsControlled())
	assert.True(t, res.Files["notes.txt"].IsUncontrolled())
	assert.True(t, res.Files["src/.git/keep"].IsIgnored())
}

func TestReconcileUsesPassHooks(t *testing.T) {
	src := sampleSource()
	_, err := Reconcile(src)
	require.NoError(t, err)

	assert.Equal(t, 1, src.passes)
	assert.Equal(t, 1, src.untrackedCalls)
	assert.False(t, src.open)
}

func TestReconcileIdempotent(t *testing.T) {
	src := sampleSource()
	first, err := Reconcile(src)
	require.NoError(t, err)
	second, err := Reconcile(src)
	require.NoError(t, err)

	require.Equal(t, first.Files.Paths(), second.Files.Paths())
	for p, fs := range first.Files {
		assert.Equal(t, fs.Derived(), second.Files[p].Derived(), p)
	}
}

func TestReconcileCountsEveryRecord(t *testing.T) {
	// the same path in both diffs counts once in each
	src := &fakeSource{
		files:    []string{"a.txt"},
		entries:  []scm.IndexEntry{{Path: "a.txt"}},
		staged:   []scm.DiffRecord{{APath: "a.txt", BPath: "a.txt"}},
		unstaged: []scm.DiffRecord{{APath: "a.txt", BPath: "a.txt"}},
	}
	res, err := Reconcile(src)
	require.NoError(t, err)
	assert.Len(t, res.Files, 1)
	assert.Equal(t, 1, res.NumStaged)
	assert.Equal(t, 1, res.NumModified)
}

func TestReconcileError(t *testing.T) {
	boom := errors.New("boom")
	src := sampleSource()
	src.failStaged = boom

	res, err := Reconcile(src)
	assert.ErrorIs(t, err, boom)
	assert.Nil(t, res)
	assert.False(t, src.open)
}
