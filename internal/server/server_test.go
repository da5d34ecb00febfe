package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"
	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/storage/memory"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurobon/workbench/internal/git"
	_ "github.com/kurobon/workbench/internal/git/commands"
	"github.com/kurobon/workbench/internal/scm"
	"github.com/kurobon/workbench/internal/scm/gitbackend"
	"github.com/kurobon/workbench/internal/state"
)

type fixture struct {
	t   *testing.T
	srv *Server
	ts  *httptest.Server
	wt  *gogit.Worktree
	fs  billy.Filesystem
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo, err := gogit.Init(memory.NewStorage(), memfs.New())
	require.NoError(t, err)
	wt, err := repo.Worktree()
	require.NoError(t, err)
	b, err := gitbackend.New(repo, scm.OpenOptions{
		Logger: zerolog.Nop(),
		Author: scm.Signature{Name: "Dev", Email: "dev@example.com"},
	})
	require.NoError(t, err)

	f := &fixture{t: t, wt: wt, fs: wt.Filesystem}
	f.write("a.txt", "a\n")
	_, err = wt.Add("a.txt")
	require.NoError(t, err)
	sig := &object.Signature{Name: "Dev", Email: "dev@example.com", When: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)}
	_, err = wt.Commit("init", &gogit.CommitOptions{Author: sig, Committer: sig})
	require.NoError(t, err)

	f.srv = NewServer(git.New("proj", b, zerolog.Nop()), zerolog.Nop())
	f.ts = httptest.NewServer(f.srv)
	t.Cleanup(f.ts.Close)
	return f
}

func (f *fixture) write(path, content string) {
	f.t.Helper()
	require.NoError(f.t, util.WriteFile(f.fs, path, []byte(content), 0644))
}

func (f *fixture) get(path string, out any) *http.Response {
	f.t.Helper()
	resp, err := f.ts.Client().Get(f.ts.URL + path)
	require.NoError(f.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(f.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (f *fixture) post(path string, body any, out any) *http.Response {
	f.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(f.t, json.NewEncoder(&buf).Encode(body))
	}
	resp, err := f.ts.Client().Post(f.ts.URL+path, "application/json", &buf)
	require.NoError(f.t, err)
	defer resp.Body.Close()
	if out != nil {
		require.NoError(f.t, json.NewDecoder(resp.Body).Decode(out))
	}
	return resp
}

func (f *fixture) command(line string) map[string]string {
	f.t.Helper()
	var res map[string]string
	resp := f.post("/api/command", CommandRequest{Command: line}, &res)
	require.Equal(f.t, http.StatusOK, resp.StatusCode)
	return res
}

func TestPing(t *testing.T) {
	f := newFixture(t)

	var res map[string]string
	resp := f.get("/ping", &res)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "pong", res["message"])

	_, err := uuid.Parse(resp.Header.Get("X-Request-ID"))
	assert.NoError(t, err)
}

func TestRequestIDIsEchoed(t *testing.T) {
	f := newFixture(t)

	req, err := http.NewRequest(http.MethodGet, f.ts.URL+"/ping", nil)
	require.NoError(t, err)
	req.Header.Set("X-Request-ID", "abc-123")
	resp, err := f.ts.Client().Do(req)
	require.NoError(t, err)
	resp.Body.Close()

	assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
}

func TestStateAndRefresh(t *testing.T) {
	f := newFixture(t)

	var before StateView
	f.get("/api/state", &before)
	assert.Equal(t, "clean", before.Lifecycle)
	assert.Equal(t, 0, before.Generation)
	assert.Empty(t, before.Files)

	f.write("a.txt", "changed\n")
	f.write("new.txt", "n\n")

	var after StateView
	resp := f.post("/api/refresh", nil, &after)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	assert.Equal(t, "proj", after.Project)
	assert.Equal(t, "git", after.SCM)
	assert.Equal(t, "master", after.Branch)
	assert.Equal(t, 1, after.Generation)
	assert.Equal(t, 0, after.NumStaged)
	assert.False(t, after.CanPush)

	byPath := map[string]FileView{}
	for _, fv := range after.Files {
		byPath[fv.Path] = fv
	}
	require.Contains(t, byPath, "a.txt")
	assert.Equal(t, "M", byPath["a.txt"].Unstaged)
	assert.True(t, byPath["a.txt"].Tracked)
	require.Contains(t, byPath, "new.txt")
	assert.False(t, byPath["new.txt"].Tracked)
}

func TestCommandFlow(t *testing.T) {
	f := newFixture(t)
	f.write("new.txt", "n\n")

	res := f.command("git add new.txt")
	assert.Equal(t, "Added new.txt", res["output"])
	assert.Empty(t, res["error"])

	var staged []ReportView
	f.get("/api/report/staged", &staged)
	require.Len(t, staged, 1)
	assert.Equal(t, state.LabelNewFile, staged[0].Label)
	assert.Equal(t, "new.txt", staged[0].Path)

	res = f.command("git commit -m second")
	assert.Contains(t, res["output"], "second")

	var commits []CommitView
	f.get("/api/log", &commits)
	require.Len(t, commits, 2)
	assert.Equal(t, "second", commits[0].Message)
	require.Len(t, commits[0].Changes, 1)
	assert.Equal(t, "A", commits[0].Changes[0].Kind)
	assert.Equal(t, "new.txt", commits[0].Changes[0].Path)
}

func TestCommandErrors(t *testing.T) {
	f := newFixture(t)

	res := f.command("git frobnicate")
	assert.NotEmpty(t, res["error"])

	res = f.command("   ")
	assert.Equal(t, "", res["output"])

	resp := f.post("/api/command", nil, nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMethodNotAllowed(t *testing.T) {
	f := newFixture(t)

	resp := f.get("/api/command", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestTree(t *testing.T) {
	f := newFixture(t)
	f.write("dir/b.txt", "b\n")
	f.post("/api/refresh", nil, nil)

	var tree TreeView
	f.get("/api/tree", &tree)
	assert.Equal(t, "proj", tree.Name)
	require.Len(t, tree.Folders, 1)
	assert.Equal(t, "dir", tree.Folders[0].Name)
	require.Len(t, tree.Folders[0].Files, 1)
	assert.Equal(t, "dir/b.txt", tree.Folders[0].Files[0].Path)

	var flat TreeView
	f.get("/api/tree?flat=true", &flat)
	var paths []string
	for _, fv := range flat.Files {
		paths = append(paths, fv.Path)
	}
	assert.Contains(t, paths, "a.txt")
	assert.Contains(t, paths, "dir/b.txt")
}

func TestUntrackedReport(t *testing.T) {
	f := newFixture(t)
	f.write("new.txt", "n\n")
	f.srv.FilesChanged([]string{"new.txt"})

	var report []ReportView
	f.get("/api/report/untracked", &report)
	require.Len(t, report, 1)
	assert.Equal(t, "new.txt", report[0].Path)
}

func TestLogParameters(t *testing.T) {
	f := newFixture(t)

	resp := f.get("/api/log?limit=abc", nil)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var commits []CommitView
	f.get("/api/log?limit=1&path=a.txt", &commits)
	require.Len(t, commits, 1)
	assert.Equal(t, "init", commits[0].Message)
}

func TestRecoverPrecondition(t *testing.T) {
	srv := NewServer(nil, zerolog.Nop())
	h := srv.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic(&git.PreconditionError{Op: "SaveChanges", Msg: "nothing was changed"})
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/refresh", nil))
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "nothing was changed")

	h = srv.recoverPanic(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
