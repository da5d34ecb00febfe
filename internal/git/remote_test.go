package git

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurobon/workbench/internal/scm"
	"github.com/kurobon/workbench/internal/scm/gitbackend"
)

var errHungUp = errors.New("remote end hung up unexpectedly")

// failingTransport writes canned sideband text, then fails.
type failingTransport struct {
	*gitbackend.Backend
	output string
	calls  int
}

func (f *failingTransport) Pull(ctx context.Context, progress io.Writer) ([]scm.RefUpdate, error) {
	return f.fail(progress)
}

func (f *failingTransport) Push(ctx context.Context, progress io.Writer) ([]scm.RefUpdate, error) {
	return f.fail(progress)
}

func (f *failingTransport) fail(progress io.Writer) ([]scm.RefUpdate, error) {
	f.calls++
	_, _ = io.WriteString(progress, f.output)
	return nil, errHungUp
}

func errorLogLines(logs *bytes.Buffer) []string {
	var out []string
	for _, line := range strings.Split(logs.String(), "\n") {
		if strings.Contains(line, `"level":"error"`) {
			out = append(out, line)
		}
	}
	return out
}

func commitOnDisk(t *testing.T, repo *gogit.Repository, root, name, content, msg string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0644))
	w, err := repo.Worktree()
	require.NoError(t, err)
	_, err = w.Add(name)
	require.NoError(t, err)
	h, err := w.Commit(msg, &gogit.CommitOptions{
		Author: &object.Signature{Name: "Dev", Email: "dev@example.com", When: time.Now()},
	})
	require.NoError(t, err)
	return h.String()
}

// newClonedProject clones a fresh bare remote and opens a project on the
// clone.
func newClonedProject(t *testing.T) (p *Project, workDir, remoteDir string, logs *bytes.Buffer) {
	t.Helper()
	base := t.TempDir()
	remoteDir = filepath.Join(base, "remote.git")
	seedDir := filepath.Join(base, "seed")
	workDir = filepath.Join(base, "work")

	_, err := gogit.PlainInit(remoteDir, true)
	require.NoError(t, err)
	seed, err := gogit.PlainInit(seedDir, false)
	require.NoError(t, err)
	commitOnDisk(t, seed, seedDir, "README.md", "# seed\n", "seed")
	_, err = seed.CreateRemote(&config.RemoteConfig{Name: "origin", URLs: []string{remoteDir}})
	require.NoError(t, err)
	require.NoError(t, seed.Push(&gogit.PushOptions{RemoteName: "origin"}))

	_, err = gogit.PlainClone(workDir, false, &gogit.CloneOptions{URL: remoteDir})
	require.NoError(t, err)

	logs = &bytes.Buffer{}
	log := zerolog.New(logs).Level(zerolog.DebugLevel)
	b, err := gitbackend.Open(workDir, scm.OpenOptions{
		Logger: log,
		Author: scm.Signature{Name: "Dev", Email: "dev@example.com"},
	})
	require.NoError(t, err)
	p = New("proj", b, log)
	require.NoError(t, p.UpdateState())
	return p, workDir, remoteDir, logs
}

func TestCmdPushAndPull(t *testing.T) {
	p, workDir, remoteDir, logs := newClonedProject(t)

	require.NoError(t, os.WriteFile(filepath.Join(workDir, "a.txt"), []byte("a\n"), 0644))
	require.NoError(t, p.CmdStage("a.txt"))
	head, err := p.CmdCommit("local change")
	require.NoError(t, err)
	require.NoError(t, p.SaveChanges())

	ok, err := p.CanPush()
	require.NoError(t, err)
	assert.True(t, ok)

	var updates []scm.RefUpdate
	collect := func(u scm.RefUpdate) { updates = append(updates, u) }

	require.NoError(t, p.CmdPush(t.Context(), nil, collect))
	assert.Equal(t, Stale, p.State())
	require.Len(t, updates, 1)
	assert.Equal(t, head, updates[0].NewID)
	assert.Contains(t, logs.String(), "ref updated")
	assert.Empty(t, errorLogLines(logs))

	require.NoError(t, p.SaveChanges())
	ok, err = p.CanPush()
	require.NoError(t, err)
	assert.False(t, ok)

	// another clone pushes, then pull it in
	otherDir := filepath.Join(t.TempDir(), "other")
	other, err := gogit.PlainClone(otherDir, false, &gogit.CloneOptions{URL: remoteDir})
	require.NoError(t, err)
	theirs := commitOnDisk(t, other, otherDir, "b.txt", "b\n", "their change")
	require.NoError(t, other.Push(&gogit.PushOptions{RemoteName: "origin"}))

	updates = nil
	require.NoError(t, p.CmdPull(t.Context(), nil, collect))
	assert.Equal(t, Stale, p.State())
	require.Len(t, updates, 1)
	assert.Equal(t, theirs, updates[0].NewID)

	require.NoError(t, p.SaveChanges())
	b, ok := p.FileState("b.txt")
	require.True(t, ok)
	assert.True(t, b.IsControlled())
	assert.Empty(t, b.UnstagedAbbrev())
	assert.Empty(t, errorLogLines(logs))
}

func TestCmdPushFailure(t *testing.T) {
	p := newTestProject(t)
	p.commit("init", map[string]string{"a.txt": "a\n"})

	transport := &failingTransport{
		Backend: p.backend.Backend,
		output:  "Counting objects: 3, done.\nfatal: could not read from remote repository\rfatal: the remote end hung up",
	}
	proj := New("proj", transport, zerolog.New(p.logs))

	var events []scm.ProgressEvent
	progress := func(ev scm.ProgressEvent) { events = append(events, ev) }
	infoCalls := 0
	info := func(scm.RefUpdate) { infoCalls++ }

	err := proj.CmdPush(t.Context(), progress, info)
	require.Error(t, err)
	assert.ErrorIs(t, err, errHungUp)
	assert.True(t, strings.HasPrefix(err.Error(), "push: "))

	assert.Equal(t, Clean, proj.State())
	assert.Zero(t, infoCalls)
	require.Len(t, events, 1)
	assert.Equal(t, scm.StageCounting, events[0].Stage)

	lines := errorLogLines(p.logs)
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "fatal: could not read from remote repository")
	assert.Contains(t, lines[1], "fatal: the remote end hung up")
	assert.Contains(t, lines[0], `"op":"push"`)

	p.logs.Reset()
	err = proj.CmdPull(t.Context(), nil, info)
	assert.ErrorIs(t, err, errHungUp)
	assert.True(t, strings.HasPrefix(err.Error(), "pull: "))
	assert.Equal(t, Clean, proj.State())
	assert.Len(t, errorLogLines(p.logs), 2)
	assert.Equal(t, 2, transport.calls)
}
