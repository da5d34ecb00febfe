package state

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurobon/workbench/internal/scm"
)

type fakeHistory struct {
	commits []scm.CommitInfo // newest first
	trees   map[string]scm.Snapshot
	lastOpt scm.LogOptions
}

func (h *fakeHistory) Log(opts scm.LogOptions) ([]scm.CommitInfo, error) {
	h.lastOpt = opts
	if opts.Limit > 0 && opts.Limit < len(h.commits) {
		return h.commits[:opts.Limit], nil
	}
	return h.commits, nil
}

func (h *fakeHistory) CommitFiles(id string) (scm.Snapshot, error) {
	s, ok := h.trees[id]
	if !ok {
		return nil, errors.New("no such commit " + id)
	}
	return s, nil
}

func sampleHistory() *fakeHistory {
	when := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	return &fakeHistory{
		commits: []scm.CommitInfo{
			{ID: "c3", AuthorName: "Ann", AuthorEmail: "ann@example.com", When: when.Add(2 * time.Hour), Message: "rename", ParentIDs: []string{"c2"}},
			{ID: "c2", AuthorName: "Ann", When: when.Add(time.Hour), Message: "edit", ParentIDs: []string{"c1"}},
			{ID: "c1", AuthorName: "Bob", When: when, Message: "root"},
		},
		trees: map[string]scm.Snapshot{
			"c1": {"a": "id1", "b": "id2"},
			"c2": {"a": "id1", "b": "id3", "d": "id4"},
			"c3": {"c": "id1", "b": "id3"},
		},
	}
}

func TestBuildCommitLog(t *testing.T) {
	h := sampleHistory()

	type call struct{ done, total int }
	var calls []call
	nodes, err := BuildCommitLog(h, scm.LogOptions{}, func(done, total int) {
		calls = append(calls, call{done, total})
	})
	require.NoError(t, err)
	require.Len(t, nodes, 3)

	assert.Equal(t, []call{{0, 3}, {0, 3}, {1, 3}, {2, 3}, {3, 3}}, calls)

	assert.Equal(t, "c3", nodes[0].ID())
	assert.Equal(t, "Ann", nodes[0].Author())
	assert.Equal(t, "ann@example.com", nodes[0].AuthorEmail())
	assert.Equal(t, "rename", nodes[0].Message())

	changes, ok := nodes[0].Changes()
	require.True(t, ok)
	assert.Equal(t, []Change{
		{Kind: ChangeDeleted, Path: "d"},
		{Kind: ChangeRenamed, Path: "c", OldPath: "a"},
	}, changes)

	changes, ok = nodes[1].Changes()
	require.True(t, ok)
	assert.Equal(t, []Change{
		{Kind: ChangeAdded, Path: "d"},
		{Kind: ChangeModified, Path: "b"},
	}, changes)

	// root commit: additions only
	changes, ok = nodes[2].Changes()
	require.True(t, ok)
	assert.Equal(t, []Change{
		{Kind: ChangeAdded, Path: "a"},
		{Kind: ChangeAdded, Path: "b"},
	}, changes)
}

func TestBuildCommitLogPassesOptions(t *testing.T) {
	h := sampleHistory()
	since := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	nodes, err := BuildCommitLog(h, scm.LogOptions{Limit: 1, Path: "b", Since: &since}, nil)
	require.NoError(t, err)
	require.Len(t, nodes, 1)
	assert.Equal(t, 1, h.lastOpt.Limit)
	assert.Equal(t, "b", h.lastOpt.Path)
	assert.Equal(t, &since, h.lastOpt.Since)
	assert.Nil(t, h.lastOpt.Until)
}

func TestBuildCommitLogError(t *testing.T) {
	h := sampleHistory()
	delete(h.trees, "c1")

	_, err := BuildCommitLog(h, scm.LogOptions{}, nil)
	assert.Error(t, err)
}

func TestCommitLogNodeUnfilled(t *testing.T) {
	n := &CommitLogNode{commit: scm.CommitInfo{ID: "x"}}
	changes, ok := n.Changes()
	assert.False(t, ok)
	assert.Empty(t, changes)
}
