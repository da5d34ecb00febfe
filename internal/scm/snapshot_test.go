package scm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompareSnapshots(t *testing.T) {
	tests := []struct {
		name  string
		old   Snapshot
		new   Snapshot
		wants ChangeSet
	}{
		{
			name: "rename by content id",
			old:  Snapshot{"a": "id1", "b": "id2"},
			new:  Snapshot{"c": "id1", "b": "id2"},
			wants: ChangeSet{
				Renamed: []Rename{{Path: "c", OldPath: "a"}},
			},
		},
		{
			name:  "modification",
			old:   Snapshot{"a": "id1"},
			new:   Snapshot{"a": "id2"},
			wants: ChangeSet{Modified: []string{"a"}},
		},
		{
			name:  "root commit",
			old:   nil,
			new:   Snapshot{"x/y": "id1", "z": "id2"},
			wants: ChangeSet{Added: []string{"x/y", "z"}},
		},
		{
			name:  "add and delete with different content",
			old:   Snapshot{"a": "id1"},
			new:   Snapshot{"b": "id2"},
			wants: ChangeSet{Added: []string{"b"}, Deleted: []string{"a"}},
		},
		{
			name: "two copies of one deleted blob rename only once",
			old:  Snapshot{"a": "id1"},
			new:  Snapshot{"b": "id1", "c": "id1"},
			wants: ChangeSet{
				Added:   []string{"c"},
				Renamed: []Rename{{Path: "b", OldPath: "a"}},
			},
		},
		{
			name:  "identical",
			old:   Snapshot{"a": "id1"},
			new:   Snapshot{"a": "id1"},
			wants: ChangeSet{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CompareSnapshots(tt.old, tt.new)
			assert.Equal(t, tt.wants, got)
		})
	}
}

func TestChangeSetEmpty(t *testing.T) {
	assert.True(t, ChangeSet{}.Empty())
	assert.False(t, ChangeSet{Modified: []string{"a"}}.Empty())
}
