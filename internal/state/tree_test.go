package state

import (
	"bytes"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProjectTree(t *testing.T) {
	orders := map[string][]string{
		"deep first":    {"x/y/z", "x/w"},
		"shallow first": {"x/w", "x/y/z"},
	}

	for name, paths := range orders {
		t.Run(name, func(t *testing.T) {
			tree, flat := ProjectTree("proj", paths)

			assert.Equal(t, "proj", tree.Name)
			assert.Equal(t, []string{"x"}, tree.FolderNames())
			assert.Empty(t, tree.FileNames())

			x, ok := tree.Folder("x")
			require.True(t, ok)
			assert.Equal(t, "x", x.RelativePath)
			assert.Equal(t, []string{"y"}, x.FolderNames())
			assert.Equal(t, []string{"w"}, x.FileNames())

			y, ok := x.Folder("y")
			require.True(t, ok)
			assert.Equal(t, "x/y", y.RelativePath)
			assert.Equal(t, []string{"z"}, y.FileNames())
			p, ok := y.FilePath("z")
			require.True(t, ok)
			assert.Equal(t, "x/y/z", p)

			assert.True(t, flat.IsByPath())
			assert.False(t, tree.IsByPath())
			assert.Equal(t, []string{"x/w", "x/y/z"}, flat.FileNames())
			assert.Empty(t, flat.FolderNames())
		})
	}
}

func TestProjectTreeWithDirectories(t *testing.T) {
	// directories from the walk are listed as entries too
	tree, flat := ProjectTree("proj", []string{"src", "src/a.go", "b.txt"})

	assert.Equal(t, []string{"b.txt", "src"}, tree.FileNames())
	assert.True(t, tree.HasFolder("src"))
	assert.Len(t, flat.FileNames(), 3)

	folders := tree.Folders()
	require.Len(t, folders, 1)
	assert.Equal(t, []string{"a.go"}, folders[0].FileNames())
}

func TestTreeNodeAddressingIsFixed(t *testing.T) {
	n := NewTreeNode("root", "")
	n.AddFileByName("a/b")
	assert.Panics(t, func() { n.AddFileByPath("a/c") })

	m := NewTreeNode("root", "")
	m.AddFileByPath("a/b")
	assert.Panics(t, func() { m.AddFileByName("a/c") })

	assert.Panics(t, func() { NewTreeNode("root", "").AddFileByPath("") })
}

func TestTreeNodeAddFolderReuses(t *testing.T) {
	n := NewTreeNode("root", "")
	a := n.AddFolder("a")
	assert.Same(t, a, n.AddFolder("a"))
	assert.Equal(t, "a/b", a.AddFolder("b").RelativePath)

	_, ok := n.Folder("missing")
	assert.False(t, ok)
}

func TestTreeDump(t *testing.T) {
	tree, _ := ProjectTree("proj", []string{"x/y", "z"})

	var buf bytes.Buffer
	tree.Dump(zerolog.New(&buf).Level(zerolog.DebugLevel))
	assert.Contains(t, buf.String(), "file: x/y")
	assert.Contains(t, buf.String(), "file: z")

	buf.Reset()
	tree.Dump(zerolog.New(&buf).Level(zerolog.InfoLevel))
	assert.Empty(t, buf.String())
}
