package state

import (
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/rs/zerolog"
)

type addressMode int

const (
	addressUnset addressMode = iota
	addressByName
	addressByPath
)

// TreeNode is a folder of the project tree. Its files are keyed either by
// bare name (hierarchical view) or by full relative path (flat view); the
// first file added fixes which.
type TreeNode struct {
	Name         string
	RelativePath string // "" for the root

	folders map[string]*TreeNode
	files   map[string]string // key -> relative path
	mode    addressMode
}

// NewTreeNode returns an empty folder.
func NewTreeNode(name, relativePath string) *TreeNode {
	return &TreeNode{
		Name:         name,
		RelativePath: relativePath,
		folders:      make(map[string]*TreeNode),
		files:        make(map[string]string),
	}
}

func (n *TreeNode) String() string {
	return fmt.Sprintf("<TreeNode %q path=%q>", n.Name, n.RelativePath)
}

func (n *TreeNode) setMode(m addressMode) {
	if n.mode != addressUnset && n.mode != m {
		panic(fmt.Sprintf("tree node %q mixes name and path addressing", n.RelativePath))
	}
	n.mode = m
}

// IsByPath reports whether files are keyed by relative path.
func (n *TreeNode) IsByPath() bool { return n.mode == addressByPath }

// AddFileByName files p under its base name.
func (n *TreeNode) AddFileByName(p string) {
	name := path.Base(p)
	if p == "" || name == "." || name == "/" {
		panic(fmt.Sprintf("tree node %q: empty file name", n.RelativePath))
	}
	n.setMode(addressByName)
	n.files[name] = p
}

// AddFileByPath files p under its full relative path.
func (n *TreeNode) AddFileByPath(p string) {
	if p == "" {
		panic(fmt.Sprintf("tree node %q: empty file path", n.RelativePath))
	}
	n.setMode(addressByPath)
	n.files[p] = p
}

// AddFolder returns the child folder name, creating it when missing.
func (n *TreeNode) AddFolder(name string) *TreeNode {
	if child, ok := n.folders[name]; ok {
		return child
	}
	rel := name
	if n.RelativePath != "" {
		rel = n.RelativePath + "/" + name
	}
	child := NewTreeNode(name, rel)
	n.folders[name] = child
	return child
}

// HasFolder reports whether name is a child folder.
func (n *TreeNode) HasFolder(name string) bool {
	_, ok := n.folders[name]
	return ok
}

// Folder looks up a child folder by name.
func (n *TreeNode) Folder(name string) (*TreeNode, bool) {
	child, ok := n.folders[name]
	return child, ok
}

// FolderNames returns the child folder names, sorted.
func (n *TreeNode) FolderNames() []string {
	names := make([]string, 0, len(n.folders))
	for name := range n.folders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Folders returns the child folders in name order.
func (n *TreeNode) Folders() []*TreeNode {
	nodes := make([]*TreeNode, 0, len(n.folders))
	for _, name := range n.FolderNames() {
		nodes = append(nodes, n.folders[name])
	}
	return nodes
}

// FileNames returns the file keys, names or paths depending on the view.
func (n *TreeNode) FileNames() []string {
	names := make([]string, 0, len(n.files))
	for name := range n.files {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FilePath resolves a file key to its relative path.
func (n *TreeNode) FilePath(key string) (string, bool) {
	p, ok := n.files[key]
	return p, ok
}

// Dump writes the tree at debug level.
func (n *TreeNode) Dump(log zerolog.Logger) {
	if log.GetLevel() > zerolog.DebugLevel {
		return
	}
	n.dump(log, 0)
}

func (n *TreeNode) dump(log zerolog.Logger, indent int) {
	pad := strings.Repeat(" ", indent)
	log.Debug().Msgf("dump: %s%s", pad, n)
	for _, name := range n.FileNames() {
		log.Debug().Msgf("dump: %s   file: %s", pad, n.files[name])
	}
	for _, child := range n.Folders() {
		child.dump(log, indent+4)
	}
}

// ProjectTree builds the hierarchical and the flat view of paths. Folders
// are created on demand along each path, so the input order does not
// matter.
func ProjectTree(rootName string, paths []string) (tree, flat *TreeNode) {
	tree = NewTreeNode(rootName, "")
	flat = NewTreeNode(rootName, "")

	for _, p := range paths {
		parts := strings.Split(p, "/")
		node := tree
		for _, name := range parts[:len(parts)-1] {
			node = node.AddFolder(name)
		}
		node.AddFileByName(p)
		flat.AddFileByPath(p)
	}
	return tree, flat
}
