package commands

// shell_ls.go - lists one folder of the projected project tree.
//
// This is a SHELL COMMAND (not a git command).

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/kurobon/workbench/internal/git"
	"github.com/kurobon/workbench/internal/state"
)

func init() {
	git.RegisterCommand("ls", func() git.Command { return &LsCommand{} })
}

type LsCommand struct{}

var _ git.Command = (*LsCommand)(nil)

func (c *LsCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	if hasHelpFlag(args[1:]) {
		return "", git.ErrHelpRequested
	}
	flags, operands := splitPaths(args[1:])
	long := false
	for _, f := range flags {
		if f != "-l" {
			return "", fmt.Errorf("ls: unknown option %s", f)
		}
		long = true
	}
	if len(operands) > 1 {
		return "", fmt.Errorf("ls: too many arguments")
	}

	if err := p.Refresh(); err != nil {
		return "", err
	}

	node := p.Tree()
	if len(operands) == 1 {
		dir := path.Clean(operands[0])
		if dir != "." {
			for _, name := range strings.Split(dir, "/") {
				child, ok := node.Folder(name)
				if !ok {
					return "", fmt.Errorf("ls: cannot access '%s': No such directory", operands[0])
				}
				node = child
			}
		}
	}

	// empty folders only exist as status entries
	folders := node.FolderNames()
	for _, key := range node.FileNames() {
		if fs := p.StatusEntry(node, key); fs.IsDir() && !node.HasFolder(key) {
			folders = append(folders, key)
		}
	}
	sort.Strings(folders)

	var output []string
	for _, name := range folders {
		if long {
			output = append(output, "   "+name+"/")
			continue
		}
		output = append(output, name+"/")
	}
	for _, key := range node.FileNames() {
		fs := p.StatusEntry(node, key)
		if fs.IsDir() {
			continue
		}
		if long {
			output = append(output, lsCode(fs)+" "+key)
			continue
		}
		output = append(output, key)
	}
	return strings.Join(output, "\n"), nil
}

func lsCode(fs *state.FileState) string {
	if fs.IsUncontrolled() && !fs.CanUnstage() {
		return "??"
	}
	return orSpace(fs.StagedAbbrev()) + orSpace(fs.UnstagedAbbrev())
}

func (c *LsCommand) Help() string {
	return `usage: ls [-l] [<folder>]

    -l                prefix each file with its staged and unstaged status

List a folder of the project tree.
`
}
