package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/kurobon/workbench/internal/git"
)

func init() {
	git.RegisterCommand("rm", func() git.Command { return &RmCommand{} })
}

// RmCommand drops paths from the in-memory index and, unless --cached,
// from the working tree. The index is written once at the end.
type RmCommand struct{}

var _ git.Command = (*RmCommand)(nil)

func (c *RmCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	flags, paths := splitPaths(args[1:])

	cached := false
	for _, flag := range flags {
		switch flag {
		case "-h", "--help":
			return "", git.ErrHelpRequested
		case "--cached":
			cached = true
		case "-r", "-f", "--force", "-q", "--quiet":
		default:
			return "", fmt.Errorf("error: unknown option `%s`", flag)
		}
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("usage: git rm [--cached] [--] <file>...")
	}

	var sb strings.Builder
	for _, path := range paths {
		fs, ok := p.FileState(path)
		if ok && !fs.IsControlled() {
			return "", fmt.Errorf("fatal: pathspec '%s' did not match any files", path)
		}
		if err := p.CmdIndexRemove(path); err != nil {
			return "", err
		}
		if !cached {
			if err := p.CmdDelete(path); err != nil {
				return "", err
			}
		}
		sb.WriteString(fmt.Sprintf("rm '%s'\n", path))
	}

	if err := save(p); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func (c *RmCommand) Help() string {
	return `usage: git rm [--cached] [--] <file>...

    --cached              only remove from the index

Remove files from the working tree and from the index.
`
}
