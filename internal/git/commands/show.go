package commands

import (
	"context"
	"fmt"

	"github.com/kurobon/workbench/internal/git"
)

func init() {
	git.RegisterCommand("show", func() git.Command { return &ShowCommand{} })
}

type ShowCommand struct{}

var _ git.Command = (*ShowCommand)(nil)

func (c *ShowCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	if hasHelpFlag(args[1:]) {
		return "", git.ErrHelpRequested
	}
	_, operands := splitPaths(args[1:])

	switch len(operands) {
	case 0:
		return p.CmdShow("HEAD")
	case 1:
		return p.CmdShow(operands[0])
	default:
		return "", fmt.Errorf("usage: git show [<commit> | <commit>:<path>]")
	}
}

func (c *ShowCommand) Help() string {
	return `usage: git show [<commit> | <commit>:<path>]

Show a commit with its patch, or the content of a file at a commit.
`
}
