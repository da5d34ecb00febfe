package commands

import (
	"context"
	"fmt"

	"github.com/kurobon/workbench/internal/git"
)

func init() {
	git.RegisterCommand("pull", func() git.Command { return &PullCommand{} })
}

// PullCommand merges the tracking branch into the current branch. Only
// fast-forwards are possible.
type PullCommand struct{}

var _ git.Command = (*PullCommand)(nil)

func (c *PullCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	if hasHelpFlag(args[1:]) {
		return "", git.ErrHelpRequested
	}
	if len(args) > 1 {
		return "", fmt.Errorf("pull takes no arguments; it always pulls from the tracking branch")
	}

	out := &transferOutput{}
	if err := p.CmdPull(ctx, out.progress, out.info); err != nil {
		return "", err
	}
	if err := save(p); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (c *PullCommand) Help() string {
	return `usage: git pull

Fetch the tracking branch of the current branch and fast-forward to it.
`
}
