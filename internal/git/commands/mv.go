package commands

import (
	"context"
	"fmt"

	"github.com/kurobon/workbench/internal/git"
)

func init() {
	git.RegisterCommand("mv", func() git.Command { return &MvCommand{} })
}

type MvCommand struct{}

var _ git.Command = (*MvCommand)(nil)

func (c *MvCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	if hasHelpFlag(args[1:]) {
		return "", git.ErrHelpRequested
	}
	_, operands := splitPaths(args[1:])
	if len(operands) != 2 {
		return "", fmt.Errorf("usage: git mv <source> <destination>")
	}
	from, to := operands[0], operands[1]

	if err := p.CmdRename(from, to); err != nil {
		return "", err
	}
	if err := save(p); err != nil {
		return "", err
	}
	return fmt.Sprintf("Renamed %s -> %s", from, to), nil
}

func (c *MvCommand) Help() string {
	return `usage: git mv <source> <destination>

Move or rename a file. Tracked files are renamed in the index too;
untracked files are only renamed on disk.
`
}
