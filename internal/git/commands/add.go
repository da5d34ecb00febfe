package commands

// add.go - stages working tree contents through the backend.

import (
	"context"
	"fmt"
	"strings"

	"github.com/kurobon/workbench/internal/git"
)

func init() {
	git.RegisterCommand("add", func() git.Command { return &AddCommand{} })
}

type AddCommand struct{}

var _ git.Command = (*AddCommand)(nil)

func (c *AddCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	if hasHelpFlag(args[1:]) {
		return "", git.ErrHelpRequested
	}

	_, paths := splitPaths(args[1:])
	if len(paths) == 0 {
		return "", fmt.Errorf("Nothing specified, nothing added.\nMaybe you wanted to say 'git add .'?")
	}

	for _, path := range paths {
		if err := p.CmdStage(path); err != nil {
			return "", fmt.Errorf("add %s: %w", path, err)
		}
	}
	if err := save(p); err != nil {
		return "", err
	}
	return "Added " + strings.Join(paths, ", "), nil
}

func (c *AddCommand) Help() string {
	return `usage: git add [--] <pathspec>...

    .                 add all changes in the working tree
    <file>            add specific file or folder

Add file contents to the index (staging area).
`
}
