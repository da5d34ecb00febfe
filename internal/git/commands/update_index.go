package commands

import (
	"context"
	"fmt"

	"github.com/kurobon/workbench/internal/git"
)

func init() {
	git.RegisterCommand("update-index", func() git.Command { return &UpdateIndexCommand{} })
}

// UpdateIndexCommand edits the in-memory index and writes it once, so a
// batch of paths costs a single index write and reconciliation.
type UpdateIndexCommand struct{}

var _ git.Command = (*UpdateIndexCommand)(nil)

func (c *UpdateIndexCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	remove := false
	var paths []string
	for _, arg := range args[1:] {
		switch arg {
		case "-h", "--help":
			return "", git.ErrHelpRequested
		case "--add":
			remove = false
		case "--remove", "--force-remove":
			remove = true
		case "--":
		default:
			paths = append(paths, arg)
		}
	}
	if len(paths) == 0 {
		return "", fmt.Errorf("usage: git update-index [--add | --remove] [--] <file>...")
	}

	for _, path := range paths {
		var err error
		if remove {
			err = p.CmdIndexRemove(path)
		} else {
			err = p.CmdIndexAdd(path)
		}
		if err != nil {
			// all or nothing: earlier paths of the batch are dropped too
			p.CmdDiscardIndex()
			return "", fmt.Errorf("update-index %s: %w", path, err)
		}
	}
	if err := save(p); err != nil {
		return "", err
	}
	return "", nil
}

func (c *UpdateIndexCommand) Help() string {
	return `usage: git update-index [--add | --remove] [--] <file>...

    --add             put the working tree content of <file> in the index
    --remove          drop <file> from the index

Edit the index directly. The working tree is not touched.
`
}
