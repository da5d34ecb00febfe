package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/kurobon/workbench/internal/git"
)

func init() {
	git.RegisterCommand("restore", func() git.Command { return &RestoreCommand{} })
}

type RestoreCommand struct{}

var _ git.Command = (*RestoreCommand)(nil)

type RestoreOptions struct {
	Staged bool
	Source string
	Paths  []string
}

func (c *RestoreCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	opts, err := c.parseArgs(args)
	if err != nil {
		return "", err
	}

	for _, path := range opts.Paths {
		if opts.Staged {
			// restore --staged: index back to the source, working tree kept
			err = p.CmdUnstage(opts.Source, path)
		} else {
			// restore: discard changes, index and working tree from the source
			err = p.CmdRevert(opts.Source, path)
		}
		if err != nil {
			return "", err
		}
	}
	if err := save(p); err != nil {
		return "", err
	}

	if opts.Staged {
		return "Unstaged " + strings.Join(opts.Paths, ", "), nil
	}
	return "Restored " + strings.Join(opts.Paths, ", "), nil
}

func (c *RestoreCommand) parseArgs(args []string) (*RestoreOptions, error) {
	opts := &RestoreOptions{Source: "HEAD"}
	flags, operands := splitPaths(args[1:])

	for i := 0; i < len(flags); i++ {
		flag := flags[i]
		switch {
		case flag == "-h" || flag == "--help":
			return nil, git.ErrHelpRequested
		case flag == "-S" || flag == "--staged":
			opts.Staged = true
		case flag == "-W" || flag == "--worktree":
		case strings.HasPrefix(flag, "--source="):
			opts.Source = strings.TrimPrefix(flag, "--source=")
		case flag == "-s" || flag == "--source":
			// the value was taken as the first operand
			if len(operands) == 0 {
				return nil, fmt.Errorf("error: option `source' requires a value")
			}
			opts.Source, operands = operands[0], operands[1:]
		default:
			return nil, fmt.Errorf("error: unknown option `%s`", flag)
		}
	}

	if len(operands) == 0 {
		return nil, fmt.Errorf("fatal: you must specify path(s) to restore")
	}
	opts.Paths = operands
	return opts, nil
}

func (c *RestoreCommand) Help() string {
	return `usage: git restore [--staged] [--source=<tree>] [--] <pathspec>...

    -S, --staged          restore the index only
    -s, --source <tree>   which tree-ish to restore from (default HEAD)

Without --staged both the index and the working tree are restored.
`
}
