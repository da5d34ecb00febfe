package commands

import (
	"context"
	"fmt"

	"github.com/kurobon/workbench/internal/git"
)

func init() {
	git.RegisterCommand("diff", func() git.Command { return &DiffCommand{} })
}

type DiffCommand struct{}

var _ git.Command = (*DiffCommand)(nil)

type DiffOptions struct {
	Staged bool
	Revs   []string
	Path   string
}

// Execute picks the comparison from the arguments:
//
//	diff [--] [<path>]              index vs working tree
//	diff --staged [<path>]          HEAD vs index
//	diff HEAD [<path>]              HEAD vs working tree
//	diff <commit> [<path>]          commit vs working tree
//	diff --staged <commit> [<path>] commit vs index
//	diff <commit> <commit> [<path>] commit vs commit
func (c *DiffCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	opts, err := c.parseArgs(p, args)
	if err != nil {
		return "", err
	}

	switch {
	case len(opts.Revs) == 2:
		return p.CmdDiffCommitVsCommit(opts.Path, opts.Revs[0], opts.Revs[1])
	case len(opts.Revs) == 1 && opts.Staged:
		return p.CmdDiffStagedVsCommit(opts.Path, opts.Revs[0])
	case len(opts.Revs) == 1 && opts.Revs[0] == "HEAD":
		return p.CmdDiffFolder(opts.Path, true, false)
	case len(opts.Revs) == 1:
		return p.CmdDiffWorkingVsCommit(opts.Path, opts.Revs[0])
	default:
		return p.CmdDiffFolder(opts.Path, false, opts.Staged)
	}
}

func (c *DiffCommand) parseArgs(p *git.Project, args []string) (*DiffOptions, error) {
	opts := &DiffOptions{}

	var operands, paths []string
	seenDashDash := false
	for _, arg := range args[1:] {
		if seenDashDash {
			paths = append(paths, arg)
			continue
		}
		switch arg {
		case "--":
			seenDashDash = true
		case "-h", "--help":
			return nil, git.ErrHelpRequested
		case "--staged", "--cached":
			opts.Staged = true
		default:
			if len(arg) > 1 && arg[0] == '-' {
				return nil, fmt.Errorf("error: unknown option `%s`", arg)
			}
			operands = append(operands, arg)
		}
	}

	// Without "--" a trailing operand the status map knows is a path.
	if !seenDashDash && len(operands) > 0 {
		last := operands[len(operands)-1]
		if _, ok := p.FileState(last); ok || last == "." {
			paths = append(paths, last)
			operands = operands[:len(operands)-1]
		}
	}

	if len(paths) > 1 {
		return nil, fmt.Errorf("diff takes at most one path")
	}
	if len(paths) == 1 {
		opts.Path = paths[0]
	}
	if len(operands) > 2 {
		return nil, fmt.Errorf("usage: git diff [<commit> [<commit>]] [--] [<path>]")
	}
	opts.Revs = operands
	return opts, nil
}

func (c *DiffCommand) Help() string {
	return `usage: git diff [--staged] [<commit> [<commit>]] [--] [<path>]

Show changes between the working tree, the index and commits.
`
}
