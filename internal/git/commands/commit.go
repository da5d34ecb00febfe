package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kurobon/workbench/internal/git"
	"github.com/kurobon/workbench/internal/scm"
)

func init() {
	git.RegisterCommand("commit", func() git.Command { return &CommitCommand{} })
}

type CommitCommand struct{}

var _ git.Command = (*CommitCommand)(nil)

type CommitOptions struct {
	Message string
	All     bool
}

func (c *CommitCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	opts, err := c.parseArgs(args)
	if err != nil {
		return "", err
	}

	if err := p.Refresh(); err != nil {
		return "", err
	}
	if opts.All {
		if err := stageTracked(p); err != nil {
			return "", err
		}
	}
	if p.NumStagedFiles() == 0 {
		return "nothing to commit, working tree clean", nil
	}

	id, err := p.CmdCommit(opts.Message)
	if err != nil {
		return "", err
	}
	if err := save(p); err != nil {
		return "", err
	}

	branch, err := p.BranchName()
	if errors.Is(err, scm.ErrDetachedHead) {
		branch = "detached HEAD"
	} else if err != nil {
		return "", err
	}
	return fmt.Sprintf("[%s %s] %s", branch, shortID(id), firstLine(opts.Message)), nil
}

// stageTracked stages every modified or deleted tracked file, like -a.
func stageTracked(p *git.Project) error {
	for _, path := range p.Files().Paths() {
		fs := p.Files()[path]
		if fs.IsUnstagedModified() || fs.IsUnstagedDeleted() {
			if err := p.CmdStage(path); err != nil {
				return err
			}
		}
	}
	return save(p)
}

func (c *CommitCommand) parseArgs(args []string) (*CommitOptions, error) {
	opts := &CommitOptions{}
	var messages []string

	cmdArgs := args[1:]
	for i := 0; i < len(cmdArgs); i++ {
		arg := cmdArgs[i]
		switch {
		case arg == "-h" || arg == "--help":
			return nil, git.ErrHelpRequested
		case arg == "-a" || arg == "--all":
			opts.All = true
		case arg == "-m" || arg == "--message":
			if i+1 >= len(cmdArgs) {
				return nil, fmt.Errorf("error: switch `m' requires a value")
			}
			i++
			messages = append(messages, cmdArgs[i])
		case strings.HasPrefix(arg, "--message="):
			messages = append(messages, strings.TrimPrefix(arg, "--message="))
		case arg == "-am":
			opts.All = true
			if i+1 >= len(cmdArgs) {
				return nil, fmt.Errorf("error: switch `m' requires a value")
			}
			i++
			messages = append(messages, cmdArgs[i])
		default:
			return nil, fmt.Errorf("error: unknown option `%s`", arg)
		}
	}

	// multiple -m options become separate paragraphs
	opts.Message = strings.Join(messages, "\n\n")
	if strings.TrimSpace(opts.Message) == "" {
		return nil, fmt.Errorf("Aborting commit due to empty commit message.")
	}
	return opts, nil
}

func (c *CommitCommand) Help() string {
	return `usage: git commit [-a] -m <msg>

    -m, --message <msg>   commit message; repeat for more paragraphs
    -a, --all             stage modified and deleted tracked files first

Record the staged changes to the repository.
`
}
