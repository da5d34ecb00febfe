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
	git.RegisterCommand("branch", func() git.Command { return &BranchCommand{} })
}

// BranchCommand shows the current branch, its tracking branch and how far
// ahead of it HEAD is. Branch creation and switching are not supported.
type BranchCommand struct{}

var _ git.Command = (*BranchCommand)(nil)

func (c *BranchCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	verbose := false
	for _, arg := range args[1:] {
		switch arg {
		case "-h", "--help":
			return "", git.ErrHelpRequested
		case "-v", "-vv", "--verbose", "--show-current":
			verbose = arg != "--show-current"
		default:
			return "", fmt.Errorf("branch only lists the current branch; '%s' is not supported", arg)
		}
	}

	name, err := p.BranchName()
	if errors.Is(err, scm.ErrDetachedHead) {
		head, herr := p.Backend().HeadCommitID()
		if herr != nil {
			return "", herr
		}
		return fmt.Sprintf("* (HEAD detached at %s)", shortID(head)), nil
	}
	if err != nil {
		return "", err
	}
	if !verbose {
		return "* " + name, nil
	}

	var sb strings.Builder
	sb.WriteString("* " + name)
	tb, err := p.Backend().TrackingBranch()
	if err != nil {
		return "", err
	}
	if tb != nil {
		unpushed, err := p.UnpushedCommits()
		if err != nil {
			return "", err
		}
		if len(unpushed) > 0 {
			sb.WriteString(fmt.Sprintf(" [%s: ahead %d]", tb.Name, len(unpushed)))
		} else {
			sb.WriteString(fmt.Sprintf(" [%s]", tb.Name))
		}
	}
	return sb.String(), nil
}

func (c *BranchCommand) Help() string {
	return `usage: git branch [-v]

    -v, -vv           show the tracking branch and unpushed commit count

Show the current branch.
`
}
