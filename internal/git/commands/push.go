package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/kurobon/workbench/internal/git"
	"github.com/kurobon/workbench/internal/scm"
)

func init() {
	git.RegisterCommand("push", func() git.Command { return &PushCommand{} })
}

// PushCommand pushes the current branch to its tracking branch.
type PushCommand struct{}

var _ git.Command = (*PushCommand)(nil)

func (c *PushCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	if hasHelpFlag(args[1:]) {
		return "", git.ErrHelpRequested
	}
	if len(args) > 1 {
		return "", fmt.Errorf("push takes no arguments; it always pushes to the tracking branch")
	}

	out := &transferOutput{}
	if err := p.CmdPush(ctx, out.progress, out.info); err != nil {
		return "", err
	}
	if err := save(p); err != nil {
		return "", err
	}
	return out.String(), nil
}

func (c *PushCommand) Help() string {
	return `usage: git push

Update the tracking branch of the current branch on its remote.
`
}

// transferOutput renders progress and ref updates of a pull or push the
// way git prints them.
type transferOutput struct {
	sb strings.Builder
}

func (o *transferOutput) progress(ev scm.ProgressEvent) {
	if !ev.End {
		return
	}
	if ev.Max > 0 {
		o.sb.WriteString(fmt.Sprintf("%s: 100%% (%d/%d), done.\n", ev.Stage, ev.Max, ev.Max))
	} else {
		o.sb.WriteString(fmt.Sprintf("%s: %d, done.\n", ev.Stage, ev.Current))
	}
}

func (o *transferOutput) info(u scm.RefUpdate) {
	o.sb.WriteString(fmt.Sprintf("   %-17s %s\n", u.Summary, u.Name))
}

func (o *transferOutput) String() string {
	if o.sb.Len() == 0 {
		return "Everything up-to-date"
	}
	return strings.TrimRight(o.sb.String(), "\n")
}
