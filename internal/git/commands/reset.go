package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/kurobon/workbench/internal/git"
	"github.com/kurobon/workbench/internal/state"
)

func init() {
	git.RegisterCommand("reset", func() git.Command { return &ResetCommand{} })
}

// ResetCommand is the path-limited mixed reset: index entries go back to
// the given revision, the working tree is left alone.
type ResetCommand struct{}

var _ git.Command = (*ResetCommand)(nil)

type ResetOptions struct {
	Target string
	Paths  []string
}

func (c *ResetCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	opts, err := c.parseArgs(args)
	if err != nil {
		return "", err
	}

	for _, path := range opts.Paths {
		if err := p.CmdUnstage(opts.Target, path); err != nil {
			return "", fmt.Errorf("reset %s: %w", path, err)
		}
	}
	if err := save(p); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, e := range p.ReportUntrackedFiles() {
		if e.Label == state.LabelNewFile {
			continue
		}
		if sb.Len() == 0 {
			sb.WriteString("Unstaged changes after reset:\n")
		}
		sb.WriteString(fmt.Sprintf("%s\t%s\n", abbrevFor(e.Label), e.Path))
	}
	return sb.String(), nil
}

// parseArgs accepts `reset [<rev>] [--] [<path>...]`. Without "--" a
// lone operand is a path unless it names HEAD or one of its ancestors.
func (c *ResetCommand) parseArgs(args []string) (*ResetOptions, error) {
	opts := &ResetOptions{Target: "HEAD"}

	var before, after []string
	seenDashDash := false
	for _, arg := range args[1:] {
		if seenDashDash {
			after = append(after, arg)
			continue
		}
		switch arg {
		case "--":
			seenDashDash = true
		case "-h", "--help":
			return nil, git.ErrHelpRequested
		case "--mixed", "-q":
		case "--soft", "--hard":
			return nil, fmt.Errorf("reset %s is not supported, only path-limited mixed reset", arg)
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("error: unknown option `%s`", arg)
			}
			before = append(before, arg)
		}
	}

	if seenDashDash {
		if len(before) > 1 {
			return nil, fmt.Errorf("fatal: only one revision allowed before '--'")
		}
		if len(before) == 1 {
			opts.Target = before[0]
		}
		opts.Paths = after
	} else {
		if len(before) > 1 || (len(before) == 1 && looksLikeRevision(before[0])) {
			opts.Target = before[0]
			before = before[1:]
		}
		opts.Paths = before
	}

	if len(opts.Paths) == 0 {
		opts.Paths = []string{"."}
	}
	return opts, nil
}

func looksLikeRevision(arg string) bool {
	return arg == "HEAD" || strings.HasPrefix(arg, "HEAD~") || strings.HasPrefix(arg, "HEAD^")
}

func abbrevFor(label string) string {
	switch label {
	case state.LabelDeleted:
		return "D"
	case state.LabelRenamed:
		return "R"
	case state.LabelNewFile:
		return "A"
	default:
		return "M"
	}
}

func (c *ResetCommand) Help() string {
	return `usage: git reset [<commit>] [--] [<pathspec>...]

Reset the index entries for <pathspec> to their state in <commit>
(default HEAD). The working tree is not touched.
`
}
