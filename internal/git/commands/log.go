package commands

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kurobon/workbench/internal/git"
	"github.com/kurobon/workbench/internal/scm"
	"github.com/kurobon/workbench/internal/state"
)

func init() {
	git.RegisterCommand("log", func() git.Command { return &LogCommand{} })
}

type LogCommand struct{}

var _ git.Command = (*LogCommand)(nil)

type LogCommandOptions struct {
	Oneline bool
	Stat    bool
	Log     scm.LogOptions
}

var dateLayouts = []string{time.RFC3339, "2006-01-02 15:04:05", "2006-01-02"}

func (c *LogCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	opts, err := c.parseArgs(args)
	if err != nil {
		return "", err
	}
	if opts.Log.Limit == 0 {
		opts.Log.Limit = p.HistoryLimit()
	}

	var nodes []*state.CommitLogNode
	if opts.Log.Path != "" {
		nodes, err = p.CmdCommitLogForFile(nil, opts.Log.Path, opts.Log)
	} else {
		nodes, err = p.CmdCommitLogForRepository(nil, opts.Log)
	}
	if err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, n := range nodes {
		if opts.Oneline {
			sb.WriteString(fmt.Sprintf("%s %s\n", shortID(n.ID()), firstLine(n.Message())))
		} else {
			sb.WriteString(fmt.Sprintf("commit %s\nAuthor: %s <%s>\nDate:   %s\n\n    %s\n\n",
				n.ID(),
				n.Author(),
				n.AuthorEmail(),
				n.Date().Format(time.RFC3339),
				strings.TrimSpace(n.Message()),
			))
		}
		if opts.Stat {
			changes, _ := n.Changes()
			for _, ch := range changes {
				if ch.Kind == state.ChangeRenamed {
					sb.WriteString(fmt.Sprintf(" %s\t%s -> %s\n", ch.Kind, ch.OldPath, ch.Path))
				} else {
					sb.WriteString(fmt.Sprintf(" %s\t%s\n", ch.Kind, ch.Path))
				}
			}
			if len(changes) > 0 {
				sb.WriteString("\n")
			}
		}
	}
	return sb.String(), nil
}

func (c *LogCommand) parseArgs(args []string) (*LogCommandOptions, error) {
	opts := &LogCommandOptions{}

	cmdArgs := args[1:]
	for i := 0; i < len(cmdArgs); i++ {
		arg := cmdArgs[i]
		value := func() (string, error) {
			if _, v, ok := strings.Cut(arg, "="); ok {
				return v, nil
			}
			if i+1 >= len(cmdArgs) {
				return "", fmt.Errorf("error: option `%s' requires a value", strings.TrimLeft(arg, "-"))
			}
			i++
			return cmdArgs[i], nil
		}

		switch {
		case arg == "-h" || arg == "--help":
			return nil, git.ErrHelpRequested
		case arg == "--oneline":
			opts.Oneline = true
		case arg == "--stat" || arg == "--name-status":
			opts.Stat = true
		case arg == "-n" || strings.HasPrefix(arg, "--max-count"):
			v, err := value()
			if err != nil {
				return nil, err
			}
			if opts.Log.Limit, err = strconv.Atoi(v); err != nil || opts.Log.Limit < 0 {
				return nil, fmt.Errorf("fatal: invalid max count '%s'", v)
			}
		case len(arg) > 1 && arg[0] == '-' && isDigits(arg[1:]):
			opts.Log.Limit, _ = strconv.Atoi(arg[1:])
		case strings.HasPrefix(arg, "--since") || strings.HasPrefix(arg, "--after"):
			t, err := parseDateFlag(value)
			if err != nil {
				return nil, err
			}
			opts.Log.Since = &t
		case strings.HasPrefix(arg, "--until") || strings.HasPrefix(arg, "--before"):
			t, err := parseDateFlag(value)
			if err != nil {
				return nil, err
			}
			opts.Log.Until = &t
		case arg == "--":
			if i+1 < len(cmdArgs) {
				opts.Log.Path = cmdArgs[i+1]
			}
			i = len(cmdArgs)
		case strings.HasPrefix(arg, "-"):
			return nil, fmt.Errorf("error: unknown option `%s`", arg)
		default:
			opts.Log.Path = arg
		}
	}
	return opts, nil
}

func parseDateFlag(value func() (string, error)) (time.Time, error) {
	v, err := value()
	if err != nil {
		return time.Time{}, err
	}
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, v, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("fatal: invalid date '%s'", v)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func (c *LogCommand) Help() string {
	return `usage: git log [--oneline] [--stat] [-n <number>] [--since=<date>] [--until=<date>] [[--] <path>]

Show the commit history of the current branch, or of one path.
`
}
