package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/kurobon/workbench/internal/git"
	"github.com/kurobon/workbench/internal/scm"
	"github.com/kurobon/workbench/internal/state"
)

func init() {
	git.RegisterCommand("status", func() git.Command { return &StatusCommand{} })
}

type StatusCommand struct{}

var _ git.Command = (*StatusCommand)(nil)

type StatusOptions struct {
	Short  bool
	Branch bool
}

// Execute reconciles first, so the output reflects changes made outside
// the workbench too.
func (c *StatusCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	opts, err := c.parseArgs(args)
	if err != nil {
		return "", err
	}

	if err := p.Refresh(); err != nil {
		return "", err
	}

	if opts.Short {
		return c.formatShortInfo(p, opts.Branch)
	}
	return c.formatLongInfo(p)
}

func (c *StatusCommand) parseArgs(args []string) (*StatusOptions, error) {
	opts := &StatusOptions{}
	for _, arg := range args[1:] {
		switch arg {
		case "-s", "--short":
			opts.Short = true
		case "-b", "--branch":
			opts.Branch = true
		case "-sb", "-bs":
			opts.Short = true
			opts.Branch = true
		case "-h", "--help":
			return nil, git.ErrHelpRequested
		default:
			if strings.HasPrefix(arg, "-") {
				return nil, fmt.Errorf("error: unknown option `%s`", arg)
			}
		}
	}
	return opts, nil
}

func branchLine(p *git.Project) (string, error) {
	name, err := p.BranchName()
	if errors.Is(err, scm.ErrDetachedHead) {
		head, herr := p.Backend().HeadCommitID()
		if herr != nil {
			return "", herr
		}
		return "HEAD detached at " + shortID(head), nil
	}
	if err != nil {
		return "", err
	}
	return "On branch " + name, nil
}

func (c *StatusCommand) formatLongInfo(p *git.Project) (string, error) {
	var sb strings.Builder

	line, err := branchLine(p)
	if err != nil {
		return "", err
	}
	sb.WriteString(line + "\n")

	if unpushed, err := p.UnpushedCommits(); err == nil && len(unpushed) > 0 {
		sb.WriteString(fmt.Sprintf("Your branch is ahead by %d commit(s).\n", len(unpushed)))
	}

	var unstaged, untracked []string
	for _, e := range p.ReportUntrackedFiles() {
		if e.Label == state.LabelNewFile {
			untracked = append(untracked, e.Path)
			continue
		}
		unstaged = append(unstaged, fmt.Sprintf("%-12s%s", strings.ToLower(e.Label)+":", e.Path))
	}

	var staged []string
	for _, e := range p.ReportStagedFiles() {
		if e.Label == state.LabelRenamed {
			staged = append(staged, fmt.Sprintf("%-12s%s -> %s", "renamed:", e.OldPath, e.Path))
			continue
		}
		staged = append(staged, fmt.Sprintf("%-12s%s", strings.ToLower(e.Label)+":", e.Path))
	}

	if len(staged) > 0 {
		sb.WriteString("\nChanges to be committed:\n  (use \"git restore --staged <file>...\" to unstage)\n")
		for _, line := range staged {
			sb.WriteString("\t" + line + "\n")
		}
	}

	if len(unstaged) > 0 {
		sb.WriteString("\nChanges not staged for commit:\n  (use \"git add <file>...\" to update what will be committed)\n  (use \"git restore <file>...\" to discard changes in working directory)\n")
		for _, line := range unstaged {
			sb.WriteString("\t" + line + "\n")
		}
	}

	if len(untracked) > 0 {
		sb.WriteString("\nUntracked files:\n  (use \"git add <file>...\" to include in what will be committed)\n")
		for _, path := range untracked {
			sb.WriteString("\t" + path + "\n")
		}
	}

	if len(staged) == 0 && len(unstaged) == 0 && len(untracked) == 0 {
		sb.WriteString("nothing to commit, working tree clean\n")
	}

	return sb.String(), nil
}

// formatShortInfo prints one "XY path" line per changed file, X being the
// staged and Y the unstaged abbreviation.
func (c *StatusCommand) formatShortInfo(p *git.Project, showBranch bool) (string, error) {
	var sb strings.Builder

	if showBranch {
		name, err := p.BranchName()
		switch {
		case errors.Is(err, scm.ErrDetachedHead):
			sb.WriteString("## HEAD (no branch)\n")
		case err != nil:
			return "", err
		default:
			sb.WriteString("## " + name + "\n")
		}
	}

	for _, path := range p.Files().Paths() {
		fs := p.Files()[path]
		if fs.IsDir() {
			continue
		}
		x, y := fs.StagedAbbrev(), fs.UnstagedAbbrev()
		if x != "" || y != "" {
			shown := path
			if from := fs.RenamedFrom(); from != "" {
				shown = from + " -> " + path
			}
			sb.WriteString(fmt.Sprintf("%s%s %s\n", orSpace(x), orSpace(y), shown))
		}
		// a path removed from the index but still on disk gets both lines
		if fs.IsUncontrolled() {
			sb.WriteString("?? " + path + "\n")
		}
	}

	return sb.String(), nil
}

func orSpace(abbrev string) string {
	if abbrev == "" {
		return " "
	}
	return abbrev
}

func (c *StatusCommand) Help() string {
	return `usage: git status [-s|--short] [-b|--branch]

    -s, --short       one line per changed file: staged and unstaged code
    -b, --branch      with -s, show the branch too

Show the working tree status.
`
}
