package commands

import (
	"context"
	"fmt"
	"path"
	"sort"
	"strings"

	"github.com/kurobon/workbench/internal/git"
	"github.com/kurobon/workbench/internal/state"
)

func init() {
	git.RegisterCommand("clean", func() git.Command { return &CleanCommand{} })
}

type CleanCommand struct{}

var _ git.Command = (*CleanCommand)(nil)

type CleanOptions struct {
	DryRun bool
	Force  bool
	Dir    bool
	Args   []string
}

// cleanPlan lists what a clean removes. shown is what gets reported: whole
// untracked directories appear once with a trailing slash.
type cleanPlan struct {
	shown []string
	files []string
	dirs  []string // deepest first
}

func (c *CleanCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	opts, err := c.parseArgs(args)
	if err != nil {
		return "", err
	}
	if !opts.Force && !opts.DryRun {
		return "", fmt.Errorf("fatal: clean.requireForce defaults to true and neither -n nor -f given; refusing to clean")
	}

	if err := p.Refresh(); err != nil {
		return "", err
	}
	plan := planClean(p.Files(), opts)

	prefix := "Removing"
	if opts.DryRun {
		prefix = "Would remove"
	}
	var sb strings.Builder
	for _, entry := range plan.shown {
		fmt.Fprintf(&sb, "%s %s\n", prefix, entry)
	}
	if opts.DryRun {
		return sb.String(), nil
	}

	for _, f := range plan.files {
		if err := p.CmdDelete(f); err != nil {
			return "", fmt.Errorf("failed to remove %s: %w", f, err)
		}
	}
	for _, d := range plan.dirs {
		if err := p.CmdDelete(d); err != nil {
			return "", fmt.Errorf("failed to remove %s: %w", d, err)
		}
	}
	if err := save(p); err != nil {
		return "", err
	}
	return sb.String(), nil
}

func planClean(files state.StatusMap, opts *CleanOptions) *cleanPlan {
	paths := files.Paths()

	// a directory is untracked when nothing below it is controlled or ignored
	untrackedDir := make(map[string]bool)
	for _, p := range paths {
		if files[p].IsDir() {
			untrackedDir[p] = true
		}
	}
	for _, p := range paths {
		fs := files[p]
		if fs.IsDir() || fs.IsUncontrolled() {
			continue
		}
		for dir := path.Dir(p); dir != "."; dir = path.Dir(dir) {
			delete(untrackedDir, dir)
		}
	}

	underUntracked := func(p string) (string, bool) {
		top := ""
		for dir := path.Dir(p); dir != "."; dir = path.Dir(dir) {
			if untrackedDir[dir] {
				top = dir
			}
		}
		return top, top != ""
	}

	plan := &cleanPlan{}
	for _, p := range paths {
		if !matchesPathspec(p, opts.Args) {
			continue
		}
		fs := files[p]
		top, nested := underUntracked(p)
		switch {
		case fs.IsDir():
			if !opts.Dir || !untrackedDir[p] {
				continue
			}
			plan.dirs = append(plan.dirs, p)
			if !nested {
				plan.shown = append(plan.shown, p+"/")
			}
		case fs.IsUncontrolled():
			if nested {
				if opts.Dir && matchesPathspec(top, opts.Args) {
					plan.files = append(plan.files, p)
				}
				continue
			}
			plan.files = append(plan.files, p)
			plan.shown = append(plan.shown, p)
		}
	}

	sort.Strings(plan.shown)
	sort.SliceStable(plan.dirs, func(i, j int) bool {
		return strings.Count(plan.dirs[i], "/") > strings.Count(plan.dirs[j], "/")
	})
	return plan
}

func matchesPathspec(p string, specs []string) bool {
	if len(specs) == 0 {
		return true
	}
	for _, spec := range specs {
		spec = path.Clean(spec)
		if spec == "." || p == spec || strings.HasPrefix(p, spec+"/") {
			return true
		}
	}
	return false
}

func (c *CleanCommand) parseArgs(args []string) (*CleanOptions, error) {
	opts := &CleanOptions{}
	flags, operands := splitPaths(args[1:])
	opts.Args = operands

	for _, arg := range flags {
		switch arg {
		case "-n", "--dry-run":
			opts.DryRun = true
		case "-f", "--force":
			opts.Force = true
		case "-d":
			opts.Dir = true
		case "-h", "--help":
			return nil, git.ErrHelpRequested
		default:
			if strings.HasPrefix(arg, "--") {
				return nil, fmt.Errorf("unknown option: %s", arg)
			}
			// combined short flags
			for _, char := range arg[1:] {
				switch char {
				case 'n':
					opts.DryRun = true
				case 'f':
					opts.Force = true
				case 'd':
					opts.Dir = true
				default:
					return nil, fmt.Errorf("unknown flag: -%c", char)
				}
			}
		}
	}
	return opts, nil
}

func (c *CleanCommand) Help() string {
	return `usage: git clean [-n] [-f] [-d] [--] [<pathspec>...]

    -n, --dry-run     only show what would be removed
    -f, --force       remove the files
    -d                also remove untracked directories

Remove untracked files from the working tree. Ignored files are kept.
`
}
