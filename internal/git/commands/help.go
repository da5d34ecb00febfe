package commands

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kurobon/workbench/internal/git"
)

func init() {
	git.RegisterCommand("help", func() git.Command { return &HelpCommand{} })
}

type HelpCommand struct{}

var _ git.Command = (*HelpCommand)(nil)

// Command metadata for help display
type cmdMeta struct {
	Category string
	Desc     string
}

const (
	CatWork    = "Work on the current change"
	CatHistory = "Examine the history and state"
	CatGrow    = "Grow your history"
	CatCollab  = "Collaborate"
	CatMisc    = "Miscellaneous"
)

var commandMetadata = map[string]cmdMeta{
	"add":          {CatWork, "Add file contents to the index"},
	"clean":        {CatWork, "Remove untracked files from the working tree"},
	"mv":           {CatWork, "Move or rename a file"},
	"restore":      {CatWork, "Restore working tree files"},
	"rm":           {CatWork, "Remove files from the working tree and from the index"},
	"update-index": {CatWork, "Add or remove index entries directly"},

	"diff":   {CatHistory, "Show changes between commits, the index and the working tree"},
	"log":    {CatHistory, "Show commit logs"},
	"show":   {CatHistory, "Show a commit or a file at a commit"},
	"status": {CatHistory, "Show the working tree status"},

	"branch": {CatGrow, "Show the current branch"},
	"commit": {CatGrow, "Record changes to the repository"},
	"reset":  {CatGrow, "Reset index entries to a commit"},

	"pull": {CatCollab, "Fast-forward to the tracking branch"},
	"push": {CatCollab, "Update the tracking branch"},

	"config":  {CatMisc, "Get and set user settings"},
	"help":    {CatMisc, "Display help information"},
	"ls":      {CatMisc, "List a folder of the project tree"},
	"version": {CatMisc, "Show version info"},
}

var categoryOrder = []string{
	CatWork,
	CatHistory,
	CatGrow,
	CatCollab,
	CatMisc,
}

func (c *HelpCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	if len(args) > 1 {
		subcmd := args[1]
		helpStr, err := git.GetCommandHelp(subcmd)
		if err != nil {
			return fmt.Sprintf("git help: unknown command '%s'", subcmd), nil
		}
		return helpStr, nil
	}

	grouped := make(map[string][]string)
	maxLen := 0
	for _, cmd := range git.GetSupportedCommands() {
		meta, ok := commandMetadata[cmd]
		if !ok {
			continue
		}
		grouped[meta.Category] = append(grouped[meta.Category], cmd)
		maxLen = max(maxLen, len(cmd))
	}

	var sb strings.Builder
	sb.WriteString("usage: git [--version] [--help] <command> [<args>]\n")

	for _, cat := range categoryOrder {
		list := grouped[cat]
		if len(list) == 0 {
			continue
		}
		sort.Strings(list)

		sb.WriteString(fmt.Sprintf("\n%s:\n", cat))
		for _, cmd := range list {
			padding := strings.Repeat(" ", maxLen-len(cmd)+3)
			sb.WriteString(fmt.Sprintf("   %s%s%s\n", cmd, padding, commandMetadata[cmd].Desc))
		}
	}

	sb.WriteString("\nType 'git help <command>' for more information about a specific command.")
	return sb.String(), nil
}

func (c *HelpCommand) Help() string {
	return `usage: git help [<command>]

List the available commands, or show the usage of one command.
`
}
