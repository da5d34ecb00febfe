package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kurobon/workbench/internal/git"
)

var runCmd = &cobra.Command{
	Use:   "run <command...>",
	Short: "Run one git-like command against the project",
	Long: `Run one command through the command registry, for example:

  workbench run git status -s
  workbench run commit -m "first commit"
  workbench run 'git log --oneline -n 5'

A single argument is parsed as a whole command line.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

func init() {
	// everything after the command name belongs to the git-like verb
	runCmd.Flags().SetInterspersed(false)
}

func runRun(cmd *cobra.Command, args []string) error {
	_, p, _, err := openProject()
	if err != nil {
		return err
	}

	out, err := git.Run(cmd.Context(), p, commandLine(args))
	if out != "" {
		fmt.Fprint(cmd.OutOrStdout(), out)
		if !strings.HasSuffix(out, "\n") {
			fmt.Fprintln(cmd.OutOrStdout())
		}
	}
	return err
}

// commandLine rebuilds a line that git.SplitArgs splits back into args.
func commandLine(args []string) string {
	if len(args) == 1 {
		return args[0]
	}
	quoted := make([]string, len(args))
	for i, a := range args {
		if a != "" && !strings.ContainsAny(a, " \t\n\"'\\") {
			quoted[i] = a
			continue
		}
		quoted[i] = "'" + strings.ReplaceAll(a, "'", `'"'"'`) + "'"
	}
	return strings.Join(quoted, " ")
}
