// Package cmd contains the CLI commands for workbench.
package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/kurobon/workbench/internal/config"
	"github.com/kurobon/workbench/internal/git"
	"github.com/kurobon/workbench/internal/git/commands"
	"github.com/kurobon/workbench/internal/logging"
	"github.com/kurobon/workbench/internal/scm"
	_ "github.com/kurobon/workbench/internal/scm/gitbackend" // registers the git backend
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "workbench",
	Short: "Repository status model with git-like commands",
	Long: `workbench keeps an in-memory status model of a repository and applies
git-like commands to it. Use "run" for a single command or "serve" to expose
the model over HTTP while watching the working tree.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./workbench.yaml or ~/.workbench/workbench.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "workbench %s\n", commands.Version)
	},
}

// openProject loads the configuration and opens the configured project
// with a first reconciliation pass done.
func openProject() (*config.Config, *git.Project, zerolog.Logger, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, zerolog.Nop(), fmt.Errorf("failed to load config: %w", err)
	}
	log := logging.New(cfg.Logging, verbose, os.Stderr)

	p, err := git.Open(git.Options{
		Name:         cfg.Project.Name,
		Path:         cfg.Project.Path,
		Kind:         cfg.Project.SCM,
		Author:       scm.Signature{Name: cfg.Author.Name, Email: cfg.Author.Email},
		HistoryLimit: cfg.History.Limit,
	}, log)
	if err != nil {
		return nil, nil, log, fmt.Errorf("failed to open project %s: %w", cfg.Project.Path, err)
	}
	if err := p.UpdateState(); err != nil {
		return nil, nil, log, fmt.Errorf("failed to read project state: %w", err)
	}
	return cfg, p, log, nil
}
