package commands

import (
	"context"

	"github.com/kurobon/workbench/internal/git"
)

// Version is set at build time with -ldflags "-X .../commands.Version=...".
var Version = "dev"

func init() {
	git.RegisterCommand("version", func() git.Command { return &VersionCommand{} })
}

type VersionCommand struct{}

func (c *VersionCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	return "workbench version " + Version + " (" + p.SCMKind() + ")", nil
}

func (c *VersionCommand) Help() string {
	return `usage: git version

Show the workbench version and the backend in use.
`
}
