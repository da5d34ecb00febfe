package git

import (
	"context"
	"fmt"
	"io"

	"github.com/kurobon/workbench/internal/scm"
)

// InfoFunc receives one RefUpdate per reference a pull or push touched.
type InfoFunc func(scm.RefUpdate)

type transferFunc func(ctx context.Context, progress io.Writer) ([]scm.RefUpdate, error)

// CmdPull pulls the tracking branch into the current branch.
func (p *Project) CmdPull(ctx context.Context, progress scm.ProgressFunc, info InfoFunc) error {
	return p.transfer(ctx, "pull", p.backend.Pull, progress, info)
}

// CmdPush pushes the current branch to its tracking branch.
func (p *Project) CmdPush(ctx context.Context, progress scm.ProgressFunc, info InfoFunc) error {
	return p.transfer(ctx, "push", p.backend.Push, progress, info)
}

func (p *Project) transfer(ctx context.Context, op string, fn transferFunc, progress scm.ProgressFunc, info InfoFunc) error {
	p.log.Debug().Str("op", op).Msg("transfer")

	parser := scm.NewProgressParser(progress)
	updates, err := fn(ctx, parser)
	parser.Flush()
	if err != nil {
		for _, line := range parser.ErrorLines() {
			p.log.Error().Str("op", op).Msg(line)
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	p.staleIndex = true
	for _, u := range updates {
		p.log.Info().Str("op", op).Str("ref", u.Name).Str("summary", u.Summary).Msg("ref updated")
		if info != nil {
			info(u)
		}
	}
	return nil
}
