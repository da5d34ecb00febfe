package gitbackend

import (
	"context"
	"errors"
	"fmt"
	"io"

	gogit "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/config"
	"github.com/go-git/go-git/v5/plumbing"

	"github.com/kurobon/workbench/internal/scm"
)

const upToDate = "[up to date]"

type upstream struct {
	branch plumbing.ReferenceName
	remote string
	merge  plumbing.ReferenceName
}

func (b *Backend) upstream() (*upstream, error) {
	name, err := b.BranchName()
	if err != nil {
		return nil, err
	}
	cfg, err := b.repo.Config()
	if err != nil {
		return nil, err
	}
	branch, ok := cfg.Branches[name]
	if !ok || branch.Remote == "" || branch.Merge == "" {
		return nil, fmt.Errorf("%w: %s", scm.ErrNoTrackingBranch, name)
	}
	return &upstream{
		branch: plumbing.NewBranchReferenceName(name),
		remote: branch.Remote,
		merge:  branch.Merge,
	}, nil
}

func (b *Backend) Pull(ctx context.Context, progress io.Writer) ([]scm.RefUpdate, error) {
	up, err := b.upstream()
	if err != nil {
		return nil, err
	}
	before, err := b.headHash()
	if err != nil {
		return nil, err
	}

	b.log.Info().Str("remote", up.remote).Str("ref", up.merge.String()).Msg("pull")
	err = b.wt.PullContext(ctx, &gogit.PullOptions{
		RemoteName:    up.remote,
		ReferenceName: up.merge,
		Progress:      progress,
	})
	if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return []scm.RefUpdate{{
			Name:    up.branch.Short(),
			OldID:   before.String(),
			NewID:   before.String(),
			Summary: upToDate,
		}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("pull %s: %w", up.remote, err)
	}

	after, err := b.headHash()
	if err != nil {
		return nil, err
	}
	return []scm.RefUpdate{refUpdate(up.branch.Short(), before, after)}, nil
}

func (b *Backend) Push(ctx context.Context, progress io.Writer) ([]scm.RefUpdate, error) {
	up, err := b.upstream()
	if err != nil {
		return nil, err
	}
	remote, err := b.repo.Remote(up.remote)
	if err != nil {
		return nil, fmt.Errorf("remote %s: %w", up.remote, err)
	}

	trackingName := plumbing.NewRemoteReferenceName(up.remote, up.merge.Short())
	before := plumbing.ZeroHash
	if ref, err := b.repo.Reference(trackingName, true); err == nil {
		before = ref.Hash()
	}
	head, err := b.headHash()
	if err != nil {
		return nil, err
	}

	b.log.Info().Str("remote", up.remote).Str("ref", up.merge.String()).Msg("push")
	spec := config.RefSpec(fmt.Sprintf("%s:%s", up.branch, up.merge))
	err = remote.PushContext(ctx, &gogit.PushOptions{
		RemoteName: up.remote,
		RefSpecs:   []config.RefSpec{spec},
		Progress:   progress,
	})
	if errors.Is(err, gogit.NoErrAlreadyUpToDate) {
		return []scm.RefUpdate{{
			Name:    trackingName.Short(),
			OldID:   before.String(),
			NewID:   before.String(),
			Summary: upToDate,
		}}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("push %s: %w", up.remote, err)
	}

	// keep the tracking ref in step even when the transport did not
	if err := b.repo.Storer.SetReference(plumbing.NewHashReference(trackingName, head)); err != nil {
		return nil, err
	}
	return []scm.RefUpdate{refUpdate(trackingName.Short(), before, head)}, nil
}

func refUpdate(name string, before, after plumbing.Hash) scm.RefUpdate {
	summary := fmt.Sprintf("%s..%s", shortHash(before), shortHash(after))
	if before.IsZero() {
		summary = "[new branch]"
	}
	return scm.RefUpdate{
		Name:    name,
		OldID:   before.String(),
		NewID:   after.String(),
		Summary: summary,
	}
}

func shortHash(h plumbing.Hash) string {
	return h.String()[:7]
}
