package gitbackend

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/go-git/go-git/v5/config"

	"github.com/kurobon/workbench/internal/scm"
)

func (b *Backend) scopedConfig(scope scm.SettingsScope) (*config.Config, error) {
	switch scope {
	case scm.ScopeRepository:
		return b.repo.Config()
	case scm.ScopeGlobal:
		return config.LoadConfig(config.GlobalScope)
	}
	return nil, fmt.Errorf("unknown settings scope %d", scope)
}

func (b *Backend) UserSettings(scope scm.SettingsScope) (scm.UserSettings, error) {
	cfg, err := b.scopedConfig(scope)
	if err != nil {
		return scm.UserSettings{}, err
	}
	s := scm.UserSettings{
		Name:  cfg.User.Name,
		Email: cfg.User.Email,
	}
	if scope == scm.ScopeRepository && cfg.Raw.HasSection("pull") {
		s.PullRebase, _ = strconv.ParseBool(cfg.Raw.Section("pull").Option("rebase"))
	}
	return s, nil
}

// SetUserSettings writes settings to the chosen scope. An empty name or
// email removes the option. pull.rebase is only kept per repository.
func (b *Backend) SetUserSettings(scope scm.SettingsScope, s scm.UserSettings) error {
	cfg, err := b.scopedConfig(scope)
	if err != nil {
		return err
	}

	cfg.User.Name = s.Name
	cfg.User.Email = s.Email
	user := cfg.Raw.Section("user")
	if s.Name == "" {
		user.RemoveOption("name")
	}
	if s.Email == "" {
		user.RemoveOption("email")
	}

	if scope == scm.ScopeRepository {
		cfg.Raw.Section("pull").SetOption("rebase", strconv.FormatBool(s.PullRebase))
		return b.repo.Storer.SetConfig(cfg)
	}
	return writeGlobalConfig(cfg)
}

func writeGlobalConfig(cfg *config.Config) error {
	paths, err := config.Paths(config.GlobalScope)
	if err != nil {
		return err
	}
	if len(paths) == 0 {
		return fmt.Errorf("no global git config location")
	}
	data, err := cfg.Marshal()
	if err != nil {
		return err
	}
	path := globalConfigPath(paths)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// globalConfigPath picks the first existing candidate, else ~/.gitconfig.
func globalConfigPath(paths []string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range paths {
		if filepath.Base(p) == ".gitconfig" {
			return p
		}
	}
	return paths[0]
}
