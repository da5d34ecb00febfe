package commands

import (
	"context"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/kurobon/workbench/internal/git"
	"github.com/kurobon/workbench/internal/scm"
)

func init() {
	git.RegisterCommand("config", func() git.Command { return &ConfigCommand{} })
}

// ConfigCommand reads and writes the user settings: user.name, user.email
// and pull.rebase. Global scope is read-only for pull.rebase.
type ConfigCommand struct{}

var _ git.Command = (*ConfigCommand)(nil)

var configKeys = []string{"user.name", "user.email", "pull.rebase"}

func (c *ConfigCommand) Execute(ctx context.Context, p *git.Project, args []string) (string, error) {
	scope := scm.ScopeRepository
	var operands []string
	list := false
	for _, arg := range args[1:] {
		switch arg {
		case "-h", "--help":
			return "", git.ErrHelpRequested
		case "--global":
			scope = scm.ScopeGlobal
		case "--local":
			scope = scm.ScopeRepository
		case "-l", "--list":
			list = true
		default:
			operands = append(operands, arg)
		}
	}

	settings, err := p.UserSettings(scope)
	if err != nil {
		return "", err
	}

	if list || len(operands) == 0 {
		var sb strings.Builder
		for _, key := range configKeys {
			if v := settingValue(settings, key); v != "" {
				sb.WriteString(fmt.Sprintf("%s=%s\n", key, v))
			}
		}
		return sb.String(), nil
	}

	key := operands[0]
	if !slices.Contains(configKeys, key) {
		return "", fmt.Errorf("error: key '%s' is not supported (use one of %s)", key, strings.Join(configKeys, ", "))
	}
	if len(operands) == 1 {
		return settingValue(settings, key), nil
	}

	value := strings.Join(operands[1:], " ")
	switch key {
	case "user.name":
		settings.Name = value
	case "user.email":
		settings.Email = value
	case "pull.rebase":
		if scope == scm.ScopeGlobal {
			return "", fmt.Errorf("error: pull.rebase can only be set for the repository")
		}
		b, err := strconv.ParseBool(value)
		if err != nil {
			return "", fmt.Errorf("fatal: bad boolean config value '%s' for 'pull.rebase'", value)
		}
		settings.PullRebase = b
	}
	if err := p.SetUserSettings(scope, settings); err != nil {
		return "", err
	}
	return "", nil
}

func settingValue(s scm.UserSettings, key string) string {
	switch key {
	case "user.name":
		return s.Name
	case "user.email":
		return s.Email
	case "pull.rebase":
		if s.PullRebase {
			return "true"
		}
	}
	return ""
}

func (c *ConfigCommand) Help() string {
	return `usage: git config [--global] [--list | <key> [<value>]]

Supported keys: user.name, user.email, pull.rebase.
`
}
