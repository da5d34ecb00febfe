package git

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"unicode"
)

// Command is one git-like verb run against a Project.
type Command interface {
	Execute(ctx context.Context, p *Project, args []string) (string, error)
	Help() string
}

// CommandFactory creates a fresh Command per invocation.
type CommandFactory func() Command

var registry = make(map[string]CommandFactory)

// ErrHelpRequested is returned by argument parsers for -h/--help.
var ErrHelpRequested = errors.New("help requested")

func RegisterCommand(name string, factory CommandFactory) {
	registry[name] = factory
}

// Dispatch runs a registered command. args[0] is the command name.
func Dispatch(ctx context.Context, p *Project, cmdName string, args []string) (string, error) {
	factory, ok := registry[cmdName]
	if !ok {
		return "", fmt.Errorf("'%s' is not a recognized command. See 'help'", cmdName)
	}

	p.log.Debug().Str("command", cmdName).Strs("args", args).Msg("dispatch")
	cmd := factory()
	out, err := cmd.Execute(ctx, p, args)
	if errors.Is(err, ErrHelpRequested) {
		return cmd.Help(), nil
	}
	return out, err
}

// Run parses a command line and dispatches it.
func Run(ctx context.Context, p *Project, input string) (string, error) {
	name, args := ParseCommand(input)
	if name == "" {
		return "", nil
	}
	return Dispatch(ctx, p, name, args)
}

// GetSupportedCommands returns all registered commands, sorted.
func GetSupportedCommands() []string {
	cmds := make([]string, 0, len(registry))
	for k := range registry {
		cmds = append(cmds, k)
	}
	sort.Strings(cmds)
	return cmds
}

func GetCommandHelp(name string) (string, error) {
	factory, ok := registry[name]
	if !ok {
		return "", fmt.Errorf("command not found: %s", name)
	}
	return factory().Help(), nil
}

// ParseCommand resolves the command name of a line such as
// `git commit -m "first commit"`. The leading "git" is optional.
// The returned args always start with the command name.
func ParseCommand(input string) (string, []string) {
	parts := SplitArgs(input)
	if len(parts) == 0 {
		return "", nil
	}

	if parts[0] == "git" {
		parts = parts[1:]
		if len(parts) == 0 {
			return "help", []string{"help"}
		}
	}

	switch parts[0] {
	case "-h", "--help":
		return "help", []string{"help"}
	case "-v", "--version":
		return "version", []string{"version"}
	case "st":
		parts[0] = "status"
	case "ci":
		parts[0] = "commit"
	}
	return parts[0], parts
}

// SplitArgs splits a command line on whitespace. Single and double quotes
// group words; a backslash escapes the next rune outside single quotes.
func SplitArgs(input string) []string {
	var (
		args    []string
		cur     strings.Builder
		inWord  bool
		quote   rune
		escaped bool
	)

	for _, r := range input {
		switch {
		case escaped:
			cur.WriteRune(r)
			escaped = false
		case r == '\\' && quote != '\'':
			escaped = true
			inWord = true
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				cur.WriteRune(r)
			}
		case r == '"' || r == '\'':
			quote = r
			inWord = true
		case unicode.IsSpace(r):
			if inWord {
				args = append(args, cur.String())
				cur.Reset()
				inWord = false
			}
		default:
			cur.WriteRune(r)
			inWord = true
		}
	}
	if inWord {
		args = append(args, cur.String())
	}
	return args
}
