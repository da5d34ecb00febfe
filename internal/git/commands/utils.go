package commands

import (
	"strings"

	"github.com/kurobon/workbench/internal/git"
)

// Shared utilities for commands

// save persists what a mutating verb did and reconciles once.
func save(p *git.Project) error {
	if p.State() == git.Clean {
		return nil
	}
	return p.SaveChanges()
}

// splitPaths separates flags from operands. Everything after "--" is an
// operand.
func splitPaths(args []string) (flags, operands []string) {
	for i, arg := range args {
		if arg == "--" {
			return flags, append(operands, args[i+1:]...)
		}
		if strings.HasPrefix(arg, "-") && arg != "-" {
			flags = append(flags, arg)
			continue
		}
		operands = append(operands, arg)
	}
	return flags, operands
}

func hasHelpFlag(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
	}
	return false
}

func shortID(id string) string {
	if len(id) > 7 {
		return id[:7]
	}
	return id
}

func firstLine(msg string) string {
	line, _, _ := strings.Cut(strings.TrimSpace(msg), "\n")
	return line
}
