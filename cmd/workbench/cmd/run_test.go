package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kurobon/workbench/internal/git"
)

func TestCommandLineRoundTrip(t *testing.T) {
	tests := [][]string{
		{"git", "status", "-s"},
		{"commit", "-m", "first commit"},
		{"commit", "-m", "it's \"quoted\""},
		{"add", `dir\file.txt`},
		{"log", "--since", ""},
	}
	for _, args := range tests {
		assert.Equal(t, args, git.SplitArgs(commandLine(args)), args)
	}
}

func TestCommandLineSingleArgument(t *testing.T) {
	assert.Equal(t, `git commit -m "a b"`, commandLine([]string{`git commit -m "a b"`}))
}
