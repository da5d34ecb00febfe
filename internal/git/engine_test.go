package git

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseCommand(t *testing.T) {
	tests := []struct {
		input        string
		expectedName string
		expectedArgs []string
	}{
		{"git status", "status", []string{"status"}},
		{"status -s", "status", []string{"status", "-s"}},
		{"git st", "status", []string{"status"}},
		{"git commit -m 'msg'", "commit", []string{"commit", "-m", "msg"}},
		{`git commit -m "first commit"`, "commit", []string{"commit", "-m", "first commit"}},
		{"ci -m x", "commit", []string{"commit", "-m", "x"}},
		{"git --version", "version", []string{"version"}},
		{"git -v", "version", []string{"version"}},
		{"git --help", "help", []string{"help"}},
		{"git -h", "help", []string{"help"}},
		{"--version", "version", []string{"version"}},
		{"git", "help", []string{"help"}},
		{"", "", nil},
		{"   ", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, args := ParseCommand(tt.input)
			assert.Equal(t, tt.expectedName, name)
			assert.Equal(t, tt.expectedArgs, args)
		})
	}
}

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{`a b  c`, []string{"a", "b", "c"}},
		{`mv "my file.txt" other`, []string{"mv", "my file.txt", "other"}},
		{`add my\ file`, []string{"add", "my file"}},
		{`commit -m 'it''s'`, []string{"commit", "-m", "its"}},
		{`commit -m ''`, []string{"commit", "-m", ""}},
		{`'a\b'`, []string{`a\b`}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitArgs(tt.input))
		})
	}
}

func TestDispatchUnknownCommand(t *testing.T) {
	p := newTestProject(t)
	_, err := Dispatch(t.Context(), p.Project, "frobnicate", []string{"frobnicate"})
	assert.ErrorContains(t, err, "'frobnicate' is not a recognized command")

	_, err = GetCommandHelp("frobnicate")
	assert.Error(t, err)
}
