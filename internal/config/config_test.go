package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "workbench.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadDefaults(t *testing.T) {
	repo := t.TempDir()
	path := writeConfig(t, "project:\n  path: "+repo+"\n")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, repo, cfg.Project.Path)
	assert.Equal(t, filepath.Base(repo), cfg.Project.Name)
	assert.Empty(t, cfg.Project.SCM)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 0, cfg.History.Limit)
	assert.Equal(t, "127.0.0.1:8777", cfg.Server.Addr())
	assert.True(t, cfg.Watcher.Enabled)
	assert.Equal(t, 200, cfg.Watcher.DebounceMS)
	assert.Contains(t, cfg.Watcher.IgnorePatterns, ".git")
}

func TestLoadFile(t *testing.T) {
	repo := t.TempDir()
	path := writeConfig(t, `
project:
  path: `+repo+`
  name: demo
  scm: git
logging:
  level: DEBUG
  format: json
author:
  name: Ada
  email: ada@example.com
history:
  limit: 50
server:
  port: 9000
watcher:
  enabled: false
  debounce_ms: 50
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "demo", cfg.Project.Name)
	assert.Equal(t, "git", cfg.Project.SCM)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, "Ada", cfg.Author.Name)
	assert.Equal(t, "ada@example.com", cfg.Author.Email)
	assert.Equal(t, 50, cfg.History.Limit)
	assert.Equal(t, 9000, cfg.Server.Port)
	assert.False(t, cfg.Watcher.Enabled)
	assert.Equal(t, 50, cfg.Watcher.DebounceMS)
}

func TestLoadEnvOverride(t *testing.T) {
	repo := t.TempDir()
	path := writeConfig(t, "project:\n  path: "+repo+"\n")
	t.Setenv("WORKBENCH_SERVER_PORT", "9100")
	t.Setenv("WORKBENCH_HISTORY_LIMIT", "7")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 9100, cfg.Server.Port)
	assert.Equal(t, 7, cfg.History.Limit)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func(t *testing.T) *Config {
		return &Config{
			Project: ProjectConfig{Path: t.TempDir()},
			Logging: LoggingConfig{Level: "info", Format: "console"},
			Server:  ServerConfig{Host: "127.0.0.1", Port: 8777},
			Watcher: WatcherConfig{DebounceMS: 100},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
		errMsg string
	}{
		{"valid", func(*Config) {}, ""},
		{"missing path", func(c *Config) { c.Project.Path = filepath.Join(c.Project.Path, "gone") }, "does not exist"},
		{"bad level", func(c *Config) { c.Logging.Level = "loud" }, "logging.level"},
		{"bad format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
		{"negative limit", func(c *Config) { c.History.Limit = -1 }, "history.limit"},
		{"bad port", func(c *Config) { c.Server.Port = 0 }, "server.port"},
		{"empty host", func(c *Config) { c.Server.Host = "" }, "server.host"},
		{"negative debounce", func(c *Config) { c.Watcher.DebounceMS = -1 }, "cannot be negative"},
		{"huge debounce", func(c *Config) { c.Watcher.DebounceMS = 20000 }, "cannot exceed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid(t)
			tt.mutate(cfg)
			err := Validate(cfg)
			if tt.errMsg == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.errMsg)
		})
	}
}

func TestValidateFileAsProject(t *testing.T) {
	file := filepath.Join(t.TempDir(), "f")
	require.NoError(t, os.WriteFile(file, nil, 0644))

	cfg := &Config{Project: ProjectConfig{Path: file}}
	assert.ErrorContains(t, Validate(cfg), "not a directory")
}
