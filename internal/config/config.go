// Package config provides centralized configuration for the workbench.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds application-wide configuration.
type Config struct {
	Project ProjectConfig `mapstructure:"project"`
	Logging LoggingConfig `mapstructure:"logging"`
	Author  AuthorConfig  `mapstructure:"author"`
	History HistoryConfig `mapstructure:"history"`
	Server  ServerConfig  `mapstructure:"server"`
	Watcher WatcherConfig `mapstructure:"watcher"`
}

// ProjectConfig selects the repository to work on.
type ProjectConfig struct {
	Path string `mapstructure:"path"`
	Name string `mapstructure:"name"` // defaults to the base name of Path
	SCM  string `mapstructure:"scm"`  // "" detects the backend
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // console or json
}

// AuthorConfig overrides the commit identity from the repository config.
type AuthorConfig struct {
	Name  string `mapstructure:"name"`
	Email string `mapstructure:"email"`
}

type HistoryConfig struct {
	Limit int `mapstructure:"limit"` // 0 means unlimited
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

type WatcherConfig struct {
	Enabled        bool     `mapstructure:"enabled"`
	DebounceMS     int      `mapstructure:"debounce_ms"`
	IgnorePatterns []string `mapstructure:"ignore_patterns"`
}

// Addr is the listen address of the HTTP server.
func (c ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// Load reads configuration from configPath, or from workbench.yaml in the
// current directory or ~/.workbench when configPath is empty. Environment
// variables prefixed WORKBENCH_ override both, e.g. WORKBENCH_SERVER_PORT.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("workbench")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.workbench")
	}

	v.SetEnvPrefix("WORKBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error parsing config: %w", err)
	}

	if err := postProcess(&cfg); err != nil {
		return nil, err
	}
	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("project.path", "")
	v.SetDefault("project.name", "")
	v.SetDefault("project.scm", "")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")

	v.SetDefault("author.name", "")
	v.SetDefault("author.email", "")

	v.SetDefault("history.limit", 0)

	v.SetDefault("server.host", "127.0.0.1")
	v.SetDefault("server.port", 8777)

	v.SetDefault("watcher.enabled", true)
	v.SetDefault("watcher.debounce_ms", 200)
	v.SetDefault("watcher.ignore_patterns", []string{".git", "node_modules"})
}

func postProcess(cfg *Config) error {
	if cfg.Project.Path == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("failed to get current directory: %w", err)
		}
		cfg.Project.Path = cwd
	}

	absPath, err := filepath.Abs(cfg.Project.Path)
	if err != nil {
		return fmt.Errorf("failed to resolve project path: %w", err)
	}
	cfg.Project.Path = absPath

	if cfg.Project.Name == "" {
		cfg.Project.Name = filepath.Base(absPath)
	}
	cfg.Logging.Level = strings.ToLower(cfg.Logging.Level)
	cfg.Logging.Format = strings.ToLower(cfg.Logging.Format)
	return nil
}
