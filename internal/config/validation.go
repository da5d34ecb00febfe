package config

import (
	"fmt"
	"os"
	"slices"
)

var (
	validLevels  = []string{"trace", "debug", "info", "warn", "error", "fatal", "panic", "disabled"}
	validFormats = []string{"console", "json"}
)

// Validate validates the configuration.
func Validate(cfg *Config) error {
	if err := validateProject(&cfg.Project); err != nil {
		return err
	}
	if err := validateLogging(&cfg.Logging); err != nil {
		return err
	}
	if cfg.History.Limit < 0 {
		return fmt.Errorf("history.limit cannot be negative")
	}
	if err := validateServer(&cfg.Server); err != nil {
		return err
	}
	return validateWatcher(&cfg.Watcher)
}

func validateProject(cfg *ProjectConfig) error {
	info, err := os.Stat(cfg.Path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("project.path does not exist: %s", cfg.Path)
		}
		return fmt.Errorf("error accessing project.path: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("project.path is not a directory: %s", cfg.Path)
	}
	return nil
}

func validateLogging(cfg *LoggingConfig) error {
	if !slices.Contains(validLevels, cfg.Level) {
		return fmt.Errorf("logging.level must be one of %v", validLevels)
	}
	if !slices.Contains(validFormats, cfg.Format) {
		return fmt.Errorf("logging.format must be one of %v", validFormats)
	}
	return nil
}

func validateServer(cfg *ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535")
	}
	if cfg.Host == "" {
		return fmt.Errorf("server.host cannot be empty")
	}
	return nil
}

func validateWatcher(cfg *WatcherConfig) error {
	if cfg.DebounceMS < 0 {
		return fmt.Errorf("watcher.debounce_ms cannot be negative")
	}
	if cfg.DebounceMS > 10000 {
		return fmt.Errorf("watcher.debounce_ms cannot exceed 10000ms")
	}
	return nil
}
