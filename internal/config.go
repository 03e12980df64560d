package internal

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	DefaultInterval       = 5 * time.Second
	DefaultPageSize       = 20
	DefaultSendAttempts   = 2
	DefaultRequestTimeout = 30 * time.Second
	stateDirName          = ".dm-session"
)

// Config holds client settings. Values come from the config file and are
// overridden by command line flags.
type Config struct {
	Username       string        `yaml:"username,omitempty"`
	DBPath         string        `yaml:"db_path,omitempty"`
	StateDir       string        `yaml:"state_dir,omitempty"`
	Interval       time.Duration `yaml:"interval,omitempty"`
	Persist        bool          `yaml:"persist,omitempty"`
	PageSize       int           `yaml:"page_size,omitempty"`
	SendAttempts   int           `yaml:"send_attempts,omitempty"`
	RequestTimeout time.Duration `yaml:"request_timeout,omitempty"`
}

// DefaultStateDir returns ~/.dm-session
func DefaultStateDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(homeDir, stateDirName), nil
}

// DefaultConfig returns the built-in settings rooted at stateDir
func DefaultConfig(stateDir string) Config {
	return Config{
		StateDir:       stateDir,
		DBPath:         filepath.Join(stateDir, "mailbox.db"),
		Interval:       DefaultInterval,
		PageSize:       DefaultPageSize,
		SendAttempts:   DefaultSendAttempts,
		RequestTimeout: DefaultRequestTimeout,
	}
}

// LoadConfig reads a YAML config file on top of the defaults. A missing file is not an error.
func LoadConfig(path string, defaults Config) (Config, error) {
	cfg := defaults

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		LogDebug("No config file at %s, using defaults", path)
		return cfg, nil
	}
	if err != nil {
		return cfg, &ConfigError{Key: path, Err: err}
	}

	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, &ConfigError{Key: path, Err: fmt.Errorf("failed to parse config: %w", err)}
	}

	LogDebug("Loaded config from %s", path)
	return cfg, cfg.Validate()
}

// Validate checks that every setting is usable
func (c Config) Validate() error {
	if c.Interval <= 0 {
		return &ConfigError{Key: "interval", Err: fmt.Errorf("must be positive, got %s", c.Interval)}
	}
	if c.PageSize <= 0 {
		return &ConfigError{Key: "page_size", Err: fmt.Errorf("must be positive, got %d", c.PageSize)}
	}
	if c.SendAttempts <= 0 {
		return &ConfigError{Key: "send_attempts", Err: fmt.Errorf("must be positive, got %d", c.SendAttempts)}
	}
	if c.RequestTimeout <= 0 {
		return &ConfigError{Key: "request_timeout", Err: fmt.Errorf("must be positive, got %s", c.RequestTimeout)}
	}
	if c.DBPath == "" {
		return &ConfigError{Key: "db_path", Err: errors.New("must not be empty")}
	}
	return nil
}
