package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/aish-cli/aish/pkg/credential"
	"github.com/aish-cli/aish/pkg/logging"
	"github.com/aish-cli/aish/pkg/query"
	"github.com/aish-cli/aish/pkg/shell"
)

// DefaultPath is the config file read when --config is not given.
const DefaultPath = "~/.aish.yaml"

// DefaultEnvFile is the dotenv file read when env_file is not set.
const DefaultEnvFile = "~/.aish.env"

// Config holds all aish configuration.
type Config struct {
	Endpoint  string         `yaml:"endpoint"`
	Model     string         `yaml:"model"`
	APIKeyEnv string         `yaml:"api_key_env"`
	EnvFile   string         `yaml:"env_file"`
	CacheDir  string         `yaml:"cache_dir"`
	Shell     string         `yaml:"shell"`
	Log       logging.Config `yaml:"log"`
	History   HistoryConfig  `yaml:"history"`
}

// HistoryConfig controls the invocation history log.
type HistoryConfig struct {
	Enabled bool   `yaml:"enabled"`
	DBPath  string `yaml:"db_path"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Endpoint:  query.DefaultEndpoint,
		Model:     query.DefaultModel,
		APIKeyEnv: credential.DefaultEnv,
		EnvFile:   DefaultEnvFile,
		Shell:     shell.DefaultShell,
		Log: logging.Config{
			Level:  "warn",
			Format: logging.FormatConsole,
		},
		History: HistoryConfig{
			Enabled: false,
			DBPath:  "~/.aish-history.db",
		},
	}
}

// Load reads a YAML config file and expands environment variables.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	expanded := os.ExpandEnv(string(data))

	cfg := Default()
	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// LoadOptional is Load, except that a missing file yields Default().
func LoadOptional(path string) (*Config, error) {
	cfg, err := Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	return cfg, err
}

// Validate reports the first unusable setting.
func (c *Config) Validate() error {
	switch {
	case c.Endpoint == "":
		return errors.New("endpoint is empty")
	case c.Model == "":
		return errors.New("model is empty")
	case c.APIKeyEnv == "":
		return errors.New("api_key_env is empty")
	case c.Shell == "":
		return errors.New("shell is empty")
	case c.History.Enabled && c.History.DBPath == "":
		return errors.New("history.db_path is empty")
	}
	switch c.Log.Format {
	case logging.FormatConsole, logging.FormatJSON:
	default:
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	return nil
}

// ExpandHome replaces a leading "~" in path with the user's home directory.
func ExpandHome(path string) (string, error) {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", path, err)
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~")), nil
}
