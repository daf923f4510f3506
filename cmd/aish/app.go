package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"github.com/aish-cli/aish/pkg/cache/jsonfile"
	"github.com/aish-cli/aish/pkg/config"
	"github.com/aish-cli/aish/pkg/history"
	"github.com/aish-cli/aish/pkg/logging"
)

// app is the per-invocation state shared by subcommands.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
}

// loadApp reads the config, builds the logger and loads the optional
// dotenv file. Variables already set in the environment win. Without a
// home directory the default config and dotenv files are skipped.
func loadApp(opts *rootOptions, stderr io.Writer) (*app, error) {
	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return nil, err
	}
	if opts.debug {
		cfg.Log.Level = "debug"
	}

	logger := logging.New(cfg.Log, stderr)

	if cfg.EnvFile != "" {
		envPath, err := config.ExpandHome(cfg.EnvFile)
		switch {
		case err != nil && cfg.EnvFile == config.DefaultEnvFile:
			logger.Debug().Err(err).Msg("skipping default env file")
		case err != nil:
			return nil, err
		default:
			if err := loadEnvFile(envPath, logger); err != nil {
				return nil, err
			}
		}
	}

	return &app{cfg: cfg, logger: logger}, nil
}

func loadConfig(configPath string) (*config.Config, error) {
	path, err := config.ExpandHome(configPath)
	if err != nil {
		if configPath == config.DefaultPath {
			return config.Default(), nil
		}
		return nil, err
	}
	return config.LoadOptional(path)
}

func loadEnvFile(envPath string, logger zerolog.Logger) error {
	if err := godotenv.Load(envPath); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("load env file %s: %w", envPath, err)
	}
	logger.Debug().Str("path", envPath).Msg("loaded env file")
	return nil
}

func (a *app) openCache() (*jsonfile.Cache, error) {
	if a.cfg.CacheDir == "" {
		return jsonfile.NewHome()
	}
	dir, err := config.ExpandHome(a.cfg.CacheDir)
	if err != nil {
		return nil, err
	}
	return jsonfile.New(dir), nil
}

func (a *app) openHistory() (*history.Log, func(), error) {
	if !a.cfg.History.Enabled {
		return nil, nil, errors.New("history is disabled; set history.enabled: true in the config file")
	}
	path, err := config.ExpandHome(a.cfg.History.DBPath)
	if err != nil {
		return nil, nil, err
	}
	h, err := history.New(path)
	if err != nil {
		return nil, nil, err
	}
	return h, func() { _ = h.Close() }, nil
}
