// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/jeranaias/shellpane/internal/config"
	"github.com/jeranaias/shellpane/internal/logging"
	"github.com/jeranaias/shellpane/internal/storage"
	"github.com/jeranaias/shellpane/internal/terminal"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath string
	logFile    string
	logLevel   string
	shell      string
}

// env is what a command needs at run time.
type env struct {
	cfg    *config.Config
	logger *logging.Logger
	store  *storage.HistoryStore
}

// loadConfig reads the config file named by --config, or the default one,
// and applies flag overrides.
func loadConfig(flags *globalFlags, stderr io.Writer) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if flags.configPath != "" {
		cfg, err = config.LoadFromPath(flags.configPath)
		if err != nil {
			return nil, err
		}
	} else {
		cfg, err = config.Load()
		if cfg == nil {
			return nil, err
		}
		if err != nil {
			// Load fell back to defaults.
			fmt.Fprintln(stderr, WarningStyle.Render("Warning:"), err)
		}
	}

	if flags.shell != "" {
		cfg.Terminal.Shell = flags.shell
	}
	if flags.logFile != "" {
		cfg.Log.File = flags.logFile
	}
	if flags.logLevel != "" {
		cfg.Log.Level = flags.logLevel
		if err := cfg.Migrate(); err != nil {
			return nil, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	config.SetGlobal(cfg)
	return cfg, nil
}

// setup loads config and builds the logger. withStore also opens the
// history database when persistence is on; a store that fails to open is
// logged and left nil.
func setup(flags *globalFlags, stderr io.Writer, withStore bool) (*env, error) {
	cfg, err := loadConfig(flags, stderr)
	if err != nil {
		return nil, err
	}

	logger, err := logging.NewOrNop(logging.Config{
		Level:       cfg.Log.Level,
		File:        cfg.Log.File,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Fprintln(stderr, WarningStyle.Render("Warning:"), "logging disabled:", err)
	}

	e := &env{cfg: cfg, logger: logger}
	if withStore && cfg.Terminal.PersistHistory {
		store, err := storage.OpenHistory(cfg.Terminal.HistoryDB)
		if err != nil {
			logger.Warn("command history unavailable", zap.String("path", cfg.Terminal.HistoryDB), zap.Error(err))
		} else {
			e.store = store
		}
	}
	return e, nil
}

// Close releases the store and flushes the logger.
func (e *env) Close() {
	if e.store != nil {
		if err := e.store.Close(); err != nil {
			e.logger.Warn("closing history store", zap.Error(err))
		}
	}
	e.logger.Close()
}

// newController starts the terminal in dir with the configured shell.
func (e *env) newController(dir string) *terminal.Controller {
	opts := []terminal.Option{
		terminal.WithShell(e.cfg.Terminal.Shell),
		terminal.WithLogger(e.logger.Logger),
	}
	if e.store != nil {
		opts = append(opts, terminal.WithHistoryRecorder(e.store))
	}
	return terminal.NewController(dir, opts...)
}

// startDir picks the initial directory: the argument, then terminal.start_dir,
// then the working directory. The result is absolute and must be a directory.
func startDir(cfg *config.Config, args []string) (string, error) {
	dir := cfg.Terminal.StartDir
	if len(args) > 0 && args[0] != "" {
		dir = args[0]
	}
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get working directory: %w", err)
		}
		dir = wd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("invalid directory %q: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("invalid directory %q: %w", dir, err)
	}
	if !info.IsDir() {
		return "", &UsageError{Msg: fmt.Sprintf("%s is not a directory", abs)}
	}
	return abs, nil
}
