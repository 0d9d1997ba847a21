// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// isolateHome points the config directory at a temporary home.
func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	return home
}

// =============================================================================
// GLOBAL STATE
// =============================================================================

// TestConfig_ConcurrentAccess tests that Global(), SetGlobal(), and ReloadGlobal()
// can be safely called concurrently without race conditions.
// Run with: go test -race -v ./internal/config/
func TestConfig_ConcurrentAccess(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(2)

		go func() {
			defer wg.Done()
			c := Default()
			c.UI.Theme = "dark"
			SetGlobal(c)
		}()

		go func() {
			defer wg.Done()
			if Global() == nil {
				t.Error("Global() returned nil")
			}
		}()
	}
	wg.Wait()
}

// TestConfig_ConcurrentMixedOperations tests a mix of all global operations
// happening concurrently.
func TestConfig_ConcurrentMixedOperations(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		switch i % 3 {
		case 0:
			go func() {
				defer wg.Done()
				if Global() == nil {
					t.Error("Global() returned nil")
				}
			}()
		case 1:
			go func() {
				defer wg.Done()
				c := Default()
				c.Version = "concurrent-test"
				SetGlobal(c)
			}()
		case 2:
			go func() {
				defer wg.Done()
				_ = ReloadGlobal()
			}()
		}
	}
	wg.Wait()
}

func TestConfig_GlobalInitialization(t *testing.T) {
	home := isolateHome(t)
	ResetGlobalForTesting()

	cfg := Global()
	require.NotNil(t, cfg)
	assert.Equal(t, CurrentVersion, cfg.Version)
	assert.Equal(t, filepath.Join(home, ".shellpane", "history.db"), cfg.Terminal.HistoryDB)
	assert.Equal(t, filepath.Join(home, ".shellpane", "shellpane.log"), cfg.Log.File)
}

func TestConfig_SetGlobalOverwrites(t *testing.T) {
	isolateHome(t)
	ResetGlobalForTesting()
	_ = Global()

	custom := Default()
	custom.Version = "custom-version"
	SetGlobal(custom)

	assert.Equal(t, "custom-version", Global().Version)
}

// =============================================================================
// DEFAULTS AND VALIDATION
// =============================================================================

func TestConfig_Default(t *testing.T) {
	cfg := Default()

	assert.Equal(t, DefaultTickMS, cfg.Terminal.TickMS)
	assert.True(t, cfg.Terminal.PersistHistory)
	assert.True(t, cfg.Browser.Watch)
	assert.False(t, cfg.Browser.ShowHidden)
	assert.Equal(t, "auto", cfg.UI.Theme)
	assert.Equal(t, 12, cfg.UI.TerminalHeight)
	assert.True(t, cfg.UI.ShowTerminal)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestConfig_Validate(t *testing.T) {
	isolateHome(t)

	valid := func(mutate func(c *Config)) *Config {
		c := Default()
		c.SetDefaults()
		if mutate != nil {
			mutate(c)
		}
		return c
	}

	tests := []struct {
		name    string
		config  *Config
		wantErr string
	}{
		{name: "defaults", config: valid(nil)},
		{name: "tick too fast", config: valid(func(c *Config) { c.Terminal.TickMS = 1 }), wantErr: "terminal.tick_ms"},
		{name: "tick too slow", config: valid(func(c *Config) { c.Terminal.TickMS = 5000 }), wantErr: "terminal.tick_ms"},
		{name: "start dir missing", config: valid(func(c *Config) { c.Terminal.StartDir = "/definitely/not/here" }), wantErr: "terminal.start_dir"},
		{name: "start dir exists", config: valid(func(c *Config) { c.Terminal.StartDir = os.TempDir() })},
		{name: "persist without db", config: valid(func(c *Config) { c.Terminal.HistoryDB = "" }), wantErr: "terminal.history_db"},
		{name: "no persistence needs no db", config: valid(func(c *Config) {
			c.Terminal.HistoryDB = ""
			c.Terminal.PersistHistory = false
		})},
		{name: "invalid theme", config: valid(func(c *Config) { c.UI.Theme = "neon" }), wantErr: "ui.theme"},
		{name: "terminal too short", config: valid(func(c *Config) { c.UI.TerminalHeight = 2 }), wantErr: "ui.terminal_height"},
		{name: "invalid log level", config: valid(func(c *Config) { c.Log.Level = "loud" }), wantErr: "log.level"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)

			var verrs ValidateErrors
			assert.ErrorAs(t, err, &verrs)
		})
	}
}

func TestConfig_MigrateNormalizes(t *testing.T) {
	cfg := Default()
	cfg.UI.Theme = " Dark "
	cfg.Log.Level = "WARNING"

	require.NoError(t, cfg.Migrate())
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestConfig_SetDefaultsExpandsHome(t *testing.T) {
	home := isolateHome(t)

	cfg := Default()
	cfg.Terminal.HistoryDB = "~/hist.db"
	cfg.SetDefaults()

	assert.Equal(t, filepath.Join(home, "hist.db"), cfg.Terminal.HistoryDB)
}

// =============================================================================
// FILES
// =============================================================================

func TestConfig_LoadTOMLKeepsUnsetDefaults(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(`
[terminal]
shell = "/bin/bash"
tick_ms = 50

[ui]
theme = "light"
`), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)

	assert.Equal(t, "/bin/bash", cfg.Terminal.Shell)
	assert.Equal(t, 50, cfg.Terminal.TickMS)
	assert.Equal(t, "light", cfg.UI.Theme)
	assert.True(t, cfg.Terminal.PersistHistory, "unset keys keep defaults")
	assert.True(t, cfg.Browser.Watch)
}

func TestConfig_LoadJSON(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"browser": {"show_hidden": true}}`), 0600))

	cfg, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.True(t, cfg.Browser.ShowHidden)
	assert.Equal(t, DefaultTickMS, cfg.Terminal.TickMS)
}

func TestConfig_LoadFromPathRejectsInvalid(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[ui]\ntheme = \"neon\"\n"), 0600))

	_, err := LoadFromPath(path)
	assert.ErrorContains(t, err, "ui.theme")
}

func TestConfig_LoadWithoutFiles(t *testing.T) {
	isolateHome(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "auto", cfg.UI.Theme)
}

func TestConfig_LoadBrokenFileFallsBack(t *testing.T) {
	home := isolateHome(t)
	require.NoError(t, os.MkdirAll(filepath.Join(home, ".shellpane"), 0700))
	require.NoError(t, os.WriteFile(filepath.Join(home, ".shellpane", "config.toml"), []byte("[ui\n"), 0600))

	cfg, err := Load()
	assert.Error(t, err)
	require.NotNil(t, cfg, "defaults are still returned")
	assert.Equal(t, "auto", cfg.UI.Theme)
}

func TestConfig_SaveRoundTrip(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg := Default()
	cfg.SetDefaults()
	cfg.Terminal.Shell = "/usr/bin/zsh"
	cfg.UI.TerminalHeight = 20
	require.NoError(t, SaveTOML(cfg, path))

	info, err := os.Stat(path)
	require.NoError(t, err)
	if os.PathSeparator == '/' {
		assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
	}

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.Equal(t, "/usr/bin/zsh", loaded.Terminal.Shell)
	assert.Equal(t, 20, loaded.UI.TerminalHeight)
}

func TestConfig_SaveJSON(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.SetDefaults()
	cfg.Browser.ShowHidden = true
	require.NoError(t, SaveJSON(cfg, path))

	loaded, err := LoadFromPath(path)
	require.NoError(t, err)
	assert.True(t, loaded.Browser.ShowHidden)
}

// =============================================================================
// ENVIRONMENT
// =============================================================================

func TestConfig_ApplyEnvOverrides(t *testing.T) {
	t.Setenv("SHELLPANE_SHELL", "/bin/dash")
	t.Setenv("SHELLPANE_THEME", "dark")
	t.Setenv("SHELLPANE_LOG_LEVEL", "debug")
	t.Setenv("SHELLPANE_LOG_FILE", "/tmp/sp.log")
	t.Setenv("SHELLPANE_HISTORY_DB", "/tmp/sp.db")
	t.Setenv("SHELLPANE_PERSIST_HISTORY", "false")
	t.Setenv("SHELLPANE_START_DIR", "/tmp")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnvOverrides())

	assert.Equal(t, "/bin/dash", cfg.Terminal.Shell)
	assert.Equal(t, "dark", cfg.UI.Theme)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "/tmp/sp.log", cfg.Log.File)
	assert.Equal(t, "/tmp/sp.db", cfg.Terminal.HistoryDB)
	assert.False(t, cfg.Terminal.PersistHistory)
	assert.Equal(t, "/tmp", cfg.Terminal.StartDir)
}

func TestConfig_EnvIgnoresUnprefixed(t *testing.T) {
	t.Setenv("SHELL", "/bin/should-not-be-used")
	t.Setenv("THEME", "light")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnvOverrides())

	assert.Empty(t, cfg.Terminal.Shell)
	assert.Equal(t, "auto", cfg.UI.Theme)
}

func TestConfig_EnvInvalidBool(t *testing.T) {
	t.Setenv("SHELLPANE_PERSIST_HISTORY", "maybe")

	cfg := Default()
	assert.Error(t, cfg.ApplyEnvOverrides())
}

// =============================================================================
// DOT NOTATION
// =============================================================================

func TestConfig_GetSet(t *testing.T) {
	cfg := Default()

	val, err := cfg.Get("terminal.tick_ms")
	require.NoError(t, err)
	assert.Equal(t, DefaultTickMS, val)

	require.NoError(t, cfg.Set("ui.theme", "light"))
	assert.Equal(t, "light", cfg.UI.Theme)

	require.NoError(t, cfg.Set("terminal.tick_ms", "100"))
	assert.Equal(t, 100, cfg.Terminal.TickMS)

	require.NoError(t, cfg.Set("browser.show_hidden", "true"))
	assert.True(t, cfg.Browser.ShowHidden)

	require.NoError(t, cfg.Set("terminal.history_db", "/x.db"))
	assert.Equal(t, "/x.db", cfg.Terminal.HistoryDB)

	assert.Error(t, cfg.Set("terminal.tick_ms", "fast"))
	assert.Error(t, cfg.Set("browser.watch", "perhaps"))

	_, err = cfg.Get("invalid.key")
	assert.Error(t, err)
	_, err = cfg.Get("ui.theme.extra")
	assert.Error(t, err)
	_, err = cfg.Get("")
	assert.Error(t, err)
}

func TestConfig_AllKeysResolve(t *testing.T) {
	cfg := Default()
	for _, key := range GetAllKeys() {
		_, err := cfg.Get(key)
		assert.NoError(t, err, key)
	}
}

func TestConfig_Clone(t *testing.T) {
	original := Default()
	clone := original.Clone()
	clone.UI.Theme = "dark"

	assert.Equal(t, "auto", original.UI.Theme)
	assert.Equal(t, "dark", clone.UI.Theme)
}
