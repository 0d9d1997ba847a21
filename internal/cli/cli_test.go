// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/shellpane/internal/config"
	"github.com/jeranaias/shellpane/internal/storage"
)

// =============================================================================
// HELPERS
// =============================================================================

func isolateHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("USERPROFILE", home)
	config.ResetGlobalForTesting()
	t.Cleanup(config.ResetGlobalForTesting)
	return home
}

func runCmd(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetArgs(args)
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	err := cmd.ExecuteContext(context.Background())
	return stdout.String(), stderr.String(), err
}

// writeConfig writes a TOML config that keeps the history database in a temp dir.
func writeConfig(t *testing.T, persist bool) (cfgPath, dbPath string) {
	t.Helper()
	dir := t.TempDir()
	cfgPath = filepath.Join(dir, "config.toml")
	dbPath = filepath.Join(dir, "history.db")
	body := fmt.Sprintf("[terminal]\npersist_history = %t\nhistory_db = '%s'\n\n[log]\nfile = '%s'\n",
		persist, dbPath, filepath.Join(dir, "shellpane.log"))
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))
	return cfgPath, dbPath
}

// =============================================================================
// ROOT AND VERSION
// =============================================================================

func TestVersionCmd(t *testing.T) {
	out, _, err := runCmd(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "shellpane "+Version)
}

func TestRootCmd_RefusesWithoutTerminal(t *testing.T) {
	if CanRunTUI() {
		t.Skip("tests are attached to a terminal")
	}
	isolateHome(t)

	_, _, err := runCmd(t)
	require.ErrorIs(t, err, ErrNotTerminal)
	assert.Equal(t, ExitNotTerminal, ExitCode(err))
}

func TestRootCmd_TooManyArgs(t *testing.T) {
	_, _, err := runCmd(t, "a", "b")
	assert.Error(t, err)
}

func TestExitCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"nil", nil, ExitSuccess},
		{"usage", &UsageError{Msg: "bad"}, ExitUsageError},
		{"wrapped usage", fmt.Errorf("x: %w", &UsageError{Msg: "bad"}), ExitUsageError},
		{"not a terminal", ErrNotTerminal, ExitNotTerminal},
		{"invalid config", fmt.Errorf("invalid config: %w", config.ValidateErrors{{Field: "ui.theme", Message: "bad"}}), ExitConfigError},
		{"other", errors.New("boom"), ExitGeneralError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExitCode(tt.err))
		})
	}
}

// =============================================================================
// START DIRECTORY
// =============================================================================

func TestStartDir(t *testing.T) {
	cfg := config.Default()
	root := t.TempDir()

	dir, err := startDir(cfg, []string{root})
	require.NoError(t, err)
	assert.Equal(t, root, dir)

	cfg.Terminal.StartDir = root
	dir, err = startDir(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, root, dir)

	cfg.Terminal.StartDir = ""
	wd, err := os.Getwd()
	require.NoError(t, err)
	dir, err = startDir(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, wd, dir)

	file := filepath.Join(root, "file.txt")
	require.NoError(t, os.WriteFile(file, nil, 0o600))
	_, err = startDir(cfg, []string{file})
	var usage *UsageError
	assert.ErrorAs(t, err, &usage)

	_, err = startDir(cfg, []string{filepath.Join(root, "missing")})
	assert.Error(t, err)
}

// =============================================================================
// CONFIG COMMANDS
// =============================================================================

func TestConfigCmds(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "shellpane.toml")

	out, _, err := runCmd(t, "config", "init", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, path)
	assert.FileExists(t, path)

	_, _, err = runCmd(t, "config", "init", "--config", path)
	assert.Equal(t, ExitUsageError, ExitCode(err), "init refuses to overwrite")

	_, _, err = runCmd(t, "config", "init", "--config", path, "--force")
	require.NoError(t, err)

	out, _, err = runCmd(t, "config", "set", "ui.theme", "light", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, "ui.theme = light")

	out, _, err = runCmd(t, "config", "get", "ui.theme", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, "light\n", out)

	out, _, err = runCmd(t, "config", "show", "--config", path)
	require.NoError(t, err)
	assert.Contains(t, out, `"theme": "light"`)

	out, _, err = runCmd(t, "config", "path", "--config", path)
	require.NoError(t, err)
	assert.Equal(t, path+"\n", out)
}

func TestConfigSet_Rejects(t *testing.T) {
	isolateHome(t)
	path := filepath.Join(t.TempDir(), "shellpane.toml")

	_, _, err := runCmd(t, "config", "set", "ui.nope", "x", "--config", path)
	assert.Equal(t, ExitUsageError, ExitCode(err))

	_, _, err = runCmd(t, "config", "set", "ui.theme", "purple", "--config", path)
	assert.Equal(t, ExitConfigError, ExitCode(err))
	assert.NoFileExists(t, path, "invalid values are not written")

	_, _, err = runCmd(t, "config", "set", "terminal.tick_ms", "fast", "--config", path)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestConfigGet_Flags(t *testing.T) {
	isolateHome(t)
	path, _ := writeConfig(t, true)

	out, _, err := runCmd(t, "config", "get", "terminal.shell", "--config", path, "--shell", "/bin/zsh")
	require.NoError(t, err)
	assert.Equal(t, "/bin/zsh\n", out, "flags override the file")

	_, _, err = runCmd(t, "config", "show", "--config", path, "--log-level", "loud")
	assert.Equal(t, ExitConfigError, ExitCode(err))
}

// =============================================================================
// HISTORY COMMANDS
// =============================================================================

func TestHistoryCmds(t *testing.T) {
	isolateHome(t)
	cfgPath, dbPath := writeConfig(t, true)

	store, err := storage.OpenHistory(dbPath)
	require.NoError(t, err)
	ctx := context.Background()
	for _, c := range []string{"make build", "git status", "make test"} {
		require.NoError(t, store.RecordCommand(ctx, c, "/src", "s1"))
	}
	require.NoError(t, store.Close())

	out, _, err := runCmd(t, "history", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "make build")
	assert.Contains(t, out, "git status")

	out, _, err = runCmd(t, "history", "-n", "1", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "make test")
	assert.NotContains(t, out, "git status")

	out, _, err = runCmd(t, "history", "search", "make", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "make build")
	assert.NotContains(t, out, "git status")

	out, _, err = runCmd(t, "history", "prune", "--keep", "1", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Removed 2 commands")

	_, _, err = runCmd(t, "history", "prune", "--keep", "-1", "--config", cfgPath)
	assert.Equal(t, ExitUsageError, ExitCode(err))
}

func TestHistoryCmds_Empty(t *testing.T) {
	isolateHome(t)
	cfgPath, _ := writeConfig(t, true)

	out, _, err := runCmd(t, "history", "--config", cfgPath)
	require.NoError(t, err)
	assert.Contains(t, out, "No commands recorded.")
}

func TestHistoryCmds_Disabled(t *testing.T) {
	isolateHome(t)
	cfgPath, _ := writeConfig(t, false)

	_, _, err := runCmd(t, "history", "--config", cfgPath)
	assert.ErrorIs(t, err, ErrHistoryDisabled)
}
