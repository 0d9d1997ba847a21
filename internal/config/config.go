// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strconv"
	"strings"
	"sync"

	"github.com/BurntSushi/toml"
	"github.com/kelseyhightower/envconfig"

	"github.com/jeranaias/shellpane/internal/util"
)

// CurrentVersion is written into new config files.
const CurrentVersion = "1"

// EnvPrefix prefixes every environment override.
const EnvPrefix = "SHELLPANE"

// Tick interval bounds in milliseconds.
const (
	MinTickMS     = 10
	MaxTickMS     = 1000
	DefaultTickMS = 33
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete shellpane configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	Terminal TerminalConfig `toml:"terminal" json:"terminal"`
	Browser  BrowserConfig  `toml:"browser" json:"browser"`
	UI       UIConfig       `toml:"ui" json:"ui"`
	Log      LogConfig      `toml:"log" json:"log"`
}

// TerminalConfig controls the embedded shell.
type TerminalConfig struct {
	// Shell executable. Empty means $SHELL (or %COMSPEC%), then the platform default.
	Shell string `toml:"shell" json:"shell"`

	// StartDir is the initial directory. Empty means the process working directory.
	StartDir string `toml:"start_dir" json:"start_dir"`

	// TickMS is how often the UI drains shell output.
	TickMS int `toml:"tick_ms" json:"tick_ms"`

	// PersistHistory keeps submitted commands in HistoryDB across runs.
	PersistHistory bool   `toml:"persist_history" json:"persist_history"`
	HistoryDB      string `toml:"history_db" json:"history_db"`
}

// BrowserConfig controls the directory browser.
type BrowserConfig struct {
	ShowHidden bool `toml:"show_hidden" json:"show_hidden"`
	Watch      bool `toml:"watch" json:"watch"`
}

// UIConfig controls layout and colours.
type UIConfig struct {
	Theme          string `toml:"theme" json:"theme"` // dark, light or auto
	TerminalHeight int    `toml:"terminal_height" json:"terminal_height"`
	ShowTerminal   bool   `toml:"show_terminal" json:"show_terminal"`
}

// LogConfig controls the log file.
type LogConfig struct {
	Level       string `toml:"level" json:"level"`
	File        string `toml:"file" json:"file"`
	Development bool   `toml:"development" json:"development"`
}

// Default returns the built-in configuration. Paths under the config
// directory are left empty and resolved by SetDefaults.
func Default() *Config {
	return &Config{
		Version: CurrentVersion,
		Terminal: TerminalConfig{
			TickMS:         DefaultTickMS,
			PersistHistory: true,
		},
		Browser: BrowserConfig{
			ShowHidden: false,
			Watch:      true,
		},
		UI: UIConfig{
			Theme:          "auto",
			TerminalHeight: 12,
			ShowTerminal:   true,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// =============================================================================
// CONFIG PATH HELPERS
// =============================================================================

// ConfigDir returns the shellpane configuration directory path.
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".shellpane"), nil
}

// ConfigPathTOML returns the path to the TOML config file.
func ConfigPathTOML() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// ConfigPathJSON returns the path to the JSON config file.
func ConfigPathJSON() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// EnsureConfigDir ensures the config directory exists.
func EnsureConfigDir() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0700)
}

// =============================================================================
// LOAD FUNCTIONS
// =============================================================================

// Load loads configuration from the config file(s).
// Tries TOML first, then JSON, and falls back to defaults.
// Environment overrides are applied last.
//
// A file that fails to parse does not stop startup: the defaults are returned
// together with the parse error.
func Load() (*Config, error) {
	var loadErr error

	if tomlPath, err := ConfigPathTOML(); err == nil && fileExists(tomlPath) {
		cfg := Default()
		if err := LoadTOML(cfg, tomlPath); err != nil {
			loadErr = fmt.Errorf("failed to load TOML config: %w", err)
		} else {
			return finish(cfg)
		}
	}

	if jsonPath, err := ConfigPathJSON(); err == nil && fileExists(jsonPath) {
		cfg := Default()
		if err := LoadJSON(cfg, jsonPath); err != nil {
			loadErr = errors.Join(loadErr, fmt.Errorf("failed to load JSON config: %w", err))
		} else {
			return finish(cfg)
		}
	}

	cfg, err := finish(Default())
	if err != nil {
		return nil, err
	}
	return cfg, loadErr
}

// LoadTOML decodes a TOML file over cfg. Keys missing from the file keep their value.
func LoadTOML(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return fmt.Errorf("failed to decode TOML file: %w", err)
	}
	return nil
}

// LoadJSON decodes a JSON file over cfg. Keys missing from the file keep their value.
func LoadJSON(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read JSON file: %w", err)
	}
	if err := json.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("failed to decode JSON file: %w", err)
	}
	return nil
}

// LoadFromPath loads configuration from a specific file path with full validation.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if strings.HasSuffix(path, ".json") {
		if err := LoadJSON(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load JSON config from %s: %w", path, err)
		}
	} else {
		if err := LoadTOML(cfg, path); err != nil {
			return nil, fmt.Errorf("failed to load TOML config from %s: %w", path, err)
		}
	}

	return finish(cfg)
}

// finish applies environment overrides, migration, defaults and validation.
func finish(cfg *Config) (*Config, error) {
	if err := cfg.ApplyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.Migrate(); err != nil {
		return nil, fmt.Errorf("config migration failed: %w", err)
	}
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// =============================================================================
// SAVE FUNCTIONS
// =============================================================================

// Save saves the configuration to the default TOML file.
func Save(cfg *Config) error {
	path, err := ConfigPathTOML()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration as TOML with a short header.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	var b strings.Builder
	b.WriteString("# shellpane configuration file\n")
	b.WriteString("# Environment variables prefixed with SHELLPANE_ override these values.\n\n")

	if err := toml.NewEncoder(&b).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, []byte(b.String()), 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// SaveJSON writes the configuration as indented JSON.
func SaveJSON(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := util.AtomicWriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// =============================================================================
// VALIDATION
// =============================================================================

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	msgs := make([]string, 0, len(e))
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

var (
	validThemes    = map[string]bool{"dark": true, "light": true, "auto": true}
	validLogLevels = map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
)

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Terminal.TickMS < MinTickMS || c.Terminal.TickMS > MaxTickMS {
		errs = append(errs, ValidationError{
			Field:   "terminal.tick_ms",
			Message: fmt.Sprintf("must be between %d and %d, got %d", MinTickMS, MaxTickMS, c.Terminal.TickMS),
		})
	}

	if c.Terminal.StartDir != "" {
		info, err := os.Stat(c.Terminal.StartDir)
		if err != nil || !info.IsDir() {
			errs = append(errs, ValidationError{
				Field:   "terminal.start_dir",
				Message: fmt.Sprintf("'%s' is not a directory", c.Terminal.StartDir),
			})
		}
	}

	if c.Terminal.PersistHistory && c.Terminal.HistoryDB == "" {
		errs = append(errs, ValidationError{
			Field:   "terminal.history_db",
			Message: "required when persist_history is enabled",
		})
	}

	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if c.UI.TerminalHeight < 3 {
		errs = append(errs, ValidationError{
			Field:   "ui.terminal_height",
			Message: fmt.Sprintf("must be at least 3 rows, got %d", c.UI.TerminalHeight),
		})
	}

	if !validLogLevels[strings.ToLower(c.Log.Level)] {
		errs = append(errs, ValidationError{
			Field:   "log.level",
			Message: fmt.Sprintf("invalid level '%s', must be one of: debug, info, warn, error", c.Log.Level),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// SetDefaults fills zero values that have a sensible default, including the
// paths that live under the config directory.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.Terminal.TickMS == 0 {
		c.Terminal.TickMS = defaults.Terminal.TickMS
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
	if c.UI.TerminalHeight == 0 {
		c.UI.TerminalHeight = defaults.UI.TerminalHeight
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}

	if dir, err := ConfigDir(); err == nil {
		if c.Terminal.HistoryDB == "" {
			c.Terminal.HistoryDB = filepath.Join(dir, "history.db")
		}
		if c.Log.File == "" {
			c.Log.File = filepath.Join(dir, "shellpane.log")
		}
	} else if c.Terminal.HistoryDB == "" {
		// nowhere to keep it
		c.Terminal.PersistHistory = false
	}

	c.Terminal.HistoryDB = expandHome(c.Terminal.HistoryDB)
	c.Terminal.StartDir = expandHome(c.Terminal.StartDir)
	c.Log.File = expandHome(c.Log.File)
}

// Migrate normalizes values written by older versions.
func (c *Config) Migrate() error {
	c.UI.Theme = strings.ToLower(strings.TrimSpace(c.UI.Theme))
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "warning" {
		c.Log.Level = "warn"
	}
	return nil
}

// expandHome replaces a leading ~ with the user's home directory.
func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

// =============================================================================
// ENVIRONMENT OVERRIDES
// =============================================================================

// envOverrides holds values read from SHELLPANE_* variables. Nil means unset.
// Keys come from split_words so that unprefixed variables such as SHELL are never consulted.
type envOverrides struct {
	Shell          *string `split_words:"true"`
	StartDir       *string `split_words:"true"`
	Theme          *string `split_words:"true"`
	LogLevel       *string `split_words:"true"`
	LogFile        *string `split_words:"true"`
	HistoryDB      *string `split_words:"true"`
	PersistHistory *bool   `split_words:"true"`
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - SHELLPANE_SHELL: overrides terminal.shell
//   - SHELLPANE_START_DIR: overrides terminal.start_dir
//   - SHELLPANE_THEME: overrides ui.theme
//   - SHELLPANE_LOG_LEVEL: overrides log.level
//   - SHELLPANE_LOG_FILE: overrides log.file
//   - SHELLPANE_HISTORY_DB: overrides terminal.history_db
//   - SHELLPANE_PERSIST_HISTORY: overrides terminal.persist_history
func (c *Config) ApplyEnvOverrides() error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return fmt.Errorf("invalid environment override: %w", err)
	}

	if env.Shell != nil {
		c.Terminal.Shell = *env.Shell
	}
	if env.StartDir != nil {
		c.Terminal.StartDir = *env.StartDir
	}
	if env.Theme != nil {
		c.UI.Theme = *env.Theme
	}
	if env.LogLevel != nil {
		c.Log.Level = *env.LogLevel
	}
	if env.LogFile != nil {
		c.Log.File = *env.LogFile
	}
	if env.HistoryDB != nil {
		c.Terminal.HistoryDB = *env.HistoryDB
	}
	if env.PersistHistory != nil {
		c.Terminal.PersistHistory = *env.PersistHistory
	}
	return nil
}

// =============================================================================
// GET/SET HELPERS (DOT NOTATION)
// =============================================================================

// Get retrieves a configuration value using dot notation (e.g., "terminal.tick_ms").
func (c *Config) Get(key string) (interface{}, error) {
	field, err := c.lookup(key)
	if err != nil {
		return nil, err
	}
	return field.Interface(), nil
}

// Set sets a configuration value using dot notation (e.g., "ui.theme").
// String values are converted to the field's type.
func (c *Config) Set(key string, value interface{}) error {
	field, err := c.lookup(key)
	if err != nil {
		return err
	}
	if !field.CanSet() {
		return fmt.Errorf("cannot set field: %s", key)
	}
	return setFieldValue(field, value)
}

func (c *Config) lookup(key string) (reflect.Value, error) {
	if key == "" {
		return reflect.Value{}, errors.New("empty key")
	}
	parts := strings.Split(key, ".")

	v := reflect.ValueOf(c).Elem()
	for i, part := range parts {
		fieldName := normalizeFieldName(part)
		field := v.FieldByNameFunc(func(name string) bool {
			return strings.EqualFold(name, fieldName)
		})
		if !field.IsValid() {
			return reflect.Value{}, fmt.Errorf("unknown field: %s", strings.Join(parts[:i+1], "."))
		}

		if i == len(parts)-1 {
			return field, nil
		}
		if field.Kind() != reflect.Struct {
			return reflect.Value{}, fmt.Errorf("field '%s' is not a struct", strings.Join(parts[:i+1], "."))
		}
		v = field
	}
	return reflect.Value{}, fmt.Errorf("invalid key: %s", key)
}

// normalizeFieldName converts a snake_case or kebab-case name to its Go field equivalent.
func normalizeFieldName(name string) string {
	parts := strings.FieldsFunc(name, func(r rune) bool {
		return r == '_' || r == '-'
	})

	var result strings.Builder
	for _, part := range parts {
		result.WriteString(strings.ToUpper(part[:1]))
		result.WriteString(strings.ToLower(part[1:]))
	}
	return result.String()
}

// setFieldValue sets a reflect.Value from an interface{} value with type conversion.
func setFieldValue(field reflect.Value, value interface{}) error {
	if strVal, ok := value.(string); ok {
		switch field.Kind() {
		case reflect.String:
			field.SetString(strVal)
			return nil
		case reflect.Int, reflect.Int64:
			intVal, err := strconv.ParseInt(strVal, 10, 64)
			if err != nil {
				return fmt.Errorf("invalid integer value: %v", err)
			}
			field.SetInt(intVal)
			return nil
		case reflect.Bool:
			boolVal, err := strconv.ParseBool(strVal)
			if err != nil {
				return fmt.Errorf("invalid boolean value: %v", err)
			}
			field.SetBool(boolVal)
			return nil
		}
	}

	val := reflect.ValueOf(value)
	if val.Type().AssignableTo(field.Type()) {
		field.Set(val)
		return nil
	}
	if val.Type().ConvertibleTo(field.Type()) && val.Kind() != reflect.String {
		field.Set(val.Convert(field.Type()))
		return nil
	}
	return fmt.Errorf("cannot assign %T to %s", value, field.Type())
}

// GetAllKeys returns all configuration keys in dot notation.
func GetAllKeys() []string {
	return []string{
		"version",
		"terminal.shell",
		"terminal.start_dir",
		"terminal.tick_ms",
		"terminal.persist_history",
		"terminal.history_db",
		"browser.show_hidden",
		"browser.watch",
		"ui.theme",
		"ui.terminal_height",
		"ui.show_terminal",
		"log.level",
		"log.file",
		"log.development",
	}
}

// Clone returns a copy of the configuration. Config holds only value fields.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// String returns the configuration as indented JSON.
func (c *Config) String() string {
	data, _ := json.MarshalIndent(c, "", "  ")
	return string(data)
}

// =============================================================================
// SINGLETON PATTERN (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance.
// Loads configuration on first access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if cfg == nil {
			cfg = Default()
			cfg.SetDefaults()
		}
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
		}
		globalConfigMu.Lock()
		if globalConfig == nil {
			globalConfig = cfg
		}
		globalConfigMu.Unlock()
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	SetGlobal(cfg)
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state for testing.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}
