// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/jeranaias/shellpane/internal/ui/browser"
	"github.com/jeranaias/shellpane/internal/ui/components"
	"github.com/jeranaias/shellpane/internal/ui/shell"
	"github.com/jeranaias/shellpane/internal/ui/styles"
)

// DefaultTerminalHeight is the terminal panel height in rows, border included.
const DefaultTerminalHeight = 12

const (
	statusBarHeight  = 1
	minBrowserHeight = 4
	minTerminal      = 5
)

// Focus identifies the panel receiving keys.
type Focus int

const (
	FocusBrowser Focus = iota
	FocusTerminal
)

// String returns the panel name.
func (f Focus) String() string {
	if f == FocusTerminal {
		return "terminal"
	}
	return "browser"
}

// =============================================================================
// APPLICATION MODEL
// =============================================================================

// Model is the root model.
type Model struct {
	theme  *styles.Theme
	keys   KeyMap
	logger *zap.Logger

	browser browser.Model
	shell   shell.Model
	status  *components.StatusBar
	help    *components.HelpOverlay

	focus          Focus
	showTerminal   bool
	showHelp       bool
	terminalHeight int
	width          int
	height         int
	quitting       bool
}

// Option configures a Model.
type Option func(*Model)

// WithTerminalHeight sets the terminal panel height in rows.
func WithTerminalHeight(rows int) Option {
	return func(m *Model) {
		if rows > 0 {
			m.terminalHeight = rows
		}
	}
}

// WithTerminalVisible sets whether the terminal panel starts visible.
func WithTerminalVisible(visible bool) Option {
	return func(m *Model) { m.showTerminal = visible }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New composes the browser and terminal panels. The browser starts focused.
func New(b browser.Model, s shell.Model, theme *styles.Theme, opts ...Option) *Model {
	m := &Model{
		theme:          theme,
		keys:           DefaultKeyMap(),
		logger:         zap.NewNop(),
		browser:        b,
		shell:          s,
		status:         components.NewStatusBar(theme),
		showTerminal:   true,
		terminalHeight: DefaultTerminalHeight,
	}
	for _, opt := range opts {
		opt(m)
	}

	m.help = components.NewHelpOverlay(theme,
		components.HelpSection{Title: "General", Bindings: m.keys.All()},
		components.HelpSection{Title: "Browser", Bindings: m.browser.KeyMap().All()},
		components.HelpSection{Title: "Terminal", Bindings: m.shell.KeyMap().All()},
	)

	m.browser.Focus()
	m.shell.Blur()
	m.status.Navigated(m.browser.Directory(), m.browser.Len())
	m.syncShortcuts()
	return m
}

// Init starts the panels.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.browser.Init(), m.shell.Init())
}

// Update handles messages and updates the model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.theme.SetSize(msg.Width, msg.Height)
		m.layout()
		return m, nil

	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case browser.DirectoryChangedMsg:
		m.status.Navigated(msg.Path, msg.Items)
		m.logger.Debug("directory changed", zap.String("dir", msg.Path))

	case browser.ErrorMsg:
		m.status.SetError(fmt.Sprintf("Cannot open %s: %v", msg.Path, msg.Err))

	case shell.CopiedMsg:
		if msg.Err != nil {
			m.status.SetError(fmt.Sprintf("Copy failed: %v", msg.Err))
		} else {
			m.status.SetMessage(fmt.Sprintf("Copied %d lines", msg.Lines))
		}
		return m, nil
	}

	return m, m.forward(msg)
}

// forward hands msg to both panels. Each ignores keys unless focused.
func (m *Model) forward(msg tea.Msg) tea.Cmd {
	var bCmd, sCmd tea.Cmd
	m.browser, bCmd = m.browser.Update(msg)
	m.shell, sCmd = m.shell.Update(msg)
	m.status.ItemCount = m.browser.Len()
	return tea.Batch(bCmd, sCmd)
}

func (m *Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Quit) {
		return m.quit()
	}

	if m.showHelp {
		if key.Matches(msg, m.keys.CloseHelp) {
			m.showHelp = false
		}
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Focus):
		if m.showTerminal {
			return m, m.setFocus(1 - m.focus)
		}
		return m, nil

	case key.Matches(msg, m.keys.ToggleTerminal):
		m.showTerminal = !m.showTerminal
		m.layout()
		if m.showTerminal {
			return m, m.setFocus(FocusTerminal)
		}
		return m, m.setFocus(FocusBrowser)

	// "?" is typeable in the terminal, so it only opens help from the browser.
	case key.Matches(msg, m.keys.Help) && (m.focus == FocusBrowser || msg.String() == "f1"):
		m.showHelp = true
		return m, nil
	}

	return m, m.forward(msg)
}

func (m *Model) setFocus(f Focus) tea.Cmd {
	m.focus = f
	var cmd tea.Cmd
	if f == FocusTerminal {
		m.browser.Blur()
		cmd = m.shell.Focus()
	} else {
		m.shell.Blur()
		m.browser.Focus()
	}
	m.syncShortcuts()
	return cmd
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	if err := m.shell.Close(); err != nil {
		m.logger.Debug("closing terminal session", zap.Error(err))
	}
	return m, tea.Quit
}

func (m *Model) syncShortcuts() {
	var panel []key.Binding
	if m.focus == FocusTerminal {
		panel = m.shell.KeyMap().ShortHelp()
	} else {
		panel = m.browser.KeyMap().ShortHelp()
	}
	m.status.Shortcuts = append(m.keys.ShortHelp(), panel...)
}

// layout splits the screen between the panels.
func (m *Model) layout() {
	if m.width == 0 || m.height == 0 {
		return
	}

	m.status.SetWidth(m.width)
	m.help.SetWidth(min(m.width, 80))

	available := m.height - statusBarHeight
	browserHeight := available
	if m.showTerminal {
		th := m.terminalHeight
		if available-th < minBrowserHeight {
			th = max(minTerminal, available-minBrowserHeight)
		}
		browserHeight = max(1, available-th)
		m.shell.SetSize(m.width, available-browserHeight)
	}
	m.browser.SetSize(m.width, browserHeight)
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the application.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	if m.showHelp {
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.help.View())
	}

	parts := []string{m.browser.View()}
	if m.showTerminal {
		parts = append(parts, m.shell.View())
	}
	parts = append(parts, m.status.View())
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Focused returns the panel receiving keys.
func (m *Model) Focused() Focus { return m.focus }

// TerminalVisible reports whether the terminal panel is shown.
func (m *Model) TerminalVisible() bool { return m.showTerminal }

// HelpVisible reports whether the help overlay is shown.
func (m *Model) HelpVisible() bool { return m.showHelp }

// Status returns the status bar.
func (m *Model) Status() *components.StatusBar { return m.status }

// Browser returns the browser panel.
func (m *Model) Browser() browser.Model { return m.browser }

// Shell returns the terminal panel.
func (m *Model) Shell() shell.Model { return m.shell }

// Close ends the terminal session. Safe to call after quitting.
func (m *Model) Close() error {
	return m.shell.Close()
}
