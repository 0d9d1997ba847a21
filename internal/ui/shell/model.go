// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"strings"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/shellpane/internal/ui/browser"
	"github.com/jeranaias/shellpane/internal/ui/components"
	"github.com/jeranaias/shellpane/internal/ui/styles"
)

// DefaultTickInterval is how often shell output is drained (about 30fps).
const DefaultTickInterval = 33 * time.Millisecond

const (
	promptText      = "❯ "
	placeholderText = "Type command..."

	borderSize   = 2 // top+bottom or left+right panel border
	headerHeight = 1
	inputHeight  = 1
)

// Terminal is what the panel needs from a terminal.Controller.
type Terminal interface {
	Update() int
	Submit(input string) string
	HistoryPrevious() (string, bool)
	HistoryNext() (string, bool)
	Interrupt()
	SetDirectory(path string)
	Clear()
	Restart()
	Close() error
	Lines() []string
	Directory() string
	Shell() string
	SessionID() string
	Alive() bool
}

// =============================================================================
// MODEL
// =============================================================================

// Model is the terminal panel.
type Model struct {
	term   Terminal
	theme  *styles.Theme
	keys   KeyMap
	logger *zap.Logger

	viewport viewport.Model
	input    textinput.Model
	header   *components.Header

	tick      time.Duration
	copyText  func(string) error
	state     components.ShellState
	focused   bool
	width     int
	height    int
	lineCount int
}

// Option configures a Model.
type Option func(*Model)

// WithTickInterval sets the drain interval.
func WithTickInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.tick = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithKeyMap replaces the default bindings.
func WithKeyMap(k KeyMap) Option {
	return func(m *Model) { m.keys = k }
}

func withClipboard(fn func(string) error) Option {
	return func(m *Model) { m.copyText = fn }
}

// New creates a terminal panel over term.
func New(term Terminal, theme *styles.Theme, opts ...Option) Model {
	ti := textinput.New()
	ti.Prompt = promptText
	ti.Placeholder = placeholderText
	ti.PromptStyle = theme.InputPrompt
	ti.TextStyle = theme.InputText
	ti.PlaceholderStyle = theme.InputPlaceholder
	ti.CharLimit = 4096

	vp := viewport.New(80, 10)

	m := Model{
		term:     term,
		theme:    theme,
		keys:     DefaultKeyMap(),
		logger:   zap.NewNop(),
		viewport: vp,
		input:    ti,
		header:   components.NewHeader(theme, "Terminal"),
		tick:     DefaultTickInterval,
		copyText: clipboard.WriteAll,
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.header.ShowState = true
	m.syncHeader()
	m.refresh(true)
	return m
}

// Init starts the drain tick.
func (m Model) Init() tea.Cmd {
	return tickCmd(m.tick)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles ticks, browser navigation, keys (when focused) and mouse
// scrolling.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case TickMsg:
		n := m.term.Update()
		prev := m.state
		m.syncHeader()
		if n > 0 || m.state != prev {
			m.refresh(false)
		}
		return m, tickCmd(m.tick)

	case browser.DirectoryChangedMsg:
		m.SetDirectory(msg.Path)
		return m, nil

	case tea.MouseMsg:
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		return m, cmd

	case tea.KeyMsg:
		if !m.focused {
			return m, nil
		}
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		rest := m.term.Submit(m.input.Value())
		m.input.SetValue(rest)
		m.input.CursorEnd()
		m.refresh(true)
		return m, nil

	case key.Matches(msg, m.keys.Previous):
		if cmd, ok := m.term.HistoryPrevious(); ok {
			m.input.SetValue(cmd)
			m.input.CursorEnd()
		}
		return m, nil

	case key.Matches(msg, m.keys.Next):
		if cmd, ok := m.term.HistoryNext(); ok {
			m.input.SetValue(cmd)
			m.input.CursorEnd()
		}
		return m, nil

	case key.Matches(msg, m.keys.Interrupt):
		m.term.Interrupt()
		m.input.Reset()
		return m, nil

	case key.Matches(msg, m.keys.Clear):
		m.term.Clear()
		m.refresh(true)
		return m, nil

	case key.Matches(msg, m.keys.Restart):
		m.logger.Debug("restart requested", zap.String("dir", m.term.Directory()))
		m.term.Restart()
		m.syncHeader()
		m.refresh(true)
		return m, nil

	case key.Matches(msg, m.keys.Copy):
		return m, m.copyCmd()

	case key.Matches(msg, m.keys.PageUp):
		m.viewport.ViewUp()
		return m, nil

	case key.Matches(msg, m.keys.PageDown):
		m.viewport.ViewDown()
		return m, nil

	case key.Matches(msg, m.keys.Bottom):
		m.viewport.GotoBottom()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// copyCmd copies the visible text of the whole scrollback off the UI goroutine.
func (m Model) copyCmd() tea.Cmd {
	lines := m.term.Lines()
	for i, line := range lines {
		lines[i] = displayLine(line)
	}
	text := strings.Join(lines, "\n")
	copyText := m.copyText
	return func() tea.Msg {
		return CopiedMsg{Lines: len(lines), Err: copyText(text)}
	}
}

// =============================================================================
// STATE
// =============================================================================

// SetDirectory points the shell at path.
func (m *Model) SetDirectory(path string) {
	m.term.SetDirectory(path)
	m.syncHeader()
}

// SetSize sets the outer size of the panel, border included.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	inner := width - borderSize
	if inner < 10 {
		inner = 10
	}
	vpHeight := height - borderSize - headerHeight - inputHeight
	if vpHeight < 1 {
		vpHeight = 1
	}

	m.viewport.Width = inner
	m.viewport.Height = vpHeight
	m.header.SetWidth(inner)
	m.input.Width = inner - len([]rune(promptText)) - 1
	m.refresh(true)
}

// Focus gives the panel the keyboard.
func (m *Model) Focus() tea.Cmd {
	m.focused = true
	return m.input.Focus()
}

// Blur releases the keyboard.
func (m *Model) Blur() {
	m.focused = false
	m.input.Blur()
}

// Focused reports whether the panel has the keyboard.
func (m Model) Focused() bool {
	return m.focused
}

// Input returns the current input line.
func (m Model) Input() string {
	return m.input.Value()
}

// State returns the shell state shown in the header.
func (m Model) State() components.ShellState {
	return m.state
}

// Terminal returns the underlying terminal.
func (m Model) Terminal() Terminal {
	return m.term
}

// KeyMap returns the panel's bindings.
func (m Model) KeyMap() KeyMap {
	return m.keys
}

// Close ends the shell session.
func (m Model) Close() error {
	return m.term.Close()
}

func (m *Model) syncHeader() {
	switch {
	case m.term.SessionID() == "":
		m.state = components.ShellFailed
	case m.term.Alive():
		m.state = components.ShellRunning
	default:
		m.state = components.ShellExited
	}
	m.header.State = m.state
	m.header.Directory = m.term.Directory()
	m.header.Shell = m.term.Shell()
}

// refresh re-renders scrollback into the viewport, following the bottom if
// the view was already there or force is set.
func (m *Model) refresh(force bool) {
	follow := force || m.viewport.AtBottom()

	lines := m.term.Lines()
	m.lineCount = len(lines)

	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		text := displayLine(line)
		if isNotice(line) {
			b.WriteString(m.theme.TerminalNotice.Render(text))
		} else {
			b.WriteString(text)
		}
	}

	content := m.theme.TerminalOutput.Width(m.viewport.Width).Render(b.String())
	m.viewport.SetContent(content)
	if follow {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the panel with its border.
func (m Model) View() string {
	panel := m.theme.Panel
	if m.focused {
		panel = m.theme.PanelFocused
	}

	body := m.header.View() + "\n" + m.viewport.View() + "\n" + m.input.View()
	if m.width > 0 {
		panel = panel.Width(m.width - borderSize)
	}
	return panel.Render(body)
}
