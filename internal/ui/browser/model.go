// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package browser

import (
	"errors"
	"io/fs"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/jeranaias/shellpane/internal/ui/components"
	"github.com/jeranaias/shellpane/internal/ui/styles"
	"github.com/jeranaias/shellpane/internal/util"
)

const (
	borderSize   = 2
	headerHeight = 1
	selectMarker = "> "
)

// =============================================================================
// MODEL
// =============================================================================

// Model is the directory browser panel.
type Model struct {
	dir        string
	entries    []Entry
	cursor     int
	offset     int
	showHidden bool

	theme   *styles.Theme
	keys    KeyMap
	header  *components.Header
	watcher *Watcher
	logger  *zap.Logger

	width   int
	height  int
	focused bool
	err     error
}

// Option configures a Model.
type Option func(*Model)

// WithShowHidden lists dot-directories from the start.
func WithShowHidden(show bool) Option {
	return func(m *Model) { m.showHidden = show }
}

// WithWatcher refreshes the listing when the directory changes on disk.
// The model does not own the watcher; the caller closes it.
func WithWatcher(w *Watcher) Option {
	return func(m *Model) { m.watcher = w }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(m *Model) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// New creates a browser showing dir. A listing error is kept and shown; the
// model is still usable.
func New(dir string, theme *styles.Theme, opts ...Option) Model {
	m := Model{
		dir:    filepath.Clean(dir),
		theme:  theme,
		keys:   DefaultKeyMap(),
		header: components.NewHeader(theme, "Files"),
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(&m)
	}

	m.header.Directory = m.dir
	m.entries, m.err = List(m.dir, m.showHidden)
	m.watch()
	return m
}

// Init starts listening to the watcher.
func (m Model) Init() tea.Cmd {
	return waitForChange(m.watcher)
}

// =============================================================================
// UPDATE
// =============================================================================

// Update handles keys (when focused) and watcher refreshes.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case refreshMsg:
		cmd := m.refresh()
		return m, tea.Batch(cmd, waitForChange(m.watcher))

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
	case key.Matches(msg, m.keys.Up):
		m.moveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.moveCursor(1)
	case key.Matches(msg, m.keys.Top):
		m.moveCursor(-len(m.entries))
	case key.Matches(msg, m.keys.Bottom):
		m.moveCursor(len(m.entries))

	case key.Matches(msg, m.keys.Open):
		if entry, ok := m.Selected(); ok {
			return m, m.Navigate(entry.Path)
		}

	case key.Matches(msg, m.keys.Parent):
		parent, ok := parentOf(m.dir)
		if !ok {
			return m, nil
		}
		from := m.dir
		cmd := m.Navigate(parent)
		if m.dir == parent {
			m.selectPath(from)
		}
		return m, cmd

	case key.Matches(msg, m.keys.HideToggle):
		m.showHidden = !m.showHidden
		return m, m.refresh()
	}
	return m, nil
}

// Navigate moves the browser to dir. On success the returned command emits a
// DirectoryChangedMsg; on failure the browser stays put and emits an ErrorMsg.
func (m *Model) Navigate(dir string) tea.Cmd {
	dir = filepath.Clean(dir)
	entries, err := List(dir, m.showHidden)
	if err != nil {
		m.logger.Debug("cannot list directory", zap.String("dir", dir), zap.Error(err))
		return failed(dir, err)
	}

	m.dir = dir
	m.entries = entries
	m.err = nil
	m.cursor = 0
	m.offset = 0
	m.header.Directory = dir
	m.watch()
	return changed(dir, len(entries))
}

// refresh re-lists the current directory, keeping the selection by path. If
// the directory vanished the browser climbs to the nearest existing parent.
func (m *Model) refresh() tea.Cmd {
	selected, _ := m.Selected()

	entries, err := List(m.dir, m.showHidden)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return m.Navigate(nearestExisting(m.dir))
		}
		m.err = err
		m.entries = nil
		m.cursor = 0
		return failed(m.dir, err)
	}

	m.entries = entries
	m.err = nil
	m.cursor = 0
	m.selectPath(selected.Path)
	return nil
}

func (m *Model) watch() {
	if m.watcher == nil {
		return
	}
	if err := m.watcher.SetDirectory(m.dir); err != nil {
		m.logger.Debug("cannot watch directory", zap.String("dir", m.dir), zap.Error(err))
	}
}

func (m *Model) moveCursor(delta int) {
	if len(m.entries) == 0 {
		m.cursor = 0
		return
	}
	m.cursor += delta
	if m.cursor < 0 {
		m.cursor = 0
	}
	if m.cursor >= len(m.entries) {
		m.cursor = len(m.entries) - 1
	}
	m.clampOffset()
}

func (m *Model) selectPath(path string) {
	for i, e := range m.entries {
		if e.Path == path {
			m.cursor = i
			break
		}
	}
	m.clampOffset()
}

func (m *Model) clampOffset() {
	rows := m.listHeight()
	if m.cursor < m.offset {
		m.offset = m.cursor
	}
	if m.cursor >= m.offset+rows {
		m.offset = m.cursor - rows + 1
	}
	if m.offset < 0 {
		m.offset = 0
	}
}

// =============================================================================
// STATE
// =============================================================================

// SetSize sets the outer size of the panel, border included.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.header.SetWidth(width - borderSize)
	m.clampOffset()
}

// Focus gives the browser the keyboard.
func (m *Model) Focus() { m.focused = true }

// Blur releases the keyboard.
func (m *Model) Blur() { m.focused = false }

// Focused reports whether the browser has the keyboard.
func (m Model) Focused() bool { return m.focused }

// Directory returns the current directory.
func (m Model) Directory() string { return m.dir }

// Entries returns the current listing.
func (m Model) Entries() []Entry { return m.entries }

// Len returns the number of listed entries.
func (m Model) Len() int { return len(m.entries) }

// ShowHidden reports whether dot-directories are listed.
func (m Model) ShowHidden() bool { return m.showHidden }

// Err returns the last listing error.
func (m Model) Err() error { return m.err }

// KeyMap returns the browser's bindings.
func (m Model) KeyMap() KeyMap { return m.keys }

// Selected returns the entry under the cursor.
func (m Model) Selected() (Entry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.entries) {
		return Entry{}, false
	}
	return m.entries[m.cursor], true
}

func (m Model) listHeight() int {
	rows := m.height - borderSize - headerHeight
	if rows < 1 {
		rows = 1
	}
	return rows
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
	inner := m.width - borderSize
	if inner < 10 {
		inner = 10
	}

	rows := make([]string, 0, m.listHeight()+1)
	rows = append(rows, m.header.View())

	switch {
	case m.err != nil:
		rows = append(rows, m.theme.ErrorText.Render(util.TruncateWidth(m.err.Error(), inner)))
	case len(m.entries) == 0:
		rows = append(rows, m.theme.BrowserEmpty.Render("(no sub-directories)"))
	default:
		end := m.offset + m.listHeight()
		if end > len(m.entries) {
			end = len(m.entries)
		}
		for i := m.offset; i < end; i++ {
			rows = append(rows, m.renderEntry(i, inner))
		}
	}

	if m.width > 0 {
		panel = panel.Width(inner)
	}
	if m.height > 0 {
		panel = panel.Height(m.height - borderSize)
	}
	return panel.Render(strings.Join(rows, "\n"))
}

func (m Model) renderEntry(i, width int) string {
	e := m.entries[i]
	name := util.TruncateWidth(e.Name+"/", width-len(selectMarker)-2)
	switch {
	case i == m.cursor:
		return m.theme.BrowserSelected.Render(selectMarker + name)
	case e.Hidden:
		return m.theme.BrowserHidden.Render("  " + name)
	default:
		return m.theme.BrowserItem.Render("  " + name)
	}
}
