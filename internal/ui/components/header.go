// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shellpane/internal/ui/styles"
	"github.com/jeranaias/shellpane/internal/util"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// ShellState is what the header reports about the shell.
type ShellState int

const (
	ShellRunning ShellState = iota
	ShellExited
	ShellFailed
)

// String returns the display string for the state
func (s ShellState) String() string {
	switch s {
	case ShellRunning:
		return "running"
	case ShellExited:
		return "exited"
	case ShellFailed:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Header is the title line of a panel.
type Header struct {
	Title     string
	Directory string
	Shell     string
	State     ShellState
	ShowState bool
	Width     int
	theme     *styles.Theme
}

// NewHeader creates a header with the given title.
func NewHeader(theme *styles.Theme, title string) *Header {
	return &Header{
		Title: title,
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the header width
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// View renders "Title  ~/dir ... [*] shell running", fitted to Width.
func (h *Header) View() string {
	width := h.Width
	if width < 20 {
		width = 20
	}
	inner := width - 2 // header padding

	title := h.theme.HeaderTitle.Render(h.Title)

	var state string
	if h.ShowState {
		label := shellName(h.Shell) + " " + h.State.String()
		switch h.State {
		case ShellRunning:
			state = styles.RenderRunning(label)
		case ShellExited:
			state = styles.RenderExited(label)
		default:
			state = styles.RenderFailed(label)
		}
	}

	used := lipgloss.Width(title) + lipgloss.Width(state) + 3
	path := ""
	if h.Directory != "" && inner-used > 4 {
		path = h.theme.HeaderPath.Render(util.ShortenPath(h.Directory, inner-used))
	}

	left := title
	if path != "" {
		left += "  " + path
	}

	gap := inner - lipgloss.Width(left) - lipgloss.Width(state)
	if gap < 1 {
		gap = 1
	}
	line := left + strings.Repeat(" ", gap) + state

	return h.theme.Header.Width(width).MaxWidth(width).Render(line)
}

// shellName reduces a shell path to its executable name.
func shellName(shell string) string {
	if shell == "" {
		return "shell"
	}
	if i := strings.LastIndexAny(shell, `/\`); i >= 0 {
		return shell[i+1:]
	}
	return shell
}
