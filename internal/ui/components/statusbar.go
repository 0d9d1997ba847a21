// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/shellpane/internal/ui/styles"
	"github.com/jeranaias/shellpane/internal/util"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// StatusBar is the bottom line: last status message on the left, item count
// and key hints on the right.
type StatusBar struct {
	Message   string
	ItemCount int
	Error     bool
	Shortcuts []key.Binding
	Width     int
	theme     *styles.Theme
}

// NewStatusBar creates a new StatusBar component
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{
		Width: 80,
		theme: theme,
	}
}

// SetWidth updates the status bar width
func (s *StatusBar) SetWidth(width int) {
	s.Width = width
}

// SetMessage replaces the message on the left.
func (s *StatusBar) SetMessage(msg string) {
	s.Message = msg
	s.Error = false
}

// SetError shows msg in the error colour.
func (s *StatusBar) SetError(msg string) {
	s.Message = msg
	s.Error = true
}

// Navigated records a directory change.
func (s *StatusBar) Navigated(dir string, items int) {
	s.SetMessage("Navigated to: " + dir)
	s.ItemCount = items
}

// View renders the status bar. Shortcuts are dropped from the right until
// the message has room.
func (s *StatusBar) View() string {
	width := s.Width
	if width < 20 {
		width = 20
	}
	inner := width - 2

	right := []string{s.theme.StatusCount.Render(itemLabel(s.ItemCount))}
	for _, b := range s.Shortcuts {
		if !b.Enabled() {
			continue
		}
		h := b.Help()
		right = append(right, s.theme.ShortcutKey.Render(h.Key)+" "+s.theme.ShortcutDesc.Render(h.Desc))
	}

	sep := s.theme.ShortcutDesc.Render(" • ")
	rightText := strings.Join(right, sep)
	for len(right) > 1 && lipgloss.Width(rightText) > inner/2 {
		right = right[:len(right)-1]
		rightText = strings.Join(right, sep)
	}

	msgStyle := s.theme.StatusText
	if s.Error {
		msgStyle = s.theme.ErrorText
	}
	room := inner - lipgloss.Width(rightText) - 1
	msg := msgStyle.Render(util.TruncateWidth(s.Message, room))

	gap := inner - lipgloss.Width(msg) - lipgloss.Width(rightText)
	if gap < 1 {
		gap = 1
	}
	return s.theme.StatusBar.Width(width).MaxWidth(width).
		Render(msg + strings.Repeat(" ", gap) + rightText)
}

func itemLabel(n int) string {
	if n == 1 {
		return "1 item"
	}
	return fmt.Sprintf("%d items", n)
}
