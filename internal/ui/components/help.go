// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/shellpane/internal/ui/styles"
)

// =============================================================================
// HELP OVERLAY
// =============================================================================

// HelpSection is one titled group of key bindings.
type HelpSection struct {
	Title    string
	Bindings []key.Binding
}

// HelpOverlay renders the key reference as markdown.
type HelpOverlay struct {
	Sections []HelpSection
	Width    int
	theme    *styles.Theme

	cache      string
	cacheWidth int
}

// NewHelpOverlay creates a help overlay for the given sections.
func NewHelpOverlay(theme *styles.Theme, sections ...HelpSection) *HelpOverlay {
	return &HelpOverlay{
		Sections: sections,
		Width:    80,
		theme:    theme,
	}
}

// SetWidth updates the overlay width
func (h *HelpOverlay) SetWidth(width int) {
	h.Width = width
}

// Markdown returns the key reference as a markdown document.
func (h *HelpOverlay) Markdown() string {
	var b strings.Builder
	b.WriteString("# Keys\n")
	for _, section := range h.Sections {
		b.WriteString("\n## " + section.Title + "\n\n")
		b.WriteString("| Key | Action |\n|---|---|\n")
		for _, binding := range section.Bindings {
			help := binding.Help()
			if help.Key == "" {
				continue
			}
			b.WriteString("| `" + help.Key + "` | " + help.Desc + " |\n")
		}
	}
	return b.String()
}

// View renders the overlay. If glamour cannot render, the raw markdown is shown.
func (h *HelpOverlay) View() string {
	width := h.Width - 6 // border and padding
	if width < 20 {
		width = 20
	}
	if h.cache != "" && h.cacheWidth == width {
		return h.cache
	}

	md := h.Markdown()
	body := md
	style := "light"
	if h.theme.IsDark {
		style = "dark"
	}
	if r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle(style),
		glamour.WithWordWrap(width),
	); err == nil {
		if out, err := r.Render(md); err == nil {
			body = strings.Trim(out, "\n")
		}
	}

	h.cache = h.theme.HelpBox.Render(body)
	h.cacheWidth = width
	return h.cache
}
