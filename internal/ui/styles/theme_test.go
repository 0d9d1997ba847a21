// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package styles

import (
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
)

// =============================================================================
// THEME CREATION TESTS
// =============================================================================

func TestNewTheme_ForcedModes(t *testing.T) {
	dark := NewTheme(ModeDark)
	if !dark.IsDark {
		t.Error("NewTheme(dark) should be dark")
	}

	light := NewTheme(ModeLight)
	if light.IsDark {
		t.Error("NewTheme(light) should not be dark")
	}
}

func TestThemeInitStyles(t *testing.T) {
	theme := NewTheme(ModeDark)

	styles := []struct {
		name  string
		style lipgloss.Style
	}{
		{"Header", theme.Header},
		{"Panel", theme.Panel},
		{"PanelFocused", theme.PanelFocused},
		{"BrowserItem", theme.BrowserItem},
		{"TerminalOutput", theme.TerminalOutput},
		{"InputPrompt", theme.InputPrompt},
		{"StatusBar", theme.StatusBar},
		{"HelpBox", theme.HelpBox},
	}

	for _, s := range styles {
		if rendered := s.style.Render("test"); !strings.Contains(rendered, "test") {
			t.Errorf("%s style lost its content: %q", s.name, rendered)
		}
	}
}

func TestGetLayoutMode(t *testing.T) {
	theme := NewTheme(ModeDark)

	testCases := []struct {
		width    int
		expected LayoutMode
	}{
		{40, LayoutNarrow},
		{59, LayoutNarrow},
		{60, LayoutMedium},
		{99, LayoutMedium},
		{100, LayoutWide},
	}

	for _, tc := range testCases {
		theme.SetSize(tc.width, 30)
		if got := theme.GetLayoutMode(); got != tc.expected {
			t.Errorf("width %d: got %v, want %v", tc.width, got, tc.expected)
		}
	}
}

// =============================================================================
// STATUS INDICATOR TESTS
// =============================================================================

func TestStatusRenderersIncludeIndicators(t *testing.T) {
	testCases := []struct {
		name      string
		rendered  string
		indicator string
	}{
		{"running", RenderRunning("bash"), StatusIndicators.Running},
		{"exited", RenderExited("bash"), StatusIndicators.Exited},
		{"failed", RenderFailed("no pty"), StatusIndicators.Failed},
	}

	for _, tc := range testCases {
		if !strings.Contains(tc.rendered, tc.indicator) {
			t.Errorf("%s: %q missing indicator %q", tc.name, tc.rendered, tc.indicator)
		}
	}
}
