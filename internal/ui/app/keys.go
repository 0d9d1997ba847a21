// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package app

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the application-wide bindings. They take precedence over
// the focused panel's bindings.
type KeyMap struct {
	Focus          key.Binding
	ToggleTerminal key.Binding
	Help           key.Binding
	CloseHelp      key.Binding
	Quit           key.Binding
}

// DefaultKeyMap returns the default application bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Focus: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch panel"),
		),
		ToggleTerminal: key.NewBinding(
			key.WithKeys("ctrl+t"),
			key.WithHelp("ctrl+t", "toggle terminal"),
		),
		Help: key.NewBinding(
			key.WithKeys("?", "f1"),
			key.WithHelp("?", "help"),
		),
		CloseHelp: key.NewBinding(
			key.WithKeys("esc", "?", "f1", "q"),
			key.WithHelp("esc", "close help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+q"),
			key.WithHelp("ctrl+q", "quit"),
		),
	}
}

// ShortHelp returns the bindings shown in the status bar.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Focus, k.Help, k.Quit}
}

// All returns every binding shown in the help overlay.
func (k KeyMap) All() []key.Binding {
	return []key.Binding{k.Focus, k.ToggleTerminal, k.Help, k.Quit}
}
