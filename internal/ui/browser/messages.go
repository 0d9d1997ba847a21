// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package browser

import tea "github.com/charmbracelet/bubbletea"

// DirectoryChangedMsg is emitted after the browser moves to a new directory.
type DirectoryChangedMsg struct {
	Path  string
	Items int
}

// ErrorMsg reports a directory that could not be listed.
type ErrorMsg struct {
	Path string
	Err  error
}

// refreshMsg is sent when the watcher sees the listing change.
type refreshMsg struct{}

func changed(path string, items int) tea.Cmd {
	return func() tea.Msg {
		return DirectoryChangedMsg{Path: path, Items: items}
	}
}

func failed(path string, err error) tea.Cmd {
	return func() tea.Msg {
		return ErrorMsg{Path: path, Err: err}
	}
}

// waitForChange blocks on the watcher off the UI goroutine.
func waitForChange(w *Watcher) tea.Cmd {
	if w == nil {
		return nil
	}
	return func() tea.Msg {
		if _, ok := <-w.Changes(); !ok {
			return nil
		}
		return refreshMsg{}
	}
}
