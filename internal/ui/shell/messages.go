// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// TickMsg drives the output drain.
type TickMsg struct {
	Time time.Time
}

// CopiedMsg reports the result of copying scrollback to the clipboard.
type CopiedMsg struct {
	Lines int
	Err   error
}

func tickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return TickMsg{Time: t}
	})
}
