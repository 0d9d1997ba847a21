// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

/*
Package terminal runs an interactive shell behind a pseudo-terminal and turns its
output into plain scrollback lines for a host UI.

# Key Components

## Session (session.go)

Session owns one shell process and the two handles derived from its pty master:
the writer (used only by the UI goroutine) and the reader (handed to the relay).
Open fails with a *SessionError whose Stage names the step that broke.

## Relay (relay.go)

Relay is the single goroutine per session that performs blocking reads, decodes
them as lossy UTF-8 and forwards each fragment on a buffered channel.

## Scrollback (scrollback.go) and History (history.go)

Scrollback is the bounded line log with partial-line continuation. History is the
bounded command log with an Up/Down recall cursor.

## Controller (controller.go)

Controller is the composition root. The host calls Update once per tick to drain
pending output, then reads Lines to render. Input events map onto Submit,
HistoryPrevious, HistoryNext, Interrupt and SetDirectory.

# Usage

	ctrl := terminal.NewController(dir, terminal.WithLogger(logger))
	defer ctrl.Close()

	for range ticker.C {
		if ctrl.Update() > 0 {
			render(ctrl.Lines())
		}
	}

# Threading

Everything except the relay goroutine is meant to be driven from one goroutine.
The channel between the relay and the controller is the only shared primitive.
*/
package terminal
