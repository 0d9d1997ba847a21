// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package shell provides the terminal panel: a scrollback viewport over a
// terminal.Controller, an input line with history recall, and the tick that
// drains shell output into the view.
//
// The panel never reads the shell directly. Every TickMsg calls the
// controller's non-blocking Update and re-renders only when something changed.
package shell
