// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides the shellpane command tree.
//
// # Commands
//
//   - shellpane [dir]: full-screen browser with the terminal panel
//   - shellpane plain [dir]: the same shell through a line prompt, no TUI
//   - shellpane version
//   - shellpane config show|path|init|get|set
//   - shellpane history [list|search|prune]
//
// Commands return errors to cobra; Execute prints them once and maps them
// to an exit code with ExitCode.
package cli
