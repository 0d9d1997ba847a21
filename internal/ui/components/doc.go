// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the shared visual pieces of the shellpane UI.
//
// # Key Components
//
//   - Header: one-line panel title with directory and shell state
//   - StatusBar: bottom bar with the last navigation message and key hints
//   - HelpOverlay: key reference rendered as markdown with glamour
//
// Components are plain structs with a View method; the bubbletea models in
// ui/shell, ui/browser and ui/app own them and feed them state.
package components
