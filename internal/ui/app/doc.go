// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package app provides the root bubbletea model: the directory browser on
// top, the terminal panel below it and a status bar at the bottom.
//
// The app owns focus and layout. Navigation in the browser reaches the
// terminal panel as a browser.DirectoryChangedMsg.
package app
