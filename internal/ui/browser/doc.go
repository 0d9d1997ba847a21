// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package browser provides the directory browser panel.
//
// It lists the sub-directories of the current directory and emits a
// DirectoryChangedMsg whenever the user navigates, which the terminal panel
// follows with a cd. An optional fsnotify Watcher keeps the listing fresh.
package browser
