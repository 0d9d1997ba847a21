// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package util provides small helpers shared by the UI and configuration code.
//
// # Key Functions
//
// Display Width (go-runewidth):
//   - StringWidth, TruncateWidth, TruncateLeft, PadRight
//   - ShortenPath: ~-relative, tail-preserving path for headers
//
// File Operations:
//   - AtomicWriteFile: Crash-safe file writing with fsync
//
// # Usage
//
//	title := util.ShortenPath(dir, width-12)
//	err := util.AtomicWriteFile(path, data, 0600)
package util
