// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package styles provides the visual styling system for shellpane.
// All colors use Lip Gloss AdaptiveColor so one palette serves light and dark
// terminals; NewTheme can force either.
package styles
