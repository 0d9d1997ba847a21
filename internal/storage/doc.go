// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage provides command history persistence for shellpane.
//
// Commands submitted to the terminal panel are kept in a small SQLite database
// so that Up-arrow recall survives restarts.
//
// # Key Types
//
//   - HistoryStore: SQLite-backed store of submitted commands
//   - Entry: one submitted command with its directory and session
//
// # Usage
//
//	store, err := storage.OpenHistory(path)
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	ctrl := terminal.NewController(dir, terminal.WithHistoryRecorder(store))
//
// # Storage Location
//
// The database lives at ~/.shellpane/history.db unless configured otherwise.
package storage
