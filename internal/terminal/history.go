// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

// DefaultHistoryEntries is the maximum number of remembered commands.
const DefaultHistoryEntries = 100

// noCursor marks the history cursor as "not recalling".
const noCursor = -1

// History is a bounded log of submitted commands with a recall cursor.
//
// The cursor is unset at rest. Previous walks towards older entries, Next walks
// back towards the newest and unsets the cursor when it steps past it.
type History struct {
	entries    []string
	maxEntries int
	cursor     int
}

// NewHistory creates a command history holding at most maxEntries commands.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultHistoryEntries
	}
	return &History{
		entries:    make([]string, 0, 16),
		maxEntries: maxEntries,
		cursor:     noCursor,
	}
}

// Submit records a command, evicting the oldest beyond the cap, and resets the cursor.
func (h *History) Submit(command string) {
	h.entries = append(h.entries, command)
	if over := len(h.entries) - h.maxEntries; over > 0 {
		n := copy(h.entries, h.entries[over:])
		h.entries = h.entries[:n]
	}
	h.cursor = noCursor
}

// Load replaces the history with entries (oldest first), keeping the newest
// maxEntries, and resets the cursor.
func (h *History) Load(entries []string) {
	if over := len(entries) - h.maxEntries; over > 0 {
		entries = entries[over:]
	}
	h.entries = append(h.entries[:0], entries...)
	h.cursor = noCursor
}

// Previous moves the cursor one entry older and returns that entry.
// It reports false when the history is empty.
func (h *History) Previous() (string, bool) {
	if len(h.entries) == 0 {
		return "", false
	}

	switch {
	case h.cursor == noCursor:
		h.cursor = len(h.entries) - 1
	case h.cursor > 0:
		h.cursor--
	}
	return h.entries[h.cursor], true
}

// Next moves the cursor one entry newer and returns that entry. Stepping past
// the newest entry unsets the cursor and returns "" so the input is cleared.
// It reports false when no recall is in progress.
func (h *History) Next() (string, bool) {
	if h.cursor == noCursor {
		return "", false
	}

	if h.cursor < len(h.entries)-1 {
		h.cursor++
		return h.entries[h.cursor], true
	}

	h.cursor = noCursor
	return "", true
}

// Cursor returns the recall position and whether a recall is in progress.
func (h *History) Cursor() (int, bool) {
	if h.cursor == noCursor {
		return 0, false
	}
	return h.cursor, true
}

// Len returns the number of remembered commands.
func (h *History) Len() int {
	return len(h.entries)
}

// Entries returns a copy of the commands, oldest first.
func (h *History) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// MaxEntries returns the cap.
func (h *History) MaxEntries() int {
	return h.maxEntries
}
