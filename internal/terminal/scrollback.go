// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import "strings"

// DefaultScrollbackLines is the maximum number of retained display lines.
const DefaultScrollbackLines = 1000

// Scrollback is a bounded, ordered log of display lines.
//
// Output arrives in arbitrary fragments. A fragment that does not end in a newline
// leaves its last line open, and the first segment of the next fragment is joined
// onto it. When the cap is exceeded the oldest lines are evicted first.
//
// Scrollback is not safe for concurrent use; the controller only touches it from
// the UI goroutine.
type Scrollback struct {
	lines    []string
	maxLines int
	open     bool // last line is still in progress
	added    int  // lines ever started, evicted and cleared ones included
}

// NewScrollback creates a scrollback buffer holding at most maxLines lines.
func NewScrollback(maxLines int) *Scrollback {
	if maxLines <= 0 {
		maxLines = DefaultScrollbackLines
	}
	return &Scrollback{
		lines:    make([]string, 0, 64),
		maxLines: maxLines,
	}
}

// Append splits fragment on newlines and adds the segments to the buffer.
func (s *Scrollback) Append(fragment string) {
	if fragment == "" {
		return
	}

	segments := strings.Split(fragment, "\n")
	last := len(segments) - 1

	for i, seg := range segments {
		switch {
		case i == 0 && s.open && len(s.lines) > 0:
			s.lines[len(s.lines)-1] += seg
		case i == last && seg == "":
			// fragment ended with a newline; nothing is in progress
		default:
			s.lines = append(s.lines, seg)
			s.added++
		}
	}

	s.open = !strings.HasSuffix(fragment, "\n")
	s.evict()
}

// Push adds a complete line, closing any line still in progress.
// Used for diagnostics that do not come from the shell.
func (s *Scrollback) Push(line string) {
	s.lines = append(s.lines, line)
	s.added++
	s.open = false
	s.evict()
}

// Clear empties the buffer.
func (s *Scrollback) Clear() {
	s.lines = s.lines[:0]
	s.open = false
}

// Lines returns a copy of the retained lines, oldest first.
func (s *Scrollback) Lines() []string {
	out := make([]string, len(s.lines))
	copy(out, s.lines)
	return out
}

// Len returns the number of retained lines.
func (s *Scrollback) Len() int {
	return len(s.lines)
}

// Last returns the newest line, or "" when the buffer is empty.
func (s *Scrollback) Last() string {
	if len(s.lines) == 0 {
		return ""
	}
	return s.lines[len(s.lines)-1]
}

// Offset returns the absolute index of the oldest retained line. It grows as
// lines are evicted or cleared, so a reader can tell which lines it has seen.
func (s *Scrollback) Offset() int {
	return s.added - len(s.lines)
}

// Open reports whether the newest line is still waiting for its newline.
func (s *Scrollback) Open() bool {
	return s.open && len(s.lines) > 0
}

// MaxLines returns the cap.
func (s *Scrollback) MaxLines() int {
	return s.maxLines
}

// String joins all lines with newlines.
func (s *Scrollback) String() string {
	return strings.Join(s.lines, "\n")
}

func (s *Scrollback) evict() {
	over := len(s.lines) - s.maxLines
	if over <= 0 {
		return
	}
	n := copy(s.lines, s.lines[over:])
	clear(s.lines[n:])
	s.lines = s.lines[:n]
}
