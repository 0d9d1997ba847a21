// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import "strings"

const escapeChar = '\x1b'

// sanitizeState is the state of the escape-stripping scanner.
type sanitizeState int

const (
	stateNormal sanitizeState = iota
	stateEscapeSeen
	stateCSI
)

// Sanitize removes ANSI control sequences from s so it can be rendered as plain text.
//
// A CSI sequence (ESC '[' ... final letter) is dropped entirely, terminator included.
// An ESC that does not start a CSI is dropped on its own and the character after it
// is scanned normally. Colour and cursor effects are lost; the output never contains
// ESC and is never longer than the input.
func Sanitize(s string) string {
	if strings.IndexByte(s, escapeChar) < 0 {
		return s
	}

	var b strings.Builder
	b.Grow(len(s))

	// ESC, '[' and the CSI terminators are ASCII, so scanning bytes never splits
	// a multi-byte character that is kept.
	state := stateNormal
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch state {
		case stateNormal:
			if c == escapeChar {
				state = stateEscapeSeen
				continue
			}
			b.WriteByte(c)

		case stateEscapeSeen:
			if c == '[' {
				state = stateCSI
				continue
			}
			if c == escapeChar {
				continue
			}
			state = stateNormal
			b.WriteByte(c)

		case stateCSI:
			if isASCIILetter(c) {
				state = stateNormal
			}
		}
	}

	return b.String()
}

func isASCIILetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}
