// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package shell

import "strings"

// displayLine prepares a scrollback line for the viewport. A carriage return
// rewinds the line, so only the text after the last one is visible; a
// trailing one (CRLF output) is dropped. Other C0 controls except tab are
// removed.
func displayLine(line string) string {
	line = strings.TrimRight(line, "\r")
	if i := strings.LastIndexByte(line, '\r'); i >= 0 {
		line = line[i+1:]
	}
	return strings.Map(func(r rune) rune {
		if r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, line)
}

// isNotice reports lines the controller writes itself rather than the shell.
func isNotice(line string) bool {
	return strings.HasPrefix(line, "[process exited") ||
		strings.HasPrefix(line, "Terminal ready in: ")
}
