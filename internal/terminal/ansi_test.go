// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain text untouched", "hello world", "hello world"},
		{"empty", "", ""},
		{"colour codes", "\x1b[31mHello\x1b[0m", "Hello"},
		{"multi parameter", "\x1b[1;32mok\x1b[0m done", "ok done"},
		{"cursor movement", "a\x1b[2Kb\x1b[10Dc", "abc"},
		{"lone escape drops only itself", "\x1bXabc", "Xabc"},
		{"doubled escape before csi", "\x1b\x1b[31mhi", "hi"},
		{"unterminated csi at end", "abc\x1b[12", "abc"},
		{"trailing escape", "abc\x1b", "abc"},
		{"utf8 kept", "\x1b[33mgrüße ✓\x1b[0m", "grüße ✓"},
		{"newlines kept", "one\n\x1b[1mtwo\x1b[0m\n", "one\ntwo\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Sanitize(tt.in))
		})
	}
}

func TestSanitize_NoEscapeSurvives(t *testing.T) {
	alphabet := []byte{'\x1b', '[', ';', '0', '3', '1', 'm', 'K', 'a', ' ', '\n', 0xc3, 0xa9, 0xff}
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		n := rng.Intn(64)
		buf := make([]byte, n)
		for j := range buf {
			buf[j] = alphabet[rng.Intn(len(alphabet))]
		}
		in := string(buf)
		out := Sanitize(in)

		assert.NotContains(t, out, "\x1b", "input %q", in)
		assert.LessOrEqual(t, len(out), len(in), "input %q", in)
	}
}

func TestSanitize_PlainTextIdentity(t *testing.T) {
	in := strings.Repeat("ls -la /tmp\n", 50)
	assert.Equal(t, in, Sanitize(in))
}
