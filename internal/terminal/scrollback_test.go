// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScrollback_Append(t *testing.T) {
	tests := []struct {
		name      string
		fragments []string
		want      []string
	}{
		{"single line", []string{"hello\n"}, []string{"hello"}},
		{"several lines in one fragment", []string{"a\nb\nc\n"}, []string{"a", "b", "c"}},
		{"partial line continued", []string{"partial", " line\n"}, []string{"partial line"}},
		{"open line continued by leading newline", []string{"a\nb\nc", "\nd"}, []string{"a", "b", "c", "d"}},
		{"closed line not continued", []string{"x\n", "y"}, []string{"x", "y"}},
		{"blank line kept", []string{"a\n", "\n", "b\n"}, []string{"a", "", "b"}},
		{"continuation across three fragments", []string{"ab", "cd", "ef\n"}, []string{"abcdef"}},
		{"empty fragment ignored", []string{"", "z\n", ""}, []string{"z"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sb := NewScrollback(DefaultScrollbackLines)
			for _, f := range tt.fragments {
				sb.Append(f)
			}
			assert.Equal(t, tt.want, sb.Lines())
		})
	}
}

func TestScrollback_PushClosesOpenLine(t *testing.T) {
	sb := NewScrollback(10)
	sb.Append("prompt$ ")
	sb.Push("[notice]")
	sb.Append("next")

	assert.Equal(t, []string{"prompt$ ", "[notice]", "next"}, sb.Lines())
	assert.Equal(t, "next", sb.Last())
}

func TestScrollback_EvictsOldest(t *testing.T) {
	sb := NewScrollback(DefaultScrollbackLines)
	for i := 0; i < DefaultScrollbackLines+1; i++ {
		sb.Push(fmt.Sprintf("line %d", i))
	}

	require.Equal(t, DefaultScrollbackLines, sb.Len())
	lines := sb.Lines()
	assert.Equal(t, "line 1", lines[0])
	assert.Equal(t, fmt.Sprintf("line %d", DefaultScrollbackLines), lines[len(lines)-1])
}

func TestScrollback_EvictsWithinOneFragment(t *testing.T) {
	sb := NewScrollback(3)
	sb.Append("1\n2\n3\n4\n5\n")
	assert.Equal(t, []string{"3", "4", "5"}, sb.Lines())
}

func TestScrollback_Clear(t *testing.T) {
	sb := NewScrollback(5)
	sb.Append("a\nb")
	sb.Clear()

	assert.Equal(t, 0, sb.Len())
	assert.Equal(t, "", sb.Last())

	// the open line was discarded with everything else
	sb.Append("c\n")
	assert.Equal(t, []string{"c"}, sb.Lines())
}

func TestScrollback_LinesIsCopy(t *testing.T) {
	sb := NewScrollback(5)
	sb.Push("keep")
	lines := sb.Lines()
	lines[0] = "changed"

	assert.Equal(t, "keep", sb.Last())
}

func TestScrollback_DefaultCap(t *testing.T) {
	assert.Equal(t, DefaultScrollbackLines, NewScrollback(0).MaxLines())
	assert.Equal(t, DefaultScrollbackLines, NewScrollback(-3).MaxLines())
}

func TestScrollback_OffsetTracksEvictionAndClear(t *testing.T) {
	s := NewScrollback(3)
	assert.Equal(t, 0, s.Offset())

	s.Append("a\nb\n")
	s.Append("c")
	s.Append("c\n") // continuation, not a new line
	assert.Equal(t, 0, s.Offset())

	s.Append("d\ne\n")
	assert.Equal(t, []string{"cc", "d", "e"}, s.Lines())
	assert.Equal(t, 2, s.Offset())

	s.Push("notice")
	assert.Equal(t, 3, s.Offset())

	s.Clear()
	assert.Equal(t, 6, s.Offset())
	s.Append("f\n")
	assert.Equal(t, 6, s.Offset())
}

func TestScrollback_Open(t *testing.T) {
	s := NewScrollback(10)
	assert.False(t, s.Open())

	s.Append("$ ")
	assert.True(t, s.Open())

	s.Append("ls\n")
	assert.False(t, s.Open())

	s.Append("prompt")
	s.Push("diagnostic")
	assert.False(t, s.Open())

	s.Append("again")
	s.Clear()
	assert.False(t, s.Open())
}
