// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"
)

// =============================================================================
// FAKE HANDLES
// =============================================================================

// recordingWriter stands in for the pty writer.
type recordingWriter struct {
	mu     sync.Mutex
	buf    bytes.Buffer
	writes int
	closed bool
}

func (w *recordingWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.closed {
		return 0, io.ErrClosedPipe
	}
	w.writes++
	return w.buf.Write(p)
}

func (w *recordingWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.closed = true
	return nil
}

func (w *recordingWriter) String() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.buf.String()
}

func (w *recordingWriter) Writes() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.writes
}

func (w *recordingWriter) Closed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.closed
}

// fakeProcess stands in for the shell process.
type fakeProcess struct {
	exited chan struct{}
	once   sync.Once
	code   atomic.Int64
	killed atomic.Bool
}

func newFakeProcess() *fakeProcess {
	return &fakeProcess{exited: make(chan struct{})}
}

func (p *fakeProcess) Wait() int {
	<-p.exited
	return int(p.code.Load())
}

func (p *fakeProcess) Kill() error {
	p.killed.Store(true)
	p.exit(-1)
	return nil
}

func (p *fakeProcess) Pid() int { return 4242 }

func (p *fakeProcess) exit(code int) {
	p.once.Do(func() {
		p.code.Store(int64(code))
		close(p.exited)
	})
}

// fakeShell is one session built on fake handles.
type fakeShell struct {
	session *Session
	input   *recordingWriter
	output  *io.PipeWriter
	proc    *fakeProcess
}

func newFakeShell(t *testing.T, dir string) *fakeShell {
	t.Helper()
	pr, pw := io.Pipe()
	w := &recordingWriter{}
	proc := newFakeProcess()
	s := newSession(dir, "/bin/fake", w, pr, proc, zaptest.NewLogger(t))
	t.Cleanup(func() {
		s.Close()
		// the relay logs until it finishes; keep the test alive until then
		select {
		case <-s.Relay().Done():
		case <-time.After(2 * time.Second):
			t.Error("relay still running after close")
		}
	})
	return &fakeShell{session: s, input: w, output: pw, proc: proc}
}

// exit makes the fake shell end its output and terminate with code.
func (f *fakeShell) exit(code int) {
	f.proc.exit(code)
	f.output.Close()
}

// fakeOpener hands out fake shells and remembers them.
type fakeOpener struct {
	t      *testing.T
	err    error
	shells []*fakeShell
	dirs   []string
}

func (o *fakeOpener) open(dir string, size Size, opts ...SessionOption) (*Session, error) {
	o.dirs = append(o.dirs, dir)
	if o.err != nil {
		return nil, o.err
	}
	shell := newFakeShell(o.t, dir)
	o.shells = append(o.shells, shell)
	return shell.session, nil
}

func (o *fakeOpener) last() *fakeShell {
	return o.shells[len(o.shells)-1]
}

// =============================================================================
// FAKE RECORDER
// =============================================================================

type recordedCommand struct {
	command   string
	directory string
	sessionID string
}

type fakeRecorder struct {
	recent   []string
	recorded []recordedCommand
	err      error
}

func (r *fakeRecorder) RecordCommand(ctx context.Context, command, directory, sessionID string) error {
	if r.err != nil {
		return r.err
	}
	r.recorded = append(r.recorded, recordedCommand{command, directory, sessionID})
	return nil
}

func (r *fakeRecorder) RecentCommands(ctx context.Context, limit int) ([]string, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.recent, nil
}

var errFakeStore = errors.New("store unavailable")
