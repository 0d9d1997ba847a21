// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"go.uber.org/zap"
)

// recorderTimeout bounds each call into a HistoryRecorder.
const recorderTimeout = 2 * time.Second

// HistoryRecorder persists submitted commands across runs.
type HistoryRecorder interface {
	RecordCommand(ctx context.Context, command, directory, sessionID string) error
	RecentCommands(ctx context.Context, limit int) ([]string, error)
}

// opener matches Open; tests replace it to avoid a real pty.
type opener func(dir string, size Size, opts ...SessionOption) (*Session, error)

// Controller is the terminal panel's state: the session, what it printed,
// and what the user typed. It is driven from a single goroutine (the UI loop)
// and never blocks on the shell.
type Controller struct {
	dir   string
	shell string
	env   []string

	session    *Session
	scrollback *Scrollback
	history    *History
	recorder   HistoryRecorder
	logger     *zap.Logger
	open       opener

	exitReported bool
	closed       bool
}

// Option configures a Controller.
type Option func(*Controller)

// WithShell sets the shell executable. Empty means resolve from the environment.
func WithShell(shell string) Option {
	return func(c *Controller) { c.shell = shell }
}

// WithEnv appends KEY=VALUE entries to the shell's environment.
func WithEnv(env []string) Option {
	return func(c *Controller) { c.env = append(c.env, env...) }
}

// WithLogger sets the logger.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Controller) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithHistoryRecorder persists submitted commands and seeds history from it.
func WithHistoryRecorder(r HistoryRecorder) Option {
	return func(c *Controller) { c.recorder = r }
}

// WithScrollbackLines overrides the scrollback cap.
func WithScrollbackLines(n int) Option {
	return func(c *Controller) { c.scrollback = NewScrollback(n) }
}

// WithHistoryEntries overrides the history cap.
func WithHistoryEntries(n int) Option {
	return func(c *Controller) { c.history = NewHistory(n) }
}

func withOpener(fn opener) Option {
	return func(c *Controller) { c.open = fn }
}

// NewController starts a shell in dir. If the session cannot be opened the
// controller is still usable: scrollback holds one diagnostic line and every
// shell-bound operation does nothing.
func NewController(dir string, opts ...Option) *Controller {
	c := &Controller{
		dir:        dir,
		scrollback: NewScrollback(DefaultScrollbackLines),
		history:    NewHistory(DefaultHistoryEntries),
		logger:     zap.NewNop(),
		open:       Open,
	}
	for _, opt := range opts {
		opt(c)
	}

	c.seedHistory()
	c.spawn()
	return c
}

func (c *Controller) seedHistory() {
	if c.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recorderTimeout)
	defer cancel()

	entries, err := c.recorder.RecentCommands(ctx, c.history.MaxEntries())
	if err != nil {
		c.logger.Warn("failed to load command history", zap.Error(err))
		return
	}
	c.history.Load(entries)
}

func (c *Controller) spawn() {
	session, err := c.open(c.dir, DefaultSize(),
		WithSessionShell(c.shell),
		WithSessionEnv(c.env),
		WithSessionLogger(c.logger),
	)
	if err != nil {
		c.session = nil
		c.scrollback.Push(diagnosticLine(err))
		return
	}

	c.session = session
	c.exitReported = false
	c.scrollback.Push(fmt.Sprintf("Terminal ready in: %s", c.dir))
}

// diagnosticLine renders an open failure as a single scrollback line.
func diagnosticLine(err error) string {
	msg := strings.ReplaceAll(err.Error(), "\n", " ")
	r, size := utf8.DecodeRuneInString(msg)
	if size == 0 {
		return "Terminal unavailable"
	}
	return string(unicode.ToUpper(r)) + msg[size:]
}

// =============================================================================
// OUTPUT
// =============================================================================

// Update moves every chunk currently queued by the relay into scrollback,
// sanitized, and returns how many chunks it consumed. It never blocks.
// The first Update after the shell exits appends an exit notice.
func (c *Controller) Update() int {
	relay := c.session.Relay()
	if relay == nil {
		return 0
	}

	n := c.drain(relay)
	if !c.exitReported && !c.session.Closed() && relay.Finished() {
		// chunks sent just before Done closed
		n += c.drain(relay)
		c.exitReported = true
		c.scrollback.Push(exitLine(relay.ExitCode()))
	}
	return n
}

func (c *Controller) drain(relay *Relay) int {
	n := 0
	for {
		select {
		case chunk := <-relay.Output():
			c.scrollback.Append(Sanitize(chunk))
			n++
		default:
			return n
		}
	}
}

func exitLine(code int) string {
	if code < 0 {
		return "[process exited]"
	}
	return fmt.Sprintf("[process exited with status %d]", code)
}

// =============================================================================
// INPUT
// =============================================================================

// Submit handles the enter key. Blank input sends a bare newline and is
// returned unchanged; anything else is recorded in history, sent with a
// trailing newline and the cleared input ("") is returned.
func (c *Controller) Submit(input string) string {
	if strings.TrimSpace(input) == "" {
		c.session.Send([]byte("\n"))
		return input
	}

	c.history.Submit(input)
	c.record(input)
	c.session.Send([]byte(input + "\n"))
	return ""
}

func (c *Controller) record(command string) {
	if c.recorder == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), recorderTimeout)
	defer cancel()

	if err := c.recorder.RecordCommand(ctx, command, c.dir, c.session.ID()); err != nil {
		c.logger.Warn("failed to persist command", zap.Error(err))
	}
}

// HistoryPrevious moves the recall cursor back. ok is false when there is no history.
func (c *Controller) HistoryPrevious() (string, bool) {
	return c.history.Previous()
}

// HistoryNext moves the recall cursor forward. An empty string with ok true
// means the cursor moved past the newest entry.
func (c *Controller) HistoryNext() (string, bool) {
	return c.history.Next()
}

// Interrupt sends Ctrl+C to the shell.
func (c *Controller) Interrupt() {
	c.session.Interrupt()
}

// SetDirectory follows the file browser: the shell is sent a cd command only
// when the directory actually changes.
func (c *Controller) SetDirectory(path string) {
	if path == c.dir {
		return
	}
	c.dir = path
	c.session.ChangeDirectory(path)
}

// Clear empties scrollback. The shell is not told.
func (c *Controller) Clear() {
	c.scrollback.Clear()
}

// Restart closes the current session and opens a new one in the current directory.
func (c *Controller) Restart() {
	if c.closed {
		return
	}
	c.session.Close()
	c.logger.Info("restarting terminal session", zap.String("dir", c.dir))
	c.spawn()
}

// Close ends the session. The controller keeps its scrollback and history.
func (c *Controller) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	return c.session.Close()
}

// =============================================================================
// ACCESSORS
// =============================================================================

// Lines returns a copy of scrollback, oldest first.
func (c *Controller) Lines() []string {
	return c.scrollback.Lines()
}

// Scrollback returns the scrollback buffer.
func (c *Controller) Scrollback() *Scrollback {
	return c.scrollback
}

// History returns the command history.
func (c *Controller) History() *History {
	return c.history
}

// Directory returns the directory the panel follows.
func (c *Controller) Directory() string {
	return c.dir
}

// Shell returns the running shell's path, or the configured one if none is running.
func (c *Controller) Shell() string {
	if c.session != nil {
		return c.session.Shell()
	}
	return ResolveShell(c.shell)
}

// SessionID returns the current session's ID, or "" when there is none.
func (c *Controller) SessionID() string {
	return c.session.ID()
}

// Alive reports whether a shell is attached and still running.
func (c *Controller) Alive() bool {
	if c.session == nil || c.session.Closed() {
		return false
	}
	return !c.session.Relay().Finished()
}
