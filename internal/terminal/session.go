// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"runtime"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// =============================================================================
// GEOMETRY
// =============================================================================

// Fixed pty geometry. It is set once at open and never renegotiated.
const (
	DefaultCols = 80
	DefaultRows = 24
)

// interruptByte is ETX, what a terminal sends for Ctrl+C.
const interruptByte = 0x03

// Size is the pty window size in character cells.
type Size struct {
	Cols uint16
	Rows uint16
}

// DefaultSize returns the fixed 80x24 geometry.
func DefaultSize() Size {
	return Size{Cols: DefaultCols, Rows: DefaultRows}
}

// =============================================================================
// SHELL RESOLUTION
// =============================================================================

// ShellEnvVar returns the environment variable holding the preferred shell.
func ShellEnvVar() string {
	if runtime.GOOS == "windows" {
		return "COMSPEC"
	}
	return "SHELL"
}

// DefaultShell returns the shell used when neither an option nor the environment names one.
func DefaultShell() string {
	if runtime.GOOS == "windows" {
		return "cmd.exe"
	}
	return "/bin/sh"
}

// ResolveShell picks the shell executable: explicit value, then the environment,
// then the platform default.
func ResolveShell(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if shell := os.Getenv(ShellEnvVar()); shell != "" {
		return shell
	}
	return DefaultShell()
}

// ChangeDirectoryCommand builds the line written to the shell to change directory.
// The path is wrapped in double quotes and not otherwise escaped, so a path that
// itself contains a double quote produces a malformed command.
func ChangeDirectoryCommand(path string) []byte {
	return []byte(fmt.Sprintf("cd \"%s\"\n", path))
}

// =============================================================================
// SESSION
// =============================================================================

// process is the part of a child process the session needs.
type process interface {
	// Wait blocks until the process exits and returns its exit code (-1 if unknown).
	Wait() int
	Kill() error
	Pid() int
}

// Session is one live shell process attached to a pseudo-terminal.
//
// The writer is used only from the goroutine that owns the session. The reader
// belongs to the relay goroutine once Open returns; the session keeps only the
// ability to close it. Both are released together by Close.
//
// Methods are safe to call on a nil *Session and do nothing.
type Session struct {
	id    string
	shell string
	dir   string

	writer     io.WriteCloser
	readCloser io.Closer
	proc       process
	relay      *Relay
	logger     *zap.Logger
	closed     bool
}

// SessionOption configures Open.
type SessionOption func(*sessionConfig)

type sessionConfig struct {
	shell  string
	env    []string
	logger *zap.Logger
}

// WithSessionShell sets the shell executable instead of resolving it from the environment.
func WithSessionShell(shell string) SessionOption {
	return func(c *sessionConfig) { c.shell = shell }
}

// WithSessionEnv appends extra KEY=VALUE entries to the child environment.
func WithSessionEnv(env []string) SessionOption {
	return func(c *sessionConfig) { c.env = append(c.env, env...) }
}

// WithSessionLogger sets the logger for session and relay events.
func WithSessionLogger(logger *zap.Logger) SessionOption {
	return func(c *sessionConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// Open starts a shell in dir attached to a new pty of the given size and starts
// its relay. Failures are reported as *SessionError.
func Open(dir string, size Size, opts ...SessionOption) (*Session, error) {
	cfg := sessionConfig{logger: zap.NewNop()}
	for _, opt := range opts {
		opt(&cfg)
	}
	shell := ResolveShell(cfg.shell)

	cmd := exec.Command(shell)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), "TERM=dumb")
	cmd.Env = append(cmd.Env, cfg.env...)

	writer, reader, err := startPTY(cmd, size)
	if err != nil {
		cfg.logger.Warn("terminal session open failed",
			zap.String("shell", shell),
			zap.String("dir", dir),
			zap.Error(err),
		)
		return nil, err
	}

	s := newSession(dir, shell, writer, reader, &cmdProcess{cmd: cmd}, cfg.logger)
	s.logger.Info("terminal session opened",
		zap.String("shell", shell),
		zap.String("dir", dir),
		zap.Int("pid", s.proc.Pid()),
		zap.Uint16("cols", size.Cols),
		zap.Uint16("rows", size.Rows),
	)
	return s, nil
}

// newSession wires already-acquired handles into a Session and starts its relay.
func newSession(dir, shell string, writer io.WriteCloser, reader io.ReadCloser, proc process, logger *zap.Logger) *Session {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.New().String()
	logger = logger.With(zap.String("session", id))

	return &Session{
		id:         id,
		shell:      shell,
		dir:        dir,
		writer:     writer,
		readCloser: reader,
		proc:       proc,
		relay:      startRelay(reader, proc, logger),
		logger:     logger,
	}
}

// ID returns the session's unique identifier.
func (s *Session) ID() string {
	if s == nil {
		return ""
	}
	return s.id
}

// Shell returns the shell executable path.
func (s *Session) Shell() string {
	if s == nil {
		return ""
	}
	return s.shell
}

// Directory returns the directory the session last changed to.
func (s *Session) Directory() string {
	if s == nil {
		return ""
	}
	return s.dir
}

// PID returns the shell process ID, or -1 when unknown.
func (s *Session) PID() int {
	if s == nil || s.proc == nil {
		return -1
	}
	return s.proc.Pid()
}

// Relay returns the session's output relay.
func (s *Session) Relay() *Relay {
	if s == nil {
		return nil
	}
	return s.relay
}

// ChangeDirectory writes a cd command when path differs from the tracked directory.
// It reports whether a command was written. Write failures are ignored.
func (s *Session) ChangeDirectory(path string) bool {
	if s == nil || path == s.dir {
		return false
	}
	s.dir = path
	if s.closed || s.writer == nil {
		return false
	}
	s.write(ChangeDirectoryCommand(path))
	s.logger.Debug("directory change sent", zap.String("dir", path))
	return true
}

// Send writes data to the shell's input. Failures are ignored; the shell may have exited.
func (s *Session) Send(data []byte) {
	if s == nil || s.closed || s.writer == nil {
		return
	}
	s.write(data)
}

// Interrupt writes the interrupt byte, as if Ctrl+C was pressed in a real terminal.
func (s *Session) Interrupt() {
	s.Send([]byte{interruptByte})
}

// Close releases the writer, then the reader, then terminates the shell.
// The relay observes the closed reader, reaps the process and exits on its own.
func (s *Session) Close() error {
	if s == nil || s.closed {
		return nil
	}
	s.closed = true

	if s.relay != nil {
		s.relay.stop()
	}
	if s.writer != nil {
		s.writer.Close()
	}
	if s.readCloser != nil {
		s.readCloser.Close()
	}
	if s.proc != nil {
		s.proc.Kill()
	}

	s.logger.Info("terminal session closed")
	return nil
}

// Closed reports whether Close has been called.
func (s *Session) Closed() bool {
	return s == nil || s.closed
}

func (s *Session) write(p []byte) {
	if _, err := s.writer.Write(p); err != nil {
		s.logger.Debug("pty write failed", zap.Error(err))
	}
}

// =============================================================================
// PROCESS ADAPTER
// =============================================================================

// cmdProcess adapts a started *exec.Cmd to process.
type cmdProcess struct {
	cmd *exec.Cmd
}

func (p *cmdProcess) Wait() int {
	p.cmd.Wait()
	if p.cmd.ProcessState == nil {
		return -1
	}
	return p.cmd.ProcessState.ExitCode()
}

func (p *cmdProcess) Kill() error {
	if p.cmd.Process == nil {
		return nil
	}
	return p.cmd.Process.Kill()
}

func (p *cmdProcess) Pid() int {
	if p.cmd.Process == nil {
		return -1
	}
	return p.cmd.Process.Pid
}
