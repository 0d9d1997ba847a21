// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package terminal

import (
	"errors"
	"fmt"
)

// Sentinel errors for the terminal package.
var (
	// ErrPtyOpen is returned when the pseudo-terminal pair cannot be allocated.
	ErrPtyOpen = errors.New("failed to open PTY")

	// ErrShellSpawn is returned when the shell process cannot be started.
	ErrShellSpawn = errors.New("failed to spawn shell")

	// ErrHandleAcquisition is returned when the writer or reader handle cannot be derived.
	ErrHandleAcquisition = errors.New("failed to acquire PTY handle")

	// ErrPTYNotSupported is returned when PTY is not supported on this platform.
	ErrPTYNotSupported = errors.New("PTY not supported on this platform")

	// ErrSessionClosed is returned by operations on a closed session.
	ErrSessionClosed = errors.New("session is closed")
)

// Stage identifies the step of session establishment that failed.
type Stage int

const (
	StagePtyOpen Stage = iota
	StageShellSpawn
	StageHandleAcquisition
)

// String returns the human-readable stage name.
func (s Stage) String() string {
	switch s {
	case StagePtyOpen:
		return "pty open"
	case StageShellSpawn:
		return "shell spawn"
	case StageHandleAcquisition:
		return "handle acquisition"
	default:
		return fmt.Sprintf("stage(%d)", int(s))
	}
}

// sentinel returns the package error matching the stage.
func (s Stage) sentinel() error {
	switch s {
	case StagePtyOpen:
		return ErrPtyOpen
	case StageShellSpawn:
		return ErrShellSpawn
	default:
		return ErrHandleAcquisition
	}
}

// SessionError reports a failure while establishing a Session.
// It matches both the stage sentinel and the underlying cause with errors.Is.
type SessionError struct {
	Stage Stage
	Err   error
}

func (e *SessionError) Error() string {
	if e.Err == nil {
		return e.Stage.sentinel().Error()
	}
	return fmt.Sprintf("%s: %v", e.Stage.sentinel(), e.Err)
}

// Unwrap exposes the stage sentinel and the cause.
func (e *SessionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Stage.sentinel()}
	}
	return []error{e.Stage.sentinel(), e.Err}
}

func newSessionError(stage Stage, err error) *SessionError {
	return &SessionError{Stage: stage, Err: err}
}
