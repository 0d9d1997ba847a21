// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"errors"

	"github.com/jeranaias/shellpane/internal/config"
)

// =============================================================================
// EXIT CODES
// =============================================================================

const (
	ExitSuccess      = 0
	ExitGeneralError = 1
	ExitUsageError   = 2
	ExitConfigError  = 3
	ExitNotTerminal  = 4
)

// Sentinel errors for the command layer.
var (
	// ErrNotTerminal is returned when the full-screen UI is started without a terminal.
	ErrNotTerminal = errors.New("shellpane needs an interactive terminal (try `shellpane plain`)")

	// ErrTerminalUnavailable is returned by plain mode when no shell could be started.
	ErrTerminalUnavailable = errors.New("terminal unavailable")

	// ErrHistoryDisabled is returned by history commands when persistence is off.
	ErrHistoryDisabled = errors.New("command history persistence is disabled (terminal.persist_history)")
)

// UsageError marks a bad invocation.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return e.Msg }

// ExitCode maps an error returned by a command to the process exit status.
func ExitCode(err error) int {
	var usage *UsageError
	var invalid config.ValidateErrors
	var field config.ValidationError

	switch {
	case err == nil:
		return ExitSuccess
	case errors.As(err, &usage):
		return ExitUsageError
	case errors.Is(err, ErrNotTerminal):
		return ExitNotTerminal
	case errors.As(err, &invalid), errors.As(err, &field):
		return ExitConfigError
	default:
		return ExitGeneralError
	}
}
