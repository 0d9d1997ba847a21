// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build windows

package terminal

import (
	"os"
	"os/exec"
)

// startPTY is not available on Windows; the panel stays inert with a diagnostic line.
func startPTY(cmd *exec.Cmd, size Size) (*os.File, *os.File, error) {
	return nil, nil, newSessionError(StagePtyOpen, ErrPTYNotSupported)
}
