// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

//go:build !windows

package terminal

import (
	"os"
	"os/exec"
	"syscall"

	"github.com/creack/pty"
	"golang.org/x/sys/unix"
)

// startPTY allocates a pty, starts cmd on its slave side and returns independent
// writer and reader handles duplicated from the master.
func startPTY(cmd *exec.Cmd, size Size) (*os.File, *os.File, error) {
	ptmx, tty, err := pty.Open()
	if err != nil {
		return nil, nil, newSessionError(StagePtyOpen, err)
	}

	if err := pty.Setsize(ptmx, &pty.Winsize{Rows: size.Rows, Cols: size.Cols}); err != nil {
		ptmx.Close()
		tty.Close()
		return nil, nil, newSessionError(StagePtyOpen, err)
	}

	cmd.Stdin = tty
	cmd.Stdout = tty
	cmd.Stderr = tty
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Setsid = true
	cmd.SysProcAttr.Setctty = true

	if err := cmd.Start(); err != nil {
		ptmx.Close()
		tty.Close()
		return nil, nil, newSessionError(StageShellSpawn, err)
	}

	// The child holds its own copy of the slave.
	tty.Close()

	writer, err := dupHandle(ptmx, "pty-writer")
	if err != nil {
		abortStarted(cmd, ptmx)
		return nil, nil, newSessionError(StageHandleAcquisition, err)
	}

	reader, err := dupHandle(ptmx, "pty-reader")
	if err != nil {
		writer.Close()
		abortStarted(cmd, ptmx)
		return nil, nil, newSessionError(StageHandleAcquisition, err)
	}

	ptmx.Close()
	return writer, reader, nil
}

// dupHandle duplicates f's descriptor (close-on-exec, non-blocking) so that the
// copy can be closed independently and still unblock a pending Read.
func dupHandle(f *os.File, name string) (*os.File, error) {
	rc, err := f.SyscallConn()
	if err != nil {
		return nil, err
	}

	var fd int
	var dupErr error
	if err := rc.Control(func(s uintptr) {
		fd, dupErr = unix.FcntlInt(s, unix.F_DUPFD_CLOEXEC, 0)
	}); err != nil {
		return nil, err
	}
	if dupErr != nil {
		return nil, dupErr
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return nil, err
	}
	return os.NewFile(uintptr(fd), name), nil
}

// abortStarted tears down a child that was started but cannot be used.
func abortStarted(cmd *exec.Cmd, ptmx *os.File) {
	ptmx.Close()
	if cmd.Process != nil {
		cmd.Process.Kill()
	}
	cmd.Wait()
}
