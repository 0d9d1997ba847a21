// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/jeranaias/shellpane/internal/terminal"
)

const (
	plainPrompt = "❯ "

	defaultPollInterval = 20 * time.Millisecond
	defaultQuietPeriod  = 150 * time.Millisecond
	defaultFirstOutput  = 2 * time.Second
)

func newPlainCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "plain [dir]",
		Short: "Run the shell through a line prompt instead of the full-screen UI",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(flags, cmd.ErrOrStderr(), true)
			if err != nil {
				return err
			}
			defer e.Close()

			dir, err := startDir(e.cfg, args)
			if err != nil {
				return err
			}

			ctrl := e.newController(dir)
			defer ctrl.Close()

			line := liner.NewLiner()
			defer line.Close()
			line.SetCtrlCAborts(true)
			for _, entry := range ctrl.History().Entries() {
				line.AppendHistory(entry)
			}

			return newPlainSession(ctrl, line, cmd.OutOrStdout()).run(cmd.Context())
		},
	}
}

// lineReader is the part of liner.State plain mode uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
}

// plainSession feeds typed lines to a controller and prints what the shell
// writes back. After each command it polls until the shell has been quiet
// for a moment, so interactive full-screen programs do not work here.
type plainSession struct {
	ctrl    *terminal.Controller
	in      lineReader
	printer *linePrinter

	poll        time.Duration
	quiet       time.Duration
	firstOutput time.Duration
}

func newPlainSession(ctrl *terminal.Controller, in lineReader, out io.Writer) *plainSession {
	return &plainSession{
		ctrl:        ctrl,
		in:          in,
		printer:     &linePrinter{w: out},
		poll:        defaultPollInterval,
		quiet:       defaultQuietPeriod,
		firstOutput: defaultFirstOutput,
	}
}

func (p *plainSession) run(ctx context.Context) error {
	if ctx == nil {
		ctx = context.Background()
	}

	if p.ctrl.SessionID() == "" {
		p.printer.flush(p.ctrl.Scrollback(), false)
		return ErrTerminalUnavailable
	}
	p.settle(ctx)

	for ctx.Err() == nil {
		if !p.ctrl.Alive() {
			p.ctrl.Update()
			p.printer.flush(p.ctrl.Scrollback(), false)
			return nil
		}

		prompt, ok := p.printer.takeOpen(p.ctrl.Scrollback())
		if !ok || strings.TrimSpace(prompt) == "" {
			prompt += plainPrompt
		}

		input, err := p.in.Prompt(prompt)
		switch {
		case errors.Is(err, liner.ErrPromptAborted):
			p.ctrl.Interrupt()
			p.settle(ctx)
			continue
		case errors.Is(err, io.EOF):
			fmt.Fprintln(p.printer.w)
			return nil
		case err != nil:
			return err
		}

		if strings.TrimSpace(input) != "" {
			p.in.AppendHistory(input)
		}
		p.ctrl.Submit(input)
		p.settle(ctx)
	}
	return nil
}

// settle drains output until the shell has been quiet for p.quiet, or no
// output arrived within p.firstOutput, or the shell exited.
func (p *plainSession) settle(ctx context.Context) {
	start := time.Now()
	var last time.Time

	for {
		if p.ctrl.Update() > 0 {
			last = time.Now()
			p.printer.flush(p.ctrl.Scrollback(), true)
		}
		if !p.ctrl.Alive() {
			return
		}

		now := time.Now()
		if !last.IsZero() && now.Sub(last) >= p.quiet {
			return
		}
		if last.IsZero() && now.Sub(start) >= p.firstOutput {
			return
		}

		select {
		case <-ctx.Done():
			return
		case <-time.After(p.poll):
		}
	}
}

// =============================================================================
// LINE PRINTER
// =============================================================================

// linePrinter writes scrollback lines it has not written yet. It tracks an
// absolute line index (see Scrollback.Offset) and how much of that line was
// already written, so a line that grows across fragments is never repeated.
type linePrinter struct {
	w       io.Writer
	next    int // absolute index of the first line not fully written
	partial int // bytes of line next already written
}

// flush writes new text. With holdOpen an unfinished last line is kept back
// so it can become the prompt.
func (lp *linePrinter) flush(sb *terminal.Scrollback, holdOpen bool) {
	lines := sb.Lines()
	base := sb.Offset()
	if lp.next < base {
		lp.next, lp.partial = base, 0
	}

	for i := lp.next - base; i < len(lines); i++ {
		line := lines[i]
		if lp.partial > len(line) {
			lp.partial = 0
		}
		rest := line[lp.partial:]

		if i == len(lines)-1 && sb.Open() {
			if holdOpen {
				return
			}
			fmt.Fprint(lp.w, rest)
			lp.partial = len(line)
			return
		}

		fmt.Fprintln(lp.w, rest)
		lp.next++
		lp.partial = 0
	}
}

// takeOpen returns the unwritten part of an unfinished last line, typically
// the shell's own prompt, and marks it written.
func (lp *linePrinter) takeOpen(sb *terminal.Scrollback) (string, bool) {
	lp.flush(sb, true)
	if !sb.Open() {
		return "", false
	}
	lines := sb.Lines()
	if lp.next-sb.Offset() != len(lines)-1 {
		return "", false
	}

	line := lines[len(lines)-1]
	if lp.partial > len(line) {
		lp.partial = 0
	}
	rest := line[lp.partial:]
	lp.partial = len(line)

	// A carriage return rewinds the line; only what follows the last one shows.
	if i := strings.LastIndexByte(rest, '\r'); i >= 0 {
		rest = rest[i+1:]
	}
	return rest, true
}
