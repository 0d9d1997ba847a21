// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jeranaias/shellpane/internal/ui/app"
	"github.com/jeranaias/shellpane/internal/ui/browser"
	"github.com/jeranaias/shellpane/internal/ui/shell"
	"github.com/jeranaias/shellpane/internal/ui/styles"
)

// runTUI starts the full-screen UI.
func runTUI(cmd *cobra.Command, flags *globalFlags, args []string) error {
	if !CanRunTUI() {
		return ErrNotTerminal
	}

	e, err := setup(flags, cmd.ErrOrStderr(), true)
	if err != nil {
		return err
	}
	defer e.Close()

	dir, err := startDir(e.cfg, args)
	if err != nil {
		return err
	}

	lg := e.logger.Logger
	theme := styles.NewTheme(e.cfg.UI.Theme)

	ctrl := e.newController(dir)
	panel := shell.New(ctrl, theme,
		shell.WithTickInterval(time.Duration(e.cfg.Terminal.TickMS)*time.Millisecond),
		shell.WithLogger(lg),
	)

	browserOpts := []browser.Option{
		browser.WithShowHidden(e.cfg.Browser.ShowHidden),
		browser.WithLogger(lg),
	}
	if e.cfg.Browser.Watch {
		w, err := browser.NewWatcher(browser.DefaultRefreshInterval, lg)
		if err != nil {
			lg.Warn("directory watching disabled", zap.Error(err))
		} else {
			defer w.Close()
			browserOpts = append(browserOpts, browser.WithWatcher(w))
		}
	}

	m := app.New(browser.New(dir, theme, browserOpts...), panel, theme,
		app.WithTerminalHeight(e.cfg.UI.TerminalHeight),
		app.WithTerminalVisible(e.cfg.UI.ShowTerminal),
		app.WithLogger(lg),
	)
	defer m.Close()

	lg.Info("starting", zap.String("dir", dir), zap.String("shell", ctrl.Shell()))

	p := tea.NewProgram(m,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	)
	_, err = p.Run()
	return err
}
