// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/jeranaias/shellpane/internal/storage"
	"github.com/jeranaias/shellpane/internal/util"
)

const defaultHistoryLimit = 20

func newHistoryCmd(flags *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show commands run in the terminal panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, flags, func(store *storage.HistoryStore) error {
				entries, err := store.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				printEntries(cmd.OutOrStdout(), entries)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "number of commands to show")

	cmd.AddCommand(newHistorySearchCmd(flags))
	cmd.AddCommand(newHistoryPruneCmd(flags))
	return cmd
}

func newHistorySearchCmd(flags *globalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "search <text>",
		Short: "Find commands containing text",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withStore(cmd, flags, func(store *storage.HistoryStore) error {
				entries, err := store.Search(cmd.Context(), args[0], limit)
				if err != nil {
					return err
				}
				printEntries(cmd.OutOrStdout(), entries)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", defaultHistoryLimit, "maximum number of matches")
	return cmd
}

func newHistoryPruneCmd(flags *globalFlags) *cobra.Command {
	var keep int
	cmd := &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the newest commands",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if keep < 0 {
				return &UsageError{Msg: "--keep must not be negative"}
			}
			return withStore(cmd, flags, func(store *storage.HistoryStore) error {
				removed, err := store.Prune(cmd.Context(), keep)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s %d commands\n", SuccessStyle.Render("Removed"), removed)
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&keep, "keep", 1000, "number of newest commands to keep")
	return cmd
}

// withStore opens the history database for the duration of fn.
func withStore(cmd *cobra.Command, flags *globalFlags, fn func(*storage.HistoryStore) error) error {
	cfg, err := loadConfig(flags, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	if !cfg.Terminal.PersistHistory {
		return ErrHistoryDisabled
	}

	store, err := storage.OpenHistory(cfg.Terminal.HistoryDB)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(store)
}

func printEntries(w io.Writer, entries []storage.Entry) {
	if len(entries) == 0 {
		fmt.Fprintln(w, DimStyle.Render("No commands recorded."))
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s  %s  %s\n",
			DimStyle.Render(e.CreatedAt.Local().Format(time.DateTime)),
			LabelStyle.Render(util.ShortenPath(e.Directory, 18)),
			ValueStyle.Render(e.Command),
		)
	}
}
