// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/helpqueue/cmd/helpqueue/cli"
	"github.com/bureau-foundation/helpqueue/lib/queuesync"
	"github.com/bureau-foundation/helpqueue/lib/queueui"
)

type boardParams struct {
	connectionParams
	Title string `flag:"title" desc:"board heading (default board.title)"`
}

func boardCommand(env *environment) *cli.Command {
	var params boardParams
	return &cli.Command{
		Name:    "board",
		Summary: "Show the live queue as a full-screen board",
		Description: `Open a full-screen board of the open-ticket queue that updates as
tickets are created, claimed and resolved. Tickets being helped show
"In Progress"; the rest are numbered in queue order. New arrivals
glow briefly.

Warnings and errors appear in the status bar instead of stderr.`,
		Usage: "helpqueue board [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("board", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			cfg, err := params.load()
			if err != nil {
				return err
			}
			level, err := params.level()
			if err != nil {
				return err
			}
			fragment, err := queuesync.ParseFragment(cfg.Sync.Fragment)
			if err != nil {
				return cli.Validation("%w", err)
			}

			// The alternate screen owns the terminal, so records go to
			// the status bar. Below warn they would only flicker past.
			handler := queueui.NewTUILogHandler(max(level, slog.LevelWarn))
			logger := slog.New(handler).With("command", "board")

			ctx, cancel := env.runContext()
			defer cancel()

			title := params.Title
			if title == "" {
				title = cfg.Board.Title
			}
			var client *queuesync.Client
			model := queueui.NewModel(queueui.Options{
				Title:      title,
				TimeFormat: cfg.Board.TimeFormat,
				Clock:      env.clock,
				Reload: func() {
					client.Reload(ctx)
				},
			})
			program := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			handler.SetProgram(program)

			client, err = newSyncClient(cfg, queueui.NewProgramView(program),
				[]queuesync.Fragment{queuesync.FragmentTable, queuesync.FragmentCount},
				fragment, env.clock, logger)
			if err != nil {
				return cli.Validation("%w", err)
			}

			syncCtx, stopSync := context.WithCancel(ctx)
			synced := make(chan struct{})
			go func() {
				defer close(synced)
				keepConnected(syncCtx, client, env.clock, logger)
			}()

			_, runErr := program.Run()
			stopSync()
			<-synced
			if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
				return cli.Internal("board: %w", runErr)
			}
			return nil
		},
	}
}
