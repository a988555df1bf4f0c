// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"github.com/spf13/pflag"

	"github.com/bureau-foundation/helpqueue/cmd/helpqueue/cli"
	"github.com/bureau-foundation/helpqueue/lib/queuesync"
)

type watchParams struct {
	connectionParams
	Count bool   `flag:"count" desc:"show only the open-ticket count"`
	Title string `flag:"title" desc:"heading for table renders (default board.title)"`
}

func watchCommand(env *environment) *cli.Command {
	var params watchParams
	return &cli.Command{
		Name:    "watch",
		Summary: "Print the queue every time it changes",
		Description: `Follow the open-ticket queue and print it whenever the server
signals a change. On a terminal each render replaces the last; when
piped, renders are appended so the output can be logged.

With --count only the number of open tickets is printed.`,
		Usage: "helpqueue watch [--count] [flags]",
		Examples: []cli.Example{
			{Description: "Follow the queue on the default server", Command: "helpqueue watch"},
			{Description: "Log the count from a staging server", Command: "helpqueue watch --count --server https://staging.example.edu >> queue.log"},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("watch", &params)
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
			logger := env.newLogger(level).With("command", "watch")

			fragment := queuesync.FragmentTable
			if params.Count {
				fragment = queuesync.FragmentCount
			}
			title := params.Title
			if title == "" {
				title = cfg.Board.Title
			}
			view := queuesync.NewTextView(env.stdout, queuesync.TextViewOptions{
				Title:      title,
				TimeFormat: cfg.Board.TimeFormat,
			})

			client, err := newSyncClient(cfg, view, []queuesync.Fragment{fragment}, fragment, env.clock, logger)
			if err != nil {
				return cli.Validation("%w", err)
			}

			ctx, cancel := env.runContext()
			defer cancel()
			keepConnected(ctx, client, env.clock, logger)
			return nil
		},
	}
}
