// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the helpqueue command tree.
package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/bureau-foundation/helpqueue/cmd/helpqueue/cli"
	"github.com/bureau-foundation/helpqueue/lib/clock"
	"github.com/bureau-foundation/helpqueue/lib/version"
)

// environment is what commands touch outside their flags. Tests swap
// in buffers and a cancellable context.
type environment struct {
	stdout io.Writer
	stderr io.Writer

	// runContext returns the context a command runs under. The real
	// one is cancelled by SIGINT or SIGTERM.
	runContext func() (context.Context, context.CancelFunc)

	newLogger func(level slog.Level) *slog.Logger

	clock clock.Clock
}

// Root builds the complete helpqueue command tree.
func Root() *cli.Command {
	return newRoot(&environment{
		stdout: os.Stdout,
		stderr: os.Stderr,
		runContext: func() (context.Context, context.CancelFunc) {
			return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		},
		newLogger: cli.NewCommandLogger,
		clock:     clock.Real(),
	})
}

func newRoot(env *environment) *cli.Command {
	return &cli.Command{
		Name: "helpqueue",
		Description: `helpqueue: terminal client for a help-desk ticket queue.

Watch the open-ticket queue live over the server's Socket.IO channel,
list and create tickets, and submit ticket forms such as resolutions.`,
		HelpOutput: env.stderr,
		Subcommands: []*cli.Command{
			boardCommand(env),
			watchCommand(env),
			ticketsCommand(env),
			resolveCommand(env),
			createCommand(env),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(args []string) error {
					if len(args) > 0 {
						return cli.Validation("version takes no arguments")
					}
					fmt.Fprintf(env.stdout, "helpqueue %s\n", version.Full())
					return nil
				},
			},
		},
	}
}
