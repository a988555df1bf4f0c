// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/helpqueue/cmd/helpqueue/cli"
	"github.com/bureau-foundation/helpqueue/lib/queueapi"
)

type createParams struct {
	connectionParams
	cli.JSONOutput
	Name   string `flag:"name" desc:"student name"`
	Course string `flag:"course" desc:"physics course, e.g. PHYS 7A"`
	Table  string `flag:"table" desc:"table number or label"`
}

func createCommand(env *environment) *cli.Command {
	var params createParams
	return &cli.Command{
		Name:    "create",
		Summary: "Open a help ticket",
		Description: `Open a new help ticket. The server announces it on the live channel,
so every board and watcher picks it up.`,
		Usage: "helpqueue create --name NAME --course COURSE --table TABLE [flags]",
		Examples: []cli.Example{
			{Command: `helpqueue create --name "Ada Lovelace" --course "PHYS 7A" --table 4`},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("create", &params)
		},
		Run: func(args []string) error {
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			request := queueapi.NewTicket{
				StudentName: params.Name,
				ClassName:   params.Course,
				TableNumber: params.Table,
			}
			if err := request.Validate(); err != nil {
				return cli.Validation("%w", err)
			}

			cfg, err := params.load()
			if err != nil {
				return err
			}
			level, err := params.level()
			if err != nil {
				return err
			}
			logger := env.newLogger(level).With("command", "create")
			api, err := apiClient(cfg, logger)
			if err != nil {
				return err
			}

			ctx, cancel := env.runContext()
			defer cancel()

			created, err := api.CreateTicket(ctx, request)
			if err != nil {
				return classifyAPIError("creating ticket", err)
			}
			if done, err := params.EmitJSON(env.stdout, created); done {
				return err
			}
			fmt.Fprintf(env.stdout, "Created ticket #%d for %s at table %s\n",
				created.ID, created.StudentName, created.Table)
			return nil
		},
	}
}
