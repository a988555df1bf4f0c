// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/helpqueue/cmd/helpqueue/cli"
	"github.com/bureau-foundation/helpqueue/lib/queuesync"
	"github.com/bureau-foundation/helpqueue/lib/ticket"
)

type ticketsParams struct {
	connectionParams
	cli.JSONOutput
	All bool `flag:"all" desc:"list every ticket, including closed ones"`
}

// listedTicket is a ticket with its queue position for --json output.
type listedTicket struct {
	Position string `json:"position"`
	ticket.Ticket
}

func ticketsCommand(env *environment) *cli.Command {
	var params ticketsParams
	return &cli.Command{
		Name:    "tickets",
		Summary: "List the queue once",
		Description: `Fetch the open-ticket queue and print it with queue positions.
Tickets being helped show "In Progress" and do not take a number.

With --all every ticket the server knows is listed; tickets that are
no longer open show their status in place of a position.`,
		Usage: "helpqueue tickets [--all] [--json] [flags]",
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("tickets", &params)
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
			logger := env.newLogger(level).With("command", "tickets")
			api, err := apiClient(cfg, logger)
			if err != nil {
				return err
			}

			ctx, cancel := env.runContext()
			defer cancel()

			var tickets []ticket.Ticket
			if params.All {
				tickets, err = api.Tickets(ctx)
			} else {
				tickets, err = api.OpenTickets(ctx)
			}
			if err != nil {
				return classifyAPIError("listing tickets", err)
			}

			listed := listTickets(tickets)
			if done, err := params.EmitJSON(env.stdout, listed); done {
				return err
			}
			writeTicketTable(env.stdout, listed)
			return nil
		},
	}
}

// listTickets numbers the open tickets in server order. Tickets in
// other states are labelled with their status and do not advance the
// counter.
func listTickets(tickets []ticket.Ticket) []listedTicket {
	var queued []ticket.Ticket
	for _, entry := range tickets {
		if queuedStatus(entry.Status) {
			queued = append(queued, entry)
		}
	}
	rows := ticket.Positions(queued)

	listed := make([]listedTicket, 0, len(tickets))
	next := 0
	for _, entry := range tickets {
		position := string(entry.Status)
		if queuedStatus(entry.Status) {
			position = rows[next].Position.String()
			next++
		}
		listed = append(listed, listedTicket{Position: position, Ticket: entry})
	}
	return listed
}

// queuedStatus reports whether a ticket with status still belongs in
// the queue. Unknown statuses count as queued.
func queuedStatus(status ticket.Status) bool {
	return status != ticket.StatusClosed
}

func writeTicketTable(w io.Writer, listed []listedTicket) {
	if len(listed) == 0 {
		fmt.Fprintln(w, "No open tickets")
		return
	}
	fmt.Fprintln(w, queuesync.FormatRow("POSITION", "STUDENT", "TABLE", "COURSE"))
	for _, entry := range listed {
		fmt.Fprintln(w, queuesync.FormatRow(entry.Position, entry.StudentName, string(entry.Table), entry.PhysicsCourse))
	}
	waiting := 0
	for _, entry := range listed {
		if queuedStatus(entry.Status) && !entry.InProgress() {
			waiting++
		}
	}
	fmt.Fprintf(w, "\n%d tickets, %d waiting\n", len(listed), waiting)
}
