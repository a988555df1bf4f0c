// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"fmt"
	"io"

	"github.com/spf13/pflag"

	"github.com/bureau-foundation/helpqueue/cmd/helpqueue/cli"
	"github.com/bureau-foundation/helpqueue/lib/form"
)

type resolveParams struct {
	connectionParams
	Action   string   `flag:"action" desc:"form action URL, absolute or relative to the server"`
	Fields   []string `flag:"field,f" desc:"field as name=value; repeat a name to send a list"`
	File     string   `flag:"file" desc:"JSON or JSONC file of fields, merged before --field"`
	Encoding string   `flag:"encoding" desc:"json or multipart (default form.encoding)"`
	FollowUp string   `flag:"follow-up" desc:"location to report after success (default form.follow_up)"`
}

// Exit codes for a submission that reached a verdict other than
// success. The feedback has already been printed.
const (
	exitFailure   = 1
	exitInvalid   = 2
	exitTransport = 3
)

func resolveCommand(env *environment) *cli.Command {
	var params resolveParams
	return &cli.Command{
		Name:    "resolve",
		Summary: "Submit a ticket form",
		Description: `Submit a form to the server the way the ticket pages do, typically
to resolve a ticket. Fields come from --file and --field; a name
given more than once is sent as a list.

On success the confirmation and the follow-up location are printed.
Field errors from the server are printed one per field and the
command exits 2. Other server errors exit 1 and network failures
exit 3.`,
		Usage: "helpqueue resolve --action URL [--field name=value ...] [flags]",
		Examples: []cli.Example{
			{
				Description: "Resolve ticket 12 with a reason",
				Command:     "helpqueue resolve --action /api/tickets/12/resolve -f closed_reason=helped",
			},
			{
				Description: "Send topics as a list, multipart encoded",
				Command:     "helpqueue resolve --action /resolve -f topics=kinematics -f topics=energy --encoding multipart",
			},
		},
		Flags: func() *pflag.FlagSet {
			return cli.FlagsFromParams("resolve", &params)
		},
		Run: func(args []string) error {
			action := params.Action
			if action == "" && len(args) > 0 {
				action, args = args[0], args[1:]
			}
			if len(args) > 0 {
				return cli.Validation("unexpected argument %q", args[0])
			}
			if action == "" {
				return cli.Validation("--action is required")
			}

			cfg, err := params.load()
			if err != nil {
				return err
			}
			level, err := params.level()
			if err != nil {
				return err
			}
			logger := env.newLogger(level).With("command", "resolve")

			payload, err := resolvePayload(params.File, params.Fields)
			if err != nil {
				return err
			}

			encodingName := params.Encoding
			if encodingName == "" {
				encodingName = cfg.Form.Encoding
			}
			encoding, err := form.ParseEncoding(encodingName)
			if err != nil {
				return cli.Validation("%w", err)
			}
			followUp := params.FollowUp
			if followUp == "" {
				followUp = cfg.Form.FollowUp
			}

			submitter, err := form.NewSubmitter(form.Config{
				BaseURL:        cfg.Server.BaseURL,
				Encoding:       encoding,
				FollowUp:       followUp,
				SuccessMessage: cfg.Form.SuccessMessage,
				FallbackError:  cfg.Form.FallbackError,
				TransportError: cfg.Form.TransportError,
				HTTPClient:     httpClient(cfg),
				Logger:         logger,
			})
			if err != nil {
				return cli.Validation("%w", err)
			}

			ctx, cancel := env.runContext()
			defer cancel()

			result := form.Handle(ctx, submitter, action, payload, &terminalFeedback{stdout: env.stdout, stderr: env.stderr})
			switch result.Outcome {
			case form.OutcomeSuccess:
				return nil
			case form.OutcomeValidation:
				return &cli.ExitError{Code: exitInvalid}
			case form.OutcomeTransport:
				return &cli.ExitError{Code: exitTransport}
			default:
				return &cli.ExitError{Code: exitFailure}
			}
		},
	}
}

// resolvePayload merges the --file fields with the --field pairs, file
// first.
func resolvePayload(path string, pairs []string) (*form.Payload, error) {
	payload := form.NewPayload()
	if path != "" {
		loaded, err := form.LoadFile(path)
		if err != nil {
			return nil, cli.Validation("%w", err)
		}
		payload = loaded
	}
	flagged, err := form.FieldsFromFlags(pairs)
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	for _, field := range flagged.Fields() {
		payload.Add(field.Name, field.Value)
	}
	return payload, nil
}

// terminalFeedback reports a submission on stdout and stderr. A
// terminal keeps no field errors between runs, so ClearErrors has
// nothing to do.
type terminalFeedback struct {
	stdout io.Writer
	stderr io.Writer
}

func (feedback *terminalFeedback) ClearErrors() {}

func (feedback *terminalFeedback) Acknowledge(message string) {
	fmt.Fprintln(feedback.stdout, message)
}

func (feedback *terminalFeedback) Navigate(location string) {
	if location != "" {
		fmt.Fprintf(feedback.stdout, "Next: %s\n", location)
	}
}

func (feedback *terminalFeedback) ShowErrors(errors form.ErrorSet) {
	lines := form.RenderErrors(errors)
	if len(lines) == 0 {
		fmt.Fprintln(feedback.stderr, form.ValidationAlert(errors))
		return
	}
	fmt.Fprintln(feedback.stderr, "The server rejected these fields:")
	for _, line := range lines {
		fmt.Fprintf(feedback.stderr, "  %s\n", line)
	}
}

func (feedback *terminalFeedback) Alert(message string) {
	fmt.Fprintln(feedback.stderr, message)
}
