// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package form

import "context"

// Feedback is the surface a submission reports to. Terminal, TUI, and
// test implementations exist.
type Feedback interface {
	// ClearErrors removes field errors left by a previous attempt.
	ClearErrors()

	// Acknowledge shows the success message.
	Acknowledge(message string)

	// Navigate moves to the follow-up location after success. An
	// empty location means stay put.
	Navigate(location string)

	// ShowErrors places validation messages next to their fields.
	ShowErrors(errors ErrorSet)

	// Alert shows a single blocking notification.
	Alert(message string)
}

// Handle submits payload and drives feedback. Per call, feedback sees
// ClearErrors and then exactly one of: Acknowledge followed by
// Navigate, ShowErrors, or Alert. The Result is returned so callers can
// pick an exit status.
func Handle(ctx context.Context, submitter *Submitter, action string, payload *Payload, feedback Feedback) Result {
	feedback.ClearErrors()
	result := submitter.Submit(ctx, action, payload)

	switch result.Outcome {
	case OutcomeSuccess:
		feedback.Acknowledge(result.Message)
		feedback.Navigate(result.Location)
	case OutcomeValidation:
		feedback.ShowErrors(result.Errors)
	case OutcomeFailure:
		feedback.Alert(FailureAlert(result.Message))
	default:
		feedback.Alert(result.Message)
	}
	return result
}
