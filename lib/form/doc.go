// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package form submits ticket-resolution forms and turns the server's
// answer into user feedback.
//
// A [Payload] collects (name, value) pairs in the order a user entered
// them. Repeated names coalesce into arrays when the payload is
// encoded, either as a JSON object or as multipart/form-data.
//
// [Submitter.Submit] classifies the response into one of four
// outcomes. [Handle] maps that outcome onto a [Feedback] so each
// submission produces exactly one of: acknowledgement followed by
// navigation, field-level errors, or a single alert.
package form
