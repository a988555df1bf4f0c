// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package netutil holds HTTP and connection helpers shared by the
// queue API client, the form submitter and the live channel.
//
// Response helpers bound every body read at MaxResponseSize. They are
// meant for JSON API responses, which are small; nothing in helpqueue
// streams large bodies.
//
// IsExpectedCloseError classifies errors produced when a connection
// ends normally, so callers can log a disconnect instead of a failure.
package netutil

import (
	"io"
	"net/http"
	"strings"
)

// MaxResponseSize bounds response body reads at 16 MB. A queue of
// open tickets is a few kilobytes; the bound only stops a broken
// server from exhausting memory.
const MaxResponseSize int64 = 16 << 20

// ReadResponse reads a response body up to MaxResponseSize bytes.
func ReadResponse(body io.Reader) ([]byte, error) {
	return io.ReadAll(io.LimitReader(body, MaxResponseSize))
}

// ErrorBody reads an error response body for use in a diagnostic
// message. Read errors are ignored; a partial body is still useful.
func ErrorBody(body io.Reader) string {
	data, _ := ReadResponse(body)
	return strings.TrimSpace(string(data))
}

// IsSuccess reports whether an HTTP status code is in the 2xx class.
func IsSuccess(statusCode int) bool {
	return statusCode >= http.StatusOK && statusCode < http.StatusMultipleChoices
}
