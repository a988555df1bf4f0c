// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package queueapi is a typed client for the help-desk REST endpoints:
// the open-ticket list that drives the live board, the full ticket
// list, and ticket creation.
//
// Non-2xx responses come back as *APIError carrying the server's
// "error" message. Client satisfies queuesync.Fetcher.
package queueapi
