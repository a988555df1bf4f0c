// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package queuesync keeps a rendered view of the open-ticket queue in
// step with the server.
//
// A [Client] listens on a live channel for three signals. "connect"
// triggers the initial fetch of every fragment the view shows.
// "new_ticket" applies the deployment's [RefreshPolicy]: re-fetch one
// fragment, or reload the whole view. "queue_refresh" always reloads.
//
// Each signal is handled by its own goroutine. Fetches carry a
// sequence number, and a response is rendered only if no later fetch
// has rendered already, so a slow response cannot overwrite a newer
// one. Fetch failures are logged and never reach the view.
//
// Views are pluggable. [TextView] prints to a terminal or log; the
// bubbletea board in lib/queueui implements [View] as well.
package queuesync
