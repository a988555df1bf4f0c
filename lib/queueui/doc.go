// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package queueui is the interactive live queue board, built on
// bubbletea.
//
// The board is passive: a queuesync.Client drives it through
// [ProgramView], which turns View calls into tea messages. The Model
// shows connection state, the open-ticket count, the last refresh
// time, and the queue table in a scrollable viewport. Tickets that
// join the queue while the board is open glow briefly.
//
// Log records at warn and above reach the status bar through
// [TUILogHandler] rather than corrupting the alternate screen.
package queueui
