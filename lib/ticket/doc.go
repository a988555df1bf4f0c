// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package ticket defines the help-desk ticket as the queue API serves
// it, plus the queue-position rule used by every view.
//
// Tickets are owned by the server. The client decodes snapshots from
// GET /api/opentickets (or /api/tickets) and never mutates them; a new
// snapshot replaces the old one wholesale.
//
// [Positions] implements the ordinal shown to students: tickets being
// worked on show a fixed label, every other ticket gets the next
// position number, so the ordinal skips in-progress entries.
package ticket
