// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package queuesync

import (
	"fmt"
	"time"

	"github.com/bureau-foundation/helpqueue/lib/ticket"
)

// Fragment names one independently refreshable part of a view.
type Fragment string

const (
	// FragmentTable is the queue table: position, student, table,
	// course.
	FragmentTable Fragment = "table"

	// FragmentCount is the number of open tickets.
	FragmentCount Fragment = "count"
)

// ParseFragment accepts "table" or "count".
func ParseFragment(name string) (Fragment, error) {
	switch Fragment(name) {
	case FragmentTable, FragmentCount:
		return Fragment(name), nil
	default:
		return "", fmt.Errorf("queuesync: unknown fragment %q (want table or count)", name)
	}
}

// Snapshot is one fetched state of the queue, ready to render.
type Snapshot struct {
	// Rows is the open-ticket list in server order with positions
	// assigned.
	Rows []ticket.Row

	// Count is the length of the open-ticket list.
	Count int

	// RefreshedAt is when the fetch completed.
	RefreshedAt time.Time

	// Sequence is the fetch's sequence number. Higher is newer.
	Sequence uint64
}

// NewSnapshot assigns positions and counts the tickets.
func NewSnapshot(tickets []ticket.Ticket, refreshedAt time.Time, sequence uint64) Snapshot {
	return Snapshot{
		Rows:        ticket.Positions(tickets),
		Count:       len(tickets),
		RefreshedAt: refreshedAt,
		Sequence:    sequence,
	}
}

// View receives render calls from a Client. Calls are serialised: a
// View never sees two calls at once.
type View interface {
	// Render replaces fragment with the contents of snapshot.
	Render(fragment Fragment, snapshot Snapshot)

	// Reload discards everything rendered. The Client follows it with
	// a fresh fetch of every fragment.
	Reload()

	// Connection reports the live channel's state. detail is empty
	// when connected and holds the reason otherwise.
	Connection(connected bool, detail string)
}
