// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticket

import "strconv"

// InProgressLabel replaces the position number for tickets an
// assistant is already working on.
const InProgressLabel = "In Progress"

// Position is the queue ordinal of one ticket. Number is zero for
// in-progress tickets.
type Position struct {
	Number int
	Label  string
}

// String returns the label as displayed in the position column.
func (position Position) String() string {
	return position.Label
}

// Row pairs a ticket with its display position.
type Row struct {
	Position Position
	Ticket   Ticket
}

// Positions numbers tickets in server order. In-progress tickets get
// [InProgressLabel]; all others get 1, 2, 3... where the counter only
// advances for tickets that are not in progress.
func Positions(tickets []Ticket) []Row {
	rows := make([]Row, 0, len(tickets))
	next := 0
	for _, t := range tickets {
		if t.InProgress() {
			rows = append(rows, Row{
				Position: Position{Label: InProgressLabel},
				Ticket:   t,
			})
			continue
		}
		next++
		rows = append(rows, Row{
			Position: Position{Number: next, Label: strconv.Itoa(next)},
			Ticket:   t,
		})
	}
	return rows
}

// Waiting counts tickets that still hold a numbered position.
func Waiting(tickets []Ticket) int {
	count := 0
	for _, t := range tickets {
		if !t.InProgress() {
			count++
		}
	}
	return count
}
