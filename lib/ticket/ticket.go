// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package ticket

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Status is the server-side lifecycle state of a ticket. The server
// is free to send values outside this set; unknown statuses are
// treated as waiting in the queue.
type Status string

const (
	StatusOpen       Status = "open"
	StatusInProgress Status = "in_progress"
	StatusLive       Status = "live"
	StatusCurrent    Status = "current"
	StatusClosed     Status = "closed"
)

// Ticket is a snapshot of one queued help request.
type Ticket struct {
	ID            int    `json:"id"`
	StudentName   string `json:"student_name"`
	Table         Table  `json:"table"`
	PhysicsCourse string `json:"physics_course"`
	Status        Status `json:"status"`

	// Optional fields; zero when the server omits them.
	CreatedAt        string `json:"created_at,omitempty"`
	ClosedAt         string `json:"closed_at,omitempty"`
	ClosedReason     string `json:"closed_reason,omitempty"`
	NumberOfStudents int    `json:"number_of_students,omitempty"`
	AssistantID      int    `json:"wa_id,omitempty"`
}

// InProgress reports whether an assistant is already working on the
// ticket.
func (t Ticket) InProgress() bool {
	return t.Status == StatusInProgress
}

// Table is the student's table identifier. The server stores it as a
// string but older endpoints and hand-written fixtures send a bare
// number, so decoding accepts both.
type Table string

// UnmarshalJSON accepts a JSON string, number, or null.
func (table *Table) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	switch {
	case bytes.Equal(data, []byte("null")):
		*table = ""
		return nil
	case len(data) > 0 && data[0] == '"':
		var text string
		if err := json.Unmarshal(data, &text); err != nil {
			return err
		}
		*table = Table(text)
		return nil
	}
	var number json.Number
	if err := json.Unmarshal(data, &number); err != nil {
		return fmt.Errorf("ticket table: expected string or number, got %s", data)
	}
	if integer, err := number.Int64(); err == nil {
		*table = Table(strconv.FormatInt(integer, 10))
		return nil
	}
	*table = Table(number.String())
	return nil
}

// DecodeList decodes a JSON array of tickets. A JSON null decodes as
// an empty list.
func DecodeList(data []byte) ([]Ticket, error) {
	var tickets []Ticket
	if err := json.Unmarshal(data, &tickets); err != nil {
		return nil, fmt.Errorf("decoding ticket list: %w", err)
	}
	if tickets == nil {
		tickets = []Ticket{}
	}
	return tickets, nil
}
