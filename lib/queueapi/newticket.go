// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package queueapi

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Field limits enforced by the server on ticket creation.
const (
	MaxStudentNameLength = 100
	MaxClassNameLength   = 50
	MaxTableNumberLength = 50
)

// NewTicket is the body of POST /api/tickets.
type NewTicket struct {
	StudentName string `json:"student_name"`
	ClassName   string `json:"class_name"`
	TableNumber string `json:"table_number"`
}

// Validate applies the server's rules locally so obviously bad input
// never leaves the client. Every violation is reported.
func (request NewTicket) Validate() error {
	var errs []error
	check := func(field, value string, limit int) {
		if strings.TrimSpace(value) == "" {
			errs = append(errs, fmt.Errorf("%s is required", field))
			return
		}
		if length := utf8.RuneCountInString(value); length > limit {
			errs = append(errs, fmt.Errorf("%s is %d characters, limit is %d", field, length, limit))
		}
	}
	check("student_name", request.StudentName, MaxStudentNameLength)
	check("class_name", request.ClassName, MaxClassNameLength)
	check("table_number", request.TableNumber, MaxTableNumberLength)
	if len(errs) > 0 {
		return fmt.Errorf("queueapi: invalid ticket: %w", errors.Join(errs...))
	}
	return nil
}
