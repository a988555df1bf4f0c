// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package form

import (
	"encoding/json"
	"fmt"
	"sort"
)

// ErrorSet maps a field name to its validation messages.
type ErrorSet map[string][]string

// UnmarshalJSON accepts either a list of messages or a bare string per
// field. Servers send both shapes.
func (set *ErrorSet) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("form: errors must be an object: %w", err)
	}
	decoded := make(ErrorSet, len(raw))
	for field, value := range raw {
		var messages []string
		if err := json.Unmarshal(value, &messages); err == nil {
			decoded[field] = messages
			continue
		}
		var message string
		if err := json.Unmarshal(value, &message); err != nil {
			return fmt.Errorf("form: errors[%q] is neither a string nor a list of strings", field)
		}
		decoded[field] = []string{message}
	}
	*set = decoded
	return nil
}

// Fields returns the field names in sorted order.
func (set ErrorSet) Fields() []string {
	fields := make([]string, 0, len(set))
	for field := range set {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	return fields
}

// RenderErrors returns one "field: message" line per field, sorted by
// field name, showing the first message for each.
func RenderErrors(set ErrorSet) []string {
	lines := make([]string, 0, len(set))
	for _, field := range set.Fields() {
		messages := set[field]
		if len(messages) == 0 {
			continue
		}
		lines = append(lines, field+": "+messages[0])
	}
	return lines
}

// ValidationAlert is the single-line form of an error set, for
// surfaces that cannot place messages next to fields.
func ValidationAlert(set ErrorSet) string {
	encoded, err := json.Marshal(set)
	if err != nil {
		return "Validation errors"
	}
	return "Validation errors: " + string(encoded)
}

// FailureAlert is the text shown for a non-field error message.
func FailureAlert(message string) string {
	return "Error: " + message
}
