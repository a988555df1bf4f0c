// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package form

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
)

// FieldsFromFlags parses "name=value" arguments into a payload, in
// order. A repeated name is kept as repeated pairs.
func FieldsFromFlags(arguments []string) (*Payload, error) {
	payload := &Payload{}
	for _, argument := range arguments {
		name, value, found := strings.Cut(argument, "=")
		if !found {
			return nil, fmt.Errorf("form: field %q is not name=value", argument)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			return nil, fmt.Errorf("form: field %q has an empty name", argument)
		}
		payload.Add(name, value)
	}
	return payload, nil
}

// Parse reads a JSONC object whose values are strings, numbers,
// booleans, or arrays of those, and returns it as a payload. Names are
// added in sorted order; array elements keep their order.
func Parse(data []byte) (*Payload, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(jsonc.ToJSON(data), &raw); err != nil {
		return nil, fmt.Errorf("form: payload must be a JSON object: %w", err)
	}

	names := make([]string, 0, len(raw))
	for name := range raw {
		names = append(names, name)
	}
	sort.Strings(names)

	payload := &Payload{}
	for _, name := range names {
		value := raw[name]
		var list []json.RawMessage
		if err := json.Unmarshal(value, &list); err == nil && list != nil {
			for index, element := range list {
				text, err := scalarText(element)
				if err != nil {
					return nil, fmt.Errorf("form: %s[%d]: %w", name, index, err)
				}
				payload.Add(name, text)
			}
			continue
		}
		text, err := scalarText(value)
		if err != nil {
			return nil, fmt.Errorf("form: %s: %w", name, err)
		}
		payload.Add(name, text)
	}
	return payload, nil
}

// LoadFile reads a JSONC payload file from disk.
func LoadFile(path string) (*Payload, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	payload, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return payload, nil
}

// scalarText renders a JSON scalar the way a form control would submit
// it.
func scalarText(value json.RawMessage) (string, error) {
	var decoded any
	if err := json.Unmarshal(value, &decoded); err != nil {
		return "", err
	}
	switch typed := decoded.(type) {
	case string:
		return typed, nil
	case bool:
		if typed {
			return "true", nil
		}
		return "false", nil
	case float64:
		return strings.TrimSpace(string(value)), nil
	default:
		return "", fmt.Errorf("value %s is not a string, number, or boolean", value)
	}
}
