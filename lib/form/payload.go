// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package form

import (
	"bytes"
	"encoding/json"
	"fmt"
	"mime/multipart"
)

// Field is one collected form control value.
type Field struct {
	Name  string
	Value string
}

// Payload is the ordered list of values collected from a form.
type Payload struct {
	fields []Field
}

// NewPayload returns a payload holding fields in order.
func NewPayload(fields ...Field) *Payload {
	payload := &Payload{}
	for _, field := range fields {
		payload.Add(field.Name, field.Value)
	}
	return payload
}

// Add appends a value. A name added twice becomes an array on encode.
func (payload *Payload) Add(name, value string) {
	payload.fields = append(payload.fields, Field{Name: name, Value: value})
}

// Fields returns the collected pairs in submission order.
func (payload *Payload) Fields() []Field {
	return append([]Field(nil), payload.fields...)
}

// Len returns the number of collected pairs.
func (payload *Payload) Len() int {
	return len(payload.fields)
}

// Values returns the coalesced mapping. A name seen once maps to its
// string; a name seen more than once maps to a []string in the order
// the values were added.
func (payload *Payload) Values() map[string]any {
	counts := make(map[string]int, len(payload.fields))
	for _, field := range payload.fields {
		counts[field.Name]++
	}
	values := make(map[string]any, len(counts))
	for _, field := range payload.fields {
		if counts[field.Name] == 1 {
			values[field.Name] = field.Value
			continue
		}
		existing, _ := values[field.Name].([]string)
		values[field.Name] = append(existing, field.Value)
	}
	return values
}

// Encoding selects how a payload is serialized.
type Encoding string

const (
	EncodingJSON      Encoding = "json"
	EncodingMultipart Encoding = "multipart"
)

// ParseEncoding accepts "json" or "multipart". Empty means JSON.
func ParseEncoding(name string) (Encoding, error) {
	switch Encoding(name) {
	case "", EncodingJSON:
		return EncodingJSON, nil
	case EncodingMultipart:
		return EncodingMultipart, nil
	default:
		return "", fmt.Errorf("form: unknown encoding %q (want json or multipart)", name)
	}
}

// Encode serializes payload and returns the body with its Content-Type.
func (payload *Payload) Encode(encoding Encoding) ([]byte, string, error) {
	switch encoding {
	case EncodingJSON, "":
		body, err := json.Marshal(payload.Values())
		if err != nil {
			return nil, "", fmt.Errorf("form: encoding JSON body: %w", err)
		}
		return body, "application/json", nil
	case EncodingMultipart:
		var buffer bytes.Buffer
		writer := multipart.NewWriter(&buffer)
		for _, field := range payload.fields {
			if err := writer.WriteField(field.Name, field.Value); err != nil {
				return nil, "", fmt.Errorf("form: writing multipart field %q: %w", field.Name, err)
			}
		}
		if err := writer.Close(); err != nil {
			return nil, "", fmt.Errorf("form: closing multipart body: %w", err)
		}
		return buffer.Bytes(), writer.FormDataContentType(), nil
	default:
		return nil, "", fmt.Errorf("form: unknown encoding %q", encoding)
	}
}
