// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package queueapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// APIError is a non-2xx response from the ticket server. The server
// reports failures as {"error": "..."}.
type APIError struct {
	// StatusCode is the HTTP response status code.
	StatusCode int

	// Message is the server's "error" field, or the trimmed body when
	// the response was not JSON.
	Message string
}

func (err *APIError) Error() string {
	if err.Message == "" {
		return fmt.Sprintf("queueapi: HTTP %d", err.StatusCode)
	}
	return fmt.Sprintf("queueapi: HTTP %d: %s", err.StatusCode, err.Message)
}

// IsNotFound reports whether err is a 404 response.
func IsNotFound(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == http.StatusNotFound
}

// IsBadRequest reports whether err is a 400 response, which the server
// uses for missing or oversized fields.
func IsBadRequest(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode == http.StatusBadRequest
}

// IsServerError reports whether err is a 5xx response.
func IsServerError(err error) bool {
	var apiError *APIError
	return errors.As(err, &apiError) && apiError.StatusCode >= 500
}

// parseAPIError builds an APIError from a trimmed error body as
// returned by netutil.ErrorBody.
func parseAPIError(statusCode int, body string) *APIError {
	apiError := &APIError{StatusCode: statusCode}
	var parsed struct {
		Error string `json:"error"`
	}
	if json.Unmarshal([]byte(body), &parsed) == nil && parsed.Error != "" {
		apiError.Message = parsed.Error
		return apiError
	}
	message := body
	if len(message) > 200 {
		message = message[:200] + "..."
	}
	apiError.Message = message
	return apiError
}
