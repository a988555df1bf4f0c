// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package form

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/bureau-foundation/helpqueue/lib/netutil"
	"github.com/bureau-foundation/helpqueue/lib/version"
)

// Default feedback text.
const (
	DefaultSuccessMessage = "Ticket resolved successfully!"
	DefaultFallbackError  = "Failed to resolve ticket"
	DefaultTransportError = "An error occurred while resolving the ticket"
)

// Outcome classifies a submission.
type Outcome int

const (
	// OutcomeSuccess is a 2xx response.
	OutcomeSuccess Outcome = iota

	// OutcomeValidation is a non-2xx response carrying an "errors"
	// object.
	OutcomeValidation

	// OutcomeFailure is any other non-2xx response.
	OutcomeFailure

	// OutcomeTransport means no response arrived.
	OutcomeTransport
)

func (outcome Outcome) String() string {
	switch outcome {
	case OutcomeSuccess:
		return "success"
	case OutcomeValidation:
		return "validation"
	case OutcomeFailure:
		return "failure"
	case OutcomeTransport:
		return "transport"
	default:
		return fmt.Sprintf("Outcome(%d)", int(outcome))
	}
}

// Result is the classified answer to one submission. Which fields are
// set depends on Outcome.
type Result struct {
	Outcome Outcome

	// StatusCode is zero for OutcomeTransport.
	StatusCode int

	// Body is the raw response body for OutcomeSuccess.
	Body json.RawMessage

	// Location is the follow-up to navigate to after OutcomeSuccess.
	Location string

	// Errors is set for OutcomeValidation.
	Errors ErrorSet

	// Message is the user-facing text for OutcomeSuccess,
	// OutcomeFailure, and OutcomeTransport.
	Message string

	// Err is the underlying error for OutcomeTransport.
	Err error
}

// Config holds configuration for creating a Submitter.
type Config struct {
	// BaseURL resolves relative form actions. Required unless every
	// action is absolute.
	BaseURL string

	// Encoding defaults to EncodingJSON.
	Encoding Encoding

	// FollowUp is where to go after success, resolved against BaseURL.
	FollowUp string

	// SuccessMessage, FallbackError, and TransportError override the
	// default feedback text.
	SuccessMessage string
	FallbackError  string
	TransportError string

	// HTTPClient defaults to http.DefaultClient, which has no timeout.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Submitter posts payloads and classifies the responses.
type Submitter struct {
	baseURL        *url.URL
	encoding       Encoding
	followUp       string
	successMessage string
	fallbackError  string
	transportError string
	httpClient     *http.Client
	logger         *slog.Logger
}

// NewSubmitter validates config and returns a Submitter.
func NewSubmitter(config Config) (*Submitter, error) {
	submitter := &Submitter{
		encoding:       config.Encoding,
		successMessage: config.SuccessMessage,
		fallbackError:  config.FallbackError,
		transportError: config.TransportError,
		httpClient:     config.HTTPClient,
		logger:         config.Logger,
	}
	if config.BaseURL != "" {
		parsed, err := url.Parse(config.BaseURL)
		if err != nil {
			return nil, fmt.Errorf("form: parsing BaseURL: %w", err)
		}
		if !parsed.IsAbs() {
			return nil, fmt.Errorf("form: BaseURL %q is not absolute", config.BaseURL)
		}
		submitter.baseURL = parsed
	}
	if submitter.encoding == "" {
		submitter.encoding = EncodingJSON
	}
	if _, err := ParseEncoding(string(submitter.encoding)); err != nil {
		return nil, err
	}
	if config.FollowUp != "" {
		location, err := submitter.resolve(config.FollowUp)
		if err != nil {
			return nil, fmt.Errorf("form: follow-up location: %w", err)
		}
		submitter.followUp = location
	}
	if submitter.successMessage == "" {
		submitter.successMessage = DefaultSuccessMessage
	}
	if submitter.fallbackError == "" {
		submitter.fallbackError = DefaultFallbackError
	}
	if submitter.transportError == "" {
		submitter.transportError = DefaultTransportError
	}
	if submitter.httpClient == nil {
		submitter.httpClient = http.DefaultClient
	}
	if submitter.logger == nil {
		submitter.logger = slog.Default()
	}
	return submitter, nil
}

// Encoding returns the configured body encoding.
func (submitter *Submitter) Encoding() Encoding {
	return submitter.encoding
}

// Submit posts payload to action and classifies the answer. It never
// returns a Go error: every failure becomes a Result.
func (submitter *Submitter) Submit(ctx context.Context, action string, payload *Payload) Result {
	target, err := submitter.resolve(action)
	if err != nil {
		return submitter.transportResult(fmt.Errorf("form: action %q: %w", action, err))
	}
	if payload == nil {
		payload = &Payload{}
	}
	body, contentType, err := payload.Encode(submitter.encoding)
	if err != nil {
		return submitter.transportResult(err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(body))
	if err != nil {
		return submitter.transportResult(fmt.Errorf("form: building request: %w", err))
	}
	request.Header.Set("Content-Type", contentType)
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", version.UserAgent())

	submitter.logger.Debug("submitting form",
		"action", target,
		"encoding", string(submitter.encoding),
		"fields", payload.Len(),
	)

	response, err := submitter.httpClient.Do(request)
	if err != nil {
		return submitter.transportResult(fmt.Errorf("form: POST %s: %w", target, err))
	}
	defer response.Body.Close()

	responseBody, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return submitter.transportResult(fmt.Errorf("form: reading response: %w", err))
	}

	if netutil.IsSuccess(response.StatusCode) {
		result := Result{
			Outcome:    OutcomeSuccess,
			StatusCode: response.StatusCode,
			Location:   submitter.followUp,
			Message:    submitter.successMessage,
		}
		if json.Valid(responseBody) {
			result.Body = responseBody
		}
		return result
	}

	// The two fields decode independently so a malformed errors value
	// does not hide a usable error string beside it.
	var parsed struct {
		Errors json.RawMessage `json:"errors"`
		Error  json.RawMessage `json:"error"`
	}
	// A non-JSON body leaves both fields empty.
	_ = json.Unmarshal(responseBody, &parsed)

	if truthy(parsed.Errors) {
		var set ErrorSet
		if err := json.Unmarshal(parsed.Errors, &set); err == nil {
			return Result{
				Outcome:    OutcomeValidation,
				StatusCode: response.StatusCode,
				Errors:     set,
			}
		}
		submitter.logger.Warn("form response has unrecognised errors value",
			"status", response.StatusCode,
			"errors", string(parsed.Errors),
		)
	}

	message := submitter.fallbackError
	var serverMessage string
	if json.Unmarshal(parsed.Error, &serverMessage) == nil && serverMessage != "" {
		message = serverMessage
	}
	return Result{
		Outcome:    OutcomeFailure,
		StatusCode: response.StatusCode,
		Message:    message,
	}
}

// truthy reports whether a JSON value is present and not null, false,
// zero, or the empty string. Empty objects and arrays count as present.
func truthy(value json.RawMessage) bool {
	switch strings.TrimSpace(string(value)) {
	case "", "null", "false", "0", `""`:
		return false
	}
	return true
}

func (submitter *Submitter) transportResult(err error) Result {
	submitter.logger.Warn("form submission got no response", "error", err)
	return Result{
		Outcome: OutcomeTransport,
		Message: submitter.transportError,
		Err:     err,
	}
}

// resolve turns a possibly relative reference into an absolute URL.
func (submitter *Submitter) resolve(reference string) (string, error) {
	reference = strings.TrimSpace(reference)
	if reference == "" {
		return "", fmt.Errorf("empty URL")
	}
	parsed, err := url.Parse(reference)
	if err != nil {
		return "", err
	}
	if parsed.IsAbs() {
		return parsed.String(), nil
	}
	if submitter.baseURL == nil {
		return "", fmt.Errorf("relative URL %q with no base URL configured", reference)
	}
	return submitter.baseURL.ResolveReference(parsed).String(), nil
}
