// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package queueapi

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/bureau-foundation/helpqueue/lib/netutil"
	"github.com/bureau-foundation/helpqueue/lib/ticket"
	"github.com/bureau-foundation/helpqueue/lib/version"
)

// Default endpoint paths.
const (
	DefaultOpenTicketsPath = "/api/opentickets"
	DefaultTicketsPath     = "/api/tickets"
)

// Config holds configuration for creating a Client.
type Config struct {
	// BaseURL is the server root, e.g. "http://localhost:5000".
	// Required.
	BaseURL string

	// OpenTicketsPath and TicketsPath override the endpoint paths.
	OpenTicketsPath string
	TicketsPath     string

	// HTTPClient is used for all requests. Defaults to
	// http.DefaultClient.
	HTTPClient *http.Client

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Client talks to the ticket endpoints of one server.
type Client struct {
	baseURL         string
	openTicketsPath string
	ticketsPath     string
	httpClient      *http.Client
	logger          *slog.Logger
}

// NewClient validates config and returns a Client.
func NewClient(config Config) (*Client, error) {
	baseURL := strings.TrimRight(config.BaseURL, "/")
	if baseURL == "" {
		return nil, fmt.Errorf("queueapi: BaseURL is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("queueapi: parsing BaseURL: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("queueapi: BaseURL must be http or https (got %q)", config.BaseURL)
	}

	openTicketsPath := config.OpenTicketsPath
	if openTicketsPath == "" {
		openTicketsPath = DefaultOpenTicketsPath
	}
	ticketsPath := config.TicketsPath
	if ticketsPath == "" {
		ticketsPath = DefaultTicketsPath
	}
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:         baseURL,
		openTicketsPath: openTicketsPath,
		ticketsPath:     ticketsPath,
		httpClient:      httpClient,
		logger:          logger,
	}, nil
}

// OpenTickets fetches the open-ticket list in server order.
func (client *Client) OpenTickets(ctx context.Context) ([]ticket.Ticket, error) {
	body, err := client.do(ctx, http.MethodGet, client.openTicketsPath, nil)
	if err != nil {
		return nil, err
	}
	tickets, err := ticket.DecodeList(body)
	if err != nil {
		return nil, fmt.Errorf("queueapi: GET %s: %w", client.openTicketsPath, err)
	}
	return tickets, nil
}

// Tickets fetches every ticket, open and closed.
func (client *Client) Tickets(ctx context.Context) ([]ticket.Ticket, error) {
	body, err := client.do(ctx, http.MethodGet, client.ticketsPath, nil)
	if err != nil {
		return nil, err
	}
	tickets, err := ticket.DecodeList(body)
	if err != nil {
		return nil, fmt.Errorf("queueapi: GET %s: %w", client.ticketsPath, err)
	}
	return tickets, nil
}

// CreateTicket validates request locally and posts it. Returns the
// ticket as stored by the server.
func (client *Client) CreateTicket(ctx context.Context, request NewTicket) (*ticket.Ticket, error) {
	if err := request.Validate(); err != nil {
		return nil, err
	}
	body, err := client.do(ctx, http.MethodPost, client.ticketsPath, request)
	if err != nil {
		return nil, err
	}
	var created ticket.Ticket
	if err := json.Unmarshal(body, &created); err != nil {
		return nil, fmt.Errorf("queueapi: decoding created ticket: %w", err)
	}
	client.logger.Info("ticket created", "ticket_id", created.ID, "student", created.StudentName)
	return &created, nil
}

// do sends a request and returns the body of a 2xx response. Non-2xx
// responses return *APIError.
func (client *Client) do(ctx context.Context, method, path string, requestBody any) ([]byte, error) {
	var reader io.Reader
	if requestBody != nil {
		encoded, err := json.Marshal(requestBody)
		if err != nil {
			return nil, fmt.Errorf("queueapi: encoding request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	target := client.baseURL + path
	request, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, fmt.Errorf("queueapi: building %s %s: %w", method, path, err)
	}
	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", version.UserAgent())
	if reader != nil {
		request.Header.Set("Content-Type", "application/json")
	}

	response, err := client.httpClient.Do(request)
	if err != nil {
		return nil, fmt.Errorf("queueapi: %s %s: %w", method, path, err)
	}
	defer response.Body.Close()

	if !netutil.IsSuccess(response.StatusCode) {
		apiError := parseAPIError(response.StatusCode, netutil.ErrorBody(response.Body))
		client.logger.Debug("request rejected",
			"method", method,
			"path", path,
			"status", response.StatusCode,
			"message", apiError.Message,
		)
		return nil, apiError
	}
	body, err := netutil.ReadResponse(response.Body)
	if err != nil {
		return nil, fmt.Errorf("queueapi: reading %s %s response: %w", method, path, err)
	}
	return body, nil
}
