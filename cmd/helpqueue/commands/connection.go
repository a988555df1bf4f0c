// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/bureau-foundation/helpqueue/cmd/helpqueue/cli"
	"github.com/bureau-foundation/helpqueue/lib/config"
	"github.com/bureau-foundation/helpqueue/lib/queueapi"
)

// connectionParams are the flags every server-facing command shares.
type connectionParams struct {
	ConfigPath string `flag:"config" desc:"path to helpqueue.yaml (default $HELPQUEUE_CONFIG, else built-in defaults)"`
	Server     string `flag:"server" desc:"server base URL, overriding server.base_url"`
	LogLevel   string `flag:"log-level" default:"info" desc:"debug, info, warn or error"`
}

// load reads the configuration file, applies --server, and validates.
func (params *connectionParams) load() (*config.Config, error) {
	path := params.ConfigPath
	if path == "" {
		path = os.Getenv("HELPQUEUE_CONFIG")
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, cli.Validation("loading config: %w", err)
		}
		cfg = loaded
	}
	if params.Server != "" {
		cfg.Server.BaseURL = params.Server
	}
	if err := cfg.Validate(); err != nil {
		return nil, cli.Validation("invalid configuration: %w", err)
	}
	return cfg, nil
}

func (params *connectionParams) level() (slog.Level, error) {
	return cli.ParseLevel(params.LogLevel)
}

func httpClient(cfg *config.Config) *http.Client {
	return &http.Client{Timeout: cfg.Timeout()}
}

func apiClient(cfg *config.Config, logger *slog.Logger) (*queueapi.Client, error) {
	client, err := queueapi.NewClient(queueapi.Config{
		BaseURL:         cfg.Server.BaseURL,
		OpenTicketsPath: cfg.Server.OpenTicketsPath,
		TicketsPath:     cfg.Server.TicketsPath,
		HTTPClient:      httpClient(cfg),
		Logger:          logger,
	})
	if err != nil {
		return nil, cli.Validation("%w", err)
	}
	return client, nil
}

// classifyAPIError maps a queueapi failure onto a tool error category.
// Anything that is not an HTTP error response is a transport failure.
func classifyAPIError(action string, err error) error {
	var apiError *queueapi.APIError
	switch {
	case queueapi.IsNotFound(err):
		return &cli.ToolError{Category: cli.CategoryNotFound, Err: errorf(action, err)}
	case queueapi.IsBadRequest(err):
		return &cli.ToolError{Category: cli.CategoryValidation, Err: errorf(action, err)}
	case queueapi.IsServerError(err):
		return &cli.ToolError{Category: cli.CategoryTransient, Err: errorf(action, err)}
	case errors.As(err, &apiError):
		return &cli.ToolError{Category: cli.CategoryInternal, Err: errorf(action, err)}
	default:
		return &cli.ToolError{Category: cli.CategoryTransient, Err: errorf(action, err)}
	}
}

func errorf(action string, err error) error {
	return fmt.Errorf("%s: %w", action, err)
}
