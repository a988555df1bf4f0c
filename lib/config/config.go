// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"regexp"
	"slices"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Environment identifies the deployment a config file targets.
type Environment string

const (
	Development Environment = "development"
	Staging     Environment = "staging"
	Production  Environment = "production"
)

// Form payload encodings.
const (
	EncodingJSON      = "json"
	EncodingMultipart = "multipart"
)

// New-ticket strategies: re-fetch the fragment, or reload everything.
const (
	StrategyRefetch = "refetch"
	StrategyReload  = "reload"
)

// View fragments kept live by the sync client.
const (
	FragmentTable = "table"
	FragmentCount = "count"
)

// Config is the complete client configuration.
type Config struct {
	Environment Environment `yaml:"environment"`

	Server ServerConfig `yaml:"server"`
	Form   FormConfig   `yaml:"form"`
	Sync   SyncConfig   `yaml:"sync"`
	Board  BoardConfig  `yaml:"board"`

	Development *Overrides `yaml:"development,omitempty"`
	Staging     *Overrides `yaml:"staging,omitempty"`
	Production  *Overrides `yaml:"production,omitempty"`
}

// Overrides holds per-environment replacements. Empty fields leave the
// base value alone.
type Overrides struct {
	Server *ServerConfig `yaml:"server,omitempty"`
	Form   *FormConfig   `yaml:"form,omitempty"`
	Sync   *SyncConfig   `yaml:"sync,omitempty"`
}

// ServerConfig locates the help-desk server.
type ServerConfig struct {
	// BaseURL is the scheme and host of the help-desk app, e.g.
	// "http://localhost:5000". Relative form actions and API paths
	// resolve against it.
	BaseURL string `yaml:"base_url"`

	// OpenTicketsPath is the open-ticket list endpoint.
	OpenTicketsPath string `yaml:"open_tickets_path"`

	// TicketsPath lists every ticket (GET) and creates tickets (POST).
	TicketsPath string `yaml:"tickets_path"`

	// SocketPath is the Engine.IO endpoint path.
	SocketPath string `yaml:"socket_path"`

	// Namespace is the Socket.IO namespace carrying queue events.
	Namespace string `yaml:"namespace"`

	// HTTPTimeout bounds each HTTP request. Empty means no timeout.
	HTTPTimeout string `yaml:"http_timeout"`
}

// FormConfig configures the ticket-resolution form submitter.
type FormConfig struct {
	// Encoding is "json" or "multipart".
	Encoding string `yaml:"encoding"`

	// FollowUp is where the user is sent after a successful
	// submission, e.g. "/tickets".
	FollowUp string `yaml:"follow_up"`

	// SuccessMessage acknowledges a successful submission.
	SuccessMessage string `yaml:"success_message"`

	// FallbackError is shown when a failed response has no "error".
	FallbackError string `yaml:"fallback_error"`

	// TransportError is shown when no response arrives at all.
	TransportError string `yaml:"transport_error"`
}

// SyncConfig configures the live queue view.
type SyncConfig struct {
	// NewTicket is "refetch" or "reload".
	NewTicket string `yaml:"new_ticket"`

	// Fragment is "table" or "count".
	Fragment string `yaml:"fragment"`
}

// BoardConfig configures the terminal board.
type BoardConfig struct {
	// Title is shown in the board header.
	Title string `yaml:"title"`

	// TimeFormat is the Go layout for the refresh stamp.
	TimeFormat string `yaml:"time_format"`
}

// Default returns development defaults matching the help-desk server
// routes.
func Default() *Config {
	return &Config{
		Environment: Development,
		Server: ServerConfig{
			BaseURL:         "http://localhost:5000",
			OpenTicketsPath: "/api/opentickets",
			TicketsPath:     "/api/tickets",
			SocketPath:      "/socket.io/",
			Namespace:       "/queue",
		},
		Form: FormConfig{
			Encoding:       EncodingJSON,
			FollowUp:       "/tickets",
			SuccessMessage: "Ticket resolved successfully!",
			FallbackError:  "Failed to resolve ticket",
			TransportError: "An error occurred while resolving the ticket",
		},
		Sync: SyncConfig{
			NewTicket: StrategyRefetch,
			Fragment:  FragmentTable,
		},
		Board: BoardConfig{
			Title:      "Live Queue",
			TimeFormat: "3:04:05 PM",
		},
	}
}

// Load loads the file named by HELPQUEUE_CONFIG.
func Load() (*Config, error) {
	path := os.Getenv("HELPQUEUE_CONFIG")
	if path == "" {
		return nil, fmt.Errorf("HELPQUEUE_CONFIG environment variable not set; " +
			"set it to the path of your helpqueue.yaml, or use --config")
	}
	return LoadFile(path)
}

// LoadFile loads configuration from path on top of [Default].
func LoadFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}

	cfg.applyEnvironmentOverrides()
	cfg.expandVariables()
	return cfg, nil
}

// applyEnvironmentOverrides merges the section matching Environment.
func (c *Config) applyEnvironmentOverrides() {
	var overrides *Overrides
	switch c.Environment {
	case Development:
		overrides = c.Development
	case Staging:
		overrides = c.Staging
	case Production:
		overrides = c.Production
	}
	if overrides == nil {
		return
	}

	if server := overrides.Server; server != nil {
		mergeString(&c.Server.BaseURL, server.BaseURL)
		mergeString(&c.Server.OpenTicketsPath, server.OpenTicketsPath)
		mergeString(&c.Server.TicketsPath, server.TicketsPath)
		mergeString(&c.Server.SocketPath, server.SocketPath)
		mergeString(&c.Server.Namespace, server.Namespace)
		mergeString(&c.Server.HTTPTimeout, server.HTTPTimeout)
	}
	if form := overrides.Form; form != nil {
		mergeString(&c.Form.Encoding, form.Encoding)
		mergeString(&c.Form.FollowUp, form.FollowUp)
		mergeString(&c.Form.SuccessMessage, form.SuccessMessage)
		mergeString(&c.Form.FallbackError, form.FallbackError)
		mergeString(&c.Form.TransportError, form.TransportError)
	}
	if sync := overrides.Sync; sync != nil {
		mergeString(&c.Sync.NewTicket, sync.NewTicket)
		mergeString(&c.Sync.Fragment, sync.Fragment)
	}
}

func mergeString(target *string, override string) {
	if override != "" {
		*target = override
	}
}

// expandVariables expands ${VAR} and ${VAR:-default} in URL fields.
func (c *Config) expandVariables() {
	c.Server.BaseURL = expandVars(c.Server.BaseURL)
	c.Server.SocketPath = expandVars(c.Server.SocketPath)
	c.Form.FollowUp = expandVars(c.Form.FollowUp)
}

var varPattern = regexp.MustCompile(`\$\{([^}:]+)(?::-([^}]*))?\}`)

func expandVars(s string) string {
	return varPattern.ReplaceAllStringFunc(s, func(match string) string {
		parts := varPattern.FindStringSubmatch(match)
		if value := os.Getenv(parts[1]); value != "" {
			return value
		}
		return parts[2]
	})
}

// Validate checks the configuration and reports every problem.
func (c *Config) Validate() error {
	var errs []error

	if !slices.Contains([]Environment{Development, Staging, Production}, c.Environment) {
		errs = append(errs, fmt.Errorf("invalid environment: %s", c.Environment))
	}

	if c.Server.BaseURL == "" {
		errs = append(errs, fmt.Errorf("server.base_url is required"))
	} else if parsed, err := url.Parse(c.Server.BaseURL); err != nil || parsed.Host == "" ||
		(parsed.Scheme != "http" && parsed.Scheme != "https") {
		errs = append(errs, fmt.Errorf("server.base_url must be an absolute http(s) URL, got %q", c.Server.BaseURL))
	}
	if !strings.HasPrefix(c.Server.Namespace, "/") {
		errs = append(errs, fmt.Errorf("server.namespace must start with '/', got %q", c.Server.Namespace))
	}
	if c.Server.OpenTicketsPath == "" {
		errs = append(errs, fmt.Errorf("server.open_tickets_path is required"))
	}
	if c.Server.HTTPTimeout != "" {
		if _, err := time.ParseDuration(c.Server.HTTPTimeout); err != nil {
			errs = append(errs, fmt.Errorf("server.http_timeout: %w", err))
		}
	}

	if !slices.Contains([]string{EncodingJSON, EncodingMultipart}, c.Form.Encoding) {
		errs = append(errs, fmt.Errorf("form.encoding must be one of: %v", []string{EncodingJSON, EncodingMultipart}))
	}
	if !slices.Contains([]string{StrategyRefetch, StrategyReload}, c.Sync.NewTicket) {
		errs = append(errs, fmt.Errorf("sync.new_ticket must be one of: %v", []string{StrategyRefetch, StrategyReload}))
	}
	if !slices.Contains([]string{FragmentTable, FragmentCount}, c.Sync.Fragment) {
		errs = append(errs, fmt.Errorf("sync.fragment must be one of: %v", []string{FragmentTable, FragmentCount}))
	}

	return errors.Join(errs...)
}

// Timeout returns the parsed HTTP timeout, or zero for none. Call
// after Validate.
func (c *Config) Timeout() time.Duration {
	if c.Server.HTTPTimeout == "" {
		return 0
	}
	duration, _ := time.ParseDuration(c.Server.HTTPTimeout)
	return duration
}
