// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "helpqueue.yaml")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
	return path
}

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Environment != Development {
		t.Errorf("expected environment=development, got %s", cfg.Environment)
	}
	if cfg.Server.OpenTicketsPath != "/api/opentickets" {
		t.Errorf("expected open_tickets_path=/api/opentickets, got %s", cfg.Server.OpenTicketsPath)
	}
	if cfg.Server.Namespace != "/queue" {
		t.Errorf("expected namespace=/queue, got %s", cfg.Server.Namespace)
	}
	if cfg.Form.Encoding != EncodingJSON {
		t.Errorf("expected encoding=json, got %s", cfg.Form.Encoding)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should validate: %v", err)
	}
}

func TestLoad_RequiresHelpqueueConfig(t *testing.T) {
	t.Setenv("HELPQUEUE_CONFIG", "")

	_, err := Load()
	if err == nil {
		t.Fatal("expected error when HELPQUEUE_CONFIG not set, got nil")
	}
	if !strings.HasPrefix(err.Error(), "HELPQUEUE_CONFIG environment variable not set") {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestLoad_WithHelpqueueConfig(t *testing.T) {
	path := writeConfig(t, `
environment: staging
server:
  base_url: https://queue.example.edu
`)
	t.Setenv("HELPQUEUE_CONFIG", path)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.Environment != Staging {
		t.Errorf("expected environment=staging, got %s", cfg.Environment)
	}
	if cfg.Server.BaseURL != "https://queue.example.edu" {
		t.Errorf("expected base_url override, got %s", cfg.Server.BaseURL)
	}
	// Unset fields keep their defaults.
	if cfg.Server.OpenTicketsPath != "/api/opentickets" {
		t.Errorf("open_tickets_path lost its default: %s", cfg.Server.OpenTicketsPath)
	}
}

func TestLoadFile_EnvironmentOverrides(t *testing.T) {
	path := writeConfig(t, `
environment: production
server:
  base_url: http://localhost:5000
form:
  encoding: json
sync:
  new_ticket: refetch
production:
  server:
    base_url: https://wormhole.example.edu
    http_timeout: 10s
  form:
    encoding: multipart
  sync:
    new_ticket: reload
development:
  server:
    base_url: http://ignored:1
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Server.BaseURL != "https://wormhole.example.edu" {
		t.Errorf("base_url = %s, want production override", cfg.Server.BaseURL)
	}
	if cfg.Form.Encoding != EncodingMultipart {
		t.Errorf("encoding = %s, want multipart", cfg.Form.Encoding)
	}
	if cfg.Sync.NewTicket != StrategyReload {
		t.Errorf("new_ticket = %s, want reload", cfg.Sync.NewTicket)
	}
	if cfg.Timeout() != 10*time.Second {
		t.Errorf("Timeout() = %v, want 10s", cfg.Timeout())
	}
	if cfg.Sync.Fragment != FragmentTable {
		t.Errorf("fragment = %s, want default table", cfg.Sync.Fragment)
	}
}

func TestLoadFile_ExpandsVariables(t *testing.T) {
	t.Setenv("HELPQUEUE_HOST", "queue.internal:8443")
	t.Setenv("HELPQUEUE_UNSET_FOR_TEST", "")
	path := writeConfig(t, `
server:
  base_url: https://${HELPQUEUE_HOST}
form:
  follow_up: ${HELPQUEUE_UNSET_FOR_TEST:-/hardware_list}
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if cfg.Server.BaseURL != "https://queue.internal:8443" {
		t.Errorf("base_url = %s", cfg.Server.BaseURL)
	}
	if cfg.Form.FollowUp != "/hardware_list" {
		t.Errorf("follow_up = %s, want default from pattern", cfg.Form.FollowUp)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
	if _, err := LoadFile(writeConfig(t, "server: [not, a, map]")); err == nil {
		t.Error("expected error for malformed YAML")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad environment", func(c *Config) { c.Environment = "qa" }, "invalid environment"},
		{"missing base url", func(c *Config) { c.Server.BaseURL = "" }, "server.base_url is required"},
		{"relative base url", func(c *Config) { c.Server.BaseURL = "/api" }, "absolute http(s) URL"},
		{"websocket base url", func(c *Config) { c.Server.BaseURL = "ws://host" }, "absolute http(s) URL"},
		{"namespace", func(c *Config) { c.Server.Namespace = "queue" }, "server.namespace"},
		{"timeout", func(c *Config) { c.Server.HTTPTimeout = "soon" }, "server.http_timeout"},
		{"encoding", func(c *Config) { c.Form.Encoding = "xml" }, "form.encoding"},
		{"strategy", func(c *Config) { c.Sync.NewTicket = "patch" }, "sync.new_ticket"},
		{"fragment", func(c *Config) { c.Sync.Fragment = "chart" }, "sync.fragment"},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			cfg := Default()
			test.mutate(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), test.want) {
				t.Errorf("error %q does not mention %q", err, test.want)
			}
		})
	}
}

func TestValidate_JoinsErrors(t *testing.T) {
	cfg := Default()
	cfg.Form.Encoding = "xml"
	cfg.Sync.Fragment = "chart"
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "form.encoding") || !strings.Contains(err.Error(), "sync.fragment") {
		t.Errorf("expected both problems reported, got %q", err)
	}
}
