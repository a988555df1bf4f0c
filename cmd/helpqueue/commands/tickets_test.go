// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bureau-foundation/helpqueue/cmd/helpqueue/cli"
)

const openTicketsBody = `[
	{"id": 1, "student_name": "Ada", "table": "4", "physics_course": "PHYS 7A", "status": "open"},
	{"id": 2, "student_name": "Grace", "table": 9, "physics_course": "PHYS 7B", "status": "in_progress"},
	{"id": 3, "student_name": "Lin", "table": "2", "physics_course": "PHYS 8A", "status": "open"}
]`

const allTicketsBody = `[
	{"id": 1, "student_name": "Ada", "table": "4", "physics_course": "PHYS 7A", "status": "open"},
	{"id": 2, "student_name": "Grace", "table": 9, "physics_course": "PHYS 7B", "status": "in_progress"},
	{"id": 4, "student_name": "Kay", "table": "1", "physics_course": "PHYS 7A", "status": "closed", "closed_reason": "helped"},
	{"id": 3, "student_name": "Lin", "table": "2", "physics_course": "PHYS 8A", "status": "open"}
]`

func ticketServer(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/opentickets", func(writer http.ResponseWriter, _ *http.Request) {
		io.WriteString(writer, openTicketsBody)
	})
	mux.HandleFunc("GET /api/tickets", func(writer http.ResponseWriter, _ *http.Request) {
		io.WriteString(writer, allTicketsBody)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestTicketsTable(t *testing.T) {
	server := ticketServer(t)
	h := newHarness(t)

	if err := h.run("tickets", "--server", server.URL); err != nil {
		t.Fatalf("tickets: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(h.stdout.String()), "\n")
	if len(lines) != 6 {
		t.Fatalf("got %d lines, want header, 3 rows, blank, summary:\n%s", len(lines), h.stdout.String())
	}
	wantPrefixes := []string{"POSITION", "1 ", "In Progress", "2 "}
	for index, prefix := range wantPrefixes {
		if !strings.HasPrefix(lines[index], prefix) {
			t.Errorf("line %d = %q, want prefix %q", index, lines[index], prefix)
		}
	}
	if lines[5] != "3 tickets, 2 waiting" {
		t.Errorf("summary = %q", lines[5])
	}
}

func TestTicketsAllJSON(t *testing.T) {
	server := ticketServer(t)
	h := newHarness(t)

	if err := h.run("tickets", "--all", "--json", "--server", server.URL); err != nil {
		t.Fatalf("tickets: %v", err)
	}
	var listed []struct {
		Position    string `json:"position"`
		ID          int    `json:"id"`
		StudentName string `json:"student_name"`
		Table       string `json:"table"`
	}
	if err := json.Unmarshal([]byte(h.stdout.String()), &listed); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, h.stdout.String())
	}
	want := []string{"1", "In Progress", "closed", "2"}
	if len(listed) != len(want) {
		t.Fatalf("listed %d tickets, want %d", len(listed), len(want))
	}
	for index, position := range want {
		if listed[index].Position != position {
			t.Errorf("ticket %d position = %q, want %q", listed[index].ID, listed[index].Position, position)
		}
	}
	if listed[1].Table != "9" {
		t.Errorf("numeric table encoded as %q, want \"9\"", listed[1].Table)
	}
}

func TestTicketsEmptyQueue(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
		io.WriteString(writer, "[]")
	}))
	defer server.Close()
	h := newHarness(t)

	if err := h.run("tickets", "--server", server.URL); err != nil {
		t.Fatalf("tickets: %v", err)
	}
	if strings.TrimSpace(h.stdout.String()) != "No open tickets" {
		t.Errorf("output = %q", h.stdout.String())
	}

	h = newHarness(t)
	if err := h.run("tickets", "--json", "--server", server.URL); err != nil {
		t.Fatalf("tickets --json: %v", err)
	}
	if strings.TrimSpace(h.stdout.String()) != "[]" {
		t.Errorf("JSON output = %q, want []", h.stdout.String())
	}
}

func TestTicketsErrorCategories(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		category cli.ErrorCategory
	}{
		{"not found", http.StatusNotFound, cli.CategoryNotFound},
		{"bad request", http.StatusBadRequest, cli.CategoryValidation},
		{"server error", http.StatusBadGateway, cli.CategoryTransient},
		{"forbidden", http.StatusForbidden, cli.CategoryInternal},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, _ *http.Request) {
				writer.WriteHeader(test.status)
				io.WriteString(writer, `{"error": "nope"}`)
			}))
			defer server.Close()
			h := newHarness(t)

			err := h.run("tickets", "--server", server.URL)
			if cli.CategoryOf(err) != test.category {
				t.Errorf("error = %v (category %q), want %q", err, cli.CategoryOf(err), test.category)
			}
			if err != nil && !strings.Contains(err.Error(), "nope") {
				t.Errorf("error %q does not carry the server message", err)
			}
		})
	}
}

func TestTicketsUnreachableIsTransient(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	address := server.URL
	server.Close()
	h := newHarness(t)

	if err := h.run("tickets", "--server", address); cli.CategoryOf(err) != cli.CategoryTransient {
		t.Errorf("error = %v, want transient", err)
	}
}
