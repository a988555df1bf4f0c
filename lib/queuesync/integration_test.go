// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package queuesync

import (
	"context"
	"io"
	"net/http"
	"sync/atomic"
	"testing"

	"github.com/bureau-foundation/helpqueue/lib/queueapi"
	"github.com/bureau-foundation/helpqueue/lib/socketio"
	"github.com/bureau-foundation/helpqueue/lib/socketio/socketiotest"
	"github.com/bureau-foundation/helpqueue/lib/testutil"
)

// TestSocketIOEndToEnd drives a Client against a real Socket.IO
// session and REST endpoint on one loopback server.
func TestSocketIOEndToEnd(t *testing.T) {
	var listRequests atomic.Int32
	mux := http.NewServeMux()
	mux.HandleFunc("/api/opentickets", func(writer http.ResponseWriter, request *http.Request) {
		listRequests.Add(1)
		io.WriteString(writer, `[
			{"id": 1, "student_name": "Ada", "table": "4", "physics_course": "PHYS 7A", "status": "open"},
			{"id": 2, "student_name": "Grace", "table": 9, "physics_course": "PHYS 7B", "status": "in_progress"},
			{"id": 3, "student_name": "Lin", "table": "2", "physics_course": "PHYS 8A", "status": "open"}
		]`)
	})
	server := socketiotest.NewServer(socketiotest.Options{Namespace: "/queue", Mux: mux})
	defer server.Close()

	api, err := queueapi.NewClient(queueapi.Config{BaseURL: server.URL, HTTPClient: server.Client()})
	if err != nil {
		t.Fatalf("queueapi.NewClient: %v", err)
	}

	view := newRecordingView()
	results := make(chan TaskResult, 8)
	client, err := New(Config{
		Dial:      DialSocketIO(server.URL, "/queue", socketio.Options{Logger: discardLogger()}),
		Fetcher:   api,
		View:      view,
		Fragments: []Fragment{FragmentTable, FragmentCount},
		NewTicket: FragmentPolicy(FragmentTable),
		Logger:    discardLogger(),
		OnResult:  func(result TaskResult) { results <- result },
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer client.Disconnect()
	testutil.RequireReceive(t, server.Joined(), testTimeout)

	initial := testutil.RequireReceive(t, results, testTimeout)
	if initial.Action != "initial" || initial.Err != nil {
		t.Fatalf("initial result = %+v", initial)
	}
	table, _ := view.snapshot(FragmentTable)
	if got := positionLabels(table); len(got) != 3 || got[0] != "1" || got[1] != "In Progress" || got[2] != "2" {
		t.Errorf("positions = %q", got)
	}

	if err := server.Emit(EventNewTicket, map[string]any{"id": 4}); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if result := testutil.RequireReceive(t, results, testTimeout); result.Action != "fragment:table" {
		t.Errorf("new_ticket result = %+v", result)
	}

	if err := server.Emit(EventQueueRefresh); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	if result := testutil.RequireReceive(t, results, testTimeout); result.Action != "reload" {
		t.Errorf("queue_refresh result = %+v", result)
	}
	if got := listRequests.Load(); got != 3 {
		t.Errorf("open-ticket list fetched %d times, want 3", got)
	}

	if err := client.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	left := testutil.RequireReceive(t, server.Received(), testTimeout)
	if left != "1/queue," {
		t.Errorf("server received %q, want namespace leave", left)
	}
}
