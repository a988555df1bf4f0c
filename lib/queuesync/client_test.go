// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package queuesync

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bureau-foundation/helpqueue/lib/socketio"
	"github.com/bureau-foundation/helpqueue/lib/testutil"
	"github.com/bureau-foundation/helpqueue/lib/ticket"
)

func positionLabels(snapshot Snapshot) []string {
	labels := make([]string, len(snapshot.Rows))
	for index, row := range snapshot.Rows {
		labels[index] = row.Position.String()
	}
	return labels
}

func TestConnectRendersInitialSnapshot(t *testing.T) {
	fetcher := &staticFetcher{tickets: queue(ticket.StatusOpen, ticket.StatusInProgress, ticket.StatusOpen)}
	h := newHarness(t, fetcher, Config{NewTicket: FragmentPolicy(FragmentTable)})

	h.channel.send(socketio.EventConnect)
	result := h.result(t)
	if result.Event != socketio.EventConnect || result.Action != "initial" || !result.Rendered || result.Err != nil {
		t.Fatalf("result = %+v", result)
	}

	snapshot, ok := h.view.snapshot(FragmentTable)
	if !ok {
		t.Fatal("table was not rendered")
	}
	if want := []string{"1", "In Progress", "2"}; !reflect.DeepEqual(positionLabels(snapshot), want) {
		t.Errorf("positions = %q, want %q", positionLabels(snapshot), want)
	}
	if snapshot.Count != 3 {
		t.Errorf("Count = %d, want 3", snapshot.Count)
	}
	if !snapshot.RefreshedAt.Equal(testNow) {
		t.Errorf("RefreshedAt = %v, want %v", snapshot.RefreshedAt, testNow)
	}
	if want := []string{"connection:true:", "render:table:3"}; !reflect.DeepEqual(h.view.history(), want) {
		t.Errorf("view calls = %q, want %q", h.view.history(), want)
	}
}

func TestEmptyQueueRendersZeroCountAndEmptyTable(t *testing.T) {
	h := newHarness(t, &staticFetcher{}, Config{
		Fragments: []Fragment{FragmentTable, FragmentCount},
		NewTicket: FragmentPolicy(FragmentCount),
	})
	h.channel.send(socketio.EventConnect)
	h.result(t)

	count, ok := h.view.snapshot(FragmentCount)
	if !ok || count.Count != 0 {
		t.Errorf("count fragment = %+v (rendered %t), want 0", count, ok)
	}
	table, ok := h.view.snapshot(FragmentTable)
	if !ok || len(table.Rows) != 0 {
		t.Errorf("table fragment = %+v (rendered %t), want empty", table, ok)
	}
}

func TestNewTicketRefetchesConfiguredFragment(t *testing.T) {
	fetcher := &staticFetcher{tickets: queue(ticket.StatusOpen)}
	h := newHarness(t, fetcher, Config{
		Fragments: []Fragment{FragmentTable, FragmentCount},
		NewTicket: FragmentPolicy(FragmentCount),
	})
	h.channel.send(socketio.EventConnect)
	h.result(t)

	fetcher.mutex.Lock()
	fetcher.tickets = queue(ticket.StatusOpen, ticket.StatusOpen)
	fetcher.mutex.Unlock()

	h.channel.send(EventNewTicket)
	result := h.result(t)
	if result.Event != EventNewTicket || result.Action != "fragment:count" || !result.Rendered {
		t.Fatalf("result = %+v", result)
	}
	if h.view.count("reload") != 0 {
		t.Error("refetch strategy reloaded the view")
	}
	count, _ := h.view.snapshot(FragmentCount)
	table, _ := h.view.snapshot(FragmentTable)
	if count.Count != 2 || table.Count != 1 {
		t.Errorf("count fragment = %d, table fragment = %d; want only count refreshed", count.Count, table.Count)
	}
}

func TestNewTicketReloadStrategy(t *testing.T) {
	h := newHarness(t, &staticFetcher{tickets: queue(ticket.StatusOpen)}, Config{NewTicket: ReloadPolicy})
	h.channel.send(EventNewTicket)
	result := h.result(t)
	if result.Action != "reload" || !result.Rendered {
		t.Fatalf("result = %+v", result)
	}
	if want := []string{"reload", "render:table:1"}; !reflect.DeepEqual(h.view.history(), want) {
		t.Errorf("view calls = %q, want %q", h.view.history(), want)
	}
}

func TestQueueRefreshAlwaysReloads(t *testing.T) {
	h := newHarness(t, &staticFetcher{tickets: queue(ticket.StatusOpen)}, Config{NewTicket: FragmentPolicy(FragmentTable)})
	h.channel.send(socketio.EventConnect)
	h.result(t)

	for range 3 {
		h.channel.send(EventNewTicket)
		if result := h.result(t); result.Action != "fragment:table" {
			t.Fatalf("new_ticket action = %q", result.Action)
		}
	}
	if h.view.count("reload") != 0 {
		t.Fatal("new_ticket reloaded under the refetch strategy")
	}

	h.channel.send(EventQueueRefresh)
	result := h.result(t)
	if result.Event != EventQueueRefresh || result.Action != "reload" {
		t.Fatalf("queue_refresh result = %+v, want a reload", result)
	}
	if got := h.view.count("reload"); got != 1 {
		t.Errorf("view reloaded %d times, want 1", got)
	}
}

func TestFetchFailureIsLoggedNotRendered(t *testing.T) {
	fetcher := &staticFetcher{err: errors.New("connection refused")}
	h := newHarness(t, fetcher, Config{})
	h.channel.send(socketio.EventConnect)

	result := h.result(t)
	if result.Err == nil || !strings.Contains(result.Err.Error(), "connection refused") {
		t.Fatalf("Err = %v, want the fetch failure", result.Err)
	}
	if result.Rendered {
		t.Error("failed fetch reported Rendered")
	}
	for _, call := range h.view.history() {
		if strings.HasPrefix(call, "render:") {
			t.Errorf("view rendered after a failed fetch: %q", call)
		}
	}
}

func TestStaleResponseIsDiscarded(t *testing.T) {
	fetcher := newGatedFetcher()
	h := newHarness(t, fetcher, Config{})
	ctx := context.Background()

	older := make(chan TaskResult, 1)
	go func() {
		result, _ := h.client.refresh(ctx, FragmentTable)
		older <- result
	}()
	first := testutil.RequireReceive(t, fetcher.calls, testTimeout)

	newer := make(chan TaskResult, 1)
	go func() {
		result, _ := h.client.refresh(ctx, FragmentTable)
		newer <- result
	}()
	second := testutil.RequireReceive(t, fetcher.calls, testTimeout)

	second.answer(queue(ticket.StatusOpen, ticket.StatusOpen)...)
	newerResult := testutil.RequireReceive(t, newer, testTimeout)
	if !newerResult.Rendered || newerResult.Sequence != 2 {
		t.Fatalf("newer result = %+v, want sequence 2 rendered", newerResult)
	}

	first.answer(queue(ticket.StatusOpen)...)
	olderResult := testutil.RequireReceive(t, older, testTimeout)
	if olderResult.Rendered || olderResult.Sequence != 1 {
		t.Fatalf("older result = %+v, want sequence 1 discarded", olderResult)
	}

	snapshot, _ := h.view.snapshot(FragmentTable)
	if snapshot.Count != 2 || snapshot.Sequence != 2 {
		t.Errorf("view shows sequence %d with %d tickets, want sequence 2 with 2", snapshot.Sequence, snapshot.Count)
	}
}

func TestReloadMarksEarlierFetchesStale(t *testing.T) {
	fetcher := newGatedFetcher()
	h := newHarness(t, fetcher, Config{})
	ctx := context.Background()

	older := make(chan TaskResult, 1)
	go func() {
		result, _ := h.client.refresh(ctx, FragmentTable)
		older <- result
	}()
	first := testutil.RequireReceive(t, fetcher.calls, testTimeout)

	reloaded := make(chan TaskResult, 1)
	go func() { reloaded <- h.client.Reload(ctx) }()
	second := testutil.RequireReceive(t, fetcher.calls, testTimeout)

	// The pre-reload fetch answers first and must not repopulate the
	// cleared view.
	first.answer(queue(ticket.StatusOpen)...)
	if result := testutil.RequireReceive(t, older, testTimeout); result.Rendered {
		t.Fatalf("pre-reload fetch rendered: %+v", result)
	}
	if _, ok := h.view.snapshot(FragmentTable); ok {
		t.Fatal("view repopulated by a fetch issued before the reload")
	}
	testutil.RequireNoReceive(t, reloaded, 20*time.Millisecond, "reload finished before its own fetch was answered")

	second.answer(queue(ticket.StatusOpen, ticket.StatusInProgress)...)
	result := testutil.RequireReceive(t, reloaded, testTimeout)
	if !result.Rendered || result.Action != "reload" || result.Event != "manual" {
		t.Fatalf("reload result = %+v", result)
	}
}

func TestReloadRendersAfterNewerRender(t *testing.T) {
	h := newHarness(t, &staticFetcher{tickets: queue(ticket.StatusOpen)}, Config{})
	ctx := context.Background()

	h.channel.send(socketio.EventConnect)
	if result := h.result(t); !result.Rendered {
		t.Fatalf("initial result = %+v", result)
	}
	// A refresh that rendered while the reload was starting leaves a
	// watermark ahead of the counter the reload will read.
	h.client.renderMutex.Lock()
	h.client.lastRendered[FragmentTable] = h.client.sequence.Load() + 2
	h.client.renderMutex.Unlock()

	result := h.client.Reload(ctx)
	if result.Err != nil || !result.Rendered {
		t.Fatalf("reload result = %+v, want rendered", result)
	}
	if _, ok := h.view.snapshot(FragmentTable); !ok {
		t.Fatalf("table empty after reload; view calls = %q", h.view.history())
	}
}

func TestReloadDuringConcurrentRefreshesLeavesTableRendered(t *testing.T) {
	h := newHarness(t, &staticFetcher{tickets: queue(ticket.StatusOpen, ticket.StatusOpen)}, Config{})
	ctx := context.Background()

	for range 50 {
		var group sync.WaitGroup
		for range 4 {
			group.Add(1)
			go func() {
				defer group.Done()
				h.client.refresh(ctx, FragmentTable)
			}()
		}
		result := h.client.Reload(ctx)
		group.Wait()
		if result.Err != nil {
			t.Fatalf("Reload: %v", result.Err)
		}

		history := h.view.history()
		last := -1
		for index, call := range history {
			if call == "reload" {
				last = index
			}
		}
		rendered := false
		for _, call := range history[last+1:] {
			if strings.HasPrefix(call, "render:table:") {
				rendered = true
			}
		}
		if !rendered {
			t.Fatalf("table not rendered after the last reload; view calls = %q", history[last:])
		}
	}
}

func TestDisconnectEventReachesView(t *testing.T) {
	h := newHarness(t, &staticFetcher{}, Config{})
	h.channel.end("transport closed")
	testutil.RequireClosed(t, h.client.Done(), testTimeout)

	want := "connection:false:transport closed"
	if history := h.view.history(); len(history) == 0 || history[len(history)-1] != want {
		t.Errorf("view calls = %q, want last %q", history, want)
	}
}

func TestChannelEndAllowsReconnect(t *testing.T) {
	h := newHarness(t, &staticFetcher{}, Config{})
	h.channel.end("server restart")
	testutil.RequireClosed(t, h.client.Done(), testTimeout)

	select {
	case <-h.channel.closed:
	default:
		t.Error("ended channel was not closed")
	}

	h.channel = newFakeChannel()
	if err := h.client.Connect(context.Background()); err != nil {
		t.Fatalf("reconnect: %v", err)
	}
	h.channel.send(socketio.EventConnect)
	if result := h.result(t); result.Action != "initial" {
		t.Errorf("result after reconnect = %+v", result)
	}
}

func TestConnectTwiceFails(t *testing.T) {
	h := newHarness(t, &staticFetcher{}, Config{})
	if err := h.client.Connect(context.Background()); err == nil {
		t.Fatal("second Connect succeeded")
	}
}

func TestDisconnectIsIdempotent(t *testing.T) {
	h := newHarness(t, &staticFetcher{}, Config{})
	if err := h.client.Disconnect(); err != nil {
		t.Fatalf("Disconnect: %v", err)
	}
	if err := h.client.Disconnect(); err != nil {
		t.Fatalf("second Disconnect: %v", err)
	}
	select {
	case <-h.channel.closed:
	default:
		t.Error("Disconnect did not close the channel")
	}
}

func TestDialFailureReportsDisconnected(t *testing.T) {
	view := newRecordingView()
	client, err := New(Config{
		Dial:    func(context.Context) (Channel, error) { return nil, errors.New("no route to host") },
		Fetcher: &staticFetcher{},
		View:    view,
		Logger:  discardLogger(),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := client.Connect(context.Background()); err == nil {
		t.Fatal("Connect succeeded with a failing dialer")
	}
	if want := []string{"connection:false:no route to host"}; !reflect.DeepEqual(view.history(), want) {
		t.Errorf("view calls = %q, want %q", view.history(), want)
	}
}

func TestNewValidation(t *testing.T) {
	dial := func(context.Context) (Channel, error) { return newFakeChannel(), nil }
	tests := []struct {
		name   string
		config Config
	}{
		{"missing dial", Config{Fetcher: &staticFetcher{}, View: newRecordingView()}},
		{"missing fetcher", Config{Dial: dial, View: newRecordingView()}},
		{"missing view", Config{Dial: dial, Fetcher: &staticFetcher{}}},
		{"unknown fragment", Config{Dial: dial, Fetcher: &staticFetcher{}, View: newRecordingView(), Fragments: []Fragment{"sidebar"}}},
		{
			"policy fragment not shown",
			Config{Dial: dial, Fetcher: &staticFetcher{}, View: newRecordingView(), NewTicket: FragmentPolicy(FragmentCount)},
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			if _, err := New(test.config); err == nil {
				t.Error("New succeeded")
			}
		})
	}
}

func TestUnknownEventsAreIgnored(t *testing.T) {
	fetcher := &staticFetcher{}
	h := newHarness(t, fetcher, Config{})
	h.channel.send("ticket_closed")
	h.channel.send(EventQueueRefresh)
	h.result(t)

	fetcher.mutex.Lock()
	defer fetcher.mutex.Unlock()
	if fetcher.calls != 1 {
		t.Errorf("fetcher called %d times, want 1", fetcher.calls)
	}
}
