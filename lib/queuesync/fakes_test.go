// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package queuesync

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bureau-foundation/helpqueue/lib/clock"
	"github.com/bureau-foundation/helpqueue/lib/socketio"
	"github.com/bureau-foundation/helpqueue/lib/testutil"
	"github.com/bureau-foundation/helpqueue/lib/ticket"
)

const testTimeout = 5 * time.Second

var testNow = time.Date(2026, 3, 2, 9, 5, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeChannel is a Channel whose events the test pushes by hand.
type fakeChannel struct {
	events    chan socketio.Event
	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeChannel() *fakeChannel {
	return &fakeChannel{
		events: make(chan socketio.Event, 16),
		closed: make(chan struct{}),
	}
}

func (channel *fakeChannel) Events() <-chan socketio.Event { return channel.events }

func (channel *fakeChannel) Close() error {
	channel.closeOnce.Do(func() { close(channel.closed) })
	return nil
}

func (channel *fakeChannel) send(name string, args ...string) {
	event := socketio.Event{Name: name}
	for _, arg := range args {
		encoded, _ := json.Marshal(arg)
		event.Args = append(event.Args, encoded)
	}
	channel.events <- event
}

// end simulates the server going away: a disconnect event, then the
// channel closes.
func (channel *fakeChannel) end(reason string) {
	channel.send(socketio.EventDisconnect, reason)
	close(channel.events)
}

// staticFetcher returns the same list on every call.
type staticFetcher struct {
	mutex   sync.Mutex
	tickets []ticket.Ticket
	err     error
	calls   int
}

func (fetcher *staticFetcher) OpenTickets(ctx context.Context) ([]ticket.Ticket, error) {
	fetcher.mutex.Lock()
	defer fetcher.mutex.Unlock()
	fetcher.calls++
	return append([]ticket.Ticket(nil), fetcher.tickets...), fetcher.err
}

// gatedFetcher blocks every call until the test answers it.
type gatedFetcher struct {
	calls chan *fetchCall
}

type fetchCall struct {
	reply chan fetchReply
}

type fetchReply struct {
	tickets []ticket.Ticket
	err     error
}

func newGatedFetcher() *gatedFetcher {
	return &gatedFetcher{calls: make(chan *fetchCall, 8)}
}

func (fetcher *gatedFetcher) OpenTickets(ctx context.Context) ([]ticket.Ticket, error) {
	call := &fetchCall{reply: make(chan fetchReply, 1)}
	fetcher.calls <- call
	select {
	case reply := <-call.reply:
		return reply.tickets, reply.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (call *fetchCall) answer(tickets ...ticket.Ticket) {
	call.reply <- fetchReply{tickets: tickets}
}

// recordingView logs every call and flags overlapping calls.
type recordingView struct {
	mutex     sync.Mutex
	calls     []string
	snapshots map[Fragment]Snapshot
	active    atomic.Int32
	overlaps  atomic.Int32
}

func newRecordingView() *recordingView {
	return &recordingView{snapshots: make(map[Fragment]Snapshot)}
}

func (view *recordingView) enter() func() {
	if view.active.Add(1) != 1 {
		view.overlaps.Add(1)
	}
	return func() { view.active.Add(-1) }
}

func (view *recordingView) Render(fragment Fragment, snapshot Snapshot) {
	defer view.enter()()
	view.mutex.Lock()
	defer view.mutex.Unlock()
	view.calls = append(view.calls, fmt.Sprintf("render:%s:%d", fragment, snapshot.Count))
	view.snapshots[fragment] = snapshot
}

func (view *recordingView) Reload() {
	defer view.enter()()
	view.mutex.Lock()
	defer view.mutex.Unlock()
	view.calls = append(view.calls, "reload")
	view.snapshots = make(map[Fragment]Snapshot)
}

func (view *recordingView) Connection(connected bool, detail string) {
	defer view.enter()()
	view.mutex.Lock()
	defer view.mutex.Unlock()
	view.calls = append(view.calls, fmt.Sprintf("connection:%t:%s", connected, detail))
}

func (view *recordingView) history() []string {
	view.mutex.Lock()
	defer view.mutex.Unlock()
	return append([]string(nil), view.calls...)
}

func (view *recordingView) snapshot(fragment Fragment) (Snapshot, bool) {
	view.mutex.Lock()
	defer view.mutex.Unlock()
	snapshot, ok := view.snapshots[fragment]
	return snapshot, ok
}

func (view *recordingView) count(call string) int {
	n := 0
	for _, recorded := range view.history() {
		if recorded == call {
			n++
		}
	}
	return n
}

// harness wires a Client to fakes and collects handler results.
type harness struct {
	client  *Client
	channel *fakeChannel
	view    *recordingView
	results chan TaskResult
}

func newHarness(t *testing.T, fetcher Fetcher, config Config) *harness {
	t.Helper()
	h := &harness{
		channel: newFakeChannel(),
		view:    newRecordingView(),
		results: make(chan TaskResult, 32),
	}
	config.Dial = func(context.Context) (Channel, error) { return h.channel, nil }
	config.Fetcher = fetcher
	config.View = h.view
	config.Clock = clock.Fake(testNow)
	config.Logger = discardLogger()
	config.OnResult = func(result TaskResult) { h.results <- result }

	client, err := New(config)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	h.client = client
	if err := client.Connect(context.Background()); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() {
		client.Disconnect()
		if overlaps := h.view.overlaps.Load(); overlaps != 0 {
			t.Errorf("view saw %d overlapping calls", overlaps)
		}
	})
	return h
}

func (h *harness) result(t *testing.T) TaskResult {
	t.Helper()
	return testutil.RequireReceive(t, h.results, testTimeout, "handler never finished")
}

func queue(statuses ...ticket.Status) []ticket.Ticket {
	tickets := make([]ticket.Ticket, len(statuses))
	for index, status := range statuses {
		tickets[index] = ticket.Ticket{
			ID:            index + 1,
			StudentName:   fmt.Sprintf("student-%d", index+1),
			Table:         ticket.Table(fmt.Sprint(index + 10)),
			PhysicsCourse: "PHYS 7A",
			Status:        status,
		}
	}
	return tickets
}
