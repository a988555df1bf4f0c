// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package queuesync

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/bureau-foundation/helpqueue/lib/clock"
	"github.com/bureau-foundation/helpqueue/lib/socketio"
	"github.com/bureau-foundation/helpqueue/lib/ticket"
)

// Signals carried on the live channel.
const (
	EventNewTicket    = "new_ticket"
	EventQueueRefresh = "queue_refresh"
)

// Channel is an open live channel. *socketio.Conn satisfies it.
type Channel interface {
	// Events delivers signals, starting with "connect" and ending
	// with "disconnect" before the channel closes.
	Events() <-chan socketio.Event

	// Close ends the session.
	Close() error
}

// DialFunc opens a Channel.
type DialFunc func(ctx context.Context) (Channel, error)

// DialSocketIO returns a DialFunc for a Socket.IO namespace.
func DialSocketIO(serverURL, namespace string, options socketio.Options) DialFunc {
	return func(ctx context.Context) (Channel, error) {
		conn, err := socketio.Dial(ctx, serverURL, namespace, options)
		if err != nil {
			return nil, err
		}
		return conn, nil
	}
}

// Fetcher returns the open-ticket list. *queueapi.Client satisfies it.
type Fetcher interface {
	OpenTickets(ctx context.Context) ([]ticket.Ticket, error)
}

// TaskResult describes what one signal handler did.
type TaskResult struct {
	// Event is the signal that started the task.
	Event string

	// Action is "initial", "reload", or "fragment:<name>".
	Action string

	// Sequence is the number of the fetch the task issued, or zero if
	// it issued none.
	Sequence uint64

	// Rendered is false when the fetch failed or a newer fetch had
	// already rendered every fragment.
	Rendered bool

	// Err is the failure, if any. It is logged, never shown.
	Err error
}

// Config holds configuration for creating a Client.
type Config struct {
	// Dial opens the live channel. Required.
	Dial DialFunc

	// Fetcher loads the open-ticket list. Required.
	Fetcher Fetcher

	// View receives renders. Required.
	View View

	// Fragments lists what the view shows. Defaults to the table.
	Fragments []Fragment

	// NewTicket is applied on every "new_ticket" signal. The zero
	// value reloads.
	NewTicket RefreshPolicy

	// Clock stamps each snapshot. Defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// OnResult, when set, is called after every handler finishes,
	// from the handler's goroutine.
	OnResult func(TaskResult)
}

// Client keeps a View in step with the server's open-ticket queue.
// Construct with New, start with Connect, and stop with Disconnect.
type Client struct {
	dial      DialFunc
	fetcher   Fetcher
	view      View
	fragments []Fragment
	newTicket RefreshPolicy
	clock     clock.Clock
	logger    *slog.Logger
	onResult  func(TaskResult)

	sequence atomic.Uint64

	// renderMutex serialises View calls and guards lastRendered.
	renderMutex  sync.Mutex
	lastRendered map[Fragment]uint64

	lifecycleMutex sync.Mutex
	channel        Channel
	cancel         context.CancelFunc
	done           chan struct{}
	tasks          sync.WaitGroup
}

// New validates config and returns an unconnected Client.
func New(config Config) (*Client, error) {
	if config.Dial == nil {
		return nil, errors.New("queuesync: Dial is required")
	}
	if config.Fetcher == nil {
		return nil, errors.New("queuesync: Fetcher is required")
	}
	if config.View == nil {
		return nil, errors.New("queuesync: View is required")
	}

	fragments := config.Fragments
	if len(fragments) == 0 {
		fragments = []Fragment{FragmentTable}
	}
	for _, fragment := range fragments {
		if _, err := ParseFragment(string(fragment)); err != nil {
			return nil, err
		}
	}
	if config.NewTicket.Mode == ModeFragment {
		found := false
		for _, fragment := range fragments {
			found = found || fragment == config.NewTicket.Fragment
		}
		if !found {
			return nil, fmt.Errorf("queuesync: new-ticket policy refreshes %q, which the view does not show", config.NewTicket.Fragment)
		}
	}

	clk := config.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		dial:         config.Dial,
		fetcher:      config.Fetcher,
		view:         config.View,
		fragments:    append([]Fragment(nil), fragments...),
		newTicket:    config.NewTicket,
		clock:        clk,
		logger:       logger,
		onResult:     config.OnResult,
		lastRendered: make(map[Fragment]uint64),
	}, nil
}

// Connect opens the live channel and starts handling signals. The
// initial fetch runs when the channel reports "connect". ctx bounds
// the whole session: cancelling it has the same effect as Disconnect
// except that Disconnect also waits.
func (client *Client) Connect(ctx context.Context) error {
	client.lifecycleMutex.Lock()
	defer client.lifecycleMutex.Unlock()
	if client.channel != nil {
		return errors.New("queuesync: already connected")
	}

	channel, err := client.dial(ctx)
	if err != nil {
		client.withView(func(view View) { view.Connection(false, err.Error()) })
		return fmt.Errorf("queuesync: opening live channel: %w", err)
	}

	sessionCtx, cancel := context.WithCancel(ctx)
	done := make(chan struct{})
	client.channel = channel
	client.cancel = cancel
	client.done = done

	go client.eventLoop(sessionCtx, cancel, channel, done)
	client.logger.Info("queue sync connected",
		"new_ticket_policy", client.newTicket.String(),
		"fragments", client.fragments,
	)
	return nil
}

// Disconnect closes the live channel and waits for running handlers.
// Safe to call when not connected.
func (client *Client) Disconnect() error {
	client.lifecycleMutex.Lock()
	channel, cancel, done := client.channel, client.cancel, client.done
	client.channel, client.cancel = nil, nil
	client.lifecycleMutex.Unlock()

	if channel == nil {
		return nil
	}
	err := channel.Close()
	cancel()
	<-done
	if err != nil {
		return fmt.Errorf("queuesync: closing live channel: %w", err)
	}
	return nil
}

// Done is closed when the current session's event loop has exited,
// whether through Disconnect or because the channel ended. Nil before
// the first Connect.
func (client *Client) Done() <-chan struct{} {
	client.lifecycleMutex.Lock()
	defer client.lifecycleMutex.Unlock()
	return client.done
}

// Reload discards the view and re-fetches every fragment. Used for
// manual refreshes; runs on the caller's goroutine.
func (client *Client) Reload(ctx context.Context) TaskResult {
	result, err := client.reload(ctx)
	result.Event = "manual"
	result.Err = err
	if err != nil {
		client.logger.Warn("manual reload failed", "error", err)
	}
	return result
}

func (client *Client) eventLoop(ctx context.Context, cancel context.CancelFunc, channel Channel, done chan struct{}) {
	defer close(done)
	defer client.detach(channel, cancel)
	defer client.tasks.Wait()

	events := channel.Events()
	for {
		select {
		case <-ctx.Done():
			return
		case event, open := <-events:
			if !open {
				return
			}
			client.dispatch(ctx, event)
		}
	}
}

// detach releases a channel that ended on its own so Connect can be
// called again. A channel already taken by Disconnect is left alone.
func (client *Client) detach(channel Channel, cancel context.CancelFunc) {
	client.lifecycleMutex.Lock()
	owned := client.channel == channel
	if owned {
		client.channel, client.cancel = nil, nil
	}
	client.lifecycleMutex.Unlock()
	if owned {
		cancel()
		channel.Close()
	}
}

func (client *Client) dispatch(ctx context.Context, event socketio.Event) {
	switch event.Name {
	case socketio.EventConnect:
		client.withView(func(view View) { view.Connection(true, "") })
		client.spawn(ctx, event.Name, func(ctx context.Context) (TaskResult, error) {
			result, err := client.refresh(ctx, client.fragments...)
			result.Action = "initial"
			return result, err
		})
	case EventNewTicket:
		client.spawn(ctx, event.Name, func(ctx context.Context) (TaskResult, error) {
			return client.newTicket.apply(ctx, client)
		})
	case EventQueueRefresh:
		client.spawn(ctx, event.Name, func(ctx context.Context) (TaskResult, error) {
			return ReloadPolicy.apply(ctx, client)
		})
	case socketio.EventDisconnect:
		reason := disconnectReason(event)
		client.logger.Info("queue sync disconnected", "reason", reason)
		client.withView(func(view View) { view.Connection(false, reason) })
	default:
		client.logger.Debug("ignoring live channel event", "event", event.Name)
	}
}

// spawn runs task on its own goroutine and reports its result.
func (client *Client) spawn(ctx context.Context, eventName string, task func(context.Context) (TaskResult, error)) {
	client.tasks.Add(1)
	go func() {
		defer client.tasks.Done()
		result, err := task(ctx)
		result.Event = eventName
		result.Err = err
		if err != nil {
			client.logger.Warn("queue sync fetch failed",
				"event", eventName,
				"action", result.Action,
				"sequence", result.Sequence,
				"error", err,
			)
		}
		if client.onResult != nil {
			client.onResult(result)
		}
	}()
}

// reload clears the view, marks every earlier fetch stale, and fetches
// every fragment.
func (client *Client) reload(ctx context.Context) (TaskResult, error) {
	// The sequence is taken under the render lock so no render can land
	// between allocating it and clearing the view. Every fetch issued
	// before this point is stale; the reload's own fetch is not.
	var sequence uint64
	client.withView(func(view View) {
		sequence = client.sequence.Add(1)
		for _, fragment := range client.fragments {
			client.lastRendered[fragment] = sequence - 1
		}
		view.Reload()
	})
	result, err := client.fetchAndRender(ctx, sequence, client.fragments)
	result.Action = "reload"
	return result, err
}

// refresh fetches once and re-renders fragments.
func (client *Client) refresh(ctx context.Context, fragments ...Fragment) (TaskResult, error) {
	sequence := client.sequence.Add(1)
	result, err := client.fetchAndRender(ctx, sequence, fragments)
	if len(fragments) == 1 {
		result.Action = "fragment:" + string(fragments[0])
	}
	return result, err
}

func (client *Client) fetchAndRender(ctx context.Context, sequence uint64, fragments []Fragment) (TaskResult, error) {
	result := TaskResult{Sequence: sequence}
	tickets, err := client.fetcher.OpenTickets(ctx)
	if err != nil {
		return result, fmt.Errorf("fetching open tickets: %w", err)
	}
	snapshot := NewSnapshot(tickets, client.clock.Now(), sequence)

	client.withView(func(view View) {
		for _, fragment := range fragments {
			if sequence <= client.lastRendered[fragment] {
				client.logger.Debug("discarding stale queue snapshot",
					"fragment", fragment,
					"sequence", sequence,
					"last_rendered", client.lastRendered[fragment],
				)
				continue
			}
			client.lastRendered[fragment] = sequence
			view.Render(fragment, snapshot)
			result.Rendered = true
		}
	})
	return result, nil
}

// withView runs f with the render lock held.
func (client *Client) withView(f func(View)) {
	client.renderMutex.Lock()
	defer client.renderMutex.Unlock()
	f(client.view)
}

func disconnectReason(event socketio.Event) string {
	if len(event.Args) == 0 {
		return "unknown"
	}
	var reason string
	if err := json.Unmarshal(event.Args[0], &reason); err != nil {
		return string(event.Args[0])
	}
	return reason
}
