// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package commands

import (
	"context"
	"log/slog"
	"time"

	"github.com/bureau-foundation/helpqueue/lib/clock"
	"github.com/bureau-foundation/helpqueue/lib/config"
	"github.com/bureau-foundation/helpqueue/lib/queuesync"
	"github.com/bureau-foundation/helpqueue/lib/socketio"
)

// reconnectDelay is the pause between a lost live channel and the
// next attempt.
const reconnectDelay = 2 * time.Second

// newSyncClient wires a queuesync.Client to the configured server.
// shown lists the fragments view displays; newTicketFragment is the
// one a refetch refreshes.
func newSyncClient(cfg *config.Config, view queuesync.View, shown []queuesync.Fragment,
	newTicketFragment queuesync.Fragment, clk clock.Clock, logger *slog.Logger) (*queuesync.Client, error) {

	api, err := apiClient(cfg, logger)
	if err != nil {
		return nil, err
	}
	policy, err := queuesync.PolicyFor(cfg.Sync.NewTicket, newTicketFragment)
	if err != nil {
		return nil, err
	}
	return queuesync.New(queuesync.Config{
		Dial: queuesync.DialSocketIO(cfg.Server.BaseURL, cfg.Server.Namespace, socketio.Options{
			Path:   cfg.Server.SocketPath,
			Clock:  clk,
			Logger: logger,
		}),
		Fetcher:   api,
		View:      view,
		Fragments: shown,
		NewTicket: policy,
		Clock:     clk,
		Logger:    logger,
	})
}

// keepConnected holds the live channel open until ctx is cancelled,
// reconnecting after reconnectDelay whenever it drops or cannot be
// opened. It returns with the client disconnected.
func keepConnected(ctx context.Context, client *queuesync.Client, clk clock.Clock, logger *slog.Logger) {
	defer client.Disconnect()
	for {
		if err := client.Connect(ctx); err != nil {
			logger.Warn("live channel unavailable", "error", err, "retry_in", reconnectDelay)
		} else {
			select {
			case <-ctx.Done():
				return
			case <-client.Done():
			}
			if ctx.Err() != nil {
				return
			}
			logger.Warn("live channel closed, reconnecting", "retry_in", reconnectDelay)
		}
		select {
		case <-ctx.Done():
			return
		case <-clk.After(reconnectDelay):
		}
	}
}
