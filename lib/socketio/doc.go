// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package socketio is a small Socket.IO client: protocol v5 over
// Engine.IO v4, websocket transport only, text packets only.
//
// It implements what a queue display needs from the help-desk server's
// /queue namespace: connect to one namespace, receive server-emitted
// events, answer heartbeats, and notice when the connection is gone.
// It does not emit events, request acknowledgements, long-poll, or
// reconnect; a caller that wants a new session dials again.
//
// Wire layering:
//
//	websocket text frame
//	  Engine.IO packet:  <type>[payload]         0 open, 2 ping, 3 pong, 4 message
//	    Socket.IO packet: <type>[/nsp,][id][json] 0 connect, 2 event, 4 connect_error
//
// [Dial] completes both handshakes before returning. Events are then
// delivered on [Conn.Events], bracketed by a synthetic "connect" event
// and a final "disconnect" event carrying the reason, after which the
// channel is closed.
package socketio
