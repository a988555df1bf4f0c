// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package socketio

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/bureau-foundation/helpqueue/lib/clock"
	"github.com/bureau-foundation/helpqueue/lib/netutil"
	"github.com/bureau-foundation/helpqueue/lib/version"
)

// eventBuffer is the capacity of the Events channel. The read loop
// blocks when it is full, which in turn delays heartbeat replies, so
// consumers should drain it promptly.
const eventBuffer = 64

// ErrHeartbeatTimeout ends a session when the server stops pinging.
var ErrHeartbeatTimeout = errors.New("socketio: no ping from server within pingInterval+pingTimeout")

// ErrClosed is the disconnect reason after a local Close.
var ErrClosed = errors.New("socketio: connection closed by client")

// Options configures Dial. The zero value is usable.
type Options struct {
	// Path is the Engine.IO endpoint. Defaults to "/socket.io/".
	Path string

	// Header is sent with the websocket handshake (cookies, auth).
	Header http.Header

	// Dialer overrides websocket.DefaultDialer.
	Dialer *websocket.Dialer

	// Clock drives the heartbeat deadline. Defaults to clock.Real().
	Clock clock.Clock

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Conn is one Socket.IO session on a single namespace.
type Conn struct {
	socket    *websocket.Conn
	namespace string
	sessionID string
	clock     clock.Clock
	logger    *slog.Logger

	heartbeat time.Duration
	watchdog  *clock.Timer

	events  chan Event
	closing chan struct{}
	done    chan struct{}

	writeMutex sync.Mutex
	closeOnce  sync.Once
	errMutex   sync.Mutex
	err        error
}

// Dial connects to serverURL (http, https, ws or wss), completes the
// Engine.IO and Socket.IO handshakes for namespace, and starts the
// read loop. ctx bounds the handshake only.
func Dial(ctx context.Context, serverURL, namespace string, options Options) (*Conn, error) {
	if namespace == "" {
		namespace = "/"
	}
	if !strings.HasPrefix(namespace, "/") {
		return nil, fmt.Errorf("socketio: namespace %q must start with '/'", namespace)
	}
	endpoint, err := EndpointURL(serverURL, options.Path)
	if err != nil {
		return nil, err
	}

	dialer := options.Dialer
	if dialer == nil {
		dialer = websocket.DefaultDialer
	}
	header := options.Header.Clone()
	if header == nil {
		header = http.Header{}
	}
	if header.Get("User-Agent") == "" {
		header.Set("User-Agent", version.UserAgent())
	}
	clk := options.Clock
	if clk == nil {
		clk = clock.Real()
	}
	logger := options.Logger
	if logger == nil {
		logger = slog.Default()
	}

	socket, response, err := dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if response != nil {
			return nil, fmt.Errorf("socketio: websocket handshake with %s: HTTP %d: %w", endpoint, response.StatusCode, err)
		}
		return nil, fmt.Errorf("socketio: dialing %s: %w", endpoint, err)
	}

	conn := &Conn{
		socket:    socket,
		namespace: namespace,
		clock:     clk,
		logger:    logger.With("namespace", namespace),
		events:    make(chan Event, eventBuffer),
		closing:   make(chan struct{}),
		done:      make(chan struct{}),
	}

	// Unblock handshake reads if ctx ends first. Once the close has
	// started the socket is unusable even if the handshake succeeded.
	stopWatch := context.AfterFunc(ctx, func() { socket.Close() })
	err = conn.handshake()
	if !stopWatch() {
		socket.Close()
		return nil, fmt.Errorf("socketio: handshake: %w", ctx.Err())
	}
	if err != nil {
		socket.Close()
		return nil, err
	}

	conn.events <- Event{Name: EventConnect}
	conn.watchdog = clk.AfterFunc(conn.heartbeat, func() {
		conn.shutdown(ErrHeartbeatTimeout)
	})
	go conn.readLoop()

	conn.logger.Info("socket.io session established", "sid", conn.sessionID)
	return conn, nil
}

// EndpointURL builds the Engine.IO websocket URL for serverURL. An
// empty path means "/socket.io/".
func EndpointURL(serverURL, path string) (string, error) {
	parsed, err := url.Parse(serverURL)
	if err != nil {
		return "", fmt.Errorf("socketio: parsing server URL: %w", err)
	}
	switch parsed.Scheme {
	case "http", "ws":
		parsed.Scheme = "ws"
	case "https", "wss":
		parsed.Scheme = "wss"
	default:
		return "", fmt.Errorf("socketio: unsupported URL scheme %q", parsed.Scheme)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("socketio: server URL %q has no host", serverURL)
	}
	if path == "" {
		path = "/socket.io/"
	}
	parsed.Path = path
	query := parsed.Query()
	query.Set("EIO", "4")
	query.Set("transport", "websocket")
	parsed.RawQuery = query.Encode()
	return parsed.String(), nil
}

// handshake reads the Engine.IO open packet, requests the namespace,
// and waits for CONNECT or CONNECT_ERROR.
func (conn *Conn) handshake() error {
	frame, err := conn.readFrame()
	if err != nil {
		return fmt.Errorf("socketio: reading open packet: %w", err)
	}
	if frame == "" || frame[0] != engineOpen {
		return fmt.Errorf("socketio: expected open packet, got %q", frame)
	}
	var open openPayload
	if err := json.Unmarshal([]byte(frame[1:]), &open); err != nil {
		return fmt.Errorf("socketio: decoding open packet: %w", err)
	}
	if open.PingInterval <= 0 || open.PingTimeout <= 0 {
		return fmt.Errorf("socketio: open packet has no heartbeat parameters: %q", frame)
	}
	conn.sessionID = open.SessionID
	conn.heartbeat = time.Duration(open.PingInterval+open.PingTimeout) * time.Millisecond

	request := Packet{Type: PacketConnect, Namespace: conn.namespace, ID: -1}
	if err := conn.writeFrame(string(engineMessage) + EncodePacket(request)); err != nil {
		return fmt.Errorf("socketio: requesting namespace: %w", err)
	}

	for {
		frame, err := conn.readFrame()
		if err != nil {
			return fmt.Errorf("socketio: waiting for namespace connect: %w", err)
		}
		if frame == "" {
			continue
		}
		switch frame[0] {
		case enginePing:
			if err := conn.writeFrame(string(enginePong)); err != nil {
				return fmt.Errorf("socketio: answering ping: %w", err)
			}
			continue
		case engineClose:
			return fmt.Errorf("socketio: server closed the session during handshake")
		case engineMessage:
		default:
			continue
		}

		packet, err := DecodePacket(frame[1:])
		if err != nil {
			return err
		}
		if packet.Namespace != conn.namespace {
			continue
		}
		switch packet.Type {
		case PacketConnect:
			return nil
		case PacketConnectError:
			var payload connectErrorPayload
			_ = json.Unmarshal(packet.Data, &payload)
			if payload.Message == "" {
				payload.Message = string(packet.Data)
			}
			return fmt.Errorf("socketio: namespace %s refused: %s", conn.namespace, payload.Message)
		}
	}
}

// Events delivers server events in arrival order, starting with a
// synthetic "connect" and ending with "disconnect". The channel is
// closed after the disconnect event.
func (conn *Conn) Events() <-chan Event {
	return conn.events
}

// SessionID returns the Engine.IO session id assigned by the server.
func (conn *Conn) SessionID() string {
	return conn.sessionID
}

// Done is closed once the session has ended.
func (conn *Conn) Done() <-chan struct{} {
	return conn.done
}

// Err returns why the session ended, or nil while it is live.
func (conn *Conn) Err() error {
	conn.errMutex.Lock()
	defer conn.errMutex.Unlock()
	return conn.err
}

// Close leaves the namespace and closes the websocket. It waits for
// the read loop to finish and is safe to call more than once.
func (conn *Conn) Close() error {
	leave := Packet{Type: PacketDisconnect, Namespace: conn.namespace, ID: -1}
	_ = conn.writeFrame(string(engineMessage) + EncodePacket(leave))
	conn.shutdown(ErrClosed)
	<-conn.done
	return nil
}

// shutdown records the first reason and closes the socket, which ends
// the read loop.
func (conn *Conn) shutdown(reason error) {
	conn.closeOnce.Do(func() {
		conn.errMutex.Lock()
		conn.err = reason
		conn.errMutex.Unlock()
		close(conn.closing)

		conn.writeMutex.Lock()
		_ = conn.socket.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
			time.Now().Add(time.Second))
		conn.writeMutex.Unlock()
		conn.socket.Close()
	})
}

func (conn *Conn) readLoop() {
	defer func() {
		if conn.watchdog != nil {
			conn.watchdog.Stop()
		}
		conn.deliverFinal(Event{Name: EventDisconnect, Args: []json.RawMessage{reasonJSON(conn.Err())}})
		close(conn.events)
		close(conn.done)
	}()

	for {
		frame, err := conn.readFrame()
		if err != nil {
			if !netutil.IsExpectedCloseError(err) && conn.Err() == nil {
				conn.logger.Warn("socket.io read failed", "error", err)
			}
			conn.shutdown(fmt.Errorf("socketio: transport closed: %w", err))
			return
		}
		if frame == "" {
			continue
		}

		switch frame[0] {
		case enginePing:
			conn.watchdog.Reset(conn.heartbeat)
			if err := conn.writeFrame(string(enginePong)); err != nil {
				conn.shutdown(fmt.Errorf("socketio: answering ping: %w", err))
				return
			}
		case engineClose:
			conn.shutdown(errors.New("socketio: server closed the session"))
			return
		case engineMessage:
			if done := conn.handleMessage(frame[1:]); done {
				return
			}
		case engineNoop, enginePong:
		default:
			conn.logger.Debug("ignoring engine.io packet", "type", string(frame[0]))
		}
	}
}

// handleMessage processes one Socket.IO packet. Returns true when the
// session is over.
func (conn *Conn) handleMessage(text string) bool {
	packet, err := DecodePacket(text)
	if err != nil {
		conn.logger.Warn("dropping malformed socket.io packet", "error", err)
		return false
	}
	if packet.Namespace != conn.namespace {
		return false
	}

	switch packet.Type {
	case PacketEvent:
		event, err := DecodeEvent(packet.Data)
		if err != nil {
			conn.logger.Warn("dropping malformed event", "error", err)
			return false
		}
		select {
		case conn.events <- event:
		case <-conn.closing:
			return true
		}
	case PacketDisconnect:
		conn.shutdown(errors.New("socketio: server disconnected the namespace"))
		return true
	default:
		conn.logger.Debug("ignoring socket.io packet", "type", packet.Type.String())
	}
	return false
}

// deliverFinal queues the disconnect event even when nobody is
// draining the channel, evicting the oldest undelivered events.
func (conn *Conn) deliverFinal(event Event) {
	for {
		select {
		case conn.events <- event:
			return
		default:
		}
		select {
		case <-conn.events:
		default:
		}
	}
}

func (conn *Conn) readFrame() (string, error) {
	messageType, data, err := conn.socket.ReadMessage()
	if err != nil {
		return "", err
	}
	if messageType != websocket.TextMessage {
		return "", fmt.Errorf("socketio: unexpected binary frame")
	}
	return string(data), nil
}

func (conn *Conn) writeFrame(text string) error {
	conn.writeMutex.Lock()
	defer conn.writeMutex.Unlock()
	return conn.socket.WriteMessage(websocket.TextMessage, []byte(text))
}

func reasonJSON(reason error) json.RawMessage {
	text := "unknown"
	if reason != nil {
		text = reason.Error()
	}
	data, _ := json.Marshal(text)
	return data
}
