// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package socketiotest runs an in-process Socket.IO server for tests.
// It speaks the websocket transport only, which is all the client in
// lib/socketio uses.
package socketiotest

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// Options configures a Server.
type Options struct {
	// Namespace accepted by the server. Defaults to "/".
	Namespace string

	// PingInterval and PingTimeout are advertised in the open packet.
	// Defaults are 25s and 20s. The server never pings on its own;
	// tests call Ping.
	PingInterval time.Duration
	PingTimeout  time.Duration

	// RefuseMessage, when set, answers namespace requests with
	// CONNECT_ERROR carrying this message.
	RefuseMessage string

	// Mux receives every non-Socket.IO request, so a single server can
	// also answer REST calls.
	Mux *http.ServeMux
}

// Server is a Socket.IO test server bound to a loopback listener.
type Server struct {
	*httptest.Server

	options  Options
	upgrader websocket.Upgrader

	mutex    sync.Mutex
	sessions []*session
	joined   chan struct{}
	pongs    chan struct{}
	received chan string
}

type session struct {
	socket *websocket.Conn
	write  sync.Mutex
	joined bool
}

// NewServer starts a Server. Close it with Close.
func NewServer(options Options) *Server {
	if options.Namespace == "" {
		options.Namespace = "/"
	}
	if options.PingInterval == 0 {
		options.PingInterval = 25 * time.Second
	}
	if options.PingTimeout == 0 {
		options.PingTimeout = 20 * time.Second
	}
	server := &Server{
		options:  options,
		joined:   make(chan struct{}, 16),
		pongs:    make(chan struct{}, 16),
		received: make(chan string, 64),
	}
	server.Server = httptest.NewServer(http.HandlerFunc(server.serveHTTP))
	return server
}

// Joined receives once per client that completes the namespace
// handshake.
func (server *Server) Joined() <-chan struct{} { return server.joined }

// Pongs receives once per pong the client sends.
func (server *Server) Pongs() <-chan struct{} { return server.pongs }

// Received carries every other Socket.IO packet the client sends,
// without the Engine.IO prefix.
func (server *Server) Received() <-chan string { return server.received }

// Emit sends an event to every joined client.
func (server *Server) Emit(name string, args ...any) error {
	parts := make([]any, 0, len(args)+1)
	parts = append(parts, name)
	parts = append(parts, args...)
	payload, err := json.Marshal(parts)
	if err != nil {
		return err
	}
	return server.broadcast("42" + server.namespacePrefix() + string(payload))
}

// Ping sends an Engine.IO ping to every client.
func (server *Server) Ping() error {
	return server.broadcastAll("2")
}

// Raw sends text as-is to every client.
func (server *Server) Raw(text string) error {
	return server.broadcastAll(text)
}

// Kick sends a namespace DISCONNECT to every joined client.
func (server *Server) Kick() error {
	return server.broadcast("41" + server.namespacePrefix())
}

// DropConnections closes every websocket without a close frame.
func (server *Server) DropConnections() {
	server.mutex.Lock()
	sessions := server.sessions
	server.sessions = nil
	server.mutex.Unlock()
	for _, current := range sessions {
		current.socket.Close()
	}
}

// Close drops connections and stops the listener.
func (server *Server) Close() {
	server.DropConnections()
	server.Server.Close()
}

func (server *Server) namespacePrefix() string {
	if server.options.Namespace == "/" {
		return ""
	}
	return server.options.Namespace + ","
}

func (server *Server) broadcast(text string) error {
	return server.send(text, true)
}

func (server *Server) broadcastAll(text string) error {
	return server.send(text, false)
}

func (server *Server) send(text string, joinedOnly bool) error {
	server.mutex.Lock()
	sessions := append([]*session(nil), server.sessions...)
	server.mutex.Unlock()

	var sent int
	for _, current := range sessions {
		server.mutex.Lock()
		joined := current.joined
		server.mutex.Unlock()
		if joinedOnly && !joined {
			continue
		}
		current.write.Lock()
		err := current.socket.WriteMessage(websocket.TextMessage, []byte(text))
		current.write.Unlock()
		if err != nil {
			return err
		}
		sent++
	}
	if sent == 0 {
		return fmt.Errorf("socketiotest: no connected clients")
	}
	return nil
}

func (server *Server) serveHTTP(writer http.ResponseWriter, request *http.Request) {
	if !strings.HasPrefix(request.URL.Path, "/socket.io") {
		if server.options.Mux != nil {
			server.options.Mux.ServeHTTP(writer, request)
			return
		}
		http.NotFound(writer, request)
		return
	}
	if request.URL.Query().Get("EIO") != "4" || request.URL.Query().Get("transport") != "websocket" {
		http.Error(writer, "unsupported transport", http.StatusBadRequest)
		return
	}
	socket, err := server.upgrader.Upgrade(writer, request, nil)
	if err != nil {
		return
	}

	current := &session{socket: socket}
	server.mutex.Lock()
	server.sessions = append(server.sessions, current)
	server.mutex.Unlock()

	open, _ := json.Marshal(map[string]any{
		"sid":          fmt.Sprintf("sid-%d", time.Now().UnixNano()),
		"upgrades":     []string{},
		"pingInterval": server.options.PingInterval.Milliseconds(),
		"pingTimeout":  server.options.PingTimeout.Milliseconds(),
		"maxPayload":   1000000,
	})
	current.write.Lock()
	err = socket.WriteMessage(websocket.TextMessage, append([]byte("0"), open...))
	current.write.Unlock()
	if err != nil {
		socket.Close()
		return
	}

	go server.readLoop(current)
}

func (server *Server) readLoop(current *session) {
	defer current.socket.Close()
	connectRequest := "40" + server.namespacePrefix()
	for {
		_, data, err := current.socket.ReadMessage()
		if err != nil {
			return
		}
		text := string(data)
		switch {
		case text == "3":
			select {
			case server.pongs <- struct{}{}:
			default:
			}
		case text == connectRequest || text == strings.TrimSuffix(connectRequest, ","):
			if server.options.RefuseMessage != "" {
				reply, _ := json.Marshal(map[string]string{"message": server.options.RefuseMessage})
				current.write.Lock()
				current.socket.WriteMessage(websocket.TextMessage,
					[]byte("44"+server.namespacePrefix()+string(reply)))
				current.write.Unlock()
				continue
			}
			server.mutex.Lock()
			current.joined = true
			server.mutex.Unlock()
			current.write.Lock()
			current.socket.WriteMessage(websocket.TextMessage,
				[]byte("40"+server.namespacePrefix()+`{"sid":"namespace-sid"}`))
			current.write.Unlock()
			select {
			case server.joined <- struct{}{}:
			default:
			}
		case strings.HasPrefix(text, "4"):
			select {
			case server.received <- text[1:]:
			default:
			}
		}
	}
}
