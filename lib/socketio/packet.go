// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package socketio

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Engine.IO v4 packet types, the first byte of every websocket frame.
const (
	engineOpen    byte = '0'
	engineClose   byte = '1'
	enginePing    byte = '2'
	enginePong    byte = '3'
	engineMessage byte = '4'
	engineUpgrade byte = '5'
	engineNoop    byte = '6'
)

// PacketType is a Socket.IO v5 packet type.
type PacketType int

const (
	PacketConnect      PacketType = 0
	PacketDisconnect   PacketType = 1
	PacketEvent        PacketType = 2
	PacketAck          PacketType = 3
	PacketConnectError PacketType = 4
	PacketBinaryEvent  PacketType = 5
	PacketBinaryAck    PacketType = 6
)

func (packetType PacketType) String() string {
	switch packetType {
	case PacketConnect:
		return "CONNECT"
	case PacketDisconnect:
		return "DISCONNECT"
	case PacketEvent:
		return "EVENT"
	case PacketAck:
		return "ACK"
	case PacketConnectError:
		return "CONNECT_ERROR"
	case PacketBinaryEvent:
		return "BINARY_EVENT"
	case PacketBinaryAck:
		return "BINARY_ACK"
	default:
		return fmt.Sprintf("PacketType(%d)", int(packetType))
	}
}

// Packet is one Socket.IO packet. Namespace is "/" for the main
// namespace. ID is -1 when the packet carries no acknowledgement id.
type Packet struct {
	Type      PacketType
	Namespace string
	ID        int
	Data      json.RawMessage
}

// EncodePacket renders p in the Socket.IO text format, without the
// Engine.IO message prefix.
func EncodePacket(p Packet) string {
	var builder strings.Builder
	builder.WriteString(strconv.Itoa(int(p.Type)))
	if p.Namespace != "" && p.Namespace != "/" {
		builder.WriteString(p.Namespace)
		builder.WriteByte(',')
	}
	if p.ID >= 0 {
		builder.WriteString(strconv.Itoa(p.ID))
	}
	builder.Write(p.Data)
	return builder.String()
}

// DecodePacket parses a Socket.IO text packet. Binary packet types are
// rejected: the queue namespace never sends attachments.
func DecodePacket(text string) (Packet, error) {
	if text == "" {
		return Packet{}, fmt.Errorf("socketio: empty packet")
	}
	if text[0] < '0' || text[0] > '6' {
		return Packet{}, fmt.Errorf("socketio: invalid packet type %q", text[0])
	}
	packet := Packet{
		Type:      PacketType(text[0] - '0'),
		Namespace: "/",
		ID:        -1,
	}
	if packet.Type == PacketBinaryEvent || packet.Type == PacketBinaryAck {
		return Packet{}, fmt.Errorf("socketio: %s packets are not supported", packet.Type)
	}
	rest := text[1:]

	if strings.HasPrefix(rest, "/") {
		end := strings.IndexByte(rest, ',')
		if end < 0 {
			// A namespace with no payload may omit the trailing comma.
			packet.Namespace = rest
			return packet, nil
		}
		packet.Namespace = rest[:end]
		rest = rest[end+1:]
	}

	digits := 0
	for digits < len(rest) && rest[digits] >= '0' && rest[digits] <= '9' {
		digits++
	}
	if digits > 0 {
		id, err := strconv.Atoi(rest[:digits])
		if err != nil {
			return Packet{}, fmt.Errorf("socketio: invalid ack id %q: %w", rest[:digits], err)
		}
		packet.ID = id
		rest = rest[digits:]
	}

	if rest != "" {
		if !json.Valid([]byte(rest)) {
			return Packet{}, fmt.Errorf("socketio: %s payload is not valid JSON", packet.Type)
		}
		packet.Data = json.RawMessage(rest)
	}
	return packet, nil
}

// Event is a named server event. Args holds the raw JSON arguments
// that followed the event name.
type Event struct {
	Name string
	Args []json.RawMessage
}

// Synthetic events delivered by [Conn.Events] around a session.
const (
	EventConnect    = "connect"
	EventDisconnect = "disconnect"
)

// DecodeEvent splits an EVENT payload ["name", arg...] into an Event.
func DecodeEvent(data json.RawMessage) (Event, error) {
	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return Event{}, fmt.Errorf("socketio: event payload is not an array: %w", err)
	}
	if len(parts) == 0 {
		return Event{}, fmt.Errorf("socketio: event payload is empty")
	}
	var name string
	if err := json.Unmarshal(parts[0], &name); err != nil {
		return Event{}, fmt.Errorf("socketio: event name is not a string: %w", err)
	}
	return Event{Name: name, Args: parts[1:]}, nil
}

// openPayload is the JSON body of the Engine.IO open packet.
type openPayload struct {
	SessionID    string   `json:"sid"`
	Upgrades     []string `json:"upgrades"`
	PingInterval int      `json:"pingInterval"`
	PingTimeout  int      `json:"pingTimeout"`
	MaxPayload   int      `json:"maxPayload"`
}

// connectErrorPayload is the JSON body of a CONNECT_ERROR packet.
type connectErrorPayload struct {
	Message string `json:"message"`
}
