// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package websocket

import (
	"strconv"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/goccy/go-json"

	"github.com/mediaviewer/mediaviewer/internal/logging"
	"github.com/mediaviewer/mediaviewer/internal/metrics"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512 * 1024 // 512 KB
)

// clientIDCounter assigns monotonically increasing socket ids so broadcasts
// can sort sockets into a deterministic order instead of relying on map
// iteration.
var clientIDCounter atomic.Uint64

// Client is one live WebSocket connection. clientID is the logical,
// client-chosen identity from sync:hello; it may be empty until the first
// hello arrives, and may be rekeyed by a later hello.
type Client struct {
	id        uint64
	hub       *Hub
	conn      *websocket.Conn
	send      chan []byte
	userAgent string
	ipAddress string

	clientID  string
	sessionID string
}

// NewClient creates a Client for an accepted connection. userAgent and
// ipAddress are captured once at connect time per spec 4.4.
func NewClient(hub *Hub, conn *websocket.Conn, userAgent, ipAddress string) *Client {
	return &Client{
		id:        clientIDCounter.Add(1),
		hub:       hub,
		conn:      conn,
		send:      make(chan []byte, 256),
		userAgent: userAgent,
		ipAddress: ipAddress,
		sessionID: "default",
	}
}

// SocketID satisfies syncstate.Socket.
func (c *Client) SocketID() string { return strconv.FormatUint(c.id, 10) }

// ClientID returns the logical client id set by the most recent sync:hello,
// or "" if none has arrived yet.
func (c *Client) ClientID() string { return c.clientID }

// SessionID returns the session this socket currently tracks for broadcast.
func (c *Client) SessionID() string { return c.sessionID }

func (c *Client) setClientID(id string)  { c.clientID = id }
func (c *Client) setSessionID(id string) { c.sessionID = id }

// Start begins the read and write pumps for the client.
func (c *Client) Start() {
	go c.writePump()
	go c.readPump()
}

// readPump decodes inbound JSON messages and dispatches them to the hub. It
// owns no locks: every mutation goes through the hub or the sync state
// store, each of which is independently safe for concurrent callers.
func (c *Client) readPump() {
	defer func() {
		c.hub.Unregister <- c
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	if err := c.conn.SetReadDeadline(time.Now().Add(pongWait)); err != nil {
		logging.Error().Err(err).Msg("failed to set read deadline")
		return
	}
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logging.Error().Err(err).Msg("unexpected websocket close error")
			}
			return
		}

		var env envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			logging.Warn().Err(err).Msg("discarding malformed websocket message")
			continue
		}

		metrics.RecordWSMessage(env.Type)

		switch env.Type {
		case inTypeHello:
			c.hub.HandleHello(c, env)
		case inTypeClientStatus:
			c.hub.HandleClientStatus(c, env)
		case inTypeSyncUpdate:
			c.hub.HandleSyncUpdate(c, env)
		case inTypePing:
			c.hub.HandlePing(c, env)
		default:
			logging.Warn().Str("type", env.Type).Msg("ignoring unknown websocket message type")
		}
	}
}

// writePump drains c.send to the socket and sends periodic pings. It is the
// only goroutine that ever writes to c.conn.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline")
				return
			}
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				logging.Error().Err(err).Msg("failed to write websocket message")
				return
			}

		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
				logging.Error().Err(err).Msg("failed to set write deadline for ping")
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
