// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package websocket

import (
	"context"
	"sort"
	"sync"

	"github.com/goccy/go-json"

	"github.com/mediaviewer/mediaviewer/internal/logging"
	"github.com/mediaviewer/mediaviewer/internal/metrics"
	"github.com/mediaviewer/mediaviewer/internal/models"
	"github.com/mediaviewer/mediaviewer/internal/syncstate"
)

// ShutdownReason identifies why the hub is shutting down.
type ShutdownReason string

const (
	ShutdownReasonContextCanceled ShutdownReason = "context_canceled"
	ShutdownReasonContextDeadline ShutdownReason = "context_deadline"
)

// Hub is the WebSocket hub (C4): it serves a single endpoint, tracks every
// connected socket, and turns C3 mutations into broadcasts. All session
// state mutation happens in the Store; the Hub only owns socket membership
// and fan-out.
type Hub struct {
	store *syncstate.Store

	mu            sync.RWMutex
	clients       map[*Client]struct{}
	sessionSockets map[string]map[*Client]struct{}

	Register   chan *Client
	Unregister chan *Client
}

// NewHub creates a Hub backed by store.
func NewHub(store *syncstate.Store) *Hub {
	return &Hub{
		store:          store,
		clients:        make(map[*Client]struct{}),
		sessionSockets: make(map[string]map[*Client]struct{}),
		Register:       make(chan *Client),
		Unregister:     make(chan *Client),
	}
}

// RunWithContext processes client lifecycle events until ctx is canceled,
// then closes every connected socket and returns ctx.Err(). Designed to run
// as a suture service.
func (h *Hub) RunWithContext(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			h.logGracefulShutdown(ctx)
			return ctx.Err()
		case client := <-h.Register:
			h.registerClient(client)
		case client := <-h.Unregister:
			h.unregisterClient(client)
		}
	}
}

func (h *Hub) registerClient(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.addToSessionLocked(c, c.SessionID())
	h.mu.Unlock()
	metrics.TrackWSConnection(true)
	logging.Info().Int("total_clients", h.GetClientCount()).Msg("websocket client connected")

	// A fresh socket has not yet sent sync:hello; c.clientID is empty, so
	// this greets it without touching presence or C3.
	h.sendHello(c)
}

func (h *Hub) unregisterClient(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; ok {
		delete(h.clients, c)
		h.removeFromSessionLocked(c, c.SessionID())
		close(c.send)
	}
	h.mu.Unlock()
	metrics.TrackWSConnection(false)

	if clientID := c.ClientID(); clientID != "" {
		if last := h.store.DetachSocket(clientID, c); last {
			h.store.DropPresence(clientID)
			h.broadcastSession(c.SessionID())
		}
	}
	logging.Info().Int("total_clients", h.GetClientCount()).Msg("websocket client disconnected")
}

func (h *Hub) addToSessionLocked(c *Client, session string) {
	set, ok := h.sessionSockets[session]
	if !ok {
		set = make(map[*Client]struct{})
		h.sessionSockets[session] = set
	}
	set[c] = struct{}{}
}

func (h *Hub) removeFromSessionLocked(c *Client, session string) {
	if set, ok := h.sessionSockets[session]; ok {
		delete(set, c)
		if len(set) == 0 {
			delete(h.sessionSockets, session)
		}
	}
}

// HandleHello processes a sync:hello: registers presence, rekeys the socket
// if clientId changed, and triggers a state broadcast so the new client (and
// any peers) see current state immediately.
func (h *Hub) HandleHello(c *Client, env envelope) {
	session := env.SessionID
	if session == "" {
		session = "default"
	}
	prevClientID := c.ClientID()
	prevSession := c.SessionID()

	if prevClientID != "" && prevClientID != env.ClientID {
		if last := h.store.DetachSocket(prevClientID, c); last {
			h.store.DropPresence(prevClientID)
		}
	}

	c.setClientID(env.ClientID)
	c.setSessionID(session)

	if prevSession != session {
		h.mu.Lock()
		h.removeFromSessionLocked(c, prevSession)
		h.addToSessionLocked(c, session)
		h.mu.Unlock()
	}

	h.store.AttachSocket(env.ClientID, c)
	h.store.UpsertPresence(env.ClientID, models.ClientPresence{
		UserAgent: c.userAgent,
		IPAddress: c.ipAddress,
	})

	h.broadcastSession(session)
}

// HandleClientStatus processes a client:status update and broadcasts the
// refreshed presence list.
func (h *Hub) HandleClientStatus(c *Client, env envelope) {
	if c.ClientID() == "" {
		return
	}
	uiMediaID, uiMediaIDSet, err := nullableString(env.UIMediaID)
	if err != nil {
		logging.Warn().Err(err).Msg("discarding malformed client:status uiMediaId")
		return
	}
	h.store.UpdatePresenceUI(c.ClientID(), env.UIView, uiMediaID, uiMediaIDSet)
	h.broadcastSession(c.SessionID())
}

// HandleSyncUpdate processes a sync:update: either a targeted unicast that
// bypasses C3 entirely, or a commit-then-broadcast against the named
// session.
func (h *Hub) HandleSyncUpdate(c *Client, env envelope) {
	mediaID, _, err := nullableString(env.MediaID)
	if err != nil {
		logging.Warn().Err(err).Msg("discarding malformed sync:update mediaId")
		return
	}

	if env.ToClientID != "" {
		h.unicast(env, mediaID)
		return
	}

	session := env.SessionID
	if session == "" {
		session = "default"
	}
	fromClientID := env.ClientID
	if fromClientID == "" {
		fromClientID = c.ClientID()
	}

	st, err := h.store.UpsertSession(models.SessionUpdate{
		SessionID:         session,
		MediaID:           mediaID,
		TimeMs:            env.TimeMs,
		Paused:            env.Paused,
		FPS:               env.FPS,
		Frame:             env.Frame,
		FromClientID:      fromClientID,
		PlayAt:            env.PlayAt,
		PlayAtLocalMs:     env.PlayAtLocalMs,
		CapturedAtLocalMs: env.CapturedAtLocalMs,
	})
	if err != nil {
		logging.Warn().Err(err).Str("session_id", session).Msg("rejected sync:update")
		return
	}
	h.broadcastSession(st.SessionID)
}

// PublishSessionUpdate upserts a session mutation originating outside the
// WebSocket read pump (C6's heartbeat inferrer, C7's VR adapters) and
// broadcasts the result to every socket in that session, exactly as
// HandleSyncUpdate does for client-originated updates.
func (h *Hub) PublishSessionUpdate(u models.SessionUpdate) (models.SessionState, error) {
	if u.SessionID == "" {
		u.SessionID = "default"
	}
	st, err := h.store.UpsertSession(u)
	if err != nil {
		return models.SessionState{}, err
	}
	h.broadcastSession(st.SessionID)
	return st, nil
}

func (h *Hub) unicast(env envelope, mediaID *string) {
	msg := unicastOut{
		Type:               outTypeSyncState,
		FromClientID:        env.ClientID,
		MediaID:             mediaID,
		TimeMs:              env.TimeMs,
		Paused:              env.Paused,
		FPS:                 env.FPS,
		Frame:               env.Frame,
		OpenInUI:            env.OpenInUI,
		SeekToken:           env.SeekToken,
		SeekPhase:           env.SeekPhase,
		SeekWantPlay:        env.SeekWantPlay,
		SeekTargetClientID:  env.SeekTargetClientID,
	}
	if !env.Paused && env.PlayAt != nil {
		msg.PlayAt = env.PlayAt
		msg.PlayAtLocalMs = env.PlayAtLocalMs
		msg.CapturedAtLocalMs = env.CapturedAtLocalMs
	}

	b, err := json.Marshal(msg)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal unicast message")
		return
	}
	for _, sock := range h.store.Sockets(env.ToClientID) {
		target, ok := sock.(*Client)
		if !ok {
			continue
		}
		select {
		case target.send <- b:
		default:
			metrics.RecordWSBroadcastDropped("unicast")
			logging.Warn().Str("client_id", env.ToClientID).Msg("unicast dropped: send buffer full")
		}
	}
}

// HandlePing replies to a ws:ping with a ws:pong carrying the echoed nonce
// and the server's receive time, for RTT/clock-skew estimation.
func (h *Hub) HandlePing(c *Client, env envelope) {
	pong := pongOut{
		Type:             outTypePong,
		Nonce:            env.Nonce,
		ClientSentAt:     env.ClientSentAt,
		ServerReceivedAt: models.NowMs(),
	}
	b, err := json.Marshal(pong)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal pong")
		return
	}
	select {
	case c.send <- b:
	default:
		metrics.RecordWSBroadcastDropped("pong")
		logging.Warn().Msg("pong dropped: send buffer full")
	}
}

func (h *Hub) sendHello(c *Client) {
	msg := helloOut{Type: outTypeHello, ServerTime: models.NowMs()}
	b, err := json.Marshal(msg)
	if err != nil {
		logging.Error().Err(err).Msg("failed to marshal hello")
		return
	}
	select {
	case c.send <- b:
	default:
	}
}

// broadcastSession snapshots session's state and the global presence list
// inside the lock, releases it, then fans out concurrently-safe non-blocking
// writes to every socket currently tracking session.
func (h *Hub) broadcastSession(session string) {
	state := h.store.GetSession(session)
	presences := h.store.ListPresence()
	sort.Slice(presences, func(i, j int) bool { return presences[i].ClientID < presences[j].ClientID })

	msg := syncStateOut{Type: outTypeSyncState, State: state, Clients: presences}
	b, err := json.Marshal(msg)
	if err != nil {
		logging.Error().Err(err).Str("session_id", session).Msg("failed to marshal sync:state")
		return
	}

	h.mu.Lock()
	set := h.sessionSockets[session]
	targets := make([]*Client, 0, len(set))
	for c := range set {
		targets = append(targets, c)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].id < targets[j].id })
	h.mu.Unlock()

	for _, c := range targets {
		select {
		case c.send <- b:
		default:
			metrics.RecordWSBroadcastDropped("broadcast")
			logging.Warn().Uint64("client_id", c.id).Msg("broadcast dropped: send buffer full")
		}
	}
}

func (h *Hub) logGracefulShutdown(ctx context.Context) {
	count := h.GetClientCount()
	h.closeAllClients()
	logging.Info().
		Str("component", "websocket-hub").
		Str("reason", string(shutdownReason(ctx))).
		Int("clients_closed", count).
		Msg("websocket hub stopped")
}

func shutdownReason(ctx context.Context) ShutdownReason {
	switch ctx.Err() {
	case context.DeadlineExceeded:
		return ShutdownReasonContextDeadline
	default:
		return ShutdownReasonContextCanceled
	}
}

// closeAllClients closes every connected socket in deterministic id order.
func (h *Hub) closeAllClients() {
	h.mu.Lock()
	defer h.mu.Unlock()

	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	sort.Slice(clients, func(i, j int) bool { return clients[i].id < clients[j].id })

	for _, c := range clients {
		close(c.send)
		delete(h.clients, c)
		h.removeFromSessionLocked(c, c.SessionID())
	}
}

// GetClientCount returns the number of connected sockets.
func (h *Hub) GetClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}
