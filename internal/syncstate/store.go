// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

// Package syncstate is the sync state store (C3): the single authoritative,
// in-memory home for per-session playback state, per-client presence, socket
// membership and per-client resume cursors. Every mutation takes one coarse
// lock; nothing here ever performs I/O while holding it.
package syncstate

import (
	"errors"
	"sync"

	"github.com/mediaviewer/mediaviewer/internal/models"
)

// ErrInvalidMediaID is returned when an update supplies an empty (but
// non-nil) mediaId. Empty is rejected; null/omitted is allowed.
var ErrInvalidMediaID = errors.New("syncstate: mediaId must be non-empty or null")

// Socket is the minimal identity a WebSocket connection exposes to the
// store. The hub's *websocket.Client satisfies this; the store never reaches
// back into the websocket package.
type Socket interface {
	SocketID() string
}

type playbackKey struct {
	clientID string
	mediaID  string
}

// NowFunc stamps wall-clock time in Unix milliseconds. A package variable so
// tests can substitute a deterministic clock.
var NowFunc = defaultNow

// Store is the C3 in-memory sync state store. Zero value is not usable; use
// New.
type Store struct {
	mu sync.Mutex

	sessions map[string]*models.SessionState
	presence map[string]*models.ClientPresence
	sockets  map[string]map[string]Socket
	playback map[playbackKey]*models.PerClientPlayback

	lastUpdatedAt map[string]int64
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		sessions:      make(map[string]*models.SessionState),
		presence:      make(map[string]*models.ClientPresence),
		sockets:       make(map[string]map[string]Socket),
		playback:      make(map[playbackKey]*models.PerClientPlayback),
		lastUpdatedAt: make(map[string]int64),
	}
}

// GetSession returns the stored state for session, or a fresh default
// (paused, timeMs 0, mediaId null) if none exists yet.
func (s *Store) GetSession(session string) models.SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getSessionLocked(session)
}

func (s *Store) getSessionLocked(session string) models.SessionState {
	if st, ok := s.sessions[session]; ok {
		return *st
	}
	return models.SessionState{
		SessionID: session,
		Paused:    true,
		FPS:       30,
	}
}

// UpsertSession validates and clamps update, assigns a monotonic UpdatedAt,
// stores it, and returns the stored state. clearPlayAt semantics (spec 4.3)
// are applied here: playAt/playAtLocalMs are dropped whenever paused is true,
// or whenever paused is false but the caller omitted playAt.
func (s *Store) UpsertSession(u models.SessionUpdate) (models.SessionState, error) {
	if u.MediaID != nil && *u.MediaID == "" {
		return models.SessionState{}, ErrInvalidMediaID
	}
	if u.SessionID == "" {
		u.SessionID = "default"
	}

	timeMs := u.TimeMs
	if timeMs < 0 {
		timeMs = 0
	}
	fps := u.FPS
	if fps < 1 {
		fps = 30
	}
	frame := u.Frame
	if frame < 0 {
		frame = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := NowFunc()
	if last, ok := s.lastUpdatedAt[u.SessionID]; ok && now <= last {
		now = last + 1
	}
	s.lastUpdatedAt[u.SessionID] = now

	st := &models.SessionState{
		SessionID:    u.SessionID,
		MediaID:      u.MediaID,
		TimeMs:       timeMs,
		Paused:       u.Paused,
		FPS:          fps,
		Frame:        frame,
		FromClientID: u.FromClientID,
		UpdatedAt:    now,
	}

	if u.Paused {
		// clearPlayAt: paused sessions never carry a coordinated-start time.
	} else if u.PlayAt != nil {
		st.PlayAt = u.PlayAt
		st.PlayAtLocalMs = u.PlayAtLocalMs
		st.CapturedAtLocalMs = u.CapturedAtLocalMs
	}
	// else: playing but playAt omitted -> also cleared (left nil above).

	s.sessions[u.SessionID] = st
	return *st, nil
}

// ClearPlayAt drops the coordinated-start ephemerals for session, leaving
// everything else untouched. Exposed for callers (e.g. C6) that need to
// force a clear without a full upsert.
func (s *Store) ClearPlayAt(session string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if st, ok := s.sessions[session]; ok {
		st.PlayAt = nil
		st.PlayAtLocalMs = nil
		st.CapturedAtLocalMs = nil
	}
}

// UpsertPresence records or refreshes a client's presence metadata and
// returns the stored value.
func (s *Store) UpsertPresence(clientID string, meta models.ClientPresence) models.ClientPresence {
	s.mu.Lock()
	defer s.mu.Unlock()
	meta.ClientID = clientID
	existing, ok := s.presence[clientID]
	if ok {
		// Preserve UI status fields set by a prior client:status unless the
		// caller supplies fresh ones (sync:hello never carries UI fields).
		if meta.UIView == nil {
			meta.UIView = existing.UIView
		}
		if meta.UIMediaID == nil {
			meta.UIMediaID = existing.UIMediaID
		}
	}
	stored := meta
	s.presence[clientID] = &stored
	return stored
}

// UpdatePresenceUI applies a client:status update. uiMediaIDSet distinguishes
// an explicit null (clear) from "field omitted" (leave untouched); when true
// and uiMediaID is nil, the stored value is cleared.
func (s *Store) UpdatePresenceUI(clientID string, uiView *string, uiMediaID *string, uiMediaIDSet bool) (models.ClientPresence, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.presence[clientID]
	if !ok {
		return models.ClientPresence{}, false
	}
	if uiView != nil {
		p.UIView = uiView
	}
	if uiMediaIDSet {
		p.UIMediaID = uiMediaID
	}
	return *p, true
}

// DropPresence removes a client's presence record entirely. Call only after
// its last socket has detached.
func (s *Store) DropPresence(clientID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.presence, clientID)
}

// ListPresence returns a snapshot of every connected client's presence, in
// no particular order; callers that broadcast should sort for determinism.
func (s *Store) ListPresence() []models.ClientPresence {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]models.ClientPresence, 0, len(s.presence))
	for _, p := range s.presence {
		out = append(out, *p)
	}
	return out
}

// AttachSocket adds sock to clientID's socket set. Returns true if this is
// the first socket for clientID (a fresh connection, not a reconnect).
func (s *Store) AttachSocket(clientID string, sock Socket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sockets[clientID]
	if !ok {
		set = make(map[string]Socket)
		s.sockets[clientID] = set
	}
	first := len(set) == 0
	set[sock.SocketID()] = sock
	return first
}

// DetachSocket removes sock from clientID's socket set. Returns true if that
// was the last socket for clientID, meaning the caller should drop presence.
func (s *Store) DetachSocket(clientID string, sock Socket) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sockets[clientID]
	if !ok {
		return true
	}
	delete(set, sock.SocketID())
	if len(set) == 0 {
		delete(s.sockets, clientID)
		return true
	}
	return false
}

// Sockets returns a snapshot of clientID's current sockets. Called while
// holding no external lock; safe to use for fan-out after release.
func (s *Store) Sockets(clientID string) []Socket {
	s.mu.Lock()
	defer s.mu.Unlock()
	set, ok := s.sockets[clientID]
	if !ok {
		return nil
	}
	out := make([]Socket, 0, len(set))
	for _, sock := range set {
		out = append(out, sock)
	}
	return out
}

// GetPlayback returns the stored resume cursor for (clientID, mediaID).
func (s *Store) GetPlayback(clientID, mediaID string) (models.PerClientPlayback, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.playback[playbackKey{clientID, mediaID}]
	if !ok {
		return models.PerClientPlayback{}, false
	}
	return *p, true
}

// UpsertPlayback stores a per-viewer resume cursor.
func (s *Store) UpsertPlayback(p models.PerClientPlayback) models.PerClientPlayback {
	s.mu.Lock()
	defer s.mu.Unlock()
	p.UpdatedAt = NowFunc()
	stored := p
	s.playback[playbackKey{p.ClientID, p.MediaID}] = &stored
	return stored
}
