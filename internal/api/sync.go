// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package api

import (
	"net/http"

	"github.com/mediaviewer/mediaviewer/internal/models"
)

func sessionIDFromQuery(r *http.Request) string {
	id := r.URL.Query().Get("sessionId")
	if id == "" {
		return "default"
	}
	return id
}

func (h *handlers) handleSyncGet(w http.ResponseWriter, r *http.Request) {
	if h.deps.SyncState == nil {
		writeError(w, http.StatusServiceUnavailable, "sync state not configured")
		return
	}
	writeJSON(w, http.StatusOK, h.deps.SyncState.GetSession(sessionIDFromQuery(r)))
}

// syncPutBody mirrors models.SessionUpdate with JSON tags; kept separate
// from the model so this endpoint can evolve its wire shape independently
// of the WebSocket sync:update envelope.
type syncPutBody struct {
	SessionID string  `json:"sessionId"`
	ClientID  string  `json:"clientId"`
	MediaID   *string `json:"mediaId"`
	TimeMs    int64   `json:"timeMs"`
	Paused    bool    `json:"paused"`
	FPS       int     `json:"fps"`
	Frame     int64   `json:"frame"`

	PlayAt            *string `json:"playAt,omitempty"`
	PlayAtLocalMs     *int64  `json:"playAtLocalMs,omitempty"`
	CapturedAtLocalMs *int64  `json:"capturedAtLocalMs,omitempty"`
}

// handleSyncPut applies a playback mutation originating from an HTTP client
// (rather than the WebSocket) and broadcasts it to every connected socket in
// that session, exactly as a WebSocket-originated sync:update would.
func (h *handlers) handleSyncPut(w http.ResponseWriter, r *http.Request) {
	if h.deps.Hub == nil {
		writeError(w, http.StatusServiceUnavailable, "websocket hub not configured")
		return
	}

	var body syncPutBody
	if err := decodeJSONBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}

	fromClientID := body.ClientID
	if fromClientID == "" {
		fromClientID = "http"
	}

	st, err := h.deps.Hub.PublishSessionUpdate(models.SessionUpdate{
		SessionID:         body.SessionID,
		MediaID:           body.MediaID,
		TimeMs:            body.TimeMs,
		Paused:            body.Paused,
		FPS:               body.FPS,
		Frame:             body.Frame,
		FromClientID:      fromClientID,
		PlayAt:            body.PlayAt,
		PlayAtLocalMs:     body.PlayAtLocalMs,
		CapturedAtLocalMs: body.CapturedAtLocalMs,
	})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, st)
}
