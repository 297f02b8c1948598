// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package api

import (
	"net/http"

	"github.com/mediaviewer/mediaviewer/internal/models"
)

// handlePlaybackGet returns a viewer's opaque resume cursor for one piece of
// media, identified by clientId+mediaId query params.
func (h *handlers) handlePlaybackGet(w http.ResponseWriter, r *http.Request) {
	if h.deps.SyncState == nil {
		writeError(w, http.StatusServiceUnavailable, "sync state not configured")
		return
	}

	clientID := r.URL.Query().Get("clientId")
	mediaID := r.URL.Query().Get("mediaId")
	if clientID == "" || mediaID == "" {
		writeError(w, http.StatusBadRequest, "clientId and mediaId are required")
		return
	}

	p, ok := h.deps.SyncState.GetPlayback(clientID, mediaID)
	if !ok {
		writeError(w, http.StatusNotFound, "no playback cursor for this client and media")
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (h *handlers) handlePlaybackPut(w http.ResponseWriter, r *http.Request) {
	if h.deps.SyncState == nil {
		writeError(w, http.StatusServiceUnavailable, "sync state not configured")
		return
	}

	var body models.PerClientPlayback
	if err := decodeJSONBody(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "malformed request body")
		return
	}
	if body.ClientID == "" || body.MediaID == "" {
		writeError(w, http.StatusBadRequest, "clientId and mediaId are required")
		return
	}

	writeJSON(w, http.StatusOK, h.deps.SyncState.UpsertPlayback(body))
}
