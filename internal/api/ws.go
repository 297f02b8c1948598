// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/mediaviewer/mediaviewer/internal/logging"
	wshub "github.com/mediaviewer/mediaviewer/internal/websocket"
)

// upgrader is shared across requests; gorilla/websocket's Upgrader is safe
// for concurrent use once configured.
var upgrader = websocket.Upgrader{
	ReadBufferSize:   1024,
	WriteBufferSize:  1024,
	HandshakeTimeout: 10 * time.Second,
}

// checkWebSocketOrigin allows same-origin and CORSOrigin-configured browser
// clients, but does not reject a missing Origin header: unlike a public
// web API, MediaViewer's WebSocket is also opened by non-browser LAN
// clients (companion apps, scripts) that never send one.
func (h *handlers) checkWebSocketOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	if h.deps.CORSOrigin == "" || h.deps.CORSOrigin == "*" {
		return true
	}
	return origin == h.deps.CORSOrigin
}

func (h *handlers) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if h.deps.Hub == nil {
		writeError(w, http.StatusServiceUnavailable, "websocket hub not configured")
		return
	}

	upgrader.CheckOrigin = h.checkWebSocketOrigin
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Warn().Err(err).Msg("api: websocket upgrade failed")
		return
	}

	client := wshub.NewClient(h.deps.Hub, conn, r.UserAgent(), wsClientIP(r))
	h.deps.Hub.Register <- client
	client.Start()
}

func wsClientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.SplitN(fwd, ",", 2)[0])
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		return host[:idx]
	}
	return host
}
