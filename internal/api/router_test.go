// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package api

import (
	"net/http"
	"testing"

	"github.com/mediaviewer/mediaviewer/internal/catalog"
	"github.com/mediaviewer/mediaviewer/internal/syncstate"
	"github.com/mediaviewer/mediaviewer/internal/websocket"
)

// newTestRouter wires a minimal but real Deps (in-memory catalog, a fresh
// sync state store and hub) so handler tests exercise the same composition
// NewRouter assembles in production, without needing ffmpeg or a mounted
// VR adapter.
func newTestRouter(t *testing.T) (http.Handler, Deps) {
	t.Helper()

	store, err := catalog.Open(":memory:", catalog.DefaultOptions())
	if err != nil {
		t.Fatalf("open catalog: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })

	syncState := syncstate.New()
	hub := websocket.NewHub(syncState)

	deps := Deps{
		Catalog:   store,
		SyncState: syncState,
		Hub:       hub,
	}
	return NewRouter(deps), deps
}
