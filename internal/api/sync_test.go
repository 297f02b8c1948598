// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package api

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/mediaviewer/mediaviewer/internal/models"
)

func TestHandleSyncGetReturnsDefaultForUnknownSession(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/sync?sessionId=default", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var st models.SessionState
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if st.SessionID != "default" || !st.Paused {
		t.Fatalf("expected fresh paused default session, got %+v", st)
	}
}

func TestHandleSyncPutUpsertsAndReturnsState(t *testing.T) {
	router, deps := newTestRouter(t)

	mediaID := "abc123"
	body := syncPutBody{
		SessionID: "default",
		ClientID:  "viewer-1",
		MediaID:   &mediaID,
		TimeMs:    1500,
		Paused:    false,
		FPS:       30,
		Frame:     45,
	}
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal body: %v", err)
	}

	req := httptest.NewRequest(http.MethodPut, "/api/sync", bytes.NewReader(raw))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var st models.SessionState
	if err := json.Unmarshal(rec.Body.Bytes(), &st); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if st.MediaID == nil || *st.MediaID != mediaID {
		t.Fatalf("expected mediaId %q, got %+v", mediaID, st.MediaID)
	}
	if st.TimeMs != 1500 || st.FromClientID != "viewer-1" {
		t.Fatalf("unexpected stored state: %+v", st)
	}

	stored := deps.SyncState.GetSession("default")
	if stored.TimeMs != 1500 {
		t.Fatalf("expected store to reflect the update, got %+v", stored)
	}
}

func TestHandleSyncPutRejectsMalformedBody(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodPut, "/api/sync", bytes.NewReader([]byte("not json")))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}
