// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package api

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"

	"github.com/mediaviewer/mediaviewer/internal/models"
)

func seedOneItem(t *testing.T, deps Deps) models.MediaItem {
	t.Helper()
	item := models.MediaItem{
		ID: "vid-1", RelPath: "clip.mp4", Filename: "clip.mp4", Title: "Clip",
		Ext: ".mp4", MediaType: models.MediaTypeVideo, SizeBytes: 100, ModifiedMs: 1000,
	}
	if err := deps.Catalog.Upsert(item); err != nil {
		t.Fatalf("seed upsert: %v", err)
	}
	return item
}

func TestHandleMediaSearchReturnsSeededItem(t *testing.T) {
	router, deps := newTestRouter(t)
	seedOneItem(t, deps)

	req := httptest.NewRequest(http.MethodGet, "/api/media?page=1&pageSize=10", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var result models.SearchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.Total != 1 || len(result.Items) != 1 || result.Items[0].ID != "vid-1" {
		t.Fatalf("unexpected search result: %+v", result)
	}
}

func TestHandleMediaSearchClampsOversizedPageSize(t *testing.T) {
	router, deps := newTestRouter(t)
	seedOneItem(t, deps)

	req := httptest.NewRequest(http.MethodGet, "/api/media?pageSize=99999", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	var result models.SearchResult
	if err := json.Unmarshal(rec.Body.Bytes(), &result); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if result.PageSize != maxPageSize {
		t.Fatalf("expected pageSize clamped to %d, got %d", maxPageSize, result.PageSize)
	}
}

func TestHandleMediaFileInfoReturns404ForUnknownID(t *testing.T) {
	router, _ := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/api/media/does-not-exist/fileinfo", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleMediaFileInfoReturnsSeededItem(t *testing.T) {
	router, deps := newTestRouter(t)
	seedOneItem(t, deps)

	req := httptest.NewRequest(http.MethodGet, "/api/media/vid-1/fileinfo", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var item models.MediaItem
	if err := json.Unmarshal(rec.Body.Bytes(), &item); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if item.ID != "vid-1" {
		t.Fatalf("unexpected item: %+v", item)
	}
}

func TestHandleMediaFunscriptReturns404WhenAbsent(t *testing.T) {
	router, deps := newTestRouter(t)
	seedOneItem(t, deps)

	req := httptest.NewRequest(http.MethodGet, "/api/media/vid-1/funscript", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestHandleMediaThumbRedirectsToPlaceholderWithoutGenerator(t *testing.T) {
	router, deps := newTestRouter(t)
	seedOneItem(t, deps)

	req := httptest.NewRequest(http.MethodGet, "/api/media/vid-1/thumb", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusFound {
		t.Fatalf("expected 302 redirect, got %d", rec.Code)
	}
	if loc := rec.Header().Get("Location"); loc != "/thumb/vid-1.svg" {
		t.Fatalf("unexpected redirect target %q", loc)
	}
}
