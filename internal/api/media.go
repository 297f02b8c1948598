// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package api

import (
	"net/http"
	"path/filepath"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mediaviewer/mediaviewer/internal/logging"
	"github.com/mediaviewer/mediaviewer/internal/models"
	"github.com/mediaviewer/mediaviewer/internal/scanner"
)

const (
	defaultPageSize = 24
	maxPageSize     = 100
)

func queryInt(r *http.Request, key string, fallback int) int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func queryBoolPtr(r *http.Request, key string) *bool {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	v := raw == "true" || raw == "1"
	return &v
}

func queryInt64Ptr(r *http.Request, key string) *int64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func queryIntPtr(r *http.Request, key string) *int {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return nil
	}
	return &v
}

func queryFloatPtr(r *http.Request, key string) *float64 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil
	}
	return &v
}

// handleMediaSearch services spec §4.8's paginated, filtered, sorted
// library listing.
func (h *handlers) handleMediaSearch(w http.ResponseWriter, r *http.Request) {
	if h.deps.Catalog == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog not configured")
		return
	}

	q := r.URL.Query()

	page := queryInt(r, "page", 1)
	if page < 1 {
		page = 1
	}
	pageSize := queryInt(r, "pageSize", defaultPageSize)
	if pageSize < 1 {
		pageSize = defaultPageSize
	}
	if pageSize > maxPageSize {
		pageSize = maxPageSize
	}

	filter := models.MediaFilter{
		Query:         q.Get("q"),
		HasFunscript:  queryBoolPtr(r, "hasFunscript"),
		IsVR:          queryBoolPtr(r, "isVr"),
		DurationMsMin: queryInt64Ptr(r, "durationMsMin"),
		DurationMsMax: queryInt64Ptr(r, "durationMsMax"),
		AvgSpeedMin:   queryFloatPtr(r, "avgSpeedMin"),
		AvgSpeedMax:   queryFloatPtr(r, "avgSpeedMax"),
		WidthMin:      queryIntPtr(r, "widthMin"),
		WidthMax:      queryIntPtr(r, "widthMax"),
		HeightMin:     queryIntPtr(r, "heightMin"),
		HeightMax:     queryIntPtr(r, "heightMax"),
	}
	if mt := q.Get("mediaType"); mt != "" {
		v := models.MediaType(mt)
		filter.MediaType = &v
	}

	sort := models.SortField(q.Get("sort"))
	if sort == "" {
		sort = models.SortModified
	}
	direction := models.SortDirection(q.Get("direction"))
	if direction == "" {
		direction = models.SortDesc
	}

	result, err := h.deps.Catalog.Search(models.SearchQuery{
		Filter:    filter,
		Sort:      sort,
		Direction: direction,
		Page:      page,
		PageSize:  pageSize,
	})
	if err != nil {
		logging.Error().Err(err).Msg("api: media search failed")
		writeError(w, http.StatusInternalServerError, "search failed")
		return
	}

	writeJSON(w, http.StatusOK, result)
}

func (h *handlers) handleMediaStream(w http.ResponseWriter, r *http.Request) {
	if h.deps.Streaming == nil {
		writeError(w, http.StatusServiceUnavailable, "streaming engine not configured")
		return
	}
	h.deps.Streaming.ServeStream(w, r, chi.URLParam(r, "id"))
}

func (h *handlers) handleMediaThumb(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	if h.deps.Catalog == nil || h.deps.Thumbnails == nil {
		http.Redirect(w, r, "/thumb/"+id+".svg", http.StatusFound)
		return
	}

	item, ok, err := h.deps.Catalog.Get(id)
	if err != nil || !ok {
		http.Redirect(w, r, "/thumb/"+id+".svg?err=1", http.StatusFound)
		return
	}

	absPath := filepath.Join(h.deps.MediaRoot, filepath.FromSlash(item.RelPath))
	path, err := h.deps.Thumbnails.Ensure(r.Context(), absPath, item)
	if err != nil {
		http.Redirect(w, r, "/thumb/"+id+".svg?err=1", http.StatusFound)
		return
	}

	w.Header().Set("Cache-Control", "private, max-age=3600")
	http.ServeFile(w, r, path)
}

func (h *handlers) handleMediaFunscript(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.deps.Catalog == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog not configured")
		return
	}

	item, ok, err := h.deps.Catalog.Get(id)
	if err != nil || !ok || !item.HasFunscript {
		writeError(w, http.StatusNotFound, "no funscript for this media")
		return
	}

	absPath := filepath.Join(h.deps.MediaRoot, filepath.FromSlash(item.RelPath))
	fs, _, _, ok := scanner.LoadFunscript(absPath, item.Ext)
	if !ok {
		writeError(w, http.StatusNotFound, "funscript sidecar missing or unreadable")
		return
	}

	writeJSON(w, http.StatusOK, fs)
}

func (h *handlers) handleMediaFileInfo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.deps.Catalog == nil {
		writeError(w, http.StatusServiceUnavailable, "catalog not configured")
		return
	}

	item, ok, err := h.deps.Catalog.Get(id)
	if err != nil || !ok {
		writeError(w, http.StatusNotFound, "media not found")
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// handleMediaProbe forces a fresh ffprobe/funscript pass on one file,
// bypassing the catalog's cached fields. Useful after editing a sidecar
// without waiting for the next full rescan.
func (h *handlers) handleMediaProbe(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.deps.Catalog == nil || h.deps.Scanner == nil {
		writeError(w, http.StatusServiceUnavailable, "scanner not configured")
		return
	}

	existing, ok, err := h.deps.Catalog.Get(id)
	if err != nil || !ok {
		writeError(w, http.StatusNotFound, "media not found")
		return
	}

	item, err := h.deps.Scanner.RescanOne(existing.RelPath)
	if err != nil {
		logging.Error().Err(err).Str("media_id", id).Msg("api: on-demand probe failed")
		writeError(w, http.StatusInternalServerError, "probe failed")
		return
	}

	writeJSON(w, http.StatusOK, item)
}
