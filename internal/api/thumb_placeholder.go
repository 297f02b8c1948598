// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package api

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
)

const placeholderSVG = `<svg xmlns="http://www.w3.org/2000/svg" width="320" height="180" viewBox="0 0 320 180">` +
	`<rect width="320" height="180" fill="%s"/>` +
	`<text x="160" y="94" font-family="sans-serif" font-size="14" fill="#ffffff" text-anchor="middle">%s</text>` +
	`</svg>`

// handleThumbPlaceholder serves a tiny inline SVG in place of a thumbnail
// that could not be generated (missing ffmpeg, unreadable file, or a
// recently-failed attempt remembered by the thumbnail fail cache).
func (h *handlers) handleThumbPlaceholder(w http.ResponseWriter, r *http.Request) {
	_ = chi.URLParam(r, "id")

	fill, label := "#2a2a2a", "No Preview"
	if r.URL.Query().Get("err") == "1" {
		fill, label = "#4a1f1f", "Unavailable"
	}

	w.Header().Set("Content-Type", "image/svg+xml; charset=utf-8")
	w.Header().Set("Cache-Control", "public, max-age=86400")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, placeholderSVG, fill, label)
}
