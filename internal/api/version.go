// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package api

import (
	"net/http"

	"github.com/mediaviewer/mediaviewer/internal/buildinfo"
)

type versionResponse struct {
	Version       string  `json:"version"`
	Commit        string  `json:"commit"`
	GoVersion     string  `json:"goVersion"`
	UptimeSeconds float64 `json:"uptimeSeconds"`
}

// handleVersion reports build info backed by the same version/commit/Go
// runtime values published on the mediaviewer_app_info and
// mediaviewer_app_uptime_seconds gauges at /metrics.
func (h *handlers) handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, versionResponse{
		Version:       h.deps.Version,
		Commit:        buildinfo.Commit,
		GoVersion:     buildinfo.GoVersion(),
		UptimeSeconds: buildinfo.Uptime().Seconds(),
	})
}
