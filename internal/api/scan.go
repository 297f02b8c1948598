// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package api

import (
	"context"
	"errors"
	"net/http"
	"os"

	"github.com/mediaviewer/mediaviewer/internal/logging"
	"github.com/mediaviewer/mediaviewer/internal/scanner"
)

// handleScanStart kicks off a background rescan and returns immediately;
// clients poll handleScanProgress for completion. A scan already in
// progress yields 409 rather than queuing a second one.
func (h *handlers) handleScanStart(w http.ResponseWriter, r *http.Request) {
	if h.deps.Scanner == nil {
		writeError(w, http.StatusServiceUnavailable, "scanner not configured")
		return
	}

	// Best-effort guard against the common case (a second click while a scan
	// is visibly running). The authoritative check is Rescan's own
	// CompareAndSwap, which still applies if two requests race past this.
	if h.deps.Scanner.Progress().IsScanning {
		writeError(w, http.StatusConflict, "a scan is already in progress")
		return
	}

	go func() {
		if err := h.deps.Scanner.Rescan(context.Background(), nil); err != nil && !errors.Is(err, scanner.ErrScanBusy) {
			logging.Error().Err(err).Msg("api: background rescan failed")
		}
	}()

	writeJSON(w, http.StatusAccepted, h.deps.Scanner.Progress())
}

func (h *handlers) handleScanProgress(w http.ResponseWriter, r *http.Request) {
	if h.deps.Scanner == nil {
		writeError(w, http.StatusServiceUnavailable, "scanner not configured")
		return
	}
	writeJSON(w, http.StatusOK, h.deps.Scanner.Progress())
}

// handleCacheClear empties the thumbnail cache directory, so each thumbnail
// is regenerated on its next request. The in-memory failure cache is not
// cleared: a media id that failed recently keeps getting the placeholder
// until its marker expires.
func (h *handlers) handleCacheClear(w http.ResponseWriter, r *http.Request) {
	if h.deps.ThumbCacheDir != "" {
		entries, err := os.ReadDir(h.deps.ThumbCacheDir)
		if err != nil && !os.IsNotExist(err) {
			writeError(w, http.StatusInternalServerError, "failed to read thumbnail cache directory")
			return
		}
		for _, entry := range entries {
			_ = os.RemoveAll(h.deps.ThumbCacheDir + string(os.PathSeparator) + entry.Name())
		}
	}
	writeJSON(w, http.StatusOK, map[string]bool{"ok": true})
}
