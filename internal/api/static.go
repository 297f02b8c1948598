// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package api

import (
	"net/http"
	"os"
	"path/filepath"

	"github.com/go-chi/chi/v5"
)

// mountStatic serves the bundled web client out of dir, falling back to
// index.html for any path that isn't a real file so the client-side router
// can take over. It is mounted last so it never shadows /deovr,
// /heresphere, /thumb, /ws or /api routes registered earlier.
func mountStatic(r chi.Router, dir string) {
	fileServer := http.FileServer(http.Dir(dir))
	indexPath := filepath.Join(dir, "index.html")

	r.Get("/*", func(w http.ResponseWriter, req *http.Request) {
		requested := filepath.Join(dir, filepath.FromSlash(req.URL.Path))
		if info, err := os.Stat(requested); err == nil && !info.IsDir() {
			fileServer.ServeHTTP(w, req)
			return
		}
		http.ServeFile(w, req, indexPath)
	})
}
