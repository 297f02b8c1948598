// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package streaming

import (
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/mediaviewer/mediaviewer/internal/logging"
	"github.com/mediaviewer/mediaviewer/internal/metrics"
	"github.com/mediaviewer/mediaviewer/internal/models"
)

// CatalogLookup is the subset of catalog.Store the streaming engine needs.
type CatalogLookup interface {
	Get(id string) (models.MediaItem, bool, error)
}

// DeovrObserver receives playback-progress hints derived from raw Range
// requests, letting C6 reconstruct heartbeats without C5 knowing anything
// about its state machine.
type DeovrObserver interface {
	StreamStarted(clientIP, mediaID string)
	StreamDataObserved(clientIP, mediaID string)
	StreamClosed(clientIP, mediaID string)
}

// Engine resolves catalog entries to files on disk and serves them with
// single-range HTTP semantics.
type Engine struct {
	mediaRoot  string
	catalog    CatalogLookup
	ffmpegPath string
	observer   DeovrObserver
}

// New creates a streaming Engine rooted at mediaRoot. observer may be nil if
// no DeoVR heartbeat inference is wired in (e.g. during tests).
func New(catalog CatalogLookup, mediaRoot, ffmpegPath string, observer DeovrObserver) *Engine {
	return &Engine{mediaRoot: mediaRoot, catalog: catalog, ffmpegPath: ffmpegPath, observer: observer}
}

// ServeStream implements GET /api/media/:id/stream.
func (e *Engine) ServeStream(w http.ResponseWriter, r *http.Request, mediaID string) {
	item, ok, err := e.catalog.Get(mediaID)
	if err != nil {
		metrics.RecordStreamRangeRequest("error")
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	if !ok {
		metrics.RecordStreamRangeRequest("not_found")
		http.Error(w, "media not found", http.StatusNotFound)
		return
	}

	absPath := filepath.Join(e.mediaRoot, filepath.FromSlash(item.RelPath))

	clientIP := clientIPFromRequest(r)
	isVRUA := isVRUserAgent(r)
	var observer DeovrObserver
	if isVRUA {
		observer = e.observer
	}
	if observer != nil {
		observer.StreamStarted(clientIP, mediaID)
		defer observer.StreamClosed(clientIP, mediaID)
	}

	if r.URL.Query().Get("transcode") == "h264" && item.MediaType == models.MediaTypeVideo {
		e.serveTranscode(w, r, absPath, clientIP, mediaID, observer)
		return
	}

	e.serveRange(w, r, absPath, item.Ext, clientIP, mediaID, observer)
}

func (e *Engine) serveRange(w http.ResponseWriter, r *http.Request, absPath, ext, clientIP, mediaID string, observer DeovrObserver) {
	f, err := os.Open(absPath)
	if err != nil {
		metrics.RecordStreamRangeRequest("not_found")
		http.Error(w, "media file not found", http.StatusNotFound)
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		metrics.RecordStreamRangeRequest("error")
		http.Error(w, "stat failed", http.StatusInternalServerError)
		return
	}
	size := info.Size()

	header := w.Header()
	header.Set("Content-Type", contentTypeForExt(ext))
	header.Set("Content-Disposition", "inline")
	header.Set("Accept-Ranges", "bytes")
	header.Set("Cache-Control", "no-store")

	rng, hasRange, err := parseRange(r.Header.Get("Range"), size)
	if err != nil {
		if err == ErrRangeNotSatisfiable {
			header.Set("Content-Range", unsatisfiableContentRangeHeader(size))
			w.WriteHeader(http.StatusRequestedRangeNotSatisfiable)
			metrics.RecordStreamRangeRequest("not_satisfiable")
			return
		}
		http.Error(w, "invalid range", http.StatusBadRequest)
		metrics.RecordStreamRangeRequest("invalid")
		return
	}

	if hasRange {
		header.Set("Content-Range", contentRangeHeader(rng, size))
		header.Set("Content-Length", strconv.FormatInt(rng.length(), 10))
		w.WriteHeader(http.StatusPartialContent)
		metrics.RecordStreamRangeRequest("partial")
	} else {
		header.Set("Content-Length", strconv.FormatInt(size, 10))
		w.WriteHeader(http.StatusOK)
		metrics.RecordStreamRangeRequest("full")
	}

	if r.Method == http.MethodHead {
		return
	}

	if _, err := f.Seek(rng.start, io.SeekStart); err != nil {
		logging.Warn().Str("path", absPath).Err(err).Msg("streaming: seek failed")
		return
	}

	dst := observingWriter{w: w, clientIP: clientIP, mediaID: mediaID, observer: observer}
	n, err := io.Copy(dst, io.LimitReader(f, rng.length()))
	metrics.RecordStreamBytes("range", n)
	if err != nil {
		logging.Warn().Str("path", absPath).Err(err).Msg("streaming: copy failed")
	}
}

// observingWriter forwards every Write to the underlying ResponseWriter and,
// when a DeovrObserver is attached, reports that data flowed so C6 can
// recognize an active (non-idle) stream.
type observingWriter struct {
	w        http.ResponseWriter
	clientIP string
	mediaID  string
	observer DeovrObserver
}

func (o observingWriter) Write(p []byte) (int, error) {
	n, err := o.w.Write(p)
	if n > 0 && o.observer != nil {
		o.observer.StreamDataObserved(o.clientIP, o.mediaID)
	}
	return n, err
}

func clientIPFromRequest(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		parts := strings.SplitN(fwd, ",", 2)
		return strings.TrimSpace(parts[0])
	}
	host := r.RemoteAddr
	if idx := strings.LastIndex(host, ":"); idx != -1 {
		return host[:idx]
	}
	return host
}

// isVRUserAgent implements the VR-UA hook: a DeoVR client is recognized by
// an explicit mvFrom=deovr query param or a "deovr" substring in the User-
// Agent header. mvFrom=desktop always opts out, even if the UA matches.
func isVRUserAgent(r *http.Request) bool {
	mvFrom := r.URL.Query().Get("mvFrom")
	if mvFrom == "desktop" {
		return false
	}
	if mvFrom == "deovr" {
		return true
	}
	ua := strings.ToLower(r.Header.Get("User-Agent"))
	return strings.Contains(ua, "deovr")
}
