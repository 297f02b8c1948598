// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mediaviewer/mediaviewer/internal/middleware"
)

// apiRateBurst/apiRateWindow bound how many requests one IP may make to the
// /api routes before seeing 429s. VR adapter routes, /health, /ws and
// /thumb are mounted outside the /api group and are exempt; the
// /api/media/{id}/stream route sits inside it and counts against the limit.
const (
	apiRateBurst  = 120
	apiRateWindow = time.Minute
)

// adaptHandlerFunc lets the older http.HandlerFunc-shaped middleware in
// internal/middleware (RequestID, Compression, PrometheusMetrics) slot into a chi
// router's Use() stack, which expects func(http.Handler) http.Handler.
func adaptHandlerFunc(mw func(http.HandlerFunc) http.HandlerFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return mw(next.ServeHTTP)
	}
}

// NewRouter builds the complete HTTP API (C8): middleware stack, the VR
// adapter routes (C7), the WebSocket upgrade (C4), and every REST endpoint
// spec §4.8 lists, plus static asset serving for the bundled client.
func NewRouter(deps Deps) http.Handler {
	h := &handlers{deps: deps}
	perf := middleware.NewPerformanceMonitor(1000)
	limiter := middleware.NewRateLimiter(apiRateBurst, apiRateWindow)

	r := chi.NewRouter()

	origins := []string{"*"}
	if deps.CORSOrigin != "" {
		origins = []string{deps.CORSOrigin}
	}
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Range"},
		ExposedHeaders:   []string{"Content-Range", "Content-Length", "Accept-Ranges"},
		AllowCredentials: false,
		MaxAge:           3600,
	}))
	r.Use(adaptHandlerFunc(middleware.RequestID))
	r.Use(adaptHandlerFunc(middleware.PrometheusMetrics))
	r.Use(adaptHandlerFunc(middleware.Compression))
	r.Use(perf.Middleware)

	r.Handle("/metrics", promhttp.Handler())

	// C7: VR adapter routes live at the root, outside the per-IP limiter and
	// ahead of the catch-all, so DeoVR/HereSphere clients are never throttled
	// by ordinary browser traffic sharing the same server.
	if deps.VR != nil {
		deps.VR.Mount(r)
	}

	r.Get("/health", h.handleHealth)
	r.Get("/ws", h.handleWebSocket)
	r.Get("/thumb/{id}.svg", h.handleThumbPlaceholder)

	r.Route("/api", func(api chi.Router) {
		api.Use(middleware.RateLimit(limiter))

		api.Get("/version", h.handleVersion)

		api.Post("/scan", h.handleScanStart)
		api.Get("/scan/progress", h.handleScanProgress)
		api.Post("/cache/clear", h.handleCacheClear)

		api.Get("/sync", h.handleSyncGet)
		api.Put("/sync", h.handleSyncPut)

		api.Get("/playback", h.handlePlaybackGet)
		api.Put("/playback", h.handlePlaybackPut)

		api.Get("/media", h.handleMediaSearch)
		api.Get("/media/{id}/stream", h.handleMediaStream)
		api.Get("/media/{id}/thumb", h.handleMediaThumb)
		api.Get("/media/{id}/funscript", h.handleMediaFunscript)
		api.Get("/media/{id}/fileinfo", h.handleMediaFileInfo)
		api.Get("/media/{id}/probe", h.handleMediaProbe)
	})

	if deps.StaticDir != "" {
		mountStatic(r, deps.StaticDir)
	}

	return r
}
