// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

/*
Package middleware provides HTTP middleware components for the application.

This package implements infrastructure middleware for compression, performance
monitoring, request ID tracking, per-IP rate limiting, and Prometheus metrics
integration. There is no authentication middleware; internal/api's router
combines these components with chi's CORS handler.

Key Components:

  - Compression: Gzip compression of every response when gzip is accepted
  - Performance Monitor: Request latency tracking with percentile calculations
  - Request ID: UUID-based request tracking for distributed tracing
  - Prometheus Metrics: HTTP request/response instrumentation

Middleware Stack:

The stack internal/api's router installs, outermost first, is:

	r.Use(cors.Handler(...))                              // Layer 1: CORS headers
	r.Use(adaptHandlerFunc(middleware.RequestID))         // Layer 2: Request tracking
	r.Use(adaptHandlerFunc(middleware.PrometheusMetrics)) // Layer 3: Metrics
	r.Use(adaptHandlerFunc(middleware.Compression))       // Layer 4: Gzip
	r.Use(perf.Middleware)                                // Layer 5: Latency tracking

	r.Route("/api", func(api chi.Router) {
	    api.Use(middleware.RateLimit(limiter))            // Layer 6: Rate limiting (/api only)
	    ...
	})

Usage Example - Compression:

	import "github.com/mediaviewer/mediaviewer/internal/middleware"

	// Wrap handler with gzip compression
	http.HandleFunc("/api/v1/data",
	    middleware.Compression(handler),
	)

	// Responses of any size are compressed
	// Accept-Encoding: gzip header is required

Usage Example - Performance Monitoring:

	// Create performance monitor keeping the last 1000 samples
	perfMon := middleware.NewPerformanceMonitor(1000)

	// Wrap handler
	http.Handle("/api/v1/stats",
	    perfMon.Middleware(handler),
	)

	// Get performance statistics, one entry per endpoint
	for _, s := range perfMon.GetStats() {
	    fmt.Printf("%s p50: %dms, p95: %dms, p99: %dms\n",
	        s.Path, s.P50Duration, s.P95Duration, s.P99Duration)
	}

Usage Example - Request ID:

	// Request ID middleware
	http.HandleFunc("/api/v1/logs",
	    middleware.RequestID(handler),
	)

	// Access request ID in handler
	func handler(w http.ResponseWriter, r *http.Request) {
	    requestID := r.Context().Value(middleware.RequestIDKey).(string)
	    log.Printf("[%s] Processing request", requestID)
	}

Performance Characteristics:

  - Compression: 70-90% size reduction for JSON (text/json mime types)
  - Compression overhead: ~1-2ms for typical responses
  - Metrics overhead: <0.1ms per request
  - Request ID overhead: <0.01ms (UUID generation)
  - Performance monitor: Mutex-guarded sliding window of latency samples

Compression Details:

The compression middleware:
  - Compresses every response, whatever its size or content type
  - Supports gzip encoding (Accept-Encoding: gzip)
  - Skips requests carrying an Upgrade: websocket header
  - Automatically sets Content-Encoding header and drops Content-Length
  - Does not implement http.Flusher; output is flushed when the handler returns

Performance Monitor:

The performance monitor tracks:
  - Request count and status code per request
  - Latency percentiles (p50, p95, p99)
  - Rolling window of the most recent maxMetrics requests (the router uses 1000)
  - Thread-safe concurrent access with RWMutex

Thread Safety:

All middleware components are thread-safe:
  - Compression takes a pooled gzip writer per request
  - Performance monitor uses sync.RWMutex
  - Request ID uses context.Context (immutable)
  - Prometheus metrics use atomic operations

See Also:

  - internal/api: HTTP handlers wrapped by middleware
  - internal/metrics: Prometheus metrics definitions
*/
package middleware
