// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

// Package metrics exposes Prometheus counters, gauges, and histograms for the
// HTTP API, the WebSocket hub, the scanner, the range streaming engine, the
// DeoVR heartbeat inferrer, and the thumbnail cache. Scraped at GET /metrics.
package metrics
