// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/mediaviewer/mediaviewer/internal/buildinfo"
)

// Prometheus instrumentation for MediaViewer's own domain: the HTTP API
// (C8), the WebSocket hub (C4), the scanner (C2), the range-streaming
// engine (C5), the DeoVR heartbeat inferrer (C6), and the thumbnail
// fail-marker cache.
var (
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaviewer_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status_code"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "mediaviewer_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediaviewer_api_active_requests",
			Help: "Number of API requests currently in flight",
		},
	)

	WSConnections = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediaviewer_ws_connections",
			Help: "Number of currently connected WebSocket clients",
		},
	)

	WSMessagesReceivedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaviewer_ws_messages_received_total",
			Help: "Total inbound WebSocket messages, by type",
		},
		[]string{"type"},
	)

	WSBroadcastsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaviewer_ws_broadcasts_dropped_total",
			Help: "Total WebSocket sends dropped because a client's send buffer was full",
		},
		[]string{"reason"},
	)

	ScanDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "mediaviewer_scan_duration_seconds",
			Help:    "Duration of a full catalog rescan",
			Buckets: []float64{1, 5, 15, 30, 60, 120, 300, 600, 1800},
		},
	)

	ScanFilesProcessedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediaviewer_scan_files_processed_total",
			Help: "Total media files processed across all scans",
		},
	)

	ScanErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaviewer_scan_errors_total",
			Help: "Total errors encountered during scans, by stage",
		},
		[]string{"stage"},
	)

	StreamBytesServedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaviewer_stream_bytes_served_total",
			Help: "Total bytes served by the range streaming engine",
		},
		[]string{"mode"}, // "direct" or "transcode"
	)

	StreamRangeRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaviewer_stream_range_requests_total",
			Help: "Total Range requests served, by response status",
		},
		[]string{"status"}, // "206", "200", "416"
	)

	DeovrHeartbeatPublishesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "mediaviewer_deovr_heartbeat_publishes_total",
			Help: "Total DeoVR heartbeat state publishes inferred from stream activity",
		},
		[]string{"state"}, // "playing" or "paused"
	)

	DeovrActiveStreams = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "mediaviewer_deovr_active_streams",
			Help: "Number of DeoVR stream states currently tracked",
		},
	)

	ThumbCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediaviewer_thumb_cache_hits_total",
			Help: "Total thumbnail requests served from the fail-marker cache without reattempting generation",
		},
	)

	ThumbCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediaviewer_thumb_cache_misses_total",
			Help: "Total thumbnail requests that attempted generation",
		},
	)

	ThumbGenerationFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "mediaviewer_thumb_generation_failures_total",
			Help: "Total thumbnail generation failures recorded in the fail-marker cache",
		},
	)

	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "mediaviewer_app_info",
			Help: "Static build metadata; value is always 1",
		},
		[]string{"version", "commit", "go_version"},
	)

	AppUptime = promauto.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "mediaviewer_app_uptime_seconds",
			Help: "Seconds since the process started",
		},
		func() float64 { return buildinfo.Uptime().Seconds() },
	)
)

// SetAppInfo publishes the running binary's version, commit, and Go runtime
// as an always-1 gauge, the standard Prometheus build-info pattern. Called
// once at startup.
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}

// RecordAPIRequest records one completed API request.
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest increments or decrements the in-flight API request gauge.
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}

// TrackWSConnection increments or decrements the connected-client gauge.
func TrackWSConnection(inc bool) {
	if inc {
		WSConnections.Inc()
	} else {
		WSConnections.Dec()
	}
}

// RecordWSMessage records one dispatched inbound WebSocket message.
func RecordWSMessage(msgType string) {
	WSMessagesReceivedTotal.WithLabelValues(msgType).Inc()
}

// RecordWSBroadcastDropped records a non-blocking send that hit a full buffer.
func RecordWSBroadcastDropped(reason string) {
	WSBroadcastsDroppedTotal.WithLabelValues(reason).Inc()
}

// RecordScan records one completed rescan's duration and file count.
func RecordScan(duration time.Duration, filesProcessed int) {
	ScanDuration.Observe(duration.Seconds())
	ScanFilesProcessedTotal.Add(float64(filesProcessed))
}

// RecordScanError records a scan-stage failure (the scanner passes "scan_one" for a file it skips).
func RecordScanError(stage string) {
	ScanErrorsTotal.WithLabelValues(stage).Inc()
}

// RecordStreamBytes records bytes served for one Range response.
func RecordStreamBytes(mode string, n int64) {
	StreamBytesServedTotal.WithLabelValues(mode).Add(float64(n))
}

// RecordStreamRangeRequest records one Range request outcome.
func RecordStreamRangeRequest(status string) {
	StreamRangeRequestsTotal.WithLabelValues(status).Inc()
}

// RecordDeovrPublish records one inferred DeoVR heartbeat publish.
func RecordDeovrPublish(state string) {
	DeovrHeartbeatPublishesTotal.WithLabelValues(state).Inc()
}

// SetDeovrActiveStreams sets the current count of tracked DeoVR stream states.
func SetDeovrActiveStreams(n int) {
	DeovrActiveStreams.Set(float64(n))
}

// RecordThumbCacheHit records a thumbnail request short-circuited by the fail-marker cache.
func RecordThumbCacheHit() {
	ThumbCacheHits.Inc()
}

// RecordThumbCacheMiss records a thumbnail request that attempted generation.
func RecordThumbCacheMiss() {
	ThumbCacheMisses.Inc()
}

// RecordThumbGenerationFailure records a thumbnail generation failure.
func RecordThumbGenerationFailure() {
	ThumbGenerationFailuresTotal.Inc()
}
