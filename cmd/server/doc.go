// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

/*
Package main is the entry point for the MediaViewer server.

MediaViewer is a single-host media-server session-synchronization hub: it
scans a media library, serves video and image files over HTTP range requests,
keeps every connected viewer's playback position in sync over WebSockets,
and answers the DeoVR/HereSphere VR-player protocols against the same
catalog.

# Application Architecture

The server runs every long-running component under a Suture v4 supervisor
tree with three independently-restartable layers:

	RootSupervisor ("mediaviewer")
	├── catalog-layer   — scanner periodic-rescan ticker (disabled by default)
	├── realtime-layer  — WebSocket hub broadcast loop, DeoVR forget-sweep
	└── api-layer       — HTTP server

Component initialization order:

 1. Configuration: Koanf v2, layered env vars over an optional config file
 2. Logging: zerolog, bridged to slog for the supervisor's event hook
 3. Catalog: SQLite-backed media index (modernc.org/sqlite, WAL mode)
 4. Sync state: in-memory per-session/per-client playback state
 5. WebSocket hub: fans out sync state mutations to connected viewers
 6. DeoVR inferrer: reconstructs DeoVR heartbeats from Range-request traffic
 7. VR adapter: DeoVR/HereSphere JSON dialects over the catalog
 8. Streaming engine: Range-request file serving
 9. Thumbnail generator: ffmpeg frame-grab cache for the library grid
 10. Scanner: filesystem walk + ffprobe classification into the catalog
 11. HTTP router: chi, mounted behind the supervisor's api-layer

# Configuration

Configuration loads via Koanf v2, environment variables taking precedence
over an optional YAML config file, which in turn overrides struct defaults:

	MEDIA_ROOT=/media              # required, must be absolute
	PORT=3000
	DATABASE_URL=/data/catalog.db   # ":memory:" is valid for a transient catalog
	CORS_ORIGIN=*
	FFPROBE_PATH=ffprobe
	FFMPEG_PATH=ffmpeg
	MV_THUMB_CACHE_DIR=/tmp/mediaviewer/thumbs
	RESCAN_INTERVAL_MS=0            # 0 disables the periodic rescan ticker
	LOG_LEVEL=info
	LOG_FORMAT=json

See internal/config for the complete set, including the DEOVR_* heartbeat
tunables and HTTPS options.

# Signal Handling

The server handles graceful shutdown on SIGINT and SIGTERM:

 1. Stops accepting new HTTP connections
 2. Waits for in-flight requests, including open Range streams, to finish
    (bounded by a shutdown timeout)
 3. Stops the WebSocket hub and DeoVR sweep loop
 4. Reports any services that failed to stop within the timeout
 5. Closes the catalog database

# Usage

	export MEDIA_ROOT=/srv/media
	export DATABASE_URL=/srv/media/.mediaviewer/catalog.db
	./mediaviewer
*/
package main
