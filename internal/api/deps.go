// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package api

import (
	"github.com/mediaviewer/mediaviewer/internal/catalog"
	"github.com/mediaviewer/mediaviewer/internal/scanner"
	"github.com/mediaviewer/mediaviewer/internal/streaming"
	"github.com/mediaviewer/mediaviewer/internal/syncstate"
	"github.com/mediaviewer/mediaviewer/internal/thumbnail"
	"github.com/mediaviewer/mediaviewer/internal/vr"
	"github.com/mediaviewer/mediaviewer/internal/websocket"
)

// Deps wires every component C8 sits in front of. Any component may be nil:
// handlers that need a missing one answer 503, VR routes are not mounted
// without VR, and a nil Thumbnails (or Catalog) makes the thumb endpoint
// redirect to the placeholder.
type Deps struct {
	Catalog   *catalog.Store
	SyncState *syncstate.Store
	Hub       *websocket.Hub
	Scanner   *scanner.Scanner
	Streaming *streaming.Engine
	VR        *vr.Adapter
	Thumbnails *thumbnail.Generator

	MediaRoot     string
	ThumbCacheDir string
	CORSOrigin    string
	StaticDir     string
	Version       string
}
