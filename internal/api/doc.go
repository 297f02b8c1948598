// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

// Package api is the HTTP API (spec component C8): a thin shell over the
// catalog (C1), sync state store (C3), streaming engine (C5), DeoVR
// inferrer (C6) and scanner, plus the root-level VR adapter routes (C7)
// and the WebSocket upgrade endpoint (C4).
package api
