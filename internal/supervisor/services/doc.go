// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

// Package services adapts MediaViewer's long-running components to
// suture.Service so the supervisor tree in internal/supervisor can restart
// them independently. Each wrapper here exists only because the wrapped type
// doesn't itself expose a Serve(ctx) error method.
package services
