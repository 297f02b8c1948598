// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

// Package deovr implements the DeoVR heartbeat inferrer (spec component
// C6). DeoVR issues no explicit play/pause/seek events of its own; this
// package reconstructs them from the Range-request traffic C5 observes,
// publishing the result through the same C3/C4 path a real WebSocket
// client would use.
package deovr
