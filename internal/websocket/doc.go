// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

// Package websocket is the WebSocket hub (C4): a single endpoint that fans
// playback sync state out to every connected client.
//
// Hub owns socket membership and broadcast; Client owns one connection's
// read/write pumps; all session and presence state lives in
// internal/syncstate, which the Hub commits to before broadcasting.
//
// Inbound message types: sync:hello, client:status, sync:update, ws:ping.
// Outbound: hello, sync:state, ws:pong. See internal/syncstate for the
// commit semantics each inbound type triggers.
package websocket
