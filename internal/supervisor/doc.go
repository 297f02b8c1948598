// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

/*
Package supervisor provides process supervision for MediaViewer using suture v4.

A hierarchical supervisor tree manages every long-running service so a crash
in one layer doesn't take down the others:

	RootSupervisor ("mediaviewer")
	├── catalog-layer   — scanner periodic-rescan ticker (disabled by default)
	├── realtime-layer  — WebSocket hub broadcast loop, DeoVR forget-sweep
	└── api-layer       — HTTP server

Each layer restarts independently on failure; once its decaying failure
count passes FailureThreshold it waits FailureBackoff before restarting
(all three set by TreeConfig, with FailureDecay). Every
supervised service implements suture.Service: Serve(ctx) returning nil means
clean stop, an error means crash-and-restart, and context cancellation means
shut down promptly.

cmd/server/main.go wires services in with AddCatalogService,
AddRealtimeService, and AddAPIService, then calls Serve or ServeBackground.
*/
package supervisor
