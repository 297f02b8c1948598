// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package services

import (
	"context"
	"testing"
	"time"
)

type fakeHub struct {
	ran chan struct{}
}

func (f *fakeHub) RunWithContext(ctx context.Context) error {
	close(f.ran)
	<-ctx.Done()
	return ctx.Err()
}

func TestWebSocketHubServiceDelegatesToRunWithContext(t *testing.T) {
	hub := &fakeHub{ran: make(chan struct{})}
	svc := NewWebSocketHubService(hub)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- svc.Serve(ctx) }()

	select {
	case <-hub.ran:
	case <-time.After(time.Second):
		t.Fatal("RunWithContext was never invoked")
	}

	cancel()

	select {
	case err := <-done:
		if err != context.Canceled {
			t.Fatalf("expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Serve did not return after cancellation")
	}
}

func TestWebSocketHubServiceString(t *testing.T) {
	svc := NewWebSocketHubService(&fakeHub{ran: make(chan struct{})})
	if svc.String() != "websocket-hub" {
		t.Fatalf("unexpected name: %s", svc.String())
	}
}
