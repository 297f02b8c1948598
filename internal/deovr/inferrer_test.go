// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package deovr

import (
	"sync"
	"testing"
	"time"

	"github.com/mediaviewer/mediaviewer/internal/config"
	"github.com/mediaviewer/mediaviewer/internal/models"
)

type fakePublisher struct {
	mu      sync.Mutex
	updates []models.SessionUpdate
}

func (f *fakePublisher) PublishSessionUpdate(u models.SessionUpdate) (models.SessionState, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updates = append(f.updates, u)
	return models.SessionState{SessionID: u.SessionID}, nil
}

func (f *fakePublisher) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.updates)
}

func (f *fakePublisher) last() models.SessionUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates[len(f.updates)-1]
}

func testConfig() config.DeovrConfig {
	return config.DeovrConfig{
		FPS:                    30,
		PublishMinMs:           750,
		InstantPauseDebounceMs: 125,
		IdlePauseMs:            650,
		TickMs:                 1000,
		ForgetMs:               60_000,
	}
}

func TestStreamStartedFirstStreamPublishesImmediately(t *testing.T) {
	var now int64 = 1000
	orig := NowFunc
	NowFunc = func() int64 { return now }
	t.Cleanup(func() { NowFunc = orig })

	pub := &fakePublisher{}
	inf := New(pub, testConfig())

	inf.StreamStarted("203.0.113.5", "media-1")

	if pub.count() != 1 {
		t.Fatalf("expected 1 publish, got %d", pub.count())
	}
	u := pub.last()
	if u.Paused {
		t.Fatalf("expected playing on first stream")
	}
	if u.MediaID == nil || *u.MediaID != "media-1" {
		t.Fatalf("expected mediaId media-1, got %+v", u.MediaID)
	}
	if u.FromClientID != "vr:deovr:203.0.113.5" {
		t.Fatalf("unexpected FromClientID %q", u.FromClientID)
	}
}

func TestStreamStartedSameMediaThrottlesPublish(t *testing.T) {
	var now int64 = 1000
	orig := NowFunc
	NowFunc = func() int64 { return now }
	t.Cleanup(func() { NowFunc = orig })

	pub := &fakePublisher{}
	inf := New(pub, testConfig())

	inf.StreamStarted("203.0.113.5", "media-1")
	now += 100 // well under PublishMinMs=750
	inf.StreamStarted("203.0.113.5", "media-1")

	if pub.count() != 1 {
		t.Fatalf("expected throttled second publish to be skipped, got %d publishes", pub.count())
	}
}

func TestStreamStartedDifferentMediaPublishesImmediately(t *testing.T) {
	var now int64 = 1000
	orig := NowFunc
	NowFunc = func() int64 { return now }
	t.Cleanup(func() { NowFunc = orig })

	pub := &fakePublisher{}
	inf := New(pub, testConfig())

	inf.StreamStarted("203.0.113.5", "media-1")
	now += 50
	inf.StreamStarted("203.0.113.5", "media-2")

	if pub.count() != 2 {
		t.Fatalf("expected media switch to force a publish, got %d", pub.count())
	}
	if *pub.last().MediaID != "media-2" {
		t.Fatalf("expected latest publish for media-2")
	}
}

func TestStreamClosedArmsPauseDebounce(t *testing.T) {
	pub := &fakePublisher{}
	cfg := testConfig()
	cfg.InstantPauseDebounceMs = 10
	inf := New(pub, cfg)

	inf.StreamStarted("203.0.113.5", "media-1")
	inf.StreamClosed("203.0.113.5", "media-1")

	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if pub.count() >= 2 && pub.last().Paused {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("expected a paused publish after debounce fired, got %d publishes", pub.count())
}

func TestStreamClosedThenReopenedCancelsDebounce(t *testing.T) {
	pub := &fakePublisher{}
	cfg := testConfig()
	cfg.InstantPauseDebounceMs = 50
	inf := New(pub, cfg)

	inf.StreamStarted("203.0.113.5", "media-1")
	inf.StreamClosed("203.0.113.5", "media-1")
	inf.StreamStarted("203.0.113.5", "media-1")

	time.Sleep(100 * time.Millisecond)

	for _, u := range pub.updates {
		if u.Paused {
			t.Fatalf("expected no paused publish once the debounce was canceled by a resume")
		}
	}
}

func TestStreamDataObservedResumesFromForcedPause(t *testing.T) {
	pub := &fakePublisher{}
	inf := New(pub, testConfig())

	inf.StreamStarted("203.0.113.5", "media-1")
	inf.mu.Lock()
	st := inf.states["203.0.113.5"]
	st.paused = true
	inf.mu.Unlock()

	inf.StreamDataObserved("203.0.113.5", "media-1")

	inf.mu.Lock()
	paused := inf.states["203.0.113.5"].paused
	inf.mu.Unlock()
	if paused {
		t.Fatalf("expected StreamDataObserved to clear paused state")
	}
}

func TestSweepForgetsStaleClients(t *testing.T) {
	var now int64 = 1000
	orig := NowFunc
	NowFunc = func() int64 { return now }
	t.Cleanup(func() { NowFunc = orig })

	cfg := testConfig()
	cfg.ForgetMs = 5000
	pub := &fakePublisher{}
	inf := New(pub, cfg)

	inf.StreamStarted("203.0.113.5", "media-1")
	inf.StreamClosed("203.0.113.5", "media-1")

	now += 6000
	inf.sweep()

	inf.mu.Lock()
	_, exists := inf.states["203.0.113.5"]
	inf.mu.Unlock()
	if exists {
		t.Fatalf("expected stale client to be forgotten")
	}
}

func TestSweepIdlePauseFreezesTime(t *testing.T) {
	var now int64 = 1000
	orig := NowFunc
	NowFunc = func() int64 { return now }
	t.Cleanup(func() { NowFunc = orig })

	cfg := testConfig()
	cfg.IdlePauseMs = 500
	pub := &fakePublisher{}
	inf := New(pub, cfg)

	inf.StreamStarted("203.0.113.5", "media-1")
	now += 600 // exceed IdlePauseMs without any further data
	inf.sweep()

	inf.mu.Lock()
	st := inf.states["203.0.113.5"]
	paused := st.paused
	inf.mu.Unlock()
	if !paused {
		t.Fatalf("expected idle sweep to force pause")
	}
	if !pub.last().Paused {
		t.Fatalf("expected a paused publish from the idle sweep")
	}
}
