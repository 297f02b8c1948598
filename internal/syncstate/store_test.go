// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package syncstate

import (
	"sync"
	"testing"

	"github.com/mediaviewer/mediaviewer/internal/models"
)

type fakeSocket struct{ id string }

func (f fakeSocket) SocketID() string { return f.id }

func TestGetSessionDefault(t *testing.T) {
	s := New()
	st := s.GetSession("default")
	if !st.Paused || st.FPS != 30 || st.MediaID != nil {
		t.Fatalf("unexpected default session state: %+v", st)
	}
}

func TestUpsertSessionClampsAndValidates(t *testing.T) {
	s := New()
	empty := ""
	_, err := s.UpsertSession(models.SessionUpdate{SessionID: "s1", MediaID: &empty})
	if err != ErrInvalidMediaID {
		t.Fatalf("expected ErrInvalidMediaID, got %v", err)
	}

	st, err := s.UpsertSession(models.SessionUpdate{SessionID: "s1", TimeMs: -5, FPS: 0, Frame: -1})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.TimeMs != 0 || st.FPS != 30 || st.Frame != 0 {
		t.Fatalf("expected clamped values, got %+v", st)
	}
}

func TestUpsertSessionClearsPlayAtWhenPaused(t *testing.T) {
	s := New()
	playAt := "2026-08-02T00:00:00Z"
	st, err := s.UpsertSession(models.SessionUpdate{SessionID: "s1", Paused: false, PlayAt: &playAt})
	if err != nil {
		t.Fatal(err)
	}
	if st.PlayAt == nil {
		t.Fatalf("expected playAt retained when playing and supplied")
	}

	st, err = s.UpsertSession(models.SessionUpdate{SessionID: "s1", Paused: true})
	if err != nil {
		t.Fatal(err)
	}
	if st.PlayAt != nil {
		t.Fatalf("expected playAt cleared on pause, got %v", *st.PlayAt)
	}
}

func TestUpsertSessionClearsPlayAtWhenOmitted(t *testing.T) {
	s := New()
	playAt := "2026-08-02T00:00:00Z"
	if _, err := s.UpsertSession(models.SessionUpdate{SessionID: "s1", Paused: false, PlayAt: &playAt}); err != nil {
		t.Fatal(err)
	}
	st, err := s.UpsertSession(models.SessionUpdate{SessionID: "s1", Paused: false})
	if err != nil {
		t.Fatal(err)
	}
	if st.PlayAt != nil {
		t.Fatalf("expected playAt cleared when omitted, got %v", *st.PlayAt)
	}
}

func TestUpsertSessionMonotonicUpdatedAt(t *testing.T) {
	s := New()
	NowFunc = func() int64 { return 1000 }
	defer func() { NowFunc = defaultNow }()

	first, err := s.UpsertSession(models.SessionUpdate{SessionID: "s1"})
	if err != nil {
		t.Fatal(err)
	}
	second, err := s.UpsertSession(models.SessionUpdate{SessionID: "s1"})
	if err != nil {
		t.Fatal(err)
	}
	if second.UpdatedAt <= first.UpdatedAt {
		t.Fatalf("expected monotonic updatedAt, got %d then %d", first.UpdatedAt, second.UpdatedAt)
	}
}

func TestPresenceLifecycle(t *testing.T) {
	s := New()
	s.UpsertPresence("c1", models.ClientPresence{UserAgent: "ua", IPAddress: "1.2.3.4"})

	view := "grid"
	if _, ok := s.UpdatePresenceUI("c1", &view, nil, false); !ok {
		t.Fatalf("expected presence to exist")
	}
	list := s.ListPresence()
	if len(list) != 1 || list[0].UIView == nil || *list[0].UIView != "grid" {
		t.Fatalf("unexpected presence list: %+v", list)
	}

	s.DropPresence("c1")
	if len(s.ListPresence()) != 0 {
		t.Fatalf("expected presence dropped")
	}
}

func TestUpdatePresenceUIClearsMediaIDExplicitly(t *testing.T) {
	s := New()
	mediaID := "m1"
	s.UpsertPresence("c1", models.ClientPresence{UIMediaID: &mediaID})

	p, ok := s.UpdatePresenceUI("c1", nil, nil, true)
	if !ok {
		t.Fatal("expected presence to exist")
	}
	if p.UIMediaID != nil {
		t.Fatalf("expected uiMediaId cleared, got %v", *p.UIMediaID)
	}
}

func TestSocketAttachDetach(t *testing.T) {
	s := New()
	a, b := fakeSocket{"a"}, fakeSocket{"b"}

	if first := s.AttachSocket("c1", a); !first {
		t.Fatal("expected first attach to report true")
	}
	if first := s.AttachSocket("c1", b); first {
		t.Fatal("expected second attach to report false")
	}
	if len(s.Sockets("c1")) != 2 {
		t.Fatalf("expected 2 sockets, got %d", len(s.Sockets("c1")))
	}

	if last := s.DetachSocket("c1", a); last {
		t.Fatal("expected not-last on first detach")
	}
	if last := s.DetachSocket("c1", b); !last {
		t.Fatal("expected last on second detach")
	}
	if len(s.Sockets("c1")) != 0 {
		t.Fatalf("expected 0 sockets after detaching all")
	}
}

func TestPlaybackRoundTrip(t *testing.T) {
	s := New()
	s.UpsertPlayback(models.PerClientPlayback{ClientID: "c1", MediaID: "m1", TimeMs: 42})
	p, ok := s.GetPlayback("c1", "m1")
	if !ok || p.TimeMs != 42 {
		t.Fatalf("unexpected playback: %+v ok=%v", p, ok)
	}
	if _, ok := s.GetPlayback("c1", "missing"); ok {
		t.Fatalf("expected no playback for unknown media")
	}
}

func TestConcurrentUpsertSessionIsRaceFree(t *testing.T) {
	s := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(n int64) {
			defer wg.Done()
			if _, err := s.UpsertSession(models.SessionUpdate{SessionID: "s1", TimeMs: n}); err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		}(int64(i))
	}
	wg.Wait()
}
