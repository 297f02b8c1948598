// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package deovr

import (
	"context"
	"sync"
	"time"

	"github.com/mediaviewer/mediaviewer/internal/config"
	"github.com/mediaviewer/mediaviewer/internal/logging"
	"github.com/mediaviewer/mediaviewer/internal/metrics"
	"github.com/mediaviewer/mediaviewer/internal/models"
)

// NowFunc stamps wall-clock time in Unix milliseconds. A package variable so
// tests can substitute a deterministic clock.
var NowFunc = models.NowMs

// sweepInterval governs how often the background loop re-checks every live
// client for an idle pause or a due tick publish. It is independent of
// DEOVR_TICK_MS, which only throttles how often a "still playing" update is
// actually allowed out the door.
const sweepInterval = 200 * time.Millisecond

// Publisher is the subset of *websocket.Hub the inferrer needs: upsert a
// session mutation and fan it out to every connected socket. Defined here,
// not imported from websocket, so this package stays testable without a
// live hub.
type Publisher interface {
	PublishSessionUpdate(models.SessionUpdate) (models.SessionState, error)
}

// clientState is the per-DeoVR-client state spec §4.6 keys by
// (sessionId, deovrClientId). DeoVR never carries a session concept of its
// own, so every inferred update targets the "default" session and the
// client identity collapses to the peer's IP address.
type clientState struct {
	mediaID         string
	startedAtMs     int64
	lastTimeMs      int64
	paused          bool
	inFlight        int
	lastDataAtMs    int64
	lastPublishAtMs int64
	pauseTimer      *time.Timer
}

// Inferrer reconstructs DeoVR playback events from Range-request traffic.
// It implements streaming.DeovrObserver and suture.Service.
type Inferrer struct {
	publisher Publisher
	cfg       config.DeovrConfig

	mu     sync.Mutex
	states map[string]*clientState
}

// New creates an Inferrer that publishes through publisher using cfg's
// tunables (spec §4.6: FPS, PublishMinMs, InstantPauseDebounceMs,
// IdlePauseMs, TickMs, ForgetMs).
func New(publisher Publisher, cfg config.DeovrConfig) *Inferrer {
	return &Inferrer{
		publisher: publisher,
		cfg:       cfg,
		states:    make(map[string]*clientState),
	}
}

// StreamStarted handles a new Range request from a VR user agent: first
// stream for this client, a resume of the same media, or a switch to a
// different one.
func (inf *Inferrer) StreamStarted(clientIP, mediaID string) {
	inf.mu.Lock()
	defer inf.mu.Unlock()

	now := NowFunc()
	st, ok := inf.states[clientIP]

	switch {
	case !ok:
		st = &clientState{mediaID: mediaID, startedAtMs: now, lastDataAtMs: now, inFlight: 1}
		inf.states[clientIP] = st
		metrics.SetDeovrActiveStreams(len(inf.states))
		inf.publishLocked(clientIP, st, now, true)
		return
	case st.mediaID != mediaID:
		inf.stopPauseTimerLocked(st)
		st = &clientState{mediaID: mediaID, startedAtMs: now, lastDataAtMs: now, inFlight: 1}
		inf.states[clientIP] = st
		metrics.SetDeovrActiveStreams(len(inf.states))
		inf.publishLocked(clientIP, st, now, true)
		return
	}

	inf.stopPauseTimerLocked(st)
	st.inFlight++
	if st.paused {
		st.startedAtMs = now - st.lastTimeMs
		st.paused = false
	}
	st.lastTimeMs = now - st.startedAtMs
	st.lastDataAtMs = now
	inf.publishLocked(clientIP, st, now, false)
}

// StreamDataObserved refreshes the idle clock for an in-flight stream, and
// resumes a client the sweep loop had force-paused while bytes were still
// trickling through a stalled connection.
func (inf *Inferrer) StreamDataObserved(clientIP, mediaID string) {
	inf.mu.Lock()
	defer inf.mu.Unlock()

	st, ok := inf.states[clientIP]
	if !ok || st.mediaID != mediaID {
		return
	}
	now := NowFunc()
	st.lastDataAtMs = now
	if st.paused {
		inf.stopPauseTimerLocked(st)
		st.startedAtMs = now - st.lastTimeMs
		st.paused = false
		inf.publishLocked(clientIP, st, now, true)
	}
}

// StreamClosed decrements the in-flight counter and, once it reaches zero,
// arms a short debounce before declaring the client paused: DeoVR often
// closes one Range request and immediately opens the next as it follows the
// stream, and that gap must not read as a pause.
func (inf *Inferrer) StreamClosed(clientIP, mediaID string) {
	inf.mu.Lock()
	defer inf.mu.Unlock()

	st, ok := inf.states[clientIP]
	if !ok || st.mediaID != mediaID {
		return
	}
	st.inFlight--
	if st.inFlight < 0 {
		st.inFlight = 0
	}
	if st.inFlight == 0 {
		inf.armPauseDebounceLocked(clientIP, st)
	}
}

func (inf *Inferrer) stopPauseTimerLocked(st *clientState) {
	if st.pauseTimer != nil {
		st.pauseTimer.Stop()
		st.pauseTimer = nil
	}
}

func (inf *Inferrer) armPauseDebounceLocked(clientIP string, st *clientState) {
	inf.stopPauseTimerLocked(st)
	debounce := time.Duration(inf.cfg.InstantPauseDebounceMs) * time.Millisecond
	st.pauseTimer = time.AfterFunc(debounce, func() {
		inf.mu.Lock()
		defer inf.mu.Unlock()
		cur, ok := inf.states[clientIP]
		if !ok || cur != st || st.inFlight > 0 || st.paused {
			return
		}
		now := NowFunc()
		st.lastTimeMs = now - st.startedAtMs
		st.paused = true
		st.pauseTimer = nil
		inf.publishLocked(clientIP, st, now, true)
	})
}

// publishLocked emits a session update for st unless force is false and the
// publish-rate gate (DEOVR_PUBLISH_MIN_MS) hasn't opened yet. Caller must
// hold inf.mu.
func (inf *Inferrer) publishLocked(clientIP string, st *clientState, now int64, force bool) {
	if !force && now-st.lastPublishAtMs < inf.cfg.PublishMinMs {
		return
	}
	st.lastPublishAtMs = now

	fps := inf.cfg.FPS
	if fps <= 0 {
		fps = 30
	}
	frame := st.lastTimeMs * int64(fps) / 1000

	mediaID := st.mediaID
	_, err := inf.publisher.PublishSessionUpdate(models.SessionUpdate{
		SessionID:    "default",
		MediaID:      &mediaID,
		TimeMs:       st.lastTimeMs,
		Paused:       st.paused,
		FPS:          fps,
		Frame:        frame,
		FromClientID: "vr:deovr:" + clientIP,
	})
	if err != nil {
		logging.Warn().Str("client_ip", clientIP).Err(err).Msg("deovr: publish failed")
		return
	}
	state := "playing"
	if st.paused {
		state = "paused"
	}
	metrics.RecordDeovrPublish(state)
}

// Serve runs the tick/idle/forget sweep until ctx is canceled. Intended to
// be registered as a suture.Service on the realtime supervisor layer.
func (inf *Inferrer) Serve(ctx context.Context) error {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			inf.sweep()
		}
	}
}

func (inf *Inferrer) sweep() {
	inf.mu.Lock()
	defer inf.mu.Unlock()

	now := NowFunc()
	for clientIP, st := range inf.states {
		if now-st.lastDataAtMs > inf.cfg.ForgetMs {
			inf.stopPauseTimerLocked(st)
			delete(inf.states, clientIP)
			metrics.SetDeovrActiveStreams(len(inf.states))
			continue
		}
		if st.inFlight <= 0 || st.paused {
			continue
		}
		if now-st.lastDataAtMs >= inf.cfg.IdlePauseMs {
			st.paused = true
			inf.publishLocked(clientIP, st, now, true)
			continue
		}
		if now-st.lastPublishAtMs >= inf.cfg.TickMs {
			st.lastTimeMs = now - st.startedAtMs
			inf.publishLocked(clientIP, st, now, false)
		}
	}
}
