// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mediaviewer/mediaviewer/internal/api"
	"github.com/mediaviewer/mediaviewer/internal/buildinfo"
	"github.com/mediaviewer/mediaviewer/internal/cache"
	"github.com/mediaviewer/mediaviewer/internal/catalog"
	"github.com/mediaviewer/mediaviewer/internal/config"
	"github.com/mediaviewer/mediaviewer/internal/deovr"
	"github.com/mediaviewer/mediaviewer/internal/logging"
	"github.com/mediaviewer/mediaviewer/internal/metrics"
	"github.com/mediaviewer/mediaviewer/internal/scanner"
	"github.com/mediaviewer/mediaviewer/internal/streaming"
	"github.com/mediaviewer/mediaviewer/internal/supervisor"
	"github.com/mediaviewer/mediaviewer/internal/supervisor/services"
	"github.com/mediaviewer/mediaviewer/internal/syncstate"
	"github.com/mediaviewer/mediaviewer/internal/thumbnail"
	"github.com/mediaviewer/mediaviewer/internal/vr"
	ws "github.com/mediaviewer/mediaviewer/internal/websocket"
)

// thumbFailCacheCapacity bounds how many distinct media IDs the thumbnail
// generator remembers as "recently failed" before evicting the oldest.
const thumbFailCacheCapacity = 4096

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	metrics.SetAppInfo(buildinfo.Version, buildinfo.Commit, buildinfo.GoVersion())

	logging.Info().
		Str("media_root", cfg.MediaRoot).
		Str("version", buildinfo.Version).
		Int("port", cfg.Port).
		Msg("starting mediaviewer")

	catalogStore, err := catalog.Open(cfg.DatabaseURL, catalog.DefaultOptions())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to open catalog")
	}
	defer func() {
		if err := catalogStore.Close(); err != nil {
			logging.Error().Err(err).Msg("error closing catalog")
		}
	}()

	syncState := syncstate.New()
	hub := ws.NewHub(syncState)
	deovrInferrer := deovr.New(hub, cfg.Deovr)
	vrAdapter := vr.New(catalogStore, hub)
	streamingEngine := streaming.New(catalogStore, cfg.MediaRoot, cfg.FFMPEGPath, deovrInferrer)

	thumbFailCache := cache.NewThumbFailCache(thumbFailCacheCapacity)
	thumbGenerator := thumbnail.New(cfg.FFMPEGPath, cfg.ThumbCacheDir, thumbFailCache)

	mediaScanner := scanner.New(catalogStore, cfg.MediaRoot, cfg.FFProbePath, 0)

	router := api.NewRouter(api.Deps{
		Catalog:       catalogStore,
		SyncState:     syncState,
		Hub:           hub,
		Scanner:       mediaScanner,
		Streaming:     streamingEngine,
		VR:            vrAdapter,
		Thumbnails:    thumbGenerator,
		MediaRoot:     cfg.MediaRoot,
		ThumbCacheDir: cfg.ThumbCacheDir,
		CORSOrigin:    cfg.CORSOrigin,
		Version:       buildinfo.Version,
	})

	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 0, // range streams and long-poll-style WebSocket upgrades must not be capped
		IdleTimeout:  120 * time.Second,
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.DefaultTreeConfig())
	if err != nil {
		logging.Fatal().Err(err).Msg("failed to create supervisor tree")
	}

	tree.AddCatalogService(services.NewRescanTickerService(
		mediaScanner,
		time.Duration(cfg.RescanIntervalMs)*time.Millisecond,
		logging.Logger(),
	))
	tree.AddRealtimeService(services.NewWebSocketHubService(hub))
	tree.AddRealtimeService(deovrInferrer)
	tree.AddAPIService(services.NewHTTPServerService(httpServer, 10*time.Second))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", httpServer.Addr).Msg("supervisor tree starting")
	errCh := tree.ServeBackground(ctx)

	select {
	case <-ctx.Done():
		logging.Info().Msg("context canceled, waiting for supervisor to finish")
	case err := <-errCh:
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor tree error")
		}
	}

	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("supervisor shutdown error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("service failed to stop within timeout")
	}

	logging.Info().Msg("mediaviewer stopped gracefully")
}
