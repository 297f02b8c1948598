// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/mediaviewer/mediaviewer/internal/scanner"
)

// RescanTickerService drives the catalog layer's periodic library rescan. It
// is a no-op service when interval is zero, so the supervisor tree can always
// register it without the caller branching on configuration.
type RescanTickerService struct {
	scanner  *scanner.Scanner
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewRescanTickerService wraps scanner to rescan on a fixed interval. A
// zero or negative interval disables the ticker: Serve then just blocks on
// ctx.Done().
func NewRescanTickerService(scanner *scanner.Scanner, interval time.Duration, logger zerolog.Logger) *RescanTickerService {
	return &RescanTickerService{
		scanner:  scanner,
		interval: interval,
		logger:   logger,
		name:     "rescan-ticker",
	}
}

// Serve implements suture.Service.
func (s *RescanTickerService) Serve(ctx context.Context) error {
	if s.interval <= 0 {
		<-ctx.Done()
		return ctx.Err()
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := s.scanner.Rescan(ctx, nil); err != nil {
				s.logger.Warn().Err(err).Msg("periodic rescan failed")
			}
		}
	}
}

// String implements fmt.Stringer.
func (s *RescanTickerService) String() string {
	return s.name
}
