// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

// Package scanner walks the media root, probes and classifies each file,
// and keeps the catalog (C1) in sync with what is actually on disk. It is
// the catalog's only writer.
package scanner

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"

	"github.com/mediaviewer/mediaviewer/internal/catalog"
	"github.com/mediaviewer/mediaviewer/internal/logging"
	"github.com/mediaviewer/mediaviewer/internal/metrics"
	"github.com/mediaviewer/mediaviewer/internal/models"
)

// ErrScanBusy is returned by Rescan when another scan is already running.
var ErrScanBusy = errors.New("scanner: a scan is already in progress")

var videoExts = map[string]bool{
	".mp4": true, ".mov": true, ".mkv": true, ".webm": true, ".avi": true,
}

var imageExts = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".gif": true, ".webp": true, ".bmp": true,
}

// Progress describes in-flight scan state for the HTTP progress endpoint.
type Progress struct {
	IsScanning bool   `json:"isScanning"`
	Scanned    int    `json:"scanned"`
	Message    string `json:"message"`
}

// ProgressFunc is invoked roughly every 10 files during the walk, and
// periodically during cleanup.
type ProgressFunc func(Progress)

// Scanner owns the single-flight rescan operation over MediaRoot.
type Scanner struct {
	store       *catalog.Store
	mediaRoot   string
	ffprobe     string
	concurrency int

	scanning atomic.Bool
	mu       sync.Mutex
	progress Progress
}

// New creates a Scanner rooted at mediaRoot, using ffprobePath to invoke
// ffprobe for video metadata/VR hints. concurrency bounds the cleanup
// pass's stat fan-out (spec calls for ~32).
func New(store *catalog.Store, mediaRoot, ffprobePath string, concurrency int) *Scanner {
	if concurrency <= 0 {
		concurrency = 32
	}
	return &Scanner{
		store:       store,
		mediaRoot:   mediaRoot,
		ffprobe:     ffprobePath,
		concurrency: concurrency,
	}
}

// Progress returns a snapshot of the current (or most recent) scan state.
func (s *Scanner) Progress() Progress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

func (s *Scanner) setProgress(p Progress, onProgress ProgressFunc) {
	s.mu.Lock()
	s.progress = p
	s.mu.Unlock()
	if onProgress != nil {
		onProgress(p)
	}
}

// Rescan walks MediaRoot, upserts every discovered media file into the
// catalog, and deletes rows whose files have vanished. Only one scan may run
// at a time; a concurrent call returns ErrScanBusy.
func (s *Scanner) Rescan(ctx context.Context, onProgress ProgressFunc) error {
	if !s.scanning.CompareAndSwap(false, true) {
		return ErrScanBusy
	}
	scanID := uuid.NewString()
	started := time.Now()
	scanned := 0
	defer func() {
		s.scanning.Store(false)
		metrics.RecordScan(time.Since(started), scanned)
	}()

	s.setProgress(Progress{IsScanning: true, Message: "walking media root"}, onProgress)
	logging.Info().Str("scan_id", scanID).Str("media_root", s.mediaRoot).Msg("scanner: rescan started")

	walkErr := filepath.WalkDir(s.mediaRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			logging.Warn().Str("path", path).Err(err).Msg("scanner: walk error")
			return nil
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if d.IsDir() {
			return nil
		}
		if err := s.scanOne(path); err != nil {
			metrics.RecordScanError("scan_one")
			logging.Warn().Str("path", path).Err(err).Msg("scanner: skipping file")
			return nil
		}
		scanned++
		if scanned%10 == 0 {
			s.setProgress(Progress{IsScanning: true, Scanned: scanned, Message: fmt.Sprintf("scanned %d files", scanned)}, onProgress)
		}
		return nil
	})
	if walkErr != nil && !errors.Is(walkErr, context.Canceled) {
		s.setProgress(Progress{IsScanning: false, Scanned: scanned, Message: walkErr.Error()}, onProgress)
		return fmt.Errorf("scanner: walk: %w", walkErr)
	}

	s.setProgress(Progress{IsScanning: true, Scanned: scanned, Message: "cleaning up vanished files"}, onProgress)
	removed, err := s.cleanup(ctx, onProgress)
	if err != nil {
		s.setProgress(Progress{IsScanning: false, Scanned: scanned, Message: err.Error()}, onProgress)
		return fmt.Errorf("scanner: cleanup: %w", err)
	}

	s.setProgress(Progress{IsScanning: false, Scanned: scanned, Message: "scan complete"}, onProgress)
	logging.Info().
		Str("scan_id", scanID).
		Int("scanned", scanned).
		Int("removed", removed).
		Dur("elapsed", time.Since(started)).
		Msg("scanner: rescan finished")
	return nil
}

// RescanOne re-probes and re-classifies a single file identified by its
// relative path, upserts the result, and returns the refreshed catalog
// record. Used by the on-demand probe endpoint, where a viewer wants fresh
// metadata for one file without waiting on a full library walk.
func (s *Scanner) RescanOne(relPath string) (models.MediaItem, error) {
	absPath := filepath.Join(s.mediaRoot, filepath.FromSlash(relPath))
	if err := s.scanOne(absPath); err != nil {
		return models.MediaItem{}, err
	}
	item, ok, err := s.store.GetByRelPath(filepath.ToSlash(relPath))
	if err != nil {
		return models.MediaItem{}, err
	}
	if !ok {
		return models.MediaItem{}, fmt.Errorf("scanner: %s vanished during re-probe", relPath)
	}
	return item, nil
}

// scanOne stats, probes, and upserts a single file. Non-media extensions
// and unreadable sidecars are skipped, never fatal, per spec §7.
func (s *Scanner) scanOne(absPath string) error {
	ext := strings.ToLower(filepath.Ext(absPath))
	mediaType := classifyExt(ext)
	if mediaType == models.MediaTypeOther {
		return nil
	}

	relPath, err := filepath.Rel(s.mediaRoot, absPath)
	if err != nil {
		return fmt.Errorf("rel path: %w", err)
	}
	relPath = filepath.ToSlash(relPath)
	if strings.Contains(relPath, "..") {
		return fmt.Errorf("rejecting path escaping media root: %s", relPath)
	}

	info, err := os.Stat(absPath)
	if err != nil {
		return fmt.Errorf("stat: %w", err)
	}

	filename := filepath.Base(absPath)
	item := models.MediaItem{
		ID:         idForRelPath(relPath),
		RelPath:    relPath,
		Filename:   filename,
		Title:      strings.TrimSuffix(filename, ext),
		Ext:        ext,
		MediaType:  mediaType,
		SizeBytes:  info.Size(),
		ModifiedMs: info.ModTime().UnixMilli(),
	}

	var probe probeResult
	if mediaType == models.MediaTypeVideo {
		p, err := s.probe(absPath)
		if err != nil {
			logging.Warn().Str("path", relPath).Err(err).Msg("scanner: ffprobe failed, continuing without metadata")
		} else {
			probe = p
			item.DurationMs = p.durationMs
			item.Width = p.width
			item.Height = p.height
		}
	}

	classifyVR(&item, probe, relPath)

	if _, actionCount, avgSpeed, ok := LoadFunscript(absPath, ext); ok {
		item.HasFunscript = true
		item.FunscriptActionCount = &actionCount
		item.FunscriptAvgSpeed = &avgSpeed
	}

	if err := s.store.Upsert(item); err != nil {
		return fmt.Errorf("upsert: %w", err)
	}
	logging.Debug().Str("rel_path", relPath).Str("size", humanize.Bytes(uint64(info.Size()))).Msg("scanner: upserted item")
	return nil
}

func classifyExt(ext string) models.MediaType {
	switch {
	case videoExts[ext]:
		return models.MediaTypeVideo
	case imageExts[ext]:
		return models.MediaTypeImage
	default:
		return models.MediaTypeOther
	}
}
