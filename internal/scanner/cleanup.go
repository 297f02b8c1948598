// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package scanner

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"github.com/mediaviewer/mediaviewer/internal/logging"
)

const cleanupChunkSize = 500

// cleanup reads every known video/image rel_path, stats each with bounded
// concurrency (spec calls for ~32), and deletes rows whose files are gone.
// EACCES/EPERM are treated as "present" to avoid false deletion.
func (s *Scanner) cleanup(ctx context.Context, onProgress ProgressFunc) (int, error) {
	relPaths, err := s.store.AllRelPaths()
	if err != nil {
		return 0, err
	}

	missing := s.findMissing(ctx, relPaths, onProgress)
	if len(missing) == 0 {
		return 0, nil
	}

	removed := 0
	for i := 0; i < len(missing); i += cleanupChunkSize {
		end := i + cleanupChunkSize
		if end > len(missing) {
			end = len(missing)
		}
		chunk := missing[i:end]
		if err := s.store.DeleteByRelPaths(chunk); err != nil {
			return removed, err
		}
		removed += len(chunk)
		s.setProgress(Progress{IsScanning: true, Scanned: removed, Message: "removing vanished files"}, onProgress)
	}
	return removed, nil
}

// findMissing stats every rel_path under a semaphore of size concurrency
// and returns the ones whose file no longer resolves under MediaRoot.
func (s *Scanner) findMissing(ctx context.Context, relPaths []string, onProgress ProgressFunc) []string {
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup
	var mu sync.Mutex
	var missing []string
	checked := 0

	for _, rel := range relPaths {
		if ctx.Err() != nil {
			break
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(rel string) {
			defer wg.Done()
			defer func() { <-sem }()

			absPath := filepath.Join(s.mediaRoot, filepath.FromSlash(rel))
			_, err := os.Stat(absPath)
			present := err == nil || errors.Is(err, os.ErrPermission)

			mu.Lock()
			checked++
			if !present {
				missing = append(missing, rel)
			}
			n := checked
			mu.Unlock()

			if n%50 == 0 {
				s.setProgress(Progress{IsScanning: true, Scanned: n, Message: "checking for vanished files"}, onProgress)
			}
		}(rel)
	}
	wg.Wait()

	if len(missing) > 0 {
		logging.Info().Int("count", len(missing)).Msg("scanner: cleanup found vanished files")
	}
	return missing
}
