// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

// Package thumbnail generates and caches JPEG preview frames for catalog
// entries, using ffmpeg the same way internal/streaming's transcode path
// does: a child process piping compressed bytes straight to the caller,
// except here the output is cached to disk instead of streamed once.
package thumbnail

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/mediaviewer/mediaviewer/internal/cache"
	"github.com/mediaviewer/mediaviewer/internal/metrics"
	"github.com/mediaviewer/mediaviewer/internal/models"
)

// seekSeconds is where in a video ffmpeg grabs its preview frame. Far
// enough in to skip black intro frames on most clips, per spec §4.2's
// thumbnail note.
const seekSeconds = "00:00:03"

// Generator produces and caches one JPEG thumbnail per media id.
type Generator struct {
	ffmpegPath string
	cacheDir   string
	failCache  *cache.ThumbFailCache
}

// New creates a Generator. A blank ffmpegPath or cacheDir disables
// generation entirely; CachePath then never exists and Ensure always
// fails, which callers treat as "serve the placeholder".
func New(ffmpegPath, cacheDir string, failCache *cache.ThumbFailCache) *Generator {
	return &Generator{ffmpegPath: ffmpegPath, cacheDir: cacheDir, failCache: failCache}
}

// CachePath returns where mediaID's cached thumbnail lives, regardless of
// whether it has been generated yet.
func (g *Generator) CachePath(mediaID string) string {
	if g.cacheDir == "" {
		return ""
	}
	return filepath.Join(g.cacheDir, mediaID+".jpg")
}

// Ensure returns the path to a ready thumbnail for item, generating it with
// ffmpeg on first request and caching the result. It returns an error
// (without ever panicking or touching the network) whenever generation is
// not possible; the caller is expected to fall back to a placeholder image.
func (g *Generator) Ensure(ctx context.Context, absPath string, item models.MediaItem) (string, error) {
	if g.ffmpegPath == "" || g.cacheDir == "" {
		return "", fmt.Errorf("thumbnail: generation disabled")
	}
	if g.failCache != nil && g.failCache.RecentlyFailed(item.ID) {
		return "", fmt.Errorf("thumbnail: recently failed, skipping retry")
	}

	out := g.CachePath(item.ID)
	if info, err := os.Stat(out); err == nil && info.ModTime().UnixMilli() >= item.ModifiedMs {
		metrics.RecordThumbCacheHit()
		return out, nil
	}
	metrics.RecordThumbCacheMiss()

	if err := os.MkdirAll(g.cacheDir, 0o755); err != nil {
		return "", fmt.Errorf("thumbnail: mkdir cache dir: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()

	args := []string{"-y"}
	if item.MediaType == models.MediaTypeVideo {
		args = append(args, "-ss", seekSeconds)
	}
	args = append(args, "-i", absPath, "-frames:v", "1", "-vf", "scale=320:-1", out)

	cmd := exec.CommandContext(ctx, g.ffmpegPath, args...)
	if err := cmd.Run(); err != nil {
		if g.failCache != nil {
			g.failCache.MarkFailed(item.ID)
		}
		metrics.RecordThumbGenerationFailure()
		return "", fmt.Errorf("thumbnail: ffmpeg: %w", err)
	}

	return out, nil
}
