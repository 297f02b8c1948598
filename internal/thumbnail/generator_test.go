// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package thumbnail

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/mediaviewer/mediaviewer/internal/cache"
	"github.com/mediaviewer/mediaviewer/internal/models"
)

func TestEnsureDisabledWithoutFFMPEGPath(t *testing.T) {
	g := New("", t.TempDir(), nil)
	_, err := g.Ensure(context.Background(), "/nonexistent.mp4", models.MediaItem{ID: "x"})
	if err == nil {
		t.Fatal("expected error when ffmpeg path is unset")
	}
}

func TestEnsureSkipsRecentlyFailed(t *testing.T) {
	failCache := cache.NewThumbFailCache(16)
	failCache.MarkFailed("x")

	g := New("/usr/bin/ffmpeg", t.TempDir(), failCache)
	_, err := g.Ensure(context.Background(), "/nonexistent.mp4", models.MediaItem{ID: "x"})
	if err == nil {
		t.Fatal("expected error for a recently-failed media id")
	}
}

func TestCachePathEmptyWithoutCacheDir(t *testing.T) {
	g := New("/usr/bin/ffmpeg", "", nil)
	if got := g.CachePath("x"); got != "" {
		t.Fatalf("expected empty cache path, got %q", got)
	}
}

func TestCachePathJoinsCacheDirAndID(t *testing.T) {
	dir := t.TempDir()
	g := New("/usr/bin/ffmpeg", dir, nil)
	want := filepath.Join(dir, "x.jpg")
	if got := g.CachePath("x"); got != want {
		t.Fatalf("expected %q, got %q", want, got)
	}
}
