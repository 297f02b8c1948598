// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package catalog

import (
	"testing"

	"github.com/mediaviewer/mediaviewer/internal/models"
)

func seedSearchFixtures(t *testing.T, store *Store) {
	t.Helper()

	items := []models.MediaItem{
		{
			ID: "1", RelPath: "alpha.mp4", Filename: "alpha.mp4", Title: "Alpha Clip",
			Ext: ".mp4", MediaType: models.MediaTypeVideo, SizeBytes: 10, ModifiedMs: 100,
		},
		{
			ID: "2", RelPath: "beta.mp4", Filename: "beta.mp4", Title: "Beta Clip",
			Ext: ".mp4", MediaType: models.MediaTypeVideo, SizeBytes: 10, ModifiedMs: 200,
			IsVR: true,
		},
		{
			ID: "3", RelPath: "gamma.jpg", Filename: "gamma.jpg", Title: "Gamma Photo",
			Ext: ".jpg", MediaType: models.MediaTypeImage, SizeBytes: 10, ModifiedMs: 300,
		},
	}
	for _, item := range items {
		if err := store.Upsert(item); err != nil {
			t.Fatalf("seed upsert %s: %v", item.RelPath, err)
		}
	}
}

func TestSearchQuerySubstringMatchesTitleOrFilename(t *testing.T) {
	store := newTestStore(t)
	seedSearchFixtures(t, store)

	result, err := store.Search(models.SearchQuery{
		Filter: models.MediaFilter{Query: "clip"},
		Sort:   models.SortModified,
		Page:   1, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Total != 2 {
		t.Fatalf("expected 2 matches for 'clip', got %d", result.Total)
	}
}

func TestSearchFiltersByMediaTypeAndVR(t *testing.T) {
	store := newTestStore(t)
	seedSearchFixtures(t, store)

	isVR := true
	result, err := store.Search(models.SearchQuery{
		Filter: models.MediaFilter{IsVR: &isVR},
		Sort:   models.SortModified,
		Page:   1, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Total != 1 || result.Items[0].RelPath != "beta.mp4" {
		t.Fatalf("expected only beta.mp4, got %+v", result.Items)
	}
}

func TestSearchPaginates(t *testing.T) {
	store := newTestStore(t)
	seedSearchFixtures(t, store)

	page1, err := store.Search(models.SearchQuery{Sort: models.SortModified, Direction: models.SortDesc, Page: 1, PageSize: 2})
	if err != nil {
		t.Fatalf("Search page1: %v", err)
	}
	if len(page1.Items) != 2 || page1.Total != 3 {
		t.Fatalf("unexpected page1: %+v", page1)
	}

	page2, err := store.Search(models.SearchQuery{Sort: models.SortModified, Direction: models.SortDesc, Page: 2, PageSize: 2})
	if err != nil {
		t.Fatalf("Search page2: %v", err)
	}
	if len(page2.Items) != 1 {
		t.Fatalf("expected 1 item on page2, got %d", len(page2.Items))
	}
	// Sorted modified desc: gamma(300), beta(200), alpha(100).
	if page1.Items[0].RelPath != "gamma.jpg" || page1.Items[1].RelPath != "beta.mp4" {
		t.Fatalf("unexpected order on page1: %+v", page1.Items)
	}
	if page2.Items[0].RelPath != "alpha.mp4" {
		t.Fatalf("unexpected order on page2: %+v", page2.Items)
	}
}

func TestSearchSortsWithNullsLast(t *testing.T) {
	store := newTestStore(t)
	// No funscript speed set on any fixture, so sorting by speed should not
	// error and should return all rows with NULLs last.
	seedSearchFixtures(t, store)

	result, err := store.Search(models.SearchQuery{Sort: models.SortSpeed, Direction: models.SortAsc, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("Search by speed: %v", err)
	}
	if result.Total != 3 {
		t.Fatalf("expected all 3 rows, got %d", result.Total)
	}
}

func TestSearchDurationRangeFilter(t *testing.T) {
	store := newTestStore(t)
	short := int64(1000)
	long := int64(500000)
	a := sampleItem("short.mp4")
	a.DurationMs = &short
	b := sampleItem("long.mp4")
	b.DurationMs = &long
	if err := store.Upsert(a); err != nil {
		t.Fatal(err)
	}
	if err := store.Upsert(b); err != nil {
		t.Fatal(err)
	}

	max := int64(10000)
	result, err := store.Search(models.SearchQuery{
		Filter: models.MediaFilter{DurationMsMax: &max},
		Sort:   models.SortModified,
		Page:   1, PageSize: 10,
	})
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if result.Total != 1 || result.Items[0].RelPath != "short.mp4" {
		t.Fatalf("expected only short.mp4, got %+v", result.Items)
	}
}
