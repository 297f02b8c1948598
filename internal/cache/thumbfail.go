// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package cache

import (
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
)

// ThumbFailTTL is how long a thumbnail generation failure is remembered
// before the next request is allowed to retry generation, per spec §7.
const ThumbFailTTL = 15 * time.Minute

// ThumbFailCache remembers media ids whose thumbnail generation recently
// failed, so repeated requests for the same broken file don't each pay the
// cost of re-invoking ffmpeg only to fail again.
type ThumbFailCache struct {
	lru *lru.LRU[string, time.Time]
}

// NewThumbFailCache creates a cache holding up to capacity failure markers,
// each expiring ThumbFailTTL after it was recorded.
func NewThumbFailCache(capacity int) *ThumbFailCache {
	return &ThumbFailCache{lru: lru.NewLRU[string, time.Time](capacity, nil, ThumbFailTTL)}
}

// MarkFailed records that thumbnail generation for mediaID just failed.
func (c *ThumbFailCache) MarkFailed(mediaID string) {
	c.lru.Add(mediaID, time.Now())
}

// RecentlyFailed reports whether mediaID's thumbnail failed within the TTL
// window and generation should be skipped.
func (c *ThumbFailCache) RecentlyFailed(mediaID string) bool {
	_, ok := c.lru.Get(mediaID)
	return ok
}

// Forget clears a failure marker, letting the next request retry
// immediately.
func (c *ThumbFailCache) Forget(mediaID string) {
	c.lru.Remove(mediaID)
}
