// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

// Package cache provides in-memory caching: a generic TTL map (Cache) and an
// expirable LRU purpose-built for the thumbnail fail-marker (ThumbFailCache).
package cache

import "time"

// Cacher is the interface Cache implements. It exists so callers can depend
// on an interface rather than the concrete TTL map type.
type Cacher interface {
	Get(key string) (interface{}, bool)
	Set(key string, value interface{})
	SetWithTTL(key string, value interface{}, ttl time.Duration)
	Delete(key string)
	Clear()
	GetStats() Stats
	HitRate() float64
}

// NewTTL creates a new TTL-based cache. Convenience alias for New.
func NewTTL(ttl time.Duration) Cacher {
	return New(ttl)
}

var _ Cacher = (*Cache)(nil)
