// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package vr

import "hash/fnv"

// deovrNumericID hashes a catalog id down to a positive 32-bit integer.
// DeoVR's own video JSON expects a numeric id; this repo's catalog ids are
// opaque hex strings, so the per-video endpoint needs a stable, collision-
// tolerant mapping between the two.
func deovrNumericID(id string) int64 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(id))
	sum := h.Sum32()
	return int64(sum &^ (1 << 31))
}
