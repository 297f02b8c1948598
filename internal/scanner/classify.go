// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package scanner

import (
	"crypto/sha256"
	"fmt"
	"regexp"
	"strings"

	"github.com/mediaviewer/mediaviewer/internal/models"
)

// idForRelPath derives a stable opaque catalog id from a media item's
// relative path, so re-scanning the same file always produces the same id.
func idForRelPath(relPath string) string {
	sum := sha256.Sum256([]byte(relPath))
	return fmt.Sprintf("%x", sum[:16])
}

var vrTokenPattern = regexp.MustCompile(`(?i)(^|[/_.\-])(vr|180|360|vr180|vr360|lr|rl|sbs|3dh|tb|bt|ou|overunder|3dv)([/_.\-]|$)`)

var compositeSBSPattern = regexp.MustCompile(`(?i)_lrf_full_sbs`)

// classifyVR sets item.IsVR/VRFov/VRStereo/VRProjection per spec §4.2: the
// probe's side-data wins when present; the path/filename token heuristic is
// only consulted when the probe did not already flag the item as VR.
func classifyVR(item *models.MediaItem, probe probeResult, relPath string) {
	if probe.sideDataVR {
		item.IsVR = true
		fov := probe.fov
		item.VRFov = &fov
		if probe.stereo != "" {
			stereo := probe.stereo
			item.VRStereo = &stereo
		}
		if probe.projection != "" {
			proj := probe.projection
			item.VRProjection = &proj
		}
		return
	}

	if item.Width != nil && item.Height != nil {
		if isVR, fov := dimensionHeuristic(*item.Width, *item.Height); isVR {
			item.IsVR = true
			item.VRFov = &fov
			return
		}
	}

	if isVR, stereo := pathTokenHeuristic(relPath); isVR {
		item.IsVR = true
		fov := models.VRFov360
		if strings.Contains(strings.ToLower(relPath), "180") {
			fov = models.VRFov180
		}
		item.VRFov = &fov
		if stereo != "" {
			s := stereo
			item.VRStereo = &s
		}
	}
}

// dimensionHeuristic implements spec §4.2 (c): ratio ≈ 2:1 and frame at
// least 3000x1500 → 360; ratio ≈ 1:1 and frame at least 2500x2500 → 180.
func dimensionHeuristic(width, height int) (bool, models.VRFov) {
	if height == 0 {
		return false, 0
	}
	ratio := float64(width) / float64(height)
	switch {
	case approx(ratio, 2.0, 0.05) && width >= 3000 && height >= 1500:
		return true, models.VRFov360
	case approx(ratio, 1.0, 0.05) && width >= 2500 && height >= 2500:
		return true, models.VRFov180
	default:
		return false, 0
	}
}

func approx(v, target, tolerance float64) bool {
	diff := v - target
	if diff < 0 {
		diff = -diff
	}
	return diff <= tolerance
}

// pathTokenHeuristic implements spec §4.2 (d): word-boundary tokens in the
// path or filename, plus the "_LRF_Full_SBS" composite token.
func pathTokenHeuristic(relPath string) (bool, models.VRStereo) {
	if compositeSBSPattern.MatchString(relPath) {
		return true, models.VRStereoSBS
	}
	if !vrTokenPattern.MatchString(relPath) {
		return false, ""
	}
	return true, InferStereoFromTokens(relPath)
}

// InferStereoFromTokens implements the FOV/stereo inference rule used both
// by the scanner's path heuristic and by the VR adapters (C7) when a
// catalog row has no stored stereo value.
func InferStereoFromTokens(s string) models.VRStereo {
	lower := strings.ToLower(s)
	switch {
	case containsAny(lower, "sbs", "lr", "rl", "3dh"):
		return models.VRStereoSBS
	case containsAny(lower, "tb", "bt", "ou", "overunder", "3dv"):
		return models.VRStereoTB
	default:
		return models.VRStereoMono
	}
}

// InferFovFromTokens implements spec §4.7's FOV fallback: explicit 180/360
// tokens win, otherwise VR defaults to a full 360 sphere.
func InferFovFromTokens(s string) models.VRFov {
	lower := strings.ToLower(s)
	switch {
	case containsAny(lower, "180", "vr180"):
		return models.VRFov180
	case containsAny(lower, "360", "vr360"):
		return models.VRFov360
	default:
		return models.VRFov360
	}
}

func containsAny(s string, tokens ...string) bool {
	for _, t := range tokens {
		if strings.Contains(s, t) {
			return true
		}
	}
	return false
}
