// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package scanner

import (
	"encoding/json"
	"os"
	"strings"

	"github.com/mediaviewer/mediaviewer/internal/models"
)

// LoadFunscript looks for a "<stem>.funscript" sidecar next to a media file
// and, if present and parseable, returns its contents plus the derived
// action count and average speed per spec §4.2.
func LoadFunscript(mediaPath, ext string) (*models.Funscript, int, float64, bool) {
	sidecarPath := strings.TrimSuffix(mediaPath, ext) + ".funscript"
	data, err := os.ReadFile(sidecarPath)
	if err != nil {
		return nil, 0, 0, false
	}

	var fs models.Funscript
	if err := json.Unmarshal(data, &fs); err != nil {
		return nil, 0, 0, false
	}
	if len(fs.Actions) == 0 {
		return &fs, 0, 0, true
	}

	avgSpeed := averageSpeed(fs.Actions)
	return &fs, len(fs.Actions), avgSpeed, true
}

// averageSpeed computes Σ|Δpos| / Σ|Δt| × 1000, ignoring non-positive Δt,
// per spec §4.2. Result is in percent-per-second.
func averageSpeed(actions []models.FunscriptAction) float64 {
	var sumAbsDeltaPos float64
	var sumDeltaT float64

	for i := 1; i < len(actions); i++ {
		dt := actions[i].At - actions[i-1].At
		if dt <= 0 {
			continue
		}
		dp := actions[i].Pos - actions[i-1].Pos
		if dp < 0 {
			dp = -dp
		}
		sumAbsDeltaPos += float64(dp)
		sumDeltaT += float64(dt)
	}
	if sumDeltaT <= 0 {
		return 0
	}
	return sumAbsDeltaPos / sumDeltaT * 1000
}
