// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"time"

	"github.com/mediaviewer/mediaviewer/internal/models"
)

// probeResult carries the subset of ffprobe's output the scanner cares
// about: basic stream geometry plus any VR side-data.
type probeResult struct {
	durationMs *int64
	width      *int
	height     *int

	sideDataVR bool
	fov        models.VRFov
	stereo     models.VRStereo
	projection string
}

type ffprobeOutput struct {
	Format struct {
		Duration string `json:"duration"`
	} `json:"format"`
	Streams []struct {
		CodecType string `json:"codec_type"`
		Width     int    `json:"width"`
		Height    int    `json:"height"`
		SideDataList []struct {
			SideDataType string  `json:"side_data_type"`
			Projection   string  `json:"projection"`
			BoundLeft    float64 `json:"bound_left"`
			BoundRight   float64 `json:"bound_right"`
			BoundTop     float64 `json:"bound_top"`
			BoundBottom  float64 `json:"bound_bottom"`
			StereoMode   string  `json:"stereo_mode"`
		} `json:"side_data_list"`
	} `json:"streams"`
}

// probe invokes ffprobe on path and extracts width/height/duration plus any
// spherical or stereo3d side-data per spec §4.2 (a)/(b).
func (s *Scanner) probe(path string) (probeResult, error) {
	if s.ffprobe == "" {
		return probeResult{}, fmt.Errorf("ffprobe path not configured")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.ffprobe,
		"-v", "quiet",
		"-print_format", "json",
		"-show_format",
		"-show_streams",
		path,
	)
	out, err := cmd.Output()
	if err != nil {
		return probeResult{}, fmt.Errorf("ffprobe: %w", err)
	}

	var parsed ffprobeOutput
	if err := json.Unmarshal(out, &parsed); err != nil {
		return probeResult{}, fmt.Errorf("ffprobe: parse json: %w", err)
	}

	var result probeResult
	if parsed.Format.Duration != "" {
		if seconds, err := strconv.ParseFloat(parsed.Format.Duration, 64); err == nil {
			ms := int64(seconds * 1000)
			result.durationMs = &ms
		}
	}

	for _, stream := range parsed.Streams {
		if stream.CodecType != "video" {
			continue
		}
		if result.width == nil && stream.Width > 0 {
			w := stream.Width
			result.width = &w
		}
		if result.height == nil && stream.Height > 0 {
			h := stream.Height
			result.height = &h
		}
		for _, sd := range stream.SideDataList {
			switch sd.SideDataType {
			case "Spherical Mapping":
				result.sideDataVR = true
				result.projection = sd.Projection
				if sd.BoundRight-sd.BoundLeft <= 0.75 {
					result.fov = models.VRFov180
				} else {
					result.fov = models.VRFov360
				}
				if sd.StereoMode != "" {
					result.stereo = stereoFromFFprobe(sd.StereoMode)
				}
			case "Stereo 3D":
				result.sideDataVR = true
				if result.fov == 0 {
					result.fov = models.VRFov360
				}
				if sd.StereoMode != "" {
					result.stereo = stereoFromFFprobe(sd.StereoMode)
				}
			}
		}
	}

	return result, nil
}

func stereoFromFFprobe(mode string) models.VRStereo {
	switch mode {
	case "sbs", "side_by_side":
		return models.VRStereoSBS
	case "tb", "top_bottom":
		return models.VRStereoTB
	default:
		return models.VRStereoMono
	}
}
