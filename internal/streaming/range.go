// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

// Package streaming is the Range streaming engine (spec component C5): it
// resolves a catalog media item to its file on disk and serves it with
// explicit single-range HTTP semantics, an H.264 transcode fallback, and a
// hook VR user agents can use to observe playback (consumed by C6).
package streaming

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrInvalidRange is returned by parseRange for anything but a single
// well-formed "bytes=start-end?" range.
var ErrInvalidRange = errors.New("streaming: invalid range header")

// ErrRangeNotSatisfiable means the requested range falls entirely outside
// the file, and the caller should reply 416.
var ErrRangeNotSatisfiable = errors.New("streaming: range not satisfiable")

// byteRange is an inclusive [start, end] byte range, already clamped to a
// known file size.
type byteRange struct {
	start, end int64
}

func (r byteRange) length() int64 { return r.end - r.start + 1 }

// parseRange accepts only the single-range form "bytes=start-end?" per spec
// §4.5; anything else (multi-range, malformed syntax) is ErrInvalidRange.
// A missing header yields (byteRange{0, size-1}, false, nil): the caller
// serves the full file with 200 rather than 206.
func parseRange(header string, size int64) (r byteRange, hasRange bool, err error) {
	if header == "" {
		return byteRange{0, size - 1}, false, nil
	}
	if !strings.HasPrefix(header, "bytes=") {
		return byteRange{}, false, ErrInvalidRange
	}
	spec := strings.TrimPrefix(header, "bytes=")
	if strings.Contains(spec, ",") {
		return byteRange{}, false, ErrInvalidRange
	}

	parts := strings.SplitN(spec, "-", 2)
	if len(parts) != 2 {
		return byteRange{}, false, ErrInvalidRange
	}

	startStr, endStr := strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1])

	var start, end int64
	switch {
	case startStr == "" && endStr == "":
		return byteRange{}, false, ErrInvalidRange
	case startStr == "":
		// Suffix range: "bytes=-500" means the last 500 bytes.
		suffixLen, err := strconv.ParseInt(endStr, 10, 64)
		if err != nil || suffixLen <= 0 {
			return byteRange{}, false, ErrInvalidRange
		}
		start = size - suffixLen
		if start < 0 {
			start = 0
		}
		end = size - 1
	default:
		start, err = strconv.ParseInt(startStr, 10, 64)
		if err != nil || start < 0 {
			return byteRange{}, false, ErrInvalidRange
		}
		if endStr == "" {
			end = size - 1
		} else {
			end, err = strconv.ParseInt(endStr, 10, 64)
			if err != nil {
				return byteRange{}, false, ErrInvalidRange
			}
		}
	}

	if start >= size || start > end {
		return byteRange{}, true, ErrRangeNotSatisfiable
	}
	if end >= size {
		end = size - 1
	}

	return byteRange{start: start, end: end}, true, nil
}

func contentRangeHeader(r byteRange, size int64) string {
	return fmt.Sprintf("bytes %d-%d/%d", r.start, r.end, size)
}

func unsatisfiableContentRangeHeader(size int64) string {
	return fmt.Sprintf("bytes */%d", size)
}
