// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package streaming

import "testing"

func TestParseRangeEmptyHeaderServesFullFile(t *testing.T) {
	r, hasRange, err := parseRange("", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if hasRange {
		t.Fatalf("expected hasRange=false for empty header")
	}
	if r.start != 0 || r.end != 999 {
		t.Fatalf("expected full range 0-999, got %+v", r)
	}
}

func TestParseRangeOpenEndedServesToEOF(t *testing.T) {
	r, hasRange, err := parseRange("bytes=500-", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasRange {
		t.Fatalf("expected hasRange=true")
	}
	if r.start != 500 || r.end != 999 {
		t.Fatalf("expected 500-999, got %+v", r)
	}
}

func TestParseRangeSuffixRange(t *testing.T) {
	r, hasRange, err := parseRange("bytes=-500", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !hasRange {
		t.Fatalf("expected hasRange=true")
	}
	if r.start != 500 || r.end != 999 {
		t.Fatalf("expected 500-999, got %+v", r)
	}
}

func TestParseRangeSuffixLargerThanFileClampsToStart(t *testing.T) {
	r, _, err := parseRange("bytes=-5000", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.start != 0 || r.end != 999 {
		t.Fatalf("expected clamped 0-999, got %+v", r)
	}
}

func TestParseRangeEndClampedToFileSize(t *testing.T) {
	r, _, err := parseRange("bytes=0-99999", 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.start != 0 || r.end != 999 {
		t.Fatalf("expected end clamped to 999, got %+v", r)
	}
}

func TestParseRangeStartBeyondSizeIsNotSatisfiable(t *testing.T) {
	_, hasRange, err := parseRange("bytes=1000-1001", 1000)
	if err != ErrRangeNotSatisfiable {
		t.Fatalf("expected ErrRangeNotSatisfiable, got %v", err)
	}
	if !hasRange {
		t.Fatalf("expected hasRange=true even on 416")
	}
}

func TestParseRangeStartAfterEndIsNotSatisfiable(t *testing.T) {
	_, _, err := parseRange("bytes=500-100", 1000)
	if err != ErrRangeNotSatisfiable {
		t.Fatalf("expected ErrRangeNotSatisfiable, got %v", err)
	}
}

func TestParseRangeMultiRangeRejected(t *testing.T) {
	_, _, err := parseRange("bytes=0-100,200-300", 1000)
	if err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange for multi-range, got %v", err)
	}
}

func TestParseRangeMissingBytesPrefixRejected(t *testing.T) {
	_, _, err := parseRange("0-100", 1000)
	if err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestParseRangeMalformedSyntaxRejected(t *testing.T) {
	_, _, err := parseRange("bytes=abc-def", 1000)
	if err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestParseRangeEmptyBothSidesRejected(t *testing.T) {
	_, _, err := parseRange("bytes=-", 1000)
	if err != ErrInvalidRange {
		t.Fatalf("expected ErrInvalidRange, got %v", err)
	}
}

func TestContentRangeHeaderFormat(t *testing.T) {
	got := contentRangeHeader(byteRange{start: 0, end: 99}, 1000)
	want := "bytes 0-99/1000"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}

func TestUnsatisfiableContentRangeHeaderFormat(t *testing.T) {
	got := unsatisfiableContentRangeHeader(1000)
	want := "bytes */1000"
	if got != want {
		t.Fatalf("got %q want %q", got, want)
	}
}
