// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package vr

import (
	"net/http"
	"strings"
)

// baseURL reconstructs the externally visible scheme+host for r, honoring
// X-Forwarded-Proto/X-Forwarded-Host when the server sits behind a reverse
// proxy. Every JSON response in this package embeds absolute URLs built
// from this, since VR clients never resolve relative ones.
func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	if proto := r.Header.Get("X-Forwarded-Proto"); proto != "" {
		scheme = strings.TrimSpace(strings.Split(proto, ",")[0])
	}

	host := r.Host
	if fwdHost := r.Header.Get("X-Forwarded-Host"); fwdHost != "" {
		host = strings.TrimSpace(strings.Split(fwdHost, ",")[0])
	}

	return scheme + "://" + host
}

func streamURL(base, id string) string {
	return base + "/api/media/" + id + "/stream"
}

func thumbURL(base, id string) string {
	return base + "/api/media/" + id + "/thumb"
}

func funscriptURL(base, id string) string {
	return base + "/api/media/" + id + "/funscript"
}
