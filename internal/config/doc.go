// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

// Package config loads Config from three layered sources, in increasing
// order of precedence: struct defaults, an optional YAML file, and
// environment variables. Call LoadWithKoanf at startup; Config.Validate
// rejects a missing or relative MEDIA_ROOT, a PORT outside 1-65535, USE_SSL
// without cert paths when HTTPS_AUTO_SELF_SIGNED is off, and a negative
// RESCAN_INTERVAL_MS.
package config
