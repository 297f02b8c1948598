// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package config

import (
	"fmt"
	"path/filepath"
)

// Config holds every tunable MediaViewer reads at startup. Fields map to the
// environment variables in spec §6; see koanf.go for the loading order and
// envTransformFunc for the env-var-to-path mapping.
type Config struct {
	MediaRoot   string `koanf:"media_root"`
	Port        int    `koanf:"port"`
	DatabaseURL string `koanf:"database_url"`

	UseSSL              bool   `koanf:"use_ssl"`
	HTTPSKeyPath        string `koanf:"https_key_path"`
	HTTPSCertPath       string `koanf:"https_cert_path"`
	HTTPSAutoSelfSigned bool   `koanf:"https_auto_self_signed"`

	CORSOrigin    string `koanf:"cors_origin"`
	FFProbePath   string `koanf:"ffprobe_path"`
	FFMPEGPath    string `koanf:"ffmpeg_path"`
	ThumbCacheDir string `koanf:"thumb_cache_dir"`

	// RescanIntervalMs drives the catalog layer's periodic background
	// rescan. Zero disables it; the scanner then only runs on an explicit
	// POST /api/scan.
	RescanIntervalMs int64 `koanf:"rescan_interval_ms"`

	Logging LoggingConfig `koanf:"logging"`
	Deovr   DeovrConfig   `koanf:"deovr"`
}

// LoggingConfig controls internal/logging.Init.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DeovrConfig carries the C6 heartbeat-inferrer constants from spec §4.6 as
// overridable tunables rather than hardcoded literals.
type DeovrConfig struct {
	FPS                    int   `koanf:"fps"`
	PublishMinMs           int64 `koanf:"publish_min_ms"`
	InstantPauseDebounceMs int64 `koanf:"instant_pause_debounce_ms"`
	IdlePauseMs            int64 `koanf:"idle_pause_ms"`
	TickMs                 int64 `koanf:"tick_ms"`
	ForgetMs               int64 `koanf:"forget_ms"`
}

// Validate enforces the one fatal precondition from spec §7: MediaRoot must
// be set and absolute. Everything else in Config has a workable default.
func (c *Config) Validate() error {
	if c.MediaRoot == "" {
		return fmt.Errorf("config: MEDIA_ROOT must be set")
	}
	if !filepath.IsAbs(c.MediaRoot) {
		return fmt.Errorf("config: MEDIA_ROOT must be an absolute path, got %q", c.MediaRoot)
	}
	if c.Port <= 0 || c.Port > 65535 {
		return fmt.Errorf("config: PORT must be between 1 and 65535, got %d", c.Port)
	}
	if c.UseSSL && !c.HTTPSAutoSelfSigned && (c.HTTPSKeyPath == "" || c.HTTPSCertPath == "") {
		return fmt.Errorf("config: USE_SSL requires HTTPS_KEY_PATH and HTTPS_CERT_PATH when HTTPS_AUTO_SELF_SIGNED is disabled")
	}
	if c.RescanIntervalMs < 0 {
		return fmt.Errorf("config: RESCAN_INTERVAL_MS must not be negative, got %d", c.RescanIntervalMs)
	}
	return nil
}
