// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where a config file is searched for, in
// priority order. The first one found wins.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/mediaviewer/config.yaml",
	"/etc/mediaviewer/config.yml",
}

// ConfigPathEnvVar overrides the config file search with an explicit path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns the struct-default layer applied before the config
// file and environment variables.
func defaultConfig() *Config {
	return &Config{
		MediaRoot:           "/media",
		Port:                3000,
		DatabaseURL:         "",
		UseSSL:              false,
		HTTPSKeyPath:        "",
		HTTPSCertPath:       "",
		HTTPSAutoSelfSigned: true,
		CORSOrigin:          "*",
		FFProbePath:         "ffprobe",
		FFMPEGPath:          "ffmpeg",
		ThumbCacheDir:       "/tmp/mediaviewer/thumbs",
		RescanIntervalMs:    0,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Deovr: DeovrConfig{
			FPS:                    30,
			PublishMinMs:           750,
			InstantPauseDebounceMs: 125,
			IdlePauseMs:            650,
			TickMs:                 1000,
			ForgetMs:               60_000,
		},
	}
}

// LoadWithKoanf loads configuration from three layered sources, in increasing
// order of precedence:
//  1. Struct defaults (defaultConfig)
//  2. An optional YAML config file
//  3. Environment variables
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if configPath := findConfigFile(); configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	for key, raw := range boolEnvOverrides() {
		if raw == "" {
			continue
		}
		v, err := parseBoolish(raw)
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", key, err)
		}
		if err := k.Set(envTransformFunc(key), v); err != nil {
			return nil, fmt.Errorf("failed to set %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// findConfigFile searches CONFIG_PATH, then DefaultConfigPaths, for a file
// that exists. Returns "" if none is found, which is not an error: a config
// file is optional.
func findConfigFile() string {
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// boolEnvKeys names every boolean-ish environment variable that must go
// through parseBoolish instead of koanf's built-in bool coercion, which only
// understands strconv.ParseBool's token set and not spec §6's wider one
// (on/off, yes/no).
var boolEnvKeys = []string{"USE_SSL", "HTTPS_AUTO_SELF_SIGNED", "LOG_CALLER"}

func boolEnvOverrides() map[string]string {
	out := make(map[string]string, len(boolEnvKeys))
	for _, key := range boolEnvKeys {
		out[key] = os.Getenv(key)
	}
	return out
}

// envTransformFunc maps a flat uppercase environment variable name to its
// koanf dot path. MediaViewer's config is mostly flat, with logging and DeoVR
// tunables nested one level.
func envTransformFunc(key string) string {
	key = strings.ToUpper(key)
	if mapped, ok := envMappings[key]; ok {
		return mapped
	}
	return strings.ToLower(key)
}

var envMappings = map[string]string{
	"MEDIA_ROOT":             "media_root",
	"PORT":                   "port",
	"DATABASE_URL":           "database_url",
	"USE_SSL":                "use_ssl",
	"HTTPS_KEY_PATH":         "https_key_path",
	"HTTPS_CERT_PATH":        "https_cert_path",
	"HTTPS_AUTO_SELF_SIGNED": "https_auto_self_signed",
	"CORS_ORIGIN":            "cors_origin",
	"FFPROBE_PATH":           "ffprobe_path",
	"FFMPEG_PATH":            "ffmpeg_path",
	"MV_THUMB_CACHE_DIR":     "thumb_cache_dir",
	"RESCAN_INTERVAL_MS":     "rescan_interval_ms",

	"LOG_LEVEL":  "logging.level",
	"LOG_FORMAT": "logging.format",
	"LOG_CALLER": "logging.caller",

	"DEOVR_FPS":                        "deovr.fps",
	"DEOVR_PUBLISH_MIN_MS":             "deovr.publish_min_ms",
	"DEOVR_INSTANT_PAUSE_DEBOUNCE_MS":  "deovr.instant_pause_debounce_ms",
	"DEOVR_IDLE_PAUSE_MS":              "deovr.idle_pause_ms",
	"DEOVR_TICK_MS":                    "deovr.tick_ms",
	"DEOVR_FORGET_MS":                  "deovr.forget_ms",
}

// parseBoolish parses the boolean-ish token set spec §6 promises for USE_SSL
// and friends: 0/1/true/false/yes/no/on/off, case-insensitive.
// strconv.ParseBool only covers a subset (0/1/t/f/true/false/T/F/TRUE/FALSE),
// so the wider spec-mandated set needs its own parser.
func parseBoolish(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	default:
		return false, fmt.Errorf("config: %q is not a recognized boolean (want one of 0/1/true/false/yes/no/on/off)", value)
	}
}
