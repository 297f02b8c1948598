// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

// Package models holds the shared data types passed between MediaViewer's
// catalog, sync state store, WebSocket hub, streaming engine and VR adapters.
package models

import "time"

// MediaType classifies a catalog entry by how it is played back.
type MediaType string

const (
	MediaTypeVideo MediaType = "video"
	MediaTypeImage MediaType = "image"
	MediaTypeOther MediaType = "other"
)

// VRFov is the field of view of a VR video.
type VRFov int

const (
	VRFov180 VRFov = 180
	VRFov360 VRFov = 360
)

// VRStereo is the left/right eye layout of a VR video.
type VRStereo string

const (
	VRStereoSBS  VRStereo = "sbs"
	VRStereoTB   VRStereo = "tb"
	VRStereoMono VRStereo = "mono"
)

// MediaItem is the authoritative catalog record for one file under MEDIA_ROOT.
// It is created and updated exclusively by the scanner (C2); every other
// component only reads it.
type MediaItem struct {
	ID       string    `json:"id"`
	RelPath  string    `json:"relPath"`
	Filename string    `json:"filename"`
	Title    string    `json:"title"`
	Ext      string    `json:"ext"`
	MediaType MediaType `json:"mediaType"`

	SizeBytes  int64 `json:"sizeBytes"`
	ModifiedMs int64 `json:"modifiedMs"`

	DurationMs *int64 `json:"durationMs,omitempty"`
	Width      *int   `json:"width,omitempty"`
	Height     *int   `json:"height,omitempty"`

	HasFunscript         bool     `json:"hasFunscript"`
	FunscriptActionCount *int     `json:"funscriptActionCount,omitempty"`
	FunscriptAvgSpeed    *float64 `json:"funscriptAvgSpeed,omitempty"`

	IsVR         bool      `json:"isVr"`
	VRFov        *VRFov    `json:"vrFov,omitempty"`
	VRStereo     *VRStereo `json:"vrStereo,omitempty"`
	VRProjection *string   `json:"vrProjection,omitempty"`
}

// SessionState is the authoritative playback cursor for one session, plus
// the ephemeral scheduling fields that are cleared whenever playback pauses.
type SessionState struct {
	SessionID    string  `json:"sessionId"`
	MediaID      *string `json:"mediaId"`
	TimeMs       int64   `json:"timeMs"`
	Paused       bool    `json:"paused"`
	FPS          int     `json:"fps"`
	Frame        int64   `json:"frame"`
	FromClientID string  `json:"fromClientId"`
	UpdatedAt    int64   `json:"updatedAt"`

	// Ephemeral coordinated-start fields. Never persisted beyond the
	// in-memory session record; cleared whenever Paused is true.
	PlayAt             *string `json:"playAt,omitempty"`
	PlayAtLocalMs      *int64  `json:"playAtLocalMs,omitempty"`
	CapturedAtLocalMs  *int64  `json:"capturedAtLocalMs,omitempty"`
}

// SessionUpdate is the input to Store.UpsertSession: everything a client or
// VR adapter may set on a sync:update.
type SessionUpdate struct {
	SessionID    string
	MediaID      *string
	TimeMs       int64
	Paused       bool
	FPS          int
	Frame        int64
	FromClientID string

	PlayAt            *string
	PlayAtLocalMs     *int64
	CapturedAtLocalMs *int64
}

// ClientPresence describes one connected logical client, which may own
// multiple live WebSocket sockets.
type ClientPresence struct {
	ClientID  string  `json:"clientId"`
	UserAgent string  `json:"userAgent"`
	IPAddress string  `json:"ipAddress"`
	UIView    *string `json:"uiView,omitempty"`
	UIMediaID *string `json:"uiMediaId,omitempty"`
}

// PerClientPlayback is an opaque per-viewer resume cursor; it never
// participates in the broadcast protocol.
type PerClientPlayback struct {
	ClientID  string `json:"clientId"`
	MediaID   string `json:"mediaId"`
	TimeMs    int64  `json:"timeMs"`
	FPS       int    `json:"fps"`
	Frame     int64  `json:"frame"`
	UpdatedAt int64  `json:"updatedAt"`
}

// FunscriptAction is one haptic sample.
type FunscriptAction struct {
	At  int64 `json:"at"`
	Pos int   `json:"pos"`
}

// Funscript is a sidecar haptic script, sorted by At ascending.
type Funscript struct {
	Version  *int              `json:"version,omitempty"`
	Inverted *bool             `json:"inverted,omitempty"`
	Range    *int              `json:"range,omitempty"`
	Actions  []FunscriptAction `json:"actions"`
}

// MediaFilter narrows a catalog search.
type MediaFilter struct {
	Query      string
	MediaType  *MediaType
	HasFunscript *bool
	IsVR       *bool

	DurationMsMin *int64
	DurationMsMax *int64
	AvgSpeedMin   *float64
	AvgSpeedMax   *float64
	WidthMin      *int
	WidthMax      *int
	HeightMin     *int
	HeightMax     *int
}

// SortField enumerates the columns MediaViewer allows sorting by.
type SortField string

const (
	SortModified   SortField = "modified"
	SortTitle      SortField = "title"
	SortFilename   SortField = "filename"
	SortDuration   SortField = "duration"
	SortSpeed      SortField = "speed"
	SortResolution SortField = "resolution"
)

// SortDirection is ascending or descending.
type SortDirection string

const (
	SortAsc  SortDirection = "asc"
	SortDesc SortDirection = "desc"
)

// SearchQuery describes one paginated catalog search.
type SearchQuery struct {
	Filter    MediaFilter
	Sort      SortField
	Direction SortDirection
	Page      int
	PageSize  int
}

// SearchResult is a page of catalog rows plus the total match count.
type SearchResult struct {
	Items      []MediaItem `json:"items"`
	Total      int         `json:"total"`
	Page       int         `json:"page"`
	PageSize   int         `json:"pageSize"`
}

// NowMs returns the current wall-clock time in Unix milliseconds. Centralized
// so tests can reason about it and every component stamps time consistently.
func NowMs() int64 {
	return time.Now().UnixMilli()
}
