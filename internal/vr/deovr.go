// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package vr

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mediaviewer/mediaviewer/internal/logging"
	"github.com/mediaviewer/mediaviewer/internal/models"
)

type deovrScene struct {
	Name string           `json:"name"`
	List []deovrSceneItem `json:"list"`
}

type deovrSceneItem struct {
	Title         string `json:"title"`
	VideoLength   int64  `json:"videoLength"`
	ThumbnailURL  string `json:"thumbnailUrl"`
	VideoURL      string `json:"video_url"`
}

type deovrIndex struct {
	Authorized string       `json:"authorized"`
	Scenes     []deovrScene `json:"scenes"`
}

func (a *Adapter) handleDeovrIndex(w http.ResponseWriter, r *http.Request) {
	base := baseURL(r)
	items := a.libraryItems()
	list := make([]deovrSceneItem, 0, len(items))
	for _, item := range items {
		list = append(list, deovrSceneItem{
			Title:        item.Title,
			VideoLength:  0,
			ThumbnailURL: thumbURL(base, item.ID),
			VideoURL:     streamURL(base, item.ID),
		})
	}
	writeJSON(w, http.StatusOK, deovrIndex{
		Authorized: "0",
		Scenes: []deovrScene{
			{Name: "Library", List: list},
		},
	})
}

type deovrEncoding struct {
	Name         string             `json:"name"`
	VideoSources []deovrVideoSource `json:"videoSources"`
}

type deovrVideoSource struct {
	Resolution int    `json:"resolution"`
	URL        string `json:"url"`
}

type deovrVideo struct {
	ID           int64           `json:"id"`
	Title        string          `json:"title"`
	VideoLength  int64           `json:"videoLength"`
	Is3D         bool            `json:"is3d"`
	ScreenType   string          `json:"screenType"`
	StereoMode   string          `json:"stereoMode"`
	ThumbnailURL string          `json:"thumbnailUrl"`
	Encodings    []deovrEncoding `json:"encodings"`
}

func (a *Adapter) handleDeovrVideo(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	item, ok, err := a.catalog.Get(id)
	if err != nil {
		http.Error(w, "lookup failed", http.StatusInternalServerError)
		return
	}
	if !ok {
		http.Error(w, "not found", http.StatusNotFound)
		return
	}

	base := baseURL(r)
	screenType := "sphere"
	if vrFov(item) == models.VRFov180 {
		screenType = "dome"
	}
	stereoMode := "off"
	switch vrStereo(item) {
	case models.VRStereoSBS:
		stereoMode = "sbs"
	case models.VRStereoTB:
		stereoMode = "tb"
	}

	writeJSON(w, http.StatusOK, deovrVideo{
		ID:           deovrNumericID(item.ID),
		Title:        item.Title,
		VideoLength:  durationSeconds(item),
		Is3D:         true,
		ScreenType:   screenType,
		StereoMode:   stereoMode,
		ThumbnailURL: thumbURL(base, item.ID),
		Encodings: []deovrEncoding{
			{
				Name: "h264",
				VideoSources: []deovrVideoSource{
					{Resolution: 1080, URL: streamURL(base, item.ID)},
				},
			},
		},
	})

	a.publishOpenHint(item.ID, "vr:deovr")
}

// publishOpenHint fires the "just opened this video" hint spec §4.7 asks
// C7 to send ahead of the Range traffic C6 will later refine into real
// heartbeats. Publish failures are logged, never surfaced to the client:
// the JSON response above is what DeoVR/HereSphere actually need.
func (a *Adapter) publishOpenHint(mediaID, fromClientID string) {
	if a.publisher == nil {
		return
	}
	id := mediaID
	if _, err := a.publisher.PublishSessionUpdate(models.SessionUpdate{
		SessionID:    "default",
		MediaID:      &id,
		TimeMs:       0,
		Paused:       false,
		FPS:          30,
		FromClientID: fromClientID,
	}); err != nil {
		logging.Warn().Str("media_id", mediaID).Err(err).Msg("vr: open-hint publish failed")
	}
}
