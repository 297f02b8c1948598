// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package vr

import (
	"io"
	"math"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/mediaviewer/mediaviewer/internal/logging"
	"github.com/mediaviewer/mediaviewer/internal/models"
)

const heresphereVersionHeader = "HereSphere-JSON-Version"

func setHeresphereHeaders(w http.ResponseWriter) {
	w.Header().Set(heresphereVersionHeader, "1")
}

type heresphereLibraryEntry struct {
	Name string   `json:"name"`
	List []string `json:"list"`
}

type heresphereIndex struct {
	Access  int                      `json:"access"`
	Library []heresphereLibraryEntry `json:"library"`
}

func (a *Adapter) handleHeresphereIndex(w http.ResponseWriter, r *http.Request) {
	setHeresphereHeaders(w)
	base := baseURL(r)
	items := a.libraryItems()
	urls := make([]string, 0, len(items))
	for _, item := range items {
		urls = append(urls, base+"/heresphere/video/"+item.ID)
	}
	writeJSON(w, http.StatusOK, heresphereIndex{
		Access: 1,
		Library: []heresphereLibraryEntry{
			{Name: "Library", List: urls},
		},
	})
}

type heresphereScript struct {
	Name string `json:"name"`
	URL  string `json:"url"`
}

type heresphereMediaSource struct {
	Resolution int    `json:"resolution"`
	URL        string `json:"url"`
}

type heresphereMediaEncoding struct {
	Name    string                  `json:"name"`
	Sources []heresphereMediaSource `json:"sources"`
}

type heresphereVideo struct {
	Access         int                       `json:"access"`
	Title          string                    `json:"title"`
	Description    string                    `json:"description"`
	ThumbnailImage string                    `json:"thumbnailImage"`
	EventServer    string                    `json:"eventServer"`
	Duration       int64                     `json:"duration"`
	Projection     string                    `json:"projection"`
	Stereo         string                    `json:"stereo"`
	Fov            int                       `json:"fov"`
	Scripts        []heresphereScript        `json:"scripts,omitempty"`
	Media          []heresphereMediaEncoding `json:"media"`
}

func (a *Adapter) handleHeresphereVideo(w http.ResponseWriter, r *http.Request) {
	setHeresphereHeaders(w)
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
	stereo := "mono"
	switch vrStereo(item) {
	case models.VRStereoSBS:
		stereo = "sbs"
	case models.VRStereoTB:
		stereo = "tb"
	}

	durationMs := int64(0)
	if item.DurationMs != nil {
		durationMs = *item.DurationMs
	}

	video := heresphereVideo{
		Access:         1,
		Title:          item.Title,
		ThumbnailImage: thumbURL(base, item.ID),
		EventServer:    base + "/heresphere/event",
		Duration:       durationMs,
		Projection:     "equirectangular",
		Stereo:         stereo,
		Fov:            int(vrFov(item)),
		Media: []heresphereMediaEncoding{
			{
				Name: "h264",
				Sources: []heresphereMediaSource{
					{Resolution: 1080, URL: streamURL(base, item.ID)},
				},
			},
		},
	}
	if item.HasFunscript {
		video.Scripts = []heresphereScript{
			{Name: item.Filename + ".funscript", URL: funscriptURL(base, item.ID)},
		}
	}

	writeJSON(w, http.StatusOK, video)
	a.publishOpenHint(item.ID, "vr:heresphere")
}

type heresphereEventBody struct {
	ID             string  `json:"id"`
	TimeMs         float64 `json:"time"`
	Event          int     `json:"event"`
	ConnectionKey  string  `json:"connectionKey"`
}

// mediaIDFromHeresphereEventID extracts the media id from the "id" field
// HereSphere echoes back, which is the full /heresphere/video/:id URL it
// was handed rather than a bare id.
func mediaIDFromHeresphereEventID(raw string) string {
	idx := strings.LastIndex(raw, "/heresphere/video/")
	if idx == -1 {
		return raw
	}
	return raw[idx+len("/heresphere/video/"):]
}

// heresphere event codes: 0=paused, 1=playing, 2=stopped/closed, 3=scrub.
func heresphereEventIsPaused(event int) bool {
	return event == 0 || event == 2 || event == 3
}

func (a *Adapter) handleHeresphereEvent(w http.ResponseWriter, r *http.Request) {
	setHeresphereHeaders(w)
	defer r.Body.Close()

	body, err := io.ReadAll(io.LimitReader(r.Body, 1<<16))
	if err != nil {
		http.Error(w, "read failed", http.StatusBadRequest)
		return
	}
	var evt heresphereEventBody
	if err := json.Unmarshal(body, &evt); err != nil {
		http.Error(w, "malformed event body", http.StatusBadRequest)
		return
	}

	mediaID := mediaIDFromHeresphereEventID(evt.ID)
	if mediaID == "" {
		http.Error(w, "missing id", http.StatusBadRequest)
		return
	}

	const fps = 30
	frame := int64(math.Floor(evt.TimeMs / 1000 * fps))
	fromClientID := "vr:heresphere"
	if evt.ConnectionKey != "" {
		fromClientID = "vr:heresphere:" + evt.ConnectionKey
	}

	if a.publisher != nil {
		if _, err := a.publisher.PublishSessionUpdate(models.SessionUpdate{
			SessionID:    "default",
			MediaID:      &mediaID,
			TimeMs:       int64(evt.TimeMs),
			Paused:       heresphereEventIsPaused(evt.Event),
			FPS:          fps,
			Frame:        frame,
			FromClientID: fromClientID,
		}); err != nil {
			logging.Warn().Str("media_id", mediaID).Err(err).Msg("vr: heresphere event publish failed")
		}
	}

	w.WriteHeader(http.StatusNoContent)
}

type heresphereAuth struct {
	Access    int    `json:"access"`
	AuthToken string `json:"auth-token"`
}

func (a *Adapter) handleHeresphereAuth(w http.ResponseWriter, r *http.Request) {
	setHeresphereHeaders(w)
	writeJSON(w, http.StatusOK, heresphereAuth{Access: 1, AuthToken: "local"})
}

type heresphereScanEntry struct {
	Link     string   `json:"link"`
	Title    string   `json:"title"`
	Duration int64    `json:"duration"`
	Tags     []string `json:"tags"`
}

type heresphereScanResponse struct {
	ScanData []heresphereScanEntry `json:"scanData"`
}

func (a *Adapter) handleHeresphereScan(w http.ResponseWriter, r *http.Request) {
	setHeresphereHeaders(w)
	base := baseURL(r)
	items := a.libraryItems()
	entries := make([]heresphereScanEntry, 0, len(items))
	for _, item := range items {
		entries = append(entries, heresphereScanEntry{
			Link:     base + "/heresphere/video/" + item.ID,
			Title:    item.Title,
			Duration: 0,
			Tags:     []string{},
		})
	}
	writeJSON(w, http.StatusOK, heresphereScanResponse{ScanData: entries})
}
