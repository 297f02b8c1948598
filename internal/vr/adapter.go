// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package vr

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/mediaviewer/mediaviewer/internal/logging"
	"github.com/mediaviewer/mediaviewer/internal/models"
	"github.com/mediaviewer/mediaviewer/internal/scanner"
)

// libraryListLimit caps VR library listings at the 1,000 most-recently
// modified videos per spec §4.7.
const libraryListLimit = 1000

// CatalogReader is the subset of catalog.Store the VR adapters need.
type CatalogReader interface {
	Get(id string) (models.MediaItem, bool, error)
	ListVR(limit int, orderBy models.SortField) ([]models.MediaItem, error)
}

// SessionPublisher lets C7 publish an opening hint ahead of the Range
// traffic C5/C6 will observe once playback actually begins.
type SessionPublisher interface {
	PublishSessionUpdate(models.SessionUpdate) (models.SessionState, error)
}

// Adapter serves both the DeoVR and HereSphere JSON dialects over the same
// catalog.
type Adapter struct {
	catalog   CatalogReader
	publisher SessionPublisher
}

// New creates an Adapter backed by catalog and publisher.
func New(catalog CatalogReader, publisher SessionPublisher) *Adapter {
	return &Adapter{catalog: catalog, publisher: publisher}
}

// Mount attaches every DeoVR and HereSphere route to r, at root level so
// DeoVR/HereSphere's fixed, unconfigurable paths resolve exactly as each
// client expects.
func (a *Adapter) Mount(r chi.Router) {
	r.HandleFunc("/deovr", a.handleDeovrIndex)
	r.HandleFunc("/deovr/video/{id}", a.handleDeovrVideo)

	r.HandleFunc("/heresphere", a.handleHeresphereIndex)
	r.HandleFunc("/heresphere/video/{id}", a.handleHeresphereVideo)
	r.Post("/heresphere/event", a.handleHeresphereEvent)
	r.HandleFunc("/heresphere/auth", a.handleHeresphereAuth)
	r.HandleFunc("/heresphere/scan", a.handleHeresphereScan)
}

func (a *Adapter) libraryItems() []models.MediaItem {
	items, err := a.catalog.ListVR(libraryListLimit, models.SortModified)
	if err != nil {
		logging.Warn().Err(err).Msg("vr: listing VR library failed")
		return nil
	}
	return items
}

// vrFov returns the item's stored FOV, falling back to the filename/path
// token heuristic spec §4.7 shares with the scanner's own classifier.
func vrFov(item models.MediaItem) models.VRFov {
	if item.VRFov != nil {
		return *item.VRFov
	}
	return scanner.InferFovFromTokens(item.RelPath)
}

// vrStereo returns the item's stored stereo layout, falling back to the
// same token heuristic the scanner uses when classifying on disk.
func vrStereo(item models.MediaItem) models.VRStereo {
	if item.VRStereo != nil {
		return *item.VRStereo
	}
	return scanner.InferStereoFromTokens(item.RelPath)
}

func durationSeconds(item models.MediaItem) int64 {
	if item.DurationMs == nil {
		return 0
	}
	return (*item.DurationMs + 500) / 1000
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
