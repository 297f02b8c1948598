// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

// Package vr implements the DeoVR and HereSphere adapters (spec component
// C7): two root-level HTTP groups that translate the catalog into each
// client's native JSON dialect and publish opening hints through C3/C4
// ahead of the actual Range-driven playback C5/C6 reconstruct.
package vr
