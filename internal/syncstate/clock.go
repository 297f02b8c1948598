// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package syncstate

import "time"

func defaultNow() int64 {
	return time.Now().UnixMilli()
}
