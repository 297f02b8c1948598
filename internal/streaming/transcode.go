// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package streaming

import (
	"context"
	"io"
	"net/http"
	"os/exec"

	"github.com/mediaviewer/mediaviewer/internal/logging"
	"github.com/mediaviewer/mediaviewer/internal/metrics"
)

// serveTranscode answers ?transcode=h264 by piping ffmpeg's stdout straight
// into the response. There is no Content-Length and no Accept-Ranges: the
// output is a fragmented MP4 the client must play forward-only. The child
// is killed the moment the request context is done, whether that's a normal
// finish or the client hanging up mid-stream.
func (e *Engine) serveTranscode(w http.ResponseWriter, r *http.Request, absPath, clientIP, mediaID string, observer DeovrObserver) {
	if e.ffmpegPath == "" {
		http.Error(w, "transcoding not available", http.StatusServiceUnavailable)
		return
	}

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	cmd := exec.CommandContext(ctx, e.ffmpegPath,
		"-i", absPath,
		"-c:v", "libx264",
		"-preset", "veryfast",
		"-crf", "23",
		"-pix_fmt", "yuv420p",
		"-c:a", "aac",
		"-b:a", "160k",
		"-movflags", "frag_keyframe+empty_moov+default_base_moof",
		"-f", "mp4",
		"pipe:1",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		http.Error(w, "transcode setup failed", http.StatusInternalServerError)
		return
	}
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		logging.Warn().Str("path", absPath).Err(err).Msg("streaming: ffmpeg start failed")
		http.Error(w, "transcode failed to start", http.StatusInternalServerError)
		return
	}

	header := w.Header()
	header.Set("Content-Type", "video/mp4")
	header.Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	metrics.RecordStreamRangeRequest("transcode")

	dst := observingWriter{w: w, clientIP: clientIP, mediaID: mediaID, observer: observer}
	n, copyErr := io.Copy(dst, stdout)
	metrics.RecordStreamBytes("transcode", n)

	waitErr := cmd.Wait()
	if copyErr != nil && ctx.Err() == nil {
		logging.Warn().Str("path", absPath).Err(copyErr).Msg("streaming: transcode copy failed")
	}
	if waitErr != nil && ctx.Err() == nil {
		logging.Warn().Str("path", absPath).Err(waitErr).Msg("streaming: ffmpeg exited with error")
	}
}
