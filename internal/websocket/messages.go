// MediaViewer - multi-client VR-aware media playback sync server
// Copyright 2026 The MediaViewer Authors
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/mediaviewer/mediaviewer

package websocket

import (
	"github.com/goccy/go-json"

	"github.com/mediaviewer/mediaviewer/internal/models"
)

// Inbound message type discriminants.
const (
	inTypeHello        = "sync:hello"
	inTypeClientStatus = "client:status"
	inTypeSyncUpdate   = "sync:update"
	inTypePing         = "ws:ping"
)

// Outbound message type discriminants.
const (
	outTypeHello     = "hello"
	outTypeSyncState = "sync:state"
	outTypePong      = "ws:pong"
)

// envelope is the union of every field any inbound message may carry. Fields
// absent from the wire payload decode to their zero value; mediaId and
// uiMediaId use json.RawMessage so handlers can tell "omitted" from
// "explicit null" before collapsing both to a nil *string.
type envelope struct {
	Type string `json:"type"`

	ClientID  string `json:"clientId"`
	SessionID string `json:"sessionId"`

	UIView    *string         `json:"uiView"`
	UIMediaID json.RawMessage `json:"uiMediaId"`

	MediaID json.RawMessage `json:"mediaId"`
	TimeMs  int64           `json:"timeMs"`
	Paused  bool            `json:"paused"`
	FPS     int             `json:"fps"`
	Frame   int64           `json:"frame"`

	PlayAt            *string `json:"playAt"`
	PlayAtLocalMs     *int64  `json:"playAtLocalMs"`
	CapturedAtLocalMs *int64  `json:"capturedAtLocalMs"`

	ToClientID         string `json:"toClientId"`
	OpenInUI           *bool  `json:"openInUi"`
	SeekToken          string `json:"seekToken"`
	SeekPhase          string `json:"seekPhase"`
	SeekWantPlay       *bool  `json:"seekWantPlay"`
	SeekTargetClientID string `json:"seekTargetClientId"`

	Nonce        string `json:"nonce"`
	ClientSentAt int64  `json:"clientSentAt"`
}

// nullableString collapses a raw JSON field into (value, present). present is
// false when the field was entirely absent from the payload; it is true and
// value is nil when the field was explicitly null.
func nullableString(raw json.RawMessage) (value *string, present bool, err error) {
	if len(raw) == 0 {
		return nil, false, nil
	}
	if string(raw) == "null" {
		return nil, true, nil
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, true, err
	}
	return &s, true, nil
}

type helloOut struct {
	Type       string `json:"type"`
	ServerTime int64  `json:"serverTime"`
}

type syncStateOut struct {
	Type    string                  `json:"type"`
	State   models.SessionState     `json:"state"`
	Clients []models.ClientPresence `json:"clients"`
}

// unicastOut is the sync:state-shaped message sent directly to one client's
// sockets when an update names toClientId. It never touches session state.
type unicastOut struct {
	Type         string  `json:"type"`
	FromClientID string  `json:"fromClientId"`
	MediaID      *string `json:"mediaId"`
	TimeMs       int64   `json:"timeMs"`
	Paused       bool    `json:"paused"`
	FPS          int     `json:"fps"`
	Frame        int64   `json:"frame"`

	PlayAt            *string `json:"playAt,omitempty"`
	PlayAtLocalMs     *int64  `json:"playAtLocalMs,omitempty"`
	CapturedAtLocalMs *int64  `json:"capturedAtLocalMs,omitempty"`

	OpenInUI           *bool  `json:"openInUi,omitempty"`
	SeekToken          string `json:"seekToken,omitempty"`
	SeekPhase          string `json:"seekPhase,omitempty"`
	SeekWantPlay       *bool  `json:"seekWantPlay,omitempty"`
	SeekTargetClientID string `json:"seekTargetClientId,omitempty"`
}

type pongOut struct {
	Type             string `json:"type"`
	Nonce            string `json:"nonce,omitempty"`
	ClientSentAt     int64  `json:"clientSentAt,omitempty"`
	ServerReceivedAt int64  `json:"serverReceivedAt"`
}
