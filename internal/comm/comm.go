// Package comm holds the message shapes exchanged over NATS between the
// core service and the notification relay.
package comm

import "encoding/json"

// CoreEventsTopic carries every authoritative state-change event published
// by the core.
const CoreEventsTopic = "core.events"

// Event wraps a typed payload for the notification surface.
type Event struct {
	Type string          `json:"type"` // e.g. "duel.received", "round.results"
	Data json.RawMessage `json:"data"`
}

// WSMessage is the envelope relayed to websocket clients.
type WSMessage struct {
	Type     string          `json:"type"`
	Data     json.RawMessage `json:"data"`
	SocketId string          `json:"socketid"`
}

// DuelNotice tells an opponent a challenge arrived. Field names mirror the
// duel model the core publishes.
type DuelNotice struct {
	DuelID       string `json:"id"`
	RoundID      int64  `json:"round_id"`
	ChallengerID string `json:"challenger_id"`
	OpponentID   string `json:"opponent_id"`
	Wager        int64  `json:"wager"`
}

// RoundNotice signals updated outcomes or an archived round.
type RoundNotice struct {
	RoundID  int64    `json:"round_id"`
	Outcomes []string `json:"outcomes,omitempty"`
	Winners  []string `json:"winners,omitempty"`
}
