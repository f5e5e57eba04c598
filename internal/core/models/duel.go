package models

import "time"

// Duel lifecycle. PENDING -> ACCEPTED -> COMPLETED, or PENDING -> DECLINED.
const (
	DuelPending   = "PENDING"
	DuelAccepted  = "ACCEPTED"
	DuelDeclined  = "DECLINED"
	DuelCompleted = "COMPLETED"
)

// Duel is a wagered 1v1 challenge scored against the owning round's
// outcomes. The wager is escrowed from the challenger at creation and from
// the opponent at acceptance. WinnerID is empty until resolution, and stays
// empty on a tie.
type Duel struct {
	ID              string    `json:"id"`
	RoundID         int64     `json:"round_id"`
	ChallengerID    string    `json:"challenger_id"`
	OpponentID      string    `json:"opponent_id"`
	Status          string    `json:"status"`
	Wager           int64     `json:"wager"`
	ChallengerScore int       `json:"challenger_score"`
	OpponentScore   int       `json:"opponent_score"`
	WinnerID        string    `json:"winner_id"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}
