package models

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	RoleAdmin = "ADMIN"
	RoleUser  = "USER"
)

// User represents the profiles table.
type User struct {
	ID            string          `json:"id"`
	Username      string          `json:"username"`
	Role          string          `json:"role"` // 'ADMIN' or 'USER'
	Tokens        int64           `json:"tokens"`
	TotalPoints   int64           `json:"total_points"` // lifetime correct guesses
	Wins1X2       int64           `json:"wins_1x2"`
	WinsSurvival  int64           `json:"wins_survival"`
	Level         int             `json:"level"`
	Accuracy      decimal.Decimal `json:"accuracy"` // correct / (rounds played * matches per round)
	BetsPlaced    int64           `json:"bets_placed"`
	RoundsPlayed  int64           `json:"rounds_played"`
	TotalTokenWon int64           `json:"total_tokens_won"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// LedgerEntry is one debit or credit against a user balance, dr/cr style.
// EventRef is unique so a retried settlement step applies at most once.
type LedgerEntry struct {
	ID        int64     `json:"id"`
	UserID    string    `json:"user_id"`
	TType     string    `json:"ttype"` // 'bet', 'duel-escrow', 'payout', 'refund', ...
	Dr        int64     `json:"dr"`
	Cr        int64     `json:"cr"`
	EventRef  string    `json:"event_ref"`
	CreatedAt time.Time `json:"created_at"`
}
