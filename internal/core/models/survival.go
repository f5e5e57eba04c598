package models

import "time"

// Survival season lifecycle.
const (
	SeasonOpen      = "OPEN"
	SeasonActive    = "ACTIVE"
	SeasonCompleted = "COMPLETED"
)

// Survival player status.
const (
	PlayerAlive      = "ALIVE"
	PlayerEliminated = "ELIMINATED"
	PlayerWinner     = "WINNER"
)

// Survival pick result tags.
const (
	PickPending    = "PENDING"
	PickWin        = "WIN"
	PickEliminated = "ELIMINATED"
)

// SurvivalEntryFee is debited on join and feeds the season prize pool.
const SurvivalEntryFee int64 = 2

type SurvivalSeason struct {
	ID           int64     `json:"id"`
	Status       string    `json:"status"`
	PrizePool    int64     `json:"prize_pool"`
	StartRoundID int64     `json:"start_round_id"` // 0 until the first processed round
	Stalemate    bool      `json:"stalemate"`      // closed with zero players alive
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SurvivalPlayer belongs to one season and one user. UsedTeams is append-only
// and free of duplicates; a picked team survives into it only on a win.
type SurvivalPlayer struct {
	ID             int64     `json:"id"`
	SeasonID       int64     `json:"season_id"`
	UserID         string    `json:"user_id"`
	Status         string    `json:"status"`
	UsedTeams      []string  `json:"used_teams"`
	EliminatedAtID int64     `json:"eliminated_at_round_id"` // 0 while alive
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// HasUsed reports whether the player already survived with team.
func (p *SurvivalPlayer) HasUsed(team string) bool {
	for _, t := range p.UsedTeams {
		if t == team {
			return true
		}
	}
	return false
}

// SurvivalPick is a player's single team choice for one round.
type SurvivalPick struct {
	ID        int64     `json:"id"`
	PlayerID  int64     `json:"player_id"`
	RoundID   int64     `json:"round_id"`
	Team      string    `json:"team"`
	Result    string    `json:"result"` // PENDING until the round is processed
	CreatedAt time.Time `json:"created_at"`
}
