package models

import "time"

// Token costs of a prediction set. Only the base stake feeds the pot.
const (
	BetBaseCost    int64 = 1
	BetJackpotCost int64 = 2
)

// Bet is a user's full prediction set for one round: exactly
// MatchesPerRound guesses of "1", "X" or "2". One bet per (user, round).
type Bet struct {
	ID             string    `json:"id"`
	UserID         string    `json:"user_id"`
	RoundID        int64     `json:"round_id"`
	Predictions    []string  `json:"predictions"`
	IncludeJackpot bool      `json:"include_jackpot"`
	CreatedAt      time.Time `json:"created_at"`
}

// Score counts the guesses matching declared outcomes. Undeclared outcomes
// contribute nothing.
func (b *Bet) Score(outcomes []string) int {
	s := 0
	for i, guess := range b.Predictions {
		if i >= len(outcomes) {
			break
		}
		if outcomes[i] != "" && outcomes[i] == guess {
			s++
		}
	}
	return s
}
