package models

import "time"

// Round lifecycle.
const (
	RoundOpen     = "OPEN"
	RoundClosed   = "CLOSED"
	RoundArchived = "ARCHIVED"
)

// 1X2 outcomes. Empty string means not declared yet.
const (
	OutcomeHome = "1"
	OutcomeDraw = "X"
	OutcomeAway = "2"
)

// MatchesPerRound is the fixed slate size of a round.
const MatchesPerRound = 12

// ReservedMatches at the tail of the slate are excluded from survival picks.
const ReservedMatches = 4

type Match struct {
	Home   string `json:"home"`
	Away   string `json:"away"`
	League string `json:"league"` // 'SERIE A' or 'CUSTOM'
}

// Round is one matchday: the fixed slate, declared outcomes and the money
// counters. Outcomes has the same length as Matches; "" marks undeclared.
// At most one round is OPEN at any time (partial unique index on status).
type Round struct {
	ID               int64     `json:"id"`
	Matches          []Match   `json:"matches"`
	Outcomes         []string  `json:"outcomes"`
	Pot              int64     `json:"pot"`
	Jackpot          int64     `json:"jackpot"`
	RolloverPot      int64     `json:"rollover_pot"`     // recorded at archive, seeds the next round
	RolloverJackpot  int64     `json:"rollover_jackpot"` // jackpot carried over when configured to preserve
	Status           string    `json:"status"`
	Deadline         time.Time `json:"deadline"`
	BetsLocked       bool      `json:"bets_locked"`
	Winners          []string  `json:"winners"` // user ids, set at archive
	CelebrateWinners bool      `json:"celebrate_winners"`
	CelebrateJackpot bool      `json:"celebrate_jackpot"` // perfect score by a jackpot opt-in bet
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// OutcomeAt returns the declared outcome for a match index, "" if undeclared
// or out of range.
func (r *Round) OutcomeAt(idx int) string {
	if idx < 0 || idx >= len(r.Outcomes) {
		return ""
	}
	return r.Outcomes[idx]
}

// MatchIndexFor returns the index of the match a team plays in, -1 if the
// team is not on the slate.
func (r *Round) MatchIndexFor(team string) int {
	for i, m := range r.Matches {
		if m.Home == team || m.Away == team {
			return i
		}
	}
	return -1
}

// PickableTeams lists the teams eligible for survival picks: every team on
// the slate except those of the reserved tail matches.
func (r *Round) PickableTeams() []string {
	limit := len(r.Matches) - ReservedMatches
	if limit < 0 {
		limit = 0
	}
	teams := make([]string, 0, limit*2)
	for _, m := range r.Matches[:limit] {
		teams = append(teams, m.Home, m.Away)
	}
	return teams
}
