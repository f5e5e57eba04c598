package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func slate() []Match {
	matches := make([]Match, MatchesPerRound)
	for i := range matches {
		matches[i] = Match{
			Home:   "H" + string(rune('A'+i)),
			Away:   "A" + string(rune('A'+i)),
			League: "SERIE A",
		}
	}
	return matches
}

func TestRound_PickableTeamsExcludeReservedTail(t *testing.T) {
	r := &Round{Matches: slate()}

	teams := r.PickableTeams()
	assert.Len(t, teams, (MatchesPerRound-ReservedMatches)*2)
	assert.Contains(t, teams, "HA")
	assert.NotContains(t, teams, "H"+string(rune('A'+MatchesPerRound-1)))
}

func TestRound_PickableTeamsShortSlate(t *testing.T) {
	r := &Round{Matches: slate()[:2]}
	assert.Empty(t, r.PickableTeams())
}

func TestRound_MatchIndexFor(t *testing.T) {
	r := &Round{Matches: slate()}

	assert.Equal(t, 0, r.MatchIndexFor("HA"))
	assert.Equal(t, 3, r.MatchIndexFor("AD"))
	assert.Equal(t, -1, r.MatchIndexFor("Chelsea"))
}

func TestRound_OutcomeAt(t *testing.T) {
	r := &Round{Outcomes: []string{OutcomeHome, "", OutcomeDraw}}

	assert.Equal(t, OutcomeHome, r.OutcomeAt(0))
	assert.Equal(t, "", r.OutcomeAt(1))
	assert.Equal(t, "", r.OutcomeAt(-1))
	assert.Equal(t, "", r.OutcomeAt(5))
}
