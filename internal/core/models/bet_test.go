package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBet_ScoreCountsOnlyDeclaredOutcomes(t *testing.T) {
	b := &Bet{Predictions: []string{"1", "X", "2", "1"}}

	assert.Equal(t, 4, b.Score([]string{"1", "X", "2", "1"}))
	assert.Equal(t, 2, b.Score([]string{"1", "X", "1", "2"}))
	assert.Equal(t, 1, b.Score([]string{"1", "", "", ""}))
	assert.Equal(t, 0, b.Score([]string{"", "", "", ""}))
}

func TestBet_ScoreToleratesLengthMismatch(t *testing.T) {
	b := &Bet{Predictions: []string{"1", "1", "1"}}

	assert.Equal(t, 1, b.Score([]string{"1"}))
	assert.Equal(t, 3, b.Score([]string{"1", "1", "1", "1", "1"}))
}

func TestSurvivalPlayer_HasUsed(t *testing.T) {
	p := &SurvivalPlayer{UsedTeams: []string{"Milan", "Roma"}}

	assert.True(t, p.HasUsed("Milan"))
	assert.False(t, p.HasUsed("Inter"))
	assert.False(t, (&SurvivalPlayer{}).HasUsed("Milan"))
}
