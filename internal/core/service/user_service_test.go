package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fannyleague/fanny-services/internal/core/models"
)

func TestLeaderboard_OrdersByLifetimePoints(t *testing.T) {
	e := newEnv(t)
	e.store.PutUser(models.User{ID: "low", Tokens: 10, TotalPoints: 3})
	e.store.PutUser(models.User{ID: "high", Tokens: 10, TotalPoints: 40})
	e.store.PutUser(models.User{ID: "mid", Tokens: 10, TotalPoints: 17})

	board, err := e.users.Leaderboard(context.Background())
	require.NoError(t, err)
	require.Len(t, board, 3)
	assert.Equal(t, "high", board[0].ID)
	assert.Equal(t, "mid", board[1].ID)
	assert.Equal(t, "low", board[2].ID)
}

func TestResetSystem_WipesStateAndRestoresBalances(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	e.seedUser(t, "ana", 50)
	e.seedUser(t, "ben", 3)

	_, err := e.survival.StartSeason(ctx)
	require.NoError(t, err)
	_, err = e.survival.Join(ctx, "ana")
	require.NoError(t, err)
	e.openRound(t)
	_, err = e.rounds.SubmitBet(ctx, "ana", guessesScoring(allHome(), 8), false)
	require.NoError(t, err)

	require.NoError(t, e.users.ResetSystem(ctx))

	cur, err := e.rounds.Current(ctx)
	require.NoError(t, err)
	assert.Nil(t, cur)

	season, _, err := e.survival.State(ctx)
	require.NoError(t, err)
	assert.Nil(t, season)

	assert.Equal(t, DefaultStartingTokens, e.balance(t, "ana"))
	assert.Equal(t, DefaultStartingTokens, e.balance(t, "ben"))
	ana := e.user(t, "ana")
	assert.Zero(t, ana.BetsPlaced)
	assert.Zero(t, ana.TotalPoints)
	assert.Equal(t, 1, ana.Level)

	// the wiped ledger accepts previously used event refs again
	applied, err := e.ledger.Debit(ctx, "ana", 1, "bet", "bet:1:ana")
	require.NoError(t, err)
	assert.True(t, applied)
}
