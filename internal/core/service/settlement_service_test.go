package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fannyleague/fanny-services/internal/core/models"
)

// settlementRound builds a round whose outcomes are fully declared and
// stores one bet per entry of scores, keyed "u0", "u1", ...
func settlementRound(t *testing.T, e *env, pot, jackpot int64, scores ...int) *models.Round {
	t.Helper()
	ctx := context.Background()
	r := &models.Round{
		Matches:  testSlate(),
		Outcomes: allHome(),
		Pot:      pot,
		Jackpot:  jackpot,
		Status:   models.RoundOpen,
	}
	require.NoError(t, e.store.CreateRound(ctx, r))
	for i, score := range scores {
		id := userN(i)
		e.seedUser(t, id, 10)
		require.NoError(t, e.store.CreateBet(ctx, &models.Bet{
			UserID:      id,
			RoundID:     r.ID,
			Predictions: guessesScoring(r.Outcomes, score),
		}))
	}
	return r
}

func userN(i int) string {
	return fmt.Sprintf("u%d", i)
}

func TestSettle_TwoWinnersSplitThePot(t *testing.T) {
	e := newEnv(t)
	r := settlementRound(t, e, 20, 0, 8, 8)

	out, err := e.settlement.Settle(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, 8, out.MaxScore)
	assert.ElementsMatch(t, []string{"u0", "u1"}, out.Winners)
	assert.Equal(t, int64(10), out.Payout)
	assert.Zero(t, out.Burned)
	assert.Equal(t, int64(20), e.balance(t, "u0"))
	assert.Equal(t, int64(20), e.balance(t, "u1"))
	assert.Equal(t, int64(1), e.user(t, "u0").Wins1X2)
	assert.Equal(t, int64(10), e.user(t, "u0").TotalTokenWon)
}

func TestSettle_SingleWinnerTakesAll(t *testing.T) {
	e := newEnv(t)
	r := settlementRound(t, e, 20, 0, 8, 5)

	out, err := e.settlement.Settle(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, []string{"u0"}, out.Winners)
	assert.Equal(t, int64(20), out.Payout)
	assert.Equal(t, int64(30), e.balance(t, "u0"))
	assert.Equal(t, int64(10), e.balance(t, "u1"))
	assert.Zero(t, e.user(t, "u1").Wins1X2)
}

func TestSettle_BelowThresholdRollsPotOver(t *testing.T) {
	e := newEnv(t)
	r := settlementRound(t, e, 20, 30, 6, 4)

	out, err := e.settlement.Settle(context.Background(), r)
	require.NoError(t, err)
	assert.Empty(t, out.Winners)
	assert.Equal(t, int64(20), out.RolloverPot)
	assert.Equal(t, int64(30), out.RolloverJackpot) // preserve mode
	assert.Equal(t, int64(10), e.balance(t, "u0"))
	assert.Equal(t, int64(10), e.balance(t, "u1"))
}

func TestSettle_RolloverResetsJackpotWhenConfigured(t *testing.T) {
	e := newEnv(t)
	e.settlement = NewSettlementService(e.store, e.store, e.ledger, false)
	r := settlementRound(t, e, 20, 30, 6)

	out, err := e.settlement.Settle(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, int64(20), out.RolloverPot)
	assert.Zero(t, out.RolloverJackpot)
}

func TestSettle_RemainderIsBurned(t *testing.T) {
	e := newEnv(t)
	r := settlementRound(t, e, 5, 2, 9, 9)

	out, err := e.settlement.Settle(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, int64(3), out.Payout)
	assert.Equal(t, int64(1), out.Burned)
	winners := int64(len(out.Winners))
	assert.Equal(t, r.Pot+r.Jackpot, out.Payout*winners+out.Burned)
	assert.Less(t, out.Burned, winners)
}

func TestSettle_JackpotJoinsThePayout(t *testing.T) {
	e := newEnv(t)
	r := settlementRound(t, e, 10, 40, 7)

	out, err := e.settlement.Settle(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, int64(50), out.Payout)
	assert.Equal(t, int64(60), e.balance(t, "u0"))
}

func TestSettle_PerfectScoreWithOptInFlagsSuperJackpot(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	r := settlementRound(t, e, 10, 0, models.MatchesPerRound)

	// without the opt-in a perfect score is just a win
	out, err := e.settlement.Settle(ctx, r)
	require.NoError(t, err)
	assert.False(t, out.SuperJackpot)

	e2 := newEnv(t)
	r2 := settlementRound(t, e2, 10, 0)
	e2.seedUser(t, "ace", 10)
	require.NoError(t, e2.store.CreateBet(ctx, &models.Bet{
		UserID:         "ace",
		RoundID:        r2.ID,
		Predictions:    guessesScoring(r2.Outcomes, models.MatchesPerRound),
		IncludeJackpot: true,
	}))
	out, err = e2.settlement.Settle(ctx, r2)
	require.NoError(t, err)
	assert.True(t, out.SuperJackpot)
}

func TestSettle_OnlyDeclaredOutcomesScore(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()
	outcomes := allHome()
	for i := 6; i < len(outcomes); i++ {
		outcomes[i] = ""
	}
	r := &models.Round{
		Matches:  testSlate(),
		Outcomes: outcomes,
		Pot:      10,
		Status:   models.RoundOpen,
	}
	require.NoError(t, e.store.CreateRound(ctx, r))
	e.seedUser(t, "ana", 10)
	// guesses home everywhere: 6 declared matches count, the rest do not
	require.NoError(t, e.store.CreateBet(ctx, &models.Bet{
		UserID:      "ana",
		RoundID:     r.ID,
		Predictions: allHome(),
	}))

	out, err := e.settlement.Settle(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, 6, out.MaxScore)
	assert.Empty(t, out.Winners)
	assert.Equal(t, int64(10), out.RolloverPot)
}

func TestSettle_RerunDoesNotDoublePay(t *testing.T) {
	e := newEnv(t)
	r := settlementRound(t, e, 20, 0, 8)
	ctx := context.Background()

	_, err := e.settlement.Settle(ctx, r)
	require.NoError(t, err)
	_, err = e.settlement.Settle(ctx, r)
	require.NoError(t, err)

	assert.Equal(t, int64(30), e.balance(t, "u0"))
	assert.Equal(t, int64(1), e.user(t, "u0").Wins1X2)
	assert.Equal(t, int64(20), e.user(t, "u0").TotalTokenWon)
}

func TestSettle_NoBetsRollsPotOver(t *testing.T) {
	e := newEnv(t)
	r := settlementRound(t, e, 12, 0)

	out, err := e.settlement.Settle(context.Background(), r)
	require.NoError(t, err)
	assert.Empty(t, out.Winners)
	assert.Equal(t, int64(12), out.RolloverPot)
}
