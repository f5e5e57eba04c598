package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fannyleague/fanny-services/internal/core/errs"
	"github.com/fannyleague/fanny-services/internal/core/models"
)

func TestStartSeason_OnlyOneRunning(t *testing.T) {
	e := newEnv(t)
	ctx := context.Background()

	season, err := e.survival.StartSeason(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SeasonOpen, season.Status)

	_, err = e.survival.StartSeason(ctx)
	assert.ErrorIs(t, err, errs.ErrSeasonExists)
}

func TestJoin_FeeFeedsPrizePool(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "ana", 10)
	e.seedUser(t, "ben", 10)
	ctx := context.Background()
	_, err := e.survival.StartSeason(ctx)
	require.NoError(t, err)

	p, err := e.survival.Join(ctx, "ana")
	require.NoError(t, err)
	assert.Equal(t, models.PlayerAlive, p.Status)
	assert.Empty(t, p.UsedTeams)
	assert.Equal(t, int64(10-models.SurvivalEntryFee), e.balance(t, "ana"))

	_, err = e.survival.Join(ctx, "ben")
	require.NoError(t, err)

	season, _, err := e.survival.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2*models.SurvivalEntryFee, season.PrizePool)
}

func TestJoin_Guards(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "ana", 10)
	e.seedUser(t, "poor", 1)
	ctx := context.Background()

	_, err := e.survival.Join(ctx, "ana")
	assert.ErrorIs(t, err, errs.ErrSeasonNotOpen)

	_, err = e.survival.StartSeason(ctx)
	require.NoError(t, err)

	_, err = e.survival.Join(ctx, "poor")
	assert.ErrorIs(t, err, errs.ErrInsufficientFunds)

	_, err = e.survival.Join(ctx, "ana")
	require.NoError(t, err)
	_, err = e.survival.Join(ctx, "ana")
	assert.ErrorIs(t, err, errs.ErrAlreadyJoined)
	assert.Equal(t, int64(10-models.SurvivalEntryFee), e.balance(t, "ana"))
}

// racingPlayers hides existing players so two joins both pass the
// membership check, the way two concurrent requests do before the
// uniqueness constraint settles the race.
type racingPlayers struct {
	SurvivalStore
}

func (racingPlayers) GetPlayer(ctx context.Context, seasonID int64, userID string) (*models.SurvivalPlayer, error) {
	return nil, nil
}

func TestJoin_LostRaceDoesNotMintTokens(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "ana", 10)
	ctx := context.Background()
	_, err := e.survival.StartSeason(ctx)
	require.NoError(t, err)

	racy := NewSurvivalService(racingPlayers{e.store}, e.store, e.store, e.ledger)

	_, err = racy.Join(ctx, "ana")
	require.NoError(t, err)
	_, err = racy.Join(ctx, "ana")
	require.ErrorIs(t, err, errs.ErrAlreadyJoined)

	// the loser's debit was a no-op on the shared event ref, so no
	// refund may be issued: one player, one fee, pool funded once
	assert.Equal(t, int64(10-models.SurvivalEntryFee), e.balance(t, "ana"))
	season, _, err := e.survival.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SurvivalEntryFee, season.PrizePool)
}

func TestJoin_PrizePoolSurvivesStaleSeasonWrite(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "ana", 10)
	ctx := context.Background()
	season, err := e.survival.StartSeason(ctx)
	require.NoError(t, err)

	// a season snapshot read before the join lands must not roll the
	// pool back when written afterwards
	stale := *season
	_, err = e.survival.Join(ctx, "ana")
	require.NoError(t, err)
	require.NoError(t, e.store.UpdateSeason(ctx, &stale))

	cur, _, err := e.survival.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SurvivalEntryFee, cur.PrizePool)
}

func TestSubmitPick_ReservedTailNotPickable(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "ana", 10)
	ctx := context.Background()
	_, err := e.survival.StartSeason(ctx)
	require.NoError(t, err)
	_, err = e.survival.Join(ctx, "ana")
	require.NoError(t, err)
	e.openRound(t)

	// Parma plays in the reserved tail of the test slate
	_, err = e.survival.SubmitPick(ctx, "ana", "Parma")
	assert.ErrorIs(t, err, errs.ErrTeamNotPickable)

	_, err = e.survival.SubmitPick(ctx, "ana", "Real Madrid")
	assert.ErrorIs(t, err, errs.ErrTeamNotPickable)

	pick, err := e.survival.SubmitPick(ctx, "ana", "Milan")
	require.NoError(t, err)
	assert.Equal(t, models.PickPending, pick.Result)

	_, err = e.survival.SubmitPick(ctx, "ana", "Inter")
	assert.ErrorIs(t, err, errs.ErrPickAlreadyExists)
}

func TestSubmitPick_Guards(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "ana", 10)
	e.seedUser(t, "out", 10)
	ctx := context.Background()

	_, err := e.survival.SubmitPick(ctx, "ana", "Milan")
	assert.ErrorIs(t, err, errs.ErrSeasonNotOpen)

	_, err = e.survival.StartSeason(ctx)
	require.NoError(t, err)
	_, err = e.survival.Join(ctx, "ana")
	require.NoError(t, err)

	_, err = e.survival.SubmitPick(ctx, "out", "Milan")
	assert.ErrorIs(t, err, errs.ErrNotJoined)

	_, err = e.survival.SubmitPick(ctx, "ana", "Milan")
	assert.ErrorIs(t, err, errs.ErrRoundNotOpen)
}

// runSurvivalRound declares every outcome and processes the open round,
// then archives it in the store so the next one can open.
func runSurvivalRound(t *testing.T, e *env, outcomes []string) *SurvivalOutcome {
	t.Helper()
	ctx := context.Background()
	r := e.declareAll(t, outcomes)
	out, err := e.survival.ProcessRound(ctx, r)
	require.NoError(t, err)
	r.Status = models.RoundArchived
	require.NoError(t, e.store.UpdateRound(ctx, r))
	return out
}

func TestProcessRound_WinAppendsUsedTeam(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "ana", 10)
	ctx := context.Background()
	season, err := e.survival.StartSeason(ctx)
	require.NoError(t, err)
	_, err = e.survival.Join(ctx, "ana")
	require.NoError(t, err)
	e.openRound(t)
	_, err = e.survival.SubmitPick(ctx, "ana", "Inter")
	require.NoError(t, err)

	// Inter is away in match 0, so an away win advances the player
	outcomes := allHome()
	outcomes[0] = models.OutcomeAway
	out := runSurvivalRound(t, e, outcomes)
	assert.Equal(t, 1, out.Advanced)
	assert.Zero(t, out.Eliminated)

	season, players, err := e.survival.State(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SeasonActive, season.Status)
	assert.NotZero(t, season.StartRoundID)
	require.Len(t, players, 1)
	assert.Equal(t, models.PlayerAlive, players[0].Status)
	assert.Equal(t, []string{"Inter"}, players[0].UsedTeams)

	// the survived team is spent for the rest of the season
	e.openRound(t)
	_, err = e.survival.SubmitPick(ctx, "ana", "Inter")
	assert.ErrorIs(t, err, errs.ErrTeamAlreadyUsed)
}

func TestProcessRound_DrawEliminates(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "ana", 10)
	ctx := context.Background()
	_, err := e.survival.StartSeason(ctx)
	require.NoError(t, err)
	_, err = e.survival.Join(ctx, "ana")
	require.NoError(t, err)
	r := e.openRound(t)
	_, err = e.survival.SubmitPick(ctx, "ana", "Milan")
	require.NoError(t, err)

	outcomes := allHome()
	outcomes[0] = models.OutcomeDraw
	out := runSurvivalRound(t, e, outcomes)
	assert.Equal(t, 1, out.Eliminated)

	_, players, err := e.survival.State(ctx)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, models.PlayerEliminated, players[0].Status)
	assert.Equal(t, r.ID, players[0].EliminatedAtID)
}

func TestProcessRound_NoPickEliminates(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "ana", 10)
	ctx := context.Background()
	_, err := e.survival.StartSeason(ctx)
	require.NoError(t, err)
	_, err = e.survival.Join(ctx, "ana")
	require.NoError(t, err)
	e.openRound(t)

	out := runSurvivalRound(t, e, allHome())
	assert.Equal(t, 1, out.Eliminated)
}

func TestProcessRound_UndeclaredPickedMatchFailsWithoutMutating(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "ana", 10)
	ctx := context.Background()
	_, err := e.survival.StartSeason(ctx)
	require.NoError(t, err)
	_, err = e.survival.Join(ctx, "ana")
	require.NoError(t, err)
	e.openRound(t)
	_, err = e.survival.SubmitPick(ctx, "ana", "Milan")
	require.NoError(t, err)

	outcomes := allHome()
	outcomes[0] = "" // the picked match has no result yet
	r := e.declareAll(t, outcomes)
	_, err = e.survival.ProcessRound(ctx, r)
	assert.ErrorIs(t, err, errs.ErrResultsIncomplete)

	_, players, err := e.survival.State(ctx)
	require.NoError(t, err)
	require.Len(t, players, 1)
	assert.Equal(t, models.PlayerAlive, players[0].Status)
}

func TestProcessRound_RerunIsStable(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "ana", 10)
	e.seedUser(t, "ben", 10)
	ctx := context.Background()
	_, err := e.survival.StartSeason(ctx)
	require.NoError(t, err)
	_, err = e.survival.Join(ctx, "ana")
	require.NoError(t, err)
	_, err = e.survival.Join(ctx, "ben")
	require.NoError(t, err)
	e.openRound(t)
	_, err = e.survival.SubmitPick(ctx, "ana", "Milan")
	require.NoError(t, err)

	r := e.declareAll(t, allHome())
	first, err := e.survival.ProcessRound(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, 1, first.Advanced)
	assert.Equal(t, 1, first.Eliminated)

	second, err := e.survival.ProcessRound(ctx, r)
	require.NoError(t, err)
	assert.Equal(t, 1, second.Advanced)
	assert.Zero(t, second.Eliminated)

	_, players, err := e.survival.State(ctx)
	require.NoError(t, err)
	for _, p := range players {
		if p.UserID == "ana" {
			assert.Equal(t, []string{"Milan"}, p.UsedTeams)
		}
	}
}

func TestProcessRound_NoSeasonIsANoop(t *testing.T) {
	e := newEnv(t)
	r := e.openRound(t)

	out, err := e.survival.ProcessRound(context.Background(), r)
	require.NoError(t, err)
	assert.Zero(t, out.Advanced)
	assert.Zero(t, out.Eliminated)
}

func TestCloseSeason_NeedsAtMostOneAlive(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "ana", 10)
	e.seedUser(t, "ben", 10)
	ctx := context.Background()
	_, err := e.survival.StartSeason(ctx)
	require.NoError(t, err)
	_, err = e.survival.Join(ctx, "ana")
	require.NoError(t, err)
	_, err = e.survival.Join(ctx, "ben")
	require.NoError(t, err)

	_, err = e.survival.CloseSeason(ctx)
	assert.ErrorIs(t, err, errs.ErrSeasonNotDecided)
}

func TestCloseSeason_SoleSurvivorTakesThePool(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "ana", 10)
	e.seedUser(t, "ben", 10)
	ctx := context.Background()
	_, err := e.survival.StartSeason(ctx)
	require.NoError(t, err)
	_, err = e.survival.Join(ctx, "ana")
	require.NoError(t, err)
	_, err = e.survival.Join(ctx, "ben")
	require.NoError(t, err)
	e.openRound(t)
	_, err = e.survival.SubmitPick(ctx, "ana", "Milan")
	require.NoError(t, err)
	runSurvivalRound(t, e, allHome()) // ben skipped his pick

	season, err := e.survival.CloseSeason(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SeasonCompleted, season.Status)
	assert.False(t, season.Stalemate)

	// 10 - 2 entry + 4 pool
	assert.Equal(t, int64(12), e.balance(t, "ana"))
	assert.Equal(t, int64(8), e.balance(t, "ben"))
	assert.Equal(t, int64(1), e.user(t, "ana").WinsSurvival)
	assert.Equal(t, int64(4), e.user(t, "ana").TotalTokenWon)
}

func TestCloseSeason_StalemateForfeitsThePool(t *testing.T) {
	e := newEnv(t)
	e.seedUser(t, "ana", 10)
	ctx := context.Background()
	_, err := e.survival.StartSeason(ctx)
	require.NoError(t, err)
	_, err = e.survival.Join(ctx, "ana")
	require.NoError(t, err)
	e.openRound(t)
	runSurvivalRound(t, e, allHome()) // no pick, last player out

	season, err := e.survival.CloseSeason(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.SeasonCompleted, season.Status)
	assert.True(t, season.Stalemate)
	assert.Equal(t, int64(8), e.balance(t, "ana"))

	// a completed season no longer blocks a fresh one
	_, err = e.survival.StartSeason(ctx)
	assert.NoError(t, err)
}
