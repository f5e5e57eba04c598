package service

import (
	"context"
	"fmt"

	"github.com/fannyleague/fanny-services/internal/core/errs"
	"github.com/fannyleague/fanny-services/internal/core/models"
	log "github.com/sirupsen/logrus"
)

// SurvivalOutcome summarizes one round of elimination processing.
type SurvivalOutcome struct {
	Eliminated int `json:"eliminated"`
	Advanced   int `json:"advanced"`
}

// SurvivalService manages elimination seasons: joining, pick submission,
// round-by-round elimination and season closure.
type SurvivalService struct {
	store  SurvivalStore
	rounds RoundStore
	users  UserStore
	ledger *LedgerService
}

func NewSurvivalService(store SurvivalStore, rounds RoundStore, users UserStore, ledger *LedgerService) *SurvivalService {
	return &SurvivalService{store: store, rounds: rounds, users: users, ledger: ledger}
}

// State returns the current season with its players, nil season when none
// is running.
func (s *SurvivalService) State(ctx context.Context) (*models.SurvivalSeason, []*models.SurvivalPlayer, error) {
	season, err := s.store.CurrentSeason(ctx)
	if err != nil || season == nil {
		return season, nil, err
	}
	players, err := s.store.ListPlayers(ctx, season.ID)
	return season, players, err
}

// StartSeason opens a fresh season. Fails with errs.ErrSeasonExists while
// an unfinished one exists.
func (s *SurvivalService) StartSeason(ctx context.Context) (*models.SurvivalSeason, error) {
	season := &models.SurvivalSeason{Status: models.SeasonOpen}
	if err := s.store.CreateSeason(ctx, season); err != nil {
		return nil, err
	}
	return season, nil
}

// Join enters a user into an OPEN season; the entry fee goes into the
// prize pool.
func (s *SurvivalService) Join(ctx context.Context, userID string) (*models.SurvivalPlayer, error) {
	season, err := s.store.CurrentSeason(ctx)
	if err != nil {
		return nil, err
	}
	if season == nil || season.Status != models.SeasonOpen {
		return nil, errs.ErrSeasonNotOpen
	}
	if prev, err := s.store.GetPlayer(ctx, season.ID, userID); err != nil {
		return nil, err
	} else if prev != nil {
		return nil, errs.ErrAlreadyJoined
	}

	eventRef := fmt.Sprintf("survival:%d:join:%s", season.ID, userID)
	debited, err := s.ledger.Debit(ctx, userID, models.SurvivalEntryFee, "survival-entry", eventRef)
	if err != nil {
		return nil, err
	}

	player := &models.SurvivalPlayer{
		SeasonID: season.ID,
		UserID:   userID,
		Status:   models.PlayerAlive,
	}
	if err := s.store.CreatePlayer(ctx, player); err != nil {
		// Refund only when this call's debit went through. A racer that
		// shared the event ref never moved tokens.
		if err == errs.ErrAlreadyJoined && debited {
			if _, rerr := s.ledger.Credit(ctx, userID, models.SurvivalEntryFee, "survival-refund", eventRef+":refund"); rerr != nil {
				return nil, fmt.Errorf("refund after duplicate join: %w", rerr)
			}
		}
		return nil, err
	}

	if err := s.store.IncrementPrizePool(ctx, season.ID, models.SurvivalEntryFee); err != nil {
		return nil, fmt.Errorf("grow prize pool of season %d: %w", season.ID, err)
	}
	return player, nil
}

// SubmitPick records the player's team choice for the open round. The team
// must play in one of the round's non-reserved matches and must not have
// been used before this season.
func (s *SurvivalService) SubmitPick(ctx context.Context, userID, team string) (*models.SurvivalPick, error) {
	season, err := s.store.CurrentSeason(ctx)
	if err != nil {
		return nil, err
	}
	if season == nil {
		return nil, errs.ErrSeasonNotOpen
	}
	player, err := s.store.GetPlayer(ctx, season.ID, userID)
	if err != nil {
		return nil, err
	}
	if player == nil {
		return nil, errs.ErrNotJoined
	}
	if player.Status != models.PlayerAlive {
		return nil, errs.ErrPlayerNotAlive
	}

	round, err := s.rounds.GetOpenRound(ctx)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, errs.ErrRoundNotOpen
	}

	pickable := false
	for _, t := range round.PickableTeams() {
		if t == team {
			pickable = true
			break
		}
	}
	if !pickable {
		return nil, errs.ErrTeamNotPickable
	}
	if player.HasUsed(team) {
		return nil, errs.ErrTeamAlreadyUsed
	}

	pick := &models.SurvivalPick{
		PlayerID: player.ID,
		RoundID:  round.ID,
		Team:     team,
		Result:   models.PickPending,
	}
	if err := s.store.CreatePick(ctx, pick); err != nil {
		return nil, err
	}
	return pick, nil
}

// ProcessRound resolves every ALIVE player's pick against the round's
// declared outcomes. A missing pick eliminates; a draw or loss eliminates;
// a win appends the team to the player's used list. Already-tagged picks
// and already-eliminated players are skipped so a retried archive is safe.
// No season running is not an error, the step just has nothing to do.
func (s *SurvivalService) ProcessRound(ctx context.Context, round *models.Round) (*SurvivalOutcome, error) {
	out := &SurvivalOutcome{}
	season, err := s.store.CurrentSeason(ctx)
	if err != nil {
		return nil, err
	}
	if season == nil {
		return out, nil
	}

	players, err := s.store.ListPlayers(ctx, season.ID)
	if err != nil {
		return nil, err
	}

	// validate before mutating: every pending pick of an alive player
	// needs a declared outcome
	type resolution struct {
		player *models.SurvivalPlayer
		pick   *models.SurvivalPick
		win    bool
	}
	var pending []resolution
	for _, p := range players {
		if p.Status != models.PlayerAlive {
			continue
		}
		pick, err := s.store.GetPick(ctx, p.ID, round.ID)
		if err != nil {
			return nil, err
		}
		if pick != nil && pick.Result != models.PickPending {
			// already processed by an earlier archive attempt
			if pick.Result == models.PickWin {
				out.Advanced++
			}
			continue
		}
		if pick == nil {
			pending = append(pending, resolution{player: p})
			continue
		}
		idx := round.MatchIndexFor(pick.Team)
		if idx < 0 {
			// team not on the slate, treat as no pick
			pending = append(pending, resolution{player: p, pick: pick})
			continue
		}
		outcome := round.OutcomeAt(idx)
		if outcome == "" {
			return nil, errs.ErrResultsIncomplete
		}
		m := round.Matches[idx]
		win := (m.Home == pick.Team && outcome == models.OutcomeHome) ||
			(m.Away == pick.Team && outcome == models.OutcomeAway)
		pending = append(pending, resolution{player: p, pick: pick, win: win})
	}

	for _, res := range pending {
		if res.win {
			if !res.player.HasUsed(res.pick.Team) {
				res.player.UsedTeams = append(res.player.UsedTeams, res.pick.Team)
			}
			if err := s.store.UpdatePlayer(ctx, res.player); err != nil {
				return nil, err
			}
			res.pick.Result = models.PickWin
			if err := s.store.UpdatePick(ctx, res.pick); err != nil {
				return nil, err
			}
			out.Advanced++
			continue
		}
		res.player.Status = models.PlayerEliminated
		res.player.EliminatedAtID = round.ID
		if err := s.store.UpdatePlayer(ctx, res.player); err != nil {
			return nil, err
		}
		if res.pick != nil {
			res.pick.Result = models.PickEliminated
			if err := s.store.UpdatePick(ctx, res.pick); err != nil {
				return nil, err
			}
		}
		out.Eliminated++
	}

	if season.Status == models.SeasonOpen {
		season.Status = models.SeasonActive
		season.StartRoundID = round.ID
		if err := s.store.UpdateSeason(ctx, season); err != nil {
			return nil, err
		}
	}

	log.Infof("survival season %d processed round %d: %d advanced, %d eliminated",
		season.ID, round.ID, out.Advanced, out.Eliminated)
	return out, nil
}

// CloseSeason pays the sole survivor the full prize pool and completes the
// season. With zero players alive the season completes as a stalemate and
// the pool is forfeit. Fails with errs.ErrSeasonNotDecided while two or
// more players remain.
func (s *SurvivalService) CloseSeason(ctx context.Context) (*models.SurvivalSeason, error) {
	season, err := s.store.CurrentSeason(ctx)
	if err != nil {
		return nil, err
	}
	if season == nil {
		return nil, errs.ErrSeasonNotOpen
	}
	players, err := s.store.ListPlayers(ctx, season.ID)
	if err != nil {
		return nil, err
	}

	var alive []*models.SurvivalPlayer
	for _, p := range players {
		if p.Status == models.PlayerAlive {
			alive = append(alive, p)
		}
	}
	if len(alive) > 1 {
		return nil, errs.ErrSeasonNotDecided
	}

	if len(alive) == 1 {
		winner := alive[0]
		eventRef := fmt.Sprintf("survival:%d:payout", season.ID)
		applied, err := s.ledger.Credit(ctx, winner.UserID, season.PrizePool, "survival-payout", eventRef)
		if err != nil {
			return nil, fmt.Errorf("pay survival winner %s: %w", winner.UserID, err)
		}
		if applied {
			if err := s.users.AddWin(ctx, winner.UserID, "survival", season.PrizePool); err != nil {
				return nil, err
			}
		}
		winner.Status = models.PlayerWinner
		if err := s.store.UpdatePlayer(ctx, winner); err != nil {
			return nil, err
		}
		log.Infof("survival season %d won by %s, prize %d", season.ID, winner.UserID, season.PrizePool)
	} else {
		season.Stalemate = true
		log.Infof("survival season %d closed as stalemate, pool %d forfeit", season.ID, season.PrizePool)
	}

	season.Status = models.SeasonCompleted
	if err := s.store.UpdateSeason(ctx, season); err != nil {
		return nil, err
	}
	return season, nil
}
