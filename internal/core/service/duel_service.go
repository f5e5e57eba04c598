package service

import (
	"context"
	"fmt"

	"github.com/fannyleague/fanny-services/internal/core/errs"
	"github.com/fannyleague/fanny-services/internal/core/models"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// DuelService manages 1v1 wagered challenges scored against the owning
// round's outcomes.
type DuelService struct {
	duels  DuelStore
	bets   BetStore
	rounds RoundStore
	ledger *LedgerService
	events Publisher
}

func NewDuelService(duels DuelStore, bets BetStore, rounds RoundStore, ledger *LedgerService, events Publisher) *DuelService {
	return &DuelService{duels: duels, bets: bets, rounds: rounds, ledger: ledger, events: events}
}

// Create opens a PENDING duel on the current round. The opponent must have
// a bet on the round already; the challenger's wager is escrowed now, the
// opponent's only at acceptance.
func (s *DuelService) Create(ctx context.Context, challengerID, opponentID string, wager int64) (*models.Duel, error) {
	if wager < 0 {
		return nil, fmt.Errorf("%w: wager %d is negative", errs.ErrInvalidInput, wager)
	}
	if challengerID == opponentID {
		return nil, errs.ErrSelfChallenge
	}
	round, err := s.rounds.GetOpenRound(ctx)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, errs.ErrRoundNotOpen
	}
	opponentBet, err := s.bets.GetUserBet(ctx, round.ID, opponentID)
	if err != nil {
		return nil, err
	}
	if opponentBet == nil {
		return nil, errs.ErrOpponentIneligible
	}

	d := &models.Duel{
		ID:           uuid.NewString(),
		RoundID:      round.ID,
		ChallengerID: challengerID,
		OpponentID:   opponentID,
		Status:       models.DuelPending,
		Wager:        wager,
	}
	if wager > 0 {
		ref := fmt.Sprintf("duel:%s:escrow:challenger", d.ID)
		if _, err := s.ledger.Debit(ctx, challengerID, wager, "duel-escrow", ref); err != nil {
			return nil, err
		}
	}
	if err := s.duels.CreateDuel(ctx, d); err != nil {
		return nil, err
	}
	s.events.Publish(EventDuelReceived, d)
	return d, nil
}

// Respond lets the challenged user accept or decline a PENDING duel.
// Accepting escrows the opponent's wager; declining refunds the
// challenger's.
func (s *DuelService) Respond(ctx context.Context, duelID, userID string, accept bool) (*models.Duel, error) {
	d, err := s.duels.GetDuel(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errs.ErrNotFound
	}
	if d.Status != models.DuelPending {
		return nil, errs.ErrDuelNotPending
	}
	if d.OpponentID != userID {
		return nil, errs.ErrNotOpponent
	}

	if accept {
		if d.Wager > 0 {
			ref := fmt.Sprintf("duel:%s:escrow:opponent", d.ID)
			if _, err := s.ledger.Debit(ctx, d.OpponentID, d.Wager, "duel-escrow", ref); err != nil {
				return nil, err
			}
		}
		d.Status = models.DuelAccepted
	} else {
		if d.Wager > 0 {
			ref := fmt.Sprintf("duel:%s:refund:challenger", d.ID)
			if _, err := s.ledger.Credit(ctx, d.ChallengerID, d.Wager, "duel-refund", ref); err != nil {
				return nil, err
			}
		}
		d.Status = models.DuelDeclined
	}
	return d, s.duels.UpdateDuel(ctx, d)
}

// UserDuels lists a user's duels on the current round.
func (s *DuelService) UserDuels(ctx context.Context, userID string) ([]*models.Duel, error) {
	round, err := s.rounds.GetOpenRound(ctx)
	if err != nil || round == nil {
		return nil, err
	}
	return s.duels.ListUserDuels(ctx, round.ID, userID)
}

// LiveScore recomputes both sides' running scores from the declared
// outcomes. Advisory only: safe to call repeatedly, the authoritative
// values are written by Resolve.
func (s *DuelService) LiveScore(ctx context.Context, duelID string) (*models.Duel, error) {
	d, err := s.duels.GetDuel(ctx, duelID)
	if err != nil {
		return nil, err
	}
	if d == nil {
		return nil, errs.ErrNotFound
	}
	if d.Status != models.DuelAccepted {
		return d, nil
	}
	round, err := s.rounds.GetRound(ctx, d.RoundID)
	if err != nil {
		return nil, err
	}
	if round == nil {
		return nil, errs.ErrNotFound
	}
	cs, os, err := s.scores(ctx, d, round)
	if err != nil {
		return nil, err
	}
	if cs != d.ChallengerScore || os != d.OpponentScore {
		d.ChallengerScore, d.OpponentScore = cs, os
		if err := s.duels.UpdateDuel(ctx, d); err != nil {
			return nil, err
		}
	}
	return d, nil
}

// Resolve settles every duel of the round during archive. ACCEPTED duels
// complete with the higher score winning 2x the wager from escrow; ties
// refund both sides. Still-PENDING duels expire declined with the
// challenger's escrow returned. COMPLETED duels are skipped, and every
// token movement is keyed by duel id, so a re-run is harmless.
func (s *DuelService) Resolve(ctx context.Context, round *models.Round) error {
	duels, err := s.duels.ListByRound(ctx, round.ID)
	if err != nil {
		return err
	}
	for _, d := range duels {
		switch d.Status {
		case models.DuelPending:
			if d.Wager > 0 {
				ref := fmt.Sprintf("duel:%s:refund:challenger", d.ID)
				if _, err := s.ledger.Credit(ctx, d.ChallengerID, d.Wager, "duel-refund", ref); err != nil {
					return fmt.Errorf("expire duel %s: %w", d.ID, err)
				}
			}
			d.Status = models.DuelDeclined
			if err := s.duels.UpdateDuel(ctx, d); err != nil {
				return err
			}
		case models.DuelAccepted:
			cs, os, err := s.scores(ctx, d, round)
			if err != nil {
				return err
			}
			d.ChallengerScore, d.OpponentScore = cs, os
			switch {
			case cs > os:
				d.WinnerID = d.ChallengerID
			case os > cs:
				d.WinnerID = d.OpponentID
			}
			if d.Wager > 0 {
				if d.WinnerID != "" {
					ref := fmt.Sprintf("duel:%s:payout", d.ID)
					if _, err := s.ledger.Credit(ctx, d.WinnerID, 2*d.Wager, "duel-payout", ref); err != nil {
						return fmt.Errorf("pay duel %s winner: %w", d.ID, err)
					}
				} else {
					crRef := fmt.Sprintf("duel:%s:refund:challenger", d.ID)
					if _, err := s.ledger.Credit(ctx, d.ChallengerID, d.Wager, "duel-refund", crRef); err != nil {
						return fmt.Errorf("refund duel %s challenger: %w", d.ID, err)
					}
					opRef := fmt.Sprintf("duel:%s:refund:opponent", d.ID)
					if _, err := s.ledger.Credit(ctx, d.OpponentID, d.Wager, "duel-refund", opRef); err != nil {
						return fmt.Errorf("refund duel %s opponent: %w", d.ID, err)
					}
				}
			}
			d.Status = models.DuelCompleted
			if err := s.duels.UpdateDuel(ctx, d); err != nil {
				return err
			}
			log.Infof("duel %s resolved %d-%d, winner %q", d.ID, cs, os, d.WinnerID)
		}
	}
	return nil
}

// scores counts each side's correct guesses over declared outcomes; a side
// without a bet scores zero.
func (s *DuelService) scores(ctx context.Context, d *models.Duel, round *models.Round) (int, int, error) {
	cs, err := s.sideScore(ctx, round, d.ChallengerID)
	if err != nil {
		return 0, 0, err
	}
	os, err := s.sideScore(ctx, round, d.OpponentID)
	if err != nil {
		return 0, 0, err
	}
	return cs, os, nil
}

func (s *DuelService) sideScore(ctx context.Context, round *models.Round, userID string) (int, error) {
	bet, err := s.bets.GetUserBet(ctx, round.ID, userID)
	if err != nil {
		return 0, err
	}
	if bet == nil {
		return 0, nil
	}
	return bet.Score(round.Outcomes), nil
}
