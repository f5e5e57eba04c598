package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fannyleague/fanny-services/internal/core/errs"
	"github.com/fannyleague/fanny-services/internal/core/models"
)

// Event types published after authoritative state changes.
const (
	EventRoundOpened   = "round.opened"
	EventRoundResults  = "round.results"
	EventRoundArchived = "round.archived"
	EventDuelReceived  = "duel.received"
)

// RoundService drives the matchday lifecycle and owns bet submission.
type RoundService struct {
	rounds RoundStore
	bets   BetStore
	users  UserStore
	ledger *LedgerService
	events Publisher
	now    func() time.Time
}

func NewRoundService(rounds RoundStore, bets BetStore, users UserStore, ledger *LedgerService, events Publisher) *RoundService {
	return &RoundService{
		rounds: rounds,
		bets:   bets,
		users:  users,
		ledger: ledger,
		events: events,
		now:    time.Now,
	}
}

// Current returns the OPEN round, nil when none exists.
func (s *RoundService) Current(ctx context.Context) (*models.Round, error) {
	return s.rounds.GetOpenRound(ctx)
}

func (s *RoundService) Archived(ctx context.Context) ([]*models.Round, error) {
	return s.rounds.ListArchived(ctx)
}

func (s *RoundService) Get(ctx context.Context, id int64) (*models.Round, error) {
	return s.rounds.GetRound(ctx, id)
}

// Open creates a fresh round with an empty slate. The pot is seeded with
// the last archived round's rollover, the jackpot with its preserved
// jackpot. Fails with errs.ErrRoundAlreadyOpen while a round is OPEN.
func (s *RoundService) Open(ctx context.Context, deadline time.Time) (*models.Round, error) {
	var pot, jackpot int64
	last, err := s.rounds.LastArchived(ctx)
	if err != nil {
		return nil, fmt.Errorf("load last archived round: %w", err)
	}
	if last != nil {
		pot = last.RolloverPot
		jackpot = last.RolloverJackpot
	}

	r := &models.Round{
		Matches:  make([]models.Match, models.MatchesPerRound),
		Outcomes: make([]string, models.MatchesPerRound),
		Pot:      pot,
		Jackpot:  jackpot,
		Status:   models.RoundOpen,
		Deadline: deadline,
	}
	for i := range r.Matches {
		r.Matches[i].League = "SERIE A"
	}
	if err := s.rounds.CreateRound(ctx, r); err != nil {
		return nil, err
	}
	s.events.Publish(EventRoundOpened, r)
	return r, nil
}

// SubmitBet places a user's prediction set on the open round. The stake is
// debited first; a lost race on the (user, round) uniqueness refunds it
// only when this call's debit actually moved tokens.
func (s *RoundService) SubmitBet(ctx context.Context, userID string, predictions []string, includeJackpot bool) (*models.Bet, error) {
	r, err := s.rounds.GetOpenRound(ctx)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errs.ErrRoundNotOpen
	}
	if !r.Deadline.IsZero() && !s.now().Before(r.Deadline) {
		return nil, errs.ErrDeadlinePassed
	}
	if r.BetsLocked {
		return nil, errs.ErrBetsLocked
	}
	if len(predictions) != len(r.Matches) {
		return nil, fmt.Errorf("%w: expected %d predictions, got %d", errs.ErrInvalidInput, len(r.Matches), len(predictions))
	}
	for i, p := range predictions {
		if p != models.OutcomeHome && p != models.OutcomeDraw && p != models.OutcomeAway {
			return nil, fmt.Errorf("%w: prediction %q at index %d", errs.ErrInvalidInput, p, i)
		}
	}
	if prev, err := s.bets.GetUserBet(ctx, r.ID, userID); err != nil {
		return nil, err
	} else if prev != nil {
		return nil, errs.ErrDuplicateBet
	}

	cost := models.BetBaseCost
	if includeJackpot {
		cost = models.BetJackpotCost
	}
	eventRef := fmt.Sprintf("bet:%d:%s", r.ID, userID)
	debited, err := s.ledger.Debit(ctx, userID, cost, "bet", eventRef)
	if err != nil {
		return nil, err
	}

	bet := &models.Bet{
		UserID:         userID,
		RoundID:        r.ID,
		Predictions:    predictions,
		IncludeJackpot: includeJackpot,
	}
	if err := s.bets.CreateBet(ctx, bet); err != nil {
		// Refund only when this call's debit went through. A racer that
		// shared the event ref never moved tokens.
		if err == errs.ErrDuplicateBet && debited {
			if _, rerr := s.ledger.Credit(ctx, userID, cost, "bet-refund", eventRef+":refund"); rerr != nil {
				return nil, fmt.Errorf("refund after duplicate bet: %w", rerr)
			}
		}
		return nil, err
	}

	if err := s.rounds.IncrementPot(ctx, r.ID, models.BetBaseCost); err != nil {
		return nil, fmt.Errorf("increment pot for round %d: %w", r.ID, err)
	}
	if err := s.users.IncrementBetsPlaced(ctx, userID); err != nil {
		return nil, fmt.Errorf("increment bets placed for %s: %w", userID, err)
	}
	return bet, nil
}

func (s *RoundService) UserBet(ctx context.Context, roundID int64, userID string) (*models.Bet, error) {
	return s.bets.GetUserBet(ctx, roundID, userID)
}

func (s *RoundService) Bets(ctx context.Context, roundID int64) ([]*models.Bet, error) {
	return s.bets.ListBets(ctx, roundID)
}

// DeclareOutcome sets or clears (outcome "") a match result while the round
// is OPEN.
func (s *RoundService) DeclareOutcome(ctx context.Context, matchIdx int, outcome string) (*models.Round, error) {
	r, err := s.openRound(ctx)
	if err != nil {
		return nil, err
	}
	if matchIdx < 0 || matchIdx >= len(r.Outcomes) {
		return nil, fmt.Errorf("%w: match index %d out of range", errs.ErrInvalidInput, matchIdx)
	}
	switch outcome {
	case "", models.OutcomeHome, models.OutcomeDraw, models.OutcomeAway:
	default:
		return nil, fmt.Errorf("%w: outcome %q", errs.ErrInvalidInput, outcome)
	}
	r.Outcomes[matchIdx] = outcome
	if err := s.rounds.UpdateRound(ctx, r); err != nil {
		return nil, err
	}
	s.events.Publish(EventRoundResults, r)
	return r, nil
}

// UpdateMatch replaces one pairing on the slate.
func (s *RoundService) UpdateMatch(ctx context.Context, matchIdx int, m models.Match) (*models.Round, error) {
	r, err := s.openRound(ctx)
	if err != nil {
		return nil, err
	}
	if matchIdx < 0 || matchIdx >= len(r.Matches) {
		return nil, fmt.Errorf("%w: match index %d out of range", errs.ErrInvalidInput, matchIdx)
	}
	r.Matches[matchIdx] = m
	return r, s.rounds.UpdateRound(ctx, r)
}

func (s *RoundService) SetJackpot(ctx context.Context, amount int64) (*models.Round, error) {
	if amount < 0 {
		return nil, fmt.Errorf("%w: jackpot amount %d is negative", errs.ErrInvalidInput, amount)
	}
	r, err := s.openRound(ctx)
	if err != nil {
		return nil, err
	}
	r.Jackpot = amount
	return r, s.rounds.UpdateRound(ctx, r)
}

func (s *RoundService) SetDeadline(ctx context.Context, deadline time.Time) (*models.Round, error) {
	r, err := s.openRound(ctx)
	if err != nil {
		return nil, err
	}
	r.Deadline = deadline
	return r, s.rounds.UpdateRound(ctx, r)
}

func (s *RoundService) SetBetsLocked(ctx context.Context, locked bool) (*models.Round, error) {
	r, err := s.openRound(ctx)
	if err != nil {
		return nil, err
	}
	r.BetsLocked = locked
	return r, s.rounds.UpdateRound(ctx, r)
}

// Reset clears all declared outcomes and deletes every bet of the open
// round. Stakes are not refunded, matching the admin tooling this replaces.
func (s *RoundService) Reset(ctx context.Context) (*models.Round, error) {
	r, err := s.openRound(ctx)
	if err != nil {
		return nil, err
	}
	r.Outcomes = make([]string, len(r.Matches))
	if err := s.rounds.UpdateRound(ctx, r); err != nil {
		return nil, err
	}
	if err := s.bets.DeleteBets(ctx, r.ID); err != nil {
		return nil, err
	}
	s.events.Publish(EventRoundResults, r)
	return r, nil
}

func (s *RoundService) openRound(ctx context.Context) (*models.Round, error) {
	r, err := s.rounds.GetOpenRound(ctx)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errs.ErrRoundNotOpen
	}
	return r, nil
}
