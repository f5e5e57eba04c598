package service

import (
	"context"

	"github.com/fannyleague/fanny-services/internal/core/models"
)

// Store ports consumed by the services. The pg implementations live in
// internal/core/store, an in-memory implementation in
// internal/core/store/memstore. Lookups return (nil, nil) when the entity
// does not exist; constraint violations map to the errs sentinels.

type UserStore interface {
	GetUser(ctx context.Context, id string) (*models.User, error)
	ListByPoints(ctx context.Context, limit int) ([]*models.User, error)
	IncrementBetsPlaced(ctx context.Context, userID string) error
	AddWin(ctx context.Context, userID string, kind string, tokensWon int64) error
	UpdateAggregates(ctx context.Context, u *models.User) error
	ResetAll(ctx context.Context, defaultTokens int64) error
}

type LedgerStore interface {
	// Apply writes the entries and their balance effects atomically. When
	// any entry's event ref was applied before, the whole call is a no-op
	// returning (false, nil). A debit that would push a balance below zero
	// fails with errs.ErrInsufficientFunds and applies nothing.
	Apply(ctx context.Context, entries ...*models.LedgerEntry) (bool, error)
	Balance(ctx context.Context, userID string) (int64, error)
}

type RoundStore interface {
	GetOpenRound(ctx context.Context) (*models.Round, error)
	GetRound(ctx context.Context, id int64) (*models.Round, error)
	LastArchived(ctx context.Context) (*models.Round, error)
	ListArchived(ctx context.Context) ([]*models.Round, error)
	// CreateRound fails with errs.ErrRoundAlreadyOpen while an OPEN round
	// exists (partial unique index on status).
	CreateRound(ctx context.Context, r *models.Round) error
	UpdateRound(ctx context.Context, r *models.Round) error
	IncrementPot(ctx context.Context, roundID int64, by int64) error
}

type BetStore interface {
	// CreateBet fails with errs.ErrDuplicateBet on a second bet for the
	// same (user, round).
	CreateBet(ctx context.Context, b *models.Bet) error
	GetUserBet(ctx context.Context, roundID int64, userID string) (*models.Bet, error)
	ListBets(ctx context.Context, roundID int64) ([]*models.Bet, error)
	ListUserBets(ctx context.Context, userID string) ([]*models.Bet, error)
	DeleteBets(ctx context.Context, roundID int64) error
}

type SurvivalStore interface {
	CurrentSeason(ctx context.Context) (*models.SurvivalSeason, error)
	// CreateSeason fails with errs.ErrSeasonExists while a non-COMPLETED
	// season exists.
	CreateSeason(ctx context.Context, s *models.SurvivalSeason) error
	// UpdateSeason never writes the prize pool; the pool only moves
	// through IncrementPrizePool.
	UpdateSeason(ctx context.Context, s *models.SurvivalSeason) error
	IncrementPrizePool(ctx context.Context, seasonID int64, by int64) error
	GetPlayer(ctx context.Context, seasonID int64, userID string) (*models.SurvivalPlayer, error)
	ListPlayers(ctx context.Context, seasonID int64) ([]*models.SurvivalPlayer, error)
	// CreatePlayer fails with errs.ErrAlreadyJoined on a duplicate
	// (season, user).
	CreatePlayer(ctx context.Context, p *models.SurvivalPlayer) error
	UpdatePlayer(ctx context.Context, p *models.SurvivalPlayer) error
	// CreatePick fails with errs.ErrPickAlreadyExists on a duplicate
	// (player, round).
	CreatePick(ctx context.Context, p *models.SurvivalPick) error
	GetPick(ctx context.Context, playerID int64, roundID int64) (*models.SurvivalPick, error)
	ListPicks(ctx context.Context, roundID int64) ([]*models.SurvivalPick, error)
	UpdatePick(ctx context.Context, p *models.SurvivalPick) error
}

type DuelStore interface {
	CreateDuel(ctx context.Context, d *models.Duel) error
	GetDuel(ctx context.Context, id string) (*models.Duel, error)
	ListByRound(ctx context.Context, roundID int64) ([]*models.Duel, error)
	ListUserDuels(ctx context.Context, roundID int64, userID string) ([]*models.Duel, error)
	UpdateDuel(ctx context.Context, d *models.Duel) error
}

// SystemStore wipes all game state for the admin full reset.
type SystemStore interface {
	ResetSystem(ctx context.Context, defaultTokens int64) error
}

// Publisher is the fire-and-forget event surface; delivery is not the
// core's concern. internal/core/broker implements it over NATS.
type Publisher interface {
	Publish(eventType string, payload any)
}
