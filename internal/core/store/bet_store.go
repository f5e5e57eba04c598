package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/fannyleague/fanny-services/internal/core/errs"
	"github.com/fannyleague/fanny-services/internal/core/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BetStore struct {
	db *pgxpool.Pool
}

func NewBetStore(db *pgxpool.Pool) *BetStore {
	return &BetStore{db: db}
}

const betColumns = `id, user_id, round_id, predictions, include_jackpot, created_at`

func scanBet(row pgx.Row) (*models.Bet, error) {
	b := &models.Bet{}
	err := row.Scan(
		&b.ID,
		&b.UserID,
		&b.RoundID,
		&b.Predictions,
		&b.IncludeJackpot,
		&b.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan bet: %w", err)
	}
	return b, nil
}

// CreateBet relies on the unique_user_round constraint for the one bet
// per (user, round) invariant.
func (s *BetStore) CreateBet(ctx context.Context, b *models.Bet) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO bets (user_id, round_id, predictions, include_jackpot)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, b.UserID, b.RoundID, b.Predictions, b.IncludeJackpot).Scan(&b.ID, &b.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return errs.ErrDuplicateBet
		}
		return fmt.Errorf("failed to create bet: %w", err)
	}
	return nil
}

func (s *BetStore) GetUserBet(ctx context.Context, roundID int64, userID string) (*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE round_id = $1 AND user_id = $2`
	return scanBet(s.db.QueryRow(ctx, query, roundID, userID))
}

func (s *BetStore) ListBets(ctx context.Context, roundID int64) ([]*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE round_id = $1 ORDER BY created_at`
	return s.list(ctx, query, roundID)
}

func (s *BetStore) ListUserBets(ctx context.Context, userID string) ([]*models.Bet, error) {
	query := `SELECT ` + betColumns + ` FROM bets WHERE user_id = $1 ORDER BY round_id`
	return s.list(ctx, query, userID)
}

func (s *BetStore) list(ctx context.Context, query string, arg any) ([]*models.Bet, error) {
	rows, err := s.db.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bets []*models.Bet
	for rows.Next() {
		b, err := scanBet(rows)
		if err != nil {
			return nil, err
		}
		bets = append(bets, b)
	}
	return bets, rows.Err()
}

func (s *BetStore) DeleteBets(ctx context.Context, roundID int64) error {
	_, err := s.db.Exec(ctx, `DELETE FROM bets WHERE round_id = $1`, roundID)
	if err != nil {
		return fmt.Errorf("failed to delete bets: %w", err)
	}
	return nil
}
