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

// RoundStore persists matchdays. The slate, outcomes and winners are jsonb
// columns; the "at most one OPEN round" invariant is a partial unique
// index on status:
//
//	CREATE UNIQUE INDEX one_open_round ON rounds ((status = 'OPEN')) WHERE status = 'OPEN';
type RoundStore struct {
	db *pgxpool.Pool
}

func NewRoundStore(db *pgxpool.Pool) *RoundStore {
	return &RoundStore{db: db}
}

const roundColumns = `id, matches, outcomes, pot, jackpot, rollover_pot, rollover_jackpot,
	status, deadline, bets_locked, winners, celebrate_winners, celebrate_jackpot,
	created_at, updated_at`

func scanRound(row pgx.Row) (*models.Round, error) {
	r := &models.Round{}
	err := row.Scan(
		&r.ID,
		&r.Matches,
		&r.Outcomes,
		&r.Pot,
		&r.Jackpot,
		&r.RolloverPot,
		&r.RolloverJackpot,
		&r.Status,
		&r.Deadline,
		&r.BetsLocked,
		&r.Winners,
		&r.CelebrateWinners,
		&r.CelebrateJackpot,
		&r.CreatedAt,
		&r.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan round: %w", err)
	}
	return r, nil
}

func (s *RoundStore) GetOpenRound(ctx context.Context) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE status = 'OPEN' ORDER BY id DESC LIMIT 1`
	return scanRound(s.db.QueryRow(ctx, query))
}

func (s *RoundStore) GetRound(ctx context.Context, id int64) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE id = $1`
	return scanRound(s.db.QueryRow(ctx, query, id))
}

func (s *RoundStore) LastArchived(ctx context.Context) (*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE status = 'ARCHIVED' ORDER BY id DESC LIMIT 1`
	return scanRound(s.db.QueryRow(ctx, query))
}

func (s *RoundStore) ListArchived(ctx context.Context) ([]*models.Round, error) {
	query := `SELECT ` + roundColumns + ` FROM rounds WHERE status = 'ARCHIVED' ORDER BY id DESC`
	rows, err := s.db.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var rounds []*models.Round
	for rows.Next() {
		r, err := scanRound(rows)
		if err != nil {
			return nil, err
		}
		rounds = append(rounds, r)
	}
	return rounds, rows.Err()
}

func (s *RoundStore) CreateRound(ctx context.Context, r *models.Round) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO rounds (matches, outcomes, pot, jackpot, status, deadline, winners)
		VALUES ($1, $2, $3, $4, $5, $6, '[]'::jsonb)
		RETURNING id, created_at, updated_at
	`, r.Matches, r.Outcomes, r.Pot, r.Jackpot, r.Status, r.Deadline).
		Scan(&r.ID, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return errs.ErrRoundAlreadyOpen
		}
		return fmt.Errorf("failed to create round: %w", err)
	}
	return nil
}

func (s *RoundStore) UpdateRound(ctx context.Context, r *models.Round) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE rounds
		SET matches = $2, outcomes = $3, pot = $4, jackpot = $5, rollover_pot = $6,
		    rollover_jackpot = $7, status = $8, deadline = $9, bets_locked = $10,
		    winners = $11, celebrate_winners = $12, celebrate_jackpot = $13,
		    updated_at = now()
		WHERE id = $1
	`, r.ID, r.Matches, r.Outcomes, r.Pot, r.Jackpot, r.RolloverPot, r.RolloverJackpot,
		r.Status, r.Deadline, r.BetsLocked, r.Winners, r.CelebrateWinners, r.CelebrateJackpot)
	if err != nil {
		return fmt.Errorf("failed to update round: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *RoundStore) IncrementPot(ctx context.Context, roundID int64, by int64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE rounds SET pot = pot + $2, updated_at = now() WHERE id = $1
	`, roundID, by)
	if err != nil {
		return fmt.Errorf("failed to increment pot: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
