package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/fannyleague/fanny-services/internal/core/errs"
	"github.com/fannyleague/fanny-services/internal/core/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type DuelStore struct {
	db *pgxpool.Pool
}

func NewDuelStore(db *pgxpool.Pool) *DuelStore {
	return &DuelStore{db: db}
}

const duelColumns = `id, round_id, challenger_id, opponent_id, status, wager,
	challenger_score, opponent_score, winner_id, created_at, updated_at`

func scanDuel(row pgx.Row) (*models.Duel, error) {
	d := &models.Duel{}
	err := row.Scan(
		&d.ID,
		&d.RoundID,
		&d.ChallengerID,
		&d.OpponentID,
		&d.Status,
		&d.Wager,
		&d.ChallengerScore,
		&d.OpponentScore,
		&d.WinnerID,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan duel: %w", err)
	}
	return d, nil
}

func (s *DuelStore) CreateDuel(ctx context.Context, d *models.Duel) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO duels (id, round_id, challenger_id, opponent_id, status, wager, winner_id)
		VALUES ($1, $2, $3, $4, $5, $6, '')
		RETURNING created_at, updated_at
	`, d.ID, d.RoundID, d.ChallengerID, d.OpponentID, d.Status, d.Wager).
		Scan(&d.CreatedAt, &d.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create duel: %w", err)
	}
	return nil
}

func (s *DuelStore) GetDuel(ctx context.Context, id string) (*models.Duel, error) {
	query := `SELECT ` + duelColumns + ` FROM duels WHERE id = $1`
	return scanDuel(s.db.QueryRow(ctx, query, id))
}

func (s *DuelStore) ListByRound(ctx context.Context, roundID int64) ([]*models.Duel, error) {
	query := `SELECT ` + duelColumns + ` FROM duels WHERE round_id = $1 ORDER BY created_at`
	return s.list(ctx, query, roundID)
}

func (s *DuelStore) ListUserDuels(ctx context.Context, roundID int64, userID string) ([]*models.Duel, error) {
	query := `SELECT ` + duelColumns + `
		FROM duels
		WHERE round_id = $1 AND (challenger_id = $2 OR opponent_id = $2)
		ORDER BY created_at DESC`
	return s.list(ctx, query, roundID, userID)
}

func (s *DuelStore) list(ctx context.Context, query string, args ...any) ([]*models.Duel, error) {
	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var duels []*models.Duel
	for rows.Next() {
		d, err := scanDuel(rows)
		if err != nil {
			return nil, err
		}
		duels = append(duels, d)
	}
	return duels, rows.Err()
}

func (s *DuelStore) UpdateDuel(ctx context.Context, d *models.Duel) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE duels
		SET status = $2, challenger_score = $3, opponent_score = $4, winner_id = $5, updated_at = now()
		WHERE id = $1
	`, d.ID, d.Status, d.ChallengerScore, d.OpponentScore, d.WinnerID)
	if err != nil {
		return fmt.Errorf("failed to update duel: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
