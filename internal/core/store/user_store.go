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

type UserStore struct {
	db *pgxpool.Pool
}

func NewUserStore(db *pgxpool.Pool) *UserStore {
	return &UserStore{db: db}
}

const userColumns = `id, username, role, tokens, total_points, wins_1x2, wins_survival,
	level, accuracy, bets_placed, rounds_played, total_tokens_won, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	u := &models.User{}
	err := row.Scan(
		&u.ID,
		&u.Username,
		&u.Role,
		&u.Tokens,
		&u.TotalPoints,
		&u.Wins1X2,
		&u.WinsSurvival,
		&u.Level,
		&u.Accuracy,
		&u.BetsPlaced,
		&u.RoundsPlayed,
		&u.TotalTokenWon,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan user: %w", err)
	}
	return u, nil
}

func (s *UserStore) GetUser(ctx context.Context, id string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM profiles WHERE id = $1`
	return scanUser(s.db.QueryRow(ctx, query, id))
}

func (s *UserStore) ListByPoints(ctx context.Context, limit int) ([]*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM profiles ORDER BY total_points DESC, id LIMIT $1`
	rows, err := s.db.Query(ctx, query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []*models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func (s *UserStore) IncrementBetsPlaced(ctx context.Context, userID string) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE profiles SET bets_placed = bets_placed + 1, updated_at = now()
		WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("failed to increment bets placed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *UserStore) AddWin(ctx context.Context, userID string, kind string, tokensWon int64) error {
	column := "wins_1x2"
	if kind == "survival" {
		column = "wins_survival"
	}
	query := fmt.Sprintf(`
		UPDATE profiles
		SET %s = %s + 1, total_tokens_won = total_tokens_won + $2, updated_at = now()
		WHERE id = $1
	`, column, column)
	tag, err := s.db.Exec(ctx, query, userID, tokensWon)
	if err != nil {
		return fmt.Errorf("failed to record win: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *UserStore) UpdateAggregates(ctx context.Context, u *models.User) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE profiles
		SET total_points = $2, rounds_played = $3, accuracy = $4, level = $5, updated_at = now()
		WHERE id = $1
	`, u.ID, u.TotalPoints, u.RoundsPlayed, u.Accuracy, u.Level)
	if err != nil {
		return fmt.Errorf("failed to update aggregates: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *UserStore) ResetAll(ctx context.Context, defaultTokens int64) error {
	_, err := s.db.Exec(ctx, `
		UPDATE profiles
		SET tokens = $1, total_points = 0, wins_1x2 = 0, wins_survival = 0,
		    level = 1, accuracy = 0, bets_placed = 0, rounds_played = 0,
		    total_tokens_won = 0, updated_at = now()
	`, defaultTokens)
	if err != nil {
		return fmt.Errorf("failed to reset profiles: %w", err)
	}
	return nil
}
