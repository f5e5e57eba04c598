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

type SurvivalStore struct {
	db *pgxpool.Pool
}

func NewSurvivalStore(db *pgxpool.Pool) *SurvivalStore {
	return &SurvivalStore{db: db}
}

const seasonColumns = `id, status, prize_pool, start_round_id, stalemate, created_at, updated_at`

func scanSeason(row pgx.Row) (*models.SurvivalSeason, error) {
	ss := &models.SurvivalSeason{}
	err := row.Scan(
		&ss.ID,
		&ss.Status,
		&ss.PrizePool,
		&ss.StartRoundID,
		&ss.Stalemate,
		&ss.CreatedAt,
		&ss.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan season: %w", err)
	}
	return ss, nil
}

func (s *SurvivalStore) CurrentSeason(ctx context.Context) (*models.SurvivalSeason, error) {
	query := `SELECT ` + seasonColumns + `
		FROM survival_seasons WHERE status IN ('OPEN', 'ACTIVE')
		ORDER BY id DESC LIMIT 1`
	return scanSeason(s.db.QueryRow(ctx, query))
}

// CreateSeason relies on the one_running_season partial unique index
// (status <> 'COMPLETED').
func (s *SurvivalStore) CreateSeason(ctx context.Context, season *models.SurvivalSeason) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO survival_seasons (status, prize_pool)
		VALUES ($1, 0)
		RETURNING id, created_at, updated_at
	`, season.Status).Scan(&season.ID, &season.CreatedAt, &season.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return errs.ErrSeasonExists
		}
		return fmt.Errorf("failed to create season: %w", err)
	}
	return nil
}

// UpdateSeason writes status, start round and stalemate. The prize pool
// only moves through IncrementPrizePool so concurrent joins cannot clobber
// each other's fee.
func (s *SurvivalStore) UpdateSeason(ctx context.Context, season *models.SurvivalSeason) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE survival_seasons
		SET status = $2, start_round_id = $3, stalemate = $4, updated_at = now()
		WHERE id = $1
	`, season.ID, season.Status, season.StartRoundID, season.Stalemate)
	if err != nil {
		return fmt.Errorf("failed to update season: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

func (s *SurvivalStore) IncrementPrizePool(ctx context.Context, seasonID int64, by int64) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE survival_seasons SET prize_pool = prize_pool + $2, updated_at = now() WHERE id = $1
	`, seasonID, by)
	if err != nil {
		return fmt.Errorf("failed to increment prize pool: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

const playerColumns = `id, season_id, user_id, status, used_teams, eliminated_at_round_id, created_at, updated_at`

func scanPlayer(row pgx.Row) (*models.SurvivalPlayer, error) {
	p := &models.SurvivalPlayer{}
	err := row.Scan(
		&p.ID,
		&p.SeasonID,
		&p.UserID,
		&p.Status,
		&p.UsedTeams,
		&p.EliminatedAtID,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan survival player: %w", err)
	}
	return p, nil
}

func (s *SurvivalStore) GetPlayer(ctx context.Context, seasonID int64, userID string) (*models.SurvivalPlayer, error) {
	query := `SELECT ` + playerColumns + ` FROM survival_players WHERE season_id = $1 AND user_id = $2`
	return scanPlayer(s.db.QueryRow(ctx, query, seasonID, userID))
}

func (s *SurvivalStore) ListPlayers(ctx context.Context, seasonID int64) ([]*models.SurvivalPlayer, error) {
	query := `SELECT ` + playerColumns + ` FROM survival_players WHERE season_id = $1 ORDER BY id`
	rows, err := s.db.Query(ctx, query, seasonID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []*models.SurvivalPlayer
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// CreatePlayer relies on the unique_season_user constraint.
func (s *SurvivalStore) CreatePlayer(ctx context.Context, p *models.SurvivalPlayer) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO survival_players (season_id, user_id, status, used_teams)
		VALUES ($1, $2, $3, '[]'::jsonb)
		RETURNING id, created_at, updated_at
	`, p.SeasonID, p.UserID, p.Status).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return errs.ErrAlreadyJoined
		}
		return fmt.Errorf("failed to create survival player: %w", err)
	}
	return nil
}

func (s *SurvivalStore) UpdatePlayer(ctx context.Context, p *models.SurvivalPlayer) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE survival_players
		SET status = $2, used_teams = $3, eliminated_at_round_id = $4, updated_at = now()
		WHERE id = $1
	`, p.ID, p.Status, p.UsedTeams, p.EliminatedAtID)
	if err != nil {
		return fmt.Errorf("failed to update survival player: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}

const pickColumns = `id, player_id, round_id, team, result, created_at`

func scanPick(row pgx.Row) (*models.SurvivalPick, error) {
	p := &models.SurvivalPick{}
	err := row.Scan(&p.ID, &p.PlayerID, &p.RoundID, &p.Team, &p.Result, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan survival pick: %w", err)
	}
	return p, nil
}

// CreatePick relies on the unique_player_round constraint.
func (s *SurvivalStore) CreatePick(ctx context.Context, p *models.SurvivalPick) error {
	err := s.db.QueryRow(ctx, `
		INSERT INTO survival_picks (player_id, round_id, team, result)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at
	`, p.PlayerID, p.RoundID, p.Team, p.Result).Scan(&p.ID, &p.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return errs.ErrPickAlreadyExists
		}
		return fmt.Errorf("failed to create survival pick: %w", err)
	}
	return nil
}

func (s *SurvivalStore) GetPick(ctx context.Context, playerID int64, roundID int64) (*models.SurvivalPick, error) {
	query := `SELECT ` + pickColumns + ` FROM survival_picks WHERE player_id = $1 AND round_id = $2`
	return scanPick(s.db.QueryRow(ctx, query, playerID, roundID))
}

func (s *SurvivalStore) ListPicks(ctx context.Context, roundID int64) ([]*models.SurvivalPick, error) {
	query := `SELECT ` + pickColumns + ` FROM survival_picks WHERE round_id = $1 ORDER BY id`
	rows, err := s.db.Query(ctx, query, roundID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var picks []*models.SurvivalPick
	for rows.Next() {
		p, err := scanPick(rows)
		if err != nil {
			return nil, err
		}
		picks = append(picks, p)
	}
	return picks, rows.Err()
}

func (s *SurvivalStore) UpdatePick(ctx context.Context, p *models.SurvivalPick) error {
	tag, err := s.db.Exec(ctx, `
		UPDATE survival_picks SET team = $2, result = $3 WHERE id = $1
	`, p.ID, p.Team, p.Result)
	if err != nil {
		return fmt.Errorf("failed to update survival pick: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return errs.ErrNotFound
	}
	return nil
}
