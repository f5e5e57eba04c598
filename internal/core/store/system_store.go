package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// SystemStore wipes all game state for the admin full reset.
type SystemStore struct {
	db *pgxpool.Pool
}

func NewSystemStore(db *pgxpool.Pool) *SystemStore {
	return &SystemStore{db: db}
}

func (s *SystemStore) ResetSystem(ctx context.Context, defaultTokens int64) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin reset tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, table := range []string{
		"duels", "survival_picks", "survival_players", "survival_seasons",
		"bets", "rounds", "ledger_entries",
	} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("wipe %s: %w", table, err)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE profiles
		SET tokens = $1, total_points = 0, wins_1x2 = 0, wins_survival = 0,
		    level = 1, accuracy = 0, bets_placed = 0, rounds_played = 0,
		    total_tokens_won = 0, updated_at = now()
	`, defaultTokens)
	if err != nil {
		return fmt.Errorf("restore default balances: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit reset tx: %w", err)
	}
	return nil
}
