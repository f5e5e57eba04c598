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

// LedgerStore writes dr/cr entries and their balance effects in one
// transaction. The event_ref unique constraint makes every logical event
// apply at most once.
type LedgerStore struct {
	db *pgxpool.Pool
}

func NewLedgerStore(db *pgxpool.Pool) *LedgerStore {
	return &LedgerStore{db: db}
}

func (s *LedgerStore) Apply(ctx context.Context, entries ...*models.LedgerEntry) (bool, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return false, fmt.Errorf("begin ledger tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, e := range entries {
		var exists bool
		err := tx.QueryRow(ctx,
			`SELECT EXISTS(SELECT 1 FROM ledger_entries WHERE event_ref = $1)`,
			e.EventRef,
		).Scan(&exists)
		if err != nil {
			return false, fmt.Errorf("check event ref: %w", err)
		}
		if exists {
			// the whole event was applied before
			return false, nil
		}
	}

	for _, e := range entries {
		// conditional update keeps the balance non-negative without a
		// read-then-write race
		tag, err := tx.Exec(ctx, `
			UPDATE profiles
			SET tokens = tokens + $2 - $3, updated_at = now()
			WHERE id = $1 AND tokens + $2 - $3 >= 0
		`, e.UserID, e.Cr, e.Dr)
		if err != nil {
			return false, fmt.Errorf("apply balance change: %w", err)
		}
		if tag.RowsAffected() == 0 {
			var exists bool
			if err := tx.QueryRow(ctx,
				`SELECT EXISTS(SELECT 1 FROM profiles WHERE id = $1)`, e.UserID,
			).Scan(&exists); err != nil {
				return false, err
			}
			if !exists {
				return false, errs.ErrNotFound
			}
			return false, errs.ErrInsufficientFunds
		}

		_, err = tx.Exec(ctx, `
			INSERT INTO ledger_entries (user_id, ttype, dr, cr, event_ref)
			VALUES ($1, $2, $3, $4, $5)
		`, e.UserID, e.TType, e.Dr, e.Cr, e.EventRef)
		if err != nil {
			var pgErr *pgconn.PgError
			if errors.As(err, &pgErr) && pgErr.Code == "23505" {
				// concurrent apply with the same event ref won the race
				return false, nil
			}
			return false, fmt.Errorf("insert ledger entry: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return false, fmt.Errorf("commit ledger tx: %w", err)
	}
	return true, nil
}

func (s *LedgerStore) Balance(ctx context.Context, userID string) (int64, error) {
	var tokens int64
	err := s.db.QueryRow(ctx, `SELECT tokens FROM profiles WHERE id = $1`, userID).Scan(&tokens)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, errs.ErrNotFound
		}
		return 0, fmt.Errorf("failed to get balance: %w", err)
	}
	return tokens, nil
}
