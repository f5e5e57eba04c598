package service

import (
	"context"
	"fmt"

	"github.com/fannyleague/fanny-services/internal/core/errs"
	"github.com/fannyleague/fanny-services/internal/core/models"
)

// LedgerService is the sole owner of token balance mutations. Every
// mutation carries an event ref so a retried settlement step applies at
// most once.
type LedgerService struct {
	store LedgerStore
}

func NewLedgerService(store LedgerStore) *LedgerService {
	return &LedgerService{store: store}
}

func (s *LedgerService) Balance(ctx context.Context, userID string) (int64, error) {
	return s.store.Balance(ctx, userID)
}

// Debit removes amount from the user's balance. Fails with
// errs.ErrInsufficientFunds when the balance cannot cover it. Returns
// false when eventRef was already applied.
func (s *LedgerService) Debit(ctx context.Context, userID string, amount int64, ttype, eventRef string) (bool, error) {
	if amount < 0 {
		return false, fmt.Errorf("%w: debit amount %d is negative", errs.ErrInvalidInput, amount)
	}
	return s.store.Apply(ctx, &models.LedgerEntry{
		UserID:   userID,
		TType:    ttype,
		Dr:       amount,
		EventRef: eventRef,
	})
}

// Credit adds amount to the user's balance; always succeeds for a fresh
// event ref.
func (s *LedgerService) Credit(ctx context.Context, userID string, amount int64, ttype, eventRef string) (bool, error) {
	if amount < 0 {
		return false, fmt.Errorf("%w: credit amount %d is negative", errs.ErrInvalidInput, amount)
	}
	return s.store.Apply(ctx, &models.LedgerEntry{
		UserID:   userID,
		TType:    ttype,
		Cr:       amount,
		EventRef: eventRef,
	})
}

// Transfer debits from and credits to as one atomic event.
func (s *LedgerService) Transfer(ctx context.Context, from, to string, amount int64, ttype, eventRef string) (bool, error) {
	if amount < 0 {
		return false, fmt.Errorf("%w: transfer amount %d is negative", errs.ErrInvalidInput, amount)
	}
	return s.store.Apply(ctx,
		&models.LedgerEntry{UserID: from, TType: ttype, Dr: amount, EventRef: eventRef + ":dr"},
		&models.LedgerEntry{UserID: to, TType: ttype, Cr: amount, EventRef: eventRef + ":cr"},
	)
}
