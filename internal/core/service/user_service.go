package service

import (
	"context"

	"github.com/fannyleague/fanny-services/internal/core/models"
	log "github.com/sirupsen/logrus"
)

// DefaultStartingTokens is every user's balance after a full system reset.
const DefaultStartingTokens int64 = 10

// UserService covers the profile queries the core exposes and the admin
// full reset.
type UserService struct {
	users  UserStore
	system SystemStore
}

func NewUserService(users UserStore, system SystemStore) *UserService {
	return &UserService{users: users, system: system}
}

func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetUser(ctx, id)
}

// Leaderboard returns users ordered by lifetime points, capped at 100.
func (s *UserService) Leaderboard(ctx context.Context) ([]*models.User, error) {
	return s.users.ListByPoints(ctx, 100)
}

// ResetSystem wipes all rounds, bets, seasons, picks, duels and the ledger,
// and restores every user to the default balance with zeroed aggregates.
func (s *UserService) ResetSystem(ctx context.Context) error {
	if err := s.system.ResetSystem(ctx, DefaultStartingTokens); err != nil {
		return err
	}
	log.Warn("full system reset executed")
	return nil
}
