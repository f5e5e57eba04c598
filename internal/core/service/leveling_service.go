package service

import (
	"context"
	"fmt"

	"github.com/fannyleague/fanny-services/internal/core/models"
	"github.com/shopspring/decimal"
)

// Tier is one level threshold row. A user holds the highest tier whose
// thresholds are all met.
type Tier struct {
	Level        int   `yaml:"level"`
	MinBets      int64 `yaml:"min_bets"`
	MinWins      int64 `yaml:"min_wins"`
	MinTokensWon int64 `yaml:"min_tokens_won"`
}

// DefaultTiers is used when no tiers file is configured.
var DefaultTiers = []Tier{
	{Level: 1},
	{Level: 2, MinBets: 5, MinWins: 1, MinTokensWon: 5},
	{Level: 3, MinBets: 15, MinWins: 3, MinTokensWon: 25},
	{Level: 4, MinBets: 30, MinWins: 6, MinTokensWon: 75},
	{Level: 5, MinBets: 50, MinWins: 10, MinTokensWon: 200},
}

// LevelingService recomputes per-user accuracy, lifetime points and level
// tier from settled history. Refresh overwrites rather than increments, so
// a retried archive converges on the same aggregates.
type LevelingService struct {
	users  UserStore
	bets   BetStore
	rounds RoundStore
	tiers  []Tier
}

func NewLevelingService(users UserStore, bets BetStore, rounds RoundStore, tiers []Tier) *LevelingService {
	if len(tiers) == 0 {
		tiers = DefaultTiers
	}
	return &LevelingService{users: users, bets: bets, rounds: rounds, tiers: tiers}
}

// Refresh recomputes the aggregates of every user holding a bet on the
// round being archived. The round is passed in already carrying its final
// outcome vector but possibly not yet flipped to ARCHIVED.
func (s *LevelingService) Refresh(ctx context.Context, round *models.Round) error {
	bets, err := s.bets.ListBets(ctx, round.ID)
	if err != nil {
		return err
	}
	for _, b := range bets {
		if err := s.refreshUser(ctx, b.UserID, round); err != nil {
			return fmt.Errorf("refresh stats for %s: %w", b.UserID, err)
		}
	}
	return nil
}

func (s *LevelingService) refreshUser(ctx context.Context, userID string, current *models.Round) error {
	u, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if u == nil {
		return nil
	}

	all, err := s.bets.ListUserBets(ctx, userID)
	if err != nil {
		return err
	}

	var points, played int64
	for _, b := range all {
		var r *models.Round
		if b.RoundID == current.ID {
			r = current
		} else {
			r, err = s.rounds.GetRound(ctx, b.RoundID)
			if err != nil {
				return err
			}
			if r == nil || r.Status != models.RoundArchived {
				continue
			}
		}
		points += int64(b.Score(r.Outcomes))
		played++
	}

	u.TotalPoints = points
	u.RoundsPlayed = played
	if played > 0 {
		guesses := decimal.NewFromInt(played * int64(models.MatchesPerRound))
		u.Accuracy = decimal.NewFromInt(points).Div(guesses).Round(2)
	} else {
		u.Accuracy = decimal.Zero
	}
	u.Level = s.levelFor(u)
	return s.users.UpdateAggregates(ctx, u)
}

// levelFor scans tiers from highest to lowest and stops at the first one
// the user satisfies. Tiers are not assumed to be monotonic supersets.
func (s *LevelingService) levelFor(u *models.User) int {
	for i := len(s.tiers) - 1; i >= 0; i-- {
		t := s.tiers[i]
		if u.BetsPlaced >= t.MinBets && u.Wins1X2+u.WinsSurvival >= t.MinWins && u.TotalTokenWon >= t.MinTokensWon {
			return t.Level
		}
	}
	return 1
}
