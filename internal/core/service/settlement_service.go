package service

import (
	"context"
	"fmt"

	"github.com/fannyleague/fanny-services/internal/core/models"
	log "github.com/sirupsen/logrus"
)

// WinThreshold is the minimum score a prediction set must reach for the
// pot to be paid out.
const WinThreshold = 7

// SettlementOutcome is what one round's prediction settlement produced.
type SettlementOutcome struct {
	MaxScore        int      `json:"max_score"`
	Winners         []string `json:"winners"` // user ids with score == MaxScore
	Payout          int64    `json:"payout"`  // per winner
	Burned          int64    `json:"burned"`  // integer remainder, not distributed
	RolloverPot     int64    `json:"rollover_pot"`
	RolloverJackpot int64    `json:"rollover_jackpot"`
	SuperJackpot    bool     `json:"super_jackpot"` // perfect score by a jackpot opt-in bet
}

// SettlementService scores every prediction set of a finished round and
// distributes the pot.
type SettlementService struct {
	bets   BetStore
	users  UserStore
	ledger *LedgerService

	// preserveJackpot keeps an unwon jackpot for the next round instead of
	// resetting it.
	preserveJackpot bool
}

func NewSettlementService(bets BetStore, users UserStore, ledger *LedgerService, preserveJackpot bool) *SettlementService {
	return &SettlementService{bets: bets, users: users, ledger: ledger, preserveJackpot: preserveJackpot}
}

// Settle computes winners by threshold and pays them. Credits are keyed by
// round and user so a re-run after a partial failure never double-pays;
// the win counters move only when the credit actually applied.
func (s *SettlementService) Settle(ctx context.Context, r *models.Round) (*SettlementOutcome, error) {
	bets, err := s.bets.ListBets(ctx, r.ID)
	if err != nil {
		return nil, fmt.Errorf("list bets for round %d: %w", r.ID, err)
	}

	out := &SettlementOutcome{}
	for _, b := range bets {
		if score := b.Score(r.Outcomes); score > out.MaxScore {
			out.MaxScore = score
		}
	}

	if out.MaxScore < WinThreshold {
		out.RolloverPot = r.Pot
		if s.preserveJackpot {
			out.RolloverJackpot = r.Jackpot
		}
		log.Infof("round %d settled without winners, pot %d rolls over", r.ID, r.Pot)
		return out, nil
	}

	for _, b := range bets {
		if b.Score(r.Outcomes) != out.MaxScore {
			continue
		}
		out.Winners = append(out.Winners, b.UserID)
		if out.MaxScore == len(r.Matches) && b.IncludeJackpot {
			out.SuperJackpot = true
		}
	}

	total := r.Pot + r.Jackpot
	out.Payout = total / int64(len(out.Winners))
	out.Burned = total - out.Payout*int64(len(out.Winners))

	for _, userID := range out.Winners {
		eventRef := fmt.Sprintf("settle:%d:%s", r.ID, userID)
		applied, err := s.ledger.Credit(ctx, userID, out.Payout, "payout", eventRef)
		if err != nil {
			return nil, fmt.Errorf("pay winner %s of round %d: %w", userID, r.ID, err)
		}
		if applied {
			if err := s.users.AddWin(ctx, userID, "1x2", out.Payout); err != nil {
				return nil, fmt.Errorf("record win for %s: %w", userID, err)
			}
		}
	}

	log.Infof("round %d settled: %d winner(s) at score %d, payout %d, burned %d",
		r.ID, len(out.Winners), out.MaxScore, out.Payout, out.Burned)
	return out, nil
}
