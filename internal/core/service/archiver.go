package service

import (
	"context"
	"fmt"

	"github.com/fannyleague/fanny-services/internal/core/errs"
	"github.com/fannyleague/fanny-services/internal/core/models"
	log "github.com/sirupsen/logrus"
)

// ArchiveResult is returned to the admin caller for display.
type ArchiveResult struct {
	RoundID    int64              `json:"round_id"`
	Settlement *SettlementOutcome `json:"settlement"`
	Survival   *SurvivalOutcome   `json:"survival"`
}

// Archiver runs the round archival pipeline: duel resolution, survival
// processing, prediction settlement, leveling refresh, then the ARCHIVED
// transition. Every sub-step is idempotent keyed by round id, so when a
// step fails the whole call may simply be re-invoked; earlier steps will
// no-op instead of double-paying.
type Archiver struct {
	rounds     RoundStore
	duels      *DuelService
	survival   *SurvivalService
	settlement *SettlementService
	leveling   *LevelingService
	events     Publisher
}

func NewArchiver(rounds RoundStore, duels *DuelService, survival *SurvivalService,
	settlement *SettlementService, leveling *LevelingService, events Publisher) *Archiver {
	return &Archiver{
		rounds:     rounds,
		duels:      duels,
		survival:   survival,
		settlement: settlement,
		leveling:   leveling,
		events:     events,
	}
}

// Archive advances the OPEN round to ARCHIVED. Failures short of the final
// transition are systemic: they are logged with the round id and the step
// that failed, and the round stays OPEN for a retry.
func (a *Archiver) Archive(ctx context.Context) (*ArchiveResult, error) {
	r, err := a.rounds.GetOpenRound(ctx)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, errs.ErrRoundNotOpen
	}
	res := &ArchiveResult{RoundID: r.ID}

	if err := a.duels.Resolve(ctx, r); err != nil {
		return nil, a.stepFailed(r.ID, "duels", err)
	}

	res.Survival, err = a.survival.ProcessRound(ctx, r)
	if err != nil {
		return nil, a.stepFailed(r.ID, "survival", err)
	}

	res.Settlement, err = a.settlement.Settle(ctx, r)
	if err != nil {
		return nil, a.stepFailed(r.ID, "settlement", err)
	}

	if err := a.leveling.Refresh(ctx, r); err != nil {
		return nil, a.stepFailed(r.ID, "leveling", err)
	}

	r.Status = models.RoundArchived
	r.Winners = res.Settlement.Winners
	r.CelebrateWinners = len(res.Settlement.Winners) > 0
	r.CelebrateJackpot = res.Settlement.SuperJackpot
	r.RolloverPot = res.Settlement.RolloverPot
	r.RolloverJackpot = res.Settlement.RolloverJackpot
	r.Pot = 0
	r.Jackpot = 0
	if err := a.rounds.UpdateRound(ctx, r); err != nil {
		return nil, a.stepFailed(r.ID, "transition", err)
	}

	log.Infof("round %d archived: %d winner(s), rollover %d", r.ID, len(r.Winners), r.RolloverPot)
	a.events.Publish(EventRoundArchived, res)
	return res, nil
}

func (a *Archiver) stepFailed(roundID int64, step string, err error) error {
	log.Errorf("archive round %d failed at %s step: %v", roundID, step, err)
	return fmt.Errorf("archive round %d, %s step: %w", roundID, step, err)
}
