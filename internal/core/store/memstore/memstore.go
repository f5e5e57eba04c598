// Package memstore is an in-memory implementation of the store ports,
// guarded by a single mutex. It backs the engine tests and the local
// single-node mode; the pg stores in internal/core/store are the
// production implementations.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/fannyleague/fanny-services/internal/core/errs"
	"github.com/fannyleague/fanny-services/internal/core/models"
	"github.com/google/uuid"
)

type Store struct {
	mu sync.Mutex

	users   map[string]models.User
	ledger  []models.LedgerEntry
	applied map[string]bool // event refs already applied

	rounds      map[int64]models.Round
	nextRoundID int64

	bets map[string]models.Bet // id -> bet

	seasons      map[int64]models.SurvivalSeason
	nextSeasonID int64
	players      map[int64]models.SurvivalPlayer
	nextPlayerID int64
	picks        map[int64]models.SurvivalPick
	nextPickID   int64

	duels map[string]models.Duel
}

func New() *Store {
	s := &Store{}
	s.reset()
	return s
}

func (s *Store) reset() {
	s.users = make(map[string]models.User)
	s.ledger = nil
	s.applied = make(map[string]bool)
	s.rounds = make(map[int64]models.Round)
	s.nextRoundID = 0
	s.bets = make(map[string]models.Bet)
	s.seasons = make(map[int64]models.SurvivalSeason)
	s.nextSeasonID = 0
	s.players = make(map[int64]models.SurvivalPlayer)
	s.nextPlayerID = 0
	s.picks = make(map[int64]models.SurvivalPick)
	s.nextPickID = 0
	s.duels = make(map[string]models.Duel)
}

// PutUser seeds or replaces a user record directly; test and bootstrap
// helper, not part of the ports.
func (s *Store) PutUser(u models.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	s.users[u.ID] = u
}

// --- UserStore ---

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[id]
	if !ok {
		return nil, nil
	}
	return cloneUser(u), nil
}

func (s *Store) ListByPoints(ctx context.Context, limit int) ([]*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*models.User, 0, len(s.users))
	for _, u := range s.users {
		out = append(out, cloneUser(u))
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalPoints != out[j].TotalPoints {
			return out[i].TotalPoints > out[j].TotalPoints
		}
		return out[i].ID < out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (s *Store) IncrementBetsPlaced(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return errs.ErrNotFound
	}
	u.BetsPlaced++
	u.UpdatedAt = time.Now()
	s.users[userID] = u
	return nil
}

func (s *Store) AddWin(ctx context.Context, userID string, kind string, tokensWon int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return errs.ErrNotFound
	}
	if kind == "survival" {
		u.WinsSurvival++
	} else {
		u.Wins1X2++
	}
	u.TotalTokenWon += tokensWon
	u.UpdatedAt = time.Now()
	s.users[userID] = u
	return nil
}

func (s *Store) UpdateAggregates(ctx context.Context, in *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[in.ID]
	if !ok {
		return errs.ErrNotFound
	}
	u.TotalPoints = in.TotalPoints
	u.RoundsPlayed = in.RoundsPlayed
	u.Accuracy = in.Accuracy
	u.Level = in.Level
	u.UpdatedAt = time.Now()
	s.users[in.ID] = u
	return nil
}

func (s *Store) ResetAll(ctx context.Context, defaultTokens int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resetUsersLocked(defaultTokens)
	return nil
}

func (s *Store) resetUsersLocked(defaultTokens int64) {
	for id, u := range s.users {
		u.Tokens = defaultTokens
		u.TotalPoints = 0
		u.Wins1X2 = 0
		u.WinsSurvival = 0
		u.Level = 1
		u.Accuracy = u.Accuracy.Sub(u.Accuracy) // zero
		u.BetsPlaced = 0
		u.RoundsPlayed = 0
		u.TotalTokenWon = 0
		s.users[id] = u
	}
}

// --- LedgerStore ---

func (s *Store) Apply(ctx context.Context, entries ...*models.LedgerEntry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, e := range entries {
		if s.applied[e.EventRef] {
			return false, nil
		}
	}
	// validate all debits before mutating anything
	balances := make(map[string]int64)
	for _, e := range entries {
		if _, ok := balances[e.UserID]; !ok {
			u, ok := s.users[e.UserID]
			if !ok {
				return false, errs.ErrNotFound
			}
			balances[e.UserID] = u.Tokens
		}
		balances[e.UserID] += e.Cr - e.Dr
		if balances[e.UserID] < 0 {
			return false, errs.ErrInsufficientFunds
		}
	}
	now := time.Now()
	for _, e := range entries {
		u := s.users[e.UserID]
		u.Tokens += e.Cr - e.Dr
		u.UpdatedAt = now
		s.users[e.UserID] = u
		s.applied[e.EventRef] = true
		rec := *e
		rec.ID = int64(len(s.ledger) + 1)
		rec.CreatedAt = now
		s.ledger = append(s.ledger, rec)
	}
	return true, nil
}

func (s *Store) Balance(ctx context.Context, userID string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return 0, errs.ErrNotFound
	}
	return u.Tokens, nil
}

// --- RoundStore ---

func (s *Store) GetOpenRound(ctx context.Context) (*models.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if r := s.openRoundLocked(); r != nil {
		return cloneRound(*r), nil
	}
	return nil, nil
}

func (s *Store) openRoundLocked() *models.Round {
	for id := range s.rounds {
		r := s.rounds[id]
		if r.Status == models.RoundOpen {
			return &r
		}
	}
	return nil
}

func (s *Store) GetRound(ctx context.Context, id int64) (*models.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[id]
	if !ok {
		return nil, nil
	}
	return cloneRound(r), nil
}

func (s *Store) LastArchived(ctx context.Context) (*models.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var last *models.Round
	for id := range s.rounds {
		r := s.rounds[id]
		if r.Status == models.RoundArchived && (last == nil || r.ID > last.ID) {
			last = cloneRound(r)
		}
	}
	return last, nil
}

func (s *Store) ListArchived(ctx context.Context) ([]*models.Round, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Round
	for id := range s.rounds {
		r := s.rounds[id]
		if r.Status == models.RoundArchived {
			out = append(out, cloneRound(r))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	return out, nil
}

func (s *Store) CreateRound(ctx context.Context, r *models.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.openRoundLocked() != nil {
		return errs.ErrRoundAlreadyOpen
	}
	s.nextRoundID++
	r.ID = s.nextRoundID
	r.CreatedAt = time.Now()
	r.UpdatedAt = r.CreatedAt
	s.rounds[r.ID] = *cloneRound(*r)
	return nil
}

func (s *Store) UpdateRound(ctx context.Context, r *models.Round) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rounds[r.ID]; !ok {
		return errs.ErrNotFound
	}
	r.UpdatedAt = time.Now()
	s.rounds[r.ID] = *cloneRound(*r)
	return nil
}

func (s *Store) IncrementPot(ctx context.Context, roundID int64, by int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.rounds[roundID]
	if !ok {
		return errs.ErrNotFound
	}
	r.Pot += by
	r.UpdatedAt = time.Now()
	s.rounds[roundID] = r
	return nil
}

// --- BetStore ---

func (s *Store) CreateBet(ctx context.Context, b *models.Bet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.bets {
		if existing.UserID == b.UserID && existing.RoundID == b.RoundID {
			return errs.ErrDuplicateBet
		}
	}
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	b.CreatedAt = time.Now()
	s.bets[b.ID] = *cloneBet(*b)
	return nil
}

func (s *Store) GetUserBet(ctx context.Context, roundID int64, userID string) (*models.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.bets {
		b := s.bets[id]
		if b.RoundID == roundID && b.UserID == userID {
			return cloneBet(b), nil
		}
	}
	return nil, nil
}

func (s *Store) ListBets(ctx context.Context, roundID int64) ([]*models.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Bet
	for id := range s.bets {
		b := s.bets[id]
		if b.RoundID == roundID {
			out = append(out, cloneBet(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].UserID < out[j].UserID })
	return out, nil
}

func (s *Store) ListUserBets(ctx context.Context, userID string) ([]*models.Bet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Bet
	for id := range s.bets {
		b := s.bets[id]
		if b.UserID == userID {
			out = append(out, cloneBet(b))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RoundID < out[j].RoundID })
	return out, nil
}

func (s *Store) DeleteBets(ctx context.Context, roundID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.bets {
		if s.bets[id].RoundID == roundID {
			delete(s.bets, id)
		}
	}
	return nil
}

// --- SurvivalStore ---

func (s *Store) CurrentSeason(ctx context.Context) (*models.SurvivalSeason, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if ss := s.currentSeasonLocked(); ss != nil {
		c := *ss
		return &c, nil
	}
	return nil, nil
}

func (s *Store) currentSeasonLocked() *models.SurvivalSeason {
	var cur *models.SurvivalSeason
	for id := range s.seasons {
		ss := s.seasons[id]
		if ss.Status != models.SeasonCompleted && (cur == nil || ss.ID > cur.ID) {
			cur = &ss
		}
	}
	return cur
}

func (s *Store) CreateSeason(ctx context.Context, season *models.SurvivalSeason) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.currentSeasonLocked() != nil {
		return errs.ErrSeasonExists
	}
	s.nextSeasonID++
	season.ID = s.nextSeasonID
	season.CreatedAt = time.Now()
	season.UpdatedAt = season.CreatedAt
	s.seasons[season.ID] = *season
	return nil
}

func (s *Store) UpdateSeason(ctx context.Context, season *models.SurvivalSeason) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.seasons[season.ID]
	if !ok {
		return errs.ErrNotFound
	}
	// prize_pool only moves through IncrementPrizePool
	season.PrizePool = stored.PrizePool
	season.UpdatedAt = time.Now()
	s.seasons[season.ID] = *season
	return nil
}

func (s *Store) IncrementPrizePool(ctx context.Context, seasonID int64, by int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	season, ok := s.seasons[seasonID]
	if !ok {
		return errs.ErrNotFound
	}
	season.PrizePool += by
	season.UpdatedAt = time.Now()
	s.seasons[seasonID] = season
	return nil
}

func (s *Store) GetPlayer(ctx context.Context, seasonID int64, userID string) (*models.SurvivalPlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.players {
		p := s.players[id]
		if p.SeasonID == seasonID && p.UserID == userID {
			return clonePlayer(p), nil
		}
	}
	return nil, nil
}

func (s *Store) ListPlayers(ctx context.Context, seasonID int64) ([]*models.SurvivalPlayer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.SurvivalPlayer
	for id := range s.players {
		p := s.players[id]
		if p.SeasonID == seasonID {
			out = append(out, clonePlayer(p))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) CreatePlayer(ctx context.Context, p *models.SurvivalPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.players {
		existing := s.players[id]
		if existing.SeasonID == p.SeasonID && existing.UserID == p.UserID {
			return errs.ErrAlreadyJoined
		}
	}
	s.nextPlayerID++
	p.ID = s.nextPlayerID
	p.CreatedAt = time.Now()
	p.UpdatedAt = p.CreatedAt
	s.players[p.ID] = *clonePlayer(*p)
	return nil
}

func (s *Store) UpdatePlayer(ctx context.Context, p *models.SurvivalPlayer) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.players[p.ID]; !ok {
		return errs.ErrNotFound
	}
	p.UpdatedAt = time.Now()
	s.players[p.ID] = *clonePlayer(*p)
	return nil
}

func (s *Store) CreatePick(ctx context.Context, p *models.SurvivalPick) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.picks {
		existing := s.picks[id]
		if existing.PlayerID == p.PlayerID && existing.RoundID == p.RoundID {
			return errs.ErrPickAlreadyExists
		}
	}
	s.nextPickID++
	p.ID = s.nextPickID
	p.CreatedAt = time.Now()
	s.picks[p.ID] = *p
	return nil
}

func (s *Store) GetPick(ctx context.Context, playerID int64, roundID int64) (*models.SurvivalPick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id := range s.picks {
		p := s.picks[id]
		if p.PlayerID == playerID && p.RoundID == roundID {
			c := p
			return &c, nil
		}
	}
	return nil, nil
}

func (s *Store) ListPicks(ctx context.Context, roundID int64) ([]*models.SurvivalPick, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.SurvivalPick
	for id := range s.picks {
		p := s.picks[id]
		if p.RoundID == roundID {
			c := p
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *Store) UpdatePick(ctx context.Context, p *models.SurvivalPick) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.picks[p.ID]; !ok {
		return errs.ErrNotFound
	}
	s.picks[p.ID] = *p
	return nil
}

// --- DuelStore ---

func (s *Store) CreateDuel(ctx context.Context, d *models.Duel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d.ID == "" {
		d.ID = uuid.NewString()
	}
	d.CreatedAt = time.Now()
	d.UpdatedAt = d.CreatedAt
	s.duels[d.ID] = *d
	return nil
}

func (s *Store) GetDuel(ctx context.Context, id string) (*models.Duel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	d, ok := s.duels[id]
	if !ok {
		return nil, nil
	}
	c := d
	return &c, nil
}

func (s *Store) ListByRound(ctx context.Context, roundID int64) ([]*models.Duel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Duel
	for id := range s.duels {
		d := s.duels[id]
		if d.RoundID == roundID {
			c := d
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) ListUserDuels(ctx context.Context, roundID int64, userID string) ([]*models.Duel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*models.Duel
	for id := range s.duels {
		d := s.duels[id]
		if d.RoundID == roundID && (d.ChallengerID == userID || d.OpponentID == userID) {
			c := d
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateDuel(ctx context.Context, d *models.Duel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.duels[d.ID]; !ok {
		return errs.ErrNotFound
	}
	d.UpdatedAt = time.Now()
	s.duels[d.ID] = *d
	return nil
}

// --- SystemStore ---

func (s *Store) ResetSystem(ctx context.Context, defaultTokens int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	users := s.users
	s.reset()
	s.users = users
	s.resetUsersLocked(defaultTokens)
	return nil
}

// --- clone helpers ---

func cloneUser(u models.User) *models.User {
	c := u
	return &c
}

func cloneRound(r models.Round) *models.Round {
	c := r
	c.Matches = append([]models.Match(nil), r.Matches...)
	c.Outcomes = append([]string(nil), r.Outcomes...)
	c.Winners = append([]string(nil), r.Winners...)
	return &c
}

func cloneBet(b models.Bet) *models.Bet {
	c := b
	c.Predictions = append([]string(nil), b.Predictions...)
	return &c
}

func clonePlayer(p models.SurvivalPlayer) *models.SurvivalPlayer {
	c := p
	c.UsedTeams = append([]string(nil), p.UsedTeams...)
	return &c
}
