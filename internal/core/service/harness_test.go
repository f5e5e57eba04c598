package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/fannyleague/fanny-services/internal/core/broker"
	"github.com/fannyleague/fanny-services/internal/core/models"
	"github.com/fannyleague/fanny-services/internal/core/store/memstore"
)

// env wires every service over one memstore, the same shape coresvc wires
// over the pg stores.
type env struct {
	store      *memstore.Store
	ledger     *LedgerService
	rounds     *RoundService
	settlement *SettlementService
	survival   *SurvivalService
	duels      *DuelService
	leveling   *LevelingService
	users      *UserService
	archiver   *Archiver
}

func newEnv(t *testing.T) *env {
	t.Helper()
	st := memstore.New()
	ledger := NewLedgerService(st)
	rounds := NewRoundService(st, st, st, ledger, broker.Noop{})
	settlement := NewSettlementService(st, st, ledger, true)
	survival := NewSurvivalService(st, st, st, ledger)
	duels := NewDuelService(st, st, st, ledger, broker.Noop{})
	leveling := NewLevelingService(st, st, st, nil)
	users := NewUserService(st, st)
	return &env{
		store:      st,
		ledger:     ledger,
		rounds:     rounds,
		settlement: settlement,
		survival:   survival,
		duels:      duels,
		leveling:   leveling,
		users:      users,
		archiver:   NewArchiver(st, duels, survival, settlement, leveling, broker.Noop{}),
	}
}

func (e *env) seedUser(t *testing.T, id string, tokens int64) {
	t.Helper()
	e.store.PutUser(models.User{ID: id, Username: id, Role: models.RoleUser, Tokens: tokens, Level: 1})
}

func (e *env) balance(t *testing.T, userID string) int64 {
	t.Helper()
	b, err := e.ledger.Balance(context.Background(), userID)
	require.NoError(t, err)
	return b
}

func (e *env) user(t *testing.T, id string) *models.User {
	t.Helper()
	u, err := e.store.GetUser(context.Background(), id)
	require.NoError(t, err)
	require.NotNil(t, u)
	return u
}

// testSlate is a full matchday pairing list. The last four matches form
// the reserved tail excluded from survival picks.
func testSlate() []models.Match {
	pairs := [models.MatchesPerRound][2]string{
		{"Milan", "Inter"},
		{"Juventus", "Napoli"},
		{"Roma", "Lazio"},
		{"Atalanta", "Fiorentina"},
		{"Bologna", "Torino"},
		{"Udinese", "Genoa"},
		{"Cagliari", "Verona"},
		{"Lecce", "Empoli"},
		{"Monza", "Salernitana"},
		{"Sassuolo", "Frosinone"},
		{"Parma", "Como"},
		{"Venezia", "Cremonese"},
	}
	matches := make([]models.Match, models.MatchesPerRound)
	for i, p := range pairs {
		matches[i] = models.Match{Home: p[0], Away: p[1], League: "SERIE A"}
	}
	return matches
}

// openRound opens a round with the test slate and a far deadline.
func (e *env) openRound(t *testing.T) *models.Round {
	t.Helper()
	r, err := e.rounds.Open(context.Background(), time.Now().Add(24*time.Hour))
	require.NoError(t, err)
	for i, m := range testSlate() {
		r, err = e.rounds.UpdateMatch(context.Background(), i, m)
		require.NoError(t, err)
	}
	return r
}

// declareAll sets every match outcome; "" entries are skipped.
func (e *env) declareAll(t *testing.T, outcomes []string) *models.Round {
	t.Helper()
	var (
		r   *models.Round
		err error
	)
	for i, o := range outcomes {
		if o == "" {
			continue
		}
		r, err = e.rounds.DeclareOutcome(context.Background(), i, o)
		require.NoError(t, err)
	}
	require.NotNil(t, r)
	return r
}

// allHome is an outcome vector declaring every match a home win.
func allHome() []string {
	out := make([]string, models.MatchesPerRound)
	for i := range out {
		out[i] = models.OutcomeHome
	}
	return out
}

// guessesScoring builds a prediction set that scores exactly n against the
// given fully declared outcome vector.
func guessesScoring(outcomes []string, n int) []string {
	preds := make([]string, len(outcomes))
	for i, o := range outcomes {
		if i < n {
			preds[i] = o
			continue
		}
		if o == models.OutcomeHome {
			preds[i] = models.OutcomeDraw
		} else {
			preds[i] = models.OutcomeHome
		}
	}
	return preds
}
