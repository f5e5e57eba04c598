package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fannyleague/fanny-services/internal/core/service"
)

func TestLoadTiers_DefaultsWhenUnset(t *testing.T) {
	t.Setenv("TIERS_FILE", "")
	assert.Equal(t, service.DefaultTiers, LoadTiers())
}

func TestLoadTiers_DefaultsWhenUnreadable(t *testing.T) {
	t.Setenv("TIERS_FILE", "/nonexistent/tiers.yaml")
	assert.Equal(t, service.DefaultTiers, LoadTiers())
}

func TestLoadTiers_ParsesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.yaml")
	body := `tiers:
  - level: 1
  - level: 2
    min_bets: 3
    min_wins: 1
    min_tokens_won: 2
`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	t.Setenv("TIERS_FILE", path)

	tiers := LoadTiers()
	require.Len(t, tiers, 2)
	assert.Equal(t, service.Tier{Level: 2, MinBets: 3, MinWins: 1, MinTokensWon: 2}, tiers[1])
}

func TestLoadTiers_DefaultsOnBadYaml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tiers.yaml")
	require.NoError(t, os.WriteFile(path, []byte("tiers: {nope"), 0o644))
	t.Setenv("TIERS_FILE", path)

	assert.Equal(t, service.DefaultTiers, LoadTiers())
}
