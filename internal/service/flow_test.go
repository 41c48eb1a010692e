package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/dugout/internal/ingest/hittrax"
	"github.com/fortuna/dugout/internal/store"
	"github.com/fortuna/dugout/internal/store/repository"
)

const sectionedGameCSV = `Eagles,Batting Order,AB,R,H,EBH,2B,3B,HR,RBI,P,SO,DP,BB
Alice Johnson,1,4,2,3,1,1,0,0,2,15,1,0,1
Bob Carter,2,3,1,1,1,0,0,1,1,12,0,0,0
Cory Flores,3,4,1,1,0,0,0,0,0,11,2,0,0
Sharks,Batting Order,AB,R,H,EBH,2B,3B,HR,RBI,P,SO,DP,BB
Dana Ito,1,4,1,2,0,0,0,0,1,10,2,0,0
Eli Grant,2,3,0,1,0,0,0,0,0,9,1,0,1
Fay Hobbs,3,3,1,1,1,0,1,0,1,8,0,0,0
`

// Upload to leaderboard, front to back: parse a sectioned file, persist
// the game, recompute the slice and read the standings back out.
func TestUploadToLeaderboardFlow(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()

	players := repository.NewPlayerRepository(st)
	games := repository.NewGameRepository(st)
	stats := repository.NewStatsRepository(st)
	statsService := NewStatsService(stats, games, players)
	ingester := hittrax.NewIngester(games, players, stats, statsService, nil)

	result, err := ingester.IngestGameCSV(ctx, []byte(sectionedGameCSV), hittrax.UploadParams{
		League: "L", Season: "2024", Date: seedDate("2024-01-15"),
	})
	require.NoError(t, err)

	assert.Equal(t, 6, result.RowsIngested)
	assert.Equal(t, 4, result.Info.HomeScore)
	assert.Equal(t, 2, result.Info.AwayScore)
	require.NotNil(t, result.Info.Winner)
	assert.Equal(t, "Eagles", *result.Info.Winner)

	entries, err := statsService.Leaderboard(ctx, "L", "2024", "")
	require.NoError(t, err)
	require.Len(t, entries, 6)
	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].OPS, entries[i].OPS)
	}

	// Plate appearance fields survive the round trip exactly.
	alice, err := st.GetPlayerByNameTeam(ctx, "Alice Johnson", "Eagles")
	require.NoError(t, err)
	pas, err := st.GetPlateAppearancesByPlayer(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, pas, 1)
	assert.Equal(t, 4, pas[0].AB)
	assert.Equal(t, 2, pas[0].R)
	assert.Equal(t, 3, pas[0].H)
	assert.Equal(t, 1, pas[0].Doubles)
	assert.Equal(t, 0, pas[0].Triples)
	assert.Equal(t, 0, pas[0].HR)
	assert.Equal(t, 2, pas[0].RBI)
	assert.Equal(t, 1, pas[0].K)
	assert.Equal(t, 1, pas[0].BB)
}
