package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/dugout/internal/store"
	"github.com/fortuna/dugout/internal/store/repository"
)

func newStatsService(st store.Store) *StatsService {
	return NewStatsService(
		repository.NewStatsRepository(st),
		repository.NewGameRepository(st),
		repository.NewPlayerRepository(st),
	)
}

func seedDate(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

// seedSeason loads two summer games plus one fall game. Alice bats in
// all three, Bob only in the first summer game.
func seedSeason(t *testing.T, st store.Store) (alice, bob *store.Player) {
	t.Helper()
	ctx := context.Background()

	alice, err := st.CreatePlayer(ctx, &store.Player{Name: "Alice Johnson", Team: "Eagles", League: "summer"})
	require.NoError(t, err)
	bob, err = st.CreatePlayer(ctx, &store.Player{Name: "Bob Carter", Team: "Sharks", League: "summer"})
	require.NoError(t, err)

	g1, err := st.CreateGame(ctx, &store.Game{League: "summer", Season: "2025", Date: seedDate("2025-06-01"), HomeTeam: "Eagles", AwayTeam: "Sharks", HomeScore: 5, AwayScore: 2})
	require.NoError(t, err)
	g2, err := st.CreateGame(ctx, &store.Game{League: "summer", Season: "2025", Date: seedDate("2025-06-08"), HomeTeam: "Eagles", AwayTeam: "Sharks", HomeScore: 1, AwayScore: 4})
	require.NoError(t, err)
	g3, err := st.CreateGame(ctx, &store.Game{League: "fall", Season: "2025", Date: seedDate("2025-09-01"), HomeTeam: "Eagles", AwayTeam: "Owls", HomeScore: 0, AwayScore: 3})
	require.NoError(t, err)

	for _, pa := range []*store.PlateAppearance{
		{GameID: g1.ID, PlayerID: alice.ID, Team: "Eagles", AB: 4, H: 2, Doubles: 1, HR: 1, BB: 1, R: 2, RBI: 2},
		{GameID: g2.ID, PlayerID: alice.ID, Team: "Eagles", AB: 3, H: 1, R: 1},
		{GameID: g3.ID, PlayerID: alice.ID, Team: "Eagles", AB: 2, H: 0},
		{GameID: g1.ID, PlayerID: bob.ID, Team: "Sharks", AB: 4, H: 1, R: 1, RBI: 1},
	} {
		_, err := st.CreatePlateAppearance(ctx, pa)
		require.NoError(t, err)
	}
	return alice, bob
}

func TestRecomputeHitterTotals(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newStatsService(st)
	alice, bob := seedSeason(t, st)

	require.NoError(t, svc.RecomputeHitterTotals(ctx, "summer", "2025"))

	totals, err := st.GetHitterTotals(ctx, "summer", "2025")
	require.NoError(t, err)
	require.Len(t, totals, 2)

	at, err := st.GetHitterTotal(ctx, alice.ID, "summer", "2025")
	require.NoError(t, err)
	// The fall game must not leak into the summer totals.
	assert.Equal(t, 2, at.Games)
	assert.Equal(t, 7, at.AB)
	assert.Equal(t, 3, at.H)
	assert.Equal(t, 1, at.Doubles)
	assert.Equal(t, 1, at.HR)
	assert.Equal(t, 1, at.Singles)
	assert.Equal(t, 8, at.PA)
	assert.Equal(t, 7, at.TB)
	assert.InDelta(t, 0.429, at.AVG, 1e-9)
	assert.InDelta(t, 0.5, at.OBP, 1e-9)
	assert.InDelta(t, 1.0, at.SLG, 1e-9)
	assert.InDelta(t, 1.5, at.OPS, 1e-9)

	bt, err := st.GetHitterTotal(ctx, bob.ID, "summer", "2025")
	require.NoError(t, err)
	assert.Equal(t, 1, bt.Games)
	assert.InDelta(t, 0.25, bt.AVG, 1e-9)

	// Recompute again: same rows, no duplicates.
	require.NoError(t, svc.RecomputeHitterTotals(ctx, "summer", "2025"))
	totals, err = st.GetHitterTotals(ctx, "summer", "2025")
	require.NoError(t, err)
	assert.Len(t, totals, 2)
}

func TestLeaderboardStoredTotals(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newStatsService(st)
	alice, bob := seedSeason(t, st)
	require.NoError(t, svc.RecomputeHitterTotals(ctx, "summer", "2025"))

	entries, err := svc.Leaderboard(ctx, "summer", "2025", "")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	assert.Equal(t, alice.ID, entries[0].PlayerID)
	assert.InDelta(t, 1.5, entries[0].OPS, 1e-9)
	assert.Equal(t, bob.ID, entries[1].PlayerID)
}

func TestLeaderboardAcrossSlices(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newStatsService(st)
	alice, _ := seedSeason(t, st)
	require.NoError(t, svc.RecomputeHitterTotals(ctx, "summer", "2025"))
	require.NoError(t, svc.RecomputeHitterTotals(ctx, "fall", "2025"))

	// Season only: sums each player's totals across leagues and
	// re-derives the rates from the summed counts.
	entries, err := svc.Leaderboard(ctx, "", "2025", "")
	require.NoError(t, err)
	require.Len(t, entries, 2)

	var aliceEntry *LeaderboardEntry
	for _, e := range entries {
		if e.PlayerID == alice.ID {
			aliceEntry = e
		}
	}
	require.NotNil(t, aliceEntry)
	assert.Equal(t, 3, aliceEntry.Games)
	assert.Equal(t, 9, aliceEntry.AB)
	assert.Equal(t, 3, aliceEntry.H)
	assert.InDelta(t, 0.333, aliceEntry.AVG, 1e-9)
}

func TestLeaderboardTeamFilter(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newStatsService(st)
	alice, _ := seedSeason(t, st)

	// Team filter aggregates straight from plate appearances, so no
	// recompute is needed first.
	entries, err := svc.Leaderboard(ctx, "", "", "Eagles")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, alice.ID, entries[0].PlayerID)
	assert.Equal(t, 9, entries[0].AB)
	assert.Equal(t, 3, entries[0].Games)

	summer, err := svc.Leaderboard(ctx, "summer", "", "Eagles")
	require.NoError(t, err)
	require.Len(t, summer, 1)
	assert.Equal(t, 7, summer[0].AB)

	// The filter is case and whitespace insensitive.
	lower, err := svc.Leaderboard(ctx, "", "", "eagles")
	require.NoError(t, err)
	require.Len(t, lower, 1)
	assert.Equal(t, alice.ID, lower[0].PlayerID)
}

func TestLeaderboardTiebreakByPlayerID(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newStatsService(st)

	p1, err := st.CreatePlayer(ctx, &store.Player{Name: "First", Team: "Hawks", League: "summer"})
	require.NoError(t, err)
	p2, err := st.CreatePlayer(ctx, &store.Player{Name: "Second", Team: "Hawks", League: "summer"})
	require.NoError(t, err)

	g, err := st.CreateGame(ctx, &store.Game{League: "summer", Season: "2025", Date: seedDate("2025-06-01"), HomeTeam: "Hawks", AwayTeam: "Owls"})
	require.NoError(t, err)

	for _, id := range []int{p2.ID, p1.ID} {
		_, err := st.CreatePlateAppearance(ctx, &store.PlateAppearance{GameID: g.ID, PlayerID: id, Team: "Hawks", AB: 4, H: 2})
		require.NoError(t, err)
	}
	require.NoError(t, svc.RecomputeHitterTotals(ctx, "summer", "2025"))

	entries, err := svc.Leaderboard(ctx, "summer", "2025", "")
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, p1.ID, entries[0].PlayerID)
	assert.Equal(t, p2.ID, entries[1].PlayerID)
}

func TestPlayerStatsByTeam(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	svc := newStatsService(st)
	alice, bob := seedSeason(t, st)

	all, err := svc.PlayerStatsByTeam(ctx, "", "", "")
	require.NoError(t, err)
	// Alice splits into summer and fall groups, Bob has one.
	require.Len(t, all, 3)

	summer, err := svc.PlayerStatsByTeam(ctx, "summer", "", "")
	require.NoError(t, err)
	require.Len(t, summer, 2)
	assert.Equal(t, alice.ID, summer[0].PlayerID)
	assert.Equal(t, "Eagles", summer[0].Team)
	assert.Equal(t, 7, summer[0].AB)
	assert.Equal(t, 2, summer[0].Games)
	assert.Equal(t, bob.ID, summer[1].PlayerID)

	sharks, err := svc.PlayerStatsByTeam(ctx, "", "", "Sharks")
	require.NoError(t, err)
	require.Len(t, sharks, 1)
	assert.Equal(t, "Bob Carter", sharks[0].PlayerName)

	// Team filter is case and whitespace insensitive.
	sharks, err = svc.PlayerStatsByTeam(ctx, "", "", " sharks ")
	require.NoError(t, err)
	require.Len(t, sharks, 1)
	assert.Equal(t, "Bob Carter", sharks[0].PlayerName)
}
