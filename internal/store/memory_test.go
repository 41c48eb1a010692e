package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dateOf(s string) time.Time {
	d, _ := time.Parse("2006-01-02", s)
	return d
}

func TestMemoryStorePlayerLookup(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	created, err := s.CreatePlayer(ctx, &Player{Name: "Jose Ramirez", Team: "Guardians", League: "summer"})
	require.NoError(t, err)
	assert.Equal(t, 1, created.ID)

	// Lookup is case and whitespace insensitive on the name.
	found, err := s.GetPlayerByNameTeam(ctx, "  jose ramirez ", "Guardians")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	// And on the team.
	found, err = s.GetPlayerByNameTeam(ctx, "Jose Ramirez", "guardians")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	found, err = s.GetPlayerByNameTeam(ctx, "Jose Ramirez", " GUARDIANS ")
	require.NoError(t, err)
	assert.Equal(t, created.ID, found.ID)

	// Same name on another team is a different player.
	_, err = s.GetPlayerByNameTeam(ctx, "Jose Ramirez", "Mets")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreFindDuplicateGame(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.CreateGame(ctx, &Game{
		League:   "summer",
		Season:   "2025",
		Date:     dateOf("2025-06-14"),
		HomeTeam: "Hawks",
		AwayTeam: "Storm",
	})
	require.NoError(t, err)

	// Team order must not matter, nor team name casing.
	dup, err := s.FindDuplicateGame(ctx, dateOf("2025-06-14"), "summer", "2025", "storm", "HAWKS")
	require.NoError(t, err)
	require.NotNil(t, dup)
	assert.Equal(t, "Hawks", dup.HomeTeam)

	// Same matchup on another day is clean.
	dup, err = s.FindDuplicateGame(ctx, dateOf("2025-06-15"), "summer", "2025", "Hawks", "Storm")
	require.NoError(t, err)
	assert.Nil(t, dup)

	// Same day, different league.
	dup, err = s.FindDuplicateGame(ctx, dateOf("2025-06-14"), "fall", "2025", "Hawks", "Storm")
	require.NoError(t, err)
	assert.Nil(t, dup)
}

func TestMemoryStoreGetGamesOrderAndPaging(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	for _, d := range []string{"2025-06-01", "2025-06-03", "2025-06-02"} {
		_, err := s.CreateGame(ctx, &Game{League: "summer", Season: "2025", Date: dateOf(d), HomeTeam: "A", AwayTeam: "B"})
		require.NoError(t, err)
	}

	games, err := s.GetGames(ctx, GameFilter{})
	require.NoError(t, err)
	require.Len(t, games, 3)
	assert.Equal(t, dateOf("2025-06-03"), games[0].Date)
	assert.Equal(t, dateOf("2025-06-01"), games[2].Date)

	page, err := s.GetGames(ctx, GameFilter{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, dateOf("2025-06-02"), page[0].Date)

	empty, err := s.GetGames(ctx, GameFilter{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryStoreGetGamesTeamFilter(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.CreateGame(ctx, &Game{League: "summer", Season: "2025", Date: dateOf("2025-06-01"), HomeTeam: "Hawks", AwayTeam: "Storm"})
	require.NoError(t, err)
	_, err = s.CreateGame(ctx, &Game{League: "summer", Season: "2025", Date: dateOf("2025-06-02"), HomeTeam: "Owls", AwayTeam: "Hawks"})
	require.NoError(t, err)
	_, err = s.CreateGame(ctx, &Game{League: "summer", Season: "2025", Date: dateOf("2025-06-03"), HomeTeam: "Owls", AwayTeam: "Storm"})
	require.NoError(t, err)

	// The team filter matches either side regardless of casing.
	games, err := s.GetGames(ctx, GameFilter{Team: "hawks"})
	require.NoError(t, err)
	assert.Len(t, games, 2)

	games, err = s.GetGames(ctx, GameFilter{Team: " STORM "})
	require.NoError(t, err)
	assert.Len(t, games, 2)
}

func TestMemoryStoreReplaceHitterTotals(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	err := s.ReplaceHitterTotals(ctx, "summer", "2025", []*HitterTotal{
		{PlayerID: 1, AB: 4, H: 2},
		{PlayerID: 2, AB: 3, H: 1},
	})
	require.NoError(t, err)

	// Another slice must not be touched by the replace.
	err = s.ReplaceHitterTotals(ctx, "summer", "2024", []*HitterTotal{
		{PlayerID: 1, AB: 10, H: 3},
	})
	require.NoError(t, err)

	// Replacing drops the previous rows for the slice.
	err = s.ReplaceHitterTotals(ctx, "summer", "2025", []*HitterTotal{
		{PlayerID: 1, AB: 8, H: 4},
	})
	require.NoError(t, err)

	totals, err := s.GetHitterTotals(ctx, "summer", "2025")
	require.NoError(t, err)
	require.Len(t, totals, 1)
	assert.Equal(t, 8, totals[0].AB)

	prev, err := s.GetHitterTotals(ctx, "summer", "2024")
	require.NoError(t, err)
	require.Len(t, prev, 1)
	assert.Equal(t, 10, prev[0].AB)

	_, err = s.GetHitterTotal(ctx, 2, "summer", "2025")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreUniqueTeams(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	g1, err := s.CreateGame(ctx, &Game{League: "summer", Season: "2025", Date: dateOf("2025-06-01"), HomeTeam: "Hawks", AwayTeam: "Storm"})
	require.NoError(t, err)
	g2, err := s.CreateGame(ctx, &Game{League: "fall", Season: "2025", Date: dateOf("2025-09-01"), HomeTeam: "Owls", AwayTeam: "Storm"})
	require.NoError(t, err)

	for _, pa := range []*PlateAppearance{
		{GameID: g1.ID, PlayerID: 1, Team: "Hawks"},
		{GameID: g1.ID, PlayerID: 2, Team: " Storm "},
		{GameID: g1.ID, PlayerID: 3, Team: "Storm"},
		{GameID: g2.ID, PlayerID: 4, Team: "Owls"},
	} {
		_, err := s.CreatePlateAppearance(ctx, pa)
		require.NoError(t, err)
	}

	all, err := s.UniqueTeams(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hawks", "Owls", "Storm"}, all)

	summer, err := s.UniqueTeams(ctx, "summer")
	require.NoError(t, err)
	assert.Equal(t, []string{"Hawks", "Storm"}, summer)
}

func TestDuplicateGameErrorMessage(t *testing.T) {
	g := &Game{ID: 7, HomeTeam: "Hawks", AwayTeam: "Storm", Date: dateOf("2025-06-14")}
	err := &DuplicateGameError{Existing: g}
	assert.Contains(t, err.Error(), "Hawks")
	assert.Contains(t, err.Error(), "Storm")
}
