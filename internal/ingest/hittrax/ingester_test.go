package hittrax

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/dugout/internal/store"
	"github.com/fortuna/dugout/internal/store/repository"
)

type fakeRecomputer struct {
	calls [][2]string
	err   error
}

func (f *fakeRecomputer) RecomputeHitterTotals(_ context.Context, league, season string) error {
	f.calls = append(f.calls, [2]string{league, season})
	return f.err
}

type fakeNotifier struct {
	events []GameIngestedEvent
}

func (f *fakeNotifier) NotifyGameIngested(_ context.Context, event GameIngestedEvent) {
	f.events = append(f.events, event)
}

func newTestIngester(st store.Store, rec Recomputer, n Notifier) *Ingester {
	return NewIngester(
		repository.NewGameRepository(st),
		repository.NewPlayerRepository(st),
		repository.NewStatsRepository(st),
		rec, n,
	)
}

func uploadParams() UploadParams {
	d, _ := time.Parse("2006-01-02", "2025-06-14")
	return UploadParams{League: "summer", Season: "2025", Date: d}
}

func TestIngestGameCSV(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	rec := &fakeRecomputer{}
	notif := &fakeNotifier{}
	ing := newTestIngester(st, rec, notif)

	result, err := ing.IngestGameCSV(ctx, []byte(flatCSV), uploadParams())
	require.NoError(t, err)

	assert.Equal(t, 3, result.RowsIngested)
	assert.Equal(t, "Eagles", result.Info.HomeTeam)
	assert.Equal(t, "Sharks", result.Info.AwayTeam)
	assert.Equal(t, 3, result.Info.HomeScore)
	assert.Equal(t, 1, result.Info.AwayScore)
	require.NotNil(t, result.Info.Winner)
	assert.Equal(t, "Eagles", *result.Info.Winner)
	assert.Equal(t, 2, result.Info.Team1PlayerCount)
	assert.Equal(t, 1, result.Info.Team2PlayerCount)

	// Game, players and plate appearances are on record.
	game, err := st.GetGame(ctx, result.GameID)
	require.NoError(t, err)
	assert.Equal(t, "Eagles", game.HomeTeam)

	players, err := st.GetAllPlayers(ctx)
	require.NoError(t, err)
	assert.Len(t, players, 3)

	pas, err := st.GetPlateAppearancesByGame(ctx, result.GameID)
	require.NoError(t, err)
	require.Len(t, pas, 3)
	assert.NotEmpty(t, pas[0].RawJSON)

	// Recompute ran for the uploaded slice, and the notifier fired once.
	require.Len(t, rec.calls, 1)
	assert.Equal(t, [2]string{"summer", "2025"}, rec.calls[0])
	require.Len(t, notif.events, 1)
	assert.Equal(t, result.GameID, notif.events[0].GameID)
	assert.Equal(t, 3, notif.events[0].RowsIngested)
	assert.Equal(t, "2025-06-14", notif.events[0].Date)
}

func TestIngestGameCSVDuplicate(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	ing := newTestIngester(st, &fakeRecomputer{}, nil)

	_, err := ing.IngestGameCSV(ctx, []byte(flatCSV), uploadParams())
	require.NoError(t, err)

	_, err = ing.IngestGameCSV(ctx, []byte(flatCSV), uploadParams())
	require.Error(t, err)
	var dup *store.DuplicateGameError
	require.ErrorAs(t, err, &dup)

	// The rejected upload wrote nothing.
	games, err := st.GetGames(ctx, store.GameFilter{})
	require.NoError(t, err)
	assert.Len(t, games, 1)
	pas, err := st.GetAllPlateAppearances(ctx)
	require.NoError(t, err)
	assert.Len(t, pas, 3)
}

func TestIngestGameCSVParseFailureWritesNothing(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	rec := &fakeRecomputer{}
	ing := newTestIngester(st, rec, nil)

	_, err := ing.IngestGameCSV(ctx, []byte("Player,AB\nAlice,4\n"), uploadParams())
	require.Error(t, err)
	var parseErr *ParseError
	assert.ErrorAs(t, err, &parseErr)

	games, err := st.GetGames(ctx, store.GameFilter{})
	require.NoError(t, err)
	assert.Empty(t, games)
	assert.Empty(t, rec.calls)
}

func TestIngestGameCSVManualTeams(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	ing := newTestIngester(st, &fakeRecomputer{}, nil)

	p := uploadParams()
	p.HomeTeam = "Hawks"
	p.AwayTeam = "Owls"

	result, err := ing.IngestGameCSV(ctx, []byte("Player,AB,R,H\nAlice,4,2,3\nBob,3,1,1\n"), p)
	require.NoError(t, err)

	assert.Equal(t, "Hawks", result.Info.HomeTeam)
	assert.Equal(t, "Owls", result.Info.AwayTeam)
	assert.Equal(t, 2, result.RowsIngested)
	assert.Equal(t, 2, result.Info.Team1PlayerCount)
	assert.Equal(t, 0, result.Info.Team2PlayerCount)
}

func TestIngestGameCSVReusesPlayers(t *testing.T) {
	ctx := context.Background()
	st := store.NewMemoryStore()
	ing := newTestIngester(st, &fakeRecomputer{}, nil)

	first, err := ing.IngestGameCSV(ctx, []byte(flatCSV), uploadParams())
	require.NoError(t, err)

	p := uploadParams()
	p.Date = p.Date.AddDate(0, 0, 7)
	second, err := ing.IngestGameCSV(ctx, []byte(flatCSV), p)
	require.NoError(t, err)
	assert.NotEqual(t, first.GameID, second.GameID)

	// Same names and teams resolve to the same players.
	players, err := st.GetAllPlayers(ctx)
	require.NoError(t, err)
	assert.Len(t, players, 3)
}
