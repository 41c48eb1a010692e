package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fortuna/dugout/internal/ingest/hittrax"
	"github.com/fortuna/dugout/internal/service"
	"github.com/fortuna/dugout/internal/store"
	"github.com/fortuna/dugout/internal/store/repository"
	"github.com/fortuna/dugout/internal/storyline"
)

const testCSV = `Player,Team,AB,R,H,2B,3B,HR,RBI,SO,BB
Alice Johnson,Eagles,4,2,3,1,0,0,2,1,1
Bob Carter,Eagles,3,1,1,0,0,1,1,0,0
Cara Diaz,Sharks,4,1,2,0,0,0,1,2,0
`

func newTestServer(t *testing.T) (*Server, store.Store) {
	t.Helper()
	st := store.NewMemoryStore()
	players := repository.NewPlayerRepository(st)
	games := repository.NewGameRepository(st)
	stats := repository.NewStatsRepository(st)
	statsService := service.NewStatsService(stats, games, players)
	ingester := hittrax.NewIngester(games, players, stats, statsService, nil)
	storylines := storyline.NewService(st, storyline.NewMemoryCache(), nil)
	return NewServer("0", st, ingester, storylines), st
}

func uploadRequest(t *testing.T, csvBody string, form map[string]string) *http.Request {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	part, err := w.CreateFormFile("file", "game.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(csvBody))
	require.NoError(t, err)
	for k, v := range form {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/games/upload_csv", &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func doUpload(t *testing.T, srv *Server) uploadResponse {
	t.Helper()
	req := uploadRequest(t, testCSV, map[string]string{
		"league": "summer", "season": "2025", "date_str": "2025-06-14",
	})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp uploadResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func TestHealthCheck(t *testing.T) {
	srv, _ := newTestServer(t)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "dugout", body["service"])
}

func TestUploadCSV(t *testing.T) {
	srv, st := newTestServer(t)
	resp := doUpload(t, srv)

	assert.Equal(t, 3, resp.RowsIngested)
	assert.Contains(t, resp.Message, "Eagles vs Sharks")
	assert.Contains(t, resp.Message, "Score: 3-1")
	assert.Contains(t, resp.Message, "Winner: Eagles")

	game, err := st.GetGame(context.Background(), resp.GameID)
	require.NoError(t, err)
	assert.Equal(t, "Eagles", game.HomeTeam)
}

func TestUploadCSVDuplicate(t *testing.T) {
	srv, _ := newTestServer(t)
	doUpload(t, srv)

	req := uploadRequest(t, testCSV, map[string]string{
		"league": "summer", "season": "2025", "date_str": "2025-06-14",
	})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestUploadCSVBadDate(t *testing.T) {
	srv, _ := newTestServer(t)
	req := uploadRequest(t, testCSV, map[string]string{
		"league": "summer", "season": "2025", "date_str": "06/14/2025",
	})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, "Invalid date format, expected YYYY-MM-DD", body["error"])
}

func TestUploadCSVParseError(t *testing.T) {
	srv, _ := newTestServer(t)
	req := uploadRequest(t, "Player,AB\nAlice,4\n", map[string]string{
		"league": "summer", "season": "2025", "date_str": "2025-06-14",
	})
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetGames(t *testing.T) {
	srv, _ := newTestServer(t)
	doUpload(t, srv)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/games", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var games []gameResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&games))
	require.Len(t, games, 1)
	assert.Equal(t, "2025-06-14", games[0].Date)
	assert.Equal(t, 3, games[0].HomeScore)
}

func TestGetGameDetail(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := doUpload(t, srv)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/games/1", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.EqualValues(t, resp.GameID, body["id"])
	lines, ok := body["plate_appearances"].([]interface{})
	require.True(t, ok)
	assert.Len(t, lines, 3)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/games/999", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/games/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetLeaderboard(t *testing.T) {
	srv, _ := newTestServer(t)
	doUpload(t, srv)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/stats/leaderboard?league=summer&season=2025", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var entries []*service.LeaderboardEntry
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&entries))
	require.Len(t, entries, 3)
	for i := 1; i < len(entries); i++ {
		assert.GreaterOrEqual(t, entries[i-1].OPS, entries[i].OPS)
	}
}

func TestGetPlayersAndTeamList(t *testing.T) {
	srv, _ := newTestServer(t)
	doUpload(t, srv)

	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/players", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var players []*service.PlayerSeasonStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&players))
	assert.Len(t, players, 3)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/players/teams/list", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var teams map[string][]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&teams))
	assert.Equal(t, []string{"Eagles", "Sharks"}, teams["teams"])
}

func TestGetTeamStatsValidation(t *testing.T) {
	srv, _ := newTestServer(t)
	doUpload(t, srv)

	// league and season are required
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/teams/Eagles/stats", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/teams/Nobody/stats?league=summer&season=2025", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/teams/Eagles/stats?league=summer&season=2025", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var team service.TeamStats
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&team))
	assert.Equal(t, 1, team.Wins)
}

func TestStorylineEndpoints(t *testing.T) {
	srv, _ := newTestServer(t)
	doUpload(t, srv)

	// No generator configured: generation is a server-side failure.
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/storylines/games/1/generate", nil))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/v1/storylines/games/abc/generate", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/storylines/games/1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/storylines/games/1/exists", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var exists map[string]interface{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&exists))
	assert.Equal(t, false, exists["exists"])

	// The structured summary works without a generator.
	rec = httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/storylines/games/1/summary", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var summary storyline.GameSummary
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	assert.Equal(t, "Eagles", summary.HomeTeam.Name)
	assert.Equal(t, 3, summary.HomeTeam.Runs)
}
