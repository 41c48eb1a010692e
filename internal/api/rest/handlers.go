package rest

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/fortuna/dugout/internal/ingest/hittrax"
	"github.com/fortuna/dugout/internal/service"
	"github.com/fortuna/dugout/internal/store"
	"github.com/fortuna/dugout/internal/store/repository"
	"github.com/fortuna/dugout/internal/storyline"
)

const maxUploadBytes = 32 << 20

// Handler contains dependencies for HTTP handlers
type Handler struct {
	store         store.Store
	ingester      *hittrax.Ingester
	stats         *repository.StatsRepository
	gameService   *service.GameService
	playerService *service.PlayerService
	statsService  *service.StatsService
	teamService   *service.TeamService
	storylines    *storyline.Service
}

// NewHandler creates a new handler
func NewHandler(st store.Store, ingester *hittrax.Ingester, storylines *storyline.Service) *Handler {
	players := repository.NewPlayerRepository(st)
	games := repository.NewGameRepository(st)
	stats := repository.NewStatsRepository(st)

	return &Handler{
		store:         st,
		ingester:      ingester,
		stats:         stats,
		gameService:   service.NewGameService(games, stats, players),
		playerService: service.NewPlayerService(players, stats),
		statsService:  service.NewStatsService(stats, games, players),
		teamService:   service.NewTeamService(games, stats, players),
		storylines:    storylines,
	}
}

// HealthCheck handles health check requests
func (h *Handler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "dugout",
		"version": "1.0.0",
	})
}

// UploadCSV ingests a single-game CSV upload. Teams are auto-detected
// from the file unless both home_team and away_team are provided.
func (h *Handler) UploadCSV(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		respondError(w, http.StatusBadRequest, "Missing 'file' field", err)
		return
	}
	defer file.Close()

	league := r.FormValue("league")
	season := r.FormValue("season")
	dateStr := r.FormValue("date_str")
	if league == "" || season == "" || dateStr == "" {
		respondError(w, http.StatusBadRequest, "league, season and date_str are required", nil)
		return
	}

	gameDate, err := time.Parse("2006-01-02", dateStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid date format, expected YYYY-MM-DD", err)
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		respondError(w, http.StatusBadRequest, "Failed to read uploaded file", err)
		return
	}

	result, err := h.ingester.IngestGameCSV(r.Context(), content, hittrax.UploadParams{
		League:   league,
		Season:   season,
		Date:     gameDate,
		HomeTeam: r.FormValue("home_team"),
		AwayTeam: r.FormValue("away_team"),
	})
	if err != nil {
		respondServiceError(w, "Error ingesting CSV", err)
		return
	}

	info := result.Info
	message := fmt.Sprintf("Game uploaded: %s vs %s, Score: %d-%d",
		info.HomeTeam, info.AwayTeam, info.HomeScore, info.AwayScore)
	if info.Winner != nil {
		message += fmt.Sprintf(", Winner: %s", *info.Winner)
	} else {
		message += ", Tie"
	}

	respondJSON(w, http.StatusOK, uploadResponse{
		GameID:       result.GameID,
		RowsIngested: result.RowsIngested,
		Message:      message,
	})
}

// GetGames returns recent games with pagination and optional filters
func (h *Handler) GetGames(w http.ResponseWriter, r *http.Request) {
	limit := 50
	if v := r.URL.Query().Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 1 && n <= 500 {
			limit = n
		}
	}
	offset := 0
	if v := r.URL.Query().Get("offset"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			offset = n
		}
	}

	games, err := h.gameService.List(r.Context(), store.GameFilter{
		League: r.URL.Query().Get("league"),
		Season: r.URL.Query().Get("season"),
		Limit:  limit,
		Offset: offset,
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch games", err)
		return
	}

	out := make([]gameResponse, 0, len(games))
	for _, g := range games {
		out = append(out, toGameResponse(g))
	}
	respondJSON(w, http.StatusOK, out)
}

// GetGame returns one game with its box score lines
func (h *Handler) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, err := strconv.Atoi(mux.Vars(r)["gameID"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid game ID", err)
		return
	}

	detail, err := h.gameService.Detail(r.Context(), gameID)
	if err != nil {
		respondServiceError(w, fmt.Sprintf("Game %d not found", gameID), err)
		return
	}

	resp := gameDetailResponse{
		gameResponse:     toGameResponse(detail.Game),
		CreatedAt:        detail.Game.CreatedAt,
		PlateAppearances: detail.PlateAppearances,
	}
	respondJSON(w, http.StatusOK, resp)
}

// GetPlayers returns player aggregates grouped by (team, player, league, season)
func (h *Handler) GetPlayers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	stats, err := h.statsService.PlayerStatsByTeam(r.Context(), q.Get("league"), q.Get("season"), q.Get("team"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch player stats", err)
		return
	}
	if stats == nil {
		stats = []*service.PlayerSeasonStats{}
	}
	respondJSON(w, http.StatusOK, stats)
}

// GetPlayer returns one player with all their stored season totals
func (h *Handler) GetPlayer(w http.ResponseWriter, r *http.Request) {
	playerID, err := strconv.Atoi(mux.Vars(r)["playerID"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid player ID", err)
		return
	}

	detail, err := h.playerService.Detail(r.Context(), playerID)
	if err != nil {
		respondServiceError(w, fmt.Sprintf("Player %d not found", playerID), err)
		return
	}

	stats := make([]*service.PlayerSeasonStats, 0, len(detail.Totals))
	for _, ht := range detail.Totals {
		stats = append(stats, totalToSeasonStats(detail.Player, ht))
	}
	respondJSON(w, http.StatusOK, playerDetailResponse{
		ID:        detail.Player.ID,
		Name:      detail.Player.Name,
		Team:      detail.Player.Team,
		League:    detail.Player.League,
		CreatedAt: detail.Player.CreatedAt,
		Stats:     stats,
	})
}

// GetScoutingReport generates an AI scouting report for a player
func (h *Handler) GetScoutingReport(w http.ResponseWriter, r *http.Request) {
	playerID, err := strconv.Atoi(mux.Vars(r)["playerID"])
	if err != nil {
		respondError(w, http.StatusBadRequest, "Invalid player ID", err)
		return
	}

	report, err := h.storylines.ScoutingReport(r.Context(), playerID)
	if err != nil {
		respondServiceError(w, "Error generating scouting report", err)
		return
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"player_id": playerID,
		"report":    report,
	})
}

// GetTeamList returns distinct team names seen in plate appearances
func (h *Handler) GetTeamList(w http.ResponseWriter, r *http.Request) {
	teams, err := h.stats.UniqueTeams(r.Context(), r.URL.Query().Get("league"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch teams", err)
		return
	}
	if teams == nil {
		teams = []string{}
	}
	respondJSON(w, http.StatusOK, map[string]interface{}{"teams": teams})
}

// GetLeaderboard returns hitters ordered by OPS descending
func (h *Handler) GetLeaderboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	entries, err := h.statsService.Leaderboard(r.Context(), q.Get("league"), q.Get("season"), q.Get("team"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to build leaderboard", err)
		return
	}
	if entries == nil {
		entries = []*service.LeaderboardEntry{}
	}
	respondJSON(w, http.StatusOK, entries)
}

// GetTeams returns every team's record and aggregate batting line
func (h *Handler) GetTeams(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	teams, err := h.teamService.AllTeams(r.Context(), q.Get("league"), q.Get("season"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch teams", err)
		return
	}
	if teams == nil {
		teams = []*service.TeamStats{}
	}
	respondJSON(w, http.StatusOK, teams)
}

// GetTeamStats returns one team's record for a league and season
func (h *Handler) GetTeamStats(w http.ResponseWriter, r *http.Request) {
	teamName := mux.Vars(r)["teamName"]
	q := r.URL.Query()
	league := q.Get("league")
	season := q.Get("season")
	if league == "" || season == "" {
		respondError(w, http.StatusBadRequest, "league and season are required", nil)
		return
	}

	team, err := h.teamService.TeamStats(r.Context(), teamName, league, season)
	if err != nil {
		respondServiceError(w, fmt.Sprintf("Team '%s' not found", teamName), err)
		return
	}
	respondJSON(w, http.StatusOK, team)
}

// GetTeamRoster returns each player's aggregate line on one team
func (h *Handler) GetTeamRoster(w http.ResponseWriter, r *http.Request) {
	teamName := mux.Vars(r)["teamName"]
	q := r.URL.Query()

	roster, err := h.teamService.TeamRoster(r.Context(), teamName, q.Get("league"), q.Get("season"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch roster", err)
		return
	}
	if len(roster) == 0 {
		respondError(w, http.StatusNotFound, fmt.Sprintf("No players found for team '%s'", teamName), nil)
		return
	}
	respondJSON(w, http.StatusOK, roster)
}

// GetTeamGames returns the games one team played in
func (h *Handler) GetTeamGames(w http.ResponseWriter, r *http.Request) {
	teamName := mux.Vars(r)["teamName"]
	q := r.URL.Query()

	games, err := h.teamService.TeamGames(r.Context(), teamName, q.Get("league"), q.Get("season"))
	if err != nil {
		respondError(w, http.StatusInternalServerError, "Failed to fetch games", err)
		return
	}
	if len(games) == 0 {
		respondError(w, http.StatusNotFound, fmt.Sprintf("No games found for team '%s'", teamName), nil)
		return
	}

	out := make([]gameResponse, 0, len(games))
	for _, g := range games {
		out = append(out, toGameResponse(g))
	}
	respondJSON(w, http.StatusOK, out)
}

// GenerateStoryline writes an AI recap for one game and caches it
func (h *Handler) GenerateStoryline(w http.ResponseWriter, r *http.Request) {
	gameIDStr := mux.Vars(r)["gameID"]
	gameID, err := strconv.Atoi(gameIDStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid game_id: %s", gameIDStr), err)
		return
	}

	recap, err := h.storylines.Generate(r.Context(), gameID)
	if err != nil {
		respondServiceError(w, "Failed to generate recap", err)
		return
	}
	respondJSON(w, http.StatusOK, recap)
}

// GetStoryline returns the cached recap for a game
func (h *Handler) GetStoryline(w http.ResponseWriter, r *http.Request) {
	recap, err := h.storylines.Get(r.Context(), mux.Vars(r)["gameID"])
	if err != nil {
		respondError(w, http.StatusNotFound, "No recap found. Generate one first.", nil)
		return
	}
	respondJSON(w, http.StatusOK, recap)
}

// StorylineExists reports whether a recap is cached for a game
func (h *Handler) StorylineExists(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["gameID"]
	respondJSON(w, http.StatusOK, map[string]interface{}{
		"exists":  h.storylines.Exists(r.Context(), gameID),
		"game_id": gameID,
	})
}

// GetStorylineSummary returns the structured box summary for a game
func (h *Handler) GetStorylineSummary(w http.ResponseWriter, r *http.Request) {
	gameIDStr := mux.Vars(r)["gameID"]
	gameID, err := strconv.Atoi(gameIDStr)
	if err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Invalid game_id: %s", gameIDStr), err)
		return
	}

	summary, err := h.storylines.Summary(r.Context(), gameID)
	if err != nil {
		respondServiceError(w, fmt.Sprintf("Game %d not found", gameID), err)
		return
	}
	respondJSON(w, http.StatusOK, summary)
}

// respondServiceError maps domain errors onto HTTP statuses: parse and
// validation failures are 400, duplicate games 409, missing records 404,
// everything else 500.
func respondServiceError(w http.ResponseWriter, message string, err error) {
	var parseErr *hittrax.ParseError
	var dupErr *store.DuplicateGameError
	switch {
	case errors.As(err, &parseErr):
		respondError(w, http.StatusBadRequest, parseErr.Msg, nil)
	case errors.As(err, &dupErr):
		respondError(w, http.StatusConflict, dupErr.Error(), nil)
	case errors.Is(err, storyline.ErrNoPlayerData), errors.Is(err, storyline.ErrIncompleteGame):
		respondError(w, http.StatusBadRequest, err.Error(), nil)
	case errors.Is(err, store.ErrNotFound):
		respondError(w, http.StatusNotFound, message, nil)
	default:
		respondError(w, http.StatusInternalServerError, message, err)
	}
}
