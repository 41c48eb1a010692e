package rest

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/fortuna/dugout/internal/service"
	"github.com/fortuna/dugout/internal/store"
)

type uploadResponse struct {
	GameID       int    `json:"game_id"`
	RowsIngested int    `json:"rows_ingested"`
	Message      string `json:"message"`
}

type gameResponse struct {
	ID        int     `json:"id"`
	League    string  `json:"league"`
	Season    string  `json:"season"`
	Date      string  `json:"date"`
	HomeTeam  string  `json:"home_team"`
	AwayTeam  string  `json:"away_team"`
	HomeScore int     `json:"home_score"`
	AwayScore int     `json:"away_score"`
	Winner    *string `json:"winner"`
}

type gameDetailResponse struct {
	gameResponse
	CreatedAt        time.Time               `json:"created_at"`
	PlateAppearances []*service.BoxScoreLine `json:"plate_appearances"`
}

type playerDetailResponse struct {
	ID        int                          `json:"id"`
	Name      string                       `json:"name"`
	Team      string                       `json:"team"`
	League    string                       `json:"league"`
	CreatedAt time.Time                    `json:"created_at"`
	Stats     []*service.PlayerSeasonStats `json:"stats"`
}

func toGameResponse(g *store.Game) gameResponse {
	return gameResponse{
		ID:        g.ID,
		League:    g.League,
		Season:    g.Season,
		Date:      g.Date.Format("2006-01-02"),
		HomeTeam:  g.HomeTeam,
		AwayTeam:  g.AwayTeam,
		HomeScore: g.HomeScore,
		AwayScore: g.AwayScore,
		Winner:    g.Winner,
	}
}

func totalToSeasonStats(p *store.Player, t *store.HitterTotal) *service.PlayerSeasonStats {
	return &service.PlayerSeasonStats{
		PlayerID:   p.ID,
		PlayerName: p.Name,
		Team:       p.Team,
		League:     t.League,
		Season:     t.Season,
		Games:      t.Games,
		AB:         t.AB,
		H:          t.H,
		Singles:    t.Singles,
		Doubles:    t.Doubles,
		Triples:    t.Triples,
		HR:         t.HR,
		BB:         t.BB,
		HBP:        t.HBP,
		SF:         t.SF,
		SH:         t.SH,
		K:          t.K,
		R:          t.R,
		RBI:        t.RBI,
		SB:         t.SB,
		CS:         t.CS,
		PA:         t.PA,
		TB:         t.TB,
		AVG:        t.AVG,
		OBP:        t.OBP,
		SLG:        t.SLG,
		OPS:        t.OPS,
	}
}

// respondJSON writes a JSON response
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[rest] failed to encode response: %v", err)
	}
}

// respondError writes a JSON error response
func respondError(w http.ResponseWriter, status int, message string, err error) {
	body := map[string]interface{}{
		"error":  message,
		"status": status,
	}
	if err != nil {
		body["details"] = err.Error()
	}
	respondJSON(w, status, body)
}
