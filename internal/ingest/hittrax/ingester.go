package hittrax

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/fortuna/dugout/internal/store"
	"github.com/fortuna/dugout/internal/store/repository"
)

// Recomputer rebuilds hitter totals after a game lands.
type Recomputer interface {
	RecomputeHitterTotals(ctx context.Context, league, season string) error
}

// GameIngestedEvent describes a successfully ingested game.
type GameIngestedEvent struct {
	GameID       int     `json:"game_id"`
	League       string  `json:"league"`
	Season       string  `json:"season"`
	Date         string  `json:"date"`
	HomeTeam     string  `json:"home_team"`
	AwayTeam     string  `json:"away_team"`
	HomeScore    int     `json:"home_score"`
	AwayScore    int     `json:"away_score"`
	Winner       *string `json:"winner"`
	RowsIngested int     `json:"rows_ingested"`
}

// Notifier receives ingest events after the game and its stats are
// committed. Delivery failures must not affect the ingest itself.
type Notifier interface {
	NotifyGameIngested(ctx context.Context, event GameIngestedEvent)
}

// UploadParams carries the form fields of one CSV upload. HomeTeam and
// AwayTeam are optional; when either is empty both sides are detected
// from the file.
type UploadParams struct {
	League   string
	Season   string
	Date     time.Time
	HomeTeam string
	AwayTeam string
}

// GameInfo summarizes the ingested game for the upload response.
type GameInfo struct {
	HomeTeam         string  `json:"home_team"`
	AwayTeam         string  `json:"away_team"`
	HomeScore        int     `json:"home_score"`
	AwayScore        int     `json:"away_score"`
	Winner           *string `json:"winner"`
	Team1PlayerCount int     `json:"team1_player_count"`
	Team2PlayerCount int     `json:"team2_player_count"`
}

// UploadResult is what one successful ingest produced.
type UploadResult struct {
	GameID       int
	RowsIngested int
	Info         GameInfo
}

// Ingester turns an uploaded CSV into a game, its players and their
// plate appearances, then triggers the stats recompute.
type Ingester struct {
	games     *repository.GameRepository
	players   *repository.PlayerRepository
	stats     *repository.StatsRepository
	recompute Recomputer
	notifier  Notifier
}

// NewIngester creates a new ingester. notifier may be nil.
func NewIngester(games *repository.GameRepository, players *repository.PlayerRepository, stats *repository.StatsRepository, recompute Recomputer, notifier Notifier) *Ingester {
	return &Ingester{
		games:     games,
		players:   players,
		stats:     stats,
		recompute: recompute,
		notifier:  notifier,
	}
}

// IngestGameCSV parses, validates and persists one game upload. Parsing
// and the duplicate check run before anything is written, so rejected
// uploads leave no records behind. A ParseError means bad input; a
// DuplicateGameError means this matchup was already ingested for that
// date, league and season.
func (ing *Ingester) IngestGameCSV(ctx context.Context, content []byte, p UploadParams) (*UploadResult, error) {
	text := DecodeText(content)

	var det *TeamDetection
	var err error
	if p.HomeTeam == "" || p.AwayTeam == "" {
		det, err = DetectTeams(text)
	} else {
		det, err = ParseWithTeams(text, p.HomeTeam, p.AwayTeam)
	}
	if err != nil {
		return nil, err
	}

	log.Printf("[ingest] detected teams: %s vs %s (%d-%d)", det.Team1Name, det.Team2Name, det.Team1Runs, det.Team2Runs)

	if err := ing.games.CheckDuplicate(ctx, p.Date, p.League, p.Season, det.Team1Name, det.Team2Name); err != nil {
		return nil, err
	}

	game, err := ing.games.Create(ctx, &store.Game{
		League:    p.League,
		Season:    p.Season,
		Date:      p.Date,
		HomeTeam:  det.Team1Name,
		AwayTeam:  det.Team2Name,
		HomeScore: det.Team1Runs,
		AwayScore: det.Team2Runs,
		Winner:    det.Winner,
	})
	if err != nil {
		return nil, err
	}

	rows := 0
	for _, roster := range []struct {
		team    string
		players []PlayerLine
	}{
		{det.Team1Name, det.Team1Players},
		{det.Team2Name, det.Team2Players},
	} {
		n, err := ing.insertRoster(ctx, game, roster.team, roster.players, p.League)
		if err != nil {
			return nil, err
		}
		rows += n
	}

	if err := ing.recompute.RecomputeHitterTotals(ctx, p.League, p.Season); err != nil {
		return nil, fmt.Errorf("failed to recompute hitter totals: %w", err)
	}

	log.Printf("[ingest] ✓ game %d ingested: %s vs %s, %d rows", game.ID, game.HomeTeam, game.AwayTeam, rows)

	if ing.notifier != nil {
		ing.notifier.NotifyGameIngested(ctx, GameIngestedEvent{
			GameID:       game.ID,
			League:       game.League,
			Season:       game.Season,
			Date:         game.Date.Format("2006-01-02"),
			HomeTeam:     game.HomeTeam,
			AwayTeam:     game.AwayTeam,
			HomeScore:    game.HomeScore,
			AwayScore:    game.AwayScore,
			Winner:       game.Winner,
			RowsIngested: rows,
		})
	}

	return &UploadResult{
		GameID:       game.ID,
		RowsIngested: rows,
		Info: GameInfo{
			HomeTeam:         game.HomeTeam,
			AwayTeam:         game.AwayTeam,
			HomeScore:        game.HomeScore,
			AwayScore:        game.AwayScore,
			Winner:           game.Winner,
			Team1PlayerCount: len(det.Team1Players),
			Team2PlayerCount: len(det.Team2Players),
		},
	}, nil
}

func (ing *Ingester) insertRoster(ctx context.Context, game *store.Game, team string, lines []PlayerLine, league string) (int, error) {
	rows := 0
	for _, line := range lines {
		if line.Name == "" || line.Name == "Unknown" {
			continue
		}

		player, err := ing.players.FindOrCreate(ctx, line.Name, team, league)
		if err != nil {
			return rows, err
		}

		rawJSON, err := json.Marshal(line.Raw)
		if err != nil {
			rawJSON = []byte("{}")
		}

		_, err = ing.stats.CreatePlateAppearance(ctx, &store.PlateAppearance{
			GameID:   game.ID,
			PlayerID: player.ID,
			Team:     team,
			AB:       line.AB,
			H:        line.H,
			Doubles:  line.Doubles,
			Triples:  line.Triples,
			HR:       line.HR,
			BB:       line.BB,
			HBP:      line.HBP,
			SF:       line.SF,
			SH:       line.SH,
			K:        line.K,
			R:        line.R,
			RBI:      line.RBI,
			SB:       line.SB,
			CS:       line.CS,
			RawJSON:  string(rawJSON),
		})
		if err != nil {
			return rows, err
		}
		rows++
	}
	return rows, nil
}
