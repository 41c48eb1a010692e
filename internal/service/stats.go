package service

import (
	"context"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/fortuna/dugout/internal/batting"
	"github.com/fortuna/dugout/internal/store"
	"github.com/fortuna/dugout/internal/store/repository"
)

// StatsService recomputes hitter totals and serves the leaderboard and
// per-player aggregate views.
type StatsService struct {
	stats   *repository.StatsRepository
	games   *repository.GameRepository
	players *repository.PlayerRepository
}

// NewStatsService creates a new stats service
func NewStatsService(stats *repository.StatsRepository, games *repository.GameRepository, players *repository.PlayerRepository) *StatsService {
	return &StatsService{stats: stats, games: games, players: players}
}

// LeaderboardEntry is one leaderboard row, ordered by OPS.
type LeaderboardEntry struct {
	PlayerID   int     `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Team       string  `json:"team"`
	Games      int     `json:"games"`
	AB         int     `json:"AB"`
	H          int     `json:"H"`
	HR         int     `json:"HR"`
	RBI        int     `json:"RBI"`
	AVG        float64 `json:"AVG"`
	OBP        float64 `json:"OBP"`
	SLG        float64 `json:"SLG"`
	OPS        float64 `json:"OPS"`
}

// PlayerSeasonStats is one player's aggregate line for a
// (team, player, league, season) grouping.
type PlayerSeasonStats struct {
	PlayerID   int     `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Team       string  `json:"team"`
	League     string  `json:"league"`
	Season     string  `json:"season"`
	Games      int     `json:"games"`
	AB         int     `json:"AB"`
	H          int     `json:"H"`
	Singles    int     `json:"singles"`
	Doubles    int     `json:"double"`
	Triples    int     `json:"triple"`
	HR         int     `json:"HR"`
	BB         int     `json:"BB"`
	HBP        int     `json:"HBP"`
	SF         int     `json:"SF"`
	SH         int     `json:"SH"`
	K          int     `json:"K"`
	R          int     `json:"R"`
	RBI        int     `json:"RBI"`
	SB         int     `json:"SB"`
	CS         int     `json:"CS"`
	PA         int     `json:"PA"`
	TB         int     `json:"TB"`
	AVG        float64 `json:"AVG"`
	OBP        float64 `json:"OBP"`
	SLG        float64 `json:"SLG"`
	OPS        float64 `json:"OPS"`
}

// RecomputeHitterTotals rebuilds every hitter total for one
// (league, season) from the plate appearances on record. The previous
// totals for that slice are discarded, so retries and manual recomputes
// are idempotent.
func (s *StatsService) RecomputeHitterTotals(ctx context.Context, league, season string) error {
	games, err := s.games.List(ctx, store.GameFilter{League: league, Season: season})
	if err != nil {
		return fmt.Errorf("failed to list games: %w", err)
	}
	gameIDs := make(map[int]struct{}, len(games))
	for _, g := range games {
		gameIDs[g.ID] = struct{}{}
	}

	pas, err := s.stats.GetAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to list plate appearances: %w", err)
	}

	byPlayer := make(map[int]*batting.Accumulator)
	for _, pa := range pas {
		if _, ok := gameIDs[pa.GameID]; !ok {
			continue
		}
		acc, ok := byPlayer[pa.PlayerID]
		if !ok {
			acc = batting.NewAccumulator()
			byPlayer[pa.PlayerID] = acc
		}
		acc.Add(pa)
	}

	playerIDs := make([]int, 0, len(byPlayer))
	for id := range byPlayer {
		playerIDs = append(playerIDs, id)
	}
	sort.Ints(playerIDs)

	totals := make([]*store.HitterTotal, 0, len(playerIDs))
	for _, id := range playerIDs {
		totals = append(totals, byPlayer[id].Total(id, league, season))
	}

	if err := s.stats.ReplaceTotals(ctx, league, season, totals); err != nil {
		return err
	}
	log.Printf("[stats] recomputed %d hitter totals for %s/%s", len(totals), league, season)
	return nil
}

// Leaderboard returns hitters ordered by OPS descending, player ID
// ascending on ties. All filters are optional. A team filter aggregates
// straight from plate appearances; league plus season reads the stored
// totals; anything else sums totals across the slices each player
// appears in.
func (s *StatsService) Leaderboard(ctx context.Context, league, season, team string) ([]*LeaderboardEntry, error) {
	players, err := s.playerMap(ctx)
	if err != nil {
		return nil, err
	}

	if team != "" {
		return s.teamLeaderboard(ctx, strings.TrimSpace(team), league, season, players)
	}

	var totals []*store.HitterTotal
	if league != "" && season != "" {
		totals, err = s.stats.GetTotals(ctx, league, season)
		if err != nil {
			return nil, fmt.Errorf("failed to list hitter totals: %w", err)
		}
		entries := make([]*LeaderboardEntry, 0, len(totals))
		for _, ht := range totals {
			player, ok := players[ht.PlayerID]
			if !ok {
				continue
			}
			entries = append(entries, &LeaderboardEntry{
				PlayerID:   player.ID,
				PlayerName: player.Name,
				Team:       player.Team,
				Games:      ht.Games,
				AB:         ht.AB,
				H:          ht.H,
				HR:         ht.HR,
				RBI:        ht.RBI,
				AVG:        ht.AVG,
				OBP:        ht.OBP,
				SLG:        ht.SLG,
				OPS:        ht.OPS,
			})
		}
		sortLeaderboard(entries)
		return entries, nil
	}

	// Partial or no filter: sum the matching totals per player and
	// re-derive rates from the raw sums.
	all, err := s.stats.GetAllTotals(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list hitter totals: %w", err)
	}
	type agg struct {
		games, ab, h, doubles, triples, hr, rbi, bb, hbp, sf, sh int
	}
	sums := make(map[int]*agg)
	for _, ht := range all {
		if league != "" && ht.League != league {
			continue
		}
		if season != "" && ht.Season != season {
			continue
		}
		a, ok := sums[ht.PlayerID]
		if !ok {
			a = &agg{}
			sums[ht.PlayerID] = a
		}
		a.games += ht.Games
		a.ab += ht.AB
		a.h += ht.H
		a.doubles += ht.Doubles
		a.triples += ht.Triples
		a.hr += ht.HR
		a.rbi += ht.RBI
		a.bb += ht.BB
		a.hbp += ht.HBP
		a.sf += ht.SF
		a.sh += ht.SH
	}

	entries := make([]*LeaderboardEntry, 0, len(sums))
	for playerID, a := range sums {
		player, ok := players[playerID]
		if !ok {
			continue
		}
		d := batting.Derive(a.ab, a.h, a.doubles, a.triples, a.hr, a.bb, a.hbp, a.sf, a.sh)
		entries = append(entries, &LeaderboardEntry{
			PlayerID:   player.ID,
			PlayerName: player.Name,
			Team:       player.Team,
			Games:      a.games,
			AB:         a.ab,
			H:          a.h,
			HR:         a.hr,
			RBI:        a.rbi,
			AVG:        d.AVG,
			OBP:        d.OBP,
			SLG:        d.SLG,
			OPS:        d.OPS,
		})
	}
	sortLeaderboard(entries)
	return entries, nil
}

func (s *StatsService) teamLeaderboard(ctx context.Context, team, league, season string, players map[int]*store.Player) ([]*LeaderboardEntry, error) {
	pas, err := s.stats.GetByTeam(ctx, team, league, season)
	if err != nil {
		return nil, err
	}

	byPlayer := make(map[int]*batting.Accumulator)
	for _, pa := range pas {
		if _, ok := players[pa.PlayerID]; !ok {
			continue
		}
		acc, ok := byPlayer[pa.PlayerID]
		if !ok {
			acc = batting.NewAccumulator()
			byPlayer[pa.PlayerID] = acc
		}
		acc.Add(pa)
	}

	entries := make([]*LeaderboardEntry, 0, len(byPlayer))
	for playerID, acc := range byPlayer {
		player := players[playerID]
		d := acc.Derive()
		entries = append(entries, &LeaderboardEntry{
			PlayerID:   player.ID,
			PlayerName: player.Name,
			Team:       player.Team,
			Games:      acc.Games(),
			AB:         acc.AB,
			H:          acc.H,
			HR:         acc.HR,
			RBI:        acc.RBI,
			AVG:        d.AVG,
			OBP:        d.OBP,
			SLG:        d.SLG,
			OPS:        d.OPS,
		})
	}
	sortLeaderboard(entries)
	return entries, nil
}

func sortLeaderboard(entries []*LeaderboardEntry) {
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].OPS != entries[j].OPS {
			return entries[i].OPS > entries[j].OPS
		}
		return entries[i].PlayerID < entries[j].PlayerID
	})
}

// PlayerStatsByTeam aggregates plate appearances grouped by
// (team, player, league, season). All filters are optional; the team
// filter matches the team the line was credited to, not the player's
// roster team.
func (s *StatsService) PlayerStatsByTeam(ctx context.Context, league, season, team string) ([]*PlayerSeasonStats, error) {
	pas, err := s.stats.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plate appearances: %w", err)
	}
	games, err := s.games.List(ctx, store.GameFilter{})
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	gameByID := make(map[int]*store.Game, len(games))
	for _, g := range games {
		gameByID[g.ID] = g
	}
	players, err := s.playerMap(ctx)
	if err != nil {
		return nil, err
	}

	type groupKey struct {
		team, player, league, season string
	}
	type group struct {
		playerID int
		acc      *batting.Accumulator
	}
	groups := make(map[groupKey]*group)
	var order []groupKey

	for _, pa := range pas {
		game, ok := gameByID[pa.GameID]
		if !ok {
			continue
		}
		if league != "" && game.League != league {
			continue
		}
		if season != "" && game.Season != season {
			continue
		}
		if team != "" && !strings.EqualFold(strings.TrimSpace(pa.Team), strings.TrimSpace(team)) {
			continue
		}
		player, ok := players[pa.PlayerID]
		if !ok {
			continue
		}

		key := groupKey{team: pa.Team, player: player.Name, league: game.League, season: game.Season}
		g, ok := groups[key]
		if !ok {
			g = &group{playerID: player.ID, acc: batting.NewAccumulator()}
			groups[key] = g
			order = append(order, key)
		}
		g.acc.Add(pa)
	}

	out := make([]*PlayerSeasonStats, 0, len(order))
	for _, key := range order {
		g := groups[key]
		acc := g.acc
		d := acc.Derive()
		out = append(out, &PlayerSeasonStats{
			PlayerID:   g.playerID,
			PlayerName: key.player,
			Team:       key.team,
			League:     key.league,
			Season:     key.season,
			Games:      acc.Games(),
			AB:         acc.AB,
			H:          acc.H,
			Singles:    d.Singles,
			Doubles:    acc.Doubles,
			Triples:    acc.Triples,
			HR:         acc.HR,
			BB:         acc.BB,
			HBP:        acc.HBP,
			SF:         acc.SF,
			SH:         acc.SH,
			K:          acc.K,
			R:          acc.R,
			RBI:        acc.RBI,
			SB:         acc.SB,
			CS:         acc.CS,
			PA:         d.PA,
			TB:         d.TB,
			AVG:        d.AVG,
			OBP:        d.OBP,
			SLG:        d.SLG,
			OPS:        d.OPS,
		})
	}
	return out, nil
}

func (s *StatsService) playerMap(ctx context.Context) (map[int]*store.Player, error) {
	all, err := s.players.GetAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list players: %w", err)
	}
	byID := make(map[int]*store.Player, len(all))
	for _, p := range all {
		byID[p.ID] = p
	}
	return byID, nil
}
