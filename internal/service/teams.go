package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/fortuna/dugout/internal/batting"
	"github.com/fortuna/dugout/internal/store"
	"github.com/fortuna/dugout/internal/store/repository"
)

// TeamService builds team records, rosters and schedules. Teams are not
// stored as entities; everything here is derived from games and plate
// appearances.
type TeamService struct {
	games   *repository.GameRepository
	stats   *repository.StatsRepository
	players *repository.PlayerRepository
}

// NewTeamService creates a new team service
func NewTeamService(games *repository.GameRepository, stats *repository.StatsRepository, players *repository.PlayerRepository) *TeamService {
	return &TeamService{games: games, stats: stats, players: players}
}

// TeamStats is one team's record plus its aggregate batting line.
type TeamStats struct {
	Name            string  `json:"name"`
	League          string  `json:"league"`
	Season          string  `json:"season"`
	GamesPlayed     int     `json:"games_played"`
	Wins            int     `json:"wins"`
	Losses          int     `json:"losses"`
	WinPct          float64 `json:"win_pct"`
	RunsScored      int     `json:"runs_scored"`
	RunsAllowed     int     `json:"runs_allowed"`
	RunDifferential int     `json:"run_differential"`
	TeamAVG         float64 `json:"team_avg"`
	TeamOBP         float64 `json:"team_obp"`
	TeamSLG         float64 `json:"team_slg"`
	TeamOPS         float64 `json:"team_ops"`
}

// RosterEntry is one player's aggregate line within a team.
type RosterEntry struct {
	PlayerID   int     `json:"player_id"`
	PlayerName string  `json:"player_name"`
	Team       string  `json:"team"`
	Games      int     `json:"games"`
	AB         int     `json:"ab"`
	H          int     `json:"h"`
	Doubles    int     `json:"doubles"`
	Triples    int     `json:"triples"`
	HR         int     `json:"hr"`
	RBI        int     `json:"rbi"`
	BB         int     `json:"bb"`
	K          int     `json:"so"`
	R          int     `json:"r"`
	HBP        int     `json:"hbp"`
	SF         int     `json:"sf"`
	SH         int     `json:"sh"`
	SB         int     `json:"sb"`
	CS         int     `json:"cs"`
	AVG        float64 `json:"avg"`
	OBP        float64 `json:"obp"`
	SLG        float64 `json:"slg"`
	OPS        float64 `json:"ops"`
}

// AllTeams derives every team's record from the games on record,
// sorted by win percentage then run differential, both descending.
// A tie counts as neither a win nor a loss.
func (s *TeamService) AllTeams(ctx context.Context, league, season string) ([]*TeamStats, error) {
	games, err := s.games.List(ctx, store.GameFilter{League: league, Season: season})
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}

	teams := make(map[string]*TeamStats)
	var order []string
	side := func(name string, g *store.Game, scored, allowed int) {
		t, ok := teams[name]
		if !ok {
			t = &TeamStats{Name: name, League: g.League, Season: g.Season}
			teams[name] = t
			order = append(order, name)
		}
		t.GamesPlayed++
		t.RunsScored += scored
		t.RunsAllowed += allowed
		if g.Winner == nil {
			return
		}
		if *g.Winner == name {
			t.Wins++
		} else {
			t.Losses++
		}
	}
	for _, g := range games {
		side(g.HomeTeam, g, g.HomeScore, g.AwayScore)
		side(g.AwayTeam, g, g.AwayScore, g.HomeScore)
	}

	out := make([]*TeamStats, 0, len(order))
	for _, name := range order {
		t := teams[name]
		if t.GamesPlayed > 0 {
			t.WinPct = float64(t.Wins) / float64(t.GamesPlayed)
		}
		t.RunDifferential = t.RunsScored - t.RunsAllowed

		pas, err := s.stats.GetByTeam(ctx, name, league, season)
		if err != nil {
			return nil, err
		}
		if len(pas) > 0 {
			acc := batting.NewAccumulator()
			for _, pa := range pas {
				acc.Add(pa)
			}
			d := acc.Derive()
			t.TeamAVG = d.AVG
			t.TeamOBP = d.OBP
			t.TeamSLG = d.SLG
			t.TeamOPS = d.OPS
		}
		out = append(out, t)
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].WinPct != out[j].WinPct {
			return out[i].WinPct > out[j].WinPct
		}
		return out[i].RunDifferential > out[j].RunDifferential
	})
	return out, nil
}

// TeamStats finds one team's record, or ErrNotFound.
func (s *TeamService) TeamStats(ctx context.Context, teamName, league, season string) (*TeamStats, error) {
	teams, err := s.AllTeams(ctx, league, season)
	if err != nil {
		return nil, err
	}
	for _, t := range teams {
		if strings.EqualFold(strings.TrimSpace(t.Name), strings.TrimSpace(teamName)) {
			return t, nil
		}
	}
	return nil, store.ErrNotFound
}

// TeamRoster aggregates each player's line on one team, sorted by OPS
// descending.
func (s *TeamService) TeamRoster(ctx context.Context, teamName, league, season string) ([]*RosterEntry, error) {
	pas, err := s.stats.GetByTeam(ctx, teamName, league, season)
	if err != nil {
		return nil, err
	}

	accs := make(map[int]*batting.Accumulator)
	names := make(map[int]string)
	var order []int
	for _, pa := range pas {
		acc, ok := accs[pa.PlayerID]
		if !ok {
			player, err := s.players.GetByID(ctx, pa.PlayerID)
			if err != nil {
				continue
			}
			acc = batting.NewAccumulator()
			accs[pa.PlayerID] = acc
			names[pa.PlayerID] = player.Name
			order = append(order, pa.PlayerID)
		}
		acc.Add(pa)
	}

	out := make([]*RosterEntry, 0, len(order))
	for _, playerID := range order {
		acc := accs[playerID]
		d := acc.Derive()
		out = append(out, &RosterEntry{
			PlayerID:   playerID,
			PlayerName: names[playerID],
			Team:       teamName,
			Games:      acc.Games(),
			AB:         acc.AB,
			H:          acc.H,
			Doubles:    acc.Doubles,
			Triples:    acc.Triples,
			HR:         acc.HR,
			RBI:        acc.RBI,
			BB:         acc.BB,
			K:          acc.K,
			R:          acc.R,
			HBP:        acc.HBP,
			SF:         acc.SF,
			SH:         acc.SH,
			SB:         acc.SB,
			CS:         acc.CS,
			AVG:        d.AVG,
			OBP:        d.OBP,
			SLG:        d.SLG,
			OPS:        d.OPS,
		})
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].OPS > out[j].OPS })
	return out, nil
}

// TeamGames lists the games one team played in, newest first.
func (s *TeamService) TeamGames(ctx context.Context, teamName, league, season string) ([]*store.Game, error) {
	return s.games.List(ctx, store.GameFilter{League: league, Season: season, Team: teamName})
}
