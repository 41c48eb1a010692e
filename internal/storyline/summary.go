package storyline

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fortuna/dugout/internal/batting"
	"github.com/fortuna/dugout/internal/store"
)

// Performer is one player's single-game line ranked by a weighted score:
// H*2 + 2B*3 + 3B*5 + HR*8 + RBI*2 + R*1.5. Ties keep roster order.
type Performer struct {
	Name  string
	Team  string
	Score float64
	Line  *store.PlateAppearance
}

func topPerformers(pas []*store.PlateAppearance, players map[int]*store.Player, n int) []Performer {
	performers := make([]Performer, 0, len(pas))
	for _, pa := range pas {
		player, ok := players[pa.PlayerID]
		if !ok {
			continue
		}
		score := float64(pa.H)*2 +
			float64(pa.Doubles)*3 +
			float64(pa.Triples)*5 +
			float64(pa.HR)*8 +
			float64(pa.RBI)*2 +
			float64(pa.R)*1.5
		performers = append(performers, Performer{
			Name:  player.Name,
			Team:  pa.Team,
			Score: score,
			Line:  pa,
		})
	}
	sort.SliceStable(performers, func(i, j int) bool {
		return performers[i].Score > performers[j].Score
	})
	if len(performers) > n {
		performers = performers[:n]
	}
	return performers
}

func formatPerformers(performers []Performer) string {
	if len(performers) == 0 {
		return "No standout performers"
	}
	var lines []string
	for i, p := range performers {
		var highlights []string
		if p.Line.H > 0 {
			highlights = append(highlights, fmt.Sprintf("%d hits", p.Line.H))
		}
		if p.Line.HR > 0 {
			highlights = append(highlights, fmt.Sprintf("%d HR", p.Line.HR))
		}
		if p.Line.RBI > 0 {
			highlights = append(highlights, fmt.Sprintf("%d RBI", p.Line.RBI))
		}
		if p.Line.R > 0 {
			highlights = append(highlights, fmt.Sprintf("%d runs", p.Line.R))
		}
		performance := "solid performance"
		if len(highlights) > 0 {
			performance = strings.Join(highlights, ", ")
		}
		lines = append(lines, fmt.Sprintf("%d. %s (%s): %s", i+1, p.Name, p.Team, performance))
	}
	return strings.Join(lines, "\n")
}

func formatTeamStats(pas []*store.PlateAppearance, players map[int]*store.Player, teamName string) string {
	var lines []string
	for _, pa := range pas {
		player, ok := players[pa.PlayerID]
		if !ok {
			continue
		}
		avg := ".000"
		if pa.AB > 0 {
			avg = fmt.Sprintf("%.3f", float64(pa.H)/float64(pa.AB))
		}

		parts := []string{fmt.Sprintf("%s: %d AB, %d H", player.Name, pa.AB, pa.H)}
		if pa.Doubles > 0 {
			parts = append(parts, fmt.Sprintf("%d 2B", pa.Doubles))
		}
		if pa.Triples > 0 {
			parts = append(parts, fmt.Sprintf("%d 3B", pa.Triples))
		}
		if pa.HR > 0 {
			parts = append(parts, fmt.Sprintf("%d HR", pa.HR))
		}
		if pa.RBI > 0 {
			parts = append(parts, fmt.Sprintf("%d RBI", pa.RBI))
		}
		if pa.R > 0 {
			parts = append(parts, fmt.Sprintf("%d R", pa.R))
		}
		if pa.BB > 0 {
			parts = append(parts, fmt.Sprintf("%d BB", pa.BB))
		}
		parts = append(parts, fmt.Sprintf("(AVG: %s)", avg))
		lines = append(lines, "- "+strings.Join(parts, ", "))
	}
	if len(lines) == 0 {
		return fmt.Sprintf("%s: No player data available", teamName)
	}
	return strings.Join(lines, "\n")
}

// HitterLine is one player's line inside a game summary, carrying the
// single-game rates.
type HitterLine struct {
	Name    string  `json:"name"`
	AB      int     `json:"AB"`
	H       int     `json:"H"`
	HR      int     `json:"HR"`
	RBI     int     `json:"RBI"`
	R       int     `json:"R"`
	Doubles int     `json:"2B"`
	Triples int     `json:"3B"`
	BB      int     `json:"BB"`
	K       int     `json:"K"`
	AVG     float64 `json:"AVG"`
	OPS     float64 `json:"OPS"`
}

// TeamSummary is one side of a game summary.
type TeamSummary struct {
	Name       string       `json:"name"`
	Runs       int          `json:"runs"`
	Hits       int          `json:"hits"`
	TopHitters []HitterLine `json:"top_hitters"`
}

// GameSummary is the structured box summary fed to the recap generator
// and exposed for debugging.
type GameSummary struct {
	Date     string      `json:"date"`
	League   string      `json:"league"`
	Season   string      `json:"season"`
	HomeTeam TeamSummary `json:"home_team"`
	AwayTeam TeamSummary `json:"away_team"`
}

func buildTeamSummary(name string, pas []*store.PlateAppearance, players map[int]*store.Player) TeamSummary {
	ts := TeamSummary{Name: name}
	for _, pa := range pas {
		player, ok := players[pa.PlayerID]
		if !ok {
			continue
		}
		d := batting.Derive(pa.AB, pa.H, pa.Doubles, pa.Triples, pa.HR, pa.BB, pa.HBP, pa.SF, pa.SH)
		ts.TopHitters = append(ts.TopHitters, HitterLine{
			Name:    player.Name,
			AB:      pa.AB,
			H:       pa.H,
			HR:      pa.HR,
			RBI:     pa.RBI,
			R:       pa.R,
			Doubles: pa.Doubles,
			Triples: pa.Triples,
			BB:      pa.BB,
			K:       pa.K,
			AVG:     d.AVG,
			OPS:     d.OPS,
		})
		ts.Runs += pa.R
		ts.Hits += pa.H
	}
	sort.SliceStable(ts.TopHitters, func(i, j int) bool {
		return ts.TopHitters[i].OPS > ts.TopHitters[j].OPS
	})
	if len(ts.TopHitters) > 5 {
		ts.TopHitters = ts.TopHitters[:5]
	}
	return ts
}
