package storyline

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/fortuna/dugout/internal/store"
)

// ScoutingReport writes a multi-season scouting summary for one player.
// Unlike game recaps there is no fallback; without a working generator
// the caller gets the error.
func (s *Service) ScoutingReport(ctx context.Context, playerID int) (string, error) {
	if s.gen == nil {
		return "", ErrNotConfigured
	}

	player, err := s.store.GetPlayer(ctx, playerID)
	if err != nil {
		return "", err
	}

	totals, err := s.store.GetHitterTotalsByPlayer(ctx, playerID)
	if err != nil {
		return "", err
	}
	if len(totals) == 0 {
		return "", fmt.Errorf("no stats found for player %d: %w", playerID, store.ErrNotFound)
	}

	type seasonLine struct {
		League string  `json:"league"`
		Season string  `json:"season"`
		Games  int     `json:"games"`
		AB     int     `json:"AB"`
		H      int     `json:"H"`
		HR     int     `json:"HR"`
		RBI    int     `json:"RBI"`
		AVG    float64 `json:"AVG"`
		OBP    float64 `json:"OBP"`
		SLG    float64 `json:"SLG"`
		OPS    float64 `json:"OPS"`
	}
	lines := make([]seasonLine, 0, len(totals))
	for _, ht := range totals {
		lines = append(lines, seasonLine{
			League: ht.League, Season: ht.Season, Games: ht.Games,
			AB: ht.AB, H: ht.H, HR: ht.HR, RBI: ht.RBI,
			AVG: ht.AVG, OBP: ht.OBP, SLG: ht.SLG, OPS: ht.OPS,
		})
	}
	statsJSON, err := json.MarshalIndent(lines, "", "  ")
	if err != nil {
		return "", err
	}

	prompt := fmt.Sprintf(`You are a baseball scout analyzing a HitTrax adult league player. Given this player's stats across multiple seasons/leagues, write a brief scouting report (2-3 paragraphs) covering:

- Overall hitting profile and strengths
- Areas for improvement or notable trends
- Projected role/value

Player: %s
Team: %s

Stats by league/season:
%s

Write the scouting report in a professional but accessible tone.`,
		player.Name, player.Team, statsJSON)

	report, err := s.gen.GenerateRecap(ctx, prompt)
	if err != nil {
		return "", fmt.Errorf("failed to generate scouting report: %w", err)
	}
	return report, nil
}
