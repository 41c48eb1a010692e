package repository

import (
	"context"
	"fmt"
	"strings"

	"github.com/fortuna/dugout/internal/store"
)

// StatsRepository handles plate appearance and hitter total access
type StatsRepository struct {
	store store.Store
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(s store.Store) *StatsRepository {
	return &StatsRepository{store: s}
}

// CreatePlateAppearance records one player's batting line for a game.
func (r *StatsRepository) CreatePlateAppearance(ctx context.Context, pa *store.PlateAppearance) (*store.PlateAppearance, error) {
	created, err := r.store.CreatePlateAppearance(ctx, pa)
	if err != nil {
		return nil, fmt.Errorf("failed to create plate appearance: %w", err)
	}
	return created, nil
}

// GetByGame lists plate appearances for one game.
func (r *StatsRepository) GetByGame(ctx context.Context, gameID int) ([]*store.PlateAppearance, error) {
	return r.store.GetPlateAppearancesByGame(ctx, gameID)
}

// GetByPlayer lists plate appearances for one player across all games.
func (r *StatsRepository) GetByPlayer(ctx context.Context, playerID int) ([]*store.PlateAppearance, error) {
	return r.store.GetPlateAppearancesByPlayer(ctx, playerID)
}

// GetAll lists every plate appearance on record.
func (r *StatsRepository) GetAll(ctx context.Context) ([]*store.PlateAppearance, error) {
	return r.store.GetAllPlateAppearances(ctx)
}

// GetByTeam lists plate appearances credited to one team, optionally
// restricted to games in a league and season. Team names match
// case-insensitively, ignoring surrounding whitespace.
func (r *StatsRepository) GetByTeam(ctx context.Context, team, league, season string) ([]*store.PlateAppearance, error) {
	games, err := r.store.GetGames(ctx, store.GameFilter{League: league, Season: season})
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	gameIDs := make(map[int]struct{}, len(games))
	for _, g := range games {
		gameIDs[g.ID] = struct{}{}
	}

	pas, err := r.store.GetAllPlateAppearances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list plate appearances: %w", err)
	}
	var out []*store.PlateAppearance
	for _, pa := range pas {
		if !strings.EqualFold(strings.TrimSpace(pa.Team), strings.TrimSpace(team)) {
			continue
		}
		if _, ok := gameIDs[pa.GameID]; !ok {
			continue
		}
		out = append(out, pa)
	}
	return out, nil
}

// ReplaceTotals swaps out the hitter totals for one (league, season).
func (r *StatsRepository) ReplaceTotals(ctx context.Context, league, season string, totals []*store.HitterTotal) error {
	if err := r.store.ReplaceHitterTotals(ctx, league, season, totals); err != nil {
		return fmt.Errorf("failed to replace hitter totals: %w", err)
	}
	return nil
}

// GetTotal fetches one player's totals for a (league, season).
func (r *StatsRepository) GetTotal(ctx context.Context, playerID int, league, season string) (*store.HitterTotal, error) {
	return r.store.GetHitterTotal(ctx, playerID, league, season)
}

// GetTotals lists all totals for a (league, season).
func (r *StatsRepository) GetTotals(ctx context.Context, league, season string) ([]*store.HitterTotal, error) {
	return r.store.GetHitterTotals(ctx, league, season)
}

// GetTotalsByPlayer lists one player's totals across every season.
func (r *StatsRepository) GetTotalsByPlayer(ctx context.Context, playerID int) ([]*store.HitterTotal, error) {
	return r.store.GetHitterTotalsByPlayer(ctx, playerID)
}

// GetAllTotals lists every hitter total on record.
func (r *StatsRepository) GetAllTotals(ctx context.Context) ([]*store.HitterTotal, error) {
	return r.store.GetAllHitterTotals(ctx)
}

// UniqueTeams lists distinct team names seen in plate appearances,
// optionally restricted to one league.
func (r *StatsRepository) UniqueTeams(ctx context.Context, league string) ([]string, error) {
	return r.store.UniqueTeams(ctx, league)
}
