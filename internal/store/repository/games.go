package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/fortuna/dugout/internal/store"
)

// GameRepository handles game data access
type GameRepository struct {
	store store.Store
}

// NewGameRepository creates a new game repository
func NewGameRepository(s store.Store) *GameRepository {
	return &GameRepository{store: s}
}

// Create inserts a new game record.
func (r *GameRepository) Create(ctx context.Context, g *store.Game) (*store.Game, error) {
	game, err := r.store.CreateGame(ctx, g)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return game, nil
}

// GetByID finds a game by ID
func (r *GameRepository) GetByID(ctx context.Context, gameID int) (*store.Game, error) {
	return r.store.GetGame(ctx, gameID)
}

// List returns games matching the filter, newest first.
func (r *GameRepository) List(ctx context.Context, f store.GameFilter) ([]*store.Game, error) {
	return r.store.GetGames(ctx, f)
}

// CheckDuplicate returns a DuplicateGameError when a game with the same
// date, league, season and team pair (in either home/away order) is
// already on record.
func (r *GameRepository) CheckDuplicate(ctx context.Context, date time.Time, league, season, team1, team2 string) error {
	existing, err := r.store.FindDuplicateGame(ctx, date, league, season, team1, team2)
	if err != nil {
		return fmt.Errorf("failed to check duplicate game: %w", err)
	}
	if existing != nil {
		return &store.DuplicateGameError{Existing: existing}
	}
	return nil
}
