package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/fortuna/dugout/internal/store"
)

// PlayerRepository handles player data access
type PlayerRepository struct {
	store store.Store
}

// NewPlayerRepository creates a new player repository
func NewPlayerRepository(s store.Store) *PlayerRepository {
	return &PlayerRepository{store: s}
}

// GetByID finds a player by ID
func (r *PlayerRepository) GetByID(ctx context.Context, playerID int) (*store.Player, error) {
	return r.store.GetPlayer(ctx, playerID)
}

// GetByNameTeam finds a player by name and team. Name matching is
// case-insensitive and ignores surrounding whitespace.
func (r *PlayerRepository) GetByNameTeam(ctx context.Context, name, team string) (*store.Player, error) {
	return r.store.GetPlayerByNameTeam(ctx, name, team)
}

// FindOrCreate returns the existing player for (name, team) or creates
// one. The same name on two teams yields two distinct players.
func (r *PlayerRepository) FindOrCreate(ctx context.Context, name, team, league string) (*store.Player, error) {
	player, err := r.store.GetPlayerByNameTeam(ctx, name, team)
	if err == nil {
		return player, nil
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up player %q: %w", name, err)
	}

	player, err = r.store.CreatePlayer(ctx, &store.Player{Name: name, Team: team, League: league})
	if err != nil {
		return nil, fmt.Errorf("failed to create player %q: %w", name, err)
	}
	return player, nil
}

// GetAll lists every player on record.
func (r *PlayerRepository) GetAll(ctx context.Context) ([]*store.Player, error) {
	return r.store.GetAllPlayers(ctx)
}
