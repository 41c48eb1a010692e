package service

import (
	"context"
	"fmt"

	"github.com/fortuna/dugout/internal/store"
	"github.com/fortuna/dugout/internal/store/repository"
)

// PlayerService serves player detail views.
type PlayerService struct {
	players *repository.PlayerRepository
	stats   *repository.StatsRepository
}

// NewPlayerService creates a new player service
func NewPlayerService(players *repository.PlayerRepository, stats *repository.StatsRepository) *PlayerService {
	return &PlayerService{players: players, stats: stats}
}

// PlayerDetail is a player plus their stored totals across every
// (league, season) they appear in.
type PlayerDetail struct {
	Player *store.Player
	Totals []*store.HitterTotal
}

// Get returns one player by ID.
func (s *PlayerService) Get(ctx context.Context, playerID int) (*store.Player, error) {
	return s.players.GetByID(ctx, playerID)
}

// Detail returns one player with all their hitter totals.
func (s *PlayerService) Detail(ctx context.Context, playerID int) (*PlayerDetail, error) {
	player, err := s.players.GetByID(ctx, playerID)
	if err != nil {
		return nil, err
	}
	totals, err := s.stats.GetTotalsByPlayer(ctx, playerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list hitter totals: %w", err)
	}
	return &PlayerDetail{Player: player, Totals: totals}, nil
}
