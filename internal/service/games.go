package service

import (
	"context"
	"fmt"

	"github.com/fortuna/dugout/internal/batting"
	"github.com/fortuna/dugout/internal/store"
	"github.com/fortuna/dugout/internal/store/repository"
)

// GameService serves game listings and box score detail.
type GameService struct {
	games   *repository.GameRepository
	stats   *repository.StatsRepository
	players *repository.PlayerRepository
}

// NewGameService creates a new game service
func NewGameService(games *repository.GameRepository, stats *repository.StatsRepository, players *repository.PlayerRepository) *GameService {
	return &GameService{games: games, stats: stats, players: players}
}

// BoxScoreLine is one player's line in a game detail response. AVG is
// the single-game H/AB, not the season rate.
type BoxScoreLine struct {
	ID         int     `json:"id"`
	PlayerName string  `json:"player_name"`
	Team       string  `json:"team"`
	AB         int     `json:"AB"`
	H          int     `json:"H"`
	HR         int     `json:"HR"`
	RBI        int     `json:"RBI"`
	AVG        float64 `json:"AVG"`
}

// GameDetail is a game plus every batting line recorded for it.
type GameDetail struct {
	Game             *store.Game
	PlateAppearances []*BoxScoreLine
}

// List returns games with optional filters and pagination, newest first.
func (s *GameService) List(ctx context.Context, f store.GameFilter) ([]*store.Game, error) {
	return s.games.List(ctx, f)
}

// Get returns one game by ID.
func (s *GameService) Get(ctx context.Context, gameID int) (*store.Game, error) {
	return s.games.GetByID(ctx, gameID)
}

// Detail returns one game with its box score lines.
func (s *GameService) Detail(ctx context.Context, gameID int) (*GameDetail, error) {
	game, err := s.games.GetByID(ctx, gameID)
	if err != nil {
		return nil, err
	}

	pas, err := s.stats.GetByGame(ctx, gameID)
	if err != nil {
		return nil, fmt.Errorf("failed to list plate appearances: %w", err)
	}

	lines := make([]*BoxScoreLine, 0, len(pas))
	for _, pa := range pas {
		player, err := s.players.GetByID(ctx, pa.PlayerID)
		if err != nil {
			continue
		}
		lines = append(lines, &BoxScoreLine{
			ID:         pa.ID,
			PlayerName: player.Name,
			Team:       pa.Team,
			AB:         pa.AB,
			H:          pa.H,
			HR:         pa.HR,
			RBI:        pa.RBI,
			AVG:        batting.GameAverage(pa.H, pa.AB),
		})
	}
	return &GameDetail{Game: game, PlateAppearances: lines}, nil
}
