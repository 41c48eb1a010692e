package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrNotFound is returned when a lookup by id or key matches nothing.
var ErrNotFound = errors.New("not found")

// DuplicateGameError reports an upload that matches a game already on
// record. Existing is the game that blocked the insert.
type DuplicateGameError struct {
	Existing *Game
}

func (e *DuplicateGameError) Error() string {
	return fmt.Sprintf("duplicate game: %s vs %s on %s already ingested (game %d)",
		e.Existing.HomeTeam, e.Existing.AwayTeam, e.Existing.Date.Format("2006-01-02"), e.Existing.ID)
}

// GameFilter narrows GetGames. Zero values mean "no filter"; Limit <= 0
// means no limit.
type GameFilter struct {
	League string
	Season string
	Team   string
	Limit  int
	Offset int
}

// Store is the persistence boundary. MemoryStore is the default backend;
// PostgresStore implements the same contract for durable deployments.
type Store interface {
	CreatePlayer(ctx context.Context, p *Player) (*Player, error)
	GetPlayer(ctx context.Context, id int) (*Player, error)
	GetPlayerByNameTeam(ctx context.Context, name, team string) (*Player, error)
	GetAllPlayers(ctx context.Context) ([]*Player, error)

	CreateGame(ctx context.Context, g *Game) (*Game, error)
	GetGame(ctx context.Context, id int) (*Game, error)
	GetGames(ctx context.Context, f GameFilter) ([]*Game, error)
	// FindDuplicateGame matches on date, league, season and the team pair
	// in either order, case-insensitively. Returns (nil, nil) when clear.
	FindDuplicateGame(ctx context.Context, date time.Time, league, season, team1, team2 string) (*Game, error)

	CreatePlateAppearance(ctx context.Context, pa *PlateAppearance) (*PlateAppearance, error)
	GetPlateAppearancesByGame(ctx context.Context, gameID int) ([]*PlateAppearance, error)
	GetPlateAppearancesByPlayer(ctx context.Context, playerID int) ([]*PlateAppearance, error)
	GetAllPlateAppearances(ctx context.Context) ([]*PlateAppearance, error)

	// ReplaceHitterTotals deletes every total for (league, season) and
	// inserts the given rows in one shot. Recompute is rebuild, not patch.
	ReplaceHitterTotals(ctx context.Context, league, season string, totals []*HitterTotal) error
	GetHitterTotal(ctx context.Context, playerID int, league, season string) (*HitterTotal, error)
	GetHitterTotals(ctx context.Context, league, season string) ([]*HitterTotal, error)
	GetHitterTotalsByPlayer(ctx context.Context, playerID int) ([]*HitterTotal, error)
	GetAllHitterTotals(ctx context.Context) ([]*HitterTotal, error)

	// UniqueTeams lists distinct team names seen in plate appearances,
	// optionally restricted to games in one league.
	UniqueTeams(ctx context.Context, league string) ([]string, error)

	Close() error
}
