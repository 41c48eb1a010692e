package storyline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fortuna/dugout/internal/store"
)

var (
	// ErrNoPlayerData means the game has no plate appearances to write about.
	ErrNoPlayerData = errors.New("no player data found for this game")
	// ErrIncompleteGame means one side of the game has no batting lines.
	ErrIncompleteGame = errors.New("incomplete game data: both teams must have player stats")
	// ErrNotConfigured means no recap generator was wired at startup.
	ErrNotConfigured = errors.New("recap generator not configured: set OPENAI_API_KEY")
)

// TextGenerator produces a recap from a prompt. OpenAIClient is the
// production implementation.
type TextGenerator interface {
	GenerateRecap(ctx context.Context, prompt string) (string, error)
}

// Service generates and caches game recaps. Generation failures fall
// back to a deterministic recap built from the box score; nothing here
// ever writes to the core game records.
type Service struct {
	store store.Store
	cache Cache
	gen   TextGenerator
}

// NewService creates a storyline service. gen may be nil, in which case
// Generate reports ErrNotConfigured.
func NewService(st store.Store, cache Cache, gen TextGenerator) *Service {
	return &Service{store: st, cache: cache, gen: gen}
}

// Get returns the cached recap for a game, or store.ErrNotFound.
func (s *Service) Get(ctx context.Context, gameID string) (*store.GameStoryline, error) {
	return s.cache.Get(ctx, gameID)
}

// Exists reports whether a recap is cached for the game.
func (s *Service) Exists(ctx context.Context, gameID string) bool {
	_, err := s.cache.Get(ctx, gameID)
	return err == nil
}

// Summary builds the structured box summary for one game.
func (s *Service) Summary(ctx context.Context, gameID int) (*GameSummary, error) {
	game, homePAs, awayPAs, players, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}
	return &GameSummary{
		Date:     game.Date.Format("2006-01-02"),
		League:   game.League,
		Season:   game.Season,
		HomeTeam: buildTeamSummary(game.HomeTeam, homePAs, players),
		AwayTeam: buildTeamSummary(game.AwayTeam, awayPAs, players),
	}, nil
}

// Generate writes a recap for the game and caches it under the game ID.
// When the text generator fails mid-call the deterministic fallback
// recap is cached instead, so a flaky upstream never loses the request.
func (s *Service) Generate(ctx context.Context, gameID int) (*store.GameStoryline, error) {
	if s.gen == nil {
		return nil, ErrNotConfigured
	}

	game, homePAs, awayPAs, players, err := s.loadGame(ctx, gameID)
	if err != nil {
		return nil, err
	}

	all := append(append([]*store.PlateAppearance{}, homePAs...), awayPAs...)
	performers := topPerformers(all, players, 3)

	prompt := buildPrompt(game, homePAs, awayPAs, players, performers)

	var headline, recap string
	text, err := s.gen.GenerateRecap(ctx, prompt)
	if err != nil {
		log.Printf("[storyline] ✗ recap generation failed, using fallback: %v", err)
		headline, recap = fallbackRecap(game, performers)
	} else {
		recap = strings.TrimSpace(text)
		headline = extractHeadline(recap, game)
	}

	keyPlayers := make([]string, 0, len(performers))
	for _, p := range performers {
		keyPlayers = append(keyPlayers, p.Name)
	}

	storyline := &store.GameStoryline{
		ID:          uuid.NewString(),
		GameID:      strconv.Itoa(game.ID),
		Headline:    headline,
		Recap:       recap,
		KeyPlayers:  keyPlayers,
		GameSummary: resultLine(game),
		GeneratedAt: time.Now().UTC(),
	}
	if err := s.cache.Set(ctx, storyline); err != nil {
		log.Printf("[storyline] failed to cache recap for game %d: %v", game.ID, err)
	}
	log.Printf("[storyline] ✓ recap generated for game %d: %s", game.ID, storyline.Headline)
	return storyline, nil
}

func (s *Service) loadGame(ctx context.Context, gameID int) (*store.Game, []*store.PlateAppearance, []*store.PlateAppearance, map[int]*store.Player, error) {
	game, err := s.store.GetGame(ctx, gameID)
	if err != nil {
		return nil, nil, nil, nil, err
	}

	pas, err := s.store.GetPlateAppearancesByGame(ctx, gameID)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if len(pas) == 0 {
		return nil, nil, nil, nil, ErrNoPlayerData
	}

	var home, away []*store.PlateAppearance
	for _, pa := range pas {
		if pa.Team == game.HomeTeam {
			home = append(home, pa)
		} else {
			away = append(away, pa)
		}
	}
	if len(home) == 0 || len(away) == 0 {
		return nil, nil, nil, nil, ErrIncompleteGame
	}

	allPlayers, err := s.store.GetAllPlayers(ctx)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	players := make(map[int]*store.Player, len(allPlayers))
	for _, p := range allPlayers {
		players[p.ID] = p
	}
	return game, home, away, players, nil
}

func extractHeadline(recap string, game *store.Game) string {
	for _, line := range strings.Split(recap, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		return strings.TrimSpace(strings.Trim(line, "#"))
	}
	if game.Winner != nil {
		return fmt.Sprintf("%s Defeats %s", *game.Winner, loserOf(game))
	}
	return fmt.Sprintf("%s and %s Play to a Tie", game.HomeTeam, game.AwayTeam)
}

func loserOf(game *store.Game) string {
	if game.Winner != nil && *game.Winner == game.HomeTeam {
		return game.AwayTeam
	}
	return game.HomeTeam
}

func highLow(game *store.Game) (int, int) {
	if game.HomeScore >= game.AwayScore {
		return game.HomeScore, game.AwayScore
	}
	return game.AwayScore, game.HomeScore
}

func resultLine(game *store.Game) string {
	hi, lo := highLow(game)
	if game.Winner == nil {
		return fmt.Sprintf("%s and %s tie %d-%d", game.HomeTeam, game.AwayTeam, hi, lo)
	}
	return fmt.Sprintf("%s defeats %s %d-%d", *game.Winner, loserOf(game), hi, lo)
}

func fallbackRecap(game *store.Game, performers []Performer) (string, string) {
	hi, lo := highLow(game)
	var headline string
	if game.Winner == nil {
		headline = fmt.Sprintf("%s and %s Tie %d-%d", game.HomeTeam, game.AwayTeam, hi, lo)
	} else {
		headline = fmt.Sprintf("%s Wins %d-%d", *game.Winner, hi, lo)
	}

	var opening string
	if game.Winner == nil {
		opening = fmt.Sprintf("The %s and the %s played to a %d-%d tie on %s.",
			game.HomeTeam, game.AwayTeam, hi, lo, game.Date.Format("2006-01-02"))
	} else {
		opening = fmt.Sprintf("The %s defeated the %s by a score of %d-%d on %s.",
			*game.Winner, loserOf(game), hi, lo, game.Date.Format("2006-01-02"))
	}

	recap := fmt.Sprintf(`# %s

%s

## Top Performers

%s

Game statistics show a competitive matchup between both teams.`,
		headline, opening, formatPerformers(performers))
	return headline, recap
}

func buildPrompt(game *store.Game, homePAs, awayPAs []*store.PlateAppearance, players map[int]*store.Player, performers []Performer) string {
	winner := "Tie"
	if game.Winner != nil {
		winner = *game.Winner
	}
	diff := game.HomeScore - game.AwayScore
	if diff < 0 {
		diff = -diff
	}
	competitive := "Dominant performance"
	if diff <= 2 {
		competitive = "Close game"
	}

	return fmt.Sprintf(`You are a professional sports recap writer producing broadcast-style summaries.

GOAL: Generate a clear, energetic game recap using ONLY the provided stats and play data.

FORMAT:

1. Headline (max 12 words)
2. Opening Summary - winner, final score, main storyline
3. Key Game Moments - 2-4 major plays or turning points
4. Standout Players - highlight top performers with specific stats
5. Team Notes - efficiency, batting performance, offensive trends
6. Closing Line - short, strong concluding sentence

RULES:

- No invented stats or guesses
- Keep paragraphs tight and professional
- Focus on standout performances and decisive plays
- Never mention missing info
- Use baseball terminology appropriately (hits, runs, RBIs, extra-base hits)
- Make it exciting but factual

INPUT DATA:

Sport: Baseball (Adult Baseball League)

Date: %s

Teams: %s vs %s

Final Score: %s %d, %s %d

Winner: %s

%s PLAYER STATS:

%s

%s PLAYER STATS:

%s

TOP PERFORMERS (Cross-Team):

%s

KEY CONTEXT:

- Total Runs: %d
- Run Differential: %d
- Competitive Level: %s

TASK: Generate the full game recap following the format above. Make it engaging, professional, and broadcast-quality.`,
		game.Date.Format("2006-01-02"),
		game.HomeTeam, game.AwayTeam,
		game.HomeTeam, game.HomeScore, game.AwayTeam, game.AwayScore,
		winner,
		game.HomeTeam, formatTeamStats(homePAs, players, game.HomeTeam),
		game.AwayTeam, formatTeamStats(awayPAs, players, game.AwayTeam),
		formatPerformers(performers),
		game.HomeScore+game.AwayScore,
		diff,
		competitive)
}
