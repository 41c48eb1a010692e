package store

import "time"

// Player is a hitter attached to a single team. The (name, team) pair is
// unique after normalization, so the same name on two teams yields two
// distinct players.
type Player struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Team      string    `json:"team"`
	League    string    `json:"league,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Game is one completed contest. Winner is nil when the game ended in a tie.
type Game struct {
	ID        int       `json:"id"`
	League    string    `json:"league"`
	Season    string    `json:"season"`
	Date      time.Time `json:"date"`
	HomeTeam  string    `json:"home_team"`
	AwayTeam  string    `json:"away_team"`
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	Winner    *string   `json:"winner"`
	CreatedAt time.Time `json:"created_at"`
}

// PlateAppearance is one player's batting line within one game. RawJSON
// preserves the source row exactly as it was parsed, for auditability.
type PlateAppearance struct {
	ID       int    `json:"id"`
	GameID   int    `json:"game_id"`
	PlayerID int    `json:"player_id"`
	Team     string `json:"team"`
	AB       int    `json:"ab"`
	H        int    `json:"h"`
	Doubles  int    `json:"doubles"`
	Triples  int    `json:"triples"`
	HR       int    `json:"hr"`
	BB       int    `json:"bb"`
	HBP      int    `json:"hbp"`
	SF       int    `json:"sf"`
	SH       int    `json:"sh"`
	K        int    `json:"so"`
	R        int    `json:"r"`
	RBI      int    `json:"rbi"`
	SB       int    `json:"sb"`
	CS       int    `json:"cs"`
	RawJSON  string `json:"raw_json,omitempty"`
}

// HitterTotal is a player's accumulated line for one (league, season),
// with the derived rate stats baked in at recompute time. At most one
// row exists per (player, league, season).
type HitterTotal struct {
	ID       int    `json:"id"`
	PlayerID int    `json:"player_id"`
	League   string `json:"league"`
	Season   string `json:"season"`
	Games    int    `json:"games"`
	AB       int    `json:"ab"`
	H        int    `json:"h"`
	Doubles  int    `json:"doubles"`
	Triples  int    `json:"triples"`
	HR       int    `json:"hr"`
	BB       int    `json:"bb"`
	HBP      int    `json:"hbp"`
	SF       int    `json:"sf"`
	SH       int    `json:"sh"`
	K        int    `json:"so"`
	R        int    `json:"r"`
	RBI      int    `json:"rbi"`
	SB       int    `json:"sb"`
	CS       int    `json:"cs"`
	Singles  int    `json:"singles"`
	PA       int    `json:"pa"`
	TB       int    `json:"tb"`
	AVG      float64 `json:"avg"`
	OBP      float64 `json:"obp"`
	SLG      float64 `json:"slg"`
	OPS      float64 `json:"ops"`
}

// GameStoryline is a generated narrative for one game. These live in the
// storyline cache only and are never written back to the core tables.
type GameStoryline struct {
	ID          string    `json:"id"`
	GameID      string    `json:"game_id"`
	Headline    string    `json:"headline"`
	Recap       string    `json:"recap"`
	KeyPlayers  []string  `json:"key_players"`
	GameSummary string    `json:"game_summary"`
	GeneratedAt time.Time `json:"generated_at"`
}
