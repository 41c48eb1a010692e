package store

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"time"

	_ "github.com/lib/pq" // PostgreSQL driver
)

// PostgresStore is the durable Store backend. Schema is applied at
// startup through the same versioned-migrations idiom as the rest of
// the stack, with the DDL embedded here rather than read off disk.
type PostgresStore struct {
	conn *sql.DB
	dsn  string
}

var migrations = []struct {
	version string
	ddl     string
}{
	{"001_create_players", `
		CREATE TABLE IF NOT EXISTS players (
			id SERIAL PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			team VARCHAR(255) NOT NULL,
			league VARCHAR(100) NOT NULL DEFAULT '',
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE UNIQUE INDEX IF NOT EXISTS idx_players_name_team
			ON players (LOWER(TRIM(name)), LOWER(TRIM(team)));
	`},
	{"002_create_games", `
		CREATE TABLE IF NOT EXISTS games (
			id SERIAL PRIMARY KEY,
			league VARCHAR(100) NOT NULL,
			season VARCHAR(50) NOT NULL,
			game_date DATE NOT NULL,
			home_team VARCHAR(255) NOT NULL,
			away_team VARCHAR(255) NOT NULL,
			home_score INTEGER NOT NULL DEFAULT 0,
			away_score INTEGER NOT NULL DEFAULT 0,
			winner VARCHAR(255),
			created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		);
		CREATE INDEX IF NOT EXISTS idx_games_league_season ON games (league, season);
		CREATE INDEX IF NOT EXISTS idx_games_date ON games (game_date);
	`},
	{"003_create_plate_appearances", `
		CREATE TABLE IF NOT EXISTS plate_appearances (
			id SERIAL PRIMARY KEY,
			game_id INTEGER NOT NULL REFERENCES games(id) ON DELETE CASCADE,
			player_id INTEGER NOT NULL REFERENCES players(id) ON DELETE CASCADE,
			team VARCHAR(255) NOT NULL,
			ab INTEGER NOT NULL DEFAULT 0,
			h INTEGER NOT NULL DEFAULT 0,
			doubles INTEGER NOT NULL DEFAULT 0,
			triples INTEGER NOT NULL DEFAULT 0,
			hr INTEGER NOT NULL DEFAULT 0,
			bb INTEGER NOT NULL DEFAULT 0,
			hbp INTEGER NOT NULL DEFAULT 0,
			sf INTEGER NOT NULL DEFAULT 0,
			sh INTEGER NOT NULL DEFAULT 0,
			so INTEGER NOT NULL DEFAULT 0,
			r INTEGER NOT NULL DEFAULT 0,
			rbi INTEGER NOT NULL DEFAULT 0,
			sb INTEGER NOT NULL DEFAULT 0,
			cs INTEGER NOT NULL DEFAULT 0,
			raw_json TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_pa_game ON plate_appearances (game_id);
		CREATE INDEX IF NOT EXISTS idx_pa_player ON plate_appearances (player_id);
	`},
	{"004_create_hitter_totals", `
		CREATE TABLE IF NOT EXISTS hitter_totals (
			id SERIAL PRIMARY KEY,
			player_id INTEGER NOT NULL REFERENCES players(id) ON DELETE CASCADE,
			league VARCHAR(100) NOT NULL,
			season VARCHAR(50) NOT NULL,
			games INTEGER NOT NULL DEFAULT 0,
			ab INTEGER NOT NULL DEFAULT 0,
			h INTEGER NOT NULL DEFAULT 0,
			doubles INTEGER NOT NULL DEFAULT 0,
			triples INTEGER NOT NULL DEFAULT 0,
			hr INTEGER NOT NULL DEFAULT 0,
			bb INTEGER NOT NULL DEFAULT 0,
			hbp INTEGER NOT NULL DEFAULT 0,
			sf INTEGER NOT NULL DEFAULT 0,
			sh INTEGER NOT NULL DEFAULT 0,
			so INTEGER NOT NULL DEFAULT 0,
			r INTEGER NOT NULL DEFAULT 0,
			rbi INTEGER NOT NULL DEFAULT 0,
			sb INTEGER NOT NULL DEFAULT 0,
			cs INTEGER NOT NULL DEFAULT 0,
			singles INTEGER NOT NULL DEFAULT 0,
			pa INTEGER NOT NULL DEFAULT 0,
			tb INTEGER NOT NULL DEFAULT 0,
			avg DOUBLE PRECISION NOT NULL DEFAULT 0,
			obp DOUBLE PRECISION NOT NULL DEFAULT 0,
			slg DOUBLE PRECISION NOT NULL DEFAULT 0,
			ops DOUBLE PRECISION NOT NULL DEFAULT 0,
			UNIQUE (player_id, league, season)
		);
		CREATE INDEX IF NOT EXISTS idx_totals_league_season ON hitter_totals (league, season);
	`},
}

// NewPostgresStore opens the connection pool and applies migrations.
func NewPostgresStore(dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)
	db.SetConnMaxIdleTime(10 * time.Minute)

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	s := &PostgresStore{conn: db, dsn: dsn}
	if err := s.runMigrations(); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *PostgresStore) runMigrations() error {
	log.Println("Running database migrations...")

	_, err := s.conn.Exec(`
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create migrations table: %w", err)
	}

	for _, m := range migrations {
		var exists bool
		if err := s.conn.QueryRow("SELECT EXISTS(SELECT 1 FROM schema_migrations WHERE version = $1)", m.version).Scan(&exists); err != nil {
			return err
		}
		if exists {
			continue
		}

		tx, err := s.conn.Begin()
		if err != nil {
			return err
		}
		if _, err := tx.Exec(m.ddl); err != nil {
			tx.Rollback()
			return fmt.Errorf("failed to run migration %s: %w", m.version, err)
		}
		if _, err := tx.Exec("INSERT INTO schema_migrations (version) VALUES ($1)", m.version); err != nil {
			tx.Rollback()
			return err
		}
		if err := tx.Commit(); err != nil {
			return err
		}
		log.Printf("  ✓ Applied %s", m.version)
	}

	log.Println("✓ All migrations completed successfully")
	return nil
}

func (s *PostgresStore) Close() error {
	if s.conn != nil {
		return s.conn.Close()
	}
	return nil
}

// HealthCheck pings the database with a short timeout.
func (s *PostgresStore) HealthCheck() error {
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	return s.conn.PingContext(ctx)
}

func (s *PostgresStore) CreatePlayer(ctx context.Context, p *Player) (*Player, error) {
	cp := *p
	err := s.conn.QueryRowContext(ctx, `
		INSERT INTO players (name, team, league)
		VALUES ($1, $2, $3)
		RETURNING id, created_at
	`, p.Name, p.Team, p.League).Scan(&cp.ID, &cp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create player: %w", err)
	}
	return &cp, nil
}

func (s *PostgresStore) GetPlayer(ctx context.Context, id int) (*Player, error) {
	p := &Player{}
	err := s.conn.QueryRowContext(ctx, `
		SELECT id, name, team, league, created_at FROM players WHERE id = $1
	`, id).Scan(&p.ID, &p.Name, &p.Team, &p.League, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) GetPlayerByNameTeam(ctx context.Context, name, team string) (*Player, error) {
	p := &Player{}
	err := s.conn.QueryRowContext(ctx, `
		SELECT id, name, team, league, created_at FROM players
		WHERE LOWER(TRIM(name)) = LOWER(TRIM($1)) AND LOWER(TRIM(team)) = LOWER(TRIM($2))
	`, name, team).Scan(&p.ID, &p.Name, &p.Team, &p.League, &p.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get player: %w", err)
	}
	return p, nil
}

func (s *PostgresStore) GetAllPlayers(ctx context.Context) ([]*Player, error) {
	rows, err := s.conn.QueryContext(ctx, `
		SELECT id, name, team, league, created_at FROM players ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query players: %w", err)
	}
	defer rows.Close()

	var out []*Player
	for rows.Next() {
		p := &Player{}
		if err := rows.Scan(&p.ID, &p.Name, &p.Team, &p.League, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan player: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (s *PostgresStore) CreateGame(ctx context.Context, g *Game) (*Game, error) {
	cp := *g
	err := s.conn.QueryRowContext(ctx, `
		INSERT INTO games (league, season, game_date, home_team, away_team, home_score, away_score, winner)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at
	`, g.League, g.Season, g.Date, g.HomeTeam, g.AwayTeam, g.HomeScore, g.AwayScore, g.Winner).Scan(&cp.ID, &cp.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to create game: %w", err)
	}
	return &cp, nil
}

func scanGame(scan func(dest ...interface{}) error) (*Game, error) {
	g := &Game{}
	var winner sql.NullString
	err := scan(&g.ID, &g.League, &g.Season, &g.Date, &g.HomeTeam, &g.AwayTeam, &g.HomeScore, &g.AwayScore, &winner, &g.CreatedAt)
	if err != nil {
		return nil, err
	}
	if winner.Valid {
		w := winner.String
		g.Winner = &w
	}
	return g, nil
}

const gameColumns = `id, league, season, game_date, home_team, away_team, home_score, away_score, winner, created_at`

func (s *PostgresStore) GetGame(ctx context.Context, id int) (*Game, error) {
	row := s.conn.QueryRowContext(ctx, `SELECT `+gameColumns+` FROM games WHERE id = $1`, id)
	g, err := scanGame(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return g, nil
}

func (s *PostgresStore) GetGames(ctx context.Context, f GameFilter) ([]*Game, error) {
	query := `SELECT ` + gameColumns + ` FROM games WHERE 1=1`
	args := []interface{}{}
	n := 0
	add := func(clause string, v interface{}) {
		n++
		query += fmt.Sprintf(" AND %s = $%d", clause, n)
		args = append(args, v)
	}
	if f.League != "" {
		add("league", f.League)
	}
	if f.Season != "" {
		add("season", f.Season)
	}
	if f.Team != "" {
		n++
		query += fmt.Sprintf(" AND (LOWER(TRIM(home_team)) = LOWER(TRIM($%d)) OR LOWER(TRIM(away_team)) = LOWER(TRIM($%d)))", n, n)
		args = append(args, f.Team)
	}
	query += " ORDER BY game_date DESC, id DESC"
	if f.Limit > 0 {
		n++
		query += fmt.Sprintf(" LIMIT $%d", n)
		args = append(args, f.Limit)
	}
	if f.Offset > 0 {
		n++
		query += fmt.Sprintf(" OFFSET $%d", n)
		args = append(args, f.Offset)
	}

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query games: %w", err)
	}
	defer rows.Close()

	var out []*Game
	for rows.Next() {
		g, err := scanGame(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan game: %w", err)
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

func (s *PostgresStore) FindDuplicateGame(ctx context.Context, date time.Time, league, season, team1, team2 string) (*Game, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT `+gameColumns+` FROM games
		WHERE league = $1 AND season = $2 AND game_date = $3
		  AND (
			(LOWER(TRIM(home_team)) = LOWER(TRIM($4)) AND LOWER(TRIM(away_team)) = LOWER(TRIM($5)))
			OR
			(LOWER(TRIM(home_team)) = LOWER(TRIM($5)) AND LOWER(TRIM(away_team)) = LOWER(TRIM($4)))
		  )
		LIMIT 1
	`, league, season, date, team1, team2)
	g, err := scanGame(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to check duplicate game: %w", err)
	}
	return g, nil
}

const paColumns = `id, game_id, player_id, team, ab, h, doubles, triples, hr, bb, hbp, sf, sh, so, r, rbi, sb, cs, raw_json`

func scanPA(scan func(dest ...interface{}) error) (*PlateAppearance, error) {
	pa := &PlateAppearance{}
	err := scan(&pa.ID, &pa.GameID, &pa.PlayerID, &pa.Team,
		&pa.AB, &pa.H, &pa.Doubles, &pa.Triples, &pa.HR, &pa.BB, &pa.HBP,
		&pa.SF, &pa.SH, &pa.K, &pa.R, &pa.RBI, &pa.SB, &pa.CS, &pa.RawJSON)
	if err != nil {
		return nil, err
	}
	return pa, nil
}

func (s *PostgresStore) CreatePlateAppearance(ctx context.Context, pa *PlateAppearance) (*PlateAppearance, error) {
	cp := *pa
	err := s.conn.QueryRowContext(ctx, `
		INSERT INTO plate_appearances
			(game_id, player_id, team, ab, h, doubles, triples, hr, bb, hbp, sf, sh, so, r, rbi, sb, cs, raw_json)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING id
	`, pa.GameID, pa.PlayerID, pa.Team, pa.AB, pa.H, pa.Doubles, pa.Triples, pa.HR,
		pa.BB, pa.HBP, pa.SF, pa.SH, pa.K, pa.R, pa.RBI, pa.SB, pa.CS, pa.RawJSON).Scan(&cp.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to create plate appearance: %w", err)
	}
	return &cp, nil
}

func (s *PostgresStore) queryPAs(ctx context.Context, query string, args ...interface{}) ([]*PlateAppearance, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query plate appearances: %w", err)
	}
	defer rows.Close()

	var out []*PlateAppearance
	for rows.Next() {
		pa, err := scanPA(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plate appearance: %w", err)
		}
		out = append(out, pa)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetPlateAppearancesByGame(ctx context.Context, gameID int) ([]*PlateAppearance, error) {
	return s.queryPAs(ctx, `SELECT `+paColumns+` FROM plate_appearances WHERE game_id = $1 ORDER BY id`, gameID)
}

func (s *PostgresStore) GetPlateAppearancesByPlayer(ctx context.Context, playerID int) ([]*PlateAppearance, error) {
	return s.queryPAs(ctx, `SELECT `+paColumns+` FROM plate_appearances WHERE player_id = $1 ORDER BY id`, playerID)
}

func (s *PostgresStore) GetAllPlateAppearances(ctx context.Context) ([]*PlateAppearance, error) {
	return s.queryPAs(ctx, `SELECT `+paColumns+` FROM plate_appearances ORDER BY id`)
}

const totalColumns = `id, player_id, league, season, games, ab, h, doubles, triples, hr, bb, hbp, sf, sh, so, r, rbi, sb, cs, singles, pa, tb, avg, obp, slg, ops`

func scanTotal(scan func(dest ...interface{}) error) (*HitterTotal, error) {
	t := &HitterTotal{}
	err := scan(&t.ID, &t.PlayerID, &t.League, &t.Season, &t.Games,
		&t.AB, &t.H, &t.Doubles, &t.Triples, &t.HR, &t.BB, &t.HBP, &t.SF, &t.SH,
		&t.K, &t.R, &t.RBI, &t.SB, &t.CS, &t.Singles, &t.PA, &t.TB,
		&t.AVG, &t.OBP, &t.SLG, &t.OPS)
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *PostgresStore) ReplaceHitterTotals(ctx context.Context, league, season string, totals []*HitterTotal) error {
	tx, err := s.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM hitter_totals WHERE league = $1 AND season = $2`, league, season); err != nil {
		return fmt.Errorf("failed to clear hitter totals: %w", err)
	}
	for _, t := range totals {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO hitter_totals
				(player_id, league, season, games, ab, h, doubles, triples, hr, bb, hbp, sf, sh, so, r, rbi, sb, cs, singles, pa, tb, avg, obp, slg, ops)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22, $23, $24, $25)
		`, t.PlayerID, league, season, t.Games, t.AB, t.H, t.Doubles, t.Triples, t.HR,
			t.BB, t.HBP, t.SF, t.SH, t.K, t.R, t.RBI, t.SB, t.CS,
			t.Singles, t.PA, t.TB, t.AVG, t.OBP, t.SLG, t.OPS)
		if err != nil {
			return fmt.Errorf("failed to insert hitter total: %w", err)
		}
	}
	return tx.Commit()
}

func (s *PostgresStore) GetHitterTotal(ctx context.Context, playerID int, league, season string) (*HitterTotal, error) {
	row := s.conn.QueryRowContext(ctx, `
		SELECT `+totalColumns+` FROM hitter_totals
		WHERE player_id = $1 AND league = $2 AND season = $3
	`, playerID, league, season)
	t, err := scanTotal(row.Scan)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get hitter total: %w", err)
	}
	return t, nil
}

func (s *PostgresStore) queryTotals(ctx context.Context, query string, args ...interface{}) ([]*HitterTotal, error) {
	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query hitter totals: %w", err)
	}
	defer rows.Close()

	var out []*HitterTotal
	for rows.Next() {
		t, err := scanTotal(rows.Scan)
		if err != nil {
			return nil, fmt.Errorf("failed to scan hitter total: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (s *PostgresStore) GetHitterTotals(ctx context.Context, league, season string) ([]*HitterTotal, error) {
	return s.queryTotals(ctx, `SELECT `+totalColumns+` FROM hitter_totals WHERE league = $1 AND season = $2 ORDER BY id`, league, season)
}

func (s *PostgresStore) GetHitterTotalsByPlayer(ctx context.Context, playerID int) ([]*HitterTotal, error) {
	return s.queryTotals(ctx, `SELECT `+totalColumns+` FROM hitter_totals WHERE player_id = $1 ORDER BY id`, playerID)
}

func (s *PostgresStore) GetAllHitterTotals(ctx context.Context) ([]*HitterTotal, error) {
	return s.queryTotals(ctx, `SELECT `+totalColumns+` FROM hitter_totals ORDER BY id`)
}

func (s *PostgresStore) UniqueTeams(ctx context.Context, league string) ([]string, error) {
	query := `
		SELECT DISTINCT TRIM(pa.team) FROM plate_appearances pa
		JOIN games g ON g.id = pa.game_id
		WHERE TRIM(pa.team) <> ''
	`
	args := []interface{}{}
	if league != "" {
		query += ` AND g.league = $1`
		args = append(args, league)
	}
	query += ` ORDER BY 1`

	rows, err := s.conn.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query teams: %w", err)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, fmt.Errorf("failed to scan team: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
