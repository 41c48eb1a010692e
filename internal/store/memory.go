package store

import (
	"context"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MemoryStore keeps everything in process memory. It is the default
// backend and the one the test suite runs against. A single mutex guards
// all maps; reads take the read lock.
type MemoryStore struct {
	mu sync.RWMutex

	players      map[int]*Player
	playerByKey  map[string]int
	games        map[int]*Game
	appearances  map[int]*PlateAppearance
	paByGame     map[int][]int
	paByPlayer   map[int][]int
	totals       map[int]*HitterTotal
	totalByKey   map[string]int

	nextPlayerID int
	nextGameID   int
	nextPAID     int
	nextTotalID  int
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		players:      make(map[int]*Player),
		playerByKey:  make(map[string]int),
		games:        make(map[int]*Game),
		appearances:  make(map[int]*PlateAppearance),
		paByGame:     make(map[int][]int),
		paByPlayer:   make(map[int][]int),
		totals:       make(map[int]*HitterTotal),
		totalByKey:   make(map[string]int),
		nextPlayerID: 1,
		nextGameID:   1,
		nextPAID:     1,
		nextTotalID:  1,
	}
}

func playerKey(name, team string) string {
	return strings.ToLower(strings.TrimSpace(name)) + "|" + strings.ToLower(strings.TrimSpace(team))
}

func totalKey(playerID int, league, season string) string {
	return strconv.Itoa(playerID) + "|" + league + "|" + season
}

func (s *MemoryStore) CreatePlayer(_ context.Context, p *Player) (*Player, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *p
	cp.ID = s.nextPlayerID
	s.nextPlayerID++
	cp.CreatedAt = time.Now().UTC()
	s.players[cp.ID] = &cp
	s.playerByKey[playerKey(cp.Name, cp.Team)] = cp.ID
	out := cp
	return &out, nil
}

func (s *MemoryStore) GetPlayer(_ context.Context, id int) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.players[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *MemoryStore) GetPlayerByNameTeam(_ context.Context, name, team string) (*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.playerByKey[playerKey(name, team)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.players[id]
	return &cp, nil
}

func (s *MemoryStore) GetAllPlayers(_ context.Context) ([]*Player, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Player, 0, len(s.players))
	for _, p := range s.players {
		cp := *p
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) CreateGame(_ context.Context, g *Game) (*Game, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *g
	cp.ID = s.nextGameID
	s.nextGameID++
	cp.CreatedAt = time.Now().UTC()
	s.games[cp.ID] = &cp
	out := cp
	return &out, nil
}

func (s *MemoryStore) GetGame(_ context.Context, id int) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	g, ok := s.games[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *g
	return &cp, nil
}

func (s *MemoryStore) GetGames(_ context.Context, f GameFilter) ([]*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Game, 0, len(s.games))
	for _, g := range s.games {
		if f.League != "" && g.League != f.League {
			continue
		}
		if f.Season != "" && g.Season != f.Season {
			continue
		}
		if f.Team != "" && !teamEquals(g.HomeTeam, f.Team) && !teamEquals(g.AwayTeam, f.Team) {
			continue
		}
		cp := *g
		out = append(out, &cp)
	}
	// Newest first, id as the stable tiebreak.
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.After(out[j].Date)
		}
		return out[i].ID > out[j].ID
	})
	if f.Offset > 0 {
		if f.Offset >= len(out) {
			return []*Game{}, nil
		}
		out = out[f.Offset:]
	}
	if f.Limit > 0 && f.Limit < len(out) {
		out = out[:f.Limit]
	}
	return out, nil
}

// teamEquals compares team labels case-insensitively, ignoring
// surrounding whitespace.
func teamEquals(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}

func sameTeamPair(g *Game, team1, team2 string) bool {
	return (teamEquals(g.HomeTeam, team1) && teamEquals(g.AwayTeam, team2)) ||
		(teamEquals(g.HomeTeam, team2) && teamEquals(g.AwayTeam, team1))
}

func (s *MemoryStore) FindDuplicateGame(_ context.Context, date time.Time, league, season, team1, team2 string) (*Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, g := range s.games {
		if g.League != league || g.Season != season {
			continue
		}
		y1, m1, d1 := g.Date.Date()
		y2, m2, d2 := date.Date()
		if y1 != y2 || m1 != m2 || d1 != d2 {
			continue
		}
		if sameTeamPair(g, team1, team2) {
			cp := *g
			return &cp, nil
		}
	}
	return nil, nil
}

func (s *MemoryStore) CreatePlateAppearance(_ context.Context, pa *PlateAppearance) (*PlateAppearance, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *pa
	cp.ID = s.nextPAID
	s.nextPAID++
	s.appearances[cp.ID] = &cp
	s.paByGame[cp.GameID] = append(s.paByGame[cp.GameID], cp.ID)
	s.paByPlayer[cp.PlayerID] = append(s.paByPlayer[cp.PlayerID], cp.ID)
	out := cp
	return &out, nil
}

func (s *MemoryStore) GetPlateAppearancesByGame(_ context.Context, gameID int) ([]*PlateAppearance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectPAs(s.paByGame[gameID]), nil
}

func (s *MemoryStore) GetPlateAppearancesByPlayer(_ context.Context, playerID int) ([]*PlateAppearance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.collectPAs(s.paByPlayer[playerID]), nil
}

func (s *MemoryStore) GetAllPlateAppearances(_ context.Context) ([]*PlateAppearance, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ids := make([]int, 0, len(s.appearances))
	for id := range s.appearances {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return s.collectPAs(ids), nil
}

// collectPAs assumes the read lock is held.
func (s *MemoryStore) collectPAs(ids []int) []*PlateAppearance {
	out := make([]*PlateAppearance, 0, len(ids))
	for _, id := range ids {
		if pa, ok := s.appearances[id]; ok {
			cp := *pa
			out = append(out, &cp)
		}
	}
	return out
}

func (s *MemoryStore) ReplaceHitterTotals(_ context.Context, league, season string, totals []*HitterTotal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, t := range s.totals {
		if t.League == league && t.Season == season {
			delete(s.totals, id)
			delete(s.totalByKey, totalKey(t.PlayerID, t.League, t.Season))
		}
	}
	for _, t := range totals {
		cp := *t
		cp.ID = s.nextTotalID
		s.nextTotalID++
		cp.League = league
		cp.Season = season
		s.totals[cp.ID] = &cp
		s.totalByKey[totalKey(cp.PlayerID, league, season)] = cp.ID
	}
	return nil
}

func (s *MemoryStore) GetHitterTotal(_ context.Context, playerID int, league, season string) (*HitterTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.totalByKey[totalKey(playerID, league, season)]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *s.totals[id]
	return &cp, nil
}

func (s *MemoryStore) GetHitterTotals(_ context.Context, league, season string) ([]*HitterTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*HitterTotal, 0)
	for _, t := range s.totals {
		if t.League == league && t.Season == season {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetHitterTotalsByPlayer(_ context.Context, playerID int) ([]*HitterTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*HitterTotal, 0)
	for _, t := range s.totals {
		if t.PlayerID == playerID {
			cp := *t
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) GetAllHitterTotals(_ context.Context) ([]*HitterTotal, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*HitterTotal, 0, len(s.totals))
	for _, t := range s.totals {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *MemoryStore) UniqueTeams(_ context.Context, league string) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	seen := make(map[string]struct{})
	teams := make([]string, 0)
	for _, pa := range s.appearances {
		if league != "" {
			g, ok := s.games[pa.GameID]
			if !ok || g.League != league {
				continue
			}
		}
		name := strings.TrimSpace(pa.Team)
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		teams = append(teams, name)
	}
	sort.Strings(teams)
	return teams, nil
}

func (s *MemoryStore) Close() error { return nil }
