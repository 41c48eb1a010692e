package hittrax

import (
	"encoding/csv"
	"log"
	"regexp"
	"strconv"
	"strings"
)

var numberPattern = regexp.MustCompile(`-?\d+\.?\d*`)

// IsSectioned sniffs for the sectioned export. The marker is the exact
// header text HitTrax writes.
func IsSectioned(text string) bool {
	return strings.Contains(text, "Batting Order")
}

// DetectTeams parses the file without any team hints, choosing the
// sectioned or flat parser by format sniff.
func DetectTeams(text string) (*TeamDetection, error) {
	if IsSectioned(text) {
		return parseSectioned(text)
	}
	return parseFlat(text)
}

func splitLines(text string) []string {
	lines := strings.Split(text, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	if n := len(lines); n > 0 && lines[n-1] == "" {
		lines = lines[:n-1]
	}
	return lines
}

// cleanField trims space then shell quoting the way the exports quote.
func cleanField(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, `"`)
	s = strings.Trim(s, `'`)
	return strings.TrimSpace(s)
}

func containsBattingOrder(line string) bool {
	return strings.Contains(strings.ToLower(line), "batting order")
}

func hasDigit(s string) bool {
	return strings.ContainsAny(s, "0123456789")
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// safeInt coerces one CSV field to an int and never fails: blanks and
// "nan" yield the default, numeric strings are truncated toward zero,
// and for anything else the first embedded number wins.
func safeInt(value string, def int) int {
	s := cleanField(value)
	if s == "" || strings.ToLower(s) == "nan" {
		return def
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int(f)
	}
	if m := numberPattern.FindString(s); m != "" {
		if f, err := strconv.ParseFloat(m, 64); err == nil {
			return int(f)
		}
	}
	return def
}

func decideWinner(team1 string, runs1 int, team2 string, runs2 int) *string {
	switch {
	case runs1 > runs2:
		return &team1
	case runs2 > runs1:
		return &team2
	default:
		return nil
	}
}

func parseSectioned(text string) (*TeamDetection, error) {
	lines := splitLines(text)

	var teams []string
	var sections []int
	for i, line := range lines {
		if !containsBattingOrder(line) {
			continue
		}
		name := cleanField(strings.SplitN(line, ",", 2)[0])
		if name == "" || strings.ToLower(name) == "batting order" {
			continue
		}
		teams = append(teams, name)
		sections = append(sections, i)
	}

	// Header rows without a team name in the first column: fall back to
	// a heuristic scan over the top of the file for name-like lines
	// followed by stat-like lines.
	if len(teams) < 2 {
		var potential []string
		var potentialAt []int
		limit := len(lines)
		if limit > 50 {
			limit = 50
		}
		for i := 0; i < limit; i++ {
			line := lines[i]
			if strings.TrimSpace(line) == "" || !strings.Contains(line, ",") {
				continue
			}
			first := cleanField(strings.SplitN(line, ",", 2)[0])
			if first == "" || len(first) <= 2 || len(first) >= 50 {
				continue
			}
			if isAllDigits(strings.ReplaceAll(first, " ", "")) {
				continue
			}
			switch strings.ToLower(first) {
			case "player", "name", "batting order", "team":
				continue
			}
			if i+1 >= len(lines) {
				continue
			}
			next := lines[i+1]
			if !strings.Contains(next, ",") || !hasDigit(next) {
				continue
			}
			dup := false
			for _, t := range teams {
				if t == first {
					dup = true
					break
				}
			}
			if dup {
				continue
			}
			potential = append(potential, first)
			potentialAt = append(potentialAt, i)
		}

		if len(potential) >= 2 {
			teams = potential[:2]
			sections = potentialAt[:2]
		} else if len(potential) == 1 && len(teams) == 1 {
			teams = append(teams, potential[0])
			sections = append(sections, potentialAt[0])
		}
	}

	if len(teams) < 2 {
		sampleEnd := len(lines)
		if sampleEnd > 10 {
			sampleEnd = 10
		}
		return nil, parseErrorf(
			"CSV must contain exactly 2 teams in HitTrax format. Found %d team(s): %v\n"+
				"Please ensure your CSV has two team header rows containing 'Batting Order'.\n"+
				"First 10 lines of CSV:\n%s",
			len(teams), teams, strings.Join(lines[:sampleEnd], "\n"))
	}
	if len(teams) > 2 {
		log.Printf("[hittrax] found %d teams, using first 2: %v", len(teams), teams[:2])
		teams = teams[:2]
		sections = sections[:2]
	}

	team1 := parseSection(lines[sections[0]+1:sections[1]], teams[0])
	team2 := parseSection(lines[sections[1]+1:], teams[1])

	if len(team1) == 0 || len(team2) == 0 {
		return nil, parseErrorf(
			"Failed to parse player data. Team 1 (%s): %d players, Team 2 (%s): %d players. "+
				"Make sure your CSV has player rows with stats after each team header.",
			teams[0], len(team1), teams[1], len(team2))
	}

	runs1, runs2 := sumRuns(team1), sumRuns(team2)
	return &TeamDetection{
		Team1Name:    teams[0],
		Team2Name:    teams[1],
		Team1Players: team1,
		Team2Players: team2,
		Team1Runs:    runs1,
		Team2Runs:    runs2,
		Winner:       decideWinner(teams[0], runs1, teams[1], runs2),
	}, nil
}

func sumRuns(players []PlayerLine) int {
	total := 0
	for _, p := range players {
		total += p.R
	}
	return total
}

// parseSection reads one team's roster rows. Sectioned column layout:
// 0 name, 1 order, 2 AB, 3 R, 4 H, 5 EBH, 6 2B, 7 3B, 8 HR, 9 RBI,
// 10 pitches, 11 SO, 12 DP, 13 BB.
func parseSection(lines []string, teamName string) []PlayerLine {
	var players []PlayerLine

	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if containsBattingOrder(line) {
			continue
		}
		lower := strings.ToLower(line)
		if strings.Contains(lower, "player") || strings.Contains(lower, "name") ||
			strings.Contains(lower, "ab") || strings.Contains(lower, "avg") ||
			strings.Contains(lower, "slg") {
			if !hasDigit(line) {
				continue
			}
		}

		fields := strings.Split(line, ",")
		for i, f := range fields {
			fields[i] = cleanField(f)
		}
		if len(fields) < 10 {
			continue
		}
		switch strings.ToLower(fields[0]) {
		case "", "player", "name", "team", "batting order":
			continue
		}

		at := func(i int) int {
			if i < len(fields) {
				return safeInt(fields[i], 0)
			}
			return 0
		}
		p := PlayerLine{
			Name:    fields[0],
			Team:    teamName,
			AB:      at(2),
			R:       at(3),
			H:       at(4),
			Doubles: at(6),
			Triples: at(7),
			HR:      at(8),
			RBI:     at(9),
			K:       at(11),
			BB:      at(13),
		}
		p.Raw = rawFromLine(p)

		if p.Name != "" && p.Name != "Unknown" && (p.AB > 0 || p.H > 0 || p.R > 0) {
			players = append(players, p)
		}
	}
	return players
}

func rawFromLine(p PlayerLine) map[string]interface{} {
	return map[string]interface{}{
		"player_name": p.Name,
		"team":        p.Team,
		"ab":          p.AB,
		"r":           p.R,
		"h":           p.H,
		"doubles":     p.Doubles,
		"triples":     p.Triples,
		"hr":          p.HR,
		"rbi":         p.RBI,
		"so":          p.K,
		"bb":          p.BB,
		"hbp":         p.HBP,
		"sf":          p.SF,
		"sh":          p.SH,
		"sb":          p.SB,
		"cs":          p.CS,
	}
}

// flatTable is a flat CSV after header normalization.
type flatTable struct {
	columns map[string]int
	rows    [][]string
}

func readFlat(text string) (*flatTable, error) {
	r := csv.NewReader(strings.NewReader(text))
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, parseErrorf("failed to read CSV: %v", err)
	}
	if len(records) == 0 {
		return nil, parseErrorf("CSV is empty")
	}

	columns := make(map[string]int)
	for i, col := range records[0] {
		key := NormalizeColumn(col)
		if _, seen := columns[key]; !seen {
			columns[key] = i
		}
	}
	return &flatTable{columns: columns, rows: records[1:]}, nil
}

func (t *flatTable) field(row []string, col string) (string, bool) {
	i, ok := t.columns[col]
	if !ok || i >= len(row) {
		return "", false
	}
	return row[i], true
}

func (t *flatTable) playerLine(row []string, team string) PlayerLine {
	name := "Unknown"
	if v, ok := t.field(row, "player"); ok {
		name = strings.TrimSpace(v)
	}
	get := func(col string) int {
		v, ok := t.field(row, col)
		if !ok {
			return 0
		}
		return safeInt(v, 0)
	}
	raw := make(map[string]interface{}, len(t.columns))
	for col, i := range t.columns {
		if i < len(row) {
			raw[col] = row[i]
		}
	}
	return PlayerLine{
		Name:    name,
		Team:    team,
		AB:      get("ab"),
		H:       get("h"),
		Doubles: get("doubles"),
		Triples: get("triples"),
		HR:      get("hr"),
		RBI:     get("rbi"),
		BB:      get("bb"),
		K:       get("so"),
		R:       get("r"),
		HBP:     get("hbp"),
		SF:      get("sf"),
		SH:      get("sh"),
		SB:      get("sb"),
		CS:      get("cs"),
		Raw:     raw,
	}
}

func (t *flatTable) uniqueTeams() []string {
	var out []string
	seen := make(map[string]struct{})
	for _, row := range t.rows {
		v, ok := t.field(row, "team")
		if !ok {
			continue
		}
		name := strings.TrimSpace(v)
		if name == "" || strings.ToLower(name) == "nan" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		out = append(out, name)
	}
	return out
}

func (t *flatTable) teamRows(team string) []PlayerLine {
	var out []PlayerLine
	for _, row := range t.rows {
		v, ok := t.field(row, "team")
		if !ok {
			continue
		}
		if strings.TrimSpace(v) == team {
			out = append(out, t.playerLine(row, team))
		}
	}
	return out
}

func parseFlat(text string) (*TeamDetection, error) {
	table, err := readFlat(text)
	if err != nil {
		return nil, err
	}
	if _, ok := table.columns["team"]; !ok {
		return nil, parseErrorf(
			"CSV must contain a 'Team' column for automatic team detection, " +
				"or be in HitTrax format with team names as header rows containing 'Batting Order'.")
	}

	teams := table.uniqueTeams()
	if len(teams) < 2 {
		return nil, parseErrorf(
			"CSV must contain exactly 2 teams. Found %d team(s): %v. "+
				"Please ensure the CSV has a 'Team' column with exactly 2 different team names.",
			len(teams), teams)
	}
	if len(teams) > 2 {
		return nil, parseErrorf(
			"CSV must contain exactly 2 teams. Found %d teams: %v. "+
				"Please split the CSV or ensure only 2 teams are present.",
			len(teams), teams)
	}

	team1 := table.teamRows(teams[0])
	team2 := table.teamRows(teams[1])
	runs1, runs2 := sumRuns(team1), sumRuns(team2)

	return &TeamDetection{
		Team1Name:    teams[0],
		Team2Name:    teams[1],
		Team1Players: team1,
		Team2Players: team2,
		Team1Runs:    runs1,
		Team2Runs:    runs2,
		Winner:       decideWinner(teams[0], runs1, teams[1], runs2),
	}, nil
}

// ParseWithTeams handles uploads where the caller named both sides. The
// home side takes every row when the Team column is missing or does not
// mention the home team, which covers exports with no team labels at all.
func ParseWithTeams(text, homeTeam, awayTeam string) (*TeamDetection, error) {
	table, err := readFlat(text)
	if err != nil {
		return nil, err
	}

	var team1, team2 []PlayerLine
	if _, ok := table.columns["team"]; ok {
		uniques := table.uniqueTeams()
		if contains(uniques, homeTeam) {
			team1 = table.teamRows(homeTeam)
		} else {
			team1 = table.allRows(homeTeam)
		}
		if contains(uniques, awayTeam) {
			team2 = table.teamRows(awayTeam)
		}
	} else {
		team1 = table.allRows(homeTeam)
	}

	runs1, runs2 := sumRuns(team1), sumRuns(team2)
	return &TeamDetection{
		Team1Name:    homeTeam,
		Team2Name:    awayTeam,
		Team1Players: team1,
		Team2Players: team2,
		Team1Runs:    runs1,
		Team2Runs:    runs2,
		Winner:       decideWinner(homeTeam, runs1, awayTeam, runs2),
	}, nil
}

func (t *flatTable) allRows(team string) []PlayerLine {
	out := make([]PlayerLine, 0, len(t.rows))
	for _, row := range t.rows {
		out = append(out, t.playerLine(row, team))
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
