package hittrax

import "strings"

// columnSynonyms folds common header spellings onto canonical stat keys.
// Unrecognized headers pass through lowercased.
var columnSynonyms = map[string]string{
	"player": "player", "name": "player", "player name": "player",
	"player_name": "player", "batter": "player", "hitter": "player",

	"team": "team", "team name": "team", "team_name": "team",

	"ab": "ab", "at bats": "ab", "at-bats": "ab", "at_bats": "ab",

	"h": "h", "hits": "h", "hit": "h",

	"2b": "doubles", "double": "doubles", "doubles": "doubles", "2 b": "doubles",

	"3b": "triples", "triple": "triples", "triples": "triples", "3 b": "triples",

	"hr": "hr", "home runs": "hr", "homeruns": "hr", "home_run": "hr", "homer": "hr",

	"rbi": "rbi", "runs batted in": "rbi", "runs_batted_in": "rbi",

	"bb": "bb", "walks": "bb", "walk": "bb", "base on balls": "bb",

	"so": "so", "k": "so", "strikeouts": "so", "strikeout": "so", "strike outs": "so",

	"r": "r", "runs": "r", "run": "r",

	"hbp": "hbp", "hit by pitch": "hbp", "hit_by_pitch": "hbp",

	"sf": "sf", "sacrifice fly": "sf", "sac_fly": "sf",

	"sh": "sh", "sacrifice hit": "sh", "sacrifice bunt": "sh", "sac_bunt": "sh",

	"sb": "sb", "stolen bases": "sb", "stolen_base": "sb",

	"cs": "cs", "caught stealing": "cs", "caught_stealing": "cs",
}

// NormalizeColumn maps a raw CSV header to its canonical key.
func NormalizeColumn(col string) string {
	lower := strings.ToLower(strings.TrimSpace(col))
	if canonical, ok := columnSynonyms[lower]; ok {
		return canonical
	}
	return lower
}
