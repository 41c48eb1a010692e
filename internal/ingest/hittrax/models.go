// Package hittrax parses single-game batting CSV exports. Two shapes are
// supported: the sectioned HitTrax export, where each team's roster sits
// under a header row carrying the team name and "Batting Order", and the
// flat shape, one row per player with a Team column.
package hittrax

import "fmt"

// PlayerLine is one parsed batting row. Raw preserves the source fields
// for the audit trail. HBP, SF, SH, SB and CS are always zero for the
// sectioned export, which does not carry them.
type PlayerLine struct {
	Name    string
	Team    string
	AB      int
	R       int
	H       int
	Doubles int
	Triples int
	HR      int
	RBI     int
	K       int
	BB      int
	HBP     int
	SF      int
	SH      int
	SB      int
	CS      int
	Raw     map[string]interface{}
}

// TeamDetection is the outcome of parsing one game file: two named
// sides, their rosters, run totals and the winner (nil on a tie).
type TeamDetection struct {
	Team1Name    string
	Team2Name    string
	Team1Players []PlayerLine
	Team2Players []PlayerLine
	Team1Runs    int
	Team2Runs    int
	Winner       *string
}

// ParseError marks input the parser rejected. Callers map it to a 400;
// nothing is persisted before parsing completes.
type ParseError struct {
	Msg string
}

func (e *ParseError) Error() string { return e.Msg }

func parseErrorf(format string, args ...interface{}) *ParseError {
	return &ParseError{Msg: fmt.Sprintf(format, args...)}
}
