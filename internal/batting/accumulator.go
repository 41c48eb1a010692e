package batting

import "github.com/fortuna/dugout/internal/store"

// Accumulator sums plate appearance lines for one player. Games played
// is the number of distinct games contributed to, not the number of
// lines added.
type Accumulator struct {
	AB, H, Doubles, Triples, HR int
	BB, HBP, SF, SH, K          int
	R, RBI, SB, CS              int

	games map[int]struct{}
}

func NewAccumulator() *Accumulator {
	return &Accumulator{games: make(map[int]struct{})}
}

// Add folds one plate appearance line into the running totals.
func (a *Accumulator) Add(pa *store.PlateAppearance) {
	a.AB += pa.AB
	a.H += pa.H
	a.Doubles += pa.Doubles
	a.Triples += pa.Triples
	a.HR += pa.HR
	a.BB += pa.BB
	a.HBP += pa.HBP
	a.SF += pa.SF
	a.SH += pa.SH
	a.K += pa.K
	a.R += pa.R
	a.RBI += pa.RBI
	a.SB += pa.SB
	a.CS += pa.CS
	a.games[pa.GameID] = struct{}{}
}

// Games reports how many distinct games have been folded in.
func (a *Accumulator) Games() int {
	return len(a.games)
}

// Derive computes the rate stats for the accumulated line.
func (a *Accumulator) Derive() Derived {
	return Derive(a.AB, a.H, a.Doubles, a.Triples, a.HR, a.BB, a.HBP, a.SF, a.SH)
}

// Total materializes the accumulated line as a hitter total row.
func (a *Accumulator) Total(playerID int, league, season string) *store.HitterTotal {
	d := a.Derive()
	return &store.HitterTotal{
		PlayerID: playerID,
		League:   league,
		Season:   season,
		Games:    a.Games(),
		AB:       a.AB,
		H:        a.H,
		Doubles:  a.Doubles,
		Triples:  a.Triples,
		HR:       a.HR,
		BB:       a.BB,
		HBP:      a.HBP,
		SF:       a.SF,
		SH:       a.SH,
		K:        a.K,
		R:        a.R,
		RBI:      a.RBI,
		SB:       a.SB,
		CS:       a.CS,
		Singles:  d.Singles,
		PA:       d.PA,
		TB:       d.TB,
		AVG:      d.AVG,
		OBP:      d.OBP,
		SLG:      d.SLG,
		OPS:      d.OPS,
	}
}
