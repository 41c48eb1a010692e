// Package batting derives rate statistics from raw counting lines.
//
// All rates are rounded to three decimals. OPS is the sum of the
// already-rounded OBP and SLG, rounded again, so a displayed OBP of
// .333 and SLG of .500 always reads as an OPS of .833.
package batting

import "math"

// Derived holds the computed portion of a batting line.
type Derived struct {
	Singles int
	PA      int
	TB      int
	AVG     float64
	OBP     float64
	SLG     float64
	OPS     float64
}

// Round3 rounds half away from zero at the third decimal.
func Round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}

// Derive computes singles, plate appearances, total bases and the four
// rate stats from raw counts. Division guards return 0.0, never NaN.
func Derive(ab, h, doubles, triples, hr, bb, hbp, sf, sh int) Derived {
	singles := h - doubles - triples - hr
	pa := ab + bb + hbp + sf + sh
	tb := singles + 2*doubles + 3*triples + 4*hr

	d := Derived{Singles: singles, PA: pa, TB: tb}

	if ab > 0 {
		d.AVG = Round3(float64(h) / float64(ab))
		d.SLG = Round3(float64(tb) / float64(ab))
	}
	if obpDen := ab + bb + hbp + sf; obpDen > 0 {
		d.OBP = Round3(float64(h+bb+hbp) / float64(obpDen))
	}
	d.OPS = Round3(d.OBP + d.SLG)
	return d
}

// GameAverage is the plain H/AB line for a single game, 0.0 when AB is 0.
func GameAverage(h, ab int) float64 {
	if ab <= 0 {
		return 0.0
	}
	return Round3(float64(h) / float64(ab))
}
