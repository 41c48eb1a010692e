package batting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/fortuna/dugout/internal/store"
)

func TestDerive(t *testing.T) {
	tests := []struct {
		name                                  string
		ab, h, doubles, triples, hr           int
		bb, hbp, sf, sh                       int
		wantSingles, wantPA, wantTB           int
		wantAVG, wantOBP, wantSLG, wantOPS    float64
	}{
		{
			name: "typical line",
			ab:   10, h: 4, doubles: 1, triples: 0, hr: 1, bb: 2, hbp: 0, sf: 1, sh: 0,
			wantSingles: 2, wantPA: 13, wantTB: 8,
			wantAVG: 0.4, wantOBP: 0.462, wantSLG: 0.8, wantOPS: 1.262,
		},
		{
			name: "no at bats walks only",
			ab:   0, h: 0, bb: 3, hbp: 1,
			wantSingles: 0, wantPA: 4, wantTB: 0,
			wantAVG: 0, wantOBP: 1.0, wantSLG: 0, wantOPS: 1.0,
		},
		{
			name:    "all zero",
			wantAVG: 0, wantOBP: 0, wantSLG: 0, wantOPS: 0,
		},
		{
			name: "perfect slugging",
			ab:   4, h: 4, hr: 4,
			wantSingles: 0, wantPA: 4, wantTB: 16,
			wantAVG: 1.0, wantOBP: 1.0, wantSLG: 4.0, wantOPS: 5.0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := Derive(tt.ab, tt.h, tt.doubles, tt.triples, tt.hr, tt.bb, tt.hbp, tt.sf, tt.sh)
			assert.Equal(t, tt.wantSingles, d.Singles)
			assert.Equal(t, tt.wantPA, d.PA)
			assert.Equal(t, tt.wantTB, d.TB)
			assert.InDelta(t, tt.wantAVG, d.AVG, 1e-9)
			assert.InDelta(t, tt.wantOBP, d.OBP, 1e-9)
			assert.InDelta(t, tt.wantSLG, d.SLG, 1e-9)
			assert.InDelta(t, tt.wantOPS, d.OPS, 1e-9)
		})
	}
}

func TestDeriveOPSUsesRoundedComponents(t *testing.T) {
	// 1/3 and 1/6 both round before the sum: OBP .333 and SLG .333
	// must give OPS .666, not round3(1/3 + 1/3).
	d := Derive(3, 1, 0, 0, 0, 0, 0, 0, 0)
	assert.InDelta(t, 0.333, d.AVG, 1e-9)
	assert.InDelta(t, 0.333, d.OBP, 1e-9)
	assert.InDelta(t, 0.333, d.SLG, 1e-9)
	assert.InDelta(t, 0.666, d.OPS, 1e-9)
}

func TestRound3(t *testing.T) {
	assert.InDelta(t, 0.333, Round3(1.0/3.0), 1e-9)
	assert.InDelta(t, 0.667, Round3(2.0/3.0), 1e-9)
	assert.InDelta(t, 0.286, Round3(2.0/7.0), 1e-9)
}

func TestGameAverage(t *testing.T) {
	assert.InDelta(t, 0.667, GameAverage(2, 3), 1e-9)
	assert.Zero(t, GameAverage(2, 0))
}

func TestAccumulatorCountsDistinctGames(t *testing.T) {
	acc := NewAccumulator()
	acc.Add(&store.PlateAppearance{GameID: 1, AB: 3, H: 2, Doubles: 1})
	acc.Add(&store.PlateAppearance{GameID: 1, AB: 1, H: 1})
	acc.Add(&store.PlateAppearance{GameID: 2, AB: 4, H: 1, HR: 1, BB: 1})

	assert.Equal(t, 2, acc.Games())
	assert.Equal(t, 8, acc.AB)
	assert.Equal(t, 4, acc.H)

	total := acc.Total(7, "rec", "2025")
	assert.Equal(t, 7, total.PlayerID)
	assert.Equal(t, 2, total.Games)
	assert.Equal(t, 2, total.Singles)
	assert.Equal(t, 9, total.PA)
	assert.Equal(t, 9, total.TB)
	assert.InDelta(t, 0.5, total.AVG, 1e-9)
}
