package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// scriptedRandom replays values, wrapping around, each reduced modulo n.
type scriptedRandom struct {
	values []int
	pos    int
}

func (r *scriptedRandom) Intn(n int) int {
	if len(r.values) == 0 {
		return 0
	}
	v := r.values[r.pos%len(r.values)]
	r.pos++
	return v % n
}

// rowFleet puts catalog piece i horizontally on row firstRow+i from column 0.
func rowFleet(t *testing.T, rules Rules, firstRow int) Fleet {
	t.Helper()
	placer := NewPlacer(rules, &scriptedRandom{})
	fleet := make(Fleet, 0, len(rules.Catalog))
	for i, piece := range rules.Catalog {
		p, err := placer.PlaceManually(piece, Coordinate{Row: firstRow + i, Col: 0}, Horizontal, fleet)
		require.NoError(t, err)
		fleet = append(fleet, p)
	}
	return fleet
}

func newRowBattle(t *testing.T) *BattleState {
	t.Helper()
	rules := DefaultRules()
	state, err := NewBattleState(rules, rowFleet(t, rules, 0), rowFleet(t, rules, 0))
	require.NoError(t, err)
	return state
}

func fleetCells(f Fleet) map[Coordinate]string {
	cells := make(map[Coordinate]string)
	for _, p := range f {
		for _, c := range p.Cells() {
			cells[c] = p.Piece.Name
		}
	}
	return cells
}
