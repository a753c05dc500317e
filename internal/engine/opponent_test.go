package engine

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStrategyRandomMode(t *testing.T) {
	state := newRowBattle(t)
	_, err := state.ResolveShot(Human, Coordinate{Row: 9, Col: 9})
	require.NoError(t, err)

	strategy := NewStrategy(NewRandom(5))
	target, err := strategy.NextTarget(state, Opponent)
	require.NoError(t, err)
	assert.Equal(t, RandomMode, target.Mode)
	assert.True(t, state.Rules().InBounds(target.Cell))
	assert.False(t, state.HasShot(Opponent, target.Cell))
}

func TestStrategyRandomModeSkipsShotCells(t *testing.T) {
	state := newRowBattle(t)
	_, err := state.ResolveShot(Human, Coordinate{Row: 9, Col: 9})
	require.NoError(t, err)
	_, err = state.ResolveShot(Opponent, Coordinate{Row: 8, Col: 8})
	require.NoError(t, err)
	_, err = state.ResolveShot(Human, Coordinate{Row: 9, Col: 8})
	require.NoError(t, err)

	// first sample (8,8) is taken, second (6,6) is free
	strategy := NewStrategy(&scriptedRandom{values: []int{8, 8, 6, 6}})
	target, err := strategy.NextTarget(state, Opponent)
	require.NoError(t, err)
	assert.Equal(t, Target{Cell: Coordinate{Row: 6, Col: 6}, Mode: RandomMode}, target)
}

func TestStrategyHuntsAroundHit(t *testing.T) {
	for seed := int64(1); seed <= 20; seed++ {
		state := newRowBattle(t)
		_, err := state.ResolveShot(Human, Coordinate{Row: 9, Col: 9})
		require.NoError(t, err)
		hit := Coordinate{Row: 2, Col: 1}
		outcome, err := state.ResolveShot(Opponent, hit)
		require.NoError(t, err)
		require.True(t, outcome.Hit)
		_, err = state.ResolveShot(Human, Coordinate{Row: 9, Col: 8})
		require.NoError(t, err)

		target, err := NewStrategy(NewRandom(seed)).NextTarget(state, Opponent)
		require.NoError(t, err)
		neighbors := hit.Neighbors()
		assert.Equal(t, HuntMode, target.Mode)
		assert.Contains(t, neighbors[:], target.Cell)
	}
}

func TestStrategyHuntSkipsOutOfBoundsAndShotNeighbours(t *testing.T) {
	state := newRowBattle(t)
	shots := []Coordinate{{Row: 0, Col: 1}, {Row: 0, Col: 0}}
	for i, c := range shots {
		_, err := state.ResolveShot(Human, Coordinate{Row: 9, Col: i})
		require.NoError(t, err)
		_, err = state.ResolveShot(Opponent, c)
		require.NoError(t, err)
	}
	_, err := state.ResolveShot(Human, Coordinate{Row: 9, Col: 5})
	require.NoError(t, err)

	// (0,0) is the first hit segment: up and left are out of bounds, right
	// (0,1) is shot, only down remains
	for i := 0; i < 10; i++ {
		target, err := NewStrategy(NewRandom(int64(i+1))).NextTarget(state, Opponent)
		require.NoError(t, err)
		assert.Equal(t, Target{Cell: Coordinate{Row: 1, Col: 0}, Mode: HuntMode}, target)
	}
}

func TestStrategyHuntsInFleetOrder(t *testing.T) {
	state := newRowBattle(t)
	// the compsognathus (4,0) is hit before the velociraptor (3,0)
	shots := []Coordinate{{Row: 4, Col: 0}, {Row: 3, Col: 0}}
	for i, c := range shots {
		_, err := state.ResolveShot(Human, Coordinate{Row: 9, Col: i})
		require.NoError(t, err)
		_, err = state.ResolveShot(Opponent, c)
		require.NoError(t, err)
	}
	_, err := state.ResolveShot(Human, Coordinate{Row: 9, Col: 5})
	require.NoError(t, err)

	for seed := int64(1); seed <= 10; seed++ {
		target, err := NewStrategy(NewRandom(seed)).NextTarget(state, Opponent)
		require.NoError(t, err)
		assert.Equal(t, HuntMode, target.Mode)
		assert.Contains(t, []Coordinate{{Row: 2, Col: 0}, {Row: 3, Col: 1}}, target.Cell)
	}
}

func TestStrategyMarksOriginOnlyOnceExhausted(t *testing.T) {
	state := newRowBattle(t)
	shots := []Coordinate{{Row: 0, Col: 0}, {Row: 1, Col: 0}}
	for i, c := range shots {
		_, err := state.ResolveShot(Human, Coordinate{Row: 9, Col: i})
		require.NoError(t, err)
		_, err = state.ResolveShot(Opponent, c)
		require.NoError(t, err)
	}
	_, err := state.ResolveShot(Human, Coordinate{Row: 9, Col: 2})
	require.NoError(t, err)

	// (0,1) is the last candidate around (0,0); picking it marks nothing
	strategy := NewStrategy(NewRandom(11))
	target, err := strategy.NextTarget(state, Opponent)
	require.NoError(t, err)
	assert.Equal(t, Target{Cell: Coordinate{Row: 0, Col: 1}, Mode: HuntMode}, target)
	assert.False(t, state.ShotsAgainst(Human)[0].Hunted)

	// a rejected dig leaves the origin huntable
	_, err = state.ResolveShot(Opponent, Coordinate{Row: 10, Col: 0})
	require.True(t, errors.Is(err, ErrOutOfBounds))
	target, err = strategy.NextTarget(state, Opponent)
	require.NoError(t, err)
	assert.Equal(t, Target{Cell: Coordinate{Row: 0, Col: 1}, Mode: HuntMode}, target)

	_, err = state.ResolveShot(Opponent, target.Cell)
	require.NoError(t, err)
	_, err = state.ResolveShot(Human, Coordinate{Row: 9, Col: 3})
	require.NoError(t, err)

	// (0,0) is exhausted now: it is marked and this dig falls back to random
	target, err = strategy.NextTarget(state, Opponent)
	require.NoError(t, err)
	assert.True(t, state.ShotsAgainst(Human)[0].Hunted)
	assert.Equal(t, RandomMode, target.Mode)

	// hunting moves on to (0,1)
	target, err = strategy.NextTarget(state, Opponent)
	require.NoError(t, err)
	assert.Equal(t, HuntMode, target.Mode)
	assert.Contains(t, []Coordinate{{Row: 1, Col: 1}, {Row: 0, Col: 2}}, target.Cell)
}

func TestStrategyFallsBackWhenNeighboursExhausted(t *testing.T) {
	rules := Rules{GridSize: 3, Catalog: Catalog{{Name: "a", Length: 3}}}
	placer := NewPlacer(rules, NewRandom(1))
	human, err := placer.PlaceManually(rules.Catalog[0], Coordinate{Row: 0, Col: 0}, Horizontal, nil)
	require.NoError(t, err)
	opponent, err := placer.PlaceManually(rules.Catalog[0], Coordinate{Row: 2, Col: 0}, Horizontal, nil)
	require.NoError(t, err)
	state, err := NewBattleState(rules, Fleet{human}, Fleet{opponent})
	require.NoError(t, err)

	// (0,0) ends up with every in-bounds neighbour shot while its piece survives
	humanShots := []Coordinate{{Row: 0, Col: 0}, {Row: 0, Col: 1}, {Row: 0, Col: 2}}
	opponentShots := []Coordinate{{Row: 0, Col: 0}, {Row: 1, Col: 0}, {Row: 0, Col: 1}}
	for i := range humanShots {
		_, err := state.ResolveShot(Human, humanShots[i])
		require.NoError(t, err)
		_, err = state.ResolveShot(Opponent, opponentShots[i])
		require.NoError(t, err)
	}
	_, err = state.ResolveShot(Human, Coordinate{Row: 1, Col: 0})
	require.NoError(t, err)

	strategy := NewStrategy(&scriptedRandom{values: []int{2, 2, 0}})
	target, err := strategy.NextTarget(state, Opponent)
	require.NoError(t, err)
	assert.Equal(t, Target{Cell: Coordinate{Row: 2, Col: 2}, Mode: RandomMode}, target)
	assert.True(t, state.ShotsAgainst(Human)[0].Hunted)
	assert.False(t, state.ShotsAgainst(Human)[2].Hunted)

	// the exhausted origin is skipped from now on
	target, err = strategy.NextTarget(state, Opponent)
	require.NoError(t, err)
	assert.Equal(t, HuntMode, target.Mode)
	assert.Contains(t, []Coordinate{{Row: 1, Col: 1}, {Row: 0, Col: 2}}, target.Cell)
}

func TestStrategyGameOver(t *testing.T) {
	state := newRowBattle(t)
	for i, p := range state.Fleet(Opponent) {
		for j, c := range p.Cells() {
			_, err := state.ResolveShot(Human, c)
			require.NoError(t, err)
			if !state.IsOver() {
				_, err = state.ResolveShot(Opponent, Coordinate{Row: 5 + i, Col: j})
				require.NoError(t, err)
			}
		}
	}
	_, err := NewStrategy(NewRandom(1)).NextTarget(state, Opponent)
	assert.True(t, errors.Is(err, ErrGameOver))
}
