package engine

import (
	"testing"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// opponentMiss burns the opponent's turn on an empty row of the human grid.
func opponentMiss(t *testing.T, state *BattleState, n int) {
	t.Helper()
	c := Coordinate{Row: 5 + n/10, Col: n % 10}
	outcome, err := state.ResolveShot(Opponent, c)
	require.NoError(t, err)
	require.False(t, outcome.Hit)
}

func TestNewBattleState(t *testing.T) {
	rules := DefaultRules()
	state := newRowBattle(t)
	assert.Equal(t, Human, state.CurrentTurn())
	assert.False(t, state.IsOver())
	assert.Equal(t, NoSide, state.Winner())
	assert.Equal(t, 17, state.RemainingHits(Human))
	assert.Equal(t, 17, state.RemainingHits(Opponent))

	_, err := NewBattleState(rules, rowFleet(t, rules, 0)[:4], rowFleet(t, rules, 0))
	assert.True(t, errors.Is(err, ErrInvalidFleet))
}

func TestCurrentTurnIsIdempotent(t *testing.T) {
	state := newRowBattle(t)
	for i := 0; i < 5; i++ {
		assert.Equal(t, Human, state.CurrentTurn())
	}
	assert.Empty(t, state.ShotsAgainst(Opponent))
}

func TestResolveShotDestroysOnLastSegment(t *testing.T) {
	state := newRowBattle(t)
	for col := 0; col < 4; col++ {
		outcome, err := state.ResolveShot(Human, Coordinate{Row: 0, Col: col})
		require.NoError(t, err)
		assert.True(t, outcome.Hit)
		assert.Nil(t, outcome.Destroyed, "col %d", col)
		assert.False(t, outcome.GameOver)
		opponentMiss(t, state, col)
	}
	outcome, err := state.ResolveShot(Human, Coordinate{Row: 0, Col: 4})
	require.NoError(t, err)
	assert.True(t, outcome.Hit)
	require.NotNil(t, outcome.Destroyed)
	assert.Equal(t, "T-Rex", outcome.Destroyed.Name)
	assert.True(t, state.Fleet(Opponent)[0].Destroyed())
	assert.Equal(t, 12, state.RemainingHits(Opponent))

	for _, r := range state.ShotsAgainst(Opponent) {
		assert.Equal(t, "T-Rex", r.Piece)
		assert.True(t, r.Hunted)
	}
}

func TestResolveShotMiss(t *testing.T) {
	state := newRowBattle(t)
	outcome, err := state.ResolveShot(Human, Coordinate{Row: 9, Col: 9})
	require.NoError(t, err)
	assert.False(t, outcome.Hit)
	assert.Equal(t, Opponent, state.CurrentTurn())
	assert.Equal(t, []ShotRecord{{Cell: Coordinate{Row: 9, Col: 9}, Result: Miss}}, state.ShotsAgainst(Opponent))
}

func TestResolveShotRejectsIllegalShots(t *testing.T) {
	state := newRowBattle(t)

	_, err := state.ResolveShot(Opponent, Coordinate{Row: 0, Col: 0})
	assert.True(t, errors.Is(err, ErrNotYourTurn))
	assert.True(t, errors.Is(err, ErrIllegalShot))

	_, err = state.ResolveShot(Human, Coordinate{Row: 10, Col: 0})
	assert.True(t, errors.Is(err, ErrOutOfBounds))

	_, err = state.ResolveShot(Human, Coordinate{Row: 0, Col: 0})
	require.NoError(t, err)
	opponentMiss(t, state, 0)

	before := state.ShotsAgainst(Opponent)
	_, err = state.ResolveShot(Human, Coordinate{Row: 0, Col: 0})
	assert.True(t, errors.Is(err, ErrAlreadyShot))
	assert.Equal(t, before, state.ShotsAgainst(Opponent))
	assert.Equal(t, Human, state.CurrentTurn())
	assert.Equal(t, 1, state.HitsAgainst(Opponent))
}

func TestFullGameHumanWins(t *testing.T) {
	state := newRowBattle(t)
	var targets []Coordinate
	for _, p := range state.Fleet(Opponent) {
		targets = append(targets, p.Cells()...)
	}
	require.Len(t, targets, 17)

	for i, c := range targets {
		outcome, err := state.ResolveShot(Human, c)
		require.NoError(t, err)
		require.True(t, outcome.Hit)
		if i < len(targets)-1 {
			require.False(t, outcome.GameOver, "shot %d", i)
			require.False(t, state.IsOver())
			opponentMiss(t, state, i)
			continue
		}
		assert.True(t, outcome.GameOver)
		assert.Equal(t, Human, outcome.Winner)
	}
	assert.True(t, state.IsOver())
	assert.Equal(t, Human, state.Winner())
	assert.Zero(t, state.RemainingHits(Opponent))

	_, err := state.ResolveShot(Opponent, Coordinate{Row: 9, Col: 9})
	assert.True(t, errors.Is(err, ErrGameOver))
	_, err = state.ResolveShot(Human, Coordinate{Row: 9, Col: 9})
	assert.True(t, errors.Is(err, ErrGameOver))
}

func TestFullGameOpponentWins(t *testing.T) {
	state := newRowBattle(t)
	targets := state.Fleet(Human)
	n := 0
	for _, p := range targets {
		for _, c := range p.Cells() {
			_, err := state.ResolveShot(Human, Coordinate{Row: 5 + n/10, Col: n % 10})
			require.NoError(t, err)
			outcome, err := state.ResolveShot(Opponent, c)
			require.NoError(t, err)
			n++
			require.Equal(t, n == 17, outcome.GameOver)
		}
	}
	assert.Equal(t, Opponent, state.Winner())
	assert.Equal(t, Opponent, state.CurrentTurn())
}

func TestBattleStateJson(t *testing.T) {
	state := newRowBattle(t)
	_, err := state.ResolveShot(Human, Coordinate{Row: 1, Col: 1})
	require.NoError(t, err)
	_, err = state.ResolveShot(Opponent, Coordinate{Row: 7, Col: 7})
	require.NoError(t, err)

	data, err := jsoniter.Marshal(state)
	require.NoError(t, err)
	restored := new(BattleState)
	require.NoError(t, jsoniter.Unmarshal(data, restored))

	assert.Equal(t, state.CurrentTurn(), restored.CurrentTurn())
	assert.Equal(t, state.ShotsAgainst(Opponent), restored.ShotsAgainst(Opponent))
	assert.Equal(t, state.ShotsAgainst(Human), restored.ShotsAgainst(Human))
	assert.Equal(t, state.Fleet(Opponent), restored.Fleet(Opponent))
	assert.Equal(t, 16, restored.RemainingHits(Opponent))
}

func TestBattleStateJsonRejectsInconsistentState(t *testing.T) {
	tests := []struct {
		name   string
		tamper func(v *battleStateJson)
		want   error
	}{
		{
			name: "over without a winner",
			tamper: func(v *battleStateJson) {
				v.Over = true
			},
			want: ErrInvalidState,
		},
		{
			name: "winner before the game is over",
			tamper: func(v *battleStateJson) {
				v.Winner = Human
			},
			want: ErrInvalidState,
		},
		{
			name: "duplicate shots",
			tamper: func(v *battleStateJson) {
				miss := ShotRecord{Cell: Coordinate{Row: 9, Col: 9}, Result: Miss}
				v.ShotsOnOpp = []ShotRecord{miss, miss}
			},
			want: ErrInvalidState,
		},
		{
			name: "shot out of bounds",
			tamper: func(v *battleStateJson) {
				v.ShotsOnHuman = []ShotRecord{{Cell: Coordinate{Row: 10, Col: 0}, Result: Miss}}
			},
			want: ErrInvalidState,
		},
		{
			name: "miss on a bone",
			tamper: func(v *battleStateJson) {
				v.ShotsOnOpp = []ShotRecord{{Cell: Coordinate{Row: 0, Col: 0}, Result: Miss}}
			},
			want: ErrInvalidState,
		},
		{
			name: "hit record without a hit segment",
			tamper: func(v *battleStateJson) {
				v.ShotsOnOpp = []ShotRecord{{Cell: Coordinate{Row: 0, Col: 0}, Result: Hit, Piece: "T-Rex"}}
			},
			want: ErrInvalidState,
		},
		{
			name: "hit segment without a record",
			tamper: func(v *battleStateJson) {
				v.OpponentFleet[0].Segments[0].Hit = true
				v.OpponentFleet[0].HitCount = 1
			},
			want: ErrInvalidState,
		},
		{
			name: "excavated fleet while the game goes on",
			tamper: func(v *battleStateJson) {
				excavate(v)
			},
			want: ErrInvalidState,
		},
		{
			name: "invalid rules",
			tamper: func(v *battleStateJson) {
				v.Rules.GridSize = 0
			},
			want: ErrInvalidRules,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data := tamperedBattle(t, tt.tamper)
			err := jsoniter.Unmarshal(data, new(BattleState))
			assert.True(t, errors.Is(err, tt.want), "got %v", err)
		})
	}
}

func TestBattleStateJsonRestoresFinishedGame(t *testing.T) {
	data := tamperedBattle(t, func(v *battleStateJson) {
		excavate(v)
		v.Over = true
		v.Winner = Human
	})
	restored := new(BattleState)
	require.NoError(t, jsoniter.Unmarshal(data, restored))
	assert.True(t, restored.IsOver())
	assert.Equal(t, Human, restored.Winner())
	assert.Equal(t, 0, restored.RemainingHits(Opponent))
}

func tamperedBattle(t *testing.T, tamper func(v *battleStateJson)) []byte {
	t.Helper()
	data, err := jsoniter.Marshal(newRowBattle(t))
	require.NoError(t, err)
	var v battleStateJson
	require.NoError(t, jsoniter.Unmarshal(data, &v))
	tamper(&v)
	data, err = jsoniter.Marshal(v)
	require.NoError(t, err)
	return data
}

// excavate hits every opponent segment and records the matching shots.
func excavate(v *battleStateJson) {
	v.ShotsOnOpp = nil
	for _, p := range v.OpponentFleet {
		for i := range p.Segments {
			p.Segments[i].Hit = true
			v.ShotsOnOpp = append(v.ShotsOnOpp, ShotRecord{Cell: p.Segments[i].Cell, Result: Hit, Piece: p.Piece.Name})
		}
		p.HitCount = len(p.Segments)
	}
}
