package engine

import (
	"github.com/pkg/errors"
)

type TargetMode string

const (
	HuntMode   = TargetMode("hunt")
	RandomMode = TargetMode("random")
)

type Target struct {
	Cell Coordinate
	Mode TargetMode
}

// Strategy picks the computer's next dig. It follows up around the first
// hit segment, in fleet order, that is not yet hunted and otherwise digs at
// random. It never infers a piece's orientation from neighbouring hits.
type Strategy struct {
	rnd Random
}

func NewStrategy(rnd Random) *Strategy {
	return &Strategy{rnd: rnd}
}

func (s *Strategy) NextTarget(state *BattleState, attacker Side) (Target, error) {
	if state.IsOver() {
		return Target{}, ErrGameOver
	}
	defender := attacker.Other()
	if origin, ok := huntOrigin(state, defender); ok {
		candidates := huntCandidates(state, attacker, origin)
		if len(candidates) > 0 {
			return Target{Cell: candidates[s.rnd.Intn(len(candidates))], Mode: HuntMode}, nil
		}
		// every neighbour is dug
		state.MarkHunted(defender, origin)
	}
	cell, err := s.randomCell(state, attacker)
	if err != nil {
		return Target{}, err
	}
	return Target{Cell: cell, Mode: RandomMode}, nil
}

func (s *Strategy) randomCell(state *BattleState, attacker Side) (Coordinate, error) {
	rules := state.Rules()
	if len(state.ShotsAgainst(attacker.Other())) >= rules.CellCount() {
		return Coordinate{}, errors.WithMessagef(ErrBoardExhausted, "side '%s'", attacker)
	}
	for {
		c := Coordinate{Row: s.rnd.Intn(rules.GridSize), Col: s.rnd.Intn(rules.GridSize)}
		if !state.HasShot(attacker, c) {
			return c, nil
		}
	}
}

// huntOrigin scans the defender's pieces in catalog order, then their
// segments in order, for a hit that is not hunted yet.
func huntOrigin(state *BattleState, defender Side) (Coordinate, bool) {
	for _, piece := range state.fleets[defender] {
		for _, segment := range piece.Segments {
			if !segment.Hit {
				continue
			}
			idx := state.recordIndex(defender, segment.Cell)
			if idx >= 0 && !state.shots[defender][idx].Hunted {
				return segment.Cell, true
			}
		}
	}
	return Coordinate{}, false
}

func huntCandidates(state *BattleState, attacker Side, origin Coordinate) []Coordinate {
	rules := state.Rules()
	candidates := make([]Coordinate, 0, 4)
	for _, n := range origin.Neighbors() {
		if rules.InBounds(n) && !state.HasShot(attacker, n) {
			candidates = append(candidates, n)
		}
	}
	return candidates
}
