package engine

import (
	"github.com/pkg/errors"
)

// BattleState is the authoritative record of one game. It is changed only
// by ResolveShot and MarkHunted; every accessor returns copies.
type BattleState struct {
	rules  Rules
	fleets map[Side]Fleet
	// shots fired against each side, in order
	shots  map[Side][]ShotRecord
	turn   Side
	over   bool
	winner Side
}

func NewBattleState(rules Rules, human Fleet, opponent Fleet) (*BattleState, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if err := rules.ValidateFleet(human); err != nil {
		return nil, errors.WithMessage(err, "human fleet")
	}
	if err := rules.ValidateFleet(opponent); err != nil {
		return nil, errors.WithMessage(err, "opponent fleet")
	}
	return &BattleState{
		rules: rules,
		fleets: map[Side]Fleet{
			Human:    human.Clone(),
			Opponent: opponent.Clone(),
		},
		shots: map[Side][]ShotRecord{
			Human:    nil,
			Opponent: nil,
		},
		turn:   Human,
		winner: NoSide,
	}, nil
}

func (s *BattleState) Rules() Rules {
	return s.rules
}

func (s *BattleState) CurrentTurn() Side {
	return s.turn
}

func (s *BattleState) IsOver() bool {
	return s.over
}

func (s *BattleState) Winner() Side {
	return s.winner
}

// Fleet returns a copy of side's fleet.
func (s *BattleState) Fleet(side Side) Fleet {
	return s.fleets[side].Clone()
}

// ShotsAgainst returns the shots fired at side's grid, oldest first.
func (s *BattleState) ShotsAgainst(side Side) []ShotRecord {
	return append([]ShotRecord(nil), s.shots[side]...)
}

// HasShot reports whether attacker already dug at c.
func (s *BattleState) HasShot(attacker Side, c Coordinate) bool {
	return s.recordIndex(attacker.Other(), c) >= 0
}

// HitsAgainst is the number of segments of side's fleet already hit.
func (s *BattleState) HitsAgainst(side Side) int {
	return s.fleets[side].Hits()
}

func (s *BattleState) RemainingHits(side Side) int {
	return s.rules.TotalSegments() - s.HitsAgainst(side)
}

// MarkHunted flags the hit recorded at c on defender's grid so the
// opponent stops following up around it.
func (s *BattleState) MarkHunted(defender Side, c Coordinate) {
	idx := s.recordIndex(defender, c)
	if idx < 0 || s.shots[defender][idx].Result != Hit {
		return
	}
	s.shots[defender][idx].Hunted = true
}

func (s *BattleState) recordIndex(defender Side, c Coordinate) int {
	for i, r := range s.shots[defender] {
		if r.Cell == c {
			return i
		}
	}
	return -1
}

// Clone returns an independent copy of the state.
func (s *BattleState) Clone() *BattleState {
	return &BattleState{
		rules: s.rules,
		fleets: map[Side]Fleet{
			Human:    s.fleets[Human].Clone(),
			Opponent: s.fleets[Opponent].Clone(),
		},
		shots: map[Side][]ShotRecord{
			Human:    s.ShotsAgainst(Human),
			Opponent: s.ShotsAgainst(Opponent),
		},
		turn:   s.turn,
		over:   s.over,
		winner: s.winner,
	}
}
