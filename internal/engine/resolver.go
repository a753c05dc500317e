package engine

import (
	"github.com/pkg/errors"
)

// ResolveShot applies side's dig at c to the other side's fleet. A rejected
// shot leaves the state untouched.
func (s *BattleState) ResolveShot(side Side, c Coordinate) (ShotOutcome, error) {
	if err := s.validateShot(side, c); err != nil {
		return ShotOutcome{}, err
	}
	defender := side.Other()
	outcome := ShotOutcome{
		Side:   side,
		Cell:   c,
		Winner: NoSide,
	}
	record := ShotRecord{Cell: c, Result: Miss}
	if piece := s.fleets[defender].PieceAt(c); piece != nil {
		piece.Segments[piece.segmentIndex(c)].Hit = true
		piece.HitCount++
		record.Result = Hit
		record.Piece = piece.Piece.Name
		outcome.Hit = true
		if piece.Destroyed() {
			destroyed := piece.Piece
			outcome.Destroyed = &destroyed
		}
	}
	s.shots[defender] = append(s.shots[defender], record)
	if outcome.Destroyed != nil {
		s.markPieceHunted(defender, outcome.Destroyed.Name)
	}
	if s.fleets[defender].Hits() == s.rules.TotalSegments() {
		s.over = true
		s.winner = side
		outcome.GameOver = true
		outcome.Winner = side
		return outcome, nil
	}
	s.turn = defender
	return outcome, nil
}

func (s *BattleState) validateShot(side Side, c Coordinate) error {
	switch {
	case s.over:
		return ErrGameOver
	case side != s.turn:
		return errors.WithMessagef(ErrNotYourTurn, "side '%s'", side)
	case !s.rules.InBounds(c):
		return errors.WithMessagef(ErrOutOfBounds, "cell %s", c)
	case s.HasShot(side, c):
		return errors.WithMessagef(ErrAlreadyShot, "cell %s", c)
	}
	return nil
}

func (s *BattleState) markPieceHunted(defender Side, name string) {
	for i := range s.shots[defender] {
		if s.shots[defender][i].Piece == name {
			s.shots[defender][i].Hunted = true
		}
	}
}
