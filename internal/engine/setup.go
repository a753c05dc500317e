package engine

import (
	"github.com/pkg/errors"
)

// Setup collects a side's pieces one by one before the battle starts.
type Setup struct {
	rules  Rules
	placed []*PlacedPiece // indexed by catalog position
}

func NewSetup(rules Rules) *Setup {
	return &Setup{
		rules:  rules,
		placed: make([]*PlacedPiece, len(rules.Catalog)),
	}
}

// Place puts the named piece on the grid through placer.
func (s *Setup) Place(placer *Placer, name string, origin Coordinate, orientation Orientation) (*PlacedPiece, error) {
	idx := s.rules.Catalog.Index(name)
	if idx < 0 {
		return nil, errors.WithMessagef(ErrUnknownPiece, "'%s'", name)
	}
	if s.placed[idx] != nil {
		return nil, errors.WithMessagef(ErrPieceAlreadyPlaced, "'%s'", name)
	}
	placed, err := placer.PlaceManually(s.rules.Catalog[idx], origin, orientation, s.Placed())
	if err != nil {
		return nil, err
	}
	s.placed[idx] = placed
	return placed.clone(), nil
}

// Randomize replaces the current layout with a random one. On failure the
// previous layout is kept.
func (s *Setup) Randomize(placer *Placer) error {
	fleet, err := placer.PlaceRandomly()
	if err != nil {
		return errors.WithMessage(err, "place randomly")
	}
	s.placed = make([]*PlacedPiece, len(s.rules.Catalog))
	copy(s.placed, fleet)
	return nil
}

func (s *Setup) Reset() {
	s.placed = make([]*PlacedPiece, len(s.rules.Catalog))
}

// Placed returns the pieces placed so far in catalog order.
func (s *Setup) Placed() Fleet {
	fleet := make(Fleet, 0, len(s.placed))
	for _, p := range s.placed {
		if p != nil {
			fleet = append(fleet, p.clone())
		}
	}
	return fleet
}

// Remaining lists the pieces still waiting to be placed.
func (s *Setup) Remaining() []Piece {
	var remaining []Piece
	for i, p := range s.placed {
		if p == nil {
			remaining = append(remaining, s.rules.Catalog[i])
		}
	}
	return remaining
}

func (s *Setup) Complete() bool {
	return len(s.Remaining()) == 0
}

// Fleet returns the finished fleet or ErrFleetIncomplete.
func (s *Setup) Fleet() (Fleet, error) {
	if remaining := s.Remaining(); len(remaining) > 0 {
		return nil, errors.WithMessagef(ErrFleetIncomplete, "%d pieces left", len(remaining))
	}
	fleet := s.Placed()
	if err := s.rules.ValidateFleet(fleet); err != nil {
		return nil, err
	}
	return fleet, nil
}

func (s *Setup) Clone() *Setup {
	cp := &Setup{
		rules:  s.rules,
		placed: make([]*PlacedPiece, len(s.placed)),
	}
	for i, p := range s.placed {
		if p != nil {
			cp.placed[i] = p.clone()
		}
	}
	return cp
}

func (s *Setup) Rules() Rules {
	return s.rules
}
