package engine

import (
	"github.com/pkg/errors"
)

const DefaultMaxAttempts = 100

type Placer struct {
	rules       Rules
	rnd         Random
	maxAttempts int
}

type PlacerOption func(p *Placer)

func WithMaxAttempts(n int) PlacerOption {
	return func(p *Placer) {
		if n > 0 {
			p.maxAttempts = n
		}
	}
}

func NewPlacer(rules Rules, rnd Random, opts ...PlacerOption) *Placer {
	p := &Placer{
		rules:       rules,
		rnd:         rnd,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Placer) Rules() Rules {
	return p.rules
}

// PlaceManually places piece at origin if the cells are free and in bounds.
// existing is never modified.
func (p *Placer) PlaceManually(piece Piece, origin Coordinate, orientation Orientation,
	existing Fleet) (*PlacedPiece, error) {
	if !p.rules.CanPlace(origin, piece.Length, orientation, existing) {
		return nil, errors.WithMessagef(ErrInvalidPlacement,
			"cannot place '%s' %s at %s", piece.Name, orientation, origin)
	}
	return newPlacedPiece(piece, origin, orientation), nil
}

// PlaceRandomly lays out the whole catalog, in catalog order. A piece that
// finds no legal spot within the attempt cap fails the whole fleet.
func (p *Placer) PlaceRandomly() (Fleet, error) {
	if err := p.rules.Validate(); err != nil {
		return nil, err
	}
	fleet := make(Fleet, 0, len(p.rules.Catalog))
	for _, piece := range p.rules.Catalog {
		placed, err := p.placeOne(piece, fleet)
		if err != nil {
			return nil, err
		}
		fleet = append(fleet, placed)
	}
	return fleet, nil
}

func (p *Placer) placeOne(piece Piece, fleet Fleet) (*PlacedPiece, error) {
	size := p.rules.GridSize
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		var (
			orientation = Vertical
			origin      Coordinate
		)
		if p.rnd.Intn(2) == 0 {
			orientation = Horizontal
		}
		if orientation == Horizontal {
			origin = Coordinate{Row: p.rnd.Intn(size), Col: p.rnd.Intn(size - piece.Length + 1)}
		} else {
			origin = Coordinate{Row: p.rnd.Intn(size - piece.Length + 1), Col: p.rnd.Intn(size)}
		}
		if p.rules.CanPlace(origin, piece.Length, orientation, fleet) {
			return newPlacedPiece(piece, origin, orientation), nil
		}
	}
	return nil, errors.WithMessagef(ErrPlacementExhausted,
		"piece '%s' after %d attempts", piece.Name, p.maxAttempts)
}
