package engine

import (
	"github.com/pkg/errors"
)

const DefaultGridSize = 10

// Rules are the only tunables of a game: board size and piece catalog.
type Rules struct {
	GridSize int     `json:"gridSize"`
	Catalog  Catalog `json:"catalog"`
}

func DefaultRules() Rules {
	return Rules{
		GridSize: DefaultGridSize,
		Catalog:  DefaultCatalog(),
	}
}

func (r Rules) Validate() error {
	if r.GridSize <= 0 {
		return errors.WithMessagef(ErrInvalidRules, "grid size %d", r.GridSize)
	}
	if len(r.Catalog) == 0 {
		return errors.WithMessage(ErrInvalidRules, "empty catalog")
	}
	seen := make(map[string]struct{}, len(r.Catalog))
	for _, p := range r.Catalog {
		if p.Name == "" {
			return errors.WithMessage(ErrInvalidRules, "piece without name")
		}
		if _, ok := seen[p.Name]; ok {
			return errors.WithMessagef(ErrInvalidRules, "duplicate piece '%s'", p.Name)
		}
		seen[p.Name] = struct{}{}
		if p.Length <= 0 || p.Length > r.GridSize {
			return errors.WithMessagef(ErrInvalidRules, "piece '%s' has length %d", p.Name, p.Length)
		}
	}
	if r.Catalog.TotalSegments() > r.GridSize*r.GridSize {
		return errors.WithMessage(ErrInvalidRules, "catalog does not fit on the grid")
	}
	return nil
}

func (r Rules) TotalSegments() int {
	return r.Catalog.TotalSegments()
}

func (r Rules) CellCount() int {
	return r.GridSize * r.GridSize
}

// CellsFor lays out length cells from origin: columns grow for horizontal
// placements, rows grow for vertical ones.
func CellsFor(origin Coordinate, length int, orientation Orientation) []Coordinate {
	if length <= 0 {
		return nil
	}
	cells := make([]Coordinate, 0, length)
	for i := 0; i < length; i++ {
		c := origin
		if orientation == Horizontal {
			c.Col += i
		} else {
			c.Row += i
		}
		cells = append(cells, c)
	}
	return cells
}

func (r Rules) InBounds(c Coordinate) bool {
	return c.Row >= 0 && c.Row < r.GridSize && c.Col >= 0 && c.Col < r.GridSize
}

// CanPlace reports whether a piece of the given length fits at origin
// without leaving the grid or touching a cell of existing.
func (r Rules) CanPlace(origin Coordinate, length int, orientation Orientation, existing Fleet) bool {
	if !orientation.Valid() || length <= 0 || !r.InBounds(origin) {
		return false
	}
	if orientation == Horizontal && origin.Col+length > r.GridSize {
		return false
	}
	if orientation == Vertical && origin.Row+length > r.GridSize {
		return false
	}
	for _, c := range CellsFor(origin, length, orientation) {
		if existing.PieceAt(c) != nil {
			return false
		}
	}
	return true
}

// ValidateFleet checks that f holds exactly one legal piece per catalog
// entry, in catalog order, with consistent hit bookkeeping.
func (r Rules) ValidateFleet(f Fleet) error {
	if len(f) != len(r.Catalog) {
		return errors.WithMessagef(ErrInvalidFleet, "%d of %d pieces placed", len(f), len(r.Catalog))
	}
	placed := make(Fleet, 0, len(f))
	for i, p := range f {
		if p == nil {
			return errors.WithMessagef(ErrInvalidFleet, "piece #%d is missing", i)
		}
		if p.Piece != r.Catalog[i] {
			return errors.WithMessagef(ErrInvalidFleet, "piece #%d is '%s', expected '%s'",
				i, p.Piece.Name, r.Catalog[i].Name)
		}
		if !r.CanPlace(p.Origin, p.Piece.Length, p.Orientation, placed) {
			return errors.WithMessagef(ErrInvalidFleet, "piece '%s' at %s is out of bounds or overlaps",
				p.Piece.Name, p.Origin)
		}
		expected := CellsFor(p.Origin, p.Piece.Length, p.Orientation)
		if len(p.Segments) != len(expected) {
			return errors.WithMessagef(ErrInvalidFleet, "piece '%s' has %d segments", p.Piece.Name, len(p.Segments))
		}
		hits := 0
		for j, s := range p.Segments {
			if s.Cell != expected[j] {
				return errors.WithMessagef(ErrInvalidFleet, "piece '%s' segment %s is not contiguous",
					p.Piece.Name, s.Cell)
			}
			if s.Hit {
				hits++
			}
		}
		if hits != p.HitCount {
			return errors.WithMessagef(ErrInvalidFleet, "piece '%s' hit count %d does not match %d hit segments",
				p.Piece.Name, p.HitCount, hits)
		}
		placed = append(placed, p)
	}
	return nil
}
