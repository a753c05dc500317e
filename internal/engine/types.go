package engine

import (
	"fmt"
)

type Coordinate struct {
	Row int `json:"row"`
	Col int `json:"col"`
}

func (c Coordinate) String() string {
	return fmt.Sprintf("(%d,%d)", c.Row, c.Col)
}

// Neighbors returns the orthogonal neighbours in up, down, left, right order.
// Bounds are not checked.
func (c Coordinate) Neighbors() [4]Coordinate {
	return [4]Coordinate{
		{Row: c.Row - 1, Col: c.Col},
		{Row: c.Row + 1, Col: c.Col},
		{Row: c.Row, Col: c.Col - 1},
		{Row: c.Row, Col: c.Col + 1},
	}
}

type Orientation string

const (
	Horizontal = Orientation("horizontal")
	Vertical   = Orientation("vertical")
)

func (o Orientation) Valid() bool {
	return o == Horizontal || o == Vertical
}

type Side string

const (
	NoSide   = Side("")
	Human    = Side("human")
	Opponent = Side("opponent")
)

func (s Side) Other() Side {
	switch s {
	case Human:
		return Opponent
	case Opponent:
		return Human
	default:
		return NoSide
	}
}

type Piece struct {
	Name   string `json:"name" yaml:"name"`
	Length int    `json:"length" yaml:"length"`
}

type Catalog []Piece

func DefaultCatalog() Catalog {
	return Catalog{
		{Name: "T-Rex", Length: 5},
		{Name: "Stegosaurus", Length: 4},
		{Name: "Triceratops", Length: 3},
		{Name: "Velociraptor", Length: 3},
		{Name: "Compsognathus", Length: 2},
	}
}

func (c Catalog) TotalSegments() int {
	total := 0
	for _, p := range c {
		total += p.Length
	}
	return total
}

// Index returns the catalog position of the named piece or -1.
func (c Catalog) Index(name string) int {
	for i, p := range c {
		if p.Name == name {
			return i
		}
	}
	return -1
}

type ShotResult string

const (
	Miss = ShotResult("miss")
	Hit  = ShotResult("hit")
)

type ShotRecord struct {
	Cell   Coordinate `json:"cell"`
	Result ShotResult `json:"result"`
	Piece  string     `json:"piece,omitempty"`
	Hunted bool       `json:"hunted,omitempty"`
}

// ShotOutcome is everything a caller learns from a resolved shot.
type ShotOutcome struct {
	Side      Side       `json:"side"`
	Cell      Coordinate `json:"cell"`
	Hit       bool       `json:"hit"`
	Destroyed *Piece     `json:"destroyed,omitempty"`
	GameOver  bool       `json:"gameOver"`
	Winner    Side       `json:"winner,omitempty"`
}

type Segment struct {
	Cell Coordinate `json:"cell"`
	Hit  bool       `json:"hit"`
}

type PlacedPiece struct {
	Piece       Piece       `json:"piece"`
	Origin      Coordinate  `json:"origin"`
	Orientation Orientation `json:"orientation"`
	Segments    []Segment   `json:"segments"`
	HitCount    int         `json:"hitCount"`
}

func newPlacedPiece(piece Piece, origin Coordinate, orientation Orientation) *PlacedPiece {
	cells := CellsFor(origin, piece.Length, orientation)
	segments := make([]Segment, 0, len(cells))
	for _, c := range cells {
		segments = append(segments, Segment{Cell: c})
	}
	return &PlacedPiece{
		Piece:       piece,
		Origin:      origin,
		Orientation: orientation,
		Segments:    segments,
	}
}

func (p *PlacedPiece) Cells() []Coordinate {
	cells := make([]Coordinate, 0, len(p.Segments))
	for _, s := range p.Segments {
		cells = append(cells, s.Cell)
	}
	return cells
}

func (p *PlacedPiece) Occupies(c Coordinate) bool {
	return p.segmentIndex(c) >= 0
}

func (p *PlacedPiece) Destroyed() bool {
	return p.HitCount == p.Piece.Length
}

func (p *PlacedPiece) segmentIndex(c Coordinate) int {
	for i, s := range p.Segments {
		if s.Cell == c {
			return i
		}
	}
	return -1
}

func (p *PlacedPiece) clone() *PlacedPiece {
	cp := *p
	cp.Segments = append([]Segment(nil), p.Segments...)
	return &cp
}

// Fleet holds one side's placed pieces in catalog order.
type Fleet []*PlacedPiece

func (f Fleet) Clone() Fleet {
	if f == nil {
		return nil
	}
	cp := make(Fleet, 0, len(f))
	for _, p := range f {
		cp = append(cp, p.clone())
	}
	return cp
}

// PieceAt returns the piece occupying c, if any.
func (f Fleet) PieceAt(c Coordinate) *PlacedPiece {
	for _, p := range f {
		if p.Occupies(c) {
			return p
		}
	}
	return nil
}

func (f Fleet) OccupiedCells() int {
	total := 0
	for _, p := range f {
		total += len(p.Segments)
	}
	return total
}

func (f Fleet) Hits() int {
	total := 0
	for _, p := range f {
		total += p.HitCount
	}
	return total
}
