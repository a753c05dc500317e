package engine

import (
	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
)

type battleStateJson struct {
	Rules         Rules        `json:"rules"`
	HumanFleet    Fleet        `json:"humanFleet"`
	OpponentFleet Fleet        `json:"opponentFleet"`
	ShotsOnHuman  []ShotRecord `json:"shotsOnHuman"`
	ShotsOnOpp    []ShotRecord `json:"shotsOnOpponent"`
	Turn          Side         `json:"turn"`
	Over          bool         `json:"over"`
	Winner        Side         `json:"winner"`
}

func (s *BattleState) MarshalJSON() ([]byte, error) {
	return jsoniter.Marshal(battleStateJson{
		Rules:         s.rules,
		HumanFleet:    s.fleets[Human],
		OpponentFleet: s.fleets[Opponent],
		ShotsOnHuman:  s.shots[Human],
		ShotsOnOpp:    s.shots[Opponent],
		Turn:          s.turn,
		Over:          s.over,
		Winner:        s.winner,
	})
}

// UnmarshalJSON restores a snapshot and re-checks every invariant the
// resolver maintains: fleets, shot records against the hit segments, turn
// and the game result.
func (s *BattleState) UnmarshalJSON(data []byte) error {
	var v battleStateJson
	if err := jsoniter.Unmarshal(data, &v); err != nil {
		return errors.WithMessage(err, "unmarshal battle state")
	}
	if err := v.Rules.Validate(); err != nil {
		return err
	}
	if err := v.Rules.ValidateFleet(v.HumanFleet); err != nil {
		return errors.WithMessage(err, "human fleet")
	}
	if err := v.Rules.ValidateFleet(v.OpponentFleet); err != nil {
		return errors.WithMessage(err, "opponent fleet")
	}
	if err := v.Rules.validateShots(v.HumanFleet, v.ShotsOnHuman); err != nil {
		return errors.WithMessage(err, "shots on human")
	}
	if err := v.Rules.validateShots(v.OpponentFleet, v.ShotsOnOpp); err != nil {
		return errors.WithMessage(err, "shots on opponent")
	}
	if v.Turn != Human && v.Turn != Opponent {
		return errors.WithMessagef(ErrInvalidState, "unexpected turn '%s'", v.Turn)
	}
	if err := v.validateResult(); err != nil {
		return err
	}
	*s = BattleState{
		rules: v.Rules,
		fleets: map[Side]Fleet{
			Human:    v.HumanFleet,
			Opponent: v.OpponentFleet,
		},
		shots: map[Side][]ShotRecord{
			Human:    v.ShotsOnHuman,
			Opponent: v.ShotsOnOpp,
		},
		turn:   v.Turn,
		over:   v.Over,
		winner: v.Winner,
	}
	return nil
}

// validateShots checks that records are unique in-bounds cells and that
// hit records and hit segments match one to one.
func (r Rules) validateShots(f Fleet, shots []ShotRecord) error {
	seen := make(map[Coordinate]struct{}, len(shots))
	hits := 0
	for _, rec := range shots {
		if !r.InBounds(rec.Cell) {
			return errors.WithMessagef(ErrInvalidState, "shot %s is out of bounds", rec.Cell)
		}
		if _, ok := seen[rec.Cell]; ok {
			return errors.WithMessagef(ErrInvalidState, "duplicate shot %s", rec.Cell)
		}
		seen[rec.Cell] = struct{}{}
		piece := f.PieceAt(rec.Cell)
		switch rec.Result {
		case Miss:
			if piece != nil {
				return errors.WithMessagef(ErrInvalidState, "miss recorded on '%s' at %s", piece.Piece.Name, rec.Cell)
			}
		case Hit:
			if piece == nil || piece.Piece.Name != rec.Piece || !piece.Segments[piece.segmentIndex(rec.Cell)].Hit {
				return errors.WithMessagef(ErrInvalidState, "hit at %s does not match the fleet", rec.Cell)
			}
			hits++
		default:
			return errors.WithMessagef(ErrInvalidState, "unexpected result '%s' at %s", rec.Result, rec.Cell)
		}
	}
	if hits != f.Hits() {
		return errors.WithMessagef(ErrInvalidState, "%d hit records for %d hit segments", hits, f.Hits())
	}
	return nil
}

func (v battleStateJson) validateResult() error {
	total := v.Rules.TotalSegments()
	humanLost := v.HumanFleet.Hits() == total
	opponentLost := v.OpponentFleet.Hits() == total
	switch {
	case humanLost && opponentLost:
		return errors.WithMessage(ErrInvalidState, "both fleets are excavated")
	case !humanLost && !opponentLost:
		if v.Over || v.Winner != NoSide {
			return errors.WithMessagef(ErrInvalidState, "game over with winner '%s' before a fleet is excavated", v.Winner)
		}
	default:
		winner := Human
		if humanLost {
			winner = Opponent
		}
		if !v.Over || v.Winner != winner {
			return errors.WithMessagef(ErrInvalidState, "excavated fleet requires winner '%s', got '%s'", winner, v.Winner)
		}
	}
	return nil
}

type setupJson struct {
	Rules  Rules `json:"rules"`
	Placed Fleet `json:"placed"`
}

func (s *Setup) MarshalJSON() ([]byte, error) {
	return jsoniter.Marshal(setupJson{
		Rules:  s.rules,
		Placed: s.Placed(),
	})
}

// UnmarshalJSON replays the placements against the catalog, so a snapshot
// can only hold pieces a Setup could have placed itself.
func (s *Setup) UnmarshalJSON(data []byte) error {
	var v setupJson
	if err := jsoniter.Unmarshal(data, &v); err != nil {
		return errors.WithMessage(err, "unmarshal setup")
	}
	if err := v.Rules.Validate(); err != nil {
		return err
	}
	restored := NewSetup(v.Rules)
	for _, p := range v.Placed {
		if p == nil {
			return errors.WithMessage(ErrInvalidPlacement, "empty restored piece")
		}
		idx := v.Rules.Catalog.Index(p.Piece.Name)
		if idx < 0 {
			return errors.WithMessagef(ErrUnknownPiece, "'%s'", p.Piece.Name)
		}
		if p.Piece != v.Rules.Catalog[idx] {
			return errors.WithMessagef(ErrInvalidPlacement, "restored piece '%s' has length %d, expected %d",
				p.Piece.Name, p.Piece.Length, v.Rules.Catalog[idx].Length)
		}
		if restored.placed[idx] != nil {
			return errors.WithMessagef(ErrPieceAlreadyPlaced, "'%s'", p.Piece.Name)
		}
		if !v.Rules.CanPlace(p.Origin, p.Piece.Length, p.Orientation, restored.Placed()) {
			return errors.WithMessagef(ErrInvalidPlacement, "restored piece '%s'", p.Piece.Name)
		}
		restored.placed[idx] = newPlacedPiece(v.Rules.Catalog[idx], p.Origin, p.Orientation)
	}
	*s = *restored
	return nil
}
