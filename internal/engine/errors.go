package engine

import (
	"github.com/pkg/errors"
)

var (
	ErrInvalidRules       = errors.New("invalid rules")
	ErrInvalidPlacement   = errors.New("invalid placement")
	ErrPlacementExhausted = errors.New("placement attempts exhausted")
	ErrInvalidFleet       = errors.New("invalid fleet")
	ErrFleetIncomplete    = errors.New("fleet is incomplete")
	ErrUnknownPiece       = errors.New("unknown piece")
	ErrPieceAlreadyPlaced = errors.New("piece is already placed")
	ErrBoardExhausted     = errors.New("no cells left to shoot")
	ErrInvalidState       = errors.New("invalid battle state")
)

var (
	ErrIllegalShot = errors.New("illegal shot")
	ErrGameOver    = errors.WithMessage(ErrIllegalShot, "game is over")
	ErrNotYourTurn = errors.WithMessage(ErrIllegalShot, "not this side's turn")
	ErrAlreadyShot = errors.WithMessage(ErrIllegalShot, "cell is already shot")
	ErrOutOfBounds = errors.WithMessage(ErrIllegalShot, "cell is out of bounds")
)
