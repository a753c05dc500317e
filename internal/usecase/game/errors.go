package game

import (
	"github.com/kiryu-dev/dino-digger/internal/domain"
	"github.com/kiryu-dev/dino-digger/internal/engine"
	"github.com/pkg/errors"
)

var errUnexpectedMessage = errors.New("unexpected message type")

// errorKind maps an engine rejection to the kind reported to the client.
// ok is false for errors that must end the session.
func errorKind(err error) (kind domain.ErrorKind, ok bool) {
	switch {
	case errors.Is(err, engine.ErrInvalidPlacement):
		return domain.InvalidPlacement, true
	case errors.Is(err, engine.ErrPlacementExhausted):
		return domain.PlacementExhausted, true
	case errors.Is(err, engine.ErrFleetIncomplete):
		return domain.FleetIncomplete, true
	case errors.Is(err, engine.ErrUnknownPiece):
		return domain.UnknownPiece, true
	case errors.Is(err, engine.ErrPieceAlreadyPlaced):
		return domain.PieceAlreadyPlaced, true
	case errors.Is(err, engine.ErrIllegalShot):
		return domain.IllegalShot, true
	case errors.Is(err, errUnexpectedMessage):
		return domain.UnexpectedMessage, true
	default:
		return "", false
	}
}
