package domain

import (
	"github.com/kiryu-dev/dino-digger/internal/engine"
	"github.com/pkg/errors"
)

var (
	ErrConnectionClosed = errors.New("connection closed")
	ErrEmptyMessage     = errors.New("empty message")
)

const (
	ClientUuidHeader = "X-Client-Key"
)

type MessageType byte

const (
	StartSetup = MessageType(iota)
	PlaceBone
	PlaceRandomly
	ResetSetup
	SetupUpdate
	StartBattle
	BattleStarted
	Dig
	DigResult
	OpponentDig
	GameOver
	Error
	SwitchServer
)

type Message struct {
	Type    MessageType
	Payload any
}

type StartSetupPayload struct {
	Rules engine.Rules
	Setup SetupUpdatePayload
}

type PlaceBonePayload struct {
	Name        string
	Origin      engine.Coordinate
	Orientation engine.Orientation
}

type SetupUpdatePayload struct {
	Placed    engine.Fleet
	Remaining []engine.Piece
	Ready     bool
}

type BattleStartedPayload struct {
	Fleet engine.Fleet
	Turn  engine.Side
}

type DigPayload struct {
	Cell engine.Coordinate
}

type DigResultPayload struct {
	Outcome engine.ShotOutcome
}

type GameOverPayload struct {
	Winner engine.Side
	// OpponentFleet is revealed once the game is over.
	OpponentFleet engine.Fleet
}

type ErrorKind string

const (
	InvalidPlacement   = ErrorKind("invalid_placement")
	PlacementExhausted = ErrorKind("placement_exhausted")
	FleetIncomplete    = ErrorKind("fleet_incomplete")
	UnknownPiece       = ErrorKind("unknown_piece")
	PieceAlreadyPlaced = ErrorKind("piece_already_placed")
	IllegalShot        = ErrorKind("illegal_shot")
	UnexpectedMessage  = ErrorKind("unexpected_message")
)

type ErrorPayload struct {
	Kind ErrorKind
}

type SwitchServerPayload struct {
	MasterServer string
}

type Client interface {
	WriteMessage(msg Message) error
	ReadMessage() (Message, error)
	Uuid() string
}
