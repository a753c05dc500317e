package domain

import (
	"context"
	"sync"
	"time"

	"github.com/kiryu-dev/dino-digger/internal/engine"
)

type status byte

const (
	Placing = status(iota)
	InProgress
	Finished
)

// GameSession is one player's game against the computer.
type GameSession struct {
	Uuid       string
	ClientUuid string
	Status     status
	Setup      *engine.Setup
	Battle     *engine.BattleState
	StartedAt  time.Time
	// mu serialises the session between a reconnecting client and a sync.
	mu sync.Mutex
}

func NewGameSession(uuid string, clientUuid string, rules engine.Rules) *GameSession {
	return &GameSession{
		Uuid:       uuid,
		ClientUuid: clientUuid,
		Status:     Placing,
		Setup:      engine.NewSetup(rules),
	}
}

func (s *GameSession) Lock() {
	s.mu.Lock()
}

func (s *GameSession) Unlock() {
	s.mu.Unlock()
}

type GameUseCase interface {
	Play(ctx context.Context, client Client, session *GameSession) error
}

// Snapshot copies the session for publishing to other servers.
func (s *GameSession) Snapshot() *GameSession {
	s.Lock()
	defer s.Unlock()
	cp := &GameSession{
		Uuid:       s.Uuid,
		ClientUuid: s.ClientUuid,
		Status:     s.Status,
		StartedAt:  s.StartedAt,
	}
	if s.Setup != nil {
		cp.Setup = s.Setup.Clone()
	}
	if s.Battle != nil {
		cp.Battle = s.Battle.Clone()
	}
	return cp
}

func (s *GameSession) IsFinished() bool {
	s.Lock()
	defer s.Unlock()
	return s.Status == Finished
}
