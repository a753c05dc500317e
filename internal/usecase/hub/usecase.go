package hub

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiryu-dev/dino-digger/internal/domain"
	"github.com/kiryu-dev/dino-digger/internal/engine"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

type useCase struct {
	game       domain.GameUseCase
	rules      engine.Rules
	sessions   map[string]*domain.GameSession
	statesChan chan map[string]*domain.GameSession
	ticker     *time.Ticker
	players    *atomic.Int64
	mu         *sync.RWMutex
	done       chan struct{}
	logger     *zap.Logger
}

func New(game domain.GameUseCase, rules engine.Rules, syncPeriod time.Duration, logger *zap.Logger) *useCase {
	u := &useCase{
		game:       game,
		rules:      rules,
		sessions:   make(map[string]*domain.GameSession),
		statesChan: make(chan map[string]*domain.GameSession),
		ticker:     time.NewTicker(syncPeriod),
		players:    atomic.NewInt64(0),
		mu:         &sync.RWMutex{},
		done:       make(chan struct{}),
		logger:     logger,
	}
	go u.syncStates()
	return u
}

func (u *useCase) Handle(ctx context.Context, client domain.Client) error {
	session, ok := u.continueActiveGame(client)
	if !ok {
		session = u.createGame(client.Uuid())
	}
	u.logger.Info("player joined", zap.String("game uuid", session.Uuid), zap.Int64("players", u.players.Inc()))
	defer u.players.Dec()
	if err := u.game.Play(ctx, client, session); err != nil {
		return errors.WithMessage(err, "play game")
	}
	return nil
}

func (u *useCase) createGame(clientUuid string) *domain.GameSession {
	u.mu.Lock()
	defer u.mu.Unlock()
	session := domain.NewGameSession(uuid.NewString(), clientUuid, u.rules)
	u.sessions[session.Uuid] = session
	return session
}

func (u *useCase) continueActiveGame(client domain.Client) (*domain.GameSession, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	clientUuid := client.Uuid()
	for gameUuid, session := range u.sessions {
		if session.ClientUuid != clientUuid || session.IsFinished() {
			continue
		}
		u.logger.Info("found active game", zap.String("game uuid", gameUuid))
		return session, true
	}
	return nil, false
}

func (u *useCase) syncStates() {
	defer u.ticker.Stop()
	for {
		select {
		case <-u.done:
			return
		case <-u.ticker.C:
		}
		states := u.snapshot()
		if len(states) == 0 {
			continue
		}
		select {
		case u.statesChan <- states:
		case <-u.done:
			return
		}
	}
}

// snapshot drops finished games and copies the rest.
func (u *useCase) snapshot() map[string]*domain.GameSession {
	u.mu.Lock()
	defer u.mu.Unlock()
	states := make(map[string]*domain.GameSession, len(u.sessions))
	for gameUuid, session := range u.sessions {
		if session.IsFinished() {
			delete(u.sessions, gameUuid)
			continue
		}
		states[gameUuid] = session.Snapshot()
	}
	return states
}

func (u *useCase) GamesStates() <-chan map[string]*domain.GameSession {
	return u.statesChan
}

func (u *useCase) ApplyStates(_ context.Context, states map[string]*domain.GameSession) {
	u.mu.Lock()
	defer u.mu.Unlock()
	for gameUuid, session := range states {
		if session == nil || session.Setup == nil {
			continue
		}
		if session.Status == domain.InProgress && session.Battle == nil {
			continue
		}
		u.sessions[gameUuid] = session
	}
	u.logger.Info("applied states", zap.Int("received", len(states)), zap.Int("sessions", len(u.sessions)))
}

func (u *useCase) Players() int64 {
	return u.players.Load()
}

func (u *useCase) Stop() {
	close(u.done)
}
