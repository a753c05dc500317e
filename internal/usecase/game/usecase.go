package game

import (
	"context"
	"time"

	"github.com/kiryu-dev/dino-digger/internal/config"
	"github.com/kiryu-dev/dino-digger/internal/domain"
	"github.com/kiryu-dev/dino-digger/internal/engine"
	"github.com/kiryu-dev/dino-digger/pkg/utils"
	"github.com/pkg/errors"
	"go.uber.org/zap"
)

const saveResultTimeout = 5 * time.Second

type useCase struct {
	rules         engine.Rules
	placer        *engine.Placer
	strategy      *engine.Strategy
	opponentDelay time.Duration
	results       domain.ResultRepository
	logger        *zap.Logger
}

// New builds the game use case. results may be nil, then finished games
// are only logged.
func New(cfg config.GameConfig, rnd engine.Random, results domain.ResultRepository, logger *zap.Logger) useCase {
	rules := cfg.Rules()
	return useCase{
		rules:         rules,
		placer:        engine.NewPlacer(rules, rnd, engine.WithMaxAttempts(cfg.MaxPlacementAttempts)),
		strategy:      engine.NewStrategy(rnd),
		opponentDelay: cfg.OpponentDelay,
		results:       results,
		logger:        logger,
	}
}

func (u useCase) Rules() engine.Rules {
	return u.rules
}

func (u useCase) Play(ctx context.Context, client domain.Client, session *domain.GameSession) error {
	opponentMoves, err := u.resume(client, session)
	if err != nil {
		return errors.WithMessage(err, "resume session")
	}
	for {
		if opponentMoves {
			finished, err := u.opponentTurn(ctx, client, session)
			if err != nil {
				return errors.WithMessage(err, "opponent turn")
			}
			if finished {
				return nil
			}
		}
		msg, err := client.ReadMessage()
		switch {
		case errors.Is(err, domain.ErrConnectionClosed):
			u.logger.Info("client left the game", zap.String("game uuid", session.Uuid))
			return nil
		case err != nil:
			return errors.WithMessage(err, "read message from client")
		}
		opponentMoves, err = u.handleMessage(client, session, msg)
		if err != nil {
			return errors.WithMessage(err, "handle message")
		}
		if session.IsFinished() {
			return nil
		}
	}
}

// resume greets a (re)connected client with the current session state.
func (u useCase) resume(client domain.Client, session *domain.GameSession) (opponentMoves bool, err error) {
	session.Lock()
	defer session.Unlock()
	switch session.Status {
	case domain.Placing:
		return false, client.WriteMessage(domain.Message{
			Type: domain.StartSetup,
			Payload: domain.StartSetupPayload{
				Rules: u.rules,
				Setup: setupUpdate(session.Setup),
			},
		})
	case domain.InProgress:
		err := client.WriteMessage(domain.Message{
			Type: domain.BattleStarted,
			Payload: domain.BattleStartedPayload{
				Fleet: session.Battle.Fleet(engine.Human),
				Turn:  session.Battle.CurrentTurn(),
			},
		})
		return session.Battle.CurrentTurn() == engine.Opponent, err
	default:
		return false, errors.Errorf("game '%s' is already finished", session.Uuid)
	}
}

func (u useCase) handleMessage(client domain.Client, session *domain.GameSession,
	msg domain.Message) (opponentMoves bool, err error) {
	session.Lock()
	defer session.Unlock()
	switch {
	case session.Status == domain.Placing && msg.Type == domain.PlaceBone:
		err = u.placeBone(client, session, msg)
	case session.Status == domain.Placing && msg.Type == domain.PlaceRandomly:
		err = u.placeRandomly(client, session)
	case session.Status == domain.Placing && msg.Type == domain.ResetSetup:
		session.Setup.Reset()
		err = sendSetupUpdate(client, session.Setup)
	case session.Status == domain.Placing && msg.Type == domain.StartBattle:
		err = u.startBattle(client, session)
	case session.Status == domain.InProgress && msg.Type == domain.Dig:
		opponentMoves, err = u.dig(client, session, msg)
	default:
		err = errors.WithMessagef(errUnexpectedMessage, "type %d", msg.Type)
	}
	if kind, ok := errorKind(err); ok {
		u.logger.Info("rejected client request",
			zap.String("game uuid", session.Uuid), zap.String("kind", string(kind)), zap.Error(err))
		return false, sendError(client, kind)
	}
	return opponentMoves, err
}

func (u useCase) placeBone(client domain.Client, session *domain.GameSession, msg domain.Message) error {
	v, err := utils.UnmarshalJson[domain.PlaceBonePayload](msg.Payload)
	if err != nil {
		return errors.WithMessage(errUnexpectedMessage, err.Error())
	}
	if v.Orientation == "" {
		v.Orientation = engine.Horizontal
	}
	if _, err := session.Setup.Place(u.placer, v.Name, v.Origin, v.Orientation); err != nil {
		return err
	}
	return sendSetupUpdate(client, session.Setup)
}

func (u useCase) placeRandomly(client domain.Client, session *domain.GameSession) error {
	if err := session.Setup.Randomize(u.placer); err != nil {
		u.logger.Error("random placement failed", zap.String("game uuid", session.Uuid), zap.Error(err))
		return err
	}
	return sendSetupUpdate(client, session.Setup)
}

func (u useCase) startBattle(client domain.Client, session *domain.GameSession) error {
	human, err := session.Setup.Fleet()
	if err != nil {
		return err
	}
	opponent, err := u.placer.PlaceRandomly()
	if err != nil {
		u.logger.Error("computer fleet placement failed", zap.String("game uuid", session.Uuid), zap.Error(err))
		return err
	}
	battle, err := engine.NewBattleState(u.rules, human, opponent)
	if err != nil {
		return errors.WithMessage(err, "new battle state")
	}
	session.Battle = battle
	session.Status = domain.InProgress
	session.StartedAt = time.Now()
	u.logger.Info("battle started", zap.String("game uuid", session.Uuid))
	err = client.WriteMessage(domain.Message{
		Type: domain.BattleStarted,
		Payload: domain.BattleStartedPayload{
			Fleet: battle.Fleet(engine.Human),
			Turn:  battle.CurrentTurn(),
		},
	})
	if err != nil {
		return errors.WithMessage(err, "send message to client")
	}
	return nil
}

func (u useCase) dig(client domain.Client, session *domain.GameSession, msg domain.Message) (bool, error) {
	v, err := utils.UnmarshalJson[domain.DigPayload](msg.Payload)
	if err != nil {
		return false, errors.WithMessage(errUnexpectedMessage, err.Error())
	}
	outcome, err := session.Battle.ResolveShot(engine.Human, v.Cell)
	if err != nil {
		return false, err
	}
	if err := sendOutcome(client, domain.DigResult, outcome); err != nil {
		return false, err
	}
	if outcome.GameOver {
		return false, u.finish(client, session)
	}
	return true, nil
}

func (u useCase) opponentTurn(ctx context.Context, client domain.Client, session *domain.GameSession) (bool, error) {
	select {
	case <-ctx.Done():
		return true, nil
	case <-time.After(u.opponentDelay):
	}
	session.Lock()
	defer session.Unlock()
	target, err := u.strategy.NextTarget(session.Battle, engine.Opponent)
	if err != nil {
		return false, errors.WithMessage(err, "choose target")
	}
	outcome, err := session.Battle.ResolveShot(engine.Opponent, target.Cell)
	if err != nil {
		return false, errors.WithMessage(err, "resolve opponent shot")
	}
	u.logger.Debug("opponent dug",
		zap.String("game uuid", session.Uuid), zap.Any("target", target), zap.Bool("hit", outcome.Hit))
	if err := sendOutcome(client, domain.OpponentDig, outcome); err != nil {
		return false, err
	}
	if outcome.GameOver {
		return true, u.finish(client, session)
	}
	return false, nil
}

func (u useCase) finish(client domain.Client, session *domain.GameSession) error {
	session.Status = domain.Finished
	battle := session.Battle
	winner := battle.Winner()
	u.logger.Info("game finished", zap.String("game uuid", session.Uuid), zap.String("winner", string(winner)))
	u.saveResult(domain.GameResult{
		GameUuid:      session.Uuid,
		ClientUuid:    session.ClientUuid,
		Winner:        winner,
		HumanShots:    len(battle.ShotsAgainst(engine.Opponent)),
		OpponentShots: len(battle.ShotsAgainst(engine.Human)),
		StartedAt:     session.StartedAt,
		FinishedAt:    time.Now(),
	})
	err := client.WriteMessage(domain.Message{
		Type: domain.GameOver,
		Payload: domain.GameOverPayload{
			Winner:        winner,
			OpponentFleet: battle.Fleet(engine.Opponent),
		},
	})
	if err != nil {
		return errors.WithMessage(err, "send message to client")
	}
	return nil
}

func (u useCase) saveResult(result domain.GameResult) {
	if u.results == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), saveResultTimeout)
	defer cancel()
	if err := u.results.SaveResult(ctx, result); err != nil {
		u.logger.Warn("failed to save game result", zap.String("game uuid", result.GameUuid), zap.Error(err))
	}
}

func setupUpdate(setup *engine.Setup) domain.SetupUpdatePayload {
	return domain.SetupUpdatePayload{
		Placed:    setup.Placed(),
		Remaining: setup.Remaining(),
		Ready:     setup.Complete(),
	}
}

func sendSetupUpdate(client domain.Client, setup *engine.Setup) error {
	err := client.WriteMessage(domain.Message{
		Type:    domain.SetupUpdate,
		Payload: setupUpdate(setup),
	})
	if err != nil {
		return errors.WithMessage(err, "send message to client")
	}
	return nil
}

func sendOutcome(client domain.Client, msgType domain.MessageType, outcome engine.ShotOutcome) error {
	err := client.WriteMessage(domain.Message{
		Type:    msgType,
		Payload: domain.DigResultPayload{Outcome: outcome},
	})
	if err != nil {
		return errors.WithMessage(err, "send message to client")
	}
	return nil
}

func sendError(client domain.Client, kind domain.ErrorKind) error {
	err := client.WriteMessage(domain.Message{
		Type:    domain.Error,
		Payload: domain.ErrorPayload{Kind: kind},
	})
	if err != nil {
		return errors.WithMessage(err, "send message to client")
	}
	return nil
}
