package hub

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/kiryu-dev/dino-digger/internal/domain"
	"github.com/kiryu-dev/dino-digger/internal/engine"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubClient string

func (c stubClient) WriteMessage(domain.Message) error { return nil }

func (c stubClient) ReadMessage() (domain.Message, error) {
	return domain.Message{}, domain.ErrConnectionClosed
}

func (c stubClient) Uuid() string { return string(c) }

// recordingGame remembers the sessions it was asked to play and optionally
// finishes them.
type recordingGame struct {
	mu       sync.Mutex
	sessions []*domain.GameSession
	finish   bool
}

func (g *recordingGame) Play(_ context.Context, _ domain.Client, session *domain.GameSession) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sessions = append(g.sessions, session)
	if g.finish {
		session.Lock()
		session.Status = domain.Finished
		session.Unlock()
	}
	return nil
}

func TestHandleResumesActiveGame(t *testing.T) {
	game := &recordingGame{}
	u := New(game, engine.DefaultRules(), time.Hour, zap.NewNop())
	defer u.Stop()

	require.NoError(t, u.Handle(context.Background(), stubClient("alice")))
	require.NoError(t, u.Handle(context.Background(), stubClient("alice")))
	require.NoError(t, u.Handle(context.Background(), stubClient("bob")))

	require.Len(t, game.sessions, 3)
	assert.Same(t, game.sessions[0], game.sessions[1])
	assert.NotSame(t, game.sessions[0], game.sessions[2])
	assert.Equal(t, "bob", game.sessions[2].ClientUuid)
	assert.Zero(t, u.Players())
}

func TestHandleStartsNewGameAfterFinish(t *testing.T) {
	game := &recordingGame{finish: true}
	u := New(game, engine.DefaultRules(), time.Hour, zap.NewNop())
	defer u.Stop()

	require.NoError(t, u.Handle(context.Background(), stubClient("alice")))
	require.NoError(t, u.Handle(context.Background(), stubClient("alice")))
	require.Len(t, game.sessions, 2)
	assert.NotEqual(t, game.sessions[0].Uuid, game.sessions[1].Uuid)
}

func TestGamesStatesPublishesSnapshots(t *testing.T) {
	game := &recordingGame{}
	u := New(game, engine.DefaultRules(), 10*time.Millisecond, zap.NewNop())
	defer u.Stop()

	require.NoError(t, u.Handle(context.Background(), stubClient("alice")))
	session := game.sessions[0]

	select {
	case states := <-u.GamesStates():
		require.Len(t, states, 1)
		snapshot := states[session.Uuid]
		require.NotNil(t, snapshot)
		assert.NotSame(t, session, snapshot)
		assert.Equal(t, "alice", snapshot.ClientUuid)
		assert.Equal(t, domain.Placing, snapshot.Status)
	case <-time.After(time.Second):
		t.Fatal("no states published")
	}
}

func TestApplyStates(t *testing.T) {
	game := &recordingGame{}
	u := New(game, engine.DefaultRules(), time.Hour, zap.NewNop())
	defer u.Stop()

	restored := domain.NewGameSession("restored", "carol", engine.DefaultRules())
	broken := domain.NewGameSession("broken", "dave", engine.DefaultRules())
	broken.Status = domain.InProgress
	u.ApplyStates(context.Background(), map[string]*domain.GameSession{
		restored.Uuid: restored,
		broken.Uuid:   broken,
	})

	require.NoError(t, u.Handle(context.Background(), stubClient("carol")))
	require.NoError(t, u.Handle(context.Background(), stubClient("dave")))
	assert.Same(t, restored, game.sessions[0])
	assert.NotEqual(t, "broken", game.sessions[1].Uuid)
}
