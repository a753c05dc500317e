package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/kiryu-dev/dino-digger/internal/domain"
	"go.uber.org/atomic"
	"go.uber.org/zap"
)

const shutdownTimeout = 5 * time.Second

type server struct {
	srv        *http.Server
	hub        domain.HubUseCase
	sync       domain.SyncUseCase
	results    domain.ResultRepository
	role       *atomic.String
	masterHost *atomic.String
	upgrader   websocket.Upgrader
	logger     *zap.Logger
	done       chan struct{}
}

// New builds the game server. results may be nil when no database is
// configured.
func New(addr string, hub domain.HubUseCase, sync domain.SyncUseCase, results domain.ResultRepository,
	logger *zap.Logger) *server {
	s := &server{
		hub:        hub,
		sync:       sync,
		results:    results,
		role:       atomic.NewString(""),
		masterHost: atomic.NewString(""),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
		done:   make(chan struct{}),
	}
	s.srv = &http.Server{Addr: addr, Handler: s.router()}
	return s
}

func (s *server) ListenAndServe(ctx context.Context) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-s.done:
			cancel()
		case <-ctx.Done():
		}
	}()
	go func() {
		s.logger.Info("starting listening address: " + s.srv.Addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("listen and serve", zap.Error(err))
		}
	}()
	go s.sync.Sync(ctx, s.hub.GamesStates())
	go s.sync.DefineServerRole(ctx, "")
	for {
		select {
		case info := <-s.sync.Chan():
			s.logger.Info("server info", zap.Any("info", info))
			s.masterHost.Store(info.MasterServerName)
			s.role.Store(string(info.ServerRole))
			if info.ServerRole != domain.ReserveServer {
				continue
			}
			if err := s.sync.CheckMasterHealth(ctx); err != nil {
				s.logger.Error("check master health", zap.Error(err))
			}
		case <-ctx.Done():
			return
		}
	}
}

func (s *server) Shutdown() error {
	close(s.done)
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return s.srv.Shutdown(ctx)
}

func (s *server) router() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/game", s.serveWs)
	r.HandleFunc("/health", s.healthCheck).Methods(http.MethodGet)
	r.HandleFunc("/sync", s.applyStates).Methods(http.MethodPost)
	r.HandleFunc("/master", s.defineMaster).Methods(http.MethodPost)
	r.HandleFunc("/stats", s.stats).Methods(http.MethodGet)
	return r
}
