package ws

import (
	"fmt"
	"net/http"
	"strings"

	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/dino-digger/internal/domain"
	"go.uber.org/zap"
)

func (s *server) serveWs(w http.ResponseWriter, r *http.Request) {
	clientUuid := strings.TrimSpace(r.Header.Get(domain.ClientUuidHeader))
	if clientUuid == "" {
		s.logger.Warn(fmt.Sprintf("empty '%s' header", domain.ClientUuidHeader))
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	masterHost := s.masterHost.Load()
	role := domain.ServerRole(s.role.Load())
	s.logger.Info("new connection", zap.String("master host", masterHost), zap.String("role", string(role)))
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Error("upgrade connection", zap.Error(err))
		return
	}
	client := newClient(conn, clientUuid)
	defer client.Close()
	switch role {
	case domain.ReserveServer:
		s.logger.Info("request client to switch server", zap.String("master host", masterHost))
		err := client.WriteMessage(domain.Message{
			Type:    domain.SwitchServer,
			Payload: domain.SwitchServerPayload{MasterServer: masterHost},
		})
		if err != nil {
			s.logger.Error("write switch server message", zap.Error(err))
		}
	case domain.MasterServer:
		if err := s.hub.Handle(r.Context(), client); err != nil {
			s.logger.Error("handle client", zap.String("client uuid", clientUuid), zap.Error(err))
		}
	default:
		s.logger.Warn("the client connected before the server role was determined")
	}
}

func (s *server) healthCheck(w http.ResponseWriter, _ *http.Request) {
	resp := domain.HealthCheckResponse{
		MasterServer: s.masterHost.Load(),
		Role:         domain.ServerRole(s.role.Load()),
	}
	s.writeJson(w, resp)
}

func (s *server) applyStates(w http.ResponseWriter, r *http.Request) {
	req := make(map[string]*domain.GameSession)
	if err := jsoniter.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		s.logger.Warn("decode states", zap.Error(err))
		return
	}
	s.hub.ApplyStates(r.Context(), req)
}

func (s *server) defineMaster(w http.ResponseWriter, r *http.Request) {
	req := new(domain.DefineMasterRequest)
	if err := jsoniter.NewDecoder(r.Body).Decode(req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		s.logger.Warn("decode define master request", zap.Error(err))
		return
	}
	resp, err := s.sync.DefineMasterServer(r.Context(), req)
	if err != nil {
		w.WriteHeader(http.StatusConflict)
		s.logger.Warn("define master server", zap.Error(err))
		return
	}
	s.writeJson(w, resp)
}

func (s *server) stats(w http.ResponseWriter, r *http.Request) {
	if s.results == nil {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	stats, err := s.results.Stats(r.Context())
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		s.logger.Error("load stats", zap.Error(err))
		return
	}
	s.writeJson(w, stats)
}

func (s *server) writeJson(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := jsoniter.NewEncoder(w).Encode(v); err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		s.logger.Warn("encode response", zap.Error(err))
	}
}
