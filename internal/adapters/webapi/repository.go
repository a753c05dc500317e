package webapi

import (
	"bytes"
	"context"
	"net/http"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/kiryu-dev/dino-digger/internal/domain"
	"github.com/pkg/errors"
)

const (
	clientTimeout        = 5 * time.Second
	syncStatesEndpoint   = "/sync"
	healthCheckEndpoint  = "/health"
	defineMasterEndpoint = "/master"
)

type repository struct {
	cli *http.Client
}

func New() repository {
	return repository{
		cli: &http.Client{Timeout: clientTimeout},
	}
}

func (r repository) Sync(ctx context.Context, addr string, states map[string]*domain.GameSession) error {
	body, err := jsoniter.Marshal(states)
	if err != nil {
		return errors.WithMessage(err, "marshal json body")
	}
	resp, err := r.do(ctx, http.MethodPost, addr+syncStatesEndpoint, body)
	if err != nil {
		return err
	}
	_ = resp.Body.Close()
	return nil
}

func (r repository) HealthCheck(ctx context.Context, addr string) (*domain.HealthCheckResponse, error) {
	resp, err := r.do(ctx, http.MethodGet, addr+healthCheckEndpoint, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	result := new(domain.HealthCheckResponse)
	if err := jsoniter.NewDecoder(resp.Body).Decode(result); err != nil {
		return nil, errors.WithMessage(err, "decode json response body")
	}
	return result, nil
}

func (r repository) DefineMaster(ctx context.Context, req domain.DefineMasterRequest,
	addr string) (domain.DefineMasterResponse, error) {
	body, err := jsoniter.Marshal(req)
	if err != nil {
		return domain.DefineMasterResponse{}, errors.WithMessage(err, "marshal json body")
	}
	resp, err := r.do(ctx, http.MethodPost, addr+defineMasterEndpoint, body)
	if err != nil {
		return domain.DefineMasterResponse{}, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	var result domain.DefineMasterResponse
	if err := jsoniter.NewDecoder(resp.Body).Decode(&result); err != nil {
		return domain.DefineMasterResponse{}, errors.WithMessage(err, "decode json response body")
	}
	return result, nil
}

func (r repository) do(ctx context.Context, method string, url string, body []byte) (*http.Response, error) {
	request, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return nil, errors.WithMessagef(err, "new %s request", method)
	}
	resp, err := r.cli.Do(request)
	if err != nil {
		return nil, errors.WithMessagef(err, "call http endpoint '%s'", url)
	}
	if resp.StatusCode != http.StatusOK {
		_ = resp.Body.Close()
		return nil, errors.Errorf("unexpected response status '%s'", resp.Status)
	}
	return resp, nil
}
