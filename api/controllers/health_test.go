package controllers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/arbrepalabres/backend/pkg/config"
)

type fakePinger struct {
	err error
}

func (p *fakePinger) Ping(ctx context.Context) error {
	return p.err
}

func TestHealthLive(t *testing.T) {
	cfg := &config.Config{}
	cfg.App.Env = "test"

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	resp := httptest.NewRecorder()
	HealthLive(cfg)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if resp.Header().Get("X-Palabres-Env") != "test" {
		t.Fatal("missing env header")
	}
}

func TestHealthReadyAllUp(t *testing.T) {
	cfg := &config.Config{}
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()

	HealthReady(cfg, testLogger(), &fakePinger{}, &fakePinger{}, nil)(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d: %s", resp.Code, resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"status":"ready"`) {
		t.Fatalf("expected ready status: %s", resp.Body.String())
	}
}

func TestHealthReadyReportsDownComponent(t *testing.T) {
	cfg := &config.Config{}
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	resp := httptest.NewRecorder()

	HealthReady(cfg, testLogger(), &fakePinger{}, &fakePinger{err: errors.New("connection refused")}, nil)(resp, req)

	if resp.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 got %d", resp.Code)
	}
	if !strings.Contains(resp.Body.String(), `"redis":"down"`) {
		t.Fatalf("expected redis down: %s", resp.Body.String())
	}
	if !strings.Contains(resp.Body.String(), `"db":"up"`) {
		t.Fatalf("expected db up: %s", resp.Body.String())
	}
}
