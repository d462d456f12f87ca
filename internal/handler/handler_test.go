package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"netinv/internal/adapter"
	"netinv/internal/domain"
	"netinv/internal/service"
)

type stubAdapter struct {
	name    string
	result  *adapter.SourceResult
	err     error
	mu      sync.Mutex
	fetches int
}

func (s *stubAdapter) Name() string  { return s.name }
func (s *stubAdapter) Enabled() bool { return true }

func (s *stubAdapter) Fetch(ctx context.Context) (*adapter.SourceResult, error) {
	s.mu.Lock()
	s.fetches++
	s.mu.Unlock()
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

func (s *stubAdapter) fetchCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fetches
}

func newTestServer(t *testing.T, adapters ...adapter.Adapter) (*httptest.Server, *service.Coordinator) {
	t.Helper()

	coord := service.NewCoordinator(
		adapters,
		service.NewCooldown(300*time.Second),
		service.NewResultCache(),
		nil,
		service.NewEventBus(),
		5*time.Second,
	)

	mux := http.NewServeMux()
	NewInventoryHandler(coord, nil).Routes(mux)

	srv := httptest.NewServer(Chain(mux, Recover, CORS, Logger))
	t.Cleanup(srv.Close)
	return srv, coord
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var v T
	if err := json.NewDecoder(resp.Body).Decode(&v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return v
}

func TestGetDataRunsInitialScan(t *testing.T) {
	src := &stubAdapter{name: "unifi", result: &adapter.SourceResult{
		WirelessClients: []domain.WirelessClient{{MAC: "aa", Name: "phone"}},
	}}
	srv, _ := newTestServer(t, src)

	resp, err := http.Get(srv.URL + "/api/data")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decode[map[string]any](t, resp)
	clients, ok := body["wireless_clients"].([]any)
	if !ok || len(clients) != 1 {
		t.Errorf("expected 1 wireless client, got %v", body["wireless_clients"])
	}
	if body["is_cached"] != false {
		t.Errorf("initial scan must not report cached, got %v", body["is_cached"])
	}

	// second request serves the cache
	resp, err = http.Get(srv.URL + "/api/data")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	body = decode[map[string]any](t, resp)
	if body["is_cached"] != true {
		t.Errorf("expected cached response, got %v", body["is_cached"])
	}
	if src.fetchCount() != 1 {
		t.Errorf("expected cached response, got %d fetches", src.fetchCount())
	}
}

func TestGetDataInitialScanFailure(t *testing.T) {
	src := &stubAdapter{name: "unifi", err: adapter.NewSourceError("unifi", errors.New("login refused"))}
	srv, _ := newTestServer(t, src)

	resp, err := http.Get(srv.URL + "/api/data")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}
}

func TestTriggerScan(t *testing.T) {
	src := &stubAdapter{name: "portainer:main", result: &adapter.SourceResult{
		Containers: []domain.Container{{ID: "c1", State: "running"}},
	}}
	srv, _ := newTestServer(t, src)

	resp, err := http.Post(srv.URL+"/api/scan", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decode[scanResponse](t, resp)
	if body.Status != "completed" || body.Summary.TotalContainers != 1 {
		t.Errorf("unexpected scan response: %+v", body)
	}

	t.Run("cooldown rejects the second trigger", func(t *testing.T) {
		resp, err := http.Post(srv.URL+"/api/scan", "application/json", nil)
		if err != nil {
			t.Fatalf("request failed: %v", err)
		}
		if resp.StatusCode != http.StatusTooManyRequests {
			t.Fatalf("expected 429, got %d", resp.StatusCode)
		}
		body := decode[cooldownResponse](t, resp)
		if body.CooldownRemaining <= 0 || body.CooldownRemaining > 300 {
			t.Errorf("unexpected cooldown_remaining: %d", body.CooldownRemaining)
		}
	})
}

func TestTriggerScanAllFailed(t *testing.T) {
	src := &stubAdapter{name: "proxmox:pve", err: adapter.NewSourceError("proxmox:pve", errors.New("connection refused"))}
	srv, _ := newTestServer(t, src)

	resp, err := http.Post(srv.URL+"/api/scan", "application/json", nil)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadGateway {
		t.Errorf("expected 502, got %d", resp.StatusCode)
	}
}

func TestGetStatus(t *testing.T) {
	src := &stubAdapter{name: "unifi", result: &adapter.SourceResult{}}
	srv, _ := newTestServer(t, src)

	resp, err := http.Get(srv.URL + "/api/status")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	body := decode[map[string]any](t, resp)
	if body["state"] != "idle" {
		t.Errorf("expected idle state, got %v", body["state"])
	}
	if body["can_scan"] != true {
		t.Errorf("expected can_scan true, got %v", body["can_scan"])
	}
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/health")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	body := decode[map[string]any](t, resp)
	if body["status"] != "ok" {
		t.Errorf("unexpected health body: %v", body)
	}
}

func TestCORSPreflight(t *testing.T) {
	srv, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, srv.URL+"/api/data", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Errorf("expected 204, got %d", resp.StatusCode)
	}
	if resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Error("missing CORS header")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	srv, _ := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/scan")
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", resp.StatusCode)
	}
}
