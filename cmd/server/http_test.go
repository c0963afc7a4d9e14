package main

import (
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"vacuumsim.ai/internal/persistence/snapshot"
	"vacuumsim.ai/internal/sim/world"
)

func newTestWorld(t *testing.T) *world.World {
	t.Helper()
	cfg := world.DefaultConfig("srv-test", 11)
	cfg.TickRateHz = 100
	w, err := world.New(cfg)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return w
}

func TestBuildMux_HealthAndMetrics(t *testing.T) {
	w := newTestWorld(t)
	w.StepOnce(nil)
	mux := buildMux(w, nil, log.New(io.Discard, "", 0), httpOptions{})

	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	if rr.Code != 200 || rr.Body.String() != "ok" {
		t.Fatalf("healthz: %d %q", rr.Code, rr.Body.String())
	}

	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rr.Body.String()
	for _, want := range []string{
		`vacuumsim_world_tick{world="srv-test"} 1`,
		`vacuumsim_debris_remaining{world="srv-test"}`,
		`vacuumsim_controller_phase{world="srv-test",phase="MOVING_TO_ENTRY"`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("metrics missing %q:\n%s", want, body)
		}
	}

	// Admin endpoints are not mounted when disabled.
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/admin/v1/state", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("admin state with admin disabled: %d", rr.Code)
	}
}

func TestBuildMux_AdminLoopbackAndSnapshot(t *testing.T) {
	w := newTestWorld(t)
	sink := make(chan snapshot.SnapshotV1, 1)
	w.SetSnapshotSink(sink)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go func() { _ = w.Run(ctx) }()

	mux := buildMux(w, nil, log.New(io.Discard, "", 0), httpOptions{EnableAdmin: true})

	req := httptest.NewRequest(http.MethodGet, "/admin/v1/state", nil)
	req.RemoteAddr = "203.0.113.5:4000"
	rr := httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != http.StatusForbidden {
		t.Fatalf("non-loopback state: %d", rr.Code)
	}

	req = httptest.NewRequest(http.MethodPost, "/admin/v1/snapshot?reason=test", nil)
	req.RemoteAddr = "127.0.0.1:4000"
	rr = httptest.NewRecorder()
	mux.ServeHTTP(rr, req)
	if rr.Code != 200 {
		t.Fatalf("snapshot: %d %s", rr.Code, rr.Body.String())
	}
	var resp struct {
		OK   bool   `json:"ok"`
		Tick uint64 `json:"tick"`
	}
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil || !resp.OK {
		t.Fatalf("snapshot resp %s err=%v", rr.Body.String(), err)
	}
	if snap := <-sink; snap.Header.Tick != resp.Tick {
		t.Fatalf("snapshot tick %d vs response %d", snap.Header.Tick, resp.Tick)
	}
}
