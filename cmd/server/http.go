package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"net/http/pprof"
	"strings"
	"time"

	"vacuumsim.ai/internal/sim/world"
	"vacuumsim.ai/internal/transport/observer"
	"vacuumsim.ai/internal/transport/ws"
)

type httpOptions struct {
	EnableAdmin bool
	EnablePprof bool
}

func buildMux(w *world.World, idx runtimeIndex, logger *log.Logger, opts httpOptions) *http.ServeMux {
	worldID := w.Config().ID

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(rw http.ResponseWriter, r *http.Request) {
		rw.WriteHeader(200)
		_, _ = rw.Write([]byte("ok"))
	})
	mux.HandleFunc("/metrics", func(rw http.ResponseWriter, r *http.Request) {
		rw.Header().Set("Content-Type", "text/plain; version=0.0.4")
		writeMetrics(rw, worldID, w.Metrics(), idx)
	})

	if opts.EnableAdmin {
		// Local-only admin endpoints (do not affect simulation determinism).
		mux.HandleFunc("/admin/v1/state", func(rw http.ResponseWriter, r *http.Request) {
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			f := w.Frame()
			rw.Header().Set("Content-Type", "application/json")
			resp := struct {
				WorldID string             `json:"world_id"`
				Tick    uint64             `json:"tick"`
				Metrics world.WorldMetrics `json:"metrics"`
				Frame   world.Frame        `json:"frame"`
			}{
				WorldID: worldID,
				Tick:    w.CurrentTick(),
				Metrics: w.Metrics(),
				Frame:   f,
			}
			_ = json.NewEncoder(rw).Encode(resp)
		})
		mux.HandleFunc("/admin/v1/snapshot", func(rw http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				rw.WriteHeader(http.StatusMethodNotAllowed)
				return
			}
			if !isLoopbackRemote(r.RemoteAddr) {
				http.Error(rw, "forbidden", http.StatusForbidden)
				return
			}
			ctx2, cancel2 := context.WithTimeout(r.Context(), 5*time.Second)
			defer cancel2()
			reason := strings.TrimSpace(r.URL.Query().Get("reason"))
			if reason == "" {
				reason = "admin"
			}
			tick, err := w.RequestSnapshot(ctx2, reason)
			rw.Header().Set("Content-Type", "application/json")
			if err != nil {
				rw.WriteHeader(http.StatusServiceUnavailable)
				_ = json.NewEncoder(rw).Encode(map[string]any{"ok": false, "tick": tick, "error": err.Error()})
				return
			}
			_ = json.NewEncoder(rw).Encode(map[string]any{"ok": true, "tick": tick})
		})

		obsSrv := observer.NewServer(w, logger)
		mux.HandleFunc("/admin/v1/observer/bootstrap", obsSrv.BootstrapHandler())
		mux.HandleFunc("/admin/v1/observer/ws", obsSrv.WSHandler())
	} else if logger != nil {
		logger.Printf("admin endpoints disabled (VC_ENABLE_ADMIN_HTTP=false)")
	}
	if opts.EnablePprof {
		mux.HandleFunc("/debug/pprof/", pprof.Index)
		mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
		mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		mux.HandleFunc("/debug/pprof/trace", pprof.Trace)
	}
	mux.HandleFunc("/v1/ws", ws.NewServer(w, logger).Handler())
	return mux
}

// writeMetrics renders a minimal Prometheus exposition.
func writeMetrics(rw http.ResponseWriter, worldID string, m world.WorldMetrics, idx runtimeIndex) {
	gauge := func(name, help string, value any) {
		fmt.Fprintf(rw, "# HELP %s %s\n", name, help)
		fmt.Fprintf(rw, "# TYPE %s gauge\n", name)
		fmt.Fprintf(rw, "%s{world=%q} %v\n", name, worldID, value)
	}

	gauge("vacuumsim_world_tick", "Current world tick.", m.Tick)
	gauge("vacuumsim_drivers", "Connected manual drivers.", m.Drivers)
	gauge("vacuumsim_observers", "Connected observers.", m.Observers)
	gauge("vacuumsim_debris_total", "Debris generated at setup.", m.DebrisTotal)
	gauge("vacuumsim_debris_remaining", "Debris not yet collected.", m.DebrisRemaining)
	gauge("vacuumsim_zones_cleaned", "Zones marked cleaned.", m.ZonesCleaned)
	gauge("vacuumsim_zones_pending", "Zones deferred because occupied.", m.Pending)
	gauge("vacuumsim_cleaning_progress", "Cleaned progress in zone units.", m.Progress)
	gauge("vacuumsim_battery", "Robot battery level (0..100).", m.Battery)
	gauge("vacuumsim_all_cleaned", "1 once every zone is cleaned.", boolGauge(m.AllCleaned))

	fmt.Fprintf(rw, "# HELP vacuumsim_controller_phase Current task controller phase.\n")
	fmt.Fprintf(rw, "# TYPE vacuumsim_controller_phase gauge\n")
	fmt.Fprintf(rw, "vacuumsim_controller_phase{world=%q,phase=%q,zone=%q} 1\n", worldID, m.Phase, m.Zone)

	fmt.Fprintf(rw, "# HELP vacuumsim_world_queue_depth Channel backlog depth.\n")
	fmt.Fprintf(rw, "# TYPE vacuumsim_world_queue_depth gauge\n")
	fmt.Fprintf(rw, "vacuumsim_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "inbox", m.QueueDepths.Inbox)
	fmt.Fprintf(rw, "vacuumsim_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "join", m.QueueDepths.Join)
	fmt.Fprintf(rw, "vacuumsim_world_queue_depth{world=%q,queue=%q} %d\n", worldID, "leave", m.QueueDepths.Leave)

	fmt.Fprintf(rw, "# HELP vacuumsim_world_step_ms Last tick step duration in milliseconds.\n")
	fmt.Fprintf(rw, "# TYPE vacuumsim_world_step_ms gauge\n")
	fmt.Fprintf(rw, "vacuumsim_world_step_ms{world=%q} %.3f\n", worldID, m.StepMS)

	if idx == nil {
		return
	}
	s := idx.Stats()
	fmt.Fprintf(rw, "# HELP vacuumsim_index_dropped_total Index writes dropped under backpressure.\n")
	fmt.Fprintf(rw, "# TYPE vacuumsim_index_dropped_total counter\n")
	fmt.Fprintf(rw, "vacuumsim_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "tick", s.DropTickTotal)
	fmt.Fprintf(rw, "vacuumsim_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "event", s.DropEventTotal)
	fmt.Fprintf(rw, "vacuumsim_index_dropped_total{world=%q,kind=%q} %d\n", worldID, "snapshot", s.DropSnapshotTotal+s.DropSnapshotStateTotal)
	fmt.Fprintf(rw, "# HELP vacuumsim_index_queue_depth Index write queue depth.\n")
	fmt.Fprintf(rw, "# TYPE vacuumsim_index_queue_depth gauge\n")
	fmt.Fprintf(rw, "vacuumsim_index_queue_depth{world=%q} %d\n", worldID, s.QueueDepth)
}

func boolGauge(b bool) int {
	if b {
		return 1
	}
	return 0
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if h, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = h
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
