package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"vacuumsim.ai/internal/persistence/archive"
	persistlog "vacuumsim.ai/internal/persistence/log"
	"vacuumsim.ai/internal/persistence/snapshot"
	"vacuumsim.ai/internal/sim/tuning"
	"vacuumsim.ai/internal/sim/world"
)

func main() {
	var (
		addr       = flag.String("addr", ":8080", "http listen address")
		worldID    = flag.String("world", "world_1", "world id")
		seed       = flag.Int64("seed", 0, "world seed (0: derive from the clock)")
		configDir  = flag.String("configs", "./configs", "config directory")
		dataDir    = flag.String("data", "./data", "runtime data directory")
		tuningPath = flag.String("tuning", "", "path to tuning.yaml (default: <configs>/tuning.yaml)")
		mode       = flag.String("mode", "", "override tuning mode: auto|manual")
		disableDB  = flag.Bool("disable_db", false, "disable the sqlite run index")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lmicroseconds)

	tp := strings.TrimSpace(*tuningPath)
	if tp == "" {
		tp = filepath.Join(*configDir, "tuning.yaml")
	}
	tune, err := tuning.Load(tp)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Fatalf("load tuning: %v", err)
		}
		logger.Printf("tuning not found (%s); using defaults", tp)
		tune = tuning.Defaults()
	}
	if m := strings.TrimSpace(*mode); m != "" {
		tune.Mode = m
		if err := tune.Validate(); err != nil {
			logger.Fatalf("tuning: %v", err)
		}
	}

	// Every run starts a fresh randomized world; snapshots are artifacts, not resume points.
	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}

	worldDir := filepath.Join(*dataDir, "worlds", *worldID)
	_ = os.MkdirAll(worldDir, 0o755)

	// Optional: read-model index backend (does not affect sim determinism).
	idx, err := openRuntimeIndex(worldDir, *disableDB)
	if err != nil {
		logger.Fatalf("open index backend: %v", err)
	}
	if idx != nil {
		defer idx.Close()
		if err := idx.UpsertRunMeta(*worldID, *seed, tune); err != nil {
			logger.Printf("index backend: upsert meta: %v", err)
		}
	}

	cfg := world.ConfigFromTuning(*worldID, *seed, tune)
	cfg.Logger = logger
	w, err := world.New(cfg)
	if err != nil {
		logger.Fatalf("world: %v", err)
	}

	ctx, cancel := signalContext()
	defer cancel()

	tickLog := persistlog.NewTickLogger(worldDir)
	eventLog := persistlog.NewEventLogger(worldDir)
	defer tickLog.Close()
	defer eventLog.Close()
	w.SetTickLogger(multiTickLogger{a: tickLog, b: idx})
	w.SetEventLogger(multiEventLogger{a: eventLog, b: idx})

	// Keep the compressed logs readable while the server runs.
	go func() {
		t := time.NewTicker(time.Second)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				if err := tickLog.Flush(); err != nil {
					logger.Printf("tick log flush: %v", err)
				}
				_ = eventLog.Flush()
			}
		}
	}()

	// Snapshot writer.
	snapCh := make(chan snapshot.SnapshotV1, 2)
	w.SetSnapshotSink(snapCh)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case snap := <-snapCh:
				path := filepath.Join(worldDir, "snapshots", fmt.Sprintf("%d.snap.zst", snap.Header.Tick))
				if err := snapshot.WriteSnapshot(path, snap); err != nil {
					logger.Printf("snapshot write: %v", err)
					continue
				}
				if idx != nil {
					idx.RecordSnapshot(path, snap)
					idx.RecordSnapshotState(snap)
				}
				if dst, ok, err := archive.ArchiveCompletedRun(worldDir, path, snap); err != nil {
					logger.Printf("archive: %v", err)
				} else if ok {
					logger.Printf("run complete: archived %s", dst)
				}
			}
		}
	}()

	go func() {
		if err := w.Run(ctx); err != nil && err != context.Canceled {
			logger.Printf("world stopped: %v", err)
		}
	}()

	mux := buildMux(w, idx, logger, httpOptions{
		EnableAdmin: envBool("VC_ENABLE_ADMIN_HTTP", defaultEnableAdminHTTP()),
		EnablePprof: envBool("VC_ENABLE_PPROF_HTTP", false),
	})

	srv := &http.Server{
		Addr:              *addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		ctx2, cancel2 := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel2()
		_ = srv.Shutdown(ctx2)
	}()

	logger.Printf("listening on %s (world=%s seed=%d mode=%s)", *addr, *worldID, *seed, tune.Mode)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("ListenAndServe: %v", err)
	}
}

func signalContext() (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	ch := make(chan os.Signal, 2)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-ch
		cancel()
	}()
	return ctx, cancel
}

type multiTickLogger struct {
	a world.TickLogger
	b world.TickLogger
}

func (m multiTickLogger) WriteTick(entry world.TickLogEntry) error {
	if m.a != nil {
		_ = m.a.WriteTick(entry)
	}
	if m.b != nil {
		_ = m.b.WriteTick(entry)
	}
	return nil
}

type multiEventLogger struct {
	a world.EventLogger
	b world.EventLogger
}

func (m multiEventLogger) WriteEvent(ev world.Event) error {
	if m.a != nil {
		_ = m.a.WriteEvent(ev)
	}
	if m.b != nil {
		_ = m.b.WriteEvent(ev)
	}
	return nil
}
