package world

import (
	"context"
	"testing"
	"time"

	"vacuumsim.ai/internal/persistence/snapshot"
)

func TestRequestSnapshot_ViaRunLoop(t *testing.T) {
	cfg := DefaultConfig("test", 42)
	cfg.TickRateHz = 200
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sink := make(chan snapshot.SnapshotV1, 1)
	w.SetSnapshotSink(sink)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	tick, err := w.RequestSnapshot(ctx, "test")
	if err != nil {
		t.Fatalf("RequestSnapshot: %v", err)
	}
	select {
	case snap := <-sink:
		if snap.Header.Tick != tick || snap.Header.WorldID != "test" {
			t.Fatalf("snapshot header %+v, tick %d", snap.Header, tick)
		}
	case <-ctx.Done():
		t.Fatalf("no snapshot delivered")
	}

	w.Stop()
	if err := <-done; err != nil {
		t.Fatalf("Run: %v", err)
	}
}

func TestRequestSnapshot_NoSink(t *testing.T) {
	w, err := New(DefaultConfig("test", 1))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	w.StepOnce(nil)

	resp := make(chan snapshotResult, 1)
	w.handleSnapshotRequests([]snapshotRequest{{Reason: "test", Resp: resp}})
	if r := <-resp; r.Err != errNoSnapshotSink || r.Tick != 0 {
		t.Fatalf("got %+v", r)
	}
}

func TestNew_RejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig("test", 1)
	cfg.TickRateHz = 0
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected tick rate error")
	}
	cfg = DefaultConfig("test", 1)
	cfg.Mode = "turbo"
	if _, err := New(cfg); err == nil {
		t.Fatalf("expected mode error")
	}
}

func TestStepOnce_PeriodicSnapshot(t *testing.T) {
	cfg := DefaultConfig("test", 42)
	cfg.SnapshotEveryTicks = 5
	w, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	sink := make(chan snapshot.SnapshotV1, 4)
	w.SetSnapshotSink(sink)
	for i := 0; i < 11; i++ {
		w.StepOnce(nil)
	}
	if len(sink) != 2 {
		t.Fatalf("got %d snapshots want 2", len(sink))
	}
	if s := <-sink; s.Header.Tick != 5 {
		t.Fatalf("first snapshot tick %d", s.Header.Tick)
	}
}
