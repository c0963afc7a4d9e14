package worldtest

import (
	"path/filepath"
	"testing"

	"vacuumsim.ai/internal/persistence/snapshot"
	world "vacuumsim.ai/internal/sim/world"
)

func TestSnapshotExportImport_RoundTripDigest(t *testing.T) {
	cfg := world.DefaultConfig("test", 42)
	h := NewHarness(t, cfg)

	// Stop mid-run so the controller carries a non-trivial state.
	h.StepN(900)

	snapTick, snap := h.Snapshot()
	d1 := h.W.DebugStateDigest(snapTick)

	path := filepath.Join(t.TempDir(), "snap.zst")
	if err := snapshot.WriteSnapshot(path, snap); err != nil {
		t.Fatalf("write: %v", err)
	}
	loaded, err := snapshot.ReadSnapshot(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}

	w2, err := world.New(cfg)
	if err != nil {
		t.Fatalf("world2: %v", err)
	}
	if err := w2.ImportSnapshot(loaded); err != nil {
		t.Fatalf("import: %v", err)
	}
	if got, want := w2.CurrentTick(), snapTick+1; got != want {
		t.Fatalf("tick after import: got %d want %d", got, want)
	}
	if d2 := w2.DebugStateDigest(snapTick); d1 != d2 {
		t.Fatalf("digest mismatch after import: %s vs %s", d1, d2)
	}

	h2 := NewHarnessWithWorld(t, w2)
	for i := 0; i < 1500; i++ {
		t1, a := h.W.StepOnce(nil)
		t2, b := h2.W.StepOnce(nil)
		if t1 != t2 || a != b {
			t.Fatalf("diverged after import at tick %d/%d", t1, t2)
		}
	}
}

func TestSnapshotImport_RejectsOtherSeed(t *testing.T) {
	h := NewHarness(t, world.DefaultConfig("test", 42))
	h.StepN(3)
	_, snap := h.Snapshot()

	w2, err := world.New(world.DefaultConfig("test", 43))
	if err != nil {
		t.Fatalf("world2: %v", err)
	}
	if err := w2.ImportSnapshot(snap); err == nil {
		t.Fatalf("expected seed mismatch error")
	}

	snap.Header.Version = 99
	w3, _ := world.New(world.DefaultConfig("test", 42))
	if err := w3.ImportSnapshot(snap); err == nil {
		t.Fatalf("expected version error")
	}
}
