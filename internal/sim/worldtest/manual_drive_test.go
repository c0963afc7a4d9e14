package worldtest

import (
	"testing"

	"vacuumsim.ai/internal/protocol"
	"vacuumsim.ai/internal/sim/tasks"
	"vacuumsim.ai/internal/sim/tuning"
	world "vacuumsim.ai/internal/sim/world"
)

func TestManualDrive_MovesRobot(t *testing.T) {
	cfg := world.DefaultConfig("test", 42)
	cfg.Mode = tuning.ModeManual
	h := NewHarness(t, cfg)

	startX := h.W.Robot().Pos[0]
	var obs protocol.ObsMsg
	for i := 0; i < 10; i++ {
		obs = h.Drive(0.05, 0)
	}
	if got := h.W.Robot().Pos[0]; got < startX+0.4 {
		t.Fatalf("robot x=%v after driving +x from %v", got, startX)
	}
	if obs.SessionID != h.DriverID || obs.Tick != h.W.CurrentTick()-1 {
		t.Fatalf("unexpected obs header: %+v", obs)
	}
	if obs.Robot.Pos != h.W.Robot().Pos {
		t.Fatalf("obs pos %v != frame pos %v", obs.Robot.Pos, h.W.Robot().Pos)
	}
	if st := h.W.Controller(); st.Phase != tasks.PhaseMovingToEntry || len(st.Cleaned) != 0 {
		t.Fatalf("controller advanced in manual mode: %+v", st)
	}
}

func TestManualDrive_BlockedDirectionIgnored(t *testing.T) {
	cfg := world.DefaultConfig("test", 42)
	cfg.Mode = tuning.ModeManual
	h := NewHarness(t, cfg)

	// Drive west along the hub row until the resolver clears the permission.
	for i := 0; i < 400 && h.W.Robot().Perm.NegX; i++ {
		h.Drive(-0.1, 0)
	}
	if h.W.Robot().Perm.NegX {
		t.Fatalf("never reached the west wall")
	}
	x := h.W.Robot().Pos[0]
	h.Drive(-0.1, 0)
	if got := h.W.Robot().Pos[0]; got < x-1e-9 {
		t.Fatalf("moved through a blocked direction: %v -> %v", x, got)
	}
}

type tickRecorder struct {
	entries []world.TickLogEntry
}

func (r *tickRecorder) WriteTick(e world.TickLogEntry) error {
	r.entries = append(r.entries, e)
	return nil
}

func TestAutoMode_IgnoresDrives(t *testing.T) {
	cfg := world.DefaultConfig("test", 42)
	driven := NewHarness(t, cfg)
	idle := NewHarness(t, cfg)
	rec := &tickRecorder{}
	driven.W.SetTickLogger(rec)

	for i := 0; i < 300; i++ {
		driven.Drive(0.5, 0.5)
		idle.Step()
	}
	a, b := driven.Digests(), idle.Digests()
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("drive changed auto-mode state at tick %d", i)
		}
	}
	for _, e := range rec.entries {
		if len(e.Drives) != 0 {
			t.Fatalf("tick %d recorded drives in auto mode", e.Tick)
		}
	}
}
