package worldtest

import (
	"encoding/json"
	"testing"

	"vacuumsim.ai/internal/persistence/snapshot"
	"vacuumsim.ai/internal/protocol"
	world "vacuumsim.ai/internal/sim/world"
)

// Harness is a small black-box test helper for driving a world via exported APIs:
// - JoinDriver registers a driver session without running the loop
// - Step()/Drive() advance via StepOnce()
// - The driver Out channel carries OBS JSON
//
// It intentionally avoids touching world internals so tests can live outside the world package.
type Harness struct {
	T *testing.T
	W *world.World

	DriverID string

	out     chan []byte
	lastObs protocol.ObsMsg
	digests []string
}

func NewHarness(t *testing.T, cfg world.WorldConfig) *Harness {
	t.Helper()

	w, err := world.New(cfg)
	if err != nil {
		t.Fatalf("world.New: %v", err)
	}
	return NewHarnessWithWorld(t, w)
}

// NewHarnessWithWorld is like NewHarness, but uses an already-constructed world instance.
// This is useful for snapshot round-trip tests where the snapshot is imported first.
func NewHarnessWithWorld(t *testing.T, w *world.World) *Harness {
	t.Helper()
	if w == nil {
		t.Fatalf("NewHarnessWithWorld: nil world")
	}
	h := &Harness{T: t, W: w, out: make(chan []byte, 16)}
	resp := make(chan world.DriverJoinResponse, 1)
	w.DebugJoinDriver(world.DriverJoinRequest{Name: "harness", Out: h.out, Resp: resp})
	jr := <-resp
	if jr.Welcome.SessionID == "" {
		t.Fatalf("join returned empty session id")
	}
	h.DriverID = jr.Welcome.SessionID
	return h
}

func (h *Harness) LastObs() protocol.ObsMsg { return h.lastObs }

// Digests returns the digest of every tick stepped through the harness.
func (h *Harness) Digests() []string { return h.digests }

func (h *Harness) Step(drives ...world.DriveCommand) protocol.ObsMsg {
	h.T.Helper()
	_, d := h.W.StepOnce(drives)
	h.digests = append(h.digests, d)
	h.drainObs()
	return h.lastObs
}

func (h *Harness) Drive(vx, vz float64) protocol.ObsMsg {
	return h.Step(world.DriveCommand{SessionID: h.DriverID, VX: vx, VZ: vz})
}

func (h *Harness) StepN(n int) {
	h.T.Helper()
	for i := 0; i < n; i++ {
		h.Step()
	}
}

// RunUntil steps until cond holds for the published frame, failing after max ticks.
func (h *Harness) RunUntil(max int, cond func(world.Frame) bool) world.Frame {
	h.T.Helper()
	for i := 0; i < max; i++ {
		if f := h.W.Frame(); cond(f) {
			return f
		}
		h.Step()
	}
	f := h.W.Frame()
	h.T.Fatalf("condition not reached after %d ticks (tick=%d phase=%s zone=%s)", max, f.Tick, f.Controller.Phase, f.Controller.Zone)
	return f
}

func (h *Harness) Snapshot() (tick uint64, snap snapshot.SnapshotV1) {
	h.T.Helper()
	// Export at currentTick-1 so an import restores to currentTick.
	cur := h.W.CurrentTick()
	if cur == 0 {
		h.T.Fatalf("snapshot before first tick")
	}
	tick = cur - 1
	return tick, h.W.ExportSnapshot(tick)
}

func (h *Harness) drainObs() {
	for {
		select {
		case b := <-h.out:
			var obs protocol.ObsMsg
			if err := json.Unmarshal(b, &obs); err != nil {
				h.T.Fatalf("decode OBS: %v", err)
			}
			h.lastObs = obs
		default:
			return
		}
	}
}
