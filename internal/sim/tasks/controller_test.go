package tasks

import (
	"math"
	"math/rand"
	"reflect"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"vacuumsim.ai/internal/sim/geom"
	"vacuumsim.ai/internal/sim/layout"
	"vacuumsim.ai/internal/sim/physics"
)

type rig struct {
	reg    *layout.Registry
	debris *layout.DebrisSet
	robot  *physics.Body
	ctl    *Controller
	events []Event
	ticks  int
}

func newRig(occupied []layout.ZoneID, debris map[layout.ZoneID][][2]float64, p Params) *rig {
	cfg := layout.DefaultConfig()
	cfg.OccupancyProb = 0
	reg := layout.NewRegistry(cfg, rand.New(rand.NewSource(1)))
	for _, id := range occupied {
		reg.Zone(id).Occupied = true
	}
	var items []*layout.Debris
	for id, pts := range debris {
		for i, pt := range pts {
			items = append(items, &layout.Debris{
				ID:      string(id) + "-" + string(rune('a'+i)),
				Zone:    id,
				Body:    physics.NewBody(geom.V3(pt[0], -1.5, pt[1]), layout.DefaultDebrisConfig().Dims, mgl64.Vec3{}, 0),
				Visible: true,
			})
		}
	}
	set := layout.NewDebrisSet(items)
	return &rig{
		reg:    reg,
		debris: set,
		robot:  physics.NewBody(geom.V3(0, 0, 0), geom.Dims{Width: 1, Height: 1, Depth: 1}, geom.V3(0, -0.01, 0), -0.005),
		ctl:    New(reg, set, p),
	}
}

func (r *rig) step() []Event {
	evs := append([]Event(nil), r.ctl.Advance(r.robot)...)
	r.events = append(r.events, evs...)
	physics.Integrate(r.robot, r.reg.Map(), physics.DefaultParams())
	r.debris.Suction(r.robot.Bounds)
	r.ticks++
	return evs
}

func (r *rig) runUntil(t *testing.T, cond func() bool) {
	t.Helper()
	for i := 0; i < 50000; i++ {
		if cond() {
			return
		}
		r.step()
	}
	t.Fatalf("condition not reached after %d ticks (phase=%s zone=%s)", r.ticks, r.ctl.Phase(), r.ctl.Zone())
}

func (r *rig) indexOf(kind EventKind, zone layout.ZoneID) int {
	for i, ev := range r.events {
		if ev.Kind == kind && ev.Zone == zone {
			return i
		}
	}
	return -1
}

func fastParams() Params {
	p := DefaultParams()
	p.ScanDwellTicks = 1
	p.VacateWaitTicks = 1
	p.CellDwellTicks = 1
	p.ExitDwellTicks = 1
	p.ChargeEveryHalfZones = 0
	return p
}

func TestStepToward_MonotonicThenSnap(t *testing.T) {
	pos := mgl64.Vec3{0, 0, 0}
	dist := func(p mgl64.Vec3) float64 { return math.Hypot(4-p.X(), 4-p.Z()) }

	prev := dist(pos)
	for i := 0; i < 1000; i++ {
		next, arrived := StepToward(pos, 4, 4, 0.08, 0.1)
		if arrived {
			if next != (mgl64.Vec3{4, 0, 4}) {
				t.Fatalf("arrival must snap exactly, got %v", next)
			}
			if prev > 0.1 {
				t.Fatalf("snapped from distance %v", prev)
			}
			return
		}
		if d := dist(next); d >= prev {
			t.Fatalf("distance did not decrease: %v -> %v", prev, d)
		} else {
			prev = d
		}
		if next.Y() != 0 {
			t.Fatalf("step changed height: %v", next)
		}
		pos = next
	}
	t.Fatalf("never arrived")
}

func TestController_VisitsRoomsInOrder(t *testing.T) {
	r := newRig(nil, nil, fastParams())
	r.runUntil(t, r.ctl.Done)

	var arrived []layout.ZoneID
	for _, ev := range r.events {
		if ev.Kind == EventArrived {
			arrived = append(arrived, ev.Zone)
		}
	}
	if !reflect.DeepEqual(arrived, layout.Order) {
		t.Fatalf("arrival order=%v want %v", arrived, layout.Order)
	}
	if last := r.events[len(r.events)-1]; last.Kind != EventAllCleaned {
		t.Fatalf("last event=%v want ALL_CLEANED", last)
	}
	st := r.ctl.Status()
	if !reflect.DeepEqual(st.Cleaned, layout.Order) || !st.AllCleaned || st.Phase != PhaseAllCleaned {
		t.Fatalf("unexpected final status: %+v", st)
	}

	// Further ticks are inert.
	if evs := r.step(); len(evs) != 0 {
		t.Fatalf("events after completion: %v", evs)
	}
}

func TestController_SweepCollectsAllDebris(t *testing.T) {
	r := newRig(nil, map[layout.ZoneID][][2]float64{
		layout.North: {{0, -6}, {2, -10}, {-3, -5}, {3, -11}},
	}, fastParams())

	r.runUntil(t, func() bool { return r.ctl.IsCleaned(layout.North) })

	if n := len(r.debris.InZone(layout.North)); n != 0 {
		t.Fatalf("north still holds %d debris", n)
	}
	if r.debris.Remaining() != 0 {
		t.Fatalf("remaining=%d want 0", r.debris.Remaining())
	}
	if r.indexOf(EventSweepStarted, layout.North) < 0 {
		t.Fatalf("north was never swept")
	}
	// Midpoint plus exit.
	if got := r.ctl.Status().Progress; got != 1 {
		t.Fatalf("progress=%v want 1", got)
	}
	e := r.reg.Zone(layout.North).Entry
	if r.robot.Center.X() != e.X || r.robot.Center.Z() != e.Z {
		t.Fatalf("robot should finish a sweep at the entry, at %v", r.robot.Center)
	}
}

func TestController_DefersOccupiedZone(t *testing.T) {
	r := newRig([]layout.ZoneID{layout.East}, map[layout.ZoneID][][2]float64{
		layout.East: {{10, 0}},
	}, fastParams())

	r.runUntil(t, func() bool { return r.indexOf(EventDeferred, layout.East) >= 0 })
	st := r.ctl.Status()
	if !reflect.DeepEqual(st.Pending, []layout.ZoneID{layout.East}) {
		t.Fatalf("pending=%v want [east]", st.Pending)
	}
	if st.CurrentIndex != 2 || st.Phase != PhaseMovingToEntry {
		t.Fatalf("expected to move on to west, got %+v", st)
	}
	if r.indexOf(EventSweepStarted, layout.East) >= 0 {
		t.Fatalf("occupied zone must not be swept")
	}

	r.runUntil(t, r.ctl.Done)

	if r.indexOf(EventVacated, layout.East) < r.indexOf(EventArrived, layout.West) {
		t.Fatalf("east should be vacated on arrival at west: %v", r.events)
	}
	if r.indexOf(EventSweepStarted, layout.East) < r.indexOf(EventZoneCleaned, layout.South) {
		t.Fatalf("deferred zone swept before the fixed pass finished: %v", r.events)
	}
	want := []layout.ZoneID{layout.North, layout.West, layout.South, layout.East}
	if got := r.ctl.Status().Cleaned; !reflect.DeepEqual(got, want) {
		t.Fatalf("cleaned=%v want %v", got, want)
	}
	if r.debris.Remaining() != 0 {
		t.Fatalf("east debris not collected")
	}
}

func TestController_LastZoneIsForcedVacant(t *testing.T) {
	r := newRig([]layout.ZoneID{layout.South}, nil, fastParams())
	r.runUntil(t, r.ctl.Done)

	if r.indexOf(EventDeferred, layout.South) >= 0 {
		t.Fatalf("last zone must never be deferred")
	}
	arrived := r.indexOf(EventArrived, layout.South)
	vacated := r.indexOf(EventVacated, layout.South)
	cleaned := r.indexOf(EventZoneCleaned, layout.South)
	if !(arrived < vacated && vacated < cleaned) {
		t.Fatalf("want arrive<vacate<clean, got %d %d %d", arrived, vacated, cleaned)
	}
	if r.reg.Zone(layout.South).Occupied {
		t.Fatalf("south still occupied")
	}
	if len(r.ctl.Status().Pending) != 0 {
		t.Fatalf("pending not empty")
	}
}

func TestController_PendingPassIgnoresOccupancy(t *testing.T) {
	r := newRig([]layout.ZoneID{layout.North}, nil, fastParams())
	r.runUntil(t, func() bool { return r.ctl.Status().Pass == PassPending })

	r.reg.Zone(layout.North).Occupied = true
	r.runUntil(t, r.ctl.Done)

	deferred := 0
	for _, ev := range r.events {
		if ev.Kind == EventDeferred {
			deferred++
		}
	}
	if deferred != 1 {
		t.Fatalf("deferred %d times, want 1", deferred)
	}
	if !r.ctl.IsCleaned(layout.North) {
		t.Fatalf("north not cleaned on retry")
	}
}

func TestController_ChargingTriggerUsesHalfZoneCounter(t *testing.T) {
	p := fastParams()
	p.ChargeEveryHalfZones = 5
	r := newRig(nil, map[layout.ZoneID][][2]float64{
		layout.North: {{0, -8}},
		layout.East:  {{8, 0}},
		layout.West:  {{-8, 0}},
		layout.South: {{0, 8}},
	}, p)
	r.runUntil(t, r.ctl.Done)

	var started []Event
	for i, ev := range r.events {
		if ev.Kind == EventChargingStarted {
			started = append(started, ev)
			if next := r.events[i+1]; next.Kind != EventChargingDone {
				t.Fatalf("disabled excursion should finish at once, next=%v", next)
			}
		}
	}
	if len(started) != 1 || started[0].Zone != layout.West {
		t.Fatalf("charging events=%v want one during west", started)
	}
	st := r.ctl.Status()
	// West exit, south midpoint, south exit after the reset.
	if st.Progress != 1.5 {
		t.Fatalf("progress=%v want 1.5", st.Progress)
	}
	if st.Charging {
		t.Fatalf("still charging")
	}
}

func TestController_ChargingExcursionVisitsStation(t *testing.T) {
	p := fastParams()
	p.ChargeEveryHalfZones = 1
	p.Charge.Enabled = true
	p.Charge.DwellTicks = 2
	r := newRig(nil, map[layout.ZoneID][][2]float64{
		layout.North: {{0, -8}},
	}, p)

	r.runUntil(t, func() bool { return r.indexOf(EventChargingStarted, layout.North) >= 0 })
	if b := r.ctl.Status().Battery; b >= 100 {
		t.Fatalf("battery should have drained, got %v", b)
	}
	resumeX, resumeZ := r.ctl.Status().Sweep.X, r.ctl.Status().Sweep.Z

	atStation := false
	for {
		evs := r.step()
		c := r.robot.Center
		if c.X() == p.Charge.StationX && c.Z() == p.Charge.StationZ {
			atStation = true
		}
		done := false
		for _, ev := range evs {
			done = done || ev.Kind == EventChargingDone
		}
		if done {
			break
		}
		if r.ticks > 50000 {
			t.Fatalf("excursion never finished")
		}
		if !r.ctl.Status().Charging {
			t.Fatalf("charging flag dropped before completion")
		}
	}
	if !atStation {
		t.Fatalf("robot never reached the station")
	}
	st := r.ctl.Status()
	if st.Battery != 100 || st.Phase != PhaseSweeping {
		t.Fatalf("unexpected status after charging: %+v", st)
	}
	if r.robot.Center.X() != resumeX || r.robot.Center.Z() != resumeZ {
		t.Fatalf("robot resumed at %v want (%v,%v)", r.robot.Center, resumeX, resumeZ)
	}
}

func TestController_ExportRestore(t *testing.T) {
	r := newRig([]layout.ZoneID{layout.North}, map[layout.ZoneID][][2]float64{
		layout.East: {{8, 0}},
	}, fastParams())
	r.runUntil(t, func() bool { return r.ctl.Phase() == PhaseSweeping })

	restored := Restore(r.reg, r.debris, fastParams(), r.ctl.Export())
	if !reflect.DeepEqual(restored.Status(), r.ctl.Status()) {
		t.Fatalf("status mismatch:\n%+v\n%+v", restored.Status(), r.ctl.Status())
	}
	for _, id := range layout.Order {
		if restored.IsCleaned(id) != r.ctl.IsCleaned(id) {
			t.Fatalf("cleaned set mismatch for %s", id)
		}
	}
}
