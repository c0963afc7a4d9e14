package tasks

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/zyedidia/generic/mapset"

	"vacuumsim.ai/internal/sim/layout"
	"vacuumsim.ai/internal/sim/physics"
)

// Controller drives the robot through the rooms: a fixed pass in layout.Order, then a
// retry pass over the zones that were occupied when scanned. It is advanced once per tick.
type Controller struct {
	reg    *layout.Registry
	debris *layout.DebrisSet
	p      Params

	st      State
	cleaned mapset.Set[layout.ZoneID]
	events  []Event
}

func New(reg *layout.Registry, debris *layout.DebrisSet, p Params) *Controller {
	c := &Controller{
		reg:     reg,
		debris:  debris,
		p:       p,
		cleaned: mapset.New[layout.ZoneID](),
	}
	c.st = State{
		Phase:   PhaseMovingToEntry,
		Pass:    PassFixed,
		Battery: 100,
	}
	return c
}

// Restore rebuilds a controller from an exported state.
func Restore(reg *layout.Registry, debris *layout.DebrisSet, p Params, st State) *Controller {
	c := New(reg, debris, p)
	c.st = st
	c.st.Pending = append([]layout.ZoneID(nil), st.Pending...)
	c.st.Cleaned = append([]layout.ZoneID(nil), st.Cleaned...)
	for _, id := range st.Cleaned {
		c.cleaned.Put(id)
	}
	return c
}

func (c *Controller) Export() State {
	st := c.st
	st.Pending = append([]layout.ZoneID(nil), c.st.Pending...)
	st.Cleaned = append([]layout.ZoneID(nil), c.st.Cleaned...)
	return st
}

func (c *Controller) Phase() Phase { return c.st.Phase }
func (c *Controller) Done() bool   { return c.st.AllCleaned }

func (c *Controller) IsCleaned(id layout.ZoneID) bool { return c.cleaned.Has(id) }

// Zone returns the zone currently being visited, or "" once everything is cleaned.
func (c *Controller) Zone() layout.ZoneID {
	switch {
	case c.st.AllCleaned:
		return ""
	case c.st.Pass == PassFixed:
		return layout.Order[c.st.CurrentIndex]
	case c.st.PendingIndex < len(c.st.Pending):
		return c.st.Pending[c.st.PendingIndex]
	}
	return ""
}

// Advance runs one tick of the state machine, moving robot as needed, and returns the
// events emitted during the tick. The returned slice is only valid until the next call.
func (c *Controller) Advance(robot *physics.Body) []Event {
	c.events = c.events[:0]
	switch c.st.Phase {
	case PhaseMovingToEntry:
		c.moveToEntry(robot)
	case PhaseScanning:
		if c.countdown() {
			c.finishScan(robot)
		}
	case PhaseVacateWait:
		if c.countdown() {
			z := c.reg.Zone(c.Zone())
			z.Occupied = false
			c.emit(EventVacated, z.ID)
			c.decide(z, robot)
		}
	case PhaseSweeping:
		if c.countdown() {
			c.nextCell(robot)
		}
	case PhaseCharging:
		c.charge(robot)
	case PhaseReturning:
		e := c.reg.Zone(c.Zone()).Entry
		if c.moveTo(robot, e.X, e.Z) {
			c.st.Phase = PhaseExitDwell
			c.st.Wait = atLeastOne(c.p.ExitDwellTicks)
		}
	case PhaseExitDwell:
		if c.countdown() {
			c.st.HalfZones++
			c.markCleaned(c.Zone())
			c.next()
		}
	case PhaseAllCleaned:
	}
	return c.events
}

func (c *Controller) moveToEntry(robot *physics.Body) {
	z := c.reg.Zone(c.Zone())
	if !c.moveTo(robot, z.Entry.X, z.Entry.Z) {
		return
	}
	c.emit(EventArrived, z.ID)
	if c.st.Pass == PassFixed && c.st.CurrentIndex > 0 {
		prev := c.reg.Zone(layout.Order[c.st.CurrentIndex-1])
		if prev.Occupied {
			prev.Occupied = false
			c.emit(EventVacated, prev.ID)
		}
	}
	c.st.Phase = PhaseScanning
	c.st.Wait = atLeastOne(c.p.ScanDwellTicks)
}

func (c *Controller) finishScan(robot *physics.Body) {
	z := c.reg.Zone(c.Zone())
	if c.st.Pass == PassFixed && z.Occupied && c.st.CurrentIndex == len(layout.Order)-1 {
		c.st.Phase = PhaseVacateWait
		c.st.Wait = atLeastOne(c.p.VacateWaitTicks)
		return
	}
	c.decide(z, robot)
}

// decide runs the post-scan branch. Occupancy only defers during the fixed pass.
func (c *Controller) decide(z *layout.Zone, robot *physics.Body) {
	if c.st.Pass == PassFixed && z.Occupied {
		c.st.Pending = append(c.st.Pending, z.ID)
		c.emit(EventDeferred, z.ID)
		c.next()
		return
	}
	if len(c.debris.InZone(z.ID)) == 0 {
		c.markCleaned(z.ID)
		c.next()
		return
	}
	c.startSweep(z, robot)
}

func (c *Controller) startSweep(z *layout.Zone, robot *physics.Body) {
	step := c.p.SweepStep
	d := z.Dims()
	c.st.Sweep = Cursor{
		Cols: int(math.Floor(d.Depth / step)),
		Rows: int(math.Floor(d.Width / step)),
		Dir:  1,
		X:    z.Bounds.Left + step/2,
		Z:    z.Bounds.Back + step/2,
	}
	c.emit(EventSweepStarted, z.ID)
	if c.st.Sweep.Cols <= 0 || c.st.Sweep.Rows <= 0 {
		c.st.Phase = PhaseReturning
		return
	}
	c.st.Phase = PhaseSweeping
	c.placeAtCell(robot)
}

// nextCell advances the cursor after the dwell on a cell has elapsed.
func (c *Controller) nextCell(robot *physics.Body) {
	s := &c.st.Sweep
	step := c.p.SweepStep
	c.st.Battery = math.Max(0, c.st.Battery-c.p.Charge.BatteryPerCell)

	s.X += float64(s.Dir) * step
	if s.Col == s.Cols/2 && s.Row == 0 {
		c.st.HalfZones++
	}
	s.Row++
	if s.Row == s.Rows {
		s.Row = 0
		s.Dir = -s.Dir
		s.Z += step
		s.X += float64(s.Dir) * step
		s.Col++
	}

	after := PhaseSweeping
	if s.Col >= s.Cols {
		after = PhaseReturning
	}
	if every := c.p.ChargeEveryHalfZones; every > 0 && c.st.HalfZones > 0 && c.st.HalfZones%every == 0 {
		c.st.HalfZones = 0
		c.startCharging(robot, after)
		return
	}
	c.resume(robot, after)
}

func (c *Controller) resume(robot *physics.Body, phase Phase) {
	c.st.Phase = phase
	if phase == PhaseSweeping {
		c.placeAtCell(robot)
	}
}

func (c *Controller) placeAtCell(robot *physics.Body) {
	robot.MoveTo(mgl64.Vec3{c.st.Sweep.X, robot.Center.Y(), c.st.Sweep.Z})
	c.st.Wait = atLeastOne(c.p.CellDwellTicks)
}

func (c *Controller) startCharging(robot *physics.Body, after Phase) {
	c.st.Charging = true
	c.st.AfterCharge = after
	c.emit(EventChargingStarted, c.Zone())
	if !c.p.Charge.Enabled {
		c.finishCharging(robot)
		return
	}
	c.st.Phase = PhaseCharging
	c.st.ChargeStage = chargeToStation
}

func (c *Controller) charge(robot *physics.Body) {
	switch c.st.ChargeStage {
	case chargeToStation:
		if c.moveTo(robot, c.p.Charge.StationX, c.p.Charge.StationZ) {
			c.st.ChargeStage = chargeDwell
			c.st.Wait = atLeastOne(c.p.Charge.DwellTicks)
		}
	case chargeDwell:
		if c.countdown() {
			c.st.Battery = 100
			c.st.ChargeStage = chargeBack
		}
	case chargeBack:
		x, z := c.backPoint()
		if c.moveTo(robot, x, z) {
			c.finishCharging(robot)
		}
	}
}

// backPoint is where the robot resumes after an excursion: the next cell, or the
// zone entry when the sweep already finished.
func (c *Controller) backPoint() (float64, float64) {
	if c.st.AfterCharge == PhaseSweeping {
		return c.st.Sweep.X, c.st.Sweep.Z
	}
	e := c.reg.Zone(c.Zone()).Entry
	return e.X, e.Z
}

func (c *Controller) finishCharging(robot *physics.Body) {
	c.st.Charging = false
	c.st.ChargeStage = 0
	if !c.p.Charge.Enabled {
		c.st.Battery = 100
	}
	c.emit(EventChargingDone, c.Zone())
	c.resume(robot, c.st.AfterCharge)
	c.st.AfterCharge = ""
}

// next advances to the following zone of the current pass, switching to the pending pass
// after the fixed one and finishing when the pending queue is exhausted.
func (c *Controller) next() {
	if c.st.Pass == PassFixed {
		c.st.CurrentIndex++
		if c.st.CurrentIndex < len(layout.Order) {
			c.st.Phase = PhaseMovingToEntry
			return
		}
		c.st.CurrentIndex = len(layout.Order) - 1
		c.st.Pass = PassPending
	} else {
		c.st.PendingIndex++
	}
	if c.st.PendingIndex < len(c.st.Pending) {
		c.st.Phase = PhaseMovingToEntry
		return
	}
	c.st.Phase = PhaseAllCleaned
	c.st.AllCleaned = true
	c.emit(EventAllCleaned, "")
}

func (c *Controller) markCleaned(id layout.ZoneID) {
	if !c.cleaned.Has(id) {
		c.cleaned.Put(id)
		c.st.Cleaned = append(c.st.Cleaned, id)
	}
	c.emit(EventZoneCleaned, id)
}

// moveTo takes one step of a straight move and reports arrival.
func (c *Controller) moveTo(robot *physics.Body, x, z float64) bool {
	pos, arrived := StepToward(robot.Center, x, z, c.p.MoveStep, c.p.ArriveThreshold)
	robot.MoveTo(pos)
	return arrived
}

// countdown decrements the dwell timer and reports whether it elapsed this tick.
func (c *Controller) countdown() bool {
	if c.st.Wait > 0 {
		c.st.Wait--
	}
	return c.st.Wait <= 0
}

func (c *Controller) emit(kind EventKind, zone layout.ZoneID) {
	c.events = append(c.events, Event{Kind: kind, Zone: zone})
}

func atLeastOne(n int) int {
	if n < 1 {
		return 1
	}
	return n
}
