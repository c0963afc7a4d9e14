package world

import (
	"vacuumsim.ai/internal/sim/geom"
	"vacuumsim.ai/internal/sim/layout"
	"vacuumsim.ai/internal/sim/physics"
	"vacuumsim.ai/internal/sim/tasks"
)

// Occupancy indicator colors.
const (
	LightAlert   uint32 = 0xff0000
	LightNominal uint32 = 0x3cb043
)

type ZoneView struct {
	ID       layout.ZoneID     `json:"id"`
	Center   [3]float64        `json:"center"`
	Dims     geom.Dims         `json:"dims"`
	Bounds   geom.Bounds       `json:"bounds"`
	Occupied bool              `json:"occupied"`
	Entry    layout.EntryPoint `json:"entry"`
}

// LightColor is the color of the zone's occupancy light.
func (z ZoneView) LightColor() uint32 {
	if z.Occupied {
		return LightAlert
	}
	return LightNominal
}

type BodyView struct {
	Pos     [3]float64          `json:"pos"`
	Vel     [3]float64          `json:"vel"`
	Dims    geom.Dims           `json:"dims"`
	Bounds  geom.Bounds         `json:"bounds"`
	Perm    physics.Permissions `json:"perm"`
	OnFloor bool                `json:"on_floor"`
}

type DebrisView struct {
	ID      string        `json:"id"`
	Zone    layout.ZoneID `json:"zone"`
	Pos     [3]float64    `json:"pos"`
	Dims    geom.Dims     `json:"dims"`
	Visible bool          `json:"visible"`
}

// Frame is an immutable copy of the world published after every tick.
type Frame struct {
	Tick       uint64       `json:"tick"`
	Zones      []ZoneView   `json:"zones"`
	Robot      BodyView     `json:"robot"`
	Debris     []DebrisView `json:"debris"`
	Controller tasks.Status `json:"controller"`
	Events     []Event      `json:"events,omitempty"`
}

func (w *World) buildFrame(tick uint64, events []Event) Frame {
	f := Frame{
		Tick:       tick,
		Zones:      make([]ZoneView, 0, 5),
		Debris:     make([]DebrisView, 0, len(w.debrisAll)),
		Controller: w.ctl.Status(),
		Events:     append([]Event(nil), events...),
	}
	for _, z := range w.reg.All() {
		f.Zones = append(f.Zones, ZoneView{
			ID:       z.ID,
			Center:   z.Center,
			Dims:     z.Dims(),
			Bounds:   z.Bounds,
			Occupied: z.Occupied,
			Entry:    z.Entry,
		})
	}
	b := w.robot
	f.Robot = BodyView{
		Pos:     b.Center,
		Vel:     b.Velocity,
		Dims:    b.Dims(),
		Bounds:  b.Bounds,
		Perm:    b.Perm,
		OnFloor: w.onFloor,
	}
	for _, d := range w.debrisAll {
		f.Debris = append(f.Debris, DebrisView{
			ID:      d.ID,
			Zone:    d.Zone,
			Pos:     d.Pos(),
			Dims:    d.Body.Dims(),
			Visible: d.Visible,
		})
	}
	return f
}

// Frame returns the state published by the most recent tick. Safe from any goroutine.
func (w *World) Frame() Frame {
	v, _ := w.frame.Load().(Frame)
	return v
}

func (w *World) Zones() []ZoneView        { return w.Frame().Zones }
func (w *World) Robot() BodyView          { return w.Frame().Robot }
func (w *World) Debris() []DebrisView     { return w.Frame().Debris }
func (w *World) Controller() tasks.Status { return w.Frame().Controller }
func (w *World) Station() geom.Footprint  { return w.reg.Station() }
