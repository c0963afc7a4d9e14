package world

import (
	"fmt"

	"vacuumsim.ai/internal/persistence/snapshot"
	"vacuumsim.ai/internal/sim/layout"
	"vacuumsim.ai/internal/sim/tasks"
)

func (w *World) ExportSnapshot(nowTick uint64) snapshot.SnapshotV1 {
	snap := snapshot.SnapshotV1{
		Header: snapshot.Header{
			Version: snapshot.Version,
			WorldID: w.cfg.ID,
			Tick:    nowTick,
		},
		Seed:               w.cfg.Seed,
		TickRate:           w.cfg.TickRateHz,
		Mode:               w.cfg.Mode,
		SnapshotEveryTicks: w.cfg.SnapshotEveryTicks,
		Counters: snapshot.CountersV1{
			NextDriver:      w.nextDriverNum.Load(),
			DebrisCollected: w.collected,
		},
	}
	for _, z := range w.reg.All() {
		snap.Zones = append(snap.Zones, snapshot.ZoneV1{ID: string(z.ID), Occupied: z.Occupied})
	}
	b := w.robot
	snap.Robot = snapshot.BodyV1{
		Pos:     b.Center,
		Vel:     b.Velocity,
		Perm:    [4]bool{b.Perm.NegX, b.Perm.PosX, b.Perm.NegZ, b.Perm.PosZ},
		OnFloor: w.onFloor,
	}
	for _, d := range w.debrisAll {
		snap.Debris = append(snap.Debris, snapshot.DebrisV1{
			ID:      d.ID,
			Zone:    string(d.Zone),
			Pos:     d.Pos(),
			Visible: d.Visible,
		})
	}

	st := w.ctl.Export()
	snap.Controller = snapshot.ControllerV1{
		Phase:        string(st.Phase),
		Pass:         string(st.Pass),
		CurrentIndex: st.CurrentIndex,
		Pending:      zoneIDsToStrings(st.Pending),
		PendingIndex: st.PendingIndex,
		Cleaned:      zoneIDsToStrings(st.Cleaned),
		HalfZones:    st.HalfZones,
		Wait:         st.Wait,
		Charging:     st.Charging,
		AllCleaned:   st.AllCleaned,
		Battery:      st.Battery,
		Sweep: snapshot.CursorV1{
			Col:  st.Sweep.Col,
			Row:  st.Sweep.Row,
			Cols: st.Sweep.Cols,
			Rows: st.Sweep.Rows,
			Dir:  st.Sweep.Dir,
			X:    st.Sweep.X,
			Z:    st.Sweep.Z,
		},
		ChargeStage: st.ChargeStage,
		AfterCharge: string(st.AfterCharge),
	}
	return snap
}

// ImportSnapshot restores the dynamic state of a snapshot. The world must have been built
// with the snapshot's seed so that zones and debris line up.
func (w *World) ImportSnapshot(s snapshot.SnapshotV1) error {
	if s.Header.Version != snapshot.Version {
		return fmt.Errorf("unsupported snapshot version: %d", s.Header.Version)
	}
	if s.Seed != w.cfg.Seed {
		return fmt.Errorf("snapshot seed %d does not match world seed %d", s.Seed, w.cfg.Seed)
	}

	for _, zs := range s.Zones {
		z := w.reg.Zone(layout.ZoneID(zs.ID))
		if z == nil {
			return fmt.Errorf("snapshot zone %q not in world", zs.ID)
		}
		z.Occupied = zs.Occupied
	}

	byID := make(map[string]*layout.Debris, len(w.debrisAll))
	for _, d := range w.debrisAll {
		byID[d.ID] = d
	}
	if len(s.Debris) != len(w.debrisAll) {
		return fmt.Errorf("snapshot has %d debris, world has %d", len(s.Debris), len(w.debrisAll))
	}
	for _, ds := range s.Debris {
		d := byID[ds.ID]
		if d == nil {
			return fmt.Errorf("snapshot debris %q not in world", ds.ID)
		}
		d.Visible = ds.Visible
	}
	w.debris = layout.NewDebrisSet(w.debrisAll)

	b := w.robot
	b.MoveTo(s.Robot.Pos)
	b.Velocity = s.Robot.Vel
	b.Perm.NegX, b.Perm.PosX, b.Perm.NegZ, b.Perm.PosZ = s.Robot.Perm[0], s.Robot.Perm[1], s.Robot.Perm[2], s.Robot.Perm[3]
	w.onFloor = s.Robot.OnFloor

	c := s.Controller
	w.ctl = tasks.Restore(w.reg, w.debris, w.cfg.Tasks, tasks.State{
		Phase:        tasks.Phase(c.Phase),
		Pass:         tasks.Pass(c.Pass),
		CurrentIndex: c.CurrentIndex,
		Pending:      stringsToZoneIDs(c.Pending),
		PendingIndex: c.PendingIndex,
		Cleaned:      stringsToZoneIDs(c.Cleaned),
		HalfZones:    c.HalfZones,
		Wait:         c.Wait,
		Charging:     c.Charging,
		AllCleaned:   c.AllCleaned,
		Battery:      c.Battery,
		Sweep: tasks.Cursor{
			Col:  c.Sweep.Col,
			Row:  c.Sweep.Row,
			Cols: c.Sweep.Cols,
			Rows: c.Sweep.Rows,
			Dir:  c.Sweep.Dir,
			X:    c.Sweep.X,
			Z:    c.Sweep.Z,
		},
		ChargeStage: c.ChargeStage,
		AfterCharge: tasks.Phase(c.AfterCharge),
	})

	w.collected = s.Counters.DebrisCollected
	w.nextDriverNum.Store(s.Counters.NextDriver)
	w.tick.Store(s.Header.Tick + 1)
	w.frame.Store(w.buildFrame(s.Header.Tick, nil))
	return nil
}

func zoneIDsToStrings(ids []layout.ZoneID) []string {
	if len(ids) == 0 {
		return nil
	}
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

func stringsToZoneIDs(ss []string) []layout.ZoneID {
	if len(ss) == 0 {
		return nil
	}
	out := make([]layout.ZoneID, len(ss))
	for i, s := range ss {
		out[i] = layout.ZoneID(s)
	}
	return out
}
