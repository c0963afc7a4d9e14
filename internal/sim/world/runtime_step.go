package world

import (
	"encoding/json"
	"time"

	"vacuumsim.ai/internal/protocol"
	"vacuumsim.ai/internal/sim/physics"
	"vacuumsim.ai/internal/sim/tuning"
)

func (w *World) stepInternal(drives []DriveCommand) {
	stepStart := time.Now()
	nowTick := w.tick.Load()

	// Manual drives apply before integration; auto mode ignores them.
	recorded := make([]DriveCommand, 0, len(drives))
	if w.cfg.Mode == tuning.ModeManual {
		for _, d := range drives {
			physics.ApplyDrive(w.robot, d.VX, d.VZ)
			recorded = append(recorded, d)
		}
	}

	var events []Event
	if w.cfg.Mode == tuning.ModeAuto {
		for _, ev := range w.ctl.Advance(w.robot) {
			events = append(events, Event{Tick: nowTick, Kind: string(ev.Kind), Zone: string(ev.Zone)})
		}
	}

	w.onFloor = physics.Integrate(w.robot, w.zoneMap, w.cfg.Physics)

	for _, d := range w.debris.Suction(w.robot.Bounds) {
		w.collected++
		events = append(events, Event{Tick: nowTick, Kind: EventDebrisCollected, Zone: string(d.Zone), DebrisID: d.ID})
	}
	w.logLifecycle(events)

	digest := w.stateDigest(nowTick)
	if w.tickLogger != nil {
		_ = w.tickLogger.WriteTick(TickLogEntry{Tick: nowTick, Drives: recorded, Events: events, Digest: digest})
	}
	if w.eventLogger != nil {
		for _, ev := range events {
			_ = w.eventLogger.WriteEvent(ev)
		}
	}

	f := w.buildFrame(nowTick, events)
	w.frame.Store(f)
	w.sendDriverObs(f)
	w.stepObservers(f)

	// Snapshot every N ticks, starting after tick 0.
	if w.snapshotSink != nil && nowTick != 0 && w.cfg.SnapshotEveryTicks > 0 {
		if nowTick%uint64(w.cfg.SnapshotEveryTicks) == 0 {
			snap := w.ExportSnapshot(nowTick)
			select {
			case w.snapshotSink <- snap:
			default:
				// Drop snapshot if sink is backed up.
			}
		}
	}

	stepMS := float64(time.Since(stepStart).Microseconds()) / 1000.0
	nextTick := w.tick.Add(1)

	st := f.Controller
	w.metrics.Store(WorldMetrics{
		Tick:            nextTick,
		Mode:            w.cfg.Mode,
		Phase:           string(st.Phase),
		Zone:            string(st.Zone),
		Drivers:         len(w.drivers),
		Observers:       len(w.observers),
		DebrisTotal:     len(w.debrisAll),
		DebrisRemaining: w.debris.Remaining(),
		DebrisCollected: w.collected,
		ZonesCleaned:    len(st.Cleaned),
		Pending:         len(st.Pending),
		Progress:        st.Progress,
		Battery:         st.Battery,
		AllCleaned:      st.AllCleaned,
		QueueDepths: QueueDepths{
			Inbox: len(w.inbox),
			Join:  len(w.join),
			Leave: len(w.leave),
		},
		StepMS: stepMS,
	})
}

func (w *World) sendDriverObs(f Frame) {
	if len(w.drivers) == 0 {
		return
	}
	var kinds []string
	for _, ev := range f.Events {
		kinds = append(kinds, ev.Kind)
	}
	r := f.Robot
	for id, d := range w.drivers {
		if d.Out == nil {
			continue
		}
		obs := protocol.ObsMsg{
			Type:            protocol.TypeObs,
			ProtocolVersion: protocol.Version,
			Tick:            f.Tick,
			SessionID:       id,
			Robot: protocol.RobotState{
				Pos:    r.Pos,
				Vel:    r.Vel,
				Bounds: protocol.Bounds(r.Bounds),
				Permissions: protocol.Permissions{
					NegX: r.Perm.NegX,
					PosX: r.Perm.PosX,
					NegZ: r.Perm.NegZ,
					PosZ: r.Perm.PosZ,
				},
				OnFloor: r.OnFloor,
			},
			DebrisRemaining: w.debris.Remaining(),
			Events:          kinds,
		}
		b, err := json.Marshal(obs)
		if err != nil {
			continue
		}
		sendLatest(d.Out, b)
	}
}
