package world

import (
	"github.com/go-gl/mathgl/mgl64"

	"vacuumsim.ai/internal/sim/layout"
)

// Debug helpers for tests and tools. They must only be called when the world loop is not
// running (e.g. between StepOnce calls).

func (w *World) DebugSetOccupied(id layout.ZoneID, occupied bool) bool {
	z := w.reg.Zone(id)
	if z == nil {
		return false
	}
	z.Occupied = occupied
	return true
}

func (w *World) DebugPlaceRobot(pos mgl64.Vec3, vel mgl64.Vec3) {
	w.robot.MoveTo(pos)
	w.robot.Velocity = vel
}

func (w *World) DebugDebrisInZone(id layout.ZoneID) int {
	return len(w.debris.InZone(id))
}

// DebugJoinDriver registers a driver session synchronously, as the loop would on Join().
func (w *World) DebugJoinDriver(req DriverJoinRequest) { w.handleDriverJoin(req) }

func (w *World) DebugJoinObserver(req ObserverJoinRequest) { w.handleObserverJoin(req) }

func (w *World) DebugStateDigest(tick uint64) string { return w.stateDigest(tick) }
