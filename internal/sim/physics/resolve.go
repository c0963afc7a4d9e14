package physics

import "vacuumsim.ai/internal/sim/geom"

// Zones is the fixed five-room map: a central hub and four cardinal rooms.
type Zones struct {
	Center geom.Bounds
	North  geom.Bounds
	East   geom.Bounds
	West   geom.Bounds
	South  geom.Bounds
}

const boundaryEpsilon = 1e-9

func geq(a, b float64) bool { return a >= b-boundaryEpsilon }
func leq(a, b float64) bool { return a <= b+boundaryEpsilon }

// Resolve updates the body's movement permissions for this tick and reports a floor collision.
//
// The map is a cross: the hub row (west, center, east) spans the hub's Z range,
// the corridor (north, center, south) spans the north room's X range. A blocked
// axis has its velocity component zeroed; a body that is realigned with either
// arm regains both directions on that axis.
func Resolve(b *Body, z Zones, p Params) bool {
	bb := b.Bounds
	tol := p.Tolerance

	onHubRow := bb.Front >= z.Center.Back && bb.Back <= z.Center.Front
	offHubRow := bb.Front <= z.Center.Back || bb.Back >= z.Center.Front

	inHubRow := onHubRow &&
		bb.Right >= z.West.Left &&
		bb.Left <= z.East.Right
	inCorridor := offHubRow &&
		bb.Right >= z.North.Left &&
		bb.Left <= z.North.Right &&
		bb.Front >= z.North.Back &&
		bb.Back <= z.South.Front
	overFloor := bb.Bottom+b.Velocity.Y() <= z.Center.Top && bb.Top >= z.Center.Bottom

	nearWest := geq(bb.Left-tol, z.West.Left)
	nearEast := leq(bb.Right+tol, z.East.Right)
	nearCorridorWest := geq(bb.Left-tol, z.North.Left)
	nearCorridorEast := leq(bb.Right+tol, z.North.Right)
	nearNorth := geq(bb.Back-tol, z.North.Back)
	nearSouth := leq(bb.Front+tol, z.South.Front)

	nearHubRow := onHubRow && nearWest && nearEast
	nearCorridor := offHubRow && nearCorridorWest && nearCorridorEast

	if (nearNorth && nearSouth && nearCorridor) || nearHubRow {
		b.Perm.NegZ = true
		b.Perm.PosZ = true
	} else {
		if !nearNorth {
			b.Perm.NegZ = false
		}
		if !nearSouth {
			b.Perm.PosZ = false
		}
		b.Velocity[2] = 0
	}

	if nearHubRow || nearCorridor {
		b.Perm.NegX = true
		b.Perm.PosX = true
	} else {
		if !nearWest || !nearCorridorWest {
			b.Perm.NegX = false
		}
		if !nearEast || !nearCorridorEast {
			b.Perm.PosX = false
		}
		b.Velocity[0] = 0
	}

	return (inHubRow || inCorridor) && overFloor
}
