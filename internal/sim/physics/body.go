package physics

import (
	"github.com/go-gl/mathgl/mgl64"

	"vacuumsim.ai/internal/sim/geom"
)

// Permissions gate velocity writes on the four cardinal horizontal directions.
type Permissions struct {
	NegX bool `json:"neg_x"`
	PosX bool `json:"pos_x"`
	NegZ bool `json:"neg_z"`
	PosZ bool `json:"pos_z"`
}

func AllowAll() Permissions {
	return Permissions{NegX: true, PosX: true, NegZ: true, PosZ: true}
}

// Body is a physically simulated box (the robot, or a debris item).
type Body struct {
	geom.Footprint

	Velocity mgl64.Vec3
	// Gravity is added to Velocity.Y every tick (negative is down).
	Gravity float64
	Perm    Permissions
}

func NewBody(center mgl64.Vec3, dims geom.Dims, velocity mgl64.Vec3, gravity float64) *Body {
	return &Body{
		Footprint: geom.NewFootprint(center, dims),
		Velocity:  velocity,
		Gravity:   gravity,
		Perm:      AllowAll(),
	}
}

// Params are the tunable constants of the collision model.
type Params struct {
	// Restitution scales the inverted vertical velocity on a floor bounce.
	Restitution float64
	// Tolerance is the clearance kept from the outer room edges before a direction is blocked.
	Tolerance float64
}

func DefaultParams() Params {
	return Params{Restitution: 0.6, Tolerance: 0.2}
}

// Integrate advances the body by one tick against the static map.
// It returns true when the body bounced on the floor this tick.
func Integrate(b *Body, z Zones, p Params) bool {
	b.Refresh()

	// Horizontal motion is unconditional; the flags gate who may write velocity, not this step.
	b.Center[0] += b.Velocity[0]
	b.Center[2] += b.Velocity[2]
	b.Refresh()

	b.Velocity[1] += b.Gravity
	if Resolve(b, z, p) {
		b.Velocity[1] = -(b.Velocity[1] * p.Restitution)
		return true
	}
	b.Center[1] += b.Velocity[1]
	b.Refresh()
	return false
}

// ApplyDrive writes a horizontal velocity, dropping any component whose direction is not permitted.
func ApplyDrive(b *Body, vx, vz float64) {
	if (vx < 0 && !b.Perm.NegX) || (vx > 0 && !b.Perm.PosX) {
		vx = 0
	}
	if (vz < 0 && !b.Perm.NegZ) || (vz > 0 && !b.Perm.PosZ) {
		vz = 0
	}
	b.Velocity[0] = vx
	b.Velocity[2] = vz
}
