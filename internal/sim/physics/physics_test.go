package physics

import (
	"math"
	"testing"

	"vacuumsim.ai/internal/sim/geom"
)

var unitCube = geom.Dims{Width: 1, Height: 1, Depth: 1}

// crossMap builds the hub and four rooms (8 units wide, 8 units apart) with the given floor.
func crossMap(floorY, floorHeight float64) Zones {
	room := geom.Dims{Width: 8, Height: floorHeight, Depth: 8}
	return Zones{
		Center: geom.BoundsOf(geom.V3(0, floorY, 0), room),
		North:  geom.BoundsOf(geom.V3(0, floorY, -8), room),
		East:   geom.BoundsOf(geom.V3(8, floorY, 0), room),
		West:   geom.BoundsOf(geom.V3(-8, floorY, 0), room),
		South:  geom.BoundsOf(geom.V3(0, floorY, 8), room),
	}
}

func TestResolve_FloorCollisionThreshold(t *testing.T) {
	z := crossMap(-2, 0.5) // floor top at -1.75

	b := NewBody(geom.V3(0, -1, 0), unitCube, geom.V3(0, -0.25, 0), 0)
	if !Resolve(b, z, DefaultParams()) {
		t.Fatalf("bottom+vy == top should collide")
	}

	b = NewBody(geom.V3(0, -1, 0), unitCube, geom.V3(0, -0.125, 0), 0)
	if Resolve(b, z, DefaultParams()) {
		t.Fatalf("bottom+vy above top should not collide")
	}
}

func TestIntegrate_BounceDampsAndInverts(t *testing.T) {
	z := crossMap(-2, 0.5)
	b := NewBody(geom.V3(0, -1, 0), unitCube, geom.V3(0, -0.125, 0), -0.125)

	if !Integrate(b, z, DefaultParams()) {
		t.Fatalf("expected floor bounce")
	}
	if math.Abs(b.Velocity.Y()-0.15) > 1e-12 {
		t.Fatalf("vy after bounce=%v want 0.15", b.Velocity.Y())
	}
	if b.Center.Y() != -1 {
		t.Fatalf("bounce must not move the body vertically, y=%v", b.Center.Y())
	}
}

func TestIntegrate_FreeFallOffMap(t *testing.T) {
	z := crossMap(-2, 0.4)
	b := NewBody(geom.V3(20, 0, 20), unitCube, geom.V3(0, 0, 0), -0.125)
	for i := 0; i < 4; i++ {
		if Integrate(b, z, DefaultParams()) {
			t.Fatalf("no floor outside the map")
		}
	}
	// -0.125 - 0.25 - 0.375 - 0.5
	if b.Center.Y() != -1.25 {
		t.Fatalf("y=%v want -1.25", b.Center.Y())
	}
	if b.Bounds.Bottom != -1.75 {
		t.Fatalf("bounds not refreshed after fall: %+v", b.Bounds)
	}
}

func TestIntegrate_HorizontalMotionIsUnconditional(t *testing.T) {
	z := crossMap(-2, 0.4)
	b := NewBody(geom.V3(0, 0, 0), unitCube, geom.V3(0.5, 0, -0.25), 0)
	b.Perm = Permissions{}
	Integrate(b, z, DefaultParams())
	if b.Center.X() != 0.5 || b.Center.Z() != -0.25 {
		t.Fatalf("position=%v", b.Center)
	}
}

func TestResolve_ToleranceAtEastEdge(t *testing.T) {
	z := crossMap(-2, 0.4) // east room right edge at 12
	p := DefaultParams()

	// Right edge exactly Tolerance away from the outer wall.
	b := NewBody(geom.V3(11.3, 0, 0), unitCube, geom.V3(0.05, 0, 0), 0)
	b.Perm.PosX = false
	Resolve(b, z, p)
	if !b.Perm.PosX || !b.Perm.NegX {
		t.Fatalf("body at tolerance should keep X freedom: %+v", b.Perm)
	}
	if b.Velocity.X() != 0.05 {
		t.Fatalf("vx should be untouched, got %v", b.Velocity.X())
	}

	// A hundredth past the tolerance.
	b = NewBody(geom.V3(11.31, 0, 0), unitCube, geom.V3(0.05, 0, 0), 0)
	Resolve(b, z, p)
	if b.Perm.PosX {
		t.Fatalf("body past tolerance should lose +X: %+v", b.Perm)
	}
	if !b.Perm.NegX {
		t.Fatalf("-X should stay permitted: %+v", b.Perm)
	}
	if b.Velocity.X() != 0 {
		t.Fatalf("vx should be zeroed, got %v", b.Velocity.X())
	}
}

func TestResolve_AxesGatedIndependently(t *testing.T) {
	z := crossMap(-2, 0.4) // north room back edge at -12

	b := NewBody(geom.V3(0, 0, -11.4), unitCube, geom.V3(0.1, 0, -0.1), 0)
	Resolve(b, z, DefaultParams())
	if b.Perm.NegZ {
		t.Fatalf("-Z should be blocked at the north wall: %+v", b.Perm)
	}
	if !b.Perm.PosZ {
		t.Fatalf("+Z should stay permitted: %+v", b.Perm)
	}
	if b.Velocity.Z() != 0 {
		t.Fatalf("vz should be zeroed, got %v", b.Velocity.Z())
	}
	if !b.Perm.NegX || !b.Perm.PosX || b.Velocity.X() != 0.1 {
		t.Fatalf("X axis should stay free: perm=%+v vx=%v", b.Perm, b.Velocity.X())
	}
}

func TestResolve_RealignRestoresBothDirections(t *testing.T) {
	z := crossMap(-2, 0.4)
	b := NewBody(geom.V3(-3.4, 0, -8), unitCube, geom.V3(-0.1, 0, 0), 0)
	Resolve(b, z, DefaultParams())
	if b.Perm.NegX {
		t.Fatalf("-X should be blocked near the corridor wall: %+v", b.Perm)
	}

	b.MoveTo(geom.V3(0, 0, -8))
	Resolve(b, z, DefaultParams())
	if !b.Perm.NegX || !b.Perm.PosX {
		t.Fatalf("realigned body should regain X: %+v", b.Perm)
	}
}

func TestApplyDrive_GatedByPermissions(t *testing.T) {
	b := NewBody(geom.V3(0, 0, 0), unitCube, geom.V3(0, 0, 0), 0)
	b.Perm = Permissions{NegX: false, PosX: true, NegZ: true, PosZ: false}

	ApplyDrive(b, -0.1, 0.1)
	if b.Velocity.X() != 0 || b.Velocity.Z() != 0 {
		t.Fatalf("blocked directions should drop: %v", b.Velocity)
	}
	ApplyDrive(b, 0.1, -0.1)
	if b.Velocity.X() != 0.1 || b.Velocity.Z() != -0.1 {
		t.Fatalf("permitted directions should pass: %v", b.Velocity)
	}
}
