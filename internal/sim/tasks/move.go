package tasks

import "github.com/go-gl/mathgl/mgl64"

// StepToward moves pos toward (tx, tz) on its own horizontal plane by step.
// Within threshold it snaps exactly onto the target and reports arrival.
func StepToward(pos mgl64.Vec3, tx, tz, step, threshold float64) (mgl64.Vec3, bool) {
	target := mgl64.Vec3{tx, pos.Y(), tz}
	d := target.Sub(pos)
	if d.Len() > threshold {
		return pos.Add(d.Normalize().Mul(step)), false
	}
	return target, true
}
